package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wecare-app/wecare/internal/apperrors"
	"github.com/wecare-app/wecare/internal/logger"
	"github.com/wecare-app/wecare/internal/models"
	"github.com/wecare-app/wecare/internal/repository"
	"github.com/wecare-app/wecare/internal/service/auth/tokenmanager"
)

type Config struct {
	// Hasher to use during sign up and credentials check
	// DefaultHasher is used if not set
	Hasher PasswordHasher

	// Logger for auth events
	// Discards everything if not set
	Logger logger.Logger
}

// AuthService orchestrates sign up, login, logout and reissue over the
// user repository, the session cache and the token manager
type AuthService struct {
	token    *tokenmanager.TokenManager
	hasher   PasswordHasher
	users    repository.UserRepo
	sessions repository.SessionRepo
	logger   logger.Logger
}

func NewService(cfg Config, token *tokenmanager.TokenManager, users repository.UserRepo, sessions repository.SessionRepo) (*AuthService, error) {
	if token == nil || users == nil || sessions == nil {
		return nil, errors.New("token manager and repos must not be nil")
	}

	hasher := cfg.Hasher
	if hasher == nil {
		hasher = DefaultHasher
	}

	log := cfg.Logger
	if log == nil {
		log = logger.NewNoOp()
	}

	return &AuthService{
		token:    token,
		hasher:   hasher,
		users:    users,
		sessions: sessions,
		logger:   log,
	}, nil
}

// SignUp registers a new user
// Returns apperrors.ErrUserAlreadyExists if the username is taken.
// The pre-check below is an optimization only: a concurrent duplicate
// is caught by the users table unique constraint inside CreateUser.
func (s *AuthService) SignUp(ctx context.Context, data models.NewUser) error {
	_, err := s.users.GetUserByUsername(ctx, data.Username)
	switch {
	case err == nil:
		return apperrors.ErrUserAlreadyExists
	case !errors.Is(err, apperrors.ErrUserNotFound):
		return fmt.Errorf("error while checking username. Err: %w", err)
	}

	hash, err := s.hasher.Hash(data.Password)
	if err != nil {
		return fmt.Errorf("can't use this as password, error=%w", err)
	}

	_, err = s.users.CreateUser(ctx, models.User{
		Username:       data.Username,
		HashedPassword: hash,
		Name:           data.Name,
		Phone:          data.Phone,
		Gender:         data.Gender,
		BirthDate:      data.BirthDate,
		Role:           data.Role,
	})
	if err != nil {
		return err
	}

	s.logger.Info("user signed up", "username", data.Username, "role", data.Role)
	return nil
}

// Login verifies credentials, issues a fresh token pair and caches the
// refresh token under the username key. Any previously cached refresh
// token for that username is overwritten: last login wins.
func (s *AuthService) Login(ctx context.Context, username string, password string) (models.TokenPair, error) {
	claim, err := s.verifyCredentials(ctx, username, password)
	if err != nil {
		s.logger.Warn("login failed", "username", username)
		return models.TokenPair{}, err
	}

	pair, err := s.token.IssuePair(claim)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("token could not be generated. Err: %w", err)
	}

	err = s.sessions.SaveRefreshToken(ctx, claim.Username, pair.Refresh.Value, s.token.RefreshTTL())
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("error while caching refresh token. Err: %w", err)
	}

	s.logger.Info("user logged in", "username", username)
	return pair, nil
}

// Logout ends the session of the access token holder
// Returns apperrors.ErrInvalidToken if the token does not validate.
// The cached refresh token is deleted best-effort and the access token
// is marked revoked for exactly its remaining lifetime, so the marker
// expires together with the token.
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	claim, expiresAt, err := s.token.Parse(accessToken)
	if err != nil {
		return err
	}

	if err := s.sessions.DeleteRefreshToken(ctx, claim.Username); err != nil {
		return fmt.Errorf("error while deleting refresh token. Err: %w", err)
	}

	remaining := time.Until(expiresAt)
	if err := s.sessions.MarkRevoked(ctx, accessToken, remaining); err != nil {
		return fmt.Errorf("error while revoking access token. Err: %w", err)
	}

	s.logger.Info("user logged out", "username", claim.Username)
	return nil
}

// Reissue rotates the token pair using a refresh token
// Returns apperrors.ErrInvalidToken if the token does not validate and
// apperrors.ErrTokenMismatch if it is not the cached one. A mismatch
// means the token was superseded by a later login or reissue, so a
// stale or replayed token never rotates the session.
func (s *AuthService) Reissue(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	claim, _, err := s.token.Parse(refreshToken)
	if err != nil {
		return models.TokenPair{}, err
	}

	cached, err := s.sessions.GetRefreshToken(ctx, claim.Username)
	switch {
	case errors.Is(err, apperrors.ErrRefreshTokenNotFound):
		return models.TokenPair{}, apperrors.ErrTokenMismatch
	case err != nil:
		return models.TokenPair{}, fmt.Errorf("error while reading cached refresh token. Err: %w", err)
	case cached != refreshToken:
		s.logger.Warn("stale refresh token presented", "username", claim.Username)
		return models.TokenPair{}, apperrors.ErrTokenMismatch
	}

	pair, err := s.token.IssuePair(claim)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("token could not be generated. Err: %w", err)
	}

	err = s.sessions.SaveRefreshToken(ctx, claim.Username, pair.Refresh.Value, s.token.RefreshTTL())
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("error while caching refresh token. Err: %w", err)
	}

	s.logger.Info("token pair reissued", "username", claim.Username)
	return pair, nil
}

// Identify resolves an access token to its user
// Used by the auth middleware: rejects invalid tokens and tokens that
// were logged out before their natural expiry.
func (s *AuthService) Identify(ctx context.Context, accessToken string) (models.User, error) {
	claim, _, err := s.token.Parse(accessToken)
	if err != nil {
		return models.User{}, err
	}

	revoked, err := s.sessions.IsRevoked(ctx, accessToken)
	if err != nil {
		return models.User{}, fmt.Errorf("error while checking revocation. Err: %w", err)
	}
	if revoked {
		return models.User{}, apperrors.ErrInvalidToken
	}

	return s.users.GetUserByUsername(ctx, claim.Username)
}

// verifyCredentials is the explicit credentials pipeline: fetch the
// user, compare hashes, build the claim. Both unknown username and
// wrong password collapse into ErrAuthenticationFailed.
func (s *AuthService) verifyCredentials(ctx context.Context, username string, password string) (models.Claim, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		return models.Claim{}, apperrors.ErrAuthenticationFailed
	case err != nil:
		return models.Claim{}, fmt.Errorf("error while fetching user. Err: %w", err)
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return models.Claim{}, apperrors.ErrAuthenticationFailed
	}

	return models.Claim{Username: user.Username, Role: user.Role}, nil
}
