package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/wecare-app/wecare/internal/models"
)

// User repository interface
type UserRepo interface {
	// Create user
	// If user with username exists already has to return apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, user models.User) (models.User, error)

	// Get user by it's id or username
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
}

// Session repository interface
//
// Backed by a key-value store with per-key expiry. Refresh tokens and
// revocation markers share one keyspace by convention: the refresh
// token for a user lives under the username key, a revocation marker
// lives under the access token value itself.
type SessionRepo interface {
	// Store the refresh token for username, overwriting any previous one.
	// At most one live refresh token per username exists at any time.
	SaveRefreshToken(ctx context.Context, username string, token string, ttl time.Duration) error

	// Return the cached refresh token for username
	// If nothing is cached must return apperrors.ErrRefreshTokenNotFound
	GetRefreshToken(ctx context.Context, username string) (string, error)

	// Delete the cached refresh token. Absence is not an error.
	DeleteRefreshToken(ctx context.Context, username string) error

	// Mark the access token as logged out for its remaining lifetime
	MarkRevoked(ctx context.Context, accessToken string, ttl time.Duration) error

	// Report whether the access token carries a revocation marker
	IsRevoked(ctx context.Context, accessToken string) (bool, error)
}
