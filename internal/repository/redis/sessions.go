package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wecare-app/wecare/internal/apperrors"
)

// Value stored under a revoked access token key
const revokedMarker = "logout"

// SessionRepo keeps the token lifecycle state in redis.
//
// There is no state field anywhere: a user session "exists" exactly
// while the username key holds a refresh token. Login and reissue
// overwrite the key (last write wins), logout deletes it and leaves a
// revocation marker under the access token value until the token would
// have expired on its own.
type SessionRepo struct {
	client redis.UniversalClient
}

func NewSessionRepo(client redis.UniversalClient) *SessionRepo {
	return &SessionRepo{client: client}
}

func (r *SessionRepo) SaveRefreshToken(ctx context.Context, username string, token string, ttl time.Duration) error {
	if err := r.client.Set(ctx, username, token, ttl).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

func (r *SessionRepo) GetRefreshToken(ctx context.Context, username string) (string, error) {
	token, err := r.client.Get(ctx, username).Result()

	switch {
	case err == nil:
		return token, nil
	case errors.Is(err, redis.Nil):
		return "", fmt.Errorf("repo error: %w", apperrors.ErrRefreshTokenNotFound)
	default:
		return "", fmt.Errorf("redis error: %w", err)
	}
}

func (r *SessionRepo) DeleteRefreshToken(ctx context.Context, username string) error {
	// DEL of a missing key is a no-op, absence is not an error here
	if err := r.client.Del(ctx, username).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

func (r *SessionRepo) MarkRevoked(ctx context.Context, accessToken string, ttl time.Duration) error {
	if ttl <= 0 {
		// Token already expired on its own, nothing to revoke
		return nil
	}

	if err := r.client.Set(ctx, accessToken, revokedMarker, ttl).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

func (r *SessionRepo) IsRevoked(ctx context.Context, accessToken string) (bool, error) {
	n, err := r.client.Exists(ctx, accessToken).Result()
	if err != nil {
		return false, fmt.Errorf("redis error: %w", err)
	}
	return n > 0, nil
}
