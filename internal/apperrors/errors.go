package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")

	// Credentials check failed: unknown username or wrong password
	// Intentionally opaque, callers must not tell these cases apart
	ErrAuthenticationFailed = errors.New("authentication failed")

	// Token signature or expiry check failed
	ErrInvalidToken = errors.New("invalid token")

	// Presented refresh token differs from the cached one or nothing is cached
	ErrTokenMismatch = errors.New("refresh token mismatch")

	ErrRefreshTokenNotFound = errors.New("refresh token not found")
)
