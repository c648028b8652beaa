package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/wecare-app/wecare/internal/handlers/render"
	"github.com/wecare-app/wecare/internal/handlers/userctx"
	"github.com/wecare-app/wecare/internal/models"
)

type authService interface {
	// Resolve access token to user
	// Must reject invalid, expired and logged out tokens
	Identify(ctx context.Context, accessToken string) (models.User, error)
}

// AuthMiddleware guards handlers with bearer access token auth
// The resolved user is put into the request context.
func AuthMiddleware(as authService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			user, err := as.Identify(r.Context(), token)
			if err != nil {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := userctx.New(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the token from the Authorization header
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", false
	}
	return token, true
}
