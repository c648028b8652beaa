package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wecare-app/wecare/internal/apperrors"
	"github.com/wecare-app/wecare/internal/handlers/userctx"
	"github.com/wecare-app/wecare/internal/models"
)

type identifyFunc func(ctx context.Context, accessToken string) (models.User, error)

func (f identifyFunc) Identify(ctx context.Context, accessToken string) (models.User, error) {
	return f(ctx, accessToken)
}

func TestAuthMiddleware(t *testing.T) {
	t.Parallel()

	knownUser := models.User{Username: "abc123", Role: models.RoleGuardian}

	service := identifyFunc(func(_ context.Context, token string) (models.User, error) {
		if token == "good-token" {
			return knownUser, nil
		}
		return models.User{}, apperrors.ErrInvalidToken
	})

	// Handler that records the user found in context
	var gotUser models.User
	var gotOk bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotOk = userctx.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	handler := AuthMiddleware(service)(next)

	do := func(t *testing.T, authorization string) *httptest.ResponseRecorder {
		t.Helper()
		gotUser, gotOk = models.User{}, false

		r := httptest.NewRequest(http.MethodGet, "/me", nil)
		if authorization != "" {
			r.Header.Set("Authorization", authorization)
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w
	}

	t.Run("valid bearer token ok", func(t *testing.T) {
		w := do(t, "Bearer good-token")

		require.Equal(t, http.StatusOK, w.Code)
		require.True(t, gotOk, "user should be put into request context")
		require.Equal(t, knownUser, gotUser)
	})

	t.Run("missing header fail", func(t *testing.T) {
		w := do(t, "")

		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.False(t, gotOk, "next handler should not run")
	})

	t.Run("not bearer scheme fail", func(t *testing.T) {
		w := do(t, "Basic Zm9vOmJhcg==")

		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejected token fail", func(t *testing.T) {
		w := do(t, "Bearer bad-token")

		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.False(t, gotOk)
	})

	t.Run("service error fail", func(t *testing.T) {
		failing := identifyFunc(func(context.Context, string) (models.User, error) {
			return models.User{}, errors.New("redis down")
		})
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/me", nil)
		r.Header.Set("Authorization", "Bearer good-token")

		AuthMiddleware(failing)(next).ServeHTTP(w, r)

		require.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestBearerToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		token  string
		ok     bool
	}{
		{name: "valid", header: "Bearer abc", token: "abc", ok: true},
		{name: "empty", header: "", ok: false},
		{name: "no scheme", header: "abc", ok: false},
		{name: "empty token", header: "Bearer ", ok: false},
		{name: "different scheme", header: "Basic abc", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}

			token, ok := BearerToken(r)

			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.token, token)
		})
	}
}
