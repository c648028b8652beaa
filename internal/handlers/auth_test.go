package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wecare-app/wecare/internal/handlers/middleware"
	"github.com/wecare-app/wecare/internal/logger"
	redisrepo "github.com/wecare-app/wecare/internal/repository/redis"
	"github.com/wecare-app/wecare/internal/service/auth"
	"github.com/wecare-app/wecare/internal/service/auth/tokenmanager"
	"github.com/wecare-app/wecare/internal/testutil"
)

const signUpBody = `{
	"username": "abc123",
	"password": "abc123!@",
	"name": "Kim Minji",
	"phone": "010-1234-5678",
	"gender": "FEMALE",
	"birth_date": "1990-05-01",
	"role": "GUARDIAN"
}`

func Test_AuthHandler(t *testing.T) {
	t.Parallel()

	// Run http server with production service over in-memory repos
	serve := func(t *testing.T) (string, *auth.AuthService) {
		rd := testutil.StartRedis(t)

		tokenManager, err := tokenmanager.New(tokenmanager.Config{SecretKey: "test-secret"})
		require.NoError(t, err, "token manager should be created without errors")

		s, err := auth.NewService(auth.Config{}, tokenManager, testutil.NewMemoryUserRepo(), redisrepo.NewSessionRepo(rd.Client))
		require.NoError(t, err, "auth service starting error")

		router := NewRouter(
			NewAuth(s),
			NewMember(),
			middleware.AuthMiddleware(s),
			middleware.LoggerMiddleware(logger.NewNoOp()),
		)

		srv := httptest.NewServer(router)
		t.Cleanup(srv.Close)

		return srv.URL, s
	}

	post := func(t *testing.T, url string, body string) (*http.Response, string) {
		t.Helper()

		resp, err := http.Post(url, "application/json", strings.NewReader(body))
		require.NoError(t, err)
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NoError(t, resp.Body.Close())

		return resp, string(raw)
	}

	signUp := func(t *testing.T, url string) {
		t.Helper()

		resp, body := post(t, url+"/api/auth/signup", signUpBody)
		require.Equalf(t, http.StatusCreated, resp.StatusCode, "not expected code. Body: %s", body)
	}

	login := func(t *testing.T, url string) TokenResponse {
		t.Helper()

		resp, body := post(t, url+"/api/auth/login", `{"username": "abc123", "password": "abc123!@"}`)
		require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)

		var tokens TokenResponse
		require.NoError(t, json.Unmarshal([]byte(body), &tokens))
		require.NotEmpty(t, tokens.AccessToken)
		require.NotEmpty(t, tokens.RefreshToken)
		return tokens
	}

	t.Run("signup ok", func(t *testing.T) {
		url, _ := serve(t)

		resp, body := post(t, url+"/api/auth/signup", signUpBody)

		require.Equalf(t, http.StatusCreated, resp.StatusCode, "not expected code. Body: %s", body)
		require.JSONEq(t, `
			{
				"message": "User registered successfully"
			}`, body)
	})

	t.Run("signup duplicate fail", func(t *testing.T) {
		url, _ := serve(t)
		signUp(t, url)

		resp, body := post(t, url+"/api/auth/signup", signUpBody)

		require.Equalf(t, http.StatusConflict, resp.StatusCode, "not expected code. Body: %s", body)
		require.JSONEq(t, `
			{
				"error": "service_error",
				"message": "User already exists"
			}`, body)
	})

	t.Run("signup validation fail", func(t *testing.T) {
		tests := []struct {
			name  string
			field string
			value string
		}{
			{name: "short username", field: "username", value: "ab1"},
			{name: "username without digit", field: "username", value: "abcdefgh"},
			{name: "password without symbol", field: "password", value: "abc12345"},
			{name: "short password", field: "password", value: "a1!"},
			{name: "bad phone", field: "phone", value: "02-123-4567"},
			{name: "future birth date", field: "birth_date", value: "2990-05-01"},
			{name: "unknown role", field: "role", value: "ADMIN"},
			{name: "unknown gender", field: "gender", value: "OTHER"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				url, _ := serve(t)

				var data map[string]string
				require.NoError(t, json.Unmarshal([]byte(signUpBody), &data))
				data[tt.field] = tt.value
				body, err := json.Marshal(data)
				require.NoError(t, err)

				resp, respBody := post(t, url+"/api/auth/signup", string(body))

				require.Equalf(t, http.StatusBadRequest, resp.StatusCode, "not expected code. Body: %s", respBody)
				require.Contains(t, respBody, "validation_failed")
				require.Contains(t, respBody, fmt.Sprintf("%q", tt.field), "failed field should be reported by json name")
			})
		}
	})

	t.Run("login ok", func(t *testing.T) {
		url, _ := serve(t)
		signUp(t, url)

		tokens := login(t, url)

		require.NotEqual(t, tokens.AccessToken, tokens.RefreshToken)
	})

	t.Run("login failed", func(t *testing.T) {
		url, _ := serve(t)
		signUp(t, url)

		resp, body := post(t, url+"/api/auth/login", `{"username": "abc123", "password": "WrongPass1!"}`)

		require.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "not expected code. Body: %s", body)
		require.JSONEq(t, `
			{
				"error": "service_error",
				"message": "Authentication failed"
			}`, body)
	})

	t.Run("reissue ok", func(t *testing.T) {
		url, _ := serve(t)
		signUp(t, url)
		tokens := login(t, url)

		resp, body := post(t, url+"/api/auth/reissue", fmt.Sprintf(`{"refresh_token": %q}`, tokens.RefreshToken))

		require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)

		var next TokenResponse
		require.NoError(t, json.Unmarshal([]byte(body), &next))
		require.NotEqual(t, tokens.RefreshToken, next.RefreshToken, "refresh token should rotate")
		require.NotEqual(t, tokens.AccessToken, next.AccessToken, "access token should rotate")
	})

	t.Run("reissue with superseded token fail", func(t *testing.T) {
		url, _ := serve(t)
		signUp(t, url)
		tokens := login(t, url)

		resp, body := post(t, url+"/api/auth/reissue", fmt.Sprintf(`{"refresh_token": %q}`, tokens.RefreshToken))
		require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)

		resp, body = post(t, url+"/api/auth/reissue", fmt.Sprintf(`{"refresh_token": %q}`, tokens.RefreshToken))

		require.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "not expected code. Body: %s", body)
		require.JSONEq(t, `
			{
				"error": "service_error",
				"message": "Refresh token mismatch"
			}`, body)
	})

	t.Run("reissue with garbage fail", func(t *testing.T) {
		url, _ := serve(t)

		resp, body := post(t, url+"/api/auth/reissue", `{"refresh_token": "garbage"}`)

		require.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "not expected code. Body: %s", body)
		require.JSONEq(t, `
			{
				"error": "service_error",
				"message": "Invalid refresh token"
			}`, body)
	})

	t.Run("logout ok", func(t *testing.T) {
		url, _ := serve(t)
		signUp(t, url)
		tokens := login(t, url)

		req, err := http.NewRequest(http.MethodPost, url+"/api/auth/logout", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		defer resp.Body.Close() // nolint:errcheck

		require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", string(body))
		require.JSONEq(t, `
			{
				"message": "User logged out successfully"
			}`, string(body))
	})

	t.Run("logout without token fail", func(t *testing.T) {
		url, _ := serve(t)

		resp, body := post(t, url+"/api/auth/logout", "")

		require.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "not expected code. Body: %s", body)
	})

	t.Run("me requires live access token", func(t *testing.T) {
		url, _ := serve(t)
		signUp(t, url)
		tokens := login(t, url)

		me := func(token string) (*http.Response, string) {
			req, err := http.NewRequest(http.MethodGet, url+"/api/members/me", nil)
			require.NoError(t, err)
			if token != "" {
				req.Header.Set("Authorization", "Bearer "+token)
			}

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			raw, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			require.NoError(t, resp.Body.Close())
			return resp, string(raw)
		}

		// No token
		resp, _ := me("")
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		// Live token
		resp, body := me(tokens.AccessToken)
		require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)
		require.JSONEq(t, `
			{
				"username": "abc123",
				"name": "Kim Minji",
				"phone": "010-1234-5678",
				"gender": "FEMALE",
				"birth_date": "1990-05-01",
				"role": "GUARDIAN"
			}`, body)

		// Logged out token is refused even though its signature is valid
		req, err := http.NewRequest(http.MethodPost, url+"/api/auth/logout", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
		logoutResp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		require.NoError(t, logoutResp.Body.Close())
		require.Equal(t, http.StatusOK, logoutResp.StatusCode)

		resp, _ = me(tokens.AccessToken)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, "revoked token should be rejected")
	})
}
