package integration

import (
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/wecare-app/wecare/internal/handlers"
	"github.com/wecare-app/wecare/internal/handlers/middleware"
	"github.com/wecare-app/wecare/internal/logger"
	"github.com/wecare-app/wecare/internal/repository/postgres"
	redisrepo "github.com/wecare-app/wecare/internal/repository/redis"
	"github.com/wecare-app/wecare/internal/service/auth"
	"github.com/wecare-app/wecare/internal/service/auth/tokenmanager"
	"github.com/wecare-app/wecare/internal/testutil"
)

type Services struct {
	AuthService *auth.AuthService
	Redis       *testutil.Redis
}

// Create db transaction and run server with that connection (one connection cause one transaction)
// The session cache is a fresh in-process redis per call, so tests stay isolated both ways
func RunTx(dbpool *pgxpool.Pool, t *testing.T, fn func(srvURL string, s Services)) {
	testutil.WithTx(dbpool, t, func(tx pgx.Tx) {
		rd := testutil.StartRedis(t)

		// Initialize repositories
		userRepo := &postgres.UserRepo{DB: tx}
		sessionRepo := redisrepo.NewSessionRepo(rd.Client)

		// Initialize services
		tokenManager, err := tokenmanager.New(tokenmanager.Config{SecretKey: "test-secret"})
		require.NoError(t, err, "token manager should be created without errors")

		as, err := auth.NewService(auth.Config{}, tokenManager, userRepo, sessionRepo)
		require.NoError(t, err, "auth service starting error")

		// Complete all together as router
		router := handlers.NewRouter(
			handlers.NewAuth(as),
			handlers.NewMember(),
			middleware.AuthMiddleware(as),
			middleware.LoggerMiddleware(logger.NewNoOp()),
		)

		// Run http server with the router in transaction
		srv := httptest.NewServer(router)
		defer srv.Close()

		fn(srv.URL, Services{
			AuthService: as,
			Redis:       rd,
		})
	})
}
