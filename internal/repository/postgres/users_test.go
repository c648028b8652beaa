package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/wecare-app/wecare/internal/apperrors"
	"github.com/wecare-app/wecare/internal/models"
	"github.com/wecare-app/wecare/internal/testutil"
)

func TestUserRepo(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	user := models.User{
		Username:       "abc123",
		HashedPassword: "not-a-real-hash",
		Name:           "Kim Minji",
		Phone:          "010-1234-5678",
		Gender:         models.GenderFemale,
		BirthDate:      time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC),
		Role:           models.RoleGuardian,
	}

	inTx := func(t *testing.T, fn func(repo *UserRepo)) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			fn(&UserRepo{DB: tx})
		})
	}

	t.Run("CreateUser", func(t *testing.T) {
		t.Run("create ok", func(t *testing.T) {
			inTx(t, func(repo *UserRepo) {
				created, err := repo.CreateUser(t.Context(), user)

				require.NoError(t, err, "creating new user should be ok")
				require.NotEmpty(t, created.ID, "user ID should be generated")
				require.NotZero(t, created.CreatedAt, "created at should be set")
				require.Equal(t, user.Username, created.Username)
				require.Equal(t, user.HashedPassword, created.HashedPassword)
				require.Equal(t, user.Name, created.Name)
				require.Equal(t, user.Phone, created.Phone)
				require.Equal(t, user.Gender, created.Gender)
				require.Equal(t, user.Role, created.Role)
				require.Equal(t, user.BirthDate.Format(time.DateOnly), created.BirthDate.Format(time.DateOnly))
			})
		})

		t.Run("duplicate username fail", func(t *testing.T) {
			inTx(t, func(repo *UserRepo) {
				_, err := repo.CreateUser(t.Context(), user)
				require.NoError(t, err, "first user creation should succeed")

				_, err = repo.CreateUser(t.Context(), user)

				require.Error(t, err, "unique constraint is the source of truth for duplicates")
				require.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
			})
		})
	})

	t.Run("GetUserByUsername", func(t *testing.T) {
		t.Run("existed ok", func(t *testing.T) {
			inTx(t, func(repo *UserRepo) {
				created, err := repo.CreateUser(t.Context(), user)
				require.NoError(t, err)

				got, err := repo.GetUserByUsername(t.Context(), "abc123")

				require.NoError(t, err)
				require.Equal(t, created.ID, got.ID)
				require.Equal(t, created.Username, got.Username)
				require.Equal(t, created.HashedPassword, got.HashedPassword)
			})
		})

		t.Run("not existed fail", func(t *testing.T) {
			inTx(t, func(repo *UserRepo) {
				_, err := repo.GetUserByUsername(t.Context(), "nosuchuser")

				require.Error(t, err)
				require.ErrorIs(t, err, apperrors.ErrUserNotFound)
			})
		})
	})

	t.Run("GetUserByID", func(t *testing.T) {
		t.Run("existed ok", func(t *testing.T) {
			inTx(t, func(repo *UserRepo) {
				created, err := repo.CreateUser(t.Context(), user)
				require.NoError(t, err)

				got, err := repo.GetUserByID(t.Context(), created.ID)

				require.NoError(t, err)
				require.Equal(t, created.Username, got.Username)
			})
		})

		t.Run("not existed fail", func(t *testing.T) {
			inTx(t, func(repo *UserRepo) {
				_, err := repo.GetUserByID(t.Context(), uuid.New())

				require.Error(t, err)
				require.ErrorIs(t, err, apperrors.ErrUserNotFound)
			})
		})
	})
}
