package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestGormAuthorizationRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormAuthorizationRepository(db)
	ctx := context.Background()
	project := uuid.New()

	require.NoError(t, repo.Save(ctx, newTestAuthorization(t, "Bob@Example.com", project, identity.RoleViewer)))
	require.NoError(t, repo.Save(ctx, newTestAuthorization(t, "amy@example.com", project, identity.RoleAdmin)))

	t.Run("find normalizes email", func(t *testing.T) {
		found, err := repo.FindByUserAndProject(ctx, " BOB@example.com ", project)
		require.NoError(t, err)
		assert.Equal(t, "bob@example.com", found.UserEmail)
		assert.Equal(t, identity.RoleViewer, found.Role)
	})

	t.Run("save keeps a single record per pair", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, newTestAuthorization(t, "bob@example.com", project, identity.RoleContributor)))

		list, err := repo.ListByProject(ctx, project)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "amy@example.com", list[0].UserEmail)
		assert.Equal(t, identity.RoleContributor, list[1].Role)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := repo.FindByUserAndProject(ctx, "bob@example.com", uuid.New())
		assert.ErrorIs(t, err, identity.ErrAuthorizationNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "amy@example.com", project))
		_, err := repo.FindByUserAndProject(ctx, "amy@example.com", project)
		assert.ErrorIs(t, err, identity.ErrAuthorizationNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, "amy@example.com", project), identity.ErrAuthorizationNotFound)
	})
}

// newMockAuthorizationRepository creates a repository over a mocked postgres connection
func newMockAuthorizationRepository(t *testing.T) (*GormAuthorizationRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return NewGormAuthorizationRepository(gormDB), mock, mockDB
}

func TestGormAuthorizationRepository_PostgresQueries(t *testing.T) {
	t.Run("find by user and project", func(t *testing.T) {
		repo, mock, mockDB := newMockAuthorizationRepository(t)
		defer mockDB.Close()

		id := uuid.New()
		project := uuid.New()
		now := time.Now()
		rows := sqlmock.NewRows([]string{"id", "created_at", "updated_at", "user_email", "project_uuid", "role"}).
			AddRow(id, now, now, "user@example.com", project, "admin")

		mock.ExpectQuery(`SELECT \* FROM "project_authorizations" WHERE user_email = \$1 AND project_uuid = \$2 ORDER BY .* LIMIT .*`).
			WithArgs("user@example.com", project, 1).
			WillReturnRows(rows)

		found, err := repo.FindByUserAndProject(context.Background(), "User@Example.com", project)
		require.NoError(t, err)
		assert.Equal(t, id, found.ID)
		assert.Equal(t, identity.RoleAdmin, found.Role)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("upsert on conflict", func(t *testing.T) {
		repo, mock, mockDB := newMockAuthorizationRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`INSERT INTO "project_authorizations" .* ON CONFLICT \("user_email","project_uuid"\) DO UPDATE SET "role"="excluded"."role","updated_at"="excluded"."updated_at"`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Save(context.Background(), newTestAuthorization(t, "user@example.com", uuid.New(), identity.RoleViewer))
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
