package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/app"
	"github.com/marketplace/backend/internal/domain/catalog"
	"github.com/marketplace/backend/internal/domain/identity"
	"github.com/marketplace/backend/internal/domain/template"
	"github.com/marketplace/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an in-memory SQLite database with every table migrated.
// A single connection keeps the memory database alive across statements.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func newTestApp(t *testing.T, db *gorm.DB, code string, project uuid.UUID) *app.App {
	t.Helper()
	a, err := app.NewApp(code, project, app.PlatformWeniFlows, "creator@example.com")
	require.NoError(t, err)
	a.Config.Set("title", "My app")
	require.NoError(t, NewGormAppRepository(db).Create(context.Background(), a))
	return a
}

func newTestCatalog(t *testing.T, db *gorm.DB, appID uuid.UUID, externalID string) *catalog.Catalog {
	t.Helper()
	c, err := catalog.NewCatalog(appID, externalID, "Catalog "+externalID, "commerce", "creator@example.com")
	require.NoError(t, err)
	require.NoError(t, NewGormCatalogRepository(db).Create(context.Background(), c))
	return c
}

func newTestTemplate(t *testing.T, db *gorm.DB, appID uuid.UUID, name, createdBy string) *template.Message {
	t.Helper()
	m, err := template.NewMessage(appID, name, template.CategoryUtility, createdBy)
	require.NoError(t, err)
	require.NoError(t, NewGormTemplateRepository(db).Create(context.Background(), m))
	return m
}

func newTestAuthorization(t *testing.T, email string, project uuid.UUID, role identity.Role) *identity.ProjectAuthorization {
	t.Helper()
	a, err := identity.NewProjectAuthorization(email, project, role)
	require.NoError(t, err)
	return a
}
