package counting

import (
	"path/filepath"
	"testing"

	"github.com/driftwood-blog/backend/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a throwaway sqlite database with the counting schema.
// A single pooled connection serializes concurrent writers the way the
// production database's conflict resolution would.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "counting_test.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.PathCounter{},
		&models.PathReactionCounter{},
		&models.UniqueViewEvent{},
		&models.UniqueReactionEvent{},
	))

	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db
}
