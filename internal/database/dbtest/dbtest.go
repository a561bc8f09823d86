// Package dbtest opens throwaway stores for repository tests.
package dbtest

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/taqdeer/taqdeer-api/internal/database"
)

// SQLite returns a migrated in-memory database that lives for the test.
func SQLite(t testing.TB, models ...interface{}) database.Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)

	svc := database.Wrap(db, nil)
	require.NoError(t, database.AutoMigrate(svc, models...))
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}
