// Package storetest provides an in-memory SQLite store for tests.
package storetest

import (
	"context"
	"testing"

	"restaurant-service/internal/store"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New returns a migrated store backed by a private in-memory database.
// Foreign keys are enforced, as they are on the real servers.
func New(t testing.TB) *store.Store {
	t.Helper()

	orm, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := orm.DB()
	require.NoError(t, err)
	// every connection would get its own empty database
	sqlDB.SetMaxOpenConns(1)

	s, err := store.New(orm, "sqlite3")
	require.NoError(t, err)
	require.NoError(t, s.AutoMigrate(context.Background()))

	t.Cleanup(func() { _ = s.Close() })
	return s
}
