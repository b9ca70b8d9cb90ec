// Package testutil opens throwaway databases for package tests.
package testutil

import (
	"testing"

	"jersey-storefront/internal/client"
	"jersey-storefront/internal/config"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB returns a migrated in-memory sqlite database. The pool holds a
// single connection so every query sees the same memory database; inside a
// transaction only the tx handle may be used.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := client.OpenDatabase(config.Database{
		Driver:       "sqlite",
		URL:          "file::memory:?_foreign_keys=on",
		MaxIdleConns: 1,
		MaxOpenConns: 1,
	})
	require.NoError(t, err)
	require.NoError(t, client.Migrate(db))

	t.Cleanup(func() {
		_ = client.CloseDatabase(db)
	})
	return db
}
