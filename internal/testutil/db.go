// Package testutil opens throwaway databases for package tests.
package testutil

import (
	"io"
	"testing"

	"github.com/anonto42/yatube/backend/internal/repositories"
	"github.com/anonto42/yatube/backend/pkg/config"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// QuietLogger discards everything.
func QuietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// NewDB returns a migrated in-memory SQLite database private to the test.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	cfg := &config.Config{
		DatabaseDriver: "sqlite",
		SQLitePath:     "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	}
	db, err := config.OpenSQL(cfg, QuietLogger())
	require.NoError(t, err)
	require.NoError(t, repositories.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}
