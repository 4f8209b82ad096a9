package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Tiliavir/daylog/internal/model"
	"github.com/Tiliavir/daylog/internal/storage"
	"github.com/Tiliavir/daylog/internal/storage/sqlite"
	"github.com/Tiliavir/daylog/internal/storage/storagetest"
)

func openTemp(t *testing.T, path string) *sqlite.Store {
	t.Helper()
	s, err := sqlite.Open(path, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store {
		return openTemp(t, filepath.Join(t.TempDir(), "daylog.db"))
	})
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daylog.db")
	ctx := context.Background()

	s, err := sqlite.Open(path, nil)
	require.NoError(t, err)
	require.NoError(t, s.PutLog(ctx, "u1", model.DayLog{Date: "2026-10-01", Description: "kept"}))
	require.NoError(t, s.Close())

	// Migrations are idempotent on an existing database.
	s2 := openTemp(t, path)
	got, err := s2.GetLog(ctx, "u1", "2026-10-01")
	require.NoError(t, err)
	assert.Equal(t, "kept", got.Description)
}
