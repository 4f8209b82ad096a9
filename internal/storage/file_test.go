package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Tiliavir/daylog/internal/model"
	"github.com/Tiliavir/daylog/internal/storage"
	"github.com/Tiliavir/daylog/internal/storage/storagetest"
)

func newFileStore(t *testing.T, base string) *storage.FileStore {
	t.Helper()
	s, err := storage.NewFileStore(base, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestFileStore(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store {
		return newFileStore(t, t.TempDir())
	})
}

func TestFileStoreLayout(t *testing.T) {
	base := t.TempDir()
	s := newFileStore(t, base)
	require.NoError(t, s.PutLog(context.Background(), "u1", model.DayLog{
		Date:  "2026-02-27",
		Files: model.FileList{"a.php", "b.js"},
	}))

	data, err := os.ReadFile(filepath.Join(base, "users", "u1", "logs", "2026", "02", "27.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"files": "a.php,b.js"`)
	assert.Contains(t, string(data), `"fileProjectMap": null`)

	leftovers, err := filepath.Glob(filepath.Join(base, "users", "u1", "logs", "2026", "02", "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers, "temp files should not remain")
}

func TestFileStoreCorruptBackup(t *testing.T) {
	base := t.TempDir()
	s := newFileStore(t, base)
	dir := filepath.Join(base, "users", "u1", "logs", "2026", "03")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	path := filepath.Join(dir, "01.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := s.GetLog(context.Background(), "u1", "2026-03-01")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt JSON")

	_, statErr := os.Stat(path + ".corrupt")
	assert.NoError(t, statErr, "backup file should exist")
}

func TestFileStoreCorruptShareStaysInPlace(t *testing.T) {
	base := t.TempDir()
	s := newFileStore(t, base)
	dir := filepath.Join(base, "shares")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	path := filepath.Join(dir, "abc.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	for i := 0; i < 2; i++ {
		_, err := s.GetShare(context.Background(), "abc")
		require.Error(t, err)
		assert.NotErrorIs(t, err, storage.ErrNotFound, "fetch %d", i)
		assert.Contains(t, err.Error(), "corrupt JSON")
	}
	_, statErr := os.Stat(path)
	assert.NoError(t, statErr)
	_, statErr = os.Stat(path + ".corrupt")
	assert.True(t, os.IsNotExist(statErr))
}

func TestValidateKey(t *testing.T) {
	assert.NoError(t, storage.ValidateKey("abc-123"))
	for _, k := range []string{"", ".", "..", "a/b", `a\b`} {
		assert.ErrorIs(t, storage.ValidateKey(k), storage.ErrInvalidKey, k)
	}
}

func TestNormalizeProjectNames(t *testing.T) {
	got, err := storage.NormalizeProjectNames([]string{" A ", "B"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, got)

	_, err = storage.NormalizeProjectNames([]string{"A", " "})
	assert.ErrorIs(t, err, storage.ErrInvalidKey)

	_, err = storage.NormalizeProjectNames([]string{"A", "Acme, Inc"})
	assert.ErrorIs(t, err, model.ErrInvalidProjectName)
	_, err = storage.NormalizeProjectNames([]string{"A", "A "})
	assert.ErrorIs(t, err, storage.ErrDuplicateProject)
}
