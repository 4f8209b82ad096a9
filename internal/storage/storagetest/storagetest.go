// Package storagetest holds the behaviour every storage.Store must share.
package storagetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/daylog/internal/model"
	"github.com/Tiliavir/daylog/internal/storage"
)

const uid = "user-1"

func sampleLog(date string) model.DayLog {
	return model.DayLog{
		Date:           date,
		Projects:       []string{"Alpha", "Beta"},
		Description:    "work on " + date,
		Files:          model.FileList{"a.php", "b.js"},
		FileProjectMap: map[string]string{"a.php": "Alpha", "b.js": "Beta"},
		UserID:         uid,
	}
}

// Run exercises s against the Store contract. newStore must return a fresh,
// empty store for each call.
func Run(t *testing.T, newStore func(t *testing.T) storage.Store) {
	t.Run("put get roundtrip", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		in := sampleLog("2026-10-05")
		require.NoError(t, s.PutLog(ctx, uid, in))

		got, err := s.GetLog(ctx, uid, "2026-10-05")
		require.NoError(t, err)
		assert.Equal(t, in, got)
	})

	t.Run("legacy record keeps nil map", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		in := sampleLog("2026-10-06")
		in.FileProjectMap = nil
		require.NoError(t, s.PutLog(ctx, uid, in))

		got, err := s.GetLog(ctx, uid, "2026-10-06")
		require.NoError(t, err)
		assert.Nil(t, got.FileProjectMap)
	})

	t.Run("missing log", func(t *testing.T) {
		s := newStore(t)
		_, err := s.GetLog(context.Background(), uid, "2026-10-07")
		assert.True(t, errors.Is(err, storage.ErrNotFound))
	})

	t.Run("put overwrites", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.PutLog(ctx, uid, sampleLog("2026-10-08")))
		second := model.DayLog{Date: "2026-10-08", Projects: []string{"Gamma"}, Files: model.FileList{}, UserID: uid}
		require.NoError(t, s.PutLog(ctx, uid, second))

		got, err := s.GetLog(ctx, uid, "2026-10-08")
		require.NoError(t, err)
		assert.Equal(t, []string{"Gamma"}, got.Projects)
		assert.Empty(t, got.Description)
		assert.Nil(t, got.FileProjectMap)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.PutLog(ctx, uid, sampleLog("2026-10-09")))
		require.NoError(t, s.DeleteLog(ctx, uid, "2026-10-09"))
		require.NoError(t, s.DeleteLog(ctx, uid, "2026-10-09"))
		_, err := s.GetLog(ctx, uid, "2026-10-09")
		assert.True(t, errors.Is(err, storage.ErrNotFound))
	})

	t.Run("users are isolated", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.PutLog(ctx, uid, sampleLog("2026-10-10")))
		_, err := s.GetLog(ctx, "user-2", "2026-10-10")
		assert.True(t, errors.Is(err, storage.ErrNotFound))
	})

	t.Run("invalid keys", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		assert.True(t, errors.Is(s.PutLog(ctx, "../x", sampleLog("2026-10-10")), storage.ErrInvalidKey))
		_, err := s.GetLog(ctx, uid, "10/10/2026")
		assert.True(t, errors.Is(err, storage.ErrInvalidKey))
	})

	t.Run("query range sorted and bounded", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		for _, d := range []string{"2026-10-31", "2026-09-30", "2026-10-01", "2026-11-01", "2026-10-15"} {
			require.NoError(t, s.PutLog(ctx, uid, sampleLog(d)))
		}
		logs, err := s.QueryLogs(ctx, uid, "2026-10-01", "2026-10-31")
		require.NoError(t, err)
		var dates []string
		for _, l := range logs {
			dates = append(dates, l.Date)
		}
		assert.Equal(t, []string{"2026-10-01", "2026-10-15", "2026-10-31"}, dates)
	})

	t.Run("query empty range", func(t *testing.T) {
		s := newStore(t)
		logs, err := s.QueryLogs(context.Background(), uid, "2026-10-01", "2026-10-31")
		require.NoError(t, err)
		assert.Empty(t, logs)
	})

	t.Run("batch put", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		batch := []model.DayLog{sampleLog("2026-10-01"), sampleLog("2026-10-02"), sampleLog("2026-10-03")}
		require.NoError(t, s.BatchPutLogs(ctx, uid, batch))
		logs, err := s.QueryLogs(ctx, uid, "2026-10-01", "2026-10-31")
		require.NoError(t, err)
		assert.Len(t, logs, 3)
	})

	t.Run("batch with invalid date writes nothing", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		batch := []model.DayLog{sampleLog("2026-10-01"), sampleLog("not-a-date")}
		assert.Error(t, s.BatchPutLogs(ctx, uid, batch))
		logs, err := s.QueryLogs(ctx, uid, "2026-10-01", "2026-10-31")
		require.NoError(t, err)
		assert.Empty(t, logs)
	})

	t.Run("projects", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		created, err := s.AddProjects(ctx, []string{" Zeta ", "Alpha"})
		require.NoError(t, err)
		require.Len(t, created, 2)
		assert.Equal(t, "Zeta", created[0].Name)
		assert.NotEmpty(t, created[0].ID)

		_, err = s.AddProjects(ctx, []string{"Beta", "Alpha"})
		assert.True(t, errors.Is(err, storage.ErrDuplicateProject))

		_, err = s.AddProjects(ctx, []string{"Beta", "Acme, Inc"})
		assert.True(t, errors.Is(err, model.ErrInvalidProjectName))

		projects, err := s.ListProjects(ctx)
		require.NoError(t, err)
		require.Len(t, projects, 2)
		assert.Equal(t, "Alpha", projects[0].Name)
		assert.Equal(t, "Zeta", projects[1].Name)

		require.NoError(t, s.DeleteProject(ctx, projects[0].ID))
		assert.True(t, errors.Is(s.DeleteProject(ctx, projects[0].ID), storage.ErrNotFound))
		projects, err = s.ListProjects(ctx)
		require.NoError(t, err)
		assert.Len(t, projects, 1)
	})

	t.Run("shares", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		_, err := s.GetShare(ctx, "abc")
		assert.True(t, errors.Is(err, storage.ErrNotFound))

		created := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
		sh := model.ShareSnapshot{
			ID:        "abc",
			OwnerID:   uid,
			Logs:      []model.DayLog{sampleLog("2026-10-01")},
			Year:      2026,
			Month:     10,
			MonthName: "outubro de 2026",
			UserName:  "Ana",
			CreatedAt: created,
			ExpiresAt: created.Add(30 * 24 * time.Hour),
			IsActive:  true,
		}
		require.NoError(t, s.PutShare(ctx, sh))
		got, err := s.GetShare(ctx, "abc")
		require.NoError(t, err)
		assert.Equal(t, sh.Logs, got.Logs)
		assert.True(t, sh.ExpiresAt.Equal(got.ExpiresAt))
		assert.True(t, got.IsActive)
	})

	t.Run("watch delivers initial snapshot and changes", func(t *testing.T) {
		s := newStore(t)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		require.NoError(t, s.PutLog(ctx, uid, sampleLog("2026-10-01")))

		var mu sync.Mutex
		var deliveries [][]model.DayLog
		done := make(chan error, 1)
		go func() {
			done <- s.WatchLogs(ctx, uid, "2026-10-01", "2026-10-31", func(logs []model.DayLog) {
				mu.Lock()
				deliveries = append(deliveries, logs)
				mu.Unlock()
			})
		}()
		count := func() int {
			mu.Lock()
			defer mu.Unlock()
			return len(deliveries)
		}
		require.Eventually(t, func() bool { return count() == 1 }, 2*time.Second, 10*time.Millisecond)

		require.NoError(t, s.PutLog(ctx, uid, sampleLog("2026-10-02")))
		require.Eventually(t, func() bool { return count() >= 2 }, 5*time.Second, 20*time.Millisecond)

		mu.Lock()
		assert.Len(t, deliveries[0], 1)
		assert.Len(t, deliveries[len(deliveries)-1], 2)
		mu.Unlock()

		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("watch did not stop after cancel")
		}
	})
}
