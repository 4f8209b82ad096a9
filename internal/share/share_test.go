package share

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Tiliavir/daylog/internal/model"
	"github.com/Tiliavir/daylog/internal/storage"
	"github.com/Tiliavir/daylog/internal/timecalc"
)

var october = timecalc.Month{Year: 2026, Month: time.October}

func setup(t *testing.T) (*Service, storage.Store, *time.Time) {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir(), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	svc := NewService(store, 24*time.Hour, zaptest.NewLogger(t))
	svc.now = func() time.Time { return now }
	return svc, store, &now
}

func TestCreateAndFetch(t *testing.T) {
	svc, store, _ := setup(t)
	ctx := context.Background()
	require.NoError(t, store.PutLog(ctx, "u1", model.DayLog{Date: "2026-10-02", Description: "b"}))
	require.NoError(t, store.PutLog(ctx, "u1", model.DayLog{Date: "2026-10-01", Description: "a"}))
	require.NoError(t, store.PutLog(ctx, "u1", model.DayLog{Date: "2026-11-01", Description: "next month"}))

	snap, err := svc.Create(ctx, "u1", "Ana", october)
	require.NoError(t, err)
	assert.Equal(t, ID("u1", october), snap.ID)
	assert.Equal(t, "outubro de 2026", snap.MonthName)
	assert.True(t, snap.IsActive)
	require.Len(t, snap.Logs, 2)
	assert.Equal(t, "2026-10-01", snap.Logs[0].Date)

	got, err := svc.Fetch(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.UserName)
	assert.Equal(t, october, Month(got))
}

func TestSnapshotIsFrozen(t *testing.T) {
	svc, store, _ := setup(t)
	ctx := context.Background()
	require.NoError(t, store.PutLog(ctx, "u1", model.DayLog{Date: "2026-10-01", Description: "before"}))
	snap, err := svc.Create(ctx, "u1", "Ana", october)
	require.NoError(t, err)

	require.NoError(t, store.PutLog(ctx, "u1", model.DayLog{Date: "2026-10-01", Description: "after"}))
	got, err := svc.Fetch(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, "before", got.Logs[0].Description)
}

func TestRegenerateOverwrites(t *testing.T) {
	svc, store, now := setup(t)
	ctx := context.Background()
	first, err := svc.Create(ctx, "u1", "Ana", october)
	require.NoError(t, err)
	require.NoError(t, svc.Revoke(ctx, "u1", first.ID))

	*now = now.Add(time.Hour)
	require.NoError(t, store.PutLog(ctx, "u1", model.DayLog{Date: "2026-10-05", Description: "new"}))
	second, err := svc.Create(ctx, "u1", "Ana", october)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	got, err := svc.Fetch(ctx, second.ID)
	require.NoError(t, err, "regeneration re-activates the link")
	assert.Len(t, got.Logs, 1)
	assert.NotEqual(t, ID("u2", october), second.ID)
	assert.NotEqual(t, ID("u1", october.Next()), second.ID)
}

func TestFetchStates(t *testing.T) {
	svc, _, now := setup(t)
	ctx := context.Background()

	_, err := svc.Fetch(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Fetch(ctx, "../etc")
	assert.ErrorIs(t, err, ErrNotFound)

	snap, err := svc.Create(ctx, "u1", "Ana", october)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, "u1", snap.ID))
	_, err = svc.Fetch(ctx, snap.ID)
	assert.ErrorIs(t, err, ErrDisabled)

	// Expiry wins over the active flag.
	*now = now.Add(25 * time.Hour)
	_, err = svc.Fetch(ctx, snap.ID)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestExpiredActiveShare(t *testing.T) {
	svc, _, now := setup(t)
	ctx := context.Background()
	snap, err := svc.Create(ctx, "u1", "Ana", october)
	require.NoError(t, err)

	*now = now.Add(48 * time.Hour)
	got, err := svc.Fetch(ctx, snap.ID)
	assert.ErrorIs(t, err, ErrExpired)
	assert.Empty(t, got.Logs)
}

func TestRevokeRules(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()
	snap, err := svc.Create(ctx, "u1", "Ana", october)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Revoke(ctx, "u2", snap.ID), ErrNotOwner)
	assert.ErrorIs(t, svc.Revoke(ctx, "u1", "missing"), ErrNotFound)
}
