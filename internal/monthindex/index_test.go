package monthindex

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Tiliavir/daylog/internal/model"
	"github.com/Tiliavir/daylog/internal/reconcile"
	"github.com/Tiliavir/daylog/internal/storage"
	"github.com/Tiliavir/daylog/internal/timecalc"
)

var october = timecalc.Month{Year: 2026, Month: time.October}

func TestReplace(t *testing.T) {
	x := New(october)
	x.Replace([]model.DayLog{
		{Date: "2026-10-02", Description: "b"},
		{Date: "2026-09-30", Description: "outside"},
		{Date: "2026-10-01", Description: "a"},
	})
	assert.Equal(t, 2, x.Len())
	logs := x.Logs()
	assert.Equal(t, "2026-10-01", logs[0].Date)
	assert.Equal(t, "2026-10-02", logs[1].Date)

	_, ok := x.Get("2026-09-30")
	assert.False(t, ok)

	x.Replace(nil)
	assert.Zero(t, x.Len())
	assert.Equal(t, 2, x.Version())
}

func TestGetIsDetached(t *testing.T) {
	x := New(october)
	x.Replace([]model.DayLog{{Date: "2026-10-01", Projects: []string{"A"}}})

	l, ok := x.Get("2026-10-01")
	require.True(t, ok)
	l.Projects[0] = "changed"

	again, _ := x.Get("2026-10-01")
	assert.Equal(t, "A", again.Projects[0])
}

func TestDraftSurvivesPush(t *testing.T) {
	x := New(october)
	x.Replace([]model.DayLog{{Date: "2026-10-01", Projects: []string{"A"}, Description: "old"}})

	l, _ := x.Get("2026-10-01")
	draft := reconcile.Open(l.Date, l)
	draft.SetDescription("mine")

	x.Replace([]model.DayLog{{Date: "2026-10-01", Projects: []string{"B"}, Description: "theirs"}})
	assert.Equal(t, "mine", draft.DayLog().Description)
	assert.Equal(t, []string{"A"}, draft.Projects())
}

func TestSubscribe(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir(), zaptest.NewLogger(t))
	require.NoError(t, err)
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, store.PutLog(ctx, "u1", model.DayLog{Date: "2026-10-01", Description: "a"}))

	x := New(october)
	done := make(chan error, 1)
	go func() { done <- x.Subscribe(ctx, store, "u1") }()

	require.Eventually(t, func() bool { return x.Len() == 1 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, store.PutLog(ctx, "u1", model.DayLog{Date: "2026-10-15", Description: "b"}))
	require.Eventually(t, func() bool { return x.Len() == 2 }, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, store.DeleteLog(ctx, "u1", "2026-10-01"))
	require.Eventually(t, func() bool { return x.Len() == 1 }, 5*time.Second, 20*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
