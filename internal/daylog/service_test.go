package daylog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Tiliavir/daylog/internal/model"
	"github.com/Tiliavir/daylog/internal/reconcile"
	"github.com/Tiliavir/daylog/internal/storage"
	"github.com/Tiliavir/daylog/internal/timecalc"
)

const uid = "u1"

func newService(t *testing.T) (*Service, storage.Store) {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir(), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return NewService(store, zaptest.NewLogger(t)), store
}

func TestSaveNormalizes(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	stored, err := svc.Save(ctx, uid, model.DayLog{
		Date:        "2026-10-01",
		Projects:    []string{"Alpha"},
		Description: "  deploy  ",
		UserID:      "someone-else",
	})
	require.NoError(t, err)
	assert.True(t, stored)

	got, err := store.GetLog(ctx, uid, "2026-10-01")
	require.NoError(t, err)
	assert.Equal(t, "deploy", got.Description)
	assert.Equal(t, uid, got.UserID)
}

func TestSaveListsEachProjectOnce(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, uid, model.DayLog{
		Date:     "2026-10-01",
		Projects: []string{"Alpha", " Alpha ", "Beta", "Alpha"},
	})
	require.NoError(t, err)

	got, err := store.GetLog(ctx, uid, "2026-10-01")
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "Beta"}, got.Projects)
	assert.Equal(t, timecalc.DailyHours, timecalc.AllocateHours(got.Projects).Total())
}

func TestSaveEmptyDeletes(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	_, err := svc.Save(ctx, uid, model.DayLog{Date: "2026-10-01", Description: "x"})
	require.NoError(t, err)

	stored, err := svc.Save(ctx, uid, model.DayLog{Date: "2026-10-01", Description: "   ", Files: model.FileList{}})
	require.NoError(t, err)
	assert.False(t, stored)

	_, err = store.GetLog(ctx, uid, "2026-10-01")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Saving an empty log for a day that never existed is also fine.
	stored, err = svc.Save(ctx, uid, model.DayLog{Date: "2026-10-02"})
	require.NoError(t, err)
	assert.False(t, stored)
}

func TestDeleteIdempotent(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	require.NoError(t, svc.Delete(ctx, uid, "2026-10-03"))
	require.NoError(t, svc.Delete(ctx, uid, "2026-10-03"))
}

func TestGetMissing(t *testing.T) {
	svc, _ := newService(t)
	l, found, err := svc.Get(context.Background(), uid, "2026-10-04")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, "2026-10-04", l.Date)
	assert.True(t, l.IsEmpty())
}

func TestEditAndCommit(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	e, err := svc.Edit(ctx, uid, "2026-10-05")
	require.NoError(t, err)
	require.NoError(t, e.ToggleProject("Alpha"))
	require.NoError(t, e.AddFile("a.sql"))
	assert.ErrorIs(t, e.AddFile("a.sql"), reconcile.ErrDuplicateFile)
	assert.Equal(t, []string{"a.sql"}, e.Files())

	stored, err := svc.Commit(ctx, uid, e)
	require.NoError(t, err)
	assert.True(t, stored)

	got, found, err := svc.Get(ctx, uid, "2026-10-05")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, map[string]string{"a.sql": "Alpha"}, got.FileProjectMap)
}

func TestDuplicate(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	src := model.DayLog{
		Date:            "2026-10-06",
		Projects:        []string{"Alpha", "Beta"},
		Description:     "review",
		Files:           model.FileList{"x.js"},
		FileProjectMap:  map[string]string{"x.js": "Beta"},
		FileCategoryMap: map[string]string{"x.js": "mii"},
	}
	_, err := svc.Save(ctx, uid, src)
	require.NoError(t, err)

	_, err = svc.Duplicate(ctx, uid, "2026-10-06", "  ")
	assert.ErrorIs(t, err, ErrEmptyTarget)
	_, err = svc.Duplicate(ctx, uid, "2026-10-06", "2026-10-06")
	assert.ErrorIs(t, err, ErrSameDate)
	_, err = svc.Duplicate(ctx, uid, "2026-10-06", "06/10/2026")
	assert.Error(t, err)
	_, err = svc.Duplicate(ctx, uid, "2026-10-01", "2026-10-02")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	dup, err := svc.Duplicate(ctx, uid, "2026-10-06", "2026-10-07")
	require.NoError(t, err)
	assert.Equal(t, "2026-10-07", dup.Date)

	got, err := store.GetLog(ctx, uid, "2026-10-07")
	require.NoError(t, err)
	assert.Equal(t, src.Projects, got.Projects)
	assert.Equal(t, src.FileProjectMap, got.FileProjectMap)
	assert.Equal(t, src.FileCategoryMap, got.FileCategoryMap)
}

func TestImport(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	n, err := svc.Import(ctx, uid, nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = svc.Import(ctx, uid, []model.DayLog{
		{Date: "2026-10-01", Projects: []string{"Alpha"}},
		{Date: "2026-10-02"},
		{Date: "2026-10-03", Description: "first"},
		{Date: "2026-10-03", Description: " notes "},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	logs, err := svc.Month(ctx, uid, timecalc.Month{Year: 2026, Month: 10})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "notes", logs[1].Description)
	assert.Equal(t, uid, logs[1].UserID)

	_, err = svc.Import(ctx, uid, []model.DayLog{
		{Date: "2026-10-04", Projects: []string{"A", "A"}, Description: "twice"},
	})
	require.NoError(t, err)
	got, _, err := svc.Get(ctx, uid, "2026-10-04")
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, got.Projects)
}

func TestProjects(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	created, err := svc.SeedProjects(ctx, []string{"Zeta", "Alpha"})
	require.NoError(t, err)
	assert.Len(t, created, 2)

	created, err = svc.SeedProjects(ctx, []string{"Other"})
	require.NoError(t, err)
	assert.Empty(t, created, "seeding only happens on an empty list")

	_, err = svc.AddProjects(ctx, "Beta")
	require.NoError(t, err)
	_, err = svc.AddProjects(ctx, "Beta")
	assert.ErrorIs(t, err, storage.ErrDuplicateProject)

	names, err := svc.ProjectNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "Beta", "Zeta"}, names)

	_, err = svc.Save(ctx, uid, model.DayLog{Date: "2026-10-01", Projects: []string{"Beta"}})
	require.NoError(t, err)

	deleted, err := svc.DeleteProject(ctx, "Beta")
	require.NoError(t, err)
	assert.Equal(t, "Beta", deleted.Name)
	_, err = svc.DeleteProject(ctx, "Beta")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Logs keep referencing the deleted project.
	l, _, err := svc.Get(ctx, uid, "2026-10-01")
	require.NoError(t, err)
	assert.Equal(t, []string{"Beta"}, l.Projects)
}
