package reconcile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/daylog/internal/classify"
	"github.com/Tiliavir/daylog/internal/model"
	"github.com/Tiliavir/daylog/internal/reconcile"
)

const day = "2026-02-27"

func TestOpenKeepsSavedMap(t *testing.T) {
	log := model.DayLog{
		Date:           day,
		Projects:       []string{"A", "B"},
		Files:          model.FileList{"x.sql", "y.js"},
		FileProjectMap: map[string]string{"x.sql": "B", "y.js": "B"},
	}
	e := reconcile.Open(day, log)

	assert.Equal(t, "B", e.ProjectOf("x.sql"))
	assert.Equal(t, "B", e.ProjectOf("y.js"))
	assert.Equal(t, "B", e.DefaultProject())
}

func TestOpenSynthesizesLegacyMap(t *testing.T) {
	tests := []struct {
		name     string
		projects []string
		files    model.FileList
		want     map[string]string
	}{
		{"single project", []string{"A"}, model.FileList{"a", "b", "c"}, map[string]string{"a": "A", "b": "A", "c": "A"}},
		{"by position", []string{"A", "B"}, model.FileList{"a", "b"}, map[string]string{"a": "A", "b": "B"}},
		{"overflow to last", []string{"A", "B"}, model.FileList{"a", "b", "c", "d"}, map[string]string{"a": "A", "b": "B", "c": "B", "d": "B"}},
		{"no projects", nil, model.FileList{"a"}, map[string]string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := reconcile.Open(day, model.DayLog{Projects: tt.projects, Files: tt.files})
			assert.Equal(t, tt.want, e.DayLog().FileProjectMap)
		})
	}
}

func TestOpenIsDetached(t *testing.T) {
	log := model.DayLog{
		Projects:       []string{"A"},
		Files:          model.FileList{"a.sql"},
		FileProjectMap: map[string]string{"a.sql": "A"},
	}
	e := reconcile.Open(day, log)
	require.NoError(t, e.AddFile("b.sql"))
	require.NoError(t, e.ToggleProject("B"))

	assert.Equal(t, model.FileList{"a.sql"}, log.Files)
	assert.Equal(t, []string{"A"}, log.Projects)
	assert.Equal(t, map[string]string{"a.sql": "A"}, log.FileProjectMap)
}

func TestAddFile(t *testing.T) {
	e := reconcile.Open(day, model.DayLog{Projects: []string{"A", "B"}})

	require.NoError(t, e.AddFile("  report.sql "))
	assert.Equal(t, []string{"report.sql"}, e.Files())
	assert.Equal(t, "B", e.ProjectOf("report.sql"), "new files go to the default project")

	err := e.AddFile("report.sql")
	assert.ErrorIs(t, err, reconcile.ErrDuplicateFile)
	assert.Equal(t, []string{"report.sql"}, e.Files(), "duplicate leaves the list unchanged")

	assert.ErrorIs(t, e.AddFile("   "), reconcile.ErrEmptyFileName)
	assert.ErrorIs(t, e.AddFile("a.sql,b.sql"), reconcile.ErrInvalidFileName)
	assert.Equal(t, []string{"report.sql"}, e.Files())
}

func TestAddFileWithoutProjects(t *testing.T) {
	e := reconcile.Open(day, model.DayLog{})
	require.NoError(t, e.AddFile("notes.txt"))

	assert.Empty(t, e.ProjectOf("notes.txt"))
	_, mapped := e.DayLog().FileProjectMap["notes.txt"]
	assert.False(t, mapped)
}

func TestDefaultProjectPinning(t *testing.T) {
	e := reconcile.Open(day, model.DayLog{Projects: []string{"A"}})
	assert.Equal(t, "A", e.DefaultProject())

	require.NoError(t, e.ToggleProject("B"))
	assert.Equal(t, "A", e.DefaultProject(), "still valid, so not reassigned")

	require.NoError(t, e.ToggleProject("C"))
	require.NoError(t, e.ToggleProject("A"))
	assert.Equal(t, "C", e.DefaultProject(), "re-pinned to the last selected project")

	require.NoError(t, e.SetDefaultProject("B"))
	require.NoError(t, e.AddFile("x.js"))
	assert.Equal(t, "B", e.ProjectOf("x.js"))

	assert.Error(t, e.SetDefaultProject("Z"))

	require.NoError(t, e.SetProjects(nil))
	assert.Empty(t, e.DefaultProject())
}

func TestDeselectKeepsAssignments(t *testing.T) {
	e := reconcile.Open(day, model.DayLog{Projects: []string{"A", "B"}})
	require.NoError(t, e.AddFile("x.sql"))
	e.AssignProject("x.sql", "A")

	require.NoError(t, e.ToggleProject("A"))

	assert.Equal(t, []string{"B"}, e.Projects())
	assert.Equal(t, "A", e.DayLog().FileProjectMap["x.sql"], "no cascading reassignment")
}

func TestRemoveFileLeavesOrphans(t *testing.T) {
	e := reconcile.Open(day, model.DayLog{Projects: []string{"A"}})
	require.NoError(t, e.AddFile("x.sql"))
	e.AssignCategory("x.sql", classify.MII)

	require.NoError(t, e.RemoveFile("x.sql"))
	assert.Empty(t, e.Files())

	log := e.DayLog()
	assert.Equal(t, "A", log.FileProjectMap["x.sql"])
	assert.Equal(t, "mii", log.FileCategoryMap["x.sql"])

	assert.ErrorIs(t, e.RemoveFile("x.sql"), reconcile.ErrUnknownFile)
}

func TestAssignCategory(t *testing.T) {
	e := reconcile.Open(day, model.DayLog{})
	require.NoError(t, e.AddFile("notes.txt"))
	assert.Equal(t, classify.Other, e.Category("notes.txt"))

	e.AssignCategory("notes.txt", classify.MII)
	assert.Equal(t, classify.MII, e.Category("notes.txt"))

	e.ClearCategory("notes.txt")
	assert.Equal(t, classify.Other, e.Category("notes.txt"))
}

func TestSetProjectsDedupes(t *testing.T) {
	e := reconcile.Open(day, model.DayLog{})
	require.NoError(t, e.SetProjects([]string{"B", " A ", "B", ""}))
	assert.Equal(t, []string{"B", "A"}, e.Projects())
	assert.Equal(t, "A", e.DefaultProject())
}

func TestProjectNamesRejectCommas(t *testing.T) {
	e := reconcile.Open(day, model.DayLog{Projects: []string{"A"}})

	assert.ErrorIs(t, e.ToggleProject("Acme, Inc"), model.ErrInvalidProjectName)
	assert.ErrorIs(t, e.SetProjects([]string{"B", "Acme, Inc"}), model.ErrInvalidProjectName)
	assert.Equal(t, []string{"A"}, e.Projects(), "rejected names leave the selection unchanged")
	assert.Equal(t, "A", e.DefaultProject())
}

func TestDayLogNormalizes(t *testing.T) {
	e := reconcile.Open(day, model.DayLog{UserID: "u1"})
	e.SetDescription("  fixed the import  \n")
	log := e.DayLog()

	assert.Equal(t, day, log.Date)
	assert.Equal(t, "u1", log.UserID)
	assert.Equal(t, "fixed the import", log.Description)
	assert.NotNil(t, log.FileProjectMap)
}

func TestGroups(t *testing.T) {
	log := model.DayLog{
		Projects: []string{"A", "B"},
		Files:    model.FileList{"a.sql", "b.js", "c.sql", "d.trx", "e.txt", "f.css"},
		FileProjectMap: map[string]string{
			"a.sql": "B", "b.js": "A", "c.sql": "B", "d.trx": "A", "f.css": "B",
		},
		FileCategoryMap: map[string]string{"f.css": "procedures"},
	}
	got := reconcile.GroupLog(log)

	want := []reconcile.ProjectGroup{
		{Project: "B", Categories: []reconcile.CategoryGroup{
			{Category: classify.Procedures, Files: []string{"a.sql", "c.sql", "f.css"}},
		}},
		{Project: "A", Categories: []reconcile.CategoryGroup{
			{Category: classify.WebApplication, Files: []string{"b.js"}},
			{Category: classify.MII, Files: []string{"d.trx"}},
		}},
		{Project: "", Categories: []reconcile.CategoryGroup{
			{Category: classify.Other, Files: []string{"e.txt"}},
		}},
	}
	assert.Equal(t, want, got)
	assert.Equal(t, got, reconcile.Open(day, log).Groups())
}
