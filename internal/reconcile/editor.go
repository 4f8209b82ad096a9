// Package reconcile keeps every file of a day log assigned to one of the
// day's projects while the log is being edited.
package reconcile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Tiliavir/daylog/internal/classify"
	"github.com/Tiliavir/daylog/internal/model"
)

// Validation errors. They leave the editor unchanged.
var (
	ErrEmptyFileName   = errors.New("file name is empty")
	ErrInvalidFileName = errors.New("file name cannot contain commas")
	ErrDuplicateFile   = errors.New("file already listed for this day")
	ErrUnknownFile     = errors.New("file not listed for this day")
)

// Editor is the detached edit draft of one day log. Pushes into the month
// index never reach an open Editor.
type Editor struct {
	date            string
	userID          string
	projects        []string
	description     string
	files           model.FileList
	fileProjectMap  map[string]string
	fileCategoryMap map[string]string
	defaultProject  string
}

// Open starts editing log for date. A log without a saved file-project map
// gets one synthesized from its project selection.
func Open(date string, log model.DayLog) *Editor {
	l := log.Clone()
	e := &Editor{
		date:            date,
		userID:          l.UserID,
		projects:        l.Projects,
		description:     l.Description,
		files:           l.Files,
		fileProjectMap:  l.FileProjectMap,
		fileCategoryMap: l.FileCategoryMap,
	}
	if e.projects == nil {
		e.projects = []string{}
	}
	if e.files == nil {
		e.files = model.FileList{}
	}
	if e.fileCategoryMap == nil {
		e.fileCategoryMap = map[string]string{}
	}
	if e.fileProjectMap == nil {
		e.fileProjectMap = synthesize(e.files, e.projects)
	}
	e.defaultProject = last(e.projects)
	return e
}

// synthesize assigns legacy files by position: file i goes to project i,
// overflow goes to the last project.
func synthesize(files model.FileList, projects []string) map[string]string {
	m := map[string]string{}
	if len(projects) == 0 {
		return m
	}
	for i, f := range files {
		if i < len(projects) {
			m[f] = projects[i]
		} else {
			m[f] = projects[len(projects)-1]
		}
	}
	return m
}

func last(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return s[len(s)-1]
}

func (e *Editor) Date() string                 { return e.date }
func (e *Editor) Projects() []string           { return append([]string(nil), e.projects...) }
func (e *Editor) Files() []string              { return append([]string(nil), e.files...) }
func (e *Editor) DefaultProject() string       { return e.defaultProject }
func (e *Editor) ProjectOf(file string) string { return e.fileProjectMap[file] }

// Selected reports whether project is part of the selection.
func (e *Editor) Selected(project string) bool {
	for _, p := range e.projects {
		if p == project {
			return true
		}
	}
	return false
}

// SetDescription replaces the description; it is trimmed on save.
func (e *Editor) SetDescription(s string) {
	e.description = s
}

// ToggleProject selects project (appending it, so selection order is kept)
// or deselects it. Files assigned to a deselected project keep pointing at
// it.
func (e *Editor) ToggleProject(project string) error {
	project = strings.TrimSpace(project)
	if project == "" {
		return nil
	}
	if err := model.ValidateProjectName(project); err != nil {
		return err
	}
	if e.Selected(project) {
		kept := e.projects[:0]
		for _, p := range e.projects {
			if p != project {
				kept = append(kept, p)
			}
		}
		e.projects = kept
	} else {
		e.projects = append(e.projects, project)
	}
	e.repinDefault()
	return nil
}

// SetProjects replaces the selection wholesale, keeping the given order.
// An invalid name leaves the selection unchanged.
func (e *Editor) SetProjects(projects []string) error {
	for _, p := range projects {
		if err := model.ValidateProjectName(p); err != nil {
			return err
		}
	}
	e.projects = model.UniqueProjects(projects)
	e.repinDefault()
	return nil
}

// repinDefault moves the default project to the last selected one, but only
// once the current default has left the selection.
func (e *Editor) repinDefault() {
	if e.defaultProject != "" && e.Selected(e.defaultProject) {
		return
	}
	e.defaultProject = last(e.projects)
}

// SetDefaultProject chooses which project new files are assigned to.
func (e *Editor) SetDefaultProject(project string) error {
	if !e.Selected(project) {
		return fmt.Errorf("project %q is not selected", project)
	}
	e.defaultProject = project
	return nil
}

// AddFile appends a file and assigns it to the default project, falling
// back to the first selected project. With no selection it stays
// unassigned.
func (e *Editor) AddFile(name string) error {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return ErrEmptyFileName
	case strings.Contains(name, ","):
		return fmt.Errorf("%w: %q", ErrInvalidFileName, name)
	case e.files.Contains(name):
		return fmt.Errorf("%w: %q", ErrDuplicateFile, name)
	}
	e.files = append(e.files, name)

	target := e.defaultProject
	if target == "" && len(e.projects) > 0 {
		target = e.projects[0]
	}
	if target != "" {
		e.fileProjectMap[name] = target
	}
	return nil
}

// RemoveFile drops a file from the list. Its map entries are left in place;
// every presentation filters the maps by the file list.
func (e *Editor) RemoveFile(name string) error {
	name = strings.TrimSpace(name)
	for i, f := range e.files {
		if f == name {
			e.files = append(e.files[:i], e.files[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownFile, name)
}

// AssignProject overwrites the project of a file.
func (e *Editor) AssignProject(file, project string) {
	e.fileProjectMap[strings.TrimSpace(file)] = strings.TrimSpace(project)
}

// AssignCategory overwrites the category of a file.
func (e *Editor) AssignCategory(file string, c classify.Category) {
	e.fileCategoryMap[strings.TrimSpace(file)] = string(c)
}

// ClearCategory drops a manual category so the extension applies again.
func (e *Editor) ClearCategory(file string) {
	delete(e.fileCategoryMap, strings.TrimSpace(file))
}

// Category resolves the category of a file with overrides applied.
func (e *Editor) Category(file string) classify.Category {
	return classify.Classify(file, e.fileCategoryMap)
}

// DayLog returns the record to persist.
func (e *Editor) DayLog() model.DayLog {
	l := model.DayLog{
		Date:            e.date,
		Projects:        e.projects,
		Description:     strings.TrimSpace(e.description),
		Files:           e.files,
		FileProjectMap:  e.fileProjectMap,
		FileCategoryMap: e.fileCategoryMap,
		UserID:          e.userID,
	}
	return l.Clone()
}
