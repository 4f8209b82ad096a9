package reconcile

import (
	"github.com/Tiliavir/daylog/internal/classify"
	"github.com/Tiliavir/daylog/internal/model"
)

// CategoryGroup lists the files of one category in file-list order.
type CategoryGroup struct {
	Category classify.Category
	Files    []string
}

// ProjectGroup lists the categories of one project in order of first
// appearance. Project is empty for unassigned files.
type ProjectGroup struct {
	Project    string
	Categories []CategoryGroup
}

// Groups returns the files of the draft grouped by project, then category.
func (e *Editor) Groups() []ProjectGroup {
	return Group(e.files, e.fileProjectMap, e.fileCategoryMap)
}

// GroupLog groups a stored log the same way the editor does.
func GroupLog(l model.DayLog) []ProjectGroup {
	return Group(l.Files, l.FileProjectMap, l.FileCategoryMap)
}

// Group applies the file-project map and the classifier to every file, in
// file-list order.
func Group(files []string, fileProjects, fileCategories map[string]string) []ProjectGroup {
	var groups []ProjectGroup
	projectIdx := map[string]int{}
	for _, f := range files {
		p := fileProjects[f]
		pi, ok := projectIdx[p]
		if !ok {
			pi = len(groups)
			projectIdx[p] = pi
			groups = append(groups, ProjectGroup{Project: p})
		}

		c := classify.Classify(f, fileCategories)
		g := &groups[pi]
		ci := -1
		for i := range g.Categories {
			if g.Categories[i].Category == c {
				ci = i
				break
			}
		}
		if ci < 0 {
			g.Categories = append(g.Categories, CategoryGroup{Category: c})
			ci = len(g.Categories) - 1
		}
		g.Categories[ci].Files = append(g.Categories[ci].Files, f)
	}
	return groups
}
