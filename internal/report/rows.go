// Package report derives read-only views of a set of day logs: table rows,
// per-project summaries, file details and the exported workbook. It returns
// structured data; markup is left to the render package.
package report

import (
	"sort"

	"github.com/Tiliavir/daylog/internal/classify"
	"github.com/Tiliavir/daylog/internal/model"
	"github.com/Tiliavir/daylog/internal/timecalc"
)

// NoProject labels files without a project assignment.
const NoProject = "Sem projeto"

// NoDescription is shown for days logged without a description.
const NoDescription = "Sem descrição"

// DayRow is one day of the table and Teams views.
type DayRow struct {
	Date        string
	ShortDate   string
	LongDate    string
	Projects    []string
	Hours       timecalc.Allocation
	Description string
	Files       []string
}

// Sorted returns a copy of logs in ascending date order.
func Sorted(logs []model.DayLog) []model.DayLog {
	out := make([]model.DayLog, len(logs))
	copy(out, logs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Rows builds one DayRow per log, in date order.
func Rows(logs []model.DayLog) []DayRow {
	sorted := Sorted(logs)
	rows := make([]DayRow, 0, len(sorted))
	for _, l := range sorted {
		rows = append(rows, DayRow{
			Date:        l.Date,
			ShortDate:   timecalc.ShortDate(l.Date),
			LongDate:    timecalc.LongDate(l.Date),
			Projects:    append([]string(nil), l.Projects...),
			Hours:       timecalc.AllocateHours(l.Projects),
			Description: l.Description,
			Files:       append([]string(nil), l.Files...),
		})
	}
	return rows
}

// FileDetail is one (day, file) pair with its resolved project and category.
type FileDetail struct {
	Date        string
	Project     string
	Category    classify.Category
	File        string
	Description string
}

// Details lists every file of every day that has a file-project map. Legacy
// days without one are skipped.
func Details(logs []model.DayLog) []FileDetail {
	var out []FileDetail
	for _, l := range Sorted(logs) {
		if l.FileProjectMap == nil {
			continue
		}
		for _, f := range l.Files {
			project := l.FileProjectMap[f]
			if project == "" {
				project = NoProject
			}
			out = append(out, FileDetail{
				Date:        l.Date,
				Project:     project,
				Category:    classify.Classify(f, l.FileCategoryMap),
				File:        f,
				Description: l.Description,
			})
		}
	}
	return out
}

// Count is a file count keyed by project name or category.
type Count struct {
	Key   string
	Files int
}

// FileStats counts details per project and per category, in first
// appearance order.
func FileStats(details []FileDetail) (byProject, byCategory []Count) {
	return countBy(details, func(d FileDetail) string { return d.Project }),
		countBy(details, func(d FileDetail) string { return string(d.Category) })
}

func countBy(details []FileDetail, key func(FileDetail) string) []Count {
	idx := map[string]int{}
	var out []Count
	for _, d := range details {
		k := key(d)
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, Count{Key: k})
		}
		out[i].Files++
	}
	return out
}
