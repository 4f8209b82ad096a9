package report

import (
	"strings"

	"github.com/Tiliavir/daylog/internal/model"
	"github.com/Tiliavir/daylog/internal/timecalc"
)

// maxSummaryDescriptions is how many descriptions a project summary quotes.
const maxSummaryDescriptions = 3

// ProjectSummary is the summary-by-project entry of one project.
type ProjectSummary struct {
	Project      string
	Hours        int
	Descriptions []string
	// More is set when the project has more descriptions than quoted.
	More bool
}

// SummaryByProject totals allocated hours per project. Projects appear in
// the order they are first seen across the date-ordered days.
func SummaryByProject(logs []model.DayLog) []ProjectSummary {
	idx := map[string]int{}
	var out []ProjectSummary
	for _, l := range Sorted(logs) {
		hours := timecalc.AllocateHours(l.Projects)
		desc := strings.TrimSpace(l.Description)
		for _, p := range l.Projects {
			i, ok := idx[p]
			if !ok {
				i = len(out)
				idx[p] = i
				out = append(out, ProjectSummary{Project: p})
			}
			s := &out[i]
			s.Hours += hours[p]
			if desc == "" {
				continue
			}
			if len(s.Descriptions) < maxSummaryDescriptions {
				s.Descriptions = append(s.Descriptions, desc)
			} else {
				s.More = true
			}
		}
	}
	return out
}

// ProjectHours is the hour total of one project.
type ProjectHours struct {
	Project string
	Hours   int
}

// Totals is the hours view of a share snapshot.
type Totals struct {
	Hours     int
	ByProject []ProjectHours
}

// HoursTotals sums allocated hours overall and per project (first
// appearance order).
func HoursTotals(logs []model.DayLog) Totals {
	var t Totals
	for _, s := range SummaryByProject(logs) {
		t.Hours += s.Hours
		t.ByProject = append(t.ByProject, ProjectHours{Project: s.Project, Hours: s.Hours})
	}
	return t
}
