// Package render turns day logs and report rows into terminal views, HTML
// and Teams text.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Tiliavir/daylog/internal/model"
	"github.com/Tiliavir/daylog/internal/timecalc"
)

// maxListedFiles is how many files a day card shows before "+N mais...".
const maxListedFiles = 3

// EmptyDay is the list-view placeholder of a weekday without an entry.
const EmptyDay = "Sem registro"

var (
	colorPrimary = lipgloss.Color("#89B4FA")
	colorSubtle  = lipgloss.Color("#6C7086")
	colorPill    = lipgloss.Color("#313244")
	colorAccent  = lipgloss.Color("#A6E3A1")
)

// Styles are the lipgloss styles of the terminal views.
type Styles struct {
	Header  lipgloss.Style
	Weekday lipgloss.Style
	Day     lipgloss.Style
	Weekend lipgloss.Style
	Today   lipgloss.Style
	Pill    lipgloss.Style
	Muted   lipgloss.Style
	Box     lipgloss.Style
}

// DefaultStyles returns the styles used by the CLI.
func DefaultStyles() Styles {
	return Styles{
		Header:  lipgloss.NewStyle().Bold(true).Foreground(colorPrimary),
		Weekday: lipgloss.NewStyle().Foreground(colorSubtle).Bold(true),
		Day:     lipgloss.NewStyle().Bold(true),
		Weekend: lipgloss.NewStyle().Foreground(colorSubtle),
		Today:   lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
		Pill:    lipgloss.NewStyle().Background(colorPill).Padding(0, 1),
		Muted:   lipgloss.NewStyle().Foreground(colorSubtle).Italic(true),
		Box: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(0, 1),
	}
}

// Pills returns "Nh Project" labels in selection order.
func Pills(projects []string) []string {
	hours := timecalc.AllocateHours(projects)
	pills := make([]string, len(projects))
	for i, p := range projects {
		pills[i] = fmt.Sprintf("%dh %s", hours[p], p)
	}
	return pills
}

// FilePreview lists up to maxListedFiles names and a "+N mais..." marker.
func FilePreview(files []string) []string {
	if len(files) <= maxListedFiles {
		return append([]string(nil), files...)
	}
	out := append([]string(nil), files[:maxListedFiles]...)
	return append(out, fmt.Sprintf("+%d mais...", len(files)-maxListedFiles))
}

// DayCard renders the body of one day: pills, description and files.
func (s Styles) DayCard(l model.DayLog) string {
	var lines []string
	if len(l.Projects) > 0 {
		pills := Pills(l.Projects)
		for i, p := range pills {
			pills[i] = s.Pill.Render(p)
		}
		lines = append(lines, strings.Join(pills, " "))
	}
	if l.Description != "" {
		lines = append(lines, l.Description)
	}
	for _, f := range FilePreview(l.Files) {
		lines = append(lines, s.Muted.Render("  "+f))
	}
	return strings.Join(lines, "\n")
}

// List renders every weekday of m, with a placeholder for days without an
// entry.
func (s Styles) List(m timecalc.Month, logs []model.DayLog) string {
	byDate := indexByDate(logs)
	var blocks []string
	blocks = append(blocks, s.Header.Render(m.MonthName()))
	for _, date := range m.Dates() {
		t, _ := timecalc.ParseDate(date)
		if timecalc.IsWeekend(t) {
			continue
		}
		title := s.Day.Render(timecalc.LongDate(date))
		l, ok := byDate[date]
		if !ok {
			blocks = append(blocks, title+"\n"+s.Muted.Render(EmptyDay))
			continue
		}
		blocks = append(blocks, title+"\n"+s.DayCard(l))
	}
	return strings.Join(blocks, "\n\n")
}

// calendarCellWidth fits "6h Project" pills truncated to the cell.
const calendarCellWidth = 14

// Calendar renders m as a Sunday-first grid. Each cell carries the day
// number and its hour pills; weekends are dimmed and today is highlighted.
func (s Styles) Calendar(m timecalc.Month, logs []model.DayLog, today string) string {
	byDate := indexByDate(logs)
	cell := lipgloss.NewStyle().Width(calendarCellWidth).MaxWidth(calendarCellWidth).PaddingRight(1)

	var header []string
	for _, wd := range timecalc.WeekdayAbbrev() {
		header = append(header, cell.Inherit(s.Weekday).Render(wd))
	}
	rows := []string{
		s.Header.Render(m.MonthName()),
		lipgloss.JoinHorizontal(lipgloss.Top, header...),
	}

	offset := int(m.First().Weekday())
	var week []string
	for i := 0; i < offset; i++ {
		week = append(week, cell.Render(""))
	}
	for _, date := range m.Dates() {
		t, _ := timecalc.ParseDate(date)
		number := s.Day
		switch {
		case date == today:
			number = s.Today
		case timecalc.IsWeekend(t):
			number = s.Weekend
		}
		lines := []string{number.Render(fmt.Sprintf("%2d", t.Day()))}
		if l, ok := byDate[date]; ok {
			for _, p := range Pills(l.Projects) {
				lines = append(lines, truncate(p, calendarCellWidth-1))
			}
			if len(l.Projects) == 0 {
				lines = append(lines, s.Muted.Render("•"))
			}
		}
		week = append(week, cell.Render(strings.Join(lines, "\n")))
		if t.Weekday() == time.Saturday {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, week...))
			week = nil
		}
	}
	if len(week) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, week...))
	}
	return s.Box.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func indexByDate(logs []model.DayLog) map[string]model.DayLog {
	m := make(map[string]model.DayLog, len(logs))
	for _, l := range logs {
		m[l.Date] = l
	}
	return m
}
