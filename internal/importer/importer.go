// Package importer reads day logs for one month from an uploaded workbook.
package importer

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Tiliavir/daylog/internal/model"
	"github.com/Tiliavir/daylog/internal/report"
	"github.com/Tiliavir/daylog/internal/timecalc"
)

// dateHeaders are accepted, in order, as the date column.
var dateHeaders = []string{"Data (YYYY-MM-DD)", report.ColDate}

// Result is the outcome of parsing a workbook.
type Result struct {
	// Logs are the rows inside the month, in sheet order.
	Logs []model.DayLog
	// Skipped counts non-blank rows left out for a missing, unreadable or
	// out-of-month date.
	Skipped int
}

// ParseFile parses the workbook at path.
func ParseFile(path string, m timecalc.Month) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f, m)
}

// Parse reads the first sheet of the workbook in r. Rows whose date does not
// fall in m are skipped. File maps are not part of the format.
func Parse(r io.Reader, m timecalc.Month) (Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Result{}, fmt.Errorf("reading workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Result{}, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return Result{}, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return Result{}, nil
	}

	col := headerIndex(rows[0])
	dateCol := -1
	for _, h := range dateHeaders {
		if i, ok := col[h]; ok {
			dateCol = i
			break
		}
	}
	if dateCol < 0 {
		return Result{}, fmt.Errorf("sheet %q has no %q column", sheets[0], report.ColDate)
	}

	res := Result{Logs: []model.DayLog{}}
	for _, row := range rows[1:] {
		cell := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		if isBlank(row) {
			continue
		}
		raw := ""
		if dateCol < len(row) {
			raw = strings.TrimSpace(row[dateCol])
		}
		date, ok := parseDate(raw)
		if !ok || !m.Contains(timecalc.DateKey(date)) {
			res.Skipped++
			continue
		}
		res.Logs = append(res.Logs, model.DayLog{
			Date:        timecalc.DateKey(date),
			Projects:    splitProjects(cell(report.ColProjects)),
			Description: cell(report.ColDescription),
			Files:       model.ParseFileList(cell(report.ColFiles)),
		})
	}
	return res, nil
}

func headerIndex(header []string) map[string]int {
	col := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if _, dup := col[h]; !dup && h != "" {
			col[h] = i
		}
	}
	return col
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func splitProjects(s string) []string {
	return model.UniqueProjects(strings.Split(s, ","))
}

// parseDate accepts a spreadsheet date serial or a Y-M-D string delimited
// by '-' or '/'. Out-of-range parts are rejected rather than rolled over.
func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, false
		}
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
	}
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '/' })
	if len(parts) != 3 {
		return time.Time{}, false
	}
	var n [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return time.Time{}, false
		}
		n[i] = v
	}
	t := time.Date(n[0], time.Month(n[1]), n[2], 0, 0, 0, 0, time.UTC)
	if t.Year() != n[0] || int(t.Month()) != n[1] || t.Day() != n[2] {
		return time.Time{}, false
	}
	return t, true
}
