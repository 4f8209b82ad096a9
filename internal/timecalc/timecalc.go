package timecalc

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Tiliavir/daylog/internal/model"
)

// Month identifies a calendar month.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth parses "2026-10" or "2026/10".
func ParseMonth(s string) (Month, error) {
	parts := strings.FieldsFunc(strings.TrimSpace(s), func(r rune) bool { return r == '-' || r == '/' })
	if len(parts) != 2 {
		return Month{}, fmt.Errorf("invalid month %q, want YYYY-MM", s)
	}
	y, err := strconv.Atoi(parts[0])
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q: %w", s, err)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 1 || m > 12 {
		return Month{}, fmt.Errorf("invalid month %q, want YYYY-MM", s)
	}
	return Month{Year: y, Month: time.Month(m)}, nil
}

// String returns "2026-10".
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// First returns 00:00 UTC of the first day of the month.
func (m Month) First() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Days returns the number of days in the month.
func (m Month) Days() int {
	return m.First().AddDate(0, 1, -1).Day()
}

// Range returns the first and last date keys of the month, inclusive.
func (m Month) Range() (string, string) {
	first := m.First()
	return first.Format(model.DateLayout), first.AddDate(0, 1, -1).Format(model.DateLayout)
}

// Contains reports whether the date key falls within the month.
func (m Month) Contains(date string) bool {
	from, to := m.Range()
	return date >= from && date <= to
}

// Dates returns every date key of the month in order.
func (m Month) Dates() []string {
	first := m.First()
	dates := make([]string, 0, m.Days())
	for d := first; d.Month() == m.Month; d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(model.DateLayout))
	}
	return dates
}

// Prev and Next step one month.
func (m Month) Prev() Month { return MonthOf(m.First().AddDate(0, -1, 0)) }
func (m Month) Next() Month { return MonthOf(m.First().AddDate(0, 1, 0)) }

// DateKey formats t as a DayLog key.
func DateKey(t time.Time) string {
	return t.Format(model.DateLayout)
}

// ParseDate validates a DayLog key.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(model.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return t, nil
}

// IsWeekend reports whether the date falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// DateRange yields every date key in [from, to] inclusive.
func DateRange(from, to string) ([]string, error) {
	start, err := ParseDate(from)
	if err != nil {
		return nil, err
	}
	end, err := ParseDate(to)
	if err != nil {
		return nil, err
	}
	var dates []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, DateKey(d))
	}
	return dates, nil
}
