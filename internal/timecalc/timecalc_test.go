package timecalc_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/daylog/internal/timecalc"
)

func TestAllocateHours(t *testing.T) {
	tests := []struct {
		projects []string
		want     timecalc.Allocation
	}{
		{nil, timecalc.Allocation{}},
		{[]string{"A"}, timecalc.Allocation{"A": 6}},
		{[]string{"A", "B"}, timecalc.Allocation{"A": 3, "B": 3}},
		{[]string{"A", "B", "C"}, timecalc.Allocation{"A": 2, "B": 2, "C": 2}},
		{[]string{"A", "B", "C", "D"}, timecalc.Allocation{"A": 2, "B": 2, "C": 1, "D": 1}},
		{[]string{"D", "C", "B", "A"}, timecalc.Allocation{"D": 2, "C": 2, "B": 1, "A": 1}},
		{[]string{"A", "B", "C", "D", "E", "F", "G"}, timecalc.Allocation{"A": 1, "B": 1, "C": 1, "D": 1, "E": 1, "F": 1, "G": 0}},
	}
	for _, tt := range tests {
		got := timecalc.AllocateHours(tt.projects)
		assert.Equal(t, tt.want, got, "AllocateHours(%v)", tt.projects)
	}
}

func TestAllocateHoursConservation(t *testing.T) {
	for n := 1; n <= 12; n++ {
		projects := make([]string, n)
		for i := range projects {
			projects[i] = fmt.Sprintf("P%02d", i)
		}
		got := timecalc.AllocateHours(projects)

		assert.Equal(t, timecalc.DailyHours, got.Total(), "n=%d", n)
		base, rem := timecalc.DailyHours/n, timecalc.DailyHours%n
		for i, p := range projects {
			want := base
			if i < rem {
				want = base + 1
			}
			assert.Equal(t, want, got[p], "n=%d project %s", n, p)
		}
	}
}

func TestParseMonth(t *testing.T) {
	m, err := timecalc.ParseMonth("2026-02")
	require.NoError(t, err)
	assert.Equal(t, timecalc.Month{Year: 2026, Month: time.February}, m)

	m, err = timecalc.ParseMonth("2026/10")
	require.NoError(t, err)
	assert.Equal(t, "2026-10", m.String())

	for _, bad := range []string{"", "2026", "2026-13", "x-01", "2026-01-01"} {
		_, err := timecalc.ParseMonth(bad)
		assert.Error(t, err, bad)
	}
}

func TestMonthRange(t *testing.T) {
	m := timecalc.Month{Year: 2024, Month: time.February}
	from, to := m.Range()
	assert.Equal(t, "2024-02-01", from)
	assert.Equal(t, "2024-02-29", to)
	assert.Equal(t, 29, m.Days())
	assert.Len(t, m.Dates(), 29)
	assert.True(t, m.Contains("2024-02-15"))
	assert.False(t, m.Contains("2024-03-01"))
	assert.Equal(t, "2024-01", m.Prev().String())
	assert.Equal(t, "2024-03", m.Next().String())
	assert.Equal(t, "2023-12", timecalc.Month{Year: 2024, Month: time.January}.Prev().String())
}

func TestDateRange(t *testing.T) {
	dates, err := timecalc.DateRange("2026-02-27", "2026-03-02")
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-02-27", "2026-02-28", "2026-03-01", "2026-03-02"}, dates)

	_, err = timecalc.DateRange("2026-02-30", "2026-03-02")
	assert.Error(t, err)
}

func TestIsWeekend(t *testing.T) {
	// 2026-02-27 is a Friday.
	fri := time.Date(2026, 2, 27, 10, 0, 0, 0, time.UTC)
	assert.False(t, timecalc.IsWeekend(fri))
	assert.True(t, timecalc.IsWeekend(fri.AddDate(0, 0, 1)))
	assert.True(t, timecalc.IsWeekend(fri.AddDate(0, 0, 2)))
	assert.False(t, timecalc.IsWeekend(fri.AddDate(0, 0, 3)))
}

func TestLocaleFormatting(t *testing.T) {
	assert.Equal(t, "outubro de 2026", timecalc.Month{Year: 2026, Month: time.October}.MonthName())
	assert.Equal(t, "27/02/2026", timecalc.ShortDate("2026-02-27"))
	assert.Equal(t, "sexta-feira, 27 de fevereiro", timecalc.LongDate("2026-02-27"))
	assert.Equal(t, "garbage", timecalc.ShortDate("garbage"))
}
