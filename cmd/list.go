package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/daylog/internal/render"
	"github.com/Tiliavir/daylog/internal/timecalc"
)

var (
	listMonth     string
	calendarMonth string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the weekdays of a month with their entries",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Show a month as a calendar grid",
	Args:  cobra.NoArgs,
	RunE:  runCalendar,
}

func init() {
	listCmd.Flags().StringVar(&listMonth, "month", "", "Month to show (YYYY-MM, default current)")
	calendarCmd.Flags().StringVar(&calendarMonth, "month", "", "Month to show (YYYY-MM, default current)")
}

func monthFlag(s string) timecalc.Month {
	m, err := parseMonth(s, time.Now())
	if err != nil {
		fail(err)
	}
	return m
}

func runList(cmd *cobra.Command, args []string) error {
	e := mustEnv()
	uid := e.user().ID
	m := monthFlag(listMonth)

	logs, err := e.logs.Month(cmd.Context(), uid, m)
	check(err)
	st := render.DefaultStyles()
	fmt.Println(st.Header.Render(m.MonthName()))
	fmt.Println(st.List(m, logs))
	fmt.Println(st.Muted.Render(monthNav(m)))
	return nil
}

func runCalendar(cmd *cobra.Command, args []string) error {
	e := mustEnv()
	uid := e.user().ID
	m := monthFlag(calendarMonth)

	logs, err := e.logs.Month(cmd.Context(), uid, m)
	check(err)
	st := render.DefaultStyles()
	fmt.Println(st.Calendar(m, logs, timecalc.DateKey(time.Now())))
	fmt.Println(st.Muted.Render(monthNav(m)))
	return nil
}

// monthNav points at the neighbouring months' --month values.
func monthNav(m timecalc.Month) string {
	return fmt.Sprintf("‹ --month %s    --month %s ›", m.Prev(), m.Next())
}
