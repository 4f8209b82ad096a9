package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/daylog/internal/render"
	"github.com/Tiliavir/daylog/internal/report"
)

var (
	reportMonth  string
	reportFormat string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show hours and descriptions per project for a month",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportMonth, "month", "", "Month to report (YYYY-MM, default current)")
	reportCmd.Flags().StringVar(&reportFormat, "format", "md", "Output format: md, csv, json")
}

type reportJSON struct {
	Month      string           `json:"month"`
	MonthName  string           `json:"monthName"`
	TotalHours int              `json:"totalHours"`
	Projects   []projectSummary `json:"projects"`
}

type projectSummary struct {
	Project      string   `json:"project"`
	Hours        int      `json:"hours"`
	Descriptions []string `json:"descriptions"`
	More         bool     `json:"more"`
}

func runReport(cmd *cobra.Command, args []string) error {
	e := mustEnv()
	uid := e.user().ID
	m := monthFlag(reportMonth)

	logs, err := e.logs.Month(cmd.Context(), uid, m)
	check(err)
	summary := report.SummaryByProject(logs)
	totals := report.HoursTotals(logs)

	switch reportFormat {
	case "csv":
		fmt.Println("project,hours,descriptions")
		for _, s := range summary {
			fmt.Printf("%s,%d,%s\n", csvEscape(s.Project), s.Hours, csvEscape(strings.Join(s.Descriptions, "; ")))
		}
	case "json":
		out := reportJSON{
			Month:      m.String(),
			MonthName:  m.MonthName(),
			TotalHours: totals.Hours,
			Projects:   []projectSummary{},
		}
		for _, s := range summary {
			out.Projects = append(out.Projects, projectSummary{
				Project:      s.Project,
				Hours:        s.Hours,
				Descriptions: append([]string{}, s.Descriptions...),
				More:         s.More,
			})
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			failStorage(fmt.Errorf("error encoding JSON: %w", err))
		}
		fmt.Println(string(data))
	case "md":
		fmt.Print(render.Summary(m.MonthName(), summary))
		fmt.Println()
		fmt.Print(render.Totals(totals))
	default:
		fail(fmt.Errorf("unknown format %q, want md, csv or json", reportFormat))
	}
	return nil
}
