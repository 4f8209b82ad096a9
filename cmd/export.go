package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/daylog/internal/model"
	"github.com/Tiliavir/daylog/internal/render"
	"github.com/Tiliavir/daylog/internal/report"
)

var (
	exportMonth  string
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a month as a spreadsheet, HTML table, Teams text or CSV",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportMonth, "month", "", "Month to export (YYYY-MM, default current)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "xlsx", "Output format: xlsx, table, teams, summary, csv")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (xlsx default relatorio_<year>_<month>.xlsx, others stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	e := mustEnv()
	uid := e.user().ID
	m := monthFlag(exportMonth)

	logs, err := e.logs.Month(cmd.Context(), uid, m)
	check(err)

	var buf bytes.Buffer
	switch exportFormat {
	case "xlsx":
		if err := report.WriteWorkbook(&buf, logs); err != nil {
			failStorage(err)
		}
		if exportOutput == "" {
			exportOutput = report.FileName(m)
		}
	case "table":
		if err := render.HTMLTable(&buf, report.Rows(logs)); err != nil {
			failStorage(err)
		}
	case "teams":
		buf.WriteString(render.Teams(m.MonthName(), report.Rows(logs)))
	case "summary":
		buf.WriteString(render.Summary(m.MonthName(), report.SummaryByProject(logs)))
	case "csv":
		writeCSV(&buf, logs)
	default:
		fail(fmt.Errorf("unknown format %q, want xlsx, table, teams, summary or csv", exportFormat))
	}

	if exportOutput == "" {
		_, err := os.Stdout.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(exportOutput, buf.Bytes(), 0o644); err != nil {
		failStorage(fmt.Errorf("writing %s: %w", exportOutput, err))
	}
	fmt.Fprintf(os.Stderr, "Exported %d days to %s\n", len(logs), exportOutput)
	return nil
}

// writeCSV writes one row per day in date order, hours per project
// included.
func writeCSV(w io.Writer, logs []model.DayLog) {
	fmt.Fprintln(w, "date,projects,hours,description,files")
	for _, r := range report.Rows(logs) {
		hours := make([]string, 0, len(r.Projects))
		for _, p := range r.Projects {
			hours = append(hours, fmt.Sprintf("%s=%d", p, r.Hours[p]))
		}
		fmt.Fprintf(w, "%s,%s,%s,%s,%s\n",
			r.Date,
			csvEscape(strings.Join(r.Projects, ", ")),
			csvEscape(strings.Join(hours, " ")),
			csvEscape(r.Description),
			csvEscape(model.FileList(r.Files).String()),
		)
	}
}

// csvEscape wraps a field in quotes if it contains a comma, quote, or newline.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
