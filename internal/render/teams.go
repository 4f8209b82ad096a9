package render

import (
	"fmt"
	"strings"

	"github.com/Tiliavir/daylog/internal/report"
)

const teamsRule = "---"

// Teams renders rows as a markdown block ready to paste into a Teams chat.
// Empty fields are omitted.
func Teams(monthName string, rows []report.DayRow) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Relatório de Atividades - %s**\n\n%s\n\n", monthName, teamsRule)
	for _, r := range rows {
		fmt.Fprintf(&b, "**%s**\n", r.LongDate)
		if len(r.Projects) > 0 {
			fmt.Fprintf(&b, "* **Projetos:** %s\n", strings.Join(r.Projects, ", "))
		}
		if r.Description != "" {
			fmt.Fprintf(&b, "* **Descrição:** %s\n", r.Description)
		}
		if len(r.Files) > 0 {
			fmt.Fprintf(&b, "* **Arquivos:** %s\n", strings.Join(r.Files, ", "))
		}
		fmt.Fprintf(&b, "\n%s\n\n", teamsRule)
	}
	return b.String()
}

// Summary renders the summary-by-project table as markdown.
func Summary(monthName string, summary []report.ProjectSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Resumo por Projeto - %s**\n\n", monthName)
	b.WriteString("| Projeto | Horas | Atividades |\n|---|---|---|\n")
	for _, s := range summary {
		activities := strings.Join(s.Descriptions, "; ")
		if s.More {
			activities += "; ..."
		}
		fmt.Fprintf(&b, "| %s | %dh | %s |\n", escapeCell(s.Project), s.Hours, escapeCell(activities))
	}
	return b.String()
}

// Totals renders the hours view of a share snapshot.
func Totals(t report.Totals) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total: %dh\n", t.Hours)
	for _, p := range t.ByProject {
		fmt.Fprintf(&b, "  %-20s %dh\n", p.Project, p.Hours)
	}
	return b.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
