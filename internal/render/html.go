package render

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/Tiliavir/daylog/internal/report"
)

var funcs = template.FuncMap{
	"join":  strings.Join,
	"files": func(files []string) string { return strings.Join(files, ", ") },
}

var tableTmpl = template.Must(template.New("table").Funcs(funcs).Parse(
	`<table class="daylog">
<thead><tr><th>Data</th><th>Projetos</th><th>Descrição</th><th>Arquivos</th></tr></thead>
<tbody>
{{- range .}}
<tr><td>{{.ShortDate}}</td><td>{{join .Projects ", "}}</td><td>{{.Description}}</td><td>{{files .Files}}</td></tr>
{{- end}}
</tbody>
</table>
`))

// HTMLTable writes rows as an HTML table. Cell text is escaped.
func HTMLTable(w io.Writer, rows []report.DayRow) error {
	if err := tableTmpl.Execute(w, rows); err != nil {
		return fmt.Errorf("rendering table: %w", err)
	}
	return nil
}
