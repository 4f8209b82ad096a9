package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Tiliavir/daylog/internal/classify"
	"github.com/Tiliavir/daylog/internal/model"
	"github.com/Tiliavir/daylog/internal/timecalc"
)

// Sheet names and the first sheet's header. The first sheet doubles as the
// import format.
const (
	SheetRecords = "Registros"
	SheetDetails = "Detalhes por Projeto"
	SheetStats   = "Estatísticas"

	ColDate        = "Data"
	ColProjects    = "Projetos"
	ColDescription = "Descrição"
	ColFiles       = "Arquivos"
	ColTotalFiles  = "Total Arquivos"
)

const (
	recordsHeaderFill = "4472C4"
	detailsHeaderFill = "70AD47"
	stripeFill        = "F8F9FA"
	statsStripeFill   = "E7E6E6"
)

// FileName is the download name of a month's workbook.
func FileName(m timecalc.Month) string {
	return fmt.Sprintf("relatorio_%d_%d.xlsx", m.Year, int(m.Month))
}

// SharedFileName is the download name of a share snapshot's workbook.
func SharedFileName(monthName string) string {
	return "relatorio_compartilhado_" + strings.Join(strings.Fields(monthName), "_") + ".xlsx"
}

type column struct {
	header string
	width  float64
}

// sheetWriter appends rows to one sheet, tracking the current row.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	row   int
	err   error
}

func (w *sheetWriter) append(values ...any) int {
	if w.err != nil {
		return w.row
	}
	w.row++
	cell, err := excelize.CoordinatesToCellName(1, w.row)
	if err != nil {
		w.err = err
		return w.row
	}
	w.err = w.f.SetSheetRow(w.sheet, cell, &values)
	return w.row
}

func (w *sheetWriter) style(row, fromCol, toCol, styleID int) {
	if w.err != nil {
		return
	}
	from, err := excelize.CoordinatesToCellName(fromCol, row)
	if err != nil {
		w.err = err
		return
	}
	to, err := excelize.CoordinatesToCellName(toCol, row)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetCellStyle(w.sheet, from, to, styleID)
}

func (w *sheetWriter) columns(cols []column) {
	headers := make([]any, len(cols))
	for i, c := range cols {
		headers[i] = c.header
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			w.err = err
			return
		}
		if err := w.f.SetColWidth(w.sheet, name, name, c.width); err != nil {
			w.err = err
			return
		}
	}
	w.append(headers...)
}

type styles struct {
	f     *excelize.File
	cache map[string]int
}

func solidFill(color string) excelize.Fill {
	return excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}}
}

func (s *styles) header(color string) (int, error) {
	return s.get("header:"+color, &excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      solidFill(color),
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
}

func (s *styles) fill(color string) (int, error) {
	return s.get("fill:"+color, &excelize.Style{Fill: solidFill(color)})
}

func (s *styles) title() (int, error) {
	return s.get("title", &excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
}

func (s *styles) get(key string, st *excelize.Style) (int, error) {
	if id, ok := s.cache[key]; ok {
		return id, nil
	}
	id, err := s.f.NewStyle(st)
	if err != nil {
		return 0, err
	}
	s.cache[key] = id
	return id, nil
}

// Workbook builds the three-sheet report of logs. The caller closes the
// returned file.
func Workbook(logs []model.DayLog) (*excelize.File, error) {
	f := excelize.NewFile()
	st := &styles{f: f, cache: map[string]int{}}
	sorted := Sorted(logs)
	details := Details(sorted)

	if err := f.SetSheetName(f.GetSheetName(0), SheetRecords); err != nil {
		f.Close()
		return nil, err
	}
	for _, build := range []func() error{
		func() error { return writeRecords(f, st, sorted) },
		func() error { return writeDetails(f, st, details) },
		func() error { return writeStats(f, st, details) },
	} {
		if err := build(); err != nil {
			f.Close()
			return nil, fmt.Errorf("building workbook: %w", err)
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

// WriteWorkbook writes the workbook of logs to w.
func WriteWorkbook(w io.Writer, logs []model.DayLog) error {
	f, err := Workbook(logs)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeRecords(f *excelize.File, st *styles, logs []model.DayLog) error {
	cols := []column{
		{ColDate, 15}, {ColProjects, 25}, {ColDescription, 50}, {ColFiles, 40}, {ColTotalFiles, 15},
	}
	w := &sheetWriter{f: f, sheet: SheetRecords}
	w.columns(cols)
	headerID, err := st.header(recordsHeaderFill)
	if err != nil {
		return err
	}
	stripeID, err := st.fill(stripeFill)
	if err != nil {
		return err
	}
	w.style(1, 1, len(cols), headerID)

	for i, l := range logs {
		row := w.append(
			l.Date,
			strings.Join(l.Projects, ", "),
			l.Description,
			l.Files.String(),
			len(l.Files),
		)
		if i%2 == 0 {
			w.style(row, 1, len(cols), stripeID)
		}
	}
	return w.err
}

func writeDetails(f *excelize.File, st *styles, details []FileDetail) error {
	if _, err := f.NewSheet(SheetDetails); err != nil {
		return err
	}
	cols := []column{
		{"Data", 15}, {"Projeto", 20}, {"Categoria", 20}, {"Arquivo", 40}, {"Descrição", 50},
	}
	w := &sheetWriter{f: f, sheet: SheetDetails}
	w.columns(cols)
	headerID, err := st.header(detailsHeaderFill)
	if err != nil {
		return err
	}
	w.style(1, 1, len(cols), headerID)

	for _, d := range details {
		desc := d.Description
		if desc == "" {
			desc = NoDescription
		}
		row := w.append(timecalc.ShortDate(d.Date), d.Project, d.Category.Name(), d.File, desc)
		fillID, err := st.fill(d.Category.Color())
		if err != nil {
			return err
		}
		w.style(row, 3, 3, fillID)
	}
	return w.err
}

func writeStats(f *excelize.File, st *styles, details []FileDetail) error {
	if _, err := f.NewSheet(SheetStats); err != nil {
		return err
	}
	titleID, err := st.title()
	if err != nil {
		return err
	}
	stripeID, err := st.fill(statsStripeFill)
	if err != nil {
		return err
	}
	byProject, byCategory := FileStats(details)

	w := &sheetWriter{f: f, sheet: SheetStats}
	if err := f.SetColWidth(SheetStats, "A", "A", 30); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetStats, "B", "B", 18); err != nil {
		return err
	}
	section := func(title, keyHeader string, counts []Count, label func(string) string) {
		w.style(w.append(title), 1, 1, titleID)
		w.append(keyHeader, "Total de Arquivos")
		for i, c := range counts {
			row := w.append(label(c.Key), c.Files)
			if i%2 == 0 {
				w.style(row, 1, 2, stripeID)
			}
		}
	}
	section("Estatísticas por Projeto", "Projeto", byProject, func(k string) string { return k })
	w.append()
	section("Estatísticas por Categoria", "Categoria", byCategory, func(k string) string {
		return classify.Category(k).Name()
	})
	return w.err
}
