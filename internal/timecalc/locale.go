package timecalc

import "fmt"

// Month and weekday names used in exported documents, which keep the
// Portuguese vocabulary of the original calendar.
var (
	monthNames = [...]string{
		"janeiro", "fevereiro", "março", "abril", "maio", "junho",
		"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
	}
	weekdayNames = [...]string{
		"domingo", "segunda-feira", "terça-feira", "quarta-feira",
		"quinta-feira", "sexta-feira", "sábado",
	}
)

// MonthName returns e.g. "outubro de 2026".
func (m Month) MonthName() string {
	return fmt.Sprintf("%s de %d", monthNames[m.Month-1], m.Year)
}

// ShortDate formats a date key as "18/10/2026". Invalid keys are returned
// unchanged.
func ShortDate(date string) string {
	t, err := ParseDate(date)
	if err != nil {
		return date
	}
	return t.Format("02/01/2006")
}

// LongDate formats a date key as "domingo, 18 de outubro".
func LongDate(date string) string {
	t, err := ParseDate(date)
	if err != nil {
		return date
	}
	return fmt.Sprintf("%s, %02d de %s", weekdayNames[t.Weekday()], t.Day(), monthNames[t.Month()-1])
}

// WeekdayAbbrev returns the column headers of a calendar grid starting on
// Sunday.
func WeekdayAbbrev() []string {
	return []string{"Dom", "Seg", "Ter", "Qua", "Qui", "Sex", "Sáb"}
}
