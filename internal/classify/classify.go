// Package classify maps edited files to work categories by extension.
package classify

import "strings"

// Category is the key of a file category. Manual overrides may carry any
// value, so unknown keys are valid.
type Category string

const (
	MII            Category = "mii"
	WebApplication Category = "web-application"
	Procedures     Category = "procedures"
	Other          Category = "outros"
)

var byExtension = map[string]Category{
	"trx":  MII,
	"qry":  MII,
	"js":   WebApplication,
	"ts":   WebApplication,
	"tsx":  WebApplication,
	"css":  WebApplication,
	"jsx":  WebApplication,
	"html": WebApplication,
	"xml":  WebApplication,
	"json": WebApplication,
	"irpt": WebApplication,
	"sql":  Procedures,
}

var displayNames = map[Category]string{
	MII:            "MII",
	WebApplication: "Web Application",
	Procedures:     "Procedures",
	Other:          "Outros",
}

// Spreadsheet fills (ARGB without alpha) per category.
var colors = map[Category]string{
	MII:            "FFE699",
	WebApplication: "C6EFCE",
	Procedures:     "FFC7CE",
}

const defaultColor = "F8F9FA"

// Classify returns the category of filename. An entry in overrides wins
// even when it contradicts the extension.
func Classify(filename string, overrides map[string]string) Category {
	if c, ok := overrides[filename]; ok {
		return Category(c)
	}
	return FromExtension(filename)
}

// FromExtension derives the category from the text after the last dot.
func FromExtension(filename string) Category {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return Other
	}
	if c, ok := byExtension[strings.ToLower(filename[i+1:])]; ok {
		return c
	}
	return Other
}

// Name returns the display name; unknown keys pass through unchanged.
func (c Category) Name() string {
	if n, ok := displayNames[c]; ok {
		return n
	}
	return string(c)
}

// Color returns the spreadsheet fill for the category.
func (c Category) Color() string {
	if col, ok := colors[c]; ok {
		return col
	}
	return defaultColor
}

// Known lists the built-in categories in display order.
func Known() []Category {
	return []Category{MII, WebApplication, Procedures, Other}
}
