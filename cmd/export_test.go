package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Tiliavir/daylog/internal/model"
)

func TestCsvEscape(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plain", "plain"},
		{"with space", "with space"},
		{"with,comma", `"with,comma"`},
		{`with"quote`, `"with""quote"`},
		{"with\nnewline", "\"with\nnewline\""},
		{"with\rreturn", "\"with\rreturn\""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, csvEscape(tt.input), "csvEscape(%q)", tt.input)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	writeCSV(&buf, []model.DayLog{
		{Date: "2026-10-02", Projects: []string{"Ops"}, Description: `said "hi"`},
		{Date: "2026-10-01", Projects: []string{"MII", "Ops"}, Description: "deploy", Files: model.FileList{"a.php", "b.js"}},
	})
	want := "date,projects,hours,description,files\n" +
		"2026-10-01,\"MII, Ops\",MII=3 Ops=3,deploy,\"a.php,b.js\"\n" +
		"2026-10-02,Ops,Ops=6,\"said \"\"hi\"\"\",\n"
	assert.Equal(t, want, buf.String())
}
