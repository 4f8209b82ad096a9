package classify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Tiliavir/daylog/internal/classify"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		file      string
		overrides map[string]string
		want      classify.Category
	}{
		{"report.sql", nil, classify.Procedures},
		{"REPORT.SQL", nil, classify.Procedures},
		{"notes.txt", map[string]string{}, classify.Other},
		{"notes.txt", map[string]string{"notes.txt": "mii"}, classify.MII},
		{"app.js", map[string]string{"app.js": "procedures"}, classify.Procedures},
		{"flow.trx", nil, classify.MII},
		{"query.QRY", nil, classify.MII},
		{"page.irpt", nil, classify.WebApplication},
		{"index.html", nil, classify.WebApplication},
		{"Makefile", nil, classify.Other},
		{"archive.tar.gz", nil, classify.Other},
		{"data.json.sql", nil, classify.Procedures},
		{".json", nil, classify.WebApplication},
		{"trailing.", nil, classify.Other},
		{"custom.txt", map[string]string{"custom.txt": "infra"}, classify.Category("infra")},
	}
	for _, tt := range tests {
		got := classify.Classify(tt.file, tt.overrides)
		assert.Equal(t, tt.want, got, "Classify(%q, %v)", tt.file, tt.overrides)
	}
}

func TestCategoryName(t *testing.T) {
	assert.Equal(t, "MII", classify.MII.Name())
	assert.Equal(t, "Web Application", classify.WebApplication.Name())
	assert.Equal(t, "Procedures", classify.Procedures.Name())
	assert.Equal(t, "Outros", classify.Other.Name())
	assert.Equal(t, "infra", classify.Category("infra").Name())
}

func TestCategoryColor(t *testing.T) {
	assert.Equal(t, "FFE699", classify.MII.Color())
	assert.Equal(t, "C6EFCE", classify.WebApplication.Color())
	assert.Equal(t, "FFC7CE", classify.Procedures.Color())
	assert.Equal(t, "F8F9FA", classify.Other.Color())
	assert.Equal(t, "F8F9FA", classify.Category("infra").Color())
}
