package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUniqueProjects(t *testing.T) {
	tests := []struct {
		in   []string
		want []string
	}{
		{nil, []string{}},
		{[]string{"A", "A"}, []string{"A"}},
		{[]string{" B ", "A", "B", "", "A"}, []string{"B", "A"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, UniqueProjects(tt.in), "UniqueProjects(%q)", tt.in)
	}
}

func TestValidateProjectName(t *testing.T) {
	assert.NoError(t, ValidateProjectName("Acme Inc"))
	assert.ErrorIs(t, ValidateProjectName("Acme, Inc"), ErrInvalidProjectName)
}
