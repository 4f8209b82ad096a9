package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidProjectName is returned for project names containing a comma.
var ErrInvalidProjectName = errors.New("project name cannot contain commas")

// Project is an entry of the shared project list. Name is the display key
// referenced by DayLog.Projects.
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ValidateProjectName rejects names that do not survive the comma-joined
// spreadsheet column.
func ValidateProjectName(name string) error {
	if strings.Contains(name, ",") {
		return fmt.Errorf("%w: %q", ErrInvalidProjectName, name)
	}
	return nil
}

// UniqueProjects trims names, drops empty ones and keeps the first of
// repeated names, in order.
func UniqueProjects(projects []string) []string {
	out := make([]string, 0, len(projects))
	seen := make(map[string]bool, len(projects))
	for _, p := range projects {
		if p = strings.TrimSpace(p); p != "" && !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
