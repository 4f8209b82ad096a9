package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Tiliavir/daylog/internal/model"
)

var (
	// ErrNotFound is returned by point reads of missing documents.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateProject is returned when a project name is taken.
	ErrDuplicateProject = errors.New("project already exists")
	// ErrInvalidKey is returned for user ids or dates that cannot key a
	// document.
	ErrInvalidKey = errors.New("invalid document key")
)

// Store is the document store: per-user date-keyed logs, the shared project
// list and the share snapshots.
type Store interface {
	// GetLog returns ErrNotFound when no record exists for date.
	GetLog(ctx context.Context, uid, date string) (model.DayLog, error)
	// PutLog fully overwrites the record keyed by log.Date.
	PutLog(ctx context.Context, uid string, log model.DayLog) error
	// DeleteLog is idempotent.
	DeleteLog(ctx context.Context, uid, date string) error
	// QueryLogs returns the records in [from, to], sorted by date.
	QueryLogs(ctx context.Context, uid, from, to string) ([]model.DayLog, error)
	// BatchPutLogs writes all records or none of them.
	BatchPutLogs(ctx context.Context, uid string, logs []model.DayLog) error
	// WatchLogs calls fn with the full result of QueryLogs(from, to) once,
	// then again after every change, until ctx is done.
	WatchLogs(ctx context.Context, uid, from, to string, fn func([]model.DayLog)) error

	// ListProjects returns the shared projects sorted by name.
	ListProjects(ctx context.Context) ([]model.Project, error)
	// AddProjects creates all named projects in one batch.
	AddProjects(ctx context.Context, names []string) ([]model.Project, error)
	DeleteProject(ctx context.Context, id string) error

	GetShare(ctx context.Context, id string) (model.ShareSnapshot, error)
	PutShare(ctx context.Context, share model.ShareSnapshot) error

	Close() error
}

// ValidateKey rejects keys that would escape their collection directory.
func ValidateKey(key string) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// NormalizeProjectNames trims names and rejects empty, repeated and
// comma-containing ones.
func NormalizeProjectNames(names []string) ([]string, error) {
	out := make([]string, 0, len(names))
	seen := map[string]bool{}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			return nil, fmt.Errorf("%w: empty project name", ErrInvalidKey)
		}
		if err := model.ValidateProjectName(n); err != nil {
			return nil, err
		}
		if seen[n] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateProject, n)
		}
		seen[n] = true
		out = append(out, n)
	}
	return out, nil
}
