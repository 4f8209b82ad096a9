package daylog

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Tiliavir/daylog/internal/model"
	"github.com/Tiliavir/daylog/internal/storage"
)

// Projects returns the shared project list sorted by name.
func (s *Service) Projects(ctx context.Context) ([]model.Project, error) {
	return s.store.ListProjects(ctx)
}

// ProjectNames returns the sorted project names.
func (s *Service) ProjectNames(ctx context.Context) ([]string, error) {
	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(projects))
	for i, p := range projects {
		names[i] = p.Name
	}
	return names, nil
}

// AddProjects creates the named projects.
func (s *Service) AddProjects(ctx context.Context, names ...string) ([]model.Project, error) {
	created, err := s.store.AddProjects(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("adding projects: %w", err)
	}
	return created, nil
}

// DeleteProject removes a project by id or name. Day logs referencing it
// are left untouched.
func (s *Service) DeleteProject(ctx context.Context, idOrName string) (model.Project, error) {
	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		return model.Project{}, err
	}
	for _, p := range projects {
		if p.ID == idOrName || p.Name == idOrName {
			if err := s.store.DeleteProject(ctx, p.ID); err != nil {
				return model.Project{}, fmt.Errorf("deleting project %q: %w", p.Name, err)
			}
			return p, nil
		}
	}
	return model.Project{}, fmt.Errorf("project %q: %w", idOrName, storage.ErrNotFound)
}

// SeedProjects commits seed in one batch when no project exists yet.
// It returns the created projects, none when the list was already populated.
func (s *Service) SeedProjects(ctx context.Context, seed []string) ([]model.Project, error) {
	if len(seed) == 0 {
		return nil, nil
	}
	existing, err := s.store.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, nil
	}
	created, err := s.store.AddProjects(ctx, seed)
	if err != nil {
		return nil, fmt.Errorf("seeding projects: %w", err)
	}
	s.logger.Info("seeded projects", zap.Int("count", len(created)))
	return created, nil
}
