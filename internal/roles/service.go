package roles

import (
	"context"
	"errors"
	"strings"
)

// Service wraps role management rules.
type Service struct {
	repo *Repository
}

// NewService constructs a Service.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// List returns all roles.
func (s *Service) List(ctx context.Context) ([]Role, error) {
	return s.repo.ListRoles(ctx)
}

// Get returns one role.
func (s *Service) Get(ctx context.Context, id int64) (*Role, error) {
	return s.repo.GetRole(ctx, id)
}

// Create inserts a new role.
func (s *Service) Create(ctx context.Context, name, description string) (*Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("roles: name required")
	}
	id, err := s.repo.CreateRole(ctx, name, strings.TrimSpace(description))
	if err != nil {
		return nil, err
	}
	return s.repo.GetRole(ctx, id)
}

// Update renames a role.
func (s *Service) Update(ctx context.Context, id int64, name, description string) (*Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("roles: name required")
	}
	if err := s.repo.UpdateRole(ctx, id, name, strings.TrimSpace(description)); err != nil {
		return nil, err
	}
	return s.repo.GetRole(ctx, id)
}

// Delete removes a role.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteRole(ctx, id)
}
