package users

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/suncore-erp/suncore/internal/platform/httpx"
	"github.com/suncore-erp/suncore/internal/shared"
)

// Service wraps user account rules.
type Service struct {
	repo *Repository
}

// NewService constructs a Service.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// List returns one page of users with their role names.
func (s *Service) List(ctx context.Context, page, perPage int) ([]UserWithRoles, shared.Pagination, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	p := shared.NewPagination(page, perPage, int(total))
	users, err := s.repo.List(ctx, p)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	out := make([]UserWithRoles, 0, len(users))
	for _, u := range users {
		names, err := s.repo.RoleNames(ctx, u.ID)
		if err != nil {
			return nil, shared.Pagination{}, err
		}
		out = append(out, UserWithRoles{User: u, Roles: names})
	}
	return out, p, nil
}

// Get returns one user with roles.
func (s *Service) Get(ctx context.Context, id int64) (*UserWithRoles, error) {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	names, err := s.repo.RoleNames(ctx, id)
	if err != nil {
		return nil, err
	}
	return &UserWithRoles{User: *u, Roles: names}, nil
}

// CreateInput carries fields for a new account.
type CreateInput struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"required,min=2"`
	Password string `json:"password" validate:"required,min=8"`
}

// Create registers a new user with a bcrypt hashed password.
func (s *Service) Create(ctx context.Context, in CreateInput) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("users: hash password: %w", err)
	}
	u := &User{
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		FullName:     strings.TrimSpace(in.FullName),
		PasswordHash: string(hash),
		Active:       true,
	}
	id, err := s.repo.Create(ctx, u)
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// UpdateInput carries profile changes.
type UpdateInput struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"required,min=2"`
	Active   bool   `json:"active"`
}

// Update changes profile fields.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*User, error) {
	err := s.repo.Update(ctx, id, strings.ToLower(strings.TrimSpace(in.Email)), strings.TrimSpace(in.FullName), in.Active)
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// SetPassword replaces a user's password.
func (s *Service) SetPassword(ctx context.Context, id int64, password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", httpx.ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("users: hash password: %w", err)
	}
	return s.repo.SetPasswordHash(ctx, id, string(hash))
}

// Delete removes an account.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
