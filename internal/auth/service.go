// Package auth implements credential checks for dashboard sign in.
package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/suncore-erp/suncore/internal/shared"
	"github.com/suncore-erp/suncore/internal/users"
)

// Service authenticates users against stored bcrypt hashes.
type Service struct {
	users *users.Repository
}

// NewService constructs a Service.
func NewService(repo *users.Repository) *Service {
	return &Service{users: repo}
}

// Authenticate verifies email and password and returns the matching user.
// Disabled accounts and wrong credentials both map to ErrInvalidCredentials
// so the response does not leak which one failed.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*users.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	if !u.Active {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return u, nil
}
