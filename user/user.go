// Package user provides the UserService implementation.
package user

import (
	"context"
	"fmt"
	"strings"

	dossier "github.com/sogedesk/dossier-go"
)

// Backend defines the contract for pluggable user service backends (REST, fake).
type Backend interface {
	List(ctx context.Context) ([]*dossier.User, error)
	Create(ctx context.Context, in dossier.CreateUserInput) (*dossier.User, error)
	Update(ctx context.Context, id int64, in dossier.UpdateUserInput) (*dossier.User, error)
	ToggleActive(ctx context.Context, id int64) (bool, error)
}

// Service implements dossier.UserService with a configurable backend.
type Service struct {
	backend Backend
}

var _ dossier.UserService = (*Service)(nil)

// New creates a UserService with the given backend.
func New(backend Backend) *Service {
	return &Service{backend: backend}
}

// List returns the accounts visible to the caller. The backend scopes the
// result by role.
func (s *Service) List(ctx context.Context) ([]*dossier.User, error) {
	users, err := s.backend.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("dossier/user: %w", err)
	}
	return users, nil
}

// Create registers a new staff account.
func (s *Service) Create(ctx context.Context, input dossier.CreateUserInput) (*dossier.User, error) {
	if strings.TrimSpace(input.Username) == "" {
		return nil, fmt.Errorf("dossier/user: username cannot be empty")
	}
	if input.Password == "" {
		return nil, fmt.Errorf("dossier/user: password cannot be empty")
	}
	if !input.Role.Valid() {
		return nil, fmt.Errorf("dossier/user: unknown role %q", input.Role)
	}

	user, err := s.backend.Create(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("dossier/user: %w", err)
	}
	return user, nil
}

// Update modifies an existing account. Nil fields are left unchanged.
func (s *Service) Update(ctx context.Context, userID int64, input dossier.UpdateUserInput) (*dossier.User, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("dossier/user: invalid user ID %d", userID)
	}
	if input.Role != nil && !input.Role.Valid() {
		return nil, fmt.Errorf("dossier/user: unknown role %q", *input.Role)
	}

	user, err := s.backend.Update(ctx, userID, input)
	if err != nil {
		return nil, fmt.Errorf("dossier/user: %w", err)
	}
	return user, nil
}

// ToggleActive flips the account's active flag and returns the new value.
func (s *Service) ToggleActive(ctx context.Context, userID int64) (bool, error) {
	if userID <= 0 {
		return false, fmt.Errorf("dossier/user: invalid user ID %d", userID)
	}

	active, err := s.backend.ToggleActive(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("dossier/user: %w", err)
	}
	return active, nil
}
