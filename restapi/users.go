package restapi

import (
	"context"
	"fmt"
	"net/http"

	dossier "github.com/sogedesk/dossier-go"
)

// UserBackend exposes the /auth/users/ endpoints.
type UserBackend struct {
	c *Client
}

// Users returns the backend for account management calls.
func (c *Client) Users() *UserBackend {
	return &UserBackend{c: c}
}

func (b *UserBackend) List(ctx context.Context) ([]*dossier.User, error) {
	var users []*dossier.User
	if err := b.c.do(ctx, http.MethodGet, "/auth/users/", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (b *UserBackend) Create(ctx context.Context, in dossier.CreateUserInput) (*dossier.User, error) {
	var user dossier.User
	if err := b.c.do(ctx, http.MethodPost, "/auth/users/", in, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (b *UserBackend) Update(ctx context.Context, id int64, in dossier.UpdateUserInput) (*dossier.User, error) {
	var user dossier.User
	path := fmt.Sprintf("/auth/users/%d/", id)
	if err := b.c.do(ctx, http.MethodPut, path, in, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ToggleActive flips the account's active flag and returns the new value.
func (b *UserBackend) ToggleActive(ctx context.Context, id int64) (bool, error) {
	var resp struct {
		IsActive bool `json:"is_active"`
	}
	path := fmt.Sprintf("/auth/users/%d/toggle_active/", id)
	if err := b.c.do(ctx, http.MethodPost, path, nil, &resp); err != nil {
		return false, err
	}
	return resp.IsActive, nil
}
