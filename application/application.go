// Package application provides the ApplicationService implementation.
package application

import (
	"context"
	"fmt"
	"strings"

	dossier "github.com/sogedesk/dossier-go"
)

// Backend defines the contract for pluggable application backends (REST, fake).
type Backend interface {
	List(ctx context.Context, filter dossier.ApplicationFilter) ([]*dossier.Application, error)
	Get(ctx context.Context, id int64) (*dossier.Application, error)
	Create(ctx context.Context, app *dossier.Application) (*dossier.Application, error)
	Update(ctx context.Context, id int64, patch dossier.ApplicationPatch) (*dossier.Application, error)
	AssignOfficer(ctx context.Context, id, officerID int64) (*dossier.Application, error)
	History(ctx context.Context, id int64) ([]*dossier.HistoryEntry, error)
}

// Service implements dossier.ApplicationService with a configurable backend.
type Service struct {
	backend Backend
}

var _ dossier.ApplicationService = (*Service)(nil)

// New creates an ApplicationService with the given backend.
func New(backend Backend) *Service {
	return &Service{backend: backend}
}

// List returns the dossiers matching filter, scoped by the backend to the
// caller's role.
func (s *Service) List(ctx context.Context, filter dossier.ApplicationFilter) ([]*dossier.Application, error) {
	apps, err := s.backend.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("dossier/application: %w", err)
	}
	return apps, nil
}

// Get returns one dossier by ID.
func (s *Service) Get(ctx context.Context, id int64) (*dossier.Application, error) {
	if id <= 0 {
		return nil, fmt.Errorf("dossier/application: invalid application ID %d", id)
	}

	app, err := s.backend.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("dossier/application: %w", err)
	}
	return app, nil
}

// Create registers a new dossier. Client identity fields are normalized to
// upper case before submission, matching what the backend stores.
func (s *Service) Create(ctx context.Context, app *dossier.Application) (*dossier.Application, error) {
	if app == nil {
		return nil, fmt.Errorf("dossier/application: nil application")
	}
	if strings.TrimSpace(app.NomClient) == "" {
		return nil, fmt.Errorf("dossier/application: nom_client cannot be empty")
	}
	if strings.TrimSpace(app.CIN) == "" {
		return nil, fmt.Errorf("dossier/application: cin cannot be empty")
	}

	normalized := *app
	normalized.NomClient = strings.ToUpper(strings.TrimSpace(app.NomClient))
	normalized.PrenomClient = strings.ToUpper(strings.TrimSpace(app.PrenomClient))
	normalized.CIN = strings.ToUpper(strings.TrimSpace(app.CIN))

	created, err := s.backend.Create(ctx, &normalized)
	if err != nil {
		return nil, fmt.Errorf("dossier/application: %w", err)
	}
	return created, nil
}

// Update applies patch to the dossier. Nil fields are left unchanged; client
// identity fields are normalized like on Create.
func (s *Service) Update(ctx context.Context, id int64, patch dossier.ApplicationPatch) (*dossier.Application, error) {
	if id <= 0 {
		return nil, fmt.Errorf("dossier/application: invalid application ID %d", id)
	}
	if patch.Statut != nil && !validStatus(*patch.Statut) {
		return nil, fmt.Errorf("dossier/application: unknown statut %q", *patch.Statut)
	}

	if patch.NomClient != nil {
		upper := strings.ToUpper(strings.TrimSpace(*patch.NomClient))
		patch.NomClient = &upper
	}
	if patch.PrenomClient != nil {
		upper := strings.ToUpper(strings.TrimSpace(*patch.PrenomClient))
		patch.PrenomClient = &upper
	}
	if patch.CIN != nil {
		upper := strings.ToUpper(strings.TrimSpace(*patch.CIN))
		patch.CIN = &upper
	}

	app, err := s.backend.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("dossier/application: %w", err)
	}
	return app, nil
}

// AssignOfficer assigns an active credit officer to the dossier. The backend
// rejects inactive targets and non-officer accounts.
func (s *Service) AssignOfficer(ctx context.Context, id, officerID int64) error {
	if id <= 0 {
		return fmt.Errorf("dossier/application: invalid application ID %d", id)
	}
	if officerID <= 0 {
		return fmt.Errorf("dossier/application: invalid officer ID %d", officerID)
	}

	if _, err := s.backend.AssignOfficer(ctx, id, officerID); err != nil {
		return fmt.Errorf("dossier/application: %w", err)
	}
	return nil
}

// History returns the dossier's audit trail, newest first.
func (s *Service) History(ctx context.Context, id int64) ([]dossier.HistoryEntry, error) {
	if id <= 0 {
		return nil, fmt.Errorf("dossier/application: invalid application ID %d", id)
	}

	entries, err := s.backend.History(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("dossier/application: %w", err)
	}

	out := make([]dossier.HistoryEntry, 0, len(entries))
	for _, e := range entries {
		if e != nil {
			out = append(out, *e)
		}
	}
	return out, nil
}

func validStatus(s dossier.Status) bool {
	switch s {
	case dossier.StatusPending, dossier.StatusApproved, dossier.StatusRejected:
		return true
	}
	return false
}
