package restapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	dossier "github.com/sogedesk/dossier-go"
)

// ApplicationBackend exposes the /auth/applications/ endpoints.
type ApplicationBackend struct {
	c *Client
}

// Applications returns the backend for credit application calls.
func (c *Client) Applications() *ApplicationBackend {
	return &ApplicationBackend{c: c}
}

func (b *ApplicationBackend) List(ctx context.Context, filter dossier.ApplicationFilter) ([]*dossier.Application, error) {
	q := url.Values{}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	if filter.Statut != "" {
		q.Set("statut", string(filter.Statut))
	}
	if filter.Succursale != "" {
		q.Set("succursale", filter.Succursale)
	}
	if filter.TypeDossier != "" {
		q.Set("type_dossier", filter.TypeDossier)
	}
	if filter.Officer != 0 {
		q.Set("officer_credit", fmt.Sprint(filter.Officer))
	}
	if filter.DateDebut != "" {
		q.Set("date_debut", filter.DateDebut)
	}
	if filter.DateFin != "" {
		q.Set("date_fin", filter.DateFin)
	}

	path := "/auth/applications/"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var raw json.RawMessage
	if err := b.c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	var apps []*dossier.Application
	if _, err := decodeList(raw, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

func (b *ApplicationBackend) Get(ctx context.Context, id int64) (*dossier.Application, error) {
	var app dossier.Application
	path := fmt.Sprintf("/auth/applications/%d/", id)
	if err := b.c.do(ctx, http.MethodGet, path, nil, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

func (b *ApplicationBackend) Create(ctx context.Context, app *dossier.Application) (*dossier.Application, error) {
	var created dossier.Application
	if err := b.c.do(ctx, http.MethodPost, "/auth/applications/", app, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (b *ApplicationBackend) Update(ctx context.Context, id int64, patch dossier.ApplicationPatch) (*dossier.Application, error) {
	var updated dossier.Application
	path := fmt.Sprintf("/auth/applications/%d/", id)
	if err := b.c.do(ctx, http.MethodPatch, path, patch, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (b *ApplicationBackend) AssignOfficer(ctx context.Context, id, officerID int64) (*dossier.Application, error) {
	body := map[string]int64{"officer_id": officerID}

	var updated dossier.Application
	path := fmt.Sprintf("/auth/applications/%d/assign_officer/", id)
	if err := b.c.do(ctx, http.MethodPost, path, body, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (b *ApplicationBackend) History(ctx context.Context, id int64) ([]*dossier.HistoryEntry, error) {
	var entries []*dossier.HistoryEntry
	path := fmt.Sprintf("/auth/applications/%d/history/", id)
	if err := b.c.do(ctx, http.MethodGet, path, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
