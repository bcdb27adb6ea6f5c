package restapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	dossier "github.com/sogedesk/dossier-go"
)

// AuditLogBackend exposes the /auth/audit_logs/ endpoint.
type AuditLogBackend struct {
	c *Client
}

// AuditLogs returns the backend for audit trail queries.
func (c *Client) AuditLogs() *AuditLogBackend {
	return &AuditLogBackend{c: c}
}

// List fetches one page of audit entries. It accepts both the paginated
// envelope ({count, results}) and a bare array, returning the total count
// alongside the page.
func (b *AuditLogBackend) List(ctx context.Context, opts dossier.ListOptions) ([]dossier.AuditEntry, int, error) {
	q := url.Values{}
	if opts.Page > 0 {
		q.Set("page", fmt.Sprint(opts.Page))
	}
	if opts.PageSize > 0 {
		q.Set("page_size", fmt.Sprint(opts.PageSize))
	}

	path := "/auth/audit_logs/"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var raw json.RawMessage
	if err := b.c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, 0, err
	}

	var entries []dossier.AuditEntry
	count, err := decodeList(raw, &entries)
	if err != nil {
		return nil, 0, err
	}
	if count < 0 {
		count = len(entries)
	}
	return entries, count, nil
}
