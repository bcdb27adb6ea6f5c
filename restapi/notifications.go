package restapi

import (
	"context"
	"encoding/json"
	"net/http"

	dossier "github.com/sogedesk/dossier-go"
)

// NotificationBackend exposes the /auth/notifications/ endpoints.
type NotificationBackend struct {
	c *Client
}

// Notifications returns the backend for notification calls.
func (c *Client) Notifications() *NotificationBackend {
	return &NotificationBackend{c: c}
}

func (b *NotificationBackend) List(ctx context.Context) ([]*dossier.Notification, error) {
	var raw json.RawMessage
	if err := b.c.do(ctx, http.MethodGet, "/auth/notifications/", nil, &raw); err != nil {
		return nil, err
	}
	var items []*dossier.Notification
	if _, err := decodeList(raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (b *NotificationBackend) MarkAllRead(ctx context.Context) error {
	return b.c.do(ctx, http.MethodPost, "/auth/notifications/mark_all_read/", nil, nil)
}
