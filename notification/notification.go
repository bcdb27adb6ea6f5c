// Package notification provides the NotificationService implementation.
package notification

import (
	"context"
	"fmt"

	dossier "github.com/sogedesk/dossier-go"
)

// Backend defines the contract for pluggable notification backends (REST, fake).
type Backend interface {
	List(ctx context.Context) ([]*dossier.Notification, error)
	MarkAllRead(ctx context.Context) error
}

// Service implements dossier.NotificationService with a configurable backend.
type Service struct {
	backend Backend
}

var _ dossier.NotificationService = (*Service)(nil)

// New creates a NotificationService with the given backend.
func New(backend Backend) *Service {
	return &Service{backend: backend}
}

// List returns the caller's notifications, newest first.
func (s *Service) List(ctx context.Context) ([]dossier.Notification, error) {
	items, err := s.backend.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("dossier/notification: %w", err)
	}

	out := make([]dossier.Notification, 0, len(items))
	for _, n := range items {
		if n != nil {
			out = append(out, *n)
		}
	}
	return out, nil
}

// MarkAllRead marks every unread notification of the caller as read.
func (s *Service) MarkAllRead(ctx context.Context) error {
	if err := s.backend.MarkAllRead(ctx); err != nil {
		return fmt.Errorf("dossier/notification: %w", err)
	}
	return nil
}

// Unread counts the unread entries in items.
func Unread(items []dossier.Notification) int {
	count := 0
	for _, n := range items {
		if !n.IsRead {
			count++
		}
	}
	return count
}
