// Package auditlog provides read access to the backend audit trail.
package auditlog

import (
	"context"
	"fmt"

	dossier "github.com/sogedesk/dossier-go"
)

// DefaultPageSize is used when the caller gives no page size.
const DefaultPageSize = 25

// Backend defines the contract for pluggable audit log backends (REST, fake).
type Backend interface {
	List(ctx context.Context, opts dossier.ListOptions) ([]dossier.AuditEntry, int, error)
}

// Service implements dossier.AuditLogService with a configurable backend.
type Service struct {
	backend Backend
}

var _ dossier.AuditLogService = (*Service)(nil)

// New creates an AuditLogService with the given backend.
func New(backend Backend) *Service {
	return &Service{backend: backend}
}

// List returns one page of audit entries plus the total count.
func (s *Service) List(ctx context.Context, opts dossier.ListOptions) ([]dossier.AuditEntry, int, error) {
	if opts.Page < 0 || opts.PageSize < 0 {
		return nil, 0, fmt.Errorf("dossier/auditlog: negative pagination values")
	}
	if opts.Page == 0 {
		opts.Page = 1
	}
	if opts.PageSize == 0 {
		opts.PageSize = DefaultPageSize
	}

	entries, total, err := s.backend.List(ctx, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("dossier/auditlog: %w", err)
	}
	return entries, total, nil
}
