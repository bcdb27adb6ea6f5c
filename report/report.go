// Package report provides the ReportService implementation.
package report

import (
	"context"
	"fmt"
	"time"

	dossier "github.com/sogedesk/dossier-go"
)

// Backend defines the contract for pluggable report backends (REST, fake).
type Backend interface {
	Generate(ctx context.Context, filter dossier.ReportFilter) (*dossier.Report, error)
	ExportCSV(ctx context.Context, filter dossier.ReportFilter) ([]byte, error)
	DashboardStats(ctx context.Context) (*dossier.DashboardStats, error)
}

// Service implements dossier.ReportService with a configurable backend.
type Service struct {
	backend Backend
}

var _ dossier.ReportService = (*Service)(nil)

// New creates a ReportService with the given backend.
func New(backend Backend) *Service {
	return &Service{backend: backend}
}

// Generate builds a report for the filter's date range. The range is
// mandatory and must be well ordered.
func (s *Service) Generate(ctx context.Context, filter dossier.ReportFilter) (*dossier.Report, error) {
	if err := validateRange(filter); err != nil {
		return nil, err
	}

	report, err := s.backend.Generate(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("dossier/report: %w", err)
	}
	return report, nil
}

// ExportCSV returns the raw CSV document for the same filter.
func (s *Service) ExportCSV(ctx context.Context, filter dossier.ReportFilter) ([]byte, error) {
	if err := validateRange(filter); err != nil {
		return nil, err
	}

	data, err := s.backend.ExportCSV(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("dossier/report: %w", err)
	}
	return data, nil
}

// DashboardStats returns the role-scoped dashboard summary.
func (s *Service) DashboardStats(ctx context.Context) (*dossier.DashboardStats, error) {
	stats, err := s.backend.DashboardStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("dossier/report: %w", err)
	}
	return stats, nil
}

func validateRange(filter dossier.ReportFilter) error {
	if filter.DateDebut == "" || filter.DateFin == "" {
		return fmt.Errorf("dossier/report: date range is mandatory")
	}

	from, err := time.Parse("2006-01-02", filter.DateDebut)
	if err != nil {
		return fmt.Errorf("dossier/report: invalid date_debut %q", filter.DateDebut)
	}
	to, err := time.Parse("2006-01-02", filter.DateFin)
	if err != nil {
		return fmt.Errorf("dossier/report: invalid date_fin %q", filter.DateFin)
	}
	if to.Before(from) {
		return fmt.Errorf("dossier/report: date_fin precedes date_debut")
	}
	return nil
}

// Rates returns the approval, rejection and pending shares of stats as
// percentages. A zero total yields all zeros.
func Rates(stats dossier.ReportStats) (approved, rejected, pending float64) {
	if stats.Total == 0 {
		return 0, 0, 0
	}
	total := float64(stats.Total)
	return float64(stats.Approuve) / total * 100,
		float64(stats.Rejete) / total * 100,
		float64(stats.EnAttente) / total * 100
}
