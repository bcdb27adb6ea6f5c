package restapi

import (
	"context"
	"net/http"

	dossier "github.com/sogedesk/dossier-go"
)

// ReportBackend exposes report generation, CSV export and dashboard stats.
type ReportBackend struct {
	c *Client
}

// Reports returns the backend for reporting calls.
func (c *Client) Reports() *ReportBackend {
	return &ReportBackend{c: c}
}

func (b *ReportBackend) Generate(ctx context.Context, filter dossier.ReportFilter) (*dossier.Report, error) {
	var report dossier.Report
	if err := b.c.do(ctx, http.MethodPost, "/auth/reports/generate_report/", filter, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// ExportCSV returns the raw CSV bytes produced by the backend.
func (b *ReportBackend) ExportCSV(ctx context.Context, filter dossier.ReportFilter) ([]byte, error) {
	return b.c.raw(ctx, http.MethodPost, "/auth/reports/export_csv/", filter)
}

func (b *ReportBackend) DashboardStats(ctx context.Context) (*dossier.DashboardStats, error) {
	var stats dossier.DashboardStats
	if err := b.c.do(ctx, http.MethodGet, "/auth/dashboard/stats/", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
