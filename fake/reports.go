package fake

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"

	dossier "github.com/sogedesk/dossier-go"
)

// reportsAPI adapts the fake to report.Backend.
type reportsAPI struct{ b *Backend }

func (a *reportsAPI) selectApplications(f dossier.ReportFilter) []dossier.Application {
	b := a.b

	var out []dossier.Application
	for _, app := range b.apps {
		if !inDateRange(app.DateSaisie, f.DateDebut, f.DateFin) {
			continue
		}
		if f.Succursale != "" && app.Succursale != f.Succursale {
			continue
		}
		if f.TypeApplication != "" && app.TypeDossier != f.TypeApplication {
			continue
		}
		if f.Statut != "" && app.Statut != f.Statut {
			continue
		}
		if f.Officer != 0 && (app.OfficerCredit == nil || *app.OfficerCredit != f.Officer) {
			continue
		}
		out = append(out, *app)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (a *reportsAPI) Generate(ctx context.Context, f dossier.ReportFilter) (*dossier.Report, error) {
	b := a.b
	b.mu.RLock()
	defer b.mu.RUnlock()

	apps := a.selectApplications(f)

	var stats dossier.ReportStats
	for _, app := range apps {
		stats.Total++
		switch app.Statut {
		case dossier.StatusPending:
			stats.EnAttente++
		case dossier.StatusApproved:
			stats.Approuve++
		case dossier.StatusRejected:
			stats.Rejete++
		}
		stats.MontantTotal += app.MontantGenere
	}

	return &dossier.Report{
		Statistiques: stats,
		Applications: apps,
		Periode:      dossier.Period{Debut: f.DateDebut, Fin: f.DateFin},
	}, nil
}

func (a *reportsAPI) ExportCSV(ctx context.Context, f dossier.ReportFilter) ([]byte, error) {
	b := a.b
	b.mu.RLock()
	defer b.mu.RUnlock()

	apps := a.selectApplications(f)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"application_id", "nom_client", "prenom_client", "succursale", "type_dossier", "statut", "montant_genere", "date_saisie"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("fake: write csv header: %w", err)
	}
	for _, app := range apps {
		record := []string{
			app.ApplicationID,
			app.NomClient,
			app.PrenomClient,
			app.Succursale,
			app.TypeDossier,
			string(app.Statut),
			fmt.Sprintf("%.2f", app.MontantGenere),
			app.DateSaisie.Format("2006-01-02"),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("fake: write csv record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("fake: flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func (a *reportsAPI) DashboardStats(ctx context.Context) (*dossier.DashboardStats, error) {
	b := a.b
	b.mu.RLock()
	defer b.mu.RUnlock()

	stats := &dossier.DashboardStats{TotalUsers: len(b.users)}
	weekAgo := b.now().AddDate(0, 0, -7)
	for _, app := range b.apps {
		stats.TotalApplications++
		if app.Statut == dossier.StatusPending {
			stats.PendingApplications++
		}
		if app.DateSaisie.After(weekAgo) {
			stats.RecentApplications++
		}
	}
	return stats, nil
}
