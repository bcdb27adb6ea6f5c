package fake_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	dossier "github.com/sogedesk/dossier-go"
	"github.com/sogedesk/dossier-go/fake"
	"github.com/sogedesk/dossier-go/guard"
	"github.com/sogedesk/dossier-go/session"
	"github.com/sogedesk/dossier-go/tokenstore"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func officerFixture() dossier.User {
	return dossier.User{
		ID: 12, Username: "karim", FirstName: "Karim", LastName: "Idrissi",
		Role: dossier.RoleOfficer, IsActive: true,
	}
}

func TestLoginIssuesUsableToken(t *testing.T) {
	backend := fake.New(fake.WithUser(dossier.User{
		ID: 7, Username: "alice", Role: dossier.RoleManager, IsActive: true,
	}, "s3cret"))

	resp, err := backend.Login(context.Background(), "alice", "s3cret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !guard.TokenUsable(resp.Access, time.Now()) {
		t.Error("issued access token should pass the local expiry check")
	}
	if resp.User.Username != "alice" {
		t.Errorf("user = %+v", resp.User)
	}
}

func TestLoginRejections(t *testing.T) {
	backend := fake.New(
		fake.WithUser(dossier.User{ID: 1, Username: "alice", Role: dossier.RoleManager, IsActive: true}, "s3cret"),
		fake.WithUser(dossier.User{ID: 2, Username: "bob", Role: dossier.RoleOfficer, IsActive: false}, "pw"),
	)

	if _, err := backend.Login(context.Background(), "alice", "wrong"); !dossier.IsUnauthorized(err) {
		t.Errorf("wrong password: err = %v, want 401", err)
	}
	if _, err := backend.Login(context.Background(), "ghost", "pw"); !dossier.IsUnauthorized(err) {
		t.Errorf("unknown user: err = %v, want 401", err)
	}
	if _, err := backend.Login(context.Background(), "bob", "pw"); !dossier.IsForbidden(err) {
		t.Errorf("inactive account: err = %v, want 403", err)
	}
}

func TestRefreshAfterLogoutFails(t *testing.T) {
	backend := fake.New(fake.WithUser(dossier.User{
		ID: 7, Username: "alice", Role: dossier.RoleManager, IsActive: true,
	}, "s3cret"))
	ctx := context.Background()

	resp, err := backend.Login(ctx, "alice", "s3cret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if _, err := backend.Refresh(ctx, resp.Refresh); err != nil {
		t.Fatalf("Refresh before logout: %v", err)
	}

	if err := backend.Logout(ctx, resp.Refresh); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := backend.Refresh(ctx, resp.Refresh); err == nil {
		t.Error("Refresh after logout should fail")
	}
}

func TestSessionControllerAgainstFake(t *testing.T) {
	backend := fake.New(fake.WithUser(dossier.User{
		ID: 7, Username: "alice", Role: dossier.RoleManager, IsActive: true,
	}, "s3cret"))
	store := tokenstore.NewMemory()
	ctrl := session.New(store, backend)

	res := ctrl.Login(context.Background(), "alice", "s3cret")
	if !res.Success {
		t.Fatalf("Login failed: %s", res.Error)
	}
	if !ctrl.IsAuthenticated() {
		t.Error("controller should be authenticated")
	}

	ctrl.Logout(context.Background())
	if sess, _ := store.Load(); sess != nil {
		t.Error("store should be cleared after logout")
	}
}

func TestAssignOfficerFlow(t *testing.T) {
	client, _ := fake.NewClient(
		fake.WithUser(officerFixture(), "pw"),
		fake.WithApplication(dossier.Application{
			ID: 44, ApplicationID: "APP-00044", NomClient: "BENALI", CIN: "AB1",
		}),
	)
	ctx := context.Background()

	if err := client.Applications().AssignOfficer(ctx, 44, 12); err != nil {
		t.Fatalf("AssignOfficer: %v", err)
	}

	app, err := client.Applications().Get(ctx, 44)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if app.OfficerCredit == nil || *app.OfficerCredit != 12 {
		t.Errorf("OfficerCredit = %v, want 12", app.OfficerCredit)
	}
	if app.OfficerName != "Karim Idrissi" {
		t.Errorf("OfficerName = %q", app.OfficerName)
	}

	history, err := client.Applications().History(ctx, 44)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) == 0 || history[0].Action != "assignation" {
		t.Errorf("history = %+v, want assignation newest first", history)
	}

	notifs, err := client.Notifications().List(ctx)
	if err != nil {
		t.Fatalf("Notifications: %v", err)
	}
	if len(notifs) != 1 || !strings.Contains(notifs[0].Message, "APP-00044") {
		t.Errorf("notifs = %+v, want one assignment notification", notifs)
	}
}

func TestAssignOfficerRejectsBadTargets(t *testing.T) {
	client, _ := fake.NewClient(
		fake.WithUser(dossier.User{ID: 3, Username: "sec", Role: dossier.RoleSecretary, IsActive: true}, "pw"),
		fake.WithUser(dossier.User{ID: 4, Username: "off", Role: dossier.RoleOfficer, IsActive: false}, "pw"),
		fake.WithApplication(dossier.Application{ID: 1, NomClient: "X", CIN: "C1"}),
	)
	ctx := context.Background()

	var apiErr *dossier.APIError
	if err := client.Applications().AssignOfficer(ctx, 1, 3); !errors.As(err, &apiErr) {
		t.Errorf("assigning a secretary: err = %v, want APIError", err)
	}
	if err := client.Applications().AssignOfficer(ctx, 1, 4); !errors.As(err, &apiErr) {
		t.Errorf("assigning an inactive officer: err = %v, want APIError", err)
	}
	if err := client.Applications().AssignOfficer(ctx, 1, 99); !errors.As(err, &apiErr) {
		t.Errorf("assigning a missing user: err = %v, want APIError", err)
	}
}

func TestAssignSameOfficerTwiceFails(t *testing.T) {
	client, _ := fake.NewClient(
		fake.WithUser(officerFixture(), "pw"),
		fake.WithApplication(dossier.Application{ID: 1, NomClient: "X", CIN: "C1"}),
	)
	ctx := context.Background()

	if err := client.Applications().AssignOfficer(ctx, 1, 12); err != nil {
		t.Fatalf("first assignment: %v", err)
	}
	if err := client.Applications().AssignOfficer(ctx, 1, 12); err == nil {
		t.Error("re-assigning the same officer should fail")
	}
}

func TestStatusChangeRecordsDecision(t *testing.T) {
	client, _ := fake.NewClient(fake.WithApplication(dossier.Application{
		ID: 1, NomClient: "BENALI", CIN: "C1",
	}))
	ctx := context.Background()

	approved := dossier.StatusApproved
	if _, err := client.Applications().Update(ctx, 1, dossier.ApplicationPatch{Statut: &approved}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	history, err := client.Applications().History(ctx, 1)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if history[0].Action != "decision" {
		t.Errorf("history[0].Action = %q, want decision", history[0].Action)
	}
}

func TestGenerateReport(t *testing.T) {
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	client, _ := fake.NewClient(
		fake.WithClock(fixedClock(base)),
		fake.WithApplication(dossier.Application{
			ID: 1, NomClient: "A", CIN: "C1", Statut: dossier.StatusApproved,
			MontantGenere: 1500, DateSaisie: base,
		}),
		fake.WithApplication(dossier.Application{
			ID: 2, NomClient: "B", CIN: "C2", Statut: dossier.StatusPending,
			MontantGenere: 500, DateSaisie: base.AddDate(0, 0, 1),
		}),
		fake.WithApplication(dossier.Application{
			ID: 3, NomClient: "C", CIN: "C3", Statut: dossier.StatusRejected,
			DateSaisie: base.AddDate(0, -2, 0),
		}),
	)

	rep, err := client.Reports().Generate(context.Background(), dossier.ReportFilter{
		DateDebut: "2026-03-01", DateFin: "2026-03-31",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	stats := rep.Statistiques
	if stats.Total != 2 || stats.Approuve != 1 || stats.EnAttente != 1 || stats.Rejete != 0 {
		t.Errorf("stats = %+v, want 2 in range", stats)
	}
	if stats.MontantTotal != 2000 {
		t.Errorf("MontantTotal = %v, want 2000", stats.MontantTotal)
	}
	if rep.Periode.Debut != "2026-03-01" || rep.Periode.Fin != "2026-03-31" {
		t.Errorf("periode = %+v", rep.Periode)
	}
}

func TestExportCSV(t *testing.T) {
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	client, _ := fake.NewClient(fake.WithApplication(dossier.Application{
		ID: 1, ApplicationID: "APP-00001", NomClient: "BENALI", CIN: "C1",
		Succursale: "Rabat", Statut: dossier.StatusApproved, MontantGenere: 1500,
		DateSaisie: base,
	}))

	data, err := client.Reports().ExportCSV(context.Background(), dossier.ReportFilter{
		DateDebut: "2026-03-01", DateFin: "2026-03-31",
	})
	if err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("csv lines = %d, want header + 1 row", len(lines))
	}
	if !strings.Contains(lines[1], "APP-00001") || !strings.Contains(lines[1], "1500.00") {
		t.Errorf("row = %q", lines[1])
	}
}

func TestDashboardStats(t *testing.T) {
	base := time.Now()
	client, _ := fake.NewClient(
		fake.WithUser(officerFixture(), "pw"),
		fake.WithApplication(dossier.Application{ID: 1, NomClient: "A", CIN: "C1", DateSaisie: base}),
		fake.WithApplication(dossier.Application{
			ID: 2, NomClient: "B", CIN: "C2", Statut: dossier.StatusApproved,
			DateSaisie: base.AddDate(0, 0, -30),
		}),
	)

	stats, err := client.Reports().DashboardStats(context.Background())
	if err != nil {
		t.Fatalf("DashboardStats: %v", err)
	}
	if stats.TotalApplications != 2 || stats.PendingApplications != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.RecentApplications != 1 {
		t.Errorf("RecentApplications = %d, want 1", stats.RecentApplications)
	}
	if stats.TotalUsers != 1 {
		t.Errorf("TotalUsers = %d, want 1", stats.TotalUsers)
	}
}

func TestNotificationsMarkAllRead(t *testing.T) {
	client, _ := fake.NewClient(
		fake.WithUser(officerFixture(), "pw"),
		fake.WithApplication(dossier.Application{ID: 1, NomClient: "A", CIN: "C1"}),
	)
	ctx := context.Background()

	if err := client.Applications().AssignOfficer(ctx, 1, 12); err != nil {
		t.Fatalf("AssignOfficer: %v", err)
	}

	if err := client.Notifications().MarkAllRead(ctx); err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	notifs, err := client.Notifications().List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, n := range notifs {
		if !n.IsRead {
			t.Errorf("notification %d still unread", n.ID)
		}
	}
}

func TestAuditLogPagination(t *testing.T) {
	opts := make([]fake.Option, 0, 5)
	for i := 0; i < 5; i++ {
		opts = append(opts, fake.WithAuditEntry(dossier.AuditEntry{ID: int64(i + 1), Action: "login"}))
	}
	client, _ := fake.NewClient(opts...)

	entries, total, err := client.AuditLogs().List(context.Background(), dossier.ListOptions{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(entries) != 2 || entries[0].ID != 3 {
		t.Errorf("entries = %+v, want IDs 3 and 4", entries)
	}
}

func TestUserLifecycle(t *testing.T) {
	client, _ := fake.NewClient()
	ctx := context.Background()

	created, err := client.Users().Create(ctx, dossier.CreateUserInput{
		Username: "nadia", Password: "pw", Role: dossier.RoleSecretary,
		FirstName: "Nadia", LastName: "Alaoui",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !created.IsActive || !created.FirstLogin {
		t.Errorf("created = %+v, want active with first_login", created)
	}

	branch := "Casablanca"
	updated, err := client.Users().Update(ctx, created.ID, dossier.UpdateUserInput{Branch: &branch})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Branch != "Casablanca" {
		t.Errorf("Branch = %q", updated.Branch)
	}

	active, err := client.Users().ToggleActive(ctx, created.ID)
	if err != nil {
		t.Fatalf("ToggleActive: %v", err)
	}
	if active {
		t.Error("active = true after toggle, want false")
	}
}
