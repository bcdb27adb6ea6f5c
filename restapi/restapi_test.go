package restapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	dossier "github.com/sogedesk/dossier-go"
	"github.com/sogedesk/dossier-go/restapi"
	"github.com/sogedesk/dossier-go/tokenstore"
)

func newTestClient(t *testing.T, handler http.Handler) (*restapi.Client, *tokenstore.Memory) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := tokenstore.NewMemory()
	client := restapi.NewClient(dossier.Config{BaseURL: srv.URL}, store)
	return client, store
}

func seedSession(t *testing.T, store *tokenstore.Memory) {
	t.Helper()
	err := store.Save(
		dossier.Credentials{AccessToken: "A1", RefreshToken: "R1"},
		&dossier.User{ID: 7, Username: "alice", Role: dossier.RoleManager},
	)
	if err != nil {
		t.Fatalf("seed session: %v", err)
	}
}

func TestLogin(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login/" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["username"] != "alice" || body["password"] != "s3cret" {
			t.Errorf("credentials not forwarded: %v", body)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access":  "A1",
			"refresh": "R1",
			"user": map[string]any{
				"id": 7, "username": "alice", "role": "manager",
			},
		})
	}))

	resp, err := client.Login(context.Background(), "alice", "s3cret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.Access != "A1" || resp.Refresh != "R1" {
		t.Errorf("tokens = %q/%q, want A1/R1", resp.Access, resp.Refresh)
	}
	if resp.User == nil || resp.User.Username != "alice" {
		t.Errorf("user = %+v, want alice", resp.User)
	}
}

func TestLoginRejectedSurfacesDetail(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "identifiants invalides"})
	}))

	_, err := client.Login(context.Background(), "alice", "wrong")
	var apiErr *dossier.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *dossier.APIError", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want 401", apiErr.StatusCode)
	}
	if apiErr.Detail != "identifiants invalides" {
		t.Errorf("Detail = %q, want backend message verbatim", apiErr.Detail)
	}
}

func TestLoginIncompleteResponse(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"access": "A1"})
	}))

	if _, err := client.Login(context.Background(), "alice", "s3cret"); err == nil {
		t.Fatal("Login with partial response should fail")
	}
}

func TestRefresh(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/token/refresh/" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "" {
			t.Error("refresh must not carry a bearer token")
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["refresh"] != "R1" {
			t.Errorf("refresh token = %q, want R1", body["refresh"])
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"access": "A2"})
	}))

	token, err := client.Refresh(context.Background(), "R1")
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if token != "A2" {
		t.Errorf("token = %q, want A2", token)
	}
}

func TestAuthenticatedCallCarriesBearer(t *testing.T) {
	var got string
	client, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode([]any{})
	}))
	seedSession(t, store)

	if _, err := client.Users().List(context.Background()); err != nil {
		t.Fatalf("List: %v", err)
	}
	if got != "Bearer A1" {
		t.Errorf("Authorization = %q, want Bearer A1", got)
	}
}

func TestApplicationListFilters(t *testing.T) {
	var query map[string][]string
	client, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		_ = json.NewEncoder(w).Encode([]any{})
	}))
	seedSession(t, store)

	_, err := client.Applications().List(context.Background(), dossier.ApplicationFilter{
		Search:     "benali",
		Statut:     dossier.StatusPending,
		Succursale: "Casablanca",
		Officer:    12,
		DateDebut:  "2026-01-01",
		DateFin:    "2026-06-30",
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	want := map[string]string{
		"search":         "benali",
		"statut":         "en_attente",
		"succursale":     "Casablanca",
		"officer_credit": "12",
		"date_debut":     "2026-01-01",
		"date_fin":       "2026-06-30",
	}
	for key, val := range want {
		if len(query[key]) != 1 || query[key][0] != val {
			t.Errorf("query[%s] = %v, want %q", key, query[key], val)
		}
	}
	if _, ok := query["type_dossier"]; ok {
		t.Error("empty filter field should not appear in the query")
	}
}

func TestApplicationListPaginatedEnvelope(t *testing.T) {
	client, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"count": 37,
			"next": "http://backend/auth/applications/?page=2",
			"previous": null,
			"results": [
				{"id": 44, "application_id": "APP-00044", "nom_client": "BENALI", "statut": "en_attente"},
				{"id": 45, "application_id": "APP-00045", "nom_client": "EL FASSI", "statut": "approuve"}
			]
		}`))
	}))
	seedSession(t, store)

	apps, err := client.Applications().List(context.Background(), dossier.ApplicationFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(apps) != 2 {
		t.Fatalf("len(apps) = %d, want 2", len(apps))
	}
	if apps[0].ApplicationID != "APP-00044" || apps[1].Statut != dossier.StatusApproved {
		t.Errorf("unexpected applications: %+v", apps)
	}
}

func TestNotificationListPaginatedEnvelope(t *testing.T) {
	client, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"count": 1, "next": null, "previous": null, "results": [
			{"id": 7, "message": "dossier APP-00044 assigné", "is_read": false}
		]}`))
	}))
	seedSession(t, store)

	notifs, err := client.Notifications().List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(notifs) != 1 || notifs[0].Message != "dossier APP-00044 assigné" {
		t.Errorf("unexpected notifications: %+v", notifs)
	}
}

func TestNotificationListBareArray(t *testing.T) {
	client, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id": 7, "message": "bienvenue", "is_read": true}]`))
	}))
	seedSession(t, store)

	notifs, err := client.Notifications().List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(notifs) != 1 || !notifs[0].IsRead {
		t.Errorf("unexpected notifications: %+v", notifs)
	}
}

func TestAssignOfficer(t *testing.T) {
	client, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/applications/44/assign_officer/" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var body map[string]int64
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["officer_id"] != 12 {
			t.Errorf("officer_id = %d, want 12", body["officer_id"])
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 44, "officer_credit": 12})
	}))
	seedSession(t, store)

	app, err := client.Applications().AssignOfficer(context.Background(), 44, 12)
	if err != nil {
		t.Fatalf("AssignOfficer: %v", err)
	}
	if app.ID != 44 {
		t.Errorf("ID = %d, want 44", app.ID)
	}
}

func TestToggleActive(t *testing.T) {
	client, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/users/9/toggle_active/" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]bool{"is_active": false})
	}))
	seedSession(t, store)

	active, err := client.Users().ToggleActive(context.Background(), 9)
	if err != nil {
		t.Fatalf("ToggleActive: %v", err)
	}
	if active {
		t.Error("active = true, want false")
	}
}

func TestExportCSVReturnsRawBody(t *testing.T) {
	csv := "nom_client,statut\nBenali,approuve\n"
	client, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/reports/export_csv/" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(csv))
	}))
	seedSession(t, store)

	data, err := client.Reports().ExportCSV(context.Background(), dossier.ReportFilter{
		DateDebut: "2026-01-01", DateFin: "2026-06-30",
	})
	if err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}
	if string(data) != csv {
		t.Errorf("body = %q, want untouched CSV", data)
	}
}

func TestAuditLogsPaginatedEnvelope(t *testing.T) {
	client, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("page"); got != "2" {
			t.Errorf("page = %q, want 2", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"count": 57,
			"results": []map[string]any{
				{"id": 1, "action": "login", "user_name": "alice"},
			},
		})
	}))
	seedSession(t, store)

	entries, total, err := client.AuditLogs().List(context.Background(), dossier.ListOptions{Page: 2, PageSize: 25})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 57 {
		t.Errorf("total = %d, want 57", total)
	}
	if len(entries) != 1 || entries[0].Action != "login" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestAuditLogsBareArray(t *testing.T) {
	client, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"id": 1, "action": "login"},
			{"id": 2, "action": "logout"},
		})
	}))
	seedSession(t, store)

	entries, total, err := client.AuditLogs().List(context.Background(), dossier.ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 || len(entries) != 2 {
		t.Errorf("got %d entries, total %d, want 2/2", len(entries), total)
	}
}

func TestErrorDetailFallsBackToFirstValue(t *testing.T) {
	client, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"officer_id": []any{"officier introuvable"},
		})
	}))
	seedSession(t, store)

	_, err := client.Applications().AssignOfficer(context.Background(), 44, 999)
	var apiErr *dossier.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *dossier.APIError", err)
	}
	if apiErr.Detail != "officier introuvable" {
		t.Errorf("Detail = %q, want field error message", apiErr.Detail)
	}
}
