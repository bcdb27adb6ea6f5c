// Package fake provides in-memory implementations of all dossier interfaces
// for testing.
//
// Use fake.NewClient() in unit tests to avoid network calls. The same
// Backend also implements dossier.AuthBackend, so a session.Controller can
// be wired against it directly.
package fake

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	dossier "github.com/sogedesk/dossier-go"
	"github.com/sogedesk/dossier-go/application"
	"github.com/sogedesk/dossier-go/auditlog"
	"github.com/sogedesk/dossier-go/notification"
	"github.com/sogedesk/dossier-go/report"
	"github.com/sogedesk/dossier-go/user"
)

var signingKey = []byte("fake-signing-key")

// Option configures the fake backend.
type Option func(*Backend)

// Backend is an in-memory stand-in for the REST backend. It implements
// dossier.AuthBackend plus the Backend interfaces of every service package.
type Backend struct {
	mu sync.RWMutex

	users     map[int64]*dossier.User
	passwords map[string]string // username → password
	apps      map[int64]*dossier.Application
	history   map[int64][]*dossier.HistoryEntry // application ID → newest first
	notifs    []*dossier.Notification
	audit     []dossier.AuditEntry

	refreshOwner map[string]int64 // refresh token → user ID
	revoked      map[string]bool

	nextUserID  int64
	nextAppID   int64
	nextNotifID int64
	nextToken   int

	now func() time.Time
}

// compile-time checks
var (
	_ dossier.AuthBackend  = (*Backend)(nil)
	_ user.Backend         = (*usersAPI)(nil)
	_ application.Backend  = (*applicationsAPI)(nil)
	_ report.Backend       = (*reportsAPI)(nil)
	_ notification.Backend = (*notificationsAPI)(nil)
	_ auditlog.Backend     = (*auditLogsAPI)(nil)
)

// Users returns the user.Backend view of the fake.
func (b *Backend) Users() user.Backend { return &usersAPI{b} }

// Applications returns the application.Backend view of the fake.
func (b *Backend) Applications() application.Backend { return &applicationsAPI{b} }

// Reports returns the report.Backend view of the fake.
func (b *Backend) Reports() report.Backend { return &reportsAPI{b} }

// Notifications returns the notification.Backend view of the fake.
func (b *Backend) Notifications() notification.Backend { return &notificationsAPI{b} }

// AuditLogs returns the auditlog.Backend view of the fake.
func (b *Backend) AuditLogs() auditlog.Backend { return &auditLogsAPI{b} }

// WithUser adds an account with the given password.
func WithUser(u dossier.User, password string) Option {
	return func(b *Backend) {
		cp := u
		if cp.ID == 0 {
			b.nextUserID++
			cp.ID = b.nextUserID
		} else if cp.ID > b.nextUserID {
			b.nextUserID = cp.ID
		}
		b.users[cp.ID] = &cp
		b.passwords[cp.Username] = password
	}
}

// WithApplication adds a dossier.
func WithApplication(app dossier.Application) Option {
	return func(b *Backend) {
		cp := app
		if cp.ID == 0 {
			b.nextAppID++
			cp.ID = b.nextAppID
		} else if cp.ID > b.nextAppID {
			b.nextAppID = cp.ID
		}
		if cp.Statut == "" {
			cp.Statut = dossier.StatusPending
		}
		b.apps[cp.ID] = &cp
	}
}

// WithAuditEntry appends a backend audit line.
func WithAuditEntry(e dossier.AuditEntry) Option {
	return func(b *Backend) { b.audit = append(b.audit, e) }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(b *Backend) { b.now = now }
}

// New creates an empty fake backend with the given fixtures.
func New(opts ...Option) *Backend {
	b := &Backend{
		users:        make(map[int64]*dossier.User),
		passwords:    make(map[string]string),
		apps:         make(map[int64]*dossier.Application),
		history:      make(map[int64][]*dossier.HistoryEntry),
		refreshOwner: make(map[string]int64),
		revoked:      make(map[string]bool),
		now:          time.Now,
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// NewClient creates a *dossier.Client with every service wired to one
// in-memory backend. The backend is returned alongside for fixture access.
func NewClient(opts ...Option) (*dossier.Client, *Backend) {
	b := New(opts...)
	client, err := dossier.NewClient(
		dossier.Config{BaseURL: "fake://backend"},
		dossier.WithUserService(user.New(b.Users())),
		dossier.WithApplicationService(application.New(b.Applications())),
		dossier.WithReportService(report.New(b.Reports())),
		dossier.WithNotificationService(notification.New(b.Notifications())),
		dossier.WithAuditLogService(auditlog.New(b.AuditLogs())),
	)
	if err != nil {
		// BaseURL is hardcoded above; NewClient cannot fail.
		panic(err)
	}
	return client, b
}

func apiError(status int, detail string) error {
	return &dossier.APIError{StatusCode: status, Detail: detail}
}

// mintAccessToken produces a signed JWT with a one-hour expiry so local
// expiry checks pass.
func (b *Backend) mintAccessToken(u *dossier.User) string {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  fmt.Sprint(u.ID),
		"name": u.Username,
		"exp":  b.now().Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString(signingKey)
	if err != nil {
		panic(err)
	}
	return signed
}

func (b *Backend) userByUsername(username string) *dossier.User {
	for _, u := range b.users {
		if u.Username == username {
			return u
		}
	}
	return nil
}

// Login implements dossier.AuthBackend.
func (b *Backend) Login(ctx context.Context, username, password string) (*dossier.LoginResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	u := b.userByUsername(username)
	if u == nil || b.passwords[username] != password {
		return nil, apiError(http.StatusUnauthorized, "identifiants invalides")
	}
	if !u.IsActive {
		return nil, apiError(http.StatusForbidden, "compte désactivé")
	}

	b.nextToken++
	refresh := fmt.Sprintf("fake-refresh-%d", b.nextToken)
	b.refreshOwner[refresh] = u.ID

	cp := *u
	return &dossier.LoginResponse{
		Access:  b.mintAccessToken(u),
		Refresh: refresh,
		User:    &cp,
	}, nil
}

// Logout implements dossier.AuthBackend. The refresh token is blacklisted.
func (b *Backend) Logout(ctx context.Context, refreshToken string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revoked[refreshToken] = true
	return nil
}

// Refresh implements dossier.AuthBackend.
func (b *Backend) Refresh(ctx context.Context, refreshToken string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	userID, ok := b.refreshOwner[refreshToken]
	if !ok || b.revoked[refreshToken] {
		return "", apiError(http.StatusUnauthorized, "token invalide ou expiré")
	}
	u, ok := b.users[userID]
	if !ok || !u.IsActive {
		return "", apiError(http.StatusUnauthorized, "token invalide ou expiré")
	}
	return b.mintAccessToken(u), nil
}
