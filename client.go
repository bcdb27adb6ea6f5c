// Package dossier provides a framework-agnostic Go SDK for the credit-dossier
// administration backend.
//
// The SDK defines interfaces for authentication, token storage, user and
// application management, reporting, notifications, and audit logs. Concrete
// implementations are injected via Option functions, so the SDK carries no
// dependency on a particular backend deployment. The restapi package binds
// every interface to the standard REST contract, and fake provides in-memory
// doubles for tests.
//
// Example usage:
//
//	client, err := dossier.NewClient(
//	    dossier.Config{BaseURL: "https://credit.example.com/api"},
//	    dossier.WithUserService(api.Users()),
//	    dossier.WithApplicationService(api.Applications()),
//	)
package dossier

import (
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Client is the main entry point for backend data operations.
// Service implementations are injected via Option functions.
type Client struct {
	config        Config
	logger        *slog.Logger
	users         UserService
	applications  ApplicationService
	reports       ReportService
	notifications NotificationService
	auditLogs     AuditLogService
}

// Config holds connection and behavior configuration.
type Config struct {
	// BaseURL is the address of the backend API, e.g.
	// "https://credit.example.com/api". Required.
	BaseURL string

	// Timeout bounds each HTTP request. Default: 30 seconds.
	Timeout time.Duration

	// TokenPath overrides the location of the file-backed token store.
	// Empty means the per-user config directory.
	TokenPath string

	// MetricsEnabled registers Prometheus collectors when true.
	MetricsEnabled bool
}

// DefaultTimeout is the default per-request HTTP timeout.
const DefaultTimeout = 30 * time.Second

// Option configures the Client.
type Option func(*Client)

// WithLogger sets a structured logger for the client.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithUserService sets the user management implementation.
func WithUserService(s UserService) Option {
	return func(c *Client) { c.users = s }
}

// WithApplicationService sets the application management implementation.
func WithApplicationService(s ApplicationService) Option {
	return func(c *Client) { c.applications = s }
}

// WithReportService sets the reporting implementation.
func WithReportService(s ReportService) Option {
	return func(c *Client) { c.reports = s }
}

// WithNotificationService sets the notification implementation.
func WithNotificationService(s NotificationService) Option {
	return func(c *Client) { c.notifications = s }
}

// WithAuditLogService sets the audit log implementation.
func WithAuditLogService(s AuditLogService) Option {
	return func(c *Client) { c.auditLogs = s }
}

// NewClient creates a new client with the given configuration and options.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("dossier: BaseURL is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	c := &Client{config: cfg}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Config returns the client configuration.
func (c *Client) Config() Config { return c.config }

// Logger returns the configured logger, or nil.
func (c *Client) Logger() *slog.Logger { return c.logger }

// Users returns the user service, or nil if not configured.
func (c *Client) Users() UserService { return c.users }

// Applications returns the application service, or nil if not configured.
func (c *Client) Applications() ApplicationService { return c.applications }

// Reports returns the report service, or nil if not configured.
func (c *Client) Reports() ReportService { return c.reports }

// Notifications returns the notification service, or nil if not configured.
func (c *Client) Notifications() NotificationService { return c.notifications }

// AuditLogs returns the audit log service, or nil if not configured.
func (c *Client) AuditLogs() AuditLogService { return c.auditLogs }

// Close releases all resources held by the client.
// Any injected service that implements io.Closer will be closed.
func (c *Client) Close() error {
	closers := []interface{}{
		c.users, c.applications, c.reports,
		c.notifications, c.auditLogs,
	}
	var firstErr error
	for _, svc := range closers {
		if cl, ok := svc.(io.Closer); ok && cl != nil {
			if err := cl.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
