package dossier

import "context"

// TokenStore persists the credential pair and the cached user profile as one
// logical unit in durable local storage.
// Implementations: tokenstore/ (file-backed, in-memory).
type TokenStore interface {
	// Save persists both tokens and the user profile atomically.
	Save(creds Credentials, user *User) error

	// Load returns the stored session, or (nil, nil) when either token or
	// the user record is missing or unparsable. A corrupt record is treated
	// as absent, never as an error.
	Load() (*StoredSession, error)

	// Clear removes all stored values. Safe to call when nothing is stored.
	Clear() error

	// UpdateAccessToken replaces only the access token, leaving the refresh
	// token and user untouched. Used after a refresh.
	UpdateAccessToken(token string) error
}

// StoredSession is the unit a TokenStore round-trips.
type StoredSession struct {
	Credentials Credentials `json:"credentials"`
	User        *User       `json:"user"`
}

// AuthBackend performs the credential exchanges against the backend.
// Implementations: restapi/ (REST), fake/ (testing).
type AuthBackend interface {
	// Login exchanges a username/password for a token pair and profile.
	Login(ctx context.Context, username, password string) (*LoginResponse, error)

	// Logout asks the backend to blacklist the refresh token. Best effort.
	Logout(ctx context.Context, refreshToken string) error

	// Refresh mints a new access token from the refresh token.
	Refresh(ctx context.Context, refreshToken string) (string, error)
}

// UserService manages staff accounts. The backend scopes the listing by the
// caller's role (secretaries see active officers, managers see everyone else).
type UserService interface {
	List(ctx context.Context) ([]*User, error)
	Create(ctx context.Context, input CreateUserInput) (*User, error)
	Update(ctx context.Context, userID int64, input UpdateUserInput) (*User, error)

	// ToggleActive flips the account's active flag and returns the new value.
	ToggleActive(ctx context.Context, userID int64) (bool, error)
}

// CreateUserInput is the payload for creating a staff account.
type CreateUserInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      Role   `json:"role"`
	Branch    string `json:"branch"`
	Phone     string `json:"phone"`
}

// UpdateUserInput carries the mutable profile fields. Nil pointers are
// left unchanged.
type UpdateUserInput struct {
	Email     *string `json:"email,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Role      *Role   `json:"role,omitempty"`
	Branch    *string `json:"branch,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

// ApplicationService manages credit dossiers.
type ApplicationService interface {
	List(ctx context.Context, filter ApplicationFilter) ([]*Application, error)
	Get(ctx context.Context, id int64) (*Application, error)
	Create(ctx context.Context, app *Application) (*Application, error)
	Update(ctx context.Context, id int64, patch ApplicationPatch) (*Application, error)

	// AssignOfficer assigns an active credit officer to the dossier.
	AssignOfficer(ctx context.Context, id, officerID int64) error

	// History returns the dossier's audit trail, newest first.
	History(ctx context.Context, id int64) ([]HistoryEntry, error)
}

// ApplicationPatch carries the fields an update may touch. Nil pointers are
// left unchanged.
type ApplicationPatch struct {
	Statut                *Status  `json:"statut,omitempty"`
	OfficerCredit         *int64   `json:"officer_credit,omitempty"`
	TypeCarteFinal        *string  `json:"type_carte_final,omitempty"`
	Raison                *string  `json:"raison,omitempty"`
	LimiteCreditApprouve  *float64 `json:"limite_credit_approuve,omitempty"`
	DateDecision          *string  `json:"date_decision,omitempty"`
	CommentaireTraitement *string  `json:"commentaire_traitement,omitempty"`

	// Client identity fields, manager only.
	NomClient       *string `json:"nom_client,omitempty"`
	PrenomClient    *string `json:"prenom_client,omitempty"`
	CIN             *string `json:"cin,omitempty"`
	TelephoneClient *string `json:"telephone_client,omitempty"`
	EmailClient     *string `json:"email_client,omitempty"`
	AdresseClient   *string `json:"adresse_client,omitempty"`
	DateNaissance   *string `json:"date_naissance,omitempty"`
	MontantGenere   *float64 `json:"montant_genere,omitempty"`
	Commentaire     *string  `json:"commentaire,omitempty"`
}

// ReportService generates reports and dashboard summaries.
type ReportService interface {
	Generate(ctx context.Context, filter ReportFilter) (*Report, error)

	// ExportCSV returns the raw CSV document for the same filter.
	ExportCSV(ctx context.Context, filter ReportFilter) ([]byte, error)

	DashboardStats(ctx context.Context) (*DashboardStats, error)
}

// NotificationService reads the caller's notifications.
type NotificationService interface {
	List(ctx context.Context) ([]Notification, error)
	MarkAllRead(ctx context.Context) error
}

// AuditLogService reads the backend audit log.
type AuditLogService interface {
	List(ctx context.Context, opts ListOptions) ([]AuditEntry, int, error)
}
