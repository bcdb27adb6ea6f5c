package dossier

import "time"

// Role identifies one of the closed set of staff roles.
type Role string

const (
	RoleSecretary Role = "secretary"
	RoleOfficer   Role = "officer"
	RoleManager   Role = "manager"
)

// Valid reports whether the role is one of the known identifiers.
func (r Role) Valid() bool {
	switch r {
	case RoleSecretary, RoleOfficer, RoleManager:
		return true
	}
	return false
}

// Action identifies a capability a role may hold.
type Action string

const (
	ActionViewDashboard      Action = "view_dashboard"
	ActionViewApplications   Action = "view_applications"
	ActionCreateApplication  Action = "create_application"
	ActionUpdateApplication  Action = "update_application"
	ActionProcessApplication Action = "process_application"
	ActionModifyClientInfo   Action = "modify_client_info"
	ActionDeleteApplication  Action = "delete_application"
	ActionAssignOfficer      Action = "assign_officer"
	ActionManageUsers        Action = "manage_users"
	ActionViewReports        Action = "view_reports"
	ActionViewProfile        Action = "view_profile"
)

// Status is the workflow state of a credit application.
type Status string

const (
	StatusPending  Status = "en_attente"
	StatusApproved Status = "approuve"
	StatusRejected Status = "rejete"
)

// User is the profile record served by the backend and cached locally.
type User struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Role       Role   `json:"role"`
	Branch     string `json:"branch"`
	Phone      string `json:"phone"`
	IsActive   bool   `json:"is_active"`
	FirstLogin bool   `json:"first_login"`
}

// FullName returns the display name used in history and notification text.
func (u *User) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	return u.FirstName + " " + u.LastName
}

// Credentials is the access/refresh token pair persisted by the token store.
// Both tokens are stored and cleared as one unit.
type Credentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// LoginResponse is the payload returned by the login endpoint.
type LoginResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	User    *User  `json:"user"`
}

// Application is a consumer-credit dossier. Field names follow the backend
// wire contract.
type Application struct {
	ID            int64  `json:"id"`
	ApplicationID string `json:"application_id"`

	NomOffGroupe    string `json:"nom_off_groupe"`
	PrenomOffGroupe string `json:"prenom_off_groupe"`

	Succursale      string `json:"succursale"`
	NoSuccursale    string `json:"no_succursale"`
	AutreSuccursale string `json:"autre_succursale,omitempty"`

	NomClient       string `json:"nom_client"`
	PrenomClient    string `json:"prenom_client"`
	DateNaissance   string `json:"date_naissance"`
	CIN             string `json:"cin"`
	AdresseClient   string `json:"adresse_client,omitempty"`
	TelephoneClient string `json:"telephone_client,omitempty"`
	EmailClient     string `json:"email_client,omitempty"`

	TypeDossier          string `json:"type_dossier"`
	TypeCampagne         string `json:"type_campagne,omitempty"`
	DateDebutCampagne    string `json:"date_debut_campagne,omitempty"`
	DateFinCampagne      string `json:"date_fin_campagne,omitempty"`
	TypeCarteApplication string `json:"type_carte_application"`

	OfficerCredit *int64 `json:"officer_credit"`
	OfficerName   string `json:"officer_name,omitempty"`

	Statut        Status  `json:"statut"`
	MontantGenere float64 `json:"montant_genere"`

	CreatedBy     int64     `json:"created_by"`
	CreatedByName string    `json:"created_by_name,omitempty"`
	DateSaisie    time.Time `json:"date_saisie"`
	Commentaire   string    `json:"commentaire,omitempty"`

	TypeCarteFinal        string   `json:"type_carte_final,omitempty"`
	Raison                string   `json:"raison,omitempty"`
	LimiteCreditApprouve  *float64 `json:"limite_credit_approuve,omitempty"`
	DateDecision          string   `json:"date_decision,omitempty"`
	CommentaireTraitement string   `json:"commentaire_traitement,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// ApplicationFilter narrows application listings. Zero values mean "no filter".
type ApplicationFilter struct {
	Search      string
	Statut      Status
	Succursale  string
	TypeDossier string
	Officer     int64
	DateDebut   string // YYYY-MM-DD
	DateFin     string // YYYY-MM-DD
}

// HistoryEntry is one audit-trail line of an application.
type HistoryEntry struct {
	ID        int64     `json:"id"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	UserName  string    `json:"user_name"`
	Timestamp time.Time `json:"timestamp"`
}

// Notification is a per-user message created on assignment events.
type Notification struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	IsRead      bool      `json:"is_read"`
	Application *int64    `json:"application,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// DashboardStats is the role-scoped summary shown on the dashboard.
type DashboardStats struct {
	TotalApplications   int `json:"total_applications"`
	PendingApplications int `json:"pending_applications"`
	RecentApplications  int `json:"recent_applications"`
	TotalUsers          int `json:"total_users"`
}

// ReportFilter selects applications for report generation. DateDebut and
// DateFin (YYYY-MM-DD) are mandatory; the rest are optional.
type ReportFilter struct {
	DateDebut       string `json:"date_debut"`
	DateFin         string `json:"date_fin"`
	Succursale      string `json:"succursale,omitempty"`
	TypeApplication string `json:"type_application,omitempty"`
	Statut          Status `json:"statut,omitempty"`
	Officer         int64  `json:"officer,omitempty"`
}

// ReportStats aggregates the selected applications by workflow state.
type ReportStats struct {
	Total        int     `json:"total"`
	EnAttente    int     `json:"en_attente"`
	Approuve     int     `json:"approuve"`
	Rejete       int     `json:"rejete"`
	MontantTotal float64 `json:"montant_total"`
}

// Period is the inclusive date range a report covers.
type Period struct {
	Debut string `json:"debut"`
	Fin   string `json:"fin"`
}

// Report is the generated report payload.
type Report struct {
	Statistiques ReportStats   `json:"statistiques"`
	Applications []Application `json:"applications"`
	Periode      Period        `json:"periode"`
}

// AuditEntry is one line of the backend audit log.
type AuditEntry struct {
	ID              int64          `json:"id"`
	UserName        string         `json:"user_name"`
	Action          string         `json:"action"`
	ActionDisplay   string         `json:"action_display"`
	ResourceType    string         `json:"resource_type"`
	ResourceID      string         `json:"resource_id"`
	ResourceDisplay string         `json:"resource_display"`
	IPAddress       string         `json:"ip_address"`
	Changes         map[string]any `json:"changes"`
	Status          string         `json:"status"`
	ErrorMessage    string         `json:"error_message"`
	Timestamp       time.Time      `json:"timestamp"`
}

// ListOptions holds pagination parameters.
type ListOptions struct {
	Page     int
	PageSize int
}
