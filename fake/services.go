package fake

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	dossier "github.com/sogedesk/dossier-go"
)

// usersAPI adapts the fake to user.Backend.
type usersAPI struct{ b *Backend }

func (a *usersAPI) List(ctx context.Context) ([]*dossier.User, error) {
	b := a.b
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]*dossier.User, 0, len(b.users))
	for _, u := range b.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (a *usersAPI) Create(ctx context.Context, in dossier.CreateUserInput) (*dossier.User, error) {
	b := a.b
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.userByUsername(in.Username) != nil {
		return nil, apiError(http.StatusBadRequest, "nom d'utilisateur déjà pris")
	}

	b.nextUserID++
	u := &dossier.User{
		ID:         b.nextUserID,
		Username:   in.Username,
		Email:      in.Email,
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Role:       in.Role,
		Branch:     in.Branch,
		Phone:      in.Phone,
		IsActive:   true,
		FirstLogin: true,
	}
	b.users[u.ID] = u
	b.passwords[in.Username] = in.Password

	cp := *u
	return &cp, nil
}

func (a *usersAPI) Update(ctx context.Context, id int64, in dossier.UpdateUserInput) (*dossier.User, error) {
	b := a.b
	b.mu.Lock()
	defer b.mu.Unlock()

	u, ok := b.users[id]
	if !ok {
		return nil, apiError(http.StatusNotFound, "utilisateur introuvable")
	}

	if in.Email != nil {
		u.Email = *in.Email
	}
	if in.FirstName != nil {
		u.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		u.LastName = *in.LastName
	}
	if in.Role != nil {
		u.Role = *in.Role
	}
	if in.Branch != nil {
		u.Branch = *in.Branch
	}
	if in.Phone != nil {
		u.Phone = *in.Phone
	}

	cp := *u
	return &cp, nil
}

func (a *usersAPI) ToggleActive(ctx context.Context, id int64) (bool, error) {
	b := a.b
	b.mu.Lock()
	defer b.mu.Unlock()

	u, ok := b.users[id]
	if !ok {
		return false, apiError(http.StatusNotFound, "utilisateur introuvable")
	}
	u.IsActive = !u.IsActive
	return u.IsActive, nil
}

// applicationsAPI adapts the fake to application.Backend.
type applicationsAPI struct{ b *Backend }

func matchesFilter(app *dossier.Application, f dossier.ApplicationFilter) bool {
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		hay := strings.ToLower(app.NomClient + " " + app.PrenomClient + " " + app.ApplicationID + " " + app.CIN)
		if !strings.Contains(hay, needle) {
			return false
		}
	}
	if f.Statut != "" && app.Statut != f.Statut {
		return false
	}
	if f.Succursale != "" && app.Succursale != f.Succursale {
		return false
	}
	if f.TypeDossier != "" && app.TypeDossier != f.TypeDossier {
		return false
	}
	if f.Officer != 0 && (app.OfficerCredit == nil || *app.OfficerCredit != f.Officer) {
		return false
	}
	return inDateRange(app.DateSaisie, f.DateDebut, f.DateFin)
}

// inDateRange treats the bounds as inclusive calendar days.
func inDateRange(at time.Time, debut, fin string) bool {
	if debut != "" {
		from, err := time.Parse("2006-01-02", debut)
		if err == nil && at.Before(from) {
			return false
		}
	}
	if fin != "" {
		to, err := time.Parse("2006-01-02", fin)
		if err == nil && !at.Before(to.AddDate(0, 0, 1)) {
			return false
		}
	}
	return true
}

func (a *applicationsAPI) List(ctx context.Context, f dossier.ApplicationFilter) ([]*dossier.Application, error) {
	b := a.b
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]*dossier.Application, 0, len(b.apps))
	for _, app := range b.apps {
		if matchesFilter(app, f) {
			cp := *app
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (a *applicationsAPI) Get(ctx context.Context, id int64) (*dossier.Application, error) {
	b := a.b
	b.mu.RLock()
	defer b.mu.RUnlock()

	app, ok := b.apps[id]
	if !ok {
		return nil, apiError(http.StatusNotFound, "dossier introuvable")
	}
	cp := *app
	return &cp, nil
}

func (a *applicationsAPI) Create(ctx context.Context, app *dossier.Application) (*dossier.Application, error) {
	b := a.b
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextAppID++
	cp := *app
	cp.ID = b.nextAppID
	if cp.ApplicationID == "" {
		cp.ApplicationID = fmt.Sprintf("APP-%05d", cp.ID)
	}
	if cp.Statut == "" {
		cp.Statut = dossier.StatusPending
	}
	if cp.DateSaisie.IsZero() {
		cp.DateSaisie = b.now()
	}
	b.apps[cp.ID] = &cp
	b.appendHistory(cp.ID, "creation", "Dossier créé", cp.CreatedByName)

	out := cp
	return &out, nil
}

func (a *applicationsAPI) Update(ctx context.Context, id int64, p dossier.ApplicationPatch) (*dossier.Application, error) {
	b := a.b
	b.mu.Lock()
	defer b.mu.Unlock()

	app, ok := b.apps[id]
	if !ok {
		return nil, apiError(http.StatusNotFound, "dossier introuvable")
	}

	statusChanged := p.Statut != nil && *p.Statut != app.Statut
	applyPatch(app, p)
	app.UpdatedAt = b.now()

	if statusChanged {
		b.appendHistory(id, "decision", fmt.Sprintf("Statut changé en %s", app.Statut), "")
	} else {
		b.appendHistory(id, "modification", "Dossier modifié", "")
	}

	cp := *app
	return &cp, nil
}

func applyPatch(app *dossier.Application, p dossier.ApplicationPatch) {
	if p.Statut != nil {
		app.Statut = *p.Statut
	}
	if p.OfficerCredit != nil {
		v := *p.OfficerCredit
		app.OfficerCredit = &v
	}
	if p.TypeCarteFinal != nil {
		app.TypeCarteFinal = *p.TypeCarteFinal
	}
	if p.Raison != nil {
		app.Raison = *p.Raison
	}
	if p.LimiteCreditApprouve != nil {
		v := *p.LimiteCreditApprouve
		app.LimiteCreditApprouve = &v
	}
	if p.DateDecision != nil {
		app.DateDecision = *p.DateDecision
	}
	if p.CommentaireTraitement != nil {
		app.CommentaireTraitement = *p.CommentaireTraitement
	}
	if p.NomClient != nil {
		app.NomClient = *p.NomClient
	}
	if p.PrenomClient != nil {
		app.PrenomClient = *p.PrenomClient
	}
	if p.CIN != nil {
		app.CIN = *p.CIN
	}
	if p.TelephoneClient != nil {
		app.TelephoneClient = *p.TelephoneClient
	}
	if p.EmailClient != nil {
		app.EmailClient = *p.EmailClient
	}
	if p.AdresseClient != nil {
		app.AdresseClient = *p.AdresseClient
	}
	if p.DateNaissance != nil {
		app.DateNaissance = *p.DateNaissance
	}
	if p.MontantGenere != nil {
		app.MontantGenere = *p.MontantGenere
	}
	if p.Commentaire != nil {
		app.Commentaire = *p.Commentaire
	}
}

// AssignOfficer rejects inactive targets and non-officer accounts, then
// records a history line and notifies the officer.
func (a *applicationsAPI) AssignOfficer(ctx context.Context, id, officerID int64) (*dossier.Application, error) {
	b := a.b
	b.mu.Lock()
	defer b.mu.Unlock()

	app, ok := b.apps[id]
	if !ok {
		return nil, apiError(http.StatusNotFound, "dossier introuvable")
	}
	officer, ok := b.users[officerID]
	if !ok {
		return nil, apiError(http.StatusBadRequest, "officier introuvable")
	}
	if officer.Role != dossier.RoleOfficer {
		return nil, apiError(http.StatusBadRequest, "la cible n'est pas un officier de crédit")
	}
	if !officer.IsActive {
		return nil, apiError(http.StatusBadRequest, "officier désactivé")
	}
	if app.OfficerCredit != nil && *app.OfficerCredit == officerID {
		return nil, apiError(http.StatusBadRequest, "dossier déjà assigné à cet officier")
	}

	app.OfficerCredit = &officer.ID
	app.OfficerName = officer.FullName()
	app.UpdatedAt = b.now()

	b.appendHistory(id, "assignation", fmt.Sprintf("Assigné à %s", officer.FullName()), "")

	b.nextNotifID++
	b.notifs = append(b.notifs, &dossier.Notification{
		ID:          b.nextNotifID,
		Title:       "Nouveau dossier assigné",
		Message:     fmt.Sprintf("Le dossier %s vous a été assigné", app.ApplicationID),
		Application: &app.ID,
		CreatedAt:   b.now(),
	})

	cp := *app
	return &cp, nil
}

func (a *applicationsAPI) History(ctx context.Context, id int64) ([]*dossier.HistoryEntry, error) {
	b := a.b
	b.mu.RLock()
	defer b.mu.RUnlock()

	if _, ok := b.apps[id]; !ok {
		return nil, apiError(http.StatusNotFound, "dossier introuvable")
	}

	entries := b.history[id]
	out := make([]*dossier.HistoryEntry, 0, len(entries))
	for _, e := range entries {
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

// appendHistory prepends an entry. Callers hold the lock.
func (b *Backend) appendHistory(appID int64, action, details, userName string) {
	entry := &dossier.HistoryEntry{
		ID:        int64(len(b.history[appID]) + 1),
		Action:    action,
		Details:   details,
		UserName:  userName,
		Timestamp: b.now(),
	}
	b.history[appID] = append([]*dossier.HistoryEntry{entry}, b.history[appID]...)
}

// notificationsAPI adapts the fake to notification.Backend.
type notificationsAPI struct{ b *Backend }

func (a *notificationsAPI) List(ctx context.Context) ([]*dossier.Notification, error) {
	b := a.b
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]*dossier.Notification, 0, len(b.notifs))
	for i := len(b.notifs) - 1; i >= 0; i-- {
		cp := *b.notifs[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (a *notificationsAPI) MarkAllRead(ctx context.Context) error {
	b := a.b
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, n := range b.notifs {
		n.IsRead = true
	}
	return nil
}

// auditLogsAPI adapts the fake to auditlog.Backend.
type auditLogsAPI struct{ b *Backend }

func (a *auditLogsAPI) List(ctx context.Context, opts dossier.ListOptions) ([]dossier.AuditEntry, int, error) {
	b := a.b
	b.mu.RLock()
	defer b.mu.RUnlock()

	total := len(b.audit)
	start := (opts.Page - 1) * opts.PageSize
	if start >= total {
		return []dossier.AuditEntry{}, total, nil
	}
	end := start + opts.PageSize
	if end > total {
		end = total
	}

	out := make([]dossier.AuditEntry, end-start)
	copy(out, b.audit[start:end])
	return out, total, nil
}
