package tokenstore

import (
	"sync"

	dossier "github.com/sogedesk/dossier-go"
)

// Memory implements dossier.TokenStore in process memory. Intended for tests
// and short-lived tooling; nothing survives process exit.
type Memory struct {
	mu   sync.Mutex
	sess *dossier.StoredSession
}

var _ dossier.TokenStore = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Save(creds dossier.Credentials, user *dossier.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = &dossier.StoredSession{Credentials: creds, User: user}
	return nil
}

func (m *Memory) Load() (*dossier.StoredSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sess == nil || m.sess.Credentials.AccessToken == "" ||
		m.sess.Credentials.RefreshToken == "" || m.sess.User == nil {
		return nil, nil
	}
	cp := *m.sess
	return &cp, nil
}

func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = nil
	return nil
}

func (m *Memory) UpdateAccessToken(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sess == nil {
		return nil
	}
	m.sess.Credentials.AccessToken = token
	return nil
}
