// Package tokenstore provides durable local storage for the credential pair
// and the cached user profile.
//
// File persists the record as a single JSON document and replaces it
// atomically, so a reader never observes a half-written session. A record
// that cannot be parsed is treated as absent, never as an error.
package tokenstore

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	dossier "github.com/sogedesk/dossier-go"
)

// File implements dossier.TokenStore backed by a JSON file.
type File struct {
	mu   sync.Mutex
	path string
}

// compile-time check
var _ dossier.TokenStore = (*File)(nil)

// DefaultPath returns the default token record location under the per-user
// config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "dossier", "session.json"), nil
}

// NewFile creates a file-backed store at path. An empty path selects
// DefaultPath.
func NewFile(path string) (*File, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return &File{path: path}, nil
}

// Save persists both tokens and the user profile as one logical unit.
func (f *File) Save(creds dossier.Credentials, user *dossier.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.write(&dossier.StoredSession{Credentials: creds, User: user})
}

// Load returns the stored session, or (nil, nil) when the record is missing,
// incomplete, or unparsable.
func (f *File) Load() (*dossier.StoredSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.read(), nil
}

// Clear removes the stored record. Idempotent.
func (f *File) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := os.Remove(f.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// UpdateAccessToken replaces only the access token, leaving the refresh token
// and user untouched. A missing record makes this a no-op: there is nothing
// to refresh.
func (f *File) UpdateAccessToken(token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	sess := f.read()
	if sess == nil {
		return nil
	}
	sess.Credentials.AccessToken = token
	return f.write(sess)
}

func (f *File) read() *dossier.StoredSession {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil
	}

	var sess dossier.StoredSession
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil
	}
	if sess.Credentials.AccessToken == "" || sess.Credentials.RefreshToken == "" || sess.User == nil {
		return nil
	}
	return &sess
}

func (f *File) write(sess *dossier.StoredSession) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}
