package dossier

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrSessionInvalid is reported when the refresh token is absent or the
// refresh call is rejected. The session controller reacts by clearing the
// local session; the only recovery is a fresh login.
var ErrSessionInvalid = errors.New("dossier: session invalid")

// ErrNotAuthenticated is returned by operations that require a hydrated,
// authenticated session.
var ErrNotAuthenticated = errors.New("dossier: not authenticated")

// APIError is a non-2xx response from the backend. Detail carries the
// user-displayable message extracted from the error payload when present.
type APIError struct {
	StatusCode int
	Detail     string
	Body       []byte
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("dossier: backend returned %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("dossier: backend returned %d", e.StatusCode)
}

// IsUnauthorized reports whether err is an APIError with status 401.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// IsForbidden reports whether err is an APIError with status 403.
func IsForbidden(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusForbidden
}
