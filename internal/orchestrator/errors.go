package orchestrator

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError reports missing or malformed input, detected before
// any I/O.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// AuthError reports a missing or invalid identity.
type AuthError struct {
	Msg string
}

func (e *AuthError) Error() string { return e.Msg }

// NotFoundError reports an entity that is absent or not owned by the
// caller. The two cases are deliberately indistinguishable.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

// SyncError reports that the remote DAV server rejected a call or was
// unreachable. Err usually wraps a dav.RemoteError whose body is the
// distinguishing remote failure text.
type SyncError struct {
	Op  string
	Err error
}

func (e *SyncError) Error() string { return fmt.Sprintf("sync failed during %s: %v", e.Op, e.Err) }
func (e *SyncError) Unwrap() error { return e.Err }

// StoreError reports a persistence failure.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("store failed during %s: %v", e.Op, e.Err) }
func (e *StoreError) Unwrap() error { return e.Err }

// HTTPStatus maps an orchestration error onto the status code the API
// surface reports.
func HTTPStatus(err error) int {
	var validationErr *ValidationError
	var authErr *AuthError
	var notFoundErr *NotFoundError
	var syncErr *SyncError

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &authErr):
		return http.StatusUnauthorized
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	case errors.As(err, &syncErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
