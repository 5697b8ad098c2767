package orchestrator

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

// TestHTTPStatus tests the error-to-status mapping
func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &ValidationError{Msg: "missing title"}, http.StatusBadRequest},
		{"auth", &AuthError{Msg: "bad token"}, http.StatusUnauthorized},
		{"not found", &NotFoundError{Resource: "task"}, http.StatusNotFound},
		{"sync", &SyncError{Op: "create task", Err: errors.New("boom")}, http.StatusBadGateway},
		{"store", &StoreError{Op: "create task", Err: errors.New("boom")}, http.StatusInternalServerError},
		{"wrapped sync", fmt.Errorf("outer: %w", &SyncError{Op: "x", Err: errors.New("y")}), http.StatusBadGateway},
		{"unknown", errors.New("mystery"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

// TestSyncError_Unwrap tests that the remote cause stays reachable
func TestSyncError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &SyncError{Op: "create task", Err: cause}
	if !errors.Is(err, cause) {
		t.Error("SyncError does not unwrap to its cause")
	}
}
