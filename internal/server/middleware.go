package server

import (
	"context"
	"net/http"

	"github.com/ankitsingh4634/taskify/internal/analytics"
	"github.com/ankitsingh4634/taskify/internal/model"
	"github.com/ankitsingh4634/taskify/internal/orchestrator"
)

// TaskService is the task capability the server exposes.
type TaskService interface {
	Create(ctx context.Context, userID int64, in *orchestrator.TaskInput) (int64, error)
	Update(ctx context.Context, userID int64, in *orchestrator.TaskInput) (bool, error)
	Delete(ctx context.Context, userID, taskID int64) error
	List(ctx context.Context, userID int64) ([]model.Task, error)
}

// ContactService is the address-book capability the server exposes.
type ContactService interface {
	Create(ctx context.Context, userID int64, in *orchestrator.ContactInput) (int64, error)
	Update(ctx context.Context, userID int64, in *orchestrator.ContactInput) (bool, error)
	Delete(ctx context.Context, userID, contactID int64) error
	List(ctx context.Context, userID int64) ([]model.Contact, error)
}

// AnalyticsService computes dashboard snapshots.
type AnalyticsService interface {
	Snapshot(ctx context.Context, userID int64, scope analytics.Scope) (*model.AnalyticsSnapshot, error)
}

// AuthService registers accounts and resolves request identities.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) (int64, error)
	Login(ctx context.Context, username, password string) (string, error)
	Authenticate(ctx context.Context, r *http.Request) (int64, error)
}

// authedHandler is a handler that runs with a resolved user identity.
type authedHandler func(w http.ResponseWriter, r *http.Request, userID int64)

// requireAuth resolves the bearer token before the handler runs. Every
// mutating and listing route goes through this, deletes included.
func (s *Server) requireAuth(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := s.auth.Authenticate(r.Context(), r)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, messageResponse{Message: "authentication required"})
			return
		}
		next(w, r, userID)
	}
}
