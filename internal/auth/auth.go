// Package auth resolves request identities. Accounts are stored with
// bcrypt password digests; logins mint opaque session tokens with a
// fixed TTL.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ankitsingh4634/taskify/internal/model"
	"github.com/ankitsingh4634/taskify/internal/store"
)

// DefaultSessionTTL is how long a login token stays valid.
const DefaultSessionTTL = 24 * time.Hour

// ErrDuplicate reports a username or email that is already registered.
var ErrDuplicate = errors.New("username or email already registered")

// ErrInvalidCredentials reports a failed login.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ErrUnauthenticated reports a missing, unknown, or expired token.
var ErrUnauthenticated = errors.New("missing or invalid session token")

// Store is the persistence capability the auth service needs.
type Store interface {
	CreateUser(ctx context.Context, u *model.User) (int64, error)
	UserByUsername(ctx context.Context, username string) (*model.User, error)
	CreateSession(ctx context.Context, token string, userID int64, expiresAt time.Time) error
	SessionUser(ctx context.Context, token string, now time.Time) (int64, error)
}

// Service registers accounts and verifies sessions.
type Service struct {
	store      Store
	sessionTTL time.Duration

	now func() time.Time
}

// New creates an auth service. A zero ttl means DefaultSessionTTL.
func New(st Store, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Service{store: st, sessionTTL: ttl, now: time.Now}
}

// Register creates an account and returns its id. Duplicate usernames
// or emails return ErrDuplicate.
func (s *Service) Register(ctx context.Context, username, email, password string) (int64, error) {
	if username == "" || email == "" || password == "" {
		return 0, fmt.Errorf("username, email and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}

	id, err := s.store.CreateUser(ctx, &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	})
	if errors.Is(err, store.ErrDuplicate) {
		return 0, ErrDuplicate
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Login verifies the credentials and mints a session token.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.store.UserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}

	token := uuid.NewString()
	if err := s.store.CreateSession(ctx, token, user.ID, s.now().Add(s.sessionTTL)); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	return token, nil
}

// Authenticate resolves the request's bearer token to a user id.
func (s *Service) Authenticate(ctx context.Context, r *http.Request) (int64, error) {
	token := bearerToken(r)
	if token == "" {
		return 0, ErrUnauthenticated
	}

	userID, err := s.store.SessionUser(ctx, token, s.now())
	if errors.Is(err, store.ErrNotFound) {
		return 0, ErrUnauthenticated
	}
	if err != nil {
		return 0, err
	}
	return userID, nil
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
