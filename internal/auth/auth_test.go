package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/ankitsingh4634/taskify/internal/model"
	"github.com/ankitsingh4634/taskify/internal/store"
)

// fakeStore keeps accounts and sessions in memory.
type fakeStore struct {
	users    map[string]*model.User
	sessions map[string]session
	nextID   int64
}

type session struct {
	userID    int64
	expiresAt time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    make(map[string]*model.User),
		sessions: make(map[string]session),
		nextID:   1,
	}
}

func (f *fakeStore) CreateUser(_ context.Context, u *model.User) (int64, error) {
	if _, ok := f.users[u.Username]; ok {
		return 0, store.ErrDuplicate
	}
	id := f.nextID
	f.nextID++
	copied := *u
	copied.ID = id
	f.users[u.Username] = &copied
	return id, nil
}

func (f *fakeStore) UserByUsername(_ context.Context, username string) (*model.User, error) {
	u, ok := f.users[username]
	if !ok {
		return nil, store.ErrNotFound
	}
	return u, nil
}

func (f *fakeStore) CreateSession(_ context.Context, token string, userID int64, expiresAt time.Time) error {
	f.sessions[token] = session{userID: userID, expiresAt: expiresAt}
	return nil
}

func (f *fakeStore) SessionUser(_ context.Context, token string, now time.Time) (int64, error) {
	s, ok := f.sessions[token]
	if !ok || !now.Before(s.expiresAt) {
		return 0, store.ErrNotFound
	}
	return s.userID, nil
}

// TestRegisterLogin_RoundTrip tests register, login, and authenticate
func TestRegisterLogin_RoundTrip(t *testing.T) {
	svc := New(newFakeStore(), 0)
	ctx := context.Background()

	id, err := svc.Register(ctx, "alice", "alice@example.com", "hunter2")
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	token, err := svc.Login(ctx, "alice", "hunter2")
	if err != nil {
		t.Fatalf("Login() failed: %v", err)
	}
	if token == "" {
		t.Fatal("Login() returned an empty token")
	}

	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	userID, err := svc.Authenticate(ctx, req)
	if err != nil {
		t.Fatalf("Authenticate() failed: %v", err)
	}
	if userID != id {
		t.Errorf("Authenticate() = %d, want %d", userID, id)
	}
}

// TestRegister_Duplicate tests the duplicate account error
func TestRegister_Duplicate(t *testing.T) {
	svc := New(newFakeStore(), 0)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "alice@example.com", "hunter2"); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	_, err := svc.Register(ctx, "alice", "other@example.com", "hunter2")
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("second Register() = %v, want ErrDuplicate", err)
	}
}

// TestLogin_WrongPassword tests credential rejection
func TestLogin_WrongPassword(t *testing.T) {
	svc := New(newFakeStore(), 0)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "alice@example.com", "hunter2"); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	if _, err := svc.Login(ctx, "alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login(wrong password) = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(ctx, "nobody", "hunter2"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login(unknown user) = %v, want ErrInvalidCredentials", err)
	}
}

// TestAuthenticate_BadTokens tests missing and expired tokens
func TestAuthenticate_BadTokens(t *testing.T) {
	st := newFakeStore()
	svc := New(st, time.Hour)
	ctx := context.Background()

	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	if _, err := svc.Authenticate(ctx, req); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("Authenticate(no header) = %v, want ErrUnauthenticated", err)
	}

	req.Header.Set("Authorization", "Bearer bogus")
	if _, err := svc.Authenticate(ctx, req); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("Authenticate(unknown token) = %v, want ErrUnauthenticated", err)
	}

	if _, err := svc.Register(ctx, "alice", "alice@example.com", "hunter2"); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	token, err := svc.Login(ctx, "alice", "hunter2")
	if err != nil {
		t.Fatalf("Login() failed: %v", err)
	}

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	req.Header.Set("Authorization", "Bearer "+token)
	if _, err := svc.Authenticate(ctx, req); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("Authenticate(expired token) = %v, want ErrUnauthenticated", err)
	}
}
