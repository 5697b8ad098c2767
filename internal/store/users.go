package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ankitsingh4634/taskify/internal/model"
)

// CreateUser inserts a new account row. Returns ErrDuplicate when the
// username or email is already taken.
func (s *Store) CreateUser(ctx context.Context, u *model.User) (int64, error) {
	var count int
	err := s.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE username = ? OR email = ?`,
		u.Username, u.Email,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to check existing user: %w", err)
	}
	if count > 0 {
		return 0, ErrDuplicate
	}

	res, err := s.conn.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		u.Username, u.Email, u.PasswordHash, formatTime(u.CreatedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read user id: %w", err)
	}
	return id, nil
}

// UserByUsername returns the account with the given username.
func (s *Store) UserByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	var created string
	err := s.conn.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE username = ?`,
		username,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	u.CreatedAt = parseTime(created)
	return &u, nil
}

// CreateSession records an opaque session token for a user.
func (s *Store) CreateSession(ctx context.Context, token string, userID int64, expiresAt time.Time) error {
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, expires_at, created_at) VALUES (?, ?, ?, ?)`,
		token, userID, formatTime(expiresAt), formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// SessionUser resolves a session token to its user id. Expired or
// unknown tokens return ErrNotFound.
func (s *Store) SessionUser(ctx context.Context, token string, now time.Time) (int64, error) {
	var userID int64
	var expires string
	err := s.conn.QueryRowContext(ctx,
		`SELECT user_id, expires_at FROM sessions WHERE token = ?`, token,
	).Scan(&userID, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query session: %w", err)
	}
	if !now.Before(parseTime(expires)) {
		return 0, ErrNotFound
	}
	return userID, nil
}

// PurgeExpiredSessions removes sessions that expired before now.
func (s *Store) PurgeExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.conn.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at <= ?`, formatTime(now))
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	return res.RowsAffected()
}
