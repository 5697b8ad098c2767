package store

import (
	"context"
	"fmt"
	"time"
)

// Intent states. Pending intents are picked up by the sweeper; failed
// is terminal after the sweeper exhausts its attempts.
const (
	IntentStatePending   = "pending"
	IntentStateCommitted = "committed"
	IntentStateFailed    = "failed"
)

// Intent operations.
const (
	IntentOpUpsert = "upsert"
	IntentOpDelete = "delete"
)

// Intent entity types.
const (
	EntityTask    = "task"
	EntityContact = "contact"
)

// Intent is a recorded plan to mutate a remote DAV resource. It is
// written before the remote call and committed after both sides agree,
// giving the sweeper an auditable trail of partial failures.
type Intent struct {
	ID         int64
	EntityType string
	EntityID   int64
	UID        string
	Op         string
	State      string
	Attempts   int
	LastError  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// EnqueueIntent records a new pending sync intent and returns its id.
func (s *Store) EnqueueIntent(ctx context.Context, in *Intent) (int64, error) {
	now := formatTime(time.Now())
	res, err := s.conn.ExecContext(ctx, `
		INSERT INTO outbox (entity_type, entity_id, uid, op, state, attempts, last_error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 0, '', ?, ?)`,
		in.EntityType, in.EntityID, in.UID, in.Op, IntentStatePending, now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to enqueue intent: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read intent id: %w", err)
	}
	return id, nil
}

// CommitIntent marks an intent as successfully applied on both sides.
func (s *Store) CommitIntent(ctx context.Context, id int64) error {
	_, err := s.conn.ExecContext(ctx,
		`UPDATE outbox SET state = ?, updated_at = ? WHERE id = ?`,
		IntentStateCommitted, formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("failed to commit intent: %w", err)
	}
	return nil
}

// RecordIntentError notes a failed attempt. The intent stays pending so
// the sweeper can reconcile it later.
func (s *Store) RecordIntentError(ctx context.Context, id int64, msg string) error {
	_, err := s.conn.ExecContext(ctx,
		`UPDATE outbox SET attempts = attempts + 1, last_error = ?, updated_at = ? WHERE id = ?`,
		msg, formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("failed to record intent error: %w", err)
	}
	return nil
}

// FailIntent marks an intent as terminally failed.
func (s *Store) FailIntent(ctx context.Context, id int64, msg string) error {
	_, err := s.conn.ExecContext(ctx,
		`UPDATE outbox SET state = ?, last_error = ?, updated_at = ? WHERE id = ?`,
		IntentStateFailed, msg, formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("failed to fail intent: %w", err)
	}
	return nil
}

// ListPendingIntents returns pending intents last touched before the
// given cutoff, oldest first. The cutoff keeps the sweeper from racing
// requests that are still in flight.
func (s *Store) ListPendingIntents(ctx context.Context, before time.Time, limit int) ([]Intent, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, entity_type, entity_id, uid, op, state, attempts, last_error, created_at, updated_at
		FROM outbox
		WHERE state = ? AND updated_at < ?
		ORDER BY id
		LIMIT ?`,
		IntentStatePending, formatTime(before), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending intents: %w", err)
	}
	defer rows.Close()

	var intents []Intent
	for rows.Next() {
		var in Intent
		var created, updated string
		if err := rows.Scan(&in.ID, &in.EntityType, &in.EntityID, &in.UID, &in.Op, &in.State, &in.Attempts, &in.LastError, &created, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan intent: %w", err)
		}
		in.CreatedAt = parseTime(created)
		in.UpdatedAt = parseTime(updated)
		intents = append(intents, in)
	}
	return intents, rows.Err()
}

// IntentByID returns a single intent row.
func (s *Store) IntentByID(ctx context.Context, id int64) (*Intent, error) {
	var in Intent
	var created, updated string
	err := s.conn.QueryRowContext(ctx, `
		SELECT id, entity_type, entity_id, uid, op, state, attempts, last_error, created_at, updated_at
		FROM outbox WHERE id = ?`, id,
	).Scan(&in.ID, &in.EntityType, &in.EntityID, &in.UID, &in.Op, &in.State, &in.Attempts, &in.LastError, &created, &updated)
	if err != nil {
		return nil, fmt.Errorf("failed to query intent: %w", err)
	}
	in.CreatedAt = parseTime(created)
	in.UpdatedAt = parseTime(updated)
	return &in, nil
}
