package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ankitsingh4634/taskify/internal/model"
)

// CreateTask inserts a new task row and returns the assigned id.
func (s *Store) CreateTask(ctx context.Context, t *model.Task) (int64, error) {
	res, err := s.conn.ExecContext(ctx, `
		INSERT INTO tasks (user_id, title, description, start_time, end_time, status, caldav_uid, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, t.Title, t.Description,
		formatTime(t.StartTime), formatTime(t.EndTime),
		string(t.Status), t.CalDAVUID,
		formatTime(t.CreatedAt), formatTime(t.UpdatedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read task id: %w", err)
	}
	return id, nil
}

// TaskUID returns the CalDAV UID for a task owned by the given user.
// Returns ErrNotFound when the task is absent or owned by someone else.
func (s *Store) TaskUID(ctx context.Context, taskID, userID int64) (string, error) {
	var uid string
	err := s.conn.QueryRowContext(ctx,
		`SELECT caldav_uid FROM tasks WHERE id = ? AND user_id = ?`,
		taskID, userID,
	).Scan(&uid)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query task uid: %w", err)
	}
	return uid, nil
}

// UpdateTask updates a task row, scoped to its owner, and reports the
// number of rows affected. Zero rows means nothing changed.
func (s *Store) UpdateTask(ctx context.Context, t *model.Task) (int64, error) {
	res, err := s.conn.ExecContext(ctx, `
		UPDATE tasks
		SET title = ?, description = ?, start_time = ?, end_time = ?, status = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		t.Title, t.Description,
		formatTime(t.StartTime), formatTime(t.EndTime),
		string(t.Status), formatTime(t.UpdatedAt),
		t.ID, t.UserID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update task: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return rows, nil
}

// DeleteTask removes a task row, scoped to its owner, and reports the
// number of rows affected.
func (s *Store) DeleteTask(ctx context.Context, taskID, userID int64) (int64, error) {
	res, err := s.conn.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = ? AND user_id = ?`, taskID, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete task: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return rows, nil
}

// ListTasks returns all tasks owned by the given user.
func (s *Store) ListTasks(ctx context.Context, userID int64) ([]model.Task, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, user_id, title, description, start_time, end_time, status, caldav_uid, created_at, updated_at
		FROM tasks WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// TaskByUID returns the task mirrored at the given CalDAV UID,
// regardless of owner. Used by the outbox sweeper to re-derive remote
// state from local truth.
func (s *Store) TaskByUID(ctx context.Context, uid string) (*model.Task, error) {
	row := s.conn.QueryRowContext(ctx, `
		SELECT id, user_id, title, description, start_time, end_time, status, caldav_uid, created_at, updated_at
		FROM tasks WHERE caldav_uid = ?`, uid)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*model.Task, error) {
	var t model.Task
	var status, start, end, created, updated string
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &start, &end, &status, &t.CalDAVUID, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}
	t.Status = model.TaskStatus(status)
	t.StartTime = parseTime(start)
	t.EndTime = parseTime(end)
	t.CreatedAt = parseTime(created)
	t.UpdatedAt = parseTime(updated)
	return &t, nil
}
