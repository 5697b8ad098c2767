package store

import (
	"context"
	"fmt"
	"time"

	"github.com/ankitsingh4634/taskify/internal/model"
)

// Count queries backing the dashboard aggregator. Each count is an
// independent query; nothing is cached between requests.

// CountTasks returns the number of tasks owned by the given user.
func (s *Store) CountTasks(ctx context.Context, userID int64) (int, error) {
	return s.countRow(ctx, `SELECT COUNT(*) FROM tasks WHERE user_id = ?`, userID)
}

// CountAllTasks returns the number of tasks across all users.
func (s *Store) CountAllTasks(ctx context.Context) (int, error) {
	return s.countRow(ctx, `SELECT COUNT(*) FROM tasks`)
}

// CountCompletedTasks returns the number of completed tasks across all
// users.
func (s *Store) CountCompletedTasks(ctx context.Context) (int, error) {
	return s.countRow(ctx, `SELECT COUNT(*) FROM tasks WHERE status = ?`, string(model.StatusCompleted))
}

// CountCompletedTasksByUser returns the number of completed tasks owned
// by the given user.
func (s *Store) CountCompletedTasksByUser(ctx context.Context, userID int64) (int, error) {
	return s.countRow(ctx, `SELECT COUNT(*) FROM tasks WHERE status = ? AND user_id = ?`,
		string(model.StatusCompleted), userID)
}

// CountExceededTasks returns the number of tasks owned by the user
// whose end time has passed without the task being completed.
func (s *Store) CountExceededTasks(ctx context.Context, userID int64, now time.Time) (int, error) {
	return s.countRow(ctx,
		`SELECT COUNT(*) FROM tasks WHERE end_time < ? AND status != ? AND user_id = ?`,
		formatTime(now), string(model.StatusCompleted), userID)
}

// CountExceededTasksAll is the unscoped variant of CountExceededTasks.
func (s *Store) CountExceededTasksAll(ctx context.Context, now time.Time) (int, error) {
	return s.countRow(ctx,
		`SELECT COUNT(*) FROM tasks WHERE end_time < ? AND status != ?`,
		formatTime(now), string(model.StatusCompleted))
}

// CountCreatedLastMonth returns the number of tasks created during the
// previous calendar month of the current year. In January the previous
// month resolves to month zero and the count is zero; this mirrors the
// dashboard's historical MONTH(NOW())-1 arithmetic.
func (s *Store) CountCreatedLastMonth(ctx context.Context, now time.Time) (int, error) {
	return s.countRow(ctx,
		`SELECT COUNT(*) FROM tasks WHERE strftime('%Y-%m', created_at) = ?`,
		lastMonthPattern(now))
}

// CountCreatedLastMonthByUser is the user-scoped variant of
// CountCreatedLastMonth.
func (s *Store) CountCreatedLastMonthByUser(ctx context.Context, userID int64, now time.Time) (int, error) {
	return s.countRow(ctx,
		`SELECT COUNT(*) FROM tasks WHERE strftime('%Y-%m', created_at) = ? AND user_id = ?`,
		lastMonthPattern(now), userID)
}

func lastMonthPattern(now time.Time) string {
	return fmt.Sprintf("%04d-%02d", now.Year(), int(now.Month())-1)
}

func (s *Store) countRow(ctx context.Context, query string, args ...any) (int, error) {
	var count int
	if err := s.conn.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	return count, nil
}
