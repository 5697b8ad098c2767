package store

import (
	"context"
	"testing"
	"time"

	"github.com/ankitsingh4634/taskify/internal/model"
)

// seedTask inserts a task with explicit status, end time and creation time.
func seedTask(t *testing.T, s *Store, userID int64, uid string, status model.TaskStatus, end, created time.Time) {
	t.Helper()
	task := testTask(userID, uid)
	task.Status = status
	task.EndTime = end
	task.CreatedAt = created
	if _, err := s.CreateTask(context.Background(), task); err != nil {
		t.Fatalf("CreateTask(%s) failed: %v", uid, err)
	}
}

// TestCountExceededTasks tests the overdue-and-not-completed filter
func TestCountExceededTasks(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	alice := testUser(t, s, "alice")
	bob := testUser(t, s, "bob")

	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	// Three overdue incomplete tasks for alice.
	seedTask(t, s, alice, "a1", model.StatusPending, past, now)
	seedTask(t, s, alice, "a2", model.StatusInProgress, past, now)
	seedTask(t, s, alice, "a3", model.StatusPending, past, now)
	// Overdue but completed: not exceeded.
	seedTask(t, s, alice, "a4", model.StatusCompleted, past, now)
	// Not yet due.
	seedTask(t, s, alice, "a5", model.StatusPending, future, now)
	// Other user's overdue task.
	seedTask(t, s, bob, "b1", model.StatusPending, past, now)

	count, err := s.CountExceededTasks(ctx, alice, now)
	if err != nil {
		t.Fatalf("CountExceededTasks() failed: %v", err)
	}
	if count != 3 {
		t.Errorf("CountExceededTasks() = %d, want 3", count)
	}

	all, err := s.CountExceededTasksAll(ctx, now)
	if err != nil {
		t.Fatalf("CountExceededTasksAll() failed: %v", err)
	}
	if all != 4 {
		t.Errorf("CountExceededTasksAll() = %d, want 4", all)
	}
}

// TestCountScopes tests user-scoped versus global counts
func TestCountScopes(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	alice := testUser(t, s, "alice")
	bob := testUser(t, s, "bob")

	now := time.Now().UTC()
	seedTask(t, s, alice, "a1", model.StatusCompleted, now, now)
	seedTask(t, s, alice, "a2", model.StatusPending, now, now)
	seedTask(t, s, bob, "b1", model.StatusCompleted, now, now)

	if n, _ := s.CountTasks(ctx, alice); n != 2 {
		t.Errorf("CountTasks(alice) = %d, want 2", n)
	}
	if n, _ := s.CountAllTasks(ctx); n != 3 {
		t.Errorf("CountAllTasks() = %d, want 3", n)
	}
	if n, _ := s.CountCompletedTasks(ctx); n != 2 {
		t.Errorf("CountCompletedTasks() = %d, want 2", n)
	}
	if n, _ := s.CountCompletedTasksByUser(ctx, alice); n != 1 {
		t.Errorf("CountCompletedTasksByUser(alice) = %d, want 1", n)
	}
}

// TestCountCreatedLastMonth tests the previous-calendar-month window
func TestCountCreatedLastMonth(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	alice := testUser(t, s, "alice")

	// Fix "now" to mid-March so the previous month is February of the
	// same year regardless of when the test runs.
	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
	feb := time.Date(2024, time.February, 10, 9, 0, 0, 0, time.UTC)
	jan := time.Date(2024, time.January, 10, 9, 0, 0, 0, time.UTC)

	seedTask(t, s, alice, "t-feb1", model.StatusPending, now, feb)
	seedTask(t, s, alice, "t-feb2", model.StatusPending, now, feb)
	seedTask(t, s, alice, "t-jan", model.StatusPending, now, jan)
	seedTask(t, s, alice, "t-mar", model.StatusPending, now, now)

	count, err := s.CountCreatedLastMonth(ctx, now)
	if err != nil {
		t.Fatalf("CountCreatedLastMonth() failed: %v", err)
	}
	if count != 2 {
		t.Errorf("CountCreatedLastMonth() = %d, want 2", count)
	}

	// January: previous month resolves to month zero, matching nothing.
	january := time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC)
	count, err = s.CountCreatedLastMonth(ctx, january)
	if err != nil {
		t.Fatalf("CountCreatedLastMonth(january) failed: %v", err)
	}
	if count != 0 {
		t.Errorf("CountCreatedLastMonth(january) = %d, want 0", count)
	}
}
