// Package analytics computes the dashboard snapshot from the task
// tables. Counts are independent queries recomputed on every request;
// nothing is cached.
package analytics

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/ankitsingh4634/taskify/internal/model"
)

// Scope selects how the snapshot counts are bounded.
type Scope string

const (
	// ScopeLegacy mixes per-user and platform-wide counts: totalTasks
	// and exceededTasks are scoped to the caller while allTasks,
	// completedTasks and createdLastMonth are global. This reproduces
	// the dashboard's historical behavior.
	ScopeLegacy Scope = "legacy"

	// ScopeUser bounds every count to the caller.
	ScopeUser Scope = "user"

	// ScopeGlobal bounds no count.
	ScopeGlobal Scope = "global"
)

// ParseScope resolves a query-string scope value. Empty means legacy.
func ParseScope(raw string) (Scope, error) {
	switch Scope(raw) {
	case "":
		return ScopeLegacy, nil
	case ScopeLegacy, ScopeUser, ScopeGlobal:
		return Scope(raw), nil
	}
	return "", fmt.Errorf("invalid scope %q", raw)
}

// PercentageChange reports the relative change from previous to
// current as a rounded whole percentage. With no baseline, any growth
// saturates at 100 and no activity at all is 0.
func PercentageChange(current, previous int) int {
	if previous > 0 {
		return int(math.Round(float64(current-previous) / float64(previous) * 100))
	}
	if current > 0 {
		return 100
	}
	return 0
}

// Store is the counting capability the aggregator reads from.
type Store interface {
	CountTasks(ctx context.Context, userID int64) (int, error)
	CountAllTasks(ctx context.Context) (int, error)
	CountCompletedTasks(ctx context.Context) (int, error)
	CountCompletedTasksByUser(ctx context.Context, userID int64) (int, error)
	CountExceededTasks(ctx context.Context, userID int64, now time.Time) (int, error)
	CountExceededTasksAll(ctx context.Context, now time.Time) (int, error)
	CountCreatedLastMonth(ctx context.Context, now time.Time) (int, error)
	CountCreatedLastMonthByUser(ctx context.Context, userID int64, now time.Time) (int, error)
}

// Aggregator assembles analytics snapshots.
type Aggregator struct {
	store Store

	now func() time.Time
}

// New creates an aggregator over the given store.
func New(store Store) *Aggregator {
	return &Aggregator{store: store, now: time.Now}
}

// Snapshot computes the five counts and three percentage-change fields
// for the given user under the given scope.
func (a *Aggregator) Snapshot(ctx context.Context, userID int64, scope Scope) (*model.AnalyticsSnapshot, error) {
	now := a.now()

	var (
		snap model.AnalyticsSnapshot
		err  error
	)

	switch scope {
	case ScopeUser:
		if snap.TotalTasks, err = a.store.CountTasks(ctx, userID); err != nil {
			return nil, err
		}
		if snap.ExceededTasks, err = a.store.CountExceededTasks(ctx, userID, now); err != nil {
			return nil, err
		}
		snap.AllTasks = snap.TotalTasks
		if snap.CompletedTasks, err = a.store.CountCompletedTasksByUser(ctx, userID); err != nil {
			return nil, err
		}
		if snap.CreatedLastMonth, err = a.store.CountCreatedLastMonthByUser(ctx, userID, now); err != nil {
			return nil, err
		}

	case ScopeGlobal:
		if snap.TotalTasks, err = a.store.CountAllTasks(ctx); err != nil {
			return nil, err
		}
		if snap.ExceededTasks, err = a.store.CountExceededTasksAll(ctx, now); err != nil {
			return nil, err
		}
		snap.AllTasks = snap.TotalTasks
		if snap.CompletedTasks, err = a.store.CountCompletedTasks(ctx); err != nil {
			return nil, err
		}
		if snap.CreatedLastMonth, err = a.store.CountCreatedLastMonth(ctx, now); err != nil {
			return nil, err
		}

	default: // ScopeLegacy
		if snap.TotalTasks, err = a.store.CountTasks(ctx, userID); err != nil {
			return nil, err
		}
		if snap.ExceededTasks, err = a.store.CountExceededTasks(ctx, userID, now); err != nil {
			return nil, err
		}
		if snap.AllTasks, err = a.store.CountAllTasks(ctx); err != nil {
			return nil, err
		}
		if snap.CompletedTasks, err = a.store.CountCompletedTasks(ctx); err != nil {
			return nil, err
		}
		if snap.CreatedLastMonth, err = a.store.CountCreatedLastMonth(ctx, now); err != nil {
			return nil, err
		}
	}

	snap.PercentageChanges = model.PercentageChanges{
		TotalTasksChange:     PercentageChange(snap.TotalTasks, snap.CreatedLastMonth),
		CompletedTasksChange: PercentageChange(snap.CompletedTasks, snap.CreatedLastMonth),
		AllTasksChange:       PercentageChange(snap.AllTasks, snap.CreatedLastMonth),
	}
	return &snap, nil
}
