// Package outbox reconciles sync intents that a request left pending.
//
// Every remote DAV call is preceded by a pending intent row. When both
// halves of a dual write succeed the intent is committed; when either
// half fails the intent stays pending and the sweeper later re-derives
// the correct remote state from local truth:
//
//   - upsert intent, local row exists: re-put the resource.
//   - upsert intent, local row missing: the remote write may have
//     landed without a local insert, so issue a compensating delete.
//   - delete intent: retry the remote delete; 404 counts as done.
//
// Intents that keep failing are marked terminally failed after a
// bounded number of attempts.
package outbox

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ankitsingh4634/taskify/internal/dav"
	"github.com/ankitsingh4634/taskify/internal/model"
	"github.com/ankitsingh4634/taskify/internal/store"
)

// Store is the persistence capability the sweeper needs.
type Store interface {
	ListPendingIntents(ctx context.Context, before time.Time, limit int) ([]store.Intent, error)
	CommitIntent(ctx context.Context, id int64) error
	RecordIntentError(ctx context.Context, id int64, msg string) error
	FailIntent(ctx context.Context, id int64, msg string) error
	TaskByUID(ctx context.Context, uid string) (*model.Task, error)
	ContactByUID(ctx context.Context, uid string) (*model.Contact, error)
}

// SyncClient is the remote capability the sweeper needs.
type SyncClient interface {
	PutTask(ctx context.Context, t *model.Task) error
	DeleteTask(ctx context.Context, uid string) error
	PutContact(ctx context.Context, c *model.Contact) error
	DeleteContact(ctx context.Context, uid string) error
}

// Config holds sweeper tuning knobs.
type Config struct {
	// Interval between reconciliation passes.
	Interval time.Duration

	// GracePeriod is how long an intent must sit untouched before the
	// sweeper picks it up, so in-flight requests are not raced.
	GracePeriod time.Duration

	// BatchSize caps the intents processed per pass.
	BatchSize int

	// MaxAttempts is the total attempt budget before an intent is
	// marked terminally failed.
	MaxAttempts int
}

// DefaultConfig returns the sweeper defaults.
func DefaultConfig() Config {
	return Config{
		Interval:    30 * time.Second,
		GracePeriod: 10 * time.Second,
		BatchSize:   50,
		MaxAttempts: 5,
	}
}

// Sweeper periodically reconciles pending intents against the remote
// DAV server.
type Sweeper struct {
	store  Store
	sync   SyncClient
	config Config
	logger *log.Logger

	now func() time.Time
}

// New creates a sweeper. If logger is nil, a default logger writing to
// stderr is used.
func New(st Store, sync SyncClient, config Config, logger *log.Logger) *Sweeper {
	if logger == nil {
		logger = log.New(os.Stderr, "[sweeper] ", log.LstdFlags)
	}
	if config.Interval <= 0 {
		config.Interval = DefaultConfig().Interval
	}
	if config.GracePeriod <= 0 {
		config.GracePeriod = DefaultConfig().GracePeriod
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultConfig().BatchSize
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultConfig().MaxAttempts
	}
	return &Sweeper{
		store:  st,
		sync:   sync,
		config: config,
		logger: logger,
		now:    time.Now,
	}
}

// Start runs reconciliation passes until the context is canceled. It
// blocks; run it in its own goroutine.
func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Printf("sweeper started, interval=%s", s.config.Interval)
	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Printf("sweeper stopped: %v", ctx.Err())
			return
		case <-ticker.C:
			if n, err := s.RunOnce(ctx); err != nil {
				s.logger.Printf("sweep pass failed: %v", err)
			} else if n > 0 {
				s.logger.Printf("sweep pass reconciled %d intents", n)
			}
		}
	}
}

// RunOnce performs a single reconciliation pass and returns the number
// of intents it resolved.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.config.GracePeriod)
	intents, err := s.store.ListPendingIntents(ctx, cutoff, s.config.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending intents: %w", err)
	}

	resolved := 0
	for _, intent := range intents {
		if err := ctx.Err(); err != nil {
			return resolved, err
		}
		if err := s.reconcile(ctx, &intent); err != nil {
			s.noteFailure(ctx, &intent, err)
			continue
		}
		if err := s.store.CommitIntent(ctx, intent.ID); err != nil {
			s.logger.Printf("failed to commit intent %d: %v", intent.ID, err)
			continue
		}
		resolved++
	}
	return resolved, nil
}

// reconcile re-derives the remote state for one intent from local
// truth.
func (s *Sweeper) reconcile(ctx context.Context, intent *store.Intent) error {
	switch intent.Op {
	case store.IntentOpDelete:
		return s.remoteDelete(ctx, intent)
	case store.IntentOpUpsert:
		return s.remoteUpsert(ctx, intent)
	default:
		return fmt.Errorf("unknown intent op %q", intent.Op)
	}
}

func (s *Sweeper) remoteUpsert(ctx context.Context, intent *store.Intent) error {
	switch intent.EntityType {
	case store.EntityTask:
		task, err := s.store.TaskByUID(ctx, intent.UID)
		if errors.Is(err, store.ErrNotFound) {
			// The local insert never landed, so the remote resource is
			// an orphan.
			return s.remoteDelete(ctx, intent)
		}
		if err != nil {
			return err
		}
		return s.sync.PutTask(ctx, task)

	case store.EntityContact:
		contact, err := s.store.ContactByUID(ctx, intent.UID)
		if errors.Is(err, store.ErrNotFound) {
			return s.remoteDelete(ctx, intent)
		}
		if err != nil {
			return err
		}
		return s.sync.PutContact(ctx, contact)

	default:
		return fmt.Errorf("unknown entity type %q", intent.EntityType)
	}
}

func (s *Sweeper) remoteDelete(ctx context.Context, intent *store.Intent) error {
	var err error
	switch intent.EntityType {
	case store.EntityTask:
		err = s.sync.DeleteTask(ctx, intent.UID)
	case store.EntityContact:
		err = s.sync.DeleteContact(ctx, intent.UID)
	default:
		return fmt.Errorf("unknown entity type %q", intent.EntityType)
	}

	// A resource that is already gone is the desired end state.
	var remoteErr *dav.RemoteError
	if errors.As(err, &remoteErr) && remoteErr.NotFound() {
		return nil
	}
	return err
}

// noteFailure records the failed attempt and retires the intent once
// the attempt budget is spent.
func (s *Sweeper) noteFailure(ctx context.Context, intent *store.Intent, cause error) {
	s.logger.Printf("intent %d (%s %s uid=%s) failed attempt %d: %v",
		intent.ID, intent.Op, intent.EntityType, intent.UID, intent.Attempts+1, cause)

	if intent.Attempts+1 >= s.config.MaxAttempts {
		if err := s.store.FailIntent(ctx, intent.ID, cause.Error()); err != nil {
			s.logger.Printf("failed to retire intent %d: %v", intent.ID, err)
		}
		return
	}
	if err := s.store.RecordIntentError(ctx, intent.ID, cause.Error()); err != nil {
		s.logger.Printf("failed to record intent error: %v", err)
	}
}
