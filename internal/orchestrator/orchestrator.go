// Package orchestrator sequences the dual write that keeps local task
// and contact records consistent with their remote CalDAV/CardDAV
// mirrors.
//
// Ordering rules:
//   - Create/update: remote first. The local row is only written after
//     the remote upsert succeeds, so a sync failure never leaves
//     partial local state.
//   - Delete: local first. A missing row short-circuits with not-found
//     before any transport; a remote failure after the local delete is
//     reported but not rolled back.
//
// Every remote call is preceded by a pending intent row in the outbox,
// which the sweeper later reconciles when one side failed.
package orchestrator

import (
	"context"

	"github.com/ankitsingh4634/taskify/internal/model"
	"github.com/ankitsingh4634/taskify/internal/store"
	"github.com/google/uuid"
)

// TaskStore is the persistence capability required for tasks.
type TaskStore interface {
	CreateTask(ctx context.Context, t *model.Task) (int64, error)
	TaskUID(ctx context.Context, taskID, userID int64) (string, error)
	UpdateTask(ctx context.Context, t *model.Task) (int64, error)
	DeleteTask(ctx context.Context, taskID, userID int64) (int64, error)
	ListTasks(ctx context.Context, userID int64) ([]model.Task, error)
}

// ContactStore is the persistence capability required for contacts.
type ContactStore interface {
	CreateContact(ctx context.Context, c *model.Contact) (int64, error)
	ContactUID(ctx context.Context, contactID, userID int64) (string, error)
	UpdateContact(ctx context.Context, c *model.Contact) (int64, error)
	DeleteContact(ctx context.Context, contactID, userID int64) (int64, error)
	ListContacts(ctx context.Context, userID int64) ([]model.Contact, error)
}

// IntentLog records sync intents for the outbox sweeper.
type IntentLog interface {
	EnqueueIntent(ctx context.Context, in *store.Intent) (int64, error)
	CommitIntent(ctx context.Context, id int64) error
	RecordIntentError(ctx context.Context, id int64, msg string) error
}

// SyncClient performs the remote half of the dual write. One attempt
// per call; retries are never part of a logical operation.
type SyncClient interface {
	PutTask(ctx context.Context, t *model.Task) error
	DeleteTask(ctx context.Context, uid string) error
	PutContact(ctx context.Context, c *model.Contact) error
	DeleteContact(ctx context.Context, uid string) error
}

// NewUID returns a fresh remote resource identifier. Random, not
// derived from wall-clock time, so concurrent creates cannot collide.
func NewUID() string {
	return uuid.NewString()
}
