package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ankitsingh4634/taskify/internal/dav"
	"github.com/ankitsingh4634/taskify/internal/model"
	"github.com/ankitsingh4634/taskify/internal/store"
)

// fakeStore holds intents and entity rows in memory.
type fakeStore struct {
	intents  map[int64]*store.Intent
	tasks    map[string]*model.Task
	contacts map[string]*model.Contact
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		intents:  make(map[int64]*store.Intent),
		tasks:    make(map[string]*model.Task),
		contacts: make(map[string]*model.Contact),
	}
}

func (f *fakeStore) addIntent(id int64, entityType, op, uid string, attempts int) {
	f.intents[id] = &store.Intent{
		ID:         id,
		EntityType: entityType,
		UID:        uid,
		Op:         op,
		State:      store.IntentStatePending,
		Attempts:   attempts,
	}
}

func (f *fakeStore) ListPendingIntents(_ context.Context, _ time.Time, limit int) ([]store.Intent, error) {
	var out []store.Intent
	for _, in := range f.intents {
		if in.State == store.IntentStatePending && len(out) < limit {
			out = append(out, *in)
		}
	}
	return out, nil
}

func (f *fakeStore) CommitIntent(_ context.Context, id int64) error {
	f.intents[id].State = store.IntentStateCommitted
	return nil
}

func (f *fakeStore) RecordIntentError(_ context.Context, id int64, msg string) error {
	f.intents[id].Attempts++
	f.intents[id].LastError = msg
	return nil
}

func (f *fakeStore) FailIntent(_ context.Context, id int64, msg string) error {
	f.intents[id].State = store.IntentStateFailed
	f.intents[id].LastError = msg
	return nil
}

func (f *fakeStore) TaskByUID(_ context.Context, uid string) (*model.Task, error) {
	t, ok := f.tasks[uid]
	if !ok {
		return nil, store.ErrNotFound
	}
	return t, nil
}

func (f *fakeStore) ContactByUID(_ context.Context, uid string) (*model.Contact, error) {
	c, ok := f.contacts[uid]
	if !ok {
		return nil, store.ErrNotFound
	}
	return c, nil
}

// fakeSync records remote calls.
type fakeSync struct {
	putTasks     []string
	putContacts  []string
	deletedTasks []string
	deletedCards []string
	putErr       error
	deleteErr    error
}

func (f *fakeSync) PutTask(_ context.Context, t *model.Task) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.putTasks = append(f.putTasks, t.CalDAVUID)
	return nil
}

func (f *fakeSync) DeleteTask(_ context.Context, uid string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedTasks = append(f.deletedTasks, uid)
	return nil
}

func (f *fakeSync) PutContact(_ context.Context, c *model.Contact) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.putContacts = append(f.putContacts, c.CardDAVUID)
	return nil
}

func (f *fakeSync) DeleteContact(_ context.Context, uid string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedCards = append(f.deletedCards, uid)
	return nil
}

func testSweeper(st *fakeStore, sync *fakeSync) *Sweeper {
	return New(st, sync, DefaultConfig(), nil)
}

// TestNew_Defaults tests that zero config fields fall back to defaults
func TestNew_Defaults(t *testing.T) {
	sw := New(newFakeStore(), &fakeSync{}, Config{}, nil)

	want := DefaultConfig()
	if sw.config.Interval != want.Interval {
		t.Errorf("Interval = %s, want %s", sw.config.Interval, want.Interval)
	}
	if sw.config.GracePeriod != want.GracePeriod {
		t.Errorf("GracePeriod = %s, want %s", sw.config.GracePeriod, want.GracePeriod)
	}
	if sw.config.BatchSize != want.BatchSize {
		t.Errorf("BatchSize = %d, want %d", sw.config.BatchSize, want.BatchSize)
	}
	if sw.config.MaxAttempts != want.MaxAttempts {
		t.Errorf("MaxAttempts = %d, want %d", sw.config.MaxAttempts, want.MaxAttempts)
	}
}

// TestRunOnce_UpsertWithRow tests that a pending upsert re-puts the
// local row
func TestRunOnce_UpsertWithRow(t *testing.T) {
	st, sync := newFakeStore(), &fakeSync{}
	st.tasks["uid-1"] = &model.Task{ID: 1, CalDAVUID: "uid-1", Title: "Plan sprint"}
	st.addIntent(1, store.EntityTask, store.IntentOpUpsert, "uid-1", 1)

	sw := testSweeper(st, sync)
	n, err := sw.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce() failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("resolved %d intents, want 1", n)
	}
	if len(sync.putTasks) != 1 || sync.putTasks[0] != "uid-1" {
		t.Errorf("remote puts = %v, want [uid-1]", sync.putTasks)
	}
	if st.intents[1].State != store.IntentStateCommitted {
		t.Errorf("intent state = %s, want committed", st.intents[1].State)
	}
}

// TestRunOnce_UpsertOrphan tests the compensating delete when the local
// row never landed
func TestRunOnce_UpsertOrphan(t *testing.T) {
	st, sync := newFakeStore(), &fakeSync{}
	st.addIntent(1, store.EntityTask, store.IntentOpUpsert, "uid-orphan", 1)

	sw := testSweeper(st, sync)
	if _, err := sw.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() failed: %v", err)
	}
	if len(sync.deletedTasks) != 1 || sync.deletedTasks[0] != "uid-orphan" {
		t.Errorf("remote deletes = %v, want [uid-orphan]", sync.deletedTasks)
	}
	if len(sync.putTasks) != 0 {
		t.Errorf("orphan upsert issued a put: %v", sync.putTasks)
	}
	if st.intents[1].State != store.IntentStateCommitted {
		t.Errorf("intent state = %s, want committed", st.intents[1].State)
	}
}

// TestRunOnce_DeleteRetry tests the delete retry path
func TestRunOnce_DeleteRetry(t *testing.T) {
	st, sync := newFakeStore(), &fakeSync{}
	st.addIntent(1, store.EntityContact, store.IntentOpDelete, "uid-c1", 1)

	sw := testSweeper(st, sync)
	if _, err := sw.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() failed: %v", err)
	}
	if len(sync.deletedCards) != 1 || sync.deletedCards[0] != "uid-c1" {
		t.Errorf("remote deletes = %v, want [uid-c1]", sync.deletedCards)
	}
	if st.intents[1].State != store.IntentStateCommitted {
		t.Errorf("intent state = %s, want committed", st.intents[1].State)
	}
}

// TestRunOnce_DeleteGone tests that a remote 404 counts as success
func TestRunOnce_DeleteGone(t *testing.T) {
	st := newFakeStore()
	sync := &fakeSync{deleteErr: &dav.RemoteError{StatusCode: 404, Body: "gone"}}
	st.addIntent(1, store.EntityTask, store.IntentOpDelete, "uid-1", 1)

	sw := testSweeper(st, sync)
	n, err := sw.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce() failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("resolved %d intents, want 1", n)
	}
	if st.intents[1].State != store.IntentStateCommitted {
		t.Errorf("intent state = %s, want committed", st.intents[1].State)
	}
}

// TestRunOnce_RetryThenFail tests the attempt budget
func TestRunOnce_RetryThenFail(t *testing.T) {
	st := newFakeStore()
	sync := &fakeSync{deleteErr: errors.New("server unreachable")}
	st.addIntent(1, store.EntityTask, store.IntentOpDelete, "uid-1", 0)

	cfg := DefaultConfig()
	cfg.MaxAttempts = 3
	sw := New(st, sync, cfg, nil)

	for i := 0; i < 2; i++ {
		if _, err := sw.RunOnce(context.Background()); err != nil {
			t.Fatalf("RunOnce() failed: %v", err)
		}
		if st.intents[1].State != store.IntentStatePending {
			t.Fatalf("intent retired after %d attempts", i+1)
		}
	}

	if _, err := sw.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() failed: %v", err)
	}
	if st.intents[1].State != store.IntentStateFailed {
		t.Errorf("intent state = %s, want failed after budget spent", st.intents[1].State)
	}
	if st.intents[1].LastError == "" {
		t.Error("failed intent lost its last error")
	}
}

// TestRunOnce_PutFailureKeepsPending tests a transient upsert failure
func TestRunOnce_PutFailureKeepsPending(t *testing.T) {
	st := newFakeStore()
	sync := &fakeSync{putErr: errors.New("server unreachable")}
	st.tasks["uid-1"] = &model.Task{ID: 1, CalDAVUID: "uid-1"}
	st.addIntent(1, store.EntityTask, store.IntentOpUpsert, "uid-1", 0)

	sw := testSweeper(st, sync)
	n, err := sw.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce() failed: %v", err)
	}
	if n != 0 {
		t.Errorf("resolved %d intents, want 0", n)
	}
	if st.intents[1].State != store.IntentStatePending {
		t.Errorf("intent state = %s, want pending", st.intents[1].State)
	}
	if st.intents[1].Attempts != 1 {
		t.Errorf("attempts = %d, want 1", st.intents[1].Attempts)
	}
}
