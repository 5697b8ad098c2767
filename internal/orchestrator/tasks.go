package orchestrator

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/ankitsingh4634/taskify/internal/model"
	"github.com/ankitsingh4634/taskify/internal/store"
)

// TaskInput carries the raw fields of a task create or update request.
// Status is the un-normalized user input.
type TaskInput struct {
	TaskID      int64
	Title       string
	Description string
	StartTime   time.Time
	EndTime     time.Time
	Status      string
}

// Tasks orchestrates the task dual write.
type Tasks struct {
	store   TaskStore
	intents IntentLog
	sync    SyncClient
	logger  *log.Logger

	now    func() time.Time
	newUID func() string
}

// NewTasks creates a task orchestrator. If logger is nil, a default
// logger writing to stderr is used.
func NewTasks(taskStore TaskStore, intents IntentLog, sync SyncClient, logger *log.Logger) *Tasks {
	if logger == nil {
		logger = log.New(os.Stderr, "[tasks] ", log.LstdFlags)
	}
	return &Tasks{
		store:   taskStore,
		intents: intents,
		sync:    sync,
		logger:  logger,
		now:     time.Now,
		newUID:  NewUID,
	}
}

// Create validates the input, mirrors the task to the remote calendar,
// and only then inserts the local row. Returns the assigned task id.
func (o *Tasks) Create(ctx context.Context, userID int64, in *TaskInput) (int64, error) {
	status, err := validateTaskInput(in)
	if err != nil {
		return 0, err
	}

	now := o.now()
	task := &model.Task{
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		Status:      status,
		CalDAVUID:   o.newUID(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	intentID, err := o.intents.EnqueueIntent(ctx, &store.Intent{
		EntityType: store.EntityTask,
		UID:        task.CalDAVUID,
		Op:         store.IntentOpUpsert,
	})
	if err != nil {
		return 0, &StoreError{Op: "create task intent", Err: err}
	}

	if err := o.sync.PutTask(ctx, task); err != nil {
		o.logger.Printf("CalDAV sync failed for new task: %v", err)
		o.recordIntentError(ctx, intentID, err)
		return 0, &SyncError{Op: "create task", Err: err}
	}

	id, err := o.store.CreateTask(ctx, task)
	if err != nil {
		// Remote write landed but the local insert did not; the pending
		// intent lets the sweeper remove the orphaned resource.
		o.logger.Printf("local insert failed after CalDAV sync, uid=%s: %v", task.CalDAVUID, err)
		o.recordIntentError(ctx, intentID, err)
		return 0, &StoreError{Op: "create task", Err: err}
	}

	o.commitIntent(ctx, intentID)
	return id, nil
}

// Update re-puts the remote resource at the task's existing UID, then
// updates the local row. The returned noChanges flag is true when the
// store update affected zero rows.
func (o *Tasks) Update(ctx context.Context, userID int64, in *TaskInput) (noChanges bool, err error) {
	if in.TaskID == 0 {
		return false, &ValidationError{Msg: "taskId is required"}
	}
	status, err := validateTaskInput(in)
	if err != nil {
		return false, err
	}

	uid, err := o.store.TaskUID(ctx, in.TaskID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return false, &NotFoundError{Resource: "task"}
	}
	if err != nil {
		return false, &StoreError{Op: "look up task", Err: err}
	}

	task := &model.Task{
		ID:          in.TaskID,
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		Status:      status,
		CalDAVUID:   uid,
		UpdatedAt:   o.now(),
	}

	intentID, err := o.intents.EnqueueIntent(ctx, &store.Intent{
		EntityType: store.EntityTask,
		EntityID:   in.TaskID,
		UID:        uid,
		Op:         store.IntentOpUpsert,
	})
	if err != nil {
		return false, &StoreError{Op: "update task intent", Err: err}
	}

	if err := o.sync.PutTask(ctx, task); err != nil {
		o.logger.Printf("CalDAV sync failed for task %d: %v", in.TaskID, err)
		o.recordIntentError(ctx, intentID, err)
		return false, &SyncError{Op: "update task", Err: err}
	}

	rows, err := o.store.UpdateTask(ctx, task)
	if err != nil {
		o.recordIntentError(ctx, intentID, err)
		return false, &StoreError{Op: "update task", Err: err}
	}

	o.commitIntent(ctx, intentID)
	return rows == 0, nil
}

// Delete removes the local row first, then the remote resource. A
// missing or foreign task yields not-found before any transport. A
// remote failure is reported but the local delete is not rolled back;
// the pending intent lets the sweeper retry the remote removal.
func (o *Tasks) Delete(ctx context.Context, userID, taskID int64) error {
	if taskID == 0 {
		return &ValidationError{Msg: "taskId is required"}
	}

	uid, err := o.store.TaskUID(ctx, taskID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return &NotFoundError{Resource: "task"}
	}
	if err != nil {
		return &StoreError{Op: "look up task", Err: err}
	}

	rows, err := o.store.DeleteTask(ctx, taskID, userID)
	if err != nil {
		return &StoreError{Op: "delete task", Err: err}
	}
	if rows == 0 {
		return &NotFoundError{Resource: "task"}
	}

	intentID, err := o.intents.EnqueueIntent(ctx, &store.Intent{
		EntityType: store.EntityTask,
		EntityID:   taskID,
		UID:        uid,
		Op:         store.IntentOpDelete,
	})
	if err != nil {
		return &StoreError{Op: "delete task intent", Err: err}
	}

	if err := o.sync.DeleteTask(ctx, uid); err != nil {
		o.logger.Printf("CalDAV delete failed for task %d, uid=%s: %v", taskID, uid, err)
		o.recordIntentError(ctx, intentID, err)
		return &SyncError{Op: "delete task", Err: err}
	}

	o.commitIntent(ctx, intentID)
	return nil
}

// List returns the caller's tasks.
func (o *Tasks) List(ctx context.Context, userID int64) ([]model.Task, error) {
	tasks, err := o.store.ListTasks(ctx, userID)
	if err != nil {
		return nil, &StoreError{Op: "list tasks", Err: err}
	}
	return tasks, nil
}

func (o *Tasks) recordIntentError(ctx context.Context, intentID int64, cause error) {
	if err := o.intents.RecordIntentError(ctx, intentID, cause.Error()); err != nil {
		o.logger.Printf("failed to record intent error: %v", err)
	}
}

func (o *Tasks) commitIntent(ctx context.Context, intentID int64) {
	if err := o.intents.CommitIntent(ctx, intentID); err != nil {
		o.logger.Printf("failed to commit intent %d: %v", intentID, err)
	}
}

// validateTaskInput checks the required fields and normalizes the
// status, before any I/O happens.
func validateTaskInput(in *TaskInput) (model.TaskStatus, error) {
	if in.Title == "" || in.StartTime.IsZero() || in.EndTime.IsZero() || in.Status == "" {
		return "", &ValidationError{Msg: "missing required fields"}
	}
	status, err := model.NormalizeStatus(in.Status)
	if err != nil {
		return "", &ValidationError{Msg: err.Error()}
	}
	return status, nil
}
