// Package model provides the core data structures shared by the store,
// the DAV sync client, and the orchestration layer.
package model

import (
	"fmt"
	"strings"
	"time"
)

// TaskStatus is the canonical lowercase/underscored task state.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
)

// NormalizeStatus converts user input such as "In Progress" into the
// canonical form. Unrecognized values are rejected.
func NormalizeStatus(raw string) (TaskStatus, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), " ", "_")
	switch TaskStatus(normalized) {
	case StatusPending, StatusInProgress, StatusCompleted:
		return TaskStatus(normalized), nil
	}
	return "", fmt.Errorf("invalid status value %q", raw)
}

// Task is a time-boxed work item owned by a single user and mirrored to
// a CalDAV resource identified by CalDAVUID.
type Task struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"-"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	StartTime   time.Time  `json:"startTime"`
	EndTime     time.Time  `json:"endTime"`
	Status      TaskStatus `json:"status"`

	// CalDAVUID ties the task to its remote calendar resource. It is
	// assigned at creation and never changes; updates overwrite the
	// same remote resource in place.
	CalDAVUID string `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate checks the fields required for persisting a task.
func (t *Task) Validate() error {
	if t.Title == "" {
		return fmt.Errorf("title is required")
	}
	if t.StartTime.IsZero() {
		return fmt.Errorf("startTime is required")
	}
	if t.EndTime.IsZero() {
		return fmt.Errorf("endTime is required")
	}
	switch t.Status {
	case StatusPending, StatusInProgress, StatusCompleted:
	default:
		return fmt.Errorf("invalid status value %q", t.Status)
	}
	return nil
}

// Contact is an address-book entry owned by a single user and mirrored
// to a CardDAV resource identified by CardDAVUID.
//
// Email and Phone hold one or more values flattened into a single
// comma-delimited field, matching the relational schema. SplitMulti
// recovers the individual values for vCard serialization.
type Contact struct {
	ID           int64  `json:"id"`
	UserID       int64  `json:"-"`
	FullName     string `json:"fullName"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Address      string `json:"address,omitempty"`
	Organization string `json:"organization,omitempty"`
	Title        string `json:"title,omitempty"`

	// CardDAVUID follows the same UID-stability rule as Task.CalDAVUID.
	CardDAVUID string `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate checks the fields required for persisting a contact.
func (c *Contact) Validate() error {
	if c.FullName == "" {
		return fmt.Errorf("fullName is required")
	}
	if len(SplitMulti(c.Phone)) == 0 {
		return fmt.Errorf("at least one phone number is required")
	}
	return nil
}

// multiValueSep joins multiple emails or phones into one stored field.
const multiValueSep = ","

// FlattenMulti joins multiple raw values into the single delimited form
// stored in the contacts table. Empty entries are discarded.
func FlattenMulti(values []string) string {
	cleaned := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			cleaned = append(cleaned, v)
		}
	}
	return strings.Join(cleaned, multiValueSep)
}

// SplitMulti splits a stored delimited field back into its raw values.
func SplitMulti(flat string) []string {
	if strings.TrimSpace(flat) == "" {
		return nil
	}
	parts := strings.Split(flat, multiValueSep)
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			values = append(values, p)
		}
	}
	return values
}

// User is an account row. PasswordHash is a bcrypt digest.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// PercentageChanges holds the month-over-month deltas reported on the
// dashboard.
type PercentageChanges struct {
	TotalTasksChange     int `json:"totalTasksChange"`
	CompletedTasksChange int `json:"completedTasksChange"`
	AllTasksChange       int `json:"allTasksChange"`
}

// AnalyticsSnapshot is recomputed on every dashboard request; it has no
// persisted identity.
type AnalyticsSnapshot struct {
	TotalTasks        int               `json:"totalTasks"`
	ExceededTasks     int               `json:"exceededTasks"`
	AllTasks          int               `json:"allTasks"`
	CompletedTasks    int               `json:"completedTasks"`
	CreatedLastMonth  int               `json:"createdLastMonth"`
	PercentageChanges PercentageChanges `json:"percentageChanges"`
}

// timestampLayouts are accepted on input, most specific first. Clients
// historically sent zone-less local stamps alongside RFC 3339.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses an incoming start/end time string.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
