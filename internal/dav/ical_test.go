package dav

import (
	"strings"
	"testing"
	"time"

	"github.com/ankitsingh4634/taskify/internal/model"
)

func encodedTask(t *testing.T, status model.TaskStatus) string {
	t.Helper()
	task := &model.Task{
		Title:       "Ship report",
		Description: "Quarterly numbers",
		StartTime:   time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		EndTime:     time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
		Status:      status,
		CalDAVUID:   "uid-1",
	}
	now := time.Date(2024, 5, 30, 8, 0, 0, 0, time.UTC)
	out, err := EncodeTask(task, now)
	if err != nil {
		t.Fatalf("EncodeTask() failed: %v", err)
	}
	return out
}

// TestEncodeTask_Structure tests the emitted VEVENT properties
func TestEncodeTask_Structure(t *testing.T) {
	out := encodedTask(t, model.StatusPending)

	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"BEGIN:VEVENT",
		"UID:uid-1",
		"SUMMARY:Ship report",
		"DESCRIPTION:Quarterly numbers",
		"DTSTART:20240601T090000Z",
		"DTEND:20240601T100000Z",
		"DTSTAMP:20240530T080000Z",
		"END:VEVENT",
		"END:VCALENDAR",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("encoded calendar missing %q:\n%s", want, out)
		}
	}
}

// TestEncodeTask_StatusMapping tests the TENTATIVE/CONFIRMED mapping
// and the preserved exact status
func TestEncodeTask_StatusMapping(t *testing.T) {
	cases := []struct {
		status model.TaskStatus
		want   string
	}{
		{model.StatusPending, "STATUS:TENTATIVE"},
		{model.StatusInProgress, "STATUS:CONFIRMED"},
		{model.StatusCompleted, "STATUS:CONFIRMED"},
	}
	for _, tc := range cases {
		out := encodedTask(t, tc.status)
		if !strings.Contains(out, tc.want) {
			t.Errorf("status %s: missing %q", tc.status, tc.want)
		}
		if !strings.Contains(out, "X-TASKIFY-STATUS:"+string(tc.status)) {
			t.Errorf("status %s: exact status not preserved", tc.status)
		}
	}
}

// TestEncodeTask_OptionalDescription tests that empty descriptions are omitted
func TestEncodeTask_OptionalDescription(t *testing.T) {
	task := &model.Task{
		Title:     "Ship report",
		StartTime: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
		Status:    model.StatusPending,
		CalDAVUID: "uid-1",
	}
	out, err := EncodeTask(task, time.Now())
	if err != nil {
		t.Fatalf("EncodeTask() failed: %v", err)
	}
	if strings.Contains(out, "DESCRIPTION") {
		t.Errorf("empty description should be omitted:\n%s", out)
	}
}
