package model

import (
	"testing"
	"time"
)

// TestNormalizeStatus_Canonical tests canonicalization of status input
func TestNormalizeStatus_Canonical(t *testing.T) {
	cases := map[string]TaskStatus{
		"pending":     StatusPending,
		"Pending":     StatusPending,
		"In Progress": StatusInProgress,
		"in_progress": StatusInProgress,
		"COMPLETED":   StatusCompleted,
		" completed ": StatusCompleted,
	}
	for input, want := range cases {
		got, err := NormalizeStatus(input)
		if err != nil {
			t.Errorf("NormalizeStatus(%q) failed: %v", input, err)
			continue
		}
		if got != want {
			t.Errorf("NormalizeStatus(%q) = %q, want %q", input, got, want)
		}
	}
}

// TestNormalizeStatus_Invalid tests rejection of unknown statuses
func TestNormalizeStatus_Invalid(t *testing.T) {
	for _, input := range []string{"", "done", "cancelled", "in-progress"} {
		if _, err := NormalizeStatus(input); err == nil {
			t.Errorf("NormalizeStatus(%q) succeeded, want error", input)
		}
	}
}

// TestTaskValidate tests required task fields
func TestTaskValidate(t *testing.T) {
	now := time.Now()
	valid := Task{Title: "Ship report", StartTime: now, EndTime: now.Add(time.Hour), Status: StatusPending}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() failed for valid task: %v", err)
	}

	missingTitle := valid
	missingTitle.Title = ""
	if err := missingTitle.Validate(); err == nil {
		t.Error("Validate() succeeded without title")
	}

	missingStart := valid
	missingStart.StartTime = time.Time{}
	if err := missingStart.Validate(); err == nil {
		t.Error("Validate() succeeded without startTime")
	}

	badStatus := valid
	badStatus.Status = "started"
	if err := badStatus.Validate(); err == nil {
		t.Error("Validate() succeeded with unknown status")
	}
}

// TestContactValidate tests the name-plus-phone rule
func TestContactValidate(t *testing.T) {
	valid := Contact{FullName: "Ada Lovelace", Phone: "+64 21 555 0100"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() failed for valid contact: %v", err)
	}

	noPhone := Contact{FullName: "Ada Lovelace"}
	if err := noPhone.Validate(); err == nil {
		t.Error("Validate() succeeded without a phone number")
	}

	noName := Contact{Phone: "+64 21 555 0100"}
	if err := noName.Validate(); err == nil {
		t.Error("Validate() succeeded without a name")
	}
}

// TestFlattenSplitMulti tests multi-value aggregation round trips
func TestFlattenSplitMulti(t *testing.T) {
	flat := FlattenMulti([]string{" a@example.com", "", "b@example.com "})
	if flat != "a@example.com,b@example.com" {
		t.Errorf("FlattenMulti() = %q", flat)
	}

	values := SplitMulti(flat)
	if len(values) != 2 || values[0] != "a@example.com" || values[1] != "b@example.com" {
		t.Errorf("SplitMulti(%q) = %v", flat, values)
	}

	if got := SplitMulti("  "); got != nil {
		t.Errorf("SplitMulti(blank) = %v, want nil", got)
	}
}

// TestParseTimestamp tests the accepted input layouts
func TestParseTimestamp(t *testing.T) {
	for _, input := range []string{
		"2024-06-01T09:00:00Z",
		"2024-06-01T09:00:00",
		"2024-06-01 09:00:00",
	} {
		ts, err := ParseTimestamp(input)
		if err != nil {
			t.Errorf("ParseTimestamp(%q) failed: %v", input, err)
			continue
		}
		if ts.Hour() != 9 {
			t.Errorf("ParseTimestamp(%q).Hour() = %d, want 9", input, ts.Hour())
		}
	}

	if _, err := ParseTimestamp("01/06/2024"); err == nil {
		t.Error("ParseTimestamp accepted an unsupported layout")
	}
}
