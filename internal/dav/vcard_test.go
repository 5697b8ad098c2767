package dav

import (
	"strings"
	"testing"

	"github.com/ankitsingh4634/taskify/internal/model"
)

// TestEncodeContact_Structure tests the emitted vCard fields
func TestEncodeContact_Structure(t *testing.T) {
	contact := &model.Contact{
		FullName:     "Ada Lovelace",
		Email:        "ada@example.com,ada@work.example",
		Phone:        "+64 21 555 0100,+64 9 555 0199",
		Address:      "12 Analytical Way",
		Organization: "Engine Works",
		Title:        "Engineer",
		CardDAVUID:   "uid-c1",
	}

	out, err := EncodeContact(contact)
	if err != nil {
		t.Fatalf("EncodeContact() failed: %v", err)
	}

	for _, want := range []string{
		"BEGIN:VCARD",
		"FN:Ada Lovelace",
		"UID:uid-c1",
		"ADR:12 Analytical Way",
		"ORG:Engine Works",
		"TITLE:Engineer",
		"END:VCARD",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("encoded vcard missing %q:\n%s", want, out)
		}
	}

	if strings.Count(out, "EMAIL") != 2 {
		t.Errorf("want 2 EMAIL lines:\n%s", out)
	}
	if strings.Count(out, "TEL") != 2 {
		t.Errorf("want 2 TEL lines:\n%s", out)
	}
}

// TestEncodeContact_Minimal tests that optional fields are omitted
func TestEncodeContact_Minimal(t *testing.T) {
	contact := &model.Contact{
		FullName:   "Ada Lovelace",
		Phone:      "+64 21 555 0100",
		CardDAVUID: "uid-c1",
	}

	out, err := EncodeContact(contact)
	if err != nil {
		t.Fatalf("EncodeContact() failed: %v", err)
	}

	for _, absent := range []string{"ADR", "ORG", "TITLE", "EMAIL"} {
		if strings.Contains(out, absent) {
			t.Errorf("minimal vcard should not contain %s:\n%s", absent, out)
		}
	}
	if strings.Count(out, "TEL") != 1 {
		t.Errorf("want 1 TEL line:\n%s", out)
	}
}
