package services

import (
	"database/sql"
	"reflect"
	"strings"
	"testing"
	"time"

	"document-tracker-api/catalog"
	"document-tracker-api/models"
)

func TestPlanEditOrdersChanges(t *testing.T) {
	original := &models.TrackedDocument{
		Type: "Letters", Status: "Open", Location: "Office X",
		Amount: strPtr("100"), Agency: "DILG", DateReceived: "2026-03-01", Requester: "Ana",
	}
	updated := *original
	updated.Requester = "Ben"
	updated.Status = "Approved"
	updated.Amount = nil
	updated.ActivityDate = strPtr("2026-03-05")
	updated.Location = "Budget Office"

	plan := PlanEdit(original, &updated)
	want := models.ChangeSet{
		{Field: "Status", Before: "Open", After: "Approved"},
		{Field: "Amount", Before: "100", After: ""},
		{Field: "Activity Date", Before: "", After: "2026-03-05"},
		{Field: "Requester", Before: "Ana", After: "Ben"},
	}
	if !reflect.DeepEqual(plan.Changes, want) {
		t.Fatalf("expected %+v, got %+v", want, plan.Changes)
	}
	if !plan.LocationChanged || plan.TypeChanged {
		t.Fatalf("unexpected flags %+v", plan)
	}

	at := time.Date(2026, 3, 5, 14, 30, 5, 0, time.UTC)
	entries := plan.Entries("doc-1", clerk, at)
	if len(entries) != 2 {
		t.Fatalf("expected two entries, got %d", len(entries))
	}
	if entries[0].Title != catalog.DetailsUpdatedTitle || entries[1].Title != "Budget Office" {
		t.Fatalf("unexpected titles %q, %q", entries[0].Title, entries[1].Title)
	}
	if entries[1].Message != nil {
		t.Fatalf("location entry carries no message")
	}
	if entries[0].LogDate != "2026-03-05" || entries[0].LogTime != "14:30:05" {
		t.Fatalf("unexpected timestamp %s %s", entries[0].LogDate, entries[0].LogTime)
	}
}

func TestPlanEditIgnoresWhitespaceAndUntrackedFields(t *testing.T) {
	original := &models.TrackedDocument{Status: "Open", Location: "Office X", Particulars: "a", Amount: strPtr("5")}
	updated := *original
	updated.Particulars = "b"
	updated.Amount = strPtr(" 5 ")

	plan := PlanEdit(original, &updated)
	if len(plan.Changes) != 0 || plan.LocationChanged {
		t.Fatalf("expected empty plan, got %+v", plan)
	}
	if entries := plan.Entries("doc-1", clerk, time.Now()); len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
}

func TestParseRoutingMax(t *testing.T) {
	cases := []struct {
		raw  sql.NullString
		want int
	}{
		{sql.NullString{}, 0},
		{sql.NullString{String: "12", Valid: true}, 12},
		{sql.NullString{String: " 7 ", Valid: true}, 7},
		{sql.NullString{String: "LTR-3", Valid: true}, 0},
		{sql.NullString{String: "-4", Valid: true}, 0},
	}
	for _, tc := range cases {
		if got := ParseRoutingMax(tc.raw); got != tc.want {
			t.Fatalf("ParseRoutingMax(%+v) = %d, want %d", tc.raw, got, tc.want)
		}
	}
}

func TestAttachmentKeySanitizesFileName(t *testing.T) {
	key := AttachmentKey("doc-1", `C:\scans\my receipt (1).pdf`)
	if !strings.HasPrefix(key, AttachmentPrefix("doc-1")) {
		t.Fatalf("expected document prefix, got %s", key)
	}
	if !strings.HasSuffix(key, "-my_receipt_1_.pdf") {
		t.Fatalf("expected sanitized file name, got %s", key)
	}
	if AttachmentKey("doc-1", "a.pdf") == AttachmentKey("doc-1", "a.pdf") {
		t.Fatalf("expected unique keys")
	}
}
