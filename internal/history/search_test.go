package history

import (
	"strings"
	"testing"
)

func TestSearchNotes(t *testing.T) {
	records := sampleRecords()

	matches := SearchNotes(records, "TRACK")
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Date != "2025-03-08" || matches[0].Note.Text != "back on track" {
		t.Fatalf("unexpected match: %+v", matches[0])
	}

	if matches := SearchNotes(records, "nothing like this"); len(matches) != 0 {
		t.Fatalf("expected no matches, got %d", len(matches))
	}
}

func TestSearchNotesEmptyQueryReturnsAllNewestFirst(t *testing.T) {
	matches := SearchNotes(sampleRecords(), "")
	if len(matches) != 3 {
		t.Fatalf("expected all 3 notes, got %d", len(matches))
	}
	if matches[0].Date != "2025-03-08" || matches[0].Note.ID != 3 {
		t.Fatalf("expected newest note first, got %+v", matches[0])
	}
	if matches[2].Date != "2025-03-05" {
		t.Fatalf("expected oldest note last, got %+v", matches[2])
	}
}

func TestExportText(t *testing.T) {
	out := ExportText(sampleRecords(), 2, 10)

	if !strings.Contains(out, "2025-03-05 (Wed) 10/10") {
		t.Fatalf("missing day line:\n%s", out)
	}
	if !strings.Contains(out, "[08:10] cold start") {
		t.Fatalf("missing note line:\n%s", out)
	}
	if !strings.Contains(out, "Streak: 2 (best 2)") {
		t.Fatalf("missing streak line:\n%s", out)
	}
}
