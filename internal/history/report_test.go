package history

import (
	"strings"
	"testing"

	"tenaday/internal/model"
)

func sampleRecords() []model.DayRecord {
	return []model.DayRecord{
		{Date: "2025-03-04", ApproachCount: 10, Notes: []model.Note{}},
		{Date: "2025-03-05", ApproachCount: 10, Notes: []model.Note{
			{ID: 1, Text: "cold start", Timestamp: "08:10"},
		}},
		{Date: "2025-03-06", ApproachCount: 2, Notes: []model.Note{}},
		{Date: "2025-03-08", ApproachCount: 10, Notes: []model.Note{
			{ID: 2, Text: "back on track", Timestamp: "12:00"},
			{ID: 3, Text: "good evening run", Timestamp: "19:30"},
		}},
		{Date: "2025-03-09", ApproachCount: 10, Notes: []model.Note{}},
		{Date: "2025-03-10", ApproachCount: 4, Notes: []model.Note{}},
	}
}

func TestBuildReport(t *testing.T) {
	report := BuildReport(sampleRecords(), 2, 10)

	s := report.Summary
	if s.TotalDays != 6 {
		t.Fatalf("total days = %d, want 6", s.TotalDays)
	}
	if s.CompletedDays != 4 {
		t.Fatalf("completed days = %d, want 4", s.CompletedDays)
	}
	if s.CurrentStreak != 2 {
		t.Fatalf("current streak = %d, want 2", s.CurrentStreak)
	}
	// 03-04/03-05 are consecutive; 03-08/03-09 as well; 03-06 breaks the first
	// run and the 03-07 gap breaks any longer one.
	if s.BestStreak != 2 {
		t.Fatalf("best streak = %d, want 2", s.BestStreak)
	}
	if s.TotalNotes != 3 {
		t.Fatalf("total notes = %d, want 3", s.TotalNotes)
	}
	if len(report.Rows) != 6 {
		t.Fatalf("rows = %d, want 6", len(report.Rows))
	}
	if report.Rows[0].Weekday != "Tue" {
		t.Fatalf("weekday of 2025-03-04 = %q, want Tue", report.Rows[0].Weekday)
	}
	if !report.Rows[1].Completed || report.Rows[2].Completed {
		t.Fatalf("unexpected completion flags: %+v", report.Rows)
	}
}

func TestBuildReportEmpty(t *testing.T) {
	report := BuildReport(nil, 0, 10)
	if report.Summary.TotalDays != 0 || report.Summary.CompletionPct != 0 {
		t.Fatalf("unexpected empty summary: %+v", report.Summary)
	}
}

func TestCountBar(t *testing.T) {
	tests := []struct {
		count, target int
		want          string
	}{
		{0, 5, "░░░░░"},
		{3, 5, "███░░"},
		{5, 5, "█████"},
		{9, 5, "█████"},
		{-1, 5, "░░░░░"},
		{3, 0, ""},
	}
	for _, tc := range tests {
		if got := CountBar(tc.count, tc.target); got != tc.want {
			t.Fatalf("CountBar(%d, %d) = %q, want %q", tc.count, tc.target, got, tc.want)
		}
	}
}

func TestFormatTable(t *testing.T) {
	report := BuildReport(sampleRecords(), 2, 10)
	out := FormatTable(report)

	lines := strings.Split(out, "\n")
	if !strings.HasPrefix(lines[0], "Date") {
		t.Fatalf("missing header: %q", lines[0])
	}
	if !strings.Contains(out, "2025-03-08") {
		t.Fatalf("missing day row:\n%s", out)
	}
	if !strings.Contains(out, "Days tracked: 6 (4 completed, 67%)") {
		t.Fatalf("missing summary:\n%s", out)
	}
	if !strings.Contains(out, "Streak: 2 (best 2)") {
		t.Fatalf("missing streak line:\n%s", out)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Fatalf("unexpected truncation: %q", got)
	}
	got := Truncate("a rather long note text", 10)
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("expected ellipsis: %q", got)
	}
}
