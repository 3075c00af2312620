package history

import (
	"fmt"
	"strings"

	"tenaday/internal/model"
)

// ExportText renders every day and its notes as plain text.
func ExportText(records []model.DayRecord, streak, target int) string {
	var b strings.Builder
	report := BuildReport(records, streak, target)
	s := report.Summary
	fmt.Fprintf(&b, "tenaday export\n")
	fmt.Fprintf(&b, "Days tracked: %d (%d completed, %.0f%%)\n", s.TotalDays, s.CompletedDays, s.CompletionPct)
	fmt.Fprintf(&b, "Streak: %d (best %d)\n", s.CurrentStreak, s.BestStreak)

	for _, rec := range records {
		fmt.Fprintf(&b, "\n%s (%s) %d/%d\n", rec.Date, weekdayOf(rec.Date), rec.ApproachCount, target)
		for _, note := range rec.Notes {
			fmt.Fprintf(&b, "  [%s] %s\n", note.Timestamp, note.Text)
		}
	}
	return b.String()
}
