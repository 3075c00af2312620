// Package history builds reports and text renderings over day records.
package history

import (
	"time"

	"tenaday/internal/model"
)

const dateLayout = "2006-01-02"

// DayRow is one rendered line of history.
type DayRow struct {
	Date      string
	Weekday   string
	Count     int
	Completed bool
	NoteCount int
}

// Summary aggregates the whole data store.
type Summary struct {
	TotalDays     int
	CompletedDays int
	CompletionPct float64
	CurrentStreak int
	BestStreak    int
	TotalNotes    int
}

// Report contains precomputed data for history rendering.
type Report struct {
	Rows    []DayRow
	Summary Summary
	Target  int
}

// BuildReport prepares history data from date-ascending day records.
func BuildReport(records []model.DayRecord, streak, target int) Report {
	rows := make([]DayRow, 0, len(records))
	summary := Summary{TotalDays: len(records), CurrentStreak: streak}
	for _, rec := range records {
		completed := rec.ApproachCount >= target
		if completed {
			summary.CompletedDays++
		}
		summary.TotalNotes += len(rec.Notes)
		rows = append(rows, DayRow{
			Date:      rec.Date,
			Weekday:   weekdayOf(rec.Date),
			Count:     rec.ApproachCount,
			Completed: completed,
			NoteCount: len(rec.Notes),
		})
	}
	if summary.TotalDays > 0 {
		summary.CompletionPct = float64(summary.CompletedDays) / float64(summary.TotalDays) * 100
	}
	summary.BestStreak = bestStreak(records, target)
	return Report{Rows: rows, Summary: summary, Target: target}
}

// bestStreak finds the longest run of consecutive calendar days at target.
func bestStreak(records []model.DayRecord, target int) int {
	best, run := 0, 0
	var prev time.Time
	for _, rec := range records {
		day, err := time.Parse(dateLayout, rec.Date)
		if err != nil || rec.ApproachCount < target {
			run = 0
			prev = time.Time{}
			continue
		}
		if !prev.IsZero() && day.Sub(prev) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
		prev = day
	}
	return best
}

func weekdayOf(dateID string) string {
	day, err := time.Parse(dateLayout, dateID)
	if err != nil {
		return ""
	}
	return day.Format("Mon")
}
