package history

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// FormatTable renders a report as an aligned plain-text table with a bar
// column for each day's count.
func FormatTable(report Report) string {
	headers := []string{"Date", "Day", "Count", "Progress", "Notes"}
	rows := make([][]string, 0, len(report.Rows))
	for _, row := range report.Rows {
		mark := ""
		if row.Completed {
			mark = " ✓"
		}
		rows = append(rows, []string{
			row.Date,
			row.Weekday,
			fmt.Sprintf("%d/%d%s", row.Count, report.Target, mark),
			CountBar(row.Count, report.Target),
			fmt.Sprintf("%d", row.NoteCount),
		})
	}

	lines := formatRows(headers, rows, map[int]bool{4: true})
	lines = append(lines, "")
	s := report.Summary
	lines = append(lines,
		fmt.Sprintf("Days tracked: %d (%d completed, %.0f%%)", s.TotalDays, s.CompletedDays, s.CompletionPct),
		fmt.Sprintf("Streak: %d (best %d)", s.CurrentStreak, s.BestStreak),
		fmt.Sprintf("Notes: %d", s.TotalNotes),
	)
	return strings.Join(lines, "\n")
}

// CountBar renders a fixed-width bar of filled and empty cells.
func CountBar(count, target int) string {
	if target <= 0 {
		return ""
	}
	if count > target {
		count = target
	}
	if count < 0 {
		count = 0
	}
	return strings.Repeat("█", count) + strings.Repeat("░", target-count)
}

// Truncate shortens a string to the given display width, ellipsized.
func Truncate(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

func formatRows(headers []string, rows [][]string, rightAlignCols map[int]bool) []string {
	colCount := len(headers)
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}
	if colCount == 0 {
		return nil
	}

	widths := make([]int, colCount)
	for i, header := range headers {
		widths[i] = runewidth.StringWidth(header)
	}
	for _, row := range rows {
		for i := 0; i < colCount; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, formatRow(headers, widths, rightAlignCols))
	for _, row := range rows {
		lines = append(lines, formatRow(row, widths, rightAlignCols))
	}
	return lines
}

func formatRow(row []string, widths []int, rightAlignCols map[int]bool) string {
	var b strings.Builder
	for i := 0; i < len(widths); i++ {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(padCell(cell, widths[i], rightAlignCols[i]))
	}
	return strings.TrimRight(b.String(), " ")
}

func padCell(value string, width int, rightAlign bool) string {
	valueWidth := runewidth.StringWidth(value)
	if valueWidth >= width {
		return value
	}
	padding := width - valueWidth
	if rightAlign {
		return strings.Repeat(" ", padding) + value
	}
	return value + strings.Repeat(" ", padding)
}
