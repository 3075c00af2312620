package history

import (
	"sort"
	"strings"

	"tenaday/internal/model"
)

// NoteMatch pairs a matching note with the day it belongs to.
type NoteMatch struct {
	Date string
	Note model.Note
}

// SearchNotes returns notes whose text contains query, case-insensitively,
// newest first. An empty query matches every note.
func SearchNotes(records []model.DayRecord, query string) []NoteMatch {
	needle := strings.ToLower(strings.TrimSpace(query))
	var matches []NoteMatch
	for _, rec := range records {
		for _, note := range rec.Notes {
			if needle != "" && !strings.Contains(strings.ToLower(note.Text), needle) {
				continue
			}
			matches = append(matches, NoteMatch{Date: rec.Date, Note: note})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Date != matches[j].Date {
			return matches[i].Date > matches[j].Date
		}
		return matches[i].Note.ID > matches[j].Note.ID
	})
	return matches
}
