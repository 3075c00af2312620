package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"tenaday/internal/clock"
	"tenaday/internal/model"
)

// legacyApproachData is the flat single-day layout older versions persisted
// under approachData.
type legacyApproachData struct {
	Date   string `json:"date"`
	Count  int    `json:"count"`
	Streak int    `json:"streak"`
	DayEnd bool   `json:"dayEnd"`
}

// runMigrations folds every detected legacy layout into the unified state and
// returns the legacy keys to drop with the next write. Each transform detects
// its own shape, so the chain is a no-op when no legacy data exists, and
// merging by value keeps a repeated run from duplicating anything.
func (t *Tracker) runMigrations(ctx context.Context) []string {
	transforms := []struct {
		key  string
		fold func([]byte) error
	}{
		{keyLegacyApproach, t.foldApproachData},
		{keyLegacyNotes, t.foldAllTimeNotes},
	}

	var consumed []string
	for _, m := range transforms {
		raw, ok, err := t.store.Get(ctx, m.key)
		if err != nil {
			logErrf("failed to read legacy %s: %v\n", m.key, err)
			continue
		}
		if !ok {
			continue
		}
		if err := m.fold(raw); err != nil {
			logErrf("discarding unreadable legacy %s: %v\n", m.key, err)
		}
		consumed = append(consumed, m.key)
	}
	return consumed
}

func (t *Tracker) foldApproachData(raw []byte) error {
	var legacy legacyApproachData
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return err
	}
	id, ok := clock.NormalizeDateID(legacy.Date)
	if !ok {
		return fmt.Errorf("bad legacy date %q", legacy.Date)
	}
	rec := t.days[id]
	rec.Date = id
	if rec.Notes == nil {
		rec.Notes = []model.Note{}
	}
	if legacy.Count > rec.ApproachCount {
		rec.ApproachCount = legacy.Count
	}
	t.days[id] = rec
	if legacy.Streak > t.streak {
		t.streak = legacy.Streak
	}
	if legacy.DayEnd && id > t.lastRollover {
		t.lastRollover = id
	}
	return nil
}

func (t *Tracker) foldAllTimeNotes(raw []byte) error {
	var legacy map[string][]model.Note
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return err
	}
	for date, notes := range legacy {
		id, ok := clock.NormalizeDateID(date)
		if !ok {
			logErrf("skipping legacy notes with bad date %q\n", date)
			continue
		}
		rec := t.days[id]
		rec.Date = id
		if rec.Notes == nil {
			rec.Notes = []model.Note{}
		}
		for _, note := range notes {
			if note.Text == "" || hasNoteID(rec.Notes, note.ID) {
				continue
			}
			rec.Notes = append(rec.Notes, note)
		}
		sort.Slice(rec.Notes, func(i, j int) bool {
			return rec.Notes[i].ID < rec.Notes[j].ID
		})
		t.days[id] = rec
	}
	return nil
}
