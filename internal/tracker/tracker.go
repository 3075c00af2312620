// Package tracker owns the streak state machine and the persisted day records.
package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"tenaday/internal/clock"
	"tenaday/internal/model"
	"tenaday/internal/storage"
)

// Persisted keys. The legacy keys are migration inputs only.
const (
	keyDataStore    = "dailyDataStore"
	keyStreak       = "currentStreak"
	keyLastRollover = "lastRollover"
	keyPunishment   = "punishment"

	keyLegacyApproach = "approachData"
	keyLegacyNotes    = "allTimeNotes"
)

// DefaultTarget is the daily approach goal.
const DefaultTarget = 10

const noteTimeLayout = "15:04"

var (
	// ErrDayComplete rejects count mutations once today is at target or frozen.
	ErrDayComplete = errors.New("day already complete")
	// ErrEmptyNote rejects notes that are empty after trimming.
	ErrEmptyNote = errors.New("note text is empty")
)

// Tracker is the single authoritative owner of the persisted tracking state.
// Every mutating operation applies one transition and writes the full resulting
// snapshot back before returning.
type Tracker struct {
	store  *storage.Store
	clock  clock.Clock
	target int

	days         map[string]model.DayRecord
	streak       int
	punished     bool
	lastRollover string
	legacyKeys   []string
}

// New constructs a Tracker over the given store. Call Load before anything else.
func New(store *storage.Store, clk clock.Clock, target int) *Tracker {
	if target <= 0 {
		target = DefaultTarget
	}
	return &Tracker{
		store:  store,
		clock:  clk,
		target: target,
		days:   map[string]model.DayRecord{},
	}
}

// Load reads and reconciles the persisted state. Corrupt or missing data
// degrades to empty defaults with a diagnostic; only storage access itself can
// fail. Rollovers missed while the process was down are applied here.
func (t *Tracker) Load(ctx context.Context, now time.Time) error {
	t.days = map[string]model.DayRecord{}
	t.streak = 0
	t.punished = false
	t.lastRollover = ""
	t.legacyKeys = nil

	if err := t.readPersisted(ctx); err != nil {
		return err
	}
	t.legacyKeys = t.runMigrations(ctx)
	t.ensureToday(now)
	t.reconcile(now)

	if err := t.persist(ctx); err != nil {
		return fmt.Errorf("failed to persist reconciled state: %w", err)
	}
	return nil
}

func (t *Tracker) readPersisted(ctx context.Context) error {
	raw, ok, err := t.store.Get(ctx, keyDataStore)
	if err != nil {
		return fmt.Errorf("failed to read day records: %w", err)
	}
	if ok {
		var days map[string]model.DayRecord
		if err := json.Unmarshal(raw, &days); err != nil {
			logErrf("discarding unreadable day records: %v\n", err)
		} else {
			for id, rec := range days {
				norm, valid := clock.NormalizeDateID(id)
				if !valid {
					logErrf("skipping day record with bad date %q\n", id)
					continue
				}
				rec.Date = norm
				t.days[norm] = rec
			}
		}
	}

	raw, ok, err = t.store.Get(ctx, keyStreak)
	if err != nil {
		return fmt.Errorf("failed to read streak: %w", err)
	}
	if ok {
		var streak int
		if err := json.Unmarshal(raw, &streak); err != nil {
			logErrf("discarding unreadable streak: %v\n", err)
		} else if streak > 0 {
			t.streak = streak
		}
	}

	raw, ok, err = t.store.Get(ctx, keyPunishment)
	if err != nil {
		return fmt.Errorf("failed to read punishment flag: %w", err)
	}
	if ok {
		var punished bool
		if err := json.Unmarshal(raw, &punished); err != nil {
			logErrf("discarding unreadable punishment flag: %v\n", err)
		} else {
			t.punished = punished
		}
	}

	raw, ok, err = t.store.Get(ctx, keyLastRollover)
	if err != nil {
		return fmt.Errorf("failed to read rollover marker: %w", err)
	}
	if ok {
		var last string
		if err := json.Unmarshal(raw, &last); err != nil {
			logErrf("discarding unreadable rollover marker: %v\n", err)
		} else if norm, valid := clock.NormalizeDateID(last); valid {
			t.lastRollover = norm
		}
	}
	return nil
}

// reconcile applies the streak consequences of every calendar day whose
// deadline elapsed since the last handled rollover, then handles today's
// deadline if it already passed.
func (t *Tracker) reconcile(now time.Time) {
	t.catchUp(now)
	if !t.rolledOver(now) && t.clock.TimeRemaining(now).Total == 0 {
		t.rollover(now)
	}
}

// catchUp evaluates the most recent elapsed day when its deadline was never
// handled, whether the process was down or merely asleep across it.
// Yesterday's record carries the verdict; days further back were either
// handled in their own time or never recorded, and an unrecorded gap resets
// the streak without punishment.
func (t *Tracker) catchUp(now time.Time) {
	if t.rolledOver(now) || clock.IsYesterday(t.lastRollover, now) {
		return
	}
	yesterday := clock.DateID(now.AddDate(0, 0, -1))
	if rec, ok := t.days[yesterday]; ok {
		if rec.ApproachCount < t.target {
			t.streak = 0
			t.punished = true
		}
		// A completed yesterday was already credited on its 10th approach.
	} else {
		// Gap or first run: nothing was evaluated, reset silently.
		t.streak = 0
	}
	t.lastRollover = yesterday
}

// RecordApproach increments today's count, crediting the streak on the exact
// approach that reaches the target. Returns ErrDayComplete at the target or
// after today's rollover.
func (t *Tracker) RecordApproach(ctx context.Context, now time.Time) error {
	t.ensureToday(now)
	if t.rolledOver(now) {
		return ErrDayComplete
	}
	today := t.clock.Today(now)
	rec := t.days[today]
	if rec.ApproachCount >= t.target {
		return ErrDayComplete
	}
	rec.ApproachCount++
	if rec.ApproachCount == t.target {
		t.streak++
	}
	t.days[today] = rec
	t.punished = false
	return t.persist(ctx)
}

// AddNote appends an immutable note to today's record. Empty or
// whitespace-only text is rejected with ErrEmptyNote before anything is
// mutated or written.
func (t *Tracker) AddNote(ctx context.Context, now time.Time, text string) (model.Note, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return model.Note{}, ErrEmptyNote
	}
	t.ensureToday(now)
	today := t.clock.Today(now)
	rec := t.days[today]
	note := model.Note{
		ID:        now.UnixMilli(),
		Text:      trimmed,
		Timestamp: now.Format(noteTimeLayout),
	}
	for hasNoteID(rec.Notes, note.ID) {
		note.ID++
	}
	rec.Notes = append(rec.Notes, note)
	t.days[today] = rec
	if err := t.persist(ctx); err != nil {
		return model.Note{}, err
	}
	return note, nil
}

// ResetToday puts today's count back to zero. The streak is untouched and any
// punishment signal is cleared. Rejected once today is frozen.
func (t *Tracker) ResetToday(ctx context.Context, now time.Time) error {
	t.ensureToday(now)
	if t.rolledOver(now) {
		return ErrDayComplete
	}
	today := t.clock.Today(now)
	rec := t.days[today]
	rec.ApproachCount = 0
	t.days[today] = rec
	t.punished = false
	return t.persist(ctx)
}

// Tick advances the countdown and fires the deadline rollover at most once per
// calendar day. The second result reports whether the rollover fired. A tick
// landing on a new calendar day first settles the day that slipped past while
// no tick was running.
func (t *Tracker) Tick(ctx context.Context, now time.Time) (model.Countdown, bool, error) {
	created := t.ensureToday(now)
	if created {
		t.catchUp(now)
	}
	remaining := t.clock.TimeRemaining(now)
	if remaining.Total > 0 || t.rolledOver(now) {
		if created {
			if err := t.persist(ctx); err != nil {
				return remaining, false, err
			}
		}
		return remaining, false, nil
	}
	t.rollover(now)
	if err := t.persist(ctx); err != nil {
		return remaining, true, err
	}
	return remaining, true, nil
}

// rollover freezes today at its current count and zeroes the streak when the
// day fell short. Recording today's identity makes the once-per-day guard a
// comparison of persisted day identities, not process state.
func (t *Tracker) rollover(now time.Time) {
	today := t.clock.Today(now)
	if rec := t.days[today]; rec.ApproachCount < t.target {
		t.streak = 0
		t.punished = true
	}
	t.lastRollover = today
}

func (t *Tracker) rolledOver(now time.Time) bool {
	return t.lastRollover >= t.clock.Today(now)
}

// ensureToday lazily creates today's record, reporting whether it did.
func (t *Tracker) ensureToday(now time.Time) bool {
	today := t.clock.Today(now)
	if _, ok := t.days[today]; ok {
		return false
	}
	t.days[today] = model.DayRecord{Date: today, Notes: []model.Note{}}
	return true
}

// Count returns today's in-progress approach count.
func (t *Tracker) Count(now time.Time) int {
	return t.days[t.clock.Today(now)].ApproachCount
}

// Target returns the daily approach goal.
func (t *Tracker) Target() int {
	return t.target
}

// Streak returns the current consecutive-day streak.
func (t *Tracker) Streak() int {
	return t.streak
}

// TodayComplete reports whether today's count has reached the target.
func (t *Tracker) TodayComplete(now time.Time) bool {
	return t.Count(now) >= t.target
}

// RolledOver reports whether today's deadline rollover has been handled.
func (t *Tracker) RolledOver(now time.Time) bool {
	return t.rolledOver(now)
}

// PunishmentActive reports whether the most recently evaluated day failed.
func (t *Tracker) PunishmentActive() bool {
	return t.punished
}

// Remaining returns the countdown to today's deadline.
func (t *Tracker) Remaining(now time.Time) model.Countdown {
	return t.clock.TimeRemaining(now)
}

// History returns every day record in date order.
func (t *Tracker) History() []model.DayRecord {
	records := make([]model.DayRecord, 0, len(t.days))
	for _, rec := range t.days {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Date < records[j].Date
	})
	return records
}

// Record returns the day record for a calendar-date identity.
func (t *Tracker) Record(dateID string) (model.DayRecord, bool) {
	rec, ok := t.days[dateID]
	return rec, ok
}

// persist writes the full state snapshot in one transaction, dropping any
// legacy keys consumed by migration on the first write after Load.
func (t *Tracker) persist(ctx context.Context) error {
	days, err := json.Marshal(t.days)
	if err != nil {
		return fmt.Errorf("failed to encode day records: %w", err)
	}
	streak, err := json.Marshal(t.streak)
	if err != nil {
		return fmt.Errorf("failed to encode streak: %w", err)
	}
	punished, err := json.Marshal(t.punished)
	if err != nil {
		return fmt.Errorf("failed to encode punishment flag: %w", err)
	}
	last, err := json.Marshal(t.lastRollover)
	if err != nil {
		return fmt.Errorf("failed to encode rollover marker: %w", err)
	}
	puts := map[string][]byte{
		keyDataStore:    days,
		keyStreak:       streak,
		keyPunishment:   punished,
		keyLastRollover: last,
	}
	if err := t.store.Apply(ctx, puts, t.legacyKeys); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}
	t.legacyKeys = nil
	return nil
}

func hasNoteID(notes []model.Note, id int64) bool {
	for _, n := range notes {
		if n.ID == id {
			return true
		}
	}
	return false
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
