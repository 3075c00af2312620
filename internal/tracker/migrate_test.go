package tracker

import (
	"context"
	"testing"
	"time"

	"tenaday/internal/clock"
	"tenaday/internal/model"
)

func TestMigrateLegacyApproachData(t *testing.T) {
	st := openTestStore(t)
	today := clock.DateID(morning)
	seedJSON(t, st, keyLegacyApproach, legacyApproachData{
		Date:   today,
		Count:  4,
		Streak: 2,
	})

	tr := loadTracker(t, st, morning)
	if got := tr.Count(morning); got != 4 {
		t.Fatalf("count = %d, want 4", got)
	}
	// The legacy single-day layout carries no yesterday record, so the gap
	// rule still resets the carried streak.
	if got := tr.Streak(); got != 0 {
		t.Fatalf("streak = %d, want 0", got)
	}

	// The legacy key is consumed by the first persisted write.
	if _, ok, err := st.Get(context.Background(), keyLegacyApproach); err != nil || ok {
		t.Fatalf("legacy key still present: ok=%v err=%v", ok, err)
	}
}

func TestMigratePreservesStreakForCompletedYesterday(t *testing.T) {
	st := openTestStore(t)
	yesterday := clock.DateID(morning.AddDate(0, 0, -1))
	seedJSON(t, st, keyLegacyApproach, legacyApproachData{
		Date:   yesterday,
		Count:  10,
		Streak: 5,
	})

	tr := loadTracker(t, st, morning)
	if got := tr.Streak(); got != 5 {
		t.Fatalf("streak = %d, want 5", got)
	}
	rec, ok := tr.Record(yesterday)
	if !ok || rec.ApproachCount != 10 {
		t.Fatalf("unexpected migrated record: %+v", rec)
	}
}

func TestMigrateLegacyDayEndMarker(t *testing.T) {
	st := openTestStore(t)
	yesterday := clock.DateID(morning.AddDate(0, 0, -1))
	seedJSON(t, st, keyLegacyApproach, legacyApproachData{
		Date:   yesterday,
		Count:  7,
		Streak: 3,
		DayEnd: true,
	})

	// dayEnd means the legacy app already handled yesterday's rollover, so the
	// carried streak value is trusted as-is.
	tr := loadTracker(t, st, morning)
	if got := tr.Streak(); got != 3 {
		t.Fatalf("streak = %d, want 3", got)
	}
	if tr.PunishmentActive() {
		t.Fatalf("already handled rollover must not re-punish")
	}
}

func TestMigrateLegacyNotes(t *testing.T) {
	st := openTestStore(t)
	seedJSON(t, st, keyLegacyNotes, map[string][]model.Note{
		"2025-03-08": {
			{ID: 100, Text: "older note", Timestamp: "09:15"},
			{ID: 200, Text: "later note", Timestamp: "18:40"},
		},
	})

	tr := loadTracker(t, st, morning)
	rec, ok := tr.Record("2025-03-08")
	if !ok {
		t.Fatalf("expected a record created for the legacy notes day")
	}
	if len(rec.Notes) != 2 || rec.Notes[0].ID != 100 || rec.Notes[1].ID != 200 {
		t.Fatalf("unexpected migrated notes: %+v", rec.Notes)
	}
	if _, ok, _ := st.Get(context.Background(), keyLegacyNotes); ok {
		t.Fatalf("legacy notes key still present")
	}
}

func TestMigrateMergesIntoExistingRecord(t *testing.T) {
	st := openTestStore(t)
	seedJSON(t, st, keyDataStore, map[string]model.DayRecord{
		"2025-03-08": {
			Date:          "2025-03-08",
			ApproachCount: 6,
			Notes:         []model.Note{{ID: 100, Text: "already unified", Timestamp: "09:15"}},
		},
	})
	seedJSON(t, st, keyLegacyApproach, legacyApproachData{Date: "2025-03-08", Count: 3})
	seedJSON(t, st, keyLegacyNotes, map[string][]model.Note{
		"2025-03-08": {
			{ID: 100, Text: "already unified", Timestamp: "09:15"},
			{ID: 150, Text: "only in legacy", Timestamp: "12:30"},
		},
	})

	tr := loadTracker(t, st, morning)
	rec, _ := tr.Record("2025-03-08")
	if rec.ApproachCount != 6 {
		t.Fatalf("legacy count overwrote a higher unified count: %d", rec.ApproachCount)
	}
	if len(rec.Notes) != 2 {
		t.Fatalf("expected note merge without duplicates, got %+v", rec.Notes)
	}
	if rec.Notes[0].ID != 100 || rec.Notes[1].ID != 150 {
		t.Fatalf("notes not in id order: %+v", rec.Notes)
	}
}

func TestMigrationIdempotent(t *testing.T) {
	st := openTestStore(t)
	seedJSON(t, st, keyLegacyApproach, legacyApproachData{Date: "2025-03-08", Count: 5, Streak: 1})
	seedJSON(t, st, keyLegacyNotes, map[string][]model.Note{
		"2025-03-08": {{ID: 100, Text: "note", Timestamp: "10:00"}},
	})

	first := loadTracker(t, st, morning)
	firstRec, _ := first.Record("2025-03-08")

	second := loadTracker(t, st, morning.Add(time.Minute))
	secondRec, _ := second.Record("2025-03-08")

	if secondRec.ApproachCount != firstRec.ApproachCount {
		t.Fatalf("second load changed the count: %d vs %d", secondRec.ApproachCount, firstRec.ApproachCount)
	}
	if len(secondRec.Notes) != len(firstRec.Notes) {
		t.Fatalf("second load duplicated notes: %d vs %d", len(secondRec.Notes), len(firstRec.Notes))
	}
}

func TestMigrationSkipsUnreadableRecords(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	if err := st.Put(ctx, keyLegacyApproach, []byte("{broken")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	seedJSON(t, st, keyLegacyNotes, map[string][]model.Note{
		"not-a-date": {{ID: 1, Text: "orphan", Timestamp: "10:00"}},
		"2025-03-08": {{ID: 2, Text: "survivor", Timestamp: "11:00"}},
	})

	tr := loadTracker(t, st, morning)
	rec, ok := tr.Record("2025-03-08")
	if !ok || len(rec.Notes) != 1 || rec.Notes[0].Text != "survivor" {
		t.Fatalf("good legacy record did not survive a bad sibling: %+v", rec)
	}
	if _, ok := tr.Record("not-a-date"); ok {
		t.Fatalf("bad date identity was migrated")
	}
}
