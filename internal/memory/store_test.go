package memory

import (
	"errors"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *SessionStore {
	t.Helper()
	store, err := NewSessionStore(":memory:", nil)
	if err != nil {
		t.Fatalf("failed to create session store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func intPtr(v int) *int { return &v }

func TestRecordRoundTrip(t *testing.T) {
	store := newTestStore(t)

	rec := SessionRecord{
		Goal:               "Finish data analysis report",
		Duration:           "2 hours",
		Plan:               "Work in two 55-minute blocks.",
		ActualFocusMinutes: intPtr(110),
		FatigueScore:       intPtr(2),
		BreaksTaken:        1,
	}
	if err := store.Record(rec); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	got, err := store.Recent(1)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}

	r := got[0]
	if r.Goal != rec.Goal || r.Duration != rec.Duration || r.Plan != rec.Plan {
		t.Errorf("round trip mismatch: %+v", r)
	}
	if r.ActualFocusMinutes == nil || *r.ActualFocusMinutes != 110 {
		t.Errorf("expected actual focus 110, got %v", r.ActualFocusMinutes)
	}
	if r.FatigueScore == nil || *r.FatigueScore != 2 {
		t.Errorf("expected fatigue 2, got %v", r.FatigueScore)
	}
	if r.BreaksTaken != 1 {
		t.Errorf("expected 1 break, got %d", r.BreaksTaken)
	}
	if r.ID == "" {
		t.Error("expected store-assigned ID")
	}
	if r.CreatedAt.IsZero() {
		t.Error("expected store-assigned timestamp")
	}
}

func TestRecordRejectsFatigueOutOfRange(t *testing.T) {
	store := newTestStore(t)

	for _, score := range []int{0, -1, 6, 10} {
		err := store.Record(SessionRecord{
			Goal:         "Finish report",
			Duration:     "1 hour",
			FatigueScore: intPtr(score),
		})
		if err == nil {
			t.Errorf("fatigue score %d: expected error, got nil", score)
		}
	}

	// Nothing persisted by the rejected writes.
	got, err := store.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty store, got %d records", len(got))
	}

	// Boundary values are accepted.
	for _, score := range []int{1, 5} {
		if err := store.Record(SessionRecord{
			Goal:         "Finish report",
			Duration:     "1 hour",
			FatigueScore: intPtr(score),
		}); err != nil {
			t.Errorf("fatigue score %d: unexpected error: %v", score, err)
		}
	}
}

func TestRecentEmptyStore(t *testing.T) {
	store := newTestStore(t)

	got, err := store.Recent(3)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no records, got %d", len(got))
	}

	if s := store.Summary(3); s != EmptySummary {
		t.Errorf("expected empty-state message, got %q", s)
	}
}

func TestRecentChronologicalOrder(t *testing.T) {
	store := newTestStore(t)

	for _, goal := range []string{"first", "second", "third"} {
		if err := store.Record(SessionRecord{Goal: goal, Duration: "1 hour"}); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	// k < n returns exactly k records, most-recent-last.
	got, err := store.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	if got[0].Goal != "first" || got[2].Goal != "third" {
		t.Errorf("expected chronological order, got %q..%q", got[0].Goal, got[2].Goal)
	}

	// Window trims from the oldest end.
	got, err = store.Recent(2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(got) != 2 || got[0].Goal != "second" || got[1].Goal != "third" {
		t.Errorf("unexpected window: %+v", got)
	}
}

func TestReadsAreIdempotent(t *testing.T) {
	store := newTestStore(t)
	store.Record(SessionRecord{Goal: "g", Duration: "30 min", ActualFocusMinutes: intPtr(25)})

	first, err := store.Recent(5)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	second, err := store.Recent(5)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(first) != len(second) || first[0] != second[0] {
		t.Error("Recent is not idempotent")
	}

	a1, n1, err := store.Average(FieldActualFocus)
	if err != nil {
		t.Fatalf("Average failed: %v", err)
	}
	a2, n2, err := store.Average(FieldActualFocus)
	if err != nil {
		t.Fatalf("Average failed: %v", err)
	}
	if a1 != a2 || n1 != n2 {
		t.Error("Average is not idempotent")
	}
}

func TestAverageSkipsAbsentValues(t *testing.T) {
	store := newTestStore(t)

	store.Record(SessionRecord{Goal: "a", Duration: "1h", ActualFocusMinutes: intPtr(60)})
	store.Record(SessionRecord{Goal: "b", Duration: "1h"}) // no focus value
	store.Record(SessionRecord{Goal: "c", Duration: "1h", ActualFocusMinutes: intPtr(30)})

	avg, n, err := store.Average(FieldActualFocus)
	if err != nil {
		t.Fatalf("Average failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 qualifying records, got %d", n)
	}
	if avg != 45 {
		t.Errorf("expected average 45, got %f", avg)
	}
}

func TestAverageNoData(t *testing.T) {
	store := newTestStore(t)

	_, _, err := store.Average(FieldFatigue)
	if !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData on empty store, got %v", err)
	}

	// Records exist but none carry the field.
	store.Record(SessionRecord{Goal: "a", Duration: "1h"})
	_, _, err = store.Average(FieldFatigue)
	if !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData when no record has the field, got %v", err)
	}
}

func TestAverageUnknownField(t *testing.T) {
	store := newTestStore(t)
	if _, _, err := store.Average("mood"); err == nil || errors.Is(err, ErrNoData) {
		t.Errorf("expected a field error, got %v", err)
	}
}

func TestPlanTruncation(t *testing.T) {
	store := newTestStore(t)

	long := strings.Repeat("x", 800)
	store.Record(SessionRecord{Goal: "g", Duration: "1h", Plan: long})

	got, err := store.Recent(1)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(got[0].Plan) != 500 {
		t.Errorf("expected plan truncated to 500 chars, got %d", len(got[0].Plan))
	}
}

func TestSummaryFormat(t *testing.T) {
	store := newTestStore(t)
	store.Record(SessionRecord{Goal: "Write thesis intro", Duration: "90 min"})

	s := store.Summary(3)
	if !strings.HasPrefix(s, "- Write thesis intro (90 min) @ ") {
		t.Errorf("unexpected summary line: %q", s)
	}
}
