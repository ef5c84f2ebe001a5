package spacedrep

import (
	"testing"
	"time"
)

func TestReviewInterval(t *testing.T) {
	tests := []struct {
		level float64
		want  time.Duration
	}{
		{1.0, 14 * 24 * time.Hour},
		{0.8, 14 * 24 * time.Hour},
		{0.79, 7 * 24 * time.Hour},
		{0.6, 7 * 24 * time.Hour},
		{0.59, 3 * 24 * time.Hour},
		{0, 3 * 24 * time.Hour},
	}
	for _, tt := range tests {
		if got := ReviewInterval(tt.level); got != tt.want {
			t.Errorf("ReviewInterval(%v) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestNextReviewCountsFromNow(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	got := NextReview(0.85, now)
	want := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("NextReview = %v, want %v", got, want)
	}
}

func TestIsDue(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	rs := ReviewState{ConceptID: "c", NextReviewDate: now}
	if !rs.IsDue(now) {
		t.Error("review due exactly now should be due")
	}
	if rs.IsDue(now.Add(-time.Second)) {
		t.Error("review in the future should not be due")
	}
	if d := rs.OverdueDays(now.Add(36 * time.Hour)); d != 1.5 {
		t.Errorf("OverdueDays = %v, want 1.5", d)
	}
	if d := rs.OverdueDays(now.Add(-time.Hour)); d != 0 {
		t.Errorf("OverdueDays before due = %v, want 0", d)
	}
}

func TestDueConcepts(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	states := []ReviewState{
		{ConceptID: "future", NextReviewDate: now.Add(time.Hour)},
		{ConceptID: "b", NextReviewDate: now.Add(-24 * time.Hour)},
		{ConceptID: "a", NextReviewDate: now.Add(-24 * time.Hour)},
		{ConceptID: "oldest", NextReviewDate: now.Add(-72 * time.Hour)},
	}

	due := DueConcepts(states, now)
	want := []string{"oldest", "a", "b"}
	if len(due) != len(want) {
		t.Fatalf("due = %d, want %d", len(due), len(want))
	}
	for i, id := range want {
		if due[i].ConceptID != id {
			t.Errorf("due[%d] = %q, want %q", i, due[i].ConceptID, id)
		}
	}
}
