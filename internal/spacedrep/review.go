// Package spacedrep schedules concept reviews from mastery levels.
package spacedrep

import (
	"sort"
	"time"
)

// Review intervals by mastery level.
const (
	MasteredInterval = 14 * 24 * time.Hour // level >= 0.8
	ProgressInterval = 7 * 24 * time.Hour  // level >= 0.6
	PracticeInterval = 3 * 24 * time.Hour  // otherwise
)

// ReviewInterval returns how long to wait before the next review of a
// concept at the given mastery level.
func ReviewInterval(level float64) time.Duration {
	switch {
	case level >= 0.8:
		return MasteredInterval
	case level >= 0.6:
		return ProgressInterval
	default:
		return PracticeInterval
	}
}

// NextReview returns the review date counted from now, not from the
// previous review.
func NextReview(level float64, now time.Time) time.Time {
	return now.Add(ReviewInterval(level))
}

// ReviewState is the review schedule of a single concept.
type ReviewState struct {
	ConceptID      string
	NextReviewDate time.Time
}

// IsDue returns true at or past the review date.
func (rs ReviewState) IsDue(now time.Time) bool {
	return !now.Before(rs.NextReviewDate)
}

// OverdueDays returns how many days past due the concept is, or 0.
func (rs ReviewState) OverdueDays(now time.Time) float64 {
	if now.Before(rs.NextReviewDate) {
		return 0
	}
	return now.Sub(rs.NextReviewDate).Hours() / 24.0
}

// DueConcepts returns the due entries, most overdue first. Ties keep
// concept id order.
func DueConcepts(states []ReviewState, now time.Time) []ReviewState {
	var due []ReviewState
	for _, rs := range states {
		if rs.IsDue(now) {
			due = append(due, rs)
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		if !due[i].NextReviewDate.Equal(due[j].NextReviewDate) {
			return due[i].NextReviewDate.Before(due[j].NextReviewDate)
		}
		return due[i].ConceptID < due[j].ConceptID
	})
	return due
}
