// Package mastery keeps the longitudinal per-(user, concept) mastery
// estimate and builds learner reports from it.
package mastery

import (
	"slices"
	"time"

	"github.com/abhisek/adaptiq/internal/store"
)

// Model constants.
const (
	// HistoryWeight is the EWMA weight kept from the previous level.
	HistoryWeight = 0.7

	// TrendCap is the number of historical levels retained.
	TrendCap = 10

	// ConfidenceBand is the half-width of the confidence interval.
	ConfidenceBand = 0.2

	// WeakThreshold and StrongThreshold classify per-tag accuracy.
	WeakThreshold   = 0.5
	StrongThreshold = 0.8
)

// Record is the mastery state of one learner on one concept.
type Record struct {
	UserID      string
	ConceptID   string
	ConceptName string

	// Level is the smoothed mastery estimate in [0, 1].
	Level float64

	ConfidenceLow  float64
	ConfidenceHigh float64

	// Trend holds up to TrendCap past levels, oldest first.
	Trend []float64

	// WeakAreas and StrongAreas come from the most recent session only.
	WeakAreas   []string
	StrongAreas []string

	LastAssessment    time.Time
	NextReviewDate    time.Time
	SessionsCompleted int

	version int64
}

func (r *Record) clone() *Record {
	c := *r
	c.Trend = slices.Clone(r.Trend)
	c.WeakAreas = slices.Clone(r.WeakAreas)
	c.StrongAreas = slices.Clone(r.StrongAreas)
	return &c
}

func (r *Record) toData() *store.MasteryData {
	return &store.MasteryData{
		UserID:            r.UserID,
		ConceptID:         r.ConceptID,
		ConceptName:       r.ConceptName,
		MasteryLevel:      r.Level,
		ConfidenceLow:     r.ConfidenceLow,
		ConfidenceHigh:    r.ConfidenceHigh,
		Trend:             slices.Clone(r.Trend),
		WeakAreas:         slices.Clone(r.WeakAreas),
		StrongAreas:       slices.Clone(r.StrongAreas),
		LastAssessment:    r.LastAssessment,
		NextReviewDate:    r.NextReviewDate,
		SessionsCompleted: r.SessionsCompleted,
		Version:           r.version,
	}
}

func recordFromData(d *store.MasteryData) *Record {
	return &Record{
		UserID:            d.UserID,
		ConceptID:         d.ConceptID,
		ConceptName:       d.ConceptName,
		Level:             d.MasteryLevel,
		ConfidenceLow:     d.ConfidenceLow,
		ConfidenceHigh:    d.ConfidenceHigh,
		Trend:             d.Trend,
		WeakAreas:         d.WeakAreas,
		StrongAreas:       d.StrongAreas,
		LastAssessment:    d.LastAssessment,
		NextReviewDate:    d.NextReviewDate,
		SessionsCompleted: d.SessionsCompleted,
		version:           d.Version,
	}
}

// Status is the reporting label for a mastery level.
type Status string

const (
	StatusMastered      Status = "mastered"
	StatusGoodProgress  Status = "good_progress"
	StatusNeedsPractice Status = "needs_practice"
	StatusStruggling    Status = "struggling"
)

// StatusFor maps a level to its label.
func StatusFor(level float64) Status {
	switch {
	case level >= 0.8:
		return StatusMastered
	case level >= 0.6:
		return StatusGoodProgress
	case level >= 0.4:
		return StatusNeedsPractice
	default:
		return StatusStruggling
	}
}

// TrendLabel describes the direction of the last two trend entries.
type TrendLabel string

const (
	TrendImproving TrendLabel = "improving"
	TrendStable    TrendLabel = "stable"
)

// TrendOf returns TrendImproving when the latest level beats the one
// before it.
func TrendOf(trend []float64) TrendLabel {
	n := len(trend)
	if n > 1 && trend[n-1] > trend[n-2] {
		return TrendImproving
	}
	return TrendStable
}

func clamp01(v float64) float64 {
	return min(1, max(0, v))
}
