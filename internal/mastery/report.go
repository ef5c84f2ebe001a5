package mastery

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/abhisek/adaptiq/internal/spacedrep"
)

// TopAreas is the number of weak and strong tags listed in a report.
const TopAreas = 5

// DueConcept is a concept whose review date has passed.
type DueConcept struct {
	ConceptID    string    `json:"concept_id"`
	ConceptName  string    `json:"concept"`
	MasteryLevel float64   `json:"mastery_level"`
	WeakAreas    []string  `json:"weak_areas"`
	NextReview   time.Time `json:"next_review"`
}

// ConceptSummary is one row of the per-concept table in a report.
type ConceptSummary struct {
	ConceptID    string     `json:"concept_id"`
	ConceptName  string     `json:"concept"`
	MasteryLevel float64    `json:"mastery_level"`
	Status       Status     `json:"status"`
	Trend        TrendLabel `json:"trend"`
	NextReview   time.Time  `json:"next_review"`
	Sessions     int        `json:"sessions_completed"`
}

// Report aggregates all of a learner's mastery records.
type Report struct {
	UserID            string           `json:"user_id"`
	OverallMastery    float64          `json:"overall_mastery"`
	MasteredCount     int              `json:"mastered_concepts"`
	TotalConcepts     int              `json:"total_concepts"`
	MasteryPercentage float64          `json:"mastery_percentage"`
	DueForReview      []DueConcept     `json:"concepts_needing_review"`
	TopWeakAreas      []string         `json:"top_weak_areas"`
	TopStrongAreas    []string         `json:"top_strong_areas"`
	Recommendations   []string         `json:"recommendations"`
	Concepts          []ConceptSummary `json:"concepts"`
}

// Report builds the learner's mastery report. A learner with no records
// gets an empty report with TotalConcepts == 0.
func (t *Tracker) Report(_ context.Context, userID string) (*Report, error) {
	now := t.now()

	t.mu.Lock()
	var records []*Record
	for _, r := range t.records {
		if r.UserID == userID {
			records = append(records, r.clone())
		}
	}
	t.mu.Unlock()

	rep := &Report{
		UserID:          userID,
		DueForReview:    []DueConcept{},
		TopWeakAreas:    []string{},
		TopStrongAreas:  []string{},
		Recommendations: []string{},
		Concepts:        []ConceptSummary{},
	}
	if len(records) == 0 {
		return rep, nil
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ConceptID < records[j].ConceptID })

	var sum float64
	var weak, strong []string
	schedule := make([]spacedrep.ReviewState, 0, len(records))
	byConcept := make(map[string]*Record, len(records))
	for _, r := range records {
		sum += r.Level
		if r.Level >= StrongThreshold {
			rep.MasteredCount++
		}
		weak = append(weak, r.WeakAreas...)
		strong = append(strong, r.StrongAreas...)
		schedule = append(schedule, spacedrep.ReviewState{ConceptID: r.ConceptID, NextReviewDate: r.NextReviewDate})
		byConcept[r.ConceptID] = r

		rep.Concepts = append(rep.Concepts, ConceptSummary{
			ConceptID:    r.ConceptID,
			ConceptName:  r.ConceptName,
			MasteryLevel: r.Level,
			Status:       StatusFor(r.Level),
			Trend:        TrendOf(r.Trend),
			NextReview:   r.NextReviewDate,
			Sessions:     r.SessionsCompleted,
		})
	}

	rep.TotalConcepts = len(records)
	rep.OverallMastery = sum / float64(len(records))
	rep.MasteryPercentage = float64(rep.MasteredCount) / float64(rep.TotalConcepts) * 100

	for _, rs := range spacedrep.DueConcepts(schedule, now) {
		r := byConcept[rs.ConceptID]
		rep.DueForReview = append(rep.DueForReview, DueConcept{
			ConceptID:    r.ConceptID,
			ConceptName:  r.ConceptName,
			MasteryLevel: r.Level,
			WeakAreas:    r.WeakAreas,
			NextReview:   r.NextReviewDate,
		})
	}

	rep.TopWeakAreas = topByFrequency(weak, TopAreas)
	rep.TopStrongAreas = topByFrequency(strong, TopAreas)
	rep.Recommendations = reportRecommendations(rep)
	return rep, nil
}

func reportRecommendations(rep *Report) []string {
	recs := []string{}
	switch {
	case rep.OverallMastery < 0.5:
		recs = append(recs, "Focus on building foundational knowledge before advancing")
	case rep.OverallMastery > 0.8:
		recs = append(recs, "Consider exploring more advanced topics in your strong areas")
	}
	if n := len(rep.DueForReview); n > 0 {
		recs = append(recs, fmt.Sprintf("You have %d concepts due for review", n))
	}
	return recs
}

// topByFrequency ranks tags by occurrence count, breaking ties
// alphabetically, and returns at most n.
func topByFrequency(tags []string, n int) []string {
	counts := make(map[string]int)
	for _, t := range tags {
		counts[t]++
	}
	out := make([]string, 0, len(counts))
	for t := range counts {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if counts[out[i]] != counts[out[j]] {
			return counts[out[i]] > counts[out[j]]
		}
		return out[i] < out[j]
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
