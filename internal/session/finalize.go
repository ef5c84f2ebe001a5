package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/adaptiq/internal/mastery"
)

// Recommendation thresholds.
const (
	reviewBasicsAccuracy = 0.5
	slowAverageSeconds   = 120
	heavyAdaptation      = 3
	advanceScore         = 80
	focusTags            = 3
	maxRecommendations   = 5
)

// computeMetrics scores the responses. The final score weights each
// correct answer by the difficulty it had when answered.
func computeMetrics(s *Session) Metrics {
	var m Metrics
	m.QuestionsAnswered = len(s.Responses)
	if m.QuestionsAnswered == 0 {
		return m
	}

	var correct int
	var weighted, weight float64
	for _, r := range s.Responses {
		m.TotalTime += r.TimeTaken
		weight += r.Difficulty
		if r.IsCorrect {
			correct++
			weighted += r.Difficulty
		}
	}
	m.Accuracy = float64(correct) / float64(m.QuestionsAnswered)
	m.AvgTimePerQuestion = m.TotalTime / float64(m.QuestionsAnswered)
	if weight > 0 {
		m.FinalScore = weighted / weight * 100
	}
	for _, a := range s.Adjustments {
		if a != AdjustNone {
			m.AdjustmentsMade++
		}
	}
	return m
}

func recommendations(m Metrics, weakAreas []string) []string {
	recs := []string{}
	if m.Accuracy < reviewBasicsAccuracy {
		recs = append(recs, "Consider reviewing the basic concepts before attempting more questions")
	}
	if m.AvgTimePerQuestion > slowAverageSeconds {
		recs = append(recs, "Try to work on answering questions more quickly")
	}
	if m.AdjustmentsMade > heavyAdaptation {
		recs = append(recs, "The quiz adapted significantly to your performance - consider more focused study")
	}
	if len(weakAreas) > 0 {
		top := weakAreas[:min(focusTags, len(weakAreas))]
		recs = append(recs, "Focus on these areas: "+strings.Join(top, ", "))
	}
	if m.FinalScore >= advanceScore {
		recs = append(recs, "Great job! Consider moving to more advanced topics")
	}
	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs
}

// finalize completes the session: metrics, mastery update and report.
func (svc *Service) finalize(ctx context.Context, s *Session, now time.Time) (*FinalReport, error) {
	m := computeMetrics(s)

	answers := make([]mastery.AnswerTags, len(s.Responses))
	for i, r := range s.Responses {
		answers[i] = mastery.AnswerTags{Tags: s.Questions[i].ConceptTags, Correct: r.IsCorrect}
	}
	up, err := svc.tracker.Update(ctx, mastery.Outcome{
		UserID:      s.UserID,
		ConceptID:   s.ConceptID,
		ConceptName: s.ConceptName,
		FinalScore:  m.FinalScore,
		Answers:     answers,
	})
	if err != nil {
		return nil, fmt.Errorf("update mastery: %w", err)
	}

	report := &FinalReport{
		SessionID:   s.ID,
		Performance: m,
		MasteryUpdate: MasteryUpdate{
			Status:       up.Status,
			MasteryLevel: up.Level,
			Trend:        up.Trend,
			WeakAreas:    up.WeakAreas,
			StrongAreas:  up.StrongAreas,
			NextReview:   up.NextReview,
		},
		Recommendations: recommendations(m, up.WeakAreas),
	}

	s.EndTime = &now
	s.Metrics = &m
	s.Report = report
	return report, nil
}
