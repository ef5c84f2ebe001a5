// Package session runs adaptive quiz sessions: question sequencing,
// difficulty adaptation, grading and finalization.
package session

import (
	"slices"
	"time"

	"github.com/abhisek/adaptiq/internal/mastery"
	"github.com/abhisek/adaptiq/internal/questionbank"
	"github.com/abhisek/adaptiq/internal/store"
)

// State is the lifecycle phase of a session.
type State string

const (
	StateCreated    State = "created"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
)

// Adjustment is the tag the adaptive controller records per answer.
type Adjustment string

const (
	AdjustNone   Adjustment = "none"
	AdjustEasier Adjustment = "easier"
	AdjustHarder Adjustment = "harder"
)

// Response is one submitted answer.
type Response struct {
	QuestionID      string    `json:"question_id"`
	SubmittedAnswer string    `json:"submitted_answer"`
	CorrectAnswer   string    `json:"correct_answer"`
	IsCorrect       bool      `json:"is_correct"`
	TimeTaken       float64   `json:"time_taken"`
	Difficulty      float64   `json:"difficulty_level"`
	Timestamp       time.Time `json:"timestamp"`
}

// Metrics summarizes a completed session.
type Metrics struct {
	Accuracy           float64 `json:"accuracy"`
	FinalScore         float64 `json:"final_score"`
	TotalTime          float64 `json:"total_time"`
	AvgTimePerQuestion float64 `json:"avg_time_per_question"`
	QuestionsAnswered  int     `json:"questions_answered"`
	AdjustmentsMade    int     `json:"adaptive_adjustments_made"`
}

// MasteryUpdate is the mastery change a session produced.
type MasteryUpdate struct {
	Status       mastery.Status     `json:"mastery_status"`
	MasteryLevel float64            `json:"mastery_level"`
	Trend        mastery.TrendLabel `json:"trend"`
	WeakAreas    []string           `json:"weak_areas"`
	StrongAreas  []string           `json:"strong_areas"`
	NextReview   time.Time          `json:"next_review"`
}

// FinalReport is returned with the last answer of a session.
type FinalReport struct {
	SessionID       string        `json:"session_id"`
	Performance     Metrics       `json:"performance"`
	MasteryUpdate   MasteryUpdate `json:"mastery_update"`
	Recommendations []string      `json:"recommendations"`
}

// Session is one quiz run of a learner on a concept.
type Session struct {
	ID          string
	UserID      string
	ConceptID   string
	ConceptName string

	// Questions has a fixed length; difficulties of unserved questions
	// change as the session adapts.
	Questions []questionbank.Question

	Responses []Response

	// Cursor is the index of the next question to serve.
	Cursor int

	// DifficultyProgression mirrors the per-index question difficulty.
	DifficultyProgression []float64

	StartTime time.Time
	EndTime   *time.Time

	// Adjustments has one entry per submitted answer.
	Adjustments []Adjustment

	Metrics *Metrics
	Report  *FinalReport

	version int64
}

// State derives the lifecycle phase.
func (s *Session) State() State {
	switch {
	case s.EndTime != nil:
		return StateCompleted
	case s.Cursor == 0 && len(s.Responses) == 0:
		return StateCreated
	default:
		return StateInProgress
	}
}

// Done reports whether every question has been answered.
func (s *Session) Done() bool {
	return s.Cursor >= len(s.Questions)
}

func (s *Session) clone() *Session {
	c := *s
	c.Questions = make([]questionbank.Question, len(s.Questions))
	for i, q := range s.Questions {
		q.Options = slices.Clone(q.Options)
		q.ConceptTags = slices.Clone(q.ConceptTags)
		c.Questions[i] = q
	}
	c.Responses = slices.Clone(s.Responses)
	c.DifficultyProgression = slices.Clone(s.DifficultyProgression)
	c.Adjustments = slices.Clone(s.Adjustments)
	if s.EndTime != nil {
		t := *s.EndTime
		c.EndTime = &t
	}
	if s.Metrics != nil {
		m := *s.Metrics
		c.Metrics = &m
	}
	if s.Report != nil {
		r := *s.Report
		r.Recommendations = slices.Clone(s.Report.Recommendations)
		r.MasteryUpdate.WeakAreas = slices.Clone(s.Report.MasteryUpdate.WeakAreas)
		r.MasteryUpdate.StrongAreas = slices.Clone(s.Report.MasteryUpdate.StrongAreas)
		c.Report = &r
	}
	return &c
}

func (s *Session) toData() *store.SessionData {
	d := &store.SessionData{
		ID:                    s.ID,
		UserID:                s.UserID,
		ConceptID:             s.ConceptID,
		ConceptName:           s.ConceptName,
		Questions:             make([]store.QuestionData, len(s.Questions)),
		Responses:             make([]store.ResponseData, len(s.Responses)),
		Cursor:                s.Cursor,
		DifficultyProgression: slices.Clone(s.DifficultyProgression),
		StartTime:             s.StartTime,
		EndTime:               s.EndTime,
		Adjustments:           make([]string, len(s.Adjustments)),
		Version:               s.version,
	}
	for i, q := range s.Questions {
		d.Questions[i] = q.ToData()
	}
	for i, r := range s.Responses {
		d.Responses[i] = store.ResponseData(r)
	}
	for i, a := range s.Adjustments {
		d.Adjustments[i] = string(a)
	}
	if s.Metrics != nil {
		m := store.MetricsData(*s.Metrics)
		d.Metrics = &m
	}
	if s.Report != nil {
		mu := s.Report.MasteryUpdate
		d.Report = &store.ReportData{
			MasteryStatus:   string(mu.Status),
			MasteryLevel:    mu.MasteryLevel,
			Trend:           string(mu.Trend),
			WeakAreas:       mu.WeakAreas,
			StrongAreas:     mu.StrongAreas,
			NextReview:      mu.NextReview,
			Recommendations: s.Report.Recommendations,
		}
	}
	return d
}

func sessionFromData(d *store.SessionData) *Session {
	s := &Session{
		ID:                    d.ID,
		UserID:                d.UserID,
		ConceptID:             d.ConceptID,
		ConceptName:           d.ConceptName,
		Questions:             make([]questionbank.Question, len(d.Questions)),
		Responses:             make([]Response, len(d.Responses)),
		Cursor:                d.Cursor,
		DifficultyProgression: d.DifficultyProgression,
		StartTime:             d.StartTime,
		EndTime:               d.EndTime,
		Adjustments:           make([]Adjustment, len(d.Adjustments)),
		version:               d.Version,
	}
	for i, q := range d.Questions {
		s.Questions[i] = questionbank.FromData(q)
	}
	for i, r := range d.Responses {
		s.Responses[i] = Response(r)
	}
	for i, a := range d.Adjustments {
		s.Adjustments[i] = Adjustment(a)
	}
	if d.Metrics != nil {
		m := Metrics(*d.Metrics)
		s.Metrics = &m
	}
	if d.Report != nil && s.Metrics != nil {
		s.Report = &FinalReport{
			SessionID:   d.ID,
			Performance: *s.Metrics,
			MasteryUpdate: MasteryUpdate{
				Status:       mastery.Status(d.Report.MasteryStatus),
				MasteryLevel: d.Report.MasteryLevel,
				Trend:        mastery.TrendLabel(d.Report.Trend),
				WeakAreas:    d.Report.WeakAreas,
				StrongAreas:  d.Report.StrongAreas,
				NextReview:   d.Report.NextReview,
			},
			Recommendations: d.Report.Recommendations,
		}
	}
	if s.Cursor > len(s.Questions) {
		s.Cursor = len(s.Questions)
	}
	return s
}
