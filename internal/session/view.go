package session

import (
	"slices"
	"time"

	"github.com/abhisek/adaptiq/internal/questionbank"
)

// Progress locates a question within its session.
type Progress struct {
	Current  int     `json:"current"`
	Total    int     `json:"total"`
	Fraction float64 `json:"fraction"`
}

// QuestionView is the learner-facing projection of a question. It never
// carries the answer or the explanation.
type QuestionView struct {
	ID            string                    `json:"question_id"`
	Text          string                    `json:"question_text"`
	Type          questionbank.QuestionType `json:"question_type"`
	Options       []string                  `json:"options"`
	Difficulty    float64                   `json:"difficulty"`
	EstimatedTime int                       `json:"estimated_time"`
	Hint          string                    `json:"hint,omitempty"`
	Progress      Progress                  `json:"progress"`
}

// currentView projects the question at the cursor, or nil when the
// session has no more questions.
func currentView(s *Session) *QuestionView {
	if s.Done() {
		return nil
	}
	q := s.Questions[s.Cursor]
	total := len(s.Questions)
	options := slices.Clone(q.Options)
	if options == nil {
		options = []string{}
	}
	return &QuestionView{
		ID:            q.ID,
		Text:          q.Text,
		Type:          q.Type,
		Options:       options,
		Difficulty:    q.Difficulty,
		EstimatedTime: q.EstimatedTime,
		Hint:          q.Hint,
		Progress: Progress{
			Current:  s.Cursor + 1,
			Total:    total,
			Fraction: float64(s.Cursor+1) / float64(total),
		},
	}
}

// AnswerResult is the feedback for one submitted answer.
type AnswerResult struct {
	IsCorrect     bool       `json:"is_correct"`
	Explanation   string     `json:"explanation"`
	CorrectAnswer string     `json:"correct_answer"`
	Adjustment    Adjustment `json:"difficulty_adjustment"`
	QuizCompleted bool       `json:"quiz_completed"`

	// Exactly one of Next and Report is set.
	Next   *QuestionView `json:"next_question,omitempty"`
	Report *FinalReport  `json:"final_results,omitempty"`
}

// Summary is a read-only overview of a session.
type Summary struct {
	ID                string       `json:"session_id"`
	UserID            string       `json:"user_id"`
	ConceptID         string       `json:"concept_id"`
	ConceptName       string       `json:"concept_name"`
	State             State        `json:"state"`
	StartTime         time.Time    `json:"start_time"`
	QuestionsTotal    int          `json:"questions_total"`
	QuestionsAnswered int          `json:"questions_answered"`
	Correct           int          `json:"correct"`
	Adjustments       []Adjustment `json:"adjustments"`
	Report            *FinalReport `json:"report,omitempty"`
}

// Summarize builds the read-only overview of s.
func Summarize(s *Session) Summary {
	correct := 0
	for _, r := range s.Responses {
		if r.IsCorrect {
			correct++
		}
	}
	return Summary{
		ID:                s.ID,
		UserID:            s.UserID,
		ConceptID:         s.ConceptID,
		ConceptName:       s.ConceptName,
		State:             s.State(),
		StartTime:         s.StartTime,
		QuestionsTotal:    len(s.Questions),
		QuestionsAnswered: len(s.Responses),
		Correct:           correct,
		Adjustments:       slices.Clone(s.Adjustments),
		Report:            s.clone().Report,
	}
}
