// Package questionbank turns a concept and a difficulty plan into quiz
// questions, keeps the per-concept question bank and grades answers.
package questionbank

import (
	"time"

	"github.com/abhisek/adaptiq/internal/store"
)

// Question is a single quiz item.
type Question struct {
	ID   string
	Text string
	Type QuestionType

	// Options is populated only for multiple choice.
	Options []string

	// CorrectAnswer is the canonical string form of the answer: an option
	// index or option text for multiple choice, "true"/"false" for
	// true/false, free text for short answer.
	CorrectAnswer string

	Explanation string

	// Difficulty in [0.1, 1.0]. Adaptive adjustment mutates it during a
	// session.
	Difficulty float64

	// ConceptTags is never empty.
	ConceptTags []string

	CognitiveLevel CognitiveLevel

	// EstimatedTime is the expected answer time in seconds.
	EstimatedTime int

	Hint      string
	CreatedAt time.Time
}

// QuestionType is how the learner answers.
type QuestionType string

const (
	TypeMultipleChoice QuestionType = "multiple_choice"
	TypeTrueFalse      QuestionType = "true_false"
	TypeShortAnswer    QuestionType = "short_answer"
)

func (t QuestionType) valid() bool {
	switch t {
	case TypeMultipleChoice, TypeTrueFalse, TypeShortAnswer:
		return true
	}
	return false
}

// CognitiveLevel is the Bloom's taxonomy level a question targets.
type CognitiveLevel string

const (
	LevelRemember   CognitiveLevel = "remember"
	LevelUnderstand CognitiveLevel = "understand"
	LevelApply      CognitiveLevel = "apply"
	LevelAnalyze    CognitiveLevel = "analyze"
	LevelEvaluate   CognitiveLevel = "evaluate"
	LevelCreate     CognitiveLevel = "create"
)

func (l CognitiveLevel) valid() bool {
	switch l {
	case LevelRemember, LevelUnderstand, LevelApply, LevelAnalyze, LevelEvaluate, LevelCreate:
		return true
	}
	return false
}

// DefaultEstimatedTime is used when a question carries no estimate.
const DefaultEstimatedTime = 60

// GenerateInput holds everything needed to generate a batch of questions.
type GenerateInput struct {
	ConceptName string

	// Content is source material; only the first MaxContentChars runes are
	// sent.
	Content string

	// Difficulties is the planned difficulty per question. Its length is
	// the number of questions returned.
	Difficulties []float64

	// FocusTags are the learner's weak areas. When empty the concept name
	// is the focus.
	FocusTags []string
}

// ToData converts q to its persisted form.
func (q Question) ToData() store.QuestionData {
	return store.QuestionData{
		ID:             q.ID,
		Text:           q.Text,
		Type:           string(q.Type),
		Options:        append([]string(nil), q.Options...),
		CorrectAnswer:  q.CorrectAnswer,
		Explanation:    q.Explanation,
		Difficulty:     q.Difficulty,
		ConceptTags:    append([]string(nil), q.ConceptTags...),
		CognitiveLevel: string(q.CognitiveLevel),
		EstimatedTime:  q.EstimatedTime,
		Hint:           q.Hint,
		CreatedAt:      q.CreatedAt,
	}
}

// FromData converts a persisted question.
func FromData(d store.QuestionData) Question {
	return Question{
		ID:             d.ID,
		Text:           d.Text,
		Type:           QuestionType(d.Type),
		Options:        d.Options,
		CorrectAnswer:  d.CorrectAnswer,
		Explanation:    d.Explanation,
		Difficulty:     d.Difficulty,
		ConceptTags:    d.ConceptTags,
		CognitiveLevel: CognitiveLevel(d.CognitiveLevel),
		EstimatedTime:  d.EstimatedTime,
		Hint:           d.Hint,
		CreatedAt:      d.CreatedAt,
	}
}
