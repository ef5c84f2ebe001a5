package questionbank

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidationError describes why a generated question was rejected.
type ValidationError struct {
	QuestionID string
	Message    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("question %q: %s", e.QuestionID, e.Message)
}

// validateQuestion checks the fields a session depends on.
func validateQuestion(q *Question) *ValidationError {
	fail := func(msg string) *ValidationError {
		return &ValidationError{QuestionID: q.ID, Message: msg}
	}

	if strings.TrimSpace(q.Text) == "" {
		return fail("question_text is empty")
	}
	if !q.Type.valid() {
		return fail(fmt.Sprintf("unknown question_type %q", q.Type))
	}
	if len(q.ConceptTags) == 0 {
		return fail("concept_tags is empty")
	}
	if q.EstimatedTime <= 0 {
		return fail("estimated_time must be positive")
	}

	switch q.Type {
	case TypeMultipleChoice:
		if len(q.Options) < 2 {
			return fail("multiple_choice needs at least 2 options")
		}
		if !answerMatchesOption(q.CorrectAnswer, q.Options) {
			return fail("correct_answer is neither an option index nor an option")
		}
	case TypeTrueFalse:
		if q.CorrectAnswer != "true" && q.CorrectAnswer != "false" {
			return fail("true_false correct_answer must be true or false")
		}
	case TypeShortAnswer:
		if strings.TrimSpace(q.CorrectAnswer) == "" {
			return fail("short_answer correct_answer is empty")
		}
	}
	return nil
}

func answerMatchesOption(answer string, options []string) bool {
	if idx, err := strconv.Atoi(answer); err == nil {
		return idx >= 0 && idx < len(options)
	}
	for _, o := range options {
		if o == answer {
			return true
		}
	}
	return false
}
