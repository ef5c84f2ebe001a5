package questionbank

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FallbackDifficulty is the difficulty of every fallback question.
const FallbackDifficulty = 0.5

// Fallback returns count placeholder short-answer questions about the
// concept. The content is fixed so a session can always start; only ids
// and timestamps vary.
func Fallback(conceptName string, count int, now time.Time) []Question {
	qs := make([]Question, 0, max(count, 0))
	for range count {
		qs = append(qs, fallbackQuestion(conceptName, now))
	}
	return qs
}

func fallbackQuestion(conceptName string, now time.Time) Question {
	return Question{
		ID:             "fallback-" + uuid.NewString(),
		Text:           fmt.Sprintf("What is an important aspect of %s?", conceptName),
		Type:           TypeShortAnswer,
		CorrectAnswer:  fmt.Sprintf("Key concepts related to %s", conceptName),
		Explanation:    fmt.Sprintf("This question tests understanding of %s", conceptName),
		Difficulty:     FallbackDifficulty,
		ConceptTags:    []string{conceptName},
		CognitiveLevel: LevelUnderstand,
		EstimatedTime:  DefaultEstimatedTime,
		Hint:           fmt.Sprintf("Think about the main principles of %s", conceptName),
		CreatedAt:      now,
	}
}
