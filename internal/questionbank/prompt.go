package questionbank

import (
	"fmt"
	"strings"
)

// MaxContentChars is the number of content runes included in a prompt.
const MaxContentChars = 2000

const systemPrompt = `You are an assessment author writing quiz questions for adaptive learning.

Rules:
- Write exactly the requested number of questions, one per listed difficulty, in the same order.
- Mix question types: multiple_choice, true_false and short_answer.
- Mix cognitive levels: remember, understand, apply, analyze.
- For multiple_choice give 4 options and set correct_answer to the 0-based index of the correct option.
- For true_false set correct_answer to true or false.
- For short_answer set correct_answer to a short reference answer.
- Every question needs an explanation, a hint, concept_tags naming the sub-topics it tests, and an estimated_time in seconds.
- Respond with a single JSON object and nothing else.`

// buildUserMessage renders the generation request for one batch.
func buildUserMessage(input GenerateInput) string {
	focus := input.FocusTags
	if len(focus) == 0 {
		focus = []string{input.ConceptName}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d quiz questions about %q.\n\n", len(input.Difficulties), input.ConceptName)

	content := truncateRunes(strings.TrimSpace(input.Content), MaxContentChars)
	if content != "" {
		b.WriteString("Content:\n")
		b.WriteString(content)
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "Focus on these areas: %s\n", strings.Join(focus, ", "))
	fmt.Fprintf(&b, "Difficulty levels (0.0-1.0), one per question: %s\n\n", formatDifficulties(input.Difficulties))

	b.WriteString(`Respond with JSON in this format:
{
  "questions": [
    {
      "question_id": "q1",
      "question_text": "What is the main concept?",
      "question_type": "multiple_choice",
      "options": ["Option A", "Option B", "Option C", "Option D"],
      "correct_answer": 0,
      "explanation": "Why the answer is correct",
      "difficulty_level": 0.5,
      "concept_tags": ["tag1", "tag2"],
      "cognitive_level": "understand",
      "estimated_time": 60,
      "hint": "Think about the main principles"
    }
  ]
}`)
	return b.String()
}

func formatDifficulties(ds []float64) string {
	parts := make([]string, len(ds))
	for i, d := range ds {
		parts[i] = fmt.Sprintf("%.2f", d)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
