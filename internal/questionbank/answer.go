package questionbank

import (
	"strings"
)

// ShortAnswerOverlap is the share of reference tokens a short answer must
// contain to count as correct.
const ShortAnswerOverlap = 0.6

// CheckAnswer grades a submission against q's canonical correct answer.
//
//   - multiple_choice: the trimmed submission must equal the stored answer
//     (an option index or the option text, whichever the question holds).
//   - true_false: the submission must be "true" or "false" in any case and
//     match the stored value.
//   - short_answer: case-insensitive exact match, or the submission's word
//     set covers at least 60% of the reference's word set.
func CheckAnswer(q *Question, answer string) bool {
	answer = strings.TrimSpace(answer)
	switch q.Type {
	case TypeMultipleChoice:
		return answer != "" && answer == strings.TrimSpace(q.CorrectAnswer)
	case TypeTrueFalse:
		a := strings.ToLower(answer)
		if a != "true" && a != "false" {
			return false
		}
		return a == strings.ToLower(strings.TrimSpace(q.CorrectAnswer))
	default:
		return checkShortAnswer(answer, q.CorrectAnswer)
	}
}

func checkShortAnswer(answer, reference string) bool {
	a := strings.ToLower(strings.TrimSpace(answer))
	ref := strings.ToLower(strings.TrimSpace(reference))
	if a == "" || ref == "" {
		return false
	}
	if a == ref {
		return true
	}

	refTokens := tokenSet(ref)
	ansTokens := tokenSet(a)
	common := 0
	for tok := range refTokens {
		if _, ok := ansTokens[tok]; ok {
			common++
		}
	}
	return float64(common) >= ShortAnswerOverlap*float64(len(refTokens))
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, f := range strings.Fields(s) {
		set[f] = struct{}{}
	}
	return set
}
