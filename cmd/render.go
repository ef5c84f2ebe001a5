package cmd

import (
	"fmt"
	"strings"

	"github.com/abhisek/adaptiq/internal/mastery"
	"github.com/abhisek/adaptiq/internal/session"
)

const dateFormat = "2006-01-02"

func renderQuestion(v *session.QuestionView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n",
		titleStyle.Render(fmt.Sprintf("Question %d/%d", v.Progress.Current, v.Progress.Total)),
		dimStyle.Render(fmt.Sprintf("difficulty %.2f · ~%ds · %s", v.Difficulty, v.EstimatedTime, v.Type)))
	b.WriteString(v.Text)
	b.WriteString("\n")
	for i, opt := range v.Options {
		fmt.Fprintf(&b, "  %d) %s\n", i, opt)
	}
	if v.Hint != "" {
		b.WriteString(dimStyle.Render("hint: "+v.Hint) + "\n")
	}
	return boxStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func renderFeedback(r *session.AnswerResult) string {
	var b strings.Builder
	if r.IsCorrect {
		b.WriteString(okStyle.Render("Correct!"))
	} else {
		b.WriteString(badStyle.Render("Not quite."))
		fmt.Fprintf(&b, " The answer was %s.", r.CorrectAnswer)
	}
	b.WriteString("\n")
	if r.Explanation != "" {
		b.WriteString(r.Explanation + "\n")
	}
	if r.Adjustment != session.AdjustNone {
		b.WriteString(dimStyle.Render(fmt.Sprintf("Upcoming questions got %s.", r.Adjustment)) + "\n")
	}
	return b.String()
}

func renderFinalReport(r *session.FinalReport) string {
	var b strings.Builder
	p := r.Performance
	mu := r.MasteryUpdate
	b.WriteString(headingStyle.Render("Quiz complete") + "\n")
	fmt.Fprintf(&b, "Accuracy:     %.0f%% (%d questions)\n", p.Accuracy*100, p.QuestionsAnswered)
	fmt.Fprintf(&b, "Score:        %.1f\n", p.FinalScore)
	fmt.Fprintf(&b, "Avg time:     %.1fs\n", p.AvgTimePerQuestion)
	fmt.Fprintf(&b, "Adjustments:  %d\n", p.AdjustmentsMade)
	fmt.Fprintf(&b, "Mastery:      %.2f (%s, %s)\n", mu.MasteryLevel, mu.Status, mu.Trend)
	fmt.Fprintf(&b, "Next review:  %s\n", mu.NextReview.Local().Format(dateFormat))
	writeList(&b, "Weak areas", mu.WeakAreas)
	writeList(&b, "Strong areas", mu.StrongAreas)
	if len(r.Recommendations) > 0 {
		b.WriteString("\n" + headingStyle.Render("Recommendations") + "\n")
		for _, rec := range r.Recommendations {
			fmt.Fprintf(&b, "  • %s\n", rec)
		}
	}
	return b.String()
}

func renderMasteryReport(r *mastery.Report) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Mastery report for "+r.UserID) + "\n")
	if r.TotalConcepts == 0 {
		b.WriteString(dimStyle.Render("No completed quizzes yet.") + "\n")
		return b.String()
	}

	fmt.Fprintf(&b, "Overall mastery:  %.2f\n", r.OverallMastery)
	fmt.Fprintf(&b, "Mastered:         %d of %d (%.0f%%)\n\n", r.MasteredCount, r.TotalConcepts, r.MasteryPercentage)

	fmt.Fprintf(&b, "%-24s  %7s  %-15s  %-9s  %-10s  %s\n", "Concept", "Level", "Status", "Trend", "Review", "Sessions")
	b.WriteString(strings.Repeat("─", 84) + "\n")
	for _, c := range r.Concepts {
		name := c.ConceptName
		if name == "" {
			name = c.ConceptID
		}
		fmt.Fprintf(&b, "%-24s  %7.2f  %-15s  %-9s  %-10s  %d\n",
			truncate(name, 24), c.MasteryLevel, statusLabel(c.Status), c.Trend,
			c.NextReview.Local().Format(dateFormat), c.Sessions)
	}

	if len(r.DueForReview) > 0 {
		b.WriteString("\n" + headingStyle.Render("Due for review") + "\n")
		for _, d := range r.DueForReview {
			fmt.Fprintf(&b, "  • %s (%.2f)", d.ConceptName, d.MasteryLevel)
			if len(d.WeakAreas) > 0 {
				fmt.Fprintf(&b, ": %s", strings.Join(d.WeakAreas, ", "))
			}
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	writeList(&b, "Top weak areas", r.TopWeakAreas)
	writeList(&b, "Top strong areas", r.TopStrongAreas)
	if len(r.Recommendations) > 0 {
		b.WriteString("\n" + headingStyle.Render("Recommendations") + "\n")
		for _, rec := range r.Recommendations {
			fmt.Fprintf(&b, "  • %s\n", rec)
		}
	}
	return b.String()
}

func statusLabel(s mastery.Status) string {
	switch s {
	case mastery.StatusMastered:
		return okStyle.Render(fmt.Sprintf("%-15s", s))
	case mastery.StatusStruggling:
		return badStyle.Render(fmt.Sprintf("%-15s", s))
	default:
		return string(s)
	}
}

func writeList(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "%-14s %s\n", label+":", strings.Join(items, ", "))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
