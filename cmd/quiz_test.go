package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/adaptiq/internal/app"
	"github.com/abhisek/adaptiq/internal/config"
	"github.com/abhisek/adaptiq/internal/llm"
	"github.com/abhisek/adaptiq/internal/mastery"
	"github.com/abhisek/adaptiq/internal/session"
	"github.com/abhisek/adaptiq/internal/store"
)

func newTestApp(t *testing.T) *app.App {
	t.Helper()
	a, err := app.New(context.Background(), config.Config{
		DBPath:        filepath.Join(t.TempDir(), "test.db"),
		QuestionCount: 3,
		Seed:          9,
		LLM:           llm.DefaultConfig(),
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestPlay_CompletesQuiz(t *testing.T) {
	a := newTestApp(t)
	input := strings.NewReader("key concepts related to cells\nwrong\nkey concepts related to cells\n")
	var out bytes.Buffer

	err := play(context.Background(), a, session.StartInput{UserID: "u", ConceptID: "cells", ConceptName: "cells"}, input, &out)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "Question 1/3")
	assert.Contains(t, text, "Question 3/3")
	assert.Contains(t, text, "Correct!")
	assert.Contains(t, text, "Not quite.")
	assert.Contains(t, text, "Quiz complete")

	rep, err := a.MasteryReport(context.Background(), "u")
	require.NoError(t, err)
	assert.Equal(t, 1, rep.TotalConcepts)
}

func TestPlay_PausesOnEmptyLine(t *testing.T) {
	a := newTestApp(t)
	var out bytes.Buffer

	err := play(context.Background(), a, session.StartInput{UserID: "u", ConceptID: "c"}, strings.NewReader("first\n\n"), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Paused.")

	sessions := a.Sessions(context.Background(), "u")
	require.Len(t, sessions, 1)
	assert.Equal(t, session.StateInProgress, sessions[0].State)
	assert.Equal(t, 1, sessions[0].QuestionsAnswered)
}

func TestRenderMasteryReport(t *testing.T) {
	empty := renderMasteryReport(&mastery.Report{UserID: "nobody"})
	assert.Contains(t, empty, "No completed quizzes yet.")

	full := renderMasteryReport(&mastery.Report{
		UserID:         "u",
		OverallMastery: 0.42,
		MasteredCount:  0,
		TotalConcepts:  1,
		Concepts: []mastery.ConceptSummary{
			{ConceptID: "c", ConceptName: "Cells", MasteryLevel: 0.42, Status: mastery.StatusNeedsPractice, Trend: mastery.TrendStable},
		},
		DueForReview:    []mastery.DueConcept{{ConceptID: "c", ConceptName: "Cells", MasteryLevel: 0.42, WeakAreas: []string{"mitosis"}}},
		TopWeakAreas:    []string{"mitosis"},
		Recommendations: []string{"Focus on building foundational knowledge before advancing"},
	})
	assert.Contains(t, full, "Cells")
	assert.Contains(t, full, "needs_practice")
	assert.Contains(t, full, "mitosis")
	assert.Contains(t, full, "Focus on building foundational knowledge")
}

func TestWriteUsage(t *testing.T) {
	var empty bytes.Buffer
	writeUsage(&empty, nil, nil)
	assert.Contains(t, empty.String(), "No LLM usage recorded yet.")

	var out bytes.Buffer
	writeUsage(&out,
		[]store.LLMUsageStats{{Purpose: "question-gen", Calls: 2, InputTokens: 100, OutputTokens: 50, AvgLatencyMs: 900}},
		[]store.LLMUsageStats{{Model: "some-unpriced-model", Calls: 2, InputTokens: 100, OutputTokens: 50}},
	)
	text := out.String()
	assert.Contains(t, text, "question-gen")
	assert.Contains(t, text, "TOTAL (partial)")
	assert.Contains(t, text, "Pricing unavailable for: some-unpriced-model")
}
