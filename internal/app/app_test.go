package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/adaptiq/internal/config"
	"github.com/abhisek/adaptiq/internal/llm"
	"github.com/abhisek/adaptiq/internal/questionbank"
	"github.com/abhisek/adaptiq/internal/session"
)

const twoQuestions = `{"questions": [
  {"question_id": "a1", "question_text": "Water boils at 100C at sea level.", "question_type": "true_false",
   "correct_answer": true, "explanation": "Standard pressure.", "concept_tags": ["boiling"], "estimated_time": 20},
  {"question_id": "a2", "question_text": "Which is a noble gas?", "question_type": "multiple_choice",
   "options": ["Neon", "Iron"], "correct_answer": "Neon", "explanation": "Group 18.", "concept_tags": ["gases"]}
]}`

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		DBPath:        filepath.Join(t.TempDir(), "nested", "adaptiq.db"),
		LogMode:       "dev",
		QuestionCount: 2,
		Seed:          1,
		LLM:           llm.DefaultConfig(),
	}
}

func TestApp_QuizRoundTrip(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	mock := llm.NewMockProvider(llm.MockResponse{Text: twoQuestions})

	a, err := New(ctx, cfg, nil, WithProvider(mock))
	require.NoError(t, err)

	id, err := a.StartSession(ctx, session.StartInput{UserID: "u", ConceptID: "chem", ConceptName: "Chemistry"})
	require.NoError(t, err)
	assert.Equal(t, 1, mock.CallCount())

	q, err := a.NextQuestion(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Equal(t, "a1", q.ID)
	assert.Equal(t, 2, q.Progress.Total)

	res, err := a.SubmitAnswer(ctx, id, "TRUE", 10)
	require.NoError(t, err)
	assert.True(t, res.IsCorrect)
	require.NotNil(t, res.Next)
	assert.Equal(t, []string{"Neon", "Iron"}, res.Next.Options)

	res, err = a.SubmitAnswer(ctx, id, "Iron", 10)
	require.NoError(t, err)
	assert.False(t, res.IsCorrect)
	assert.True(t, res.QuizCompleted)
	require.NotNil(t, res.Report)
	assert.Equal(t, []string{"gases"}, res.Report.MasteryUpdate.WeakAreas)

	q, err = a.NextQuestion(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, q)

	rep, err := a.MasteryReport(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, 1, rep.TotalConcepts)
	assert.Equal(t, []string{"gases"}, rep.TopWeakAreas)

	banked, err := a.QuestionBank(ctx, "chem")
	require.NoError(t, err)
	assert.Len(t, banked, 2)
	require.NoError(t, a.Close())

	// Reopening restores sessions and mastery from disk.
	b, err := New(ctx, cfg, nil, WithProvider(llm.NewMockProvider()))
	require.NoError(t, err)
	defer b.Close()

	sum, err := b.Session(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, session.StateCompleted, sum.State)
	assert.Equal(t, 1, sum.Correct)
	require.NotNil(t, sum.Report)

	rep, err = b.MasteryReport(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, 1, rep.TotalConcepts)
	assert.Len(t, b.Sessions(ctx, "u"), 1)

	_, err = b.SubmitAnswer(ctx, id, "true", 1)
	assert.ErrorIs(t, err, session.ErrAlreadyCompleted)
}

func TestApp_OfflineProviderFallsBack(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.QuestionCount = 3

	a, err := New(ctx, cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	id, err := a.StartSession(ctx, session.StartInput{UserID: "u", ConceptID: "c", ConceptName: "Cells"})
	require.NoError(t, err)

	q, err := a.NextQuestion(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, questionbank.TypeShortAnswer, q.Type)
	assert.Equal(t, 3, q.Progress.Total)

	_, err = a.Session(ctx, "nope")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestApp_InvalidProviderConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.LLM.Provider = "anthropic"
	cfg.LLM.Anthropic.APIKey = ""

	_, err := New(context.Background(), cfg, nil)
	assert.Error(t, err)
}
