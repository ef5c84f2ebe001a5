package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/adaptiq/internal/difficulty"
	"github.com/abhisek/adaptiq/internal/llm"
	"github.com/abhisek/adaptiq/internal/mastery"
	"github.com/abhisek/adaptiq/internal/questionbank"
	"github.com/abhisek/adaptiq/internal/store"
)

// stubSource returns true/false questions whose answer is "true", one
// per planned difficulty, and remembers the inputs it saw.
type stubSource struct {
	mu     sync.Mutex
	inputs []questionbank.GenerateInput
}

func (s *stubSource) Generate(_ context.Context, in questionbank.GenerateInput) []questionbank.Question {
	s.mu.Lock()
	s.inputs = append(s.inputs, in)
	s.mu.Unlock()

	qs := make([]questionbank.Question, len(in.Difficulties))
	for i, d := range in.Difficulties {
		qs[i] = questionbank.Question{
			ID:             fmt.Sprintf("q%d", i),
			Text:           fmt.Sprintf("Statement %d about %s", i, in.ConceptName),
			Type:           questionbank.TypeTrueFalse,
			CorrectAnswer:  "true",
			Explanation:    "It holds.",
			Difficulty:     d,
			ConceptTags:    []string{fmt.Sprintf("tag%d", i%2)},
			CognitiveLevel: questionbank.LevelRemember,
			EstimatedTime:  30,
		}
	}
	return qs
}

func (s *stubSource) last() questionbank.GenerateInput {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inputs[len(s.inputs)-1]
}

type fixture struct {
	svc     *Service
	source  *stubSource
	tracker *mastery.Tracker
	store   *store.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	src := &stubSource{}
	tracker := mastery.NewTracker(st.MasteryRepo(), nil)
	svc := NewService(Deps{
		Sessions:  st.SessionRepo(),
		Questions: src,
		Bank:      questionbank.NewBank(st.QuestionBankRepo()),
		Tracker:   tracker,
		Planner:   difficulty.NewSeededPlanner(7),
	})
	return &fixture{svc: svc, source: src, tracker: tracker, store: st}
}

func TestStartSession_Defaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.svc.StartSession(ctx, StartInput{UserID: "u1", ConceptID: "photo", Content: "Plants make sugar."})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	in := f.source.last()
	assert.Len(t, in.Difficulties, DefaultQuestionCount)
	assert.Equal(t, "photo", in.ConceptName)
	assert.Empty(t, in.FocusTags)

	s, err := f.svc.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StateCreated, s.State())
	assert.Len(t, s.Questions, DefaultQuestionCount)
	assert.Equal(t, in.Difficulties, s.DifficultyProgression)

	banked, err := questionbank.NewBank(f.store.QuestionBankRepo()).List(ctx, "photo")
	require.NoError(t, err)
	assert.Len(t, banked, DefaultQuestionCount)

	stored, err := f.store.SessionRepo().Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "u1", stored.UserID)
}

func TestStartSession_InvalidInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.StartSession(ctx, StartInput{ConceptID: "c"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.StartSession(ctx, StartInput{UserID: "u", ConceptID: "c", Count: -1})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNextQuestion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id, err := f.svc.StartSession(ctx, StartInput{UserID: "u", ConceptID: "c", ConceptName: "Cells", Count: 4})
	require.NoError(t, err)

	v, err := f.svc.NextQuestion(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, "q0", v.ID)
	assert.Equal(t, Progress{Current: 1, Total: 4, Fraction: 0.25}, v.Progress)
	assert.Equal(t, []string{}, v.Options)

	raw, err := json.Marshal(v)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "correct_answer")
	assert.NotContains(t, string(raw), "explanation")

	_, err = f.svc.NextQuestion(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSubmitAnswer_FullSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id, err := f.svc.StartSession(ctx, StartInput{UserID: "u", ConceptID: "c", ConceptName: "Cells", Count: 4})
	require.NoError(t, err)

	start, err := f.svc.GetSession(ctx, id)
	require.NoError(t, err)

	var results []*AnswerResult
	for range 4 {
		r, err := f.svc.SubmitAnswer(ctx, id, "True", 10)
		require.NoError(t, err)
		results = append(results, r)
	}

	for i, r := range results[:3] {
		assert.True(t, r.IsCorrect)
		assert.Equal(t, "true", r.CorrectAnswer)
		assert.False(t, r.QuizCompleted)
		require.NotNil(t, r.Next, "answer %d", i)
		assert.Equal(t, fmt.Sprintf("q%d", i+1), r.Next.ID)
		assert.Nil(t, r.Report)
	}
	assert.Equal(t, AdjustNone, results[0].Adjustment)
	assert.Equal(t, AdjustNone, results[1].Adjustment)
	assert.Equal(t, AdjustHarder, results[2].Adjustment)
	assert.Equal(t, AdjustHarder, results[3].Adjustment)

	last := results[3]
	assert.True(t, last.QuizCompleted)
	assert.Nil(t, last.Next)
	require.NotNil(t, last.Report)
	assert.Equal(t, id, last.Report.SessionID)
	assert.InDelta(t, 1.0, last.Report.Performance.Accuracy, 1e-12)
	assert.InDelta(t, 100.0, last.Report.Performance.FinalScore, 1e-9)
	assert.Equal(t, 2, last.Report.Performance.AdjustmentsMade)
	assert.Equal(t, mastery.StatusMastered, last.Report.MasteryUpdate.Status)
	assert.Contains(t, last.Report.Recommendations, "Great job! Consider moving to more advanced topics")

	s, err := f.svc.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, s.State())
	require.NotNil(t, s.EndTime)
	assert.Len(t, s.Responses, 4)
	// The last question was shifted once, after the third answer.
	assert.InDelta(t, difficulty.Clamp(start.Questions[3].Difficulty+AdjustmentStep), s.Responses[3].Difficulty, 1e-9)

	rec, ok := f.tracker.Get("u", "c")
	require.True(t, ok)
	assert.InDelta(t, 1.0, rec.Level, 1e-12)
	assert.Equal(t, []string{"tag0", "tag1"}, rec.StrongAreas)

	_, err = f.svc.SubmitAnswer(ctx, id, "true", 1)
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
	again, err := f.svc.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, s.Metrics, again.Metrics)
	assert.Equal(t, s.EndTime, again.EndTime)
	rec2, _ := f.tracker.Get("u", "c")
	assert.Equal(t, 1, rec2.SessionsCompleted)
}

func TestSubmitAnswer_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SubmitAnswer(ctx, "missing", "true", 1)
	assert.True(t, errors.Is(err, ErrSessionNotFound))

	id, err := f.svc.StartSession(ctx, StartInput{UserID: "u", ConceptID: "c", Count: 2})
	require.NoError(t, err)
	_, err = f.svc.SubmitAnswer(ctx, id, "true", -1)
	assert.ErrorIs(t, err, ErrInvalidInput)

	s, err := f.svc.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Cursor)
	assert.Empty(t, s.Responses)
}

func TestStartSession_UsesPriorMastery(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.svc.StartSession(ctx, StartInput{UserID: "u", ConceptID: "c", Count: 2})
	require.NoError(t, err)
	_, err = f.svc.SubmitAnswer(ctx, id, "false", 5)
	require.NoError(t, err)
	_, err = f.svc.SubmitAnswer(ctx, id, "true", 5)
	require.NoError(t, err)

	rec, ok := f.tracker.Get("u", "c")
	require.True(t, ok)
	assert.Equal(t, []string{"tag0"}, rec.WeakAreas)

	_, err = f.svc.StartSession(ctx, StartInput{UserID: "u", ConceptID: "c", Count: 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"tag0"}, f.source.last().FocusTags)
}

func TestService_LoadRestoresSessions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id, err := f.svc.StartSession(ctx, StartInput{UserID: "u", ConceptID: "c", Count: 3})
	require.NoError(t, err)
	_, err = f.svc.SubmitAnswer(ctx, id, "true", 3)
	require.NoError(t, err)

	restored := NewService(Deps{Sessions: f.store.SessionRepo(), Questions: f.source})
	require.NoError(t, restored.Load(ctx))

	s, err := restored.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Cursor)
	assert.Equal(t, StateInProgress, s.State())
	assert.Equal(t, []Adjustment{AdjustNone}, s.Adjustments)

	// Both services now hold the session; the stale one still saves.
	_, err = restored.SubmitAnswer(ctx, id, "true", 3)
	require.NoError(t, err)
	_, err = f.svc.SubmitAnswer(ctx, id, "false", 3)
	require.NoError(t, err)

	stored, err := f.store.SessionRepo().Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Cursor)
	assert.False(t, stored.Responses[1].IsCorrect)
}

func TestSubmitAnswer_ConcurrentSameSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id, err := f.svc.StartSession(ctx, StartInput{UserID: "u", ConceptID: "c", Count: 5})
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok, done  int
		completed int
	)
	for range 12 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := f.svc.SubmitAnswer(ctx, id, "true", 1)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
				if r.QuizCompleted {
					completed++
				}
			case errors.Is(err, ErrAlreadyCompleted):
				done++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, ok)
	assert.Equal(t, 7, done)
	assert.Equal(t, 1, completed)
}

func TestStartSession_ConcurrentKeys(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.StartSession(ctx, StartInput{UserID: fmt.Sprintf("u%d", i%4), ConceptID: "c", Count: 2})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, f.svc.ListSessions(ctx, ""), 8)
	assert.Len(t, f.svc.ListSessions(ctx, "u1"), 2)
}

func TestListSessions_Order(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	f.svc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	first, err := f.svc.StartSession(ctx, StartInput{UserID: "u", ConceptID: "a", Count: 1})
	require.NoError(t, err)
	second, err := f.svc.StartSession(ctx, StartInput{UserID: "u", ConceptID: "b", Count: 1})
	require.NoError(t, err)
	_, err = f.svc.SubmitAnswer(ctx, first, "true", 1)
	require.NoError(t, err)

	list := f.svc.ListSessions(ctx, "u")
	require.Len(t, list, 2)
	assert.Equal(t, first, list[0].ID)
	assert.Equal(t, StateCompleted, list[0].State)
	assert.Equal(t, 1, list[0].Correct)
	assert.NotNil(t, list[0].Report)
	assert.Equal(t, second, list[1].ID)
	assert.Equal(t, StateCreated, list[1].State)
}

func TestStartSession_FallbackQuestions(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer st.Close()

	// The bare mock has no replies and fails every call.
	gen := questionbank.New(llm.NewMockProvider(), questionbank.DefaultConfig(), nil)
	svc := NewService(Deps{Sessions: st.SessionRepo(), Questions: gen, Planner: difficulty.NewSeededPlanner(1)})
	ctx := context.Background()

	id, err := svc.StartSession(ctx, StartInput{UserID: "u", ConceptID: "photo", ConceptName: "Photosynthesis", Count: 3})
	require.NoError(t, err)

	v, err := svc.NextQuestion(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, questionbank.TypeShortAnswer, v.Type)
	assert.Contains(t, v.Text, "Photosynthesis")
	assert.InDelta(t, questionbank.FallbackDifficulty, v.Difficulty, 1e-12)

	r, err := svc.SubmitAnswer(ctx, id, "key concepts related to photosynthesis", 20)
	require.NoError(t, err)
	assert.True(t, r.IsCorrect)
}
