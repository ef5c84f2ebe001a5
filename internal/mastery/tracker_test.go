package mastery

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/adaptiq/internal/store"
)

var testNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestTracker(t *testing.T, repo store.MasteryRepo) *Tracker {
	t.Helper()
	tr := NewTracker(repo, nil)
	tr.now = func() time.Time { return testNow }
	return tr
}

func openRepo(t *testing.T) store.MasteryRepo {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s.MasteryRepo()
}

func TestUpdate_NewRecord(t *testing.T) {
	tr := newTestTracker(t, nil)

	up, err := tr.Update(context.Background(), Outcome{
		UserID: "u", ConceptID: "c", ConceptName: "Cells", FinalScore: 90,
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.9, up.Level, 1e-9)
	assert.Equal(t, StatusMastered, up.Status)
	assert.Equal(t, TrendStable, up.Trend)
	assert.Equal(t, testNow.Add(14*24*time.Hour), up.NextReview)

	r, ok := tr.Get("u", "c")
	require.True(t, ok)
	assert.InDelta(t, 0.7, r.ConfidenceLow, 1e-9)
	assert.InDelta(t, 1.0, r.ConfidenceHigh, 1e-9)
	assert.Equal(t, []float64{0.9}, r.Trend)
	assert.Equal(t, 1, r.SessionsCompleted)
	assert.Equal(t, "Cells", r.ConceptName)
}

func TestUpdate_EWMA(t *testing.T) {
	tr := newTestTracker(t, nil)
	ctx := context.Background()

	_, err := tr.Update(ctx, Outcome{UserID: "u", ConceptID: "c", FinalScore: 50})
	require.NoError(t, err)
	up, err := tr.Update(ctx, Outcome{UserID: "u", ConceptID: "c", FinalScore: 90})
	require.NoError(t, err)

	assert.InDelta(t, 0.62, up.Level, 1e-12)
	assert.Equal(t, StatusGoodProgress, up.Status)
	assert.Equal(t, TrendImproving, up.Trend)
	assert.Equal(t, testNow.Add(7*24*time.Hour), up.NextReview)
	assert.InDelta(t, 0.42, up.Record.ConfidenceLow, 1e-9)
	assert.InDelta(t, 0.82, up.Record.ConfidenceHigh, 1e-9)
	assert.Equal(t, 2, up.Record.SessionsCompleted)
}

func TestUpdate_TrendCap(t *testing.T) {
	tr := newTestTracker(t, nil)
	ctx := context.Background()

	for i := range 15 {
		_, err := tr.Update(ctx, Outcome{UserID: "u", ConceptID: "c", FinalScore: float64(i * 5)})
		require.NoError(t, err)
	}
	r, _ := tr.Get("u", "c")
	assert.Len(t, r.Trend, TrendCap)
	assert.Equal(t, r.Level, r.Trend[len(r.Trend)-1])
	for _, v := range r.Trend {
		assert.False(t, math.IsNaN(v))
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestUpdate_TagAnalysisOverwrites(t *testing.T) {
	tr := newTestTracker(t, nil)
	ctx := context.Background()

	_, err := tr.Update(ctx, Outcome{
		UserID: "u", ConceptID: "c", FinalScore: 40,
		Answers: []AnswerTags{
			{Tags: []string{"light", "energy"}, Correct: false},
			{Tags: []string{"light"}, Correct: false},
			{Tags: []string{"water"}, Correct: true},
			{Tags: []string{"energy"}, Correct: true},
		},
	})
	require.NoError(t, err)
	r, _ := tr.Get("u", "c")
	assert.Equal(t, []string{"light"}, r.WeakAreas)
	assert.Equal(t, []string{"water"}, r.StrongAreas)

	up, err := tr.Update(ctx, Outcome{
		UserID: "u", ConceptID: "c", FinalScore: 100,
		Answers: []AnswerTags{{Tags: []string{"light"}, Correct: true}},
	})
	require.NoError(t, err)
	assert.Empty(t, up.WeakAreas)
	assert.Equal(t, []string{"light"}, up.StrongAreas)
}

func TestUpdate_RequiresIDs(t *testing.T) {
	tr := newTestTracker(t, nil)
	_, err := tr.Update(context.Background(), Outcome{UserID: "u"})
	assert.Error(t, err)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		level float64
		want  Status
	}{
		{0.95, StatusMastered},
		{0.8, StatusMastered},
		{0.6, StatusGoodProgress},
		{0.4, StatusNeedsPractice},
		{0.39, StatusStruggling},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.level), "level %v", tt.level)
	}
}

func TestTracker_PersistsAndLoads(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()

	tr := newTestTracker(t, repo)
	_, err := tr.Update(ctx, Outcome{UserID: "u", ConceptID: "c", ConceptName: "Cells", FinalScore: 50})
	require.NoError(t, err)
	_, err = tr.Update(ctx, Outcome{UserID: "u", ConceptID: "c", FinalScore: 90})
	require.NoError(t, err)

	stored, err := repo.Get(ctx, "u", "c")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.InDelta(t, 0.62, stored.MasteryLevel, 1e-12)
	assert.Equal(t, int64(2), stored.Version)

	fresh := newTestTracker(t, repo)
	require.NoError(t, fresh.Load(ctx))
	r, ok := fresh.Get("u", "c")
	require.True(t, ok)
	assert.Equal(t, "Cells", r.ConceptName)
	assert.Len(t, r.Trend, 2)

	// A second process writes the same record; the stale tracker still
	// saves its own state over it.
	_, err = fresh.Update(ctx, Outcome{UserID: "u", ConceptID: "c", FinalScore: 100})
	require.NoError(t, err)
	_, err = tr.Update(ctx, Outcome{UserID: "u", ConceptID: "c", FinalScore: 0})
	require.NoError(t, err)

	stored, err = repo.Get(ctx, "u", "c")
	require.NoError(t, err)
	want, _ := tr.Get("u", "c")
	assert.InDelta(t, want.Level, stored.MasteryLevel, 1e-12)
}
