package mastery

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/abhisek/adaptiq/internal/logger"
	"github.com/abhisek/adaptiq/internal/spacedrep"
	"github.com/abhisek/adaptiq/internal/store"
)

// AnswerTags is one graded answer with the tags of its question.
type AnswerTags struct {
	Tags    []string
	Correct bool
}

// Outcome is what a completed session contributes to mastery.
type Outcome struct {
	UserID      string
	ConceptID   string
	ConceptName string

	// FinalScore is the difficulty-weighted score in [0, 100].
	FinalScore float64

	Answers []AnswerTags
}

// Update is the result of folding one outcome into a record.
type Update struct {
	Status      Status
	Level       float64
	Trend       TrendLabel
	WeakAreas   []string
	StrongAreas []string
	NextReview  time.Time

	// Record is a snapshot of the record after the update.
	Record *Record
}

// Tracker owns all mastery records. The in-memory map is authoritative;
// every change is written through to the repository and write failures
// are logged.
type Tracker struct {
	mu      sync.Mutex
	records map[string]*Record
	repo    store.MasteryRepo
	log     *logger.Logger
	now     func() time.Time
}

// NewTracker creates a Tracker. repo may be nil for a purely in-memory
// tracker.
func NewTracker(repo store.MasteryRepo, log *logger.Logger) *Tracker {
	return &Tracker{
		records: make(map[string]*Record),
		repo:    repo,
		log:     logger.OrNop(log),
		now:     time.Now,
	}
}

// Load reads every stored record into memory. Records written with an
// unsupported schema are skipped and logged.
func (t *Tracker) Load(ctx context.Context) error {
	if t.repo == nil {
		return nil
	}
	data, err := t.repo.List(ctx, "")
	if errors.Is(err, store.ErrSchemaVersion) {
		t.log.Warn("skipped unreadable mastery records", "error", err)
	} else if err != nil {
		return fmt.Errorf("load mastery records: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, d := range data {
		r := recordFromData(d)
		t.records[store.MasteryKey(r.UserID, r.ConceptID)] = r
	}
	return nil
}

// Get returns a copy of the record for the pair.
func (t *Tracker) Get(userID, conceptID string) (*Record, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.records[store.MasteryKey(userID, conceptID)]
	if !ok {
		return nil, false
	}
	return r.clone(), true
}

// Update folds a completed session into the learner's record for the
// concept, creating it on first completion.
func (t *Tracker) Update(ctx context.Context, o Outcome) (*Update, error) {
	if o.UserID == "" || o.ConceptID == "" {
		return nil, fmt.Errorf("mastery update needs user and concept ids")
	}
	now := t.now()
	score := clamp01(o.FinalScore / 100)
	weak, strong := analyzeTags(o.Answers)

	t.mu.Lock()
	key := store.MasteryKey(o.UserID, o.ConceptID)
	r, ok := t.records[key]
	if ok {
		r.Level = clamp01(HistoryWeight*r.Level + (1-HistoryWeight)*score)
		r.Trend = append(r.Trend, r.Level)
		if len(r.Trend) > TrendCap {
			r.Trend = r.Trend[len(r.Trend)-TrendCap:]
		}
	} else {
		r = &Record{
			UserID:    o.UserID,
			ConceptID: o.ConceptID,
			Level:     score,
			Trend:     []float64{score},
		}
		t.records[key] = r
	}
	if o.ConceptName != "" {
		r.ConceptName = o.ConceptName
	}
	r.ConfidenceLow = clamp01(r.Level - ConfidenceBand)
	r.ConfidenceHigh = clamp01(r.Level + ConfidenceBand)
	r.WeakAreas = weak
	r.StrongAreas = strong
	r.LastAssessment = now
	r.NextReviewDate = spacedrep.NextReview(r.Level, now)
	r.SessionsCompleted++

	snapshot := r.clone()
	t.mu.Unlock()

	t.persist(ctx, key, snapshot)

	return &Update{
		Status:      StatusFor(snapshot.Level),
		Level:       snapshot.Level,
		Trend:       TrendOf(snapshot.Trend),
		WeakAreas:   snapshot.WeakAreas,
		StrongAreas: snapshot.StrongAreas,
		NextReview:  snapshot.NextReviewDate,
		Record:      snapshot,
	}, nil
}

// persist writes the snapshot. A version conflict means another process
// wrote the record; the in-memory state wins and is written over it.
func (t *Tracker) persist(ctx context.Context, key string, r *Record) {
	if t.repo == nil {
		return
	}
	data := r.toData()
	err := t.repo.Save(ctx, data)
	if errors.Is(err, store.ErrVersionConflict) {
		t.log.Warn("mastery record changed underneath, overwriting", "key", key, "error", err)
		var current *store.MasteryData
		current, err = t.repo.Get(ctx, r.UserID, r.ConceptID)
		if err == nil {
			data.Version = 0
			if current != nil {
				data.Version = current.Version
			}
			err = t.repo.Save(ctx, data)
		}
	}
	if err != nil {
		t.log.Error("failed to save mastery record", "key", key, "error", err)
		return
	}

	t.mu.Lock()
	if live, ok := t.records[key]; ok {
		live.version = data.Version
	}
	t.mu.Unlock()
}

// analyzeTags classifies every tag seen in the answers by its accuracy.
// Both lists are sorted.
func analyzeTags(answers []AnswerTags) (weak, strong []string) {
	type tally struct{ correct, total int }
	tallies := make(map[string]*tally)
	for _, a := range answers {
		for _, tag := range a.Tags {
			tl, ok := tallies[tag]
			if !ok {
				tl = &tally{}
				tallies[tag] = tl
			}
			tl.total++
			if a.Correct {
				tl.correct++
			}
		}
	}

	weak, strong = []string{}, []string{}
	for tag, tl := range tallies {
		acc := float64(tl.correct) / float64(tl.total)
		switch {
		case acc < WeakThreshold:
			weak = append(weak, tag)
		case acc >= StrongThreshold:
			strong = append(strong, tag)
		}
	}
	sort.Strings(weak)
	sort.Strings(strong)
	return weak, strong
}
