package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/adaptiq/internal/difficulty"
	"github.com/abhisek/adaptiq/internal/logger"
	"github.com/abhisek/adaptiq/internal/mastery"
	"github.com/abhisek/adaptiq/internal/questionbank"
	"github.com/abhisek/adaptiq/internal/store"
)

// DefaultQuestionCount is the session length when none is requested.
const DefaultQuestionCount = 10

var (
	// ErrSessionNotFound is returned for an unknown session id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrAlreadyCompleted is returned when answering a finished session.
	ErrAlreadyCompleted = errors.New("quiz already completed")

	// ErrInvalidInput wraps malformed requests.
	ErrInvalidInput = errors.New("invalid input")
)

// QuestionSource produces the questions of a new session.
type QuestionSource interface {
	Generate(ctx context.Context, input questionbank.GenerateInput) []questionbank.Question
}

// Deps are the collaborators of a Service. Only Questions is required.
type Deps struct {
	// Sessions persists sessions. Nil keeps them in memory only.
	Sessions store.SessionRepo

	Questions QuestionSource

	// Bank receives every generated batch. Optional.
	Bank *questionbank.Bank

	// Tracker defaults to an in-memory tracker.
	Tracker *mastery.Tracker

	// Planner defaults to a planner seeded from the clock.
	Planner *difficulty.Planner

	Logger *logger.Logger
}

// StartInput describes a session to start.
type StartInput struct {
	UserID      string
	ConceptID   string
	ConceptName string

	// Content is source material for question generation.
	Content string

	// Count is the number of questions; 0 means DefaultQuestionCount.
	Count int
}

// Service owns all sessions of the process. The in-memory map is
// authoritative; each change is written through to the store.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	locks    *keyedMutex

	repo      store.SessionRepo
	questions QuestionSource
	bank      *questionbank.Bank
	tracker   *mastery.Tracker
	planner   *difficulty.Planner
	log       *logger.Logger
	now       func() time.Time
}

// NewService creates a Service.
func NewService(deps Deps) *Service {
	log := logger.OrNop(deps.Logger)
	tracker := deps.Tracker
	if tracker == nil {
		tracker = mastery.NewTracker(nil, log)
	}
	planner := deps.Planner
	if planner == nil {
		planner = difficulty.NewSeededPlanner(uint64(time.Now().UnixNano()))
	}
	return &Service{
		sessions:  make(map[string]*Session),
		locks:     newKeyedMutex(),
		repo:      deps.Sessions,
		questions: deps.Questions,
		bank:      deps.Bank,
		tracker:   tracker,
		planner:   planner,
		log:       log,
		now:       time.Now,
	}
}

// Load reads stored sessions into memory. Unreadable records are skipped
// and logged.
func (svc *Service) Load(ctx context.Context) error {
	if svc.repo == nil {
		return nil
	}
	data, err := svc.repo.List(ctx, "")
	if errors.Is(err, store.ErrSchemaVersion) {
		svc.log.Warn("skipped unreadable sessions", "error", err)
	} else if err != nil {
		return fmt.Errorf("load sessions: %w", err)
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	for _, d := range data {
		svc.sessions[d.ID] = sessionFromData(d)
	}
	svc.log.Debug("sessions loaded", "count", len(data))
	return nil
}

// StartSession plans, generates and stores a new session and returns its
// id. Generation problems never fail the call; fallback questions fill in.
func (svc *Service) StartSession(ctx context.Context, in StartInput) (string, error) {
	in.UserID = strings.TrimSpace(in.UserID)
	in.ConceptID = strings.TrimSpace(in.ConceptID)
	if in.UserID == "" || in.ConceptID == "" {
		return "", fmt.Errorf("%w: user and concept ids are required", ErrInvalidInput)
	}
	if in.Count < 0 {
		return "", fmt.Errorf("%w: question count must not be negative", ErrInvalidInput)
	}
	if in.Count == 0 {
		in.Count = DefaultQuestionCount
	}
	if in.ConceptName == "" {
		in.ConceptName = in.ConceptID
	}

	unlock := svc.locks.Lock(sessionKey(in.UserID, in.ConceptID))
	defer unlock()

	level := difficulty.DefaultMastery
	var focus []string
	if rec, ok := svc.tracker.Get(in.UserID, in.ConceptID); ok {
		level = rec.Level
		focus = rec.WeakAreas
	}

	plan := svc.planner.Plan(level, in.Count)
	qs := svc.questions.Generate(ctx, questionbank.GenerateInput{
		ConceptName:  in.ConceptName,
		Content:      in.Content,
		Difficulties: plan,
		FocusTags:    focus,
	})
	if len(qs) != in.Count {
		return "", fmt.Errorf("question source returned %d questions, want %d", len(qs), in.Count)
	}

	if svc.bank != nil {
		if err := svc.bank.Append(ctx, in.ConceptID, qs); err != nil {
			svc.log.Error("failed to append to question bank", "concept", in.ConceptID, "error", err)
		}
	}

	progression := make([]float64, len(qs))
	for i, q := range qs {
		progression[i] = q.Difficulty
	}

	s := &Session{
		ID:                    uuid.NewString(),
		UserID:                in.UserID,
		ConceptID:             in.ConceptID,
		ConceptName:           in.ConceptName,
		Questions:             qs,
		Responses:             []Response{},
		DifficultyProgression: progression,
		StartTime:             svc.now(),
		Adjustments:           []Adjustment{},
	}

	svc.mu.Lock()
	svc.sessions[s.ID] = s
	svc.mu.Unlock()
	svc.persist(ctx, s)

	svc.log.Info("session started",
		"session", s.ID, "user", s.UserID, "concept", s.ConceptID,
		"questions", len(qs), "prior_mastery", level)
	return s.ID, nil
}

// NextQuestion returns the question at the cursor, or nil once every
// question has been answered.
func (svc *Service) NextQuestion(_ context.Context, id string) (*QuestionView, error) {
	s, unlock, err := svc.acquire(id)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return currentView(s), nil
}

// SubmitAnswer grades the answer to the current question, adapts the
// remaining difficulties and finalizes the session after the last
// question. Errors leave the session untouched.
func (svc *Service) SubmitAnswer(ctx context.Context, id, answer string, timeTaken float64) (*AnswerResult, error) {
	if timeTaken < 0 {
		return nil, fmt.Errorf("%w: time taken must not be negative", ErrInvalidInput)
	}
	s, unlock, err := svc.acquire(id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if s.Done() {
		return nil, ErrAlreadyCompleted
	}

	now := svc.now()
	q := s.Questions[s.Cursor]
	correct := questionbank.CheckAnswer(&q, answer)
	s.Responses = append(s.Responses, Response{
		QuestionID:      q.ID,
		SubmittedAnswer: answer,
		CorrectAnswer:   q.CorrectAnswer,
		IsCorrect:       correct,
		TimeTaken:       timeTaken,
		Difficulty:      q.Difficulty,
		Timestamp:       now,
	})

	tag := adapt(s, timeTaken)
	s.Adjustments = append(s.Adjustments, tag)
	s.Cursor++

	result := &AnswerResult{
		IsCorrect:     correct,
		Explanation:   q.Explanation,
		CorrectAnswer: q.CorrectAnswer,
		Adjustment:    tag,
	}

	if s.Done() {
		report, err := svc.finalize(ctx, s, now)
		if err != nil {
			return nil, err
		}
		result.QuizCompleted = true
		result.Report = s.clone().Report
		svc.log.Info("session completed",
			"session", s.ID, "final_score", report.Performance.FinalScore,
			"mastery", report.MasteryUpdate.MasteryLevel)
	} else {
		result.Next = currentView(s)
	}

	svc.persist(ctx, s)
	svc.log.Debug("answer recorded",
		"session", s.ID, "question", q.ID, "correct", correct, "adjustment", tag)
	return result, nil
}

// GetSession returns a copy of the session.
func (svc *Service) GetSession(_ context.Context, id string) (*Session, error) {
	s, unlock, err := svc.acquire(id)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return s.clone(), nil
}

// ListSessions summarizes the user's sessions, oldest first. An empty
// userID lists everyone's.
func (svc *Service) ListSessions(_ context.Context, userID string) []Summary {
	svc.mu.RLock()
	var matched []*Session
	for _, s := range svc.sessions {
		if userID == "" || s.UserID == userID {
			matched = append(matched, s)
		}
	}
	svc.mu.RUnlock()

	out := make([]Summary, 0, len(matched))
	for _, s := range matched {
		unlock := svc.locks.Lock(sessionKey(s.UserID, s.ConceptID))
		out = append(out, Summarize(s))
		unlock()
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.Before(out[j].StartTime)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// acquire looks up the session and locks its (user, concept) key.
func (svc *Service) acquire(id string) (*Session, func(), error) {
	svc.mu.RLock()
	s, ok := svc.sessions[id]
	svc.mu.RUnlock()
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, svc.locks.Lock(sessionKey(s.UserID, s.ConceptID)), nil
}

// persist writes the session through to the store. Callers hold the key
// lock. On a version conflict the in-memory session is written over the
// stored one.
func (svc *Service) persist(ctx context.Context, s *Session) {
	if svc.repo == nil {
		return
	}
	data := s.toData()
	err := svc.repo.Save(ctx, data)
	if errors.Is(err, store.ErrVersionConflict) {
		svc.log.Warn("session changed underneath, overwriting", "session", s.ID, "error", err)
		var current *store.SessionData
		current, err = svc.repo.Get(ctx, s.ID)
		if err == nil {
			data.Version = 0
			if current != nil {
				data.Version = current.Version
			}
			err = svc.repo.Save(ctx, data)
		}
	}
	if err != nil {
		svc.log.Error("failed to save session", "session", s.ID, "error", err)
		return
	}
	s.version = data.Version
}
