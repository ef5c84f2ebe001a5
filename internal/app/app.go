// Package app wires the store, the text-generation provider and the quiz
// services into one handle exposing the public operations.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/adaptiq/internal/config"
	"github.com/abhisek/adaptiq/internal/difficulty"
	"github.com/abhisek/adaptiq/internal/llm"
	"github.com/abhisek/adaptiq/internal/logger"
	"github.com/abhisek/adaptiq/internal/mastery"
	"github.com/abhisek/adaptiq/internal/questionbank"
	"github.com/abhisek/adaptiq/internal/session"
	"github.com/abhisek/adaptiq/internal/store"
)

// App is the composition root.
type App struct {
	cfg      config.Config
	store    *store.Store
	provider llm.Provider
	bank     *questionbank.Bank
	tracker  *mastery.Tracker
	sessions *session.Service
	log      *logger.Logger
}

// Option customizes New.
type Option func(*options)

type options struct {
	provider llm.Provider
}

// WithProvider replaces the configured provider. The request log is not
// attached to it.
func WithProvider(p llm.Provider) Option {
	return func(o *options) { o.provider = p }
}

// New opens the store, builds the provider and loads persisted sessions
// and mastery records.
func New(ctx context.Context, cfg config.Config, log *logger.Logger, opts ...Option) (*App, error) {
	log = logger.OrNop(log)
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	dbPath := cfg.DBPath
	if dbPath == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve database path: %w", err)
		}
		dbPath = p
	} else if err := store.EnsureDir(dbPath); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}

	provider := o.provider
	if provider == nil {
		provider, err = llm.NewProvider(ctx, cfg.LLM, st.EventRepo(), log)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("create llm provider: %w", err)
		}
	}

	genCfg := questionbank.DefaultConfig()
	genCfg.Temperature = cfg.LLM.Temperature
	bank := questionbank.NewBank(st.QuestionBankRepo())
	tracker := mastery.NewTracker(st.MasteryRepo(), log.With("component", "mastery"))
	sessions := session.NewService(session.Deps{
		Sessions:  st.SessionRepo(),
		Questions: questionbank.New(provider, genCfg, log.With("component", "questionbank")),
		Bank:      bank,
		Tracker:   tracker,
		Planner:   difficulty.NewSeededPlanner(cfg.PlannerSeed(time.Now())),
		Logger:    log.With("component", "session"),
	})

	if err := tracker.Load(ctx); err != nil {
		st.Close()
		return nil, err
	}
	if err := sessions.Load(ctx); err != nil {
		st.Close()
		return nil, err
	}

	log.Debug("app ready", "db", dbPath, "provider", cfg.LLM.Provider, "model", provider.ModelID())
	return &App{
		cfg:      cfg,
		store:    st,
		provider: provider,
		bank:     bank,
		tracker:  tracker,
		sessions: sessions,
		log:      log,
	}, nil
}

// Close releases the store.
func (a *App) Close() error {
	return a.store.Close()
}

// Store exposes the underlying store for read-only tooling.
func (a *App) Store() *store.Store {
	return a.store
}

// StartSession starts a quiz. A zero count uses the configured default.
func (a *App) StartSession(ctx context.Context, in session.StartInput) (string, error) {
	if in.Count == 0 {
		in.Count = a.cfg.QuestionCount
	}
	return a.sessions.StartSession(ctx, in)
}

// NextQuestion returns the current question, or nil when the quiz is done.
func (a *App) NextQuestion(ctx context.Context, sessionID string) (*session.QuestionView, error) {
	return a.sessions.NextQuestion(ctx, sessionID)
}

// SubmitAnswer grades an answer. timeTaken is in seconds.
func (a *App) SubmitAnswer(ctx context.Context, sessionID, answer string, timeTaken float64) (*session.AnswerResult, error) {
	return a.sessions.SubmitAnswer(ctx, sessionID, answer, timeTaken)
}

// MasteryReport summarizes the user's mastery across concepts.
func (a *App) MasteryReport(ctx context.Context, userID string) (*mastery.Report, error) {
	return a.tracker.Report(ctx, userID)
}

// Session returns the session summary.
func (a *App) Session(ctx context.Context, sessionID string) (*session.Summary, error) {
	s, err := a.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	sum := session.Summarize(s)
	return &sum, nil
}

// Sessions lists the user's sessions, oldest first.
func (a *App) Sessions(ctx context.Context, userID string) []session.Summary {
	return a.sessions.ListSessions(ctx, userID)
}

// QuestionBank returns every question banked for the concept.
func (a *App) QuestionBank(ctx context.Context, conceptID string) ([]questionbank.Question, error) {
	return a.bank.List(ctx, conceptID)
}
