package questionbank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/adaptiq/internal/difficulty"
	"github.com/abhisek/adaptiq/internal/llm"
	"github.com/abhisek/adaptiq/internal/logger"
)

// Config controls the Generator.
type Config struct {
	// MaxTokens is the token budget for one batch.
	MaxTokens int

	// Temperature controls output randomness (0.0-1.0).
	Temperature float64
}

// DefaultConfig returns the recommended generation settings.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   4096,
		Temperature: 0.7,
	}
}

// Generator produces question batches through an LLM provider and falls
// back to placeholder questions whenever that fails.
type Generator struct {
	provider llm.Provider
	config   Config
	log      *logger.Logger
	now      func() time.Time
}

// New creates a Generator. provider may be nil, in which case every batch
// comes from the fallback.
func New(provider llm.Provider, cfg Config, log *logger.Logger) *Generator {
	return &Generator{
		provider: provider,
		config:   cfg,
		log:      logger.OrNop(log),
		now:      time.Now,
	}
}

// questionOutput is one raw entry of the model's reply.
type questionOutput struct {
	ID             string          `json:"question_id"`
	Text           string          `json:"question_text"`
	Type           string          `json:"question_type"`
	Options        []string        `json:"options"`
	CorrectAnswer  json.RawMessage `json:"correct_answer"`
	Explanation    string          `json:"explanation"`
	ConceptTags    []string        `json:"concept_tags"`
	CognitiveLevel string          `json:"cognitive_level"`
	EstimatedTime  float64         `json:"estimated_time"`
	Hint           *string         `json:"hint"`
}

// Generate returns exactly len(input.Difficulties) questions. It never
// fails: provider errors, unparseable replies and invalid entries are
// logged and replaced by fallback questions.
func (g *Generator) Generate(ctx context.Context, input GenerateInput) []Question {
	count := len(input.Difficulties)
	if count == 0 {
		return []Question{}
	}
	now := g.now()

	if g.provider == nil {
		return Fallback(input.ConceptName, count, now)
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeQuestionGen)
	req := llm.Request{
		System:      systemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildUserMessage(input)}},
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		g.log.Warn("question generation failed, using fallback questions",
			"concept", input.ConceptName, "count", count, "error", err)
		return Fallback(input.ConceptName, count, now)
	}

	qs, err := g.parse(resp.Text, input, now)
	if err != nil {
		g.log.Warn("unusable question batch, using fallback questions",
			"concept", input.ConceptName, "count", count, "error", err)
		return Fallback(input.ConceptName, count, now)
	}

	if short := count - len(qs); short > 0 {
		g.log.Info("filling question shortfall with fallback questions",
			"concept", input.ConceptName, "generated", len(qs), "fallback", short)
		qs = append(qs, Fallback(input.ConceptName, short, now)...)
	}
	return qs
}

// parse extracts and validates the batch. The i-th surviving question gets
// the i-th planned difficulty; entries beyond the plan are dropped.
func (g *Generator) parse(text string, input GenerateInput, now time.Time) ([]Question, error) {
	raw, err := Extract(text)
	if err != nil {
		return nil, err
	}
	if err := llm.ValidateJSON(batchSchema, raw); err != nil {
		return nil, err
	}

	var batch struct {
		Questions []json.RawMessage `json:"questions"`
	}
	if err := json.Unmarshal(raw, &batch); err != nil {
		return nil, fmt.Errorf("decode question batch: %w", err)
	}

	count := len(input.Difficulties)
	seen := make(map[string]bool)
	out := make([]Question, 0, count)
	for i, item := range batch.Questions {
		if len(out) == count {
			break
		}
		q, err := decodeQuestion(item, input.ConceptName, now)
		if err != nil {
			g.log.Debug("dropping generated question", "index", i, "error", err)
			continue
		}
		if q.ID == "" || seen[q.ID] {
			q.ID = uuid.NewString()
		}
		seen[q.ID] = true
		q.Difficulty = difficulty.Clamp(input.Difficulties[len(out)])
		out = append(out, *q)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("none of %d generated questions were valid", len(batch.Questions))
	}
	return out, nil
}

func decodeQuestion(item json.RawMessage, conceptName string, now time.Time) (*Question, error) {
	if err := llm.ValidateJSON(itemSchema, item); err != nil {
		return nil, err
	}
	var o questionOutput
	if err := json.Unmarshal(item, &o); err != nil {
		return nil, fmt.Errorf("decode question: %w", err)
	}

	q := &Question{
		ID:             strings.TrimSpace(o.ID),
		Text:           strings.TrimSpace(o.Text),
		Type:           QuestionType(o.Type),
		Explanation:    o.Explanation,
		ConceptTags:    cleanTags(o.ConceptTags),
		CognitiveLevel: CognitiveLevel(strings.ToLower(o.CognitiveLevel)),
		EstimatedTime:  int(math.Round(o.EstimatedTime)),
		CreatedAt:      now,
	}
	if q.Type == TypeMultipleChoice {
		q.Options = o.Options
	}
	if o.Hint != nil {
		q.Hint = *o.Hint
	}
	if len(q.ConceptTags) == 0 {
		q.ConceptTags = []string{conceptName}
	}
	if !q.CognitiveLevel.valid() {
		q.CognitiveLevel = LevelUnderstand
	}
	if q.EstimatedTime <= 0 {
		q.EstimatedTime = DefaultEstimatedTime
	}

	answer, err := canonicalAnswer(o.CorrectAnswer, q.Type)
	if err != nil {
		return nil, err
	}
	q.CorrectAnswer = answer

	if verr := validateQuestion(q); verr != nil {
		return nil, verr
	}
	return q, nil
}

// canonicalAnswer renders a JSON string, number or boolean answer as the
// string form CheckAnswer compares against.
func canonicalAnswer(raw json.RawMessage, t QuestionType) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", fmt.Errorf("correct_answer is missing")
	}

	var s string
	switch raw[0] {
	case '"':
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("decode correct_answer: %w", err)
		}
		s = strings.TrimSpace(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return "", fmt.Errorf("decode correct_answer: %w", err)
		}
		s = strconv.FormatBool(b)
	default:
		var n float64
		if err := json.Unmarshal(raw, &n); err != nil {
			return "", fmt.Errorf("decode correct_answer: %w", err)
		}
		s = strconv.FormatFloat(n, 'f', -1, 64)
	}

	if t == TypeTrueFalse {
		s = strings.ToLower(s)
	}
	return s, nil
}

func cleanTags(tags []string) []string {
	var out []string
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
