package store

import (
	"context"
	"errors"
	"time"
)

// ErrVersionConflict is returned by Save when the stored record has moved
// past the version the caller loaded.
var ErrVersionConflict = errors.New("version conflict")

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit int // max results (0 = unlimited)
}

// QuestionData is the persisted form of a question.
type QuestionData struct {
	ID             string    `json:"id"`
	Text           string    `json:"text"`
	Type           string    `json:"type"`
	Options        []string  `json:"options"`
	CorrectAnswer  string    `json:"correct_answer"`
	Explanation    string    `json:"explanation"`
	Difficulty     float64   `json:"difficulty"`
	ConceptTags    []string  `json:"concept_tags"`
	CognitiveLevel string    `json:"cognitive_level"`
	EstimatedTime  int       `json:"estimated_time"`
	Hint           string    `json:"hint,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// ResponseData is one logged answer inside a session.
type ResponseData struct {
	QuestionID      string    `json:"question_id"`
	SubmittedAnswer string    `json:"submitted_answer"`
	CorrectAnswer   string    `json:"correct_answer"`
	IsCorrect       bool      `json:"is_correct"`
	TimeTaken       float64   `json:"time_taken"`
	Difficulty      float64   `json:"difficulty"`
	Timestamp       time.Time `json:"timestamp"`
}

// MetricsData is the performance bundle written when a session completes.
type MetricsData struct {
	Accuracy           float64 `json:"accuracy"`
	FinalScore         float64 `json:"final_score"`
	TotalTime          float64 `json:"total_time"`
	AvgTimePerQuestion float64 `json:"avg_time_per_question"`
	QuestionsAnswered  int     `json:"questions_answered"`
	AdjustmentsMade    int     `json:"adjustments_made"`
}

// ReportData is the persisted final report of a completed session.
type ReportData struct {
	MasteryStatus   string    `json:"mastery_status"`
	MasteryLevel    float64   `json:"mastery_level"`
	Trend           string    `json:"trend"`
	WeakAreas       []string  `json:"weak_areas"`
	StrongAreas     []string  `json:"strong_areas"`
	NextReview      time.Time `json:"next_review"`
	Recommendations []string  `json:"recommendations"`
}

// SessionData is the persisted form of a quiz session.
type SessionData struct {
	SchemaVersion         string         `json:"schema_version"`
	ID                    string         `json:"id"`
	UserID                string         `json:"user_id"`
	ConceptID             string         `json:"concept_id"`
	ConceptName           string         `json:"concept_name"`
	Questions             []QuestionData `json:"questions"`
	Responses             []ResponseData `json:"responses"`
	Cursor                int            `json:"cursor"`
	DifficultyProgression []float64      `json:"difficulty_progression"`
	StartTime             time.Time      `json:"start_time"`
	EndTime               *time.Time     `json:"end_time,omitempty"`
	Adjustments           []string       `json:"adjustments"`
	Metrics               *MetricsData   `json:"performance_metrics,omitempty"`
	Report                *ReportData    `json:"report,omitempty"`

	// Version is the optimistic concurrency token. It lives in its own
	// column, not in the document.
	Version int64 `json:"-"`
}

// MasteryData is the persisted form of a per-(user, concept) mastery record.
type MasteryData struct {
	SchemaVersion     string    `json:"schema_version"`
	UserID            string    `json:"user_id"`
	ConceptID         string    `json:"concept_id"`
	ConceptName       string    `json:"concept_name"`
	MasteryLevel      float64   `json:"mastery_level"`
	ConfidenceLow     float64   `json:"confidence_low"`
	ConfidenceHigh    float64   `json:"confidence_high"`
	Trend             []float64 `json:"trend"`
	WeakAreas         []string  `json:"weak_areas"`
	StrongAreas       []string  `json:"strong_areas"`
	LastAssessment    time.Time `json:"last_assessment"`
	NextReviewDate    time.Time `json:"next_review_date"`
	SessionsCompleted int       `json:"sessions_completed"`

	Version int64 `json:"-"`
}

// MasteryKey returns the collection key for a (user, concept) pair.
func MasteryKey(userID, conceptID string) string {
	return userID + "_" + conceptID
}

// SessionRepo persists quiz sessions one record at a time.
type SessionRepo interface {
	// Save upserts the session. data.Version must equal the stored version
	// (0 for a new record); on success it is advanced.
	Save(ctx context.Context, data *SessionData) error

	// Get returns the session, or nil if it does not exist.
	Get(ctx context.Context, id string) (*SessionData, error)

	// List returns all sessions, optionally restricted to one user.
	// Records with an unsupported schema are skipped; the readable ones
	// are returned together with an error wrapping ErrSchemaVersion.
	List(ctx context.Context, userID string) ([]*SessionData, error)
}

// MasteryRepo persists concept mastery records.
type MasteryRepo interface {
	// Save upserts the record with the same version rules as SessionRepo.
	Save(ctx context.Context, data *MasteryData) error

	// Get returns the record for the pair, or nil if none exists.
	Get(ctx context.Context, userID, conceptID string) (*MasteryData, error)

	// List returns all records, optionally restricted to one user, with
	// the same skipping rule as SessionRepo.List.
	List(ctx context.Context, userID string) ([]*MasteryData, error)
}

// QuestionBankRepo is the append-only per-concept question bank.
type QuestionBankRepo interface {
	Append(ctx context.Context, conceptID string, questions []QuestionData) error
	List(ctx context.Context, conceptID string) ([]QuestionData, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEventRecord is a stored LLM request event.
type LLMEventRecord struct {
	ID        int
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsageStats aggregates LLM usage for one purpose or model.
type LLMUsageStats struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo records and queries LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEventRecord, error)
	GetLLMEvent(ctx context.Context, id int) (*LLMEventRecord, error)
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsageStats, error)
	LLMUsageByModel(ctx context.Context) ([]LLMUsageStats, error)
}
