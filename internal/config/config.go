// Package config assembles process configuration from the environment and
// an optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/abhisek/adaptiq/internal/llm"
)

// Defaults.
const (
	DefaultHTTPAddr      = ":8080"
	DefaultLogMode       = "dev"
	DefaultQuestionCount = 10
)

// Config is the full process configuration.
type Config struct {
	// DBPath is the SQLite file. Empty means store.DefaultDBPath.
	DBPath string

	// LogMode is "dev" or "prod".
	LogMode string

	// QuestionCount is the default session length.
	QuestionCount int

	HTTPAddr string

	// Seed fixes the difficulty planner's random source. Zero seeds from
	// the clock.
	Seed uint64

	LLM llm.Config
}

// Load reads .env (when present) and then the ADAPTIQ_* variables.
// Variables already set in the environment win over .env entries.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds the configuration from the current environment only.
func FromEnv() (Config, error) {
	cfg := Config{
		DBPath:        os.Getenv("ADAPTIQ_DB"),
		LogMode:       getenvDefault("ADAPTIQ_LOG_MODE", DefaultLogMode),
		QuestionCount: DefaultQuestionCount,
		HTTPAddr:      getenvDefault("ADAPTIQ_HTTP_ADDR", DefaultHTTPAddr),
		LLM:           llm.ConfigFromEnv(),
	}

	if v := os.Getenv("ADAPTIQ_QUESTION_COUNT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("config: ADAPTIQ_QUESTION_COUNT=%q is not a positive integer", v)
		}
		cfg.QuestionCount = n
	}
	if v := os.Getenv("ADAPTIQ_SEED"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("config: ADAPTIQ_SEED=%q is not an unsigned integer: %w", v, err)
		}
		cfg.Seed = n
	}
	return cfg, nil
}

// PlannerSeed returns the configured seed, or one derived from now.
func (c Config) PlannerSeed(now time.Time) uint64 {
	if c.Seed != 0 {
		return c.Seed
	}
	return uint64(now.UnixNano())
}

func getenvDefault(k, fallback string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return fallback
}
