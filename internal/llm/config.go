package llm

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// defaultMaxTokens bounds a response when the request leaves MaxTokens unset.
// A ten-question batch with explanations fits comfortably.
const defaultMaxTokens = 4096

// Config holds all LLM provider configuration.
type Config struct {
	// Provider is one of "anthropic", "openai", "gemini", "openrouter", "mock".
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds a single Generate call including retries.
	Timeout time.Duration

	// Temperature applied to question generation.
	Temperature float64
}

type AnthropicConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns the built-in defaults. The mock provider is the
// default so that a fresh install runs offline on fallback questions.
func DefaultConfig() Config {
	return Config{
		Provider:   "mock",
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.0-flash-exp"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout:     60 * time.Second,
		Temperature: 0.7,
	}
}

// ConfigFromEnv builds a Config from ADAPTIQ_* variables, falling back to
// well-known vendor key variables and then to defaults.
func ConfigFromEnv() Config {
	cfg, ok := DiscoverConfig()
	if !ok {
		cfg = DefaultConfig()
	}

	setString(&cfg.Provider, "ADAPTIQ_LLM_PROVIDER")

	setString(&cfg.Anthropic.APIKey, "ADAPTIQ_ANTHROPIC_API_KEY")
	setString(&cfg.Anthropic.Model, "ADAPTIQ_ANTHROPIC_MODEL")
	setString(&cfg.Anthropic.BaseURL, "ADAPTIQ_ANTHROPIC_BASE_URL")

	setString(&cfg.OpenAI.APIKey, "ADAPTIQ_OPENAI_API_KEY")
	setString(&cfg.OpenAI.Model, "ADAPTIQ_OPENAI_MODEL")
	setString(&cfg.OpenAI.BaseURL, "ADAPTIQ_OPENAI_BASE_URL")

	setString(&cfg.Gemini.APIKey, "ADAPTIQ_GEMINI_API_KEY")
	setString(&cfg.Gemini.Model, "ADAPTIQ_GEMINI_MODEL")

	setString(&cfg.OpenRouter.APIKey, "ADAPTIQ_OPENROUTER_API_KEY")
	setString(&cfg.OpenRouter.Model, "ADAPTIQ_OPENROUTER_MODEL")
	setString(&cfg.OpenRouter.BaseURL, "ADAPTIQ_OPENROUTER_BASE_URL")

	if v := os.Getenv("ADAPTIQ_LLM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	if v := os.Getenv("ADAPTIQ_LLM_TEMPERATURE"); v != "" {
		if t, err := strconv.ParseFloat(v, 64); err == nil && t >= 0 && t <= 1 {
			cfg.Temperature = t
		}
	}
	if v := os.Getenv("ADAPTIQ_LLM_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Retry.MaxAttempts = n
		}
	}

	return cfg
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// DiscoverConfig probes vendor API key variables in priority order
// (Gemini, OpenAI, Anthropic, OpenRouter) and returns a Config for the
// first provider whose key is found.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()

	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		cfg.Provider = "gemini"
		cfg.Gemini.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		cfg.Provider = "openai"
		cfg.OpenAI.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
		cfg.Provider = "anthropic"
		cfg.Anthropic.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENROUTER_API_KEY"); k != "" {
		cfg.Provider = "openrouter"
		cfg.OpenRouter.APIKey = k
		return cfg, true
	}

	return cfg, false
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("ADAPTIQ_ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("ADAPTIQ_OPENAI_API_KEY is required for the openai provider")
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("ADAPTIQ_GEMINI_API_KEY is required for the gemini provider")
		}
	case "openrouter":
		if c.OpenRouter.APIKey == "" {
			return fmt.Errorf("ADAPTIQ_OPENROUTER_API_KEY is required for the openrouter provider")
		}
	case "mock":
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}
