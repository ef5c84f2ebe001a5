package llm

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/adaptiq/internal/store"
)

func TestMockProvider_ReturnsCannedResponses(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Text: `{"a":1}`, Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Text: "plain text"},
	)

	resp1, err := mock.Generate(context.Background(), UserPrompt("first"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp1.Text != `{"a":1}` {
		t.Fatalf("expected {\"a\":1}, got %s", resp1.Text)
	}
	if resp1.Usage.InputTokens != 10 {
		t.Fatalf("expected 10 input tokens, got %d", resp1.Usage.InputTokens)
	}
	if resp1.StopReason != "end" {
		t.Fatalf("expected stop reason 'end', got %q", resp1.StopReason)
	}

	resp2, err := mock.Generate(context.Background(), UserPrompt("second"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp2.Text != "plain text" {
		t.Fatalf("expected plain text, got %s", resp2.Text)
	}
}

func TestMockProvider_SchemaValidatesText(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Text: `{"name":"Alice","age":10}`},
		MockResponse{Text: `{"name":"Bob"}`},
	)
	req := UserPrompt("q")
	req.Schema = testSchema()

	resp, err := mock.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `{"name":"Alice","age":10}` {
		t.Fatalf("content = %s", resp.Content)
	}

	_, err = mock.Generate(context.Background(), req)
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestMockProvider_EmptyQueueReturnsError(t *testing.T) {
	mock := NewMockProvider()
	_, err := mock.Generate(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error from empty queue")
	}
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T", err)
	}
}

func TestMockProvider_Fallback(t *testing.T) {
	mock := NewMockProvider(MockResponse{Text: "first"})
	mock.Fallback = &MockResponse{Text: "again"}

	for i, want := range []string{"first", "again", "again"} {
		resp, err := mock.Generate(context.Background(), Request{})
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if resp.Text != want {
			t.Fatalf("call %d = %q, want %q", i, resp.Text, want)
		}
	}
}

func TestMockProvider_RecordsCalls(t *testing.T) {
	mock := NewMockProvider(MockResponse{Text: `{}`})

	req := Request{
		System:   "sys",
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
	}
	_, _ = mock.Generate(context.Background(), req)

	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
	if mock.Calls[0].System != "sys" {
		t.Fatalf("expected system 'sys', got %q", mock.Calls[0].System)
	}
}

func TestMockProvider_ReturnsConfiguredError(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &ErrRateLimit{RetryAfter: 0}})

	_, err := mock.Generate(context.Background(), Request{})
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got: %T", err)
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("expected 'unknown', got %q", p)
	}

	ctx = WithPurpose(ctx, PurposeQuestionGen)
	if p := PurposeFrom(ctx); p != PurposeQuestionGen {
		t.Fatalf("expected %q, got %q", PurposeQuestionGen, p)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"anthropic without key", Config{Provider: "anthropic"}, true},
		{"anthropic with key", Config{Provider: "anthropic", Anthropic: AnthropicConfig{APIKey: "sk-test"}}, false},
		{"openai without key", Config{Provider: "openai"}, true},
		{"openai with key", Config{Provider: "openai", OpenAI: OpenAIConfig{APIKey: "sk-test"}}, false},
		{"openrouter without key", Config{Provider: "openrouter"}, true},
		{"mock needs no key", Config{Provider: "mock"}, false},
		{"unknown provider", Config{Provider: "unknown"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func clearLLMEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY",
		"ADAPTIQ_LLM_PROVIDER", "ADAPTIQ_LLM_TIMEOUT", "ADAPTIQ_LLM_TEMPERATURE",
		"ADAPTIQ_OPENAI_API_KEY", "ADAPTIQ_OPENAI_MODEL",
	} {
		t.Setenv(k, "")
	}
}

func TestConfigFromEnv_DefaultsToMock(t *testing.T) {
	clearLLMEnv(t)

	cfg := ConfigFromEnv()
	if cfg.Provider != "mock" {
		t.Fatalf("provider = %q, want mock", cfg.Provider)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestConfigFromEnv_Overrides(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "vendor-key")
	t.Setenv("ADAPTIQ_LLM_PROVIDER", "openai")
	t.Setenv("ADAPTIQ_OPENAI_API_KEY", "sk-test")
	t.Setenv("ADAPTIQ_OPENAI_MODEL", "gpt-4o")
	t.Setenv("ADAPTIQ_LLM_TIMEOUT", "5s")
	t.Setenv("ADAPTIQ_LLM_TEMPERATURE", "0.2")

	cfg := ConfigFromEnv()
	if cfg.Provider != "openai" || cfg.OpenAI.APIKey != "sk-test" || cfg.OpenAI.Model != "gpt-4o" {
		t.Fatalf("openai config = %+v", cfg.OpenAI)
	}
	if cfg.Anthropic.APIKey != "vendor-key" {
		t.Fatalf("discovered anthropic key lost: %q", cfg.Anthropic.APIKey)
	}
	if cfg.Timeout != 5*time.Second {
		t.Fatalf("timeout = %v", cfg.Timeout)
	}
	if cfg.Temperature != 0.2 {
		t.Fatalf("temperature = %v", cfg.Temperature)
	}
}

func TestNewProvider_Mock(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Provider: "mock"}, nil, nil)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	if p.ModelID() != "mock" {
		t.Fatalf("model = %q", p.ModelID())
	}
}

func TestNewProvider_RejectsMissingKey(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{Provider: "gemini"}, nil, nil)
	if err == nil {
		t.Fatal("expected error for gemini without key")
	}
}

func TestLoggingProvider_RecordsEvents(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer s.Close()

	mock := NewMockProvider(
		MockResponse{Text: "hello", Usage: Usage{InputTokens: 7, OutputTokens: 3}},
		MockResponse{Err: errors.New("boom")},
	)
	p := WithLogging(mock, "mock", s.EventRepo(), nil)
	ctx := WithPurpose(context.Background(), PurposeQuestionGen)

	req := UserPrompt("write a question")
	req.System = "be brief"
	if _, err := p.Generate(ctx, req); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := p.Generate(ctx, req); err == nil {
		t.Fatal("expected error from second call")
	}

	events, err := s.EventRepo().QueryLLMEvents(context.Background(), store.QueryOpts{})
	if err != nil {
		t.Fatalf("query events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}

	failed, ok := events[0], events[1]
	if failed.Success || failed.ErrorMessage != "boom" {
		t.Errorf("failed event = %+v", failed)
	}
	if !ok.Success || ok.InputTokens != 7 || ok.ResponseBody != "hello" {
		t.Errorf("ok event = %+v", ok)
	}
	if ok.Purpose != PurposeQuestionGen || ok.Provider != "mock" {
		t.Errorf("purpose/provider = %q/%q", ok.Purpose, ok.Provider)
	}
	if !strings.Contains(ok.RequestBody, "[system]\nbe brief") || !strings.Contains(ok.RequestBody, "write a question") {
		t.Errorf("request body = %q", ok.RequestBody)
	}
}

func TestTimeoutProvider(t *testing.T) {
	slow := providerFunc(func(ctx context.Context, _ Request) (*Response, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	p := WithTimeout(slow, 10*time.Millisecond)

	_, err := p.Generate(context.Background(), Request{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}

type providerFunc func(ctx context.Context, req Request) (*Response, error)

func (f providerFunc) Generate(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}

func (f providerFunc) ModelID() string { return "func" }
