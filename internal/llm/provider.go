package llm

import (
	"context"
	"encoding/json"
)

// Provider is a single chat-completion backend.
type Provider interface {
	// Generate sends one request. When req.Schema is set the provider asks
	// for structured output and Response.Content holds the validated JSON.
	// Response.Text always holds the model's raw output.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the model.
type Request struct {
	// System is the optional system prompt.
	System string

	// Messages is the conversation. Question generation sends one user
	// message.
	Messages []Message

	// Schema, when set, requests structured JSON output.
	Schema *Schema

	MaxTokens int

	// Temperature in [0, 1]. Zero leaves the provider default in place.
	Temperature float64
}

// Message is one turn of the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON Schema.
type Schema struct {
	// Name is kebab-case, e.g. "quiz-questions". Anthropic and OpenAI use
	// it as the schema name; the validator caches by it.
	Name        string
	Description string
	Definition  map[string]any
}

// Response holds the model's output.
type Response struct {
	// Text is the raw model output.
	Text string

	// Content is the validated JSON object when the request carried a
	// Schema, and nil otherwise.
	Content json.RawMessage

	Usage Usage

	// Model is the model that served the request.
	Model string

	// StopReason is one of "end" or "max_tokens".
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// UserPrompt builds a single-turn request.
func UserPrompt(prompt string) Request {
	return Request{Messages: []Message{{Role: RoleUser, Content: prompt}}}
}

// finish fills Content from Text and validates it when the request asked
// for structured output.
func finish(req Request, resp *Response) (*Response, error) {
	if req.Schema == nil {
		return resp, nil
	}
	if resp.StopReason == "max_tokens" {
		return nil, &ErrMaxTokensExceeded{Text: resp.Text}
	}
	content := json.RawMessage(resp.Text)
	if err := ValidateJSON(req.Schema, content); err != nil {
		return nil, err
	}
	resp.Content = content
	return resp, nil
}
