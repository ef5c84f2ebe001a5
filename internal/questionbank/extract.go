package questionbank

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoJSONObject is returned by Extract when the text holds no complete
// brace-balanced object.
var ErrNoJSONObject = errors.New("no JSON object found in model output")

// Extract pulls the first JSON object out of free-form model output. It
// drops reasoning blocks delimited by <think> tags, unwraps a markdown code
// fence and then scans for the first balanced {...} span. Braces inside
// string literals do not count. The result is syntactically valid JSON.
func Extract(raw string) (json.RawMessage, error) {
	s := stripReasoning(raw)
	s = stripFence(s)

	start := strings.IndexByte(s, '{')
	for start != -1 {
		if end := matchBrace(s, start); end != -1 {
			candidate := s[start : end+1]
			if json.Valid([]byte(candidate)) {
				return json.RawMessage(candidate), nil
			}
		}
		next := strings.IndexByte(s[start+1:], '{')
		if next == -1 {
			break
		}
		start += next + 1
	}
	return nil, ErrNoJSONObject
}

const (
	thinkOpen  = "<think>"
	thinkClose = "</think>"
)

// stripReasoning keeps only what follows the last </think>. When the block
// is never closed, only the opening tag is dropped and the brace scan runs
// over the rest.
func stripReasoning(s string) string {
	if i := strings.LastIndex(s, thinkClose); i != -1 {
		return strings.TrimSpace(s[i+len(thinkClose):])
	}
	if i := strings.Index(s, thinkOpen); i != -1 {
		return strings.TrimSpace(s[i+len(thinkOpen):])
	}
	return s
}

// stripFence returns the body of the first ```json or ``` fence. Text
// without a closed fence is returned unchanged.
func stripFence(s string) string {
	open := "```json"
	i := strings.Index(s, open)
	if i == -1 {
		open = "```"
		i = strings.Index(s, open)
	}
	if i == -1 {
		return s
	}
	body := s[i+len(open):]
	end := strings.Index(body, "```")
	if end == -1 {
		return s
	}
	return strings.TrimSpace(body[:end])
}

// matchBrace returns the index of the brace closing the one at start, or
// -1 when the object is never closed.
func matchBrace(s string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
