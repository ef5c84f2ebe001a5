package questionbank

import "github.com/abhisek/adaptiq/internal/llm"

// batchSchema is the envelope the model must return. Entries are checked
// one by one against itemSchema so a single bad entry does not sink the
// batch.
var batchSchema = &llm.Schema{
	Name:        "quiz-question-batch",
	Description: "A batch of quiz questions",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "object"},
			},
		},
		"required": []any{"questions"},
	},
}

// itemSchema describes one generated question. correct_answer may be an
// option index, a boolean or text.
var itemSchema = &llm.Schema{
	Name:        "quiz-question",
	Description: "A single quiz question with answer, explanation and metadata",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question_id":   map[string]any{"type": "string"},
			"question_text": map[string]any{"type": "string", "minLength": 1},
			"question_type": map[string]any{
				"type": "string",
				"enum": []any{"multiple_choice", "true_false", "short_answer"},
			},
			"options": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"correct_answer": map[string]any{
				"type": []any{"string", "number", "boolean"},
			},
			"explanation":      map[string]any{"type": "string"},
			"difficulty_level": map[string]any{"type": "number"},
			"concept_tags": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"cognitive_level": map[string]any{"type": "string"},
			"estimated_time":  map[string]any{"type": "number", "exclusiveMinimum": 0},
			"hint":            map[string]any{"type": []any{"string", "null"}},
		},
		"required": []any{"question_text", "question_type", "correct_answer"},
	},
}
