package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

// questionBankRepo implements QuestionBankRepo on the question_bank table.
type questionBankRepo struct {
	db *sql.DB
}

func (r *questionBankRepo) Append(ctx context.Context, conceptID string, questions []QuestionData) error {
	if len(questions) == 0 {
		return nil
	}

	ins := builder().Insert(tableQuestionBank).Columns("concept_id", "question_id", "schema_version", "data")
	for _, q := range questions {
		doc, err := json.Marshal(q)
		if err != nil {
			return fmt.Errorf("marshal question %s: %w", q.ID, err)
		}
		ins.Values(conceptID, q.ID, SchemaVersion, string(doc))
	}

	query, args := ins.Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("append question bank %s: %w", conceptID, err)
	}
	return nil
}

func (r *questionBankRepo) List(ctx context.Context, conceptID string) ([]QuestionData, error) {
	query, args := builder().
		Select("schema_version", "data").
		From(entsql.Table(tableQuestionBank)).
		Where(entsql.EQ("concept_id", conceptID)).
		OrderBy("id").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query question bank %s: %w", conceptID, err)
	}
	defer rows.Close()

	var out []QuestionData
	for rows.Next() {
		var sv, doc string
		if err := rows.Scan(&sv, &doc); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if err := checkSchemaVersion(sv); err != nil {
			return nil, err
		}
		var q QuestionData
		if err := json.Unmarshal([]byte(doc), &q); err != nil {
			return nil, fmt.Errorf("unmarshal question: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}
