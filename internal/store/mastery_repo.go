package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

// masteryRepo implements MasteryRepo on the concept_mastery table.
type masteryRepo struct {
	db *sql.DB
}

func (r *masteryRepo) Save(ctx context.Context, data *MasteryData) error {
	data.SchemaVersion = SchemaVersion
	doc, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal mastery: %w", err)
	}

	key := MasteryKey(data.UserID, data.ConceptID)
	v, err := saveVersioned(ctx, r.db, tableMastery, key, data.Version, []column{
		{"user_id", data.UserID},
		{"concept_id", data.ConceptID},
		{"schema_version", data.SchemaVersion},
		{"data", string(doc)},
	})
	if err != nil {
		return err
	}
	data.Version = v
	return nil
}

func (r *masteryRepo) Get(ctx context.Context, userID, conceptID string) (*MasteryData, error) {
	query, args := builder().
		Select("version", "data").
		From(entsql.Table(tableMastery)).
		Where(entsql.EQ("id", MasteryKey(userID, conceptID))).
		Query()

	var (
		version int64
		doc     string
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&version, &doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query mastery: %w", err)
	}
	return decodeMastery(version, doc)
}

func (r *masteryRepo) List(ctx context.Context, userID string) ([]*MasteryData, error) {
	sel := builder().
		Select("version", "data").
		From(entsql.Table(tableMastery)).
		OrderBy("id")
	if userID != "" {
		sel.Where(entsql.EQ("user_id", userID))
	}
	query, args := sel.Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query mastery: %w", err)
	}
	defer rows.Close()

	var (
		out     []*MasteryData
		skipped []error
	)
	for rows.Next() {
		var (
			version int64
			doc     string
		)
		if err := rows.Scan(&version, &doc); err != nil {
			return nil, fmt.Errorf("scan mastery: %w", err)
		}
		m, err := decodeMastery(version, doc)
		if errors.Is(err, ErrSchemaVersion) {
			skipped = append(skipped, err)
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, errors.Join(skipped...)
}

func decodeMastery(version int64, doc string) (*MasteryData, error) {
	var m MasteryData
	if err := json.Unmarshal([]byte(doc), &m); err != nil {
		return nil, fmt.Errorf("unmarshal mastery: %w", err)
	}
	if err := checkSchemaVersion(m.SchemaVersion); err != nil {
		return nil, fmt.Errorf("mastery %s: %w", MasteryKey(m.UserID, m.ConceptID), err)
	}
	m.Version = version
	return &m, nil
}
