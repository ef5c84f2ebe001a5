package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

// sessionRepo implements SessionRepo on the sessions table.
type sessionRepo struct {
	db *sql.DB
}

func (r *sessionRepo) Save(ctx context.Context, data *SessionData) error {
	data.SchemaVersion = SchemaVersion
	doc, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", data.ID, err)
	}

	v, err := saveVersioned(ctx, r.db, tableSessions, data.ID, data.Version, []column{
		{"user_id", data.UserID},
		{"concept_id", data.ConceptID},
		{"completed", data.EndTime != nil},
		{"schema_version", data.SchemaVersion},
		{"data", string(doc)},
	})
	if err != nil {
		return err
	}
	data.Version = v
	return nil
}

func (r *sessionRepo) Get(ctx context.Context, id string) (*SessionData, error) {
	query, args := builder().
		Select("version", "data").
		From(entsql.Table(tableSessions)).
		Where(entsql.EQ("id", id)).
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
		return nil, fmt.Errorf("query session %s: %w", id, err)
	}
	return decodeSession(version, doc)
}

func (r *sessionRepo) List(ctx context.Context, userID string) ([]*SessionData, error) {
	sel := builder().
		Select("version", "data").
		From(entsql.Table(tableSessions)).
		OrderBy("id")
	if userID != "" {
		sel.Where(entsql.EQ("user_id", userID))
	}
	query, args := sel.Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var (
		out     []*SessionData
		skipped []error
	)
	for rows.Next() {
		var (
			version int64
			doc     string
		)
		if err := rows.Scan(&version, &doc); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		s, err := decodeSession(version, doc)
		if errors.Is(err, ErrSchemaVersion) {
			skipped = append(skipped, err)
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, errors.Join(skipped...)
}

func decodeSession(version int64, doc string) (*SessionData, error) {
	var s SessionData
	if err := json.Unmarshal([]byte(doc), &s); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	if err := checkSchemaVersion(s.SchemaVersion); err != nil {
		return nil, fmt.Errorf("session %s: %w", s.ID, err)
	}
	s.Version = version
	return &s, nil
}
