package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// column is a column/value pair written alongside a document.
type column struct {
	name  string
	value any
}

func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

// saveVersioned writes one row keyed by id using optimistic concurrency:
// the row is updated only if its version still equals expected, and a
// missing row is inserted only when expected is 0. It returns the new
// version.
func saveVersioned(ctx context.Context, db *sql.DB, table, id string, expected int64, cols []column) (int64, error) {
	upd := builder().Update(table).Set("version", expected+1)
	for _, c := range cols {
		upd.Set(c.name, c.value)
	}
	upd.Where(entsql.And(entsql.EQ("id", id), entsql.EQ("version", expected)))

	query, args := upd.Query()
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("update %s %s: %w", table, id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 1 {
		return expected + 1, nil
	}

	current, found, err := currentVersion(ctx, db, table, id)
	if err != nil {
		return 0, err
	}
	if found || expected != 0 {
		return 0, fmt.Errorf("%w: %s %s is at version %d, caller had %d", ErrVersionConflict, table, id, current, expected)
	}

	names := []string{"id", "version"}
	values := []any{id, int64(1)}
	for _, c := range cols {
		names = append(names, c.name)
		values = append(values, c.value)
	}
	query, args = builder().Insert(table).Columns(names...).Values(values...).Query()
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("insert %s %s: %w", table, id, err)
	}
	return 1, nil
}

func currentVersion(ctx context.Context, db *sql.DB, table, id string) (int64, bool, error) {
	query, args := builder().Select("version").From(entsql.Table(table)).Where(entsql.EQ("id", id)).Query()
	var v int64
	err := db.QueryRowContext(ctx, query, args...).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read %s version: %w", table, err)
	}
	return v, true, nil
}
