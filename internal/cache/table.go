package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	averrors "github.com/five82/ava/internal/errors"
	"github.com/five82/ava/internal/model"
)

// Record is an entity storable in a Table.
type Record[E any] interface {
	Key() int64
	WithKey(id int64) E
	ParentKey() int64
}

// Table is the typed view of one entity kind.
type Table[E Record[E]] struct {
	db   *DB
	kind string
}

// NewTable returns the table for kind.
func NewTable[E Record[E]](db *DB, kind model.Kind) *Table[E] {
	return &Table[E]{db: db, kind: string(kind)}
}

// Kind returns the entity kind stored in the table.
func (t *Table[E]) Kind() string { return t.kind }

// Get returns the entity with id.
func (t *Table[E]) Get(ctx context.Context, id int64) (E, bool, error) {
	var (
		zero    E
		payload string
	)
	err := t.db.read(func(conn *sql.DB) error {
		return conn.QueryRowContext(ctx,
			"SELECT payload FROM rows WHERE kind = ? AND id = ?", t.kind, id).Scan(&payload)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, averrors.Storage("get", t.kind, err)
	}
	e, err := t.decode(payload)
	if err != nil {
		return zero, false, err
	}
	return e, true, nil
}

// List returns entities ordered by id. parentID 0 matches every parent;
// limit 0 means no limit.
func (t *Table[E]) List(ctx context.Context, parentID int64, offset, limit int) ([]E, error) {
	query := "SELECT payload FROM rows WHERE kind = ?"
	args := []any{t.kind}
	if parentID != 0 {
		query += " AND parent_id = ?"
		args = append(args, parentID)
	}
	query += " ORDER BY id"
	if limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	} else if offset > 0 {
		query += " LIMIT -1 OFFSET ?"
		args = append(args, offset)
	}

	var payloads []string
	err := t.db.read(func(conn *sql.DB) error {
		rows, err := conn.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var p string
			if err := rows.Scan(&p); err != nil {
				return err
			}
			payloads = append(payloads, p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, averrors.Storage("list", t.kind, err)
	}

	out := make([]E, 0, len(payloads))
	for _, p := range payloads {
		e, err := t.decode(p)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// Count returns the number of entities for parentID (0 for all).
func (t *Table[E]) Count(ctx context.Context, parentID int64) (int, error) {
	query := "SELECT COUNT(*) FROM rows WHERE kind = ?"
	args := []any{t.kind}
	if parentID != 0 {
		query += " AND parent_id = ?"
		args = append(args, parentID)
	}
	var n int
	err := t.db.read(func(conn *sql.DB) error {
		return conn.QueryRowContext(ctx, query, args...).Scan(&n)
	})
	if err != nil {
		return 0, averrors.Storage("count", t.kind, err)
	}
	return n, nil
}

// Exists reports whether id is stored.
func (t *Table[E]) Exists(ctx context.Context, id int64) (bool, error) {
	var n int
	err := t.db.read(func(conn *sql.DB) error {
		return conn.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM rows WHERE kind = ? AND id = ?", t.kind, id).Scan(&n)
	})
	if err != nil {
		return false, averrors.Storage("exists", t.kind, err)
	}
	return n > 0, nil
}

// Put replaces or inserts every item in one transaction. Items with id 0 are
// assigned the next local id. The stored items are returned in order.
func (t *Table[E]) Put(ctx context.Context, items ...E) ([]E, error) {
	stored := make([]E, 0, len(items))
	err := t.db.Write(ctx, t.kind, func(tx *Tx) error {
		for _, e := range items {
			if e.Key() == 0 {
				id, err := tx.NextID(ctx, t.kind)
				if err != nil {
					return err
				}
				e = e.WithKey(id)
			}
			payload, err := json.Marshal(e)
			if err != nil {
				return fmt.Errorf("encode %s %d: %w", t.kind, e.Key(), err)
			}
			if err := tx.Put(ctx, t.kind, e.Key(), e.ParentKey(), payload); err != nil {
				return err
			}
			stored = append(stored, e)
		}
		return nil
	})
	if err != nil {
		return nil, averrors.Storage("upsert", t.kind, err)
	}
	return stored, nil
}

// Delete removes id. Deleting a missing id succeeds.
func (t *Table[E]) Delete(ctx context.Context, id int64) error {
	err := t.db.Write(ctx, t.kind, func(tx *Tx) error {
		return tx.Delete(ctx, t.kind, id)
	})
	if err != nil {
		return averrors.Storage("delete", t.kind, err)
	}
	return nil
}

// DeleteByParent removes every entity belonging to parentID.
func (t *Table[E]) DeleteByParent(ctx context.Context, parentID int64) error {
	err := t.db.Write(ctx, t.kind, func(tx *Tx) error {
		_, err := tx.DeleteByParent(ctx, t.kind, parentID)
		return err
	})
	if err != nil {
		return averrors.Storage("delete", t.kind, err)
	}
	return nil
}

// NextID reserves a local id.
func (t *Table[E]) NextID(ctx context.Context) (int64, error) {
	id, err := t.db.NextID(ctx, t.kind)
	if err != nil {
		return 0, averrors.Storage("next id", t.kind, err)
	}
	return id, nil
}

func (t *Table[E]) decode(payload string) (E, error) {
	var e E
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		return e, averrors.Storage("decode", t.kind, err)
	}
	return e, nil
}
