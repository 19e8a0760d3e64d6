package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Tx is an open write transaction.
type Tx struct {
	tx *sql.Tx
}

// Put replaces the row (kind, id): delete then insert.
func (t *Tx) Put(ctx context.Context, kind string, id, parentID int64, payload []byte) error {
	if err := t.Delete(ctx, kind, id); err != nil {
		return err
	}
	_, err := t.tx.ExecContext(ctx,
		"INSERT INTO rows (kind, id, parent_id, payload) VALUES (?, ?, ?, ?)",
		kind, id, parentID, string(payload))
	if err != nil {
		return fmt.Errorf("insert %s %d: %w", kind, id, err)
	}
	return nil
}

// Delete removes the row (kind, id). A missing row is not an error.
func (t *Tx) Delete(ctx context.Context, kind string, id int64) error {
	if _, err := t.tx.ExecContext(ctx, "DELETE FROM rows WHERE kind = ? AND id = ?", kind, id); err != nil {
		return fmt.Errorf("delete %s %d: %w", kind, id, err)
	}
	return nil
}

// DeleteByParent removes every row of kind belonging to parentID.
func (t *Tx) DeleteByParent(ctx context.Context, kind string, parentID int64) (int64, error) {
	res, err := t.tx.ExecContext(ctx, "DELETE FROM rows WHERE kind = ? AND parent_id = ?", kind, parentID)
	if err != nil {
		return 0, fmt.Errorf("delete %s of parent %d: %w", kind, parentID, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// NextID reserves the next id for kind inside the transaction.
func (t *Tx) NextID(ctx context.Context, kind string) (int64, error) {
	var next, maxID int64
	err := t.tx.QueryRowContext(ctx, "SELECT next FROM sequences WHERE kind = ?", kind).Scan(&next)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("read %s sequence: %w", kind, err)
	}
	if err := t.tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(id), 0) FROM rows WHERE kind = ?", kind).Scan(&maxID); err != nil {
		return 0, fmt.Errorf("read max %s id: %w", kind, err)
	}

	id := max(next, maxID+1, 1)
	if _, err := t.tx.ExecContext(ctx,
		"INSERT INTO sequences (kind, next) VALUES (?, ?) ON CONFLICT(kind) DO UPDATE SET next = excluded.next",
		kind, id+1); err != nil {
		return 0, fmt.Errorf("advance %s sequence: %w", kind, err)
	}
	return id, nil
}
