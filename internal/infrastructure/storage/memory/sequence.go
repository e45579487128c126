package memory

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// SequenceQuerier adapts the store's sequence map to the numerator's Querier
// interface so item codes work without Postgres (tests, seed dry-runs).
// It only understands the numerator's UPSERT shape: args are the sequence
// key and, for range reservation, the increment.
type SequenceQuerier struct {
	store *Store
}

// NewSequenceQuerier creates a sequence querier over the store.
func NewSequenceQuerier(store *Store) *SequenceQuerier {
	return &SequenceQuerier{store: store}
}

type seqRow struct {
	val int64
	err error
}

func (r *seqRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = r.val
		}
	}
	return nil
}

func (q *SequenceQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	unlock := q.store.lock(ctx)
	defer unlock()

	if len(args) == 0 {
		return &seqRow{err: fmt.Errorf("sequence key is required")}
	}
	key, ok := args[0].(string)
	if !ok {
		return &seqRow{err: fmt.Errorf("sequence key must be a string")}
	}

	var increment int64 = 1
	if len(args) > 1 {
		if v, ok := args[1].(int64); ok {
			increment = v
		}
	}

	q.store.sequences[key] += increment
	return &seqRow{val: q.store.sequences[key]}
}
