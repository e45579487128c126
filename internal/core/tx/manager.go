// Package tx provides transaction management abstractions.
// This package defines interfaces that decouple domain logic from specific
// database implementations, following the Dependency Inversion Principle.
package tx

import (
	"context"
)

// Manager defines the contract for transaction management.
// Implementations handle BEGIN, COMMIT, ROLLBACK, and nested transaction support.
//
// Domain services depend on this interface, not concrete implementations.
// The actual implementation lives in infrastructure/storage.
//
// Every public stock operation (receive/consume/produce/adjust) runs inside
// exactly one RunInTransaction boundary: all lot and movement writes for one
// logical operation commit or roll back together.
type Manager interface {
	// RunInTransaction executes fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn succeeds, the transaction is committed.
	//
	// Nested calls reuse the existing transaction from context.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// SerializableManager extends Manager with serializable-isolation support.
// Produce uses it so that its validate-then-commit sequence cannot be
// interleaved with other mutations on the same items.
type SerializableManager interface {
	Manager

	// RunSerializable executes fn in a serializable transaction.
	RunSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}
