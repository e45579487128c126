// Package memory provides in-memory repository implementations backing tests
// and seed dry-runs. One Store holds all tables behind a single mutex; the
// transaction manager snapshots the store so a failed transaction restores
// the exact pre-transaction state, mirroring the Postgres rollback behavior.
package memory

import (
	"context"
	"sync"

	"bakehouse/internal/core/id"
	"bakehouse/internal/domain/catalogs/item"
	"bakehouse/internal/domain/catalogs/supplier"
	"bakehouse/internal/domain/inventory"
	"bakehouse/internal/domain/recipes"
)

// Store is the shared in-memory database.
type Store struct {
	mu sync.Mutex

	items     map[id.ID]item.Item
	suppliers map[id.ID]supplier.Supplier
	recipes   map[id.ID]recipes.Recipe
	lots      map[id.ID]inventory.StockLot
	movements []inventory.StockMovement
	sequences map[string]int64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		items:     make(map[id.ID]item.Item),
		suppliers: make(map[id.ID]supplier.Supplier),
		recipes:   make(map[id.ID]recipes.Recipe),
		lots:      make(map[id.ID]inventory.StockLot),
		sequences: make(map[string]int64),
	}
}

type snapshot struct {
	items     map[id.ID]item.Item
	suppliers map[id.ID]supplier.Supplier
	recipes   map[id.ID]recipes.Recipe
	lots      map[id.ID]inventory.StockLot
	movements []inventory.StockMovement
	sequences map[string]int64
}

func (s *Store) snapshot() snapshot {
	snap := snapshot{
		items:     make(map[id.ID]item.Item, len(s.items)),
		suppliers: make(map[id.ID]supplier.Supplier, len(s.suppliers)),
		recipes:   make(map[id.ID]recipes.Recipe, len(s.recipes)),
		lots:      make(map[id.ID]inventory.StockLot, len(s.lots)),
		movements: make([]inventory.StockMovement, len(s.movements)),
		sequences: make(map[string]int64, len(s.sequences)),
	}
	for k, v := range s.items {
		snap.items[k] = v
	}
	for k, v := range s.suppliers {
		snap.suppliers[k] = v
	}
	for k, v := range s.recipes {
		v.Items = append([]recipes.RecipeItem(nil), v.Items...)
		snap.recipes[k] = v
	}
	for k, v := range s.lots {
		snap.lots[k] = v
	}
	copy(snap.movements, s.movements)
	for k, v := range s.sequences {
		snap.sequences[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.items = snap.items
	s.suppliers = snap.suppliers
	s.recipes = snap.recipes
	s.lots = snap.lots
	s.movements = snap.movements
	s.sequences = snap.sequences
}

type txKey struct{}

func inTx(ctx context.Context) bool {
	return ctx.Value(txKey{}) != nil
}

// lock acquires the store mutex unless the context already holds the
// transaction lock. Returns the matching unlock.
func (s *Store) lock(ctx context.Context) func() {
	if inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// TxManager serializes transactions on the store mutex and restores a
// snapshot when the transaction function fails. Nested calls reuse the
// outer transaction, like the Postgres manager.
type TxManager struct {
	store *Store
}

// NewTxManager creates a transaction manager over the store.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// RunInTransaction implements tx.Manager.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	snap := m.store.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, struct{}{})); err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}

// RunSerializable implements tx.SerializableManager. The store mutex already
// gives full serialization, so this is the same as RunInTransaction.
func (m *TxManager) RunSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.RunInTransaction(ctx, fn)
}
