package item

import (
	"context"
	"fmt"
	"time"

	"bakehouse/internal/core/apperror"
	"bakehouse/internal/core/id"
	"bakehouse/internal/core/tx"
	"bakehouse/pkg/numerator"
)

// Service provides business logic for the Item catalog.
type Service struct {
	repo      Repository
	numerator *numerator.Service
	txManager tx.Manager
}

// NewService creates a new Item service.
func NewService(repo Repository, num *numerator.Service, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		numerator: num,
		txManager: txManager,
	}
}

// Create validates the item, assigns a code when none is given and persists it.
// Codes are six period digits plus a monthly four digit sequence (2026090001).
func (s *Service) Create(ctx context.Context, it *Item) error {
	if err := it.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if it.Code == "" {
			code, err := s.numerator.GetNextNumber(ctx, numerator.ItemCodeConfig(), nil, time.Now())
			if err != nil {
				return fmt.Errorf("generate item code: %w", err)
			}
			it.Code = code
		} else if existing, err := s.repo.GetByCode(ctx, it.Code); err == nil && existing.ID != it.ID {
			return apperror.NewDuplicate("item", "code", it.Code)
		}

		return s.repo.Create(ctx, it)
	})
}

// Update validates and persists item changes.
func (s *Service) Update(ctx context.Context, it *Item) error {
	if err := it.Validate(ctx); err != nil {
		return err
	}
	it.UpdatedAt = time.Now().UTC()
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, it)
	})
}

// Get retrieves an item by ID.
func (s *Service) Get(ctx context.Context, itemID id.ID) (*Item, error) {
	return s.repo.GetByID(ctx, itemID)
}

// GetByCode retrieves an item by its catalog code.
func (s *Service) GetByCode(ctx context.Context, code string) (*Item, error) {
	return s.repo.GetByCode(ctx, code)
}

// List retrieves items matching the filter.
func (s *Service) List(ctx context.Context, filter Filter) ([]*Item, error) {
	return s.repo.List(ctx, filter)
}

// Deactivate soft-deactivates an item. Items with stock history are never
// deleted, only switched inactive.
func (s *Service) Deactivate(ctx context.Context, itemID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		it, err := s.repo.GetByID(ctx, itemID)
		if err != nil {
			return err
		}
		it.IsActive = false
		it.UpdatedAt = time.Now().UTC()
		return s.repo.Update(ctx, it)
	})
}
