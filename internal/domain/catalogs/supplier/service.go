package supplier

import (
	"context"
	"time"

	"bakehouse/internal/core/apperror"
	"bakehouse/internal/core/id"
	"bakehouse/internal/core/tx"
)

// Service provides business logic for the Supplier catalog.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new Supplier service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{repo: repo, txManager: txManager}
}

// Create validates the supplier, enforces name uniqueness and persists it.
func (s *Service) Create(ctx context.Context, sup *Supplier) error {
	if err := sup.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if existing, err := s.repo.GetByName(ctx, sup.Name); err == nil && existing.ID != sup.ID {
			return apperror.NewDuplicate("supplier", "name", sup.Name)
		}
		return s.repo.Create(ctx, sup)
	})
}

// Update validates and persists supplier changes.
func (s *Service) Update(ctx context.Context, sup *Supplier) error {
	if err := sup.Validate(ctx); err != nil {
		return err
	}
	sup.UpdatedAt = time.Now().UTC()
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, sup)
	})
}

// Get retrieves a supplier by ID.
func (s *Service) Get(ctx context.Context, supplierID id.ID) (*Supplier, error) {
	return s.repo.GetByID(ctx, supplierID)
}

// List retrieves suppliers.
func (s *Service) List(ctx context.Context, activeOnly bool) ([]*Supplier, error) {
	return s.repo.List(ctx, activeOnly)
}

// Deactivate soft-deactivates a supplier.
func (s *Service) Deactivate(ctx context.Context, supplierID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		sup, err := s.repo.GetByID(ctx, supplierID)
		if err != nil {
			return err
		}
		sup.IsActive = false
		sup.UpdatedAt = time.Now().UTC()
		return s.repo.Update(ctx, sup)
	})
}
