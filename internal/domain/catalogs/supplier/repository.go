package supplier

import (
	"context"

	"bakehouse/internal/core/id"
)

// Repository defines the interface for Supplier persistence.
type Repository interface {
	Create(ctx context.Context, sup *Supplier) error
	Update(ctx context.Context, sup *Supplier) error
	GetByID(ctx context.Context, supplierID id.ID) (*Supplier, error)
	GetByName(ctx context.Context, name string) (*Supplier, error)
	List(ctx context.Context, activeOnly bool) ([]*Supplier, error)
}
