package memory

import (
	"context"

	"bakehouse/internal/core/apperror"
	"bakehouse/internal/core/id"
	"bakehouse/internal/domain/catalogs/supplier"
)

// SupplierRepository is the in-memory supplier.Repository.
type SupplierRepository struct {
	store *Store
}

// NewSupplierRepository creates an in-memory supplier repository.
func NewSupplierRepository(store *Store) *SupplierRepository {
	return &SupplierRepository{store: store}
}

func (r *SupplierRepository) Create(ctx context.Context, sup *supplier.Supplier) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	if _, ok := r.store.suppliers[sup.ID]; ok {
		return apperror.NewDuplicate("supplier", "id", sup.ID.String())
	}
	r.store.suppliers[sup.ID] = *sup
	return nil
}

func (r *SupplierRepository) Update(ctx context.Context, sup *supplier.Supplier) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	if _, ok := r.store.suppliers[sup.ID]; !ok {
		return apperror.NewNotFound("supplier", sup.ID)
	}
	r.store.suppliers[sup.ID] = *sup
	return nil
}

func (r *SupplierRepository) GetByID(ctx context.Context, supplierID id.ID) (*supplier.Supplier, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	sup, ok := r.store.suppliers[supplierID]
	if !ok {
		return nil, apperror.NewNotFound("supplier", supplierID)
	}
	return &sup, nil
}

func (r *SupplierRepository) GetByName(ctx context.Context, name string) (*supplier.Supplier, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	for _, sup := range r.store.suppliers {
		if sup.Name == name {
			found := sup
			return &found, nil
		}
	}
	return nil, apperror.NewNotFound("supplier", name)
}

func (r *SupplierRepository) List(ctx context.Context, activeOnly bool) ([]*supplier.Supplier, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	var out []*supplier.Supplier
	for _, sup := range r.store.suppliers {
		if activeOnly && !sup.IsActive {
			continue
		}
		found := sup
		out = append(out, &found)
	}
	sortByID(out, func(s *supplier.Supplier) id.ID { return s.ID })
	return out, nil
}
