package dto

import (
	"bakehouse/internal/domain/catalogs/supplier"
)

// SupplierRequest creates or updates a supplier.
type SupplierRequest struct {
	Name          string  `json:"name" binding:"required"`
	ContactPerson *string `json:"contactPerson,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	Email         *string `json:"email,omitempty" binding:"omitempty,email"`
	Address       *string `json:"address,omitempty"`
}

// ToDomain builds a new Supplier from the request.
func (r SupplierRequest) ToDomain() *supplier.Supplier {
	sup := supplier.New(r.Name)
	r.Apply(sup)
	return sup
}

// Apply overwrites mutable fields on an existing supplier.
func (r SupplierRequest) Apply(sup *supplier.Supplier) {
	sup.Name = r.Name
	sup.ContactPerson = r.ContactPerson
	sup.Phone = r.Phone
	sup.Email = r.Email
	sup.Address = r.Address
}

// SupplierListResponse wraps the supplier catalog.
type SupplierListResponse struct {
	Items []*supplier.Supplier `json:"items"`
}
