package catalog_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"bakehouse/internal/core/apperror"
	"bakehouse/internal/core/id"
	"bakehouse/internal/domain/catalogs/supplier"
	"bakehouse/internal/infrastructure/storage/postgres"
)

const suppliersTable = "cat_suppliers"

// SupplierRepo implements supplier.Repository.
type SupplierRepo struct {
	txm  *postgres.TxManager
	cols []string
}

// NewSupplierRepo creates a new supplier repository.
func NewSupplierRepo(txm *postgres.TxManager) *SupplierRepo {
	return &SupplierRepo{
		txm:  txm,
		cols: postgres.ExtractDBColumns[supplier.Supplier](),
	}
}

func (r *SupplierRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *SupplierRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder().Select(r.cols...).From(suppliersTable)
}

// Create inserts a new supplier.
func (r *SupplierRepo) Create(ctx context.Context, sup *supplier.Supplier) error {
	q := r.builder().
		Insert(suppliersTable).
		SetMap(postgres.StructToMap(sup))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewDuplicate("supplier", "name", sup.Name)
		}
		return fmt.Errorf("insert supplier: %w", err)
	}

	return nil
}

// Update modifies an existing supplier.
func (r *SupplierRepo) Update(ctx context.Context, sup *supplier.Supplier) error {
	data := postgres.StructToMap(sup)
	delete(data, "id")
	delete(data, "created_at")

	q := r.builder().
		Update(suppliersTable).
		SetMap(data).
		Where(squirrel.Eq{"id": sup.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update supplier: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("supplier", sup.ID.String())
	}

	return nil
}

// GetByID retrieves a supplier by ID.
func (r *SupplierRepo) GetByID(ctx context.Context, supplierID id.ID) (*supplier.Supplier, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"id": supplierID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var sup supplier.Supplier
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &sup, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("supplier", supplierID.String())
		}
		return nil, fmt.Errorf("get supplier by id: %w", err)
	}

	return &sup, nil
}

// GetByName retrieves a supplier by exact name.
func (r *SupplierRepo) GetByName(ctx context.Context, name string) (*supplier.Supplier, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"name": name}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var sup supplier.Supplier
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &sup, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("supplier", name)
		}
		return nil, fmt.Errorf("get supplier by name: %w", err)
	}

	return &sup, nil
}

// List retrieves suppliers ordered by name.
func (r *SupplierRepo) List(ctx context.Context, activeOnly bool) ([]*supplier.Supplier, error) {
	q := r.baseSelect().OrderBy("name ASC")

	if activeOnly {
		q = q.Where(squirrel.Eq{"is_active": true})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var sups []*supplier.Supplier
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &sups, sql, args...); err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}

	return sups, nil
}

var _ supplier.Repository = (*SupplierRepo)(nil)
