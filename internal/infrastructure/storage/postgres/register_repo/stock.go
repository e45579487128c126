// Package register_repo provides the PostgreSQL implementation of the stock
// register: lots and the append-only movement ledger.
package register_repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"bakehouse/internal/core/apperror"
	"bakehouse/internal/core/id"
	"bakehouse/internal/core/types"
	"bakehouse/internal/domain/inventory"
	"bakehouse/internal/infrastructure/storage/postgres"
)

const (
	stockLotsTable      = "reg_stock_lots"
	stockMovementsTable = "reg_stock_movements"
)

// StockRepo implements inventory.Repository.
type StockRepo struct {
	txm          *postgres.TxManager
	lotCols      []string
	movementCols []string
}

// NewStockRepo creates a new stock register repository.
func NewStockRepo(txm *postgres.TxManager) *StockRepo {
	return &StockRepo{
		txm:          txm,
		lotCols:      postgres.ExtractDBColumns[inventory.StockLot](),
		movementCols: postgres.ExtractDBColumns[inventory.StockMovement](),
	}
}

func (r *StockRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *StockRepo) lotSelect() squirrel.SelectBuilder {
	return r.builder().Select(r.lotCols...).From(stockLotsTable)
}

// CreateLot inserts a new lot.
func (r *StockRepo) CreateLot(ctx context.Context, lot *inventory.StockLot) error {
	q := r.builder().
		Insert(stockLotsTable).
		SetMap(postgres.StructToMap(lot))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewDuplicate("lot", "lot_no", lot.LotNo)
		}
		return fmt.Errorf("insert lot: %w", err)
	}

	return nil
}

// UpdateLotQty sets the remaining quantity of a lot.
func (r *StockRepo) UpdateLotQty(ctx context.Context, lotID id.ID, qty types.Quantity) error {
	q := r.builder().
		Update(stockLotsTable).
		Set("qty", qty).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": lotID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update lot qty: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("lot", lotID.String())
	}

	return nil
}

// GetLotByID retrieves a lot by ID.
func (r *StockRepo) GetLotByID(ctx context.Context, lotID id.ID) (*inventory.StockLot, error) {
	q := r.lotSelect().
		Where(squirrel.Eq{"id": lotID}).
		Limit(1)

	return r.getLot(ctx, q, lotID.String())
}

// GetLotByNo retrieves a lot by item and lot number.
func (r *StockRepo) GetLotByNo(ctx context.Context, itemID id.ID, lotNo string) (*inventory.StockLot, error) {
	q := r.lotSelect().
		Where(squirrel.Eq{"item_id": itemID, "lot_no": lotNo}).
		Limit(1)

	return r.getLot(ctx, q, lotNo)
}

// GetLotByNoForUpdate retrieves a lot by item and lot number with a row lock.
// Must run inside a transaction.
func (r *StockRepo) GetLotByNoForUpdate(ctx context.Context, itemID id.ID, lotNo string) (*inventory.StockLot, error) {
	q := r.lotSelect().
		Where(squirrel.Eq{"item_id": itemID, "lot_no": lotNo}).
		Suffix("FOR UPDATE")

	return r.getLot(ctx, q, lotNo)
}

func (r *StockRepo) getLot(ctx context.Context, q squirrel.SelectBuilder, key string) (*inventory.StockLot, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lot inventory.StockLot
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &lot, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("lot", key)
		}
		return nil, fmt.Errorf("get lot: %w", err)
	}

	return &lot, nil
}

func (r *StockRepo) liveLotQuery(itemID id.ID, forUpdate bool) squirrel.SelectBuilder {
	q := r.lotSelect().
		Where(squirrel.Eq{"item_id": itemID}).
		Where(squirrel.Gt{"qty": 0}).
		OrderBy("lot_no ASC")
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}
	return q
}

// GetLiveLots returns lots with remaining quantity for an item.
func (r *StockRepo) GetLiveLots(ctx context.Context, itemID id.ID) ([]*inventory.StockLot, error) {
	return r.selectLots(ctx, r.liveLotQuery(itemID, false))
}

// GetLiveLotsForUpdate locks and returns lots with remaining quantity.
// Lots are locked in lot_no order so concurrent consumers acquire row locks
// in the same sequence. Must run inside a transaction.
func (r *StockRepo) GetLiveLotsForUpdate(ctx context.Context, itemID id.ID) ([]*inventory.StockLot, error) {
	return r.selectLots(ctx, r.liveLotQuery(itemID, true))
}

// ExpiredLots returns live lots already past expiry at asOf.
func (r *StockRepo) ExpiredLots(ctx context.Context, asOf time.Time) ([]*inventory.StockLot, error) {
	q := r.lotSelect().
		Where(squirrel.Gt{"qty": 0}).
		Where(squirrel.NotEq{"expires_at": nil}).
		Where(squirrel.LtOrEq{"expires_at": asOf}).
		OrderBy("expires_at ASC", "lot_no ASC")

	return r.selectLots(ctx, q)
}

// ExpiringLots returns live lots expiring within days of asOf, excluding
// lots that are already expired.
func (r *StockRepo) ExpiringLots(ctx context.Context, asOf time.Time, days int) ([]*inventory.StockLot, error) {
	q := r.lotSelect().
		Where(squirrel.Gt{"qty": 0}).
		Where(squirrel.Gt{"expires_at": asOf}).
		Where(squirrel.LtOrEq{"expires_at": asOf.AddDate(0, 0, days)}).
		OrderBy("expires_at ASC", "lot_no ASC")

	return r.selectLots(ctx, q)
}

func (r *StockRepo) selectLots(ctx context.Context, q squirrel.SelectBuilder) ([]*inventory.StockLot, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lots []*inventory.StockLot
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &lots, sql, args...); err != nil {
		return nil, fmt.Errorf("select lots: %w", err)
	}

	return lots, nil
}

// TotalStock sums live lot quantities per item.
func (r *StockRepo) TotalStock(ctx context.Context) ([]inventory.ItemStock, error) {
	q := r.builder().
		Select("item_id", "SUM(qty) AS total").
		From(stockLotsTable).
		Where(squirrel.Gt{"qty": 0}).
		GroupBy("item_id").
		OrderBy("item_id ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var totals []inventory.ItemStock
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &totals, sql, args...); err != nil {
		return nil, fmt.Errorf("select totals: %w", err)
	}

	return totals, nil
}

// CreateMovements batch inserts ledger entries.
func (r *StockRepo) CreateMovements(ctx context.Context, movements []*inventory.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}

	// Fast path: COPY when inside a transaction.
	if tx := r.txm.GetTx(ctx); tx != nil {
		inserter := postgres.NewBatchInserter(r.txm)
		rows := make([][]any, 0, len(movements))
		for _, m := range movements {
			data := postgres.StructToMap(m)
			row := make([]any, 0, len(r.movementCols))
			for _, col := range r.movementCols {
				row = append(row, data[col])
			}
			rows = append(rows, row)
		}
		if _, err := inserter.CopyFromSlice(ctx, stockMovementsTable, r.movementCols, rows); err != nil {
			return fmt.Errorf("copy movements: %w", err)
		}
		return nil
	}

	// Fallback: non-transactional insert. Prefer calling inside a tx.
	q := r.builder().Insert(stockMovementsTable).Columns(r.movementCols...)
	for _, m := range movements {
		data := postgres.StructToMap(m)
		vals := make([]any, 0, len(r.movementCols))
		for _, col := range r.movementCols {
			vals = append(vals, data[col])
		}
		q = q.Values(vals...)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movements: %w", err)
	}

	return nil
}

func (r *StockRepo) movementQuery(filter inventory.MovementFilter) squirrel.SelectBuilder {
	q := r.builder().
		Select(r.movementCols...).
		From(stockMovementsTable)

	if filter.ItemID != nil {
		q = q.Where(squirrel.Eq{"item_id": *filter.ItemID})
	}
	if filter.LotID != nil {
		q = q.Where(squirrel.Eq{"lot_id": *filter.LotID})
	}
	if filter.Type != nil {
		q = q.Where(squirrel.Eq{"type": *filter.Type})
	}
	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.From})
	}
	if filter.To != nil {
		q = q.Where(squirrel.Lt{"created_at": *filter.To})
	}

	q = q.OrderBy("created_at ASC", "id ASC")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	return q
}

// ListMovements retrieves ledger entries with filtering and pagination.
func (r *StockRepo) ListMovements(ctx context.Context, filter inventory.MovementFilter) ([]*inventory.StockMovement, error) {
	sql, args, err := r.movementQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []*inventory.StockMovement
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}

	return movements, nil
}

// SumSignedMovements returns the signed ledger total for one item.
// Adjust rows carry their sign in qty; other rows store magnitudes and are
// signed by direction here, mirroring SignedQty on the model.
func (r *StockRepo) SumSignedMovements(ctx context.Context, itemID id.ID) (types.Quantity, error) {
	sql := `
		SELECT COALESCE(SUM(
			CASE
				WHEN type = 'adjust' THEN qty
				WHEN type IN ('receive', 'produce') THEN qty
				ELSE -qty
			END
		), 0)
		FROM reg_stock_movements
		WHERE item_id = $1
	`

	var total types.Quantity
	err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, itemID).Scan(&total)
	if err != nil {
		return types.Zero(), fmt.Errorf("sum movements: %w", err)
	}

	return total, nil
}

var _ inventory.Repository = (*StockRepo)(nil)
