package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"bakehouse/internal/core/apperror"
	"bakehouse/internal/core/id"
	"bakehouse/internal/core/tx"
	"bakehouse/internal/core/types"
	"bakehouse/internal/domain/catalogs/item"
	"bakehouse/internal/domain/recipes"
	"bakehouse/pkg/logger"
)

// Service is the stock ledger engine. Every public mutating operation runs
// inside exactly one transaction boundary; nested engine calls (production
// consuming ingredients) reuse the caller's transaction.
type Service struct {
	repo      Repository
	items     item.Repository
	recipes   recipes.Repository
	txManager tx.SerializableManager
}

// NewService creates the inventory service.
func NewService(repo Repository, items item.Repository, rcps recipes.Repository, txManager tx.SerializableManager) *Service {
	return &Service{
		repo:      repo,
		items:     items,
		recipes:   rcps,
		txManager: txManager,
	}
}

// --- Receiving ---

// ReceiveRequest describes an inbound stock registration.
type ReceiveRequest struct {
	ItemID id.ID
	LotNo  string
	Qty    types.Quantity
	Actor  string

	SupplierID *id.ID
	// ExpiresAt overrides the shelf-life-derived default for perishables.
	ExpiresAt *time.Time
	UnitCost  types.Money
	RefNo     *string
	Reason    string
	Notes     *string
}

// Receive creates a stock lot and its paired receive movement. There is no
// availability constraint: receiving only adds stock. When no expiry is
// given and the item is perishable, received_at + shelf_life_days is used.
func (s *Service) Receive(ctx context.Context, req ReceiveRequest) (*StockLot, error) {
	lot, _, err := s.receiveLot(ctx, req, MovementReceive)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock received",
		"item_id", req.ItemID,
		"lot_no", lot.LotNo,
		"qty", lot.Qty,
	)
	return lot, nil
}

// receiveLot is the shared inbound path: Receive, the production output lot
// and positive lot-less adjustments all land here with their movement type.
func (s *Service) receiveLot(ctx context.Context, req ReceiveRequest, movType MovementType) (*StockLot, *StockMovement, error) {
	if !req.Qty.IsPositive() {
		return nil, nil, apperror.NewInvalidQuantity(req.Qty)
	}
	if req.LotNo == "" {
		return nil, nil, apperror.NewValidation("lot number is required").
			WithDetail("field", "lotNo")
	}

	var (
		lot *StockLot
		mov *StockMovement
	)

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		it, err := s.items.GetByID(ctx, req.ItemID)
		if err != nil {
			return err
		}

		if _, err := s.repo.GetLotByNo(ctx, req.ItemID, req.LotNo); err == nil {
			return apperror.NewDuplicate("stock lot", "lot_no", req.LotNo)
		} else if !apperror.IsNotFound(err) {
			return err
		}

		now := time.Now().UTC()
		expiresAt := req.ExpiresAt
		if expiresAt == nil {
			expiresAt = it.DefaultExpiry(now)
		}

		lot = &StockLot{
			ID:         id.New(),
			ItemID:     req.ItemID,
			LotNo:      req.LotNo,
			Qty:        types.RoundQty(req.Qty),
			Unit:       it.Unit,
			ReceivedAt: now,
			ExpiresAt:  expiresAt,
			UnitCost:   types.RoundQty(req.UnitCost),
			SupplierID: req.SupplierID,
			Notes:      req.Notes,
			CreatedBy:  req.Actor,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := s.repo.CreateLot(ctx, lot); err != nil {
			return fmt.Errorf("create lot: %w", err)
		}

		mov = &StockMovement{
			ID:        id.New(),
			ItemID:    req.ItemID,
			LotID:     &lot.ID,
			Type:      movType,
			Qty:       lot.Qty,
			Unit:      it.Unit,
			RefNo:     req.RefNo,
			Reason:    req.Reason,
			Notes:     req.Notes,
			Actor:     req.Actor,
			CreatedAt: now,
		}
		if err := s.repo.CreateMovements(ctx, []*StockMovement{mov}); err != nil {
			return fmt.Errorf("create movement: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return lot, mov, nil
}

// --- Consumption ---

// ConsumeRequest describes an outbound stock operation.
type ConsumeRequest struct {
	ItemID id.ID
	Qty    types.Quantity
	Reason string
	Actor  string

	// LotNo pins consumption to a specific lot first; any remainder
	// overflows into the other lots in policy order.
	LotNo *string
	RefNo *string
	Notes *string

	// Type defaults to consume. Spoilage write-offs and negative lot-less
	// adjustments reuse this engine with their own movement type.
	Type MovementType
}

// Consume removes stock atomically: lots are read with row locks, decrements
// and movements commit together or not at all. Insufficient total stock
// fails before anything is written.
func (s *Service) Consume(ctx context.Context, req ConsumeRequest) ([]*StockMovement, error) {
	if !req.Qty.IsPositive() {
		return nil, apperror.NewInvalidQuantity(req.Qty)
	}

	movType := req.Type
	if movType == "" {
		movType = MovementConsume
	}
	if !movType.IsOutbound() && movType != MovementAdjust {
		return nil, apperror.NewValidation("movement type is not outbound").
			WithDetail("type", string(movType))
	}

	var movements []*StockMovement

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		it, err := s.items.GetByID(ctx, req.ItemID)
		if err != nil {
			return err
		}

		lots, err := s.repo.GetLiveLotsForUpdate(ctx, req.ItemID)
		if err != nil {
			return fmt.Errorf("lock lots: %w", err)
		}

		plan, err := s.planWithPreferred(ctx, it, lots, req)
		if err != nil {
			return err
		}

		movements, err = s.applyPlan(ctx, it, plan, movType, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock consumed",
		"item_id", req.ItemID,
		"qty", req.Qty,
		"type", string(movType),
		"lots_touched", len(movements),
	)
	return movements, nil
}

// planWithPreferred builds the allocation plan, honoring a caller-pinned lot.
// The pinned lot is drained first even when policy order would pick another
// lot; only the overflow follows policy order.
func (s *Service) planWithPreferred(ctx context.Context, it *item.Item, lots []*StockLot, req ConsumeRequest) ([]Allocation, error) {
	if req.LotNo == nil {
		return PlanConsumption(it, lots, req.Qty)
	}

	preferred, err := s.repo.GetLotByNoForUpdate(ctx, req.ItemID, *req.LotNo)
	if err != nil {
		return nil, err
	}

	rest := make([]*StockLot, 0, len(lots))
	available := preferred.Qty
	for _, l := range lots {
		if l.ID == preferred.ID {
			continue
		}
		rest = append(rest, l)
		available = available.Add(l.Qty)
	}

	if available.LessThan(req.Qty) {
		return nil, apperror.NewInsufficientStock(it.ID.String(), req.Qty, available)
	}

	take := types.Min(preferred.Qty, req.Qty)
	plan := make([]Allocation, 0, 1+len(rest))
	if take.IsPositive() {
		plan = append(plan, Allocation{Lot: preferred, Qty: take})
	}

	remaining := req.Qty.Sub(take)
	if remaining.IsPositive() {
		overflow, err := PlanConsumption(it, rest, remaining)
		if err != nil {
			return nil, err
		}
		plan = append(plan, overflow...)
	}

	return plan, nil
}

// applyPlan decrements lots and writes one movement per lot touched.
// Overflow movements past a pinned lot note the lot they overflowed from.
func (s *Service) applyPlan(ctx context.Context, it *item.Item, plan []Allocation, movType MovementType, req ConsumeRequest) ([]*StockMovement, error) {
	now := time.Now().UTC()
	movements := make([]*StockMovement, 0, len(plan))

	for i, alloc := range plan {
		amount := types.RoundQty(alloc.Qty)
		if !amount.IsPositive() {
			continue
		}

		newQty := alloc.Lot.Qty.Sub(amount)
		if newQty.IsNegative() {
			return nil, apperror.NewNegativeLotQuantity(alloc.Lot.LotNo, alloc.Lot.Qty, amount)
		}
		if err := s.repo.UpdateLotQty(ctx, alloc.Lot.ID, newQty); err != nil {
			return nil, fmt.Errorf("decrement lot %s: %w", alloc.Lot.LotNo, err)
		}
		alloc.Lot.Qty = newQty

		notes := req.Notes
		if req.LotNo != nil && i > 0 {
			overflow := fmt.Sprintf("overflow from lot %s", *req.LotNo)
			if notes != nil {
				overflow = *notes + "; " + overflow
			}
			notes = &overflow
		}

		movQty := amount
		if movType == MovementAdjust {
			movQty = amount.Neg()
		}

		lotID := alloc.Lot.ID
		movements = append(movements, &StockMovement{
			ID:        id.New(),
			ItemID:    req.ItemID,
			LotID:     &lotID,
			Type:      movType,
			Qty:       movQty,
			Unit:      it.Unit,
			RefNo:     req.RefNo,
			Reason:    req.Reason,
			Notes:     notes,
			Actor:     req.Actor,
			CreatedAt: now,
		})
	}

	if err := s.repo.CreateMovements(ctx, movements); err != nil {
		return nil, fmt.Errorf("create movements: %w", err)
	}
	return movements, nil
}

// --- Production ---

// ProduceRequest describes one production run.
type ProduceRequest struct {
	RecipeID      id.ID
	ProductionQty types.Quantity
	LotNo         string
	Actor         string

	ExpiresAt *time.Time
	// UnitCost overrides the cost derived from ingredient weighted averages.
	UnitCost *types.Money
	Notes    *string
}

// Produce runs a recipe in one serializable transaction: derive loss-adjusted
// requirements, validate every ingredient against locked stock (collecting
// all shortfalls before touching anything), consume the ingredients, then
// register the finished-goods lot. Any failure rolls back the whole run.
func (s *Service) Produce(ctx context.Context, req ProduceRequest) (*StockLot, error) {
	if !req.ProductionQty.IsPositive() {
		return nil, apperror.NewInvalidQuantity(req.ProductionQty)
	}

	var out *StockLot

	err := s.txManager.RunSerializable(ctx, func(ctx context.Context) error {
		recipe, err := s.recipes.GetByID(ctx, req.RecipeID)
		if err != nil {
			return err
		}
		if !recipe.IsActive {
			return apperror.NewBusinessRule("RECIPE_INACTIVE", "recipe is not active").
				WithDetail("recipeId", recipe.ID.String())
		}
		if len(recipe.Items) == 0 {
			return apperror.NewRecipeConfiguration("recipe has no ingredients").
				WithDetail("recipeId", recipe.ID.String())
		}

		reqs, err := recipe.Requirements(req.ProductionQty)
		if err != nil {
			return err
		}

		// Ingredients are locked in item-ID order so two concurrent runs of
		// overlapping recipes cannot deadlock.
		sort.Slice(reqs, func(i, j int) bool {
			return reqs[i].ItemID.String() < reqs[j].ItemID.String()
		})

		totalCost, shortages, err := s.checkIngredients(ctx, reqs)
		if err != nil {
			return err
		}
		if len(shortages) > 0 {
			return apperror.NewInsufficientIngredients(recipe.ID.String(), shortages)
		}

		refNo := fmt.Sprintf("PROD-%s", recipe.ID)
		reason := fmt.Sprintf("Production: %s", recipe.Name)
		for _, r := range reqs {
			if _, err := s.Consume(ctx, ConsumeRequest{
				ItemID: r.ItemID,
				Qty:    r.Qty,
				Reason: reason,
				Actor:  req.Actor,
				RefNo:  &refNo,
			}); err != nil {
				return fmt.Errorf("consume ingredient %s: %w", r.ItemID, err)
			}
		}

		unitCost := types.Zero()
		if req.UnitCost != nil {
			unitCost = *req.UnitCost
		} else if totalCost.IsPositive() {
			unitCost = totalCost.Div(req.ProductionQty)
		}

		out, _, err = s.receiveLot(ctx, ReceiveRequest{
			ItemID:    recipe.ProductItemID,
			LotNo:     req.LotNo,
			Qty:       req.ProductionQty,
			Actor:     req.Actor,
			ExpiresAt: req.ExpiresAt,
			UnitCost:  unitCost,
			RefNo:     &refNo,
			Reason:    reason,
			Notes:     req.Notes,
		}, MovementProduce)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "production completed",
		"recipe_id", req.RecipeID,
		"lot_no", out.LotNo,
		"qty", out.Qty,
	)
	return out, nil
}

// checkIngredients locks each ingredient's lots, accumulates shortfalls and
// the ingredient cost of the run. All shortfalls are collected so the caller
// can report the full list, not just the first missing ingredient.
func (s *Service) checkIngredients(ctx context.Context, reqs []recipes.Requirement) (types.Money, []apperror.IngredientShortage, error) {
	totalCost := types.Zero()
	var shortages []apperror.IngredientShortage

	for _, r := range reqs {
		it, err := s.items.GetByID(ctx, r.ItemID)
		if err != nil {
			return types.Zero(), nil, err
		}

		lots, err := s.repo.GetLiveLotsForUpdate(ctx, r.ItemID)
		if err != nil {
			return types.Zero(), nil, fmt.Errorf("lock lots for %s: %w", r.ItemID, err)
		}

		available := types.Zero()
		for _, l := range lots {
			available = available.Add(l.Qty)
		}

		if available.LessThan(r.Qty) {
			shortages = append(shortages, apperror.IngredientShortage{
				ItemID:    r.ItemID.String(),
				ItemName:  it.Name,
				Needed:    r.Qty.String(),
				Available: available.String(),
				Shortage:  r.Qty.Sub(available).String(),
			})
			continue
		}

		totalCost = totalCost.Add(r.Qty.Mul(weightedUnitCost(lots)))
	}

	return totalCost, shortages, nil
}

// --- Adjustment ---

// AdjustRequest describes a manual stock correction. Qty is signed.
type AdjustRequest struct {
	ItemID id.ID
	Qty    types.Quantity
	Reason string
	Actor  string

	LotNo *string
	RefNo *string
	Notes *string
}

// Adjust corrects stock up or down. Positive without a lot registers a new
// ADJ-<timestamp> lot; negative without a lot consumes in policy order; with
// a lot the correction lands on that lot. Adjust movements store the signed
// quantity.
func (s *Service) Adjust(ctx context.Context, req AdjustRequest) ([]*StockMovement, error) {
	if req.Qty.IsZero() {
		return nil, apperror.NewInvalidQuantity(req.Qty)
	}

	if req.LotNo == nil {
		if req.Qty.IsPositive() {
			lotNo := fmt.Sprintf("ADJ-%s", time.Now().UTC().Format("20060102150405"))
			_, mov, err := s.receiveLot(ctx, ReceiveRequest{
				ItemID: req.ItemID,
				LotNo:  lotNo,
				Qty:    req.Qty,
				Actor:  req.Actor,
				RefNo:  req.RefNo,
				Reason: req.Reason,
				Notes:  req.Notes,
			}, MovementAdjust)
			if err != nil {
				return nil, err
			}
			return []*StockMovement{mov}, nil
		}

		return s.Consume(ctx, ConsumeRequest{
			ItemID: req.ItemID,
			Qty:    req.Qty.Neg(),
			Reason: req.Reason,
			Actor:  req.Actor,
			RefNo:  req.RefNo,
			Notes:  req.Notes,
			Type:   MovementAdjust,
		})
	}

	var mov *StockMovement

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		it, err := s.items.GetByID(ctx, req.ItemID)
		if err != nil {
			return err
		}

		lot, err := s.repo.GetLotByNoForUpdate(ctx, req.ItemID, *req.LotNo)
		if err != nil {
			return err
		}

		amount := types.RoundQty(req.Qty)
		newQty := lot.Qty.Add(amount)
		if newQty.IsNegative() {
			return apperror.NewNegativeLotQuantity(lot.LotNo, lot.Qty, amount.Neg())
		}
		if err := s.repo.UpdateLotQty(ctx, lot.ID, newQty); err != nil {
			return fmt.Errorf("adjust lot %s: %w", lot.LotNo, err)
		}

		lotID := lot.ID
		mov = &StockMovement{
			ID:        id.New(),
			ItemID:    req.ItemID,
			LotID:     &lotID,
			Type:      MovementAdjust,
			Qty:       amount,
			Unit:      it.Unit,
			RefNo:     req.RefNo,
			Reason:    req.Reason,
			Notes:     req.Notes,
			Actor:     req.Actor,
			CreatedAt: time.Now().UTC(),
		}
		return s.repo.CreateMovements(ctx, []*StockMovement{mov})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock adjusted",
		"item_id", req.ItemID,
		"lot_no", *req.LotNo,
		"qty", req.Qty,
	)
	return []*StockMovement{mov}, nil
}

// --- Queries & costing ---

// AvailableLots returns the item's live lots in consumption order. This is
// the plan view: what Consume would drain, in the order it would drain it.
func (s *Service) AvailableLots(ctx context.Context, itemID id.ID) ([]*StockLot, error) {
	it, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	lots, err := s.repo.GetLiveLots(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return OrderLots(it, lots), nil
}

// Movements returns movement history.
func (s *Service) Movements(ctx context.Context, filter MovementFilter) ([]*StockMovement, error) {
	return s.repo.ListMovements(ctx, filter)
}

// ItemUnitCost returns the weighted average unit cost over live lots, zero
// when the item has no stock. Pure read, no caching.
func (s *Service) ItemUnitCost(ctx context.Context, itemID id.ID) (types.Money, error) {
	lots, err := s.repo.GetLiveLots(ctx, itemID)
	if err != nil {
		return types.Zero(), err
	}
	return weightedUnitCost(lots), nil
}

// RecipeCost returns the loss-adjusted ingredient cost of one recipe run.
func (s *Service) RecipeCost(ctx context.Context, recipeID id.ID) (types.Money, error) {
	recipe, err := s.recipes.GetByID(ctx, recipeID)
	if err != nil {
		return types.Zero(), err
	}

	total := types.Zero()
	for i := range recipe.Items {
		ri := &recipe.Items[i]
		lots, err := s.repo.GetLiveLots(ctx, ri.ItemID)
		if err != nil {
			return types.Zero(), err
		}
		total = total.Add(ri.AdjustedQty().Mul(weightedUnitCost(lots)))
	}
	return total, nil
}

// ProductionValidation is the answer to "can we produce N units right now".
type ProductionValidation struct {
	CanProduce bool                          `json:"canProduce"`
	Missing    []apperror.IngredientShortage `json:"missingIngredients"`
	TotalCost  types.Money                   `json:"totalCost"`
}

// ValidateProduction checks a production run against current stock without
// locking or mutating anything.
func (s *Service) ValidateProduction(ctx context.Context, recipeID id.ID, productionQty types.Quantity) (*ProductionValidation, error) {
	if !productionQty.IsPositive() {
		return nil, apperror.NewInvalidQuantity(productionQty)
	}

	recipe, err := s.recipes.GetByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	reqs, err := recipe.Requirements(productionQty)
	if err != nil {
		return nil, err
	}

	result := &ProductionValidation{
		CanProduce: true,
		Missing:    []apperror.IngredientShortage{},
		TotalCost:  types.Zero(),
	}

	for _, r := range reqs {
		it, err := s.items.GetByID(ctx, r.ItemID)
		if err != nil {
			return nil, err
		}
		lots, err := s.repo.GetLiveLots(ctx, r.ItemID)
		if err != nil {
			return nil, err
		}

		available := types.Zero()
		for _, l := range lots {
			available = available.Add(l.Qty)
		}
		result.TotalCost = result.TotalCost.Add(r.Qty.Mul(weightedUnitCost(lots)))

		if available.LessThan(r.Qty) {
			result.CanProduce = false
			result.Missing = append(result.Missing, apperror.IngredientShortage{
				ItemID:    r.ItemID.String(),
				ItemName:  it.Name,
				Needed:    r.Qty.String(),
				Available: available.String(),
				Shortage:  r.Qty.Sub(available).String(),
			})
		}
	}

	return result, nil
}

// weightedUnitCost is the quantity-weighted average cost of the given lots.
func weightedUnitCost(lots []*StockLot) types.Money {
	totalQty := types.Zero()
	totalCost := types.Zero()
	for _, l := range lots {
		if l.IsExhausted() {
			continue
		}
		totalQty = totalQty.Add(l.Qty)
		totalCost = totalCost.Add(l.Qty.Mul(l.UnitCost))
	}
	if !totalQty.IsPositive() {
		return types.Zero()
	}
	return totalCost.Div(totalQty)
}
