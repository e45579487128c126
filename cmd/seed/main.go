// Package main provides a CLI tool for bootstrapping the schema and seeding
// the database with demo bakery data.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"bakehouse/internal/core/id"
	"bakehouse/internal/core/types"
	"bakehouse/internal/domain/catalogs/item"
	"bakehouse/internal/domain/catalogs/supplier"
	"bakehouse/internal/domain/inventory"
	"bakehouse/internal/domain/recipes"
	"bakehouse/internal/infrastructure/storage/postgres"
	"bakehouse/internal/infrastructure/storage/postgres/catalog_repo"
	"bakehouse/internal/infrastructure/storage/postgres/register_repo"
	"bakehouse/pkg/config"
	"bakehouse/pkg/logger"
	"bakehouse/pkg/numerator"
)

const seedActor = "seed"

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("failed to load configuration", "error", err)
	}

	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DB.ConnectionString()))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	if os.Getenv("SEED_SCHEMA") != "false" {
		if err := applySchema(ctx, pool); err != nil {
			log.Fatalw("failed to apply schema", "error", err)
		}
		log.Info("schema applied")
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, pool, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func applySchema(ctx context.Context, pool *postgres.Pool) error {
	_, err := pool.Exec(ctx, schemaSQL)
	return err
}

func seedDemoData(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	txManager := postgres.NewTxManager(pool)

	itemRepo := catalog_repo.NewItemRepo(txManager)
	supplierRepo := catalog_repo.NewSupplierRepo(txManager)
	recipeRepo := catalog_repo.NewRecipeRepo(txManager)
	stockRepo := register_repo.NewStockRepo(txManager)

	itemService := item.NewService(itemRepo, numerator.New(pool), txManager)
	supplierService := supplier.NewService(supplierRepo, txManager)
	recipeService := recipes.NewService(recipeRepo, itemRepo, txManager)
	stockService := inventory.NewService(stockRepo, itemRepo, recipeRepo, txManager)

	// Supplier
	mill := supplier.New("Hilltop Mill")
	contact := "orders@hilltopmill.example"
	mill.Email = &contact
	if err := supplierService.Create(ctx, mill); err != nil {
		return fmt.Errorf("create supplier: %w", err)
	}

	// Ingredients
	flour := item.New("Bread Flour", item.CategoryIngredient, item.UnitKg)
	flour.ReorderLevel = decimal.NewFromInt(25)
	flour.MinOrderQty = decimal.NewFromInt(50)
	if err := itemService.Create(ctx, flour); err != nil {
		return fmt.Errorf("create flour: %w", err)
	}

	yeast := item.New("Fresh Yeast", item.CategoryIngredient, item.UnitG)
	yeast.ReorderLevel = decimal.NewFromInt(200)
	yeast.IsPerishable = true
	shelfLife := 21
	yeast.ShelfLifeDays = &shelfLife
	if err := itemService.Create(ctx, yeast); err != nil {
		return fmt.Errorf("create yeast: %w", err)
	}

	// Finished good and its recipe
	bread := item.New("Sourdough Loaf", item.CategoryFinishedGood, item.UnitPcs)
	bread.IsPerishable = true
	breadShelf := 3
	bread.ShelfLifeDays = &breadShelf
	if err := itemService.Create(ctx, bread); err != nil {
		return fmt.Errorf("create bread: %w", err)
	}

	loaf := recipes.New("Sourdough Loaf", bread.ID, decimal.NewFromInt(1), item.UnitPcs)
	loaf.Items = []recipes.RecipeItem{
		{
			ItemID:     flour.ID,
			Qty:        decimal.RequireFromString("0.5"),
			Unit:       item.UnitKg,
			LossFactor: decimal.NewFromInt(5),
		},
		{
			ItemID:     yeast.ID,
			Qty:        decimal.NewFromInt(15),
			Unit:       item.UnitG,
			LossFactor: types.Zero(),
		},
	}
	if err := recipeService.Create(ctx, loaf); err != nil {
		return fmt.Errorf("create recipe: %w", err)
	}

	// Opening stock
	millID := mill.ID
	if _, err := stockService.Receive(ctx, inventory.ReceiveRequest{
		ItemID:     flour.ID,
		LotNo:      "FLOUR-0001",
		Qty:        decimal.NewFromInt(50),
		Actor:      seedActor,
		SupplierID: &millID,
		UnitCost:   decimal.RequireFromString("1.20"),
		Reason:     "Opening stock",
	}); err != nil {
		return fmt.Errorf("receive flour: %w", err)
	}

	expires := time.Now().AddDate(0, 0, 21)
	if _, err := stockService.Receive(ctx, inventory.ReceiveRequest{
		ItemID:     yeast.ID,
		LotNo:      "YEAST-0001",
		Qty:        decimal.NewFromInt(500),
		Actor:      seedActor,
		SupplierID: &millID,
		ExpiresAt:  &expires,
		UnitCost:   decimal.RequireFromString("0.02"),
		Reason:     "Opening stock",
	}); err != nil {
		return fmt.Errorf("receive yeast: %w", err)
	}

	// One demo production run
	if _, err := stockService.Produce(ctx, inventory.ProduceRequest{
		RecipeID:      loaf.ID,
		ProductionQty: decimal.NewFromInt(12),
		LotNo:         "BAKE-" + time.Now().Format("20060102"),
		Actor:         seedActor,
	}); err != nil {
		return fmt.Errorf("produce bread: %w", err)
	}

	log.Infow("demo data seeded",
		"supplier", mill.ID,
		"items", []id.ID{flour.ID, yeast.ID, bread.ID},
		"recipe", loaf.ID,
	)

	return nil
}
