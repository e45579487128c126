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
	"bakehouse/internal/domain/recipes"
	"bakehouse/internal/infrastructure/storage/postgres"
)

const (
	recipesTable     = "cat_recipes"
	recipeItemsTable = "cat_recipe_items"
)

// RecipeRepo implements recipes.Repository. Ingredient lines live in a
// separate table and are replaced wholesale on update.
type RecipeRepo struct {
	txm      *postgres.TxManager
	cols     []string
	lineCols []string
}

// NewRecipeRepo creates a new recipe repository.
func NewRecipeRepo(txm *postgres.TxManager) *RecipeRepo {
	return &RecipeRepo{
		txm:      txm,
		cols:     postgres.ExtractDBColumns[recipes.Recipe](),
		lineCols: postgres.ExtractDBColumns[recipes.RecipeItem](),
	}
}

func (r *RecipeRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create inserts the recipe header and its ingredient lines.
func (r *RecipeRepo) Create(ctx context.Context, rec *recipes.Recipe) error {
	q := r.builder().
		Insert(recipesTable).
		SetMap(postgres.StructToMap(rec))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewDuplicate("recipe", "name", rec.Name)
		}
		return fmt.Errorf("insert recipe: %w", err)
	}

	return r.insertLines(ctx, rec.Items)
}

// Update replaces the recipe header and all ingredient lines.
// Callers run this inside a transaction via the recipes service.
func (r *RecipeRepo) Update(ctx context.Context, rec *recipes.Recipe) error {
	data := postgres.StructToMap(rec)
	delete(data, "id")
	delete(data, "created_at")

	q := r.builder().
		Update(recipesTable).
		SetMap(data).
		Where(squirrel.Eq{"id": rec.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update recipe: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("recipe", rec.ID.String())
	}

	delSQL, delArgs, err := r.builder().
		Delete(recipeItemsTable).
		Where(squirrel.Eq{"recipe_id": rec.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete lines: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, delSQL, delArgs...); err != nil {
		return fmt.Errorf("delete recipe lines: %w", err)
	}

	return r.insertLines(ctx, rec.Items)
}

func (r *RecipeRepo) insertLines(ctx context.Context, lines []recipes.RecipeItem) error {
	if len(lines) == 0 {
		return nil
	}

	q := r.builder().Insert(recipeItemsTable).Columns(r.lineCols...)
	for _, line := range lines {
		data := postgres.StructToMap(line)
		vals := make([]any, 0, len(r.lineCols))
		for _, col := range r.lineCols {
			vals = append(vals, data[col])
		}
		q = q.Values(vals...)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert recipe lines: %w", err)
	}

	return nil
}

// GetByID retrieves the recipe header together with its ingredient lines.
func (r *RecipeRepo) GetByID(ctx context.Context, recipeID id.ID) (*recipes.Recipe, error) {
	q := r.builder().Select(r.cols...).
		From(recipesTable).
		Where(squirrel.Eq{"id": recipeID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rec recipes.Recipe
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &rec, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("recipe", recipeID.String())
		}
		return nil, fmt.Errorf("get recipe by id: %w", err)
	}

	if err := r.loadLines(ctx, &rec); err != nil {
		return nil, err
	}

	return &rec, nil
}

// GetByProductItem retrieves the active recipe producing the given item.
func (r *RecipeRepo) GetByProductItem(ctx context.Context, itemID id.ID) (*recipes.Recipe, error) {
	q := r.builder().Select(r.cols...).
		From(recipesTable).
		Where(squirrel.Eq{"product_item_id": itemID}).
		Where(squirrel.Eq{"is_active": true}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rec recipes.Recipe
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &rec, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("recipe", itemID.String())
		}
		return nil, fmt.Errorf("get recipe by product: %w", err)
	}

	if err := r.loadLines(ctx, &rec); err != nil {
		return nil, err
	}

	return &rec, nil
}

// List retrieves recipe headers ordered by name. Lines are not loaded.
func (r *RecipeRepo) List(ctx context.Context, activeOnly bool) ([]*recipes.Recipe, error) {
	q := r.builder().Select(r.cols...).
		From(recipesTable).
		OrderBy("name ASC")

	if activeOnly {
		q = q.Where(squirrel.Eq{"is_active": true})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var recs []*recipes.Recipe
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &recs, sql, args...); err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}

	return recs, nil
}

func (r *RecipeRepo) loadLines(ctx context.Context, rec *recipes.Recipe) error {
	q := r.builder().Select(r.lineCols...).
		From(recipeItemsTable).
		Where(squirrel.Eq{"recipe_id": rec.ID}).
		OrderBy("item_id ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build lines query: %w", err)
	}

	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rec.Items, sql, args...); err != nil {
		return fmt.Errorf("load recipe lines: %w", err)
	}

	return nil
}

var _ recipes.Repository = (*RecipeRepo)(nil)
