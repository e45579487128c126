package memory

import (
	"context"
	"strings"

	"bakehouse/internal/core/apperror"
	"bakehouse/internal/core/id"
	"bakehouse/internal/domain/catalogs/item"
)

// ItemRepository is the in-memory item.Repository.
type ItemRepository struct {
	store *Store
}

// NewItemRepository creates an in-memory item repository.
func NewItemRepository(store *Store) *ItemRepository {
	return &ItemRepository{store: store}
}

func (r *ItemRepository) Create(ctx context.Context, it *item.Item) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	if _, ok := r.store.items[it.ID]; ok {
		return apperror.NewDuplicate("item", "id", it.ID.String())
	}
	r.store.items[it.ID] = *it
	return nil
}

func (r *ItemRepository) Update(ctx context.Context, it *item.Item) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	if _, ok := r.store.items[it.ID]; !ok {
		return apperror.NewNotFound("item", it.ID)
	}
	r.store.items[it.ID] = *it
	return nil
}

func (r *ItemRepository) GetByID(ctx context.Context, itemID id.ID) (*item.Item, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	it, ok := r.store.items[itemID]
	if !ok {
		return nil, apperror.NewNotFound("item", itemID)
	}
	return &it, nil
}

func (r *ItemRepository) GetByCode(ctx context.Context, code string) (*item.Item, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	for _, it := range r.store.items {
		if it.Code == code {
			found := it
			return &found, nil
		}
	}
	return nil, apperror.NewNotFound("item", code)
}

func (r *ItemRepository) List(ctx context.Context, filter item.Filter) ([]*item.Item, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	var out []*item.Item
	for _, it := range r.store.items {
		if filter.ActiveOnly && !it.IsActive {
			continue
		}
		if filter.Category != nil && it.Category != *filter.Category {
			continue
		}
		if filter.Search != "" {
			s := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(it.Name), s) &&
				!strings.Contains(strings.ToLower(it.Code), s) {
				continue
			}
		}
		found := it
		out = append(out, &found)
	}
	sortByID(out, func(it *item.Item) id.ID { return it.ID })
	return paginate(out, filter.Offset, filter.Limit), nil
}

func (r *ItemRepository) HasLots(ctx context.Context, itemID id.ID) (bool, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	for _, lot := range r.store.lots {
		if lot.ItemID == itemID {
			return true, nil
		}
	}
	return false, nil
}
