package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"bakehouse/internal/core/id"
	"bakehouse/internal/core/types"
	"bakehouse/internal/domain/catalogs/item"
	"bakehouse/internal/domain/inventory"
)

type auditedRecord struct {
	ID        id.ID     `db:"id" json:"id"`
	CreatedBy string    `db:"created_by" json:"createdBy"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type taggedRecord struct {
	auditedRecord
	Code     string  `db:"code" json:"code"`
	Name     string  `db:"name" json:"name"`
	Internal string  `db:"-"`
	Note     *string `db:"note" json:"note,omitempty"`
	skipped  string
}

func TestExtractDBColumns_Embedded(t *testing.T) {
	cols := ExtractDBColumns[taggedRecord]()

	assert.Equal(t, []string{"id", "created_by", "created_at", "code", "name", "note"}, cols)
}

func TestExtractDBColumns_ItemModel(t *testing.T) {
	cols := ExtractDBColumns[item.Item]()

	for _, expected := range []string{"id", "code", "name", "category", "unit", "reorder_level", "is_perishable", "is_active"} {
		assert.Contains(t, cols, expected)
	}
	assert.NotContains(t, cols, "-")
}

func TestStructToMap(t *testing.T) {
	now := time.Now().UTC()
	note := "first delivery"
	rec := taggedRecord{
		auditedRecord: auditedRecord{
			ID:        id.New(),
			CreatedBy: "baker",
			CreatedAt: now,
		},
		Code:     "FLOUR-001",
		Name:     "Bread Flour",
		Internal: "hidden",
		Note:     &note,
	}

	m := StructToMap(rec)

	assert.Equal(t, rec.ID, m["id"])
	assert.Equal(t, "baker", m["created_by"])
	assert.Equal(t, now, m["created_at"])
	assert.Equal(t, "FLOUR-001", m["code"])
	assert.Equal(t, "Bread Flour", m["name"])
	assert.Equal(t, &note, m["note"])
	assert.NotContains(t, m, "-")
	assert.NotContains(t, m, "hidden")
}

func TestStructToMap_StockLot(t *testing.T) {
	expires := time.Now().Add(72 * time.Hour).UTC()
	lot := inventory.StockLot{
		ID:        id.New(),
		ItemID:    id.New(),
		LotNo:     "BAKE-20260901",
		Qty:       types.MustQty("12.5"),
		Unit:      item.UnitKg,
		ExpiresAt: &expires,
		CreatedBy: "receiving",
	}

	m := StructToMap(lot)

	assert.Equal(t, lot.ID, m["id"])
	assert.Equal(t, lot.ItemID, m["item_id"])
	assert.Equal(t, "BAKE-20260901", m["lot_no"])
	assert.Equal(t, lot.Qty, m["qty"])
	assert.Equal(t, &expires, m["expires_at"])

	cols := ExtractDBColumns[inventory.StockLot]()
	assert.Len(t, m, len(cols))
}
