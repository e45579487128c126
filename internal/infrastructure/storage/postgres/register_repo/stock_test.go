package register_repo

import (
	"strings"
	"testing"
	"time"

	"bakehouse/internal/core/id"
	"bakehouse/internal/domain/inventory"
)

func TestLiveLotQuery_SQL(t *testing.T) {
	repo := NewStockRepo(nil)
	itemID := id.New()

	sql, args, err := repo.liveLotQuery(itemID, false).ToSql()
	if err != nil {
		t.Fatalf("ToSql failed: %v", err)
	}

	if !strings.HasPrefix(sql, "SELECT id, item_id, lot_no, qty") {
		t.Errorf("unexpected select list: %s", sql)
	}
	wantSuffix := "FROM reg_stock_lots WHERE item_id = $1 AND qty > $2 ORDER BY lot_no ASC"
	if !strings.HasSuffix(sql, wantSuffix) {
		t.Errorf("SQL mismatch\nwant suffix: %s\ngot:         %s", wantSuffix, sql)
	}
	if len(args) != 2 || args[0] != itemID {
		t.Errorf("Args mismatch: %v", args)
	}
}

func TestLiveLotQuery_ForUpdate(t *testing.T) {
	repo := NewStockRepo(nil)

	sql, _, err := repo.liveLotQuery(id.New(), true).ToSql()
	if err != nil {
		t.Fatalf("ToSql failed: %v", err)
	}

	// The lock clause must come after the ordering so rows are locked in
	// lot_no order.
	if !strings.HasSuffix(sql, "ORDER BY lot_no ASC FOR UPDATE") {
		t.Errorf("lock clause misplaced: %s", sql)
	}
}

func TestMovementQuery_Filters(t *testing.T) {
	repo := NewStockRepo(nil)
	itemID := id.New()
	lotID := id.New()
	mvType := inventory.MovementConsume
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	tests := []struct {
		name       string
		filter     inventory.MovementFilter
		wantWhere  string
		wantArgs   int
		wantFinish string
	}{
		{
			name:       "no filters",
			filter:     inventory.MovementFilter{},
			wantWhere:  "",
			wantArgs:   0,
			wantFinish: "ORDER BY created_at ASC, id ASC",
		},
		{
			name:       "by item",
			filter:     inventory.MovementFilter{ItemID: &itemID},
			wantWhere:  "WHERE item_id = $1",
			wantArgs:   1,
			wantFinish: "ORDER BY created_at ASC, id ASC",
		},
		{
			name:       "by lot and type",
			filter:     inventory.MovementFilter{LotID: &lotID, Type: &mvType},
			wantWhere:  "WHERE lot_id = $1 AND type = $2",
			wantArgs:   2,
			wantFinish: "ORDER BY created_at ASC, id ASC",
		},
		{
			name:       "time window half open",
			filter:     inventory.MovementFilter{From: &from, To: &to},
			wantWhere:  "WHERE created_at >= $1 AND created_at < $2",
			wantArgs:   2,
			wantFinish: "ORDER BY created_at ASC, id ASC",
		},
		{
			name:       "pagination",
			filter:     inventory.MovementFilter{Limit: 100, Offset: 50},
			wantWhere:  "",
			wantArgs:   0,
			wantFinish: "ORDER BY created_at ASC, id ASC LIMIT 100 OFFSET 50",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := repo.movementQuery(tt.filter).ToSql()
			if err != nil {
				t.Fatalf("ToSql failed: %v", err)
			}

			if !strings.Contains(sql, "FROM reg_stock_movements") {
				t.Errorf("wrong table: %s", sql)
			}
			if tt.wantWhere != "" && !strings.Contains(sql, tt.wantWhere) {
				t.Errorf("WHERE mismatch\nwant: %s\ngot:  %s", tt.wantWhere, sql)
			}
			if tt.wantWhere == "" && strings.Contains(sql, "WHERE") {
				t.Errorf("unexpected WHERE clause: %s", sql)
			}
			if !strings.HasSuffix(sql, tt.wantFinish) {
				t.Errorf("ordering mismatch\nwant suffix: %s\ngot:         %s", tt.wantFinish, sql)
			}
			if len(args) != tt.wantArgs {
				t.Errorf("Args count mismatch\nwant: %d\ngot:  %d", tt.wantArgs, len(args))
			}
		})
	}
}
