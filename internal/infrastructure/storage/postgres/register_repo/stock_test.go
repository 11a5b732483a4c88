package register_repo

import (
	"strings"
	"testing"
	"time"

	"stockyard/internal/core/entity"
	"stockyard/internal/core/id"
	"stockyard/internal/core/types"
)

func qty(v float64) types.Quantity {
	return types.NewQuantityFromFloat64(v)
}

func TestBalanceDeltas_AggregatesPerPair(t *testing.T) {
	recorderID := id.New()
	warehouseID := id.New()
	productID := id.New()

	earlier := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	later := earlier.Add(24 * time.Hour)

	movements := []entity.StockMovement{
		entity.NewStockMovement(recorderID, "ExchangeNote", earlier,
			entity.RecordTypeReceipt, entity.MovementKindImport,
			warehouseID, productID, qty(100)),
		entity.NewStockMovement(recorderID, "ExchangeNote", later,
			entity.RecordTypeExpense, entity.MovementKindExport,
			warehouseID, productID, qty(30)),
	}

	deltas := balanceDeltas(movements)
	if len(deltas) != 1 {
		t.Fatalf("expected one delta per pair, got %d", len(deltas))
	}

	d := deltas[0]
	if d.WarehouseID != warehouseID || d.ProductID != productID {
		t.Errorf("wrong dimensions: %v/%v", d.WarehouseID, d.ProductID)
	}
	if d.Quantity != qty(70) {
		t.Errorf("net delta = %s, want 70", d.Quantity)
	}
	if !d.Period.Equal(later) {
		t.Errorf("period = %v, want the latest movement time %v", d.Period, later)
	}
}

func TestBalanceDeltas_TransferSplitsAcrossWarehouses(t *testing.T) {
	recorderID := id.New()
	sourceID := id.New()
	destID := id.New()
	productID := id.New()
	period := time.Now().UTC()

	movements := []entity.StockMovement{
		entity.NewStockMovement(recorderID, "ExchangeNote", period,
			entity.RecordTypeExpense, entity.MovementKindTransfer,
			sourceID, productID, qty(20)),
		entity.NewStockMovement(recorderID, "ExchangeNote", period,
			entity.RecordTypeReceipt, entity.MovementKindTransfer,
			destID, productID, qty(20)),
	}

	deltas := balanceDeltas(movements)
	if len(deltas) != 2 {
		t.Fatalf("expected a delta per warehouse, got %d", len(deltas))
	}

	byWarehouse := map[id.ID]types.Quantity{}
	for _, d := range deltas {
		byWarehouse[d.WarehouseID] = d.Quantity
	}
	if byWarehouse[sourceID] != qty(-20) {
		t.Errorf("source delta = %s, want -20", byWarehouse[sourceID])
	}
	if byWarehouse[destID] != qty(20) {
		t.Errorf("destination delta = %s, want 20", byWarehouse[destID])
	}
}

func TestBalanceUpsert_IncrementsExistingRow(t *testing.T) {
	// The upsert must add the delta to the stored quantity, not replace it,
	// so repeated postings accumulate.
	if !strings.Contains(balanceUpsertSQL, "quantity = reg_stock_balances.quantity + EXCLUDED.quantity") {
		t.Errorf("balance upsert does not accumulate:\n%s", balanceUpsertSQL)
	}
	if !strings.Contains(balanceUpsertSQL, "ON CONFLICT (warehouse_id, product_id)") {
		t.Errorf("balance upsert is not keyed by warehouse+product:\n%s", balanceUpsertSQL)
	}
}
