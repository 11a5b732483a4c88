package stock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockyard/internal/core/entity"
	"stockyard/internal/core/id"
	"stockyard/internal/core/types"
)

func qty(v float64) types.Quantity {
	return types.NewQuantityFromFloat64(v)
}

// fakeRegister keeps movements in memory and derives balances from them,
// mirroring the balance upsert the Postgres repository performs.
type fakeRegister struct {
	movements []entity.StockMovement
}

type balanceKey struct {
	warehouseID id.ID
	productID   id.ID
}

func (f *fakeRegister) CreateMovements(ctx context.Context, movements []entity.StockMovement) error {
	f.movements = append(f.movements, movements...)
	return nil
}

func (f *fakeRegister) GetMovementsByRecorder(ctx context.Context, recorderID id.ID) ([]entity.StockMovement, error) {
	var out []entity.StockMovement
	for _, m := range f.movements {
		if m.RecorderID == recorderID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeRegister) balances() map[balanceKey]types.Quantity {
	b := make(map[balanceKey]types.Quantity)
	for i := range f.movements {
		m := &f.movements[i]
		b[balanceKey{m.WarehouseID, m.ProductID}] += m.SignedQuantity()
	}
	return b
}

func (f *fakeRegister) GetBalance(ctx context.Context, warehouseID, productID id.ID) (entity.StockBalance, error) {
	return entity.StockBalance{
		WarehouseID: warehouseID,
		ProductID:   productID,
		Quantity:    f.balances()[balanceKey{warehouseID, productID}],
	}, nil
}

func (f *fakeRegister) GetBalanceForUpdate(ctx context.Context, warehouseID, productID id.ID) (entity.StockBalance, error) {
	return f.GetBalance(ctx, warehouseID, productID)
}

func (f *fakeRegister) GetBalancesByWarehouse(ctx context.Context, warehouseID id.ID, filter BalanceFilter) ([]entity.StockBalance, error) {
	var out []entity.StockBalance
	for key, q := range f.balances() {
		if key.warehouseID != warehouseID {
			continue
		}
		if filter.ExcludeZero && q.IsZero() {
			continue
		}
		out = append(out, entity.StockBalance{WarehouseID: key.warehouseID, ProductID: key.productID, Quantity: q})
	}
	return out, nil
}

func (f *fakeRegister) GetBalancesByProduct(ctx context.Context, productID id.ID) ([]entity.StockBalance, error) {
	var out []entity.StockBalance
	for key, q := range f.balances() {
		if key.productID == productID {
			out = append(out, entity.StockBalance{WarehouseID: key.warehouseID, ProductID: key.productID, Quantity: q})
		}
	}
	return out, nil
}

func (f *fakeRegister) GetBalancesAtDate(ctx context.Context, warehouseID, productID id.ID, date time.Time) (types.Quantity, error) {
	var total types.Quantity
	for i := range f.movements {
		m := &f.movements[i]
		if m.WarehouseID == warehouseID && m.ProductID == productID && !m.Period.After(date) {
			total += m.SignedQuantity()
		}
	}
	return total, nil
}

func (f *fakeRegister) SumByKind(ctx context.Context, warehouseID, productID id.ID, kind entity.MovementKind, recordType entity.RecordType, since time.Time) (types.Quantity, error) {
	var total types.Quantity
	for i := range f.movements {
		m := &f.movements[i]
		if m.WarehouseID != warehouseID || m.ProductID != productID {
			continue
		}
		if m.Kind != kind || m.RecordType != recordType {
			continue
		}
		if !since.IsZero() && m.Period.Before(since) {
			continue
		}
		total += m.Quantity
	}
	return total, nil
}

func (f *fakeRegister) GetMovementHistory(ctx context.Context, productID id.ID, filter MovementFilter) ([]entity.StockMovement, error) {
	var out []entity.StockMovement
	for _, m := range f.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeRegister) GetTurnover(ctx context.Context, filter TurnoverFilter) (Turnover, error) {
	return Turnover{}, nil
}

func (f *fakeRegister) RecalculateBalances(ctx context.Context, warehouseID, productID *id.ID) error {
	return nil
}

var _ Repository = (*fakeRegister)(nil)

func record(t *testing.T, svc *Service, period time.Time, recordType entity.RecordType, kind entity.MovementKind, warehouseID, productID id.ID, quantity types.Quantity) {
	t.Helper()
	err := svc.RecordMovements(context.Background(), []entity.StockMovement{
		entity.NewStockMovement(id.New(), "ExchangeNote", period, recordType, kind, warehouseID, productID, quantity),
	})
	require.NoError(t, err)
}

func TestRecordMovements_Validation(t *testing.T) {
	svc := NewService(&fakeRegister{})
	ctx := context.Background()

	require.NoError(t, svc.RecordMovements(ctx, nil), "empty batch is a no-op")

	bad := entity.NewStockMovement(id.New(), "ExchangeNote", time.Now(),
		entity.RecordTypeReceipt, entity.MovementKindImport, id.New(), id.New(), qty(0))
	assert.Error(t, svc.RecordMovements(ctx, []entity.StockMovement{bad}))

	bad = entity.NewStockMovement(id.Nil(), "ExchangeNote", time.Now(),
		entity.RecordTypeReceipt, entity.MovementKindImport, id.New(), id.New(), qty(1))
	assert.Error(t, svc.RecordMovements(ctx, []entity.StockMovement{bad}))
}

func TestAggregates_TransfersStayOutOfTotals(t *testing.T) {
	repo := &fakeRegister{}
	svc := NewService(repo)
	ctx := context.Background()

	warehouseA := id.New()
	warehouseB := id.New()
	productID := id.New()
	now := time.Now().UTC()

	// Import 100 into A, export 30 from A, then transfer 20 from A to B.
	record(t, svc, now, entity.RecordTypeReceipt, entity.MovementKindImport, warehouseA, productID, qty(100))
	record(t, svc, now, entity.RecordTypeExpense, entity.MovementKindExport, warehouseA, productID, qty(30))
	record(t, svc, now, entity.RecordTypeExpense, entity.MovementKindTransfer, warehouseA, productID, qty(20))
	record(t, svc, now, entity.RecordTypeReceipt, entity.MovementKindTransfer, warehouseB, productID, qty(20))

	imported, err := svc.TotalImported(ctx, warehouseA, productID)
	require.NoError(t, err)
	assert.Equal(t, qty(100), imported)

	exported, err := svc.TotalExported(ctx, warehouseA, productID)
	require.NoError(t, err)
	assert.Equal(t, qty(30), exported)

	// Transfer halves never count as imports or exports.
	importedB, err := svc.TotalImported(ctx, warehouseB, productID)
	require.NoError(t, err)
	assert.Equal(t, qty(0), importedB)

	// Balances do include transfers.
	stockA, err := svc.CurrentStock(ctx, warehouseA, productID)
	require.NoError(t, err)
	assert.Equal(t, qty(50), stockA)

	stockB, err := svc.CurrentStock(ctx, warehouseB, productID)
	require.NoError(t, err)
	assert.Equal(t, qty(20), stockB)

	available, err := svc.GetProductAvailability(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, qty(70), available)
}

func TestAggregates_SinceCutoff(t *testing.T) {
	repo := &fakeRegister{}
	svc := NewService(repo)
	ctx := context.Background()

	warehouseID := id.New()
	productID := id.New()
	cutoff := time.Now().UTC()

	record(t, svc, cutoff.Add(-24*time.Hour), entity.RecordTypeReceipt, entity.MovementKindImport, warehouseID, productID, qty(100))
	record(t, svc, cutoff.Add(time.Hour), entity.RecordTypeReceipt, entity.MovementKindImport, warehouseID, productID, qty(50))
	record(t, svc, cutoff.Add(2*time.Hour), entity.RecordTypeExpense, entity.MovementKindExport, warehouseID, productID, qty(20))

	imported, err := svc.TotalImportedSince(ctx, warehouseID, productID, cutoff)
	require.NoError(t, err)
	assert.Equal(t, qty(50), imported, "imports before the cutoff are excluded")

	exported, err := svc.TotalExportedSince(ctx, warehouseID, productID, cutoff)
	require.NoError(t, err)
	assert.Equal(t, qty(20), exported)

	allTime, err := svc.TotalImported(ctx, warehouseID, productID)
	require.NoError(t, err)
	assert.Equal(t, qty(150), allTime, "zero since covers the whole history")
}

func TestCheckAndReserveStock(t *testing.T) {
	repo := &fakeRegister{}
	svc := NewService(repo)
	ctx := context.Background()

	warehouseID := id.New()
	productID := id.New()
	now := time.Now().UTC()

	record(t, svc, now, entity.RecordTypeReceipt, entity.MovementKindImport, warehouseID, productID, qty(10))

	err := svc.CheckAndReserveStock(ctx, []StockReservation{
		{WarehouseID: warehouseID, ProductID: productID, RequiredQty: qty(10)},
	})
	assert.NoError(t, err, "exact balance is enough")

	err = svc.CheckAndReserveStock(ctx, []StockReservation{
		{WarehouseID: warehouseID, ProductID: productID, RequiredQty: qty(11)},
	})
	assert.Error(t, err)

	err = svc.CheckAndReserveStock(ctx, []StockReservation{
		{WarehouseID: warehouseID, ProductID: id.New(), RequiredQty: qty(1)},
	})
	assert.Error(t, err, "unknown product has zero balance")
}

func TestGetWarehouseStock_ExcludesZeroBalances(t *testing.T) {
	repo := &fakeRegister{}
	svc := NewService(repo)
	ctx := context.Background()

	warehouseID := id.New()
	kept := id.New()
	drained := id.New()
	now := time.Now().UTC()

	record(t, svc, now, entity.RecordTypeReceipt, entity.MovementKindImport, warehouseID, kept, qty(5))
	record(t, svc, now, entity.RecordTypeReceipt, entity.MovementKindImport, warehouseID, drained, qty(5))
	record(t, svc, now, entity.RecordTypeExpense, entity.MovementKindExport, warehouseID, drained, qty(5))

	balances, err := svc.GetWarehouseStock(ctx, warehouseID)
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, kept, balances[0].ProductID)
	assert.Equal(t, qty(5), balances[0].Quantity)
}
