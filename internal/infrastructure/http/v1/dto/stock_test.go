package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"stockyard/internal/core/entity"
	"stockyard/internal/core/id"
	"stockyard/internal/core/types"
	"stockyard/internal/domain/registers/stock"
)

func TestFromStockTurnover(t *testing.T) {
	warehouseID := id.New()
	productID := id.New()

	resp := FromStockTurnover(stock.Turnover{
		WarehouseID:    warehouseID,
		ProductID:      productID,
		OpeningBalance: types.NewQuantityFromFloat64(10),
		Receipt:        types.NewQuantityFromFloat64(50),
		Expense:        types.NewQuantityFromFloat64(20),
		ClosingBalance: types.NewQuantityFromFloat64(40),
	})

	assert.Equal(t, warehouseID.String(), resp.WarehouseID)
	assert.Equal(t, productID.String(), resp.ProductID)
	assert.Equal(t, 10.0, resp.OpeningBalance)
	assert.Equal(t, 50.0, resp.Receipt)
	assert.Equal(t, 20.0, resp.Expense)
	assert.Equal(t, 40.0, resp.ClosingBalance)
}

func TestFromStockTurnover_OmitsNilDimensions(t *testing.T) {
	resp := FromStockTurnover(stock.Turnover{})

	assert.Empty(t, resp.WarehouseID)
	assert.Empty(t, resp.ProductID)
}

func TestFromStockBalance(t *testing.T) {
	moved := time.Now().UTC()
	resp := FromStockBalance(entity.StockBalance{
		WarehouseID:    id.New(),
		ProductID:      id.New(),
		Quantity:       types.NewQuantityFromFloat64(12.5),
		LastMovementAt: moved,
	})

	assert.Equal(t, 12.5, resp.Quantity)
	if assert.NotNil(t, resp.LastMovementAt) {
		assert.Equal(t, moved, *resp.LastMovementAt)
	}

	never := FromStockBalance(entity.StockBalance{})
	assert.Nil(t, never.LastMovementAt)
}
