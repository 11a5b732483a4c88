package dto

import (
	"time"

	"stockyard/internal/core/entity"
	"stockyard/internal/core/id"
	"stockyard/internal/domain/registers/stock"
)

// --- Response DTOs for Stock Register ---

// StockBalanceResponse represents stock balance in API responses.
type StockBalanceResponse struct {
	WarehouseID    string     `json:"warehouseId"`
	ProductID      string     `json:"productId"`
	Quantity       float64    `json:"quantity"`
	LastMovementAt *time.Time `json:"lastMovementAt,omitempty"`
}

// FromStockBalance converts entity to response DTO.
func FromStockBalance(b entity.StockBalance) StockBalanceResponse {
	// zero LastMovementAt means the pair never moved; render as null
	var lastMovement *time.Time
	if !b.LastMovementAt.IsZero() {
		val := b.LastMovementAt
		lastMovement = &val
	}

	return StockBalanceResponse{
		WarehouseID:    b.WarehouseID.String(),
		ProductID:      b.ProductID.String(),
		Quantity:       b.Quantity.Float64(),
		LastMovementAt: lastMovement,
	}
}

// StockMovementResponse represents stock movement in API responses.
type StockMovementResponse struct {
	LineID       string    `json:"lineId"`
	RecorderID   string    `json:"recorderId"`
	RecorderType string    `json:"recorderType"`
	Period       time.Time `json:"period"`
	RecordType   string    `json:"recordType"`
	Kind         string    `json:"kind"`
	WarehouseID  string    `json:"warehouseId"`
	ProductID    string    `json:"productId"`
	Quantity     float64   `json:"quantity"`
	CreatedAt    time.Time `json:"createdAt"`
}

// FromStockMovement converts entity to response DTO.
func FromStockMovement(m entity.StockMovement) StockMovementResponse {
	return StockMovementResponse{
		LineID:       m.LineID.String(),
		RecorderID:   m.RecorderID.String(),
		RecorderType: m.RecorderType,
		Period:       m.Period,
		RecordType:   string(m.RecordType),
		Kind:         string(m.Kind),
		WarehouseID:  m.WarehouseID.String(),
		ProductID:    m.ProductID.String(),
		Quantity:     m.Quantity.Float64(),
		CreatedAt:    m.CreatedAt,
	}
}

// StockTurnoverResponse represents stock turnover report.
type StockTurnoverResponse struct {
	WarehouseID    string  `json:"warehouseId,omitempty"`
	ProductID      string  `json:"productId,omitempty"`
	OpeningBalance float64 `json:"openingBalance"`
	Receipt        float64 `json:"receipt"`
	Expense        float64 `json:"expense"`
	ClosingBalance float64 `json:"closingBalance"`
}

// FromStockTurnover converts domain turnover to response DTO.
func FromStockTurnover(t stock.Turnover) StockTurnoverResponse {
	resp := StockTurnoverResponse{
		OpeningBalance: t.OpeningBalance.Float64(),
		Receipt:        t.Receipt.Float64(),
		Expense:        t.Expense.Float64(),
		ClosingBalance: t.ClosingBalance.Float64(),
	}
	if !id.IsNil(t.WarehouseID) {
		resp.WarehouseID = t.WarehouseID.String()
	}
	if !id.IsNil(t.ProductID) {
		resp.ProductID = t.ProductID.String()
	}
	return resp
}

// LedgerSummaryResponse represents per-product ledger aggregates.
type LedgerSummaryResponse struct {
	WarehouseID   string     `json:"warehouseId"`
	ProductID     string     `json:"productId"`
	Since         *time.Time `json:"since,omitempty"`
	TotalImported float64    `json:"totalImported"`
	TotalExported float64    `json:"totalExported"`
	CurrentStock  float64    `json:"currentStock"`
}

// StockBalanceListResponse represents a list of stock balances.
type StockBalanceListResponse struct {
	Items []StockBalanceResponse `json:"items"`
}

// StockMovementListResponse represents a list of stock movements.
type StockMovementListResponse struct {
	Items      []StockMovementResponse `json:"items"`
	TotalCount int                     `json:"totalCount,omitempty"`
}
