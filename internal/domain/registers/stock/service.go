// Package stock provides the stock accumulation register service.
package stock

import (
	"context"
	"fmt"
	"time"

	"stockyard/internal/core/apperror"
	"stockyard/internal/core/entity"
	"stockyard/internal/core/id"
	"stockyard/internal/core/types"
	"stockyard/pkg/logger"
)

// Service provides business operations for the stock register.
// Transactions are managed by the caller (posting engine).
type Service struct {
	repo Repository
}

// NewService creates a new stock register service.
func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
	}
}

// RecordMovements records stock movements from a document posting.
// This is called during document posting within a transaction.
func (s *Service) RecordMovements(ctx context.Context, movements []entity.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}

	// Validate movements
	for i, m := range movements {
		if !m.Quantity.IsPositive() {
			return apperror.NewValidation(fmt.Sprintf("movement %d: quantity must be positive", i))
		}
		if id.IsNil(m.RecorderID) {
			return apperror.NewValidation(fmt.Sprintf("movement %d: recorder_id is required", i))
		}
	}

	// The repository keeps reg_stock_balances in step with the insert.
	if err := s.repo.CreateMovements(ctx, movements); err != nil {
		return fmt.Errorf("create movements: %w", err)
	}

	logger.Info(ctx, "recorded stock movements",
		"count", len(movements),
		"recorder_id", movements[0].RecorderID,
	)

	return nil
}

// CheckAndReserveStock validates stock availability with pessimistic locking.
// Should be called within a transaction before creating expense movements.
func (s *Service) CheckAndReserveStock(ctx context.Context, items []StockReservation) error {
	for _, item := range items {
		balance, err := s.repo.GetBalanceForUpdate(ctx, item.WarehouseID, item.ProductID)
		if err != nil {
			return fmt.Errorf("get balance for %s: %w", item.ProductID, err)
		}

		if balance.Quantity < item.RequiredQty {
			return apperror.NewInsufficientStock(
				item.ProductID.String(),
				item.RequiredQty.Float64(),
				balance.Quantity.Float64(),
			)
		}
	}

	return nil
}

// StockReservation represents a stock check request.
type StockReservation struct {
	WarehouseID id.ID
	ProductID   id.ID
	RequiredQty types.Quantity
}

// --- Ledger aggregates ---
// Transfers carry their own kind so they never leak into the import and
// export totals, only the balance reflects them.

// TotalImported returns all stock ever received into a warehouse for a
// product through finalized import notes.
func (s *Service) TotalImported(ctx context.Context, warehouseID, productID id.ID) (types.Quantity, error) {
	return s.TotalImportedSince(ctx, warehouseID, productID, time.Time{})
}

// TotalExported returns all stock ever issued from a warehouse for a
// product through finalized export notes.
func (s *Service) TotalExported(ctx context.Context, warehouseID, productID id.ID) (types.Quantity, error) {
	return s.TotalExportedSince(ctx, warehouseID, productID, time.Time{})
}

// TotalImportedSince returns import receipts recorded after a point in
// time. A zero since covers the whole history.
func (s *Service) TotalImportedSince(ctx context.Context, warehouseID, productID id.ID, since time.Time) (types.Quantity, error) {
	qty, err := s.repo.SumByKind(ctx, warehouseID, productID, entity.MovementKindImport, entity.RecordTypeReceipt, since)
	if err != nil {
		return 0, fmt.Errorf("sum imports: %w", err)
	}
	return qty, nil
}

// TotalExportedSince returns export expenses recorded after a point in
// time. A zero since covers the whole history.
func (s *Service) TotalExportedSince(ctx context.Context, warehouseID, productID id.ID, since time.Time) (types.Quantity, error) {
	qty, err := s.repo.SumByKind(ctx, warehouseID, productID, entity.MovementKindExport, entity.RecordTypeExpense, since)
	if err != nil {
		return 0, fmt.Errorf("sum exports: %w", err)
	}
	return qty, nil
}

// CurrentStock returns the present balance for a warehouse+product pair.
// Unlike the import and export totals it includes transfers.
func (s *Service) CurrentStock(ctx context.Context, warehouseID, productID id.ID) (types.Quantity, error) {
	balance, err := s.repo.GetBalance(ctx, warehouseID, productID)
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return balance.Quantity, nil
}

// GetProductAvailability returns available quantity across warehouses.
func (s *Service) GetProductAvailability(ctx context.Context, productID id.ID) (types.Quantity, error) {
	balances, err := s.repo.GetBalancesByProduct(ctx, productID)
	if err != nil {
		return 0, fmt.Errorf("get balances: %w", err)
	}

	var total types.Quantity
	for _, b := range balances {
		total += b.Quantity
	}

	return total, nil
}

// GetWarehouseStock returns all products with stock in a warehouse.
func (s *Service) GetWarehouseStock(ctx context.Context, warehouseID id.ID) ([]entity.StockBalance, error) {
	return s.repo.GetBalancesByWarehouse(ctx, warehouseID, BalanceFilter{
		ExcludeZero: true,
	})
}

// RebuildBalances recomputes the balance table from the movement
// history. Maintenance operation, posting keeps the running totals
// consistent on its own.
func (s *Service) RebuildBalances(ctx context.Context, warehouseID, productID *id.ID) error {
	if err := s.repo.RecalculateBalances(ctx, warehouseID, productID); err != nil {
		return fmt.Errorf("recalculate balances: %w", err)
	}

	logger.Info(ctx, "stock balances rebuilt")
	return nil
}

// GetMovementHistory returns the movement journal for a product.
func (s *Service) GetMovementHistory(ctx context.Context, productID id.ID, filter MovementFilter) ([]entity.StockMovement, error) {
	return s.repo.GetMovementHistory(ctx, productID, filter)
}

// GetStockReport generates a turnover report for the period.
func (s *Service) GetStockReport(ctx context.Context, filter TurnoverFilter) (Turnover, error) {
	return s.repo.GetTurnover(ctx, filter)
}
