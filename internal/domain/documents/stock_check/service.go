package stock_check

import (
	"context"
	"fmt"
	"time"

	"stockyard/internal/core/apperror"
	"stockyard/internal/core/id"
	"stockyard/internal/core/numerator"
	"stockyard/internal/core/tx"
	"stockyard/internal/core/types"
	"stockyard/internal/domain"
	"stockyard/internal/domain/catalogs/product"
	"stockyard/internal/domain/catalogs/warehouse"
	"stockyard/pkg/logger"
)

// Ledger answers aggregate movement questions for the expected-quantity
// snapshot. Implemented by the stock register service.
type Ledger interface {
	TotalImportedSince(ctx context.Context, warehouseID, productID id.ID, since time.Time) (types.Quantity, error)
	TotalExportedSince(ctx context.Context, warehouseID, productID id.ID, since time.Time) (types.Quantity, error)
}

// Service provides business operations for stock check notes.
type Service struct {
	repo       Repository
	warehouses warehouse.Repository
	products   product.Repository
	ledger     Ledger
	numerator  numerator.Generator
	txManager  tx.Manager
	hooks      *domain.HookRegistry[*StockCheckNote]
}

// NewService creates a new stock check service.
func NewService(
	repo Repository,
	warehouses warehouse.Repository,
	products product.Repository,
	ledger Ledger,
	numerator numerator.Generator,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:       repo,
		warehouses: warehouses,
		products:   products,
		ledger:     ledger,
		numerator:  numerator,
		txManager:  txManager,
		hooks:      domain.NewHookRegistry[*StockCheckNote](),
	}
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*StockCheckNote] {
	return s.hooks
}

// Create creates a new pending stock check. Lines added at creation time
// get their ledger snapshot computed here.
func (s *Service) Create(ctx context.Context, note *StockCheckNote) error {
	if err := s.hooks.RunBeforeCreate(ctx, note); err != nil {
		return err
	}

	if err := note.Validate(ctx); err != nil {
		return err
	}

	wh, err := s.warehouses.GetByID(ctx, note.WarehouseID)
	if err != nil {
		return err
	}
	if wh.IsSystem {
		return apperror.NewBusinessRule("SYSTEM_WAREHOUSE_NOT_COUNTABLE",
			"the system warehouse holds no physical stock to count")
	}

	for i := range note.Lines {
		if err := s.checkProduct(ctx, note.Lines[i].ProductID); err != nil {
			return err
		}
		if err := s.snapshotLine(ctx, note.WarehouseID, &note.Lines[i]); err != nil {
			return err
		}
	}

	// Generate number if empty
	if note.Number == "" {
		cfg := numerator.Config{Prefix: "SCN", IncludeYear: true, PadWidth: 5, ResetPeriod: "year"}
		number, err := s.numerator.GetNextNumber(ctx, cfg, &numerator.Options{Strategy: NumeratorStrategy}, time.Now())
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		note.Number = number
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, note); err != nil {
			return fmt.Errorf("create note: %w", err)
		}
		if err := s.repo.SaveLines(ctx, note.ID, note.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.hooks.RunAfterCreate(ctx, note); err != nil {
		logger.Warn(ctx, "after-create hook failed", "error", err)
	}

	logger.Info(ctx, "stock check created",
		"id", note.ID,
		"number", note.Number,
		"warehouse_id", note.WarehouseID)

	return nil
}

// GetByID retrieves a stock check with its lines.
func (s *Service) GetByID(ctx context.Context, noteID id.ID) (*StockCheckNote, error) {
	note, err := s.repo.GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, noteID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	note.Lines = lines

	return note, nil
}

// AddProduct counts a product into an open stock check. The expected
// quantity snapshot is taken from the ledger at this moment.
func (s *Service) AddProduct(ctx context.Context, noteID id.ID, productID id.ID, actualQty types.Quantity) (*StockCheckLine, error) {
	if actualQty.IsNegative() {
		return nil, apperror.NewValidation("actual quantity cannot be negative").
			WithDetail("field", "actualQuantity")
	}

	if err := s.checkProduct(ctx, productID); err != nil {
		return nil, err
	}

	var added *StockCheckLine
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		note, err := s.loadForUpdate(ctx, noteID)
		if err != nil {
			return err
		}

		if err := note.CanModify(); err != nil {
			return err
		}

		if note.FindLine(productID) != nil {
			// Recounts go through UpdateActualQuantity.
			return apperror.NewDuplicate("stock check line", "productId", productID.String())
		}

		line := StockCheckLine{ProductID: productID, ActualQuantity: actualQty}
		if err := s.snapshotLine(ctx, note.WarehouseID, &line); err != nil {
			return err
		}
		added = note.AddLine(productID, line.LastQuantity, line.TotalImportQuantity, line.TotalExportQuantity, actualQty)

		return s.repo.SaveLines(ctx, noteID, note.Lines)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock check product counted",
		"note_id", noteID,
		"product_id", productID)

	return added, nil
}

// UpdateActualQuantity corrects the physical count for a product.
func (s *Service) UpdateActualQuantity(ctx context.Context, noteID id.ID, productID id.ID, actualQty types.Quantity) error {
	if actualQty.IsNegative() {
		return apperror.NewValidation("actual quantity cannot be negative").
			WithDetail("field", "actualQuantity")
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		note, err := s.loadForUpdate(ctx, noteID)
		if err != nil {
			return err
		}

		if err := note.SetActualQuantity(productID, actualQty); err != nil {
			return err
		}

		return s.repo.SaveLines(ctx, noteID, note.Lines)
	})
}

// RemoveProduct drops a product from an open stock check.
func (s *Service) RemoveProduct(ctx context.Context, noteID id.ID, productID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		note, err := s.loadForUpdate(ctx, noteID)
		if err != nil {
			return err
		}

		if err := note.RemoveLine(productID); err != nil {
			return err
		}

		return s.repo.SaveLines(ctx, noteID, note.Lines)
	})
}

// Approve moves a pending stock check to accepted.
func (s *Service) Approve(ctx context.Context, noteID id.ID) (*StockCheckNote, error) {
	var note *StockCheckNote
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		note, err = s.loadForUpdate(ctx, noteID)
		if err != nil {
			return err
		}

		if err := note.Accept(); err != nil {
			return err
		}

		if err := s.hooks.RunBeforeUpdate(ctx, note); err != nil {
			return err
		}

		return s.repo.Update(ctx, note)
	})
	if err != nil {
		return nil, err
	}

	if err := s.hooks.RunAfterUpdate(ctx, note); err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock check approved", "id", noteID)

	return note, nil
}

// Finalize closes an accepted stock check. With confirm=true the count is
// kept, lines become finished and form the baseline for the next check.
// With confirm=false the count is discarded, temporary lines are deleted
// and the note is rejected.
func (s *Service) Finalize(ctx context.Context, noteID id.ID, confirm bool) (*StockCheckNote, error) {
	var note *StockCheckNote
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		note, err = s.loadForUpdate(ctx, noteID)
		if err != nil {
			return err
		}

		if confirm {
			if err := note.Finish(); err != nil {
				return err
			}
		} else {
			if err := note.Reject(); err != nil {
				return err
			}
		}

		if err := s.hooks.RunBeforeUpdate(ctx, note); err != nil {
			return err
		}

		if err := s.repo.Update(ctx, note); err != nil {
			return err
		}
		return s.repo.SaveLines(ctx, noteID, note.Lines)
	})
	if err != nil {
		return nil, err
	}

	if err := s.hooks.RunAfterUpdate(ctx, note); err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock check finalized",
		"id", noteID,
		"status", note.Status)

	return note, nil
}

// Comparison is one row of the expected-versus-actual report.
type Comparison struct {
	ProductID  id.ID          `json:"productId"`
	Expected   types.Quantity `json:"expected"`
	Actual     types.Quantity `json:"actual"`
	Difference types.Quantity `json:"difference"`
}

// GetComparison returns the per-product discrepancy report for a check.
func (s *Service) GetComparison(ctx context.Context, noteID id.ID) ([]Comparison, error) {
	note, err := s.GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}

	rows := make([]Comparison, 0, len(note.Lines))
	for _, line := range note.Lines {
		rows = append(rows, Comparison{
			ProductID:  line.ProductID,
			Expected:   line.ExpectedQuantity,
			Actual:     line.ActualQuantity,
			Difference: line.Difference(),
		})
	}

	return rows, nil
}

// Delete soft-deletes a stock check. Final notes are immutable.
func (s *Service) Delete(ctx context.Context, noteID id.ID) error {
	note, err := s.repo.GetByID(ctx, noteID)
	if err != nil {
		return err
	}

	if note.Status.IsFinal() {
		return apperror.NewStockCheckImmutable(noteID.String(), string(note.Status))
	}

	return s.repo.Delete(ctx, noteID)
}

// List retrieves stock checks with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*StockCheckNote], error) {
	return s.repo.List(ctx, filter)
}

// loadForUpdate locks the note and loads its lines.
func (s *Service) loadForUpdate(ctx context.Context, noteID id.ID) (*StockCheckNote, error) {
	note, err := s.repo.GetForUpdate(ctx, noteID)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, noteID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	note.Lines = lines

	return note, nil
}

// checkProduct verifies the product exists and can be counted.
func (s *Service) checkProduct(ctx context.Context, productID id.ID) error {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if p.IsFolder {
		return apperror.NewBusinessRule("PRODUCT_IS_GROUP",
			fmt.Sprintf("product group %s cannot be counted", p.Code))
	}
	return nil
}

// snapshotLine fills the ledger baseline for a line: the previous finished
// count and the imports and exports recorded since it.
func (s *Service) snapshotLine(ctx context.Context, warehouseID id.ID, line *StockCheckLine) error {
	var since time.Time
	if prev, err := s.repo.GetLastCount(ctx, warehouseID, line.ProductID); err != nil {
		return fmt.Errorf("get last count: %w", err)
	} else if prev != nil {
		line.LastQuantity = prev.Quantity
		since = prev.Date
	}

	imported, err := s.ledger.TotalImportedSince(ctx, warehouseID, line.ProductID, since)
	if err != nil {
		return fmt.Errorf("total imported: %w", err)
	}
	exported, err := s.ledger.TotalExportedSince(ctx, warehouseID, line.ProductID, since)
	if err != nil {
		return fmt.Errorf("total exported: %w", err)
	}

	line.TotalImportQuantity = imported
	line.TotalExportQuantity = exported
	line.recalculate()
	if line.CountedAt.IsZero() {
		line.CountedAt = time.Now().UTC()
	}
	return nil
}
