package exchange_note

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
	"stockyard/internal/domain/posting"
	"stockyard/internal/domain/registers/stock"
	"stockyard/pkg/logger"
)

// StockChecker validates availability before stock leaves a warehouse.
// Implemented by the stock register service.
type StockChecker interface {
	CheckAndReserveStock(ctx context.Context, items []stock.StockReservation) error
}

// Service provides business operations for exchange notes.
type Service struct {
	repo          Repository
	warehouses    warehouse.Repository
	products      product.Repository
	stockChecker  StockChecker
	postingEngine *posting.Engine
	numerator     numerator.Generator
	txManager     tx.Manager
	hooks         *domain.HookRegistry[*ExchangeNote]
}

// NewService creates a new exchange note service.
func NewService(
	repo Repository,
	warehouses warehouse.Repository,
	products product.Repository,
	stockChecker StockChecker,
	postingEngine *posting.Engine,
	numerator numerator.Generator,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:          repo,
		warehouses:    warehouses,
		products:      products,
		stockChecker:  stockChecker,
		postingEngine: postingEngine,
		numerator:     numerator,
		txManager:     txManager,
		hooks:         domain.NewHookRegistry[*ExchangeNote](),
	}
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*ExchangeNote] {
	return s.hooks
}

// Create creates a new pending exchange note with its lines.
func (s *Service) Create(ctx context.Context, note *ExchangeNote) error {
	if err := s.hooks.RunBeforeCreate(ctx, note); err != nil {
		return err
	}

	if err := note.Validate(ctx); err != nil {
		return err
	}

	if err := s.checkWarehouses(ctx, note); err != nil {
		return err
	}

	for i := range note.Items {
		if err := s.checkProduct(ctx, note.Items[i].ProductID); err != nil {
			return err
		}
		if note.Items[i].Code == "" {
			code, err := s.nextItemCode(ctx)
			if err != nil {
				return err
			}
			note.Items[i].Code = code
		}
	}

	// Generate number if empty
	if note.Number == "" {
		cfg := numerator.Config{Prefix: "EXN", IncludeYear: true, PadWidth: 5, ResetPeriod: "year"}
		number, err := s.numerator.GetNextNumber(ctx, cfg, &numerator.Options{Strategy: NumeratorStrategy}, time.Now())
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		note.Number = number
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, note); err != nil {
			return fmt.Errorf("create note: %w", err)
		}
		if err := s.repo.SaveItems(ctx, note.ID, note.Items); err != nil {
			return fmt.Errorf("save items: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.hooks.RunAfterCreate(ctx, note); err != nil {
		logger.Warn(ctx, "after-create hook failed", "error", err)
	}

	logger.Info(ctx, "exchange note created",
		"id", note.ID,
		"number", note.Number,
		"type", note.Type)

	return nil
}

// GetByID retrieves an exchange note with its lines.
func (s *Service) GetByID(ctx context.Context, noteID id.ID) (*ExchangeNote, error) {
	note, err := s.repo.GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.GetItems(ctx, noteID)
	if err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	note.Items = items

	return note, nil
}

// GetByNumber retrieves an exchange note by its document number.
func (s *Service) GetByNumber(ctx context.Context, number string) (*ExchangeNote, error) {
	note, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.GetItems(ctx, note.ID)
	if err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	note.Items = items

	return note, nil
}

// Update updates a pending exchange note and its lines.
func (s *Service) Update(ctx context.Context, note *ExchangeNote) error {
	if err := s.hooks.RunBeforeUpdate(ctx, note); err != nil {
		return err
	}

	if err := note.CanModify(); err != nil {
		return err
	}

	if err := note.Validate(ctx); err != nil {
		return err
	}

	if err := s.checkWarehouses(ctx, note); err != nil {
		return err
	}

	for i := range note.Items {
		if err := s.checkProduct(ctx, note.Items[i].ProductID); err != nil {
			return err
		}
		if note.Items[i].Code == "" {
			code, err := s.nextItemCode(ctx)
			if err != nil {
				return err
			}
			note.Items[i].Code = code
		}
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, note); err != nil {
			return fmt.Errorf("update note: %w", err)
		}
		if err := s.repo.SaveItems(ctx, note.ID, note.Items); err != nil {
			return fmt.Errorf("save items: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	return s.hooks.RunAfterUpdate(ctx, note)
}

// AddItem appends a product line to a pending note.
func (s *Service) AddItem(ctx context.Context, noteID id.ID, productID id.ID, quantity types.Quantity) (*NoteItem, error) {
	if !quantity.IsPositive() {
		return nil, apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity")
	}

	if err := s.checkProduct(ctx, productID); err != nil {
		return nil, err
	}

	var added *NoteItem
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		note, err := s.repo.GetForUpdate(ctx, noteID)
		if err != nil {
			return err
		}

		if err := note.CanModify(); err != nil {
			return err
		}

		items, err := s.repo.GetItems(ctx, noteID)
		if err != nil {
			return fmt.Errorf("get items: %w", err)
		}
		note.Items = items

		code, err := s.nextItemCode(ctx)
		if err != nil {
			return err
		}
		added = note.AddItem(code, productID, quantity)

		return s.repo.SaveItems(ctx, noteID, note.Items)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "note item added",
		"note_id", noteID,
		"product_id", productID,
		"code", added.Code)

	return added, nil
}

// Approve moves a pending note to accepted.
func (s *Service) Approve(ctx context.Context, noteID id.ID, approvedBy string) (*ExchangeNote, error) {
	var note *ExchangeNote
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		note, err = s.repo.GetForUpdate(ctx, noteID)
		if err != nil {
			return err
		}

		if err := note.Accept(approvedBy); err != nil {
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

	logger.Info(ctx, "exchange note approved",
		"id", noteID,
		"approved_by", approvedBy)

	return note, nil
}

// Finalize completes an accepted note and records its stock movements.
// The availability check, status change and register write happen in one
// transaction with the source balances locked.
func (s *Service) Finalize(ctx context.Context, noteID id.ID) (*ExchangeNote, error) {
	var note *ExchangeNote
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		note, err = s.repo.GetForUpdate(ctx, noteID)
		if err != nil {
			return err
		}

		items, err := s.repo.GetItems(ctx, noteID)
		if err != nil {
			return fmt.Errorf("get items: %w", err)
		}
		note.Items = items

		if len(note.ActiveItems()) == 0 {
			return apperror.NewNoteItemsRequired(noteID.String())
		}

		if err := s.checkAvailability(ctx, note); err != nil {
			return err
		}

		if err := note.Finish(); err != nil {
			return err
		}

		if err := s.hooks.RunBeforeUpdate(ctx, note); err != nil {
			return err
		}

		updateNote := func(ctx context.Context) error {
			if err := s.repo.Update(ctx, note); err != nil {
				return err
			}
			return s.repo.SaveItems(ctx, note.ID, note.Items)
		}

		return s.postingEngine.Post(ctx, note, updateNote)
	})
	if err != nil {
		return nil, err
	}

	if err := s.hooks.RunAfterUpdate(ctx, note); err != nil {
		return nil, err
	}

	logger.Info(ctx, "exchange note finalized",
		"id", noteID,
		"number", note.Number,
		"type", note.Type)

	return note, nil
}

// Cancel rejects a pending or accepted note. Its lines are canceled and
// nothing reaches the stock register.
func (s *Service) Cancel(ctx context.Context, noteID id.ID) (*ExchangeNote, error) {
	var note *ExchangeNote
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		note, err = s.repo.GetForUpdate(ctx, noteID)
		if err != nil {
			return err
		}

		items, err := s.repo.GetItems(ctx, noteID)
		if err != nil {
			return fmt.Errorf("get items: %w", err)
		}
		note.Items = items

		if err := note.Reject(); err != nil {
			return err
		}

		if err := s.hooks.RunBeforeUpdate(ctx, note); err != nil {
			return err
		}

		if err := s.repo.Update(ctx, note); err != nil {
			return err
		}
		return s.repo.SaveItems(ctx, note.ID, note.Items)
	})
	if err != nil {
		return nil, err
	}

	if err := s.hooks.RunAfterUpdate(ctx, note); err != nil {
		return nil, err
	}

	logger.Info(ctx, "exchange note canceled", "id", noteID)

	return note, nil
}

// Delete soft-deletes a note. Finalized notes are immutable.
func (s *Service) Delete(ctx context.Context, noteID id.ID) error {
	note, err := s.repo.GetByID(ctx, noteID)
	if err != nil {
		return err
	}

	if note.Posted || note.Status.IsFinal() {
		return apperror.NewTransactionImmutable(noteID.String(), string(note.Status))
	}

	return s.repo.Delete(ctx, noteID)
}

// List retrieves exchange notes with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*ExchangeNote], error) {
	return s.repo.List(ctx, filter)
}

// checkWarehouses validates warehouse references against the note type.
// The system warehouse is a technical counterpart and participates only
// in transfers.
func (s *Service) checkWarehouses(ctx context.Context, note *ExchangeNote) error {
	check := func(whID *id.ID, mustAccept bool) error {
		if whID == nil || id.IsNil(*whID) {
			return nil
		}
		wh, err := s.warehouses.GetByID(ctx, *whID)
		if err != nil {
			return err
		}
		if wh.IsSystem && note.Type != TypeTransfer {
			return apperror.NewInvalidSourceType(wh.Code)
		}
		if mustAccept && !wh.IsSystem && !wh.CanAcceptStock() {
			return apperror.NewBusinessRule("WAREHOUSE_INACTIVE",
				fmt.Sprintf("warehouse %s cannot accept stock", wh.Code))
		}
		if !mustAccept && !wh.IsSystem && !wh.CanIssueStock(true) {
			return apperror.NewBusinessRule("WAREHOUSE_INACTIVE",
				fmt.Sprintf("warehouse %s cannot issue stock", wh.Code))
		}
		return nil
	}

	if err := check(note.SourceWarehouseID, false); err != nil {
		return err
	}
	return check(note.DestinationWarehouseID, true)
}

// checkProduct verifies the product exists and can be moved.
func (s *Service) checkProduct(ctx context.Context, productID id.ID) error {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if !p.IsStockable() {
		return apperror.NewBusinessRule("PRODUCT_NOT_STOCKABLE",
			fmt.Sprintf("product %s is not available for stock operations", p.Code))
	}
	return nil
}

// checkAvailability locks and verifies source balances for outgoing notes.
func (s *Service) checkAvailability(ctx context.Context, note *ExchangeNote) error {
	if note.Type == TypeImport || note.SourceWarehouseID == nil {
		return nil
	}

	src, err := s.warehouses.GetByID(ctx, *note.SourceWarehouseID)
	if err != nil {
		return err
	}
	// System and negative-stock warehouses issue without a balance check.
	if src.IsSystem || src.AllowNegativeStock {
		return nil
	}

	items := note.ActiveItems()
	reservations := make([]stock.StockReservation, 0, len(items))
	for _, item := range items {
		reservations = append(reservations, stock.StockReservation{
			WarehouseID: *note.SourceWarehouseID,
			ProductID:   item.ProductID,
			RequiredQty: item.Quantity,
		})
	}

	return s.stockChecker.CheckAndReserveStock(ctx, reservations)
}

// nextItemCode issues a short unique line code.
func (s *Service) nextItemCode(ctx context.Context) (string, error) {
	cfg := numerator.Config{Prefix: "NI", IncludeYear: false, PadWidth: 4, ResetPeriod: "never"}
	code, err := s.numerator.GetNextNumber(ctx, cfg, numerator.DefaultOptions(), time.Now())
	if err != nil {
		return "", fmt.Errorf("generate item code: %w", err)
	}
	return code, nil
}
