// Package posting provides the document posting engine.
// Posting turns a finalized document into register movements inside a
// single transaction. Posting is terminal: there is no unposting, a
// document's movements are written exactly once.
package posting

import (
	"context"
	"fmt"
	"time"

	"stockyard/internal/core/apperror"
	"stockyard/internal/core/entity"
	"stockyard/internal/core/id"
	"stockyard/internal/core/security"
	"stockyard/internal/core/tx"
	"stockyard/pkg/logger"
)

// Postable is implemented by documents that produce register movements.
// entity.Document provides GetID, GetDate, IsPosted and CanPost;
// concrete documents add GetDocumentType and GenerateMovements.
type Postable interface {
	GetID() id.ID
	GetDocumentType() string
	GetDate() time.Time
	IsPosted() bool
	CanPost(ctx context.Context) error
	MarkPosted()
	GenerateMovements(ctx context.Context) (*MovementSet, error)
}

// MovementSet collects register movements produced by one document.
type MovementSet struct {
	Stock []entity.StockMovement
}

// NewMovementSet creates an empty movement set.
func NewMovementSet() *MovementSet {
	return &MovementSet{}
}

// AddStock appends a stock register movement.
func (m *MovementSet) AddStock(movement entity.StockMovement) {
	m.Stock = append(m.Stock, movement)
}

// IsEmpty reports whether the set contains no movements.
func (m *MovementSet) IsEmpty() bool {
	return len(m.Stock) == 0
}

// StockRegister is the ledger sink for stock movements.
type StockRegister interface {
	RecordMovements(ctx context.Context, movements []entity.StockMovement) error
}

// Engine posts documents to accumulation registers.
type Engine struct {
	stockRegister StockRegister
	txManager     tx.Manager
	policy        security.PostingPolicy
}

// NewEngine creates a posting engine.
func NewEngine(stockRegister StockRegister, txManager tx.Manager, policy security.PostingPolicy) *Engine {
	return &Engine{
		stockRegister: stockRegister,
		txManager:     txManager,
		policy:        policy,
	}
}

// Post writes the document's movements and persists the document's
// posted state via updateDoc, all in one transaction.
func (e *Engine) Post(ctx context.Context, doc Postable, updateDoc func(ctx context.Context) error) error {
	if doc.IsPosted() {
		return apperror.NewConflict("document is already posted").
			WithDetail("document_id", doc.GetID().String()).
			WithDetail("document_type", doc.GetDocumentType())
	}

	if err := doc.CanPost(ctx); err != nil {
		return err
	}

	if e.policy != nil {
		if err := e.policy.CanPost(ctx, doc.GetDate()); err != nil {
			return err
		}
	}

	movements, err := doc.GenerateMovements(ctx)
	if err != nil {
		return fmt.Errorf("generate movements: %w", err)
	}

	err = e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if len(movements.Stock) > 0 {
			if err := e.stockRegister.RecordMovements(ctx, movements.Stock); err != nil {
				return fmt.Errorf("record stock movements: %w", err)
			}
		}

		doc.MarkPosted()

		if err := updateDoc(ctx); err != nil {
			return fmt.Errorf("update document: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "document posted",
		"document_id", doc.GetID(),
		"document_type", doc.GetDocumentType(),
		"stock_movements", len(movements.Stock),
	)

	return nil
}
