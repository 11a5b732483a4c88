// Package exchange_note provides the ExchangeNote document.
// An exchange note records a stock movement between the outside world
// and a warehouse (IMPORT, EXPORT) or between two warehouses (TRANSFER).
// Only finalized notes reach the stock ledger.
package exchange_note

import (
	"context"

	"stockyard/internal/core/apperror"
	"stockyard/internal/core/entity"
	"stockyard/internal/core/id"
	"stockyard/internal/core/types"
	"stockyard/internal/domain/posting"
)

// NoteType defines the direction of the stock movement.
type NoteType string

const (
	TypeImport   NoteType = "IMPORT"
	TypeExport   NoteType = "EXPORT"
	TypeTransfer NoteType = "TRANSFER"
)

// ParseNoteType validates a note type string from user input.
func ParseNoteType(s string) (NoteType, error) {
	switch NoteType(s) {
	case TypeImport, TypeExport, TypeTransfer:
		return NoteType(s), nil
	}
	return "", apperror.NewInvalidTransactionType(s)
}

// ItemStatus is the lifecycle state of a note line.
// Lines start pending, complete when the note is finalized, and are
// canceled when the note is rejected.
type ItemStatus string

const (
	ItemStatusPending   ItemStatus = "pending"
	ItemStatusCompleted ItemStatus = "completed"
	ItemStatusCanceled  ItemStatus = "canceled"
)

// ExchangeNote represents a stock exchange document.
type ExchangeNote struct {
	entity.Document

	// Type is the movement direction
	Type NoteType `db:"type" json:"type"`

	// SourceWarehouseID is where stock leaves from (EXPORT, TRANSFER)
	SourceWarehouseID *id.ID `db:"source_warehouse_id" json:"sourceWarehouseId,omitempty"`

	// DestinationWarehouseID is where stock arrives (IMPORT, TRANSFER)
	DestinationWarehouseID *id.ID `db:"destination_warehouse_id" json:"destinationWarehouseId,omitempty"`

	// ApprovedBy is the user code of the approver
	ApprovedBy string `db:"approved_by" json:"approvedBy,omitempty"`

	// Table part: moved products
	Items []NoteItem `db:"-" json:"items"`
}

// NoteItem represents one product line on an exchange note.
type NoteItem struct {
	LineID id.ID  `db:"line_id" json:"lineId"`
	LineNo int    `db:"line_no" json:"lineNo"`
	Code   string `db:"code" json:"code"`

	ProductID id.ID          `db:"product_id" json:"productId"`
	Quantity  types.Quantity `db:"quantity" json:"quantity"`
	Status    ItemStatus     `db:"status" json:"status"`
}

// NewExchangeNote creates a new pending exchange note.
func NewExchangeNote(noteType NoteType, sourceID, destinationID *id.ID) *ExchangeNote {
	return &ExchangeNote{
		Document:               entity.NewDocument(),
		Type:                   noteType,
		SourceWarehouseID:      sourceID,
		DestinationWarehouseID: destinationID,
		Items:                  make([]NoteItem, 0),
	}
}

// AddItem appends a pending product line.
func (n *ExchangeNote) AddItem(code string, productID id.ID, quantity types.Quantity) *NoteItem {
	item := NoteItem{
		LineID:    id.New(),
		LineNo:    len(n.Items) + 1,
		Code:      code,
		ProductID: productID,
		Quantity:  quantity,
		Status:    ItemStatusPending,
	}
	n.Items = append(n.Items, item)
	return &n.Items[len(n.Items)-1]
}

// ActiveItems returns lines that are not canceled.
func (n *ExchangeNote) ActiveItems() []NoteItem {
	active := make([]NoteItem, 0, len(n.Items))
	for _, item := range n.Items {
		if item.Status != ItemStatusCanceled {
			active = append(active, item)
		}
	}
	return active
}

// Validate implements entity.Validatable.
func (n *ExchangeNote) Validate(ctx context.Context) error {
	if err := n.Document.Validate(ctx); err != nil {
		return err
	}

	switch n.Type {
	case TypeImport:
		if n.DestinationWarehouseID == nil || id.IsNil(*n.DestinationWarehouseID) {
			return apperror.NewValidation("destination warehouse is required for IMPORT").
				WithDetail("field", "destinationWarehouseId")
		}
	case TypeExport:
		if n.SourceWarehouseID == nil || id.IsNil(*n.SourceWarehouseID) {
			return apperror.NewValidation("source warehouse is required for EXPORT").
				WithDetail("field", "sourceWarehouseId")
		}
	case TypeTransfer:
		if n.SourceWarehouseID == nil || id.IsNil(*n.SourceWarehouseID) {
			return apperror.NewValidation("source warehouse is required for TRANSFER").
				WithDetail("field", "sourceWarehouseId")
		}
		if n.DestinationWarehouseID == nil || id.IsNil(*n.DestinationWarehouseID) {
			return apperror.NewValidation("destination warehouse is required for TRANSFER").
				WithDetail("field", "destinationWarehouseId")
		}
		if *n.SourceWarehouseID == *n.DestinationWarehouseID {
			return apperror.NewValidation("source and destination warehouses must differ").
				WithDetail("field", "destinationWarehouseId")
		}
	default:
		return apperror.NewInvalidTransactionType(string(n.Type))
	}

	for i, item := range n.Items {
		if id.IsNil(item.ProductID) {
			return apperror.NewValidation("product is required").
				WithDetail("field", "items").
				WithDetail("lineNo", i+1)
		}
		if !item.Quantity.IsPositive() {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "items").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}

// CanModify reports whether lines may still be added or changed.
// Only pending notes are editable.
func (n *ExchangeNote) CanModify() error {
	if n.Status != entity.StatusPending {
		return apperror.NewTransactionImmutable(n.ID.String(), string(n.Status))
	}
	return nil
}

// Accept moves a pending note to accepted.
func (n *ExchangeNote) Accept(approvedBy string) error {
	if n.Status != entity.StatusPending {
		return apperror.NewTransactionImmutable(n.ID.String(), string(n.Status))
	}
	n.Status = entity.StatusAccepted
	n.ApprovedBy = approvedBy
	return nil
}

// Finish moves an accepted note to finished and completes its lines.
// Finished is terminal.
func (n *ExchangeNote) Finish() error {
	if n.Status != entity.StatusAccepted {
		return apperror.NewTransactionNotFinalizable(n.ID.String(), string(n.Status))
	}
	n.Status = entity.StatusFinished
	for i := range n.Items {
		if n.Items[i].Status == ItemStatusPending {
			n.Items[i].Status = ItemStatusCompleted
		}
	}
	return nil
}

// Reject cancels a pending or accepted note and its lines.
// Rejected is terminal.
func (n *ExchangeNote) Reject() error {
	if n.Status.IsFinal() {
		return apperror.NewTransactionImmutable(n.ID.String(), string(n.Status))
	}
	n.Status = entity.StatusRejected
	for i := range n.Items {
		if n.Items[i].Status == ItemStatusPending {
			n.Items[i].Status = ItemStatusCanceled
		}
	}
	return nil
}

// --- Postable interface implementation ---
// GetID, GetDate, IsPosted are inherited from entity.Document.

// GetDocumentType returns the document type name.
func (n *ExchangeNote) GetDocumentType() string {
	return "ExchangeNote"
}

// CanPost allows posting only for finished notes.
func (n *ExchangeNote) CanPost(ctx context.Context) error {
	if n.Status != entity.StatusFinished {
		return apperror.NewTransactionNotFinalizable(n.ID.String(), string(n.Status))
	}
	return n.Validate(ctx)
}

// GenerateMovements creates stock register movements for completed lines.
// IMPORT writes a receipt to the destination, EXPORT an expense from the
// source, TRANSFER both halves under the TRANSFER kind so they net to
// zero in import/export aggregates.
func (n *ExchangeNote) GenerateMovements(ctx context.Context) (*posting.MovementSet, error) {
	movements := posting.NewMovementSet()

	for _, item := range n.Items {
		if item.Status != ItemStatusCompleted {
			continue
		}

		switch n.Type {
		case TypeImport:
			movements.AddStock(entity.NewStockMovement(
				n.ID, n.GetDocumentType(), n.Date,
				entity.RecordTypeReceipt, entity.MovementKindImport,
				*n.DestinationWarehouseID, item.ProductID, item.Quantity,
			))
		case TypeExport:
			movements.AddStock(entity.NewStockMovement(
				n.ID, n.GetDocumentType(), n.Date,
				entity.RecordTypeExpense, entity.MovementKindExport,
				*n.SourceWarehouseID, item.ProductID, item.Quantity,
			))
		case TypeTransfer:
			movements.AddStock(entity.NewStockMovement(
				n.ID, n.GetDocumentType(), n.Date,
				entity.RecordTypeExpense, entity.MovementKindTransfer,
				*n.SourceWarehouseID, item.ProductID, item.Quantity,
			))
			movements.AddStock(entity.NewStockMovement(
				n.ID, n.GetDocumentType(), n.Date,
				entity.RecordTypeReceipt, entity.MovementKindTransfer,
				*n.DestinationWarehouseID, item.ProductID, item.Quantity,
			))
		}
	}

	return movements, nil
}

// Ensure interface compliance at compile time.
var _ posting.Postable = (*ExchangeNote)(nil)
