// Package stock_check provides the StockCheckNote document.
// A stock check records a physical count of a warehouse and compares it
// against the quantity the stock ledger expects. It never writes register
// movements, discrepancies are resolved with follow-up exchange notes.
package stock_check

import (
	"context"
	"time"

	"stockyard/internal/core/apperror"
	"stockyard/internal/core/entity"
	"stockyard/internal/core/id"
	"stockyard/internal/core/types"
)

// LineStatus is the lifecycle state of a counted line.
// Lines stay temporary while the count is in progress and become finished
// only when the note itself is finished.
type LineStatus string

const (
	LineStatusTemporary LineStatus = "temporary"
	LineStatusFinished  LineStatus = "finished"
)

// StockCheckNote represents a physical count document for one warehouse.
type StockCheckNote struct {
	entity.Document

	// WarehouseID is the counted warehouse
	WarehouseID id.ID `db:"warehouse_id" json:"warehouseId"`

	// CheckedBy is the user code of the person performing the count
	CheckedBy string `db:"checked_by" json:"checkedBy"`

	// Description is an optional purpose note
	Description string `db:"description" json:"description,omitempty"`

	// Table part: counted products
	Lines []StockCheckLine `db:"-" json:"lines"`
}

// StockCheckLine represents one counted product.
// Expected quantity is a ledger snapshot taken when the line is added:
// the quantity found at the previous finished check plus imports minus
// exports recorded since then.
type StockCheckLine struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ProductID id.ID `db:"product_id" json:"productId"`

	// LastQuantity is the counted quantity from the previous finished check
	LastQuantity types.Quantity `db:"last_quantity" json:"lastQuantity"`

	// TotalImportQuantity is stock received since the previous check
	TotalImportQuantity types.Quantity `db:"total_import_quantity" json:"totalImportQuantity"`

	// TotalExportQuantity is stock issued since the previous check
	TotalExportQuantity types.Quantity `db:"total_export_quantity" json:"totalExportQuantity"`

	// ExpectedQuantity is derived: LastQuantity + imports - exports
	ExpectedQuantity types.Quantity `db:"expected_quantity" json:"expectedQuantity"`

	// ActualQuantity is the physically counted quantity
	ActualQuantity types.Quantity `db:"actual_quantity" json:"actualQuantity"`

	Status LineStatus `db:"status" json:"status"`

	CountedAt time.Time `db:"counted_at" json:"countedAt"`
}

// Difference returns the counted surplus (positive) or shortage (negative).
func (l *StockCheckLine) Difference() types.Quantity {
	return l.ActualQuantity - l.ExpectedQuantity
}

// recalculate refreshes the derived expected quantity.
func (l *StockCheckLine) recalculate() {
	l.ExpectedQuantity = l.LastQuantity + l.TotalImportQuantity - l.TotalExportQuantity
}

// NewStockCheckNote creates a new pending stock check for a warehouse.
func NewStockCheckNote(warehouseID id.ID, checkedBy string) *StockCheckNote {
	return &StockCheckNote{
		Document:    entity.NewDocument(),
		WarehouseID: warehouseID,
		CheckedBy:   checkedBy,
		Lines:       make([]StockCheckLine, 0),
	}
}

// AddLine appends a temporary counted line with its ledger snapshot.
func (n *StockCheckNote) AddLine(productID id.ID, lastQty, totalImport, totalExport, actualQty types.Quantity) *StockCheckLine {
	line := StockCheckLine{
		LineID:              id.New(),
		LineNo:              len(n.Lines) + 1,
		ProductID:           productID,
		LastQuantity:        lastQty,
		TotalImportQuantity: totalImport,
		TotalExportQuantity: totalExport,
		ActualQuantity:      actualQty,
		Status:              LineStatusTemporary,
		CountedAt:           time.Now().UTC(),
	}
	line.recalculate()
	n.Lines = append(n.Lines, line)
	return &n.Lines[len(n.Lines)-1]
}

// FindLine returns the line for a product, or nil.
func (n *StockCheckNote) FindLine(productID id.ID) *StockCheckLine {
	for i := range n.Lines {
		if n.Lines[i].ProductID == productID {
			return &n.Lines[i]
		}
	}
	return nil
}

// SetActualQuantity updates the physical count for a product line.
func (n *StockCheckNote) SetActualQuantity(productID id.ID, actualQty types.Quantity) error {
	if err := n.CanModify(); err != nil {
		return err
	}
	line := n.FindLine(productID)
	if line == nil {
		return apperror.NewNotFound("stock check line", productID.String())
	}
	line.ActualQuantity = actualQty
	line.CountedAt = time.Now().UTC()
	return nil
}

// RemoveLine drops a temporary product line and renumbers the rest.
func (n *StockCheckNote) RemoveLine(productID id.ID) error {
	if err := n.CanModify(); err != nil {
		return err
	}
	for i := range n.Lines {
		if n.Lines[i].ProductID == productID {
			n.Lines = append(n.Lines[:i], n.Lines[i+1:]...)
			for j := range n.Lines {
				n.Lines[j].LineNo = j + 1
			}
			return nil
		}
	}
	return apperror.NewNotFound("stock check line", productID.String())
}

// Validate implements entity.Validatable.
func (n *StockCheckNote) Validate(ctx context.Context) error {
	if err := n.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(n.WarehouseID) {
		return apperror.NewValidation("warehouse is required").
			WithDetail("field", "warehouseId")
	}
	if n.CheckedBy == "" {
		return apperror.NewValidation("checker is required").
			WithDetail("field", "checkedBy")
	}

	seen := make(map[id.ID]struct{}, len(n.Lines))
	for i, line := range n.Lines {
		if id.IsNil(line.ProductID) {
			return apperror.NewValidation("product is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if line.ActualQuantity.IsNegative() {
			return apperror.NewValidation("actual quantity cannot be negative").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		// One count per product per note.
		if _, dup := seen[line.ProductID]; dup {
			return apperror.NewDuplicate("stock check line", "productId", line.ProductID.String())
		}
		seen[line.ProductID] = struct{}{}
	}

	return nil
}

// CanModify reports whether lines may still change. Counts are editable
// while pending or accepted, final notes are frozen.
func (n *StockCheckNote) CanModify() error {
	if n.Status.IsFinal() {
		return apperror.NewStockCheckImmutable(n.ID.String(), string(n.Status))
	}
	return nil
}

// Accept moves a pending note to accepted.
func (n *StockCheckNote) Accept() error {
	if n.Status != entity.StatusPending {
		return apperror.NewStockCheckImmutable(n.ID.String(), string(n.Status))
	}
	n.Status = entity.StatusAccepted
	return nil
}

// Finish confirms an accepted count. Lines become finished and serve as
// the baseline for the next check. Finished is terminal.
func (n *StockCheckNote) Finish() error {
	if n.Status != entity.StatusAccepted {
		return apperror.NewStockCheckNotFinalizable(n.ID.String(), string(n.Status))
	}
	if len(n.Lines) == 0 {
		return apperror.NewStockCheckProductsRequired(n.ID.String())
	}
	n.Status = entity.StatusFinished
	for i := range n.Lines {
		n.Lines[i].Status = LineStatusFinished
	}
	return nil
}

// Reject discards an accepted count. Both finalize outcomes share the
// same preconditions: only an accepted note with counted lines can be
// closed. Rejected is terminal and drops the temporary lines.
func (n *StockCheckNote) Reject() error {
	if n.Status != entity.StatusAccepted {
		return apperror.NewStockCheckNotFinalizable(n.ID.String(), string(n.Status))
	}
	if len(n.Lines) == 0 {
		return apperror.NewStockCheckProductsRequired(n.ID.String())
	}
	n.Status = entity.StatusRejected
	n.Lines = n.Lines[:0]
	return nil
}

// GetDocumentType returns the document type name.
func (n *StockCheckNote) GetDocumentType() string {
	return "StockCheckNote"
}
