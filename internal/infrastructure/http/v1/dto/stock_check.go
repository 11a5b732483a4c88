package dto

import (
	"time"

	"stockyard/internal/core/types"
	"stockyard/internal/domain/documents/stock_check"
)

// --- Request DTOs ---

// CreateStockCheckRequest represents a request to create a stock check note.
type CreateStockCheckRequest struct {
	WarehouseID string                  `json:"warehouseId" binding:"required"`
	Date        *time.Time              `json:"date,omitempty"`
	CheckedBy   string                  `json:"checkedBy,omitempty"`
	Description string                  `json:"description,omitempty"`
	Comment     string                  `json:"comment,omitempty"`
	Lines       []StockCheckLineRequest `json:"lines" binding:"dive"`
}

// StockCheckLineRequest represents a counted product in requests.
type StockCheckLineRequest struct {
	ProductID      string  `json:"productId" binding:"required"`
	ActualQuantity float64 `json:"actualQuantity" binding:"gte=0"`
}

// ToEntity converts request to domain entity.
// CheckedBy defaults to the authenticated user in the handler.
func (r *CreateStockCheckRequest) ToEntity(checkedBy string) (*stock_check.StockCheckNote, error) {
	warehouseID, err := parseRequiredID("warehouseId", r.WarehouseID)
	if err != nil {
		return nil, err
	}

	if r.CheckedBy != "" {
		checkedBy = r.CheckedBy
	}

	note := stock_check.NewStockCheckNote(warehouseID, checkedBy)
	if r.Date != nil {
		note.Date = *r.Date
	}
	note.Description = r.Description
	note.Comment = r.Comment

	for _, line := range r.Lines {
		productID, err := parseRequiredID("productId", line.ProductID)
		if err != nil {
			return nil, err
		}
		// Ledger snapshot fields are filled by the service
		note.AddLine(productID, 0, 0, 0, types.NewQuantityFromFloat64(line.ActualQuantity))
	}

	return note, nil
}

// AddCheckProductRequest adds or re-counts one product on a check.
type AddCheckProductRequest struct {
	ProductID      string  `json:"productId" binding:"required"`
	ActualQuantity float64 `json:"actualQuantity" binding:"gte=0"`
}

// UpdateActualQuantityRequest overwrites the counted quantity of a line.
type UpdateActualQuantityRequest struct {
	ActualQuantity float64 `json:"actualQuantity" binding:"gte=0"`
}

// FinalizeStockCheckRequest closes a check: confirm records the count as
// finished, otherwise the whole note is rejected.
type FinalizeStockCheckRequest struct {
	Confirm *bool `json:"confirm" binding:"required"`
}

// --- Response DTOs ---

// StockCheckResponse represents a stock check note in API responses.
type StockCheckResponse struct {
	ID           string                   `json:"id"`
	Number       string                   `json:"number"`
	Date         time.Time                `json:"date"`
	Status       string                   `json:"status"`
	WarehouseID  string                   `json:"warehouseId"`
	CheckedBy    string                   `json:"checkedBy"`
	Description  string                   `json:"description,omitempty"`
	Comment      string                   `json:"comment,omitempty"`
	Lines        []StockCheckLineResponse `json:"lines,omitempty"`
	DeletionMark bool                     `json:"deletionMark,omitempty"`
	Version      int                      `json:"version"`
	CreatedAt    time.Time                `json:"createdAt"`
	UpdatedAt    time.Time                `json:"updatedAt"`
}

// StockCheckLineResponse represents a counted product in API responses.
type StockCheckLineResponse struct {
	LineID              string    `json:"lineId"`
	LineNo              int       `json:"lineNo"`
	ProductID           string    `json:"productId"`
	LastQuantity        float64   `json:"lastQuantity"`
	TotalImportQuantity float64   `json:"totalImportQuantity"`
	TotalExportQuantity float64   `json:"totalExportQuantity"`
	ExpectedQuantity    float64   `json:"expectedQuantity"`
	ActualQuantity      float64   `json:"actualQuantity"`
	Difference          float64   `json:"difference"`
	Status              string    `json:"status"`
	CountedAt           time.Time `json:"countedAt"`
}

// FromStockCheck converts domain entity to response DTO.
func FromStockCheck(note *stock_check.StockCheckNote) *StockCheckResponse {
	resp := &StockCheckResponse{
		ID:           note.ID.String(),
		Number:       note.Number,
		Date:         note.Date,
		Status:       string(note.Status),
		WarehouseID:  note.WarehouseID.String(),
		CheckedBy:    note.CheckedBy,
		Description:  note.Description,
		Comment:      note.Comment,
		DeletionMark: note.DeletionMark,
		Version:      note.Version,
		CreatedAt:    note.CreatedAt,
		UpdatedAt:    note.UpdatedAt,
	}

	resp.Lines = make([]StockCheckLineResponse, len(note.Lines))
	for i := range note.Lines {
		line := &note.Lines[i]
		resp.Lines[i] = StockCheckLineResponse{
			LineID:              line.LineID.String(),
			LineNo:              line.LineNo,
			ProductID:           line.ProductID.String(),
			LastQuantity:        line.LastQuantity.Float64(),
			TotalImportQuantity: line.TotalImportQuantity.Float64(),
			TotalExportQuantity: line.TotalExportQuantity.Float64(),
			ExpectedQuantity:    line.ExpectedQuantity.Float64(),
			ActualQuantity:      line.ActualQuantity.Float64(),
			Difference:          line.Difference().Float64(),
			Status:              string(line.Status),
			CountedAt:           line.CountedAt,
		}
	}

	return resp
}

// ComparisonResponse is one row of the expected-versus-actual report.
type ComparisonResponse struct {
	ProductID  string  `json:"productId"`
	Expected   float64 `json:"expected"`
	Actual     float64 `json:"actual"`
	Difference float64 `json:"difference"`
}

// FromComparisons converts the service report to response DTOs.
func FromComparisons(rows []stock_check.Comparison) []ComparisonResponse {
	out := make([]ComparisonResponse, len(rows))
	for i, row := range rows {
		out[i] = ComparisonResponse{
			ProductID:  row.ProductID.String(),
			Expected:   row.Expected.Float64(),
			Actual:     row.Actual.Float64(),
			Difference: row.Difference.Float64(),
		}
	}
	return out
}
