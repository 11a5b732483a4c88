package stock_check

import (
	"context"
	"time"

	"stockyard/internal/core/id"
	"stockyard/internal/core/types"
	"stockyard/internal/domain"
)

// PreviousCount is the baseline from the latest finished check of a
// warehouse and product pair.
type PreviousCount struct {
	Quantity types.Quantity
	Date     time.Time
}

// Repository defines operations for stock check documents.
type Repository interface {
	// CRUD operations
	Create(ctx context.Context, note *StockCheckNote) error
	GetByID(ctx context.Context, noteID id.ID) (*StockCheckNote, error)
	GetByNumber(ctx context.Context, number string) (*StockCheckNote, error)
	Update(ctx context.Context, note *StockCheckNote) error
	Delete(ctx context.Context, noteID id.ID) error

	// Line operations
	GetLines(ctx context.Context, noteID id.ID) ([]StockCheckLine, error)
	SaveLines(ctx context.Context, noteID id.ID, lines []StockCheckLine) error

	// GetLastCount returns the counted quantity and date from the latest
	// finished check covering the product, or nil when none exists.
	GetLastCount(ctx context.Context, warehouseID, productID id.ID) (*PreviousCount, error)

	// List operations
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*StockCheckNote], error)

	// Locking
	GetForUpdate(ctx context.Context, noteID id.ID) (*StockCheckNote, error)
}

// ListFilter for filtering stock check notes.
type ListFilter struct {
	domain.ListFilter

	// Document-specific filters
	WarehouseID *id.ID
	Status      *string
	CheckedBy   *string
	DateFrom    *time.Time
	DateTo      *time.Time
}
