package exchange_note

import (
	"context"
	"time"

	"stockyard/internal/core/id"
	"stockyard/internal/domain"
)

// Repository defines operations for exchange note documents.
type Repository interface {
	// CRUD operations
	Create(ctx context.Context, note *ExchangeNote) error
	GetByID(ctx context.Context, noteID id.ID) (*ExchangeNote, error)
	GetByNumber(ctx context.Context, number string) (*ExchangeNote, error)
	Update(ctx context.Context, note *ExchangeNote) error
	Delete(ctx context.Context, noteID id.ID) error

	// Line operations
	GetItems(ctx context.Context, noteID id.ID) ([]NoteItem, error)
	SaveItems(ctx context.Context, noteID id.ID, items []NoteItem) error

	// List operations
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*ExchangeNote], error)

	// Locking
	GetForUpdate(ctx context.Context, noteID id.ID) (*ExchangeNote, error)
}

// ListFilter for filtering exchange notes.
type ListFilter struct {
	domain.ListFilter

	// Document-specific filters
	Type        *NoteType
	Status      *string
	WarehouseID *id.ID // matches either source or destination
	ProductID   *id.ID // notes containing the product
	DateFrom    *time.Time
	DateTo      *time.Time
}
