package category

import (
	"context"

	"stockyard/internal/core/id"
	"stockyard/internal/domain"
)

// Repository defines the interface for Category persistence.
type Repository interface {
	domain.CatalogRepository[*Category]

	// GetForUpdate retrieves category with row lock.
	GetForUpdate(ctx context.Context, id id.ID) (*Category, error)
}
