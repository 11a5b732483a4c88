package product

import (
	"context"

	"stockyard/internal/core/id"
	"stockyard/internal/domain"
)

// Repository defines the interface for Product persistence.
type Repository interface {
	domain.CatalogRepository[*Product]

	// GetForUpdate retrieves product with row lock.
	GetForUpdate(ctx context.Context, id id.ID) (*Product, error)

	// FindByType retrieves products belonging to a product type.
	FindByType(ctx context.Context, productTypeID id.ID, filter domain.ListFilter) (domain.ListResult[*Product], error)
}
