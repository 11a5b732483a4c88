package product_type

import (
	"context"

	"stockyard/internal/core/id"
	"stockyard/internal/domain"
)

// Repository defines the interface for ProductType persistence.
type Repository interface {
	domain.CatalogRepository[*ProductType]

	// GetForUpdate retrieves product type with row lock.
	GetForUpdate(ctx context.Context, id id.ID) (*ProductType, error)

	// FindByCategory retrieves product types belonging to a category.
	FindByCategory(ctx context.Context, categoryID id.ID, filter domain.ListFilter) (domain.ListResult[*ProductType], error)
}
