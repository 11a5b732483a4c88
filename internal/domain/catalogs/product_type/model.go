// Package product_type provides the ProductType catalog.
// A product type belongs to a category and carries the list price
// shared by all product variants of that type.
package product_type

import (
	"context"

	"github.com/shopspring/decimal"

	"stockyard/internal/core/apperror"
	"stockyard/internal/core/entity"
	"stockyard/internal/core/id"
)

// ProductType represents a priced product model within a category.
type ProductType struct {
	entity.Catalog

	// CategoryID is the reference to the owning category
	CategoryID id.ID `db:"category_id" json:"categoryId"`

	// Price is the list price per unit
	Price decimal.Decimal `db:"price" json:"price"`

	// Description is an optional free-form note
	Description *string `db:"description" json:"description,omitempty"`
}

// NewProductType creates a new ProductType with required fields.
func NewProductType(code, name string, categoryID id.ID) *ProductType {
	return &ProductType{
		Catalog:    entity.NewCatalog(code, name),
		CategoryID: categoryID,
		Price:      decimal.Zero,
	}
}

// Validate implements entity.Validatable interface.
func (t *ProductType) Validate(ctx context.Context) error {
	if err := t.Catalog.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(t.CategoryID) {
		return apperror.NewValidation("category is required").
			WithDetail("field", "categoryId")
	}

	if t.Price.IsNegative() {
		return apperror.NewValidation("price cannot be negative").
			WithDetail("field", "price")
	}

	return nil
}
