// Package product provides the Product catalog.
// A product is a concrete stock-keeping variant (size and color)
// of a product type. Stock on hand is not stored on the product,
// it is always derived from the stock movement ledger.
package product

import (
	"context"

	"stockyard/internal/core/apperror"
	"stockyard/internal/core/entity"
	"stockyard/internal/core/id"
)

// ProductStatus defines the lifecycle state of a product.
type ProductStatus string

const (
	StatusActive       ProductStatus = "active"
	StatusInactive     ProductStatus = "inactive"
	StatusDiscontinued ProductStatus = "discontinued"
)

// Product represents a stock-keeping unit.
type Product struct {
	entity.Catalog

	// ProductTypeID is the reference to the owning product type
	ProductTypeID id.ID `db:"product_type_id" json:"productTypeId"`

	// Size is the variant size label (S, M, 42, ...)
	Size string `db:"size" json:"size"`

	// Color is the variant color label
	Color string `db:"color" json:"color"`

	// Status defines whether the product participates in stock operations
	Status ProductStatus `db:"status" json:"status"`

	// ImageURL is an optional product image
	ImageURL *string `db:"image_url" json:"imageUrl,omitempty"`

	// Description is an optional free-form note
	Description *string `db:"description" json:"description,omitempty"`
}

// NewProduct creates a new Product with required fields.
func NewProduct(code, name string, productTypeID id.ID, size, color string) *Product {
	return &Product{
		Catalog:       entity.NewCatalog(code, name),
		ProductTypeID: productTypeID,
		Size:          size,
		Color:         color,
		Status:        StatusActive,
	}
}

// Validate implements entity.Validatable interface.
func (p *Product) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(p.ProductTypeID) {
		return apperror.NewValidation("product type is required").
			WithDetail("field", "productTypeId")
	}

	if len(p.Code) > 6 {
		return apperror.NewValidation("product code must be at most 6 characters").
			WithDetail("field", "code").
			WithDetail("value", p.Code)
	}

	if p.Size == "" {
		return apperror.NewValidation("size is required").
			WithDetail("field", "size")
	}

	if p.Color == "" {
		return apperror.NewValidation("color is required").
			WithDetail("field", "color")
	}

	if !isValidStatus(p.Status) {
		return apperror.NewValidation("invalid product status").
			WithDetail("field", "status").
			WithDetail("value", string(p.Status))
	}

	return nil
}

// IsStockable returns true if the product may appear on stock documents.
func (p *Product) IsStockable() bool {
	return p.Status == StatusActive && !p.IsFolder && !p.DeletionMark
}

func isValidStatus(s ProductStatus) bool {
	switch s {
	case StatusActive, StatusInactive, StatusDiscontinued:
		return true
	}
	return false
}
