// Package category provides the product Category catalog.
// Categories group product types for navigation and reporting.
package category

import (
	"context"

	"stockyard/internal/core/apperror"
	"stockyard/internal/core/entity"
)

// Category represents a product grouping.
type Category struct {
	entity.Catalog

	// Description is an optional free-form note
	Description *string `db:"description" json:"description,omitempty"`
}

// NewCategory creates a new Category with required fields.
func NewCategory(code, name string) *Category {
	return &Category{
		Catalog: entity.NewCatalog(code, name),
	}
}

// Validate implements entity.Validatable interface.
func (c *Category) Validate(ctx context.Context) error {
	if err := c.Catalog.Validate(ctx); err != nil {
		return err
	}

	if len(c.Code) > 50 {
		return apperror.NewValidation("category code too long").
			WithDetail("field", "code").
			WithDetail("maxLength", 50)
	}

	return nil
}
