// Package warehouse provides the Warehouse catalog.
// Warehouses represent physical locations for storing goods. A system
// warehouse is a technical counterpart location that never holds stock
// of its own and may only appear on transfer documents.
package warehouse

import (
	"context"

	"stockyard/internal/core/apperror"
	"stockyard/internal/core/entity"
)

// WarehouseType defines the type of warehouse.
type WarehouseType string

const (
	TypeMain         WarehouseType = "main"
	TypeDistribution WarehouseType = "distribution"
	TypeRetail       WarehouseType = "retail"
	TypeTransit      WarehouseType = "transit"
)

// Warehouse represents a storage location for goods.
type Warehouse struct {
	entity.Catalog

	// Type defines the warehouse category
	Type WarehouseType `db:"type" json:"type"`

	// Address is the physical address
	Address *string `db:"address" json:"address,omitempty"`

	// IsActive indicates if warehouse is operational
	IsActive bool `db:"is_active" json:"isActive"`

	// IsSystem marks the virtual system warehouse used as the external
	// side of transfer documents
	IsSystem bool `db:"is_system" json:"isSystem"`

	// AllowNegativeStock indicates if negative stock is allowed
	AllowNegativeStock bool `db:"allow_negative_stock" json:"allowNegativeStock"`

	// IsDefault indicates if this is the default warehouse
	IsDefault bool `db:"is_default" json:"isDefault"`

	// Description
	Description *string `db:"description" json:"description,omitempty"`
}

// NewWarehouse creates a new Warehouse with required fields.
func NewWarehouse(code, name string, whType WarehouseType) *Warehouse {
	return &Warehouse{
		Catalog:  entity.NewCatalog(code, name),
		Type:     whType,
		IsActive: true,
	}
}

// Validate implements entity.Validatable interface.
func (w *Warehouse) Validate(ctx context.Context) error {
	if err := w.Catalog.Validate(ctx); err != nil {
		return err
	}

	if !isValidWarehouseType(w.Type) {
		return apperror.NewValidation("invalid warehouse type").
			WithDetail("field", "type").
			WithDetail("value", string(w.Type))
	}

	if len(w.Code) > 6 {
		return apperror.NewValidation("warehouse code must be at most 6 characters").
			WithDetail("field", "code").
			WithDetail("value", w.Code)
	}

	if w.IsSystem && w.IsDefault {
		return apperror.NewValidation("system warehouse cannot be the default warehouse").
			WithDetail("field", "isDefault")
	}

	return nil
}

// CanAcceptStock returns true if warehouse can accept stock outside transfers.
func (w *Warehouse) CanAcceptStock() bool {
	return w.IsActive && !w.IsFolder && !w.IsSystem
}

// CanIssueStock returns true if warehouse can issue stock outside transfers.
func (w *Warehouse) CanIssueStock(negativeAllowed bool) bool {
	return w.IsActive && !w.IsFolder && !w.IsSystem && (negativeAllowed || w.AllowNegativeStock)
}

func isValidWarehouseType(t WarehouseType) bool {
	switch t {
	case TypeMain, TypeDistribution, TypeRetail, TypeTransit:
		return true
	}
	return false
}
