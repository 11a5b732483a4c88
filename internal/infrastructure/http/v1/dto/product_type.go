package dto

import (
	"github.com/shopspring/decimal"

	"stockyard/internal/core/id"
	"stockyard/internal/domain/catalogs/product_type"
)

// --- Request DTOs ---

// CreateProductTypeRequest is the request body for creating a product type.
type CreateProductTypeRequest struct {
	Code        string          `json:"code"`
	Name        string          `json:"name" binding:"required"`
	CategoryID  string          `json:"categoryId" binding:"required"`
	Price       decimal.Decimal `json:"price"`
	Description *string         `json:"description"`
	ParentID    *string         `json:"parentId"`
	IsFolder    bool            `json:"isFolder"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateProductTypeRequest) ToEntity() *product_type.ProductType {
	categoryID, _ := id.Parse(r.CategoryID)
	pt := product_type.NewProductType(r.Code, r.Name, categoryID)
	pt.Price = r.Price
	pt.Description = r.Description
	pt.ParentID = r.ParentID
	pt.IsFolder = r.IsFolder
	return pt
}

// UpdateProductTypeRequest is the request body for updating a product type.
type UpdateProductTypeRequest struct {
	Code        string          `json:"code"`
	Name        string          `json:"name" binding:"required"`
	CategoryID  string          `json:"categoryId" binding:"required"`
	Price       decimal.Decimal `json:"price"`
	Description *string         `json:"description,omitempty"`
	ParentID    *string         `json:"parentId,omitempty"`
	IsFolder    bool            `json:"isFolder"`
	Version     int             `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateProductTypeRequest) ApplyTo(pt *product_type.ProductType) {
	categoryID, _ := id.Parse(r.CategoryID)
	pt.Code = r.Code
	pt.Name = r.Name
	pt.CategoryID = categoryID
	pt.Price = r.Price
	pt.Description = r.Description
	pt.ParentID = r.ParentID
	pt.IsFolder = r.IsFolder
	pt.Version = r.Version
}

// --- Response DTOs ---

// ProductTypeResponse is the response body for a product type.
type ProductTypeResponse struct {
	ID           string          `json:"id"`
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	CategoryID   string          `json:"categoryId"`
	Price        decimal.Decimal `json:"price"`
	Description  *string         `json:"description,omitempty"`
	ParentID     *string         `json:"parentId,omitempty"`
	IsFolder     bool            `json:"isFolder"`
	DeletionMark bool            `json:"deletionMark"`
	Version      int             `json:"version"`
}

// FromProductType creates response DTO from domain entity.
func FromProductType(pt *product_type.ProductType) *ProductTypeResponse {
	return &ProductTypeResponse{
		ID:           pt.ID.String(),
		Code:         pt.Code,
		Name:         pt.Name,
		CategoryID:   pt.CategoryID.String(),
		Price:        pt.Price,
		Description:  pt.Description,
		ParentID:     pt.ParentID,
		IsFolder:     pt.IsFolder,
		DeletionMark: pt.DeletionMark,
		Version:      pt.Version,
	}
}
