package dto

import (
	"stockyard/internal/core/id"
	"stockyard/internal/domain/catalogs/product"
)

// --- Request DTOs ---

// CreateProductRequest is the request body for creating a product.
type CreateProductRequest struct {
	Code          string  `json:"code"`
	Name          string  `json:"name" binding:"required"`
	ProductTypeID string  `json:"productTypeId" binding:"required"`
	Size          string  `json:"size" binding:"required"`
	Color         string  `json:"color" binding:"required"`
	ImageURL      *string `json:"imageUrl"`
	Description   *string `json:"description"`
	ParentID      *string `json:"parentId"`
	IsFolder      bool    `json:"isFolder"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateProductRequest) ToEntity() *product.Product {
	typeID, _ := id.Parse(r.ProductTypeID)
	p := product.NewProduct(r.Code, r.Name, typeID, r.Size, r.Color)
	p.ImageURL = r.ImageURL
	p.Description = r.Description
	p.ParentID = r.ParentID
	p.IsFolder = r.IsFolder
	return p
}

// UpdateProductRequest is the request body for updating a product.
type UpdateProductRequest struct {
	Code          string                `json:"code"`
	Name          string                `json:"name" binding:"required"`
	ProductTypeID string                `json:"productTypeId" binding:"required"`
	Size          string                `json:"size" binding:"required"`
	Color         string                `json:"color" binding:"required"`
	Status        product.ProductStatus `json:"status" binding:"required"`
	ImageURL      *string               `json:"imageUrl,omitempty"`
	Description   *string               `json:"description,omitempty"`
	ParentID      *string               `json:"parentId,omitempty"`
	IsFolder      bool                  `json:"isFolder"`
	Version       int                   `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateProductRequest) ApplyTo(p *product.Product) {
	typeID, _ := id.Parse(r.ProductTypeID)
	p.Code = r.Code
	p.Name = r.Name
	p.ProductTypeID = typeID
	p.Size = r.Size
	p.Color = r.Color
	p.Status = r.Status
	p.ImageURL = r.ImageURL
	p.Description = r.Description
	p.ParentID = r.ParentID
	p.IsFolder = r.IsFolder
	p.Version = r.Version
}

// --- Response DTOs ---

// ProductResponse is the response body for a product.
type ProductResponse struct {
	ID            string                `json:"id"`
	Code          string                `json:"code"`
	Name          string                `json:"name"`
	ProductTypeID string                `json:"productTypeId"`
	Size          string                `json:"size"`
	Color         string                `json:"color"`
	Status        product.ProductStatus `json:"status"`
	ImageURL      *string               `json:"imageUrl,omitempty"`
	Description   *string               `json:"description,omitempty"`
	ParentID      *string               `json:"parentId,omitempty"`
	IsFolder      bool                  `json:"isFolder"`
	DeletionMark  bool                  `json:"deletionMark"`
	Version       int                   `json:"version"`
}

// FromProduct creates response DTO from domain entity.
func FromProduct(p *product.Product) *ProductResponse {
	return &ProductResponse{
		ID:            p.ID.String(),
		Code:          p.Code,
		Name:          p.Name,
		ProductTypeID: p.ProductTypeID.String(),
		Size:          p.Size,
		Color:         p.Color,
		Status:        p.Status,
		ImageURL:      p.ImageURL,
		Description:   p.Description,
		ParentID:      p.ParentID,
		IsFolder:      p.IsFolder,
		DeletionMark:  p.DeletionMark,
		Version:       p.Version,
	}
}
