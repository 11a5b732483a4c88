package handlers

import (
	"stockyard/internal/domain/catalogs/product_type"
	"stockyard/internal/infrastructure/http/v1/dto"
)

// ProductTypeHTTPHandler serves the product type catalog endpoints.
type ProductTypeHTTPHandler = CatalogHandler[
	*product_type.ProductType,
	dto.CreateProductTypeRequest,
	dto.UpdateProductTypeRequest,
]

// NewProductTypeHandler wires the generic catalog handler with product type mappers.
func NewProductTypeHandler(
	base *BaseHandler,
	service *product_type.Service,
) *ProductTypeHTTPHandler {
	config := CatalogHandlerConfig[
		*product_type.ProductType,
		dto.CreateProductTypeRequest,
		dto.UpdateProductTypeRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "product type",

		MapCreateDTO: func(req dto.CreateProductTypeRequest) *product_type.ProductType {
			return req.ToEntity()
		},

		MapUpdateDTO: func(req dto.UpdateProductTypeRequest, existing *product_type.ProductType) *product_type.ProductType {
			req.ApplyTo(existing)
			return existing
		},

		MapToDTO: func(entity *product_type.ProductType) any {
			return dto.FromProductType(entity)
		},
	}

	return NewCatalogHandler(base, config)
}
