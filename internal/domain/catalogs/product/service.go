package product

import (
	"context"
	"fmt"
	"time"

	"stockyard/internal/core/apperror"
	"stockyard/internal/core/id"
	"stockyard/internal/core/numerator"
	"stockyard/internal/core/tx"
	"stockyard/internal/domain"
	"stockyard/internal/domain/catalogs/product_type"
)

// Service provides business logic for the Product catalog.
type Service struct {
	*domain.CatalogService[*Product]
	repo      Repository
	types     product_type.Repository
	numerator numerator.Generator
}

// NewService creates a new Product service.
func NewService(
	repo Repository,
	types product_type.Repository,
	txManager tx.Manager,
	numerator numerator.Generator,
) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Product]{
		Repo:       repo,
		TxManager:  txManager,
		Numerator:  numerator,
		EntityName: "product",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		types:          types,
		numerator:      numerator,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)
	base.Hooks().OnBeforeUpdate(svc.checkProductType)

	return svc
}

// prepareForCreate handles code generation, uniqueness and type checks.
func (s *Service) prepareForCreate(ctx context.Context, p *Product) error {
	if p.Code == "" {
		code, err := s.numerator.GetNextNumber(ctx, numerator.Config{
			Prefix:      "P",
			IncludeYear: false,
			PadWidth:    5,
			ResetPeriod: "never",
		}, nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		p.Code = code
	} else {
		exists, err := s.repo.ExistsByCode(ctx, p.Code)
		if err != nil {
			return fmt.Errorf("check product code: %w", err)
		}
		if exists {
			return apperror.NewDuplicate("product", "code", p.Code)
		}
	}

	return s.checkProductType(ctx, p)
}

// checkProductType verifies the referenced product type exists.
func (s *Service) checkProductType(ctx context.Context, p *Product) error {
	pt, err := s.types.GetByID(ctx, p.ProductTypeID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewNotFound("product type", p.ProductTypeID.String())
		}
		return err
	}
	if pt.DeletionMark {
		return apperror.NewBusinessRule("PRODUCT_TYPE_DELETED", "product type is marked for deletion").
			WithDetail("productTypeId", p.ProductTypeID.String())
	}
	return nil
}

// FindByType retrieves products belonging to a product type.
func (s *Service) FindByType(ctx context.Context, productTypeID id.ID, filter domain.ListFilter) (domain.ListResult[*Product], error) {
	return s.repo.FindByType(ctx, productTypeID, filter)
}

// Deactivate marks a product as inactive so it no longer appears on new documents.
func (s *Service) Deactivate(ctx context.Context, productID id.ID) error {
	p, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewNotFound("product", productID.String())
		}
		return err
	}
	if p.Status == StatusInactive {
		return nil
	}
	p.Status = StatusInactive
	return s.Update(ctx, p)
}
