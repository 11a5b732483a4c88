package product_type

import (
	"context"
	"fmt"
	"time"

	"stockyard/internal/core/apperror"
	"stockyard/internal/core/id"
	"stockyard/internal/core/numerator"
	"stockyard/internal/core/tx"
	"stockyard/internal/domain"
	"stockyard/internal/domain/catalogs/category"
)

// Service provides business logic for the ProductType catalog.
type Service struct {
	*domain.CatalogService[*ProductType]
	repo       Repository
	categories category.Repository
	numerator  numerator.Generator
}

// NewService creates a new ProductType service.
func NewService(
	repo Repository,
	categories category.Repository,
	txManager tx.Manager,
	numerator numerator.Generator,
) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*ProductType]{
		Repo:       repo,
		TxManager:  txManager,
		Numerator:  numerator,
		EntityName: "product type",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		categories:     categories,
		numerator:      numerator,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)
	base.Hooks().OnBeforeUpdate(svc.checkCategory)

	return svc
}

// prepareForCreate handles code generation, uniqueness and category checks.
func (s *Service) prepareForCreate(ctx context.Context, pt *ProductType) error {
	if pt.Code == "" {
		code, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("PT"), nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		pt.Code = code
	} else {
		exists, err := s.repo.ExistsByCode(ctx, pt.Code)
		if err != nil {
			return fmt.Errorf("check product type code: %w", err)
		}
		if exists {
			return apperror.NewDuplicate("product type", "code", pt.Code)
		}
	}

	return s.checkCategory(ctx, pt)
}

// checkCategory verifies the referenced category exists and is not marked deleted.
func (s *Service) checkCategory(ctx context.Context, pt *ProductType) error {
	cat, err := s.categories.GetByID(ctx, pt.CategoryID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewNotFound("category", pt.CategoryID.String())
		}
		return err
	}
	if cat.DeletionMark {
		return apperror.NewBusinessRule("CATEGORY_DELETED", "category is marked for deletion").
			WithDetail("categoryId", pt.CategoryID.String())
	}
	return nil
}

// FindByCategory retrieves product types belonging to a category.
func (s *Service) FindByCategory(ctx context.Context, categoryID id.ID, filter domain.ListFilter) (domain.ListResult[*ProductType], error) {
	return s.repo.FindByCategory(ctx, categoryID, filter)
}
