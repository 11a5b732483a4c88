package warehouse

import (
	"context"
	"fmt"
	"time"

	"stockyard/internal/core/apperror"
	"stockyard/internal/core/numerator"
	"stockyard/internal/core/tx"
	"stockyard/internal/domain"
)

// Service provides business logic for the Warehouse catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Warehouse]
	repo      Repository
	numerator numerator.Generator
}

// NewService creates a new Warehouse service.
func NewService(
	repo Repository,
	txManager tx.Manager,
	numerator numerator.Generator,
) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Warehouse]{
		Repo:       repo,
		TxManager:  txManager,
		Numerator:  numerator,
		EntityName: "warehouse",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      numerator,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)
	base.Hooks().OnBeforeUpdate(svc.prepareForUpdate)
	base.Hooks().OnBeforeDelete(svc.guardSystem)

	return svc
}

// prepareForCreate handles code generation and the default flag.
func (s *Service) prepareForCreate(ctx context.Context, wh *Warehouse) error {
	if wh.Code == "" {
		code, err := s.numerator.GetNextNumber(ctx, numerator.Config{
			Prefix:      "WH",
			IncludeYear: false,
			PadWidth:    3,
			ResetPeriod: "never",
		}, nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		wh.Code = code
	} else {
		exists, err := s.repo.ExistsByCode(ctx, wh.Code)
		if err != nil {
			return fmt.Errorf("check warehouse code: %w", err)
		}
		if exists {
			return apperror.NewDuplicate("warehouse", "code", wh.Code)
		}
	}

	if wh.IsDefault {
		if err := s.repo.ClearDefault(ctx); err != nil {
			return err
		}
	}

	return nil
}

// prepareForUpdate handles the default flag.
func (s *Service) prepareForUpdate(ctx context.Context, wh *Warehouse) error {
	if wh.IsDefault {
		if err := s.repo.ClearDefault(ctx); err != nil {
			return err
		}
	}
	return nil
}

// guardSystem prevents deleting the system warehouse.
func (s *Service) guardSystem(ctx context.Context, wh *Warehouse) error {
	if wh.IsSystem {
		return apperror.NewBusinessRule("SYSTEM_WAREHOUSE_PROTECTED", "system warehouse cannot be deleted").
			WithDetail("warehouseId", wh.ID.String())
	}
	return nil
}

// GetSystem returns the virtual system warehouse.
func (s *Service) GetSystem(ctx context.Context) (*Warehouse, error) {
	return s.repo.GetSystem(ctx)
}
