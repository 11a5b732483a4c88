package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockyard/internal/core/id"
	"stockyard/internal/domain"
	"stockyard/internal/domain/catalogs/product_type"
	"stockyard/internal/infrastructure/storage/postgres"
)

const productTypeTable = "cat_product_types"

// ProductTypeRepo implements product_type.Repository.
type ProductTypeRepo struct {
	*BaseCatalogRepo[*product_type.ProductType]
}

// NewProductTypeRepo creates a new product type repository.
func NewProductTypeRepo(txm *postgres.TxManager) *ProductTypeRepo {
	return &ProductTypeRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*product_type.ProductType](
			txm,
			productTypeTable,
			postgres.ExtractDBColumns[product_type.ProductType](),
			func() *product_type.ProductType { return &product_type.ProductType{} },
		),
	}
}

// FindByCategory retrieves product types belonging to a category.
func (r *ProductTypeRepo) FindByCategory(ctx context.Context, categoryID id.ID, filter domain.ListFilter) (domain.ListResult[*product_type.ProductType], error) {
	result := domain.ListResult[*product_type.ProductType]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"category_id": categoryID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("name ASC")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	var items []*product_type.ProductType
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return result, fmt.Errorf("find by category: %w", err)
	}
	result.Items = items
	result.TotalCount = int64(len(items))

	return result, nil
}
