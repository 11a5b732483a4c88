package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockyard/internal/core/id"
	"stockyard/internal/domain"
	"stockyard/internal/domain/documents/stock_check"
	"stockyard/internal/infrastructure/storage/postgres"
)

const (
	stockCheckNotesTable = "doc_stock_check_notes"
	stockCheckLinesTable = "doc_stock_check_lines"
)

// StockCheckRepo implements stock_check.Repository.
type StockCheckRepo struct {
	*BaseDocumentRepo[*stock_check.StockCheckNote]
}

// NewStockCheckRepo creates a new stock check repository.
func NewStockCheckRepo(txm *postgres.TxManager) *StockCheckRepo {
	return &StockCheckRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txm,
			stockCheckNotesTable,
			postgres.ExtractDBColumns[stock_check.StockCheckNote](),
			func() *stock_check.StockCheckNote { return &stock_check.StockCheckNote{} },
		),
	}
}

// GetLines retrieves counted lines for a stock check.
func (r *StockCheckRepo) GetLines(ctx context.Context, noteID id.ID) ([]stock_check.StockCheckLine, error) {
	q := r.Builder().
		Select(
			"line_id", "line_no", "product_id",
			"last_quantity", "total_import_quantity", "total_export_quantity",
			"expected_quantity", "actual_quantity", "status", "counted_at",
		).
		From(stockCheckLinesTable).
		Where(squirrel.Eq{"document_id": noteID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []stock_check.StockCheckLine
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	return lines, nil
}

// SaveLines saves counted lines (delete existing + insert new).
func (r *StockCheckRepo) SaveLines(ctx context.Context, noteID id.ID, lines []stock_check.StockCheckLine) error {
	querier := r.getTxManager(ctx).GetQuerier(ctx)

	deleteSQL := "DELETE FROM " + stockCheckLinesTable + " WHERE document_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, noteID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(stockCheckLinesTable).
		Columns(
			"line_id", "document_id", "line_no", "product_id",
			"last_quantity", "total_import_quantity", "total_export_quantity",
			"expected_quantity", "actual_quantity", "status", "counted_at",
		)

	for _, line := range lines {
		q = q.Values(
			line.LineID, noteID, line.LineNo, line.ProductID,
			line.LastQuantity, line.TotalImportQuantity, line.TotalExportQuantity,
			line.ExpectedQuantity, line.ActualQuantity, line.Status, line.CountedAt,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert lines: %w", err)
	}

	return nil
}

// GetLastCount returns the latest finished count for a warehouse+product.
func (r *StockCheckRepo) GetLastCount(ctx context.Context, warehouseID, productID id.ID) (*stock_check.PreviousCount, error) {
	sql := `
		SELECT l.actual_quantity, n.date
		FROM doc_stock_check_lines l
		JOIN doc_stock_check_notes n ON n.id = l.document_id
		WHERE n.warehouse_id = $1
		  AND l.product_id = $2
		  AND n.status = 'finished'
		  AND l.status = 'finished'
		  AND n.deletion_mark = false
		ORDER BY n.date DESC, n.created_at DESC
		LIMIT 1
	`

	var prev stock_check.PreviousCount
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	err := querier.QueryRow(ctx, sql, warehouseID, productID).Scan(&prev.Quantity, &prev.Date)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get last count: %w", err)
	}

	return &prev, nil
}

// List retrieves stock checks with filtering.
func (r *StockCheckRepo) List(ctx context.Context, filter stock_check.ListFilter) (domain.ListResult[*stock_check.StockCheckNote], error) {
	result := domain.ListResult[*stock_check.StockCheckNote]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect(ctx)

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}

	if filter.WarehouseID != nil {
		q = q.Where(squirrel.Eq{"warehouse_id": *filter.WarehouseID})
	}

	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}

	if filter.CheckedBy != nil {
		q = q.Where(squirrel.Eq{"checked_by": *filter.CheckedBy})
	}

	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}

	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.DateTo})
	}

	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"number": "%" + filter.Search + "%"})
	}

	countQ := r.Builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	orderBy := "date DESC"
	if filter.OrderBy != "" {
		orderBy = filter.OrderBy
	}
	q = q.OrderBy(orderBy)

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

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("select: %w", err)
	}

	return result, nil
}

// Ensure interface compliance.
var _ stock_check.Repository = (*StockCheckRepo)(nil)
