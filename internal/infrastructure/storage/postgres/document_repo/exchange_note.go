package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockyard/internal/core/id"
	"stockyard/internal/domain"
	"stockyard/internal/domain/documents/exchange_note"
	"stockyard/internal/infrastructure/storage/postgres"
)

const (
	exchangeNotesTable     = "doc_exchange_notes"
	exchangeNoteItemsTable = "doc_exchange_note_items"
)

// ExchangeNoteRepo implements exchange_note.Repository.
type ExchangeNoteRepo struct {
	*BaseDocumentRepo[*exchange_note.ExchangeNote]
}

// NewExchangeNoteRepo creates a new exchange note repository.
func NewExchangeNoteRepo(txm *postgres.TxManager) *ExchangeNoteRepo {
	return &ExchangeNoteRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txm,
			exchangeNotesTable,
			postgres.ExtractDBColumns[exchange_note.ExchangeNote](),
			func() *exchange_note.ExchangeNote { return &exchange_note.ExchangeNote{} },
		),
	}
}

// GetItems retrieves lines for an exchange note.
func (r *ExchangeNoteRepo) GetItems(ctx context.Context, noteID id.ID) ([]exchange_note.NoteItem, error) {
	q := r.Builder().
		Select("line_id", "line_no", "code", "product_id", "quantity", "status").
		From(exchangeNoteItemsTable).
		Where(squirrel.Eq{"document_id": noteID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []exchange_note.NoteItem
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}

	return items, nil
}

// SaveItems saves lines for an exchange note (delete existing + insert new).
func (r *ExchangeNoteRepo) SaveItems(ctx context.Context, noteID id.ID, items []exchange_note.NoteItem) error {
	querier := r.getTxManager(ctx).GetQuerier(ctx)

	deleteSQL := "DELETE FROM " + exchangeNoteItemsTable + " WHERE document_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, noteID); err != nil {
		return fmt.Errorf("delete existing items: %w", err)
	}

	if len(items) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(exchangeNoteItemsTable).
		Columns("line_id", "document_id", "line_no", "code", "product_id", "quantity", "status")

	for _, item := range items {
		q = q.Values(
			item.LineID, noteID, item.LineNo, item.Code,
			item.ProductID, item.Quantity, item.Status,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert items: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert items: %w", err)
	}

	return nil
}

// List retrieves exchange notes with filtering.
func (r *ExchangeNoteRepo) List(ctx context.Context, filter exchange_note.ListFilter) (domain.ListResult[*exchange_note.ExchangeNote], error) {
	result := domain.ListResult[*exchange_note.ExchangeNote]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect(ctx)

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}

	if filter.Type != nil {
		q = q.Where(squirrel.Eq{"type": *filter.Type})
	}

	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}

	if filter.WarehouseID != nil {
		q = q.Where(squirrel.Or{
			squirrel.Eq{"source_warehouse_id": *filter.WarehouseID},
			squirrel.Eq{"destination_warehouse_id": *filter.WarehouseID},
		})
	}

	if filter.ProductID != nil {
		q = q.Where(squirrel.Expr(
			"id IN (SELECT document_id FROM "+exchangeNoteItemsTable+" WHERE product_id = ?)",
			*filter.ProductID,
		))
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
var _ exchange_note.Repository = (*ExchangeNoteRepo)(nil)
