// Package report_repo provides PostgreSQL implementations for report repositories.
package report_repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockyard/internal/domain/reports"
	"stockyard/internal/infrastructure/storage/postgres"
)

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewReportRepo creates a new report repository.
func NewReportRepo(txm *postgres.TxManager) *ReportRepo {
	return &ReportRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetStockBalanceReport generates stock balance report with product/warehouse details.
func (r *ReportRepo) GetStockBalanceReport(ctx context.Context, filter reports.StockBalanceReportFilter) (*reports.StockBalanceReport, error) {
	asOfDate := time.Now()
	if filter.AsOfDate != nil {
		asOfDate = *filter.AsOfDate
	}

	query := `
		WITH balance_data AS (
			SELECT
				m.warehouse_id,
				m.product_id,
				SUM(CASE WHEN m.record_type = 'receipt' THEN m.quantity ELSE -m.quantity END) as quantity_scaled
			FROM reg_stock_movements m
			WHERE m.period <= $1
	`
	args := []any{asOfDate}
	argIndex := 2

	if len(filter.WarehouseIDs) > 0 {
		placeholders := make([]string, len(filter.WarehouseIDs))
		for i, whID := range filter.WarehouseIDs {
			placeholders[i] = fmt.Sprintf("$%d", argIndex)
			args = append(args, whID)
			argIndex++
		}
		query += fmt.Sprintf(" AND m.warehouse_id IN (%s)", strings.Join(placeholders, ","))
	}

	if len(filter.ProductIDs) > 0 {
		placeholders := make([]string, len(filter.ProductIDs))
		for i, pID := range filter.ProductIDs {
			placeholders[i] = fmt.Sprintf("$%d", argIndex)
			args = append(args, pID)
			argIndex++
		}
		query += fmt.Sprintf(" AND m.product_id IN (%s)", strings.Join(placeholders, ","))
	}

	havingClause := "HAVING SUM(CASE WHEN m.record_type = 'receipt' THEN m.quantity ELSE -m.quantity END) != 0"
	if !filter.ExcludeZero {
		havingClause = ""
	}

	query += fmt.Sprintf(`
			GROUP BY m.warehouse_id, m.product_id
			%s
		)
		SELECT
			bd.warehouse_id,
			w.name as warehouse_name,
			bd.product_id,
			p.name as product_name,
			p.code as product_code,
			bd.quantity_scaled::float8 / 10000.0 as quantity
		FROM balance_data bd
		JOIN cat_warehouses w ON bd.warehouse_id = w.id
		JOIN cat_products p ON bd.product_id = p.id
		ORDER BY w.name, p.name
	`, havingClause)

	var items []reports.StockBalanceReportItem
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, query, args...); err != nil {
		return nil, fmt.Errorf("stock balance report: %w", err)
	}

	// Calculate totals
	var totalQuantity float64
	for _, item := range items {
		totalQuantity += item.Quantity
	}

	return &reports.StockBalanceReport{
		AsOfDate:      asOfDate,
		Items:         items,
		TotalItems:    len(items),
		TotalQuantity: totalQuantity,
	}, nil
}

// GetStockTurnoverReport generates stock turnover report.
func (r *ReportRepo) GetStockTurnoverReport(ctx context.Context, filter reports.StockTurnoverReportFilter) (*reports.StockTurnoverReport, error) {
	if filter.FromDate.IsZero() || filter.ToDate.IsZero() {
		return nil, fmt.Errorf("from_date and to_date are required")
	}

	args := []any{filter.FromDate}
	argIndex := 2

	// Opening balance query
	openingQuery := `
		SELECT
			m.warehouse_id,
			m.product_id,
			SUM(CASE WHEN m.record_type = 'receipt' THEN m.quantity ELSE -m.quantity END) as quantity_scaled
		FROM reg_stock_movements m
		WHERE m.period < $1
	`

	if len(filter.WarehouseIDs) > 0 {
		placeholders := make([]string, len(filter.WarehouseIDs))
		for i, whID := range filter.WarehouseIDs {
			placeholders[i] = fmt.Sprintf("$%d", argIndex)
			args = append(args, whID)
			argIndex++
		}
		openingQuery += fmt.Sprintf(" AND m.warehouse_id IN (%s)", strings.Join(placeholders, ","))
	}

	openingQuery += " GROUP BY m.warehouse_id, m.product_id"

	// Turnover query
	turnoverQuery := fmt.Sprintf(`
		SELECT
			m.warehouse_id,
			w.name as warehouse_name,
			m.product_id,
			p.name as product_name,
			p.code as product_code,
			COALESCE(opening.quantity_scaled, 0)::float8 / 10000.0 as opening_balance,
			SUM(CASE WHEN m.record_type = 'receipt' THEN m.quantity ELSE 0 END)::float8 / 10000.0 as receipt,
			SUM(CASE WHEN m.record_type = 'expense' THEN m.quantity ELSE 0 END)::float8 / 10000.0 as expense,
			(COALESCE(opening.quantity_scaled, 0) +
				SUM(CASE WHEN m.record_type = 'receipt' THEN m.quantity ELSE -m.quantity END))::float8 / 10000.0 as closing_balance
		FROM reg_stock_movements m
		JOIN cat_warehouses w ON m.warehouse_id = w.id
		JOIN cat_products p ON m.product_id = p.id
		LEFT JOIN (%s) opening
			ON m.warehouse_id = opening.warehouse_id AND m.product_id = opening.product_id
		WHERE m.period >= $%d AND m.period < $%d
	`, openingQuery, argIndex, argIndex+1)

	args = append(args, filter.FromDate, filter.ToDate)
	argIndex += 2

	if len(filter.WarehouseIDs) > 0 {
		placeholders := make([]string, len(filter.WarehouseIDs))
		for i, whID := range filter.WarehouseIDs {
			placeholders[i] = fmt.Sprintf("$%d", argIndex)
			args = append(args, whID)
			argIndex++
		}
		turnoverQuery += fmt.Sprintf(" AND m.warehouse_id IN (%s)", strings.Join(placeholders, ","))
	}

	if len(filter.ProductIDs) > 0 {
		placeholders := make([]string, len(filter.ProductIDs))
		for i, pID := range filter.ProductIDs {
			placeholders[i] = fmt.Sprintf("$%d", argIndex)
			args = append(args, pID)
			argIndex++
		}
		turnoverQuery += fmt.Sprintf(" AND m.product_id IN (%s)", strings.Join(placeholders, ","))
	}

	turnoverQuery += `
		GROUP BY m.warehouse_id, w.name, m.product_id, p.name, p.code, opening.quantity_scaled
		ORDER BY w.name, p.name
	`

	var items []reports.StockTurnoverReportItem
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, turnoverQuery, args...); err != nil {
		return nil, fmt.Errorf("stock turnover report: %w", err)
	}

	// Calculate totals
	var totalOpening, totalReceipt, totalExpense, totalClosing float64
	for _, item := range items {
		totalOpening += item.OpeningBalance
		totalReceipt += item.Receipt
		totalExpense += item.Expense
		totalClosing += item.ClosingBalance
	}

	return &reports.StockTurnoverReport{
		FromDate:     filter.FromDate,
		ToDate:       filter.ToDate,
		Items:        items,
		TotalItems:   len(items),
		TotalOpening: totalOpening,
		TotalReceipt: totalReceipt,
		TotalExpense: totalExpense,
		TotalClosing: totalClosing,
	}, nil
}

// GetNoteJournal retrieves notes for journal view.
func (r *ReportRepo) GetNoteJournal(ctx context.Context, filter reports.NoteJournalFilter) (*reports.NoteJournal, error) {
	noteTypes := filter.NoteTypes
	if len(noteTypes) == 0 {
		noteTypes = []string{"exchange_note", "stock_check"}
	}

	var unions []string
	var args []any
	argIndex := 1

	appendPeriod := func(q string) string {
		if filter.FromDate != nil {
			q += fmt.Sprintf(" AND date >= $%d", argIndex)
			args = append(args, *filter.FromDate)
			argIndex++
		}
		if filter.ToDate != nil {
			q += fmt.Sprintf(" AND date < $%d", argIndex)
			args = append(args, *filter.ToDate)
			argIndex++
		}
		if filter.Status != nil {
			q += fmt.Sprintf(" AND status = $%d", argIndex)
			args = append(args, *filter.Status)
			argIndex++
		}
		if filter.NumberContains != "" {
			q += fmt.Sprintf(" AND number ILIKE $%d", argIndex)
			args = append(args, "%"+filter.NumberContains+"%")
			argIndex++
		}
		return q
	}

	for _, noteType := range noteTypes {
		switch noteType {
		case "exchange_note":
			q := `
				SELECT
					id, 'exchange_note' as note_type, number, date, status, posted,
					type as exchange_type,
					COALESCE(destination_warehouse_id, source_warehouse_id) as warehouse_id,
					'' as warehouse_name,
					COALESCE((SELECT SUM(quantity) FROM doc_exchange_note_items WHERE document_id = d.id), 0)::float8 / 10000.0 as total_quantity,
					COALESCE((SELECT COUNT(*) FROM doc_exchange_note_items WHERE document_id = d.id), 0) as line_count,
					deletion_mark, created_at, updated_at
				FROM doc_exchange_notes d
				WHERE deletion_mark = false
			`
			unions = append(unions, appendPeriod(q))

		case "stock_check":
			q := `
				SELECT
					id, 'stock_check' as note_type, number, date, status, posted,
					'' as exchange_type,
					warehouse_id,
					'' as warehouse_name,
					COALESCE((SELECT SUM(actual_quantity) FROM doc_stock_check_lines WHERE document_id = d.id), 0)::float8 / 10000.0 as total_quantity,
					COALESCE((SELECT COUNT(*) FROM doc_stock_check_lines WHERE document_id = d.id), 0) as line_count,
					deletion_mark, created_at, updated_at
				FROM doc_stock_check_notes d
				WHERE deletion_mark = false
			`
			unions = append(unions, appendPeriod(q))
		}
	}

	if len(unions) == 0 {
		return &reports.NoteJournal{
			Items:      []reports.NoteJournalItem{},
			TotalCount: 0,
		}, nil
	}

	query := strings.Join(unions, " UNION ALL ")
	query += " ORDER BY date DESC, number"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	var items []reports.NoteJournalItem
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, query, args...); err != nil {
		return nil, fmt.Errorf("note journal: %w", err)
	}

	return &reports.NoteJournal{
		Items:      items,
		TotalCount: len(items),
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}, nil
}

// GetNoteTypeSummary returns note counts by type.
func (r *ReportRepo) GetNoteTypeSummary(ctx context.Context, filter reports.NoteJournalFilter) ([]reports.NoteTypeSummary, error) {
	var result []reports.NoteTypeSummary

	noteTypes := filter.NoteTypes
	if len(noteTypes) == 0 {
		noteTypes = []string{"exchange_note", "stock_check"}
	}

	querier := r.txm.GetQuerier(ctx)

	for _, noteType := range noteTypes {
		var summary reports.NoteTypeSummary
		summary.NoteType = noteType

		var query string
		var args []any
		argIndex := 1

		switch noteType {
		case "exchange_note":
			query = `
				SELECT
					COUNT(*) as count,
					COUNT(*) FILTER (WHERE status = 'finished') as finished_count,
					COALESCE(SUM((SELECT SUM(quantity) FROM doc_exchange_note_items WHERE document_id = d.id)), 0)::float8 / 10000.0 as total_quantity
				FROM doc_exchange_notes d
				WHERE deletion_mark = false
			`
		case "stock_check":
			query = `
				SELECT
					COUNT(*) as count,
					COUNT(*) FILTER (WHERE status = 'finished') as finished_count,
					COALESCE(SUM((SELECT SUM(actual_quantity) FROM doc_stock_check_lines WHERE document_id = d.id)), 0)::float8 / 10000.0 as total_quantity
				FROM doc_stock_check_notes d
				WHERE deletion_mark = false
			`
		default:
			continue
		}

		if filter.FromDate != nil {
			query += fmt.Sprintf(" AND date >= $%d", argIndex)
			args = append(args, *filter.FromDate)
			argIndex++
		}
		if filter.ToDate != nil {
			query += fmt.Sprintf(" AND date < $%d", argIndex)
			args = append(args, *filter.ToDate)
		}

		err := querier.QueryRow(ctx, query, args...).Scan(
			&summary.Count,
			&summary.FinishedCount,
			&summary.TotalQuantity,
		)
		if err != nil {
			return nil, fmt.Errorf("note type summary for %s: %w", noteType, err)
		}

		result = append(result, summary)
	}

	return result, nil
}

// Ensure interface compliance
var _ reports.Repository = (*ReportRepo)(nil)
