// Package reports provides report generation services.
package reports

import (
	"time"

	"stockyard/internal/core/id"
)

// --- Stock Balance Report ---

// StockBalanceReportFilter defines filter for stock balance report.
type StockBalanceReportFilter struct {
	// AsOfDate - report date (defaults to now)
	AsOfDate *time.Time

	// Filters
	WarehouseIDs []id.ID
	ProductIDs   []id.ID

	// Exclude zero balances
	ExcludeZero bool

	// Pagination
	Limit  int
	Offset int
}

// StockBalanceReportItem represents a single row in stock balance report.
type StockBalanceReportItem struct {
	WarehouseID   id.ID   `json:"warehouseId"`
	WarehouseName string  `json:"warehouseName"`
	ProductID     id.ID   `json:"productId"`
	ProductName   string  `json:"productName"`
	ProductCode   string  `json:"productCode"`
	Quantity      float64 `json:"quantity"`
}

// StockBalanceReport represents the full stock balance report.
type StockBalanceReport struct {
	AsOfDate   time.Time                `json:"asOfDate"`
	Items      []StockBalanceReportItem `json:"items"`
	TotalItems int                      `json:"totalItems"`

	// Summary
	TotalQuantity float64 `json:"totalQuantity"`
}

// --- Stock Turnover Report ---

// StockTurnoverReportFilter defines filter for stock turnover report.
type StockTurnoverReportFilter struct {
	// Period (required)
	FromDate time.Time
	ToDate   time.Time

	// Filters
	WarehouseIDs []id.ID
	ProductIDs   []id.ID

	// Pagination
	Limit  int
	Offset int
}

// StockTurnoverReportItem represents a single row in turnover report.
type StockTurnoverReportItem struct {
	WarehouseID    id.ID   `json:"warehouseId,omitempty"`
	WarehouseName  string  `json:"warehouseName,omitempty"`
	ProductID      id.ID   `json:"productId,omitempty"`
	ProductName    string  `json:"productName,omitempty"`
	ProductCode    string  `json:"productCode,omitempty"`
	OpeningBalance float64 `json:"openingBalance"`
	Receipt        float64 `json:"receipt"`
	Expense        float64 `json:"expense"`
	ClosingBalance float64 `json:"closingBalance"`
}

// StockTurnoverReport represents the full turnover report.
type StockTurnoverReport struct {
	FromDate   time.Time                 `json:"fromDate"`
	ToDate     time.Time                 `json:"toDate"`
	Items      []StockTurnoverReportItem `json:"items"`
	TotalItems int                       `json:"totalItems"`

	// Summary totals
	TotalOpening float64 `json:"totalOpening"`
	TotalReceipt float64 `json:"totalReceipt"`
	TotalExpense float64 `json:"totalExpense"`
	TotalClosing float64 `json:"totalClosing"`
}

// --- Note Journal ---

// NoteJournalFilter defines filter for the note journal.
type NoteJournalFilter struct {
	// Period
	FromDate *time.Time
	ToDate   *time.Time

	// Note types filter: "exchange_note", "stock_check"
	NoteTypes []string

	// Status filter (pending/accepted/finished/rejected)
	Status *string

	// Search by number
	NumberContains string

	// Filters by references
	WarehouseIDs []id.ID

	// Sorting
	SortBy    string // "date", "number", "type"
	SortOrder string // "asc", "desc"

	// Pagination
	Limit  int
	Offset int
}

// NoteJournalItem represents a note in the journal.
type NoteJournalItem struct {
	ID       id.ID     `json:"id"`
	NoteType string    `json:"noteType"`
	Number   string    `json:"number"`
	Date     time.Time `json:"date"`
	Status   string    `json:"status"`
	Posted   bool      `json:"posted"`

	// Exchange direction, empty for stock checks
	ExchangeType string `json:"exchangeType,omitempty"`

	// Warehouse info
	WarehouseID   *id.ID `json:"warehouseId,omitempty"`
	WarehouseName string `json:"warehouseName,omitempty"`

	// Totals
	TotalQuantity float64 `json:"totalQuantity"`
	LineCount     int     `json:"lineCount"`

	DeletionMark bool      `json:"deletionMark"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NoteJournal represents the note journal result.
type NoteJournal struct {
	Items      []NoteJournalItem `json:"items"`
	TotalCount int               `json:"totalCount"`
	Limit      int               `json:"limit"`
	Offset     int               `json:"offset"`

	// Summary by note type
	Summary []NoteTypeSummary `json:"summary,omitempty"`
}

// NoteTypeSummary provides counts by note type.
type NoteTypeSummary struct {
	NoteType      string  `json:"noteType"`
	Count         int     `json:"count"`
	FinishedCount int     `json:"finishedCount"`
	TotalQuantity float64 `json:"totalQuantity"`
}
