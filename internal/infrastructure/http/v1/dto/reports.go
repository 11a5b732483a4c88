package dto

import (
	"time"

	"stockyard/internal/domain/reports"
)

// --- Stock Balance Report ---

// StockBalanceReportRequest represents request for stock balance report.
type StockBalanceReportRequest struct {
	AsOfDate     *time.Time `form:"asOfDate"`
	WarehouseIDs []string   `form:"warehouseId"`
	ProductIDs   []string   `form:"productId"`
	ExcludeZero  *bool      `form:"excludeZero"`
	Limit        int        `form:"limit"`
	Offset       int        `form:"offset"`
}

// StockBalanceReportResponse represents stock balance report response.
type StockBalanceReportResponse struct {
	AsOfDate      string                           `json:"asOfDate"`
	Items         []StockBalanceReportItemResponse `json:"items"`
	TotalItems    int                              `json:"totalItems"`
	TotalQuantity float64                          `json:"totalQuantity"`
}

// StockBalanceReportItemResponse represents a single item in stock balance report.
type StockBalanceReportItemResponse struct {
	WarehouseID   string  `json:"warehouseId"`
	WarehouseName string  `json:"warehouseName"`
	ProductID     string  `json:"productId"`
	ProductName   string  `json:"productName"`
	ProductCode   string  `json:"productCode,omitempty"`
	Quantity      float64 `json:"quantity"`
}

// FromStockBalanceReport converts domain report to response DTO.
func FromStockBalanceReport(r *reports.StockBalanceReport) *StockBalanceReportResponse {
	resp := &StockBalanceReportResponse{
		AsOfDate:      r.AsOfDate.Format(time.RFC3339),
		Items:         make([]StockBalanceReportItemResponse, len(r.Items)),
		TotalItems:    r.TotalItems,
		TotalQuantity: r.TotalQuantity,
	}

	for i, item := range r.Items {
		resp.Items[i] = StockBalanceReportItemResponse{
			WarehouseID:   item.WarehouseID.String(),
			WarehouseName: item.WarehouseName,
			ProductID:     item.ProductID.String(),
			ProductName:   item.ProductName,
			ProductCode:   item.ProductCode,
			Quantity:      item.Quantity,
		}
	}

	return resp
}

// --- Stock Turnover Report ---

// StockTurnoverReportRequest represents request for stock turnover report.
type StockTurnoverReportRequest struct {
	FromDate     string   `form:"fromDate" binding:"required"`
	ToDate       string   `form:"toDate" binding:"required"`
	WarehouseIDs []string `form:"warehouseId"`
	ProductIDs   []string `form:"productId"`
	Limit        int      `form:"limit"`
	Offset       int      `form:"offset"`
}

// StockTurnoverReportResponse represents stock turnover report response.
type StockTurnoverReportResponse struct {
	FromDate     string                            `json:"fromDate"`
	ToDate       string                            `json:"toDate"`
	Items        []StockTurnoverReportItemResponse `json:"items"`
	TotalItems   int                               `json:"totalItems"`
	TotalOpening float64                           `json:"totalOpening"`
	TotalReceipt float64                           `json:"totalReceipt"`
	TotalExpense float64                           `json:"totalExpense"`
	TotalClosing float64                           `json:"totalClosing"`
}

// StockTurnoverReportItemResponse represents a single item in turnover report.
type StockTurnoverReportItemResponse struct {
	WarehouseID    string  `json:"warehouseId,omitempty"`
	WarehouseName  string  `json:"warehouseName,omitempty"`
	ProductID      string  `json:"productId,omitempty"`
	ProductName    string  `json:"productName,omitempty"`
	ProductCode    string  `json:"productCode,omitempty"`
	OpeningBalance float64 `json:"openingBalance"`
	Receipt        float64 `json:"receipt"`
	Expense        float64 `json:"expense"`
	ClosingBalance float64 `json:"closingBalance"`
}

// FromStockTurnoverReport converts domain report to response DTO.
func FromStockTurnoverReport(r *reports.StockTurnoverReport) *StockTurnoverReportResponse {
	resp := &StockTurnoverReportResponse{
		FromDate:     r.FromDate.Format(time.RFC3339),
		ToDate:       r.ToDate.Format(time.RFC3339),
		Items:        make([]StockTurnoverReportItemResponse, len(r.Items)),
		TotalItems:   r.TotalItems,
		TotalOpening: r.TotalOpening,
		TotalReceipt: r.TotalReceipt,
		TotalExpense: r.TotalExpense,
		TotalClosing: r.TotalClosing,
	}

	for i, item := range r.Items {
		resp.Items[i] = StockTurnoverReportItemResponse{
			WarehouseID:    item.WarehouseID.String(),
			WarehouseName:  item.WarehouseName,
			ProductID:      item.ProductID.String(),
			ProductName:    item.ProductName,
			ProductCode:    item.ProductCode,
			OpeningBalance: item.OpeningBalance,
			Receipt:        item.Receipt,
			Expense:        item.Expense,
			ClosingBalance: item.ClosingBalance,
		}
	}

	return resp
}

// --- Note Journal ---

// NoteJournalRequest represents request for the note journal.
type NoteJournalRequest struct {
	FromDate       *string  `form:"fromDate"`
	ToDate         *string  `form:"toDate"`
	NoteTypes      []string `form:"noteType"`
	Status         *string  `form:"status"`
	NumberContains string   `form:"number"`
	WarehouseIDs   []string `form:"warehouseId"`
	SortBy         string   `form:"sortBy"`
	SortOrder      string   `form:"sortOrder"`
	Limit          int      `form:"limit"`
	Offset         int      `form:"offset"`
}

// NoteJournalResponse represents note journal response.
type NoteJournalResponse struct {
	Items      []NoteJournalItemResponse `json:"items"`
	TotalCount int                       `json:"totalCount"`
	Limit      int                       `json:"limit"`
	Offset     int                       `json:"offset"`
	Summary    []NoteTypeSummaryResponse `json:"summary,omitempty"`
}

// NoteJournalItemResponse represents a note in the journal.
type NoteJournalItemResponse struct {
	ID            string  `json:"id"`
	NoteType      string  `json:"noteType"`
	Number        string  `json:"number"`
	Date          string  `json:"date"`
	Status        string  `json:"status"`
	Posted        bool    `json:"posted"`
	ExchangeType  string  `json:"exchangeType,omitempty"`
	WarehouseID   *string `json:"warehouseId,omitempty"`
	WarehouseName string  `json:"warehouseName,omitempty"`
	TotalQuantity float64 `json:"totalQuantity"`
	LineCount     int     `json:"lineCount"`
	DeletionMark  bool    `json:"deletionMark,omitempty"`
	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt"`
}

// NoteTypeSummaryResponse represents summary by note type.
type NoteTypeSummaryResponse struct {
	NoteType      string  `json:"noteType"`
	Count         int     `json:"count"`
	FinishedCount int     `json:"finishedCount"`
	TotalQuantity float64 `json:"totalQuantity"`
}

// FromNoteJournal converts domain journal to response DTO.
func FromNoteJournal(j *reports.NoteJournal) *NoteJournalResponse {
	resp := &NoteJournalResponse{
		Items:      make([]NoteJournalItemResponse, len(j.Items)),
		TotalCount: j.TotalCount,
		Limit:      j.Limit,
		Offset:     j.Offset,
	}

	for i, item := range j.Items {
		resp.Items[i] = NoteJournalItemResponse{
			ID:            item.ID.String(),
			NoteType:      item.NoteType,
			Number:        item.Number,
			Date:          item.Date.Format(time.RFC3339),
			Status:        item.Status,
			Posted:        item.Posted,
			ExchangeType:  item.ExchangeType,
			WarehouseName: item.WarehouseName,
			TotalQuantity: item.TotalQuantity,
			LineCount:     item.LineCount,
			DeletionMark:  item.DeletionMark,
			CreatedAt:     item.CreatedAt.Format(time.RFC3339),
			UpdatedAt:     item.UpdatedAt.Format(time.RFC3339),
		}

		if item.WarehouseID != nil {
			s := item.WarehouseID.String()
			resp.Items[i].WarehouseID = &s
		}
	}

	if j.Summary != nil {
		resp.Summary = make([]NoteTypeSummaryResponse, len(j.Summary))
		for i, s := range j.Summary {
			resp.Summary[i] = NoteTypeSummaryResponse{
				NoteType:      s.NoteType,
				Count:         s.Count,
				FinishedCount: s.FinishedCount,
				TotalQuantity: s.TotalQuantity,
			}
		}
	}

	return resp
}
