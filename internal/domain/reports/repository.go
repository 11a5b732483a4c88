package reports

import (
	"context"
)

// Repository defines report data access interface.
type Repository interface {
	// Stock reports
	GetStockBalanceReport(ctx context.Context, filter StockBalanceReportFilter) (*StockBalanceReport, error)
	GetStockTurnoverReport(ctx context.Context, filter StockTurnoverReportFilter) (*StockTurnoverReport, error)

	// Note journal
	GetNoteJournal(ctx context.Context, filter NoteJournalFilter) (*NoteJournal, error)
	GetNoteTypeSummary(ctx context.Context, filter NoteJournalFilter) ([]NoteTypeSummary, error)
}
