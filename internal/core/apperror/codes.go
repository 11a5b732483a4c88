package apperror

import "net/http"

// Domain error codes for the inventory workflow.
// Codes are part of the API contract, clients match on them.
const (
	CodeTransactionNotFound       = "TRANSACTION_NOT_FOUND"
	CodeTransactionImmutable      = "TRANSACTION_CANNOT_BE_MODIFIED"
	CodeTransactionNotFinalizable = "TRANSACTION_CANNOT_BE_FINALIZED"
	CodeInvalidTransactionType    = "INVALID_TRANSACTION_TYPE"
	CodeInvalidSourceType         = "INVALID_SOURCE_TYPE"
	CodeNoteItemsNotFound         = "NOTE_ITEMS_NOT_FOUND"

	CodeStockCheckNotFound         = "STOCK_CHECK_NOTE_NOT_FOUND"
	CodeStockCheckImmutable        = "STOCK_CHECK_CANNOT_BE_MODIFIED"
	CodeStockCheckNotFinalizable   = "STOCK_CHECK_CANNOT_BE_FINALIZED"
	CodeStockCheckProductsNotFound = "STOCK_CHECK_PRODUCTS_NOT_FOUND"

	CodeInvalidStatus = "INVALID_STATUS"
)

// NewInvalidStatus is returned when a status string from user input does not
// name a known lifecycle state.
func NewInvalidStatus(value string) *AppError {
	return &AppError{
		Code:       CodeInvalidStatus,
		Message:    "Invalid status",
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"status": value},
	}
}

// NewTransactionImmutable is returned when an exchange note is past the point
// where the requested change is allowed.
func NewTransactionImmutable(noteID string, status string) *AppError {
	return &AppError{
		Code:       CodeTransactionImmutable,
		Message:    "Transaction cannot be modified in its current status",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"note_id": noteID, "status": status},
	}
}

// NewTransactionNotFinalizable is returned when finalize is requested on an
// exchange note that is not accepted.
func NewTransactionNotFinalizable(noteID string, status string) *AppError {
	return &AppError{
		Code:       CodeTransactionNotFinalizable,
		Message:    "Transaction cannot be finalized in its current status",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"note_id": noteID, "status": status},
	}
}

// NewStockCheckImmutable is returned when a stock check note is past the point
// where the requested change is allowed.
func NewStockCheckImmutable(noteID string, status string) *AppError {
	return &AppError{
		Code:       CodeStockCheckImmutable,
		Message:    "Stock check cannot be modified in its current status",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"note_id": noteID, "status": status},
	}
}

// NewStockCheckNotFinalizable is returned when finalize is requested on a
// stock check note that is not accepted.
func NewStockCheckNotFinalizable(noteID string, status string) *AppError {
	return &AppError{
		Code:       CodeStockCheckNotFinalizable,
		Message:    "Stock check cannot be finalized in its current status",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"note_id": noteID, "status": status},
	}
}

// NewNoteItemsRequired is returned when finalize is requested on an exchange
// note with no active lines.
func NewNoteItemsRequired(noteID string) *AppError {
	return &AppError{
		Code:       CodeNoteItemsNotFound,
		Message:    "Exchange note has no items to finalize",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"note_id": noteID},
	}
}

// NewStockCheckProductsRequired is returned when finalize is requested on a
// stock check note with no counted lines.
func NewStockCheckProductsRequired(noteID string) *AppError {
	return &AppError{
		Code:       CodeStockCheckProductsNotFound,
		Message:    "Stock check has no products to finalize",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"note_id": noteID},
	}
}

// NewInvalidSourceType is returned when a SYSTEM warehouse is used outside a
// TRANSFER.
func NewInvalidSourceType(warehouseCode string) *AppError {
	return &AppError{
		Code:       CodeInvalidSourceType,
		Message:    "SYSTEM warehouse can only be used by TRANSFER notes",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"warehouse": warehouseCode},
	}
}

// NewInvalidTransactionType is returned for unknown exchange note types.
func NewInvalidTransactionType(value string) *AppError {
	return &AppError{
		Code:       CodeInvalidTransactionType,
		Message:    "Invalid transaction type",
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"type": value},
	}
}
