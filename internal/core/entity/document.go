package entity

import (
	"context"
	"time"

	"stockyard/internal/core/apperror"
	"stockyard/internal/core/id"
)

// Status is the lifecycle state shared by all note documents.
// Notes start pending, move to accepted on approval, and end in exactly
// one of finished or rejected. Final states never transition again.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusFinished Status = "finished"
	StatusRejected Status = "rejected"
)

// ParseStatus validates a status string from user input.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusAccepted, StatusFinished, StatusRejected:
		return Status(s), nil
	}
	return "", apperror.NewInvalidStatus(s)
}

// IsFinal reports whether the status allows no further transitions.
func (s Status) IsFinal() bool {
	return s == StatusFinished || s == StatusRejected
}

// Document is the base type for business transactions (notes).
// Examples: ExchangeNote, StockCheckNote.
// Status transitions carry document-specific error codes, so they live
// on the concrete types, not here.
type Document struct {
	BaseDocument

	// Number is the document number (auto-generated, unique within type+period)
	Number string `db:"number" json:"number"`

	// Date is the business date of the document
	Date time.Time `db:"date" json:"date"`

	// Status is the lifecycle state (pending/accepted/finished/rejected)
	Status Status `db:"status" json:"status"`

	// Posted indicates if document movements are recorded in registers
	Posted bool `db:"posted" json:"posted"`

	// Comment is an optional user comment
	Comment string `db:"comment" json:"comment,omitempty"`
}

// NewDocument creates a new pending Document with generated ID.
func NewDocument() Document {
	return Document{
		BaseDocument: NewBaseDocument(),
		Date:         time.Now().UTC(),
		Status:       StatusPending,
	}
}

// Validate implements Validatable interface.
func (d *Document) Validate(ctx context.Context) error {
	if d.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}
	return nil
}

// MarkPosted records that register movements were written for this document.
func (d *Document) MarkPosted() {
	d.Posted = true
}

// IsBackdated checks if document date is in the past.
func (d *Document) IsBackdated() bool {
	return d.Date.Before(time.Now().UTC().Truncate(24 * time.Hour))
}

// --- Postable interface default implementations ---
// Document-specific types only need to implement GetDocumentType()
// and GenerateMovements().

// GetID returns the document ID (Postable interface).
func (d *Document) GetID() id.ID {
	return d.ID
}

// GetDate returns the business date (Postable interface).
func (d *Document) GetDate() time.Time {
	return d.Date
}

// IsPosted returns true if movements are already recorded (Postable interface).
func (d *Document) IsPosted() bool {
	return d.Posted
}

// CanPost validates if document can be posted (Postable interface default).
// Override in specific document types if additional validation is needed.
func (d *Document) CanPost(ctx context.Context) error {
	return d.Validate(ctx)
}
