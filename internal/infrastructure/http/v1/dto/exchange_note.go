package dto

import (
	"time"

	"stockyard/internal/core/apperror"
	"stockyard/internal/core/id"
	"stockyard/internal/core/types"
	"stockyard/internal/domain/documents/exchange_note"
)

// --- Request DTOs ---

// CreateExchangeNoteRequest represents a request to create an exchange note.
type CreateExchangeNoteRequest struct {
	Type                   string                    `json:"type" binding:"required"`
	Date                   *time.Time                `json:"date,omitempty"`
	SourceWarehouseID      *string                   `json:"sourceWarehouseId,omitempty"`
	DestinationWarehouseID *string                   `json:"destinationWarehouseId,omitempty"`
	Comment                string                    `json:"comment,omitempty"`
	Items                  []ExchangeNoteItemRequest `json:"items" binding:"dive"`
}

// ExchangeNoteItemRequest represents a product line in create/update requests.
type ExchangeNoteItemRequest struct {
	ProductID string  `json:"productId" binding:"required"`
	Quantity  float64 `json:"quantity" binding:"required,gt=0"`
}

// ToEntity converts request to domain entity.
// The note type string is validated by the service, not here.
func (r *CreateExchangeNoteRequest) ToEntity() (*exchange_note.ExchangeNote, error) {
	noteType, err := exchange_note.ParseNoteType(r.Type)
	if err != nil {
		return nil, err
	}

	sourceID, err := parseOptionalID(r.SourceWarehouseID)
	if err != nil {
		return nil, err
	}
	destinationID, err := parseOptionalID(r.DestinationWarehouseID)
	if err != nil {
		return nil, err
	}

	note := exchange_note.NewExchangeNote(noteType, sourceID, destinationID)
	if r.Date != nil {
		note.Date = *r.Date
	}
	note.Comment = r.Comment

	for _, item := range r.Items {
		productID, err := parseRequiredID("productId", item.ProductID)
		if err != nil {
			return nil, err
		}
		note.AddItem("", productID, types.NewQuantityFromFloat64(item.Quantity))
	}

	return note, nil
}

// UpdateExchangeNoteRequest represents a request to update a pending note.
type UpdateExchangeNoteRequest struct {
	Date                   *time.Time                `json:"date,omitempty"`
	SourceWarehouseID      *string                   `json:"sourceWarehouseId,omitempty"`
	DestinationWarehouseID *string                   `json:"destinationWarehouseId,omitempty"`
	Comment                *string                   `json:"comment,omitempty"`
	Items                  []ExchangeNoteItemRequest `json:"items,omitempty" binding:"omitempty,dive"`
}

// ApplyTo applies updates to an existing entity.
func (r *UpdateExchangeNoteRequest) ApplyTo(note *exchange_note.ExchangeNote) error {
	if r.Date != nil {
		note.Date = *r.Date
	}
	if r.SourceWarehouseID != nil {
		sourceID, err := parseOptionalID(r.SourceWarehouseID)
		if err != nil {
			return err
		}
		note.SourceWarehouseID = sourceID
	}
	if r.DestinationWarehouseID != nil {
		destinationID, err := parseOptionalID(r.DestinationWarehouseID)
		if err != nil {
			return err
		}
		note.DestinationWarehouseID = destinationID
	}
	if r.Comment != nil {
		note.Comment = *r.Comment
	}

	// If items are provided, rebuild the table part
	if r.Items != nil {
		note.Items = note.Items[:0]
		for _, item := range r.Items {
			productID, err := parseRequiredID("productId", item.ProductID)
			if err != nil {
				return err
			}
			note.AddItem("", productID, types.NewQuantityFromFloat64(item.Quantity))
		}
	}

	return nil
}

// AddNoteItemRequest adds one product line to a pending note.
type AddNoteItemRequest struct {
	ProductID string  `json:"productId" binding:"required"`
	Quantity  float64 `json:"quantity" binding:"required,gt=0"`
}

// ApproveNoteRequest optionally overrides the approver user code.
type ApproveNoteRequest struct {
	ApprovedBy string `json:"approvedBy,omitempty"`
}

// --- Response DTOs ---

// ExchangeNoteResponse represents an exchange note in API responses.
type ExchangeNoteResponse struct {
	ID                     string                     `json:"id"`
	Number                 string                     `json:"number"`
	Type                   string                     `json:"type"`
	Date                   time.Time                  `json:"date"`
	Status                 string                     `json:"status"`
	Posted                 bool                       `json:"posted"`
	SourceWarehouseID      *string                    `json:"sourceWarehouseId,omitempty"`
	DestinationWarehouseID *string                    `json:"destinationWarehouseId,omitempty"`
	ApprovedBy             string                     `json:"approvedBy,omitempty"`
	Comment                string                     `json:"comment,omitempty"`
	Items                  []ExchangeNoteItemResponse `json:"items,omitempty"`
	DeletionMark           bool                       `json:"deletionMark,omitempty"`
	Version                int                        `json:"version"`
	CreatedAt              time.Time                  `json:"createdAt"`
	UpdatedAt              time.Time                  `json:"updatedAt"`
}

// ExchangeNoteItemResponse represents a product line in API responses.
type ExchangeNoteItemResponse struct {
	LineID    string  `json:"lineId"`
	LineNo    int     `json:"lineNo"`
	Code      string  `json:"code"`
	ProductID string  `json:"productId"`
	Quantity  float64 `json:"quantity"`
	Status    string  `json:"status"`
}

// FromExchangeNote converts domain entity to response DTO.
func FromExchangeNote(note *exchange_note.ExchangeNote) *ExchangeNoteResponse {
	resp := &ExchangeNoteResponse{
		ID:                     note.ID.String(),
		Number:                 note.Number,
		Type:                   string(note.Type),
		Date:                   note.Date,
		Status:                 string(note.Status),
		Posted:                 note.Posted,
		SourceWarehouseID:      optionalIDString(note.SourceWarehouseID),
		DestinationWarehouseID: optionalIDString(note.DestinationWarehouseID),
		ApprovedBy:             note.ApprovedBy,
		Comment:                note.Comment,
		DeletionMark:           note.DeletionMark,
		Version:                note.Version,
		CreatedAt:              note.CreatedAt,
		UpdatedAt:              note.UpdatedAt,
	}

	resp.Items = make([]ExchangeNoteItemResponse, len(note.Items))
	for i, item := range note.Items {
		resp.Items[i] = ExchangeNoteItemResponse{
			LineID:    item.LineID.String(),
			LineNo:    item.LineNo,
			Code:      item.Code,
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity.Float64(),
			Status:    string(item.Status),
		}
	}

	return resp
}

// --- helpers ---

func parseRequiredID(field, s string) (id.ID, error) {
	parsed, err := id.Parse(s)
	if err != nil {
		return id.Nil(), apperror.NewValidation("invalid identifier").
			WithDetail("field", field).
			WithDetail("value", s)
	}
	return parsed, nil
}

func parseOptionalID(s *string) (*id.ID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	parsed, err := id.Parse(*s)
	if err != nil {
		return nil, apperror.NewValidation("invalid identifier").WithDetail("value", *s)
	}
	return &parsed, nil
}

func optionalIDString(v *id.ID) *string {
	if v == nil {
		return nil
	}
	s := v.String()
	return &s
}
