package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stockyard/internal/core/apperror"
	"stockyard/internal/core/id"
	"stockyard/internal/core/types"
	"stockyard/internal/domain"
	"stockyard/internal/domain/documents/exchange_note"
	"stockyard/internal/infrastructure/http/v1/dto"
)

// ExchangeNoteHandler handles HTTP requests for ExchangeNote documents.
type ExchangeNoteHandler struct {
	*BaseHandler
	service *exchange_note.Service
}

// NewExchangeNoteHandler creates a new exchange note handler.
func NewExchangeNoteHandler(base *BaseHandler, service *exchange_note.Service) *ExchangeNoteHandler {
	return &ExchangeNoteHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /documents/exchange-notes.
func (h *ExchangeNoteHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateExchangeNoteRequest
	if !h.BindJSON(c, &req) {
		return
	}

	note, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(ctx, note); err != nil {
		h.Error(c, err)
		return
	}

	response := dto.FromExchangeNote(note)
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", response)
	c.JSON(http.StatusCreated, response)
}

// Get handles GET /documents/exchange-notes/:id.
func (h *ExchangeNoteHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	noteID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	note, err := h.service.GetByID(ctx, noteID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromExchangeNote(note))
}

// GetByNumber handles GET /documents/exchange-notes/by-number/:number.
func (h *ExchangeNoteHandler) GetByNumber(c *gin.Context) {
	ctx := c.Request.Context()

	note, err := h.service.GetByNumber(ctx, c.Param("number"))
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromExchangeNote(note))
}

// Update handles PUT /documents/exchange-notes/:id.
// Only pending notes can be modified.
func (h *ExchangeNoteHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	noteID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.UpdateExchangeNoteRequest
	if !h.BindJSON(c, &req) {
		return
	}

	note, err := h.service.GetByID(ctx, noteID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := req.ApplyTo(note); err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Update(ctx, note); err != nil {
		h.Error(c, err)
		return
	}

	response := dto.FromExchangeNote(note)
	h.CompleteIdempotency(c, http.StatusOK, "application/json", response)
	c.JSON(http.StatusOK, response)
}

// AddItem handles POST /documents/exchange-notes/:id/items.
func (h *ExchangeNoteHandler) AddItem(c *gin.Context) {
	ctx := c.Request.Context()

	noteID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.AddNoteItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	productID, err := id.Parse(req.ProductID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid productId format"))
		return
	}

	item, err := h.service.AddItem(ctx, noteID, productID, types.NewQuantityFromFloat64(req.Quantity))
	if err != nil {
		h.Error(c, err)
		return
	}

	response := dto.ExchangeNoteItemResponse{
		LineID:    item.LineID.String(),
		LineNo:    item.LineNo,
		Code:      item.Code,
		ProductID: item.ProductID.String(),
		Quantity:  item.Quantity.Float64(),
		Status:    string(item.Status),
	}
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", response)
	c.JSON(http.StatusCreated, response)
}

// Approve handles POST /documents/exchange-notes/:id/approve.
// Moves a pending note to accepted.
func (h *ExchangeNoteHandler) Approve(c *gin.Context) {
	ctx := c.Request.Context()

	noteID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	// Body is optional; the authenticated user is the default approver.
	var req dto.ApproveNoteRequest
	if c.Request.ContentLength > 0 {
		if !h.BindJSON(c, &req) {
			return
		}
	}

	approvedBy := req.ApprovedBy
	if approvedBy == "" {
		approvedBy = h.GetUserCode(c)
	}

	note, err := h.service.Approve(ctx, noteID, approvedBy)
	if err != nil {
		h.Error(c, err)
		return
	}

	response := dto.FromExchangeNote(note)
	h.CompleteIdempotency(c, http.StatusOK, "application/json", response)
	c.JSON(http.StatusOK, response)
}

// Finalize handles POST /documents/exchange-notes/:id/finalize.
// Moves an accepted note to finished and posts its movements to the ledger.
func (h *ExchangeNoteHandler) Finalize(c *gin.Context) {
	ctx := c.Request.Context()

	noteID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	note, err := h.service.Finalize(ctx, noteID)
	if err != nil {
		h.Error(c, err)
		return
	}

	response := dto.FromExchangeNote(note)
	h.CompleteIdempotency(c, http.StatusOK, "application/json", response)
	c.JSON(http.StatusOK, response)
}

// Cancel handles POST /documents/exchange-notes/:id/cancel.
// Rejects a note that is not yet final.
func (h *ExchangeNoteHandler) Cancel(c *gin.Context) {
	ctx := c.Request.Context()

	noteID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	note, err := h.service.Cancel(ctx, noteID)
	if err != nil {
		h.Error(c, err)
		return
	}

	response := dto.FromExchangeNote(note)
	h.CompleteIdempotency(c, http.StatusOK, "application/json", response)
	c.JSON(http.StatusOK, response)
}

// Delete handles DELETE /documents/exchange-notes/:id.
func (h *ExchangeNoteHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	noteID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.Delete(ctx, noteID); err != nil {
		h.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// List handles GET /documents/exchange-notes.
func (h *ExchangeNoteHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := exchange_note.ListFilter{
		ListFilter: domain.DefaultListFilter(),
	}
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "date DESC")
	filter.IncludeDeleted = c.Query("includeDeleted") == "true"

	if noteType := c.Query("type"); noteType != "" {
		parsed, err := exchange_note.ParseNoteType(noteType)
		if err != nil {
			h.Error(c, err)
			return
		}
		filter.Type = &parsed
	}

	if status := c.Query("status"); status != "" {
		filter.Status = &status
	}

	if warehouseID := c.Query("warehouseId"); warehouseID != "" {
		if parsed, err := id.Parse(warehouseID); err == nil {
			filter.WarehouseID = &parsed
		}
	}

	if productID := c.Query("productId"); productID != "" {
		if parsed, err := id.Parse(productID); err == nil {
			filter.ProductID = &parsed
		}
	}

	if dateFrom := c.Query("dateFrom"); dateFrom != "" {
		if parsed, err := time.Parse(time.RFC3339, dateFrom); err == nil {
			filter.DateFrom = &parsed
		}
	}

	if dateTo := c.Query("dateTo"); dateTo != "" {
		if parsed, err := time.Parse(time.RFC3339, dateTo); err == nil {
			filter.DateTo = &parsed
		}
	}

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]*dto.ExchangeNoteResponse, len(result.Items))
	for i, note := range result.Items {
		items[i] = dto.FromExchangeNote(note)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}
