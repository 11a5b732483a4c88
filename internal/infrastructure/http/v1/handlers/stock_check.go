package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stockyard/internal/core/apperror"
	"stockyard/internal/core/id"
	"stockyard/internal/core/types"
	"stockyard/internal/domain"
	"stockyard/internal/domain/documents/stock_check"
	"stockyard/internal/infrastructure/http/v1/dto"
)

// StockCheckHandler handles HTTP requests for StockCheckNote documents.
type StockCheckHandler struct {
	*BaseHandler
	service *stock_check.Service
}

// NewStockCheckHandler creates a new stock check handler.
func NewStockCheckHandler(base *BaseHandler, service *stock_check.Service) *StockCheckHandler {
	return &StockCheckHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /documents/stock-checks.
func (h *StockCheckHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateStockCheckRequest
	if !h.BindJSON(c, &req) {
		return
	}

	note, err := req.ToEntity(h.GetUserCode(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(ctx, note); err != nil {
		h.Error(c, err)
		return
	}

	response := dto.FromStockCheck(note)
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", response)
	c.JSON(http.StatusCreated, response)
}

// Get handles GET /documents/stock-checks/:id.
func (h *StockCheckHandler) Get(c *gin.Context) {
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

	c.JSON(http.StatusOK, dto.FromStockCheck(note))
}

// AddProduct handles POST /documents/stock-checks/:id/products.
// Adding a product that is already counted overwrites its actual quantity.
func (h *StockCheckHandler) AddProduct(c *gin.Context) {
	ctx := c.Request.Context()

	noteID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.AddCheckProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	productID, err := id.Parse(req.ProductID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid productId format"))
		return
	}

	line, err := h.service.AddProduct(ctx, noteID, productID, types.NewQuantityFromFloat64(req.ActualQuantity))
	if err != nil {
		h.Error(c, err)
		return
	}

	response := dto.StockCheckLineResponse{
		LineID:              line.LineID.String(),
		LineNo:              line.LineNo,
		ProductID:           line.ProductID.String(),
		LastQuantity:        line.LastQuantity.Float64(),
		TotalImportQuantity: line.TotalImportQuantity.Float64(),
		TotalExportQuantity: line.TotalExportQuantity.Float64(),
		ExpectedQuantity:    line.ExpectedQuantity.Float64(),
		ActualQuantity:      line.ActualQuantity.Float64(),
		Difference:          line.Difference().Float64(),
		Status:              string(line.Status),
		CountedAt:           line.CountedAt,
	}
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", response)
	c.JSON(http.StatusCreated, response)
}

// UpdateActualQuantity handles PUT /documents/stock-checks/:id/products/:productId.
func (h *StockCheckHandler) UpdateActualQuantity(c *gin.Context) {
	ctx := c.Request.Context()

	noteID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	productID, err := id.Parse(c.Param("productId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid productId format"))
		return
	}

	var req dto.UpdateActualQuantityRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.UpdateActualQuantity(ctx, noteID, productID, types.NewQuantityFromFloat64(req.ActualQuantity)); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "actual quantity updated")
}

// RemoveProduct handles DELETE /documents/stock-checks/:id/products/:productId.
func (h *StockCheckHandler) RemoveProduct(c *gin.Context) {
	ctx := c.Request.Context()

	noteID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	productID, err := id.Parse(c.Param("productId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid productId format"))
		return
	}

	if err := h.service.RemoveProduct(ctx, noteID, productID); err != nil {
		h.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Approve handles POST /documents/stock-checks/:id/approve.
func (h *StockCheckHandler) Approve(c *gin.Context) {
	ctx := c.Request.Context()

	noteID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	note, err := h.service.Approve(ctx, noteID)
	if err != nil {
		h.Error(c, err)
		return
	}

	response := dto.FromStockCheck(note)
	h.CompleteIdempotency(c, http.StatusOK, "application/json", response)
	c.JSON(http.StatusOK, response)
}

// Finalize handles POST /documents/stock-checks/:id/finalize.
// confirm=true finishes the count, confirm=false rejects the whole note.
func (h *StockCheckHandler) Finalize(c *gin.Context) {
	ctx := c.Request.Context()

	noteID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.FinalizeStockCheckRequest
	if !h.BindJSON(c, &req) {
		return
	}

	note, err := h.service.Finalize(ctx, noteID, *req.Confirm)
	if err != nil {
		h.Error(c, err)
		return
	}

	response := dto.FromStockCheck(note)
	h.CompleteIdempotency(c, http.StatusOK, "application/json", response)
	c.JSON(http.StatusOK, response)
}

// GetComparison handles GET /documents/stock-checks/:id/comparison.
func (h *StockCheckHandler) GetComparison(c *gin.Context) {
	ctx := c.Request.Context()

	noteID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	rows, err := h.service.GetComparison(ctx, noteID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": dto.FromComparisons(rows)})
}

// Delete handles DELETE /documents/stock-checks/:id.
func (h *StockCheckHandler) Delete(c *gin.Context) {
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

// List handles GET /documents/stock-checks.
func (h *StockCheckHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := stock_check.ListFilter{
		ListFilter: domain.DefaultListFilter(),
	}
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "date DESC")
	filter.IncludeDeleted = c.Query("includeDeleted") == "true"

	if warehouseID := c.Query("warehouseId"); warehouseID != "" {
		if parsed, err := id.Parse(warehouseID); err == nil {
			filter.WarehouseID = &parsed
		}
	}

	if status := c.Query("status"); status != "" {
		filter.Status = &status
	}

	if checkedBy := c.Query("checkedBy"); checkedBy != "" {
		filter.CheckedBy = &checkedBy
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

	items := make([]*dto.StockCheckResponse, len(result.Items))
	for i, note := range result.Items {
		items[i] = dto.FromStockCheck(note)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}
