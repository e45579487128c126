package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"bakehouse/internal/core/apperror"
	"bakehouse/internal/core/id"
	"bakehouse/internal/domain/inventory"
	"bakehouse/internal/domain/reports"
)

// ReportsHandler handles HTTP requests for stock reports.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		service:     service,
	}
}

// LowStock handles GET /reports/low-stock
func (h *ReportsHandler) LowStock(c *gin.Context) {
	items, err := h.service.LowStockItems(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": items})
}

// Expiring handles GET /reports/expiring?days=7
func (h *ReportsHandler) Expiring(c *gin.Context) {
	days := h.ParseIntQuery(c, "days", reports.ExpiryWindowDays)

	lots, err := h.service.ExpiringLots(c.Request.Context(), days)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": lots})
}

// Summary handles GET /reports/summary
func (h *ReportsHandler) Summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, summary)
}

// WriteOffExpired handles POST /reports/write-off-expired
// Writes off every expired live lot as spoilage.
func (h *ReportsHandler) WriteOffExpired(c *gin.Context) {
	result, err := h.service.WriteOffExpired(c.Request.Context(), h.Actor(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}

// Export handles GET /reports/export
// Streams the movement ledger as zstd-compressed JSON lines.
func (h *ReportsHandler) Export(c *gin.Context) {
	var filter inventory.MovementFilter

	if itemStr := c.Query("itemId"); itemStr != "" {
		itemID, err := id.Parse(itemStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid itemId format"))
			return
		}
		filter.ItemID = &itemID
	}

	if fromStr := c.Query("from"); fromStr != "" {
		from, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid from date, expected RFC3339"))
			return
		}
		filter.From = &from
	}

	if toStr := c.Query("to"); toStr != "" {
		to, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid to date, expected RFC3339"))
			return
		}
		filter.To = &to
	}

	c.Header("Content-Type", "application/zstd")
	c.Header("Content-Disposition", `attachment; filename="movements.jsonl.zst"`)
	c.Status(200)

	if err := h.service.ExportMovements(c.Request.Context(), c.Writer, filter); err != nil {
		// Headers are already out; the truncated stream is the signal.
		_ = c.Error(err)
	}
}
