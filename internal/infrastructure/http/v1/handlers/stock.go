package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"bakehouse/internal/core/apperror"
	"bakehouse/internal/core/id"
	"bakehouse/internal/domain/inventory"
	"bakehouse/internal/infrastructure/http/v1/dto"
)

// StockHandler handles HTTP requests for the stock engines.
type StockHandler struct {
	*BaseHandler
	service *inventory.Service
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(base *BaseHandler, service *inventory.Service) *StockHandler {
	return &StockHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Receive handles POST /stock/receive
func (h *StockHandler) Receive(c *gin.Context) {
	var req dto.ReceiveRequest
	if !h.BindJSON(c, &req) {
		return
	}

	domainReq, err := req.ToDomain(h.Actor(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	lot, err := h.service.Receive(c.Request.Context(), domainReq)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, lot)
}

// Consume handles POST /stock/consume
func (h *StockHandler) Consume(c *gin.Context) {
	var req dto.ConsumeRequest
	if !h.BindJSON(c, &req) {
		return
	}

	domainReq, err := req.ToDomain(h.Actor(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	movements, err := h.service.Consume(c.Request.Context(), domainReq)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.MovementListResponse{Items: movements})
}

// Produce handles POST /stock/produce
func (h *StockHandler) Produce(c *gin.Context) {
	var req dto.ProduceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	domainReq, err := req.ToDomain(h.Actor(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	lot, err := h.service.Produce(c.Request.Context(), domainReq)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, lot)
}

// Adjust handles POST /stock/adjust
func (h *StockHandler) Adjust(c *gin.Context) {
	var req dto.AdjustRequest
	if !h.BindJSON(c, &req) {
		return
	}

	domainReq, err := req.ToDomain(h.Actor(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	movements, err := h.service.Adjust(c.Request.Context(), domainReq)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.MovementListResponse{Items: movements})
}

// Lots handles GET /stock/lots/:itemId
// Returns live lots in planning order for the item's policy.
func (h *StockHandler) Lots(c *gin.Context) {
	itemID, err := id.Parse(c.Param("itemId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid itemId format"))
		return
	}

	lots, err := h.service.AvailableLots(c.Request.Context(), itemID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.LotListResponse{Items: lots})
}

// Cost handles GET /stock/cost/:itemId
func (h *StockHandler) Cost(c *gin.Context) {
	itemID, err := id.Parse(c.Param("itemId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid itemId format"))
		return
	}

	cost, err := h.service.ItemUnitCost(c.Request.Context(), itemID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.CostResponse{ItemID: itemID.String(), UnitCost: cost})
}

// Movements handles GET /stock/movements
func (h *StockHandler) Movements(c *gin.Context) {
	filter := inventory.MovementFilter{
		Limit:  h.ParseIntQuery(c, "limit", 100),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	if itemStr := c.Query("itemId"); itemStr != "" {
		itemID, err := id.Parse(itemStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid itemId format"))
			return
		}
		filter.ItemID = &itemID
	}

	if lotStr := c.Query("lotId"); lotStr != "" {
		lotID, err := id.Parse(lotStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid lotId format"))
			return
		}
		filter.LotID = &lotID
	}

	if typeStr := c.Query("type"); typeStr != "" {
		movType := inventory.MovementType(typeStr)
		filter.Type = &movType
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

	movements, err := h.service.Movements(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.MovementListResponse{Items: movements})
}
