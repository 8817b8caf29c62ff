package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lemonpos/internal/domain/order"
	"lemonpos/internal/infrastructure/http/v1/dto"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	*BaseHandler
	coordinator *order.Coordinator
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(base *BaseHandler, coordinator *order.Coordinator) *OrderHandler {
	return &OrderHandler{BaseHandler: base, coordinator: coordinator}
}

// Commit handles POST /orders
func (h *OrderHandler) Commit(c *gin.Context) {
	var req order.CommitRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if req.CreatedBy == nil {
		req.CreatedBy = h.Actor(c)
	}

	o, err := h.coordinator.Commit(c.Request.Context(), req)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, o)
}

// Get handles GET /orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	o, err := h.coordinator.GetByID(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, o)
}

// List handles GET /orders
func (h *OrderHandler) List(c *gin.Context) {
	filter := order.ListFilter{
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	from, ok := h.ParseDateQuery(c, "from")
	if !ok {
		return
	}
	filter.FromDate = from

	to, ok := h.ParseDateQuery(c, "to")
	if !ok {
		return
	}
	filter.ToDate = to

	if s := c.Query("status"); s != "" {
		status := order.Status(s)
		filter.Status = &status
	}

	orders, err := h.coordinator.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(orders, filter.Limit, filter.Offset))
}

// UpdateStatus handles PATCH /orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateOrderStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.coordinator.UpdateStatus(c.Request.Context(), orderID, req.Status); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.SuccessResponse{Success: true})
}
