package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lemonpos/internal/domain/ledger"
	"lemonpos/internal/infrastructure/http/v1/dto"
)

// StockHandler handles HTTP requests for the stock ledger.
type StockHandler struct {
	*BaseHandler
	service *ledger.Service
}

// NewStockHandler creates a new stock ledger handler.
func NewStockHandler(base *BaseHandler, service *ledger.Service) *StockHandler {
	return &StockHandler{BaseHandler: base, service: service}
}

// Append handles POST /ingredients/:id/movements
func (h *StockHandler) Append(c *gin.Context) {
	ingredientID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.AppendMovementRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cmd := req.ToCommand(ingredientID, h.Actor(c))
	movement, err := h.service.AppendMovement(c.Request.Context(), cmd)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, movement)
}

// History handles GET /ingredients/:id/movements
func (h *StockHandler) History(c *gin.Context) {
	ingredientID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	filter, ok := h.movementFilter(c)
	if !ok {
		return
	}

	movements, err := h.service.GetHistory(c.Request.Context(), ingredientID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(movements, filter.Limit, filter.Offset))
}

// List handles GET /stock/movements
func (h *StockHandler) List(c *gin.Context) {
	filter, ok := h.movementFilter(c)
	if !ok {
		return
	}

	movements, err := h.service.GetAll(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(movements, filter.Limit, filter.Offset))
}

// Reconcile handles POST /stock/reconcile
func (h *StockHandler) Reconcile(c *gin.Context) {
	repaired, err := h.service.ReconcileAll(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ReconcileResponse{Repaired: repaired})
}

func (h *StockHandler) movementFilter(c *gin.Context) (ledger.MovementFilter, bool) {
	filter := ledger.MovementFilter{
		Limit:  h.ParseIntQuery(c, "limit", 100),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	from, ok := h.ParseDateQuery(c, "from")
	if !ok {
		return filter, false
	}
	filter.FromDate = from

	to, ok := h.ParseDateQuery(c, "to")
	if !ok {
		return filter, false
	}
	filter.ToDate = to

	if t := c.Query("type"); t != "" {
		mt := ledger.MovementType(t)
		filter.Type = &mt
	}

	return filter, true
}
