package handlers

import (
	"github.com/gin-gonic/gin"

	"lemonpos/internal/domain/catalog/ingredient"
	"lemonpos/internal/infrastructure/http/v1/dto"
)

// IngredientHandler handles HTTP requests for the ingredient catalog.
type IngredientHandler struct {
	*BaseHandler
	service *ingredient.Service
}

// NewIngredientHandler creates a new ingredient handler.
func NewIngredientHandler(base *BaseHandler, service *ingredient.Service) *IngredientHandler {
	return &IngredientHandler{BaseHandler: base, service: service}
}

// Create handles POST /ingredients
func (h *IngredientHandler) Create(c *gin.Context) {
	var req dto.CreateIngredientRequest
	if !h.BindJSON(c, &req) {
		return
	}

	i := req.ToModel()
	if err := h.service.Create(c.Request.Context(), i); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, i.ID)
}

// Update handles PUT /ingredients/:id
func (h *IngredientHandler) Update(c *gin.Context) {
	ingredientID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateIngredientRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	i, err := h.service.GetByID(ctx, ingredientID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.Apply(i)
	if err := h.service.Update(ctx, i); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, i)
}

// Get handles GET /ingredients/:id
func (h *IngredientHandler) Get(c *gin.Context) {
	ingredientID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	i, err := h.service.GetByID(c.Request.Context(), ingredientID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, i)
}

// List handles GET /ingredients
func (h *IngredientHandler) List(c *gin.Context) {
	filter := ingredient.ListFilter{
		ActiveOnly: c.Query("includeInactive") != "true",
		Limit:      h.ParseIntQuery(c, "limit", 100),
		Offset:     h.ParseIntQuery(c, "offset", 0),
	}
	if supplier := c.Query("supplier"); supplier != "" {
		filter.Supplier = &supplier
	}

	ingredients, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(ingredients, filter.Limit, filter.Offset))
}

// Deactivate handles DELETE /ingredients/:id
func (h *IngredientHandler) Deactivate(c *gin.Context) {
	ingredientID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Deactivate(c.Request.Context(), ingredientID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
