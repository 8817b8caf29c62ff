package handlers

import (
	"github.com/gin-gonic/gin"

	"lemonpos/internal/domain/catalog/product"
	"lemonpos/internal/infrastructure/http/v1/dto"
)

// ProductHandler handles HTTP requests for the product catalog.
type ProductHandler struct {
	*BaseHandler
	service *product.Service
}

// NewProductHandler creates a new product handler.
func NewProductHandler(base *BaseHandler, service *product.Service) *ProductHandler {
	return &ProductHandler{BaseHandler: base, service: service}
}

// Create handles POST /products
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p := req.ToModel()
	if err := h.service.Create(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, p.ID)
}

// Update handles PUT /products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	productID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	p, err := h.service.GetByID(ctx, productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.Apply(p)
	if err := h.service.Update(ctx, p); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, p)
}

// Get handles GET /products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	productID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, p)
}

// List handles GET /products
func (h *ProductHandler) List(c *gin.Context) {
	filter := product.ListFilter{
		Category:   c.Query("category"),
		ActiveOnly: c.Query("includeInactive") != "true",
		Limit:      h.ParseIntQuery(c, "limit", 100),
		Offset:     h.ParseIntQuery(c, "offset", 0),
	}

	products, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(products, filter.Limit, filter.Offset))
}

// Deactivate handles DELETE /products/:id
func (h *ProductHandler) Deactivate(c *gin.Context) {
	productID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Deactivate(c.Request.Context(), productID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// Receive handles POST /products/:id/receive
func (h *ProductHandler) Receive(c *gin.Context) {
	productID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.ReceiveStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.Receive(c.Request.Context(), productID, req.Quantity); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.SuccessResponse{Success: true})
}
