package handlers

import (
	"github.com/gin-gonic/gin"

	"lemonpos/internal/domain/reports"
)

// ReportHandler handles HTTP requests for inventory reports.
type ReportHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportHandler creates a new report handler.
func NewReportHandler(base *BaseHandler, service *reports.Service) *ReportHandler {
	return &ReportHandler{BaseHandler: base, service: service}
}

// LowStock handles GET /reports/low-stock
func (h *ReportHandler) LowStock(c *gin.Context) {
	report, err := h.service.LowStock(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, report)
}

// Valuation handles GET /reports/valuation
func (h *ReportHandler) Valuation(c *gin.Context) {
	report, err := h.service.Valuation(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, report)
}
