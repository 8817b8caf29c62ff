package dto

import (
	"lemonpos/internal/domain/order"
)

// UpdateOrderStatusRequest changes order lifecycle state.
type UpdateOrderStatusRequest struct {
	Status order.Status `json:"status" binding:"required"`
}
