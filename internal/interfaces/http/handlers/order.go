// internal/interfaces/http/handlers/order.go
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/domain/order"
)

// OrderService is the post-checkout order API
type OrderService interface {
	ListForUser(ctx context.Context, userID uint, filter order.UserListFilter) (*order.ListResponse, error)
	Get(ctx context.Context, userID, orderID uint) (*order.Order, error)
	Cancel(ctx context.Context, userID, orderID uint, reason string) (*order.Order, error)
	AdminList(ctx context.Context, filter order.AdminListFilter) (*order.ListResponse, error)
	AdminUpdate(ctx context.Context, adminID, orderID uint, req *order.AdminUpdateRequest) (*order.Order, error)
}

// OrderHandler handles order endpoints for customers and admins
type OrderHandler struct {
	orders OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// GetOrders handles GET /orders
func (h *OrderHandler) GetOrders(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var filter order.UserListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondBindError(c, err)
		return
	}

	response, err := h.orders.ListForUser(c.Request.Context(), userID, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Orders retrieved successfully", response)
}

// GetOrder handles GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	o, err := h.orders.Get(c.Request.Context(), userID, orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Order retrieved successfully", o)
}

// CancelOrder handles PUT /orders/:id/cancel. The body is optional.
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req order.CancelRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
	}

	o, err := h.orders.Cancel(c.Request.Context(), userID, orderID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Order cancelled successfully", o)
}

// AdminGetOrders handles GET /admin/orders
func (h *OrderHandler) AdminGetOrders(c *gin.Context) {
	var filter order.AdminListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondBindError(c, err)
		return
	}

	response, err := h.orders.AdminList(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Orders retrieved successfully", response)
}

// AdminUpdateOrder handles PUT /admin/orders/:id/status
func (h *OrderHandler) AdminUpdateOrder(c *gin.Context) {
	adminID, ok := requireUser(c)
	if !ok {
		return
	}
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req order.AdminUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	o, err := h.orders.AdminUpdate(c.Request.Context(), adminID, orderID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Order updated successfully", o)
}
