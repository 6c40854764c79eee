// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/domain/checkout"
	"github.com/your-org/storefront-backend/internal/domain/coupon"
	"github.com/your-org/storefront-backend/internal/domain/order"
)

// CheckoutService turns carts into orders
type CheckoutService interface {
	PlaceOrder(ctx context.Context, userID uint, req *checkout.PlaceOrderRequest) (*order.Order, error)
	Summary(ctx context.Context, userID uint, couponCode string) (*checkout.SummaryResponse, error)
}

// CouponValidator checks a coupon against a subtotal
type CouponValidator interface {
	Validate(ctx context.Context, code string, subtotal int64) (*coupon.ValidateResponse, error)
}

// CheckoutHandler handles checkout and coupon endpoints
type CheckoutHandler struct {
	checkout CheckoutService
	coupons  CouponValidator
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkout CheckoutService, coupons CouponValidator) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, coupons: coupons}
}

// GetSummary handles GET /checkout/summary?coupon_code=...
func (h *CheckoutHandler) GetSummary(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	summary, err := h.checkout.Summary(c.Request.Context(), userID, c.Query("coupon_code"))
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Checkout summary retrieved successfully", summary)
}

// PlaceOrder handles POST /orders
func (h *CheckoutHandler) PlaceOrder(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req checkout.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	placed, err := h.checkout.PlaceOrder(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, "Order placed successfully", placed)
}

// ValidateCoupon handles POST /coupons/validate
func (h *CheckoutHandler) ValidateCoupon(c *gin.Context) {
	var req coupon.ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.coupons.Validate(c.Request.Context(), req.Code, req.Subtotal)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Coupon is valid", result)
}
