// internal/interfaces/http/handlers/wishlist.go
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/domain/wishlist"
)

// WishlistService is the wishlist API used by WishlistHandler
type WishlistService interface {
	List(ctx context.Context, userID uint) ([]wishlist.WishlistItem, error)
	Toggle(ctx context.Context, userID, productID uint) (*wishlist.ToggleResponse, error)
	Remove(ctx context.Context, userID, itemID uint) error
}

// WishlistHandler handles wishlist endpoints
type WishlistHandler struct {
	wishlist WishlistService
}

// NewWishlistHandler creates a new wishlist handler
func NewWishlistHandler(wishlist WishlistService) *WishlistHandler {
	return &WishlistHandler{wishlist: wishlist}
}

// GetWishlist handles GET /wishlist
func (h *WishlistHandler) GetWishlist(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	items, err := h.wishlist.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Wishlist retrieved successfully", items)
}

// ToggleWishlist handles POST /wishlist
func (h *WishlistHandler) ToggleWishlist(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req wishlist.ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.wishlist.Toggle(c.Request.Context(), userID, req.ProductID)
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Removed from wishlist"
	if result.Wishlisted {
		message = "Added to wishlist"
	}
	respond(c, http.StatusOK, message, result)
}

// RemoveFromWishlist handles DELETE /wishlist/:id
func (h *WishlistHandler) RemoveFromWishlist(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	itemID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.wishlist.Remove(c.Request.Context(), userID, itemID); err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Removed from wishlist", nil)
}
