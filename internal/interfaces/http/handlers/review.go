// internal/interfaces/http/handlers/review.go
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/pagination"
)

// ReviewService is the review API used by ReviewHandler
type ReviewService interface {
	Create(ctx context.Context, userID uint, req *product.CreateReviewRequest) (*product.Review, error)
	ListForProduct(ctx context.Context, productID uint, params pagination.Params) (*product.ReviewListResponse, error)
	Delete(ctx context.Context, userID, reviewID uint) error
}

// ReviewHandler handles product review endpoints
type ReviewHandler struct {
	reviews ReviewService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviews ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// GetProductReviews handles GET /reviews/:productId
func (h *ReviewHandler) GetProductReviews(c *gin.Context) {
	productID, ok := parseID(c, "productId")
	if !ok {
		return
	}

	var params pagination.Params
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}

	response, err := h.reviews.ListForProduct(c.Request.Context(), productID, params)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Reviews retrieved successfully", response)
}

// CreateReview handles POST /reviews
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req product.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	review, err := h.reviews.Create(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, "Review created successfully", review)
}

// DeleteReview handles DELETE /reviews/:id
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	reviewID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.reviews.Delete(c.Request.Context(), userID, reviewID); err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Review deleted successfully", nil)
}
