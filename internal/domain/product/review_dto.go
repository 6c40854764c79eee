// internal/domain/product/review_dto.go
package product

import (
	"time"

	"github.com/your-org/storefront-backend/internal/pkg/pagination"
)

// Review represents a product review. A user reviews a product at most once.
type Review struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ProductID  uint      `gorm:"not null;uniqueIndex:idx_reviews_user_product,priority:2;index" json:"product_id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_reviews_user_product,priority:1" json:"user_id"`
	OrderID    *uint     `gorm:"index" json:"order_id,omitempty"`
	Rating     int       `gorm:"not null;check:chk_reviews_rating,rating >= 1 AND rating <= 5" json:"rating"`
	Title      string    `gorm:"size:255" json:"title"`
	Comment    string    `gorm:"type:text" json:"comment"`
	IsVerified bool      `gorm:"not null" json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Filled from users.full_name on reads
	ReviewerName string `gorm:"->;-:migration" json:"reviewer_name,omitempty"`
}

// TableName overrides the table name
func (Review) TableName() string { return "reviews" }

// CreateReviewRequest represents the request to create a review
type CreateReviewRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	OrderID   *uint  `json:"order_id,omitempty"`
	Rating    int    `json:"rating"`
	Title     string `json:"title" binding:"max=255"`
	Comment   string `json:"comment" binding:"max=2000"`
}

// ReviewListResponse represents a page of reviews with the rating breakdown
type ReviewListResponse struct {
	Reviews         []Review              `json:"reviews"`
	Pagination      pagination.Pagination `json:"pagination"`
	RatingBreakdown map[int]int64         `json:"rating_breakdown"`
}
