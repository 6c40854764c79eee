// internal/infrastructure/database/postgres/review_repository.go
package postgres

import (
	"context"
	"fmt"

	"github.com/your-org/storefront-backend/internal/domain/product"
	"gorm.io/gorm"
)

var _ product.ReviewRepository = (*ReviewRepository)(nil)

// ReviewRepository stores reviews and keeps the product rating aggregate current
type ReviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates a review repository
func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) withReviewer(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&product.Review{}).
		Select("reviews.*, users.full_name AS reviewer_name").
		Joins("LEFT JOIN users ON users.id = reviews.user_id")
}

func (r *ReviewRepository) Create(ctx context.Context, review *product.Review) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(review).Error; err != nil {
			return duplicate(err, "you have already reviewed this product")
		}
		return recomputeRating(tx, review.ProductID)
	})
}

func (r *ReviewRepository) FindByID(ctx context.Context, id uint) (*product.Review, error) {
	var review product.Review
	if err := r.withReviewer(ctx).Where("reviews.id = ?", id).First(&review).Error; err != nil {
		return nil, notFound(err, product.ErrReviewNotFound)
	}
	return &review, nil
}

func (r *ReviewRepository) Exists(ctx context.Context, userID, productID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&product.Review{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ReviewRepository) ListForProduct(ctx context.Context, productID uint, offset, limit int) ([]product.Review, int64, error) {
	var reviews []product.Review
	var total int64

	if err := r.db.WithContext(ctx).Model(&product.Review{}).Where("product_id = ?", productID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	err := r.withReviewer(ctx).
		Where("reviews.product_id = ?", productID).
		Order("reviews.created_at DESC, reviews.id DESC").
		Offset(offset).
		Limit(limit).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve reviews: %w", err)
	}

	return reviews, total, nil
}

func (r *ReviewRepository) RatingBreakdown(ctx context.Context, productID uint) (map[int]int64, error) {
	var rows []struct {
		Rating int
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&product.Review{}).
		Select("rating, COUNT(*) AS count").
		Where("product_id = ?", productID).
		Group("rating").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute rating breakdown: %w", err)
	}

	breakdown := make(map[int]int64, len(rows))
	for _, row := range rows {
		breakdown[row.Rating] = row.Count
	}
	return breakdown, nil
}

func (r *ReviewRepository) Delete(ctx context.Context, review *product.Review) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&product.Review{}, review.ID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return product.ErrReviewNotFound
		}
		return recomputeRating(tx, review.ProductID)
	})
}

// recomputeRating rewrites rating_avg and rating_count from the reviews table
func recomputeRating(tx *gorm.DB, productID uint) error {
	err := tx.Exec(`
		UPDATE products SET
			rating_avg = COALESCE((SELECT ROUND(AVG(rating)::numeric, 2) FROM reviews WHERE product_id = ?), 0),
			rating_count = (SELECT COUNT(*) FROM reviews WHERE product_id = ?),
			updated_at = NOW()
		WHERE id = ?`, productID, productID, productID).Error
	if err != nil {
		return fmt.Errorf("failed to update product rating: %w", err)
	}
	return nil
}
