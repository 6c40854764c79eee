// internal/infrastructure/database/postgres/wishlist_repository.go
package postgres

import (
	"context"
	"fmt"

	"github.com/your-org/storefront-backend/internal/domain/wishlist"
	"gorm.io/gorm"
)

var _ wishlist.Repository = (*WishlistRepository)(nil)

// WishlistRepository stores wishlist items
type WishlistRepository struct {
	db *gorm.DB
}

// NewWishlistRepository creates a wishlist repository
func NewWishlistRepository(db *gorm.DB) *WishlistRepository {
	return &WishlistRepository{db: db}
}

func (r *WishlistRepository) ListForUser(ctx context.Context, userID uint) ([]wishlist.WishlistItem, error) {
	var items []wishlist.WishlistItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Product.Images", preloadImages).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve wishlist items: %w", err)
	}
	return items, nil
}

func (r *WishlistRepository) Find(ctx context.Context, userID, productID uint) (*wishlist.WishlistItem, error) {
	var items []wishlist.WishlistItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Limit(1).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

func (r *WishlistRepository) Create(ctx context.Context, item *wishlist.WishlistItem) error {
	if err := r.db.WithContext(ctx).Omit("Product").Create(item).Error; err != nil {
		return duplicate(err, "product is already in the wishlist")
	}
	return nil
}

func (r *WishlistRepository) Delete(ctx context.Context, userID, itemID uint) error {
	return r.db.WithContext(ctx).Where("id = ? AND user_id = ?", itemID, userID).Delete(&wishlist.WishlistItem{}).Error
}
