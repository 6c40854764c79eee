// internal/infrastructure/database/postgres/cart_repository.go
package postgres

import (
	"context"
	"fmt"

	"github.com/your-org/storefront-backend/internal/domain/cart"
	"gorm.io/gorm"
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository stores cart lines
type CartRepository struct {
	db *gorm.DB
}

// NewCartRepository creates a cart repository
func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{db: db}
}

func (r *CartRepository) withProduct(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Product").
		Preload("Product.Images", preloadImages).
		Preload("Variant")
}

func (r *CartRepository) ListForUser(ctx context.Context, userID uint) ([]cart.CartItem, error) {
	return listCartLines(r.withProduct(ctx), userID)
}

func (r *CartRepository) FindForUser(ctx context.Context, userID, itemID uint) (*cart.CartItem, error) {
	var item cart.CartItem
	err := r.withProduct(ctx).
		Where("id = ? AND user_id = ?", itemID, userID).
		First(&item).Error
	if err != nil {
		return nil, notFound(err, cart.ErrItemNotFound)
	}
	return &item, nil
}

func (r *CartRepository) FindLine(ctx context.Context, userID, productID uint, variantID *uint) (*cart.CartItem, error) {
	var items []cart.CartItem
	query := r.db.WithContext(ctx).Where("user_id = ? AND product_id = ?", userID, productID)
	if variantID == nil {
		query = query.Where("variant_id IS NULL")
	} else {
		query = query.Where("variant_id = ?", *variantID)
	}

	if err := query.Limit(1).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to find cart line: %w", err)
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

func (r *CartRepository) Create(ctx context.Context, item *cart.CartItem) error {
	if err := r.db.WithContext(ctx).Omit("Product", "Variant").Create(item).Error; err != nil {
		return duplicate(err, "product is already in the cart")
	}
	return nil
}

func (r *CartRepository) UpdateQuantity(ctx context.Context, itemID uint, quantity int) error {
	result := r.db.WithContext(ctx).Model(&cart.CartItem{}).Where("id = ?", itemID).Update("quantity", quantity)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return cart.ErrItemNotFound
	}
	return nil
}

func (r *CartRepository) Delete(ctx context.Context, userID, itemID uint) error {
	return r.db.WithContext(ctx).Where("id = ? AND user_id = ?", itemID, userID).Delete(&cart.CartItem{}).Error
}

func (r *CartRepository) Clear(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&cart.CartItem{}).Error
}

// listCartLines loads a user's lines newest first on a query that already
// carries the product preloads.
func listCartLines(db *gorm.DB, userID uint) ([]cart.CartItem, error) {
	var items []cart.CartItem
	err := db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve cart items: %w", err)
	}
	return items, nil
}
