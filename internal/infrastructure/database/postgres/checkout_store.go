// internal/infrastructure/database/postgres/checkout_store.go
package postgres

import (
	"context"

	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/checkout"
	"github.com/your-org/storefront-backend/internal/domain/coupon"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"gorm.io/gorm"
)

var (
	_ checkout.Store   = (*CheckoutStore)(nil)
	_ checkout.TxStore = (*checkoutTx)(nil)
)

// CheckoutStore backs order placement. Every write goes through guarded
// UPDATEs so concurrent checkouts cannot oversell stock or a coupon.
type CheckoutStore struct {
	db *gorm.DB
}

// NewCheckoutStore creates a checkout store
func NewCheckoutStore(db *gorm.DB) *CheckoutStore {
	return &CheckoutStore{db: db}
}

func (s *CheckoutStore) CartLines(ctx context.Context, userID uint) ([]cart.CartItem, error) {
	db := s.db.WithContext(ctx).
		Preload("Product").
		Preload("Product.Images", preloadImages).
		Preload("Variant")
	return listCartLines(db, userID)
}

func (s *CheckoutStore) InTx(ctx context.Context, fn func(tx checkout.TxStore) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&checkoutTx{db: tx})
	})
}

type checkoutTx struct {
	db *gorm.DB
}

func (t *checkoutTx) CreateOrder(ctx context.Context, o *order.Order) error {
	return t.db.WithContext(ctx).Create(o).Error
}

func (t *checkoutTx) IncrementCouponUsage(ctx context.Context, couponID uint) (bool, error) {
	result := t.db.WithContext(ctx).Model(&coupon.Coupon{}).
		Where("id = ? AND (usage_limit IS NULL OR used_count < usage_limit)", couponID).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (t *checkoutTx) DecrementStock(ctx context.Context, productID uint, variantID *uint, quantity int) (bool, error) {
	var result *gorm.DB
	if variantID != nil {
		result = t.db.WithContext(ctx).Model(&product.ProductVariant{}).
			Where("id = ? AND stock >= ?", *variantID, quantity).
			UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	} else {
		result = t.db.WithContext(ctx).Model(&product.Product{}).
			Where("id = ? AND stock >= ?", productID, quantity).
			UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	}
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	err := t.db.WithContext(ctx).Model(&product.Product{}).
		Where("id = ?", productID).
		UpdateColumn("sold_count", gorm.Expr("sold_count + ?", quantity)).Error
	if err != nil {
		return false, err
	}
	return true, nil
}

func (t *checkoutTx) RemoveCartLines(ctx context.Context, userID uint, lines []cart.CartItem) (bool, error) {
	for _, line := range lines {
		result := t.db.WithContext(ctx).
			Where("id = ? AND user_id = ? AND quantity = ?", line.ID, userID, line.Quantity).
			Delete(&cart.CartItem{})
		if result.Error != nil {
			return false, result.Error
		}
		if result.RowsAffected == 0 {
			return false, nil
		}
	}
	return true, nil
}
