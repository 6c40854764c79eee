// internal/infrastructure/database/postgres/order_repository.go
package postgres

import (
	"context"
	"fmt"

	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	_ order.Repository   = (*OrderRepository)(nil)
	_ order.TxRepository = (*orderTx)(nil)
)

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

func preloadHistory(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC, id ASC")
}

// OrderRepository stores orders after checkout
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates an order repository
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) ListForUser(ctx context.Context, userID uint, f order.UserListFilter) ([]order.Order, int64, error) {
	var orders []order.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&order.Order{}).Where("user_id = ?", userID)
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	err := query.Preload("Items", preloadItems).
		Order("created_at DESC, id DESC").
		Offset(f.Offset()).
		Limit(f.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve orders: %w", err)
	}

	return orders, total, nil
}

func (r *OrderRepository) FindForUser(ctx context.Context, userID, orderID uint) (*order.Order, error) {
	var o order.Order
	err := r.db.WithContext(ctx).
		Preload("Items", preloadItems).
		Preload("StatusHistory", preloadHistory).
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&o).Error
	if err != nil {
		return nil, notFound(err, order.ErrOrderNotFound)
	}
	return &o, nil
}

func (r *OrderRepository) List(ctx context.Context, f order.AdminListFilter) ([]order.Order, int64, error) {
	var orders []order.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&order.Order{})
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.Search != "" {
		pattern := containsPattern(f.Search)
		query = query.Where("(order_number ILIKE ? OR shipping_recipient_name ILIKE ?)", pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	err := query.Preload("Items", preloadItems).
		Order("created_at DESC, id DESC").
		Offset(f.Offset()).
		Limit(f.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve orders: %w", err)
	}

	return orders, total, nil
}

func (r *OrderRepository) FindByID(ctx context.Context, orderID uint) (*order.Order, error) {
	var o order.Order
	err := r.db.WithContext(ctx).
		Preload("Items", preloadItems).
		Preload("StatusHistory", preloadHistory).
		First(&o, orderID).Error
	if err != nil {
		return nil, notFound(err, order.ErrOrderNotFound)
	}
	return &o, nil
}

func (r *OrderRepository) InTx(ctx context.Context, fn func(tx order.TxRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&orderTx{db: tx})
	})
}

type orderTx struct {
	db *gorm.DB
}

func (t *orderTx) LockForUpdate(ctx context.Context, orderID uint) (*order.Order, error) {
	var o order.Order
	err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&o, orderID).Error
	if err != nil {
		return nil, notFound(err, order.ErrOrderNotFound)
	}

	if err := t.db.WithContext(ctx).Where("order_id = ?", o.ID).Order("id ASC").Find(&o.Items).Error; err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}
	return &o, nil
}

func (t *orderTx) Update(ctx context.Context, o *order.Order) error {
	return t.db.WithContext(ctx).
		Model(o).
		Omit(clause.Associations).
		Select("status", "payment_status", "tracking_number", "shipped_at", "delivered_at", "cancelled_at", "updated_at").
		Updates(o).Error
}

func (t *orderTx) RestoreStock(ctx context.Context, items []order.OrderItem) error {
	for _, item := range items {
		var err error
		if item.VariantID != nil {
			err = t.db.WithContext(ctx).Model(&product.ProductVariant{}).
				Where("id = ?", *item.VariantID).
				UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity)).Error
		} else {
			err = t.db.WithContext(ctx).Model(&product.Product{}).
				Where("id = ?", item.ProductID).
				UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity)).Error
		}
		if err != nil {
			return fmt.Errorf("failed to restore stock for product %d: %w", item.ProductID, err)
		}
	}
	return nil
}

func (t *orderTx) AddHistory(ctx context.Context, h *order.StatusHistory) error {
	return t.db.WithContext(ctx).Create(h).Error
}
