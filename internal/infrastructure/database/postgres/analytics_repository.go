// internal/infrastructure/database/postgres/analytics_repository.go
package postgres

import (
	"context"

	"github.com/your-org/storefront-backend/internal/domain/analytics"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"gorm.io/gorm"
)

var _ analytics.Repository = (*AnalyticsRepository)(nil)

// AnalyticsRepository runs the dashboard aggregates
type AnalyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository creates an analytics repository
func NewAnalyticsRepository(db *gorm.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

func (r *AnalyticsRepository) CountOrders(ctx context.Context, status string) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&order.Order{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Count(&count).Error
	return count, err
}

func (r *AnalyticsRepository) SumPaidRevenue(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&order.Order{}).
		Select("COALESCE(SUM(total), 0)").
		Where("payment_status = ?", order.PaymentStatusPaid).
		Scan(&total).Error
	return total, err
}

func (r *AnalyticsRepository) CountActiveProducts(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&product.Product{}).Where("is_active = ?", true).Count(&count).Error
	return count, err
}

func (r *AnalyticsRepository) CountLowStockProducts(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&product.Product{}).
		Where("is_active = ? AND stock <= low_stock_threshold", true).
		Count(&count).Error
	return count, err
}

func (r *AnalyticsRepository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&user.User{}).Count(&count).Error
	return count, err
}
