// internal/infrastructure/database/postgres/coupon_repository.go
package postgres

import (
	"context"

	"github.com/your-org/storefront-backend/internal/domain/coupon"
	"gorm.io/gorm"
)

var _ coupon.Repository = (*CouponRepository)(nil)

// CouponRepository reads coupons
type CouponRepository struct {
	db *gorm.DB
}

// NewCouponRepository creates a coupon repository
func NewCouponRepository(db *gorm.DB) *CouponRepository {
	return &CouponRepository{db: db}
}

func (r *CouponRepository) FindActiveByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	var c coupon.Coupon
	err := r.db.WithContext(ctx).
		Where("code = ? AND is_active = ?", code, true).
		First(&c).Error
	if err != nil {
		return nil, notFound(err, coupon.ErrNotFound)
	}
	return &c, nil
}
