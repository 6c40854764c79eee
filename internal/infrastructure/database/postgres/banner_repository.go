// internal/infrastructure/database/postgres/banner_repository.go
package postgres

import (
	"context"
	"fmt"

	"github.com/your-org/storefront-backend/internal/domain/banner"
	"gorm.io/gorm"
)

var _ banner.Repository = (*BannerRepository)(nil)

type BannerRepository struct {
	db *gorm.DB
}

func NewBannerRepository(db *gorm.DB) *BannerRepository {
	return &BannerRepository{db: db}
}

func (r *BannerRepository) ListActive(ctx context.Context) ([]banner.Banner, error) {
	var banners []banner.Banner
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_order ASC, id ASC").
		Find(&banners).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve banners: %w", err)
	}
	return banners, nil
}
