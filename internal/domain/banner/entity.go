// internal/domain/banner/entity.go
package banner

import (
	"context"
	"time"
)

// Banner is a promotional slide shown on the storefront home page
type Banner struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"not null;size:255" json:"title"`
	Subtitle  string    `gorm:"size:500" json:"subtitle"`
	ImageURL  string    `gorm:"not null;size:500" json:"image_url"`
	LinkURL   string    `gorm:"size:500" json:"link_url"`
	SortOrder int       `gorm:"not null;default:0" json:"sort_order"`
	IsActive  bool      `gorm:"not null;index" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (Banner) TableName() string { return "banners" }

// Repository is the banner store
type Repository interface {
	// ListActive returns active banners ordered by sort order
	ListActive(ctx context.Context) ([]Banner, error)
}
