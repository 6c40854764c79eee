// internal/domain/coupon/entity.go
package coupon

import (
	"time"

	"github.com/shopspring/decimal"
)

// DiscountType represents how a coupon discount is computed
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFlat       DiscountType = "flat"
)

// Coupon represents a discount code. Codes are stored upper-cased.
type Coupon struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Code          string          `gorm:"uniqueIndex;not null;size:50" json:"code"`
	Description   string          `gorm:"size:500" json:"description"`
	DiscountType  DiscountType    `gorm:"type:varchar(20);not null;check:chk_coupons_discount_type,discount_type IN ('percentage','flat')" json:"discount_type"`
	DiscountValue decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"discount_value"`
	MaxDiscount   *int64          `json:"max_discount"`
	MinPurchase   *int64          `json:"min_purchase"`
	UsageLimit    *int            `json:"usage_limit"`
	UsedCount     int             `gorm:"not null;default:0" json:"used_count"`
	ExpiresAt     *time.Time      `json:"expires_at"`
	IsActive      bool            `gorm:"not null;index" json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TableName overrides the table name
func (Coupon) TableName() string { return "coupons" }

// IsExpired reports whether the coupon expired before now
func (c *Coupon) IsExpired(now time.Time) bool {
	return c.ExpiresAt != nil && c.ExpiresAt.Before(now)
}

// IsExhausted reports whether the usage limit has been reached
func (c *Coupon) IsExhausted() bool {
	return c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit
}

// Summary is the coupon block returned by validation
type Summary struct {
	Code          string          `json:"code"`
	Description   string          `json:"description"`
	DiscountType  DiscountType    `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
}

// Summarize returns the public view of the coupon
func (c *Coupon) Summarize() Summary {
	return Summary{
		Code:          c.Code,
		Description:   c.Description,
		DiscountType:  c.DiscountType,
		DiscountValue: c.DiscountValue,
	}
}
