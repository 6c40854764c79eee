// internal/domain/cart/entity.go
package cart

import (
	"time"

	"github.com/your-org/storefront-backend/internal/domain/product"
)

// CartItem is one (product, variant) line in a user's cart. A user holds at
// most one line per product and variant combination.
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	VariantID *uint     `gorm:"index" json:"variant_id"`
	Quantity  int       `gorm:"not null;default:1;check:chk_cart_items_quantity,quantity >= 1" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Product *product.Product        `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE;" json:"-"`
	Variant *product.ProductVariant `gorm:"foreignKey:VariantID;constraint:OnDelete:CASCADE;" json:"-"`
}

// TableName overrides the table name
func (CartItem) TableName() string {
	return "cart_items"
}

// UnitPrice is the live price of the line
func (i *CartItem) UnitPrice() int64 {
	if i.Product == nil {
		return 0
	}
	return product.UnitPrice(i.Product, i.Variant)
}

// AvailableStock is the live authoritative stock of the line
func (i *CartItem) AvailableStock() int {
	if i.Product == nil {
		return 0
	}
	return product.AuthoritativeStock(i.Product, i.Variant)
}

// ProductSummary is the product block shown on a cart line
type ProductSummary struct {
	ID           uint    `json:"id"`
	Name         string  `json:"name"`
	Slug         string  `json:"slug"`
	Price        int64   `json:"price"`
	ComparePrice *int64  `json:"compare_price"`
	IsActive     bool    `json:"is_active"`
	ImageURL     *string `json:"image_url"`
}

// ItemView is a cart line joined with live product data
type ItemView struct {
	ID             uint           `json:"id"`
	ProductID      uint           `json:"product_id"`
	VariantID      *uint          `json:"variant_id"`
	VariantName    *string        `json:"variant_name"`
	Quantity       int            `json:"quantity"`
	UnitPrice      int64          `json:"unit_price"`
	AvailableStock int            `json:"available_stock"`
	ItemTotal      int64          `json:"item_total"`
	Product        ProductSummary `json:"product"`
	CreatedAt      time.Time      `json:"created_at"`
}

// Summary represents calculated cart totals
type Summary struct {
	Subtotal  int64 `json:"subtotal"`
	Shipping  int64 `json:"shipping"`
	Total     int64 `json:"total"`
	ItemCount int   `json:"item_count"`
}

// View is the cart as returned to its owner
type View struct {
	Items   []ItemView `json:"items"`
	Summary Summary    `json:"summary"`
}
