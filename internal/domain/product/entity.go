// internal/domain/product/entity.go
package product

import (
	"time"

	"github.com/lib/pq"
)

// Product represents the product entity. Products are never hard-deleted;
// removing one from the storefront flips IsActive.
type Product struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	CategoryID        *uint          `gorm:"index" json:"category_id"`
	SKU               string         `gorm:"size:100;index" json:"sku"`
	Name              string         `gorm:"not null;size:255" json:"name"`
	Slug              string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description       string         `gorm:"type:text" json:"description"`
	ShortDescription  string         `gorm:"size:500" json:"short_description"`
	Price             int64          `gorm:"not null" json:"price"`
	ComparePrice      *int64         `json:"compare_price"`
	CostPrice         int64          `gorm:"not null;default:0" json:"cost_price"`
	Stock             int            `gorm:"not null;default:0;check:chk_products_stock,stock >= 0" json:"stock"`
	LowStockThreshold int            `gorm:"not null;default:5" json:"low_stock_threshold"`
	Weight            float64        `json:"weight"`
	Brand             string         `gorm:"size:100;index" json:"brand"`
	Tags              pq.StringArray `gorm:"type:text[]" json:"tags"`
	IsActive          bool           `gorm:"not null;index" json:"is_active"`
	IsFeatured        bool           `gorm:"not null" json:"is_featured"`
	SoldCount         int            `gorm:"not null;default:0" json:"sold_count"`
	RatingAvg         float64        `gorm:"type:numeric(3,2);not null;default:0" json:"rating_avg"`
	RatingCount       int            `gorm:"not null;default:0" json:"rating_count"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`

	// Relationships
	Category *Category        `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"category,omitempty"`
	Images   []ProductImage   `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"images,omitempty"`
	Variants []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"variants,omitempty"`
}

// Category represents product categories
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null;size:255" json:"name"`
	Slug        string    `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description string    `gorm:"size:500" json:"description"`
	ImageURL    string    `gorm:"size:500" json:"image_url"`
	ParentID    *uint     `gorm:"index" json:"parent_id"`
	SortOrder   int       `gorm:"not null;default:0" json:"sort_order"`
	IsActive    bool      `gorm:"not null" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductImage represents product images. Exactly one image per product is primary.
type ProductImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	URL       string    `gorm:"not null;size:500" json:"url"`
	AltText   string    `gorm:"size:255" json:"alt_text"`
	SortOrder int       `gorm:"not null;default:0" json:"sort_order"`
	IsPrimary bool      `gorm:"not null" json:"is_primary"`
	CreatedAt time.Time `json:"created_at"`
}

// ProductVariant overrides the product's price, stock and display name when
// selected on a cart line. A nil Price falls back to the product price.
type ProductVariant struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	SKU       string    `gorm:"size:100" json:"sku"`
	Name      string    `gorm:"not null;size:255" json:"name"`
	Price     *int64    `json:"price"`
	Stock     int       `gorm:"not null;default:0;check:chk_product_variants_stock,stock >= 0" json:"stock"`
	IsActive  bool      `gorm:"not null" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides
func (Product) TableName() string        { return "products" }
func (Category) TableName() string       { return "categories" }
func (ProductImage) TableName() string   { return "product_images" }
func (ProductVariant) TableName() string { return "product_variants" }

// PrimaryImage returns the image flagged primary, or nil
func (p *Product) PrimaryImage() *ProductImage {
	for i := range p.Images {
		if p.Images[i].IsPrimary {
			return &p.Images[i]
		}
	}
	return nil
}

// PrimaryImageURL returns the primary image url, or nil when the product has none
func (p *Product) PrimaryImageURL() *string {
	if img := p.PrimaryImage(); img != nil {
		url := img.URL
		return &url
	}
	return nil
}

// IsLowStock reports whether the product has dropped to its restock threshold
func (p *Product) IsLowStock() bool {
	return p.Stock <= p.LowStockThreshold
}

// DiscountPercentage is the saving against the compare price, truncated
func (p *Product) DiscountPercentage() int {
	if p.ComparePrice != nil && *p.ComparePrice > 0 && p.Price < *p.ComparePrice {
		return int(((*p.ComparePrice - p.Price) * 100) / *p.ComparePrice)
	}
	return 0
}

// UnitPrice is the authoritative price of a line: the variant price when a
// variant with its own price is selected, else the product price.
func UnitPrice(p *Product, v *ProductVariant) int64 {
	if v != nil && v.Price != nil {
		return *v.Price
	}
	return p.Price
}

// AuthoritativeStock is the variant stock when a variant is selected, else the product stock.
func AuthoritativeStock(p *Product, v *ProductVariant) int {
	if v != nil {
		return v.Stock
	}
	return p.Stock
}
