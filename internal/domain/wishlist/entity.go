// internal/domain/wishlist/entity.go
package wishlist

import (
	"context"
	"time"

	"github.com/your-org/storefront-backend/internal/domain/product"
)

// WishlistItem represents a wishlist item. A user wishlists a product at most once.
type WishlistItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_wishlist_user_product,priority:1" json:"user_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_wishlist_user_product,priority:2;index" json:"product_id"`
	CreatedAt time.Time `json:"created_at"`

	Product *product.Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE;" json:"product,omitempty"`
}

// TableName overrides the table name
func (WishlistItem) TableName() string {
	return "wishlist_items"
}

// Repository is the wishlist store
type Repository interface {
	// ListForUser returns the user's items newest first with product and images attached.
	ListForUser(ctx context.Context, userID uint) ([]WishlistItem, error)
	// Find returns the user's item for productID, or nil when there is none.
	Find(ctx context.Context, userID, productID uint) (*WishlistItem, error)
	Create(ctx context.Context, item *WishlistItem) error
	Delete(ctx context.Context, userID, itemID uint) error
}
