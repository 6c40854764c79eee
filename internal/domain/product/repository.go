// internal/domain/product/repository.go
package product

import (
	"context"
	"time"
)

// Repository is the product store used by the catalogue service
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Product, int64, error)
	Featured(ctx context.Context, limit int) ([]Product, error)
	Bestsellers(ctx context.Context, limit int) ([]Product, error)
	// FindBySlug returns an active product with images, active variants and category.
	FindBySlug(ctx context.Context, slug string) (*Product, error)
	// FindByID returns a product regardless of status.
	FindByID(ctx context.Context, id uint) (*Product, error)
	Related(ctx context.Context, p *Product, limit int) ([]Product, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	ReplaceImages(ctx context.Context, productID uint, images []ProductImage) error
	SetActive(ctx context.Context, id uint, active bool) error
}

// CategoryRepository is the category store
type CategoryRepository interface {
	ListActive(ctx context.Context) ([]Category, error)
	FindBySlug(ctx context.Context, slug string) (*Category, error)
	FindByID(ctx context.Context, id uint) (*Category, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, c *Category) error
	Update(ctx context.Context, c *Category) error
}

// ReviewRepository is the review store. Create and Delete recompute the
// product's rating aggregate in the same transaction as the write.
type ReviewRepository interface {
	Create(ctx context.Context, r *Review) error
	FindByID(ctx context.Context, id uint) (*Review, error)
	Exists(ctx context.Context, userID, productID uint) (bool, error)
	ListForProduct(ctx context.Context, productID uint, offset, limit int) ([]Review, int64, error)
	RatingBreakdown(ctx context.Context, productID uint) (map[int]int64, error)
	Delete(ctx context.Context, r *Review) error
}

// OrderStatusReader resolves the status of an order owned by a user. found is
// false when the order does not exist or belongs to someone else.
type OrderStatusReader interface {
	OwnedOrderStatus(ctx context.Context, orderID, userID uint) (status string, found bool, err error)
}

// WishlistChecker reports whether a user has wishlisted a product
type WishlistChecker interface {
	IsWishlisted(ctx context.Context, userID, productID uint) (bool, error)
}

// Cache stores catalogue reads. Implementations serialise values as JSON.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// NopCache never stores anything
type NopCache struct{}

func (NopCache) Get(context.Context, string, interface{}) (bool, error)        { return false, nil }
func (NopCache) Set(context.Context, string, interface{}, time.Duration) error { return nil }
func (NopCache) Delete(context.Context, ...string) error                       { return nil }
