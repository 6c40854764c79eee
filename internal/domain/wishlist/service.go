// internal/domain/wishlist/service.go
package wishlist

import (
	"context"
	"fmt"

	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
)

var ErrProductNotFound = apperror.NotFound("product not found")

// ProductFinder loads a product by id
type ProductFinder interface {
	FindByID(ctx context.Context, id uint) (*product.Product, error)
}

// ToggleRequest represents a wishlist toggle
type ToggleRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
}

// ToggleResponse reports whether the product is wishlisted after the toggle
type ToggleResponse struct {
	Wishlisted bool          `json:"wishlisted"`
	Item       *WishlistItem `json:"item,omitempty"`
}

// Service handles wishlist business logic
type Service struct {
	items    Repository
	products ProductFinder
}

// NewService creates a new wishlist service
func NewService(items Repository, products ProductFinder) *Service {
	return &Service{items: items, products: products}
}

// List returns the user's wishlist newest first
func (s *Service) List(ctx context.Context, userID uint) ([]WishlistItem, error) {
	items, err := s.items.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve wishlist: %w", err)
	}
	if items == nil {
		items = []WishlistItem{}
	}
	return items, nil
}

// Toggle removes the product from the wishlist when present and adds it otherwise
func (s *Service) Toggle(ctx context.Context, userID, productID uint) (*ToggleResponse, error) {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		if apperror.IsKind(err, apperror.KindNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	existing, err := s.items.Find(ctx, userID, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to check wishlist: %w", err)
	}

	if existing != nil {
		if err := s.items.Delete(ctx, userID, existing.ID); err != nil {
			return nil, fmt.Errorf("failed to remove from wishlist: %w", err)
		}
		return &ToggleResponse{Wishlisted: false}, nil
	}

	item := &WishlistItem{UserID: userID, ProductID: productID}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to add to wishlist: %w", err)
	}
	return &ToggleResponse{Wishlisted: true, Item: item}, nil
}

// Remove deletes one of the user's items. Removing a missing item is not an error.
func (s *Service) Remove(ctx context.Context, userID, itemID uint) error {
	if err := s.items.Delete(ctx, userID, itemID); err != nil {
		return fmt.Errorf("failed to remove from wishlist: %w", err)
	}
	return nil
}

// IsWishlisted reports whether the user has wishlisted the product
func (s *Service) IsWishlisted(ctx context.Context, userID, productID uint) (bool, error) {
	item, err := s.items.Find(ctx, userID, productID)
	if err != nil {
		return false, err
	}
	return item != nil, nil
}
