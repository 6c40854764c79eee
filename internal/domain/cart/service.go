// internal/domain/cart/service.go
package cart

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
)

var (
	ErrItemNotFound      = apperror.NotFound("cart item not found")
	ErrProductNotFound   = apperror.NotFound("product not found")
	ErrVariantNotFound   = apperror.NotFound("product variant not found")
	ErrInvalidQuantity   = apperror.InvalidArgument("quantity must be at least 1")
	ErrInsufficientStock = apperror.FailedPrecondition("insufficient_stock", "quantity exceeds available stock")
)

// Repository is the cart store
type Repository interface {
	// ListForUser returns the user's lines newest first with product, images and variant attached.
	ListForUser(ctx context.Context, userID uint) ([]CartItem, error)
	// FindForUser returns one of the user's lines with product and variant attached.
	FindForUser(ctx context.Context, userID, itemID uint) (*CartItem, error)
	// FindLine returns the line for a product and variant, or nil when the cart has none.
	FindLine(ctx context.Context, userID, productID uint, variantID *uint) (*CartItem, error)
	Create(ctx context.Context, item *CartItem) error
	UpdateQuantity(ctx context.Context, itemID uint, quantity int) error
	Delete(ctx context.Context, userID, itemID uint) error
	Clear(ctx context.Context, userID uint) error
}

// ProductFinder loads a product with its variants
type ProductFinder interface {
	FindByID(ctx context.Context, id uint) (*product.Product, error)
}

// Policy holds the flat-rate shipping rule
type Policy struct {
	FreeShippingThreshold int64
	FlatShippingFee       int64
}

// PolicyFromConfig reads the shipping rule from the store configuration
func PolicyFromConfig(cfg *config.Config) Policy {
	return Policy{
		FreeShippingThreshold: cfg.Store.FreeShippingThreshold,
		FlatShippingFee:       cfg.Store.FlatShippingFee,
	}
}

// Shipping is free from the threshold upwards and the flat fee below it
func (p Policy) Shipping(subtotal int64) int64 {
	if subtotal >= p.FreeShippingThreshold {
		return 0
	}
	return p.FlatShippingFee
}

// AddRequest represents add to cart request. Quantity defaults to 1.
type AddRequest struct {
	ProductID uint  `json:"product_id" binding:"required"`
	VariantID *uint `json:"variant_id"`
	// Quantity defaults to 1 when omitted.
	Quantity *int `json:"quantity"`
}

// UpdateRequest represents update cart item request
type UpdateRequest struct {
	Quantity int `json:"quantity"`
}

// Service handles cart business logic
type Service struct {
	items    Repository
	products ProductFinder
	policy   Policy
	log      logrus.FieldLogger
}

// NewService creates a new cart service
func NewService(items Repository, products ProductFinder, policy Policy, log logrus.FieldLogger) *Service {
	return &Service{
		items:    items,
		products: products,
		policy:   policy,
		log:      log,
	}
}

// Get returns the user's cart joined with live prices and stock
func (s *Service) Get(ctx context.Context, userID uint) (*View, error) {
	items, err := s.items.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}

	view := Aggregate(items, s.policy)
	return &view, nil
}

// Add puts quantity units of a product (or one of its variants) into the
// cart, merging with an existing line for the same combination.
func (s *Service) Add(ctx context.Context, userID uint, req *AddRequest) (*CartItem, error) {
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	p, err := s.products.FindByID(ctx, req.ProductID)
	if err != nil {
		if apperror.IsKind(err, apperror.KindNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if !p.IsActive {
		return nil, ErrProductNotFound
	}

	var variant *product.ProductVariant
	if req.VariantID != nil {
		variant = findVariant(p, *req.VariantID)
		if variant == nil || !variant.IsActive {
			return nil, ErrVariantNotFound
		}
	}
	stock := product.AuthoritativeStock(p, variant)

	existing, err := s.items.FindLine(ctx, userID, p.ID, req.VariantID)
	if err != nil {
		return nil, fmt.Errorf("failed to check cart: %w", err)
	}

	if existing != nil {
		newQuantity := existing.Quantity + quantity
		if newQuantity > stock {
			return nil, insufficientStock(stock)
		}
		if err := s.items.UpdateQuantity(ctx, existing.ID, newQuantity); err != nil {
			return nil, fmt.Errorf("failed to update cart item: %w", err)
		}
		existing.Quantity = newQuantity
		return existing, nil
	}

	if quantity > stock {
		return nil, insufficientStock(stock)
	}

	item := &CartItem{
		UserID:    userID,
		ProductID: p.ID,
		VariantID: req.VariantID,
		Quantity:  quantity,
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"user_id":    userID,
		"product_id": p.ID,
		"quantity":   quantity,
	}).Debug("cart item added")

	return item, nil
}

// Update sets the quantity of one of the user's lines
func (s *Service) Update(ctx context.Context, userID, itemID uint, req *UpdateRequest) (*CartItem, error) {
	if req.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	item, err := s.items.FindForUser(ctx, userID, itemID)
	if err != nil {
		if apperror.IsKind(err, apperror.KindNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to load cart item: %w", err)
	}

	if stock := item.AvailableStock(); req.Quantity > stock {
		return nil, insufficientStock(stock)
	}

	if err := s.items.UpdateQuantity(ctx, item.ID, req.Quantity); err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}

	item.Quantity = req.Quantity
	return item, nil
}

// Remove deletes one of the user's lines. Removing a missing line is not an error.
func (s *Service) Remove(ctx context.Context, userID, itemID uint) error {
	if err := s.items.Delete(ctx, userID, itemID); err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	return nil
}

// Clear empties the user's cart
func (s *Service) Clear(ctx context.Context, userID uint) error {
	if err := s.items.Clear(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// Aggregate joins lines with their live price and stock and totals them
func Aggregate(items []CartItem, policy Policy) View {
	view := View{Items: make([]ItemView, 0, len(items))}

	for i := range items {
		item := &items[i]
		unitPrice := item.UnitPrice()
		lineTotal := unitPrice * int64(item.Quantity)

		line := ItemView{
			ID:             item.ID,
			ProductID:      item.ProductID,
			VariantID:      item.VariantID,
			Quantity:       item.Quantity,
			UnitPrice:      unitPrice,
			AvailableStock: item.AvailableStock(),
			ItemTotal:      lineTotal,
			CreatedAt:      item.CreatedAt,
		}
		if item.Variant != nil {
			name := item.Variant.Name
			line.VariantName = &name
		}
		if p := item.Product; p != nil {
			line.Product = ProductSummary{
				ID:           p.ID,
				Name:         p.Name,
				Slug:         p.Slug,
				Price:        p.Price,
				ComparePrice: p.ComparePrice,
				IsActive:     p.IsActive,
				ImageURL:     p.PrimaryImageURL(),
			}
		}

		view.Items = append(view.Items, line)
		view.Summary.Subtotal += lineTotal
		view.Summary.ItemCount += item.Quantity
	}

	view.Summary.Shipping = policy.Shipping(view.Summary.Subtotal)
	view.Summary.Total = view.Summary.Subtotal + view.Summary.Shipping

	return view
}

func findVariant(p *product.Product, id uint) *product.ProductVariant {
	for i := range p.Variants {
		if p.Variants[i].ID == id {
			return &p.Variants[i]
		}
	}
	return nil
}

func insufficientStock(available int) error {
	return ErrInsufficientStock.WithMessage(fmt.Sprintf("quantity exceeds available stock (%d left)", available))
}
