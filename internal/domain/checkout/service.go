// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/coupon"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
)

var (
	ErrCartEmpty          = apperror.InvalidArgument("cart is empty")
	ErrInvalidCoupon      = apperror.InvalidArgument("invalid coupon")
	ErrCouponRanOut       = coupon.ErrExhausted.WithMessage("coupon has run out since it was validated")
	ErrProductUnavailable = apperror.FailedPrecondition("product_unavailable", "product is no longer available")
	ErrInsufficientStock  = apperror.FailedPrecondition("insufficient_stock", "insufficient stock")
	ErrCartChanged        = apperror.New(apperror.KindConflict, "cart_changed", "cart changed during checkout, please review it and try again")
)

// Store is the data access used by checkout
type Store interface {
	// CartLines returns the user's cart with product, images and variant attached.
	CartLines(ctx context.Context, userID uint) ([]cart.CartItem, error)
	// InTx runs fn in a transaction that commits when fn returns nil.
	InTx(ctx context.Context, fn func(tx TxStore) error) error
}

// TxStore holds the writes made by one checkout
type TxStore interface {
	// CreateOrder inserts the order header and its items.
	CreateOrder(ctx context.Context, o *order.Order) error
	// IncrementCouponUsage adds one use unless the usage limit is already
	// reached, in which case it reports false.
	IncrementCouponUsage(ctx context.Context, couponID uint) (bool, error)
	// DecrementStock takes quantity from the variant (or the product when
	// variantID is nil) and adds it to the product's sold count. It reports
	// false without writing when the stock is short.
	DecrementStock(ctx context.Context, productID uint, variantID *uint, quantity int) (bool, error)
	// RemoveCartLines deletes the ordered lines of the user's cart, matching
	// each on id and quantity. It reports false when any line was removed or
	// changed since it was read; lines added meanwhile are left alone.
	RemoveCartLines(ctx context.Context, userID uint, lines []cart.CartItem) (bool, error)
}

// CatalogCache is told when an order took stock and added sales
type CatalogCache interface {
	InvalidateHighlights(ctx context.Context)
}

// CouponLookup loads an active coupon by code
type CouponLookup interface {
	Lookup(ctx context.Context, code string) (*coupon.Coupon, error)
}

// PlaceOrderRequest represents the checkout payload
type PlaceOrderRequest struct {
	ShippingAddress order.Address `json:"shipping_address"`
	PaymentMethod   string        `json:"payment_method" binding:"max=50"`
	Notes           string        `json:"notes" binding:"max=1000"`
	CouponCode      string        `json:"coupon_code" binding:"max=50"`
}

// SummaryResponse is the read-only checkout preview
type SummaryResponse struct {
	Items       []cart.ItemView `json:"items"`
	ItemCount   int             `json:"item_count"`
	Pricing     Pricing         `json:"pricing"`
	Coupon      *coupon.Summary `json:"coupon,omitempty"`
	CouponError string          `json:"coupon_error,omitempty"`
	Issues      []string        `json:"issues,omitempty"`
	CanCheckout bool            `json:"can_checkout"`
}

// Service turns a cart into an order
type Service struct {
	store         Store
	coupons       CouponLookup
	catalog       CatalogCache
	policy        Policy
	paymentMethod string
	log           logrus.FieldLogger
	now           func() time.Time
	newID         func() uuid.UUID
}

// NewService creates a new checkout service
func NewService(store Store, coupons CouponLookup, policy Policy, defaultPaymentMethod string, log logrus.FieldLogger) *Service {
	return &Service{
		store:         store,
		coupons:       coupons,
		policy:        policy,
		paymentMethod: defaultPaymentMethod,
		log:           log,
		now:           func() time.Time { return time.Now().UTC() },
		newID:         uuid.New,
	}
}

// WithCatalog makes placed orders invalidate the cached product lists
func (s *Service) WithCatalog(catalog CatalogCache) *Service {
	s.catalog = catalog
	return s
}

// PlaceOrder validates the cart, prices it, and in one transaction writes the
// order, counts the coupon use, takes the stock and removes the ordered lines
// from the cart.
func (s *Service) PlaceOrder(ctx context.Context, userID uint, req *PlaceOrderRequest) (*order.Order, error) {
	address := req.ShippingAddress.Normalize()
	if missing := address.MissingFields(); len(missing) > 0 {
		return nil, apperror.InvalidArgument("shipping address is incomplete: missing " + strings.Join(missing, ", "))
	}

	lines, err := s.store.CartLines(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if len(lines) == 0 {
		return nil, ErrCartEmpty
	}

	items, subtotal, err := snapshot(lines)
	if err != nil {
		return nil, err
	}

	var applied *coupon.Coupon
	var discount int64
	if code := coupon.NormalizeCode(req.CouponCode); code != "" {
		applied, discount, err = s.applyCoupon(ctx, code, subtotal)
		if err != nil {
			return nil, err
		}
	}

	pricing := Price(subtotal, discount, s.policy)

	paymentMethod := strings.TrimSpace(req.PaymentMethod)
	if paymentMethod == "" {
		paymentMethod = s.paymentMethod
	}

	now := s.now()
	o := &order.Order{
		OrderNumber:     order.NewOrderNumber(now, s.newID()),
		UserID:          userID,
		Status:          order.OrderStatusPending,
		PaymentStatus:   order.PaymentStatusUnpaid,
		PaymentMethod:   paymentMethod,
		Subtotal:        pricing.Subtotal,
		ShippingCost:    pricing.ShippingCost,
		Discount:        pricing.Discount,
		Tax:             pricing.Tax,
		Total:           pricing.Total,
		ShippingAddress: address,
		Notes:           strings.TrimSpace(req.Notes),
		Items:           items,
		CreatedAt:       now,
		UpdatedAt:       now,
		StatusHistory: []order.StatusHistory{{
			Status:    order.OrderStatusPending,
			Note:      "order placed",
			ChangedBy: &userID,
			CreatedAt: now,
		}},
	}
	if applied != nil {
		o.CouponID = &applied.ID
		o.CouponCode = applied.Code
	}

	err = s.store.InTx(ctx, func(tx TxStore) error {
		if err := tx.CreateOrder(ctx, o); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		if applied != nil {
			ok, err := tx.IncrementCouponUsage(ctx, applied.ID)
			if err != nil {
				return fmt.Errorf("failed to record coupon usage: %w", err)
			}
			if !ok {
				return ErrCouponRanOut
			}
		}

		for _, line := range lines {
			ok, err := tx.DecrementStock(ctx, line.ProductID, line.VariantID, line.Quantity)
			if err != nil {
				return fmt.Errorf("failed to update stock: %w", err)
			}
			if !ok {
				return ErrInsufficientStock.WithMessage(
					fmt.Sprintf("insufficient stock for %s", lineName(&line)),
				)
			}
		}

		ok, err := tx.RemoveCartLines(ctx, userID, lines)
		if err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}
		if !ok {
			return ErrCartChanged
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.catalog != nil {
		s.catalog.InvalidateHighlights(ctx)
	}

	s.log.WithFields(logrus.Fields{
		"order_id":     o.ID,
		"order_number": o.OrderNumber,
		"user_id":      userID,
		"total":        o.Total,
		"coupon":       o.CouponCode,
	}).Info("order placed")

	return o, nil
}

// Summary previews the price of the user's cart with an optional coupon. It
// never writes; coupon problems are reported in CouponError instead of failing.
func (s *Service) Summary(ctx context.Context, userID uint, couponCode string) (*SummaryResponse, error) {
	lines, err := s.store.CartLines(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	view := cart.Aggregate(lines, s.policy.Shipping)
	resp := &SummaryResponse{
		Items:     view.Items,
		ItemCount: view.Summary.ItemCount,
	}

	for i := range lines {
		if issue := lineIssue(&lines[i]); issue != nil {
			resp.Issues = append(resp.Issues, issue.Message)
		}
	}

	var discount int64
	if code := coupon.NormalizeCode(couponCode); code != "" {
		c, d, err := s.applyCoupon(ctx, code, view.Summary.Subtotal)
		switch {
		case err == nil:
			summary := c.Summarize()
			resp.Coupon = &summary
			discount = d
		case apperror.KindOf(err) == apperror.KindInternal:
			return nil, err
		default:
			appErr, _ := apperror.As(err)
			resp.CouponError = appErr.Message
		}
	}

	resp.Pricing = Price(view.Summary.Subtotal, discount, s.policy)
	resp.CanCheckout = len(lines) > 0 && len(resp.Issues) == 0
	return resp, nil
}

func (s *Service) applyCoupon(ctx context.Context, code string, subtotal int64) (*coupon.Coupon, int64, error) {
	c, err := s.coupons.Lookup(ctx, code)
	if err != nil {
		if errors.Is(err, coupon.ErrNotFound) {
			return nil, 0, ErrInvalidCoupon
		}
		return nil, 0, err
	}

	discount, err := coupon.Evaluate(c, subtotal, s.now())
	if err != nil {
		return nil, 0, err
	}
	return c, discount, nil
}

// snapshot checks every line against live data and copies it into an order item
func snapshot(lines []cart.CartItem) ([]order.OrderItem, int64, error) {
	items := make([]order.OrderItem, 0, len(lines))
	var subtotal int64

	for i := range lines {
		line := &lines[i]
		if issue := lineIssue(line); issue != nil {
			return nil, 0, issue
		}

		unitPrice := line.UnitPrice()
		lineTotal := unitPrice * int64(line.Quantity)
		subtotal += lineTotal

		item := order.OrderItem{
			ProductID:    line.ProductID,
			VariantID:    line.VariantID,
			ProductName:  line.Product.Name,
			ProductImage: line.Product.PrimaryImageURL(),
			Price:        unitPrice,
			Quantity:     line.Quantity,
			Subtotal:     lineTotal,
		}
		if line.Variant != nil {
			name := line.Variant.Name
			item.VariantName = &name
		}
		items = append(items, item)
	}

	return items, subtotal, nil
}

// lineIssue reports why a line cannot be bought, or nil when it can
func lineIssue(line *cart.CartItem) *apperror.Error {
	if line.Product == nil || !line.Product.IsActive {
		return ErrProductUnavailable.WithMessage(fmt.Sprintf("%s is no longer available", lineName(line)))
	}
	if line.VariantID != nil && (line.Variant == nil || !line.Variant.IsActive) {
		return ErrProductUnavailable.WithMessage(fmt.Sprintf("%s is no longer available", lineName(line)))
	}
	if stock := line.AvailableStock(); line.Quantity > stock {
		return ErrInsufficientStock.WithMessage(
			fmt.Sprintf("insufficient stock for %s: %d available", lineName(line), stock),
		)
	}
	return nil
}

func lineName(line *cart.CartItem) string {
	if line.Product == nil {
		return fmt.Sprintf("product #%d", line.ProductID)
	}
	if line.Variant != nil {
		return fmt.Sprintf("%q (%s)", line.Product.Name, line.Variant.Name)
	}
	return fmt.Sprintf("%q", line.Product.Name)
}
