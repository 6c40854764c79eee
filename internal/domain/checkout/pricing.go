// internal/domain/checkout/pricing.go
package checkout

import (
	"github.com/shopspring/decimal"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/pkg/money"
)

// Policy holds the shipping rule and the tax rate applied at checkout
type Policy struct {
	Shipping cart.Policy
	TaxRate  decimal.Decimal
}

// PolicyFromConfig reads the pricing policy from the store configuration
func PolicyFromConfig(cfg *config.Config) Policy {
	return Policy{
		Shipping: cart.PolicyFromConfig(cfg),
		TaxRate:  cfg.Store.TaxRate,
	}
}

// Pricing is the price breakdown of an order
type Pricing struct {
	Subtotal     int64 `json:"subtotal"`
	Discount     int64 `json:"discount"`
	ShippingCost int64 `json:"shipping_cost"`
	Tax          int64 `json:"tax"`
	Total        int64 `json:"total"`
}

// Price computes shipping from the subtotal and tax from the discounted
// subtotal rounded half-up, so that Total = Subtotal - Discount + ShippingCost + Tax.
func Price(subtotal, discount int64, policy Policy) Pricing {
	shipping := policy.Shipping.Shipping(subtotal)
	tax := money.ApplyRate(subtotal-discount, policy.TaxRate)

	return Pricing{
		Subtotal:     subtotal,
		Discount:     discount,
		ShippingCost: shipping,
		Tax:          tax,
		Total:        subtotal - discount + shipping + tax,
	}
}
