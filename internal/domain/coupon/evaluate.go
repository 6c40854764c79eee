// internal/domain/coupon/evaluate.go
package coupon

import (
	"strings"
	"time"

	"github.com/your-org/storefront-backend/internal/pkg/apperror"
	"github.com/your-org/storefront-backend/internal/pkg/money"
)

const reasonBelowMinimum = "coupon_below_minimum"

var (
	ErrCodeRequired = apperror.InvalidArgument("coupon code is required")
	ErrNotFound     = apperror.New(apperror.KindNotFound, "coupon_not_found", "invalid coupon")
	ErrExpired      = apperror.FailedPrecondition("coupon_expired", "coupon has expired")
	ErrExhausted    = apperror.FailedPrecondition("coupon_exhausted", "coupon usage limit has been reached")
	// ErrBelowMinimum matches every *BelowMinimumError under errors.Is
	ErrBelowMinimum = apperror.FailedPrecondition(reasonBelowMinimum, "minimum purchase not reached")
)

// BelowMinimumError is returned when the subtotal is under the coupon's minimum purchase
type BelowMinimumError struct {
	Minimum int64
}

func (e *BelowMinimumError) Error() string {
	return "minimum purchase of " + money.FormatRupiah(e.Minimum) + " required"
}

// Unwrap exposes the error as a failed precondition carrying the formatted minimum
func (e *BelowMinimumError) Unwrap() error {
	return apperror.FailedPrecondition(reasonBelowMinimum, e.Error())
}

// NormalizeCode upper-cases and trims a coupon code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Evaluate checks expiry, usage limit and minimum purchase in that order and
// returns the discount the coupon grants on subtotal. The discount never
// exceeds subtotal.
func Evaluate(c *Coupon, subtotal int64, now time.Time) (int64, error) {
	if c.IsExpired(now) {
		return 0, ErrExpired
	}
	if c.IsExhausted() {
		return 0, ErrExhausted
	}
	if c.MinPurchase != nil && subtotal < *c.MinPurchase {
		return 0, &BelowMinimumError{Minimum: *c.MinPurchase}
	}

	var discount int64
	switch c.DiscountType {
	case DiscountPercentage:
		discount = money.Percent(subtotal, c.DiscountValue)
		if c.MaxDiscount != nil && discount > *c.MaxDiscount {
			discount = *c.MaxDiscount
		}
	case DiscountFlat:
		discount = c.DiscountValue.Round(0).IntPart()
	default:
		return 0, apperror.Internal("unknown coupon discount type", nil)
	}

	if discount > subtotal {
		discount = subtotal
	}
	if discount < 0 {
		discount = 0
	}
	return discount, nil
}
