// internal/domain/coupon/service.go
package coupon

import (
	"context"
	"fmt"
	"time"

	"github.com/your-org/storefront-backend/internal/pkg/apperror"
)

// Repository is the coupon store
type Repository interface {
	// FindActiveByCode looks up an active coupon by its normalised code.
	FindActiveByCode(ctx context.Context, code string) (*Coupon, error)
}

// ValidateRequest represents a coupon check against a cart subtotal
type ValidateRequest struct {
	Code     string `json:"code"`
	Subtotal int64  `json:"subtotal" binding:"gte=0"`
}

// ValidateResponse represents a successful coupon check
type ValidateResponse struct {
	Valid    bool    `json:"valid"`
	Coupon   Summary `json:"coupon"`
	Discount int64   `json:"discount"`
}

// Service validates coupons. It never mutates them; usage is counted by checkout.
type Service struct {
	coupons Repository
	now     func() time.Time
}

// NewService creates a new coupon service. A nil clock uses time.Now.
func NewService(coupons Repository, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{coupons: coupons, now: now}
}

// Lookup normalises code and loads the active coupon it names
func (s *Service) Lookup(ctx context.Context, code string) (*Coupon, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, ErrCodeRequired
	}

	c, err := s.coupons.FindActiveByCode(ctx, code)
	if err != nil {
		if apperror.IsKind(err, apperror.KindNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find coupon: %w", err)
	}
	return c, nil
}

// Validate checks code against subtotal and returns the discount it would grant
func (s *Service) Validate(ctx context.Context, code string, subtotal int64) (*ValidateResponse, error) {
	c, err := s.Lookup(ctx, code)
	if err != nil {
		return nil, err
	}

	discount, err := Evaluate(c, subtotal, s.now())
	if err != nil {
		return nil, err
	}

	return &ValidateResponse{
		Valid:    true,
		Coupon:   c.Summarize(),
		Discount: discount,
	}, nil
}
