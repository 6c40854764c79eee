package coupon

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func int64p(v int64) *int64 { return &v }
func intp(v int) *int       { return &v }

func percentage(value int64) *Coupon {
	return &Coupon{Code: "PCT", DiscountType: DiscountPercentage, DiscountValue: decimal.NewFromInt(value), IsActive: true}
}

func flat(value int64) *Coupon {
	return &Coupon{Code: "FLAT", DiscountType: DiscountFlat, DiscountValue: decimal.NewFromInt(value), IsActive: true}
}

func TestEvaluate(t *testing.T) {
	capped := percentage(10)
	capped.MaxDiscount = int64p(10000)

	fractional := percentage(0)
	fractional.DiscountValue = decimal.RequireFromString("12.5")

	tests := []struct {
		name     string
		coupon   *Coupon
		subtotal int64
		want     int64
	}{
		{"percentage capped", capped, 120000, 10000},
		{"percentage under cap", capped, 50000, 5000},
		{"percentage uncapped", percentage(10), 120000, 12000},
		{"percentage rounds half up", fractional, 1004, 126},
		{"flat", flat(25000), 100000, 25000},
		{"flat clamped to subtotal", flat(25000), 20000, 20000},
		{"zero subtotal", percentage(10), 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.coupon, tt.subtotal, now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateRejections(t *testing.T) {
	expired := percentage(10)
	expired.ExpiresAt = ptrTime(now.Add(-time.Minute))
	expired.UsageLimit = intp(1)
	expired.UsedCount = 1

	exhausted := flat(1000)
	exhausted.UsageLimit = intp(5)
	exhausted.UsedCount = 5
	exhausted.MinPurchase = int64p(1_000_000)

	minimum := flat(1000)
	minimum.MinPurchase = int64p(100000)

	t.Run("expired wins over exhausted", func(t *testing.T) {
		_, err := Evaluate(expired, 50000, now)
		assert.ErrorIs(t, err, ErrExpired)
	})

	t.Run("exhausted wins over minimum", func(t *testing.T) {
		_, err := Evaluate(exhausted, 50000, now)
		assert.ErrorIs(t, err, ErrExhausted)
	})

	t.Run("below minimum", func(t *testing.T) {
		_, err := Evaluate(minimum, 99999, now)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrBelowMinimum)
		assert.Equal(t, "minimum purchase of Rp 100.000 required", err.Error())
		assert.Equal(t, apperror.KindFailedPrecondition, apperror.KindOf(err))
	})

	t.Run("minimum reached exactly", func(t *testing.T) {
		got, err := Evaluate(minimum, 100000, now)
		require.NoError(t, err)
		assert.Equal(t, int64(1000), got)
	})

	t.Run("expiry instant is still valid", func(t *testing.T) {
		c := flat(1000)
		c.ExpiresAt = ptrTime(now)
		_, err := Evaluate(c, 5000, now)
		assert.NoError(t, err)
	})
}

func ptrTime(t time.Time) *time.Time { return &t }

type fakeRepo struct {
	coupons map[string]*Coupon
	err     error
}

func (r *fakeRepo) FindActiveByCode(_ context.Context, code string) (*Coupon, error) {
	if r.err != nil {
		return nil, r.err
	}
	c, ok := r.coupons[code]
	if !ok || !c.IsActive {
		return nil, apperror.NotFound("coupon not found")
	}
	return c, nil
}

func TestServiceValidate(t *testing.T) {
	capped := percentage(10)
	capped.Code = "WELCOME10"
	capped.Description = "welcome"
	capped.MaxDiscount = int64p(10000)

	inactive := flat(5000)
	inactive.Code = "OLD"
	inactive.IsActive = false

	svc := NewService(&fakeRepo{coupons: map[string]*Coupon{
		"WELCOME10": capped,
		"OLD":       inactive,
	}}, func() time.Time { return now })

	ctx := context.Background()

	resp, err := svc.Validate(ctx, "  welcome10 ", 120000)
	require.NoError(t, err)
	assert.True(t, resp.Valid)
	assert.Equal(t, int64(10000), resp.Discount)
	assert.Equal(t, "WELCOME10", resp.Coupon.Code)
	assert.Equal(t, DiscountPercentage, resp.Coupon.DiscountType)

	_, err = svc.Validate(ctx, "old", 120000)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Validate(ctx, "missing", 120000)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "invalid coupon", err.Error())

	_, err = svc.Validate(ctx, "   ", 120000)
	assert.ErrorIs(t, err, ErrCodeRequired)
}

func TestServiceLookupPassesThroughStoreFailures(t *testing.T) {
	svc := NewService(&fakeRepo{err: assert.AnError}, nil)

	_, err := svc.Lookup(context.Background(), "ANY")
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.NotErrorIs(t, err, ErrNotFound)
}
