package apperror

import (
	"fmt"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "direct", err: NotFound("order not found"), want: KindNotFound},
		{name: "wrapped", err: fmt.Errorf("load order: %w", InvalidArgument("bad id")), want: KindInvalidArgument},
		{name: "go-faster wrapped", err: errors.Wrap(Conflict("dup"), "register"), want: KindConflict},
		{name: "plain error", err: errors.New("boom"), want: KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestIsMatchesByReason(t *testing.T) {
	sentinel := FailedPrecondition("coupon_exhausted", "coupon has been fully used")
	reworded := sentinel.WithMessage("coupon ran out")

	require.ErrorIs(t, reworded, sentinel)
	require.ErrorIs(t, fmt.Errorf("checkout: %w", reworded), sentinel)

	other := FailedPrecondition("coupon_expired", "coupon has expired")
	assert.NotErrorIs(t, reworded, other)

	// errors without a reason only match themselves
	a := NotFound("a")
	b := NotFound("b")
	assert.NotErrorIs(t, a, b)
	assert.ErrorIs(t, a, a)
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal("failed to save order", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to save order: connection reset", err.Error())

	wrapped := NotFound("missing").Wrap(cause)
	got, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, "missing", got.Message)
	assert.ErrorIs(t, wrapped, cause)
}

func TestIsKind(t *testing.T) {
	assert.True(t, IsKind(PermissionDenied("no"), KindPermissionDenied))
	assert.False(t, IsKind(nil, KindInternal))
	assert.False(t, IsKind(Unauthenticated("who"), KindNotFound))
}
