package order

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
	"github.com/your-org/storefront-backend/internal/pkg/pagination"
)

type stockKey struct {
	product uint
	variant uint
}

type fakeRepo struct {
	orders   map[uint]Order
	restored map[stockKey]int
	history  []StatusHistory
	lastList AdminListFilter
	userList UserListFilter
}

func newFakeRepo(orders ...Order) *fakeRepo {
	r := &fakeRepo{orders: map[uint]Order{}, restored: map[stockKey]int{}}
	for _, o := range orders {
		r.orders[o.ID] = o
	}
	return r
}

func (r *fakeRepo) ListForUser(_ context.Context, userID uint, f UserListFilter) ([]Order, int64, error) {
	r.userList = f
	var out []Order
	for _, o := range r.orders {
		if o.UserID == userID && (f.Status == "" || o.Status == f.Status) {
			out = append(out, o)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeRepo) FindForUser(_ context.Context, userID, orderID uint) (*Order, error) {
	o, ok := r.orders[orderID]
	if !ok || o.UserID != userID {
		return nil, apperror.NotFound("order not found")
	}
	return &o, nil
}

func (r *fakeRepo) List(_ context.Context, f AdminListFilter) ([]Order, int64, error) {
	r.lastList = f
	return nil, 0, nil
}

func (r *fakeRepo) FindByID(_ context.Context, orderID uint) (*Order, error) {
	o, ok := r.orders[orderID]
	if !ok {
		return nil, apperror.NotFound("order not found")
	}
	return &o, nil
}

// InTx applies writes only when fn succeeds
func (r *fakeRepo) InTx(_ context.Context, fn func(tx TxRepository) error) error {
	tx := &fakeTx{repo: r, orders: map[uint]Order{}, restored: map[stockKey]int{}}
	if err := fn(tx); err != nil {
		return err
	}
	for id, o := range tx.orders {
		r.orders[id] = o
	}
	for k, v := range tx.restored {
		r.restored[k] += v
	}
	r.history = append(r.history, tx.history...)
	return nil
}

type fakeTx struct {
	repo     *fakeRepo
	orders   map[uint]Order
	restored map[stockKey]int
	history  []StatusHistory
}

func (t *fakeTx) LockForUpdate(_ context.Context, orderID uint) (*Order, error) {
	o, ok := t.repo.orders[orderID]
	if !ok {
		return nil, apperror.NotFound("order not found")
	}
	o.Items = append([]OrderItem(nil), o.Items...)
	return &o, nil
}

func (t *fakeTx) Update(_ context.Context, o *Order) error {
	t.orders[o.ID] = *o
	return nil
}

func (t *fakeTx) RestoreStock(_ context.Context, items []OrderItem) error {
	for _, item := range items {
		key := stockKey{product: item.ProductID}
		if item.VariantID != nil {
			key.variant = *item.VariantID
		}
		t.restored[key] += item.Quantity
	}
	return nil
}

func (t *fakeTx) AddHistory(_ context.Context, h *StatusHistory) error {
	t.history = append(t.history, *h)
	return nil
}

const (
	owner uint = 3
	admin uint = 99
)

var testNow = time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC)

func newTestService(repo Repository) *Service {
	log := logrus.New()
	log.SetOutput(io.Discard)
	svc := NewService(repo, log)
	svc.now = func() time.Time { return testNow }
	return svc
}

func sampleOrder(status OrderStatus) Order {
	variant := uint(12)
	return Order{
		ID:            1,
		OrderNumber:   "ORD-20260401-ABCDEF12",
		UserID:        owner,
		Status:        status,
		PaymentStatus: PaymentStatusUnpaid,
		Items: []OrderItem{
			{ProductID: 10, Quantity: 2},
			{ProductID: 11, VariantID: &variant, Quantity: 1},
		},
	}
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(OrderStatusPending, OrderStatusConfirmed))
	assert.True(t, CanTransition(OrderStatusConfirmed, OrderStatusShipped))
	assert.True(t, CanTransition(OrderStatusShipped, OrderStatusDelivered))
	assert.True(t, CanTransition(OrderStatusDelivered, OrderStatusRefunded))

	assert.False(t, CanTransition(OrderStatusPending, OrderStatusDelivered))
	assert.False(t, CanTransition(OrderStatusShipped, OrderStatusCancelled))
	assert.False(t, CanTransition(OrderStatusCancelled, OrderStatusPending))
	assert.False(t, CanTransition(OrderStatusRefunded, OrderStatusDelivered))
	assert.False(t, CanTransition(OrderStatusPending, OrderStatusPending))

	assert.Empty(t, NextStatuses(OrderStatusCancelled))
	assert.ElementsMatch(t, []OrderStatus{OrderStatusProcessing, OrderStatusShipped, OrderStatusCancelled}, NextStatuses(OrderStatusConfirmed))
}

func TestTransitionStampsTimes(t *testing.T) {
	o := sampleOrder(OrderStatusConfirmed)

	require.NoError(t, o.Transition(OrderStatusShipped, testNow))
	require.NotNil(t, o.ShippedAt)
	assert.Equal(t, testNow, *o.ShippedAt)

	later := testNow.Add(48 * time.Hour)
	require.NoError(t, o.Transition(OrderStatusDelivered, later))
	assert.Equal(t, later, *o.DeliveredAt)
	assert.Equal(t, testNow, *o.ShippedAt)

	err := o.Transition(OrderStatusCancelled, later)
	require.Error(t, err)
	assert.Equal(t, apperror.KindFailedPrecondition, apperror.KindOf(err))
	assert.Equal(t, "cannot change order status from delivered to cancelled", err.Error())
	assert.Nil(t, o.CancelledAt)
}

func TestCancelRestoresStock(t *testing.T) {
	for _, status := range []OrderStatus{OrderStatusPending, OrderStatusConfirmed} {
		t.Run(string(status), func(t *testing.T) {
			repo := newFakeRepo(sampleOrder(status))

			o, err := newTestService(repo).Cancel(context.Background(), owner, 1, "")
			require.NoError(t, err)
			assert.Equal(t, OrderStatusCancelled, o.Status)
			require.NotNil(t, o.CancelledAt)
			assert.Equal(t, testNow, *o.CancelledAt)

			assert.Equal(t, OrderStatusCancelled, repo.orders[1].Status)
			assert.Equal(t, map[stockKey]int{
				{product: 10}:              2,
				{product: 11, variant: 12}: 1,
			}, repo.restored)

			require.Len(t, repo.history, 1)
			assert.Equal(t, "cancelled by customer", repo.history[0].Note)
			assert.Equal(t, owner, *repo.history[0].ChangedBy)
		})
	}
}

type countingCatalog struct{ calls int }

func (c *countingCatalog) InvalidateHighlights(context.Context) { c.calls++ }

func TestStockRestoreInvalidatesCatalog(t *testing.T) {
	ctx := context.Background()

	catalog := &countingCatalog{}
	repo := newFakeRepo(sampleOrder(OrderStatusShipped))
	svc := newTestService(repo).WithCatalog(catalog)

	_, err := svc.Cancel(ctx, owner, 1, "")
	require.Error(t, err)
	assert.Equal(t, 0, catalog.calls)

	delivered := OrderStatusDelivered
	_, err = svc.AdminUpdate(ctx, admin, 1, &AdminUpdateRequest{Status: &delivered})
	require.NoError(t, err)
	assert.Equal(t, 0, catalog.calls)

	repo = newFakeRepo(sampleOrder(OrderStatusPending))
	svc = newTestService(repo).WithCatalog(catalog)
	_, err = svc.Cancel(ctx, owner, 1, "")
	require.NoError(t, err)
	assert.Equal(t, 1, catalog.calls)

	repo = newFakeRepo(sampleOrder(OrderStatusConfirmed))
	svc = newTestService(repo).WithCatalog(catalog)
	cancelled := OrderStatusCancelled
	_, err = svc.AdminUpdate(ctx, admin, 1, &AdminUpdateRequest{Status: &cancelled})
	require.NoError(t, err)
	assert.Equal(t, 2, catalog.calls)
}

func TestCancelRejections(t *testing.T) {
	for _, status := range []OrderStatus{OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled} {
		t.Run(string(status), func(t *testing.T) {
			repo := newFakeRepo(sampleOrder(status))

			_, err := newTestService(repo).Cancel(context.Background(), owner, 1, "changed my mind")
			assert.ErrorIs(t, err, ErrNotCancellable)
			assert.Empty(t, repo.restored)
			assert.Empty(t, repo.history)
			assert.Equal(t, status, repo.orders[1].Status)
		})
	}

	t.Run("someone else's order", func(t *testing.T) {
		repo := newFakeRepo(sampleOrder(OrderStatusPending))
		_, err := newTestService(repo).Cancel(context.Background(), owner+1, 1, "")
		assert.ErrorIs(t, err, ErrOrderNotFound)
		assert.Empty(t, repo.restored)
	})

	t.Run("missing order", func(t *testing.T) {
		_, err := newTestService(newFakeRepo()).Cancel(context.Background(), owner, 404, "")
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestAdminUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("ship with tracking", func(t *testing.T) {
		repo := newFakeRepo(sampleOrder(OrderStatusProcessing))
		status := OrderStatusShipped
		tracking := " JNE123 "

		o, err := newTestService(repo).AdminUpdate(ctx, admin, 1, &AdminUpdateRequest{
			Status:         &status,
			TrackingNumber: &tracking,
			Note:           "handed to courier",
		})
		require.NoError(t, err)
		assert.Equal(t, OrderStatusShipped, o.Status)
		assert.Equal(t, "JNE123", *o.TrackingNumber)
		assert.NotNil(t, o.ShippedAt)

		require.Len(t, repo.history, 1)
		assert.Equal(t, OrderStatusShipped, repo.history[0].Status)
		assert.Equal(t, admin, *repo.history[0].ChangedBy)
		assert.Empty(t, repo.restored)
	})

	t.Run("payment only", func(t *testing.T) {
		repo := newFakeRepo(sampleOrder(OrderStatusPending))
		paid := PaymentStatusPaid

		o, err := newTestService(repo).AdminUpdate(ctx, admin, 1, &AdminUpdateRequest{PaymentStatus: &paid})
		require.NoError(t, err)
		assert.Equal(t, PaymentStatusPaid, o.PaymentStatus)
		assert.Equal(t, OrderStatusPending, o.Status)
		assert.Empty(t, repo.history)
	})

	t.Run("admin cancel restores stock", func(t *testing.T) {
		repo := newFakeRepo(sampleOrder(OrderStatusProcessing))
		status := OrderStatusCancelled

		o, err := newTestService(repo).AdminUpdate(ctx, admin, 1, &AdminUpdateRequest{Status: &status, Note: "out of stock at warehouse"})
		require.NoError(t, err)
		assert.Equal(t, OrderStatusCancelled, o.Status)
		assert.Equal(t, 2, repo.restored[stockKey{product: 10}])
		require.Len(t, repo.history, 1)
		assert.Equal(t, "out of stock at warehouse", repo.history[0].Note)
	})

	t.Run("invalid transition leaves order untouched", func(t *testing.T) {
		repo := newFakeRepo(sampleOrder(OrderStatusPending))
		status := OrderStatusDelivered
		paid := PaymentStatusPaid

		_, err := newTestService(repo).AdminUpdate(ctx, admin, 1, &AdminUpdateRequest{Status: &status, PaymentStatus: &paid})
		require.Error(t, err)
		assert.Equal(t, apperror.KindFailedPrecondition, apperror.KindOf(err))
		assert.Equal(t, PaymentStatusUnpaid, repo.orders[1].PaymentStatus)
		assert.Equal(t, OrderStatusPending, repo.orders[1].Status)
	})

	t.Run("validation", func(t *testing.T) {
		svc := newTestService(newFakeRepo(sampleOrder(OrderStatusPending)))

		_, err := svc.AdminUpdate(ctx, admin, 1, &AdminUpdateRequest{Note: "nothing"})
		assert.ErrorIs(t, err, ErrNothingToUpdate)

		bogus := OrderStatus("lost")
		_, err = svc.AdminUpdate(ctx, admin, 1, &AdminUpdateRequest{Status: &bogus})
		assert.ErrorIs(t, err, ErrInvalidStatus)

		badPay := PaymentStatus("maybe")
		_, err = svc.AdminUpdate(ctx, admin, 1, &AdminUpdateRequest{PaymentStatus: &badPay})
		assert.ErrorIs(t, err, ErrInvalidPayStatus)

		status := OrderStatusConfirmed
		_, err = svc.AdminUpdate(ctx, admin, 404, &AdminUpdateRequest{Status: &status})
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestListingNormalisesPaging(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo(sampleOrder(OrderStatusPending))
	svc := newTestService(repo)

	resp, err := svc.ListForUser(ctx, owner, UserListFilter{Params: pagination.Params{Page: 0, Limit: 500}})
	require.NoError(t, err)
	assert.Len(t, resp.Orders, 1)
	assert.Equal(t, 50, repo.userList.Limit)
	assert.Equal(t, 1, repo.userList.Page)

	_, err = svc.ListForUser(ctx, owner, UserListFilter{Status: "lost"})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.AdminList(ctx, AdminListFilter{Search: "  ORD-2026 "})
	require.NoError(t, err)
	assert.Equal(t, "ORD-2026", repo.lastList.Search)
	assert.Equal(t, 20, repo.lastList.Limit)
}

func TestOwnedOrderStatus(t *testing.T) {
	repo := newFakeRepo(sampleOrder(OrderStatusDelivered))
	svc := newTestService(repo)

	status, found, err := svc.OwnedOrderStatus(context.Background(), 1, owner)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "delivered", status)

	_, found, err = svc.OwnedOrderStatus(context.Background(), 1, owner+1)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestNewOrderNumber(t *testing.T) {
	id := uuid.MustParse("a1b2c3d4-e5f6-4000-8000-000000000000")
	assert.Equal(t, "ORD-20260402-A1B2C3D4", NewOrderNumber(testNow, id))
}

func TestAddressMissingFields(t *testing.T) {
	assert.Empty(t, Address{RecipientName: "A", Phone: "1", Street: "S", City: "C", Province: "P"}.MissingFields())
	assert.Equal(t, []string{"recipient_name", "street"}, Address{RecipientName: "  ", Phone: "1", City: "C", Province: "P"}.MissingFields())
}
