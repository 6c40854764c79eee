package cart

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
)

var testPolicy = Policy{FreeShippingThreshold: 100000, FlatShippingFee: 15000}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func uintp(v uint) *uint    { return &v }
func intp(v int) *int       { return &v }
func int64p(v int64) *int64 { return &v }

type fakeProducts map[uint]*product.Product

func (f fakeProducts) FindByID(_ context.Context, id uint) (*product.Product, error) {
	p, ok := f[id]
	if !ok {
		return nil, product.ErrProductNotFound
	}
	return p, nil
}

type fakeRepo struct {
	items    map[uint]*CartItem
	products fakeProducts
	nextID   uint
}

func newFakeRepo(products fakeProducts) *fakeRepo {
	return &fakeRepo{items: map[uint]*CartItem{}, products: products}
}

func (f *fakeRepo) attach(item CartItem) CartItem {
	item.Product = f.products[item.ProductID]
	if item.Product != nil && item.VariantID != nil {
		item.Variant = findVariant(item.Product, *item.VariantID)
	}
	return item
}

func (f *fakeRepo) ListForUser(_ context.Context, userID uint) ([]CartItem, error) {
	var out []CartItem
	for id := f.nextID; id > 0; id-- {
		if item, ok := f.items[id]; ok && item.UserID == userID {
			out = append(out, f.attach(*item))
		}
	}
	return out, nil
}

func (f *fakeRepo) FindForUser(_ context.Context, userID, itemID uint) (*CartItem, error) {
	item, ok := f.items[itemID]
	if !ok || item.UserID != userID {
		return nil, ErrItemNotFound
	}
	found := f.attach(*item)
	return &found, nil
}

func (f *fakeRepo) FindLine(_ context.Context, userID, productID uint, variantID *uint) (*CartItem, error) {
	for _, item := range f.items {
		if item.UserID != userID || item.ProductID != productID {
			continue
		}
		if (item.VariantID == nil) != (variantID == nil) {
			continue
		}
		if variantID != nil && *item.VariantID != *variantID {
			continue
		}
		found := *item
		return &found, nil
	}
	return nil, nil
}

func (f *fakeRepo) Create(_ context.Context, item *CartItem) error {
	f.nextID++
	item.ID = f.nextID
	stored := *item
	f.items[item.ID] = &stored
	return nil
}

func (f *fakeRepo) UpdateQuantity(_ context.Context, itemID uint, quantity int) error {
	f.items[itemID].Quantity = quantity
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, userID, itemID uint) error {
	if item, ok := f.items[itemID]; ok && item.UserID == userID {
		delete(f.items, itemID)
	}
	return nil
}

func (f *fakeRepo) Clear(_ context.Context, userID uint) error {
	for id, item := range f.items {
		if item.UserID == userID {
			delete(f.items, id)
		}
	}
	return nil
}

func shop() fakeProducts {
	return fakeProducts{
		1: {
			ID: 1, Name: "Wireless Earbuds", Slug: "wireless-earbuds", Price: 60000, Stock: 5, IsActive: true,
			Images: []product.ProductImage{{URL: "https://img.example.com/earbuds.jpg", IsPrimary: true}},
		},
		2: {
			ID: 2, Name: "Basic Tee", Slug: "basic-tee", Price: 50000, Stock: 100, IsActive: true,
			Variants: []product.ProductVariant{
				{ID: 10, ProductID: 2, Name: "M", Stock: 2, IsActive: true},
				{ID: 11, ProductID: 2, Name: "XL", Price: int64p(55000), Stock: 4, IsActive: true},
				{ID: 12, ProductID: 2, Name: "XXS", Stock: 9, IsActive: false},
			},
		},
		3: {ID: 3, Name: "Retired Lamp", Slug: "retired-lamp", Price: 10000, Stock: 9, IsActive: false},
	}
}

func TestAddMergesLines(t *testing.T) {
	repo := newFakeRepo(shop())
	svc := NewService(repo, repo.products, testPolicy, quietLogger())
	ctx := context.Background()

	first, err := svc.Add(ctx, 7, &AddRequest{ProductID: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Quantity)

	merged, err := svc.Add(ctx, 7, &AddRequest{ProductID: 1, Quantity: intp(3)})
	require.NoError(t, err)
	assert.Equal(t, first.ID, merged.ID)
	assert.Equal(t, 4, merged.Quantity)
	assert.Len(t, repo.items, 1)

	_, err = svc.Add(ctx, 7, &AddRequest{ProductID: 1, Quantity: intp(2)})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, "quantity exceeds available stock (5 left)", err.Error())
	assert.Equal(t, 4, repo.items[first.ID].Quantity)

	// another user's cart is separate
	other, err := svc.Add(ctx, 8, &AddRequest{ProductID: 1, Quantity: intp(5)})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestAddVariants(t *testing.T) {
	repo := newFakeRepo(shop())
	svc := NewService(repo, repo.products, testPolicy, quietLogger())
	ctx := context.Background()

	m, err := svc.Add(ctx, 7, &AddRequest{ProductID: 2, VariantID: uintp(10), Quantity: intp(2)})
	require.NoError(t, err)
	xl, err := svc.Add(ctx, 7, &AddRequest{ProductID: 2, VariantID: uintp(11)})
	require.NoError(t, err)
	plain, err := svc.Add(ctx, 7, &AddRequest{ProductID: 2, Quantity: intp(3)})
	require.NoError(t, err)

	assert.Len(t, repo.items, 3)
	assert.NotEqual(t, m.ID, xl.ID)
	assert.NotEqual(t, xl.ID, plain.ID)

	// the variant stock is authoritative, not the product stock
	_, err = svc.Add(ctx, 7, &AddRequest{ProductID: 2, VariantID: uintp(10)})
	assert.ErrorIs(t, err, ErrInsufficientStock)

	_, err = svc.Add(ctx, 7, &AddRequest{ProductID: 2, VariantID: uintp(12)})
	assert.ErrorIs(t, err, ErrVariantNotFound)

	_, err = svc.Add(ctx, 7, &AddRequest{ProductID: 1, VariantID: uintp(10)})
	assert.ErrorIs(t, err, ErrVariantNotFound)
}

func TestAddRejections(t *testing.T) {
	repo := newFakeRepo(shop())
	svc := NewService(repo, repo.products, testPolicy, quietLogger())
	ctx := context.Background()

	_, err := svc.Add(ctx, 7, &AddRequest{ProductID: 1, Quantity: intp(-2)})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.Add(ctx, 7, &AddRequest{ProductID: 1, Quantity: intp(0)})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.Add(ctx, 7, &AddRequest{ProductID: 3})
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = svc.Add(ctx, 7, &AddRequest{ProductID: 404})
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = svc.Add(ctx, 7, &AddRequest{ProductID: 1, Quantity: intp(6)})
	assert.Equal(t, apperror.KindFailedPrecondition, apperror.KindOf(err))

	assert.Empty(t, repo.items)
}

func TestUpdateQuantity(t *testing.T) {
	repo := newFakeRepo(shop())
	svc := NewService(repo, repo.products, testPolicy, quietLogger())
	ctx := context.Background()

	item, err := svc.Add(ctx, 7, &AddRequest{ProductID: 2, VariantID: uintp(11)})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, 7, item.ID, &UpdateRequest{Quantity: 4})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Quantity)
	assert.Equal(t, 4, repo.items[item.ID].Quantity)

	_, err = svc.Update(ctx, 7, item.ID, &UpdateRequest{Quantity: 5})
	assert.ErrorIs(t, err, ErrInsufficientStock)

	_, err = svc.Update(ctx, 7, item.ID, &UpdateRequest{Quantity: 0})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.Update(ctx, 8, item.ID, &UpdateRequest{Quantity: 1})
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestRemoveAndClear(t *testing.T) {
	repo := newFakeRepo(shop())
	svc := NewService(repo, repo.products, testPolicy, quietLogger())
	ctx := context.Background()

	a, err := svc.Add(ctx, 7, &AddRequest{ProductID: 1})
	require.NoError(t, err)
	_, err = svc.Add(ctx, 7, &AddRequest{ProductID: 2})
	require.NoError(t, err)
	theirs, err := svc.Add(ctx, 8, &AddRequest{ProductID: 2})
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, 8, a.ID), "removing another user's line is a no-op")
	assert.Len(t, repo.items, 3)

	require.NoError(t, svc.Remove(ctx, 7, a.ID))
	require.NoError(t, svc.Remove(ctx, 7, a.ID))
	assert.Len(t, repo.items, 2)

	require.NoError(t, svc.Clear(ctx, 7))
	require.Len(t, repo.items, 1)
	assert.Contains(t, repo.items, theirs.ID)
}

func TestGetAggregatesLivePrices(t *testing.T) {
	products := shop()
	repo := newFakeRepo(products)
	svc := NewService(repo, products, testPolicy, quietLogger())
	ctx := context.Background()

	_, err := svc.Add(ctx, 7, &AddRequest{ProductID: 1, Quantity: intp(1)})
	require.NoError(t, err)
	_, err = svc.Add(ctx, 7, &AddRequest{ProductID: 2, VariantID: uintp(11), Quantity: intp(2)})
	require.NoError(t, err)

	view, err := svc.Get(ctx, 7)
	require.NoError(t, err)
	require.Len(t, view.Items, 2)

	xl := view.Items[0]
	assert.Equal(t, int64(55000), xl.UnitPrice)
	assert.Equal(t, int64(110000), xl.ItemTotal)
	require.NotNil(t, xl.VariantName)
	assert.Equal(t, "XL", *xl.VariantName)
	assert.Equal(t, 4, xl.AvailableStock)

	earbuds := view.Items[1]
	require.NotNil(t, earbuds.Product.ImageURL)
	assert.Equal(t, "https://img.example.com/earbuds.jpg", *earbuds.Product.ImageURL)
	assert.Nil(t, earbuds.VariantName)

	assert.Equal(t, Summary{Subtotal: 170000, Shipping: 0, Total: 170000, ItemCount: 3}, view.Summary)

	// a price change shows up on the next read
	products[1].Price = 65000
	view, err = svc.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(175000), view.Summary.Subtotal)
}

func TestAggregate(t *testing.T) {
	p := &product.Product{ID: 1, Price: 30000, Stock: 3, IsActive: true}
	now := time.Date(2026, 5, 17, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		items []CartItem
		want  Summary
	}{
		{
			name: "empty cart pays the flat fee",
			want: Summary{Shipping: 15000, Total: 15000},
		},
		{
			name:  "below the threshold",
			items: []CartItem{{ID: 1, ProductID: 1, Quantity: 3, Product: p, CreatedAt: now}},
			want:  Summary{Subtotal: 90000, Shipping: 15000, Total: 105000, ItemCount: 3},
		},
		{
			name: "exactly at the threshold ships free",
			items: []CartItem{
				{ID: 1, ProductID: 1, Quantity: 2, Product: p},
				{ID: 2, ProductID: 1, Quantity: 1, Product: &product.Product{ID: 2, Price: 40000}},
			},
			want: Summary{Subtotal: 100000, Shipping: 0, Total: 100000, ItemCount: 3},
		},
		{
			name:  "line without a product is priced at zero",
			items: []CartItem{{ID: 1, ProductID: 9, Quantity: 2}},
			want:  Summary{Subtotal: 0, Shipping: 15000, Total: 15000, ItemCount: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := Aggregate(tt.items, testPolicy)
			assert.Equal(t, tt.want, view.Summary)
			assert.Len(t, view.Items, len(tt.items))
			assert.NotNil(t, view.Items)
		})
	}
}
