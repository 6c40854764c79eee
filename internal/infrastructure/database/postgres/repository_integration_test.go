//go:build integration

package postgres

import (
	"context"
	"io"
	"log"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/checkout"
	"github.com/your-org/storefront-backend/internal/domain/coupon"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testDB *gorm.DB

func TestMain(m *testing.M) {
	os.Exit(testMain(m))
}

func testMain(m *testing.M) int {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("storefront_test"),
		tcpostgres.WithUsername("storefront"),
		tcpostgres.WithPassword("storefront"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		log.Fatalf("start postgres: %v", err)
	}
	defer func() {
		if err := container.Terminate(context.Background()); err != nil {
			log.Printf("terminate postgres: %v", err)
		}
	}()

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		log.Fatalf("connection string: %v", err)
	}

	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("open gorm: %v", err)
	}

	migration := NewMigration(testDB, quietLogger())
	if err := migration.RunAutoMigrations(); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	if err := migration.CreateIndexes(); err != nil {
		log.Fatalf("indexes: %v", err)
	}

	return m.Run()
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func resetDB(t *testing.T) {
	t.Helper()
	err := testDB.Exec(`TRUNCATE order_status_history, order_items, orders, wishlist_items, cart_items,
		reviews, product_variants, product_images, products, categories, coupons, banners, users
		RESTART IDENTITY CASCADE`).Error
	require.NoError(t, err)
}

type fixture struct {
	user     *user.User
	category *product.Category
	product  *product.Product
}

func seedFixture(t *testing.T, price int64, stock int) fixture {
	t.Helper()
	resetDB(t)

	u := &user.User{Email: "buyer@example.com", PasswordHash: "x", FullName: "Buyer", IsActive: true}
	require.NoError(t, testDB.Create(u).Error)

	c := &product.Category{Name: "Audio", Slug: "audio", IsActive: true}
	require.NoError(t, testDB.Create(c).Error)

	p := &product.Product{
		CategoryID: &c.ID,
		Name:       "Earbuds",
		Slug:       "earbuds",
		Price:      price,
		Stock:      stock,
		IsActive:   true,
		Images:     []product.ProductImage{{URL: "https://img.example.com/earbuds.jpg", IsPrimary: true}},
	}
	require.NoError(t, testDB.Create(p).Error)

	return fixture{user: u, category: c, product: p}
}

func newCheckout() *checkout.Service {
	policy := checkout.Policy{
		Shipping: cart.Policy{FreeShippingThreshold: 100000, FlatShippingFee: 15000},
		TaxRate:  decimal.RequireFromString("0.11"),
	}
	coupons := coupon.NewService(NewCouponRepository(testDB), time.Now)
	return checkout.NewService(NewCheckoutStore(testDB), coupons, policy, "bank_transfer", quietLogger())
}

var testAddress = order.Address{
	RecipientName: "Buyer",
	Phone:         "0811111111",
	Street:        "Jl. Merdeka 1",
	City:          "Bandung",
	Province:      "Jawa Barat",
}

func TestCheckoutPlacesOrderInOneTransaction(t *testing.T) {
	ctx := context.Background()
	f := seedFixture(t, 120000, 5)

	maxDiscount := int64(10000)
	limit := 10
	require.NoError(t, testDB.Create(&coupon.Coupon{
		Code: "WELCOME10", DiscountType: coupon.DiscountPercentage, DiscountValue: decimal.NewFromInt(10),
		MaxDiscount: &maxDiscount, UsageLimit: &limit, IsActive: true,
	}).Error)

	carts := NewCartRepository(testDB)
	require.NoError(t, carts.Create(ctx, &cart.CartItem{UserID: f.user.ID, ProductID: f.product.ID, Quantity: 1}))

	o, err := newCheckout().PlaceOrder(ctx, f.user.ID, &checkout.PlaceOrderRequest{
		ShippingAddress: testAddress,
		CouponCode:      "welcome10",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(120000), o.Subtotal)
	assert.Equal(t, int64(10000), o.Discount)
	assert.Equal(t, int64(0), o.ShippingCost)
	assert.Equal(t, int64(12100), o.Tax)
	assert.Equal(t, int64(122100), o.Total)

	var p product.Product
	require.NoError(t, testDB.First(&p, f.product.ID).Error)
	assert.Equal(t, 4, p.Stock)
	assert.Equal(t, 1, p.SoldCount)

	var c coupon.Coupon
	require.NoError(t, testDB.Where("code = ?", "WELCOME10").First(&c).Error)
	assert.Equal(t, 1, c.UsedCount)

	lines, err := carts.ListForUser(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)

	stored, err := NewOrderRepository(testDB).FindForUser(ctx, f.user.ID, o.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, "Earbuds", stored.Items[0].ProductName)
	require.Len(t, stored.StatusHistory, 1)
	assert.Equal(t, order.OrderStatusPending, stored.StatusHistory[0].Status)
}

func TestCheckoutRejectsCartBeyondStock(t *testing.T) {
	ctx := context.Background()
	f := seedFixture(t, 50000, 2)

	require.NoError(t, NewCartRepository(testDB).Create(ctx, &cart.CartItem{UserID: f.user.ID, ProductID: f.product.ID, Quantity: 2}))

	// Another order takes a unit after the line was added to the cart.
	store := NewCheckoutStore(testDB)
	err := store.InTx(ctx, func(tx checkout.TxStore) error {
		ok, err := tx.DecrementStock(ctx, f.product.ID, nil, 1)
		require.True(t, ok)
		return err
	})
	require.NoError(t, err)

	_, err = newCheckout().PlaceOrder(ctx, f.user.ID, &checkout.PlaceOrderRequest{ShippingAddress: testAddress})
	require.Error(t, err)
	assert.Equal(t, apperror.KindFailedPrecondition, apperror.KindOf(err))

	var orders int64
	require.NoError(t, testDB.Model(&order.Order{}).Count(&orders).Error)
	assert.Zero(t, orders)

	var p product.Product
	require.NoError(t, testDB.First(&p, f.product.ID).Error)
	assert.Equal(t, 1, p.Stock)
}

func TestDecrementStockGuardsVariant(t *testing.T) {
	ctx := context.Background()
	f := seedFixture(t, 50000, 10)

	v := &product.ProductVariant{ProductID: f.product.ID, Name: "Blue", Stock: 1, IsActive: true}
	require.NoError(t, testDB.Create(v).Error)

	store := NewCheckoutStore(testDB)
	err := store.InTx(ctx, func(tx checkout.TxStore) error {
		ok, err := tx.DecrementStock(ctx, f.product.ID, &v.ID, 2)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = tx.DecrementStock(ctx, f.product.ID, &v.ID, 1)
		require.NoError(t, err)
		assert.True(t, ok)
		return nil
	})
	require.NoError(t, err)

	var variant product.ProductVariant
	require.NoError(t, testDB.First(&variant, v.ID).Error)
	assert.Equal(t, 0, variant.Stock)

	var p product.Product
	require.NoError(t, testDB.First(&p, f.product.ID).Error)
	assert.Equal(t, 10, p.Stock)
	assert.Equal(t, 1, p.SoldCount)
}

func TestRemoveCartLinesOnlyTakesOrderedLines(t *testing.T) {
	ctx := context.Background()
	f := seedFixture(t, 50000, 10)
	carts := NewCartRepository(testDB)

	ordered := &cart.CartItem{UserID: f.user.ID, ProductID: f.product.ID, Quantity: 1}
	require.NoError(t, carts.Create(ctx, ordered))

	other := &product.Product{Name: "Case", Slug: "case", Price: 10000, Stock: 3, IsActive: true}
	require.NoError(t, testDB.Create(other).Error)
	added := &cart.CartItem{UserID: f.user.ID, ProductID: other.ID, Quantity: 1}
	require.NoError(t, carts.Create(ctx, added))

	store := NewCheckoutStore(testDB)

	stale := *ordered
	stale.Quantity = 2
	err := store.InTx(ctx, func(tx checkout.TxStore) error {
		ok, err := tx.RemoveCartLines(ctx, f.user.ID, []cart.CartItem{stale})
		require.NoError(t, err)
		assert.False(t, ok)
		return nil
	})
	require.NoError(t, err)

	err = store.InTx(ctx, func(tx checkout.TxStore) error {
		ok, err := tx.RemoveCartLines(ctx, f.user.ID, []cart.CartItem{*ordered})
		require.NoError(t, err)
		assert.True(t, ok)
		return nil
	})
	require.NoError(t, err)

	lines, err := carts.ListForUser(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, added.ID, lines[0].ID)
}

func TestIncrementCouponUsageRespectsLimit(t *testing.T) {
	ctx := context.Background()
	resetDB(t)

	limit := 1
	c := &coupon.Coupon{Code: "ONCE", DiscountType: coupon.DiscountFlat, DiscountValue: decimal.NewFromInt(1000), UsageLimit: &limit, IsActive: true}
	require.NoError(t, testDB.Create(c).Error)

	store := NewCheckoutStore(testDB)
	for i, want := range []bool{true, false} {
		err := store.InTx(ctx, func(tx checkout.TxStore) error {
			ok, err := tx.IncrementCouponUsage(ctx, c.ID)
			require.NoError(t, err)
			assert.Equal(t, want, ok, "attempt %d", i)
			return nil
		})
		require.NoError(t, err)
	}

	var stored coupon.Coupon
	require.NoError(t, testDB.First(&stored, c.ID).Error)
	assert.Equal(t, 1, stored.UsedCount)
}

func TestCancelRestoresStock(t *testing.T) {
	ctx := context.Background()
	f := seedFixture(t, 50000, 3)

	require.NoError(t, NewCartRepository(testDB).Create(ctx, &cart.CartItem{UserID: f.user.ID, ProductID: f.product.ID, Quantity: 2}))
	placed, err := newCheckout().PlaceOrder(ctx, f.user.ID, &checkout.PlaceOrderRequest{ShippingAddress: testAddress})
	require.NoError(t, err)
	assert.Equal(t, int64(111000), placed.Total)

	orders := order.NewService(NewOrderRepository(testDB), quietLogger())
	cancelled, err := orders.Cancel(ctx, f.user.ID, placed.ID, "")
	require.NoError(t, err)
	assert.Equal(t, order.OrderStatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)

	var p product.Product
	require.NoError(t, testDB.First(&p, f.product.ID).Error)
	assert.Equal(t, 3, p.Stock)
	assert.Equal(t, 2, p.SoldCount)

	_, err = orders.Cancel(ctx, f.user.ID, placed.ID, "")
	assert.ErrorIs(t, err, order.ErrNotCancellable)

	_, err = orders.Cancel(ctx, f.user.ID+1, placed.ID, "")
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestCartRejectsDuplicateLines(t *testing.T) {
	ctx := context.Background()
	f := seedFixture(t, 50000, 10)
	carts := NewCartRepository(testDB)

	require.NoError(t, carts.Create(ctx, &cart.CartItem{UserID: f.user.ID, ProductID: f.product.ID, Quantity: 1}))
	err := carts.Create(ctx, &cart.CartItem{UserID: f.user.ID, ProductID: f.product.ID, Quantity: 1})
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))

	line, err := carts.FindLine(ctx, f.user.ID, f.product.ID, nil)
	require.NoError(t, err)
	require.NotNil(t, line)
	assert.Equal(t, 1, line.Quantity)
}

func TestReviewsMaintainRatingAggregate(t *testing.T) {
	ctx := context.Background()
	f := seedFixture(t, 50000, 10)

	other := &user.User{Email: "other@example.com", PasswordHash: "x", FullName: "Other", IsActive: true}
	require.NoError(t, testDB.Create(other).Error)

	reviews := NewReviewRepository(testDB)
	first := &product.Review{ProductID: f.product.ID, UserID: f.user.ID, Rating: 5}
	require.NoError(t, reviews.Create(ctx, first))
	require.NoError(t, reviews.Create(ctx, &product.Review{ProductID: f.product.ID, UserID: other.ID, Rating: 4}))

	var p product.Product
	require.NoError(t, testDB.First(&p, f.product.ID).Error)
	assert.Equal(t, 2, p.RatingCount)
	assert.InDelta(t, 4.5, p.RatingAvg, 0.001)

	list, total, err := reviews.ListForProduct(ctx, f.product.ID, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, list, 2)
	assert.NotEmpty(t, list[0].ReviewerName)

	breakdown, err := reviews.RatingBreakdown(ctx, f.product.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, breakdown[5])
	assert.EqualValues(t, 1, breakdown[4])

	err = reviews.Create(ctx, &product.Review{ProductID: f.product.ID, UserID: f.user.ID, Rating: 3})
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))

	require.NoError(t, reviews.Delete(ctx, first))
	require.NoError(t, testDB.First(&p, f.product.ID).Error)
	assert.Equal(t, 1, p.RatingCount)
	assert.InDelta(t, 4.0, p.RatingAvg, 0.001)
}

func TestProductListFilters(t *testing.T) {
	ctx := context.Background()
	f := seedFixture(t, 120000, 10)

	others := []product.Product{
		{CategoryID: &f.category.ID, Name: "Cheap Cable", Slug: "cheap-cable", Price: 20000, Stock: 5, IsActive: true, Tags: []string{"accessory"}},
		{Name: "Hidden Speaker", Slug: "hidden-speaker", Price: 90000, Stock: 5, IsActive: false},
	}
	require.NoError(t, testDB.Create(&others).Error)

	repo := NewProductRepository(testDB)

	filter := product.ListFilter{CategorySlug: "audio"}.Normalize()
	products, total, err := repo.List(ctx, filter)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, products, 2)

	minPrice := int64(50000)
	filter = product.ListFilter{MinPrice: &minPrice}.Normalize()
	products, _, err = repo.List(ctx, filter)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "earbuds", products[0].Slug)
	require.Len(t, products[0].Images, 1)

	filter = product.ListFilter{Tag: "accessory"}.Normalize()
	products, _, err = repo.List(ctx, filter)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "cheap-cable", products[0].Slug)

	filter = product.ListFilter{Search: "CABLE", Sort: "price", Order: "asc"}.Normalize()
	products, _, err = repo.List(ctx, filter)
	require.NoError(t, err)
	require.Len(t, products, 1)

	_, err = repo.FindBySlug(ctx, "hidden-speaker")
	assert.ErrorIs(t, err, product.ErrProductNotFound)
}
