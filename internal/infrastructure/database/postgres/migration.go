// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/banner"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/coupon"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/domain/wishlist"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Migration handles database migrations
type Migration struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, log logrus.FieldLogger) *Migration {
	return &Migration{
		db:  db,
		log: log.WithField("component", "migration"),
	}
}

// Models lists every table in dependency order
func Models() []interface{} {
	return []interface{}{
		&user.User{},

		&product.Category{},
		&product.Product{},
		&product.ProductImage{},
		&product.ProductVariant{},
		&product.Review{},

		&coupon.Coupon{},
		&banner.Banner{},

		&cart.CartItem{},
		&wishlist.WishlistItem{},

		&order.Order{},
		&order.OrderItem{},
		&order.StatusHistory{},
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	m.log.Info("running database auto-migrations")

	for _, model := range Models() {
		m.log.Debugf("migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.log.Info("database auto-migrations completed")
	return nil
}

// CreateIndexes creates the indexes AutoMigrate cannot express
func (m *Migration) CreateIndexes() error {
	m.log.Info("creating additional database indexes")

	indexes := []string{
		// A cart holds one line per product and variant; NULL variants need their own index
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_cart_items_user_product_novariant ON cart_items(user_id, product_id) WHERE variant_id IS NULL",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_cart_items_user_product_variant ON cart_items(user_id, product_id, variant_id) WHERE variant_id IS NOT NULL",
		"CREATE INDEX IF NOT EXISTS idx_cart_items_user_created ON cart_items(user_id, created_at DESC)",

		// Product indexes
		"CREATE INDEX IF NOT EXISTS idx_products_category_active ON products(category_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_featured ON products(is_featured, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_price ON products(price)",
		"CREATE INDEX IF NOT EXISTS idx_products_sold_count ON products(sold_count DESC)",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_products_tags ON products USING GIN (tags)",

		// Category and image indexes
		"CREATE INDEX IF NOT EXISTS idx_categories_parent_active ON categories(parent_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_product_images_product_primary ON product_images(product_id, is_primary)",
		"CREATE INDEX IF NOT EXISTS idx_product_variants_product_active ON product_variants(product_id, is_active)",

		// Review indexes
		"CREATE INDEX IF NOT EXISTS idx_reviews_product_created ON reviews(product_id, created_at DESC)",

		// Order indexes
		"CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders(user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_payment_status ON orders(payment_status)",
		"CREATE INDEX IF NOT EXISTS idx_order_status_history_order ON order_status_history(order_id, created_at)",

		// Coupon usage can never exceed its limit
		`DO $$ BEGIN
			IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_coupons_usage') THEN
				ALTER TABLE coupons ADD CONSTRAINT chk_coupons_usage CHECK (usage_limit IS NULL OR used_count <= usage_limit);
			END IF;
		END $$`,
	}

	failed := 0
	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			m.log.WithError(err).Warn("failed to create index")
			failed++
		}
	}

	m.log.WithFields(logrus.Fields{
		"created": len(indexes) - failed,
		"failed":  failed,
	}).Info("database indexes created")
	return nil
}

// SeedInitialData inserts development data. Every seed is idempotent.
func (m *Migration) SeedInitialData() error {
	m.log.Info("seeding initial data")

	if err := m.seedCategories(); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}
	if err := m.seedUsers(); err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}
	if err := m.seedProducts(); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}
	if err := m.seedCoupons(); err != nil {
		return fmt.Errorf("failed to seed coupons: %w", err)
	}
	if err := m.seedBanners(); err != nil {
		return fmt.Errorf("failed to seed banners: %w", err)
	}

	m.log.Info("initial data seeded")
	return nil
}

func (m *Migration) seedCategories() error {
	categories := []product.Category{
		{Name: "Electronics", Slug: "electronics", Description: "Electronic devices, gadgets, and accessories", SortOrder: 1, IsActive: true},
		{Name: "Fashion", Slug: "fashion", Description: "Clothing, shoes, and accessories", SortOrder: 2, IsActive: true},
		{Name: "Books", Slug: "books", Description: "Books and educational materials", SortOrder: 3, IsActive: true},
		{Name: "Home & Living", Slug: "home-living", Description: "Furniture, kitchen, and decor", SortOrder: 4, IsActive: true},
		{Name: "Sports", Slug: "sports", Description: "Sports equipment and outdoor gear", SortOrder: 5, IsActive: true},
	}

	result := m.db.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "slug"}}, DoNothing: true}).Create(&categories)
	if result.Error != nil {
		return result.Error
	}
	m.log.WithField("created", result.RowsAffected).Info("categories seeded")
	return nil
}

func (m *Migration) seedUsers() error {
	seeds := []struct {
		email    string
		password string
		name     string
		admin    bool
	}{
		{"admin@example.com", "Admin123!", "Store Admin", true},
		{"customer@example.com", "Customer123!", "Test Customer", false},
	}

	for _, seed := range seeds {
		var count int64
		if err := m.db.Model(&user.User{}).Where("email = ?", seed.email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(seed.password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		u := user.User{
			Email:        seed.email,
			PasswordHash: string(hashedPassword),
			FullName:     seed.name,
			IsActive:     true,
			IsAdmin:      seed.admin,
		}
		if err := m.db.Create(&u).Error; err != nil {
			return fmt.Errorf("failed to create user %s: %w", seed.email, err)
		}
		m.log.WithFields(logrus.Fields{"email": seed.email, "admin": seed.admin}).Info("user seeded")
	}
	return nil
}

func (m *Migration) seedProducts() error {
	var count int64
	if err := m.db.Model(&product.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		m.log.Debug("products already seeded")
		return nil
	}

	categoryIDs := map[string]uint{}
	var categories []product.Category
	if err := m.db.Find(&categories).Error; err != nil {
		return err
	}
	for _, c := range categories {
		categoryIDs[c.Slug] = c.ID
	}
	category := func(slug string) *uint {
		if id, ok := categoryIDs[slug]; ok {
			return &id
		}
		return nil
	}
	price := func(v int64) *int64 { return &v }

	products := []product.Product{
		{
			CategoryID: category("electronics"), SKU: "ELEC-EARBUDS-01", Name: "Wireless Earbuds", Slug: "wireless-earbuds",
			Description: "Bluetooth earbuds with charging case", Price: 120000, ComparePrice: price(150000), CostPrice: 80000,
			Stock: 50, LowStockThreshold: 5, Brand: "Soundwave", Tags: pq.StringArray{"audio", "wireless"},
			IsActive: true, IsFeatured: true,
			Images: []product.ProductImage{{URL: "https://images.example.com/earbuds.jpg", AltText: "Wireless Earbuds", IsPrimary: true}},
		},
		{
			CategoryID: category("fashion"), SKU: "FASH-TEE-01", Name: "Cotton T-Shirt", Slug: "cotton-t-shirt",
			Description: "Everyday cotton tee", Price: 50000, CostPrice: 25000,
			Stock: 100, LowStockThreshold: 10, Brand: "Basic Co", Tags: pq.StringArray{"cotton", "casual"},
			IsActive: true,
			Images:   []product.ProductImage{{URL: "https://images.example.com/tee.jpg", AltText: "Cotton T-Shirt", IsPrimary: true}},
			Variants: []product.ProductVariant{
				{SKU: "FASH-TEE-01-S", Name: "Small", Stock: 30, IsActive: true},
				{SKU: "FASH-TEE-01-M", Name: "Medium", Stock: 40, IsActive: true},
				{SKU: "FASH-TEE-01-XL", Name: "Extra Large", Price: price(55000), Stock: 30, IsActive: true},
			},
		},
		{
			CategoryID: category("books"), SKU: "BOOK-GO-01", Name: "Learning Go", Slug: "learning-go",
			Description: "An introduction to the Go programming language", Price: 275000, ComparePrice: price(300000), CostPrice: 180000,
			Stock: 20, LowStockThreshold: 3, Brand: "Tech Press", Tags: pq.StringArray{"programming"},
			IsActive: true, IsFeatured: true,
			Images: []product.ProductImage{{URL: "https://images.example.com/learning-go.jpg", AltText: "Learning Go", IsPrimary: true}},
		},
		{
			CategoryID: category("home-living"), SKU: "HOME-MUG-01", Name: "Ceramic Mug", Slug: "ceramic-mug",
			Description: "Stoneware mug, 350ml", Price: 35000, CostPrice: 15000,
			Stock: 4, LowStockThreshold: 5, Brand: "Kiln", Tags: pq.StringArray{"kitchen"},
			IsActive: true,
			Images:   []product.ProductImage{{URL: "https://images.example.com/mug.jpg", AltText: "Ceramic Mug", IsPrimary: true}},
		},
	}

	if err := m.db.Create(&products).Error; err != nil {
		return err
	}
	m.log.WithField("created", len(products)).Info("products seeded")
	return nil
}

func (m *Migration) seedCoupons() error {
	maxDiscount := int64(10000)
	minPurchase := int64(100000)
	usageLimit := 100

	coupons := []coupon.Coupon{
		{
			Code: "WELCOME10", Description: "10% off, up to Rp 10.000", DiscountType: coupon.DiscountPercentage,
			DiscountValue: decimal.NewFromInt(10), MaxDiscount: &maxDiscount, UsageLimit: &usageLimit, IsActive: true,
		},
		{
			Code: "HEMAT25K", Description: "Rp 25.000 off orders over Rp 100.000", DiscountType: coupon.DiscountFlat,
			DiscountValue: decimal.NewFromInt(25000), MinPurchase: &minPurchase, IsActive: true,
		},
	}

	result := m.db.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "code"}}, DoNothing: true}).Create(&coupons)
	if result.Error != nil {
		return result.Error
	}
	m.log.WithField("created", result.RowsAffected).Info("coupons seeded")
	return nil
}

func (m *Migration) seedBanners() error {
	var count int64
	if err := m.db.Model(&banner.Banner{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	banners := []banner.Banner{
		{Title: "New arrivals", Subtitle: "Fresh picks every week", ImageURL: "https://images.example.com/banner-new.jpg", LinkURL: "/products?sort=created_at", SortOrder: 1, IsActive: true},
		{Title: "Free shipping", Subtitle: "On orders over Rp 100.000", ImageURL: "https://images.example.com/banner-shipping.jpg", LinkURL: "/products", SortOrder: 2, IsActive: true},
	}
	if err := m.db.Create(&banners).Error; err != nil {
		return err
	}
	m.log.WithField("created", len(banners)).Info("banners seeded")
	return nil
}

// DropAllTables drops every table. Used by integration tests.
func (m *Migration) DropAllTables() error {
	m.log.Warn("dropping all database tables")

	models := Models()
	for i := len(models) - 1; i >= 0; i-- {
		if err := m.db.Migrator().DropTable(models[i]); err != nil {
			return fmt.Errorf("failed to drop table for %T: %w", models[i], err)
		}
	}
	return nil
}
