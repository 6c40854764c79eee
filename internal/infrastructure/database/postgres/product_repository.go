// internal/infrastructure/database/postgres/product_repository.go
package postgres

import (
	"context"
	"fmt"

	"github.com/lib/pq"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	_ product.Repository         = (*ProductRepository)(nil)
	_ product.CategoryRepository = (*CategoryRepository)(nil)
)

func preloadImages(db *gorm.DB) *gorm.DB {
	return db.Order("is_primary DESC, sort_order ASC, id ASC")
}

// ProductRepository stores products, their images and variants
type ProductRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a product repository
func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) List(ctx context.Context, f product.ListFilter) ([]product.Product, int64, error) {
	var products []product.Product
	var total int64

	query := r.db.WithContext(ctx).Model(&product.Product{}).
		Preload("Category").
		Preload("Images", preloadImages).
		Where("is_active = ?", true)

	if f.CategorySlug != "" {
		categoryIDs := r.db.WithContext(ctx).Model(&product.Category{}).Select("id").Where("slug = ?", f.CategorySlug)
		query = query.Where("category_id IN (?)", categoryIDs)
	}

	if f.Search != "" {
		pattern := containsPattern(f.Search)
		query = query.Where("(name ILIKE ? OR description ILIKE ? OR brand ILIKE ?)", pattern, pattern, pattern)
	}

	if f.MinPrice != nil {
		query = query.Where("price >= ?", *f.MinPrice)
	}

	if f.MaxPrice != nil {
		query = query.Where("price <= ?", *f.MaxPrice)
	}

	if f.Brand != "" {
		query = query.Where("brand ILIKE ?", f.Brand)
	}

	if f.Featured != nil {
		query = query.Where("is_featured = ?", *f.Featured)
	}

	if f.Tag != "" {
		query = query.Where("tags @> ?", pq.StringArray{f.Tag})
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	if err := query.Order(f.OrderClause()).Offset(f.Offset()).Limit(f.Limit).Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve products: %w", err)
	}

	return products, total, nil
}

func (r *ProductRepository) Featured(ctx context.Context, limit int) ([]product.Product, error) {
	var products []product.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Images", preloadImages).
		Where("is_active = ? AND is_featured = ?", true, true).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve featured products: %w", err)
	}
	return products, nil
}

func (r *ProductRepository) Bestsellers(ctx context.Context, limit int) ([]product.Product, error) {
	var products []product.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Images", preloadImages).
		Where("is_active = ?", true).
		Order("sold_count DESC, id ASC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve bestsellers: %w", err)
	}
	return products, nil
}

func (r *ProductRepository) FindBySlug(ctx context.Context, slug string) (*product.Product, error) {
	var p product.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Images", preloadImages).
		Preload("Variants", "is_active = ?", true).
		Where("slug = ? AND is_active = ?", slug, true).
		First(&p).Error
	if err != nil {
		return nil, notFound(err, product.ErrProductNotFound)
	}
	return &p, nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id uint) (*product.Product, error) {
	var p product.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Images", preloadImages).
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&p, id).Error
	if err != nil {
		return nil, notFound(err, product.ErrProductNotFound)
	}
	return &p, nil
}

func (r *ProductRepository) Related(ctx context.Context, p *product.Product, limit int) ([]product.Product, error) {
	var products []product.Product
	if p.CategoryID == nil {
		return products, nil
	}

	err := r.db.WithContext(ctx).
		Preload("Images", preloadImages).
		Where("category_id = ? AND id <> ? AND is_active = ?", *p.CategoryID, p.ID, true).
		Order("sold_count DESC, id ASC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve related products: %w", err)
	}
	return products, nil
}

func (r *ProductRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&product.Product{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return duplicate(err, "product slug or sku is already in use")
	}
	return nil
}

// Update writes the product's own columns. Images and variants are left untouched.
func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Select("*").
		Omit("created_at", "sold_count", "rating_avg", "rating_count").
		Updates(p).Error
	if err != nil {
		return duplicate(err, "product slug is already in use")
	}
	return nil
}

func (r *ProductRepository) ReplaceImages(ctx context.Context, productID uint, images []product.ProductImage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productID).Delete(&product.ProductImage{}).Error; err != nil {
			return fmt.Errorf("failed to delete images: %w", err)
		}
		if len(images) == 0 {
			return nil
		}
		for i := range images {
			images[i].ID = 0
			images[i].ProductID = productID
		}
		if err := tx.Create(&images).Error; err != nil {
			return fmt.Errorf("failed to create images: %w", err)
		}
		return nil
	})
}

func (r *ProductRepository) SetActive(ctx context.Context, id uint, active bool) error {
	result := r.db.WithContext(ctx).Model(&product.Product{}).Where("id = ?", id).Update("is_active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return product.ErrProductNotFound
	}
	return nil
}

// CategoryRepository stores categories
type CategoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a category repository
func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) ListActive(ctx context.Context) ([]product.Category, error) {
	var categories []product.Category
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_order ASC, name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve categories: %w", err)
	}
	return categories, nil
}

func (r *CategoryRepository) FindBySlug(ctx context.Context, slug string) (*product.Category, error) {
	var c product.Category
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&c).Error; err != nil {
		return nil, notFound(err, product.ErrCategoryNotFound)
	}
	return &c, nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id uint) (*product.Category, error) {
	var c product.Category
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, notFound(err, product.ErrCategoryNotFound)
	}
	return &c, nil
}

func (r *CategoryRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&product.Category{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *CategoryRepository) Create(ctx context.Context, c *product.Category) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return duplicate(err, "category slug is already in use")
	}
	return nil
}

func (r *CategoryRepository) Update(ctx context.Context, c *product.Category) error {
	return r.db.WithContext(ctx).Select("*").Omit("created_at").Updates(c).Error
}
