// internal/domain/product/service.go
package product

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
	"github.com/your-org/storefront-backend/internal/pkg/pagination"
)

const (
	defaultListLimit = 12
	maxListLimit     = 100

	// featured and bestseller lists are cached whole and sliced per request
	highlightCacheSize = 24
	defaultHighlight   = 8
	relatedLimit       = 4
	detailReviewLimit  = 10
)

var sortColumns = map[string]string{
	"price":      "price",
	"created_at": "created_at",
	"sold_count": "sold_count",
	"rating_avg": "rating_avg",
	"name":       "name",
}

// ErrProductNotFound is returned for missing or inactive products
var ErrProductNotFound = apperror.NotFound("product not found")

// ListFilter represents the catalogue query parameters
type ListFilter struct {
	pagination.Params
	CategorySlug string `form:"category"`
	Search       string `form:"search"`
	MinPrice     *int64 `form:"min_price"`
	MaxPrice     *int64 `form:"max_price"`
	Brand        string `form:"brand"`
	Featured     *bool  `form:"featured"`
	Tag          string `form:"tags"`
	Sort         string `form:"sort"`
	Order        string `form:"order"`
}

// Normalize applies paging defaults and whitelists the sort column
func (f ListFilter) Normalize() ListFilter {
	f.Params = f.Params.Normalize(defaultListLimit, maxListLimit)
	f.Search = strings.TrimSpace(f.Search)
	if _, ok := sortColumns[f.Sort]; !ok {
		f.Sort = "created_at"
	}
	if f.Order != "asc" {
		f.Order = "desc"
	}
	return f
}

// OrderClause builds the ORDER BY clause for a normalised filter
func (f ListFilter) OrderClause() string {
	column, ok := sortColumns[f.Sort]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if f.Order == "asc" {
		direction = "ASC"
	}
	return fmt.Sprintf("%s %s, id %s", column, direction, direction)
}

// ListResponse represents product response with pagination
type ListResponse struct {
	Products   []Product             `json:"products"`
	Pagination pagination.Pagination `json:"pagination"`
}

// DetailResponse is the product page payload
type DetailResponse struct {
	Product            *Product  `json:"product"`
	DiscountPercentage int       `json:"discount_percentage"`
	Reviews            []Review  `json:"reviews"`
	Related            []Product `json:"related"`
	IsWishlisted       bool      `json:"is_wishlisted"`
}

// ImageInput is an image url supplied by an admin
type ImageInput struct {
	URL     string `json:"url" binding:"required,url"`
	AltText string `json:"alt_text"`
}

// VariantInput is a variant supplied when creating a product
type VariantInput struct {
	Name  string `json:"name" binding:"required,max=255"`
	SKU   string `json:"sku"`
	Price *int64 `json:"price" binding:"omitempty,gt=0"`
	Stock int    `json:"stock" binding:"gte=0"`
}

// CreateProductRequest represents product creation data
type CreateProductRequest struct {
	Name              string         `json:"name" binding:"required,max=255"`
	Slug              string         `json:"slug" binding:"max=255"`
	SKU               string         `json:"sku"`
	Description       string         `json:"description"`
	ShortDescription  string         `json:"short_description" binding:"max=500"`
	Price             int64          `json:"price" binding:"required,gt=0"`
	ComparePrice      *int64         `json:"compare_price" binding:"omitempty,gt=0"`
	CostPrice         int64          `json:"cost_price" binding:"gte=0"`
	Stock             int            `json:"stock" binding:"gte=0"`
	LowStockThreshold *int           `json:"low_stock_threshold" binding:"omitempty,gte=0"`
	Weight            float64        `json:"weight" binding:"gte=0"`
	CategoryID        *uint          `json:"category_id"`
	Brand             string         `json:"brand" binding:"max=100"`
	Tags              []string       `json:"tags"`
	IsActive          *bool          `json:"is_active"`
	IsFeatured        bool           `json:"is_featured"`
	Images            []ImageInput   `json:"images" binding:"dive"`
	Variants          []VariantInput `json:"variants" binding:"dive"`
}

// UpdateProductRequest represents product update data. Nil fields are left unchanged.
type UpdateProductRequest struct {
	Name              *string       `json:"name" binding:"omitempty,max=255"`
	Slug              *string       `json:"slug" binding:"omitempty,max=255"`
	SKU               *string       `json:"sku"`
	Description       *string       `json:"description"`
	ShortDescription  *string       `json:"short_description" binding:"omitempty,max=500"`
	Price             *int64        `json:"price" binding:"omitempty,gt=0"`
	ComparePrice      *int64        `json:"compare_price" binding:"omitempty,gte=0"`
	CostPrice         *int64        `json:"cost_price" binding:"omitempty,gte=0"`
	Stock             *int          `json:"stock" binding:"omitempty,gte=0"`
	LowStockThreshold *int          `json:"low_stock_threshold" binding:"omitempty,gte=0"`
	Weight            *float64      `json:"weight" binding:"omitempty,gte=0"`
	CategoryID        *uint         `json:"category_id"`
	Brand             *string       `json:"brand" binding:"omitempty,max=100"`
	Tags              *[]string     `json:"tags"`
	IsActive          *bool         `json:"is_active"`
	IsFeatured        *bool         `json:"is_featured"`
	Images            *[]ImageInput `json:"images"`
}

// Service handles catalogue business logic
type Service struct {
	products   Repository
	categories CategoryRepository
	reviews    ReviewRepository
	wishlist   WishlistChecker
	cache      Cache
	config     *config.Config
	log        logrus.FieldLogger
	now        func() time.Time
}

// NewService creates a new catalogue service. A nil cache disables caching.
func NewService(
	products Repository,
	categories CategoryRepository,
	reviews ReviewRepository,
	wishlist WishlistChecker,
	cache Cache,
	cfg *config.Config,
	log logrus.FieldLogger,
) *Service {
	if cache == nil {
		cache = NopCache{}
	}
	return &Service{
		products:   products,
		categories: categories,
		reviews:    reviews,
		wishlist:   wishlist,
		cache:      cache,
		config:     cfg,
		log:        log,
		now:        time.Now,
	}
}

// List retrieves active products with filtering and pagination
func (s *Service) List(ctx context.Context, filter ListFilter) (*ListResponse, error) {
	filter = filter.Normalize()

	products, total, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	return &ListResponse{
		Products:   products,
		Pagination: pagination.New(filter.Params, total),
	}, nil
}

// Featured returns up to limit featured products, newest first
func (s *Service) Featured(ctx context.Context, limit int) ([]Product, error) {
	return s.highlight(ctx, "products:featured", limit, s.products.Featured)
}

// Bestsellers returns up to limit products with the highest sold count
func (s *Service) Bestsellers(ctx context.Context, limit int) ([]Product, error) {
	return s.highlight(ctx, "products:bestsellers", limit, s.products.Bestsellers)
}

func (s *Service) highlight(
	ctx context.Context,
	key string,
	limit int,
	load func(context.Context, int) ([]Product, error),
) ([]Product, error) {
	if limit <= 0 {
		limit = defaultHighlight
	}
	if limit > highlightCacheSize {
		limit = highlightCacheSize
	}

	cacheKey := s.cacheKey(key)
	var products []Product
	hit, err := s.cache.Get(ctx, cacheKey, &products)
	if err != nil {
		s.log.WithError(err).WithField("key", cacheKey).Warn("catalogue cache read failed")
	}

	if !hit {
		products, err = load(ctx, highlightCacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve products: %w", err)
		}
		if err := s.cache.Set(ctx, cacheKey, products, s.config.Cache.TTL); err != nil {
			s.log.WithError(err).WithField("key", cacheKey).Warn("catalogue cache write failed")
		}
	}

	if len(products) > limit {
		products = products[:limit]
	}
	return products, nil
}

// Detail returns the product page for slug. callerID is nil for anonymous visitors.
func (s *Service) Detail(ctx context.Context, slug string, callerID *uint) (*DetailResponse, error) {
	p, err := s.products.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	reviews, _, err := s.reviews.ListForProduct(ctx, p.ID, 0, detailReviewLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve reviews: %w", err)
	}

	related, err := s.products.Related(ctx, p, relatedLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve related products: %w", err)
	}

	resp := &DetailResponse{
		Product:            p,
		DiscountPercentage: p.DiscountPercentage(),
		Reviews:            reviews,
		Related:            related,
	}

	if callerID != nil && s.wishlist != nil {
		resp.IsWishlisted, err = s.wishlist.IsWishlisted(ctx, *callerID, p.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check wishlist: %w", err)
		}
	}

	return resp, nil
}

// Create creates a product. The first image becomes the primary image.
func (s *Service) Create(ctx context.Context, req *CreateProductRequest) (*Product, error) {
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	slug, err := s.uniqueSlug(ctx, req.Slug, req.Name)
	if err != nil {
		return nil, err
	}

	lowStock := 5
	if req.LowStockThreshold != nil {
		lowStock = *req.LowStockThreshold
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	p := &Product{
		CategoryID:        req.CategoryID,
		SKU:               req.SKU,
		Name:              strings.TrimSpace(req.Name),
		Slug:              slug,
		Description:       req.Description,
		ShortDescription:  req.ShortDescription,
		Price:             req.Price,
		ComparePrice:      req.ComparePrice,
		CostPrice:         req.CostPrice,
		Stock:             req.Stock,
		LowStockThreshold: lowStock,
		Weight:            req.Weight,
		Brand:             strings.TrimSpace(req.Brand),
		Tags:              normalizeTags(req.Tags),
		IsActive:          isActive,
		IsFeatured:        req.IsFeatured,
		Images:            buildImages(req.Images),
	}

	for _, v := range req.Variants {
		p.Variants = append(p.Variants, ProductVariant{
			Name:     strings.TrimSpace(v.Name),
			SKU:      v.SKU,
			Price:    v.Price,
			Stock:    v.Stock,
			IsActive: true,
		})
	}

	if err := s.products.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.InvalidateHighlights(ctx)
	s.log.WithFields(logrus.Fields{"product_id": p.ID, "slug": p.Slug}).Info("product created")

	return p, nil
}

// Update applies a partial update to a product
func (s *Service) Update(ctx context.Context, id uint, req *UpdateProductRequest) (*Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.CategoryID != nil {
		if err := s.checkCategory(ctx, req.CategoryID); err != nil {
			return nil, err
		}
		p.CategoryID = req.CategoryID
	}

	if req.Slug != nil && *req.Slug != p.Slug {
		slug := Slugify(*req.Slug)
		exists, err := s.products.SlugExists(ctx, slug)
		if err != nil {
			return nil, fmt.Errorf("failed to check slug: %w", err)
		}
		if exists {
			return nil, apperror.Conflict("slug is already in use")
		}
		p.Slug = slug
	}

	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.SKU != nil {
		p.SKU = *req.SKU
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.ShortDescription != nil {
		p.ShortDescription = *req.ShortDescription
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.ComparePrice != nil {
		if *req.ComparePrice == 0 {
			p.ComparePrice = nil
		} else {
			p.ComparePrice = req.ComparePrice
		}
	}
	if req.CostPrice != nil {
		p.CostPrice = *req.CostPrice
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	if req.LowStockThreshold != nil {
		p.LowStockThreshold = *req.LowStockThreshold
	}
	if req.Weight != nil {
		p.Weight = *req.Weight
	}
	if req.Brand != nil {
		p.Brand = strings.TrimSpace(*req.Brand)
	}
	if req.Tags != nil {
		p.Tags = normalizeTags(*req.Tags)
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if req.IsFeatured != nil {
		p.IsFeatured = *req.IsFeatured
	}

	if err := s.products.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	if req.Images != nil {
		images := buildImages(*req.Images)
		if err := s.products.ReplaceImages(ctx, p.ID, images); err != nil {
			return nil, fmt.Errorf("failed to replace images: %w", err)
		}
		p.Images = images
	}

	s.InvalidateHighlights(ctx)

	return p, nil
}

// Delete soft-deletes a product by deactivating it
func (s *Service) Delete(ctx context.Context, id uint) error {
	if _, err := s.products.FindByID(ctx, id); err != nil {
		return err
	}

	if err := s.products.SetActive(ctx, id, false); err != nil {
		return fmt.Errorf("failed to deactivate product: %w", err)
	}

	s.InvalidateHighlights(ctx)
	s.log.WithField("product_id", id).Info("product deactivated")

	return nil
}

func (s *Service) checkCategory(ctx context.Context, id *uint) error {
	if id == nil || s.categories == nil {
		return nil
	}
	if _, err := s.categories.FindByID(ctx, *id); err != nil {
		if apperror.IsKind(err, apperror.KindNotFound) {
			return apperror.InvalidArgument("category does not exist")
		}
		return fmt.Errorf("failed to check category: %w", err)
	}
	return nil
}

// uniqueSlug returns requested (slugified) when free, or a slug derived from
// name with a timestamp suffix when the plain form is taken.
func (s *Service) uniqueSlug(ctx context.Context, requested, name string) (string, error) {
	slug := Slugify(requested)
	explicit := requested != ""
	if !explicit {
		slug = Slugify(name)
	}

	exists, err := s.products.SlugExists(ctx, slug)
	if err != nil {
		return "", fmt.Errorf("failed to check slug: %w", err)
	}
	if !exists {
		return slug, nil
	}
	if explicit {
		return "", apperror.Conflict("slug is already in use")
	}

	return fmt.Sprintf("%s-%d", slug, s.now().Unix()), nil
}

// InvalidateHighlights drops the cached featured and bestseller lists. It is
// called after anything that changes stock, sales or ratings.
func (s *Service) InvalidateHighlights(ctx context.Context) {
	keys := []string{s.cacheKey("products:featured"), s.cacheKey("products:bestsellers")}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.log.WithError(err).Warn("catalogue cache invalidation failed")
	}
}

func (s *Service) cacheKey(key string) string {
	return s.config.Cache.Prefix + ":" + key
}

func buildImages(inputs []ImageInput) []ProductImage {
	images := make([]ProductImage, 0, len(inputs))
	for i, in := range inputs {
		images = append(images, ProductImage{
			URL:       in.URL,
			AltText:   in.AltText,
			SortOrder: i,
			IsPrimary: i == 0,
		})
	}
	return images
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

// Slugify generates a URL-friendly slug: lower-case ASCII letters and digits
// separated by single dashes.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}

	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "item"
	}
	return slug
}
