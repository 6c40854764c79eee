// internal/domain/product/category_service.go
package product

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
)

var ErrCategoryNotFound = apperror.NotFound("category not found")

// CategoryService handles category business logic
type CategoryService struct {
	categories CategoryRepository
	cache      Cache
	config     *config.Config
	log        logrus.FieldLogger
}

// NewCategoryService creates a new category service
func NewCategoryService(categories CategoryRepository, cache Cache, cfg *config.Config, log logrus.FieldLogger) *CategoryService {
	if cache == nil {
		cache = NopCache{}
	}
	return &CategoryService{
		categories: categories,
		cache:      cache,
		config:     cfg,
		log:        log,
	}
}

// CategoryCreateRequest represents category creation data
type CategoryCreateRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Slug        string `json:"slug" binding:"max=255"`
	Description string `json:"description" binding:"max=500"`
	ImageURL    string `json:"image_url" binding:"omitempty,url"`
	ParentID    *uint  `json:"parent_id"`
	SortOrder   int    `json:"sort_order"`
	IsActive    *bool  `json:"is_active"`
}

// CategoryUpdateRequest represents category update data
type CategoryUpdateRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=255"`
	Description *string `json:"description" binding:"omitempty,max=500"`
	ImageURL    *string `json:"image_url"`
	ParentID    *uint   `json:"parent_id"`
	SortOrder   *int    `json:"sort_order"`
	IsActive    *bool   `json:"is_active"`
}

// CategoryTree represents hierarchical category structure
type CategoryTree struct {
	Category
	Children []CategoryTree `json:"children,omitempty"`
}

// List returns active categories ordered by sort order
func (s *CategoryService) List(ctx context.Context) ([]Category, error) {
	key := s.cacheKey()

	var categories []Category
	hit, err := s.cache.Get(ctx, key, &categories)
	if err != nil {
		s.log.WithError(err).WithField("key", key).Warn("category cache read failed")
	}
	if hit {
		return categories, nil
	}

	categories, err = s.categories.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve categories: %w", err)
	}

	if err := s.cache.Set(ctx, key, categories, s.config.Cache.TTL); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("category cache write failed")
	}

	return categories, nil
}

// Tree nests the active categories under their parents. Categories whose
// parent is missing or inactive are returned as roots.
func (s *CategoryService) Tree(ctx context.Context) ([]CategoryTree, error) {
	categories, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return buildTree(categories), nil
}

// GetBySlug returns an active category
func (s *CategoryService) GetBySlug(ctx context.Context, slug string) (*Category, error) {
	c, err := s.categories.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !c.IsActive {
		return nil, ErrCategoryNotFound
	}
	return c, nil
}

// Create creates a new category
func (s *CategoryService) Create(ctx context.Context, req *CategoryCreateRequest) (*Category, error) {
	slug := Slugify(req.Slug)
	if req.Slug == "" {
		slug = Slugify(req.Name)
	}

	exists, err := s.categories.SlugExists(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to check slug: %w", err)
	}
	if exists {
		return nil, apperror.Conflict("category slug is already in use")
	}

	if err := s.checkParent(ctx, 0, req.ParentID); err != nil {
		return nil, err
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	c := &Category{
		Name:        strings.TrimSpace(req.Name),
		Slug:        slug,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		ParentID:    req.ParentID,
		SortOrder:   req.SortOrder,
		IsActive:    isActive,
	}

	if err := s.categories.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.invalidate(ctx)
	return c, nil
}

// Update applies a partial update to a category
func (s *CategoryService) Update(ctx context.Context, id uint, req *CategoryUpdateRequest) (*Category, error) {
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ParentID != nil {
		if err := s.checkParent(ctx, id, req.ParentID); err != nil {
			return nil, err
		}
		c.ParentID = req.ParentID
	}
	if req.Name != nil {
		c.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.ImageURL != nil {
		c.ImageURL = *req.ImageURL
	}
	if req.SortOrder != nil {
		c.SortOrder = *req.SortOrder
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}

	if err := s.categories.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	s.invalidate(ctx)
	return c, nil
}

// Delete soft-deletes a category
func (s *CategoryService) Delete(ctx context.Context, id uint) error {
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return err
	}

	c.IsActive = false
	if err := s.categories.Update(ctx, c); err != nil {
		return fmt.Errorf("failed to deactivate category: %w", err)
	}

	s.invalidate(ctx)
	s.log.WithField("category_id", id).Info("category deactivated")
	return nil
}

func (s *CategoryService) checkParent(ctx context.Context, id uint, parentID *uint) error {
	if parentID == nil {
		return nil
	}
	if id != 0 && *parentID == id {
		return apperror.InvalidArgument("category cannot be its own parent")
	}
	if _, err := s.categories.FindByID(ctx, *parentID); err != nil {
		if apperror.IsKind(err, apperror.KindNotFound) {
			return apperror.InvalidArgument("parent category does not exist")
		}
		return fmt.Errorf("failed to check parent category: %w", err)
	}
	return nil
}

func (s *CategoryService) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, s.cacheKey()); err != nil {
		s.log.WithError(err).Warn("category cache invalidation failed")
	}
}

func (s *CategoryService) cacheKey() string {
	return s.config.Cache.Prefix + ":categories:active"
}

func buildTree(categories []Category) []CategoryTree {
	known := make(map[uint]bool, len(categories))
	children := make(map[uint][]Category)
	for _, c := range categories {
		known[c.ID] = true
	}

	var roots []Category
	for _, c := range categories {
		if c.ParentID != nil && known[*c.ParentID] && *c.ParentID != c.ID {
			children[*c.ParentID] = append(children[*c.ParentID], c)
			continue
		}
		roots = append(roots, c)
	}

	var build func(c Category, depth int) CategoryTree
	build = func(c Category, depth int) CategoryTree {
		node := CategoryTree{Category: c}
		// a parent cycle cannot recurse forever
		if depth > len(categories) {
			return node
		}
		for _, child := range children[c.ID] {
			node.Children = append(node.Children, build(child, depth+1))
		}
		return node
	}

	tree := make([]CategoryTree, 0, len(roots))
	for _, root := range roots {
		tree = append(tree, build(root, 0))
	}
	return tree
}
