// internal/interfaces/http/handlers/category.go
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/domain/banner"
	"github.com/your-org/storefront-backend/internal/domain/product"
)

// CategoryService is the category API used by CategoryHandler
type CategoryService interface {
	List(ctx context.Context) ([]product.Category, error)
	Tree(ctx context.Context) ([]product.CategoryTree, error)
	GetBySlug(ctx context.Context, slug string) (*product.Category, error)
	Create(ctx context.Context, req *product.CategoryCreateRequest) (*product.Category, error)
	Update(ctx context.Context, id uint, req *product.CategoryUpdateRequest) (*product.Category, error)
	Delete(ctx context.Context, id uint) error
}

// BannerLister lists storefront banners
type BannerLister interface {
	List(ctx context.Context) ([]banner.Banner, error)
}

// CategoryHandler handles category and banner endpoints
type CategoryHandler struct {
	categories CategoryService
	banners    BannerLister
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categories CategoryService, banners BannerLister) *CategoryHandler {
	return &CategoryHandler{categories: categories, banners: banners}
}

// GetCategories handles GET /categories. ?tree=true nests children under their parents.
func (h *CategoryHandler) GetCategories(c *gin.Context) {
	if c.Query("tree") == "true" {
		tree, err := h.categories.Tree(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, "Categories retrieved successfully", tree)
		return
	}

	categories, err := h.categories.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Categories retrieved successfully", categories)
}

// GetCategoryBySlug handles GET /categories/:slug
func (h *CategoryHandler) GetCategoryBySlug(c *gin.Context) {
	category, err := h.categories.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Category retrieved successfully", category)
}

// GetBanners handles GET /banners
func (h *CategoryHandler) GetBanners(c *gin.Context) {
	banners, err := h.banners.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Banners retrieved successfully", banners)
}

// AdminCreateCategory handles POST /admin/categories
func (h *CategoryHandler) AdminCreateCategory(c *gin.Context) {
	var req product.CategoryCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	category, err := h.categories.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, "Category created successfully", category)
}

// AdminUpdateCategory handles PUT /admin/categories/:id
func (h *CategoryHandler) AdminUpdateCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req product.CategoryUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	category, err := h.categories.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Category updated successfully", category)
}

// AdminDeleteCategory handles DELETE /admin/categories/:id
func (h *CategoryHandler) AdminDeleteCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.categories.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Category deleted successfully", nil)
}
