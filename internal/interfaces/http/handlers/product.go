// internal/interfaces/http/handlers/product.go
package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/domain/product"
)

const defaultHighlightLimit = 8

// CatalogService is the product API used by ProductHandler
type CatalogService interface {
	List(ctx context.Context, filter product.ListFilter) (*product.ListResponse, error)
	Featured(ctx context.Context, limit int) ([]product.Product, error)
	Bestsellers(ctx context.Context, limit int) ([]product.Product, error)
	Detail(ctx context.Context, slug string, callerID *uint) (*product.DetailResponse, error)
	Create(ctx context.Context, req *product.CreateProductRequest) (*product.Product, error)
	Update(ctx context.Context, id uint, req *product.UpdateProductRequest) (*product.Product, error)
	Delete(ctx context.Context, id uint) error
}

// ProductHandler handles product endpoints
type ProductHandler struct {
	products CatalogService
}

// NewProductHandler creates a new product handler
func NewProductHandler(products CatalogService) *ProductHandler {
	return &ProductHandler{products: products}
}

// GetProducts handles GET /products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	var filter product.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondBindError(c, err)
		return
	}

	response, err := h.products.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Products retrieved successfully", response)
}

// GetFeatured handles GET /products/featured
func (h *ProductHandler) GetFeatured(c *gin.Context) {
	products, err := h.products.Featured(c.Request.Context(), highlightLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Featured products retrieved successfully", products)
}

// GetBestsellers handles GET /products/bestsellers
func (h *ProductHandler) GetBestsellers(c *gin.Context) {
	products, err := h.products.Bestsellers(c.Request.Context(), highlightLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Bestsellers retrieved successfully", products)
}

// GetProductBySlug handles GET /products/:slug
func (h *ProductHandler) GetProductBySlug(c *gin.Context) {
	detail, err := h.products.Detail(c.Request.Context(), c.Param("slug"), optionalUser(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Product retrieved successfully", detail)
}

// AdminCreateProduct handles POST /admin/products
func (h *ProductHandler) AdminCreateProduct(c *gin.Context) {
	var req product.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	created, err := h.products.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, "Product created successfully", created)
}

// AdminUpdateProduct handles PUT /admin/products/:id
func (h *ProductHandler) AdminUpdateProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req product.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	updated, err := h.products.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Product updated successfully", updated)
}

// AdminDeleteProduct handles DELETE /admin/products/:id
func (h *ProductHandler) AdminDeleteProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Product deleted successfully", nil)
}

func highlightLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 || limit > 50 {
		return defaultHighlightLimit
	}
	return limit
}
