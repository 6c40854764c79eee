// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// Handlers groups every HTTP handler mounted under /api/v1
type Handlers struct {
	Auth      *handlers.AuthHandler
	Profile   *handlers.ProfileHandler
	Product   *handlers.ProductHandler
	Category  *handlers.CategoryHandler
	Cart      *handlers.CartHandler
	Checkout  *handlers.CheckoutHandler
	Order     *handlers.OrderHandler
	Invoice   *handlers.InvoiceHandler
	Review    *handlers.ReviewHandler
	Wishlist  *handlers.WishlistHandler
	Analytics *handlers.AnalyticsHandler
}

// SetupRoutes mounts every route group on rg
func SetupRoutes(rg *gin.RouterGroup, h *Handlers, tokens middleware.TokenValidator) {
	SetupAuthRoutes(rg, h, tokens)
	SetupCatalogRoutes(rg, h, tokens)
	SetupShoppingRoutes(rg, h, tokens)
	SetupOrderRoutes(rg, h, tokens)
	SetupReviewRoutes(rg, h, tokens)
	SetupAdminRoutes(rg, h, tokens)
}

// SetupAuthRoutes sets up authentication related routes
func SetupAuthRoutes(rg *gin.RouterGroup, h *Handlers, tokens middleware.TokenValidator) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.RefreshToken)

		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(tokens))
		{
			protected.POST("/logout", h.Auth.Logout)
			protected.GET("/me", h.Profile.Me)
			protected.PUT("/profile", h.Profile.UpdateProfile)
			protected.PUT("/password", h.Profile.ChangePassword)
		}
	}
}

// SetupCatalogRoutes sets up product, category, banner and coupon routes
func SetupCatalogRoutes(rg *gin.RouterGroup, h *Handlers, tokens middleware.TokenValidator) {
	products := rg.Group("/products")
	{
		products.GET("", h.Product.GetProducts)
		products.GET("/featured", h.Product.GetFeatured)
		products.GET("/bestsellers", h.Product.GetBestsellers)
		products.GET("/:slug", middleware.OptionalAuthMiddleware(tokens), h.Product.GetProductBySlug)
	}

	categories := rg.Group("/categories")
	{
		categories.GET("", h.Category.GetCategories)
		categories.GET("/:slug", h.Category.GetCategoryBySlug)
	}

	rg.GET("/banners", h.Category.GetBanners)

	coupons := rg.Group("/coupons")
	coupons.Use(middleware.OptionalAuthMiddleware(tokens))
	{
		coupons.POST("/validate", h.Checkout.ValidateCoupon)
	}
}

// SetupShoppingRoutes sets up cart, checkout and wishlist routes
func SetupShoppingRoutes(rg *gin.RouterGroup, h *Handlers, tokens middleware.TokenValidator) {
	cart := rg.Group("/cart")
	cart.Use(middleware.AuthMiddleware(tokens))
	{
		cart.GET("", h.Cart.GetCart)
		cart.POST("", h.Cart.AddToCart)
		cart.DELETE("", h.Cart.ClearCart)
		cart.PUT("/:id", h.Cart.UpdateCartItem)
		cart.DELETE("/:id", h.Cart.RemoveFromCart)
	}

	checkout := rg.Group("/checkout")
	checkout.Use(middleware.AuthMiddleware(tokens))
	{
		checkout.GET("/summary", h.Checkout.GetSummary)
	}

	wishlist := rg.Group("/wishlist")
	wishlist.Use(middleware.AuthMiddleware(tokens))
	{
		wishlist.GET("", h.Wishlist.GetWishlist)
		wishlist.POST("", h.Wishlist.ToggleWishlist)
		wishlist.DELETE("/:id", h.Wishlist.RemoveFromWishlist)
	}
}

// SetupOrderRoutes sets up order related routes
func SetupOrderRoutes(rg *gin.RouterGroup, h *Handlers, tokens middleware.TokenValidator) {
	orders := rg.Group("/orders")
	orders.Use(middleware.AuthMiddleware(tokens))
	{
		orders.POST("", h.Checkout.PlaceOrder)
		orders.GET("", h.Order.GetOrders)
		orders.GET("/:id", h.Order.GetOrder)
		orders.PUT("/:id/cancel", h.Order.CancelOrder)
		orders.GET("/:id/invoice", h.Invoice.DownloadInvoice)
	}
}

// SetupReviewRoutes sets up review routes
func SetupReviewRoutes(rg *gin.RouterGroup, h *Handlers, tokens middleware.TokenValidator) {
	reviews := rg.Group("/reviews")
	{
		reviews.GET("/:productId", h.Review.GetProductReviews)

		protected := reviews.Group("")
		protected.Use(middleware.AuthMiddleware(tokens))
		{
			protected.POST("", h.Review.CreateReview)
			protected.DELETE("/:id", h.Review.DeleteReview)
		}
	}
}

// SetupAdminRoutes sets up admin related routes
func SetupAdminRoutes(rg *gin.RouterGroup, h *Handlers, tokens middleware.TokenValidator) {
	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(tokens))
	admin.Use(middleware.AdminMiddleware())
	{
		admin.GET("/stats", h.Analytics.GetDashboardStats)

		orders := admin.Group("/orders")
		{
			orders.GET("", h.Order.AdminGetOrders)
			orders.PUT("/:id/status", h.Order.AdminUpdateOrder)
		}

		products := admin.Group("/products")
		{
			products.POST("", h.Product.AdminCreateProduct)
			products.PUT("/:id", h.Product.AdminUpdateProduct)
			products.DELETE("/:id", h.Product.AdminDeleteProduct)
		}

		categories := admin.Group("/categories")
		{
			categories.POST("", h.Category.AdminCreateCategory)
			categories.PUT("/:id", h.Category.AdminUpdateCategory)
			categories.DELETE("/:id", h.Category.AdminDeleteCategory)
		}
	}
}
