// internal/interfaces/http/server.go
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/analytics"
	"github.com/your-org/storefront-backend/internal/domain/banner"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/checkout"
	"github.com/your-org/storefront-backend/internal/domain/coupon"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/domain/wishlist"
	"github.com/your-org/storefront-backend/internal/infrastructure/database/postgres"
	redisinfra "github.com/your-org/storefront-backend/internal/infrastructure/database/redis"
	"github.com/your-org/storefront-backend/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-backend/internal/interfaces/http/routes"
	"github.com/your-org/storefront-backend/internal/pkg/pdf"
)

// HealthChecker is a dependency probed by /health
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	config     *config.Config
	gin        *gin.Engine
	httpServer *http.Server
	db         *postgres.DB
	redis      *redisinfra.Client
	log        logrus.FieldLogger
	checks     map[string]HealthChecker
	startedAt  time.Time
}

// NewServer wires repositories, services and handlers onto a gin engine
func NewServer(cfg *config.Config, db *postgres.DB, redisClient *redisinfra.Client, log logrus.FieldLogger) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		config:    cfg,
		gin:       gin.New(),
		db:        db,
		redis:     redisClient,
		log:       log,
		checks:    map[string]HealthChecker{"database": db, "redis": redisClient},
		startedAt: time.Now(),
	}

	if len(cfg.Security.TrustedProxies) > 0 {
		if err := s.gin.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
			log.WithError(err).Warn("ignoring invalid trusted proxies")
		}
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      s.gin,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return s
}

// Handler exposes the configured engine
func (s *Server) Handler() http.Handler {
	return s.gin
}

// Start serves HTTP until Stop is called
func (s *Server) Start() error {
	s.log.WithFields(logrus.Fields{
		"port":     s.config.Server.Port,
		"base_url": fmt.Sprintf("http://localhost:%s/api/v1", s.config.Server.Port),
	}).Info("HTTP server starting")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("shutting down HTTP server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.log.Info("HTTP server stopped gracefully")
	return nil
}

// setupMiddleware configures all middleware for the server
func (s *Server) setupMiddleware() {
	s.gin.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		s.log.WithField("panic", recovered).Error("recovered from panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": "internal server error",
			"code":  "internal",
		})
	}))
	s.gin.Use(middleware.RequestID())
	s.gin.Use(middleware.Logger(s.log))
	s.gin.Use(middleware.CORS(s.config))
	s.gin.Use(middleware.SecurityHeaders(s.config))
	s.gin.Use(middleware.RateLimit(s.config, s.redis.GetClient(), s.log))
	s.gin.Use(middleware.RequestSizeLimit(s.config.Server.MaxBodyBytes))
	s.gin.Use(middleware.Timeout(s.config.Server.RequestTimeout))
}

func (s *Server) setupRoutes() {
	s.gin.GET("/health", s.healthCheck)
	s.gin.GET("/ready", s.readinessCheck)

	h, tokens := s.buildHandlers()
	routes.SetupRoutes(s.gin.Group("/api/v1"), h, tokens)

	if s.config.IsDevelopment() {
		s.gin.GET("/", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"message":     s.config.App.Name,
				"version":     s.config.App.Version,
				"environment": s.config.App.Environment,
				"health":      "/health",
				"api":         "/api/v1",
			})
		})
	}
}

// buildHandlers assembles the repositories and services behind every route
func (s *Server) buildHandlers() (*routes.Handlers, middleware.TokenValidator) {
	db := s.db.GetDB()
	cfg := s.config

	var cache product.Cache = product.NopCache{}
	if cfg.Cache.Enabled {
		cache = redisinfra.NewCache(s.redis)
	}

	productRepo := postgres.NewProductRepository(db)
	categoryRepo := postgres.NewCategoryRepository(db)
	reviewRepo := postgres.NewReviewRepository(db)

	users := user.NewService(postgres.NewUserRepository(db), cfg, s.log)
	orders := order.NewService(postgres.NewOrderRepository(db), s.log)
	wishlists := wishlist.NewService(postgres.NewWishlistRepository(db), productRepo)
	products := product.NewService(productRepo, categoryRepo, reviewRepo, wishlists, cache, cfg, s.log)
	categories := product.NewCategoryService(categoryRepo, cache, cfg, s.log)
	reviews := product.NewReviewService(reviewRepo, productRepo, orders, s.log).WithCatalog(products)
	orders.WithCatalog(products)
	carts := cart.NewService(postgres.NewCartRepository(db), productRepo, cart.PolicyFromConfig(cfg), s.log)
	coupons := coupon.NewService(postgres.NewCouponRepository(db), time.Now)
	checkouts := checkout.NewService(
		postgres.NewCheckoutStore(db),
		coupons,
		checkout.PolicyFromConfig(cfg),
		cfg.Store.DefaultPaymentMethod,
		s.log,
	).WithCatalog(products)

	h := &routes.Handlers{
		Auth:      handlers.NewAuthHandler(users),
		Profile:   handlers.NewProfileHandler(users),
		Product:   handlers.NewProductHandler(products),
		Category:  handlers.NewCategoryHandler(categories, banner.NewService(postgres.NewBannerRepository(db))),
		Cart:      handlers.NewCartHandler(carts),
		Checkout:  handlers.NewCheckoutHandler(checkouts, coupons),
		Order:     handlers.NewOrderHandler(orders),
		Invoice:   handlers.NewInvoiceHandler(orders, pdf.NewService(cfg)),
		Review:    handlers.NewReviewHandler(reviews),
		Wishlist:  handlers.NewWishlistHandler(wishlists),
		Analytics: handlers.NewAnalyticsHandler(analytics.NewService(postgres.NewAnalyticsRepository(db))),
	}

	return h, users.JWTManager()
}

// healthCheck reports 503 when the database or Redis does not answer
func (s *Server) healthCheck(c *gin.Context) {
	for name, check := range s.checks {
		if err := check.Health(c.Request.Context()); err != nil {
			s.log.WithError(err).WithField("dependency", name).Warn("health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  name + " ping failed",
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"version":     s.config.App.Version,
		"environment": s.config.App.Environment,
	})
}

// readinessCheck handles readiness check requests
func (s *Server) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	})
}
