// internal/interfaces/http/handlers/analytics.go
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/domain/analytics"
)

// DashboardService provides the admin dashboard numbers
type DashboardService interface {
	Dashboard(ctx context.Context) (*analytics.DashboardStats, error)
}

// AnalyticsHandler handles admin analytics endpoints
type AnalyticsHandler struct {
	analytics DashboardService
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analytics DashboardService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// GetDashboardStats handles GET /admin/stats
func (h *AnalyticsHandler) GetDashboardStats(c *gin.Context) {
	stats, err := h.analytics.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Dashboard stats retrieved successfully", stats)
}
