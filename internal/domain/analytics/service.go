// internal/domain/analytics/service.go
package analytics

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Repository answers the aggregate queries behind the admin dashboard
type Repository interface {
	// CountOrders counts orders with the given status, or all orders when status is empty.
	CountOrders(ctx context.Context, status string) (int64, error)
	// SumPaidRevenue sums the totals of paid orders.
	SumPaidRevenue(ctx context.Context) (int64, error)
	CountActiveProducts(ctx context.Context) (int64, error)
	// CountLowStockProducts counts active products at or below their restock threshold.
	CountLowStockProducts(ctx context.Context) (int64, error)
	CountUsers(ctx context.Context) (int64, error)
}

// DashboardStats represents overall dashboard statistics
type DashboardStats struct {
	TotalOrders      int64 `json:"total_orders"`
	PendingOrders    int64 `json:"pending_orders"`
	TotalRevenue     int64 `json:"total_revenue"`
	TotalProducts    int64 `json:"total_products"`
	LowStockProducts int64 `json:"low_stock_products"`
	TotalUsers       int64 `json:"total_users"`
}

// Service handles analytics business logic
type Service struct {
	stats Repository
}

// NewService creates a new analytics service
func NewService(stats Repository) *Service {
	return &Service{stats: stats}
}

// Dashboard collects the headline numbers for the admin dashboard. The
// queries are independent and run concurrently; the first failure cancels the rest.
func (s *Service) Dashboard(ctx context.Context) (*DashboardStats, error) {
	var out DashboardStats
	g, ctx := errgroup.WithContext(ctx)

	count := func(dst *int64, what string, fn func(context.Context) (int64, error)) {
		g.Go(func() error {
			n, err := fn(ctx)
			if err != nil {
				return fmt.Errorf("failed to count %s: %w", what, err)
			}
			*dst = n
			return nil
		})
	}

	count(&out.TotalOrders, "orders", func(ctx context.Context) (int64, error) {
		return s.stats.CountOrders(ctx, "")
	})
	count(&out.PendingOrders, "pending orders", func(ctx context.Context) (int64, error) {
		return s.stats.CountOrders(ctx, "pending")
	})
	count(&out.TotalRevenue, "revenue", s.stats.SumPaidRevenue)
	count(&out.TotalProducts, "products", s.stats.CountActiveProducts)
	count(&out.LowStockProducts, "low stock products", s.stats.CountLowStockProducts)
	count(&out.TotalUsers, "users", s.stats.CountUsers)

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}
