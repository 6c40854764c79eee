// internal/domain/banner/service.go
package banner

import (
	"context"
	"fmt"
)

// Service handles banner reads
type Service struct {
	banners Repository
}

// NewService creates a new banner service
func NewService(banners Repository) *Service {
	return &Service{banners: banners}
}

// List returns the active banners in display order
func (s *Service) List(ctx context.Context) ([]Banner, error) {
	banners, err := s.banners.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve banners: %w", err)
	}
	if banners == nil {
		banners = []Banner{}
	}
	return banners, nil
}
