// internal/domain/product/review_service.go
package product

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
	"github.com/your-org/storefront-backend/internal/pkg/pagination"
)

const deliveredStatus = "delivered"

var (
	ErrReviewNotFound  = apperror.NotFound("review not found")
	ErrAlreadyReviewed = apperror.Conflict("you have already reviewed this product")
	ErrInvalidRating   = apperror.InvalidArgument("rating must be between 1 and 5")
)

// ReviewService handles review business logic
type ReviewService struct {
	reviews  ReviewRepository
	products Repository
	orders   OrderStatusReader
	catalog  HighlightInvalidator
	log      logrus.FieldLogger
}

// HighlightInvalidator drops cached product lists whose ratings went stale
type HighlightInvalidator interface {
	InvalidateHighlights(ctx context.Context)
}

// NewReviewService creates a new review service
func NewReviewService(reviews ReviewRepository, products Repository, orders OrderStatusReader, log logrus.FieldLogger) *ReviewService {
	return &ReviewService{
		reviews:  reviews,
		products: products,
		orders:   orders,
		log:      log,
	}
}

// Create creates a product review. The review is marked verified only when
// order_id names a delivered order owned by the reviewer.
func (s *ReviewService) Create(ctx context.Context, userID uint, req *CreateReviewRequest) (*Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, ErrInvalidRating
	}

	p, err := s.products.FindByID(ctx, req.ProductID)
	if err != nil {
		if apperror.IsKind(err, apperror.KindNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if !p.IsActive {
		return nil, ErrProductNotFound
	}

	exists, err := s.reviews.Exists(ctx, userID, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing review: %w", err)
	}
	if exists {
		return nil, ErrAlreadyReviewed
	}

	isVerified := false
	if req.OrderID != nil && s.orders != nil {
		status, found, err := s.orders.OwnedOrderStatus(ctx, *req.OrderID, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to verify order: %w", err)
		}
		isVerified = found && status == deliveredStatus
	}

	review := &Review{
		ProductID:  req.ProductID,
		UserID:     userID,
		OrderID:    req.OrderID,
		Rating:     req.Rating,
		Title:      strings.TrimSpace(req.Title),
		Comment:    strings.TrimSpace(req.Comment),
		IsVerified: isVerified,
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		// the unique index still guards a concurrent duplicate
		if apperror.IsKind(err, apperror.KindConflict) {
			return nil, ErrAlreadyReviewed
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	s.ratingChanged(ctx)

	s.log.WithFields(logrus.Fields{
		"review_id":   review.ID,
		"product_id":  review.ProductID,
		"is_verified": review.IsVerified,
	}).Info("review created")

	return review, nil
}

// ListForProduct returns a page of reviews newest first, with the count per star
func (s *ReviewService) ListForProduct(ctx context.Context, productID uint, params pagination.Params) (*ReviewListResponse, error) {
	params = params.Normalize(10, 50)

	reviews, total, err := s.reviews.ListForProduct(ctx, productID, params.Offset(), params.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve reviews: %w", err)
	}

	counts, err := s.reviews.RatingBreakdown(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve rating breakdown: %w", err)
	}

	breakdown := make(map[int]int64, 5)
	for star := 1; star <= 5; star++ {
		breakdown[star] = counts[star]
	}

	return &ReviewListResponse{
		Reviews:         reviews,
		Pagination:      pagination.New(params, total),
		RatingBreakdown: breakdown,
	}, nil
}

// Delete removes a review written by userID. Other users' reviews are reported as missing.
func (s *ReviewService) Delete(ctx context.Context, userID, reviewID uint) error {
	review, err := s.reviews.FindByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if review.UserID != userID {
		return ErrReviewNotFound
	}

	if err := s.reviews.Delete(ctx, review); err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	s.ratingChanged(ctx)
	return nil
}

// WithCatalog makes review writes invalidate the cached product lists
func (s *ReviewService) WithCatalog(catalog HighlightInvalidator) *ReviewService {
	s.catalog = catalog
	return s
}

func (s *ReviewService) ratingChanged(ctx context.Context) {
	if s.catalog != nil {
		s.catalog.InvalidateHighlights(ctx)
	}
}
