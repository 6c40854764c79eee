// internal/domain/order/service.go
package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
	"github.com/your-org/storefront-backend/internal/pkg/pagination"
)

var (
	ErrOrderNotFound    = apperror.NotFound("order not found")
	ErrNotCancellable   = apperror.FailedPrecondition("order_not_cancellable", "order can only be cancelled while pending or confirmed")
	ErrNothingToUpdate  = apperror.InvalidArgument("at least one of status, tracking_number or payment_status is required")
	ErrInvalidStatus    = apperror.InvalidArgument("invalid order status")
	ErrInvalidPayStatus = apperror.InvalidArgument("invalid payment status")
)

// Repository is the order store
type Repository interface {
	ListForUser(ctx context.Context, userID uint, filter UserListFilter) ([]Order, int64, error)
	// FindForUser returns an order with items when it belongs to userID.
	FindForUser(ctx context.Context, userID, orderID uint) (*Order, error)
	List(ctx context.Context, filter AdminListFilter) ([]Order, int64, error)
	FindByID(ctx context.Context, orderID uint) (*Order, error)
	// InTx runs fn in a transaction that commits when fn returns nil.
	InTx(ctx context.Context, fn func(tx TxRepository) error) error
}

// TxRepository holds the writes made while an order row is locked
type TxRepository interface {
	// LockForUpdate loads the order with its items and holds a row lock until commit.
	LockForUpdate(ctx context.Context, orderID uint) (*Order, error)
	// Update writes the order header columns.
	Update(ctx context.Context, o *Order) error
	// RestoreStock returns each item's quantity to its variant, or product when no variant was bought.
	RestoreStock(ctx context.Context, items []OrderItem) error
	AddHistory(ctx context.Context, h *StatusHistory) error
}

// UserListFilter represents a customer's order list query
type UserListFilter struct {
	pagination.Params
	Status OrderStatus `form:"status"`
}

// AdminListFilter represents the back-office order list query
type AdminListFilter struct {
	pagination.Params
	Status OrderStatus `form:"status"`
	Search string      `form:"search"`
}

// ListResponse represents a page of orders
type ListResponse struct {
	Orders     []Order               `json:"orders"`
	Pagination pagination.Pagination `json:"pagination"`
}

// CancelRequest carries an optional cancellation reason
type CancelRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// AdminUpdateRequest represents a back-office order update. At least one field is required.
type AdminUpdateRequest struct {
	Status         *OrderStatus   `json:"status"`
	PaymentStatus  *PaymentStatus `json:"payment_status"`
	TrackingNumber *string        `json:"tracking_number" binding:"omitempty,max=100"`
	Note           string         `json:"note" binding:"max=500"`
}

// CatalogCache is told when cancelled orders put stock back
type CatalogCache interface {
	InvalidateHighlights(ctx context.Context)
}

// Service handles order business logic after checkout
type Service struct {
	orders  Repository
	catalog CatalogCache
	log     logrus.FieldLogger
	now     func() time.Time
}

// NewService creates a new order service
func NewService(orders Repository, log logrus.FieldLogger) *Service {
	return &Service{
		orders: orders,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithCatalog makes cancellations invalidate the cached product lists
func (s *Service) WithCatalog(catalog CatalogCache) *Service {
	s.catalog = catalog
	return s
}

// ListForUser returns the user's orders newest first
func (s *Service) ListForUser(ctx context.Context, userID uint, filter UserListFilter) (*ListResponse, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, ErrInvalidStatus
	}
	filter.Params = filter.Params.Normalize(10, 50)

	orders, total, err := s.orders.ListForUser(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}

	return &ListResponse{Orders: orders, Pagination: pagination.New(filter.Params, total)}, nil
}

// Get returns one of the user's orders with its items
func (s *Service) Get(ctx context.Context, userID, orderID uint) (*Order, error) {
	o, err := s.orders.FindForUser(ctx, userID, orderID)
	if err != nil {
		if apperror.IsKind(err, apperror.KindNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}
	return o, nil
}

// Cancel cancels one of the user's orders while it is pending or confirmed,
// restoring stock for every item in the same transaction.
func (s *Service) Cancel(ctx context.Context, userID, orderID uint, reason string) (*Order, error) {
	var cancelled *Order

	err := s.orders.InTx(ctx, func(tx TxRepository) error {
		o, err := tx.LockForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o.UserID != userID {
			return ErrOrderNotFound
		}
		if !o.CanBeCancelledByUser() {
			return ErrNotCancellable
		}

		note := strings.TrimSpace(reason)
		if note == "" {
			note = "cancelled by customer"
		}
		if err := s.cancelLocked(ctx, tx, o, note, userID); err != nil {
			return err
		}

		cancelled = o
		return nil
	})
	if err != nil {
		return nil, s.mapNotFound(err)
	}
	s.stockChanged(ctx)

	s.log.WithFields(logrus.Fields{
		"order_id":     cancelled.ID,
		"order_number": cancelled.OrderNumber,
		"user_id":      userID,
	}).Info("order cancelled by customer")

	return cancelled, nil
}

// AdminList returns all orders newest first
func (s *Service) AdminList(ctx context.Context, filter AdminListFilter) (*ListResponse, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, ErrInvalidStatus
	}
	filter.Params = filter.Params.Normalize(20, 100)
	filter.Search = strings.TrimSpace(filter.Search)

	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}

	return &ListResponse{Orders: orders, Pagination: pagination.New(filter.Params, total)}, nil
}

// AdminUpdate changes status, payment status and tracking number. Status
// changes follow the transition table; cancelling restores stock.
func (s *Service) AdminUpdate(ctx context.Context, adminID, orderID uint, req *AdminUpdateRequest) (*Order, error) {
	if req.Status == nil && req.PaymentStatus == nil && req.TrackingNumber == nil {
		return nil, ErrNothingToUpdate
	}
	if req.Status != nil && !req.Status.IsValid() {
		return nil, ErrInvalidStatus
	}
	if req.PaymentStatus != nil && !req.PaymentStatus.IsValid() {
		return nil, ErrInvalidPayStatus
	}

	var updated *Order
	var from OrderStatus

	err := s.orders.InTx(ctx, func(tx TxRepository) error {
		o, err := tx.LockForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		from = o.Status

		if req.PaymentStatus != nil {
			o.PaymentStatus = *req.PaymentStatus
		}
		if req.TrackingNumber != nil {
			tracking := strings.TrimSpace(*req.TrackingNumber)
			if tracking == "" {
				o.TrackingNumber = nil
			} else {
				o.TrackingNumber = &tracking
			}
		}

		if req.Status != nil {
			if *req.Status == OrderStatusCancelled {
				if err := s.cancelLocked(ctx, tx, o, req.Note, adminID); err != nil {
					return err
				}
				updated = o
				return nil
			}

			if err := o.Transition(*req.Status, s.now()); err != nil {
				return err
			}
			if err := tx.AddHistory(ctx, &StatusHistory{
				OrderID:   o.ID,
				Status:    o.Status,
				Note:      req.Note,
				ChangedBy: &adminID,
				CreatedAt: s.now(),
			}); err != nil {
				return fmt.Errorf("failed to create status history: %w", err)
			}
		}

		if err := tx.Update(ctx, o); err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}

		updated = o
		return nil
	})
	if err != nil {
		return nil, s.mapNotFound(err)
	}
	if updated.Status == OrderStatusCancelled && from != OrderStatusCancelled {
		s.stockChanged(ctx)
	}

	s.log.WithFields(logrus.Fields{
		"order_id":       updated.ID,
		"order_number":   updated.OrderNumber,
		"from_status":    from,
		"to_status":      updated.Status,
		"payment_status": updated.PaymentStatus,
		"admin_id":       adminID,
	}).Info("order updated")

	return updated, nil
}

// OwnedOrderStatus reports the status of an order if it belongs to userID
func (s *Service) OwnedOrderStatus(ctx context.Context, orderID, userID uint) (string, bool, error) {
	o, err := s.orders.FindForUser(ctx, userID, orderID)
	if err != nil {
		if apperror.IsKind(err, apperror.KindNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(o.Status), true, nil
}

// cancelLocked restores stock, stamps the cancellation and writes history for
// an order already locked by tx.
func (s *Service) cancelLocked(ctx context.Context, tx TxRepository, o *Order, note string, actor uint) error {
	now := s.now()
	if err := o.Transition(OrderStatusCancelled, now); err != nil {
		return err
	}

	if err := tx.RestoreStock(ctx, o.Items); err != nil {
		return fmt.Errorf("failed to restore stock: %w", err)
	}
	if err := tx.Update(ctx, o); err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if err := tx.AddHistory(ctx, &StatusHistory{
		OrderID:   o.ID,
		Status:    OrderStatusCancelled,
		Note:      note,
		ChangedBy: &actor,
		CreatedAt: now,
	}); err != nil {
		return fmt.Errorf("failed to create status history: %w", err)
	}
	return nil
}

func (s *Service) stockChanged(ctx context.Context) {
	if s.catalog != nil {
		s.catalog.InvalidateHighlights(ctx)
	}
}

func (s *Service) mapNotFound(err error) error {
	if apperror.IsKind(err, apperror.KindNotFound) {
		return ErrOrderNotFound
	}
	return err
}
