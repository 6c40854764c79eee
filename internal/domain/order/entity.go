// internal/domain/order/entity.go
package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// OrderStatus represents the order status
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

// IsValid reports whether s is a known order status
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

// PaymentStatus represents payment status
type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "unpaid"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// IsValid reports whether s is a known payment status
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusUnpaid, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// Order represents the order entity. Its items are a snapshot taken at
// checkout and never change afterwards.
type Order struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	OrderNumber   string        `gorm:"uniqueIndex;not null;size:50" json:"order_number"`
	UserID        uint          `gorm:"not null;index" json:"user_id"`
	Status        OrderStatus   `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null;default:'unpaid'" json:"payment_status"`
	PaymentMethod string        `gorm:"not null;size:50" json:"payment_method"`

	// Financial Information, whole rupiah
	Subtotal     int64 `gorm:"not null" json:"subtotal"`
	ShippingCost int64 `gorm:"not null;default:0" json:"shipping_cost"`
	Discount     int64 `gorm:"not null;default:0" json:"discount"`
	Tax          int64 `gorm:"not null;default:0" json:"tax"`
	Total        int64 `gorm:"not null" json:"total"`

	CouponID   *uint  `gorm:"index" json:"coupon_id,omitempty"`
	CouponCode string `gorm:"size:50" json:"coupon_code,omitempty"`

	ShippingAddress Address `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`
	Notes           string  `gorm:"type:text" json:"notes"`
	TrackingNumber  *string `gorm:"size:100" json:"tracking_number"`

	// Timestamps
	ShippedAt   *time.Time `json:"shipped_at"`
	DeliveredAt *time.Time `json:"delivered_at"`
	CancelledAt *time.Time `json:"cancelled_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Relationships
	Items         []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
	StatusHistory []StatusHistory `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"status_history,omitempty"`
}

// OrderItem is a denormalised snapshot of a purchased line
type OrderItem struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	OrderID      uint      `gorm:"not null;index" json:"order_id"`
	ProductID    uint      `gorm:"not null;index" json:"product_id"`
	VariantID    *uint     `gorm:"index" json:"variant_id"`
	ProductName  string    `gorm:"not null;size:255" json:"product_name"`
	ProductImage *string   `gorm:"size:500" json:"product_image"`
	VariantName  *string   `gorm:"size:255" json:"variant_name"`
	Price        int64     `gorm:"not null" json:"price"`
	Quantity     int       `gorm:"not null" json:"quantity"`
	Subtotal     int64     `gorm:"not null" json:"subtotal"`
	CreatedAt    time.Time `json:"created_at"`
}

// StatusHistory tracks order status changes
type StatusHistory struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	OrderID   uint        `gorm:"not null;index" json:"order_id"`
	Status    OrderStatus `gorm:"type:varchar(20);not null" json:"status"`
	Note      string      `gorm:"type:text" json:"note"`
	ChangedBy *uint       `json:"changed_by"`
	CreatedAt time.Time   `json:"created_at"`
}

// Address is the shipping address embedded in an order
type Address struct {
	RecipientName string `gorm:"size:255" json:"recipient_name"`
	Phone         string `gorm:"size:30" json:"phone"`
	Street        string `gorm:"size:500" json:"street"`
	City          string `gorm:"size:100" json:"city"`
	Province      string `gorm:"size:100" json:"province"`
	PostalCode    string `gorm:"size:20" json:"postal_code"`
}

// TableName overrides
func (Order) TableName() string         { return "orders" }
func (OrderItem) TableName() string     { return "order_items" }
func (StatusHistory) TableName() string { return "order_status_history" }

// Normalize trims every field
func (a Address) Normalize() Address {
	return Address{
		RecipientName: strings.TrimSpace(a.RecipientName),
		Phone:         strings.TrimSpace(a.Phone),
		Street:        strings.TrimSpace(a.Street),
		City:          strings.TrimSpace(a.City),
		Province:      strings.TrimSpace(a.Province),
		PostalCode:    strings.TrimSpace(a.PostalCode),
	}
}

// MissingFields lists the required fields that are blank. The postal code is optional.
func (a Address) MissingFields() []string {
	a = a.Normalize()
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"recipient_name", a.RecipientName},
		{"phone", a.Phone},
		{"street", a.Street},
		{"city", a.City},
		{"province", a.Province},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// CanBeCancelledByUser checks if the customer may still cancel the order
func (o *Order) CanBeCancelledByUser() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusConfirmed
}

// ItemCount is the total quantity across all items
func (o *Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// NewOrderNumber formats an order number as ORD-YYYYMMDD-XXXXXXXX, the suffix
// being the first 8 hex digits of id in upper case.
func NewOrderNumber(now time.Time, id uuid.UUID) string {
	suffix := strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), suffix)
}
