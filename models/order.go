package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string
type PaymentMethod string

const (
	OrderStatusPending   OrderStatus = "PENDING"   // Order placed, awaiting payment or confirmation
	OrderStatusConfirmed OrderStatus = "CONFIRMED" // Paid or accepted
	OrderStatusPacked    OrderStatus = "PACKED"    // Packed and ready for dispatch
	OrderStatusShipped   OrderStatus = "SHIPPED"   // Out for delivery
	OrderStatusDelivered OrderStatus = "DELIVERED" // Customer received the items
	OrderStatusCancelled OrderStatus = "CANCELLED" // Cancelled before shipping

	PaymentMethodCOD    PaymentMethod = "cod"
	PaymentMethodOnline PaymentMethod = "online"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusPacked, OrderStatusCancelled},
	OrderStatusPacked:    {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:   {OrderStatusDelivered},
	OrderStatusDelivered: {},
	OrderStatusCancelled: {},
}

// ParseOrderStatus accepts any letter case and reports whether s names a known status.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	st := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := orderTransitions[st]
	return st, ok
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Order struct {
	ID             uint                 `gorm:"primaryKey" json:"id"`
	UserID         string               `gorm:"size:128;not null;index;uniqueIndex:idx_order_idempotency" json:"userId"`
	AddressID      uint                 `gorm:"not null" json:"addressId"`
	Address        *Address             `json:"address,omitempty"`
	Status         OrderStatus          `gorm:"size:20;not null;index" json:"status"`
	Total          decimal.Decimal      `gorm:"type:numeric(12,2);not null" json:"total"`
	Currency       string               `gorm:"size:3;not null" json:"currency"`
	PaymentMethod  PaymentMethod        `gorm:"size:20;not null" json:"paymentMethod"`
	PaymentID      *uint                `json:"paymentId"`
	GatewayOrderID *string              `gorm:"size:64;uniqueIndex" json:"gatewayOrderId,omitempty"`
	IdempotencyKey *string              `gorm:"size:128;uniqueIndex:idx_order_idempotency" json:"-"`
	StockReserved  bool                 `gorm:"not null" json:"-"` // stock currently decremented on this order's behalf
	// RefundDue marks a paid order that could not be fulfilled.
	RefundDue      bool                 `gorm:"not null;default:false;index" json:"refundDue"`
	Items          []OrderItem          `gorm:"foreignKey:OrderID" json:"items"`
	History        []OrderStatusHistory `gorm:"foreignKey:OrderID" json:"history,omitempty"`
	CreatedAt      time.Time            `json:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt"`
}

// OrderItem snapshots what was bought. The variant ids are kept without foreign
// keys so a cancelled order still knows which unit it drew from.
type OrderItem struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	OrderID        uint            `gorm:"not null;index" json:"orderId"`
	ProductID      uint            `gorm:"not null;index" json:"productId"`
	Product        *Product        `json:"product,omitempty"`
	ProductColorID *uint           `json:"productColorId"`
	ProductSizeID  *uint           `json:"productSizeId"`
	ProductName    string          `gorm:"size:255" json:"productName"`
	Color          string          `gorm:"size:50" json:"color,omitempty"`
	Size           string          `gorm:"size:20" json:"size,omitempty"`
	Quantity       int             `gorm:"not null" json:"quantity"`
	Price          decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	IsReviewed     bool            `gorm:"-" json:"isReviewed"`
}

// OrderStatusHistory is append-only. OldStatus is nil for the creation row.
type OrderStatusHistory struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	OrderID   uint         `gorm:"not null;index" json:"orderId"`
	OldStatus *OrderStatus `gorm:"size:20" json:"oldStatus"`
	NewStatus OrderStatus  `gorm:"size:20;not null" json:"newStatus"`
	CreatedAt time.Time    `json:"createdAt"`
}

// Transaction records a successful external payment, 1:1 with its order.
type Transaction struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	OrderID          uint            `gorm:"not null;uniqueIndex" json:"orderId"`
	UserID           string          `gorm:"size:128;not null;index" json:"userId"`
	Amount           decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Currency         string          `gorm:"size:3;not null" json:"currency"`
	GatewayOrderID   string          `gorm:"size:64;not null" json:"gatewayOrderId"`
	GatewayPaymentID string          `gorm:"size:64;not null;uniqueIndex" json:"gatewayPaymentId"`
	PaymentStatus    bool            `gorm:"not null" json:"paymentStatus"`
	Date             time.Time       `json:"date"`
}
