// Package events fans committed order changes out to live subscribers.
package events

import (
	"context"
	"time"

	"github.com/devclub-nstru/tryyel-backend/models"
)

type Type string

const (
	OrderPlaced        Type = "order.placed"
	OrderConfirmed     Type = "order.confirmed"
	OrderCancelled     Type = "order.cancelled"
	OrderStatusChanged Type = "order.status_changed"
	OrderRefundDue     Type = "order.refund_due"
)

type Event struct {
	Type      Type      `json:"type"`
	OrderID   uint      `json:"orderId"`
	UserID    string    `json:"userId"`
	OldStatus string    `json:"oldStatus,omitempty"`
	Status    string    `json:"status"`
	Total     string    `json:"total,omitempty"`
	At        time.Time `json:"at"`
}

// Publisher delivers events best-effort. Failures are logged, never returned,
// since events are only emitted after the change has committed.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// Multi publishes to every member in order.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e Event) {
	for _, p := range m {
		p.Publish(ctx, e)
	}
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) {}

// ForOrder describes o after a committed change from old. old is empty for a new order.
func ForOrder(t Type, o *models.Order, old models.OrderStatus) Event {
	return Event{
		Type:      t,
		OrderID:   o.ID,
		UserID:    o.UserID,
		OldStatus: string(old),
		Status:    string(o.Status),
		Total:     o.Total.StringFixed(2),
		At:        time.Now().UTC(),
	}
}
