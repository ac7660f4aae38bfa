package orderControllers

import (
	"context"
	"errors"

	"github.com/devclub-nstru/tryyel-backend/apperr"
	cartControllers "github.com/devclub-nstru/tryyel-backend/controllers/cart"
	"github.com/devclub-nstru/tryyel-backend/database"
	"github.com/devclub-nstru/tryyel-backend/events"
	"github.com/devclub-nstru/tryyel-backend/inventory"
	"github.com/devclub-nstru/tryyel-backend/logging"
	"github.com/devclub-nstru/tryyel-backend/metrics"
	"github.com/devclub-nstru/tryyel-backend/models"
	"github.com/devclub-nstru/tryyel-backend/response"
	"gorm.io/gorm"
)

// CartInvalidator drops any cached view of a user's cart.
type CartInvalidator interface {
	Invalidate(ctx context.Context, userID string)
}

type nopCarts struct{}

func (nopCarts) Invalidate(context.Context, string) {}

type Service struct {
	db       *gorm.DB
	events   events.Publisher
	metrics  *metrics.ServerMetrics
	carts    CartInvalidator
	currency string
}

func NewService(db *gorm.DB, pub events.Publisher, m *metrics.ServerMetrics, carts CartInvalidator, currency string) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	if carts == nil {
		carts = nopCarts{}
	}
	return &Service{db: db, events: pub, metrics: m, carts: carts, currency: currency}
}

type OrderPage struct {
	Orders     []models.Order `json:"orders"`
	Pagination PageInfo       `json:"pagination"`
}

type PageInfo struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalOrders int64 `json:"totalOrders"`
	HasMore     bool  `json:"hasMore"`
}

// PlaceOrder turns the user's cart into a cash-on-delivery order. Stock is
// decremented, the order is written and the cart is emptied in one
// transaction. A repeated idempotency key returns the earlier order.
func (s *Service) PlaceOrder(ctx context.Context, userID string, addressID uint, key *string) (*models.Order, error) {
	var (
		order  models.Order
		replay bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		draft, err := Checkout(tx, CheckoutRequest{UserID: userID, AddressID: addressID, IdempotencyKey: key, LockStock: true})
		if err != nil {
			return err
		}
		if draft.Existing != nil {
			if draft.Existing.PaymentMethod != models.PaymentMethodCOD {
				return apperr.Conflict("Idempotency-Key was already used for another checkout")
			}
			order, replay = *draft.Existing, true
			return nil
		}

		for _, l := range draft.Lines {
			if err := inventory.Decrement(tx, l.Line, l.Unit.Product.Name); err != nil {
				return err
			}
		}

		order = draft.NewOrder(userID, models.PaymentMethodCOD, s.currency, key)
		order.StockReserved = true
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		return cartControllers.ClearItems(tx, userID)
	})
	if err != nil {
		return nil, apperr.From(err, "order.place")
	}
	if replay {
		return &order, nil
	}

	s.carts.Invalidate(ctx, userID)
	s.notify(ctx, events.OrderPlaced, &order, "")
	logging.Info("order placed", logging.Fields{Op: "order.place", UserID: userID, OrderID: order.ID})
	return &order, nil
}

// CancelOrder cancels the caller's order while it is still PENDING.
func (s *Service) CancelOrder(ctx context.Context, userID string, orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := database.ForUpdate(tx).Where("id = ? AND user_id = ?", orderID, userID).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("order not found")
			}
			return err
		}
		if order.Status != models.OrderStatusPending {
			return apperr.Conflict("only pending orders can be cancelled (current status: %s)", order.Status)
		}
		return Transition(tx, &order, models.OrderStatusCancelled)
	})
	if err != nil {
		return nil, apperr.From(err, "order.cancel")
	}

	s.notify(ctx, events.OrderCancelled, &order, models.OrderStatusPending)
	return &order, nil
}

// GetOrderByID returns the caller's order with items, address, history and
// whether each item's product has been reviewed by the caller.
func (s *Service) GetOrderByID(ctx context.Context, userID string, orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items", orderByID("order_items")).
		Preload("Items.Product", unscoped).
		Preload("Items.Product.Images").
		Preload("Address", unscoped).
		Preload("History", orderByID("order_status_histories")).
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("order not found")
		}
		return nil, apperr.From(err, "order.get")
	}

	productIDs := make([]uint, 0, len(order.Items))
	for _, it := range order.Items {
		productIDs = append(productIDs, it.ProductID)
	}
	var reviewed []uint
	if len(productIDs) > 0 {
		err := s.db.WithContext(ctx).Model(&models.Review{}).
			Where("user_id = ? AND product_id IN ?", userID, productIDs).
			Pluck("product_id", &reviewed).Error
		if err != nil {
			return nil, apperr.From(err, "order.get")
		}
	}
	seen := make(map[uint]bool, len(reviewed))
	for _, id := range reviewed {
		seen[id] = true
	}
	for i := range order.Items {
		order.Items[i].IsReviewed = seen[order.Items[i].ProductID]
	}
	return &order, nil
}

// GetUserOrders lists the caller's orders, newest first.
func (s *Service) GetUserOrders(ctx context.Context, userID string, page, limit int) (*OrderPage, error) {
	q := s.db.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID)
	return s.page(q, page, limit, "order.list")
}

// ListOrders is the admin view over all orders, optionally narrowed to one status.
func (s *Service) ListOrders(ctx context.Context, page, limit int, status string) (*OrderPage, error) {
	q := s.db.WithContext(ctx).Model(&models.Order{})
	if status != "" {
		st, ok := models.ParseOrderStatus(status)
		if !ok {
			return nil, apperr.Validation("invalid order status %q", status)
		}
		q = q.Where("status = ?", st)
	}
	return s.page(q, page, limit, "order.admin_list")
}

func (s *Service) page(q *gorm.DB, page, limit int, op string) (*OrderPage, error) {
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, apperr.From(err, op)
	}

	orders := []models.Order{}
	err := q.Preload("Items", orderByID("order_items")).
		Preload("Items.Product", unscoped).
		Preload("Address", unscoped).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&orders).Error
	if err != nil {
		return nil, apperr.From(err, op)
	}

	p := response.NewPagination(page, limit, total)
	return &OrderPage{
		Orders: orders,
		Pagination: PageInfo{
			CurrentPage: p.CurrentPage,
			TotalPages:  p.TotalPages,
			TotalOrders: total,
			HasMore:     p.HasMore,
		},
	}, nil
}

// UpdateOrderStatus applies an admin status change along the allowed graph.
// Online orders only become CONFIRMED through payment verification.
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID uint, status string) (*models.Order, error) {
	next, ok := models.ParseOrderStatus(status)
	if !ok {
		return nil, apperr.Validation("invalid order status %q", status)
	}

	var (
		order models.Order
		old   models.OrderStatus
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := database.ForUpdate(tx).First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("order not found")
			}
			return err
		}
		if next == models.OrderStatusConfirmed && order.PaymentMethod == models.PaymentMethodOnline && order.PaymentID == nil {
			return apperr.Conflict("online orders are confirmed by payment verification")
		}
		if next == models.OrderStatusConfirmed && order.RefundDue {
			return apperr.Conflict("order is flagged for refund")
		}
		old = order.Status
		return Transition(tx, &order, next)
	})
	if err != nil {
		return nil, apperr.From(err, "order.update_status")
	}

	s.notify(ctx, eventFor(next), &order, old)
	return &order, nil
}

func (s *Service) notify(ctx context.Context, t events.Type, o *models.Order, old models.OrderStatus) {
	s.metrics.OrderTransition(string(o.Status))
	s.events.Publish(ctx, events.ForOrder(t, o, old))
}

func eventFor(status models.OrderStatus) events.Type {
	switch status {
	case models.OrderStatusConfirmed:
		return events.OrderConfirmed
	case models.OrderStatusCancelled:
		return events.OrderCancelled
	default:
		return events.OrderStatusChanged
	}
}

func unscoped(db *gorm.DB) *gorm.DB { return db.Unscoped() }

func orderByID(table string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB { return db.Order(table + ".id") }
}
