package paymentControllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/devclub-nstru/tryyel-backend/apperr"
	orderControllers "github.com/devclub-nstru/tryyel-backend/controllers/order"
	"github.com/devclub-nstru/tryyel-backend/database"
	"github.com/devclub-nstru/tryyel-backend/events"
	"github.com/devclub-nstru/tryyel-backend/logging"
	"github.com/devclub-nstru/tryyel-backend/metrics"
	"github.com/devclub-nstru/tryyel-backend/models"
	"github.com/devclub-nstru/tryyel-backend/payment"
	"github.com/devclub-nstru/tryyel-backend/pricing"
	"gorm.io/gorm"
)

// CartClearer empties a user's cart once its order is paid.
type CartClearer interface {
	ClearCart(ctx context.Context, userID string) error
}

type Service struct {
	db       *gorm.DB
	gateway  payment.Gateway
	secret   string
	currency string
	carts    CartClearer
	events   events.Publisher
	metrics  *metrics.ServerMetrics
}

func NewService(db *gorm.DB, gw payment.Gateway, secret, currency string, carts CartClearer, pub events.Publisher, m *metrics.ServerMetrics) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Service{db: db, gateway: gw, secret: secret, currency: currency, carts: carts, events: pub, metrics: m}
}

// Intent is what the storefront needs to open the gateway's checkout.
type Intent struct {
	OrderID        uint   `json:"orderId"`
	GatewayOrderID string `json:"gatewayOrderId"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	KeyID          string `json:"keyId"`
}

type VerifyInput struct {
	OrderID    uint
	IntentID   string
	PaymentRef string
	Signature  string
}

type VerifyResult struct {
	Order       models.Order       `json:"order"`
	Transaction models.Transaction `json:"transaction"`
	Replayed    bool               `json:"-"`
}

// CreatePaymentIntent validates the cart like a normal checkout and records
// a PENDING online order without touching stock, then asks the gateway for a
// payment intent. If the gateway fails the order is cancelled again.
func (s *Service) CreatePaymentIntent(ctx context.Context, userID string, addressID uint, key *string) (*Intent, error) {
	var (
		order  models.Order
		replay bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		draft, err := orderControllers.Checkout(tx, orderControllers.CheckoutRequest{UserID: userID, AddressID: addressID, IdempotencyKey: key})
		if err != nil {
			return err
		}
		if draft.Existing != nil {
			order, replay = *draft.Existing, true
			return nil
		}
		if !draft.Total.IsPositive() {
			return apperr.Validation("order amount must be greater than 0")
		}

		order = draft.NewOrder(userID, models.PaymentMethodOnline, s.currency, key)
		return tx.Create(&order).Error
	})
	if err != nil {
		return nil, apperr.From(err, "payment.create_intent")
	}

	if replay {
		if order.PaymentMethod != models.PaymentMethodOnline || order.GatewayOrderID == nil || order.Status != models.OrderStatusPending {
			return nil, apperr.Conflict("Idempotency-Key was already used for another checkout")
		}
		return s.intent(&order, *order.GatewayOrderID), nil
	}

	gw, err := s.gateway.CreateOrder(ctx, pricing.MinorUnits(order.Total), order.Currency, fmt.Sprintf("order_%d", order.ID))
	if err == nil {
		err = s.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", order.ID).Update("gateway_order_id", gw.ID).Error
	}
	if err != nil {
		s.compensate(ctx, &order, err)
		return nil, gatewayError(err)
	}

	order.GatewayOrderID = &gw.ID
	s.metrics.OrderTransition(string(order.Status))
	s.events.Publish(ctx, events.ForOrder(events.OrderPlaced, &order, ""))
	return s.intent(&order, gw.ID), nil
}

func (s *Service) intent(o *models.Order, gatewayID string) *Intent {
	return &Intent{
		OrderID:        o.ID,
		GatewayOrderID: gatewayID,
		Amount:         pricing.MinorUnits(o.Total),
		Currency:       o.Currency,
		KeyID:          s.gateway.KeyID(),
	}
}

// compensate cancels an order whose payment intent could not be opened.
func (s *Service) compensate(ctx context.Context, o *models.Order, cause error) {
	ctx = context.WithoutCancel(ctx)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked models.Order
		if err := database.ForUpdate(tx).First(&locked, o.ID).Error; err != nil {
			return err
		}
		if err := orderControllers.Transition(tx, &locked, models.OrderStatusCancelled); err != nil {
			return err
		}
		*o = locked
		return nil
	})
	fields := logging.Fields{Op: "payment.create_intent", UserID: o.UserID, OrderID: o.ID, Error: cause.Error()}
	if err != nil {
		logging.Error("compensating cancel failed", err, fields)
		return
	}
	logging.Warn("payment intent failed, order cancelled", fields)
	s.events.Publish(ctx, events.ForOrder(events.OrderCancelled, o, models.OrderStatusPending))
}

func gatewayError(err error) error {
	e := apperr.Internal(err, "payment.create_intent")
	var gwErr *payment.GatewayError
	if errors.As(err, &gwErr) && gwErr.StatusCode < http.StatusInternalServerError {
		e.Retryable = false
	}
	return e
}

// VerifyPayment confirms a PENDING online order from the gateway's signed
// callback: it records the transaction, confirms the order and takes the
// stock in one transaction. Repeating a verified call returns the stored
// result without writing again.
//
// Once the signature and the order match, the transaction is always kept. An
// order that was cancelled meanwhile, or whose stock is gone, is flagged
// RefundDue and a Reconciliation error is returned.
func (s *Service) VerifyPayment(ctx context.Context, userID string, in VerifyInput) (*VerifyResult, error) {
	if in.OrderID == 0 || in.IntentID == "" || in.PaymentRef == "" || in.Signature == "" {
		return nil, apperr.Validation("missing required payment verification fields")
	}
	if !payment.VerifySignature(s.secret, in.IntentID, in.PaymentRef, in.Signature) {
		return nil, apperr.Authentication("invalid payment signature")
	}

	var (
		res         VerifyResult
		unfulfilled error
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		o := &res.Order
		if err := database.ForUpdate(tx).Where("id = ? AND user_id = ?", in.OrderID, userID).First(o).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("order not found")
			}
			return err
		}
		if o.GatewayOrderID == nil || *o.GatewayOrderID != in.IntentID {
			return apperr.Authentication("invalid payment signature")
		}

		if o.PaymentID != nil {
			err := tx.Where("id = ? AND gateway_payment_id = ?", *o.PaymentID, in.PaymentRef).First(&res.Transaction).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Conflict("order already has a recorded payment")
			}
			if err != nil {
				return err
			}
			res.Replayed = true
			if o.RefundDue {
				unfulfilled = refundDue(o, "it could not be fulfilled")
			}
			return nil
		}

		res.Transaction = models.Transaction{
			OrderID:          o.ID,
			UserID:           userID,
			Amount:           o.Total,
			Currency:         o.Currency,
			GatewayOrderID:   in.IntentID,
			GatewayPaymentID: in.PaymentRef,
			PaymentStatus:    true,
			Date:             time.Now(),
		}
		if err := tx.Create(&res.Transaction).Error; err != nil {
			return err
		}
		o.PaymentID = &res.Transaction.ID

		if o.Status != models.OrderStatusPending {
			unfulfilled = refundDue(o, fmt.Sprintf("it is %s", o.Status))
			return flagRefund(tx, o)
		}
		err := tx.Transaction(func(sp *gorm.DB) error {
			if err := orderControllers.ReserveStock(sp, o); err != nil {
				return err
			}
			return orderControllers.Transition(sp, o, models.OrderStatusConfirmed)
		})
		if apperr.Is(err, apperr.KindInsufficientStock) {
			o.StockReserved = false
			unfulfilled = refundDue(o, err.Error())
			return flagRefund(tx, o)
		}
		return err
	})
	if err != nil {
		return nil, apperr.From(err, "payment.verify")
	}
	if unfulfilled != nil {
		if !res.Replayed {
			logging.Error("payment captured for an unfulfillable order", unfulfilled, logging.Fields{Op: "payment.verify", UserID: userID, OrderID: res.Order.ID})
			s.events.Publish(ctx, events.ForOrder(events.OrderRefundDue, &res.Order, ""))
		}
		return nil, unfulfilled
	}
	if res.Replayed {
		return &res, nil
	}

	if err := s.carts.ClearCart(ctx, userID); err != nil {
		logging.Error("clear cart after payment failed", err, logging.Fields{Op: "payment.verify", UserID: userID, OrderID: res.Order.ID})
	}
	s.metrics.OrderTransition(string(res.Order.Status))
	s.events.Publish(ctx, events.ForOrder(events.OrderConfirmed, &res.Order, models.OrderStatusPending))
	logging.Info("payment verified", logging.Fields{Op: "payment.verify", UserID: userID, OrderID: res.Order.ID})
	return &res, nil
}

func refundDue(o *models.Order, reason string) error {
	return apperr.Reconciliation("payment recorded for order %d but %s; it is flagged for refund", o.ID, reason)
}

func flagRefund(tx *gorm.DB, o *models.Order) error {
	o.RefundDue = true
	return tx.Model(&models.Order{}).Where("id = ?", o.ID).Updates(map[string]any{
		"payment_id": o.PaymentID,
		"refund_due": true,
	}).Error
}
