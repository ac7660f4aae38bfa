package orderControllers

import (
	"errors"

	"github.com/devclub-nstru/tryyel-backend/apperr"
	cartControllers "github.com/devclub-nstru/tryyel-backend/controllers/cart"
	"github.com/devclub-nstru/tryyel-backend/inventory"
	"github.com/devclub-nstru/tryyel-backend/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CheckoutRequest struct {
	UserID         string
	AddressID      uint
	IdempotencyKey *string
	// LockStock holds the stock rows until the transaction ends.
	LockStock bool
}

// Draft is a validated, priced cart. Existing is set instead when the
// idempotency key already produced an order.
type Draft struct {
	Existing *models.Order
	Address  models.Address
	Lines    []DraftLine
	Total    decimal.Decimal
}

type DraftLine struct {
	inventory.Line
	Unit *inventory.Unit
}

// Checkout locks the user's cart and validates it for ordering: the address
// must be the user's, the cart must not be empty, and every line must be
// covered by the current stock of its unit. Prices are read now.
func Checkout(tx *gorm.DB, req CheckoutRequest) (*Draft, error) {
	cart, err := cartControllers.LockCart(tx, req.UserID)
	if err != nil && !apperr.Is(err, apperr.KindNotFound) {
		return nil, err
	}

	if req.IdempotencyKey != nil {
		existing, err := findByIdempotencyKey(tx, req.UserID, *req.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return &Draft{Existing: existing}, nil
		}
	}

	d := &Draft{Total: decimal.Zero}
	if err := tx.Where("id = ? AND user_id = ?", req.AddressID, req.UserID).First(&d.Address).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Validation("address not found")
		}
		return nil, err
	}

	var items []models.CartItem
	if cart != nil {
		if err := tx.Where("cart_id = ?", cart.ID).Find(&items).Error; err != nil {
			return nil, err
		}
	}
	if len(items) == 0 {
		return nil, apperr.Validation("cart is empty")
	}

	lines := make([]inventory.Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, inventory.Line{
			ProductID: it.ProductID,
			ColorID:   it.ProductColorID,
			SizeID:    it.ProductSizeID,
			Quantity:  it.Quantity,
		})
	}
	inventory.Sort(lines)

	for _, l := range lines {
		unit, err := inventory.Resolve(tx, l.ProductID, l.ColorID, l.SizeID, req.LockStock)
		if err != nil {
			return nil, err
		}
		if err := unit.Check(l.Quantity); err != nil {
			return nil, err
		}
		d.Lines = append(d.Lines, DraftLine{Line: l, Unit: unit})
		d.Total = d.Total.Add(unit.Price().Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return d, nil
}

// NewOrder snapshots the draft into a PENDING order with its creation history row.
func (d *Draft) NewOrder(userID string, method models.PaymentMethod, currency string, key *string) models.Order {
	o := models.Order{
		UserID:         userID,
		AddressID:      d.Address.ID,
		Status:         models.OrderStatusPending,
		Total:          d.Total,
		Currency:       currency,
		PaymentMethod:  method,
		IdempotencyKey: key,
		History:        []models.OrderStatusHistory{{NewStatus: models.OrderStatusPending}},
	}
	for _, l := range d.Lines {
		item := models.OrderItem{
			ProductID:      l.ProductID,
			ProductColorID: l.ColorID,
			ProductSizeID:  l.SizeID,
			ProductName:    l.Unit.Product.Name,
			Quantity:       l.Quantity,
			Price:          l.Unit.Price(),
		}
		if l.Unit.Color != nil {
			item.Color = l.Unit.Color.Color
		}
		if l.Unit.Size != nil {
			item.Size = l.Unit.Size.Size
		}
		o.Items = append(o.Items, item)
	}
	return o
}

// Transition moves a locked order to next and appends the history row.
// Cancelling an order that holds stock gives the stock back.
func Transition(tx *gorm.DB, o *models.Order, next models.OrderStatus) error {
	if !o.Status.CanTransitionTo(next) {
		return apperr.Conflict("cannot move order from %s to %s", o.Status, next)
	}
	if next == models.OrderStatusCancelled && o.StockReserved {
		if err := restoreStock(tx, o.ID); err != nil {
			return err
		}
		o.StockReserved = false
	}

	old := o.Status
	err := tx.Model(&models.Order{}).Where("id = ?", o.ID).Updates(map[string]any{
		"status":         next,
		"stock_reserved": o.StockReserved,
		"payment_id":     o.PaymentID,
	}).Error
	if err != nil {
		return err
	}
	if err := tx.Create(&models.OrderStatusHistory{OrderID: o.ID, OldStatus: &old, NewStatus: next}).Error; err != nil {
		return err
	}
	o.Status = next
	return nil
}

// ReserveStock decrements every item of the order from the unit it names.
func ReserveStock(tx *gorm.DB, o *models.Order) error {
	lines, names, err := orderLines(tx, o.ID)
	if err != nil {
		return err
	}
	for _, l := range lines {
		if err := inventory.Decrement(tx, l, names[l.ProductID]); err != nil {
			return err
		}
	}
	o.StockReserved = true
	return nil
}

func restoreStock(tx *gorm.DB, orderID uint) error {
	lines, _, err := orderLines(tx, orderID)
	if err != nil {
		return err
	}
	for _, l := range lines {
		if err := inventory.Restore(tx, l); err != nil {
			return err
		}
	}
	return nil
}

func orderLines(tx *gorm.DB, orderID uint) ([]inventory.Line, map[uint]string, error) {
	var items []models.OrderItem
	if err := tx.Where("order_id = ?", orderID).Find(&items).Error; err != nil {
		return nil, nil, err
	}
	lines := make([]inventory.Line, 0, len(items))
	names := make(map[uint]string, len(items))
	for _, it := range items {
		lines = append(lines, inventory.Line{
			ProductID: it.ProductID,
			ColorID:   it.ProductColorID,
			SizeID:    it.ProductSizeID,
			Quantity:  it.Quantity,
		})
		names[it.ProductID] = it.ProductName
	}
	inventory.Sort(lines)
	return lines, names, nil
}

func findByIdempotencyKey(tx *gorm.DB, userID, key string) (*models.Order, error) {
	var o models.Order
	err := tx.Preload("Items").Where("user_id = ? AND idempotency_key = ?", userID, key).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}
