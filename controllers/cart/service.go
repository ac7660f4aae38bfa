package cartControllers

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/devclub-nstru/tryyel-backend/apperr"
	"github.com/devclub-nstru/tryyel-backend/cache"
	"github.com/devclub-nstru/tryyel-backend/database"
	"github.com/devclub-nstru/tryyel-backend/inventory"
	"github.com/devclub-nstru/tryyel-backend/logging"
	"github.com/devclub-nstru/tryyel-backend/models"
	"github.com/devclub-nstru/tryyel-backend/pricing"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Cache stores rendered carts. Implemented by cache.CartCache.
type Cache interface {
	Get(ctx context.Context, userID string, dst any) error
	Set(ctx context.Context, userID string, v any) error
	Delete(ctx context.Context, userID string) error
}

type Service struct {
	db    *gorm.DB
	cache Cache
	group singleflight.Group
	gens  sync.Map // userID -> *atomic.Uint64, bumped by every Invalidate
}

// NewService builds the cart service. c may be nil to read straight from the store.
func NewService(db *gorm.DB, c Cache) *Service {
	return &Service{db: db, cache: c}
}

type AddInput struct {
	ProductID uint
	ColorID   *uint
	SizeID    *uint
	Quantity  int
}

type View struct {
	ID         *uint           `json:"id,omitempty"`
	Items      []ItemView      `json:"items"`
	TotalItems int             `json:"totalItems"`
	Total      decimal.Decimal `json:"total"`
}

type ItemView struct {
	ID             uint            `json:"id"`
	ProductID      uint            `json:"productId"`
	Name           string          `json:"name"`
	ImageURL       string          `json:"imageUrl"`
	ProductColorID *uint           `json:"productColorId"`
	ProductSizeID  *uint           `json:"productSizeId"`
	Color          string          `json:"color,omitempty"`
	Size           string          `json:"size,omitempty"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unitPrice"`
	OriginalPrice  decimal.Decimal `json:"originalPrice"`
	Discount       int             `json:"discount"`
	LineTotal      decimal.Decimal `json:"lineTotal"`
	Stock          int             `json:"stock"`
	AddedAt        time.Time       `json:"addedAt"`
}

// AddItem puts quantity units of a product (or one of its size variants) in
// the user's cart, creating the cart on first use. Adding an existing line
// increments it, and the combined quantity is checked against stock.
func (s *Service) AddItem(ctx context.Context, userID string, in AddInput) (*models.CartItem, error) {
	if in.ProductID == 0 {
		return nil, apperr.Validation("productId is required")
	}
	if in.Quantity < 1 {
		return nil, apperr.Validation("quantity must be at least 1")
	}

	var item models.CartItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := lockCart(tx, userID, true)
		if err != nil {
			return err
		}

		unit, err := inventory.Resolve(tx, in.ProductID, in.ColorID, in.SizeID, false)
		if err != nil {
			return err
		}

		key := models.VariantKey(in.ColorID, in.SizeID)
		err = tx.Where("cart_id = ? AND product_id = ? AND variant_key = ?", cart.ID, in.ProductID, key).First(&item).Error
		switch {
		case err == nil:
			if err := unit.Check(item.Quantity + in.Quantity); err != nil {
				return err
			}
			item.Quantity += in.Quantity
			item.AddedAt = time.Now()
			return tx.Model(&item).Updates(map[string]any{"quantity": item.Quantity, "added_at": item.AddedAt}).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := unit.Check(in.Quantity); err != nil {
				return err
			}
			item = models.CartItem{
				CartID:         cart.ID,
				ProductID:      in.ProductID,
				VariantKey:     key,
				ProductColorID: in.ColorID,
				ProductSizeID:  in.SizeID,
				Quantity:       in.Quantity,
				AddedAt:        time.Now(),
			}
			return tx.Create(&item).Error
		default:
			return err
		}
	})
	if err != nil {
		return nil, apperr.From(err, "cart.add_item")
	}
	s.Invalidate(ctx, userID)
	return &item, nil
}

// GetCart never fails for a user without a cart; it returns an empty view.
func (s *Service) GetCart(ctx context.Context, userID string) (*View, error) {
	if s.cache != nil {
		var cached View
		if err := s.cache.Get(ctx, userID, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			logging.Warn("cart cache read failed", logging.Fields{Op: "cart.get", UserID: userID, Error: err.Error()})
		}
	}

	gen := s.generation(userID)
	start := gen.Load()
	v, err, _ := s.group.Do(userID+"#"+strconv.FormatUint(start, 10), func() (any, error) {
		view, err := s.load(ctx, userID)
		if err != nil {
			return nil, err
		}
		s.fill(ctx, userID, gen, start, view)
		return view, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*View), nil
}

// fill caches view unless the cart was invalidated after the load began. A
// write racing the Set is caught by the second check and the entry dropped.
func (s *Service) fill(ctx context.Context, userID string, gen *atomic.Uint64, start uint64, view *View) {
	if s.cache == nil || gen.Load() != start {
		return
	}
	if err := s.cache.Set(ctx, userID, view); err != nil {
		logging.Warn("cart cache write failed", logging.Fields{Op: "cart.get", UserID: userID, Error: err.Error()})
		return
	}
	if gen.Load() != start {
		s.dropCached(ctx, userID)
	}
}

func (s *Service) generation(userID string) *atomic.Uint64 {
	if g, ok := s.gens.Load(userID); ok {
		return g.(*atomic.Uint64)
	}
	g, _ := s.gens.LoadOrStore(userID, new(atomic.Uint64))
	return g.(*atomic.Uint64)
}

func (s *Service) load(ctx context.Context, userID string) (*View, error) {
	view := &View{Items: []ItemView{}, Total: decimal.Zero}

	var cart models.Cart
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("cart_items.id") }).
		Preload("Items.Product").
		Preload("Items.Product.Colors.Sizes").
		Preload("Items.ProductColor").
		Preload("Items.ProductSize").
		Where("user_id = ?", userID).
		First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return view, nil
	}
	if err != nil {
		return nil, apperr.From(err, "cart.get")
	}

	view.ID = &cart.ID
	for _, it := range cart.Items {
		if it.Product == nil {
			continue
		}
		iv := ItemView{
			ID:             it.ID,
			ProductID:      it.ProductID,
			Name:           it.Product.Name,
			ImageURL:       it.Product.ImageURL,
			ProductColorID: it.ProductColorID,
			ProductSizeID:  it.ProductSizeID,
			Quantity:       it.Quantity,
			AddedAt:        it.AddedAt,
		}
		if it.ProductSize != nil {
			iv.Size = it.ProductSize.Size
			iv.UnitPrice = it.ProductSize.Price
			iv.OriginalPrice = it.ProductSize.OriginalPrice
			iv.Stock = it.ProductSize.Stock
		} else {
			summary := pricing.Summarize(*it.Product)
			iv.UnitPrice = summary.Price
			iv.OriginalPrice = summary.OriginalPrice
			iv.Stock = it.Product.StockAvailable
		}
		if it.ProductColor != nil {
			iv.Color = it.ProductColor.Color
			if it.ProductColor.ImageURL != "" {
				iv.ImageURL = it.ProductColor.ImageURL
			}
		}
		iv.Discount = pricing.Discount(iv.UnitPrice, iv.OriginalPrice)
		iv.LineTotal = iv.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))

		view.Items = append(view.Items, iv)
		view.TotalItems += it.Quantity
		view.Total = view.Total.Add(iv.LineTotal)
	}
	return view, nil
}

// UpdateItemQuantity sets an item's quantity after checking it against stock.
func (s *Service) UpdateItemQuantity(ctx context.Context, userID string, itemID uint, quantity int) (*models.CartItem, error) {
	if quantity < 1 {
		return nil, apperr.Validation("quantity must be at least 1")
	}

	var item models.CartItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ownedItem(tx, userID, itemID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("cart item not found")
			}
			return err
		}
		unit, err := inventory.Resolve(tx, item.ProductID, item.ProductColorID, item.ProductSizeID, false)
		if err != nil {
			return err
		}
		if err := unit.Check(quantity); err != nil {
			return err
		}
		item.Quantity = quantity
		return tx.Model(&item).Update("quantity", quantity).Error
	})
	if err != nil {
		return nil, apperr.From(err, "cart.update_item")
	}
	s.Invalidate(ctx, userID)
	return &item, nil
}

func (s *Service) RemoveItem(ctx context.Context, userID string, itemID uint) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND cart_id IN (?)", itemID, cartIDs(s.db, userID)).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return apperr.From(res.Error, "cart.remove_item")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("cart item not found")
	}
	s.Invalidate(ctx, userID)
	return nil
}

// ClearCart empties the cart. A missing or empty cart is not an error.
func (s *Service) ClearCart(ctx context.Context, userID string) error {
	if err := ClearItems(s.db.WithContext(ctx), userID); err != nil {
		return apperr.From(err, "cart.clear")
	}
	s.Invalidate(ctx, userID)
	return nil
}

// Invalidate drops the cached view and stops loads already in flight from
// caching what they read. Failures only cost a stale read until the TTL.
func (s *Service) Invalidate(ctx context.Context, userID string) {
	s.generation(userID).Add(1)
	s.dropCached(ctx, userID)
}

func (s *Service) dropCached(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, userID); err != nil {
		logging.Warn("cart cache invalidation failed", logging.Fields{Op: "cart.invalidate", UserID: userID, Error: err.Error()})
	}
}

// ClearItems deletes every line of the user's cart on db, which may be a transaction.
func ClearItems(db *gorm.DB, userID string) error {
	return db.Where("cart_id IN (?)", cartIDs(db, userID)).Delete(&models.CartItem{}).Error
}

// LockCart locks the user's cart row for the rest of tx. It returns NotFound
// when the user has no cart.
func LockCart(tx *gorm.DB, userID string) (*models.Cart, error) {
	return lockCart(tx, userID, false)
}

func lockCart(tx *gorm.DB, userID string, create bool) (*models.Cart, error) {
	if create {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.Cart{UserID: userID}).Error; err != nil {
			return nil, err
		}
	}
	var cart models.Cart
	if err := database.ForUpdate(tx).Where("user_id = ?", userID).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("cart not found")
		}
		return nil, err
	}
	return &cart, nil
}

func cartIDs(db *gorm.DB, userID string) *gorm.DB {
	return db.Session(&gorm.Session{NewDB: true}).Model(&models.Cart{}).Select("id").Where("user_id = ?", userID)
}

func ownedItem(tx *gorm.DB, userID string, itemID uint) *gorm.DB {
	return tx.Where("id = ? AND cart_id IN (?)", itemID, cartIDs(tx, userID))
}
