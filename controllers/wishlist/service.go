package wishlistController

import (
	"context"
	"time"

	"github.com/devclub-nstru/tryyel-backend/apperr"
	productcontroller "github.com/devclub-nstru/tryyel-backend/controllers/product"
	"github.com/devclub-nstru/tryyel-backend/models"
	"gorm.io/gorm"
)

// Cards renders products as list entries. Implemented by productcontroller.Service.
type Cards interface {
	Cards(ctx context.Context, products []models.Product) ([]productcontroller.Card, error)
}

type Service struct {
	db    *gorm.DB
	cards Cards
}

func NewService(db *gorm.DB, cards Cards) *Service {
	return &Service{db: db, cards: cards}
}

type Entry struct {
	ID        uint                   `json:"id"`
	ProductID uint                   `json:"productId"`
	AddedAt   time.Time              `json:"addedAt"`
	Product   productcontroller.Card `json:"product"`
}

func (s *Service) Add(ctx context.Context, userID string, productID uint) (*models.Wishlist, error) {
	if productID == 0 {
		return nil, apperr.Validation("Product ID is required")
	}
	item := models.Wishlist{UserID: userID, ProductID: productID}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Product{}).Where("id = ?", productID).Count(&n).Error; err != nil {
			return apperr.Internal(err, "wishlist.add")
		}
		if n == 0 {
			return apperr.NotFound("Product not found")
		}
		if err := tx.Create(&item).Error; err != nil {
			if apperr.IsDuplicate(err) {
				return apperr.Conflict("Product already in wishlist")
			}
			return apperr.Internal(err, "wishlist.add")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// List returns the newest entries first, priced like the product list.
func (s *Service) List(ctx context.Context, userID string) ([]Entry, error) {
	db := s.db.WithContext(ctx)

	var items []models.Wishlist
	if err := db.Where("user_id = ?", userID).Order("id DESC").Find(&items).Error; err != nil {
		return nil, apperr.Internal(err, "wishlist.list")
	}
	if len(items) == 0 {
		return []Entry{}, nil
	}

	ids := make([]uint, len(items))
	for i, it := range items {
		ids[i] = it.ProductID
	}
	var products []models.Product
	err := db.Preload("Colors.Sizes").Preload("Brand").Preload("Category").Where("id IN ?", ids).Find(&products).Error
	if err != nil {
		return nil, apperr.Internal(err, "wishlist.list")
	}
	cards, err := s.cards.Cards(ctx, products)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]productcontroller.Card, len(cards))
	for _, c := range cards {
		byID[c.ID] = c
	}

	entries := make([]Entry, 0, len(items))
	for _, it := range items {
		card, ok := byID[it.ProductID]
		if !ok {
			continue
		}
		entries = append(entries, Entry{ID: it.ID, ProductID: it.ProductID, AddedAt: it.CreatedAt, Product: card})
	}
	return entries, nil
}

func (s *Service) Remove(ctx context.Context, userID string, productID uint) error {
	res := s.db.WithContext(ctx).Where("user_id = ? AND product_id = ?", userID, productID).Delete(&models.Wishlist{})
	if res.Error != nil {
		return apperr.Internal(res.Error, "wishlist.remove")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("Product not in wishlist")
	}
	return nil
}

func (s *Service) Contains(ctx context.Context, userID string, productID uint) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Wishlist{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&n).Error
	if err != nil {
		return false, apperr.Internal(err, "wishlist.status")
	}
	return n > 0, nil
}
