package models

import (
	"fmt"
	"time"
)

type Cart struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    string     `gorm:"size:128;not null;uniqueIndex" json:"userId"` // Enforces ONE cart per user
	Items     []CartItem `gorm:"foreignKey:CartID" json:"items"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// CartItem is unique per (cart, product, variant). VariantKey stands in for the
// nullable variant ids so the unique index also covers lines without a variant.
type CartItem struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	CartID         uint          `gorm:"not null;uniqueIndex:idx_cart_line" json:"cartId"`
	ProductID      uint          `gorm:"not null;uniqueIndex:idx_cart_line" json:"productId"`
	VariantKey     string        `gorm:"size:32;not null;uniqueIndex:idx_cart_line" json:"-"`
	ProductColorID *uint         `json:"productColorId"`
	ProductSizeID  *uint         `json:"productSizeId"`
	Quantity       int           `gorm:"not null" json:"quantity"`
	Product        *Product      `gorm:"constraint:OnDelete:CASCADE" json:"product,omitempty"`
	ProductColor   *ProductColor `gorm:"constraint:OnDelete:CASCADE" json:"productColor,omitempty"`
	ProductSize    *ProductSize  `gorm:"constraint:OnDelete:CASCADE" json:"productSize,omitempty"`
	AddedAt        time.Time     `json:"addedAt"`
}

// VariantKey encodes an optional color/size pair, 0 meaning "none".
func VariantKey(colorID, sizeID *uint) string {
	var c, s uint
	if colorID != nil {
		c = *colorID
	}
	if sizeID != nil {
		s = *sizeID
	}
	return fmt.Sprintf("%d:%d", c, s)
}
