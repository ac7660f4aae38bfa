package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID               uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Name             string          `gorm:"size:255;not null;uniqueIndex" json:"name"`
	ShortDescription string          `gorm:"size:500" json:"shortDescription"`
	LongDescription  string          `gorm:"type:text" json:"longDescription"`
	ImageURL         string          `json:"imageUrl"`
	Gender           string          `gorm:"size:20;index" json:"gender,omitempty"`
	CategoryID       *uint           `gorm:"index" json:"categoryId"`
	Category         *Category       `json:"category,omitempty"`
	SubCategoryID    *uint           `gorm:"index" json:"subCategoryId"`
	SubCategory      *SubCategory    `json:"subCategory,omitempty"`
	BrandID          *uint           `gorm:"index" json:"brandId"`
	Brand            *Brand          `json:"brand,omitempty"`
	Price            decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`         // used only without variants
	OriginalPrice    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"originalPrice"` // used only without variants
	StockAvailable   int             `gorm:"not null" json:"stockAvailable"`
	Clicks           int             `gorm:"not null;index" json:"clicks"`
	Trending         bool            `gorm:"not null;index" json:"trending"`
	Colors           []ProductColor  `json:"colors,omitempty"`
	Images           []ProductImage  `json:"images,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
	DeletedAt        gorm.DeletedAt  `gorm:"index" json:"-"`
}

type ProductColor struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	ProductID uint          `gorm:"not null;index" json:"productId"`
	Color     string        `gorm:"size:50;not null" json:"color"`
	ImageURL  string        `json:"imageUrl,omitempty"`
	Sizes     []ProductSize `json:"sizes,omitempty"`
}

type ProductSize struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	ProductColorID uint            `gorm:"not null;index" json:"productColorId"`
	Size           string          `gorm:"size:20;not null;index" json:"size"`
	Stock          int             `gorm:"not null" json:"stock"`
	Price          decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	OriginalPrice  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"originalPrice"`
}

type ProductImage struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ProductID uint   `gorm:"not null;index" json:"productId"`
	URL       string `gorm:"not null" json:"url"`
}

// HasVariants reports whether the loaded color tree carries any size.
func (p *Product) HasVariants() bool {
	for _, c := range p.Colors {
		if len(c.Sizes) > 0 {
			return true
		}
	}
	return false
}
