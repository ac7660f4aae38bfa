package models

import "time"

type Category struct {
	ID            uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string        `gorm:"size:100;not null;uniqueIndex" json:"name"`
	ImageURL      string        `json:"imageUrl"`
	SubCategories []SubCategory `json:"subCategories,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
}

type SubCategory struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name       string    `gorm:"size:100;not null" json:"name"`
	ImageURL   string    `json:"imageUrl"`
	CategoryID uint      `gorm:"not null;index" json:"categoryId"`
	Category   *Category `json:"category,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// HomeCategory pins a category to the storefront home page.
type HomeCategory struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CategoryID uint      `gorm:"not null;uniqueIndex" json:"categoryId"`
	Category   *Category `json:"category,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Brand struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	LogoURL   string    `json:"logoUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

type Collection struct {
	ID            uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string        `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Type          string        `gorm:"size:50" json:"type"`
	ImageURL      string        `json:"imageUrl"`
	Categories    []Category    `gorm:"many2many:collection_categories" json:"categories"`
	Products      []Product     `gorm:"many2many:collection_products" json:"products"`
	SubCategories []SubCategory `gorm:"many2many:collection_sub_categories" json:"subCategories"`
	CreatedAt     time.Time     `json:"createdAt"`
}
