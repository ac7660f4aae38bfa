package models

import "time"

type Banner struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:255" json:"title"`
	ImageURL  string    `gorm:"not null" json:"imageUrl"`
	Link      string    `json:"link"`
	Position  int       `gorm:"not null;index" json:"order"`
	IsActive  bool      `gorm:"not null;index" json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}
