package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID                string     `gorm:"primaryKey;size:128" json:"id"`
	MobileNumber      *string    `gorm:"size:20;uniqueIndex" json:"mobileNumber"`
	Name              string     `gorm:"size:100" json:"name"`
	Email             string     `gorm:"size:255" json:"email"`
	DOB               *time.Time `json:"dob"`
	Gender            string     `gorm:"size:20" json:"gender"`
	Age               *int       `json:"age"`
	TopSize           string     `gorm:"size:10" json:"topSize"`
	BottomSize        string     `gorm:"size:10" json:"bottomSize"`
	ProfilePictureURL string     `json:"profilePictureUrl"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// Address belongs to a user. At most one per user has IsDefault set.
type Address struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    string         `gorm:"size:128;not null;index" json:"userId"`
	FirstName string         `gorm:"size:100;not null" json:"firstName"`
	LastName  string         `gorm:"size:100;not null" json:"lastName"`
	Address   string         `gorm:"size:500;not null" json:"address"`
	Locality  string         `gorm:"size:255" json:"locality"`
	Phone     string         `gorm:"size:20;not null" json:"phone"`
	City      string         `gorm:"size:100;not null" json:"city"`
	State     string         `gorm:"size:100;not null" json:"state"`
	Pincode   string         `gorm:"size:12;not null" json:"pincode"`
	Country   string         `gorm:"size:100;not null;default:India" json:"country"`
	IsDefault bool           `gorm:"not null" json:"isDefault"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"size:128;not null;uniqueIndex:idx_review_user_product" json:"userId"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_review_user_product;index" json:"productId"`
	Rating    int       `gorm:"not null" json:"rating"`
	Comment   *string   `gorm:"type:text" json:"comment"`
	User      *User     `json:"user,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Wishlist struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"size:128;not null;uniqueIndex:idx_wishlist_user_product" json:"userId"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_wishlist_user_product" json:"productId"`
	Product   *Product  `json:"product,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
