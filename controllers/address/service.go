package addressControllers

import (
	"context"
	"errors"
	"strings"

	"github.com/devclub-nstru/tryyel-backend/apperr"
	"github.com/devclub-nstru/tryyel-backend/database"
	"github.com/devclub-nstru/tryyel-backend/models"
	"gorm.io/gorm"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Input is a create or partial update. Nil fields are left untouched on update.
type Input struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Address   *string `json:"address"`
	Locality  *string `json:"locality"`
	Phone     *string `json:"phone"`
	City      *string `json:"city"`
	State     *string `json:"state"`
	Pincode   *string `json:"pincode"`
	Country   *string `json:"country"`
	IsDefault *bool   `json:"isDefault"`
}

func (in Input) missing() []string {
	required := []struct {
		name string
		v    *string
	}{
		{"firstName", in.FirstName},
		{"lastName", in.LastName},
		{"address", in.Address},
		{"phone", in.Phone},
		{"city", in.City},
		{"state", in.State},
		{"pincode", in.Pincode},
	}
	var out []string
	for _, r := range required {
		if r.v == nil || strings.TrimSpace(*r.v) == "" {
			out = append(out, r.name)
		}
	}
	return out
}

func (in Input) apply(a *models.Address) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&a.FirstName, in.FirstName)
	set(&a.LastName, in.LastName)
	set(&a.Address, in.Address)
	set(&a.Locality, in.Locality)
	set(&a.Phone, in.Phone)
	set(&a.City, in.City)
	set(&a.State, in.State)
	set(&a.Pincode, in.Pincode)
	set(&a.Country, in.Country)
}

// Create adds an address. The user's first address becomes the default.
func (s *Service) Create(ctx context.Context, userID string, in Input) (*models.Address, error) {
	if missing := in.missing(); len(missing) > 0 {
		return nil, apperr.Validation("missing required fields: %s", strings.Join(missing, ", "))
	}

	addr := models.Address{UserID: userID, Country: "India"}
	in.apply(&addr)
	if addr.Country == "" {
		addr.Country = "India"
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockUser(tx, userID); err != nil {
			return err
		}
		var n int64
		if err := tx.Model(&models.Address{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
			return err
		}
		addr.IsDefault = n == 0 || (in.IsDefault != nil && *in.IsDefault)
		if addr.IsDefault {
			if err := clearDefault(tx, userID); err != nil {
				return err
			}
		}
		return tx.Create(&addr).Error
	})
	if err != nil {
		return nil, apperr.From(err, "address.create")
	}
	return &addr, nil
}

// List returns the default address first, then newest first.
func (s *Service) List(ctx context.Context, userID string) ([]models.Address, error) {
	addrs := []models.Address{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, created_at DESC, id DESC").
		Find(&addrs).Error
	if err != nil {
		return nil, apperr.From(err, "address.list")
	}
	return addrs, nil
}

func (s *Service) Get(ctx context.Context, userID string, id uint) (*models.Address, error) {
	var addr models.Address
	if err := owned(s.db.WithContext(ctx), userID, id).First(&addr).Error; err != nil {
		return nil, notFound(err, "address.get")
	}
	return &addr, nil
}

// Update changes the given fields. Setting isDefault moves the default here;
// the current default only loses it when another address takes it.
func (s *Service) Update(ctx context.Context, userID string, id uint, in Input) (*models.Address, error) {
	var addr models.Address
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockUser(tx, userID); err != nil {
			return err
		}
		if err := owned(tx, userID, id).First(&addr).Error; err != nil {
			return notFound(err, "address.update")
		}
		in.apply(&addr)
		for _, v := range []string{addr.FirstName, addr.LastName, addr.Address, addr.Phone, addr.City, addr.State, addr.Pincode} {
			if v == "" {
				return apperr.Validation("required address fields cannot be empty")
			}
		}
		if in.IsDefault != nil && *in.IsDefault && !addr.IsDefault {
			if err := clearDefault(tx, userID); err != nil {
				return err
			}
			addr.IsDefault = true
		}
		return tx.Save(&addr).Error
	})
	if err != nil {
		return nil, apperr.From(err, "address.update")
	}
	return &addr, nil
}

// SetDefault makes id the user's only default address.
func (s *Service) SetDefault(ctx context.Context, userID string, id uint) (*models.Address, error) {
	var addr models.Address
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockUser(tx, userID); err != nil {
			return err
		}
		if err := owned(tx, userID, id).First(&addr).Error; err != nil {
			return notFound(err, "address.set_default")
		}
		if err := clearDefault(tx, userID); err != nil {
			return err
		}
		addr.IsDefault = true
		return tx.Model(&addr).Update("is_default", true).Error
	})
	if err != nil {
		return nil, apperr.From(err, "address.set_default")
	}
	return &addr, nil
}

// Delete removes the address. When it was the default, the oldest remaining
// address is promoted; deleting the last one leaves the user without a default.
func (s *Service) Delete(ctx context.Context, userID string, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockUser(tx, userID); err != nil {
			return err
		}
		var addr models.Address
		if err := owned(tx, userID, id).First(&addr).Error; err != nil {
			return notFound(err, "address.delete")
		}
		if err := tx.Delete(&addr).Error; err != nil {
			return err
		}
		if !addr.IsDefault {
			return nil
		}

		var next models.Address
		err := tx.Where("user_id = ?", userID).Order("created_at ASC, id ASC").First(&next).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return tx.Model(&next).Update("is_default", true).Error
	})
	return apperr.From(err, "address.delete")
}

func owned(db *gorm.DB, userID string, id uint) *gorm.DB {
	return db.Where("id = ? AND user_id = ?", id, userID)
}

func clearDefault(tx *gorm.DB, userID string) error {
	return tx.Model(&models.Address{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Update("is_default", false).Error
}

// lockUser serializes default-address changes for one user.
func lockUser(tx *gorm.DB, userID string) error {
	var users []models.User
	return database.ForUpdate(tx).Where("id = ?", userID).Limit(1).Find(&users).Error
}

func notFound(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("address not found")
	}
	return apperr.From(err, op)
}
