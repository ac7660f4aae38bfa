package userControllers

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/devclub-nstru/tryyel-backend/apperr"
	"github.com/devclub-nstru/tryyel-backend/models"
	"gorm.io/gorm"
)

// CartInvalidator drops any cached view of a user's cart.
type CartInvalidator interface {
	Invalidate(ctx context.Context, userID string)
}

type Service struct {
	db    *gorm.DB
	carts CartInvalidator
}

func NewService(db *gorm.DB, carts CartInvalidator) *Service {
	return &Service{db: db, carts: carts}
}

type UpdateUserInput struct {
	Name              *string `json:"name"`
	Email             *string `json:"email"`
	DOB               *string `json:"dob"`
	Gender            *string `json:"gender"`
	Age               *int    `json:"age"`
	TopSize           *string `json:"topSize"`
	BottomSize        *string `json:"bottomSize"`
	ProfilePictureURL *string `json:"profilePictureUrl"`
}

func (s *Service) Get(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Internal(err, "user.get")
	}
	return &user, nil
}

func (s *Service) Update(ctx context.Context, userID string, in UpdateUserInput) (*models.User, error) {
	updates, err := in.updates()
	if err != nil {
		return nil, err
	}
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
			return nil, apperr.Internal(err, "user.update")
		}
	}
	return s.Get(ctx, userID)
}

func (in UpdateUserInput) updates() (map[string]any, error) {
	updates := make(map[string]any)
	if in.Name != nil {
		updates["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if email != "" {
			if _, err := mail.ParseAddress(email); err != nil {
				return nil, apperr.Validation("invalid email")
			}
		}
		updates["email"] = email
	}
	if in.DOB != nil {
		if *in.DOB == "" {
			updates["dob"] = nil
		} else {
			dob, err := time.Parse("2006-01-02", *in.DOB)
			if err != nil {
				return nil, apperr.Validation("dob must be YYYY-MM-DD")
			}
			updates["dob"] = dob
		}
	}
	if in.Gender != nil {
		updates["gender"] = strings.TrimSpace(*in.Gender)
	}
	if in.Age != nil {
		if *in.Age < 0 || *in.Age > 150 {
			return nil, apperr.Validation("invalid age")
		}
		updates["age"] = *in.Age
	}
	if in.TopSize != nil {
		updates["top_size"] = strings.TrimSpace(*in.TopSize)
	}
	if in.BottomSize != nil {
		updates["bottom_size"] = strings.TrimSpace(*in.BottomSize)
	}
	if in.ProfilePictureURL != nil {
		updates["profile_picture_url"] = *in.ProfilePictureURL
	}
	return updates, nil
}

// Delete removes the account and everything personal to it. Orders are kept
// for bookkeeping and addresses are soft-deleted so orders can still show them.
func (s *Service) Delete(ctx context.Context, userID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&n).Error; err != nil {
			return apperr.Internal(err, "user.delete")
		}
		if n == 0 {
			return apperr.NotFound("User not found")
		}

		carts := tx.Session(&gorm.Session{NewDB: true}).Model(&models.Cart{}).Select("id").Where("user_id = ?", userID)
		steps := []func() error{
			func() error { return tx.Where("cart_id IN (?)", carts).Delete(&models.CartItem{}).Error },
			func() error { return tx.Where("user_id = ?", userID).Delete(&models.Cart{}).Error },
			func() error { return tx.Where("user_id = ?", userID).Delete(&models.Address{}).Error },
			func() error { return tx.Where("user_id = ?", userID).Delete(&models.Wishlist{}).Error },
			func() error { return tx.Where("user_id = ?", userID).Delete(&models.Review{}).Error },
			func() error { return tx.Where("id = ?", userID).Delete(&models.User{}).Error },
		}
		for _, step := range steps {
			if err := step(); err != nil {
				return apperr.Internal(err, "user.delete")
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if s.carts != nil {
		s.carts.Invalidate(ctx, userID)
	}
	return nil
}
