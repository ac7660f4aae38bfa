package reviewController

import (
	"context"
	"errors"
	"strings"

	"github.com/devclub-nstru/tryyel-backend/apperr"
	"github.com/devclub-nstru/tryyel-backend/models"
	"github.com/devclub-nstru/tryyel-backend/pricing"
	"gorm.io/gorm"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

type Input struct {
	ProductID uint    `json:"productId"`
	Rating    *int    `json:"rating"`
	Comment   *string `json:"comment"`
}

type ProductReviews struct {
	Reviews []models.Review `json:"reviews"`
	pricing.Rating
}

func (s *Service) Add(ctx context.Context, userID string, in Input) (*models.Review, error) {
	if in.ProductID == 0 || in.Rating == nil {
		return nil, apperr.Validation("productId and rating are required")
	}
	if err := checkRating(*in.Rating); err != nil {
		return nil, err
	}
	review := models.Review{UserID: userID, ProductID: in.ProductID, Rating: *in.Rating, Comment: comment(in.Comment)}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := productExists(tx, in.ProductID); err != nil {
			return err
		}
		if err := tx.Create(&review).Error; err != nil {
			if apperr.IsDuplicate(err) {
				return apperr.Conflict("You have already reviewed this product")
			}
			return apperr.Internal(err, "review.add")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// ListForProduct returns the newest reviews first with the reviewer's name.
func (s *Service) ListForProduct(ctx context.Context, productID uint) (*ProductReviews, error) {
	db := s.db.WithContext(ctx)
	if err := productExists(db, productID); err != nil {
		return nil, err
	}
	var reviews []models.Review
	err := db.
		Preload("User", func(q *gorm.DB) *gorm.DB { return q.Select("id", "name") }).
		Where("product_id = ?", productID).
		Order("created_at DESC, id DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, apperr.Internal(err, "review.list")
	}
	scores := make([]int, len(reviews))
	for i, r := range reviews {
		scores[i] = r.Rating
	}
	return &ProductReviews{Reviews: reviews, Rating: pricing.Ratings(scores)}, nil
}

func (s *Service) Update(ctx context.Context, userID string, id uint, in Input) (*models.Review, error) {
	if in.Rating != nil {
		if err := checkRating(*in.Rating); err != nil {
			return nil, err
		}
	}
	db := s.db.WithContext(ctx)
	review, err := owned(db, userID, id)
	if err != nil {
		return nil, err
	}
	if in.Rating != nil {
		review.Rating = *in.Rating
	}
	if in.Comment != nil {
		review.Comment = comment(in.Comment)
	}
	if err := db.Omit("User").Save(review).Error; err != nil {
		return nil, apperr.Internal(err, "review.update")
	}
	return review, nil
}

func (s *Service) Delete(ctx context.Context, userID string, id uint) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Review{})
	if res.Error != nil {
		return apperr.Internal(res.Error, "review.delete")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("Review not found")
	}
	return nil
}

// owned hides other users' reviews behind NotFound.
func owned(db *gorm.DB, userID string, id uint) (*models.Review, error) {
	var review models.Review
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Review not found")
		}
		return nil, apperr.Internal(err, "review.get")
	}
	return &review, nil
}

func productExists(db *gorm.DB, id uint) error {
	var n int64
	if err := db.Model(&models.Product{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return apperr.Internal(err, "review.product")
	}
	if n == 0 {
		return apperr.NotFound("Product not found")
	}
	return nil
}

func checkRating(r int) error {
	if r < 1 || r > 5 {
		return apperr.Validation("Rating must be between 1 and 5")
	}
	return nil
}

func comment(c *string) *string {
	if c == nil {
		return nil
	}
	v := strings.TrimSpace(*c)
	if v == "" {
		return nil
	}
	return &v
}
