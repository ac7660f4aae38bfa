package bannerController

import (
	"context"
	"errors"
	"strings"

	"github.com/devclub-nstru/tryyel-backend/apperr"
	"github.com/devclub-nstru/tryyel-backend/models"
	"github.com/devclub-nstru/tryyel-backend/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

type Input struct {
	Title    *string `json:"title"`
	ImageURL *string `json:"imageUrl"`
	Link     *string `json:"link"`
	Position *int    `json:"order"`
	IsActive *bool   `json:"isActive"`
}

// List returns banners by display order. With activeOnly, hidden banners are skipped.
func (s *Service) List(ctx context.Context, activeOnly bool) ([]models.Banner, error) {
	q := s.db.WithContext(ctx).Order("position ASC, id ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var banners []models.Banner
	if err := q.Find(&banners).Error; err != nil {
		return nil, apperr.Internal(err, "banner.list")
	}
	return banners, nil
}

func (s *Service) Create(ctx context.Context, in Input) (*models.Banner, error) {
	if in.ImageURL == nil || strings.TrimSpace(*in.ImageURL) == "" {
		return nil, apperr.Validation("imageUrl is required")
	}
	banner := models.Banner{IsActive: true}
	in.applyTo(&banner)
	if err := s.db.WithContext(ctx).Create(&banner).Error; err != nil {
		return nil, apperr.Internal(err, "banner.create")
	}
	return &banner, nil
}

func (s *Service) Update(ctx context.Context, id uint, in Input) (*models.Banner, error) {
	if in.ImageURL != nil && strings.TrimSpace(*in.ImageURL) == "" {
		return nil, apperr.Validation("imageUrl cannot be empty")
	}
	db := s.db.WithContext(ctx)
	var banner models.Banner
	if err := db.First(&banner, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("banner not found")
		}
		return nil, apperr.Internal(err, "banner.update")
	}
	in.applyTo(&banner)
	if err := db.Save(&banner).Error; err != nil {
		return nil, apperr.Internal(err, "banner.update")
	}
	return &banner, nil
}

func (s *Service) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Banner{}, id)
	if res.Error != nil {
		return apperr.Internal(res.Error, "banner.delete")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("banner not found")
	}
	return nil
}

func (in Input) applyTo(b *models.Banner) {
	if in.Title != nil {
		b.Title = strings.TrimSpace(*in.Title)
	}
	if in.ImageURL != nil {
		b.ImageURL = strings.TrimSpace(*in.ImageURL)
	}
	if in.Link != nil {
		b.Link = *in.Link
	}
	if in.Position != nil {
		b.Position = *in.Position
	}
	if in.IsActive != nil {
		b.IsActive = *in.IsActive
	}
}

// GET /api/banners
func GetBanners(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		banners, err := s.List(c.Request.Context(), true)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, banners)
	}
}

// GET /api/admin/banners
func GetAllBanners(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		banners, err := s.List(c.Request.Context(), false)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, banners)
	}
}

// POST /api/admin/banners
func CreateBanner(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input Input
		if err := c.ShouldBindJSON(&input); err != nil {
			response.BadRequest(c, "invalid banner payload")
			return
		}
		banner, err := s.Create(c.Request.Context(), input)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Created(c, "Banner uploaded", banner)
	}
}

// PUT /api/admin/banners/:id
func UpdateBanner(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := response.IDParam(c, "id")
		if !ok {
			return
		}
		var input Input
		if err := c.ShouldBindJSON(&input); err != nil {
			response.BadRequest(c, "invalid banner payload")
			return
		}
		banner, err := s.Update(c.Request.Context(), id, input)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.WithMessage(c, "Banner updated", banner)
	}
}

// DELETE /api/admin/banners/:id
func DeleteBanner(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := response.IDParam(c, "id")
		if !ok {
			return
		}
		if err := s.Delete(c.Request.Context(), id); err != nil {
			response.Error(c, err)
			return
		}
		response.Message(c, "Banner deleted")
	}
}
