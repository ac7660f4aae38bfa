package brandController

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
	Name    *string `json:"name"`
	LogoURL *string `json:"logoUrl"`
}

func (s *Service) List(ctx context.Context) ([]models.Brand, error) {
	var brands []models.Brand
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&brands).Error; err != nil {
		return nil, apperr.Internal(err, "brand.list")
	}
	return brands, nil
}

func (s *Service) Create(ctx context.Context, in Input) (*models.Brand, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, apperr.Validation("name is required")
	}
	brand := models.Brand{Name: strings.TrimSpace(*in.Name)}
	if in.LogoURL != nil {
		brand.LogoURL = *in.LogoURL
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := uniqueName(tx, brand.Name, 0); err != nil {
			return err
		}
		return write(tx.Create(&brand).Error, "brand.create")
	})
	if err != nil {
		return nil, err
	}
	return &brand, nil
}

func (s *Service) Update(ctx context.Context, id uint, in Input) (*models.Brand, error) {
	var brand models.Brand
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&brand, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("brand not found")
			}
			return apperr.Internal(err, "brand.update")
		}
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return apperr.Validation("name cannot be empty")
			}
			if err := uniqueName(tx, name, id); err != nil {
				return err
			}
			brand.Name = name
		}
		if in.LogoURL != nil {
			brand.LogoURL = *in.LogoURL
		}
		return write(tx.Save(&brand).Error, "brand.update")
	})
	if err != nil {
		return nil, err
	}
	return &brand, nil
}

// Delete removes the brand. Its products stay listed without one.
func (s *Service) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Model(&models.Product{}).Where("brand_id = ?", id).Update("brand_id", nil).Error; err != nil {
			return apperr.Internal(err, "brand.delete")
		}
		res := tx.Delete(&models.Brand{}, id)
		if res.Error != nil {
			return apperr.Internal(res.Error, "brand.delete")
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("brand not found")
		}
		return nil
	})
}

func uniqueName(tx *gorm.DB, name string, except uint) error {
	var n int64
	err := tx.Model(&models.Brand{}).Where("LOWER(name) = ? AND id <> ?", strings.ToLower(name), except).Count(&n).Error
	if err != nil {
		return apperr.Internal(err, "brand.unique")
	}
	if n > 0 {
		return apperr.Conflict("a brand with this name already exists")
	}
	return nil
}

func write(err error, op string) error {
	if err == nil {
		return nil
	}
	if apperr.IsDuplicate(err) {
		return apperr.Conflict("a brand with this name already exists")
	}
	return apperr.Internal(err, op)
}

// GET /api/brands
func GetBrands(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		brands, err := s.List(c.Request.Context())
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, brands)
	}
}

// POST /api/admin/brands
func CreateBrand(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input Input
		if err := c.ShouldBindJSON(&input); err != nil {
			response.BadRequest(c, "invalid brand payload")
			return
		}
		brand, err := s.Create(c.Request.Context(), input)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Created(c, "Brand created successfully", brand)
	}
}

// PUT /api/admin/brands/:id
func UpdateBrand(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := response.IDParam(c, "id")
		if !ok {
			return
		}
		var input Input
		if err := c.ShouldBindJSON(&input); err != nil {
			response.BadRequest(c, "invalid brand payload")
			return
		}
		brand, err := s.Update(c.Request.Context(), id, input)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.WithMessage(c, "Brand updated successfully", brand)
	}
}

// DELETE /api/admin/brands/:id
func DeleteBrand(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := response.IDParam(c, "id")
		if !ok {
			return
		}
		if err := s.Delete(c.Request.Context(), id); err != nil {
			response.Error(c, err)
			return
		}
		response.Message(c, "Brand deleted successfully")
	}
}
