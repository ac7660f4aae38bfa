package categoryController

import (
	"context"
	"errors"
	"strings"

	"github.com/devclub-nstru/tryyel-backend/apperr"
	"github.com/devclub-nstru/tryyel-backend/models"
	"gorm.io/gorm"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

type Input struct {
	Name     *string `json:"name"`
	ImageURL *string `json:"imageUrl"`
}

type SubInput struct {
	Name       *string `json:"name"`
	ImageURL   *string `json:"imageUrl"`
	CategoryID *uint   `json:"categoryId"`
}

func byName(q *gorm.DB) *gorm.DB { return q.Order("name ASC") }

func (s *Service) List(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := s.db.WithContext(ctx).Preload("SubCategories", byName).Order("name ASC").Find(&categories).Error
	if err != nil {
		return nil, apperr.Internal(err, "category.list")
	}
	return categories, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := s.db.WithContext(ctx).Preload("SubCategories", byName).First(&category, id).Error; err != nil {
		return nil, notFound(err, "category")
	}
	return &category, nil
}

func (s *Service) Create(ctx context.Context, in Input) (*models.Category, error) {
	name, err := requiredName(in.Name)
	if err != nil {
		return nil, err
	}
	category := models.Category{Name: name}
	if in.ImageURL != nil {
		category.ImageURL = *in.ImageURL
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := unique(tx.Model(&models.Category{}), name, 0, "category"); err != nil {
			return err
		}
		return create(tx, &category, "category")
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *Service) Update(ctx context.Context, id uint, in Input) (*models.Category, error) {
	var category models.Category
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&category, id).Error; err != nil {
			return notFound(err, "category")
		}
		if in.Name != nil {
			name, err := requiredName(in.Name)
			if err != nil {
				return err
			}
			if err := unique(tx.Model(&models.Category{}), name, id, "category"); err != nil {
				return err
			}
			category.Name = name
		}
		if in.ImageURL != nil {
			category.ImageURL = *in.ImageURL
		}
		return save(tx, &category, "category")
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// Delete removes the category with its subcategories. Products keep existing
// without a category.
func (s *Service) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.First(&category, id).Error; err != nil {
			return notFound(err, "category")
		}

		var subIDs []uint
		if err := tx.Model(&models.SubCategory{}).Where("category_id = ?", id).Pluck("id", &subIDs).Error; err != nil {
			return apperr.Internal(err, "category.delete")
		}
		if err := detachSubCategories(tx, subIDs); err != nil {
			return err
		}

		steps := []func() error{
			func() error {
				return tx.Unscoped().Model(&models.Product{}).Where("category_id = ?", id).Update("category_id", nil).Error
			},
			func() error { return tx.Exec("DELETE FROM collection_categories WHERE category_id = ?", id).Error },
			func() error { return tx.Where("category_id = ?", id).Delete(&models.HomeCategory{}).Error },
			func() error { return tx.Where("category_id = ?", id).Delete(&models.SubCategory{}).Error },
			func() error { return tx.Delete(&category).Error },
		}
		for _, step := range steps {
			if err := step(); err != nil {
				return apperr.Internal(err, "category.delete")
			}
		}
		return nil
	})
}

// ListSubCategories returns every subcategory, or those of one category.
func (s *Service) ListSubCategories(ctx context.Context, categoryID *uint) ([]models.SubCategory, error) {
	q := s.db.WithContext(ctx).Preload("Category").Order("name ASC")
	if categoryID != nil {
		q = q.Where("category_id = ?", *categoryID)
	}
	var subs []models.SubCategory
	if err := q.Find(&subs).Error; err != nil {
		return nil, apperr.Internal(err, "subcategory.list")
	}
	return subs, nil
}

func (s *Service) CreateSubCategory(ctx context.Context, in SubInput) (*models.SubCategory, error) {
	name, err := requiredName(in.Name)
	if err != nil {
		return nil, err
	}
	if in.CategoryID == nil {
		return nil, apperr.Validation("categoryId is required")
	}
	sub := models.SubCategory{Name: name, CategoryID: *in.CategoryID}
	if in.ImageURL != nil {
		sub.ImageURL = *in.ImageURL
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := categoryExists(tx, sub.CategoryID); err != nil {
			return err
		}
		scope := tx.Model(&models.SubCategory{}).Where("category_id = ?", sub.CategoryID)
		if err := unique(scope, name, 0, "subcategory"); err != nil {
			return err
		}
		return create(tx, &sub, "subcategory")
	})
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *Service) UpdateSubCategory(ctx context.Context, id uint, in SubInput) (*models.SubCategory, error) {
	var sub models.SubCategory
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&sub, id).Error; err != nil {
			return notFound(err, "subcategory")
		}
		if in.CategoryID != nil && *in.CategoryID != sub.CategoryID {
			if err := categoryExists(tx, *in.CategoryID); err != nil {
				return err
			}
			// products pinned to the old parent would now be inconsistent
			if err := tx.Unscoped().Model(&models.Product{}).Where("sub_category_id = ?", id).Update("sub_category_id", nil).Error; err != nil {
				return apperr.Internal(err, "subcategory.update")
			}
			sub.CategoryID = *in.CategoryID
		}
		if in.Name != nil {
			name, err := requiredName(in.Name)
			if err != nil {
				return err
			}
			sub.Name = name
		}
		scope := tx.Model(&models.SubCategory{}).Where("category_id = ?", sub.CategoryID)
		if err := unique(scope, sub.Name, id, "subcategory"); err != nil {
			return err
		}
		if in.ImageURL != nil {
			sub.ImageURL = *in.ImageURL
		}
		return save(tx, &sub, "subcategory")
	})
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *Service) DeleteSubCategory(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sub models.SubCategory
		if err := tx.First(&sub, id).Error; err != nil {
			return notFound(err, "subcategory")
		}
		if err := detachSubCategories(tx, []uint{id}); err != nil {
			return err
		}
		if err := tx.Delete(&sub).Error; err != nil {
			return apperr.Internal(err, "subcategory.delete")
		}
		return nil
	})
}

func (s *Service) ListHome(ctx context.Context) ([]models.HomeCategory, error) {
	var home []models.HomeCategory
	err := s.db.WithContext(ctx).
		Preload("Category.SubCategories", byName).
		Order("created_at ASC, id ASC").
		Find(&home).Error
	if err != nil {
		return nil, apperr.Internal(err, "category.list_home")
	}
	return home, nil
}

func (s *Service) AddHome(ctx context.Context, categoryID uint) (*models.HomeCategory, error) {
	home := models.HomeCategory{CategoryID: categoryID}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := categoryExists(tx, categoryID); err != nil {
			return err
		}
		if err := tx.Create(&home).Error; err != nil {
			if apperr.IsDuplicate(err) {
				return apperr.Conflict("category is already on the home page")
			}
			return apperr.Internal(err, "category.add_home")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &home, nil
}

func (s *Service) RemoveHome(ctx context.Context, categoryID uint) error {
	res := s.db.WithContext(ctx).Where("category_id = ?", categoryID).Delete(&models.HomeCategory{})
	if res.Error != nil {
		return apperr.Internal(res.Error, "category.remove_home")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("category is not on the home page")
	}
	return nil
}

func detachSubCategories(tx *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Unscoped().Model(&models.Product{}).Where("sub_category_id IN ?", ids).Update("sub_category_id", nil).Error; err != nil {
		return apperr.Internal(err, "subcategory.detach")
	}
	if err := tx.Exec("DELETE FROM collection_sub_categories WHERE sub_category_id IN ?", ids).Error; err != nil {
		return apperr.Internal(err, "subcategory.detach")
	}
	return nil
}

func categoryExists(tx *gorm.DB, id uint) error {
	var n int64
	if err := tx.Model(&models.Category{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return apperr.Internal(err, "category.exists")
	}
	if n == 0 {
		return apperr.Validation("category not found")
	}
	return nil
}

func requiredName(name *string) (string, error) {
	if name == nil || strings.TrimSpace(*name) == "" {
		return "", apperr.Validation("name is required")
	}
	return strings.TrimSpace(*name), nil
}

// unique fails with Conflict when another row in scope has the same name in any case.
func unique(scope *gorm.DB, name string, except uint, what string) error {
	var n int64
	if err := scope.Where("LOWER(name) = ? AND id <> ?", strings.ToLower(name), except).Count(&n).Error; err != nil {
		return apperr.Internal(err, what+".unique")
	}
	if n > 0 {
		return apperr.Conflict("a %s with this name already exists", what)
	}
	return nil
}

func create(tx *gorm.DB, v any, what string) error {
	if err := tx.Create(v).Error; err != nil {
		if apperr.IsDuplicate(err) {
			return apperr.Conflict("a %s with this name already exists", what)
		}
		return apperr.Internal(err, what+".create")
	}
	return nil
}

func save(tx *gorm.DB, v any, what string) error {
	if err := tx.Save(v).Error; err != nil {
		if apperr.IsDuplicate(err) {
			return apperr.Conflict("a %s with this name already exists", what)
		}
		return apperr.Internal(err, what+".update")
	}
	return nil
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("%s not found", what)
	}
	return apperr.Internal(err, what+".get")
}
