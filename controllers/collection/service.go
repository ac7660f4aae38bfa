package collectionController

import (
	"context"
	"errors"
	"strings"

	"github.com/devclub-nstru/tryyel-backend/apperr"
	productcontroller "github.com/devclub-nstru/tryyel-backend/controllers/product"
	"github.com/devclub-nstru/tryyel-backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Cards renders products as list entries. Implemented by productcontroller.Service.
type Cards interface {
	Cards(ctx context.Context, products []models.Product) ([]productcontroller.Card, error)
}

type Service struct {
	db    *gorm.DB
	cards Cards
}

func NewService(db *gorm.DB, cards Cards) *Service {
	return &Service{db: db, cards: cards}
}

// Input carries collection fields. A nil id list leaves that association untouched.
type Input struct {
	Name           *string `json:"name"`
	Type           *string `json:"type"`
	ImageURL       *string `json:"imageUrl"`
	CategoryIDs    []uint  `json:"categoryIds"`
	ProductIDs     []uint  `json:"productIds"`
	SubCategoryIDs []uint  `json:"subCategoryIds"`
}

type Detail struct {
	models.Collection
	Products []productcontroller.Card `json:"products"`
}

func (s *Service) List(ctx context.Context, kind string) ([]models.Collection, error) {
	q := s.db.WithContext(ctx).Preload("Categories").Preload("SubCategories").Order("name ASC")
	if kind != "" {
		q = q.Where("LOWER(type) = ?", strings.ToLower(kind))
	}
	var collections []models.Collection
	if err := q.Find(&collections).Error; err != nil {
		return nil, apperr.Internal(err, "collection.list")
	}
	return collections, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*Detail, error) {
	var col models.Collection
	err := s.db.WithContext(ctx).
		Preload("Categories").
		Preload("SubCategories").
		Preload("Products.Colors.Sizes").
		Preload("Products.Category").
		Preload("Products.Brand").
		First(&col, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("collection not found")
		}
		return nil, apperr.Internal(err, "collection.get")
	}
	cards, err := s.cards.Cards(ctx, col.Products)
	if err != nil {
		return nil, err
	}
	col.Products = nil
	return &Detail{Collection: col, Products: cards}, nil
}

func (s *Service) Create(ctx context.Context, in Input) (*models.Collection, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, apperr.Validation("name is required")
	}
	col := models.Collection{Name: strings.TrimSpace(*in.Name)}
	in.applyTo(&col)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := uniqueName(tx, col.Name, 0); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(&col).Error; err != nil {
			if apperr.IsDuplicate(err) {
				return apperr.Conflict("a collection with this name already exists")
			}
			return apperr.Internal(err, "collection.create")
		}
		return replaceLinks(tx, &col, in)
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, col.ID)
}

func (s *Service) Update(ctx context.Context, id uint, in Input) (*models.Collection, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var col models.Collection
		if err := tx.First(&col, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("collection not found")
			}
			return apperr.Internal(err, "collection.update")
		}
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return apperr.Validation("name cannot be empty")
			}
			if err := uniqueName(tx, name, id); err != nil {
				return err
			}
			col.Name = name
		}
		in.applyTo(&col)
		if err := tx.Omit(clause.Associations).Save(&col).Error; err != nil {
			if apperr.IsDuplicate(err) {
				return apperr.Conflict("a collection with this name already exists")
			}
			return apperr.Internal(err, "collection.update")
		}
		return replaceLinks(tx, &col, in)
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var col models.Collection
		if err := tx.First(&col, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("collection not found")
			}
			return apperr.Internal(err, "collection.delete")
		}
		for _, name := range []string{"Categories", "Products", "SubCategories"} {
			if err := tx.Model(&col).Association(name).Clear(); err != nil {
				return apperr.Internal(err, "collection.delete")
			}
		}
		if err := tx.Delete(&col).Error; err != nil {
			return apperr.Internal(err, "collection.delete")
		}
		return nil
	})
}

func (s *Service) reload(ctx context.Context, id uint) (*models.Collection, error) {
	var col models.Collection
	err := s.db.WithContext(ctx).Preload("Categories").Preload("SubCategories").Preload("Products").First(&col, id).Error
	if err != nil {
		return nil, apperr.Internal(err, "collection.reload")
	}
	return &col, nil
}

func (in Input) applyTo(col *models.Collection) {
	if in.Type != nil {
		col.Type = strings.TrimSpace(*in.Type)
	}
	if in.ImageURL != nil {
		col.ImageURL = *in.ImageURL
	}
}

// replaceLinks swaps each provided id list in. Unknown ids fail the whole call.
func replaceLinks(tx *gorm.DB, col *models.Collection, in Input) error {
	if in.CategoryIDs != nil {
		var cats []models.Category
		if err := load(tx, &cats, in.CategoryIDs, "category"); err != nil {
			return err
		}
		if err := relink(tx, col, "Categories", cats, len(cats)); err != nil {
			return err
		}
	}
	if in.ProductIDs != nil {
		var products []models.Product
		if err := load(tx, &products, in.ProductIDs, "product"); err != nil {
			return err
		}
		if err := relink(tx, col, "Products", products, len(products)); err != nil {
			return err
		}
	}
	if in.SubCategoryIDs != nil {
		var subs []models.SubCategory
		if err := load(tx, &subs, in.SubCategoryIDs, "subcategory"); err != nil {
			return err
		}
		if err := relink(tx, col, "SubCategories", subs, len(subs)); err != nil {
			return err
		}
	}
	return nil
}

func relink(tx *gorm.DB, col *models.Collection, name string, values any, n int) error {
	a := tx.Model(col).Association(name)
	var err error
	if n == 0 {
		err = a.Clear()
	} else {
		err = a.Replace(values)
	}
	if err != nil {
		return apperr.Internal(err, "collection.link")
	}
	return nil
}

func load(tx *gorm.DB, dst any, ids []uint, what string) error {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil
	}
	res := tx.Find(dst, ids)
	if res.Error != nil {
		return apperr.Internal(res.Error, "collection.link")
	}
	if res.RowsAffected != int64(len(ids)) {
		return apperr.Validation("one or more %s ids do not exist", what)
	}
	return nil
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func uniqueName(tx *gorm.DB, name string, except uint) error {
	var n int64
	err := tx.Model(&models.Collection{}).Where("LOWER(name) = ? AND id <> ?", strings.ToLower(name), except).Count(&n).Error
	if err != nil {
		return apperr.Internal(err, "collection.unique")
	}
	if n > 0 {
		return apperr.Conflict("a collection with this name already exists")
	}
	return nil
}
