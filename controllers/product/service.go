package productcontroller

import (
	"context"
	"errors"
	"strings"

	"github.com/devclub-nstru/tryyel-backend/apperr"
	"github.com/devclub-nstru/tryyel-backend/database"
	"github.com/devclub-nstru/tryyel-backend/models"
	"github.com/devclub-nstru/tryyel-backend/pricing"
	"github.com/devclub-nstru/tryyel-backend/response"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// Query is a parsed product list request.
type Query struct {
	Page          int
	Limit         int
	Search        string
	Categories    []string
	SubCategories []string
	Brands        []string
	Sizes         []string
	Gender        string
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	Trending      *bool
	Sort          Sort
}

func (q Query) filter() *FilterBuilder {
	return NewFilter().
		Search(q.Search).
		Categories(q.Categories).
		SubCategories(q.SubCategories).
		Brands(q.Brands).
		Sizes(q.Sizes).
		Gender(q.Gender).
		PriceRange(q.MinPrice, q.MaxPrice).
		Trending(q.Trending)
}

// Card is the list representation of a product.
type Card struct {
	ID               uint             `json:"id"`
	Name             string           `json:"name"`
	ShortDescription string           `json:"shortDescription"`
	ImageURL         string           `json:"imageUrl"`
	Gender           string           `json:"gender,omitempty"`
	Category         *models.Category `json:"category,omitempty"`
	Brand            *models.Brand    `json:"brand,omitempty"`
	Trending         bool             `json:"trending"`
	Clicks           int              `json:"clicks"`
	pricing.Summary
	pricing.Rating
}

type Detail struct {
	models.Product
	Pricing pricing.Summary `json:"pricing"`
	Rating  pricing.Rating  `json:"rating"`
}

type ListResult struct {
	Products   []Card              `json:"products"`
	Pagination response.Pagination `json:"pagination"`
}

func (s *Service) List(ctx context.Context, q Query) (*ListResult, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}

	base := q.filter().Apply(s.db.WithContext(ctx).Model(&models.Product{})).Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, apperr.Internal(err, "product.list")
	}

	var products []models.Product
	err := base.
		Preload("Colors.Sizes").
		Preload("Category").
		Preload("Brand").
		Order(q.Sort.orderBy()).
		Offset((q.Page - 1) * q.Limit).
		Limit(q.Limit).
		Find(&products).Error
	if err != nil {
		return nil, apperr.Internal(err, "product.list")
	}

	cards, err := s.cards(ctx, products)
	if err != nil {
		return nil, err
	}
	return &ListResult{Products: cards, Pagination: response.NewPagination(q.Page, q.Limit, total)}, nil
}

// Get returns one product and counts the view.
func (s *Service) Get(ctx context.Context, id uint) (*Detail, error) {
	db := s.db.WithContext(ctx)

	res := db.Model(&models.Product{}).Where("id = ?", id).UpdateColumn("clicks", gorm.Expr("clicks + 1"))
	if res.Error != nil {
		return nil, apperr.Internal(res.Error, "product.get")
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFound("product not found")
	}

	p, err := s.load(db, id)
	if err != nil {
		return nil, err
	}
	ratings, err := s.ratings(db, []uint{id})
	if err != nil {
		return nil, err
	}
	return &Detail{Product: *p, Pricing: pricing.Summarize(*p), Rating: ratings[id]}, nil
}

// Trending returns the most viewed products.
func (s *Service) Trending(ctx context.Context, limit int) ([]Card, error) {
	if limit < 1 || limit > MaxLimit {
		limit = 10
	}
	var products []models.Product
	err := s.db.WithContext(ctx).
		Preload("Colors.Sizes").
		Preload("Category").
		Preload("Brand").
		Order("clicks DESC, id DESC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, apperr.Internal(err, "product.trending")
	}
	return s.cards(ctx, products)
}

// Cards renders products, loaded with their color tree, as list entries.
func (s *Service) Cards(ctx context.Context, products []models.Product) ([]Card, error) {
	return s.cards(ctx, products)
}

func (s *Service) cards(ctx context.Context, products []models.Product) ([]Card, error) {
	ids := make([]uint, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	ratings, err := s.ratings(s.db.WithContext(ctx), ids)
	if err != nil {
		return nil, err
	}

	cards := make([]Card, 0, len(products))
	for _, p := range products {
		cards = append(cards, Card{
			ID:               p.ID,
			Name:             p.Name,
			ShortDescription: p.ShortDescription,
			ImageURL:         coverImage(p),
			Gender:           p.Gender,
			Category:         p.Category,
			Brand:            p.Brand,
			Trending:         p.Trending,
			Clicks:           p.Clicks,
			Summary:          pricing.Summarize(p),
			Rating:           ratings[p.ID],
		})
	}
	return cards, nil
}

func coverImage(p models.Product) string {
	if p.ImageURL != "" {
		return p.ImageURL
	}
	for _, c := range p.Colors {
		if c.ImageURL != "" {
			return c.ImageURL
		}
	}
	return ""
}

func (s *Service) ratings(db *gorm.DB, ids []uint) (map[uint]pricing.Rating, error) {
	out := make(map[uint]pricing.Rating, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []struct {
		ProductID uint
		Total     int
		Reviews   int
	}
	err := db.Model(&models.Review{}).
		Select("product_id, SUM(rating) AS total, COUNT(*) AS reviews").
		Where("product_id IN ?", ids).
		Group("product_id").
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.Internal(err, "product.ratings")
	}
	for _, r := range rows {
		out[r.ProductID] = pricing.RatingOf(r.Total, r.Reviews)
	}
	return out, nil
}

func (s *Service) load(db *gorm.DB, id uint) (*models.Product, error) {
	var p models.Product
	err := db.
		Preload("Colors", func(q *gorm.DB) *gorm.DB { return q.Order("id") }).
		Preload("Colors.Sizes", func(q *gorm.DB) *gorm.DB { return q.Order("id") }).
		Preload("Images", func(q *gorm.DB) *gorm.DB { return q.Order("id") }).
		Preload("Category").
		Preload("SubCategory").
		Preload("Brand").
		First(&p, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("product not found")
		}
		return nil, apperr.Internal(err, "product.load")
	}
	return &p, nil
}

type SizeInput struct {
	Size          string           `json:"size"`
	Stock         int              `json:"stock"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"originalPrice"`
}

type ColorInput struct {
	Color    string      `json:"color"`
	ImageURL string      `json:"imageUrl"`
	Sizes    []SizeInput `json:"sizes"`
}

// Input carries product fields for create and partial update. A nil slice
// leaves the stored images or colors untouched.
type Input struct {
	Name             *string          `json:"name"`
	ShortDescription *string          `json:"shortDescription"`
	LongDescription  *string          `json:"longDescription"`
	ImageURL         *string          `json:"imageUrl"`
	Gender           *string          `json:"gender"`
	CategoryID       *uint            `json:"categoryId"`
	SubCategoryID    *uint            `json:"subCategoryId"`
	BrandID          *uint            `json:"brandId"`
	Price            *decimal.Decimal `json:"price"`
	OriginalPrice    *decimal.Decimal `json:"originalPrice"`
	StockAvailable   *int             `json:"stockAvailable"`
	Trending         *bool            `json:"trending"`
	Images           []string         `json:"images"`
	Colors           []ColorInput     `json:"colors"`
}

func (s *Service) Create(ctx context.Context, in Input) (*models.Product, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, apperr.Validation("name is required")
	}
	colors, err := buildColors(in.Colors)
	if err != nil {
		return nil, err
	}

	p := models.Product{Name: strings.TrimSpace(*in.Name)}
	in.applyTo(&p)
	if len(colors) > 0 {
		p.Colors = colors
		p.StockAvailable = stockOf(colors)
		p.Price, p.OriginalPrice = decimal.Zero, decimal.Zero
	} else {
		if !p.Price.IsPositive() {
			return nil, apperr.Validation("price is required for a product without sizes")
		}
		if p.StockAvailable < 0 {
			return nil, apperr.Validation("stockAvailable cannot be negative")
		}
		if p.OriginalPrice.IsZero() {
			p.OriginalPrice = p.Price
		}
	}
	for _, url := range in.Images {
		p.Images = append(p.Images, models.ProductImage{URL: url})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkRefs(tx, &p); err != nil {
			return err
		}
		if err := uniqueName(tx, p.Name, 0); err != nil {
			return err
		}
		if err := tx.Create(&p).Error; err != nil {
			if apperr.IsDuplicate(err) {
				return apperr.Conflict("a product with this name already exists")
			}
			return apperr.Internal(err, "product.create")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.load(s.db.WithContext(ctx), p.ID)
}

// Update changes the given fields. A colors tree replaces the stored one and
// drops cart lines that pointed at the old variants.
func (s *Service) Update(ctx context.Context, id uint, in Input) (*models.Product, error) {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, apperr.Validation("name cannot be empty")
	}
	var colors []models.ProductColor
	if in.Colors != nil {
		var err error
		if colors, err = buildColors(in.Colors); err != nil {
			return nil, err
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Product
		if err := database.ForUpdate(tx).First(&p, id).Error; err != nil {
			return apperr.From(err, "product.update")
		}
		if in.Name != nil {
			p.Name = strings.TrimSpace(*in.Name)
			if err := uniqueName(tx, p.Name, p.ID); err != nil {
				return err
			}
		}
		in.applyTo(&p)
		if err := checkRefs(tx, &p); err != nil {
			return err
		}

		hasVariants := len(colors) > 0
		if in.Colors != nil {
			if err := replaceColors(tx, p.ID, colors); err != nil {
				return err
			}
			if hasVariants {
				p.StockAvailable = stockOf(colors)
			}
		} else {
			var n int64
			if err := tx.Model(&models.ProductColor{}).Where("product_id = ?", p.ID).Count(&n).Error; err != nil {
				return apperr.Internal(err, "product.update")
			}
			hasVariants = n > 0
			if hasVariants && in.StockAvailable != nil {
				return apperr.Validation("stock is managed per size for this product")
			}
		}
		if !hasVariants && p.StockAvailable < 0 {
			return apperr.Validation("stockAvailable cannot be negative")
		}

		if in.Images != nil {
			if err := tx.Where("product_id = ?", p.ID).Delete(&models.ProductImage{}).Error; err != nil {
				return apperr.Internal(err, "product.update")
			}
			for _, url := range in.Images {
				if err := tx.Create(&models.ProductImage{ProductID: p.ID, URL: url}).Error; err != nil {
					return apperr.Internal(err, "product.update")
				}
			}
		}

		if err := tx.Omit(clause.Associations).Save(&p).Error; err != nil {
			if apperr.IsDuplicate(err) {
				return apperr.Conflict("a product with this name already exists")
			}
			return apperr.Internal(err, "product.update")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.load(s.db.WithContext(ctx), id)
}

// Delete soft-deletes the product and removes it from carts, wishlists and collections.
func (s *Service) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Product
		if err := tx.First(&p, id).Error; err != nil {
			return apperr.From(err, "product.delete")
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return apperr.Internal(err, "product.delete")
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.Wishlist{}).Error; err != nil {
			return apperr.Internal(err, "product.delete")
		}
		if err := tx.Exec("DELETE FROM collection_products WHERE product_id = ?", id).Error; err != nil {
			return apperr.Internal(err, "product.delete")
		}
		if err := tx.Delete(&p).Error; err != nil {
			return apperr.Internal(err, "product.delete")
		}
		return nil
	})
}

func (in Input) applyTo(p *models.Product) {
	if in.ShortDescription != nil {
		p.ShortDescription = *in.ShortDescription
	}
	if in.LongDescription != nil {
		p.LongDescription = *in.LongDescription
	}
	if in.ImageURL != nil {
		p.ImageURL = *in.ImageURL
	}
	if in.Gender != nil {
		p.Gender = strings.TrimSpace(*in.Gender)
	}
	if in.CategoryID != nil {
		p.CategoryID = in.CategoryID
	}
	if in.SubCategoryID != nil {
		p.SubCategoryID = in.SubCategoryID
	}
	if in.BrandID != nil {
		p.BrandID = in.BrandID
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.OriginalPrice != nil {
		p.OriginalPrice = *in.OriginalPrice
	}
	if in.StockAvailable != nil {
		p.StockAvailable = *in.StockAvailable
	}
	if in.Trending != nil {
		p.Trending = *in.Trending
	}
}

func buildColors(in []ColorInput) ([]models.ProductColor, error) {
	colors := make([]models.ProductColor, 0, len(in))
	for _, c := range in {
		name := strings.TrimSpace(c.Color)
		if name == "" {
			return nil, apperr.Validation("color name is required")
		}
		if len(c.Sizes) == 0 {
			return nil, apperr.Validation("color %s needs at least one size", name)
		}
		color := models.ProductColor{Color: name, ImageURL: c.ImageURL}
		seen := map[string]bool{}
		for _, sz := range c.Sizes {
			label := strings.TrimSpace(sz.Size)
			switch {
			case label == "":
				return nil, apperr.Validation("size is required for color %s", name)
			case seen[label]:
				return nil, apperr.Validation("size %s is listed twice for color %s", label, name)
			case sz.Stock < 0:
				return nil, apperr.Validation("stock cannot be negative")
			case !sz.Price.IsPositive():
				return nil, apperr.Validation("price must be positive")
			}
			seen[label] = true
			orig := sz.Price
			if sz.OriginalPrice != nil {
				orig = *sz.OriginalPrice
			}
			color.Sizes = append(color.Sizes, models.ProductSize{
				Size:          label,
				Stock:         sz.Stock,
				Price:         sz.Price,
				OriginalPrice: orig,
			})
		}
		colors = append(colors, color)
	}
	return colors, nil
}

func stockOf(colors []models.ProductColor) int {
	total := 0
	for _, c := range colors {
		for _, s := range c.Sizes {
			total += s.Stock
		}
	}
	return total
}

func replaceColors(tx *gorm.DB, productID uint, colors []models.ProductColor) error {
	var old []uint
	if err := tx.Model(&models.ProductColor{}).Where("product_id = ?", productID).Pluck("id", &old).Error; err != nil {
		return apperr.Internal(err, "product.replace_colors")
	}
	if len(old) > 0 {
		if err := tx.Where("product_color_id IN ?", old).Delete(&models.CartItem{}).Error; err != nil {
			return apperr.Internal(err, "product.replace_colors")
		}
		if err := tx.Where("product_color_id IN ?", old).Delete(&models.ProductSize{}).Error; err != nil {
			return apperr.Internal(err, "product.replace_colors")
		}
		if err := tx.Where("id IN ?", old).Delete(&models.ProductColor{}).Error; err != nil {
			return apperr.Internal(err, "product.replace_colors")
		}
	}
	if len(colors) == 0 {
		return nil
	}
	for i := range colors {
		colors[i].ProductID = productID
	}
	if err := tx.Create(&colors).Error; err != nil {
		return apperr.Internal(err, "product.replace_colors")
	}
	return nil
}

func checkRefs(tx *gorm.DB, p *models.Product) error {
	exists := func(model any, id uint) (bool, error) {
		var n int64
		err := tx.Model(model).Where("id = ?", id).Count(&n).Error
		return n > 0, err
	}
	if p.CategoryID != nil {
		ok, err := exists(&models.Category{}, *p.CategoryID)
		if err != nil {
			return apperr.Internal(err, "product.check_refs")
		}
		if !ok {
			return apperr.Validation("category not found")
		}
	}
	if p.SubCategoryID != nil {
		var sub models.SubCategory
		if err := tx.First(&sub, *p.SubCategoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Validation("subcategory not found")
			}
			return apperr.Internal(err, "product.check_refs")
		}
		if p.CategoryID != nil && sub.CategoryID != *p.CategoryID {
			return apperr.Validation("subcategory does not belong to the category")
		}
	}
	if p.BrandID != nil {
		ok, err := exists(&models.Brand{}, *p.BrandID)
		if err != nil {
			return apperr.Internal(err, "product.check_refs")
		}
		if !ok {
			return apperr.Validation("brand not found")
		}
	}
	return nil
}

func uniqueName(tx *gorm.DB, name string, except uint) error {
	var n int64
	err := tx.Model(&models.Product{}).
		Where("LOWER(name) = ? AND id <> ?", strings.ToLower(name), except).
		Count(&n).Error
	if err != nil {
		return apperr.Internal(err, "product.unique_name")
	}
	if n > 0 {
		return apperr.Conflict("a product with this name already exists")
	}
	return nil
}
