// Package inventory resolves order lines to the stock counter they draw from
// (a size variant, or the product itself) and moves stock on a transaction.
package inventory

import (
	"errors"
	"sort"

	"github.com/devclub-nstru/tryyel-backend/apperr"
	"github.com/devclub-nstru/tryyel-backend/database"
	"github.com/devclub-nstru/tryyel-backend/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Line is a quantity of one product, optionally narrowed to a color/size.
type Line struct {
	ProductID uint
	ColorID   *uint
	SizeID    *uint
	Quantity  int
}

// Unit is a line's product and variant as currently stored.
type Unit struct {
	Product models.Product
	Color   *models.ProductColor
	Size    *models.ProductSize
}

func (u *Unit) Stock() int {
	if u.Size != nil {
		return u.Size.Stock
	}
	return u.Product.StockAvailable
}

func (u *Unit) Price() decimal.Decimal {
	if u.Size != nil {
		return u.Size.Price
	}
	return u.Product.Price
}

// Check fails with InsufficientStock when qty exceeds the unit's stock.
func (u *Unit) Check(qty int) error {
	if qty > u.Stock() {
		return apperr.InsufficientStock(u.Product.ID, u.Product.Name, u.Stock())
	}
	return nil
}

// Resolve loads the product and, when given, its color/size pair. The pair
// must be a genuine parent-child combination of the product. A product with
// a variant tree cannot be resolved without a pair. With lock set, the rows
// are locked for the rest of the transaction.
func Resolve(tx *gorm.DB, productID uint, colorID, sizeID *uint, lock bool) (*Unit, error) {
	if (colorID == nil) != (sizeID == nil) {
		return nil, apperr.Validation("color and size must be selected together")
	}

	q := func() *gorm.DB {
		if lock {
			return database.ForUpdate(tx)
		}
		return tx
	}

	var u Unit
	if err := q().First(&u.Product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("product not found")
		}
		return nil, apperr.Internal(err, "inventory.resolve")
	}

	if sizeID == nil {
		has, err := HasVariants(tx, productID)
		if err != nil {
			return nil, err
		}
		if has {
			return nil, apperr.Validation("select a color and size for %s", u.Product.Name)
		}
		return &u, nil
	}

	var color models.ProductColor
	if err := tx.Where("id = ? AND product_id = ?", *colorID, productID).First(&color).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("color variant not found for this product")
		}
		return nil, apperr.Internal(err, "inventory.resolve")
	}
	var size models.ProductSize
	if err := q().Where("id = ? AND product_color_id = ?", *sizeID, color.ID).First(&size).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("size variant not found for this color")
		}
		return nil, apperr.Internal(err, "inventory.resolve")
	}
	u.Color, u.Size = &color, &size
	return &u, nil
}

// HasVariants reports whether any size exists under the product's colors.
func HasVariants(tx *gorm.DB, productID uint) (bool, error) {
	var n int64
	err := tx.Model(&models.ProductSize{}).
		Joins("JOIN product_colors ON product_colors.id = product_sizes.product_color_id").
		Where("product_colors.product_id = ?", productID).
		Count(&n).Error
	if err != nil {
		return false, apperr.Internal(err, "inventory.has_variants")
	}
	return n > 0, nil
}

// Sort orders lines so concurrent transactions lock rows in the same order.
func Sort(lines []Line) {
	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].ProductID != lines[j].ProductID {
			return lines[i].ProductID < lines[j].ProductID
		}
		return sizeOf(lines[i]) < sizeOf(lines[j])
	})
}

func sizeOf(l Line) uint {
	if l.SizeID == nil {
		return 0
	}
	return *l.SizeID
}

// Decrement takes qty from the line's unit. The update only matches while
// enough stock remains, so two requests can never both take the last unit.
func Decrement(tx *gorm.DB, l Line, productName string) error {
	if l.SizeID != nil {
		res := tx.Model(&models.ProductSize{}).
			Where("id = ? AND stock >= ?", *l.SizeID, l.Quantity).
			UpdateColumn("stock", gorm.Expr("stock - ?", l.Quantity))
		if res.Error != nil {
			return apperr.Internal(res.Error, "inventory.decrement")
		}
		if res.RowsAffected == 0 {
			var s models.ProductSize
			available := 0
			if err := tx.First(&s, *l.SizeID).Error; err == nil {
				available = s.Stock
			}
			return apperr.InsufficientStock(l.ProductID, productName, available)
		}
		return SyncAggregate(tx, l.ProductID)
	}

	res := tx.Model(&models.Product{}).
		Where("id = ? AND stock_available >= ?", l.ProductID, l.Quantity).
		UpdateColumn("stock_available", gorm.Expr("stock_available - ?", l.Quantity))
	if res.Error != nil {
		return apperr.Internal(res.Error, "inventory.decrement")
	}
	if res.RowsAffected == 0 {
		var p models.Product
		available := 0
		if err := tx.First(&p, l.ProductID).Error; err == nil {
			available = p.StockAvailable
		}
		return apperr.InsufficientStock(l.ProductID, productName, available)
	}
	return nil
}

// Restore gives qty back to exactly the unit it was taken from. When that
// unit no longer exists, or the product has since gained a variant tree,
// the target is ambiguous and a reconciliation error is returned.
func Restore(tx *gorm.DB, l Line) error {
	if l.SizeID != nil {
		res := tx.Model(&models.ProductSize{}).
			Where("id = ?", *l.SizeID).
			UpdateColumn("stock", gorm.Expr("stock + ?", l.Quantity))
		if res.Error != nil {
			return apperr.Internal(res.Error, "inventory.restore")
		}
		if res.RowsAffected == 0 {
			return apperr.Reconciliation("size variant %d of product %d no longer exists; %d unit(s) need manual reconciliation",
				*l.SizeID, l.ProductID, l.Quantity)
		}
		return SyncAggregate(tx, l.ProductID)
	}

	has, err := HasVariants(tx, l.ProductID)
	if err != nil {
		return err
	}
	if has {
		return apperr.Reconciliation("product %d now has variants; %d unit(s) need manual reconciliation", l.ProductID, l.Quantity)
	}
	res := tx.Model(&models.Product{}).
		Where("id = ?", l.ProductID).
		UpdateColumn("stock_available", gorm.Expr("stock_available + ?", l.Quantity))
	if res.Error != nil {
		return apperr.Internal(res.Error, "inventory.restore")
	}
	if res.RowsAffected == 0 {
		return apperr.Reconciliation("product %d no longer exists; %d unit(s) need manual reconciliation", l.ProductID, l.Quantity)
	}
	return nil
}

// SyncAggregate keeps a variant product's stockAvailable equal to the sum of its sizes.
func SyncAggregate(tx *gorm.DB, productID uint) error {
	err := tx.Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock_available", gorm.Expr(
			"(SELECT COALESCE(SUM(product_sizes.stock), 0) FROM product_sizes "+
				"JOIN product_colors ON product_colors.id = product_sizes.product_color_id "+
				"WHERE product_colors.product_id = ?)", productID)).Error
	if err != nil {
		return apperr.Internal(err, "inventory.sync_aggregate")
	}
	return nil
}
