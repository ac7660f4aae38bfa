package productcontroller

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/devclub-nstru/tryyel-backend/apperr"
	"github.com/devclub-nstru/tryyel-backend/inventory"
	"github.com/devclub-nstru/tryyel-backend/models"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"
)

var exportHeaders = []string{
	"ProductID", "Name", "Category", "Brand", "ColorID", "Color",
	"SizeID", "Size", "Price", "OriginalPrice", "Stock", "Clicks", "CreatedAt",
}

// Column positions read back by ImportStock.
const (
	colProductID     = 0
	colSizeID        = 6
	colPrice         = 8
	colOriginalPrice = 9
	colStock         = 10
)

// Export writes one row per size variant, or one row for a product without variants.
func (s *Service) Export(ctx context.Context, w io.Writer) error {
	var products []models.Product
	err := s.db.WithContext(ctx).
		Preload("Colors", func(q *gorm.DB) *gorm.DB { return q.Order("id") }).
		Preload("Colors.Sizes", func(q *gorm.DB) *gorm.DB { return q.Order("id") }).
		Preload("Category").
		Preload("Brand").
		Order("id").
		Find(&products).Error
	if err != nil {
		return apperr.Internal(err, "product.export")
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return apperr.Internal(err, "product.export")
	}

	header := sheet.AddRow()
	for _, h := range exportHeaders {
		header.AddCell().SetString(h)
	}

	for _, p := range products {
		category, brand := "", ""
		if p.Category != nil {
			category = p.Category.Name
		}
		if p.Brand != nil {
			brand = p.Brand.Name
		}

		addRow := func(color *models.ProductColor, size *models.ProductSize) {
			row := sheet.AddRow()
			row.AddCell().SetInt(int(p.ID))
			row.AddCell().SetString(p.Name)
			row.AddCell().SetString(category)
			row.AddCell().SetString(brand)
			price, orig, stock := p.Price, p.OriginalPrice, p.StockAvailable
			if color != nil && size != nil {
				row.AddCell().SetInt(int(color.ID))
				row.AddCell().SetString(color.Color)
				row.AddCell().SetInt(int(size.ID))
				row.AddCell().SetString(size.Size)
				price, orig, stock = size.Price, size.OriginalPrice, size.Stock
			} else {
				for i := 0; i < 4; i++ {
					row.AddCell().SetString("")
				}
			}
			row.AddCell().SetString(price.StringFixed(2))
			row.AddCell().SetString(orig.StringFixed(2))
			row.AddCell().SetInt(stock)
			row.AddCell().SetInt(p.Clicks)
			row.AddCell().SetString(p.CreatedAt.Format("2006-01-02 15:04:05"))
		}

		if !p.HasVariants() {
			addRow(nil, nil)
			continue
		}
		for i := range p.Colors {
			for j := range p.Colors[i].Sizes {
				addRow(&p.Colors[i], &p.Colors[i].Sizes[j])
			}
		}
	}

	if err := file.Write(w); err != nil {
		return apperr.Internal(err, "product.export")
	}
	return nil
}

type ImportResult struct {
	Updated int      `json:"updatedCount"`
	Skipped int      `json:"skippedCount"`
	Errors  []string `json:"errors,omitempty"`
}

// ImportStock reads a sheet in the export layout and applies its price and
// stock columns. Rows that fail validation are skipped and reported.
func (s *Service) ImportStock(ctx context.Context, r io.ReaderAt, size int64) (*ImportResult, error) {
	file, err := xlsx.OpenReaderAt(r, size)
	if err != nil {
		return nil, apperr.Validation("failed to parse Excel file")
	}
	if len(file.Sheets) == 0 || len(file.Sheets[0].Rows) < 2 {
		return nil, apperr.Validation("Excel file is empty or missing header row")
	}

	res := &ImportResult{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		touched := map[uint]bool{}
		for i, row := range file.Sheets[0].Rows[1:] {
			line := i + 2
			if blank(row) {
				continue
			}
			productID, variant, err := importRow(tx, row)
			if err != nil {
				if apperr.KindOf(err) == apperr.KindInternal {
					return err
				}
				res.Skipped++
				res.Errors = append(res.Errors, fmt.Sprintf("row %d: %s", line, err.Error()))
				continue
			}
			if variant {
				touched[productID] = true
			}
			res.Updated++
		}
		for id := range touched {
			if err := inventory.SyncAggregate(tx, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// importRow applies one sheet row and reports whether it targeted a size.
func importRow(tx *gorm.DB, row *xlsx.Row) (uint, bool, error) {
	get := func(index int) string {
		if row != nil && index < len(row.Cells) {
			return strings.TrimSpace(row.Cells[index].String())
		}
		return ""
	}

	productID, err := strconv.ParseUint(get(colProductID), 10, 64)
	if err != nil || productID == 0 {
		return 0, false, apperr.Validation("invalid product id")
	}
	price, err := decimal.NewFromString(get(colPrice))
	if err != nil || !price.IsPositive() {
		return 0, false, apperr.Validation("invalid price")
	}
	orig := price
	if v := get(colOriginalPrice); v != "" {
		if orig, err = decimal.NewFromString(v); err != nil {
			return 0, false, apperr.Validation("invalid original price")
		}
	}
	stock, err := strconv.Atoi(get(colStock))
	if err != nil || stock < 0 {
		return 0, false, apperr.Validation("invalid stock")
	}

	if v := get(colSizeID); v != "" {
		sizeID, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, false, apperr.Validation("invalid size id")
		}
		var n int64
		err = tx.Model(&models.ProductSize{}).
			Where("id = ? AND product_color_id IN (?)", sizeID,
				tx.Session(&gorm.Session{NewDB: true}).Model(&models.ProductColor{}).Select("id").Where("product_id = ?", productID)).
			Count(&n).Error
		if err != nil {
			return 0, false, apperr.Internal(err, "product.import")
		}
		if n == 0 {
			return 0, false, apperr.Validation("size %d does not belong to product %d", sizeID, productID)
		}
		err = tx.Model(&models.ProductSize{}).Where("id = ?", sizeID).
			Updates(map[string]any{"price": price, "original_price": orig, "stock": stock}).Error
		if err != nil {
			return 0, false, apperr.Internal(err, "product.import")
		}
		return uint(productID), true, nil
	}

	var n int64
	if err := tx.Model(&models.Product{}).Where("id = ?", productID).Count(&n).Error; err != nil {
		return 0, false, apperr.Internal(err, "product.import")
	}
	if n == 0 {
		return 0, false, apperr.Validation("product %d not found", productID)
	}
	has, err := inventory.HasVariants(tx, uint(productID))
	if err != nil {
		return 0, false, err
	}
	if has {
		return 0, false, apperr.Validation("product %d has sizes, a size id is required", productID)
	}
	err = tx.Model(&models.Product{}).Where("id = ?", productID).
		Updates(map[string]any{"price": price, "original_price": orig, "stock_available": stock}).Error
	if err != nil {
		return 0, false, apperr.Internal(err, "product.import")
	}
	return uint(productID), false, nil
}

func blank(row *xlsx.Row) bool {
	if row == nil {
		return true
	}
	for _, c := range row.Cells {
		if strings.TrimSpace(c.String()) != "" {
			return false
		}
	}
	return true
}
