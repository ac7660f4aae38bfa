// Package dbtest provides a migrated SQLite database and fixtures for tests.
package dbtest

import (
	"fmt"
	"hash/crc32"
	"path/filepath"
	"testing"

	"github.com/devclub-nstru/tryyel-backend/database"
	"github.com/devclub-nstru/tryyel-backend/models"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New opens a fresh file-backed SQLite database limited to one connection.
func New(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func User(t *testing.T, db *gorm.DB, id string) models.User {
	t.Helper()
	mobile := fmt.Sprintf("9%09d", crc32.ChecksumIEEE([]byte(id))%1_000_000_000)
	user := models.User{ID: id, MobileNumber: &mobile, Name: "User " + id}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func Address(t *testing.T, db *gorm.DB, userID string, isDefault bool) models.Address {
	t.Helper()
	addr := models.Address{
		UserID:    userID,
		FirstName: "Asha",
		LastName:  "Rao",
		Address:   "12 MG Road",
		Locality:  "Indiranagar",
		Phone:     "9876543210",
		City:      "Bengaluru",
		State:     "Karnataka",
		Pincode:   "560038",
		Country:   "India",
		IsDefault: isDefault,
	}
	require.NoError(t, db.Create(&addr).Error)
	return addr
}

// FlatProduct creates a product without a variant tree.
func FlatProduct(t *testing.T, db *gorm.DB, name string, price int64, stock int) models.Product {
	t.Helper()
	p := models.Product{
		Name:           name,
		Price:          decimal.NewFromInt(price),
		OriginalPrice:  decimal.NewFromInt(price),
		StockAvailable: stock,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

type Size struct {
	Size          string
	Stock         int
	Price         int64
	OriginalPrice int64
}

// VariantProduct creates a product with one "Black" color owning the given sizes.
func VariantProduct(t *testing.T, db *gorm.DB, name string, sizes ...Size) models.Product {
	t.Helper()
	color := models.ProductColor{Color: "Black"}
	total := 0
	for _, s := range sizes {
		orig := s.OriginalPrice
		if orig == 0 {
			orig = s.Price
		}
		color.Sizes = append(color.Sizes, models.ProductSize{
			Size:          s.Size,
			Stock:         s.Stock,
			Price:         decimal.NewFromInt(s.Price),
			OriginalPrice: decimal.NewFromInt(orig),
		})
		total += s.Stock
	}
	p := models.Product{
		Name:           name,
		Price:          decimal.Zero,
		OriginalPrice:  decimal.Zero,
		StockAvailable: total,
		Colors:         []models.ProductColor{color},
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func SizeStock(t *testing.T, db *gorm.DB, sizeID uint) int {
	t.Helper()
	var s models.ProductSize
	require.NoError(t, db.First(&s, sizeID).Error)
	return s.Stock
}

func ProductStock(t *testing.T, db *gorm.DB, productID uint) int {
	t.Helper()
	var p models.Product
	require.NoError(t, db.Unscoped().First(&p, productID).Error)
	return p.StockAvailable
}
