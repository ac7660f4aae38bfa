package inventory

import (
	"testing"

	"github.com/devclub-nstru/tryyel-backend/apperr"
	"github.com/devclub-nstru/tryyel-backend/database/dbtest"
	"github.com/devclub-nstru/tryyel-backend/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v uint) *uint { return &v }

func TestResolve_Variant(t *testing.T) {
	db := dbtest.New(t)
	p := dbtest.VariantProduct(t, db, "Oxford Shirt", dbtest.Size{Size: "M", Stock: 3, Price: 1000})
	color := p.Colors[0]
	size := color.Sizes[0]

	u, err := Resolve(db, p.ID, ptr(color.ID), ptr(size.ID), true)
	require.NoError(t, err)

	assert.Equal(t, 3, u.Stock())
	assert.True(t, decimal.NewFromInt(1000).Equal(u.Price()))
	assert.NoError(t, u.Check(3))
	assert.True(t, apperr.Is(u.Check(4), apperr.KindInsufficientStock))
}

func TestResolve_RejectsForeignPair(t *testing.T) {
	db := dbtest.New(t)
	a := dbtest.VariantProduct(t, db, "A", dbtest.Size{Size: "M", Stock: 1, Price: 10})
	b := dbtest.VariantProduct(t, db, "B", dbtest.Size{Size: "L", Stock: 1, Price: 10})

	_, err := Resolve(db, a.ID, ptr(a.Colors[0].ID), ptr(b.Colors[0].Sizes[0].ID), false)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = Resolve(db, a.ID, ptr(b.Colors[0].ID), ptr(b.Colors[0].Sizes[0].ID), false)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestResolve_VariantRequiredWhenTreeExists(t *testing.T) {
	db := dbtest.New(t)
	p := dbtest.VariantProduct(t, db, "Chinos", dbtest.Size{Size: "32", Stock: 5, Price: 1500})

	_, err := Resolve(db, p.ID, nil, nil, false)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = Resolve(db, p.ID, ptr(p.Colors[0].ID), nil, false)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestResolve_MissingProduct(t *testing.T) {
	db := dbtest.New(t)

	_, err := Resolve(db, 999, nil, nil, false)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestDecrement_VariantKeepsAggregate(t *testing.T) {
	db := dbtest.New(t)
	p := dbtest.VariantProduct(t, db, "Tee",
		dbtest.Size{Size: "M", Stock: 3, Price: 500},
		dbtest.Size{Size: "L", Stock: 4, Price: 500})
	m := p.Colors[0].Sizes[0]

	require.NoError(t, Decrement(db, Line{ProductID: p.ID, ColorID: ptr(p.Colors[0].ID), SizeID: ptr(m.ID), Quantity: 3}, p.Name))

	assert.Equal(t, 0, dbtest.SizeStock(t, db, m.ID))
	assert.Equal(t, 4, dbtest.ProductStock(t, db, p.ID))

	err := Decrement(db, Line{ProductID: p.ID, SizeID: ptr(m.ID), Quantity: 1}, p.Name)
	assert.True(t, apperr.Is(err, apperr.KindInsufficientStock))
}

func TestDecrement_ProductLevel(t *testing.T) {
	db := dbtest.New(t)
	p := dbtest.FlatProduct(t, db, "Socks", 199, 2)

	require.NoError(t, Decrement(db, Line{ProductID: p.ID, Quantity: 2}, p.Name))
	assert.Equal(t, 0, dbtest.ProductStock(t, db, p.ID))

	err := Decrement(db, Line{ProductID: p.ID, Quantity: 1}, p.Name)
	var e *apperr.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, apperr.KindInsufficientStock, e.Kind)
	assert.Equal(t, p.ID, e.ProductID)
}

func TestRestore_RoundTrip(t *testing.T) {
	db := dbtest.New(t)
	p := dbtest.VariantProduct(t, db, "Hoodie", dbtest.Size{Size: "XL", Stock: 5, Price: 2000})
	line := Line{ProductID: p.ID, ColorID: ptr(p.Colors[0].ID), SizeID: ptr(p.Colors[0].Sizes[0].ID), Quantity: 2}

	require.NoError(t, Decrement(db, line, p.Name))
	require.NoError(t, Restore(db, line))

	assert.Equal(t, 5, dbtest.SizeStock(t, db, *line.SizeID))
	assert.Equal(t, 5, dbtest.ProductStock(t, db, p.ID))
}

func TestRestore_DeletedVariantNeedsReconciliation(t *testing.T) {
	db := dbtest.New(t)
	p := dbtest.VariantProduct(t, db, "Cap", dbtest.Size{Size: "OS", Stock: 1, Price: 300})
	sizeID := p.Colors[0].Sizes[0].ID
	require.NoError(t, db.Delete(&models.ProductSize{}, sizeID).Error)

	err := Restore(db, Line{ProductID: p.ID, SizeID: &sizeID, Quantity: 1})
	assert.True(t, apperr.Is(err, apperr.KindReconciliation))
}

func TestRestore_ProductGainedVariants(t *testing.T) {
	db := dbtest.New(t)
	p := dbtest.FlatProduct(t, db, "Belt", 700, 1)
	require.NoError(t, db.Create(&models.ProductColor{ProductID: p.ID, Color: "Brown", Sizes: []models.ProductSize{
		{Size: "M", Stock: 1, Price: decimal.NewFromInt(700), OriginalPrice: decimal.NewFromInt(700)},
	}}).Error)

	err := Restore(db, Line{ProductID: p.ID, Quantity: 1})
	assert.True(t, apperr.Is(err, apperr.KindReconciliation))
}

func TestSort(t *testing.T) {
	lines := []Line{
		{ProductID: 2, SizeID: ptr(9)},
		{ProductID: 1, SizeID: ptr(5)},
		{ProductID: 1},
	}
	Sort(lines)

	assert.Equal(t, uint(1), lines[0].ProductID)
	assert.Nil(t, lines[0].SizeID)
	assert.Equal(t, uint(5), *lines[1].SizeID)
	assert.Equal(t, uint(2), lines[2].ProductID)
}
