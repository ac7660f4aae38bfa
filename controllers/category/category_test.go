package categoryController

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/devclub-nstru/tryyel-backend/apperr"
	"github.com/devclub-nstru/tryyel-backend/database/dbtest"
	"github.com/devclub-nstru/tryyel-backend/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func str(s string) *string { return &s }

func TestCreate_UniqueNameAnyCase(t *testing.T) {
	svc := NewService(dbtest.New(t))
	ctx := context.Background()

	c, err := svc.Create(ctx, Input{Name: str("  Men "), ImageURL: str("https://cdn/men.jpg")})
	require.NoError(t, err)
	assert.Equal(t, "Men", c.Name)

	_, err = svc.Create(ctx, Input{Name: str("MEN")})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = svc.Create(ctx, Input{Name: str(" ")})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestList_SortedWithSubCategories(t *testing.T) {
	svc := NewService(dbtest.New(t))
	ctx := context.Background()

	women, err := svc.Create(ctx, Input{Name: str("Women")})
	require.NoError(t, err)
	_, err = svc.Create(ctx, Input{Name: str("Kids")})
	require.NoError(t, err)
	for _, name := range []string{"Tops", "Dresses"} {
		_, err := svc.CreateSubCategory(ctx, SubInput{Name: str(name), CategoryID: &women.ID})
		require.NoError(t, err)
	}

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Kids", list[0].Name)
	assert.Equal(t, "Women", list[1].Name)
	require.Len(t, list[1].SubCategories, 2)
	assert.Equal(t, "Dresses", list[1].SubCategories[0].Name)

	_, err = svc.Get(ctx, 999)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestSubCategory_NamesUniquePerCategory(t *testing.T) {
	svc := NewService(dbtest.New(t))
	ctx := context.Background()
	men, err := svc.Create(ctx, Input{Name: str("Men")})
	require.NoError(t, err)
	women, err := svc.Create(ctx, Input{Name: str("Women")})
	require.NoError(t, err)

	_, err = svc.CreateSubCategory(ctx, SubInput{Name: str("Shirts"), CategoryID: &men.ID})
	require.NoError(t, err)
	_, err = svc.CreateSubCategory(ctx, SubInput{Name: str("shirts"), CategoryID: &women.ID})
	require.NoError(t, err)

	_, err = svc.CreateSubCategory(ctx, SubInput{Name: str("SHIRTS"), CategoryID: &men.ID})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	missing := uint(77)
	_, err = svc.CreateSubCategory(ctx, SubInput{Name: str("Hats"), CategoryID: &missing})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.CreateSubCategory(ctx, SubInput{Name: str("Hats")})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	subs, err := svc.ListSubCategories(ctx, &men.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	require.NotNil(t, subs[0].Category)
	assert.Equal(t, "Men", subs[0].Category.Name)
}

func TestUpdateSubCategory_MoveDetachesProducts(t *testing.T) {
	db := dbtest.New(t)
	svc := NewService(db)
	ctx := context.Background()
	men, err := svc.Create(ctx, Input{Name: str("Men")})
	require.NoError(t, err)
	women, err := svc.Create(ctx, Input{Name: str("Women")})
	require.NoError(t, err)
	sub, err := svc.CreateSubCategory(ctx, SubInput{Name: str("Shirts"), CategoryID: &men.ID})
	require.NoError(t, err)
	p := dbtest.FlatProduct(t, db, "Oxford Shirt", 900, 3)
	require.NoError(t, db.Model(&p).Updates(map[string]any{"category_id": men.ID, "sub_category_id": sub.ID}).Error)

	moved, err := svc.UpdateSubCategory(ctx, sub.ID, SubInput{CategoryID: &women.ID})
	require.NoError(t, err)
	assert.Equal(t, women.ID, moved.CategoryID)

	var got models.Product
	require.NoError(t, db.First(&got, p.ID).Error)
	assert.Nil(t, got.SubCategoryID)
	require.NotNil(t, got.CategoryID)
	assert.Equal(t, men.ID, *got.CategoryID)
}

func TestDelete_DetachesProducts(t *testing.T) {
	db := dbtest.New(t)
	svc := NewService(db)
	ctx := context.Background()
	men, err := svc.Create(ctx, Input{Name: str("Men")})
	require.NoError(t, err)
	sub, err := svc.CreateSubCategory(ctx, SubInput{Name: str("Shirts"), CategoryID: &men.ID})
	require.NoError(t, err)
	_, err = svc.AddHome(ctx, men.ID)
	require.NoError(t, err)
	p := dbtest.FlatProduct(t, db, "Oxford Shirt", 900, 3)
	require.NoError(t, db.Model(&p).Updates(map[string]any{"category_id": men.ID, "sub_category_id": sub.ID}).Error)

	require.NoError(t, svc.Delete(ctx, men.ID))

	var got models.Product
	require.NoError(t, db.First(&got, p.ID).Error)
	assert.Nil(t, got.CategoryID)
	assert.Nil(t, got.SubCategoryID)

	var n int64
	require.NoError(t, db.Model(&models.SubCategory{}).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, db.Model(&models.HomeCategory{}).Count(&n).Error)
	assert.Zero(t, n)

	assert.True(t, apperr.Is(svc.Delete(ctx, men.ID), apperr.KindNotFound))
}

func TestHomeCategories(t *testing.T) {
	svc := NewService(dbtest.New(t))
	ctx := context.Background()
	men, err := svc.Create(ctx, Input{Name: str("Men")})
	require.NoError(t, err)

	_, err = svc.AddHome(ctx, men.ID)
	require.NoError(t, err)
	_, err = svc.AddHome(ctx, men.ID)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	_, err = svc.AddHome(ctx, 404)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	home, err := svc.ListHome(ctx)
	require.NoError(t, err)
	require.Len(t, home, 1)
	require.NotNil(t, home[0].Category)
	assert.Equal(t, "Men", home[0].Category.Name)

	require.NoError(t, svc.RemoveHome(ctx, men.ID))
	assert.True(t, apperr.Is(svc.RemoveHome(ctx, men.ID), apperr.KindNotFound))
}

func TestCreateCategoryHandler(t *testing.T) {
	svc := NewService(dbtest.New(t))
	r := gin.New()
	r.POST("/api/admin/categories", CreateCategory(svc))

	post := func(body string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/admin/categories", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusCreated, post(`{"name":"Men"}`))
	assert.Equal(t, http.StatusConflict, post(`{"name":"men"}`))
	assert.Equal(t, http.StatusBadRequest, post(`{"name":`))
}
