package wishlistController

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/devclub-nstru/tryyel-backend/apperr"
	"github.com/devclub-nstru/tryyel-backend/auth"
	productcontroller "github.com/devclub-nstru/tryyel-backend/controllers/product"
	"github.com/devclub-nstru/tryyel-backend/database/dbtest"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := dbtest.New(t)
	dbtest.User(t, db, "u1")
	return NewService(db, productcontroller.NewService(db)), db
}

func TestAdd(t *testing.T) {
	svc, db := newService(t)
	p := dbtest.FlatProduct(t, db, "Tee", 300, 1)
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", 0)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = svc.Add(ctx, "u1", 404)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = svc.Add(ctx, "u1", p.ID)
	require.NoError(t, err)
	_, err = svc.Add(ctx, "u1", p.ID)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestList_NewestFirstWithPricing(t *testing.T) {
	svc, db := newService(t)
	shirt := dbtest.FlatProduct(t, db, "Linen Shirt", 500, 2)
	tee := dbtest.VariantProduct(t, db, "Graphic Tee",
		dbtest.Size{Size: "S", Stock: 0, Price: 400, OriginalPrice: 800},
		dbtest.Size{Size: "M", Stock: 3, Price: 600})
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", shirt.ID)
	require.NoError(t, err)
	_, err = svc.Add(ctx, "u1", tee.ID)
	require.NoError(t, err)

	entries, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, tee.ID, entries[0].ProductID)
	assert.True(t, entries[0].Product.Price.Equal(decimal.NewFromInt(400)))
	assert.Equal(t, 50, entries[0].Product.Discount)
	assert.True(t, entries[0].Product.InStock)
	assert.Equal(t, shirt.ID, entries[1].ProductID)

	// deleted products drop out of the list
	require.NoError(t, db.Delete(&shirt).Error)
	entries, err = svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	entries, err = svc.List(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestRemoveAndStatus(t *testing.T) {
	svc, db := newService(t)
	p := dbtest.FlatProduct(t, db, "Tee", 300, 1)
	ctx := context.Background()
	_, err := svc.Add(ctx, "u1", p.ID)
	require.NoError(t, err)

	in, err := svc.Contains(ctx, "u1", p.ID)
	require.NoError(t, err)
	assert.True(t, in)

	require.NoError(t, svc.Remove(ctx, "u1", p.ID))
	assert.True(t, apperr.Is(svc.Remove(ctx, "u1", p.ID), apperr.KindNotFound))

	in, err = svc.Contains(ctx, "u1", p.ID)
	require.NoError(t, err)
	assert.False(t, in)
}

func TestGetWishlistStatusHandler(t *testing.T) {
	svc, db := newService(t)
	p := dbtest.FlatProduct(t, db, "Tee", 300, 1)
	_, err := svc.Add(context.Background(), "u1", p.ID)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/api/wishlist/status/:productId", func(c *gin.Context) { auth.SetUserID(c, "u1") }, GetWishlistStatus(svc))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/wishlist/status/1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data struct {
			InWishlist bool `json:"inWishlist"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Data.InWishlist)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/wishlist/status/abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
