package userControllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/devclub-nstru/tryyel-backend/apperr"
	"github.com/devclub-nstru/tryyel-backend/auth"
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

type invalidations []string

func (i *invalidations) Invalidate(_ context.Context, userID string) { *i = append(*i, userID) }

func TestUpdate_Partial(t *testing.T) {
	db := dbtest.New(t)
	svc := NewService(db, nil)
	dbtest.User(t, db, "u1")
	ctx := context.Background()
	age := 29

	u, err := svc.Update(ctx, "u1", UpdateUserInput{
		Email:   str(" asha@example.com "),
		DOB:     str("1996-04-12"),
		Age:     &age,
		TopSize: str("M"),
	})
	require.NoError(t, err)
	assert.Equal(t, "User u1", u.Name)
	assert.Equal(t, "asha@example.com", u.Email)
	require.NotNil(t, u.DOB)
	assert.Equal(t, 1996, u.DOB.Year())
	require.NotNil(t, u.Age)
	assert.Equal(t, 29, *u.Age)
	assert.Equal(t, "M", u.TopSize)

	u, err = svc.Update(ctx, "u1", UpdateUserInput{DOB: str("")})
	require.NoError(t, err)
	assert.Nil(t, u.DOB)
	assert.Equal(t, "asha@example.com", u.Email)
}

func TestUpdate_Rejects(t *testing.T) {
	db := dbtest.New(t)
	svc := NewService(db, nil)
	dbtest.User(t, db, "u1")
	ctx := context.Background()
	old := 151

	_, err := svc.Update(ctx, "u1", UpdateUserInput{Email: str("not-an-email")})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = svc.Update(ctx, "u1", UpdateUserInput{DOB: str("12/04/1996")})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = svc.Update(ctx, "u1", UpdateUserInput{Age: &old})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = svc.Update(ctx, "ghost", UpdateUserInput{Name: str("x")})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestDelete_RemovesPersonalData(t *testing.T) {
	db := dbtest.New(t)
	var inv invalidations
	svc := NewService(db, &inv)
	dbtest.User(t, db, "u1")
	dbtest.User(t, db, "u2")
	dbtest.Address(t, db, "u1", true)
	p := dbtest.FlatProduct(t, db, "Tee", 300, 5)
	cart := models.Cart{UserID: "u1"}
	require.NoError(t, db.Create(&cart).Error)
	require.NoError(t, db.Create(&models.CartItem{CartID: cart.ID, ProductID: p.ID, VariantKey: models.VariantKey(nil, nil), Quantity: 2}).Error)
	require.NoError(t, db.Create(&models.Wishlist{UserID: "u1", ProductID: p.ID}).Error)
	require.NoError(t, db.Create(&models.Wishlist{UserID: "u2", ProductID: p.ID}).Error)
	require.NoError(t, db.Create(&models.Review{UserID: "u1", ProductID: p.ID, Rating: 4}).Error)
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, "u1"))
	assert.Equal(t, invalidations{"u1"}, inv)

	var n int64
	require.NoError(t, db.Model(&models.CartItem{}).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, db.Model(&models.Cart{}).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, db.Model(&models.Review{}).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, db.Model(&models.Wishlist{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
	require.NoError(t, db.Model(&models.Address{}).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, db.Unscoped().Model(&models.Address{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)

	_, err := svc.Get(ctx, "u1")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.True(t, apperr.Is(svc.Delete(ctx, "u1"), apperr.KindNotFound))
	assert.Len(t, inv, 1)
}

func TestDeleteUserHandler_ClearsCookie(t *testing.T) {
	db := dbtest.New(t)
	svc := NewService(db, nil)
	dbtest.User(t, db, "u1")

	r := gin.New()
	r.DELETE("/api/user/profile", func(c *gin.Context) { auth.SetUserID(c, "u1") }, DeleteUser(svc))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/user/profile", nil))

	require.Equal(t, http.StatusOK, w.Code)
	cookie := w.Header().Get("Set-Cookie")
	assert.True(t, strings.HasPrefix(cookie, "token=;"), cookie)
	assert.Contains(t, cookie, "Max-Age=0")
}
