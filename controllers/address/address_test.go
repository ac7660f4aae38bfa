package addressControllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/devclub-nstru/tryyel-backend/apperr"
	"github.com/devclub-nstru/tryyel-backend/auth"
	"github.com/devclub-nstru/tryyel-backend/database/dbtest"
	"github.com/devclub-nstru/tryyel-backend/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func str(s string) *string { return &s }

func input(city string) Input {
	return Input{
		FirstName: str("Asha"),
		LastName:  str("Rao"),
		Address:   str("12 MG Road"),
		Phone:     str("9876543210"),
		City:      str(city),
		State:     str("Karnataka"),
		Pincode:   str("560038"),
	}
}

func defaults(t *testing.T, db *gorm.DB, userID string) []uint {
	t.Helper()
	var ids []uint
	require.NoError(t, db.Model(&models.Address{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Pluck("id", &ids).Error)
	return ids
}

func TestCreate_FirstAddressBecomesDefault(t *testing.T) {
	db := dbtest.New(t)
	dbtest.User(t, db, "u1")
	svc := NewService(db)
	ctx := context.Background()

	first, err := svc.Create(ctx, "u1", input("Bengaluru"))
	require.NoError(t, err)
	assert.True(t, first.IsDefault)
	assert.Equal(t, "India", first.Country)

	second, err := svc.Create(ctx, "u1", input("Mysuru"))
	require.NoError(t, err)
	assert.False(t, second.IsDefault)
	assert.Equal(t, []uint{first.ID}, defaults(t, db, "u1"))
}

func TestCreate_MissingFields(t *testing.T) {
	svc := NewService(dbtest.New(t))
	in := input("Bengaluru")
	in.Pincode = nil
	in.Phone = str("  ")

	_, err := svc.Create(context.Background(), "u1", in)

	require.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Contains(t, err.Error(), "phone")
	assert.Contains(t, err.Error(), "pincode")
}

func TestSetDefault_LeavesExactlyOne(t *testing.T) {
	db := dbtest.New(t)
	dbtest.User(t, db, "u1")
	dbtest.User(t, db, "u2")
	svc := NewService(db)
	ctx := context.Background()

	a, err := svc.Create(ctx, "u1", input("Bengaluru"))
	require.NoError(t, err)
	b, err := svc.Create(ctx, "u1", input("Mysuru"))
	require.NoError(t, err)
	other, err := svc.Create(ctx, "u2", input("Pune"))
	require.NoError(t, err)

	_, err = svc.SetDefault(ctx, "u1", b.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{b.ID}, defaults(t, db, "u1"))
	assert.Equal(t, []uint{other.ID}, defaults(t, db, "u2"))

	in := input("Bengaluru")
	yes := true
	in.IsDefault = &yes
	_, err = svc.Update(ctx, "u1", a.ID, in)
	require.NoError(t, err)
	assert.Equal(t, []uint{a.ID}, defaults(t, db, "u1"))

	_, err = svc.SetDefault(ctx, "u1", other.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestCreate_WithDefaultFlagMovesDefault(t *testing.T) {
	db := dbtest.New(t)
	dbtest.User(t, db, "u1")
	svc := NewService(db)
	ctx := context.Background()
	_, err := svc.Create(ctx, "u1", input("Bengaluru"))
	require.NoError(t, err)

	in := input("Mysuru")
	yes := true
	in.IsDefault = &yes
	b, err := svc.Create(ctx, "u1", in)
	require.NoError(t, err)

	assert.Equal(t, []uint{b.ID}, defaults(t, db, "u1"))
}

func TestUpdate_CannotDropOnlyDefault(t *testing.T) {
	db := dbtest.New(t)
	dbtest.User(t, db, "u1")
	svc := NewService(db)
	ctx := context.Background()
	a, err := svc.Create(ctx, "u1", input("Bengaluru"))
	require.NoError(t, err)

	no := false
	updated, err := svc.Update(ctx, "u1", a.ID, Input{City: str("Hubballi"), IsDefault: &no})
	require.NoError(t, err)
	assert.Equal(t, "Hubballi", updated.City)
	assert.Equal(t, "Asha", updated.FirstName)
	assert.Equal(t, []uint{a.ID}, defaults(t, db, "u1"))

	_, err = svc.Update(ctx, "u1", a.ID, Input{City: str("")})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestDelete_PromotesOldest(t *testing.T) {
	db := dbtest.New(t)
	dbtest.User(t, db, "u1")
	svc := NewService(db)
	ctx := context.Background()

	a, err := svc.Create(ctx, "u1", input("Bengaluru"))
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	b, err := svc.Create(ctx, "u1", input("Mysuru"))
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	c, err := svc.Create(ctx, "u1", input("Pune"))
	require.NoError(t, err)
	_, err = svc.SetDefault(ctx, "u1", c.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "u1", c.ID))
	assert.Equal(t, []uint{a.ID}, defaults(t, db, "u1"))

	require.NoError(t, svc.Delete(ctx, "u1", b.ID))
	assert.Equal(t, []uint{a.ID}, defaults(t, db, "u1"))

	require.NoError(t, svc.Delete(ctx, "u1", a.ID))
	assert.Empty(t, defaults(t, db, "u1"))

	assert.True(t, apperr.Is(svc.Delete(ctx, "u1", a.ID), apperr.KindNotFound))
}

func TestList_DefaultFirst(t *testing.T) {
	db := dbtest.New(t)
	dbtest.User(t, db, "u1")
	svc := NewService(db)
	ctx := context.Background()
	a, err := svc.Create(ctx, "u1", input("Bengaluru"))
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	b, err := svc.Create(ctx, "u1", input("Mysuru"))
	require.NoError(t, err)

	list, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, b.ID, list[1].ID)

	empty, err := svc.List(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, empty)
}

func TestCreateAddressHandler(t *testing.T) {
	db := dbtest.New(t)
	dbtest.User(t, db, "u1")
	r := gin.New()
	r.POST("/address", func(c *gin.Context) { auth.SetUserID(c, "u1") }, CreateAddress(NewService(db)))

	body := `{"firstName":"Asha","lastName":"Rao","address":"12 MG Road","phone":"9876543210","city":"Bengaluru","state":"Karnataka","pincode":"560038"}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/address", strings.NewReader(body)))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"isDefault":true`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/address", strings.NewReader(`{"firstName":"Asha"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
