package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/devclub-nstru/tryyel-backend/apperr"
	"github.com/devclub-nstru/tryyel-backend/cache"
	"github.com/devclub-nstru/tryyel-backend/database/dbtest"
	"github.com/devclub-nstru/tryyel-backend/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

type memOTP struct{ codes map[string]string }

func (m *memOTP) Save(_ context.Context, phone, code string) error {
	m.codes[phone] = code
	return nil
}

func (m *memOTP) Verify(_ context.Context, phone, code string) error {
	want, ok := m.codes[phone]
	if !ok {
		return cache.ErrOTPNotFound
	}
	if want != code {
		return cache.ErrOTPMismatch
	}
	delete(m.codes, phone)
	return nil
}

type captureSMS struct{ last string }

func (c *captureSMS) SendOTP(_ context.Context, _, code string) error {
	c.last = code
	return nil
}

type fakeVerifier struct{ id *Identity }

func (f fakeVerifier) Verify(_ context.Context, token string) (*Identity, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return f.id, nil
}

func newTestService(t *testing.T, verifier IDTokenVerifier) (*Service, *captureSMS) {
	db := dbtest.New(t)
	sms := &captureSMS{}
	return NewService(db, &memOTP{codes: map[string]string{}}, sms, verifier, secret, time.Hour), sms
}

func TestToken_RoundTrip(t *testing.T) {
	token, err := IssueToken(secret, "user-1", time.Hour)
	require.NoError(t, err)

	id, err := ParseToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)

	_, err = ParseToken("other-secret", token)
	assert.Error(t, err)
}

func TestToken_Expired(t *testing.T) {
	token, err := IssueToken(secret, "user-1", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(secret, token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestToken_RejectsNoneAlg(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{ID: "user-1"})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ParseToken(secret, signed)
	assert.Error(t, err)
}

func TestOTPLogin_CreatesThenReusesUser(t *testing.T) {
	svc, sms := newTestService(t, nil)
	ctx := context.Background()

	require.NoError(t, svc.SendOTP(ctx, "9876543210"))
	assert.Len(t, sms.last, 6)

	first, err := svc.VerifyOTP(ctx, "9876543210", sms.last)
	require.NoError(t, err)
	assert.False(t, first.Exists)
	assert.NotEmpty(t, first.Token)

	require.NoError(t, svc.SendOTP(ctx, "9876543210"))
	second, err := svc.VerifyOTP(ctx, "9876543210", sms.last)
	require.NoError(t, err)
	assert.True(t, second.Exists)
	assert.Equal(t, first.User.ID, second.User.ID)

	id, err := ParseToken(secret, second.Token)
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, id)
}

func TestOTPLogin_Failures(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	assert.True(t, apperr.Is(svc.SendOTP(ctx, "12ab"), apperr.KindValidation))

	_, err := svc.VerifyOTP(ctx, "9876543210", "123456")
	assert.True(t, apperr.Is(err, apperr.KindAuthentication))

	require.NoError(t, svc.SendOTP(ctx, "9876543210"))
	_, err = svc.VerifyOTP(ctx, "9876543210", "not-it")
	assert.True(t, apperr.Is(err, apperr.KindAuthentication))
}

func TestCheckUser(t *testing.T) {
	svc, _ := newTestService(t, fakeVerifier{id: &Identity{UID: "fb-uid-1", Phone: "+919876543210"}})
	ctx := context.Background()

	_, err := svc.CheckUser(ctx, "bad")
	assert.True(t, apperr.Is(err, apperr.KindAuthentication))

	s, err := svc.CheckUser(ctx, "good")
	require.NoError(t, err)
	assert.False(t, s.Exists)
	assert.Equal(t, "fb-uid-1", s.User.ID)
	require.NotNil(t, s.User.MobileNumber)
	assert.Equal(t, "+919876543210", *s.User.MobileNumber)

	s, err = svc.CheckUser(ctx, "good")
	require.NoError(t, err)
	assert.True(t, s.Exists)
}

func TestCheckUser_Disabled(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, err := svc.CheckUser(context.Background(), "good")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestVerifyOTPHandler_SetsCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, sms := newTestService(t, nil)
	require.NoError(t, svc.SendOTP(context.Background(), "9876543210"))

	r := gin.New()
	r.POST("/verify", VerifyOTP(svc))
	w := httptest.NewRecorder()
	body := `{"mobileNumber":"9876543210","otp":"` + sms.last + `"}`
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/verify", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "token=")
	assert.Contains(t, w.Header().Get("Set-Cookie"), "HttpOnly")

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			User  models.User `json:"user"`
			Token string      `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Data.Token)
}
