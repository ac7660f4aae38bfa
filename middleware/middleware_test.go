package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/devclub-nstru/tryyel-backend/auth"
	"github.com/devclub-nstru/tryyel-backend/database/dbtest"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func whoami(c *gin.Context) { c.String(http.StatusOK, auth.UserID(c)) }

func TestValidateToken(t *testing.T) {
	db := dbtest.New(t)
	dbtest.User(t, db, "u1")

	r := gin.New()
	r.GET("/me", ValidateToken(db, "s3cret"), whoami)

	good, err := auth.IssueToken("s3cret", "u1", time.Hour)
	require.NoError(t, err)
	ghost, err := auth.IssueToken("s3cret", "ghost", time.Hour)
	require.NoError(t, err)
	forged, err := auth.IssueToken("wrong", "u1", time.Hour)
	require.NoError(t, err)

	cases := []struct {
		name   string
		setup  func(r *http.Request)
		status int
		body   string
	}{
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+good) }, http.StatusOK, "u1"},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "token", Value: good}) }, http.StatusOK, "u1"},
		{"missing", func(r *http.Request) {}, http.StatusUnauthorized, "No token provided"},
		{"forged", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+forged) }, http.StatusUnauthorized, "token invalid"},
		{"deleted user", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+ghost) }, http.StatusUnauthorized, "user not found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			tc.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.status, w.Code)
			assert.Contains(t, w.Body.String(), tc.body)
		})
	}
}

func TestValidateAPIKey(t *testing.T) {
	r := gin.New()
	r.GET("/admin", ValidateAPIKey("k3y"), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	open := gin.New()
	open.GET("/admin", ValidateAPIKey(""), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	do := func(e *gin.Engine, key string) int {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		if key != "" {
			req.Header.Set("X-API-KEY", key)
		}
		w := httptest.NewRecorder()
		e.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusNoContent, do(r, "k3y"))
	assert.Equal(t, http.StatusUnauthorized, do(r, "nope"))
	assert.Equal(t, http.StatusUnauthorized, do(r, ""))
	assert.Equal(t, http.StatusUnauthorized, do(open, ""))
}

func TestValidateAPIKey_WebsocketQuery(t *testing.T) {
	r := gin.New()
	r.GET("/ws", ValidateAPIKey("k3y"), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	do := func(upgrade bool) int {
		req := httptest.NewRequest(http.MethodGet, "/ws?apiKey=k3y", nil)
		if upgrade {
			req.Header.Set("Connection", "Upgrade")
			req.Header.Set("Upgrade", "websocket")
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusNoContent, do(true))
	assert.Equal(t, http.StatusUnauthorized, do(false))
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, w.Header().Get("X-Request-ID"), w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Body.String())
}

func TestTimeout_SetsDeadline(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(time.Second))
	r.GET("/", func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		assert.True(t, ok)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
