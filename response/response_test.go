package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/devclub-nstru/tryyel-backend/apperr"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(t *testing.T, h gin.HandlerFunc) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	r := gin.New()
	r.GET("/x", h)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestError_MapsKinds(t *testing.T) {
	w, body := serve(t, func(c *gin.Context) { Error(c, apperr.InsufficientStock(1, "Tee", 0)) })

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "insufficient_stock", body["code"])
	assert.Contains(t, body["message"], "Tee")
}

func TestError_InternalIsOpaque(t *testing.T) {
	w, body := serve(t, func(c *gin.Context) { Error(c, errors.New("pq: password authentication failed")) })

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", body["message"])
	assert.Equal(t, true, body["retryable"])
	assert.NotContains(t, w.Body.String(), "password")
}

func TestOK_Envelope(t *testing.T) {
	w, body := serve(t, func(c *gin.Context) { OK(c, gin.H{"items": []int{}}) })

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.NotContains(t, body, "message")
	assert.Contains(t, body, "data")
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(1, 10, 21)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasMore)

	p = NewPagination(3, 10, 21)
	assert.False(t, p.HasMore)

	p = NewPagination(1, 10, 0)
	assert.Equal(t, 0, p.TotalPages)
	assert.False(t, p.HasMore)
}

func TestPage_Clamps(t *testing.T) {
	cases := []struct {
		query       string
		page, limit int
	}{
		{"", 1, 20},
		{"?page=3&limit=5", 3, 5},
		{"?page=-2&limit=0", 1, 20},
		{"?page=abc&limit=500", 1, 100},
		{"?page=9223372036854775807&limit=100", MaxPage, 100},
	}
	for _, tc := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/x"+tc.query, nil)

		page, limit := Page(c, 20, 100)
		assert.Equal(t, tc.page, page, tc.query)
		assert.Equal(t, tc.limit, limit, tc.query)
		assert.Positive(t, (page-1)*limit+1, tc.query)
	}
}
