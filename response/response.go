package response

import (
	"errors"
	"math"
	"net/http"

	"github.com/devclub-nstru/tryyel-backend/apperr"
	"github.com/devclub-nstru/tryyel-backend/logging"
	"github.com/gin-gonic/gin"
)

type Envelope struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Data      any    `json:"data,omitempty"`
	Code      string `json:"code,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalItems  int64 `json:"totalItems"`
	Limit       int   `json:"limit"`
	HasMore     bool  `json:"hasMore"`
}

func NewPagination(page, limit int, total int64) Pagination {
	pages := 0
	if limit > 0 {
		pages = int(math.Ceil(float64(total) / float64(limit)))
	}
	return Pagination{
		CurrentPage: page,
		TotalPages:  pages,
		TotalItems:  total,
		Limit:       limit,
		HasMore:     page < pages,
	}
}

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

func Created(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Message: message, Data: data})
}

func Message(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: message})
}

func WithMessage(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

// BadRequest reports malformed input that never reached a service.
func BadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, Envelope{
		Message: message,
		Code:    apperr.KindValidation.String(),
	})
}

// Error writes the envelope for err. Internal errors are logged with their
// cause and answered with an opaque message.
func Error(c *gin.Context, err error) {
	var e *apperr.Error
	if !errors.As(err, &e) {
		e = apperr.Internal(err, c.FullPath())
	}

	if e.Kind == apperr.KindInternal {
		userID, _ := c.Get("user_id")
		uid, _ := userID.(string)
		logging.Error("request failed", e, logging.Fields{
			Op:        e.Op,
			RequestID: c.GetString("request_id"),
			UserID:    uid,
			Status:    http.StatusInternalServerError,
			Extra:     gin.H{"method": c.Request.Method, "path": c.Request.URL.Path},
		})
	}

	c.AbortWithStatusJSON(e.Kind.HTTPStatus(), Envelope{
		Message:   e.Message,
		Code:      e.Kind.String(),
		Retryable: e.Kind == apperr.KindInternal && e.Retryable,
	})
}
