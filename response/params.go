package response

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// IDParam parses a numeric path parameter, answering 400 when it is malformed.
func IDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// MaxPage bounds the page query so the row offset stays small.
const MaxPage = 10000

// Page reads page and limit query values, clamping page to MaxPage and limit to max.
func Page(c *gin.Context, defaultLimit, max int) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > max {
		limit = max
	}
	return page, limit
}
