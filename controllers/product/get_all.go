package productcontroller

import (
	"strconv"
	"strings"

	"github.com/devclub-nstru/tryyel-backend/response"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// GET /api/products
func GetProducts(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, ok := parseQuery(c)
		if !ok {
			return
		}
		result, err := s.List(c.Request.Context(), q)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, result)
	}
}

// GET /api/products/trending
func GetTrendingProducts(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
		cards, err := s.Trending(c.Request.Context(), limit)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, cards)
	}
}

func parseQuery(c *gin.Context) (Query, bool) {
	page, limit := response.Page(c, DefaultLimit, MaxLimit)
	q := Query{
		Page:          page,
		Limit:         limit,
		Search:        c.Query("search"),
		Categories:    csv(c.Query("category")),
		SubCategories: csv(c.Query("subcategory")),
		Brands:        csv(c.Query("brand")),
		Sizes:         csv(c.Query("sizes")),
		Gender:        c.Query("gender"),
		Sort:          ParseSort(c.Query("sort")),
	}
	if q.Search == "" {
		q.Search = c.Query("q")
	}

	for name, dst := range map[string]**decimal.Decimal{"minPrice": &q.MinPrice, "maxPrice": &q.MaxPrice} {
		v := c.Query(name)
		if v == "" {
			continue
		}
		d, err := decimal.NewFromString(v)
		if err != nil || d.IsNegative() {
			response.BadRequest(c, "invalid "+name)
			return q, false
		}
		*dst = &d
	}
	if q.MinPrice != nil && q.MaxPrice != nil && q.MinPrice.GreaterThan(*q.MaxPrice) {
		response.BadRequest(c, "minPrice cannot exceed maxPrice")
		return q, false
	}

	if v := c.Query("trending"); v != "" {
		t, err := strconv.ParseBool(v)
		if err != nil {
			response.BadRequest(c, "invalid trending")
			return q, false
		}
		q.Trending = &t
	}
	return q, true
}

func csv(v string) []string {
	if v == "" {
		return nil
	}
	return strings.Split(v, ",")
}
