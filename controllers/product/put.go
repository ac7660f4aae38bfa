package productcontroller

import (
	"github.com/devclub-nstru/tryyel-backend/response"
	"github.com/gin-gonic/gin"
)

// PUT /api/admin/products/:id
func UpdateProduct(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := response.IDParam(c, "id")
		if !ok {
			return
		}
		var input Input
		if err := c.ShouldBindJSON(&input); err != nil {
			response.BadRequest(c, "invalid product payload")
			return
		}
		product, err := s.Update(c.Request.Context(), id, input)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.WithMessage(c, "Product updated successfully", product)
	}
}
