package productcontroller

import (
	"github.com/devclub-nstru/tryyel-backend/response"
	"github.com/gin-gonic/gin"
)

// DELETE /api/admin/products/:id
func DeleteProduct(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := response.IDParam(c, "id")
		if !ok {
			return
		}
		if err := s.Delete(c.Request.Context(), id); err != nil {
			response.Error(c, err)
			return
		}
		response.Message(c, "Product deleted successfully")
	}
}
