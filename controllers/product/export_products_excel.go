package productcontroller

import (
	"bytes"
	"net/http"

	"github.com/devclub-nstru/tryyel-backend/response"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// GET /api/admin/products/export
func ExportProductsToExcel(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var buf bytes.Buffer
		if err := s.Export(c.Request.Context(), &buf); err != nil {
			response.Error(c, err)
			return
		}

		c.Header("Content-Disposition", "attachment; filename=products.xlsx")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")
		c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
	}
}

// POST /api/admin/products/import
func ImportProductsFromExcel(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header, err := c.FormFile("file")
		if err != nil {
			response.BadRequest(c, "Excel file is required")
			return
		}
		file, err := header.Open()
		if err != nil {
			response.BadRequest(c, "Failed to open Excel file")
			return
		}
		defer file.Close()

		result, err := s.ImportStock(c.Request.Context(), file, header.Size)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.WithMessage(c, "Import completed", result)
	}
}
