package categoryController

import (
	"strconv"

	"github.com/devclub-nstru/tryyel-backend/response"
	"github.com/gin-gonic/gin"
)

// GET /api/categories
func GetAllCategories(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		categories, err := s.List(c.Request.Context())
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, categories)
	}
}

// GET /api/categories/:id
func GetCategoryByID(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := response.IDParam(c, "id")
		if !ok {
			return
		}
		category, err := s.Get(c.Request.Context(), id)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, category)
	}
}

// POST /api/admin/categories
func CreateCategory(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input Input
		if err := c.ShouldBindJSON(&input); err != nil {
			response.BadRequest(c, "invalid category payload")
			return
		}
		category, err := s.Create(c.Request.Context(), input)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Created(c, "Category created successfully", category)
	}
}

// PUT /api/admin/categories/:id
func UpdateCategory(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := response.IDParam(c, "id")
		if !ok {
			return
		}
		var input Input
		if err := c.ShouldBindJSON(&input); err != nil {
			response.BadRequest(c, "invalid category payload")
			return
		}
		category, err := s.Update(c.Request.Context(), id, input)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.WithMessage(c, "Category updated successfully", category)
	}
}

// DELETE /api/admin/categories/:id
func DeleteCategory(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := response.IDParam(c, "id")
		if !ok {
			return
		}
		if err := s.Delete(c.Request.Context(), id); err != nil {
			response.Error(c, err)
			return
		}
		response.Message(c, "Category deleted successfully")
	}
}

// GET /api/subcategories?categoryId=
func GetSubCategories(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var categoryID *uint
		if v := c.Query("categoryId"); v != "" {
			id, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				response.BadRequest(c, "invalid categoryId")
				return
			}
			cid := uint(id)
			categoryID = &cid
		}
		subs, err := s.ListSubCategories(c.Request.Context(), categoryID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, subs)
	}
}

// POST /api/admin/subcategories
func CreateSubCategory(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input SubInput
		if err := c.ShouldBindJSON(&input); err != nil {
			response.BadRequest(c, "invalid subcategory payload")
			return
		}
		sub, err := s.CreateSubCategory(c.Request.Context(), input)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Created(c, "Subcategory created successfully", sub)
	}
}

// PUT /api/admin/subcategories/:id
func UpdateSubCategory(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := response.IDParam(c, "id")
		if !ok {
			return
		}
		var input SubInput
		if err := c.ShouldBindJSON(&input); err != nil {
			response.BadRequest(c, "invalid subcategory payload")
			return
		}
		sub, err := s.UpdateSubCategory(c.Request.Context(), id, input)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.WithMessage(c, "Subcategory updated successfully", sub)
	}
}

// DELETE /api/admin/subcategories/:id
func DeleteSubCategory(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := response.IDParam(c, "id")
		if !ok {
			return
		}
		if err := s.DeleteSubCategory(c.Request.Context(), id); err != nil {
			response.Error(c, err)
			return
		}
		response.Message(c, "Subcategory deleted successfully")
	}
}

// GET /api/categories/home
func GetHomeCategories(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		home, err := s.ListHome(c.Request.Context())
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, home)
	}
}

// POST /api/admin/categories/home
func AddHomeCategory(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			CategoryID uint `json:"categoryId" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			response.BadRequest(c, "categoryId is required")
			return
		}
		home, err := s.AddHome(c.Request.Context(), input.CategoryID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Created(c, "Category added to home page", home)
	}
}

// DELETE /api/admin/categories/home/:categoryId
func RemoveHomeCategory(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := response.IDParam(c, "categoryId")
		if !ok {
			return
		}
		if err := s.RemoveHome(c.Request.Context(), id); err != nil {
			response.Error(c, err)
			return
		}
		response.Message(c, "Category removed from home page")
	}
}
