package collectionController

import (
	"github.com/devclub-nstru/tryyel-backend/response"
	"github.com/gin-gonic/gin"
)

// GET /api/collections?type=
func GetCollections(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		collections, err := s.List(c.Request.Context(), c.Query("type"))
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, collections)
	}
}

// GET /api/collections/:id
func GetCollectionByID(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := response.IDParam(c, "id")
		if !ok {
			return
		}
		col, err := s.Get(c.Request.Context(), id)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, col)
	}
}

// POST /api/admin/collections
func CreateCollection(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input Input
		if err := c.ShouldBindJSON(&input); err != nil {
			response.BadRequest(c, "invalid collection payload")
			return
		}
		col, err := s.Create(c.Request.Context(), input)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Created(c, "Collection created successfully", col)
	}
}

// PUT /api/admin/collections/:id
func UpdateCollection(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := response.IDParam(c, "id")
		if !ok {
			return
		}
		var input Input
		if err := c.ShouldBindJSON(&input); err != nil {
			response.BadRequest(c, "invalid collection payload")
			return
		}
		col, err := s.Update(c.Request.Context(), id, input)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.WithMessage(c, "Collection updated successfully", col)
	}
}

// DELETE /api/admin/collections/:id
func DeleteCollection(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := response.IDParam(c, "id")
		if !ok {
			return
		}
		if err := s.Delete(c.Request.Context(), id); err != nil {
			response.Error(c, err)
			return
		}
		response.Message(c, "Collection deleted successfully")
	}
}
