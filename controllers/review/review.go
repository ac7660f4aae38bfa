package reviewController

import (
	"github.com/devclub-nstru/tryyel-backend/auth"
	"github.com/devclub-nstru/tryyel-backend/response"
	"github.com/gin-gonic/gin"
)

// POST /api/reviews
func AddReview(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input Input
		if err := c.ShouldBindJSON(&input); err != nil {
			response.BadRequest(c, "productId and rating are required")
			return
		}
		review, err := s.Add(c.Request.Context(), auth.UserID(c), input)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Created(c, "Review added successfully", review)
	}
}

// GET /api/reviews/product/:productId
func GetProductReviews(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := response.IDParam(c, "productId")
		if !ok {
			return
		}
		reviews, err := s.ListForProduct(c.Request.Context(), id)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.WithMessage(c, "Product reviews fetched successfully", reviews)
	}
}

// PUT /api/reviews/:id
func UpdateReview(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := response.IDParam(c, "id")
		if !ok {
			return
		}
		var input Input
		if err := c.ShouldBindJSON(&input); err != nil {
			response.BadRequest(c, "invalid review payload")
			return
		}
		review, err := s.Update(c.Request.Context(), auth.UserID(c), id, input)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.WithMessage(c, "Review updated successfully", review)
	}
}

// DELETE /api/reviews/:id
func DeleteReview(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := response.IDParam(c, "id")
		if !ok {
			return
		}
		if err := s.Delete(c.Request.Context(), auth.UserID(c), id); err != nil {
			response.Error(c, err)
			return
		}
		response.Message(c, "Review deleted successfully")
	}
}
