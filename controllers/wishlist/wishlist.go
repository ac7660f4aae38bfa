package wishlistController

import (
	"github.com/devclub-nstru/tryyel-backend/auth"
	"github.com/devclub-nstru/tryyel-backend/response"
	"github.com/gin-gonic/gin"
)

// GET /api/wishlist
func GetWishlist(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := s.List(c.Request.Context(), auth.UserID(c))
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, entries)
	}
}

// POST /api/wishlist
func AddToWishlist(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			ProductID uint `json:"productId"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			response.BadRequest(c, "Product ID is required")
			return
		}
		item, err := s.Add(c.Request.Context(), auth.UserID(c), input.ProductID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Created(c, "Product added to wishlist", item)
	}
}

// DELETE /api/wishlist/:productId
func RemoveFromWishlist(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := response.IDParam(c, "productId")
		if !ok {
			return
		}
		if err := s.Remove(c.Request.Context(), auth.UserID(c), id); err != nil {
			response.Error(c, err)
			return
		}
		response.Message(c, "Product removed from wishlist")
	}
}

// GET /api/wishlist/status/:productId
func GetWishlistStatus(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := response.IDParam(c, "productId")
		if !ok {
			return
		}
		in, err := s.Contains(c.Request.Context(), auth.UserID(c), id)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, gin.H{"inWishlist": in})
	}
}
