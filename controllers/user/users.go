package userControllers

import (
	"net/http"

	"github.com/devclub-nstru/tryyel-backend/auth"
	"github.com/devclub-nstru/tryyel-backend/response"
	"github.com/gin-gonic/gin"
)

// GET /api/user/profile
func GetUser(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := s.Get(c.Request.Context(), auth.UserID(c))
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, user)
	}
}

// PUT /api/user/profile
func UpdateUser(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input UpdateUserInput
		if err := c.ShouldBindJSON(&input); err != nil {
			response.BadRequest(c, "invalid profile payload")
			return
		}
		user, err := s.Update(c.Request.Context(), auth.UserID(c), input)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.WithMessage(c, "Profile updated successfully", user)
	}
}

// DELETE /api/user/profile
func DeleteUser(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.Delete(c.Request.Context(), auth.UserID(c)); err != nil {
			response.Error(c, err)
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie("token", "", -1, "/", "", c.Request.TLS != nil, true)
		response.Message(c, "Account deleted successfully")
	}
}
