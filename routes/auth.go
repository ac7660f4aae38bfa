package routes

import (
	"github.com/devclub-nstru/tryyel-backend/auth"
	"github.com/devclub-nstru/tryyel-backend/middleware"
	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes registers all "/auth/*" endpoints.
func SetupAuthRoutes(api *gin.RouterGroup, s *Services) {
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/send-otp", auth.SendOTP(s.Auth))
		authGroup.POST("/verify-otp", auth.VerifyOTP(s.Auth))
		authGroup.POST("/check-user", auth.CheckUser(s.Auth))
		authGroup.POST("/logout", auth.Logout)
		authGroup.GET("/me", middleware.ValidateToken(s.DB, s.JWTSecret), auth.Me(s.Auth))
	}
}
