package middleware

import (
	"strings"

	"github.com/devclub-nstru/tryyel-backend/apperr"
	"github.com/devclub-nstru/tryyel-backend/auth"
	"github.com/devclub-nstru/tryyel-backend/models"
	"github.com/devclub-nstru/tryyel-backend/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ValidateToken accepts the "token" cookie or an Authorization bearer header
// and requires the user it names to still exist.
func ValidateToken(db *gorm.DB, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, _ := c.Cookie("token")
		if tokenString == "" {
			if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
				tokenString = strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
			}
		}
		if tokenString == "" {
			response.Error(c, apperr.Authentication("No token provided"))
			return
		}

		userID, err := auth.ParseToken(secret, tokenString)
		if err != nil {
			response.Error(c, apperr.Authentication("Not authorized, token invalid"))
			return
		}

		var count int64
		if err := db.WithContext(c.Request.Context()).Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
			response.Error(c, apperr.Internal(err, "middleware.validate_token"))
			return
		}
		if count == 0 {
			response.Error(c, apperr.Authentication("Not authorized, user not found"))
			return
		}

		auth.SetUserID(c, userID)
		c.Next()
	}
}
