package auth

import (
	"net/http"
	"time"

	"github.com/devclub-nstru/tryyel-backend/response"
	"github.com/gin-gonic/gin"
)

const cookieName = "token"

// POST /api/auth/send-otp
func SendOTP(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			MobileNumber string `json:"mobileNumber" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			response.BadRequest(c, "mobileNumber is required")
			return
		}
		if err := s.SendOTP(c.Request.Context(), input.MobileNumber); err != nil {
			response.Error(c, err)
			return
		}
		response.Message(c, "OTP sent successfully")
	}
}

// POST /api/auth/verify-otp
func VerifyOTP(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			MobileNumber string `json:"mobileNumber" binding:"required"`
			OTP          string `json:"otp" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			response.BadRequest(c, "mobileNumber and otp are required")
			return
		}
		session, err := s.VerifyOTP(c.Request.Context(), input.MobileNumber, input.OTP)
		if err != nil {
			response.Error(c, err)
			return
		}
		setTokenCookie(c, session.Token, s.ttl)
		response.WithMessage(c, "Login successful", session)
	}
}

// POST /api/auth/check-user
func CheckUser(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			IDToken string `json:"idToken" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			response.BadRequest(c, "idToken is required")
			return
		}
		session, err := s.CheckUser(c.Request.Context(), input.IDToken)
		if err != nil {
			response.Error(c, err)
			return
		}
		setTokenCookie(c, session.Token, s.ttl)
		response.OK(c, session)
	}
}

// GET /api/auth/me
func Me(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := s.Me(c.Request.Context(), UserID(c))
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, user)
	}
}

// POST /api/auth/logout
func Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cookieName, "", -1, "/", "", c.Request.TLS != nil, true)
	response.Message(c, "Logged out")
}

func setTokenCookie(c *gin.Context, token string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cookieName, token, int(ttl.Seconds()), "/", "", c.Request.TLS != nil, true)
}
