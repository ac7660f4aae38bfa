package middleware

import (
	"crypto/subtle"

	"github.com/devclub-nstru/tryyel-backend/apperr"
	"github.com/devclub-nstru/tryyel-backend/response"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// ValidateAPIKey guards admin routes. An empty configured key rejects everything.
// Browsers cannot set headers on a websocket handshake, so upgrades may pass
// the key as ?apiKey= instead.
func ValidateAPIKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader("X-API-KEY")
		if apiKey == "" && websocket.IsWebSocketUpgrade(c.Request) {
			apiKey = c.Query("apiKey")
		}
		if key == "" || subtle.ConstantTimeCompare([]byte(apiKey), []byte(key)) != 1 {
			response.Error(c, apperr.Authentication("Invalid or missing API key"))
			return
		}
		c.Next()
	}
}
