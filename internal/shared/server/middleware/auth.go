package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"filings-backend/internal/shared/server/respond"
)

// Auth enforces the shared API key. Every row in the system is readable and
// writable by any caller holding the key; there is no per-user ownership.
// An empty configured key disables the check entirely (dev mode).
func Auth(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		if apiKey == "" {
			c.Next()
			return
		}

		presented := presentedKey(c)
		if presented == "" {
			respond.Error(c, http.StatusUnauthorized, respond.CodeUnauthorized, "missing API key", nil)
			return
		}
		if subtle.ConstantTimeCompare([]byte(presented), []byte(apiKey)) != 1 {
			respond.Error(c, http.StatusUnauthorized, respond.CodeUnauthorized, "invalid API key", nil)
			return
		}

		c.Next()
	}
}

func presentedKey(c *gin.Context) string {
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return strings.TrimSpace(c.GetHeader("X-Api-Key"))
}
