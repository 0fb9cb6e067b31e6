// Package middleware holds the Gin middleware shared by the API routes.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vedalearn/session-backend/internal/response"
)

// ContextKeyToken is the Gin context key for the learner's access token.
const ContextKeyToken = "access_token"

// RequireAccessToken extracts the learner's bearer token and stores it in the
// request context. The token is opaque here: it is forwarded to the learning
// API, which owns validation. Requests without a token are rejected early so
// they never reach the upstream.
func RequireAccessToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			// WebSocket upgrades cannot set headers from the browser.
			token = c.Query("token")
		}
		if token == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		c.Set(ContextKeyToken, token)
		c.Next()
	}
}

// GetToken returns the access token stored by RequireAccessToken.
func GetToken(c *gin.Context) string {
	token, _ := c.Get(ContextKeyToken)
	s, _ := token.(string)
	return s
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
