package middleware

import (
	"net/http"
	"strings"

	"streaming-api/internal/response"
	"streaming-api/internal/services"

	"github.com/gin-gonic/gin"
)

const userIDKey = "user_id"

// AuthMiddleware validates the Bearer token and stores the user id in the
// request context.
func AuthMiddleware(tokens *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, response.Error("Authorization header required"))
			c.Abort()
			return
		}

		// Format should be "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, response.Error("Invalid authorization format. Use 'Bearer <token>'"))
			c.Abort()
			return
		}

		userID, err := tokens.Parse(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, response.Error("Invalid token"))
			c.Abort()
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserIDFromContext extracts the authenticated user id set by AuthMiddleware.
func UserIDFromContext(c *gin.Context) (uint, bool) {
	value, exists := c.Get(userIDKey)
	if !exists {
		return 0, false
	}
	userID, ok := value.(uint)
	return userID, ok
}
