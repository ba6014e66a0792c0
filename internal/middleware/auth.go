package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"taxdocpipeline/internal/services"
	"taxdocpipeline/internal/utils"
)

// AuthMiddleware creates JWT authentication middleware
func AuthMiddleware(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.Error(c, 401, "unauthorized, please log in", nil)
			c.Abort()
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := authService.VerifyToken(token)

		if err != nil {
			utils.Error(c, 401, "session expired, please log in again", nil)
			c.Abort()
			return
		}

		// Set user info in context
		c.Set("userId", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("role", claims.Role)

		c.Next()
	}
}

// GetUserID gets user ID from context
func GetUserID(c *gin.Context) string {
	if id, exists := c.Get("userId"); exists {
		return id.(string)
	}
	return ""
}

// GetUsername gets username from context
func GetUsername(c *gin.Context) string {
	if username, exists := c.Get("username"); exists {
		return username.(string)
	}
	return ""
}

// GetUserRole gets user role from context
func GetUserRole(c *gin.Context) string {
	if role, exists := c.Get("role"); exists {
		return role.(string)
	}
	return ""
}
