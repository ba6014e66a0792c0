package middleware

import (
	"github.com/gin-gonic/gin"
	"taxdocpipeline/internal/utils"
)

// RequireOperator allows only the operator role to access an endpoint.
// This pipeline has a single privileged role; there is no multi-tenant
// admin/user split.
func RequireOperator() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := GetUserRole(c)
		if role != "admin" {
			utils.Error(c, 403, "operator privileges required", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

