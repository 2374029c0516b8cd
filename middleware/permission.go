package middleware

import (
	"net/http"

	"milkmart/models"

	"github.com/gin-gonic/gin"
)

// CheckSellerPermissionMiddleware aborts callers whose token role is
// not seller. Ownership of the individual record is checked later by
// the handler.
func CheckSellerPermissionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("Role")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid token",
			})
			c.Abort()
			return
		}
		if role != models.RoleSeller {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Only sellers can perform this action",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
