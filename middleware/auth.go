package middleware

import (
	"strings"

	"milkmart/jwt"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuthMiddleware resolves the bearer token into context keys. Requests
// without a valid token pass through unauthenticated; the route groups
// decide whether that is acceptable.
func AuthMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		token := strings.TrimPrefix(authHeader, "Bearer ")

		if token == "" {
			c.Next()
			return
		}

		claims, err := jwt.VerifyToken(&token, db)
		if err != nil {
			logrus.WithError(err).WithField("request_id", c.GetString("RequestID")).
				Debug("token rejected")
			c.Next()
			return
		}

		c.Set("Token", token)
		c.Set("UserID", claims.UserID)
		c.Set("Role", claims.Role)
		c.Set("Phone", claims.Phone)
		c.Set("Fname", claims.Fname)
		c.Next()
	}
}
