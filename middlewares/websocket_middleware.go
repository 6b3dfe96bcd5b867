package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/resto-order-core/utils"
)

// WebSocketAuthMiddleware reads the token from the query string; browsers cannot set
// headers on a websocket upgrade.
func WebSocketAuthMiddleware(issuer *utils.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.AbortWithStatus(401)
			return
		}

		claims, err := issuer.ParseToken(token)
		if err != nil {
			c.AbortWithStatus(401)
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextTenantID, claims.TenantID)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}
