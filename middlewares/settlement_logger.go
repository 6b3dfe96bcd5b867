package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/resto-order-core/utils"
)

// SettlementLogger audits the money-moving endpoints (invoice, pay) per tenant and user.
func SettlementLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		fields := logrus.Fields{
			"tenant_id": TenantID(c),
			"user_id":   UserID(c),
			"route":     c.FullPath(),
		}
		utils.InfoLogger.WithFields(fields).Info("settlement requested")

		c.Next()

		fields["status"] = c.Writer.Status()
		if c.Writer.Status() < 300 {
			utils.InfoLogger.WithFields(fields).Info("settlement succeeded")
		} else {
			utils.ErrorLogger.WithFields(fields).Error("settlement failed")
		}
	}
}
