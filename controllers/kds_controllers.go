package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/resto-order-core/kds"
	"github.com/yeremiapane/resto-order-core/middlewares"
	"github.com/yeremiapane/resto-order-core/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type KDSController struct {
	Hub *kds.Hub
}

func NewKDSController(hub *kds.Hub) *KDSController {
	return &KDSController{Hub: hub}
}

// Handler -> GET /ws?token=...; the session then has to authenticate for its tenant.
func (kc *KDSController) Handler(c *gin.Context) {
	tenantID := middlewares.TenantID(c)
	if tenantID == 0 {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Errorf("websocket upgrade failed: %v", err)
		return
	}

	kds.Serve(kc.Hub, ws, tenantID, middlewares.Role(c))
}
