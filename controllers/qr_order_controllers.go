package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/resto-order-core/middlewares"
	"github.com/yeremiapane/resto-order-core/models"
	"github.com/yeremiapane/resto-order-core/services"
	"github.com/yeremiapane/resto-order-core/utils"
)

// QrOrderController serves guest orders placed from a table's QR menu. Guests are not
// logged in: the tenant and table come from the path printed in the QR code.
type QrOrderController struct {
	QrOrders *services.QrOrderService
}

func NewQrOrderController(qrOrders *services.QrOrderService) *QrOrderController {
	return &QrOrderController{QrOrders: qrOrders}
}

// Submit -> POST /qr/:tenant_id/tables/:table_id/orders
func (qc *QrOrderController) Submit(c *gin.Context) {
	tenantID, ok := parseIDParam(c, "tenant_id")
	if !ok {
		return
	}
	tableID, ok := parseIDParam(c, "table_id")
	if !ok {
		return
	}
	var req struct {
		Lines []models.CartLine `json:"lines"`
	}
	if !bindJSON(c, &req) {
		return
	}

	qr, err := qc.QrOrders.Submit(c.Request.Context(), tenantID, tableID, req.Lines)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Order sent to the counter", gin.H{"qr_order_id": qr.ID})
}

// GetPending -> GET /admin/qr-orders
func (qc *QrOrderController) GetPending(c *gin.Context) {
	pending, err := qc.QrOrders.Pending(c.Request.Context(), middlewares.TenantID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Pending QR orders", pending)
}

// GetQrOrder -> GET /admin/qr-orders/:qr_order_id; lines come back in the shape CreateOrder takes
func (qc *QrOrderController) GetQrOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "qr_order_id")
	if !ok {
		return
	}

	qr, err := qc.QrOrders.Get(c.Request.Context(), middlewares.TenantID(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	lines := make([]models.CartLine, 0, len(qr.Lines))
	for _, l := range qr.Lines {
		lines = append(lines, l.CartLine())
	}
	utils.RespondJSON(c, http.StatusOK, "QR order detail", gin.H{"qr_order": qr, "lines": lines})
}

// Reject -> DELETE /admin/qr-orders/:qr_order_id
func (qc *QrOrderController) Reject(c *gin.Context) {
	id, ok := parseIDParam(c, "qr_order_id")
	if !ok {
		return
	}

	if err := qc.QrOrders.Reject(c.Request.Context(), middlewares.TenantID(c), id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "QR order rejected", nil)
}
