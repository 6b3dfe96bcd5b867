package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/resto-order-core/middlewares"
	"github.com/yeremiapane/resto-order-core/models"
	"github.com/yeremiapane/resto-order-core/services"
	"github.com/yeremiapane/resto-order-core/utils"
)

type OrderController struct {
	Orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{Orders: orders}
}

type orderIDsRequest struct {
	OrderIDs []uint `json:"order_ids" binding:"required"`
}

// CreateOrder -> POST /admin/orders
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var in services.CreateOrderInput
	if !bindJSON(c, &in) {
		return
	}

	res, err := oc.Orders.CreateOrder(c.Request.Context(), middlewares.TenantID(c), in)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Order created", res)
}

// GetAllOrders -> GET /admin/orders?status=&payment_status=&table_id=&day=&open=
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	filter := services.OrderFilter{
		Status:        models.ItemStatus(c.Query("status")),
		PaymentStatus: models.PaymentStatus(c.Query("payment_status")),
		Day:           c.Query("day"),
		OpenOnly:      c.Query("open") == "true",
	}
	if raw := c.Query("table_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondServiceError(c, services.ErrValidation)
			return
		}
		filter.TableID = uint(id)
	}

	orders, err := oc.Orders.ListOrders(c.Request.Context(), middlewares.TenantID(c), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

func (oc *OrderController) GetOrderByID(c *gin.Context) {
	orderID, ok := parseIDParam(c, "order_id")
	if !ok {
		return
	}

	order, err := oc.Orders.GetOrder(c.Request.Context(), middlewares.TenantID(c), orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// SetItemStatus -> PATCH /admin/order-items/:item_id/status
func (oc *OrderController) SetItemStatus(c *gin.Context) {
	itemID, ok := parseIDParam(c, "item_id")
	if !ok {
		return
	}
	var req struct {
		Status models.ItemStatus `json:"status" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}

	item, err := oc.Orders.SetItemStatus(c.Request.Context(), middlewares.TenantID(c), itemID, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Item status updated", item)
}

// CancelOrders -> POST /admin/orders/cancel
func (oc *OrderController) CancelOrders(c *gin.Context) {
	var req orderIDsRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := oc.Orders.CancelOrder(c.Request.Context(), middlewares.TenantID(c), req.OrderIDs); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Orders cancelled", gin.H{"order_ids": req.OrderIDs})
}

// CompleteOrders -> POST /admin/orders/complete
func (oc *OrderController) CompleteOrders(c *gin.Context) {
	var req orderIDsRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := oc.Orders.CompleteOrder(c.Request.Context(), middlewares.TenantID(c), req.OrderIDs); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Orders completed", gin.H{"order_ids": req.OrderIDs})
}

// MarkPaymentStatus -> POST /admin/orders/payment-status
func (oc *OrderController) MarkPaymentStatus(c *gin.Context) {
	var req struct {
		OrderIDs []uint               `json:"order_ids" binding:"required"`
		Status   models.PaymentStatus `json:"payment_status" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}

	if err := oc.Orders.MarkPaymentStatus(c.Request.Context(), middlewares.TenantID(c), req.OrderIDs, req.Status); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Payment status updated", gin.H{"order_ids": req.OrderIDs, "payment_status": req.Status})
}

// GetKitchenQueue -> GET /admin/kitchen/queue
func (oc *OrderController) GetKitchenQueue(c *gin.Context) {
	queue, err := oc.Orders.KitchenQueue(c.Request.Context(), middlewares.TenantID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Kitchen queue", queue)
}
