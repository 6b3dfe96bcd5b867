package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/resto-order-core/middlewares"
	"github.com/yeremiapane/resto-order-core/services"
	"github.com/yeremiapane/resto-order-core/utils"
)

type InvoiceController struct {
	Invoices *services.InvoiceService
}

func NewInvoiceController(invoices *services.InvoiceService) *InvoiceController {
	return &InvoiceController{Invoices: invoices}
}

type settleRequest struct {
	OrderIDs      []uint `json:"order_ids" binding:"required"`
	PaymentTypeID uint   `json:"payment_type_id"`
}

// PaymentSummary -> POST /admin/orders/payment-summary
func (ic *InvoiceController) PaymentSummary(c *gin.Context) {
	var req orderIDsRequest
	if !bindJSON(c, &req) {
		return
	}

	summary, err := ic.Invoices.PaymentSummary(c.Request.Context(), middlewares.TenantID(c), req.OrderIDs)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Payment summary", summary)
}

// PayAndComplete -> POST /admin/orders/pay
func (ic *InvoiceController) PayAndComplete(c *gin.Context) {
	var req settleRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := ic.Invoices.PayAndComplete(c.Request.Context(), middlewares.TenantID(c), req.OrderIDs, req.PaymentTypeID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Orders paid", res)
}

// CreateInvoice -> POST /admin/invoices
func (ic *InvoiceController) CreateInvoice(c *gin.Context) {
	var req settleRequest
	if !bindJSON(c, &req) {
		return
	}

	invoice, err := ic.Invoices.CreateInvoice(c.Request.Context(), middlewares.TenantID(c), req.OrderIDs, req.PaymentTypeID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Invoice created", invoice)
}

func (ic *InvoiceController) GetInvoiceByID(c *gin.Context) {
	invoiceID, ok := parseIDParam(c, "invoice_id")
	if !ok {
		return
	}

	invoice, err := ic.Invoices.GetInvoice(c.Request.Context(), middlewares.TenantID(c), invoiceID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Invoice detail", gin.H{
		"invoice":         invoice,
		"order_ids":       invoice.OrderIDs(),
		"total_formatted": utils.FormatCurrency(invoice.Total),
	})
}
