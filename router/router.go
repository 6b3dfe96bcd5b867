package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/resto-order-core/controllers"
	"github.com/yeremiapane/resto-order-core/drafts"
	"github.com/yeremiapane/resto-order-core/kds"
	"github.com/yeremiapane/resto-order-core/middlewares"
	"github.com/yeremiapane/resto-order-core/models"
	"github.com/yeremiapane/resto-order-core/services"
	"github.com/yeremiapane/resto-order-core/utils"
	"gorm.io/gorm"
)

// Deps is everything the HTTP layer needs. Nothing is reached through package globals.
type Deps struct {
	DB     *gorm.DB
	Hub    *kds.Hub
	Drafts *drafts.Store
	Tokens *utils.TokenIssuer

	QRMenuBaseURL      string
	CORSOrigin         string
	RequestTimeout     time.Duration
	RateLimitPerSecond int
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(d.CORSOrigin))
	r.Use(middlewares.LoggerMiddleware())
	if d.RateLimitPerSecond > 0 {
		r.Use(middlewares.NewRateLimiter(d.RateLimitPerSecond, time.Second).RateLimit())
	}

	inventory := services.NewInventoryChecker(d.DB)
	cartSvc := services.NewCartService(d.DB)
	orderSvc := services.NewOrderService(d.DB, d.Hub)
	invoiceSvc := services.NewInvoiceService(d.DB, d.Hub)
	qrSvc := services.NewQrOrderService(d.DB, d.Hub)

	userCtrl := controllers.NewUserController(d.DB, d.Tokens)
	tableCtrl := controllers.NewTableController(d.DB, d.QRMenuBaseURL)
	customerCtrl := controllers.NewCustomerController(d.DB)
	menuCtrl := controllers.NewMenuController(d.DB)
	paymentTypeCtrl := controllers.NewPaymentTypeController(d.DB)
	cartCtrl := controllers.NewCartController(inventory, cartSvc)
	orderCtrl := controllers.NewOrderController(orderSvc)
	invoiceCtrl := controllers.NewInvoiceController(invoiceSvc)
	qrCtrl := controllers.NewQrOrderController(qrSvc)
	draftCtrl := controllers.NewDraftController(d.Drafts)
	kdsCtrl := controllers.NewKDSController(d.Hub)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/login", userCtrl.Login)
	}

	// guests ordering from a table QR code
	qr := r.Group("/qr/:tenant_id")
	qr.Use(middlewares.RequestTimeout(d.RequestTimeout))
	{
		qr.GET("/menu", menuCtrl.GetPublicMenu)
		qr.POST("/tables/:table_id/orders", qrCtrl.Submit)
	}

	// kitchen displays and POS terminals
	ws := r.Group("/ws")
	ws.Use(middlewares.WebSocketAuthMiddleware(d.Tokens))
	{
		ws.GET("", kdsCtrl.Handler)
	}

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/admin")
	auth.Use(middlewares.AuthMiddleware(d.Tokens))
	auth.Use(middlewares.RequestTimeout(d.RequestTimeout))

	front := middlewares.RequireRole(models.RoleStaff, models.RoleCashier)
	kitchen := middlewares.RequireRole(models.RoleChef, models.RoleStaff)
	cashier := middlewares.RequireRole(models.RoleCashier)
	admin := middlewares.RequireRole()

	auth.GET("/profile", userCtrl.GetProfile)
	auth.GET("/users", admin, userCtrl.GetAllUsers)
	auth.POST("/users", admin, userCtrl.CreateUser)

	// TABLES
	auth.GET("/tables", tableCtrl.GetAllTables)
	auth.POST("/tables", admin, tableCtrl.CreateTable)
	auth.GET("/tables/:table_id/qr", front, tableCtrl.GetTableQR)

	// CUSTOMERS
	auth.GET("/customers", front, customerCtrl.GetAllCustomers)
	auth.POST("/customers", front, customerCtrl.CreateCustomer)
	auth.GET("/customers/:customer_id", front, customerCtrl.GetCustomerByID)

	// MENU, PAYMENT TYPES
	auth.GET("/menus", menuCtrl.GetAllMenus)
	auth.GET("/payment-types", paymentTypeCtrl.GetPaymentTypes)
	auth.POST("/payment-types", admin, paymentTypeCtrl.CreatePaymentType)

	// CART
	auth.POST("/cart/availability", front, cartCtrl.CheckAvailability)
	auth.POST("/cart/lines", front, cartCtrl.AddLine)
	auth.POST("/cart/summary", front, cartCtrl.Summary)

	// DRAFTS (per terminal)
	auth.GET("/drafts", front, draftCtrl.GetDrafts)
	auth.POST("/drafts", front, draftCtrl.SaveDraft)
	auth.GET("/drafts/:draft_id", front, draftCtrl.GetDraft)
	auth.DELETE("/drafts/:draft_id", front, draftCtrl.DeleteDraft)

	// ORDERS
	auth.GET("/orders", orderCtrl.GetAllOrders)
	auth.POST("/orders", front, orderCtrl.CreateOrder)
	auth.GET("/orders/:order_id", orderCtrl.GetOrderByID)
	auth.POST("/orders/cancel", front, orderCtrl.CancelOrders)
	auth.POST("/orders/complete", front, orderCtrl.CompleteOrders)
	auth.POST("/orders/payment-status", cashier, orderCtrl.MarkPaymentStatus)
	auth.POST("/orders/payment-summary", front, invoiceCtrl.PaymentSummary)

	// QR ORDERS waiting for the counter
	auth.GET("/qr-orders", front, qrCtrl.GetPending)
	auth.GET("/qr-orders/:qr_order_id", front, qrCtrl.GetQrOrder)
	auth.DELETE("/qr-orders/:qr_order_id", front, qrCtrl.Reject)

	// KITCHEN
	auth.GET("/kitchen/queue", kitchen, orderCtrl.GetKitchenQueue)
	auth.PATCH("/order-items/:item_id/status", kitchen, orderCtrl.SetItemStatus)

	// SETTLEMENT
	settle := auth.Group("")
	settle.Use(cashier, middlewares.SettlementLogger())
	{
		settle.POST("/orders/pay", invoiceCtrl.PayAndComplete)
		settle.POST("/invoices", invoiceCtrl.CreateInvoice)
	}
	auth.GET("/invoices/:invoice_id", front, invoiceCtrl.GetInvoiceByID)

	return r
}
