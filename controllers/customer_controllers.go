package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/resto-order-core/middlewares"
	"github.com/yeremiapane/resto-order-core/models"
	"github.com/yeremiapane/resto-order-core/utils"
	"gorm.io/gorm"
)

// CustomerController keeps the registered customers orders and invoices can reference.
type CustomerController struct {
	DB *gorm.DB
}

func NewCustomerController(db *gorm.DB) *CustomerController {
	return &CustomerController{DB: db}
}

// GetAllCustomers -> GET /admin/customers?q=
func (cc *CustomerController) GetAllCustomers(c *gin.Context) {
	q := cc.DB.WithContext(c.Request.Context()).Where("tenant_id = ?", middlewares.TenantID(c))
	if term := strings.TrimSpace(c.Query("q")); term != "" {
		like := "%" + term + "%"
		q = q.Where("name LIKE ? OR phone LIKE ?", like, like)
	}

	var customers []models.Customer
	if err := q.Order("name asc").Find(&customers).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of customers", customers)
}

func (cc *CustomerController) CreateCustomer(c *gin.Context) {
	var req struct {
		Name  string `json:"name" binding:"required"`
		Phone string `json:"phone"`
	}
	if !bindJSON(c, &req) {
		return
	}

	customer := models.Customer{
		TenantID: middlewares.TenantID(c),
		Name:     strings.TrimSpace(req.Name),
		Phone:    strings.TrimSpace(req.Phone),
	}
	if err := cc.DB.WithContext(c.Request.Context()).Create(&customer).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.WithField("tenant_id", customer.TenantID).Infof("New customer created (ID=%d)", customer.ID)
	utils.RespondJSON(c, http.StatusCreated, "Customer created", customer)
}

func (cc *CustomerController) GetCustomerByID(c *gin.Context) {
	id, ok := parseIDParam(c, "customer_id")
	if !ok {
		return
	}

	var customer models.Customer
	if err := cc.DB.WithContext(c.Request.Context()).
		Where("id = ? AND tenant_id = ?", id, middlewares.TenantID(c)).
		First(&customer).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("customer not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Customer detail", customer)
}
