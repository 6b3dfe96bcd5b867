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

// PaymentTypeController manages the tenders a tenant accepts at settlement.
type PaymentTypeController struct {
	DB *gorm.DB
}

func NewPaymentTypeController(db *gorm.DB) *PaymentTypeController {
	return &PaymentTypeController{DB: db}
}

func (pc *PaymentTypeController) GetPaymentTypes(c *gin.Context) {
	var types []models.PaymentType
	if err := pc.DB.WithContext(c.Request.Context()).
		Where("tenant_id = ?", middlewares.TenantID(c)).
		Order("title asc").
		Find(&types).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Payment types", types)
}

func (pc *PaymentTypeController) CreatePaymentType(c *gin.Context) {
	var req struct {
		Title string `json:"title" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("title is required"))
		return
	}

	pt := models.PaymentType{TenantID: middlewares.TenantID(c), Title: title}
	if err := pc.DB.WithContext(c.Request.Context()).Create(&pt).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.InfoLogger.WithField("tenant_id", pt.TenantID).Infof("payment type created: %s", pt.Title)
	utils.RespondJSON(c, http.StatusCreated, "Payment type created", pt)
}
