package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
	"github.com/yeremiapane/resto-order-core/middlewares"
	"github.com/yeremiapane/resto-order-core/models"
	"github.com/yeremiapane/resto-order-core/utils"
	"gorm.io/gorm"
)

const (
	qrDefaultSize = 256
	qrMaxSize     = 1024
)

type TableController struct {
	DB        *gorm.DB
	QRBaseURL string
}

func NewTableController(db *gorm.DB, qrBaseURL string) *TableController {
	return &TableController{DB: db, QRBaseURL: strings.TrimRight(qrBaseURL, "/")}
}

// CreateTable -> menambahkan meja baru
func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		TableNumber string `json:"table_number" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}

	table := models.Table{TenantID: middlewares.TenantID(c), TableNumber: req.TableNumber}
	if err := tc.DB.WithContext(c.Request.Context()).Create(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.WithField("tenant_id", table.TenantID).Infof("New table created: %s", table.TableNumber)
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

func (tc *TableController) GetAllTables(c *gin.Context) {
	var tables []models.Table
	if err := tc.DB.WithContext(c.Request.Context()).Where("tenant_id = ?", middlewares.TenantID(c)).Find(&tables).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

// MenuURL is what a table's QR code points guests to.
func (tc *TableController) MenuURL(tenantID, tableID uint) string {
	return fmt.Sprintf("%s/%d/tables/%d", tc.QRBaseURL, tenantID, tableID)
}

// GetTableQR -> PNG of the QR code guests scan to order from this table
func (tc *TableController) GetTableQR(c *gin.Context) {
	tableID, ok := parseIDParam(c, "table_id")
	if !ok {
		return
	}
	size := qrDefaultSize
	if raw := c.Query("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 64 || n > qrMaxSize {
			utils.RespondError(c, http.StatusBadRequest, errors.New("size must be between 64 and 1024"))
			return
		}
		size = n
	}

	tenantID := middlewares.TenantID(c)
	var table models.Table
	if err := tc.DB.WithContext(c.Request.Context()).Where("id = ? AND tenant_id = ?", tableID, tenantID).First(&table).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("table not found"))
		return
	}

	png, err := qrcode.Encode(tc.MenuURL(tenantID, table.ID), qrcode.Medium, size)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, fmt.Errorf("failed to generate QR code: %w", err))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=table-%s.png", table.TableNumber))
	c.Data(http.StatusOK, "image/png", png)
}
