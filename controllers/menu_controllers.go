package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/resto-order-core/middlewares"
	"github.com/yeremiapane/resto-order-core/models"
	"github.com/yeremiapane/resto-order-core/services"
	"github.com/yeremiapane/resto-order-core/utils"
	"gorm.io/gorm"
)

// MenuController exposes the menu read-only; editing belongs to the settings backend.
type MenuController struct {
	DB *gorm.DB
}

func NewMenuController(db *gorm.DB) *MenuController {
	return &MenuController{DB: db}
}

type menuEntry struct {
	models.MenuItem
	LowStock []models.Ingredient `json:"low_stock,omitempty"`
}

func (mc *MenuController) load(c *gin.Context, tenantID uint, enabledOnly bool) ([]models.MenuItem, error) {
	q := mc.DB.WithContext(c.Request.Context()).
		Preload("Category").
		Preload("Tax").
		Preload("Variants").
		Preload("Addons").
		Where("tenant_id = ?", tenantID)
	if enabledOnly {
		q = q.Where("enabled = ?", true)
	} else {
		q = q.Preload("RecipeLinks.Ingredient")
	}

	var items []models.MenuItem
	err := q.Order("title asc").Find(&items).Error
	return items, err
}

// GetAllMenus -> POS view with ingredients running low
func (mc *MenuController) GetAllMenus(c *gin.Context) {
	items, err := mc.load(c, middlewares.TenantID(c), false)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	entries := make([]menuEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, menuEntry{MenuItem: item, LowStock: services.LowStock(item)})
	}
	utils.RespondJSON(c, http.StatusOK, "List of menus", entries)
}

// GetPublicMenu -> GET /qr/:tenant_id/menu for guests at a table
func (mc *MenuController) GetPublicMenu(c *gin.Context) {
	tenantID, ok := parseIDParam(c, "tenant_id")
	if !ok {
		return
	}

	items, err := mc.load(c, tenantID, true)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of menus", items)
}
