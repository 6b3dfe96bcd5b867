package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/resto-order-core/middlewares"
	"github.com/yeremiapane/resto-order-core/models"
	"github.com/yeremiapane/resto-order-core/services"
	"github.com/yeremiapane/resto-order-core/utils"
)

type CartController struct {
	Inventory *services.InventoryChecker
	Cart      *services.CartService
}

func NewCartController(inventory *services.InventoryChecker, cart *services.CartService) *CartController {
	return &CartController{Inventory: inventory, Cart: cart}
}

// CheckAvailability -> POST /admin/cart/availability
func (cc *CartController) CheckAvailability(c *gin.Context) {
	var req struct {
		MenuItemID uint   `json:"menu_item_id" binding:"required"`
		Quantity   int    `json:"quantity" binding:"required"`
		VariantID  uint   `json:"variant_id"`
		AddonIDs   []uint `json:"addon_ids"`
	}
	if !bindJSON(c, &req) {
		return
	}

	ok, err := cc.Inventory.CheckAvailability(c.Request.Context(), middlewares.TenantID(c), req.MenuItemID, req.Quantity, req.VariantID, req.AddonIDs)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Availability checked", gin.H{"available": ok})
}

// AddLine -> POST /admin/cart/lines, returns the line priced against the current menu
func (cc *CartController) AddLine(c *gin.Context) {
	var sel models.CartLine
	if !bindJSON(c, &sel) {
		return
	}

	line, err := cc.Cart.AddLine(c.Request.Context(), middlewares.TenantID(c), sel)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Line added", line)
}

// Summary -> POST /admin/cart/summary
func (cc *CartController) Summary(c *gin.Context) {
	var req struct {
		Lines []models.CartLine `json:"lines"`
	}
	if !bindJSON(c, &req) {
		return
	}

	summary, err := cc.Cart.Summarize(c.Request.Context(), middlewares.TenantID(c), req.Lines)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Price summary", summary)
}
