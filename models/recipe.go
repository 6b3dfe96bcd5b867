package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrRecipeScope = errors.New("recipe link cannot target a variant and an addon at the same time")

type Ingredient struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	TenantID          uint            `gorm:"not null;index" json:"tenant_id"`
	Title             string          `gorm:"type:varchar(100);not null" json:"title"`
	Unit              string          `gorm:"type:varchar(20)" json:"unit"`
	Stock             decimal.Decimal `gorm:"type:decimal(14,3);not null" json:"stock"`
	LowStockThreshold decimal.Decimal `gorm:"type:decimal(14,3);not null" json:"low_stock_threshold"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// RecipeLink ties a menu item, optionally narrowed to one variant or one addon, to the
// ingredient it consumes. Zero VariantID and AddonID mark a base-item row.
type RecipeLink struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	MenuItemID   uint            `gorm:"not null;index" json:"menu_item_id"`
	VariantID    uint            `gorm:"not null" json:"variant_id"`
	AddonID      uint            `gorm:"not null" json:"addon_id"`
	IngredientID uint            `gorm:"not null;index" json:"ingredient_id"`
	Ingredient   Ingredient      `gorm:"foreignKey:IngredientID" json:"ingredient"`
	Quantity     decimal.Decimal `gorm:"type:decimal(14,3);not null" json:"quantity"`
}

func (r RecipeLink) Validate() error {
	if r.VariantID != 0 && r.AddonID != 0 {
		return ErrRecipeScope
	}
	return nil
}

// Available is the stock of the linked ingredient as loaded with the link.
func (r RecipeLink) Available() decimal.Decimal {
	return r.Ingredient.Stock
}

func (r *RecipeLink) BeforeSave(_ *gorm.DB) error {
	return r.Validate()
}
