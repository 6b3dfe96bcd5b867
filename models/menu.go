package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TaxType string

const (
	TaxInclusive TaxType = "inclusive"
	TaxExclusive TaxType = "exclusive"
	TaxNone      TaxType = "none"
)

func (t TaxType) Valid() bool {
	switch t {
	case TaxInclusive, TaxExclusive, TaxNone:
		return true
	}
	return false
}

type Tax struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	TenantID  uint            `gorm:"not null;index" json:"tenant_id"`
	Title     string          `gorm:"type:varchar(100);not null" json:"title"`
	Rate      decimal.Decimal `gorm:"type:decimal(6,2);not null" json:"rate"`
	Type      TaxType         `gorm:"type:varchar(12);not null" json:"type"`
	CreatedAt time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time       `gorm:"not null" json:"updated_at"`
}

// MenuItem is master data owned by the settings layer. The order core only reads it.
type MenuItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	TenantID    uint            `gorm:"not null;index" json:"tenant_id"`
	CategoryID  *uint           `gorm:"index" json:"category_id,omitempty"`
	Category    *MenuCategory   `gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"category,omitempty"`
	Title       string          `gorm:"type:varchar(255); not null" json:"title"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2); not null" json:"price"`
	TaxID       *uint           `json:"tax_id,omitempty"`
	Tax         *Tax            `gorm:"foreignKey:TaxID" json:"tax,omitempty"`
	Enabled     bool            `gorm:"not null" json:"enabled"`
	Variants    []Variant       `gorm:"foreignKey:MenuItemID" json:"variants"`
	Addons      []Addon         `gorm:"foreignKey:MenuItemID" json:"addons"`
	RecipeLinks []RecipeLink    `gorm:"foreignKey:MenuItemID" json:"recipe_links,omitempty"`
	CreatedAt   time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null" json:"updated_at"`
}

// TaxSnapshot returns the rate and type a cart line copies at add time.
func (m MenuItem) TaxSnapshot() (decimal.Decimal, TaxType) {
	if m.Tax == nil || m.Tax.Type == "" {
		return decimal.Zero, TaxNone
	}
	return m.Tax.Rate, m.Tax.Type
}

func (m MenuItem) FindVariant(id uint) (Variant, bool) {
	for _, v := range m.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}

func (m MenuItem) FindAddon(id uint) (Addon, bool) {
	for _, a := range m.Addons {
		if a.ID == id {
			return a, true
		}
	}
	return Addon{}, false
}

type Variant struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	MenuItemID uint            `gorm:"not null;index" json:"menu_item_id"`
	Title      string          `gorm:"type:varchar(100);not null" json:"title"`
	Price      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
}

type Addon struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	MenuItemID uint            `gorm:"not null;index" json:"menu_item_id"`
	Title      string          `gorm:"type:varchar(100);not null" json:"title"`
	Price      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
}
