package models

import "github.com/shopspring/decimal"

// CartLine is one menu selection before it becomes an order item. The selection fields
// (item, variant, addons, quantity, notes) come from the client; price and tax are resolved
// once and then travel with the line.
type CartLine struct {
	MenuItemID   uint            `json:"menu_item_id"`
	VariantID    *uint           `json:"variant_id,omitempty"`
	AddonIDs     []uint          `json:"addon_ids,omitempty"`
	Quantity     int             `json:"quantity"`
	Notes        string          `json:"notes,omitempty"`
	Title        string          `json:"title,omitempty"`
	BasePrice    decimal.Decimal `json:"base_price"`
	VariantTitle string          `json:"variant_title,omitempty"`
	VariantPrice decimal.Decimal `json:"variant_price"`
	Addons       []AddonSnapshot `json:"addons,omitempty"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	TaxRate      decimal.Decimal `json:"tax_rate"`
	TaxType      TaxType         `json:"tax_type"`
}

type AddonSnapshot struct {
	AddonID uint            `json:"addon_id"`
	Title   string          `json:"title"`
	Price   decimal.Decimal `json:"price"`
}

func (l CartLine) SelectedVariant() uint {
	if l.VariantID == nil {
		return 0
	}
	return *l.VariantID
}
