package models

import "time"

// QrOrder is a cart a guest submitted from a table's QR menu. It waits in the pending
// queue until POS turns it into a real order, which removes it.
type QrOrder struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	TenantID  uint          `gorm:"not null;index" json:"tenant_id"`
	TableID   uint          `gorm:"not null" json:"table_id"`
	Table     Table         `gorm:"foreignKey:TableID" json:"table"`
	Lines     []QrOrderLine `gorm:"foreignKey:QrOrderID;constraint:OnDelete:CASCADE" json:"lines"`
	CreatedAt time.Time     `gorm:"not null" json:"created_at"`
}

type QrOrderLine struct {
	ID         uint               `gorm:"primaryKey" json:"id"`
	QrOrderID  uint               `gorm:"not null;index" json:"qr_order_id"`
	MenuItemID uint               `gorm:"not null" json:"menu_item_id"`
	VariantID  *uint              `json:"variant_id,omitempty"`
	Addons     []QrOrderLineAddon `gorm:"foreignKey:QrOrderLineID;constraint:OnDelete:CASCADE" json:"addons"`
	Quantity   int                `gorm:"not null" json:"quantity"`
	Notes      string             `gorm:"type:text" json:"notes"`
}

type QrOrderLineAddon struct {
	ID            uint `gorm:"primaryKey" json:"id"`
	QrOrderLineID uint `gorm:"not null;index" json:"qr_order_line_id"`
	AddonID       uint `gorm:"not null" json:"addon_id"`
}

// CartLine returns the guest's selection; prices are resolved again when POS accepts it.
func (l QrOrderLine) CartLine() CartLine {
	line := CartLine{
		MenuItemID: l.MenuItemID,
		VariantID:  l.VariantID,
		Quantity:   l.Quantity,
		Notes:      l.Notes,
	}
	for _, a := range l.Addons {
		line.AddonIDs = append(line.AddonIDs, a.AddonID)
	}
	return line
}

func NewQrOrderLine(line CartLine) QrOrderLine {
	qr := QrOrderLine{
		MenuItemID: line.MenuItemID,
		VariantID:  line.VariantID,
		Quantity:   line.Quantity,
		Notes:      line.Notes,
	}
	for _, id := range line.AddonIDs {
		qr.Addons = append(qr.Addons, QrOrderLineAddon{AddonID: id})
	}
	return qr
}
