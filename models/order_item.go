package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ItemStatus string

const (
	ItemCreated   ItemStatus = "created"
	ItemPreparing ItemStatus = "preparing"
	ItemCompleted ItemStatus = "completed"
	ItemCancelled ItemStatus = "cancelled"
	ItemDelivered ItemStatus = "delivered"
)

// kitchen workflow; cancelling an order is an operator override and does not go through this table
var itemTransitions = map[ItemStatus][]ItemStatus{
	ItemCreated:   {ItemPreparing, ItemCancelled, ItemDelivered},
	ItemPreparing: {ItemCompleted, ItemDelivered},
}

func (s ItemStatus) Valid() bool {
	switch s {
	case ItemCreated, ItemPreparing, ItemCompleted, ItemCancelled, ItemDelivered:
		return true
	}
	return false
}

func (s ItemStatus) Terminal() bool {
	return s == ItemCompleted || s == ItemCancelled || s == ItemDelivered
}

func CanTransition(from, to ItemStatus) bool {
	for _, next := range itemTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// DeriveOrderStatus folds item statuses into the order-level status shown on displays.
func DeriveOrderStatus(statuses []ItemStatus) ItemStatus {
	if len(statuses) == 0 {
		return ItemCreated
	}

	var active, created, cancelled, delivered int
	for _, s := range statuses {
		switch s {
		case ItemCreated:
			active++
			created++
		case ItemPreparing:
			active++
		case ItemCancelled:
			cancelled++
		case ItemDelivered:
			delivered++
		}
	}

	live := len(statuses) - cancelled
	switch {
	case live == 0:
		return ItemCancelled
	case active > 0 && created == live:
		return ItemCreated
	case active > 0:
		return ItemPreparing
	case delivered == live:
		return ItemDelivered
	default:
		return ItemCompleted
	}
}

type OrderItem struct {
	ID           uint                `gorm:"primaryKey" json:"id"`
	OrderID      uint                `gorm:"not null;index" json:"order_id"`
	MenuItemID   uint                `gorm:"not null" json:"menu_item_id"`
	Title        string              `gorm:"type:varchar(255);not null" json:"title"`
	BasePrice    decimal.Decimal     `gorm:"type:decimal(12,2);not null" json:"base_price"`
	VariantID    *uint               `json:"variant_id,omitempty"`
	VariantTitle *string             `gorm:"type:varchar(100)" json:"variant_title,omitempty"`
	VariantPrice decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"variant_price"`
	Addons       []OrderItemAddon    `gorm:"foreignKey:OrderItemID" json:"addons"`
	UnitPrice    decimal.Decimal     `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	Quantity     int                 `gorm:"not null" json:"quantity"`
	Notes        string              `gorm:"type:text" json:"notes"`
	TaxRate      decimal.Decimal     `gorm:"type:decimal(6,2);not null" json:"tax_rate"`
	TaxType      TaxType             `gorm:"type:varchar(12);not null" json:"tax_type"`
	Status       ItemStatus          `gorm:"type:varchar(12);not null;index" json:"status"`
	CreatedAt    time.Time           `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time           `gorm:"not null" json:"updated_at"`
}

// LineTotal is unit price times quantity, before tax handling.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type OrderItemAddon struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderItemID uint            `gorm:"not null;index" json:"order_item_id"`
	AddonID     uint            `gorm:"not null" json:"addon_id"`
	Title       string          `gorm:"type:varchar(100);not null" json:"title"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
}

// NewOrderItem freezes a resolved cart line into an order item in the created state.
func NewOrderItem(line CartLine) OrderItem {
	item := OrderItem{
		MenuItemID: line.MenuItemID,
		Title:      line.Title,
		BasePrice:  line.BasePrice,
		VariantID:  line.VariantID,
		UnitPrice:  line.UnitPrice,
		Quantity:   line.Quantity,
		Notes:      line.Notes,
		TaxRate:    line.TaxRate,
		TaxType:    line.TaxType,
		Status:     ItemCreated,
	}
	if line.VariantID != nil {
		title := line.VariantTitle
		item.VariantTitle = &title
		item.VariantPrice = decimal.NewNullDecimal(line.VariantPrice)
	}
	for _, a := range line.Addons {
		item.Addons = append(item.Addons, OrderItemAddon{AddonID: a.AddonID, Title: a.Title, Price: a.Price})
	}
	return item
}
