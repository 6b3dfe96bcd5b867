package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrInvoiceImmutable = errors.New("invoice is immutable once created")

// Invoice is the frozen settlement of one or more orders. OrderSetKey identifies the exact
// set of orders so a repeated request for the same set lands on the same row.
type Invoice struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	TenantID           uint            `gorm:"not null;uniqueIndex:idx_invoice_order_set" json:"tenant_id"`
	OrderSetKey        string          `gorm:"type:varchar(64);not null;uniqueIndex:idx_invoice_order_set" json:"-"`
	InvoiceNumber      string          `gorm:"type:varchar(40);not null" json:"invoice_number"`
	Orders             []InvoiceOrder  `gorm:"foreignKey:InvoiceID" json:"orders"`
	Subtotal           decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	TaxTotal           decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"tax_total"`
	ServiceChargeTotal decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"service_charge_total"`
	Total              decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	PaymentTypeID      uint            `gorm:"not null" json:"payment_type_id"`
	PaymentType        PaymentType     `gorm:"foreignKey:PaymentTypeID" json:"payment_type"`
	CustomerID         *uint           `json:"customer_id,omitempty"`
	CustomerName       string          `gorm:"type:varchar(255)" json:"customer_name,omitempty"`
	CreatedAt          time.Time       `gorm:"not null" json:"created_at"`
}

func (i *Invoice) BeforeUpdate(_ *gorm.DB) error {
	return ErrInvoiceImmutable
}

// OrderIDs lists the aggregated orders in insertion order.
func (i *Invoice) OrderIDs() []uint {
	ids := make([]uint, 0, len(i.Orders))
	for _, o := range i.Orders {
		ids = append(ids, o.OrderID)
	}
	return ids
}

// InvoiceOrder joins an invoice to an order. The unique index keeps an order on one invoice.
type InvoiceOrder struct {
	ID        uint `gorm:"primaryKey" json:"-"`
	InvoiceID uint `gorm:"not null;index" json:"invoice_id"`
	OrderID   uint `gorm:"not null;uniqueIndex" json:"order_id"`
}
