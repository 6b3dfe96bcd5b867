package models

import (
	"time"
)

type DeliveryType string

const (
	DeliveryDineIn   DeliveryType = "dinein"
	DeliveryDelivery DeliveryType = "delivery"
	DeliveryTakeaway DeliveryType = "takeaway"
)

func (d DeliveryType) Valid() bool {
	switch d {
	case DeliveryDineIn, DeliveryDelivery, DeliveryTakeaway:
		return true
	}
	return false
}

type CustomerType string

const (
	CustomerWalkin     CustomerType = "WALKIN"
	CustomerRegistered CustomerType = "CUSTOMER"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

func (p PaymentStatus) Valid() bool {
	return p == PaymentPending || p == PaymentPaid
}

// Order is created together with its items and never deleted. Status mirrors the kitchen
// state of the items; CompletedAt is set by the explicit complete action.
type Order struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	TenantID      uint          `gorm:"not null;index" json:"tenant_id"`
	TokenNo       int           `gorm:"not null" json:"token_no"`
	TokenDay      string        `gorm:"type:varchar(10);not null;index" json:"token_day"`
	DeliveryType  *DeliveryType `gorm:"type:varchar(12)" json:"delivery_type"`
	CustomerType  CustomerType  `gorm:"type:varchar(10);not null" json:"customer_type"`
	CustomerID    *uint         `gorm:"index" json:"customer_id,omitempty"`
	Customer      *Customer     `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	TableID       *uint         `gorm:"index" json:"table_id,omitempty"`
	Table         *Table        `gorm:"foreignKey:TableID" json:"table,omitempty"`
	Status        ItemStatus    `gorm:"type:varchar(12);not null" json:"status"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(10);not null" json:"payment_status"`
	CompletedAt   *time.Time    `json:"completed_at,omitempty"`
	InvoiceID     *uint         `gorm:"index" json:"invoice_id,omitempty"`
	Items         []OrderItem   `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt     time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"not null" json:"updated_at"`
}

// ReadyToComplete reports whether every item reached a terminal state.
func (o *Order) ReadyToComplete() bool {
	for _, item := range o.Items {
		if !item.Status.Terminal() {
			return false
		}
	}
	return true
}
