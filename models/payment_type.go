package models

import (
	"time"
)

// PaymentType is a tender the tenant accepts (cash, card, transfer, ...). The order core
// only freezes the reference onto an invoice; provider specifics live elsewhere.
type PaymentType struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	TenantID  uint      `json:"tenant_id" gorm:"not null;index"`
	Title     string    `json:"title" gorm:"type:varchar(100);not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
