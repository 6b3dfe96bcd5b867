package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tenant is one restaurant account. Every row the order core touches is scoped by TenantID.
type Tenant struct {
	ID                   uint                `gorm:"primaryKey" json:"id"`
	Name                 string              `gorm:"type:varchar(255);not null" json:"name"`
	ServiceChargePercent decimal.NullDecimal `gorm:"type:decimal(5,2)" json:"service_charge_percent"`
	Timezone             string              `gorm:"type:varchar(64);not null;default:'UTC'" json:"timezone"`
	CreatedAt            time.Time           `gorm:"not null" json:"created_at"`
	UpdatedAt            time.Time           `gorm:"not null" json:"updated_at"`
}

// Location returns the tenant's time zone, falling back to UTC when the name is unknown.
func (t Tenant) Location() *time.Location {
	if t.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(t.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ServiceCharge returns the configured percentage or nil when the tenant charges none.
func (t Tenant) ServiceCharge() *decimal.Decimal {
	if !t.ServiceChargePercent.Valid {
		return nil
	}
	pct := t.ServiceChargePercent.Decimal
	return &pct
}
