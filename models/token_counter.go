package models

// TokenCounter holds the last token handed out for a tenant on a given local day.
type TokenCounter struct {
	ID        uint   `gorm:"primaryKey"`
	TenantID  uint   `gorm:"not null;uniqueIndex:idx_token_counter_day"`
	Day       string `gorm:"type:varchar(10);not null;uniqueIndex:idx_token_counter_day"`
	LastToken int    `gorm:"not null"`
}
