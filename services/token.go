package services

import (
	"time"

	"github.com/yeremiapane/resto-order-core/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const tokenDayLayout = "2006-01-02"

func tokenDay(tenant models.Tenant, now time.Time) string {
	return now.In(tenant.Location()).Format(tokenDayLayout)
}

// nextToken allocates the next token for (tenant, day). It must run inside the order
// transaction: the counter row update serializes concurrent allocations in the store.
func nextToken(tx *gorm.DB, tenantID uint, day string) (int, error) {
	seed := models.TokenCounter{TenantID: tenantID, Day: day}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return 0, err
	}

	if err := tx.Model(&models.TokenCounter{}).
		Where("tenant_id = ? AND day = ?", tenantID, day).
		UpdateColumn("last_token", gorm.Expr("last_token + 1")).Error; err != nil {
		return 0, err
	}

	var counter models.TokenCounter
	if err := tx.Where("tenant_id = ? AND day = ?", tenantID, day).First(&counter).Error; err != nil {
		return 0, err
	}
	return counter.LastToken, nil
}
