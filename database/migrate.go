package database

import (
	"github.com/yeremiapane/resto-order-core/models"
	"github.com/yeremiapane/resto-order-core/utils"
	"gorm.io/gorm"
)

// Models lists every table in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.Tenant{},
		&models.User{},
		&models.Table{},
		&models.Customer{},
		&models.PaymentType{},
		&models.MenuCategory{},
		&models.Tax{},
		&models.MenuItem{},
		&models.Variant{},
		&models.Addon{},
		&models.Ingredient{},
		&models.RecipeLink{},
		&models.TokenCounter{},
		&models.Invoice{},
		&models.InvoiceOrder{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderItemAddon{},
		&models.QrOrder{},
		&models.QrOrderLine{},
		&models.QrOrderLineAddon{},
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}
	utils.InfoLogger.Info("AutoMigrate completed.")
	return nil
}
