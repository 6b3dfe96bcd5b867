package services

import (
	_ "time/tzdata"

	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/resto-order-core/database"
	"github.com/yeremiapane/resto-order-core/kds"
	"github.com/yeremiapane/resto-order-core/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []kds.Event
}

func (p *recordingPublisher) Publish(e kds.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) Events() []kds.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]kds.Event(nil), p.events...)
}

// fixture is one tenant with a small menu:
//   - Burger (exclusive 10% tax, 200) with a Large variant (250) and a Cheese addon (15),
//     drawing on buns (stock 10) and cheese (stock 2, only via the addon)
//   - Tea (inclusive 10% tax, 110) untracked
//   - Soup disabled
type fixture struct {
	Tenant      models.Tenant
	Other       models.Tenant
	Burger      models.MenuItem
	Large       models.Variant
	Cheese      models.Addon
	Tea         models.MenuItem
	Soup        models.MenuItem
	Buns        models.Ingredient
	CheeseStock models.Ingredient
	Table       models.Table
	Customer    models.Customer
	Cash        models.PaymentType
	OtherCash   models.PaymentType
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seedFixture(t *testing.T, db *gorm.DB) fixture {
	t.Helper()
	var f fixture

	f.Tenant = models.Tenant{Name: "Warung Satu", Timezone: "Asia/Jakarta"}
	f.Other = models.Tenant{Name: "Warung Dua", Timezone: "UTC"}
	require.NoError(t, db.Create(&f.Tenant).Error)
	require.NoError(t, db.Create(&f.Other).Error)

	exclusive := models.Tax{TenantID: f.Tenant.ID, Title: "PB1", Rate: dec("10"), Type: models.TaxExclusive}
	inclusive := models.Tax{TenantID: f.Tenant.ID, Title: "PPN", Rate: dec("10"), Type: models.TaxInclusive}
	require.NoError(t, db.Create(&exclusive).Error)
	require.NoError(t, db.Create(&inclusive).Error)

	f.Buns = models.Ingredient{TenantID: f.Tenant.ID, Title: "Bun", Unit: "pcs", Stock: dec("10"), LowStockThreshold: dec("3")}
	f.CheeseStock = models.Ingredient{TenantID: f.Tenant.ID, Title: "Cheese", Unit: "slice", Stock: dec("2"), LowStockThreshold: dec("5")}
	require.NoError(t, db.Create(&f.Buns).Error)
	require.NoError(t, db.Create(&f.CheeseStock).Error)

	f.Burger = models.MenuItem{TenantID: f.Tenant.ID, Title: "Burger", Price: dec("200"), TaxID: &exclusive.ID, Enabled: true}
	require.NoError(t, db.Create(&f.Burger).Error)
	f.Large = models.Variant{MenuItemID: f.Burger.ID, Title: "Large", Price: dec("250")}
	f.Cheese = models.Addon{MenuItemID: f.Burger.ID, Title: "Cheese", Price: dec("15")}
	require.NoError(t, db.Create(&f.Large).Error)
	require.NoError(t, db.Create(&f.Cheese).Error)
	require.NoError(t, db.Create(&models.RecipeLink{MenuItemID: f.Burger.ID, IngredientID: f.Buns.ID, Quantity: dec("1")}).Error)
	require.NoError(t, db.Create(&models.RecipeLink{MenuItemID: f.Burger.ID, AddonID: f.Cheese.ID, IngredientID: f.CheeseStock.ID, Quantity: dec("1")}).Error)

	f.Tea = models.MenuItem{TenantID: f.Tenant.ID, Title: "Tea", Price: dec("110"), TaxID: &inclusive.ID, Enabled: true}
	f.Soup = models.MenuItem{TenantID: f.Tenant.ID, Title: "Soup", Price: dec("50"), Enabled: false}
	require.NoError(t, db.Create(&f.Tea).Error)
	require.NoError(t, db.Create(&f.Soup).Error)

	f.Table = models.Table{TenantID: f.Tenant.ID, TableNumber: "A1"}
	f.Customer = models.Customer{TenantID: f.Tenant.ID, Name: "Budi", Phone: "0812"}
	f.Cash = models.PaymentType{TenantID: f.Tenant.ID, Title: "Cash"}
	f.OtherCash = models.PaymentType{TenantID: f.Other.ID, Title: "Cash"}
	require.NoError(t, db.Create(&f.Table).Error)
	require.NoError(t, db.Create(&f.Customer).Error)
	require.NoError(t, db.Create(&f.Cash).Error)
	require.NoError(t, db.Create(&f.OtherCash).Error)
	return f
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func line(item models.MenuItem, qty int) models.CartLine {
	return models.CartLine{MenuItemID: item.ID, Quantity: qty}
}
