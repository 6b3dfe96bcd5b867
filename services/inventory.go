package services

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/resto-order-core/models"
	"gorm.io/gorm"
)

type stockNeed struct {
	required  decimal.Decimal
	available decimal.Decimal
}

// stockLedger accumulates ingredient demand across one or more selections.
type stockLedger map[uint]*stockNeed

func applies(link models.RecipeLink, variantID uint, addons map[uint]bool) bool {
	switch {
	case link.VariantID == 0 && link.AddonID == 0:
		return true
	case link.AddonID == 0:
		return link.VariantID == variantID
	case link.VariantID == 0:
		return addons[link.AddonID]
	}
	return false
}

func (l stockLedger) add(item models.MenuItem, quantity int, variantID uint, addonIDs []uint) {
	selected := make(map[uint]bool, len(addonIDs))
	for _, id := range addonIDs {
		selected[id] = true
	}
	qty := decimal.NewFromInt(int64(quantity))

	for _, link := range item.RecipeLinks {
		if !applies(link, variantID, selected) {
			continue
		}
		need, ok := l[link.IngredientID]
		if !ok {
			need = &stockNeed{available: link.Available()}
			l[link.IngredientID] = need
		}
		need.required = need.required.Add(link.Quantity.Mul(qty))
	}
}

func (l stockLedger) satisfied() bool {
	for _, need := range l {
		if need.available.LessThan(need.required) {
			return false
		}
	}
	return true
}

// CanFulfill reports whether current stock covers quantity units of the selection.
// All-or-nothing; an item without recipe links is untracked and always fulfillable.
func CanFulfill(item models.MenuItem, quantity int, variantID uint, addonIDs []uint) bool {
	ledger := stockLedger{}
	ledger.add(item, quantity, variantID, addonIDs)
	return ledger.satisfied()
}

// LowStock lists ingredients of the item at or under their low-stock threshold.
func LowStock(item models.MenuItem) []models.Ingredient {
	seen := map[uint]bool{}
	var low []models.Ingredient
	for _, link := range item.RecipeLinks {
		if seen[link.IngredientID] {
			continue
		}
		seen[link.IngredientID] = true
		if link.Ingredient.Stock.LessThanOrEqual(link.Ingredient.LowStockThreshold) {
			low = append(low, link.Ingredient)
		}
	}
	return low
}

// InventoryChecker answers availability questions against live ingredient stock.
type InventoryChecker struct {
	db *gorm.DB
}

func NewInventoryChecker(db *gorm.DB) *InventoryChecker {
	return &InventoryChecker{db: db}
}

func (ic *InventoryChecker) CheckAvailability(ctx context.Context, tenantID, menuItemID uint, quantity int, variantID uint, addonIDs []uint) (bool, error) {
	if quantity < 1 {
		return false, validationErr("quantity must be at least 1")
	}
	items, err := loadMenuItems(ic.db.WithContext(ctx), tenantID, []uint{menuItemID})
	if err != nil {
		return false, err
	}
	return CanFulfill(items[menuItemID], quantity, variantID, addonIDs), nil
}

// loadMenuItems fetches the tenant's items with everything pricing and stock checks read.
func loadMenuItems(db *gorm.DB, tenantID uint, ids []uint) (map[uint]models.MenuItem, error) {
	var items []models.MenuItem
	err := db.Preload("Tax").
		Preload("Variants").
		Preload("Addons").
		Preload("RecipeLinks.Ingredient").
		Where("tenant_id = ? AND id IN ?", tenantID, uniqueIDs(ids)).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	byID := make(map[uint]models.MenuItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, notFoundErr("menu item %d", id)
		}
	}
	return byID, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
