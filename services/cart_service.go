package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/resto-order-core/models"
	"gorm.io/gorm"
)

// CartService resolves selections into priced cart lines. It keeps no cart state; drafts
// and the POS client hold the lines.
type CartService struct {
	db *gorm.DB
}

func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

// AddLine checks stock for the selection and returns it resolved against the current menu.
func (cs *CartService) AddLine(ctx context.Context, tenantID uint, sel models.CartLine) (models.CartLine, error) {
	if sel.Quantity < 1 {
		return models.CartLine{}, validationErr("quantity must be at least 1")
	}
	items, err := loadMenuItems(cs.db.WithContext(ctx), tenantID, []uint{sel.MenuItemID})
	if err != nil {
		return models.CartLine{}, err
	}
	item := items[sel.MenuItemID]

	line, err := ResolveLine(item, sel)
	if err != nil {
		return models.CartLine{}, err
	}
	if !CanFulfill(item, line.Quantity, line.SelectedVariant(), line.AddonIDs) {
		return models.CartLine{}, fmt.Errorf("%w: %s x%d", ErrInsufficientStock, item.Title, line.Quantity)
	}
	return line, nil
}

// Summarize prices already-resolved lines with the tenant's service charge.
func (cs *CartService) Summarize(ctx context.Context, tenantID uint, lines []models.CartLine) (Summary, error) {
	pct, err := cs.ServiceChargePercent(ctx, tenantID)
	if err != nil {
		return Summary{}, err
	}
	pricing := make([]PricingLine, 0, len(lines))
	for i, l := range lines {
		if err := checkPricedLine(l); err != nil {
			return Summary{}, fmt.Errorf("line %d: %w", i+1, err)
		}
		pricing = append(pricing, CartPricingLine(l))
	}
	return Summarize(pricing, pct).Rounded(), nil
}

func (cs *CartService) ServiceChargePercent(ctx context.Context, tenantID uint) (*decimal.Decimal, error) {
	tenant, err := findTenant(cs.db.WithContext(ctx), tenantID)
	if err != nil {
		return nil, err
	}
	return tenant.ServiceCharge(), nil
}

// checkPricedLine rejects lines a client could not have received from AddLine.
func checkPricedLine(l models.CartLine) error {
	if l.Quantity < 1 {
		return validationErr("quantity must be at least 1")
	}
	if !l.TaxType.Valid() {
		return validationErr("unknown tax type %q", l.TaxType)
	}
	if l.UnitPrice.IsNegative() || l.TaxRate.IsNegative() {
		return validationErr("price and tax rate cannot be negative")
	}
	return nil
}
