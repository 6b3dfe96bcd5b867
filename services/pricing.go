package services

import (
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/resto-order-core/models"
	"github.com/yeremiapane/resto-order-core/utils"
)

// PricingLine is the part of a cart line or order item that money depends on.
type PricingLine struct {
	UnitPrice decimal.Decimal
	Quantity  int
	TaxRate   decimal.Decimal
	TaxType   models.TaxType
}

func CartPricingLine(l models.CartLine) PricingLine {
	return PricingLine{UnitPrice: l.UnitPrice, Quantity: l.Quantity, TaxRate: l.TaxRate, TaxType: l.TaxType}
}

func ItemPricingLine(i models.OrderItem) PricingLine {
	return PricingLine{UnitPrice: i.UnitPrice, Quantity: i.Quantity, TaxRate: i.TaxRate, TaxType: i.TaxType}
}

type Summary struct {
	ItemsTotal         decimal.Decimal `json:"items_total"`
	TaxTotal           decimal.Decimal `json:"tax_total"`
	ServiceChargeTotal decimal.Decimal `json:"service_charge_total"`
	PayableTotal       decimal.Decimal `json:"payable_total"`
}

// Rounded applies the two-place presentation rounding. Summaries are accumulated unrounded.
func (s Summary) Rounded() Summary {
	return Summary{
		ItemsTotal:         utils.RoundMoney(s.ItemsTotal),
		TaxTotal:           utils.RoundMoney(s.TaxTotal),
		ServiceChargeTotal: utils.RoundMoney(s.ServiceChargeTotal),
		PayableTotal:       utils.RoundMoney(s.PayableTotal),
	}
}

// Summarize totals the lines. Inclusive tax is carved out of the gross, exclusive tax is added
// on top. The service charge is a percentage of the net items total, applied once and never taxed.
func Summarize(lines []PricingLine, serviceChargePercent *decimal.Decimal) Summary {
	var s Summary
	for _, line := range lines {
		gross := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))

		switch line.TaxType {
		case models.TaxExclusive:
			tax := utils.PercentOf(gross, line.TaxRate)
			s.ItemsTotal = s.ItemsTotal.Add(gross)
			s.TaxTotal = s.TaxTotal.Add(tax)
			s.PayableTotal = s.PayableTotal.Add(gross).Add(tax)
		case models.TaxInclusive:
			net := gross.Mul(utils.Hundred).Div(utils.Hundred.Add(line.TaxRate))
			s.ItemsTotal = s.ItemsTotal.Add(net)
			s.TaxTotal = s.TaxTotal.Add(gross.Sub(net))
			s.PayableTotal = s.PayableTotal.Add(gross)
		default:
			s.ItemsTotal = s.ItemsTotal.Add(gross)
			s.PayableTotal = s.PayableTotal.Add(gross)
		}
	}

	if serviceChargePercent != nil && !serviceChargePercent.IsZero() {
		s.ServiceChargeTotal = utils.PercentOf(s.ItemsTotal, *serviceChargePercent)
		s.PayableTotal = s.PayableTotal.Add(s.ServiceChargeTotal)
	}
	return s
}

// ResolveLine prices a selection against the menu item and snapshots price and tax onto
// the returned line.
func ResolveLine(item models.MenuItem, sel models.CartLine) (models.CartLine, error) {
	if !item.Enabled {
		return models.CartLine{}, validationErr("menu item %d is not available", item.ID)
	}
	if sel.Quantity < 1 {
		return models.CartLine{}, validationErr("quantity must be at least 1")
	}

	line := models.CartLine{
		MenuItemID: item.ID,
		Quantity:   sel.Quantity,
		Notes:      sel.Notes,
		Title:      item.Title,
		BasePrice:  item.Price,
		UnitPrice:  item.Price,
	}
	line.TaxRate, line.TaxType = item.TaxSnapshot()

	if sel.VariantID != nil && *sel.VariantID != 0 {
		variant, ok := item.FindVariant(*sel.VariantID)
		if !ok {
			return models.CartLine{}, validationErr("variant %d does not belong to menu item %d", *sel.VariantID, item.ID)
		}
		id := variant.ID
		line.VariantID = &id
		line.VariantTitle = variant.Title
		line.VariantPrice = variant.Price
		line.UnitPrice = variant.Price
	}

	for _, addonID := range uniqueIDs(sel.AddonIDs) {
		addon, ok := item.FindAddon(addonID)
		if !ok {
			return models.CartLine{}, validationErr("addon %d does not belong to menu item %d", addonID, item.ID)
		}
		line.AddonIDs = append(line.AddonIDs, addon.ID)
		line.Addons = append(line.Addons, models.AddonSnapshot{AddonID: addon.ID, Title: addon.Title, Price: addon.Price})
		line.UnitPrice = line.UnitPrice.Add(addon.Price)
	}
	return line, nil
}
