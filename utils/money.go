package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the precision totals are stored and shown with.
const MoneyPlaces = 2

var Hundred = decimal.NewFromInt(100)

// RoundMoney rounds half away from zero to MoneyPlaces.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// PercentOf returns amount * pct / 100 without intermediate rounding.
func PercentOf(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Div(Hundred)
}

// FormatCurrency memformat angka dengan pemisah ribuan titik dan 2 desimal koma
func FormatCurrency(amount decimal.Decimal) string {
	formatted := RoundMoney(amount).StringFixed(MoneyPlaces)

	negative := strings.HasPrefix(formatted, "-")
	formatted = strings.TrimPrefix(formatted, "-")

	parts := strings.Split(formatted, ".")
	integerPart := parts[0]
	decimalPart := parts[1]

	var result []string
	for i := len(integerPart); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		result = append([]string{integerPart[start:i]}, result...)
	}

	out := strings.Join(result, ".") + "," + decimalPart
	if negative {
		out = "-" + out
	}
	return out
}
