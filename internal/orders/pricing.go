package orders

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

const moneyPlaces = 2

// lineTotal is unit price times quantity rounded half away from zero to cents.
func lineTotal(unitPrice, qty float64) (decimal.Decimal, error) {
	raw := unitPrice * qty
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return decimal.Zero, fmt.Errorf("line total overflow: unit=%v qty=%v", unitPrice, qty)
	}
	return decimal.NewFromFloat(raw).Round(moneyPlaces), nil
}

func roundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyPlaces)
}
