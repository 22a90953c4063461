package common

import (
	"fmt"
	"math"

	"github.com/Rhymond/go-money"
)

// NotAvailable is shown for missing or non-finite metrics.
const NotAvailable = "N/A"

// FormatMoney formats an amount in the given ISO currency, e.g. "$10,000.00".
func FormatMoney(v float64, currency string) string {
	if currency == "" {
		currency = money.USD
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NotAvailable
	}
	return money.NewFromFloat(v, currency).Display()
}

// FormatPct formats a fraction as a percentage with two decimals (0.1234 -> "12.34%").
func FormatPct(v *float64) string {
	if !finite(v) {
		return NotAvailable
	}
	return fmt.Sprintf("%.2f%%", *v*100)
}

// FormatRatio formats a ratio with two decimals.
func FormatRatio(v *float64) string {
	if !finite(v) {
		return NotAvailable
	}
	return fmt.Sprintf("%.2f", *v)
}

func finite(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}
