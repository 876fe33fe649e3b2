// Package pricing holds the line item arithmetic shared by generation,
// manual edits, persistence and rendering.
package pricing

import (
	"strconv"

	"proposalforge-backend/models"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// LineSubtotal returns quantity * unit price for a single item.
func LineSubtotal(item models.LineItem) float64 {
	return item.Quantity * item.UnitPrice
}

// ComputeTotal sums quantity * unit price over all items. Negative values are
// not clamped. This is the only function allowed to produce a proposal total.
func ComputeTotal(items []models.LineItem) float64 {
	var total float64
	for _, item := range items {
		total += LineSubtotal(item)
	}
	return total
}

// Equal compares two monetary amounts at cent precision.
func Equal(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 0.005
}

var printer = message.NewPrinter(language.English)

// FormatMoney renders an amount as dollars with grouping, e.g. $1,234.50.
func FormatMoney(amount float64) string {
	if amount < 0 {
		return printer.Sprintf("-$%.2f", -amount)
	}
	return printer.Sprintf("$%.2f", amount)
}

// FormatAmount renders an amount with grouping and an arbitrary currency code
// prefix, e.g. "EUR 1,135.80".
func FormatAmount(code string, amount float64) string {
	return printer.Sprintf("%s %.2f", code, amount)
}

// FormatQuantity renders a quantity without trailing zeros.
func FormatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}
