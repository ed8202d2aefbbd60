// Package format renders monetary and percentage values for display.
package format

import (
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Rub returns a ruble string with space-separated thousands and the currency
// sign (e.g., "1 234 567.89 ₽").
func Rub(amount float64) string {
	return Numeric(amount) + " ₽"
}

// Numeric returns a ruble amount without the currency sign but with
// space-separated thousands (e.g., "-1 234.56").
func Numeric(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
	}
	grouped := printer.Sprintf("%.2f", math.Abs(amount))
	// MOEX convention: thousands separated by spaces, dot decimal point.
	return sign + strings.ReplaceAll(grouped, ",", " ")
}

// Percent returns a percentage string with two decimals (e.g., "12.34 %").
func Percent(value float64) string {
	return printer.Sprintf("%.2f %%", value)
}
