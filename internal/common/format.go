package common

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer formats numbers with English thousand separators.
var printer = message.NewPrinter(language.English)

// FormatNumber formats an integer with thousand separators, e.g. 18248 -> "18,248".
func FormatNumber(n int64) string {
	return printer.Sprintf("%d", n)
}

// FormatKg renders an emission or offset amount, e.g. "1,234.5 kg CO₂".
func FormatKg(kg float64) string {
	return printer.Sprintf("%.1f kg CO₂", kg)
}

// FormatCHF renders a price with two decimals, e.g. "CHF 1,299.00".
func FormatCHF(price float64) string {
	return printer.Sprintf("CHF %.2f", price)
}
