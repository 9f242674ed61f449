package compensation

import (
	"fmt"
	"math"
)

const daysPerMonth = 30

// FormatDays renders a day count as "<months> months <days> days" using 30-day months.
func FormatDays(days float64) string {
	if days < 0 || math.IsNaN(days) {
		days = 0
	}
	months := math.Floor(days / daysPerMonth)
	rest := math.Round(math.Mod(days, daysPerMonth))
	return fmt.Sprintf("%d months %d days", int(months), int(rest))
}
