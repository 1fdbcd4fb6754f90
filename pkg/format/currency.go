// Package format renders calculation results for people: currency with
// thousands separators, percentages and loan durations.
package format

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
func Currency(amount float64) string {
	if amount < 0 {
		return "-$" + NumericCurrency(math.Abs(amount))
	}
	return "$" + NumericCurrency(amount)
}

// NumericCurrency returns a currency string without a currency symbol but with separators (e.g., "-1,234.56").
func NumericCurrency(amount float64) string {
	if amount == 0 {
		// avoid "-0.00"
		amount = 0
	}
	return printer.Sprintf("%.2f", amount)
}

// Percent renders a percentage with two decimals, e.g. "46.33%".
func Percent(value float64) string {
	return printer.Sprintf("%.2f%%", value)
}

// Duration renders a years/months pair, e.g. "4 years 7 months".
func Duration(years, months int) string {
	switch {
	case years == 0 && months == 0:
		return "0 months"
	case years == 0:
		return printer.Sprintf("%d %s", months, plural(months, "month"))
	case months == 0:
		return printer.Sprintf("%d %s", years, plural(years, "year"))
	default:
		return printer.Sprintf("%d %s %d %s", years, plural(years, "year"), months, plural(months, "month"))
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}
