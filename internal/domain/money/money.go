// Package money formats amounts for display. Every money string shown to a
// user goes through Format or FormatWhole so currencies are never mixed.
package money

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultCurrency is assumed when a listing carries no currency code.
const DefaultCurrency = "USD"

var printer = message.NewPrinter(language.English)

var symbols = map[string]string{
	"GBP": "£",
	"USD": "$",
	"EUR": "€",
}

// Symbol returns the symbol for code, or "" when the code is shown as text.
func Symbol(code string) string {
	return symbols[normalize(code)]
}

// Format renders amount with two decimals and thousands separators,
// e.g. "£1,234.50" or "CAD 1,234.50".
func Format(amount float64, code string) string {
	cents := int64(math.Round(amount * 100))
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	num := printer.Sprintf("%d", cents/100) + fmt.Sprintf(".%02d", cents%100)
	return decorate(sign, num, code)
}

// FormatWhole renders an integer amount with thousands separators and no
// decimals, e.g. "£17,244".
func FormatWhole(amount int64, code string) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return decorate(sign, printer.Sprintf("%d", amount), code)
}

func decorate(sign, num, code string) string {
	code = normalize(code)
	if sym, ok := symbols[code]; ok {
		return sign + sym + num
	}
	return code + " " + sign + num
}

func normalize(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return DefaultCurrency
	}
	return code
}
