package workperiods

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// FormatCurrency renders an amount as US dollars with thousands separators,
// rounded half away from zero to cents.
func FormatCurrency(amount decimal.Decimal) string {
	sign := ""
	if amount.Round(2).IsNegative() {
		sign = "-"
	}
	whole, cents, _ := strings.Cut(amount.Abs().StringFixed(2), ".")
	if n, err := strconv.ParseInt(whole, 10, 64); err == nil {
		whole = printer.Sprintf("%d", n)
	}
	return sign + "$" + whole + "." + cents
}

// FormatPlural renders "1 resource" or "3 resources".
func FormatPlural(count int, noun string) string {
	if count == 1 {
		return printer.Sprintf("%d %s", count, noun)
	}
	return printer.Sprintf("%d %ss", count, noun)
}

func formatInt(n int64) string {
	return strconv.FormatInt(n, 10)
}
