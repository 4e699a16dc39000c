package report

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatCurrency renders d with thousands separators and two decimals,
// e.g. 1234567.891 -> "1,234,567.89".
func FormatCurrency(d decimal.Decimal) string {
	return FormatDecimal(d, 2)
}

// FormatDecimal formats a decimal with thousand separators
func FormatDecimal(d decimal.Decimal, precision int32) string {
	sign := ""
	if d.IsNegative() {
		d = d.Abs()
		sign = "-"
	}

	intPart, decPart, _ := strings.Cut(d.StringFixed(precision), ".")
	if intPart == "0" && strings.Trim(decPart, "0") == "" {
		sign = ""
	}

	var b strings.Builder
	b.Grow(len(intPart) + len(intPart)/3 + len(decPart) + 2)
	b.WriteString(sign)
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if decPart != "" {
		b.WriteByte('.')
		b.WriteString(decPart)
	}
	return b.String()
}
