// Package format renders money and ratios for API responses.
package format

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency formats v as Brazilian reais, e.g. "R$ 1.234,56".
func Currency(v float64) string {
	if !finite(v) {
		return "R$ " + strconv.FormatFloat(v, 'f', -1, 64)
	}
	d := decimal.NewFromFloat(v).Round(2)
	neg := d.IsNegative()
	fixed := d.Abs().StringFixed(2)

	intPart, frac, _ := strings.Cut(fixed, ".")
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString("R$ ")
	b.WriteString(groupThousands(intPart, '.'))
	b.WriteByte(',')
	b.WriteString(frac)
	return b.String()
}

// Percent formats a percentage value with two decimals, e.g. "5.00%".
func Percent(v float64) string {
	if !finite(v) {
		return strconv.FormatFloat(v, 'f', -1, 64) + "%"
	}
	return decimal.NewFromFloat(v).StringFixed(2) + "%"
}

func groupThousands(digits string, sep byte) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// decimal panics on NaN and infinities.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
