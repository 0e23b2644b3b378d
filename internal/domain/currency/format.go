package currency

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatWithGrouping renders value with ',' between every three integer
// digits and at most decimals fraction digits. The fraction is truncated,
// never rounded or padded, and the '.' is omitted when no digits remain.
func FormatWithGrouping(value float64, decimals int) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return "0"
	}
	return groupDigits(strconv.FormatFloat(value, 'f', -1, 64), decimals)
}

func formatDecimal(d decimal.Decimal, decimals int) string {
	return groupDigits(d.String(), decimals)
}

// groupDigits works on a plain decimal string such as "-1234.5"
func groupDigits(s string, decimals int) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	if decimals < 0 {
		decimals = 0
	}
	if len(fracPart) > decimals {
		fracPart = fracPart[:decimals]
	}
	if strings.Trim(intPart+fracPart, "0") == "" {
		// no "-0" once the digits are cut
		sign = ""
	}

	var b strings.Builder
	b.Grow(len(sign) + len(intPart) + len(intPart)/3 + len(fracPart) + 1)
	b.WriteString(sign)
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if fracPart != "" {
		b.WriteByte('.')
		b.WriteString(fracPart)
	}
	return b.String()
}

// truncateFraction cuts the fraction of a cleaned amount to at most
// decimals digits, leaving the integer part and any trailing '.' alone.
func truncateFraction(text string, decimals int) string {
	intPart, fracPart, found := strings.Cut(text, ".")
	if !found {
		return text
	}
	if len(fracPart) > decimals {
		fracPart = fracPart[:decimals]
	}
	return intPart + "." + fracPart
}
