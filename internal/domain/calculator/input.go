package calculator

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// SanitizeDecimal keeps the digits and the first decimal point of s and
// strips redundant leading zeros ("007" -> "7", "00.5" -> "0.5"). An empty
// input stays empty so the form field is not forced to "0" while typing.
func SanitizeDecimal(s string) string {
	var b strings.Builder
	seenPoint := false
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' && !seenPoint:
			seenPoint = true
			b.WriteRune(r)
		}
	}

	out := b.String()
	for len(out) > 1 && out[0] == '0' && out[1] != '.' {
		out = out[1:]
	}
	return out
}

// SanitizeSigned is SanitizeDecimal that also keeps a leading minus sign.
// Paid amounts use it since a negative payment records money flowing back.
func SanitizeSigned(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "-") {
		rest := SanitizeDecimal(s[1:])
		if rest == "" {
			return "-"
		}
		return "-" + rest
	}
	return SanitizeDecimal(s)
}

// ClampPercentage sanitizes a discount percentage and clamps it to [0,100]
func ClampPercentage(s string) string {
	if strings.HasPrefix(strings.TrimSpace(s), "-") {
		return "0"
	}
	out := SanitizeDecimal(s)
	if Parse(out).GreaterThan(hundred) {
		return "100"
	}
	return out
}

// Parse converts user input to a decimal. Empty, partial ("5.", "-") or
// non-numeric input counts as zero.
func Parse(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ".")
	switch {
	case s == "" || s == "-":
		return decimal.Zero
	case strings.HasPrefix(s, "."):
		s = "0" + s
	case strings.HasPrefix(s, "-."):
		s = "-0" + s[1:]
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
