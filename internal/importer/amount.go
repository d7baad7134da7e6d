package importer

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// parseAmount parses a bank-formatted amount. sep is the decimal separator,
// or zero to infer it. Accepted forms include "1.234,56", "-588,74",
// "$1,234.56", "(12.00)" and "12.00 EUR".
func parseAmount(s string, sep rune) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	var b strings.Builder

	for _, r := range s {
		switch {
		case unicode.IsDigit(r), r == '.', r == ',':
			b.WriteRune(r)
		case r == '-' || r == '−':
			negative = !negative
		case r == '+':
		case unicode.IsSpace(r), unicode.IsLetter(r), unicode.Is(unicode.Sc, r), r == '\'':
		default:
			return decimal.Zero, fmt.Errorf("invalid amount %q", s)
		}
	}

	clean := b.String()
	if clean == "" {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}

	if sep == 0 {
		sep = inferDecimal(clean)
	}

	thousands := ","
	if sep == ',' {
		thousands = "."
	}

	clean = strings.ReplaceAll(clean, thousands, "")
	clean = strings.ReplaceAll(clean, string(sep), ".")

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}

	if negative {
		d = d.Neg()
	}

	return d, nil
}

// inferDecimal picks the decimal separator of a digits-and-separators string.
// When both appear the last one wins. A single comma followed by exactly three
// digits is grouping; repeated dots are grouping.
func inferDecimal(s string) rune {
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			return ','
		}

		return '.'
	case lastComma >= 0:
		if strings.Count(s, ",") == 1 && len(s)-lastComma-1 != 3 {
			return ','
		}

		return '.'
	case lastDot >= 0:
		if strings.Count(s, ".") > 1 {
			return ','
		}
	}

	return '.'
}
