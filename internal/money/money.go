// Package money handles peso amounts as integer centavos so that derived
// totals stay exact. Formatting and parsing are the only places decimal
// strings appear.
package money

import (
	"fmt"
	"strconv"
	"strings"
)

// Format renders centavos as a grouped decimal string, e.g. 123450 -> "1,234.50".
func Format(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}

	whole := cents / 100
	frac := cents % 100

	digits := strconv.FormatInt(whole, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}

	s := fmt.Sprintf("%s.%02d", b.String(), frac)
	if neg {
		return "-" + s
	}
	return s
}

// Parse converts a decimal amount string ("500", "1,234.5", "-20.75") into
// centavos. At most two fractional digits are accepted.
func Parse(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, fmt.Errorf("parse amount: empty string")
	}

	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	}
	if s == "" || s == "." {
		return 0, fmt.Errorf("parse amount: no digits")
	}

	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("parse amount %q: more than two decimal places", s)
	}
	for len(frac) < 2 {
		frac += "0"
	}

	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}

	cents := w*100 + f
	if neg {
		cents = -cents
	}
	return cents, nil
}
