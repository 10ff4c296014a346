// Package coerce converts loosely formatted form input into numbers.
//
// Coercion is best-effort: anything that cannot be read as a decimal number
// becomes zero instead of an error, mirroring how the calculator treats
// free-text form fields.
package coerce

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var currencyMarkers = []string{"$", "€", "£", "₪", "¥"}

var separatorStripper = strings.NewReplacer(",", "", "_", "", " ", "")

// Number parses a decimal string that may carry thousands separators and a
// single leading or trailing currency marker. Unparsable input yields 0.
func Number(text string) float64 {
	s := separatorStripper.Replace(strings.TrimSpace(text))

	negative := false
	if strings.HasPrefix(s, "-") {
		negative = true
		s = strings.TrimSpace(s[1:])
	}
	s = stripCurrencyMarker(s)
	if negative {
		s = "-" + s
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func stripCurrencyMarker(s string) string {
	for _, marker := range currencyMarkers {
		if strings.HasPrefix(s, marker) {
			return strings.TrimSpace(strings.TrimPrefix(s, marker))
		}
		if strings.HasSuffix(s, marker) {
			return strings.TrimSpace(strings.TrimSuffix(s, marker))
		}
	}
	return s
}

// Value coerces an arbitrary decoded value (JSON, YAML, form) into a float64.
// Numbers pass through unchanged, strings go through Number and everything
// else is 0.
func Value(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case json.Number:
		return Number(n.String())
	case decimal.Decimal:
		f, _ := n.Float64()
		return f
	case string:
		return Number(n)
	case []byte:
		return Number(string(n))
	}
	return 0
}
