package projection

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/iwvelando/investment-calculator/pkg/constants"
)

// Ratio is a percentage that may be undefined, such as a return on zero
// equity. The zero value is NotApplicable.
type Ratio struct {
	Value      float64
	Applicable bool
}

// NotApplicable marks a ratio without a denominator.
var NotApplicable = Ratio{}

// Percent wraps a defined percentage.
func Percent(v float64) Ratio {
	return Ratio{Value: v, Applicable: true}
}

// Float returns the value and whether it is defined.
func (r Ratio) Float() (float64, bool) {
	return r.Value, r.Applicable
}

func (r Ratio) String() string {
	if !r.Applicable {
		return constants.NotApplicable
	}
	return strconv.FormatFloat(r.Value, 'f', constants.DisplayDecimals, 64)
}

// MarshalJSON encodes NotApplicable as null.
func (r Ratio) MarshalJSON() ([]byte, error) {
	if !r.Applicable {
		return []byte("null"), nil
	}
	return json.Marshal(r.Value)
}

// UnmarshalJSON accepts a number or null.
func (r *Ratio) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*r = NotApplicable
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = Percent(v)
	return nil
}
