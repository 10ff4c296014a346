package validation

import (
	"errors"
	"fmt"

	"github.com/iwvelando/investment-calculator/pkg/constants"
	"github.com/iwvelando/investment-calculator/pkg/mathutil"
)

// FieldError reports a parameter that cannot be projected.
type FieldError struct {
	Field  string
	Reason string
}

// NewFieldError builds a FieldError with a formatted reason.
func NewFieldError(field, reason string, args ...interface{}) *FieldError {
	return &FieldError{Field: field, Reason: fmt.Sprintf(reason, args...)}
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsFieldError reports whether err wraps a FieldError.
func IsFieldError(err error) bool {
	var fieldErr *FieldError
	return errors.As(err, &fieldErr)
}

// ValidateYears rejects negative year counts and, when maxYears is
// positive, counts above it. Zero years is valid and yields no rows.
func ValidateYears(years, maxYears int) error {
	if years < 0 {
		return NewFieldError("years", "must not be negative, got %d", years)
	}
	if maxYears > 0 && years > maxYears {
		return NewFieldError("years", "must not exceed %d, got %d", maxYears, years)
	}
	return nil
}

// ValidateWholeYears checks that a coerced year count carries no fraction.
func ValidateWholeYears(years float64) error {
	if !mathutil.IsFinite(years) || years != float64(int64(years)) {
		return NewFieldError("years", "must be a whole number, got %v", years)
	}
	return nil
}

// ValidateTermYears checks a loan term in whole years. The term may not
// exceed maxYears when it is positive, nor MaxFinancingTermYears.
func ValidateTermYears(field string, term float64, maxYears int) error {
	if !mathutil.IsFinite(term) || term != float64(int64(term)) {
		return NewFieldError(field, "must be a whole number, got %v", term)
	}
	if term < 0 {
		return NewFieldError(field, "must not be negative, got %v", term)
	}
	limit := constants.MaxFinancingTermYears
	if maxYears > 0 && maxYears < limit {
		limit = maxYears
	}
	if term > float64(limit) {
		return NewFieldError(field, "must not exceed %d, got %v", limit, term)
	}
	return nil
}

// ValidateFinite rejects NaN and infinite parameter values.
func ValidateFinite(field string, value float64) error {
	if !mathutil.IsFinite(value) {
		return NewFieldError(field, "must be a finite number, got %v", value)
	}
	return nil
}

// ValidateNonNegative rejects negative parameter values.
func ValidateNonNegative(field string, value float64) error {
	if err := ValidateFinite(field, value); err != nil {
		return err
	}
	if value < 0 {
		return NewFieldError(field, "must not be negative, got %v", value)
	}
	return nil
}
