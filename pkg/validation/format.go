// Package validation provides common validation utilities.
package validation

import (
	"fmt"

	"github.com/iwvelando/investment-calculator/pkg/constants"
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	switch format {
	case constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON:
		return nil
	}
	return fmt.Errorf("expected output format of %s, %s or %s, got %s",
		constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON, format)
}

// ValidateModel checks if the projection model is supported.
func ValidateModel(model string) error {
	switch model {
	case constants.ModelBasic, constants.ModelAdvanced:
		return nil
	}
	return NewFieldError("model", "expected %s or %s, got %q",
		constants.ModelBasic, constants.ModelAdvanced, model)
}
