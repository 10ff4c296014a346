// Package adapters provides adapter implementations between different package interfaces.
package adapters

import (
	"github.com/iwvelando/investment-calculator/internal/chart"
	"github.com/iwvelando/investment-calculator/internal/config"
	"github.com/iwvelando/investment-calculator/internal/report"
	"github.com/iwvelando/investment-calculator/pkg/format"
	"github.com/iwvelando/investment-calculator/pkg/output"
)

// FormatOptions converts the report config into number formatting options.
func FormatOptions(rc config.ReportConfig) format.Options {
	opts := format.DefaultOptions()
	opts.Locale = format.ParseLocale(rc.Locale)
	if rc.Decimals > 0 {
		opts.Decimals = rc.Decimals
	}
	opts.CurrencySymbol = rc.CurrencySymbol
	if rc.NAMarker != "" {
		opts.NotApplicable = rc.NAMarker
	}
	return opts
}

// ReportOptions converts the report config into renderer options.
func ReportOptions(rc config.ReportConfig) (report.Options, error) {
	policy, err := report.ParseColumnWidth(rc.ColumnWidth)
	if err != nil {
		return report.Options{}, err
	}
	opts := report.DefaultOptions()
	opts.ColumnWidth = policy
	opts.FixedWidths = append([]float64(nil), rc.FixedWidths...)
	opts.RTL = rc.RTL
	opts.Format = FormatOptions(rc)
	opts.Compress = rc.Compress
	return opts, nil
}

// Resources returns the file-backed font and logo provider of the report config.
func Resources(rc config.ReportConfig) report.ResourceProvider {
	return report.FileResources{FontPath: rc.FontPath, LogoPath: rc.LogoPath}
}

// ChartOptions converts the report config into chart options.
func ChartOptions(rc config.ReportConfig) chart.Options {
	opts := chart.DefaultOptions()
	opts.RTL = rc.RTL
	return opts
}

// CSVOptions converts the report config into export options.
func CSVOptions(rc config.ReportConfig) output.CSVOptions {
	opts := output.DefaultCSVOptions()
	if rc.Decimals > 0 {
		opts.Decimals = rc.Decimals
	}
	if rc.NAMarker != "" {
		opts.NotApplicable = rc.NAMarker
	}
	return opts
}
