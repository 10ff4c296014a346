// Package constants provides shared constants for the investment calculator.
package constants

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DisplayDecimals is the number of decimals shown for amounts and percentages
	DisplayDecimals = 2

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)

// Projection model constants
const (
	// ModelBasic selects the yield-compounding projection
	ModelBasic = "basic"

	// ModelAdvanced selects the financed-asset projection
	ModelAdvanced = "advanced"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix prefixes environment overrides, e.g. INVEST_CALC_MODEL
	EnvPrefix = "INVEST_CALC"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the web UI
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum request body size (64 KB)
	DefaultMaxUploadSizeBytes int64 = 64 * 1024

	// DefaultMaxYears caps the projection horizon accepted from callers
	DefaultMaxYears = 100

	// MaxFinancingTermYears is the longest amortization term accepted, even
	// when the projection horizon is uncapped
	MaxFinancingTermYears = 1000
)

// Report and export constants
const (
	// DefaultReportTitle is used when no report title is configured
	DefaultReportTitle = "Investment Report"

	// ReportFilename is the download name of the PDF report
	ReportFilename = "investment_report.pdf"

	// ReportMIMEType is the MIME type of the PDF report
	ReportMIMEType = "application/pdf"

	// ExportFilename is the download name of the CSV export
	ExportFilename = "investment_results.csv"

	// ExportMIMEType is the MIME type of the CSV export
	ExportMIMEType = "text/csv"

	// DefaultFontFile is the Unicode font looked up next to the binary
	DefaultFontFile = "DejaVuSans.ttf"

	// DefaultLogoFile is the optional logo drawn on the first report page
	DefaultLogoFile = "logo.png"

	// NotApplicable is rendered in place of ratios whose divisor was zero
	NotApplicable = "N/A"
)
