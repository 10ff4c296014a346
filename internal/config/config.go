// Package config defines the data structures related to configuration and
// includes functions for loading and parsing the config.
package config

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/iwvelando/investment-calculator/internal/projection"
	"github.com/iwvelando/investment-calculator/pkg/constants"
	"github.com/iwvelando/investment-calculator/pkg/format"
	"github.com/iwvelando/investment-calculator/pkg/mathutil"
	"github.com/iwvelando/investment-calculator/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for investment-calculator.
type Configuration struct {
	Model    string                 `yaml:"model"`
	MaxYears int                    `yaml:"maxYears,omitempty"`
	Basic    map[string]interface{} `yaml:"basic,omitempty"`
	Advanced map[string]interface{} `yaml:"advanced,omitempty"`
	Report   ReportConfig           `yaml:"report,omitempty"`
	Logging  LoggingConfig          `yaml:"logging,omitempty"`
	Output   OutputConfig           `yaml:"output,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
}

// ReportConfig holds PDF report and number formatting options.
type ReportConfig struct {
	Title          string    `yaml:"title,omitempty"`
	RTL            bool      `yaml:"rtl,omitempty"`
	ColumnWidth    string    `yaml:"columnWidth,omitempty"` // equal, fixed
	FixedWidths    []float64 `yaml:"fixedWidths,omitempty"` // millimetres, one per column
	FontPath       string    `yaml:"fontPath,omitempty"`
	LogoPath       string    `yaml:"logoPath,omitempty"`
	Chart          bool      `yaml:"chart"`
	ChartMetric    string    `yaml:"chartMetric,omitempty"`
	Locale         string    `yaml:"locale,omitempty"`
	Decimals       int       `yaml:"decimals,omitempty"`
	CurrencySymbol string    `yaml:"currencySymbol,omitempty"`
	NAMarker       string    `yaml:"naMarker,omitempty"`
	Compress       bool      `yaml:"compress"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("model", constants.ModelBasic)
	v.SetDefault("maxYears", constants.DefaultMaxYears)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("report.title", constants.DefaultReportTitle)
	v.SetDefault("report.rtl", false)
	v.SetDefault("report.columnWidth", "equal")
	v.SetDefault("report.fontPath", constants.DefaultFontFile)
	v.SetDefault("report.logoPath", constants.DefaultLogoFile)
	v.SetDefault("report.chart", true)
	v.SetDefault("report.chartMetric", "")
	v.SetDefault("report.locale", "en")
	v.SetDefault("report.decimals", constants.DisplayDecimals)
	v.SetDefault("report.currencySymbol", "")
	v.SetDefault("report.naMarker", constants.NotApplicable)
	v.SetDefault("report.compress", true)
	return v
}

// Default returns the configuration used when no file is given: defaults
// plus any INVEST_CALC_ environment overrides.
func Default() (*Configuration, error) {
	return decode(newViper())
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)
	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %w", err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	configuration.Model = strings.ToLower(strings.TrimSpace(configuration.Model))
	return &configuration, nil
}

// ProjectionModel returns the configured model.
func (c *Configuration) ProjectionModel() (projection.Model, error) {
	return projection.ParseModel(c.Model)
}

// Parameters returns the raw parameter map of model, creating it if needed.
func (c *Configuration) Parameters(model projection.Model) map[string]interface{} {
	if model == projection.Advanced {
		if c.Advanced == nil {
			c.Advanced = make(map[string]interface{})
		}
		return c.Advanced
	}
	if c.Basic == nil {
		c.Basic = make(map[string]interface{})
	}
	return c.Basic
}

// SetParameter applies a "key=value" override to the parameters of the
// configured model. Values are coerced when the record is built.
func (c *Configuration) SetParameter(assignment string) error {
	key, value, ok := strings.Cut(assignment, "=")
	key = strings.ToLower(strings.TrimSpace(key))
	if !ok || key == "" {
		return fmt.Errorf("invalid parameter override %q, expected key=value", assignment)
	}
	model, err := c.ProjectionModel()
	if err != nil {
		return err
	}
	if _, known := projection.LookupField(model, key); !known {
		return validation.NewFieldError(key, "is not a %s parameter", model)
	}
	c.Parameters(model)[key] = strings.TrimSpace(value)
	return nil
}

// Record builds the parameter record of the configured model: defaults
// first, overridden by configured values, in display order.
func (c *Configuration) Record() (projection.Model, *projection.Record, error) {
	model, err := c.ProjectionModel()
	if err != nil {
		return "", nil, err
	}

	values := make(map[string]interface{})
	defaults := projection.DefaultRecord(model)
	for _, key := range defaults.Keys() {
		values[key] = defaults.Float(key)
	}
	for key, value := range c.Parameters(model) {
		values[strings.ToLower(key)] = value
	}
	return model, projection.RecordFromMap(values, projection.FieldKeys(model)), nil
}

// Validate checks settings that would make every run fail.
func (c *Configuration) Validate() error {
	if _, err := c.ProjectionModel(); err != nil {
		return err
	}
	if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
		return err
	}
	if c.MaxYears < 0 {
		return validation.NewFieldError("maxYears", "must not be negative, got %d", c.MaxYears)
	}
	switch strings.ToLower(c.Report.ColumnWidth) {
	case "", "equal", "fixed":
	default:
		return validation.NewFieldError("report.columnWidth", "must be equal or fixed, got %q", c.Report.ColumnWidth)
	}
	if c.Report.Decimals < 0 {
		return validation.NewFieldError("report.decimals", "must not be negative, got %d", c.Report.Decimals)
	}
	return nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	model, err := c.ProjectionModel()
	if err != nil {
		return []string{err.Error()}
	}

	var unknown []string
	for key := range c.Parameters(model) {
		if _, ok := projection.LookupField(model, strings.ToLower(key)); !ok {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		warnings = append(warnings, fmt.Sprintf("parameter %q is not used by the %s model and will be ignored", key, model))
	}

	other := projection.Basic
	if model == projection.Basic {
		other = projection.Advanced
	}
	if len(c.Parameters(other)) > 0 {
		warnings = append(warnings, fmt.Sprintf("%s parameters are configured but the %s model is selected", other, model))
	}

	if model == projection.Advanced {
		_, rec, err := c.Record()
		if err == nil {
			cost := rec.Float(projection.KeyAssetCost)
			funded := rec.Float(projection.KeyEquity) + rec.Float(projection.KeyBankFinancing)
			if cost > 0 && !mathutil.WithinTolerance(funded, cost, constants.CurrencyTolerance) {
				warnings = append(warnings, fmt.Sprintf("equity plus bank financing (%s) does not equal asset cost (%s)",
					format.Currency(funded), format.Currency(cost)))
			}
		}
	}

	if strings.EqualFold(c.Report.ColumnWidth, "equal") && len(c.Report.FixedWidths) > 0 {
		warnings = append(warnings, "report.fixedWidths is ignored unless report.columnWidth is fixed")
	}
	return warnings
}
