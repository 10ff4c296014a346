package calculator

import (
	"fmt"

	"github.com/iwvelando/investment-calculator/internal/config"
	"github.com/iwvelando/investment-calculator/internal/observability"
	"github.com/iwvelando/investment-calculator/internal/report"
	"github.com/iwvelando/investment-calculator/pkg/adapters"
	"go.uber.org/zap"
)

// FromConfig builds a Calculator and its report renderer from the report
// section of a configuration.
func FromConfig(logger *zap.Logger, rc config.ReportConfig, maxYears int, metrics *observability.Metrics) (*Calculator, error) {
	opts, err := adapters.ReportOptions(rc)
	if err != nil {
		return nil, fmt.Errorf("report settings: %w", err)
	}
	renderer, err := report.New(opts, adapters.Resources(rc), logger)
	if err != nil {
		return nil, err
	}
	return New(logger, renderer, Options{
		MaxYears:     maxYears,
		Title:        rc.Title,
		Chart:        rc.Chart,
		ChartMetric:  rc.ChartMetric,
		ChartOptions: adapters.ChartOptions(rc),
		CSV:          adapters.CSVOptions(rc),
		Metrics:      metrics,
	})
}
