// Package calculator runs one projection request end to end: it computes
// the rows, draws the chart, and renders the PDF report or CSV export.
package calculator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iwvelando/investment-calculator/internal/chart"
	"github.com/iwvelando/investment-calculator/internal/observability"
	"github.com/iwvelando/investment-calculator/internal/projection"
	"github.com/iwvelando/investment-calculator/internal/report"
	"github.com/iwvelando/investment-calculator/pkg/adapters"
	"github.com/iwvelando/investment-calculator/pkg/format"
	"github.com/iwvelando/investment-calculator/pkg/output"
	"go.uber.org/zap"
)

// Options configures a Calculator.
type Options struct {
	// MaxYears caps the projection horizon. Zero disables the cap.
	MaxYears int
	// Title is used for reports whose request carries none.
	Title string
	// Chart enables the chart section of reports.
	Chart bool
	// ChartMetric is the charted column key; empty selects the model default.
	ChartMetric  string
	ChartOptions chart.Options
	CSV          output.CSVOptions
	Metrics      *observability.Metrics
}

// Request is one projection to compute and render.
type Request struct {
	Model  projection.Model
	Params *projection.Record
	Title  string
	// NoChart omits the chart from this request's report.
	NoChart bool
}

// Calculator holds only immutable configuration and is safe for
// concurrent use.
type Calculator struct {
	logger    *zap.Logger
	renderer  *report.Renderer
	formatter *format.Formatter
	opts      Options
}

// New creates a Calculator that renders reports with renderer.
func New(logger *zap.Logger, renderer *report.Renderer, opts Options) (*Calculator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if renderer == nil {
		return nil, errors.New("calculator requires a report renderer")
	}
	if opts.ChartOptions.Width <= 0 || opts.ChartOptions.Height <= 0 {
		rtl := opts.ChartOptions.RTL
		opts.ChartOptions = chart.DefaultOptions()
		opts.ChartOptions.RTL = rtl
	}
	if opts.CSV.Comma == 0 {
		opts.CSV = output.DefaultCSVOptions()
	}
	return &Calculator{
		logger:    logger,
		renderer:  renderer,
		formatter: format.New(renderer.Options().Format),
		opts:      opts,
	}, nil
}

// Formatter returns the number formatter shared with the report.
func (c *Calculator) Formatter() *format.Formatter {
	return c.formatter
}

// Project computes the projection of rec under model.
func (c *Calculator) Project(model projection.Model, rec *projection.Record) (*projection.Result, error) {
	if rec == nil {
		rec = projection.DefaultRecord(model)
	}
	start := time.Now()
	engine, err := projection.New(model, projection.WithMaxYears(c.opts.MaxYears))
	if err != nil {
		c.opts.Metrics.RecordProjection(string(model), 0, 0, err)
		return nil, err
	}
	result, err := engine.Project(rec)
	if err != nil {
		c.opts.Metrics.RecordProjection(string(model), 0, 0, err)
		return nil, err
	}
	c.opts.Metrics.RecordProjection(string(model), result.Len(), time.Since(start), nil)

	c.logger.Debug("computed projection",
		zap.String("op", "calculator.Project"),
		zap.String("model", string(model)),
		zap.Int("years", result.Len()),
	)
	return result, nil
}

// Entries formats the parameters of result for display.
func (c *Calculator) Entries(result *projection.Result) []report.Entry {
	return adapters.Entries(result.Model, result.Params, c.formatter)
}

// Report computes the projection and renders it as a PDF. A chart that
// cannot be drawn is reported as a warning and the report omits it.
func (c *Calculator) Report(ctx context.Context, req Request) (*report.Output, error) {
	result, err := c.Project(req.Model, req.Params)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var warnings []string
	var img *report.Image
	if c.opts.Chart && !req.NoChart {
		img, err = c.chart(result)
		if err != nil {
			img = nil
			warnings = append(warnings, fmt.Sprintf("chart unavailable: %v", err))
			c.opts.Metrics.IncrRenderWarning("chart")
			c.logger.Warn("chart unavailable, rendering report without it",
				zap.String("op", "calculator.Report"),
				zap.Error(err),
			)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	title := req.Title
	if title == "" {
		title = c.opts.Title
	}

	start := time.Now()
	out, err := c.renderer.Render(title, c.Entries(result), result.Table(), img)
	c.opts.Metrics.RecordRender("report", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	c.opts.Metrics.RecordReportPages(out.Document.PageCount())
	for range out.Warnings {
		c.opts.Metrics.IncrRenderWarning("report")
	}
	out.Warnings = append(warnings, out.Warnings...)

	c.logger.Info("report rendered",
		zap.String("op", "calculator.Report"),
		zap.String("model", string(result.Model)),
		zap.Int("pages", out.Document.PageCount()),
		zap.Int("warnings", len(out.Warnings)),
	)
	return out, nil
}

// chart draws the chart and round-trips it through a temporary file that
// is removed before returning.
func (c *Calculator) chart(result *projection.Result) (*report.Image, error) {
	start := time.Now()
	img, err := c.drawChart(result)
	c.opts.Metrics.RecordRender("chart", time.Since(start), err)
	return img, err
}

func (c *Calculator) drawChart(result *projection.Result) (*report.Image, error) {
	img, err := chart.Render(result.Table(), c.opts.ChartMetric, c.opts.ChartOptions)
	if err != nil {
		return nil, err
	}
	path, cleanup, err := chart.WriteTemp(img)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	return chart.Load(path)
}

// Export computes the projection and encodes its table as CSV.
func (c *Calculator) Export(ctx context.Context, req Request) ([]byte, *projection.Result, error) {
	result, err := c.Project(req.Model, req.Params)
	if err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	data, err := c.CSV(result)
	if err != nil {
		return nil, nil, err
	}
	return data, result, nil
}

// CSV encodes the table of result.
func (c *Calculator) CSV(result *projection.Result) ([]byte, error) {
	start := time.Now()
	var buf bytes.Buffer
	err := output.WriteCSV(&buf, result.Table(), c.opts.CSV)
	c.opts.Metrics.RecordRender("export", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("export projection: %w", err)
	}
	return buf.Bytes(), nil
}
