// Package chart draws a projection metric over time as a PNG line chart.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"os"

	"github.com/iwvelando/investment-calculator/internal/projection"
	"github.com/iwvelando/investment-calculator/internal/report"
	"github.com/iwvelando/investment-calculator/pkg/format"
	"github.com/iwvelando/investment-calculator/pkg/textshape"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// ErrNoData is returned when the chosen metric has no defined values.
var ErrNoData = errors.New("no data to chart")

// Options controls the chart's size and labels.
type Options struct {
	// Title defaults to the metric's column label.
	Title string
	// Width and Height are in points (1/72 inch).
	Width  vg.Length
	Height vg.Length
	// RTL shapes the title for right-to-left scripts.
	RTL bool
}

// DefaultOptions returns a 2:1 chart sized for an A4 report.
func DefaultOptions() Options {
	return Options{
		Width:  8 * vg.Inch,
		Height: 4 * vg.Inch,
	}
}

// DefaultMetric returns the column charted when none is configured.
func DefaultMetric(model projection.Model) string {
	if model == projection.Advanced {
		return projection.ColPropertyValue
	}
	return projection.ColCumulativeValue
}

// Render plots column metric of table against the year column. Rows whose
// metric is not applicable are skipped.
func Render(table projection.Table, metric string, opts Options) (*report.Image, error) {
	if metric == "" {
		metric = DefaultMetric(table.Model)
	}
	yearIdx, ok := table.Index(projection.ColYear)
	if !ok {
		return nil, fmt.Errorf("table has no %s column", projection.ColYear)
	}
	metricIdx, ok := table.Index(metric)
	if !ok {
		return nil, fmt.Errorf("unknown chart metric %q", metric)
	}
	column := table.Columns[metricIdx]

	pts := make(plotter.XYs, 0, table.Len())
	for _, row := range table.Rows {
		if !row[metricIdx].Applicable {
			continue
		}
		pts = append(pts, plotter.XY{X: row[yearIdx].Value, Y: row[metricIdx].Value})
	}
	if len(pts) == 0 {
		return nil, ErrNoData
	}

	if opts.Width <= 0 || opts.Height <= 0 {
		defaults := DefaultOptions()
		opts.Width, opts.Height = defaults.Width, defaults.Height
	}
	title := opts.Title
	if title == "" {
		title = column.Label
	}
	if opts.RTL {
		title = textshape.Shape(title)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Year"
	p.Y.Label.Text = column.Label
	p.X.Tick.Marker = yearTicks{}
	p.Y.Tick.Marker = groupedTicks{}
	p.Add(plotter.NewGrid())

	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return nil, fmt.Errorf("build chart series: %w", err)
	}
	line.Color = color.RGBA{R: 0, G: 51, B: 102, A: 255}
	line.Width = vg.Points(2)
	points.Color = line.Color
	points.Radius = vg.Points(2.5)
	p.Add(line, points)

	wt, err := p.WriterTo(opts.Width, opts.Height, "png")
	if err != nil {
		return nil, fmt.Errorf("create chart canvas: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode chart: %w", err)
	}
	return report.DecodeImage("chart.png", buf.Bytes())
}

// groupedTicks labels the value axis with thousands separators.
type groupedTicks struct{}

func (groupedTicks) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label = format.Grouped(ticks[i].Value)
		}
	}
	return ticks
}

// yearTicks keeps only whole years on the time axis.
type yearTicks struct{}

func (yearTicks) Ticks(min, max float64) []plot.Tick {
	var ticks []plot.Tick
	for _, t := range (plot.DefaultTicks{}).Ticks(min, max) {
		if t.Label == "" || t.Value != float64(int64(t.Value)) {
			continue
		}
		t.Label = format.Grouped(t.Value)
		ticks = append(ticks, t)
	}
	return ticks
}

// WriteTemp writes img to a temporary file. The returned cleanup removes
// it and is safe to call more than once.
func WriteTemp(img *report.Image) (string, func(), error) {
	f, err := os.CreateTemp("", "invest-chart-*.png")
	if err != nil {
		return "", func() {}, fmt.Errorf("create chart file: %w", err)
	}
	path := f.Name()
	cleanup := func() { _ = os.Remove(path) }

	if _, err := f.Write(img.Data); err != nil {
		_ = f.Close()
		cleanup()
		return "", func() {}, fmt.Errorf("write chart file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", func() {}, fmt.Errorf("close chart file: %w", err)
	}
	return path, cleanup, nil
}

// Load reads a chart image written by WriteTemp.
func Load(path string) (*report.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read chart file: %w", err)
	}
	return report.DecodeImage(path, data)
}
