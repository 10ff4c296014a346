package calculator

import (
	"bytes"
	"context"
	"errors"
	"math"
	"os"
	"strings"
	"testing"

	"github.com/iwvelando/investment-calculator/internal/config"
	"github.com/iwvelando/investment-calculator/internal/observability"
	"github.com/iwvelando/investment-calculator/internal/projection"
	"github.com/iwvelando/investment-calculator/internal/report"
	"github.com/iwvelando/investment-calculator/pkg/testutil"
	"github.com/iwvelando/investment-calculator/pkg/validation"
	"go.uber.org/zap"
)

func newCalculator(t *testing.T, opts Options) *Calculator {
	t.Helper()
	renderer, err := report.New(report.DefaultOptions(), report.NoResources, zap.NewNop())
	if err != nil {
		t.Fatalf("report.New() error = %v", err)
	}
	if opts.Metrics == nil {
		opts.Metrics = observability.NewMetrics()
	}
	calc, err := New(zap.NewNop(), renderer, opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return calc
}

func basicRecord(years int) *projection.Record {
	return projection.BasicRecord(projection.BasicParams{
		Principal:       100000,
		AnnualNetIncome: 5000,
		GrowthRate:      5,
		Years:           years,
	})
}

func TestNewRequiresRenderer(t *testing.T) {
	if _, err := New(nil, nil, Options{}); err == nil {
		t.Fatal("New() without renderer should fail")
	}
}

func TestProject(t *testing.T) {
	calc := newCalculator(t, Options{})
	result, err := calc.Project(projection.Basic, basicRecord(3))
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}
	if result.Len() != 3 {
		t.Errorf("Len() = %d, want 3", result.Len())
	}
	if got := calc.opts.Metrics.ProjectionCount("basic", "success"); got != 1 {
		t.Errorf("success count = %v, want 1", got)
	}
}

func TestProjectRejectsYearsAboveMax(t *testing.T) {
	calc := newCalculator(t, Options{MaxYears: 5})
	_, err := calc.Project(projection.Basic, basicRecord(6))
	if !validation.IsFieldError(err) {
		t.Fatalf("Project() error = %v, want FieldError", err)
	}
	if got := calc.opts.Metrics.ProjectionCount("basic", "error"); got != 1 {
		t.Errorf("error count = %v, want 1", got)
	}
}

func TestReportWithChart(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("TMPDIR", tmp)

	calc := newCalculator(t, Options{Chart: true, Title: "Default Title"})
	out, err := calc.Report(context.Background(), Request{Model: projection.Basic, Params: basicRecord(10)})
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if !bytes.HasPrefix(out.Bytes, []byte("%PDF-")) {
		t.Fatal("output is not a PDF")
	}
	if !out.Document.Has(report.BlockImage) {
		t.Error("report has no chart")
	}
	if out.Document.RowCount() != 10 {
		t.Errorf("RowCount() = %d, want 10", out.Document.RowCount())
	}
	if got := out.Document.Pages[0].Blocks[0].Text; got != "Default Title" {
		t.Errorf("title = %q, want the configured default", got)
	}

	entries, err := os.ReadDir(tmp)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("temporary chart files left behind: %d", len(entries))
	}
	if got := calc.opts.Metrics.RenderCount("chart", "success"); got != 1 {
		t.Errorf("chart renders = %v, want 1", got)
	}
	if got := calc.opts.Metrics.RenderCount("report", "success"); got != 1 {
		t.Errorf("report renders = %v, want 1", got)
	}
}

func TestReportChartFailureDegrades(t *testing.T) {
	// Zero equity leaves no applicable ROI value to chart.
	calc := newCalculator(t, Options{Chart: true, ChartMetric: projection.ColROIPercent})
	rec := projection.AdvancedRecord(projection.AdvancedParams{
		AssetCost:     200000,
		BankFinancing: 200000,
		InterestRate:  4,
		Years:         5,
	})
	out, err := calc.Report(context.Background(), Request{Model: projection.Advanced, Params: rec, Title: "Zero equity"})
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if out.Document.Has(report.BlockImage) {
		t.Error("report should omit the chart")
	}
	found := false
	for _, w := range out.Warnings {
		if strings.HasPrefix(w, "chart unavailable") {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %v, want a chart warning", out.Warnings)
	}
	if got := calc.opts.Metrics.WarningCount("chart"); got != 1 {
		t.Errorf("chart warnings = %v, want 1", got)
	}
}

func TestReportWithoutChart(t *testing.T) {
	calc := newCalculator(t, Options{Chart: true})
	out, err := calc.Report(context.Background(), Request{Model: projection.Basic, Params: basicRecord(3), NoChart: true})
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if out.Document.Has(report.BlockImage) {
		t.Error("NoChart request rendered a chart")
	}
}

func TestReportCancelled(t *testing.T) {
	calc := newCalculator(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := calc.Report(ctx, Request{Model: projection.Basic, Params: basicRecord(3)})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Report() error = %v, want context.Canceled", err)
	}
}

func TestExport(t *testing.T) {
	calc := newCalculator(t, Options{})
	data, result, err := calc.Export(context.Background(), Request{Model: projection.Basic, Params: basicRecord(3)})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	want := "Year,Yield (%),Expected Income ($),Cumulative Value ($)\n" +
		"1,5.00,5000.00,105000.00\n" +
		"2,5.25,5512.50,110512.50\n" +
		"3,5.51,6092.00,116604.50\n"
	if string(data) != want {
		t.Errorf("Export() =\n%s\nwant\n%s", data, want)
	}
	if result.Len() != 3 {
		t.Errorf("result rows = %d, want 3", result.Len())
	}
	cell, ok := testutil.CellValue(result.Table(), 3, projection.ColCumulativeValue)
	if !ok || math.Abs(cell.Value-116604.5015625) > 1e-6 {
		t.Errorf("year 3 cumulative value = %v, want 116604.5015625", cell.Value)
	}
}

func TestEntries(t *testing.T) {
	calc := newCalculator(t, Options{})
	result, err := calc.Project(projection.Basic, nil)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}
	entries := calc.Entries(result)
	if len(entries) != 5 {
		t.Fatalf("got %d entries, want 5", len(entries))
	}
	if entries[4].Label != projection.BaseYieldLabel {
		t.Errorf("last entry = %+v, want the base yield", entries[4])
	}
}

func TestFromConfig(t *testing.T) {
	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("config.Default() error = %v", err)
	}
	rc := cfg.Report
	rc.FontPath = ""
	rc.LogoPath = ""
	rc.Decimals = 1
	rc.Chart = false

	calc, err := FromConfig(zap.NewNop(), rc, 20, observability.NewMetrics())
	if err != nil {
		t.Fatalf("FromConfig() error = %v", err)
	}
	if _, err := calc.Project(projection.Basic, basicRecord(21)); !validation.IsFieldError(err) {
		t.Errorf("years above the configured maximum error = %v, want FieldError", err)
	}
	data, _, err := calc.Export(context.Background(), Request{Model: projection.Basic, Params: basicRecord(1)})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if !strings.Contains(string(data), "1,5.0,5000.0,105000.0") {
		t.Errorf("Export() = %q, want one-decimal values", data)
	}

	rc.ColumnWidth = "auto"
	if _, err := FromConfig(zap.NewNop(), rc, 0, nil); err == nil {
		t.Error("FromConfig() should reject an unknown column width policy")
	}
}
