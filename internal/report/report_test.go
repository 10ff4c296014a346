package report

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/investment-calculator/internal/projection"
	"github.com/iwvelando/investment-calculator/pkg/format"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func testImage(t *testing.T, w, h int) *Image {
	t.Helper()
	img, err := DecodeImage("test.png", testPNG(t, w, h))
	if err != nil {
		t.Fatalf("DecodeImage() error = %v", err)
	}
	return img
}

func basicTable(t *testing.T, years int) projection.Table {
	t.Helper()
	rows, err := projection.ProjectBasic(projection.BasicParams{
		Principal:       100000,
		AnnualNetIncome: 5000,
		GrowthRate:      1,
		Years:           years,
	})
	if err != nil {
		t.Fatalf("ProjectBasic() error = %v", err)
	}
	return projection.BasicTable(rows)
}

func newRenderer(t *testing.T, opts Options, resources ResourceProvider) *Renderer {
	t.Helper()
	r, err := New(opts, resources, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return r
}

var testParams = []Entry{
	{Label: "Principal ($)", Value: "100,000.00"},
	{Label: "Years", Value: "3"},
}

func assertPDF(t *testing.T, data []byte) {
	t.Helper()
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("output does not start with a PDF header")
	}
	if !bytes.Contains(data[len(data)-16:], []byte("%%EOF")) {
		t.Fatalf("output is not terminated with %%%%EOF")
	}
}

func TestRenderPaginatesWithRepeatedHeader(t *testing.T) {
	r := newRenderer(t, DefaultOptions(), NoResources)
	table := basicTable(t, 100)

	out, err := r.Render("Projection", testParams, table, nil)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	assertPDF(t, out.Bytes)

	doc := out.Document
	if doc.PageCount() < 2 {
		t.Fatalf("PageCount() = %d, want more than one page", doc.PageCount())
	}
	if doc.RowCount() != 100 {
		t.Fatalf("RowCount() = %d, want 100", doc.RowCount())
	}

	next := 0
	for _, page := range doc.Pages {
		first := -1
		for i, b := range page.Blocks {
			if b.Kind == BlockTableRow {
				first = i
				break
			}
		}
		if first == -1 {
			continue
		}
		if first == 0 || page.Blocks[first-1].Kind != BlockTableHeader {
			t.Errorf("page %d: first data row is not preceded by a header", page.Number)
		}
		if got := page.Blocks[first-1].Cells[0]; got != "Year" {
			t.Errorf("page %d: header starts with %q, want Year", page.Number, got)
		}
		last := page.Blocks[len(page.Blocks)-1]
		if last.Kind == BlockTableHeader {
			t.Errorf("page %d ends with a header", page.Number)
		}
		for _, b := range page.Blocks {
			if b.Kind != BlockTableRow {
				continue
			}
			if b.Row != next {
				t.Errorf("page %d: row %d out of order, want %d", page.Number, b.Row, next)
			}
			next++
			if b.Y+b.Height > DefaultOptions().Bottom()+1e-6 {
				t.Errorf("page %d: row %d crosses the bottom margin", page.Number, b.Row)
			}
		}
	}
}

func TestRenderWithoutChart(t *testing.T) {
	r := newRenderer(t, DefaultOptions(), NoResources)
	out, err := r.Render("", testParams, basicTable(t, 3), nil)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	assertPDF(t, out.Bytes)
	if out.Document.Has(BlockImage) {
		t.Error("document without chart contains an image block")
	}
	if !out.Document.Has(BlockTableHeader) || out.Document.RowCount() != 3 {
		t.Error("table missing from document without chart")
	}
	if out.Filename != "investment_report.pdf" || out.MIMEType != "application/pdf" {
		t.Errorf("Filename/MIMEType = %q, %q", out.Filename, out.MIMEType)
	}
	if out.Document.Pages[0].Blocks[0].Text != "Investment Report" {
		t.Errorf("empty title should fall back to the default title")
	}
}

func TestRenderWithChart(t *testing.T) {
	r := newRenderer(t, DefaultOptions(), NoResources)
	chart := testImage(t, 400, 200)

	out, err := r.Render("Projection", testParams, basicTable(t, 5), chart)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	assertPDF(t, out.Bytes)

	var img *Block
	for _, b := range out.Document.Pages[0].Blocks {
		if b.Kind == BlockImage {
			b := b
			img = &b
		}
	}
	if img == nil {
		t.Fatal("chart image missing from first page")
	}
	width := DefaultOptions().ContentWidth()
	if img.Width != width || img.Height != width/2 {
		t.Errorf("chart size = %vx%v, want %vx%v", img.Width, img.Height, width, width/2)
	}
}

func TestRenderTallChartIsScaledToPage(t *testing.T) {
	r := newRenderer(t, DefaultOptions(), NoResources)
	out, err := r.Render("Projection", nil, basicTable(t, 1), testImage(t, 100, 1000))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	opts := DefaultOptions()
	for _, page := range out.Document.Pages {
		for _, b := range page.Blocks {
			if b.Kind == BlockImage && b.Y+b.Height > opts.Bottom()+1e-6 {
				t.Errorf("image overflows page %d", page.Number)
			}
		}
	}
}

func TestRenderParameterOrder(t *testing.T) {
	r := newRenderer(t, DefaultOptions(), NoResources)
	params := []Entry{{Label: "b", Value: "2"}, {Label: "a", Value: "1"}}
	out, err := r.Render("T", params, basicTable(t, 1), nil)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	var lines []string
	for _, b := range out.Document.Pages[0].Blocks {
		if b.Kind == BlockParameter {
			lines = append(lines, b.Text)
		}
	}
	if strings.Join(lines, "|") != "b: 2|a: 1" {
		t.Errorf("parameter lines = %v", lines)
	}
}

func TestRenderFontFallback(t *testing.T) {
	tests := []struct {
		name      string
		resources ResourceProvider
		warning   string
	}{
		{"missing font", NoResources, "unicode font unavailable"},
		{"corrupt font", StaticResources{FontData: []byte("not a font")}, "unicode font unusable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRenderer(t, DefaultOptions(), tt.resources)
			out, err := r.Render("Café ₪ report", testParams, basicTable(t, 2), nil)
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			assertPDF(t, out.Bytes)
			if !containsPrefix(out.Warnings, tt.warning) {
				t.Errorf("Warnings = %v, want one starting with %q", out.Warnings, tt.warning)
			}
		})
	}
}

func TestRenderLogo(t *testing.T) {
	r := newRenderer(t, DefaultOptions(), StaticResources{LogoImg: testImage(t, 60, 30)})
	out, err := r.Render("Projection", testParams, basicTable(t, 2), nil)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	first := out.Document.Pages[0].Blocks[0]
	if first.Kind != BlockLogo {
		t.Fatalf("first block = %v, want logo", first.Kind)
	}
	if first.Height != first.Width/2 {
		t.Errorf("logo aspect not preserved: %vx%v", first.Width, first.Height)
	}
	if containsPrefix(out.Warnings, "logo") {
		t.Errorf("unexpected logo warning: %v", out.Warnings)
	}

	r = newRenderer(t, DefaultOptions(), NoResources)
	out, err = r.Render("Projection", testParams, basicTable(t, 2), nil)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if out.Document.Has(BlockLogo) || !containsPrefix(out.Warnings, "logo unavailable") {
		t.Errorf("missing logo should be omitted with a warning, got %v", out.Warnings)
	}
}

func TestRenderDeterministic(t *testing.T) {
	r := newRenderer(t, DefaultOptions(), NoResources)
	table := basicTable(t, 60)
	chart := testImage(t, 300, 150)

	first, err := r.Render("Projection", testParams, table, chart)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	second, err := r.Render("Projection", testParams, table, chart)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !bytes.Equal(first.Bytes, second.Bytes) {
		t.Error("identical inputs produced different PDF bytes")
	}
}

func TestRenderWrapsLongText(t *testing.T) {
	r := newRenderer(t, DefaultOptions(), NoResources)
	title := strings.Repeat("Projection of a financed rental property ", 4)
	note := strings.Repeat("long note ", 20) + strings.Repeat("x", 120)
	params := []Entry{{Label: "Notes", Value: note}, {Label: "Years", Value: "3"}}

	rows, err := projection.ProjectAdvanced(projection.AdvancedParams{
		AssetCost:        1e12,
		Equity:           1e11,
		BankFinancing:    9e11,
		InterestRate:     3.5,
		AppreciationRate: 99,
		ExpectedIncome:   1e10,
		Years:            3,
	})
	if err != nil {
		t.Fatalf("ProjectAdvanced() error = %v", err)
	}

	out, err := r.Render(title, params, projection.AdvancedTable(rows), nil)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	assertPDF(t, out.Bytes)

	opts := DefaultOptions()
	measure := newTextMetrics(fallbackTypeface()).width
	var titles, notes []string
	for _, page := range out.Document.Pages {
		for _, b := range page.Blocks {
			switch b.Kind {
			case BlockTitle, BlockParameter:
				size, bold := opts.TextSize, false
				if b.Kind == BlockTitle {
					size, bold = opts.TitleSize, true
					titles = append(titles, b.Text)
				} else if !strings.HasPrefix(b.Text, "Years") {
					notes = append(notes, b.Text)
				}
				if w := measure(b.Text, size, bold) + 2*cellPadding; w > b.Width+1e-6 {
					t.Errorf("%v %q is %.1fmm wide, block is %.1fmm", b.Kind, b.Text, w, b.Width)
				}
				if b.X+b.Width > opts.PageWidth-opts.Margins.Right+1e-6 {
					t.Errorf("%v block crosses the right margin", b.Kind)
				}
			case BlockTableHeader, BlockTableRow:
				for i, cell := range b.Cells {
					w := measure(cell, b.Sizes[i], b.Kind == BlockTableHeader) + 2*cellPadding
					if w > b.Widths[i]+1e-6 {
						t.Errorf("%v cell %q is %.1fmm wide, column is %.1fmm", b.Kind, cell, w, b.Widths[i])
					}
					if b.Sizes[i] > opts.TextSize {
						t.Errorf("cell %q size %v above text size", cell, b.Sizes[i])
					}
				}
			}
		}
	}

	if len(titles) < 2 {
		t.Fatalf("title laid out on %d lines, want it wrapped", len(titles))
	}
	if got := strings.Join(titles, " "); got != strings.TrimSpace(title) {
		t.Errorf("wrapped title = %q", got)
	}
	if len(notes) < 3 {
		t.Errorf("long parameter laid out on %d lines, want it wrapped", len(notes))
	}
	if got := strings.ReplaceAll(strings.Join(notes, ""), " ", ""); got != strings.ReplaceAll("Notes: "+note, " ", "") {
		t.Errorf("wrapped parameter lost text: %q", got)
	}
}

func TestWrapText(t *testing.T) {
	// Each rune is one unit wide; lines hold at most 10.
	fits := func(s string) bool { return len([]rune(s)) <= 10 }
	tests := []struct {
		in   string
		want []string
	}{
		{"short", []string{"short"}},
		{"one two three four", []string{"one two", "three four"}},
		{"abcdefghijklmnopqrstuvwxyz", []string{"abcdefghij", "klmnopqrst", "uvwxyz"}},
		{"a abcdefghijkl b", []string{"a", "abcdefghij", "kl b"}},
		{"", []string{""}},
	}
	for _, tt := range tests {
		got := wrapText(tt.in, fits)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("wrapText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	// A line too narrow for any rune still makes progress.
	if got := wrapText("abc", func(s string) bool { return s == "" }); len(got) != 3 {
		t.Errorf("wrapText() with no room = %q, want one rune per line", got)
	}
}

func TestRenderTallLogoIsScaledToPage(t *testing.T) {
	r := newRenderer(t, DefaultOptions(), StaticResources{LogoImg: testImage(t, 10, 1000)})
	out, err := r.Render("Projection", testParams, basicTable(t, 2), nil)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	opts := DefaultOptions()
	logo := out.Document.Pages[0].Blocks[0]
	if logo.Kind != BlockLogo {
		t.Fatalf("first block = %v, want logo", logo.Kind)
	}
	if logo.Y+logo.Height > opts.Bottom()+1e-6 {
		t.Errorf("logo ends at %.1fmm, below the bottom margin %.1fmm", logo.Y+logo.Height, opts.Bottom())
	}
	if got := logo.Height / logo.Width; got < 99.99 || got > 100.01 {
		t.Errorf("logo aspect = %v, want 100", got)
	}
}

func TestColumnWidthPolicy(t *testing.T) {
	tests := []struct {
		name    string
		policy  ColumnWidth
		fixed   []float64
		want    []float64
		warning bool
	}{
		{"equal", ColumnWidthEqual, nil, []float64{45, 45, 45, 45}, false},
		{"fixed", ColumnWidthFixed, []float64{20, 40, 60, 60}, []float64{20, 40, 60, 60}, false},
		{"fixed wrong count", ColumnWidthFixed, []float64{20, 40}, []float64{45, 45, 45, 45}, true},
		{"fixed too wide", ColumnWidthFixed, []float64{100, 100, 100, 100}, []float64{45, 45, 45, 45}, true},
		{"fixed non-positive", ColumnWidthFixed, []float64{0, 60, 60, 60}, []float64{45, 45, 45, 45}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.ColumnWidth = tt.policy
			opts.FixedWidths = tt.fixed

			got, warning := opts.columnWidths(4)
			if (warning != "") != tt.warning {
				t.Errorf("warning = %q, want warning %v", warning, tt.warning)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d widths, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("width[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseColumnWidth(t *testing.T) {
	if p, err := ParseColumnWidth(""); err != nil || p != ColumnWidthEqual {
		t.Errorf("ParseColumnWidth(\"\") = %q, %v", p, err)
	}
	if p, err := ParseColumnWidth("Fixed"); err != nil || p != ColumnWidthFixed {
		t.Errorf("ParseColumnWidth(Fixed) = %q, %v", p, err)
	}
	if _, err := ParseColumnWidth("auto"); err == nil {
		t.Error("ParseColumnWidth(auto) should fail")
	}
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.Margins.Left = 200
	if _, err := New(opts, nil, nil); err == nil {
		t.Error("New() should reject margins wider than the page")
	}
}

func TestFormatCell(t *testing.T) {
	f := format.New(format.DefaultOptions())
	tests := []struct {
		kind projection.Kind
		cell projection.Cell
		want string
	}{
		{projection.KindInteger, projection.Value(7), "7"},
		{projection.KindAmount, projection.Value(116604.5015625), "116,604.50"},
		{projection.KindPercent, projection.Value(23.5), "23.50"},
		{projection.KindPercent, projection.NotApplicable, "N/A"},
	}
	for _, tt := range tests {
		if got := FormatCell(f, tt.kind, tt.cell); got != tt.want {
			t.Errorf("FormatCell(%v, %+v) = %q, want %q", tt.kind, tt.cell, got, tt.want)
		}
	}
}

func TestFileResources(t *testing.T) {
	dir := t.TempDir()
	logoPath := filepath.Join(dir, "logo.png")
	if err := os.WriteFile(logoPath, testPNG(t, 40, 20), 0o600); err != nil {
		t.Fatalf("write logo: %v", err)
	}

	res := FileResources{FontPath: filepath.Join(dir, "missing.ttf"), LogoPath: logoPath}
	if _, err := res.Font(); !errors.Is(err, ErrResourceUnavailable) {
		t.Errorf("Font() error = %v, want ErrResourceUnavailable", err)
	}
	logo, err := res.Logo()
	if err != nil {
		t.Fatalf("Logo() error = %v", err)
	}
	if logo.Width != 40 || logo.Height != 20 || logo.Format != "png" {
		t.Errorf("Logo() = %dx%d %s", logo.Width, logo.Height, logo.Format)
	}

	if _, err := (FileResources{}).Logo(); !errors.Is(err, ErrResourceUnavailable) {
		t.Errorf("empty path error = %v, want ErrResourceUnavailable", err)
	}
}

func TestTypefaceEncode(t *testing.T) {
	face := fallbackTypeface()
	if got := face.encode("Café €5 ₪"); got != "Caf\xe9 \x805 ?" {
		t.Errorf("encode() = %q", got)
	}
	unicode := typeface{family: unicodeFamily, unicode: true}
	if got := unicode.encode("₪"); got != "₪" {
		t.Errorf("unicode encode() = %q", got)
	}
}

func containsPrefix(items []string, prefix string) bool {
	for _, s := range items {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}
