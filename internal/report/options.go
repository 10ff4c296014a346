package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/investment-calculator/pkg/constants"
	"github.com/iwvelando/investment-calculator/pkg/format"
	"github.com/iwvelando/investment-calculator/pkg/mathutil"
)

// ColumnWidth selects how table column widths are computed.
type ColumnWidth string

const (
	// ColumnWidthEqual divides the content width evenly between columns.
	ColumnWidthEqual ColumnWidth = "equal"
	// ColumnWidthFixed uses Options.FixedWidths, one literal width per column.
	ColumnWidthFixed ColumnWidth = "fixed"
)

// ParseColumnWidth converts a configured policy name. An empty name selects
// ColumnWidthEqual.
func ParseColumnWidth(name string) (ColumnWidth, error) {
	switch ColumnWidth(strings.ToLower(strings.TrimSpace(name))) {
	case "", ColumnWidthEqual:
		return ColumnWidthEqual, nil
	case ColumnWidthFixed:
		return ColumnWidthFixed, nil
	}
	return "", fmt.Errorf("unknown column width policy %q, must be %q or %q", name, ColumnWidthEqual, ColumnWidthFixed)
}

// Margins are page margins in millimetres.
type Margins struct {
	Left, Top, Right, Bottom float64
}

// Options controls page geometry, typography and number formatting of a
// report. All lengths are millimetres.
type Options struct {
	PageWidth  float64
	PageHeight float64
	Margins    Margins

	TitleSize    float64
	TitleHeight  float64
	TextSize     float64
	LineHeight   float64
	HeaderHeight float64
	RowHeight    float64
	SectionGap   float64
	LogoWidth    float64

	ColumnWidth ColumnWidth
	FixedWidths []float64

	// RTL shapes labels and parameter text for right-to-left scripts.
	RTL bool

	Format format.Options

	Compress bool
	// CreationDate is written to the document metadata. The zero value
	// selects a fixed epoch so identical inputs give identical bytes.
	CreationDate time.Time
}

// DefaultOptions returns an A4 portrait layout with equal-width columns.
func DefaultOptions() Options {
	return Options{
		PageWidth:  210,
		PageHeight: 297,
		Margins: Margins{
			Left:   15,
			Top:    15,
			Right:  15,
			Bottom: 20,
		},
		TitleSize:    16,
		TitleHeight:  10,
		TextSize:     10,
		LineHeight:   6,
		HeaderHeight: 7,
		RowHeight:    6,
		SectionGap:   4,
		LogoWidth:    30,
		ColumnWidth:  ColumnWidthEqual,
		Format:       format.DefaultOptions(),
		Compress:     true,
	}
}

// ContentWidth is the printable width between the side margins.
func (o Options) ContentWidth() float64 {
	return o.PageWidth - o.Margins.Left - o.Margins.Right
}

// Bottom is the vertical position below which nothing is drawn.
func (o Options) Bottom() float64 {
	return o.PageHeight - o.Margins.Bottom
}

// Validate checks that the geometry leaves room for at least a header and
// one row.
func (o Options) Validate() error {
	if o.PageWidth <= 0 || o.PageHeight <= 0 {
		return fmt.Errorf("page size must be positive, got %vx%v", o.PageWidth, o.PageHeight)
	}
	if o.ContentWidth() <= 0 {
		return fmt.Errorf("margins leave no horizontal space")
	}
	if o.RowHeight <= 0 || o.HeaderHeight <= 0 || o.LineHeight <= 0 || o.TitleHeight <= 0 {
		return fmt.Errorf("line, header, row and title heights must be positive")
	}
	if o.Margins.Top+o.HeaderHeight+o.RowHeight > o.Bottom() {
		return fmt.Errorf("page too short for a table header and one row")
	}
	if _, err := ParseColumnWidth(string(o.ColumnWidth)); err != nil {
		return err
	}
	return nil
}

// columnWidths applies the configured policy to n columns. Fixed widths
// that are missing, non-positive or wider than the page fall back to equal
// widths, reported through the returned warning.
func (o Options) columnWidths(n int) ([]float64, string) {
	if n == 0 {
		return nil, ""
	}
	if o.ColumnWidth == ColumnWidthFixed {
		widths, err := o.fixedWidths(n)
		if err == nil {
			return widths, ""
		}
		return equalWidths(n, o.ContentWidth()), fmt.Sprintf("fixed column widths ignored: %v; using equal widths", err)
	}
	return equalWidths(n, o.ContentWidth()), ""
}

func (o Options) fixedWidths(n int) ([]float64, error) {
	if len(o.FixedWidths) != n {
		return nil, fmt.Errorf("got %d widths for %d columns", len(o.FixedWidths), n)
	}
	total := 0.0
	for i, w := range o.FixedWidths {
		if w <= 0 || !mathutil.IsFinite(w) {
			return nil, fmt.Errorf("width %d is %v", i+1, w)
		}
		total += w
	}
	if total > o.ContentWidth()+constants.CurrencyTolerance {
		return nil, fmt.Errorf("total width %.1fmm exceeds content width %.1fmm", total, o.ContentWidth())
	}
	return append([]float64(nil), o.FixedWidths...), nil
}

func equalWidths(n int, total float64) []float64 {
	widths := make([]float64, n)
	for i := range widths {
		widths[i] = total / float64(n)
	}
	return widths
}

// epoch is the creation date used when none is configured.
var epoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

func (o Options) creationDate() time.Time {
	if o.CreationDate.IsZero() {
		return epoch
	}
	return o.CreationDate
}
