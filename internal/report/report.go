// Package report renders a projection as a paginated PDF document.
//
// Rendering happens in two steps: the content is laid out into a Document
// of positioned blocks, then the Document is drawn with fpdf. The layout
// step owns pagination and can be inspected without decoding PDF bytes.
package report

import (
	"errors"
	"fmt"

	"github.com/iwvelando/investment-calculator/internal/projection"
	"github.com/iwvelando/investment-calculator/pkg/constants"
	"github.com/iwvelando/investment-calculator/pkg/format"
	"go.uber.org/zap"
)

// Entry is one "label: value" line of the parameter block.
type Entry struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

func (e Entry) String() string {
	return e.Label + ": " + e.Value
}

// Output is a rendered report.
type Output struct {
	Bytes    []byte
	Document Document
	// Warnings lists optional resources that were unavailable. They never
	// fail a render.
	Warnings []string
	Filename string
	MIMEType string
}

// Renderer produces PDF reports. It holds only immutable configuration and
// is safe for concurrent use.
type Renderer struct {
	opts      Options
	resources ResourceProvider
	logger    *zap.Logger
	formatter *format.Formatter
}

// New creates a Renderer. A nil provider means no optional resources.
func New(opts Options, resources ResourceProvider, logger *zap.Logger) (*Renderer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if resources == nil {
		resources = NoResources
	}
	if opts.ColumnWidth == "" {
		opts.ColumnWidth = ColumnWidthEqual
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report options: %w", err)
	}
	return &Renderer{
		opts:      opts,
		resources: resources,
		logger:    logger,
		formatter: format.New(opts.Format),
	}, nil
}

// Options returns the renderer's options.
func (r *Renderer) Options() Options {
	return r.opts
}

// Render lays out and draws a report. chart may be nil, in which case the
// chart section is omitted.
func (r *Renderer) Render(title string, params []Entry, table projection.Table, chart *Image) (*Output, error) {
	if title == "" {
		title = constants.DefaultReportTitle
	}
	var warnings []string
	warn := func(msg string, err error) {
		text := msg
		if err != nil {
			text = fmt.Sprintf("%s: %v", msg, err)
		}
		warnings = append(warnings, text)
		r.logger.Warn(msg,
			zap.String("op", "report.Render"),
			zap.Error(err),
		)
	}

	face := fallbackTypeface()
	if data, err := r.resources.Font(); err != nil {
		warn("unicode font unavailable, using "+fallbackFamily, err)
	} else if err := probeFont(data); err != nil {
		warn("unicode font unusable, using "+fallbackFamily, err)
	} else {
		face = typeface{family: unicodeFamily, unicode: true, data: data}
	}

	logo, err := r.resources.Logo()
	if err != nil {
		logo = nil
		if errors.Is(err, ErrResourceUnavailable) {
			warn("logo unavailable", nil)
		} else {
			warn("logo unusable", err)
		}
	}

	widths, widthWarning := r.opts.columnWidths(len(table.Columns))
	if widthWarning != "" {
		warn(widthWarning, nil)
	}

	doc := buildDocument(r.opts, content{
		title:   title,
		logo:    logo,
		params:  params,
		chart:   chart,
		columns: table.Labels(),
		aligns:  repeatAlign(AlignRight, len(table.Columns)),
		widths:  widths,
		rows:    r.cells(table),
	}, newTextMetrics(face).width)

	data, err := newPDFWriter(r.opts, face, title).write(doc)
	if err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}

	r.logger.Debug("rendered report",
		zap.String("op", "report.Render"),
		zap.Int("pages", doc.PageCount()),
		zap.Int("rows", table.Len()),
		zap.Bool("chart", chart != nil),
		zap.Int("bytes", len(data)),
	)

	return &Output{
		Bytes:    data,
		Document: doc,
		Warnings: warnings,
		Filename: constants.ReportFilename,
		MIMEType: constants.ReportMIMEType,
	}, nil
}

func (r *Renderer) cells(table projection.Table) [][]string {
	rows := make([][]string, len(table.Rows))
	for i, row := range table.Rows {
		cells := make([]string, len(table.Columns))
		for j, col := range table.Columns {
			if j < len(row) {
				cells[j] = FormatCell(r.formatter, col.Kind, row[j])
			}
		}
		rows[i] = cells
	}
	return rows
}

// FormatCell renders one table value: years as grouped integers, amounts
// and percentages with fixed decimals and grouping, undefined values as
// the not-applicable marker.
func FormatCell(f *format.Formatter, kind projection.Kind, cell projection.Cell) string {
	if !cell.Applicable {
		return f.Options().NotApplicable
	}
	if kind == projection.KindInteger {
		return f.Integer(cell.Value)
	}
	return f.Number(cell.Value)
}
