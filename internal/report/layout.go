package report

import "github.com/iwvelando/investment-calculator/pkg/textshape"

// BlockKind identifies what a Block draws.
type BlockKind int

const (
	BlockTitle BlockKind = iota
	BlockLogo
	BlockParameter
	BlockImage
	BlockTableHeader
	BlockTableRow
)

func (k BlockKind) String() string {
	switch k {
	case BlockTitle:
		return "title"
	case BlockLogo:
		return "logo"
	case BlockParameter:
		return "parameter"
	case BlockImage:
		return "image"
	case BlockTableHeader:
		return "header"
	case BlockTableRow:
		return "row"
	}
	return "unknown"
}

// Align is a horizontal text alignment.
type Align string

const (
	AlignLeft   Align = "L"
	AlignCenter Align = "C"
	AlignRight  Align = "R"
)

// Block is one positioned element of a page. Text blocks carry Text,
// table blocks carry Cells with per-column Widths and Aligns, image blocks
// carry Image.
type Block struct {
	Kind   BlockKind
	X, Y   float64
	Width  float64
	Height float64

	Text   string
	Align  Align
	Cells  []string
	Widths []float64
	Aligns []Align
	// Sizes holds the font size in points of each cell, shrunk from the
	// text size where a value is wider than its column.
	Sizes []float64
	Image *Image

	// Row is the zero-based data row index of a BlockTableRow, otherwise -1.
	Row int
}

// Page is the ordered list of blocks drawn on one page.
type Page struct {
	Number int
	Blocks []Block
}

// Document is the laid out report. It is immutable once rendered.
type Document struct {
	Pages []Page
}

// PageCount returns the number of pages.
func (d Document) PageCount() int {
	return len(d.Pages)
}

// RowCount returns the number of data rows across all pages.
func (d Document) RowCount() int {
	n := 0
	for _, p := range d.Pages {
		for _, b := range p.Blocks {
			if b.Kind == BlockTableRow {
				n++
			}
		}
	}
	return n
}

// Has reports whether any page contains a block of kind.
func (d Document) Has(kind BlockKind) bool {
	for _, p := range d.Pages {
		for _, b := range p.Blocks {
			if b.Kind == kind {
				return true
			}
		}
	}
	return false
}

// content is everything placed on the pages, already formatted.
type content struct {
	title   string
	logo    *Image
	params  []Entry
	chart   *Image
	columns []string
	aligns  []Align
	widths  []float64
	rows    [][]string
}

// layout places blocks top to bottom, tracking the vertical cursor and
// starting a new page when the next block would cross the bottom margin.
type layout struct {
	opts    Options
	measure measureFunc
	doc     Document
	y       float64
}

func (l *layout) newPage() {
	l.doc.Pages = append(l.doc.Pages, Page{Number: len(l.doc.Pages) + 1})
	l.y = l.opts.Margins.Top
}

func (l *layout) fits(height float64) bool {
	return l.y+height <= l.opts.Bottom()+1e-9
}

func (l *layout) ensure(height float64) {
	if !l.fits(height) {
		l.newPage()
	}
}

func (l *layout) place(b Block) {
	b.Y = l.y
	if b.X == 0 {
		b.X = l.opts.Margins.Left
	}
	if b.Width == 0 {
		b.Width = l.opts.ContentWidth()
	}
	if b.Kind != BlockTableRow {
		b.Row = -1
	}
	page := &l.doc.Pages[len(l.doc.Pages)-1]
	page.Blocks = append(page.Blocks, b)
	l.y += b.Height
}

func (l *layout) gap() {
	l.y += l.opts.SectionGap
}

// wrap breaks s into lines that fit the content width at size points.
func (l *layout) wrap(s string, size float64, bold bool) []string {
	available := l.opts.ContentWidth() - 2*cellPadding
	return wrapText(s, func(line string) bool {
		return l.measure(line, size, bold) <= available
	})
}

// cellSizes returns the font size of each cell so that it fits its column.
func (l *layout) cellSizes(cells []string, widths []float64, bold bool) []float64 {
	sizes := make([]float64, len(cells))
	for i, cell := range cells {
		sizes[i] = fitSize(cell, widths[i], l.opts.TextSize, bold, l.measure)
	}
	return sizes
}

func (l *layout) text(s string) string {
	if l.opts.RTL {
		return textshape.Shape(s)
	}
	return s
}

// buildDocument lays out title, logo, parameters, optional chart and the
// table. Title and parameter text wraps to the content width and table
// cells shrink to their column. A table header is always followed by at
// least one row on the same page, and every page continuing the table
// starts with a fresh header.
func buildDocument(opts Options, c content, measure measureFunc) Document {
	l := &layout{opts: opts, measure: measure}
	l.newPage()

	if c.logo != nil {
		w := opts.LogoWidth
		if w > opts.ContentWidth() {
			w = opts.ContentWidth()
		}
		h := w * c.logo.AspectRatio()
		if maxHeight := opts.Bottom() - opts.Margins.Top; h > maxHeight {
			h = maxHeight
			w = h / c.logo.AspectRatio()
		}
		l.place(Block{Kind: BlockLogo, Width: w, Height: h, Image: c.logo})
		l.gap()
	}

	for _, line := range l.wrap(c.title, opts.TitleSize, true) {
		l.ensure(opts.TitleHeight)
		l.place(Block{Kind: BlockTitle, Height: opts.TitleHeight, Text: l.text(line), Align: AlignCenter})
	}
	l.gap()

	for _, p := range c.params {
		align := AlignLeft
		if opts.RTL || textshape.IsRTL(p.Label) {
			align = AlignRight
		}
		for _, line := range l.wrap(p.String(), opts.TextSize, false) {
			l.ensure(opts.LineHeight)
			l.place(Block{Kind: BlockParameter, Height: opts.LineHeight, Text: l.text(line), Align: align})
		}
	}
	if len(c.params) > 0 {
		l.gap()
	}

	if c.chart != nil {
		l.placeImage(c.chart)
		l.gap()
	}

	if len(c.columns) == 0 {
		return l.doc
	}

	labels := make([]string, len(c.columns))
	for i, col := range c.columns {
		labels[i] = l.text(col)
	}
	header := Block{
		Kind:   BlockTableHeader,
		Height: opts.HeaderHeight,
		Cells:  labels,
		Widths: c.widths,
		Aligns: repeatAlign(AlignCenter, len(c.columns)),
		Sizes:  l.cellSizes(labels, c.widths, true),
	}
	first := opts.HeaderHeight
	if len(c.rows) > 0 {
		first += opts.RowHeight
	}
	l.ensure(first)
	l.place(header)

	for i, cells := range c.rows {
		if !l.fits(opts.RowHeight) {
			l.newPage()
			l.place(header)
		}
		l.place(Block{
			Kind:   BlockTableRow,
			Height: opts.RowHeight,
			Cells:  cells,
			Widths: c.widths,
			Aligns: c.aligns,
			Sizes:  l.cellSizes(cells, c.widths, false),
			Row:    i,
		})
	}
	return l.doc
}

// placeImage scales img to the content width, shrinking it to one page
// height when taller, and moves to a new page when it does not fit below
// the cursor.
func (l *layout) placeImage(img *Image) {
	width := l.opts.ContentWidth()
	height := width * img.AspectRatio()
	maxHeight := l.opts.Bottom() - l.opts.Margins.Top
	if height > maxHeight {
		height = maxHeight
		width = height / img.AspectRatio()
	}
	l.ensure(height)
	x := l.opts.Margins.Left + (l.opts.ContentWidth()-width)/2
	l.place(Block{Kind: BlockImage, X: x, Width: width, Height: height, Image: img})
}

func repeatAlign(a Align, n int) []Align {
	aligns := make([]Align, n)
	for i := range aligns {
		aligns[i] = a
	}
	return aligns
}
