package report

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"
)

const (
	unicodeFamily  = "DejaVu"
	fallbackFamily = "Helvetica"
)

// typeface is the font the document is drawn with and how strings are
// converted for it.
type typeface struct {
	family  string
	unicode bool
	data    []byte
}

func fallbackTypeface() typeface {
	return typeface{family: fallbackFamily}
}

// encode converts UTF-8 text for the typeface. Core fonts use Windows-1252,
// so runes outside it become '?'.
func (t typeface) encode(s string) string {
	if t.unicode {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if c, ok := charmap.Windows1252.EncodeRune(r); ok {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('?')
	}
	return b.String()
}

// probeFont loads a TrueType font into a scratch document to find out
// whether fpdf can use it.
func probeFont(data []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse font: %v", r)
		}
	}()
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddUTF8FontFromBytes(unicodeFamily, "", data)
	if pdf.Err() {
		return pdf.Error()
	}
	pdf.AddPage()
	pdf.SetFont(unicodeFamily, "", 10)
	pdf.CellFormat(10, 5, "0", "", 0, "L", false, 0, "")
	return pdf.Error()
}

// pdfWriter draws a laid out Document with fpdf.
type pdfWriter struct {
	pdf  *fpdf.Fpdf
	opts Options
	face typeface
	n    int
}

func newPDFWriter(opts Options, face typeface, title string) *pdfWriter {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: opts.PageWidth, Ht: opts.PageHeight},
	})
	pdf.SetMargins(opts.Margins.Left, opts.Margins.Top, opts.Margins.Right)
	pdf.SetCellMargin(cellPadding)
	pdf.SetAutoPageBreak(false, opts.Margins.Bottom)
	pdf.SetCompression(opts.Compress)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(opts.creationDate())
	pdf.SetModificationDate(opts.creationDate())
	pdf.SetTitle(title, true)
	pdf.SetCreator("investment-calculator", true)

	if face.unicode {
		pdf.AddUTF8FontFromBytes(face.family, "", face.data)
		pdf.AddUTF8FontFromBytes(face.family, "B", face.data)
	}
	return &pdfWriter{pdf: pdf, opts: opts, face: face}
}

func (w *pdfWriter) write(doc Document) ([]byte, error) {
	for _, page := range doc.Pages {
		w.pdf.AddPage()
		for _, b := range page.Blocks {
			w.draw(b)
		}
		if w.pdf.Err() {
			return nil, fmt.Errorf("draw page %d: %w", page.Number, w.pdf.Error())
		}
	}

	var buf bytes.Buffer
	if err := w.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (w *pdfWriter) draw(b Block) {
	switch b.Kind {
	case BlockTitle:
		w.pdf.SetFont(w.face.family, "B", w.opts.TitleSize)
		w.pdf.SetTextColor(0, 51, 102)
		w.cell(b.X, b.Y, b.Width, b.Height, b.Text, "", b.Align, false)
	case BlockParameter:
		w.pdf.SetFont(w.face.family, "", w.opts.TextSize)
		w.pdf.SetTextColor(50, 50, 50)
		w.cell(b.X, b.Y, b.Width, b.Height, b.Text, "", b.Align, false)
	case BlockLogo, BlockImage:
		w.image(b)
	case BlockTableHeader:
		w.pdf.SetFont(w.face.family, "B", w.opts.TextSize)
		w.pdf.SetFillColor(0, 51, 102)
		w.pdf.SetTextColor(255, 255, 255)
		w.row(b, true)
	case BlockTableRow:
		w.pdf.SetFont(w.face.family, "", w.opts.TextSize)
		w.pdf.SetFillColor(245, 245, 245)
		w.pdf.SetTextColor(50, 50, 50)
		w.row(b, b.Row%2 == 1)
	}
}

func (w *pdfWriter) row(b Block, fill bool) {
	x := b.X
	for i, text := range b.Cells {
		align := AlignLeft
		if i < len(b.Aligns) {
			align = b.Aligns[i]
		}
		if i < len(b.Sizes) && b.Sizes[i] > 0 {
			w.pdf.SetFontSize(b.Sizes[i])
		}
		w.cell(x, b.Y, b.Widths[i], b.Height, text, "1", align, fill)
		x += b.Widths[i]
	}
}

func (w *pdfWriter) cell(x, y, width, height float64, text, border string, align Align, fill bool) {
	w.pdf.SetXY(x, y)
	w.pdf.CellFormat(width, height, w.face.encode(text), border, 0, string(align), fill, 0, "")
}

func (w *pdfWriter) image(b Block) {
	if b.Image == nil {
		return
	}
	w.n++
	name := "img" + strconv.Itoa(w.n)
	opts := fpdf.ImageOptions{ImageType: b.Image.pdfType()}
	w.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(b.Image.Data))
	w.pdf.ImageOptions(name, b.X, b.Y, b.Width, b.Height, false, opts, 0, "")
}
