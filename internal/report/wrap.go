package report

import (
	"strings"

	"github.com/go-pdf/fpdf"
)

// cellPadding is the horizontal space in millimetres left on each side of
// the text of a drawn cell.
const cellPadding = 1.0

// measureFunc returns the drawn width in millimetres of s at size points.
type measureFunc func(s string, size float64, bold bool) float64

// textMetrics measures strings in the typeface a document is drawn with.
// It owns a scratch document and is not safe for concurrent use.
type textMetrics struct {
	pdf  *fpdf.Fpdf
	face typeface
}

func newTextMetrics(face typeface) *textMetrics {
	pdf := fpdf.New("P", "mm", "A4", "")
	if face.unicode {
		pdf.AddUTF8FontFromBytes(face.family, "", face.data)
		pdf.AddUTF8FontFromBytes(face.family, "B", face.data)
	}
	return &textMetrics{pdf: pdf, face: face}
}

func (m *textMetrics) width(s string, size float64, bold bool) float64 {
	style := ""
	if bold {
		style = "B"
	}
	m.pdf.SetFont(m.face.family, style, size)
	return m.pdf.GetStringWidth(m.face.encode(s))
}

// wrapText breaks s into lines accepted by fits, breaking between words.
// A word wider than a line on its own is split between runes. Every line
// holds at least one rune, so the result is never empty.
func wrapText(s string, fits func(string) bool) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{s}
	}

	var lines []string
	line := ""
	for _, word := range words {
		candidate := word
		if line != "" {
			candidate = line + " " + word
		}
		if fits(candidate) {
			line = candidate
			continue
		}
		if line != "" {
			lines = append(lines, line)
		}
		for !fits(word) {
			head, tail := splitRunes(word, fits)
			if tail == "" {
				break
			}
			lines = append(lines, head)
			word = tail
		}
		line = word
	}
	return append(lines, line)
}

// splitRunes returns the longest prefix of word that fits, at least one rune.
func splitRunes(word string, fits func(string) bool) (string, string) {
	runes := []rune(word)
	n := 1
	for n < len(runes) && fits(string(runes[:n+1])) {
		n++
	}
	return string(runes[:n]), string(runes[n:])
}

// fitSize returns the largest font size up to size at which s fits width.
// Text width scales linearly with the font size.
func fitSize(s string, width, size float64, bold bool, measure measureFunc) float64 {
	available := width - 2*cellPadding
	w := measure(s, size, bold)
	if w <= available || w <= 0 || available <= 0 {
		return size
	}
	return size * available / w
}
