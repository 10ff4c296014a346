// Package format renders numbers for reports and console output.
//
// All locale-dependent state lives in an Options value owned by the caller,
// so concurrent requests never share formatting configuration.
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/iwvelando/investment-calculator/pkg/constants"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Options controls how numbers are rendered.
type Options struct {
	// Locale selects grouping and decimal separators.
	Locale language.Tag
	// Decimals is the number of fraction digits for amounts and percentages.
	Decimals int
	// CurrencySymbol is prefixed to amounts when non-empty.
	CurrencySymbol string
	// NotApplicable is rendered for ratios without a value.
	NotApplicable string
}

// DefaultOptions returns English grouping with two decimals and no currency symbol.
func DefaultOptions() Options {
	return Options{
		Locale:        language.English,
		Decimals:      constants.DisplayDecimals,
		NotApplicable: constants.NotApplicable,
	}
}

// ParseLocale resolves a BCP 47 tag, falling back to English.
func ParseLocale(tag string) language.Tag {
	if strings.TrimSpace(tag) == "" {
		return language.English
	}
	parsed, err := language.Parse(tag)
	if err != nil {
		return language.English
	}
	return parsed
}

// Formatter formats numbers according to a fixed set of Options.
type Formatter struct {
	opts    Options
	printer *message.Printer
}

// New creates a Formatter. Zero-valued fields of opts are filled from DefaultOptions.
func New(opts Options) *Formatter {
	defaults := DefaultOptions()
	if opts.Locale == language.Und {
		opts.Locale = defaults.Locale
	}
	if opts.Decimals < 0 {
		opts.Decimals = defaults.Decimals
	}
	if opts.NotApplicable == "" {
		opts.NotApplicable = defaults.NotApplicable
	}
	return &Formatter{opts: opts, printer: message.NewPrinter(opts.Locale)}
}

// Options returns the options the formatter was built with.
func (f *Formatter) Options() Options {
	return f.opts
}

// Amount renders a grouped amount, e.g. "1,234.56" or "-$1,234.56".
func (f *Formatter) Amount(v float64) string {
	grouped := f.grouped(math.Abs(v), f.opts.Decimals)
	if f.opts.CurrencySymbol != "" {
		grouped = f.opts.CurrencySymbol + grouped
	}
	if v < 0 && !isNegligible(v, f.opts.Decimals) {
		return "-" + grouped
	}
	return grouped
}

// Number renders a grouped value with the configured decimals and no
// symbol, for columns whose label already names the unit.
func (f *Formatter) Number(v float64) string {
	grouped := f.grouped(math.Abs(v), f.opts.Decimals)
	if v < 0 && !isNegligible(v, f.opts.Decimals) {
		return "-" + grouped
	}
	return grouped
}

// Percent renders a grouped percentage with a trailing percent sign.
func (f *Formatter) Percent(v float64) string {
	grouped := f.grouped(math.Abs(v), f.opts.Decimals)
	if v < 0 && !isNegligible(v, f.opts.Decimals) {
		grouped = "-" + grouped
	}
	return grouped + "%"
}

// Integer renders a whole number with grouping.
func (f *Formatter) Integer(v float64) string {
	return f.printer.Sprintf("%d", int64(math.Round(v)))
}

func (f *Formatter) grouped(v float64, decimals int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return f.opts.NotApplicable
	}
	return f.printer.Sprintf(fmt.Sprintf("%%.%df", decimals), v)
}

func isNegligible(v float64, decimals int) bool {
	return math.Abs(v) < 0.5*math.Pow10(-decimals)
}

// Currency returns a dollar amount with thousands separators (e.g., "-$1,234.56").
func Currency(amount float64) string {
	return New(Options{Locale: language.English, Decimals: 2, CurrencySymbol: "$"}).Amount(amount)
}

// Grouped renders an integer with thousands separators. Numeric inputs are
// rounded to whole units; strings are read after stripping existing
// separators and returned unchanged when they are not integers.
func Grouped(value interface{}) string {
	p := message.NewPrinter(language.English)
	switch v := value.(type) {
	case int:
		return p.Sprintf("%d", v)
	case int64:
		return p.Sprintf("%d", v)
	case float64:
		return p.Sprintf("%d", int64(math.Round(v)))
	case string:
		n, err := strconv.ParseInt(strings.ReplaceAll(v, ",", ""), 10, 64)
		if err != nil {
			return v
		}
		return p.Sprintf("%d", n)
	}
	return fmt.Sprint(value)
}
