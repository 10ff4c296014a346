package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/investment-calculator/internal/projection"
	"github.com/iwvelando/investment-calculator/pkg/coerce"
	"github.com/iwvelando/investment-calculator/pkg/constants"
	"github.com/shopspring/decimal"
)

// CSVOptions controls the tabular export.
type CSVOptions struct {
	// Decimals is the number of fraction digits for amounts and percentages.
	Decimals int
	// NotApplicable is written for undefined values.
	NotApplicable string
	// Comma is the field delimiter, ',' when zero.
	Comma rune
}

// DefaultCSVOptions returns comma-separated output with two decimals.
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{
		Decimals:      constants.DisplayDecimals,
		NotApplicable: constants.NotApplicable,
		Comma:         ',',
	}
}

func (o CSVOptions) normalize() CSVOptions {
	if o.Comma == 0 {
		o.Comma = ','
	}
	if o.NotApplicable == "" {
		o.NotApplicable = constants.NotApplicable
	}
	if o.Decimals < 0 {
		o.Decimals = constants.DisplayDecimals
	}
	return o
}

// WriteCSV writes the column labels followed by one line per row. Numbers
// use fixed decimals without grouping so the file parses back losslessly
// at that precision.
func WriteCSV(w io.Writer, table projection.Table, opts CSVOptions) error {
	opts = opts.normalize()
	cw := csv.NewWriter(w)
	cw.Comma = opts.Comma

	if err := cw.Write(table.Labels()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i, row := range table.Rows {
		record := make([]string, len(table.Columns))
		for j, col := range table.Columns {
			if j < len(row) {
				record[j] = csvValue(col.Kind, row[j], opts)
			}
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvValue(kind projection.Kind, cell projection.Cell, opts CSVOptions) string {
	if !cell.Applicable {
		return opts.NotApplicable
	}
	d := decimal.NewFromFloat(cell.Value)
	if kind == projection.KindInteger {
		return d.Round(0).String()
	}
	return d.StringFixed(int32(opts.Decimals))
}

// CSVString renders the export into a string.
func CSVString(table projection.Table, opts CSVOptions) (string, error) {
	var b strings.Builder
	if err := WriteCSV(&b, table, opts); err != nil {
		return "", err
	}
	return b.String(), nil
}

// ReadCSV parses an export back into a Table. Known labels map back to
// their columns; unknown labels become amount columns keyed by the label.
// The not-applicable marker reads back as projection.NotApplicable.
func ReadCSV(r io.Reader, opts CSVOptions) (projection.Table, error) {
	opts = opts.normalize()
	cr := csv.NewReader(r)
	cr.Comma = opts.Comma

	records, err := cr.ReadAll()
	if err != nil {
		return projection.Table{}, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return projection.Table{}, fmt.Errorf("read csv: missing header")
	}

	var table projection.Table
	for _, label := range records[0] {
		col, ok := projection.ColumnByLabel(label)
		if !ok {
			col = projection.Column{Key: label, Label: label, Kind: projection.KindAmount}
		}
		table.Columns = append(table.Columns, col)
	}
	if model, ok := projection.ModelOf(table.Columns); ok {
		table.Model = model
	}

	for _, record := range records[1:] {
		row := make([]projection.Cell, len(record))
		for i, field := range record {
			if strings.TrimSpace(field) == opts.NotApplicable {
				row[i] = projection.NotApplicable
				continue
			}
			row[i] = projection.Value(coerce.Number(field))
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}
