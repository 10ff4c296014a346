package adapters

import (
	"github.com/iwvelando/investment-calculator/internal/projection"
	"github.com/iwvelando/investment-calculator/internal/report"
	"github.com/iwvelando/investment-calculator/pkg/format"
)

// Entries formats a parameter record as report lines in record order.
// Known parameters use their display label and kind; unknown keys are
// printed as-is. Basic records end with the derived base yield.
func Entries(model projection.Model, rec *projection.Record, f *format.Formatter) []report.Entry {
	entries := make([]report.Entry, 0, rec.Len())
	for _, key := range rec.Keys() {
		value := rec.Float(key)
		field, ok := projection.LookupField(model, key)
		if !ok {
			entries = append(entries, report.Entry{Label: key, Value: f.Number(value)})
			continue
		}
		entries = append(entries, report.Entry{Label: field.Label, Value: formatField(f, field.Kind, value)})
	}
	if model == projection.Basic {
		if p, err := projection.BasicParamsFromRecord(rec); err == nil {
			entries = append(entries, report.Entry{Label: projection.BaseYieldLabel, Value: f.Percent(p.BaseYield())})
		}
	}
	return entries
}

func formatField(f *format.Formatter, kind projection.Kind, value float64) string {
	switch kind {
	case projection.KindInteger:
		return f.Integer(value)
	case projection.KindPercent:
		return f.Percent(value)
	default:
		return f.Amount(value)
	}
}
