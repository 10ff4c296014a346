// Package testutil provides common utility functions for testing.
package testutil

import (
	"testing"

	"github.com/iwvelando/investment-calculator/internal/projection"
)

// FindRow finds the row of the given year in a projection table.
// Returns nil if no row carries that year.
func FindRow(table projection.Table, year int) []projection.Cell {
	idx, ok := table.Index(projection.ColYear)
	if !ok {
		return nil
	}
	for _, row := range table.Rows {
		if idx < len(row) && row[idx].Value == float64(year) {
			return row
		}
	}
	return nil
}

// CellValue returns the cell of column key in the row of year.
func CellValue(table projection.Table, year int, key string) (projection.Cell, bool) {
	row := FindRow(table, year)
	idx, ok := table.Index(key)
	if row == nil || !ok || idx >= len(row) {
		return projection.Cell{}, false
	}
	return row[idx], true
}

// MustProject runs the engine of model on rec and fails the test on error.
func MustProject(t testing.TB, model projection.Model, rec *projection.Record) *projection.Result {
	t.Helper()
	engine, err := projection.New(model)
	if err != nil {
		t.Fatalf("projection.New(%s) error = %v", model, err)
	}
	result, err := engine.Project(rec)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}
	return result
}
