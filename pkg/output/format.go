// Package output provides utilities for formatting and displaying projection results.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/iwvelando/investment-calculator/internal/projection"
	"github.com/iwvelando/investment-calculator/internal/report"
	"github.com/iwvelando/investment-calculator/pkg/format"
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB")).Bold(true)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#D1D5DB")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
	ruleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

// PrettyFormat writes a human-readable rather than machine-readable table:
// a title, the parameter lines and the projection with aligned columns.
func PrettyFormat(w io.Writer, title string, params []report.Entry, table projection.Table, opts format.Options) error {
	f := format.New(opts)

	cells := make([][]string, len(table.Rows))
	widths := make([]int, len(table.Columns))
	for i, col := range table.Columns {
		widths[i] = lipgloss.Width(col.Label)
	}
	for r, row := range table.Rows {
		cells[r] = make([]string, len(table.Columns))
		for i, col := range table.Columns {
			if i < len(row) {
				cells[r][i] = report.FormatCell(f, col.Kind, row[i])
			}
			if n := lipgloss.Width(cells[r][i]); n > widths[i] {
				widths[i] = n
			}
		}
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("--- "+title+" ---") + "\n")
	for _, p := range params {
		b.WriteString(labelStyle.Render(p.Label+":") + " " + p.Value + "\n")
	}
	if len(params) > 0 {
		b.WriteString("\n")
	}

	header := make([]string, len(table.Columns))
	rule := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		header[i] = headerStyle.Width(widths[i]).Align(lipgloss.Center).Render(col.Label)
		rule[i] = strings.Repeat("_", widths[i])
	}
	b.WriteString(strings.Join(header, " | ") + "\n")
	b.WriteString(ruleStyle.Render(strings.Join(rule, " | ")) + "\n")
	for _, row := range cells {
		padded := make([]string, len(row))
		for i, cell := range row {
			padded[i] = lipgloss.NewStyle().Width(widths[i]).Align(lipgloss.Right).Render(cell)
		}
		b.WriteString(strings.Join(padded, " | ") + "\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// JSONResult is the machine-readable form of a projection.
type JSONResult struct {
	Title      string              `json:"title,omitempty"`
	Model      projection.Model    `json:"model"`
	Parameters *projection.Record  `json:"parameters"`
	Columns    []projection.Column `json:"columns"`
	Rows       interface{}         `json:"rows"`
	Warnings   []string            `json:"warnings,omitempty"`
}

// NewJSONResult wraps a projection result for JSON output.
func NewJSONResult(title string, result *projection.Result) JSONResult {
	var rows interface{} = []struct{}{}
	switch {
	case result.Model == projection.Advanced && len(result.Advanced) > 0:
		rows = result.Advanced
	case result.Model == projection.Basic && len(result.Basic) > 0:
		rows = result.Basic
	}
	return JSONResult{
		Title:      title,
		Model:      result.Model,
		Parameters: result.Params,
		Columns:    projection.Columns(result.Model),
		Rows:       rows,
	}
}

// JSONFormat writes v as indented JSON.
func JSONFormat(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
