package projection

// Kind tells renderers how to format a value.
type Kind int

const (
	// KindInteger is a whole number such as a year.
	KindInteger Kind = iota
	// KindAmount is a currency amount.
	KindAmount
	// KindPercent is a percentage.
	KindPercent
)

func (k Kind) String() string {
	switch k {
	case KindAmount:
		return "amount"
	case KindPercent:
		return "percent"
	default:
		return "integer"
	}
}

// Column describes one output column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Kind  Kind   `json:"-"`
}

// Cell is one table value. A cell that is not Applicable renders as N/A.
type Cell = Ratio

// Value wraps a defined cell value.
func Value(v float64) Cell {
	return Percent(v)
}

// Table is the column-oriented view shared by the report, the CSV exporter
// and the pretty printer.
type Table struct {
	Model   Model
	Columns []Column
	Rows    [][]Cell
}

// Column keys of the projection tables.
const (
	ColYear            = "year"
	ColYieldPercent    = "yield_percent"
	ColExpectedIncome  = "expected_income"
	ColCumulativeValue = "cumulative_value"
	ColPropertyValue   = "property_value"
	ColInterestCost    = "interest_cost"
	ColAppreciation    = "appreciation"
	ColROIPercent      = "roi_percent"
)

var basicColumns = []Column{
	{Key: ColYear, Label: "Year", Kind: KindInteger},
	{Key: ColYieldPercent, Label: "Yield (%)", Kind: KindPercent},
	{Key: ColExpectedIncome, Label: "Expected Income ($)", Kind: KindAmount},
	{Key: ColCumulativeValue, Label: "Cumulative Value ($)", Kind: KindAmount},
}

var advancedColumns = []Column{
	{Key: ColYear, Label: "Year", Kind: KindInteger},
	{Key: ColPropertyValue, Label: "Property Value ($)", Kind: KindAmount},
	{Key: ColInterestCost, Label: "Interest Cost ($)", Kind: KindAmount},
	{Key: ColExpectedIncome, Label: "Expected Income ($)", Kind: KindAmount},
	{Key: ColAppreciation, Label: "Appreciation ($)", Kind: KindAmount},
	{Key: ColROIPercent, Label: "ROI (%)", Kind: KindPercent},
}

// Columns returns the output columns of a model.
func Columns(model Model) []Column {
	if model == Advanced {
		return append([]Column(nil), advancedColumns...)
	}
	return append([]Column(nil), basicColumns...)
}

// BasicTable lays out basic rows as a Table.
func BasicTable(rows []BasicRow) Table {
	t := Table{Model: Basic, Columns: Columns(Basic), Rows: make([][]Cell, 0, len(rows))}
	for _, r := range rows {
		t.Rows = append(t.Rows, []Cell{
			Value(float64(r.Year)),
			Value(r.YieldPercent),
			Value(r.ExpectedIncome),
			Value(r.CumulativeValue),
		})
	}
	return t
}

// AdvancedTable lays out advanced rows as a Table.
func AdvancedTable(rows []AdvancedRow) Table {
	t := Table{Model: Advanced, Columns: Columns(Advanced), Rows: make([][]Cell, 0, len(rows))}
	for _, r := range rows {
		t.Rows = append(t.Rows, []Cell{
			Value(float64(r.Year)),
			Value(r.PropertyValue),
			Value(r.InterestCost),
			Value(r.ExpectedIncome),
			Value(r.Appreciation),
			r.ROI,
		})
	}
	return t
}

// Len returns the number of data rows.
func (t Table) Len() int {
	return len(t.Rows)
}

// Labels returns the column labels in order.
func (t Table) Labels() []string {
	labels := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		labels[i] = c.Label
	}
	return labels
}

// Index returns the position of the column with key.
func (t Table) Index(key string) (int, bool) {
	for i, c := range t.Columns {
		if c.Key == key {
			return i, true
		}
	}
	return -1, false
}

// Series returns the defined values of one column. Undefined cells are
// skipped and reported through the second return.
func (t Table) Series(key string) ([]float64, bool) {
	idx, ok := t.Index(key)
	if !ok {
		return nil, false
	}
	complete := true
	values := make([]float64, 0, len(t.Rows))
	for _, row := range t.Rows {
		if idx >= len(row) || !row[idx].Applicable {
			complete = false
			continue
		}
		values = append(values, row[idx].Value)
	}
	return values, complete
}

// ColumnByLabel finds a column of either model by its display label.
func ColumnByLabel(label string) (Column, bool) {
	for _, cols := range [][]Column{basicColumns, advancedColumns} {
		for _, c := range cols {
			if c.Label == label {
				return c, true
			}
		}
	}
	return Column{}, false
}

// ModelOf infers the model whose columns match columns exactly.
func ModelOf(columns []Column) (Model, bool) {
	for _, model := range []Model{Basic, Advanced} {
		want := Columns(model)
		if len(want) != len(columns) {
			continue
		}
		match := true
		for i := range want {
			if want[i].Key != columns[i].Key {
				match = false
				break
			}
		}
		if match {
			return model, true
		}
	}
	return "", false
}
