package projection

import (
	"errors"
	"testing"

	"github.com/iwvelando/investment-calculator/pkg/validation"
)

func exampleAdvanced(years int) AdvancedParams {
	return AdvancedParams{
		AssetCost:        200000,
		Equity:           80000,
		BankFinancing:    120000,
		InterestRate:     3.5,
		AppreciationRate: 4,
		ExpectedIncome:   15000,
		Years:            years,
	}
}

func TestProjectAdvanced(t *testing.T) {
	rows, err := ProjectAdvanced(exampleAdvanced(1))
	if err != nil {
		t.Fatalf("ProjectAdvanced() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}

	r := rows[0]
	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"interest cost", r.InterestCost, 4200},
		{"appreciation", r.Appreciation, 8000},
		{"property value", r.PropertyValue, 208000},
		{"net cash flow", r.NetCashFlow, 10800},
		{"total return", r.TotalReturn, 18800},
		{"expected income", r.ExpectedIncome, 15000},
	}
	for _, c := range checks {
		if !approx(c.got, c.want) {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
	if !r.ROI.Applicable || !approx(r.ROI.Value, 23.5) {
		t.Errorf("ROI = %+v, want 23.5", r.ROI)
	}
}

func TestProjectAdvancedAppreciatesCurrentValue(t *testing.T) {
	rows, err := ProjectAdvanced(exampleAdvanced(3))
	if err != nil {
		t.Fatalf("ProjectAdvanced() error = %v", err)
	}

	prev := 200000.0
	for _, r := range rows {
		if !approx(r.Appreciation, prev*0.04) {
			t.Errorf("year %d appreciation = %v, want %v", r.Year, r.Appreciation, prev*0.04)
		}
		if !approx(r.PropertyValue, prev+r.Appreciation) {
			t.Errorf("year %d value = %v, want %v", r.Year, r.PropertyValue, prev+r.Appreciation)
		}
		if !approx(r.InterestCost, 4200) {
			t.Errorf("year %d interest = %v, want constant 4200", r.Year, r.InterestCost)
		}
		prev = r.PropertyValue
	}
	if !approx(rows[2].PropertyValue, 224972.8) {
		t.Errorf("year 3 value = %v, want 224972.8", rows[2].PropertyValue)
	}
}

func TestProjectAdvancedZeroEquity(t *testing.T) {
	p := exampleAdvanced(5)
	p.Equity = 0
	rows, err := ProjectAdvanced(p)
	if err != nil {
		t.Fatalf("ProjectAdvanced() error = %v", err)
	}
	for _, r := range rows {
		if r.ROI.Applicable {
			t.Errorf("year %d ROI = %v, want N/A", r.Year, r.ROI.Value)
		}
		if r.ROI.String() != "N/A" {
			t.Errorf("year %d ROI string = %q, want N/A", r.Year, r.ROI.String())
		}
	}
}

func TestProjectAdvancedFinancingTerm(t *testing.T) {
	p := exampleAdvanced(4)
	p.FinancingTermYears = 2
	rows, err := ProjectAdvanced(p)
	if err != nil {
		t.Fatalf("ProjectAdvanced() error = %v", err)
	}

	if rows[0].InterestCost <= rows[1].InterestCost {
		t.Errorf("amortized interest should fall: %v then %v", rows[0].InterestCost, rows[1].InterestCost)
	}
	if rows[0].InterestCost >= 4200 {
		t.Errorf("year 1 amortized interest = %v, want below interest-only 4200", rows[0].InterestCost)
	}
	for _, r := range rows[2:] {
		if r.InterestCost != 0 {
			t.Errorf("year %d interest after term = %v, want 0", r.Year, r.InterestCost)
		}
	}
}

func TestProjectAdvancedValidation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*AdvancedParams)
		field  string
	}{
		{"negative years", func(p *AdvancedParams) { p.Years = -3 }, KeyYears},
		{"negative term", func(p *AdvancedParams) { p.FinancingTermYears = -1 }, KeyFinancingTermYears},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := exampleAdvanced(1)
			tt.modify(&p)
			_, err := ProjectAdvanced(p)
			fieldErr, ok := err.(*validation.FieldError)
			if !ok {
				t.Fatalf("ProjectAdvanced() error = %v, want *FieldError", err)
			}
			if fieldErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", fieldErr.Field, tt.field)
			}
		})
	}
}

func TestEngineFinancingTermBound(t *testing.T) {
	engine, err := New(Advanced, WithMaxYears(100))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tests := []struct {
		name string
		term float64
	}{
		{"above year cap", 101},
		{"far above year cap", 2e6},
		{"beyond int range", 1e18},
		{"fractional", 2.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := DefaultRecord(Advanced).Set(KeyYears, 1).Set(KeyFinancingTermYears, tt.term)
			_, err := engine.Project(rec)
			var fieldErr *validation.FieldError
			if !errors.As(err, &fieldErr) {
				t.Fatalf("Project() error = %v, want FieldError", err)
			}
			if fieldErr.Field != KeyFinancingTermYears {
				t.Errorf("Field = %q, want %q", fieldErr.Field, KeyFinancingTermYears)
			}
		})
	}

	rec := DefaultRecord(Advanced).Set(KeyYears, 2).Set(KeyFinancingTermYears, 100)
	result, err := engine.Project(rec)
	if err != nil {
		t.Fatalf("Project() at cap error = %v", err)
	}
	if len(result.Advanced) != 2 {
		t.Errorf("got %d rows, want 2", len(result.Advanced))
	}
}

func TestProjectAdvancedLongTermShortHorizon(t *testing.T) {
	p := exampleAdvanced(1)
	p.FinancingTermYears = 1000
	rows, err := ProjectAdvanced(p)
	if err != nil {
		t.Fatalf("ProjectAdvanced() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].InterestCost <= 0 || rows[0].InterestCost > 4200+1e-6 {
		t.Errorf("year 1 interest = %v, want close to interest-only 4200", rows[0].InterestCost)
	}

	p.FinancingTermYears = 1001
	if _, err := ProjectAdvanced(p); !validation.IsFieldError(err) {
		t.Errorf("ProjectAdvanced() with term 1001 error = %v, want FieldError", err)
	}
}

func TestAdvancedRecordRoundTrip(t *testing.T) {
	p := exampleAdvanced(7)
	p.FinancingTermYears = 20
	got, err := AdvancedParamsFromRecord(AdvancedRecord(p))
	if err != nil {
		t.Fatalf("AdvancedParamsFromRecord() error = %v", err)
	}
	if got != p {
		t.Errorf("round trip = %+v, want %+v", got, p)
	}

	if AdvancedRecord(exampleAdvanced(1)).Len() != 7 {
		t.Errorf("record without term should carry 7 keys")
	}
}
