// Package projection computes year-by-year investment projections.
//
// Two strategies share one Engine interface: the Basic model compounds a
// yield percentage on a running cumulative value, the Advanced model tracks
// an appreciating, bank-financed asset and its return on equity. Every
// projection is a pure function of its parameters.
package projection

import (
	"fmt"

	"github.com/iwvelando/investment-calculator/pkg/constants"
	"github.com/iwvelando/investment-calculator/pkg/validation"
)

// Model selects a projection strategy.
type Model string

const (
	// Basic is the yield-compounding model.
	Basic Model = constants.ModelBasic
	// Advanced is the financed-asset model.
	Advanced Model = constants.ModelAdvanced
)

// ParseModel validates and converts a model name.
func ParseModel(name string) (Model, error) {
	if err := validation.ValidateModel(name); err != nil {
		return "", err
	}
	return Model(name), nil
}

// Parameter keys shared by records, configuration and the HTTP API.
const (
	KeyPrincipal          = "principal"
	KeyAnnualNetIncome    = "annual_net_income"
	KeyGrowthRate         = "growth_rate"
	KeyYears              = "years"
	KeyAssetCost          = "asset_cost"
	KeyEquity             = "equity"
	KeyBankFinancing      = "bank_financing"
	KeyInterestRate       = "interest_rate"
	KeyAppreciationRate   = "appreciation_rate"
	KeyExpectedIncome     = "expected_income"
	KeyFinancingTermYears = "financing_term_years"
)

// Field describes one input parameter.
type Field struct {
	Key   string
	Label string
	Kind  Kind
}

var basicFields = []Field{
	{Key: KeyPrincipal, Label: "Principal ($)", Kind: KindAmount},
	{Key: KeyAnnualNetIncome, Label: "Annual Net Income ($)", Kind: KindAmount},
	{Key: KeyGrowthRate, Label: "Annual Yield Growth (%)", Kind: KindPercent},
	{Key: KeyYears, Label: "Years", Kind: KindInteger},
}

var advancedFields = []Field{
	{Key: KeyAssetCost, Label: "Asset Cost ($)", Kind: KindAmount},
	{Key: KeyEquity, Label: "Equity ($)", Kind: KindAmount},
	{Key: KeyBankFinancing, Label: "Bank Financing ($)", Kind: KindAmount},
	{Key: KeyInterestRate, Label: "Annual Interest Rate (%)", Kind: KindPercent},
	{Key: KeyAppreciationRate, Label: "Annual Appreciation (%)", Kind: KindPercent},
	{Key: KeyExpectedIncome, Label: "Expected Annual Income ($)", Kind: KindAmount},
	{Key: KeyYears, Label: "Years", Kind: KindInteger},
	{Key: KeyFinancingTermYears, Label: "Financing Term (years)", Kind: KindInteger},
}

// BaseYieldLabel labels the derived income-to-principal ratio of the basic
// model wherever parameters are listed.
const BaseYieldLabel = "Base Yield (%)"

// Fields returns the input schema of a model in display order.
func Fields(model Model) []Field {
	switch model {
	case Advanced:
		return append([]Field(nil), advancedFields...)
	default:
		return append([]Field(nil), basicFields...)
	}
}

// FieldKeys returns the parameter keys of a model in display order.
func FieldKeys(model Model) []string {
	fields := Fields(model)
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.Key
	}
	return keys
}

// LookupField finds a parameter by key within a model's schema.
func LookupField(model Model, key string) (Field, bool) {
	for _, f := range Fields(model) {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// DefaultRecord returns the form defaults for a model.
func DefaultRecord(model Model) *Record {
	if model == Advanced {
		return AdvancedRecord(AdvancedParams{
			AssetCost:        200000,
			Equity:           80000,
			BankFinancing:    120000,
			InterestRate:     3.5,
			AppreciationRate: 4,
			ExpectedIncome:   15000,
			Years:            10,
		})
	}
	return BasicRecord(BasicParams{
		Principal:       100000,
		AnnualNetIncome: 5000,
		GrowthRate:      5,
		Years:           10,
	})
}

// Engine turns a parameter record into a projection.
type Engine interface {
	Model() Model
	Project(rec *Record) (*Result, error)
}

// Option configures an Engine.
type Option func(*settings)

type settings struct {
	maxYears int
}

// WithMaxYears caps the accepted year count. Zero disables the cap.
func WithMaxYears(n int) Option {
	return func(s *settings) {
		s.maxYears = n
	}
}

// New returns the Engine for model.
func New(model Model, opts ...Option) (Engine, error) {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	switch model {
	case Basic:
		return &basicEngine{settings: s}, nil
	case Advanced:
		return &advancedEngine{settings: s}, nil
	}
	return nil, validation.NewFieldError("model", "unknown projection model %q", string(model))
}

// Result is the output of one projection. Exactly one of Basic or Advanced
// is populated, matching Model.
type Result struct {
	Model    Model         `json:"model"`
	Params   *Record       `json:"parameters"`
	Basic    []BasicRow    `json:"basic,omitempty"`
	Advanced []AdvancedRow `json:"advanced,omitempty"`
}

// Len returns the number of projected years.
func (r *Result) Len() int {
	if r.Model == Advanced {
		return len(r.Advanced)
	}
	return len(r.Basic)
}

// Table returns the column-oriented view of the rows.
func (r *Result) Table() Table {
	if r.Model == Advanced {
		return AdvancedTable(r.Advanced)
	}
	return BasicTable(r.Basic)
}

func yearsFromRecord(rec *Record) (int, error) {
	years, ok := rec.Get(KeyYears)
	if !ok {
		return 0, validation.NewFieldError(KeyYears, "is required")
	}
	if err := validation.ValidateWholeYears(years); err != nil {
		return 0, err
	}
	return int(years), nil
}

func finiteFields(rec *Record, keys ...string) error {
	for _, key := range keys {
		if err := validation.ValidateFinite(key, rec.Float(key)); err != nil {
			return err
		}
	}
	return nil
}

func describe(model Model, err error) error {
	return fmt.Errorf("%s projection: %w", model, err)
}
