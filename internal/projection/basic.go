package projection

import (
	"github.com/iwvelando/investment-calculator/pkg/mathutil"
	"github.com/iwvelando/investment-calculator/pkg/validation"
)

// BasicParams are the inputs of the yield-compounding model.
type BasicParams struct {
	Principal       float64 `json:"principal"`
	AnnualNetIncome float64 `json:"annual_net_income"`
	GrowthRate      float64 `json:"growth_rate"`
	Years           int     `json:"years"`
}

// BasicRow is one projected year of the yield-compounding model.
type BasicRow struct {
	Year            int     `json:"year"`
	YieldPercent    float64 `json:"yield_percent"`
	ExpectedIncome  float64 `json:"expected_income"`
	CumulativeValue float64 `json:"cumulative_value"`
}

// Validate checks the parameters. maxYears of zero means no cap.
func (p BasicParams) Validate(maxYears int) error {
	if err := validation.ValidateNonNegative(KeyPrincipal, p.Principal); err != nil {
		return err
	}
	if err := validation.ValidateFinite(KeyAnnualNetIncome, p.AnnualNetIncome); err != nil {
		return err
	}
	if err := validation.ValidateFinite(KeyGrowthRate, p.GrowthRate); err != nil {
		return err
	}
	return validation.ValidateYears(p.Years, maxYears)
}

// BaseYield is the initial income-to-principal ratio in percent, or 0 when
// there is no principal.
func (p BasicParams) BaseYield() float64 {
	if p.Principal <= 0 {
		return 0
	}
	yield, _ := mathutil.SafePercent(p.AnnualNetIncome, p.Principal)
	return yield
}

// BasicRecord converts typed parameters into an ordered Record.
func BasicRecord(p BasicParams) *Record {
	return NewRecord().
		Set(KeyPrincipal, p.Principal).
		Set(KeyAnnualNetIncome, p.AnnualNetIncome).
		Set(KeyGrowthRate, p.GrowthRate).
		Set(KeyYears, float64(p.Years))
}

// BasicParamsFromRecord reads typed parameters from a Record. Missing
// amounts and rates are zero; years is required.
func BasicParamsFromRecord(rec *Record) (BasicParams, error) {
	if err := finiteFields(rec, KeyPrincipal, KeyAnnualNetIncome, KeyGrowthRate); err != nil {
		return BasicParams{}, err
	}
	years, err := yearsFromRecord(rec)
	if err != nil {
		return BasicParams{}, err
	}
	return BasicParams{
		Principal:       rec.Float(KeyPrincipal),
		AnnualNetIncome: rec.Float(KeyAnnualNetIncome),
		GrowthRate:      rec.Float(KeyGrowthRate),
		Years:           years,
	}, nil
}

// ProjectBasic compounds the yield percentage geometrically and applies each
// year's yield to the running cumulative value. Rows keep full precision.
func ProjectBasic(p BasicParams) ([]BasicRow, error) {
	if err := p.Validate(0); err != nil {
		return nil, err
	}
	return projectBasic(p), nil
}

func projectBasic(p BasicParams) []BasicRow {
	baseYield := p.BaseYield()
	cumulative := p.Principal

	rows := make([]BasicRow, 0, p.Years)
	for year := 1; year <= p.Years; year++ {
		currentYield := baseYield * mathutil.GrowthFactor(p.GrowthRate, year-1)
		income := mathutil.ApplyPercentage(cumulative, currentYield)
		cumulative += income
		rows = append(rows, BasicRow{
			Year:            year,
			YieldPercent:    currentYield,
			ExpectedIncome:  income,
			CumulativeValue: cumulative,
		})
	}
	return rows
}

type basicEngine struct {
	settings
}

func (e *basicEngine) Model() Model {
	return Basic
}

func (e *basicEngine) Project(rec *Record) (*Result, error) {
	params, err := BasicParamsFromRecord(rec)
	if err != nil {
		return nil, describe(Basic, err)
	}
	if err := params.Validate(e.maxYears); err != nil {
		return nil, describe(Basic, err)
	}
	return &Result{
		Model:  Basic,
		Params: BasicRecord(params),
		Basic:  projectBasic(params),
	}, nil
}
