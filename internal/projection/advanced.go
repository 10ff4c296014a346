package projection

import (
	"github.com/iwvelando/investment-calculator/pkg/financing"
	"github.com/iwvelando/investment-calculator/pkg/mathutil"
	"github.com/iwvelando/investment-calculator/pkg/validation"
)

// AdvancedParams are the inputs of the financed-asset model.
type AdvancedParams struct {
	AssetCost        float64 `json:"asset_cost"`
	Equity           float64 `json:"equity"`
	BankFinancing    float64 `json:"bank_financing"`
	InterestRate     float64 `json:"interest_rate"`
	AppreciationRate float64 `json:"appreciation_rate"`
	ExpectedIncome   float64 `json:"expected_income"`
	Years            int     `json:"years"`
	// FinancingTermYears amortizes the bank financing monthly over this many
	// years when positive. Zero keeps the financing interest-only.
	FinancingTermYears int `json:"financing_term_years,omitempty"`
}

// AdvancedRow is one projected year of the financed-asset model.
type AdvancedRow struct {
	Year           int     `json:"year"`
	PropertyValue  float64 `json:"property_value"`
	InterestCost   float64 `json:"interest_cost"`
	ExpectedIncome float64 `json:"expected_income"`
	Appreciation   float64 `json:"appreciation"`
	NetCashFlow    float64 `json:"net_cash_flow"`
	TotalReturn    float64 `json:"total_return"`
	ROI            Ratio   `json:"roi_percent"`
}

// Validate checks the parameters. maxYears of zero means no cap.
func (p AdvancedParams) Validate(maxYears int) error {
	checks := []struct {
		key   string
		value float64
	}{
		{KeyAssetCost, p.AssetCost},
		{KeyEquity, p.Equity},
		{KeyBankFinancing, p.BankFinancing},
		{KeyInterestRate, p.InterestRate},
		{KeyAppreciationRate, p.AppreciationRate},
		{KeyExpectedIncome, p.ExpectedIncome},
	}
	for _, c := range checks {
		if err := validation.ValidateFinite(c.key, c.value); err != nil {
			return err
		}
	}
	if err := validation.ValidateYears(p.Years, maxYears); err != nil {
		return err
	}
	return validation.ValidateTermYears(KeyFinancingTermYears, float64(p.FinancingTermYears), maxYears)
}

// AdvancedRecord converts typed parameters into an ordered Record. The
// financing term is only included when set.
func AdvancedRecord(p AdvancedParams) *Record {
	rec := NewRecord().
		Set(KeyAssetCost, p.AssetCost).
		Set(KeyEquity, p.Equity).
		Set(KeyBankFinancing, p.BankFinancing).
		Set(KeyInterestRate, p.InterestRate).
		Set(KeyAppreciationRate, p.AppreciationRate).
		Set(KeyExpectedIncome, p.ExpectedIncome).
		Set(KeyYears, float64(p.Years))
	if p.FinancingTermYears > 0 {
		rec.Set(KeyFinancingTermYears, float64(p.FinancingTermYears))
	}
	return rec
}

// AdvancedParamsFromRecord reads typed parameters from a Record.
func AdvancedParamsFromRecord(rec *Record) (AdvancedParams, error) {
	err := finiteFields(rec, KeyAssetCost, KeyEquity, KeyBankFinancing,
		KeyInterestRate, KeyAppreciationRate, KeyExpectedIncome, KeyFinancingTermYears)
	if err != nil {
		return AdvancedParams{}, err
	}
	years, err := yearsFromRecord(rec)
	if err != nil {
		return AdvancedParams{}, err
	}
	term := rec.Float(KeyFinancingTermYears)
	if err := validation.ValidateTermYears(KeyFinancingTermYears, term, 0); err != nil {
		return AdvancedParams{}, err
	}
	return AdvancedParams{
		AssetCost:          rec.Float(KeyAssetCost),
		Equity:             rec.Float(KeyEquity),
		BankFinancing:      rec.Float(KeyBankFinancing),
		InterestRate:       rec.Float(KeyInterestRate),
		AppreciationRate:   rec.Float(KeyAppreciationRate),
		ExpectedIncome:     rec.Float(KeyExpectedIncome),
		Years:              years,
		FinancingTermYears: int(term),
	}, nil
}

// ProjectAdvanced appreciates the asset on its current value each year and
// reports the year's total return against equity. With zero equity the ROI
// is NotApplicable.
func ProjectAdvanced(p AdvancedParams) ([]AdvancedRow, error) {
	if err := p.Validate(0); err != nil {
		return nil, err
	}
	return projectAdvanced(p), nil
}

func projectAdvanced(p AdvancedParams) []AdvancedRow {
	var schedule []financing.YearSummary
	if p.FinancingTermYears > 0 {
		schedule = financing.AnnualSchedule(p.BankFinancing, p.InterestRate, p.FinancingTermYears, p.Years)
	}

	value := p.AssetCost
	rows := make([]AdvancedRow, 0, p.Years)
	for year := 1; year <= p.Years; year++ {
		interest := mathutil.ApplyPercentage(p.BankFinancing, p.InterestRate)
		if p.FinancingTermYears > 0 {
			interest = 0
			if year <= len(schedule) {
				interest = schedule[year-1].Interest
			}
		}

		appreciation := mathutil.ApplyPercentage(value, p.AppreciationRate)
		value += appreciation
		netCashFlow := p.ExpectedIncome - interest
		totalReturn := netCashFlow + appreciation

		roi := NotApplicable
		if pct, ok := mathutil.SafePercent(totalReturn, p.Equity); ok {
			roi = Percent(pct)
		}

		rows = append(rows, AdvancedRow{
			Year:           year,
			PropertyValue:  value,
			InterestCost:   interest,
			ExpectedIncome: p.ExpectedIncome,
			Appreciation:   appreciation,
			NetCashFlow:    netCashFlow,
			TotalReturn:    totalReturn,
			ROI:            roi,
		})
	}
	return rows
}

type advancedEngine struct {
	settings
}

func (e *advancedEngine) Model() Model {
	return Advanced
}

func (e *advancedEngine) Project(rec *Record) (*Result, error) {
	params, err := AdvancedParamsFromRecord(rec)
	if err != nil {
		return nil, describe(Advanced, err)
	}
	if err := params.Validate(e.maxYears); err != nil {
		return nil, describe(Advanced, err)
	}
	return &Result{
		Model:    Advanced,
		Params:   AdvancedRecord(params),
		Advanced: projectAdvanced(params),
	}, nil
}
