// Package financing provides loan amortization helpers used by the
// financed-asset projection.
package financing

import (
	"math"

	"github.com/iwvelando/investment-calculator/pkg/constants"
)

// CalculateMonthlyPayment calculates the monthly payment for a loan using the
// standard amortization formula.
func CalculateMonthlyPayment(principal, annualInterestRate float64, termMonths int) float64 {
	if termMonths <= 0 || principal == 0 {
		return 0
	}
	if annualInterestRate == 0 {
		return principal / float64(termMonths)
	}

	periodicInterestRate := annualInterestRate / (constants.PercentageMultiplier * constants.MonthsPerYear)
	power := math.Pow(1.00+periodicInterestRate, float64(termMonths))
	discountFactor := (power - 1.00) / power
	return principal * periodicInterestRate / discountFactor
}

// CalculateInterestPayment calculates the interest portion of a monthly payment.
func CalculateInterestPayment(remainingPrincipal, annualInterestRate float64) float64 {
	return remainingPrincipal * annualInterestRate / (constants.PercentageMultiplier * constants.MonthsPerYear)
}

// YearSummary aggregates the monthly payments of one loan year.
type YearSummary struct {
	Year               int
	Payment            float64
	Principal          float64
	Interest           float64
	RemainingPrincipal float64
}

// AnnualSchedule amortizes principal monthly over termYears and returns one
// summary per loan year for at most horizonYears years. The payment always
// amortizes over the full term. The final payment of the term absorbs any
// residual so the remaining principal ends at exactly zero.
func AnnualSchedule(principal, annualInterestRate float64, termYears, horizonYears int) []YearSummary {
	if termYears <= 0 || horizonYears <= 0 {
		return nil
	}

	termMonths := termYears * constants.MonthsPerYear
	monthlyPayment := CalculateMonthlyPayment(principal, annualInterestRate, termMonths)
	remaining := principal

	years := min(termYears, horizonYears)
	schedule := make([]YearSummary, 0, years)
	for year := 1; year <= years; year++ {
		summary := YearSummary{Year: year}
		for month := 1; month <= constants.MonthsPerYear; month++ {
			interest := CalculateInterestPayment(remaining, annualInterestRate)
			principalPart := monthlyPayment - interest
			if year == termYears && month == constants.MonthsPerYear {
				principalPart = remaining
			}
			remaining -= principalPart
			summary.Payment += principalPart + interest
			summary.Principal += principalPart
			summary.Interest += interest
		}
		summary.RemainingPrincipal = remaining
		schedule = append(schedule, summary)
	}
	return schedule
}
