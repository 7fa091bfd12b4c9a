// Package finance implements the deterministic valuation arithmetic behind
// the agent's local tools: profitability ratios, owner earnings, and a
// discounted cash flow model.
//
// Every function returns tools.ErrDomain when the computation is undefined
// for its inputs, so callers can fold the failure into a tool result instead
// of aborting the turn.
package finance

import (
	"fmt"
	"math"

	"github.com/valuegraph/analyst/tools"
)

// DefaultTaxRate is applied to operating income when the caller does not
// supply a rate of its own.
const DefaultTaxRate = 0.35

// DCF model defaults, used when the model omits the optional assumptions.
const (
	DefaultGrowthRate         = 0.05
	DefaultDiscountRate       = 0.10
	DefaultTerminalGrowthRate = 0.02
	DefaultProjectionYears    = 5
)

// ReturnOnEquity computes net income over shareholders' equity.
func ReturnOnEquity(netIncome, equity float64) (float64, error) {
	if equity == 0 {
		return 0, fmt.Errorf("%w: shareholders' equity is zero", tools.ErrDomain)
	}
	return netIncome / equity, nil
}

// ReturnOnInvestedCapital computes after-tax operating income over invested
// capital (total debt plus shareholders' equity).
func ReturnOnInvestedCapital(operatingIncome, totalDebt, equity, taxRate float64) (float64, error) {
	invested := totalDebt + equity
	if invested == 0 {
		return 0, fmt.Errorf("%w: invested capital is zero", tools.ErrDomain)
	}
	return operatingIncome * (1 - taxRate) / invested, nil
}

// OwnerEarnings computes Buffett's owner earnings proxy: net income plus
// depreciation and amortization, less capital expenditures.
func OwnerEarnings(netIncome, depreciationAmortization, capitalExpenditures float64) float64 {
	return netIncome + depreciationAmortization - capitalExpenditures
}

// IntrinsicValue runs a discounted cash flow model over freeCashFlow:
// numYears of cash flows grown at growthRate are discounted at discountRate,
// plus a Gordon terminal value grown at terminalGrowthRate.
//
// The terminal value divides by (discountRate - terminalGrowthRate), so the
// discount rate must exceed the terminal growth rate.
func IntrinsicValue(freeCashFlow, growthRate, discountRate, terminalGrowthRate float64, numYears int) (float64, error) {
	if numYears <= 0 {
		return 0, fmt.Errorf("%w: projection horizon must be at least one year", tools.ErrDomain)
	}
	if discountRate <= terminalGrowthRate {
		return 0, fmt.Errorf("%w: discount rate must exceed terminal growth rate", tools.ErrDomain)
	}

	var present float64
	cashFlow := freeCashFlow
	for year := 1; year <= numYears; year++ {
		cashFlow = freeCashFlow * math.Pow(1+growthRate, float64(year))
		present += cashFlow / math.Pow(1+discountRate, float64(year))
	}

	terminal := cashFlow * (1 + terminalGrowthRate) / (discountRate - terminalGrowthRate)
	present += terminal / math.Pow(1+discountRate, float64(numYears))

	return present, nil
}

// PercentageChange computes the percent change from start to end, rounded to
// two decimal places. A zero start makes the change undefined.
func PercentageChange(start, end float64) (float64, error) {
	if start == 0 {
		return 0, fmt.Errorf("%w: percentage change from zero is undefined", tools.ErrDomain)
	}
	change := (end - start) / start * 100
	return math.Round(change*100) / 100, nil
}
