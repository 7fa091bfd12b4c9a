package finance

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/valuegraph/analyst/tools"
)

// Register adds the local analysis tools to the registry. These are pure
// computations; the executor runs them inline.
func Register(reg *tools.Registry) error {
	entries := []struct {
		spec    tools.Spec
		handler tools.Handler
	}{
		{roeSpec, roeHandler},
		{roicSpec, roicHandler},
		{ownerEarningsSpec, ownerEarningsHandler},
		{intrinsicValueSpec, intrinsicValueHandler},
		{percentageChangeSpec, percentageChangeHandler},
	}

	for _, e := range entries {
		if err := reg.Register(e.spec, e.handler); err != nil {
			return fmt.Errorf("register %s: %w", e.spec.Name, err)
		}
	}
	return nil
}

var roeSpec = tools.Spec{
	Name:        "roe",
	Description: "Computes return on equity (ROE) for a company: net income divided by shareholders' equity.",
	Kind:        tools.KindLocal,
	Params: []tools.Param{
		{Name: "net_income", Type: "number", Description: "Net income of the company.", Required: true},
		{Name: "equity", Type: "number", Description: "Shareholders' equity of the company.", Required: true},
	},
}

func roeHandler(_ context.Context, args json.RawMessage) (tools.Result, error) {
	var in struct {
		NetIncome float64 `json:"net_income"`
		Equity    float64 `json:"equity"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return tools.Result{}, fmt.Errorf("%w: %v", tools.ErrInvalidArgument, err)
	}

	roe, err := ReturnOnEquity(in.NetIncome, in.Equity)
	if err != nil {
		return tools.Result{}, err
	}
	return tools.Result{Content: formatNumber(roe)}, nil
}

var roicSpec = tools.Spec{
	Name:        "roic",
	Description: "Computes return on invested capital (ROIC): after-tax operating income divided by total debt plus shareholders' equity.",
	Kind:        tools.KindLocal,
	Params: []tools.Param{
		{Name: "operating_income", Type: "number", Description: "Operating income of the company.", Required: true},
		{Name: "total_debt", Type: "number", Description: "Total debt of the company.", Required: true},
		{Name: "equity", Type: "number", Description: "Shareholders' equity of the company.", Required: true},
		{Name: "tax_rate", Type: "number", Description: "Effective tax rate applied to operating income.", Default: DefaultTaxRate},
	},
}

func roicHandler(_ context.Context, args json.RawMessage) (tools.Result, error) {
	var in struct {
		OperatingIncome float64 `json:"operating_income"`
		TotalDebt       float64 `json:"total_debt"`
		Equity          float64 `json:"equity"`
		TaxRate         float64 `json:"tax_rate"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return tools.Result{}, fmt.Errorf("%w: %v", tools.ErrInvalidArgument, err)
	}

	roic, err := ReturnOnInvestedCapital(in.OperatingIncome, in.TotalDebt, in.Equity, in.TaxRate)
	if err != nil {
		return tools.Result{}, err
	}
	return tools.Result{Content: formatNumber(roic)}, nil
}

var ownerEarningsSpec = tools.Spec{
	Name:        "owner_earnings",
	Description: "Computes owner earnings: net income plus depreciation and amortization, minus capital expenditures.",
	Kind:        tools.KindLocal,
	Params: []tools.Param{
		{Name: "net_income", Type: "number", Description: "Net income of the company.", Required: true},
		{Name: "depreciation_amortization", Type: "number", Description: "Depreciation and amortization expense.", Required: true},
		{Name: "capital_expenditures", Type: "number", Description: "Capital expenditures.", Required: true},
	},
}

func ownerEarningsHandler(_ context.Context, args json.RawMessage) (tools.Result, error) {
	var in struct {
		NetIncome                float64 `json:"net_income"`
		DepreciationAmortization float64 `json:"depreciation_amortization"`
		CapitalExpenditures      float64 `json:"capital_expenditures"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return tools.Result{}, fmt.Errorf("%w: %v", tools.ErrInvalidArgument, err)
	}

	earnings := OwnerEarnings(in.NetIncome, in.DepreciationAmortization, in.CapitalExpenditures)
	return tools.Result{Content: formatNumber(earnings)}, nil
}

var intrinsicValueSpec = tools.Spec{
	Name:        "intrinsic_value",
	Description: "Estimates intrinsic value with a discounted cash flow model over projected free cash flows plus a terminal value.",
	Kind:        tools.KindLocal,
	Params: []tools.Param{
		{Name: "free_cash_flow", Type: "number", Description: "Current free cash flow of the company.", Required: true},
		{Name: "growth_rate", Type: "number", Description: "Annual growth rate applied to projected cash flows.", Default: DefaultGrowthRate},
		{Name: "discount_rate", Type: "number", Description: "Discount rate applied to projected cash flows.", Default: DefaultDiscountRate},
		{Name: "terminal_growth_rate", Type: "number", Description: "Perpetual growth rate used for the terminal value.", Default: DefaultTerminalGrowthRate},
		{Name: "num_years", Type: "integer", Description: "Number of years to project cash flows.", Default: float64(DefaultProjectionYears)},
	},
}

func intrinsicValueHandler(_ context.Context, args json.RawMessage) (tools.Result, error) {
	var in struct {
		FreeCashFlow       float64 `json:"free_cash_flow"`
		GrowthRate         float64 `json:"growth_rate"`
		DiscountRate       float64 `json:"discount_rate"`
		TerminalGrowthRate float64 `json:"terminal_growth_rate"`
		NumYears           float64 `json:"num_years"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return tools.Result{}, fmt.Errorf("%w: %v", tools.ErrInvalidArgument, err)
	}

	value, err := IntrinsicValue(in.FreeCashFlow, in.GrowthRate, in.DiscountRate, in.TerminalGrowthRate, int(in.NumYears))
	if err != nil {
		return tools.Result{}, err
	}
	return tools.Result{Content: formatNumber(value)}, nil
}

var percentageChangeSpec = tools.Spec{
	Name:        "percentage_change",
	Description: "Computes the percentage change between a starting and ending value, rounded to two decimal places.",
	Kind:        tools.KindLocal,
	Params: []tools.Param{
		{Name: "start", Type: "number", Description: "Starting value.", Required: true},
		{Name: "end", Type: "number", Description: "Ending value.", Required: true},
	},
}

func percentageChangeHandler(_ context.Context, args json.RawMessage) (tools.Result, error) {
	var in struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return tools.Result{}, fmt.Errorf("%w: %v", tools.ErrInvalidArgument, err)
	}

	change, err := PercentageChange(in.Start, in.End)
	if err != nil {
		return tools.Result{}, err
	}
	return tools.Result{Content: formatNumber(change)}, nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
