package fdata

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/valuegraph/analyst/tools"
)

const defaultLimit = 5

// Register adds the remote fundamentals tools to the registry, backed by the
// given client. The executor runs these concurrently within a batch.
func Register(reg *tools.Registry, client *Client) error {
	type fetch func(ctx context.Context, ticker, period string, limit int) (string, error)

	entries := []struct {
		name        string
		description string
		fetch       fetch
	}{
		{
			name:        "income_statements",
			description: "Fetches income statements for a company from financialdatasets.ai.",
			fetch:       client.IncomeStatements,
		},
		{
			name:        "balance_sheets",
			description: "Fetches balance sheets for a company from financialdatasets.ai.",
			fetch:       client.BalanceSheets,
		},
		{
			name:        "cash_flow_statements",
			description: "Fetches cash flow statements for a company from financialdatasets.ai.",
			fetch:       client.CashFlowStatements,
		},
	}

	for _, e := range entries {
		spec := tools.Spec{
			Name:        e.name,
			Description: e.description,
			Kind:        tools.KindRemote,
			Params: []tools.Param{
				{Name: "ticker", Type: "string", Description: "Ticker symbol of the company, e.g. AAPL.", Required: true},
				{Name: "period", Type: "string", Description: "Reporting period.", Enum: []string{PeriodAnnual, PeriodQuarterly, PeriodTTM}, Default: PeriodAnnual},
				{Name: "limit", Type: "integer", Description: "Maximum number of statements to return.", Default: float64(defaultLimit)},
			},
		}
		if err := reg.Register(spec, fetchHandler(e.fetch)); err != nil {
			return fmt.Errorf("register %s: %w", e.name, err)
		}
	}
	return nil
}

func fetchHandler(f func(ctx context.Context, ticker, period string, limit int) (string, error)) tools.Handler {
	return func(ctx context.Context, args json.RawMessage) (tools.Result, error) {
		var in struct {
			Ticker string  `json:"ticker"`
			Period string  `json:"period"`
			Limit  float64 `json:"limit"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return tools.Result{}, fmt.Errorf("%w: %v", tools.ErrInvalidArgument, err)
		}

		body, err := f(ctx, in.Ticker, in.Period, int(in.Limit))
		if err != nil {
			return tools.Result{}, fmt.Errorf("%w: %v", tools.ErrUnavailable, err)
		}
		return tools.Result{Content: body}, nil
	}
}
