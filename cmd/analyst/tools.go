package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/valuegraph/analyst/fdata"
	"github.com/valuegraph/analyst/finance"
	"github.com/valuegraph/analyst/tools"
)

// buildRegistry assembles the full tool catalog: local valuation arithmetic,
// the remote fundamentals tools, and a datetime helper.
func buildRegistry() (*tools.Registry, error) {
	reg := tools.NewRegistry()

	if err := finance.Register(reg); err != nil {
		return nil, fmt.Errorf("failed to register analysis tools: %w", err)
	}

	apiKey := os.Getenv("FINANCIAL_DATASETS_API_KEY")
	if apiKey != "" {
		client := fdata.NewClient(apiKey)
		if err := fdata.Register(reg, client); err != nil {
			return nil, fmt.Errorf("failed to register fundamentals tools: %w", err)
		}
	} else {
		fmt.Fprintln(os.Stderr, "warning: FINANCIAL_DATASETS_API_KEY not set, fundamentals tools disabled")
	}

	err := reg.Register(tools.Spec{
		Name:        "datetime",
		Description: "Returns the current date and time in RFC3339 format.",
		Kind:        tools.KindLocal,
	}, handleDatetime)
	if err != nil {
		return nil, fmt.Errorf("failed to register datetime tool: %w", err)
	}

	return reg, nil
}

func handleDatetime(_ context.Context, _ json.RawMessage) (tools.Result, error) {
	return tools.Result{Content: time.Now().Format(time.RFC3339)}, nil
}
