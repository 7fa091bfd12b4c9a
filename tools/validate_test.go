package tools_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/valuegraph/analyst/tools"
)

func roeSpec() tools.Spec {
	return tools.Spec{
		Name: "roe",
		Kind: tools.KindLocal,
		Params: []tools.Param{
			{Name: "net_income", Type: "number", Required: true},
			{Name: "equity", Type: "number", Required: true},
		},
	}
}

func TestValidateArgs(t *testing.T) {
	tests := []struct {
		name    string
		spec    tools.Spec
		args    string
		wantErr error
	}{
		{
			name: "valid",
			spec: roeSpec(),
			args: `{"net_income":100,"equity":500}`,
		},
		{
			name:    "missing required",
			spec:    roeSpec(),
			args:    `{"net_income":100}`,
			wantErr: tools.ErrMissingArgument,
		},
		{
			name:    "wrong type",
			spec:    roeSpec(),
			args:    `{"net_income":"lots","equity":500}`,
			wantErr: tools.ErrInvalidArgument,
		},
		{
			name:    "not an object",
			spec:    roeSpec(),
			args:    `[1,2]`,
			wantErr: tools.ErrInvalidArgument,
		},
		{
			name: "unknown extra ignored",
			spec: roeSpec(),
			args: `{"net_income":100,"equity":500,"ticker":"AAPL"}`,
		},
		{
			name: "unknown extra rejected in strict mode",
			spec: func() tools.Spec {
				s := roeSpec()
				s.Strict = true
				return s
			}(),
			args:    `{"net_income":100,"equity":500,"ticker":"AAPL"}`,
			wantErr: tools.ErrInvalidArgument,
		},
		{
			name: "empty arguments with all params optional",
			spec: tools.Spec{
				Name:   "datetime",
				Kind:   tools.KindLocal,
				Params: nil,
			},
			args: ``,
		},
		{
			name: "integer rejects fraction",
			spec: tools.Spec{
				Name: "dcf",
				Kind: tools.KindLocal,
				Params: []tools.Param{
					{Name: "num_years", Type: "integer", Required: true},
				},
			},
			args:    `{"num_years":2.5}`,
			wantErr: tools.ErrInvalidArgument,
		},
		{
			name: "enum mismatch",
			spec: tools.Spec{
				Name: "income_statements",
				Kind: tools.KindRemote,
				Params: []tools.Param{
					{Name: "period", Type: "string", Enum: []string{"annual", "quarterly", "ttm"}, Required: true},
				},
			},
			args:    `{"period":"weekly"}`,
			wantErr: tools.ErrInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.spec.ValidateArgs(json.RawMessage(tt.args))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ValidateArgs() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Errorf("ValidateArgs() unexpected error: %v", err)
			}
		})
	}
}

func TestValidateArgs_AppliesDefaults(t *testing.T) {
	spec := tools.Spec{
		Name: "roic",
		Kind: tools.KindLocal,
		Params: []tools.Param{
			{Name: "operating_income", Type: "number", Required: true},
			{Name: "tax_rate", Type: "number", Default: 0.35},
		},
	}

	normalized, err := spec.ValidateArgs(json.RawMessage(`{"operating_income":200}`))
	if err != nil {
		t.Fatalf("ValidateArgs() failed: %v", err)
	}

	var args map[string]float64
	if err := json.Unmarshal(normalized, &args); err != nil {
		t.Fatalf("normalized args not decodable: %v", err)
	}

	if args["tax_rate"] != 0.35 {
		t.Errorf("got tax_rate %v, want 0.35 (default)", args["tax_rate"])
	}
}

func TestValidateArgs_DropsUnknown(t *testing.T) {
	normalized, err := roeSpec().ValidateArgs(json.RawMessage(`{"net_income":100,"equity":500,"extra":true}`))
	if err != nil {
		t.Fatalf("ValidateArgs() failed: %v", err)
	}

	var args map[string]any
	if err := json.Unmarshal(normalized, &args); err != nil {
		t.Fatalf("normalized args not decodable: %v", err)
	}
	if _, present := args["extra"]; present {
		t.Error("unknown argument survived normalization")
	}
}
