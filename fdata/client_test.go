package fdata_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/valuegraph/analyst/core/protocol"
	"github.com/valuegraph/analyst/fdata"
	"github.com/valuegraph/analyst/tools"
)

func TestIncomeStatements(t *testing.T) {
	var gotPath, gotKey string
	var gotQuery map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-API-KEY")
		gotQuery = map[string]string{
			"ticker": r.URL.Query().Get("ticker"),
			"period": r.URL.Query().Get("period"),
			"limit":  r.URL.Query().Get("limit"),
		}
		w.Write([]byte(`{"income_statements":[{"ticker":"AAPL","net_income":96995000000}]}`))
	}))
	defer server.Close()

	client := fdata.NewClient("test-key", fdata.WithBaseURL(server.URL))

	body, err := client.IncomeStatements(context.Background(), "AAPL", fdata.PeriodAnnual, 3)
	if err != nil {
		t.Fatalf("IncomeStatements() failed: %v", err)
	}

	if gotPath != "/financials/income-statements" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("X-API-KEY = %q", gotKey)
	}
	if gotQuery["ticker"] != "AAPL" || gotQuery["period"] != "annual" || gotQuery["limit"] != "3" {
		t.Errorf("query = %v", gotQuery)
	}
	if !strings.Contains(body, "net_income") {
		t.Errorf("body = %q", body)
	}
}

func TestClient_StatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{name: "not found", status: http.StatusNotFound, wantErr: fdata.ErrNotFound},
		{name: "unauthorized", status: http.StatusUnauthorized, wantErr: fdata.ErrUnauthorized},
		{name: "forbidden", status: http.StatusForbidden, wantErr: fdata.ErrUnauthorized},
		{name: "rate limited", status: http.StatusTooManyRequests, wantErr: fdata.ErrRateLimited},
		{name: "server error", status: http.StatusInternalServerError, wantErr: fdata.ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := fdata.NewClient("test-key", fdata.WithBaseURL(server.URL))
			_, err := client.BalanceSheets(context.Background(), "AAPL", fdata.PeriodAnnual, 5)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestClient_EmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	defer server.Close()

	client := fdata.NewClient("test-key", fdata.WithBaseURL(server.URL))
	_, err := client.CashFlowStatements(context.Background(), "AAPL", fdata.PeriodTTM, 1)
	if !errors.Is(err, fdata.ErrMalformed) {
		t.Errorf("error = %v, want %v", err, fdata.ErrMalformed)
	}
}

func TestRegister_ThroughExecutor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("ticker") == "NOPE" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"balance_sheets":[]}`))
	}))
	defer server.Close()

	reg := tools.NewRegistry()
	client := fdata.NewClient("test-key", fdata.WithBaseURL(server.URL))
	if err := fdata.Register(reg, client); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	catalog := reg.Catalog()
	want := []string{"income_statements", "balance_sheets", "cash_flow_statements"}
	if len(catalog) != len(want) {
		t.Fatalf("got %d catalog entries, want %d", len(catalog), len(want))
	}
	for i, name := range want {
		if catalog[i].Name != name {
			t.Errorf("catalog[%d] = %q, want %q", i, catalog[i].Name, name)
		}
	}

	exec := tools.NewExecutor(reg, time.Second)

	t.Run("defaults applied", func(t *testing.T) {
		outcomes := exec.Execute(context.Background(), []protocol.ToolCall{
			{ID: "call-1", Name: "balance_sheets", Arguments: `{"ticker":"AAPL"}`},
		})
		if outcomes[0].Failure != nil {
			t.Fatalf("balance_sheets failed: %+v", outcomes[0].Failure)
		}
	})

	t.Run("api failure folds to unavailable_service", func(t *testing.T) {
		outcomes := exec.Execute(context.Background(), []protocol.ToolCall{
			{ID: "call-1", Name: "income_statements", Arguments: `{"ticker":"NOPE"}`},
		})
		f := outcomes[0].Failure
		if f == nil || f.Kind != tools.FailUnavailableService {
			t.Errorf("failure = %+v, want unavailable_service", f)
		}
		if !outcomes[0].Retryable() {
			t.Error("unavailable_service outcome should be retryable")
		}
	})

	t.Run("invalid period rejected before any request", func(t *testing.T) {
		outcomes := exec.Execute(context.Background(), []protocol.ToolCall{
			{ID: "call-1", Name: "cash_flow_statements", Arguments: `{"ticker":"AAPL","period":"weekly"}`},
		})
		f := outcomes[0].Failure
		if f == nil || f.Kind != tools.FailInvalidArgument {
			t.Errorf("failure = %+v, want invalid_argument", f)
		}
	})
}
