// Package fdata is a client for the financialdatasets.ai API, the source of
// the agent's remote fundamentals tools: income statements, balance sheets,
// and cash flow statements.
package fdata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultBaseURL = "https://api.financialdatasets.ai"

// Reporting periods accepted by the API.
const (
	PeriodAnnual    = "annual"
	PeriodQuarterly = "quarterly"
	PeriodTTM       = "ttm"
)

// Sentinel errors for API failures. All of them describe conditions outside
// the caller's control, so the executor folds them as transient failures.
var (
	ErrNotFound     = errors.New("no data for ticker")
	ErrUnauthorized = errors.New("api key rejected")
	ErrRateLimited  = errors.New("rate limited")
	ErrMalformed    = errors.New("malformed api response")
)

// Client calls the financialdatasets.ai REST API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option overrides a Client default.
type Option func(*Client)

// WithBaseURL points the client at an alternate API host.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// NewClient creates a Client authenticating with apiKey.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IncomeStatements fetches up to limit income statements for ticker.
// The raw JSON body is returned unparsed; the model consumes it directly.
func (c *Client) IncomeStatements(ctx context.Context, ticker, period string, limit int) (string, error) {
	return c.get(ctx, "/financials/income-statements", ticker, period, limit)
}

// BalanceSheets fetches up to limit balance sheets for ticker.
func (c *Client) BalanceSheets(ctx context.Context, ticker, period string, limit int) (string, error) {
	return c.get(ctx, "/financials/balance-sheets", ticker, period, limit)
}

// CashFlowStatements fetches up to limit cash flow statements for ticker.
func (c *Client) CashFlowStatements(ctx context.Context, ticker, period string, limit int) (string, error) {
	return c.get(ctx, "/financials/cash-flow-statements", ticker, period, limit)
}

func (c *Client) get(ctx context.Context, path, ticker, period string, limit int) (string, error) {
	query := url.Values{}
	query.Set("ticker", ticker)
	query.Set("period", period)
	query.Set("limit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("%s: read body: %w", path, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return "", fmt.Errorf("%w: %s", ErrNotFound, ticker)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", fmt.Errorf("%w (status %d)", ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", ErrRateLimited
	default:
		return "", fmt.Errorf("%w: status %d from %s", ErrMalformed, resp.StatusCode, path)
	}

	if len(body) == 0 {
		return "", fmt.Errorf("%w: empty body from %s", ErrMalformed, path)
	}
	return string(body), nil
}
