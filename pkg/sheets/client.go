// Package sheets fetches crawl-data tabs from Google Sheets via the
// values API and caches parsed tables for the life of the process.
package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/insights-agent/internal/resilience"
	"github.com/sells-group/insights-agent/internal/tabular"
)

const defaultBaseURL = "https://sheets.googleapis.com/v4/spreadsheets"

// tabCandidates are probed in order. Crawl sheets are inconsistently
// named across properties, so the client tries the known variants.
var tabCandidates = []string{"Internal", "All", "internal", "Sheet1"}

// NotFoundError indicates none of the candidate tabs exist in the sheet.
type NotFoundError struct {
	SheetID string
	Tried   []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("sheets: no usable tab in %s (tried %v)", e.SheetID, e.Tried)
}

// APIError is a non-2xx response from the Sheets API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sheets: api error %d: %s", e.StatusCode, e.Message)
}

// Client fetches spreadsheet tabs as tables.
type Client interface {
	FetchTable(ctx context.Context, sheetID string) (*tabular.Table, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithTabCandidates overrides the probed tab names.
func WithTabCandidates(tabs []string) Option {
	return func(c *httpClient) {
		c.tabs = tabs
	}
}

type httpClient struct {
	token   string
	baseURL string
	tabs    []string
	http    *http.Client
	limiter *rate.Limiter
	retry   resilience.RetryConfig

	mu    sync.RWMutex
	cache map[string]*tabular.Table
}

// NewClient creates a Sheets client authenticated with a bearer token.
func NewClient(token string, opts ...Option) Client {
	retryCfg := resilience.DefaultRetryConfig()
	retryCfg.OnRetry = resilience.RetryLogger("sheets", "fetch tab")

	c := &httpClient{
		token:   token,
		baseURL: defaultBaseURL,
		tabs:    tabCandidates,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(5, 5),
		retry:   retryCfg,
		cache:   make(map[string]*tabular.Table),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// FetchTable probes the candidate tabs in order and returns the first
// that exists, parsed. Results are cached per sheet ID for the process
// lifetime; concurrent fetches of the same sheet may race, with the
// last writer winning, which is harmless since the source is the same.
func (c *httpClient) FetchTable(ctx context.Context, sheetID string) (*tabular.Table, error) {
	if sheetID == "" {
		return nil, &NotFoundError{SheetID: sheetID, Tried: nil}
	}

	c.mu.RLock()
	cached, ok := c.cache[sheetID]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	for _, tab := range c.tabs {
		table, err := c.fetchTab(ctx, sheetID, tab)
		if err != nil {
			var apiErr *APIError
			// A 400 means the range (tab) does not exist; probe the next.
			if eris.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest {
				continue
			}
			return nil, err
		}

		zap.L().Debug("sheet tab resolved",
			zap.String("sheet_id", sheetID),
			zap.String("tab", tab),
			zap.Int("rows", table.RowCount()),
		)

		c.mu.Lock()
		c.cache[sheetID] = table
		c.mu.Unlock()
		return table, nil
	}

	return nil, &NotFoundError{SheetID: sheetID, Tried: c.tabs}
}

type valuesResponse struct {
	Range  string     `json:"range"`
	Values [][]string `json:"values"`
}

func (c *httpClient) fetchTab(ctx context.Context, sheetID, tab string) (*tabular.Table, error) {
	reqURL := fmt.Sprintf("%s/%s/values/%s", c.baseURL, url.PathEscape(sheetID), url.PathEscape(tab))

	return resilience.DoVal(ctx, c.retry, func(ctx context.Context) (*tabular.Table, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "sheets: rate limiter wait")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, eris.Wrap(err, "sheets: create request")
		}
		req.Header.Set("Authorization", "Bearer "+c.token)

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, eris.Wrap(err, "sheets: send request")
		}
		defer resp.Body.Close() //nolint:errcheck

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, eris.Wrap(err, "sheets: read response")
		}

		if resp.StatusCode != http.StatusOK {
			apiErr := &APIError{StatusCode: resp.StatusCode, Message: string(body)}
			if resilience.IsTransientHTTPStatus(resp.StatusCode) {
				return nil, resilience.NewTransientError(apiErr, resp.StatusCode)
			}
			return nil, apiErr
		}

		var vals valuesResponse
		if err := json.Unmarshal(body, &vals); err != nil {
			return nil, eris.Wrap(err, "sheets: unmarshal response")
		}
		if len(vals.Values) == 0 {
			return nil, &APIError{StatusCode: http.StatusBadRequest, Message: "empty tab"}
		}

		return tabular.FromRecords(vals.Values)
	})
}
