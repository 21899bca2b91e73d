// Package ga4 wraps the Google Analytics Data API (runReport) behind a
// narrow client interface with repo-owned request and response types.
package ga4

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/insights-agent/internal/resilience"
)

const defaultBaseURL = "https://analyticsdata.googleapis.com/v1beta"

// Client performs Analytics Data API operations.
type Client interface {
	RunReport(ctx context.Context, req ReportRequest) (*ReportResponse, error)
}

// ReportRequest describes one runReport call.
type ReportRequest struct {
	PropertyID string
	Metrics    []string
	Dimensions []string
	StartDate  string
	EndDate    string
	Limit      int
}

// ReportRow is one row of the report, values ordered to match the
// response headers.
type ReportRow struct {
	DimensionValues []string
	MetricValues    []string
}

// ReportResponse is the parsed report.
type ReportResponse struct {
	DimensionHeaders []string
	MetricHeaders    []string
	Rows             []ReportRow
	RowCount         int
}

// NormalizePropertyID validates a configured property ID and returns
// its bare numeric form. Both "123456" and "properties/123456" are
// accepted.
func NormalizePropertyID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", &PropertyError{ID: id, Reason: "not configured"}
	}
	id = strings.TrimPrefix(id, "properties/")
	if _, err := strconv.ParseInt(id, 10, 64); err != nil {
		return "", &PropertyError{ID: id, Reason: "must be numeric"}
	}
	return id, nil
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	token   string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	retry   resilience.RetryConfig
}

// NewClient creates an Analytics Data API client authenticated with a
// bearer token.
func NewClient(token string, opts ...Option) Client {
	retryCfg := resilience.DefaultRetryConfig()
	retryCfg.OnRetry = resilience.RetryLogger("ga4", "run report")

	c := &httpClient{
		token:   token,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(10, 10),
		retry:   retryCfg,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Wire types for the runReport endpoint.

type dateRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type namedField struct {
	Name string `json:"name"`
}

type runReportRequest struct {
	DateRanges []dateRange  `json:"dateRanges"`
	Dimensions []namedField `json:"dimensions,omitempty"`
	Metrics    []namedField `json:"metrics"`
	Limit      string       `json:"limit,omitempty"`
}

type wireValue struct {
	Value string `json:"value"`
}

type wireRow struct {
	DimensionValues []wireValue `json:"dimensionValues"`
	MetricValues    []wireValue `json:"metricValues"`
}

type runReportResponse struct {
	DimensionHeaders []namedField `json:"dimensionHeaders"`
	MetricHeaders    []struct {
		Name string `json:"name"`
	} `json:"metricHeaders"`
	Rows     []wireRow `json:"rows"`
	RowCount int       `json:"rowCount"`
}

func (c *httpClient) RunReport(ctx context.Context, req ReportRequest) (*ReportResponse, error) {
	propertyID, err := NormalizePropertyID(req.PropertyID)
	if err != nil {
		return nil, err
	}

	wire := runReportRequest{
		DateRanges: []dateRange{{StartDate: req.StartDate, EndDate: req.EndDate}},
		Metrics:    toNamedFields(req.Metrics),
		Dimensions: toNamedFields(req.Dimensions),
	}
	if req.Limit > 0 {
		wire.Limit = strconv.Itoa(req.Limit)
	}

	body, err := json.Marshal(wire)
	if err != nil {
		return nil, eris.Wrap(err, "ga4: marshal request")
	}

	url := c.baseURL + "/properties/" + propertyID + ":runReport"

	return resilience.DoVal(ctx, c.retry, func(ctx context.Context) (*ReportResponse, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "ga4: rate limiter wait")
		}
		return c.doRunReport(ctx, url, body)
	})
}

func (c *httpClient) doRunReport(ctx context.Context, url string, body []byte) (*ReportResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "ga4: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "ga4: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "ga4: read response")
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(apiErr, resp.StatusCode)
		}
		return nil, apiErr
	}

	var wire runReportResponse
	if err := json.Unmarshal(respBody, &wire); err != nil {
		return nil, eris.Wrap(err, "ga4: unmarshal response")
	}

	out := &ReportResponse{
		DimensionHeaders: make([]string, len(wire.DimensionHeaders)),
		MetricHeaders:    make([]string, len(wire.MetricHeaders)),
		Rows:             make([]ReportRow, len(wire.Rows)),
		RowCount:         wire.RowCount,
	}
	for i, h := range wire.DimensionHeaders {
		out.DimensionHeaders[i] = h.Name
	}
	for i, h := range wire.MetricHeaders {
		out.MetricHeaders[i] = h.Name
	}
	for i, r := range wire.Rows {
		row := ReportRow{
			DimensionValues: make([]string, len(r.DimensionValues)),
			MetricValues:    make([]string, len(r.MetricValues)),
		}
		for j, v := range r.DimensionValues {
			row.DimensionValues[j] = v.Value
		}
		for j, v := range r.MetricValues {
			row.MetricValues[j] = v.Value
		}
		out.Rows[i] = row
	}

	zap.L().Debug("ga4 report fetched",
		zap.Int("rows", len(out.Rows)),
		zap.Int("row_count", out.RowCount),
	)

	return out, nil
}

func toNamedFields(names []string) []namedField {
	if len(names) == 0 {
		return nil
	}
	out := make([]namedField, len(names))
	for i, n := range names {
		out[i] = namedField{Name: n}
	}
	return out
}
