package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/insights-agent/internal/format"
	"github.com/sells-group/insights-agent/internal/llm"
	"github.com/sells-group/insights-agent/internal/model"
	"github.com/sells-group/insights-agent/internal/resolve"
	"github.com/sells-group/insights-agent/pkg/ga4"
)

// synthesisRowCap bounds how many rows are shown to the synthesis model.
const synthesisRowCap = 20

// Agent answers analytics questions against a GA4 property.
type Agent struct {
	llm               llm.Capability
	client            ga4.Client
	defaultPropertyID string
}

// New creates an analytics agent. defaultPropertyID may be empty, in
// which case every request must carry its own property ID.
func New(capability llm.Capability, client ga4.Client, defaultPropertyID string) *Agent {
	return &Agent{
		llm:               capability,
		client:            client,
		defaultPropertyID: defaultPropertyID,
	}
}

// Request is one analytics question.
type Request struct {
	Query         string
	PropertyID    string
	JSONRequested bool
}

// Process runs the four-stage pipeline. Errors surface as answers in
// the response rather than as Go errors; the caller always gets a
// well-formed AgentResponse.
func (a *Agent) Process(ctx context.Context, req Request) model.AgentResponse {
	propertyID := req.PropertyID
	if propertyID == "" {
		propertyID = a.defaultPropertyID
	}
	// Hard precondition: without a property there is nothing to query.
	if propertyID == "" {
		return model.ErrorResponse(model.AgentAnalytics, propertyGuidance)
	}

	parsed := a.parseQuery(ctx, req.Query)
	zap.L().Info("analytics query parsed",
		zap.Strings("metrics", parsed.Metrics),
		zap.Strings("dimensions", parsed.Dimensions),
		zap.String("start_date", parsed.StartDate),
		zap.String("end_date", parsed.EndDate),
		zap.Int("limit", parsed.Limit),
	)

	tier := resolveTier(req.Query, parsed.Metrics, parsed.Dimensions)
	if tier.Extended {
		zap.L().Info("extended metrics enabled", zap.String("reason", tier.Reason))
	}

	metrics, dimensions, failMsg := validateFields(parsed, tier)
	if failMsg != "" {
		return model.ErrorResponse(model.AgentAnalytics, failMsg)
	}

	result, errAnswer := a.execute(ctx, propertyID, parsed, metrics, dimensions)
	if errAnswer != "" {
		return model.ErrorResponse(model.AgentAnalytics, errAnswer)
	}

	return a.synthesize(ctx, req.Query, parsed, result, tier, req.JSONRequested)
}

// parseQuery extracts structured parameters. Any extraction failure
// falls back to the full default query rather than failing the request.
func (a *Agent) parseQuery(ctx context.Context, query string) model.AnalyticsQuery {
	defaults := model.AnalyticsQuery{
		Metrics:   []string{defaultMetric},
		StartDate: defaultStartDate,
		EndDate:   defaultEndDate,
		Limit:     defaultLimit,
	}

	raw, err := a.llm.Extract(ctx, parseSystemPrompt(), "Parse this query: "+query)
	if err != nil {
		zap.L().Warn("analytics extraction failed, using defaults", zap.Error(err))
		return defaults
	}

	var parsed model.AnalyticsQuery
	if err := json.Unmarshal(raw, &parsed); err != nil {
		zap.L().Warn("analytics extraction unmarshal failed, using defaults", zap.Error(err))
		return defaults
	}

	if len(parsed.Metrics) == 0 {
		parsed.Metrics = []string{defaultMetric}
	}
	if parsed.StartDate == "" {
		parsed.StartDate = defaultStartDate
	}
	if parsed.EndDate == "" {
		parsed.EndDate = defaultEndDate
	}
	if parsed.Limit <= 0 {
		parsed.Limit = defaultLimit
	}
	return parsed
}

// validateFields checks every parsed field against the tier's
// allowlist. The first invalid field fails the whole request with a
// did-you-mean message; analytics never substitutes a guessed field.
func validateFields(parsed model.AnalyticsQuery, tier tierDecision) (metrics, dimensions []string, failMsg string) {
	metricNames := Metrics.Names(tier.Extended)
	dimensionNames := Dimensions.Names(tier.Extended)
	opts := resolve.AnalyticsOptions()

	for _, m := range parsed.Metrics {
		res := resolve.Resolve(m, metricNames, nil, opts)
		if !res.Resolved() {
			return nil, nil, validationMessage("Metric", res.Failure)
		}
		metrics = append(metrics, res.Resolution.Canonical)
	}
	for _, d := range parsed.Dimensions {
		res := resolve.Resolve(d, dimensionNames, nil, opts)
		if !res.Resolved() {
			return nil, nil, validationMessage("Dimension", res.Failure)
		}
		dimensions = append(dimensions, res.Resolution.Canonical)
	}
	return metrics, dimensions, ""
}

func validationMessage(fieldType string, f *resolve.Failure) string {
	if len(f.Suggestions) > 0 {
		return fmt.Sprintf("%s '%s' is not valid. Did you mean: %s? Please use exact GA4 field names.",
			fieldType, f.Term, quoteList(f.Suggestions))
	}
	return fmt.Sprintf("%s '%s' is not recognized. Valid %ss include: %s, and more. Please check GA4 documentation for exact field names.",
		fieldType, f.Term, strings.ToLower(fieldType), quoteList(f.Samples))
}

func quoteList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "'" + n + "'"
	}
	return strings.Join(quoted, ", ")
}

// execute runs the GA4 report and shapes the rows into a QueryResult.
// A non-empty errAnswer means the request failed with that user-facing
// message.
func (a *Agent) execute(ctx context.Context, propertyID string, parsed model.AnalyticsQuery, metrics, dimensions []string) (*model.QueryResult, string) {
	resp, err := a.client.RunReport(ctx, ga4.ReportRequest{
		PropertyID: propertyID,
		Metrics:    metrics,
		Dimensions: dimensions,
		StartDate:  parsed.StartDate,
		EndDate:    parsed.EndDate,
		Limit:      parsed.Limit,
	})
	if err != nil {
		var propErr *ga4.PropertyError
		if eris.As(err, &propErr) {
			return nil, propErr.Error()
		}
		var apiErr *ga4.APIError
		if eris.As(err, &apiErr) {
			return nil, "Error querying Google Analytics: " + apiErr.Error()
		}
		zap.L().Error("ga4 execution failed", zap.Error(err))
		return nil, "An error occurred processing your analytics query: " + err.Error()
	}

	rows := make([]map[string]any, len(resp.Rows))
	for i, r := range resp.Rows {
		row := make(map[string]any, len(resp.DimensionHeaders)+len(resp.MetricHeaders))
		for j, h := range resp.DimensionHeaders {
			if j < len(r.DimensionValues) {
				row[h] = r.DimensionValues[j]
			}
		}
		for j, h := range resp.MetricHeaders {
			if j < len(r.MetricValues) {
				row[h] = r.MetricValues[j]
			}
		}
		rows[i] = row
	}

	rowCount := resp.RowCount
	if rowCount == 0 {
		rowCount = len(rows)
	}

	return &model.QueryResult{
		Rows:     rows,
		RowCount: rowCount,
		Metadata: map[string]any{
			"start_date": parsed.StartDate,
			"end_date":   parsed.EndDate,
			"metrics":    metrics,
			"dimensions": dimensions,
		},
	}, ""
}

// synthesize picks the response format and generates the answer text.
// Substantial results offer their payload to the format selector; small
// ones are fully covered by the answer text.
func (a *Agent) synthesize(ctx context.Context, query string, parsed model.AnalyticsQuery, result *model.QueryResult, tier tierDecision, jsonRequested bool) model.AgentResponse {
	acknowledgment := ""
	if tier.Extended {
		acknowledgment = fmt.Sprintf("(Note: Including extended metrics to answer your %s.) ", tier.Reason)
	}

	var payload map[string]any
	if result.RowCount > 10 {
		payload = result.Payload()
	}

	switch format.Select(jsonRequested, payload) {
	case format.JSON:
		return model.AgentResponse{
			Answer:    acknowledgment + format.ConfirmationAnswer + ".",
			Data:      result.Payload(),
			AgentUsed: model.AgentAnalytics,
		}
	case format.Hybrid:
		return model.AgentResponse{
			Answer:    acknowledgment + a.generateAnswer(ctx, query, parsed, result),
			Data:      payload,
			AgentUsed: model.AgentAnalytics,
		}
	default:
		return model.AgentResponse{
			Answer:    acknowledgment + a.generateAnswer(ctx, query, parsed, result),
			AgentUsed: model.AgentAnalytics,
		}
	}
}

func (a *Agent) generateAnswer(ctx context.Context, query string, parsed model.AnalyticsQuery, result *model.QueryResult) string {
	if result.RowCount == 0 {
		return fmt.Sprintf("No data found for the specified query. This could mean:\n"+
			"- No traffic during the date range (%s to %s)\n"+
			"- The requested dimensions/metrics have no recorded values\n"+
			"- The property ID may not have the expected data",
			parsed.StartDate, parsed.EndDate)
	}

	display := result.Payload()
	if len(result.Rows) > synthesisRowCap {
		display = map[string]any{
			"rows":      result.Rows[:synthesisRowCap],
			"row_count": result.RowCount,
			"note":      fmt.Sprintf("Showing first %d of %d rows", synthesisRowCap, result.RowCount),
		}
	}
	displayJSON, err := json.Marshal(display)
	if err != nil {
		displayJSON = []byte("{}")
	}

	dims := strings.Join(parsed.Dimensions, ", ")
	if dims == "" {
		dims = "None (aggregate)"
	}
	userPrompt := fmt.Sprintf(`Original question: %s

Date range: %s to %s
Metrics requested: %s
Dimensions: %s

Data:
%s

Provide a clear, natural language explanation of these results.`,
		query, parsed.StartDate, parsed.EndDate,
		strings.Join(parsed.Metrics, ", "), dims, string(displayJSON))

	answer, err := a.llm.Generate(ctx, synthesisSystemPrompt, userPrompt)
	if err != nil {
		zap.L().Warn("analytics synthesis failed, using basic summary", zap.Error(err))
		return basicSummary(result)
	}
	return answer
}

// basicSummary is the degraded answer when synthesis is unavailable.
func basicSummary(result *model.QueryResult) string {
	if len(result.Rows) == 0 {
		return "Query completed but could not generate explanation."
	}
	first := result.Rows[0]
	parts := make([]string, 0, len(first))
	for k, v := range first {
		parts = append(parts, fmt.Sprintf("%s: %v", k, v))
	}
	return fmt.Sprintf("Results for your query: %s (and %d more rows)",
		strings.Join(parts, ", "), len(result.Rows)-1)
}
