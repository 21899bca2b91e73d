package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/insights-agent/internal/model"
	"github.com/sells-group/insights-agent/pkg/ga4"
)

func extracted(v any) json.RawMessage {
	raw, _ := json.Marshal(v)
	return json.RawMessage(raw)
}

func TestProcessMissingProperty(t *testing.T) {
	agent := New(new(mockCapability), new(mockGA4), "")
	resp := agent.Process(context.Background(), Request{Query: "how many users"})

	assert.Equal(t, model.AgentAnalytics, resp.AgentUsed)
	assert.Contains(t, resp.Answer, "GA4 Property ID is required")
	assert.Nil(t, resp.Data)
}

func TestProcessExtractFailureFallsBackToDefaults(t *testing.T) {
	cap := new(mockCapability)
	cap.On("Extract", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, assert.AnError)
	cap.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return("You had 42 active users.", nil)

	client := new(mockGA4)
	var captured ga4.ReportRequest
	client.On("RunReport", mock.Anything, mock.MatchedBy(func(req ga4.ReportRequest) bool {
		captured = req
		return true
	})).Return(reportOf(1, nil, []string{"activeUsers"},
		ga4.ReportRow{MetricValues: []string{"42"}}), nil)

	agent := New(cap, client, "123456")
	resp := agent.Process(context.Background(), Request{Query: "how many users"})

	assert.Equal(t, []string{"activeUsers"}, captured.Metrics)
	assert.Empty(t, captured.Dimensions)
	assert.Equal(t, "7daysAgo", captured.StartDate)
	assert.Equal(t, "today", captured.EndDate)
	assert.Equal(t, 10, captured.Limit)
	assert.Equal(t, "You had 42 active users.", resp.Answer)
	assert.Nil(t, resp.Data)
}

func TestProcessInvalidMetricDidYouMean(t *testing.T) {
	cap := new(mockCapability)
	cap.On("Extract", mock.Anything, mock.Anything, mock.Anything).
		Return(extracted(map[string]any{"metrics": []string{"sesions"}}), nil)

	agent := New(cap, new(mockGA4), "123456")
	resp := agent.Process(context.Background(), Request{Query: "show sesions"})

	assert.Contains(t, resp.Answer, "Metric 'sesions' is not valid")
	assert.Contains(t, resp.Answer, "'sessions'")
	assert.Contains(t, resp.Answer, "exact GA4 field names")
}

func TestProcessUnrecognizedMetricListsSamples(t *testing.T) {
	cap := new(mockCapability)
	cap.On("Extract", mock.Anything, mock.Anything, mock.Anything).
		Return(extracted(map[string]any{"metrics": []string{"zzzzzz"}}), nil)

	agent := New(cap, new(mockGA4), "123456")
	resp := agent.Process(context.Background(), Request{Query: "show zzzzzz"})

	assert.Contains(t, resp.Answer, "Metric 'zzzzzz' is not recognized")
	assert.Contains(t, resp.Answer, "Valid metrics include:")
	assert.Contains(t, resp.Answer, "GA4 documentation")
}

func TestProcessExtendedMetricEnablesTier(t *testing.T) {
	// totalRevenue exists only in the extended tier; the parsed metric
	// itself switches the tier on even without a query trigger.
	cap := new(mockCapability)
	cap.On("Extract", mock.Anything, mock.Anything, mock.Anything).
		Return(extracted(map[string]any{"metrics": []string{"totalRevenue"}}), nil)
	cap.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return("Revenue summary.", nil)

	client := new(mockGA4)
	client.On("RunReport", mock.Anything, mock.Anything).
		Return(reportOf(1, nil, []string{"totalRevenue"},
			ga4.ReportRow{MetricValues: []string{"100.5"}}), nil)

	agent := New(cap, client, "123456")
	resp := agent.Process(context.Background(), Request{Query: "show me the numbers"})

	// The parsed extended metric switches the tier on, so it validates.
	assert.Contains(t, resp.Answer, "(Note: Including extended metrics")
	assert.Contains(t, resp.Answer, "Revenue summary.")
}

func TestProcessTriggerEnablesExtendedAck(t *testing.T) {
	cap := new(mockCapability)
	cap.On("Extract", mock.Anything, mock.Anything, mock.Anything).
		Return(extracted(map[string]any{"metrics": []string{"totalRevenue"}}), nil)
	cap.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return("Revenue was up.", nil)

	client := new(mockGA4)
	client.On("RunReport", mock.Anything, mock.Anything).
		Return(reportOf(1, nil, []string{"totalRevenue"},
			ga4.ReportRow{MetricValues: []string{"100.5"}}), nil)

	agent := New(cap, client, "123456")
	resp := agent.Process(context.Background(), Request{Query: "how much revenue last week"})

	assert.Contains(t, resp.Answer, `query mentions "revenue"`)
}

func TestProcessJSONRequested(t *testing.T) {
	cap := new(mockCapability)
	cap.On("Extract", mock.Anything, mock.Anything, mock.Anything).
		Return(extracted(map[string]any{"metrics": []string{"sessions"}}), nil)

	client := new(mockGA4)
	client.On("RunReport", mock.Anything, mock.Anything).
		Return(reportOf(1, nil, []string{"sessions"},
			ga4.ReportRow{MetricValues: []string{"7"}}), nil)

	agent := New(cap, client, "123456")
	resp := agent.Process(context.Background(), Request{Query: "sessions as json", JSONRequested: true})

	assert.Equal(t, "Results returned in JSON format.", resp.Answer)
	require.NotNil(t, resp.Data)
	assert.Equal(t, 1, resp.Data["row_count"])
	cap.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessLargeResultAttachesData(t *testing.T) {
	rows := make([]ga4.ReportRow, 11)
	for i := range rows {
		rows[i] = ga4.ReportRow{
			DimensionValues: []string{fmt.Sprintf("/page-%d", i)},
			MetricValues:    []string{"5"},
		}
	}

	cap := new(mockCapability)
	cap.On("Extract", mock.Anything, mock.Anything, mock.Anything).
		Return(extracted(map[string]any{
			"metrics":    []string{"screenPageViews"},
			"dimensions": []string{"pagePath"},
			"limit":      50,
		}), nil)
	cap.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return("Top pages listed.", nil)

	client := new(mockGA4)
	client.On("RunReport", mock.Anything, mock.Anything).
		Return(reportOf(11, []string{"pagePath"}, []string{"screenPageViews"}, rows...), nil)

	agent := New(cap, client, "123456")
	resp := agent.Process(context.Background(), Request{Query: "top pages"})

	assert.Equal(t, "Top pages listed.", resp.Answer)
	require.NotNil(t, resp.Data)
	assert.Equal(t, 11, resp.Data["row_count"])
}

func TestProcessSmallResultOmitsData(t *testing.T) {
	cap := new(mockCapability)
	cap.On("Extract", mock.Anything, mock.Anything, mock.Anything).
		Return(extracted(map[string]any{"metrics": []string{"sessions"}}), nil)
	cap.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return("You had 7 sessions.", nil)

	client := new(mockGA4)
	client.On("RunReport", mock.Anything, mock.Anything).
		Return(reportOf(1, nil, []string{"sessions"},
			ga4.ReportRow{MetricValues: []string{"7"}}), nil)

	agent := New(cap, client, "123456")
	resp := agent.Process(context.Background(), Request{Query: "sessions last week"})

	assert.Nil(t, resp.Data)
}

func TestProcessZeroRowsTemplate(t *testing.T) {
	cap := new(mockCapability)
	cap.On("Extract", mock.Anything, mock.Anything, mock.Anything).
		Return(extracted(map[string]any{
			"metrics":    []string{"sessions"},
			"start_date": "2026-01-01",
			"end_date":   "2026-01-31",
		}), nil)

	client := new(mockGA4)
	client.On("RunReport", mock.Anything, mock.Anything).
		Return(reportOf(0, nil, []string{"sessions"}), nil)

	agent := New(cap, client, "123456")
	resp := agent.Process(context.Background(), Request{Query: "sessions in january"})

	assert.Contains(t, resp.Answer, "No data found for the specified query")
	assert.Contains(t, resp.Answer, "2026-01-01 to 2026-01-31")
	cap.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessTopPagesBySessions(t *testing.T) {
	cap := new(mockCapability)
	cap.On("Extract", mock.Anything, mock.Anything, mock.Anything).
		Return(extracted(map[string]any{
			"metrics":    []string{"sessions"},
			"dimensions": []string{"pagePath"},
			"limit":      5,
		}), nil)
	cap.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return("Your five busiest pages are listed.", nil)

	rows := make([]ga4.ReportRow, 5)
	for i := range rows {
		rows[i] = ga4.ReportRow{
			DimensionValues: []string{fmt.Sprintf("/page-%d", i)},
			MetricValues:    []string{"100"},
		}
	}
	client := new(mockGA4)
	var captured ga4.ReportRequest
	client.On("RunReport", mock.Anything, mock.MatchedBy(func(req ga4.ReportRequest) bool {
		captured = req
		return true
	})).Return(reportOf(5, []string{"pagePath"}, []string{"sessions"}, rows...), nil)

	agent := New(cap, client, "123456")
	resp := agent.Process(context.Background(), Request{Query: "top 5 pages by sessions"})

	assert.Equal(t, []string{"sessions"}, captured.Metrics)
	assert.Equal(t, []string{"pagePath"}, captured.Dimensions)
	assert.Equal(t, 5, captured.Limit)
	assert.Equal(t, "Your five busiest pages are listed.", resp.Answer)
	assert.NotContains(t, resp.Answer, "extended")
	assert.Nil(t, resp.Data)
}

func TestProcessGA4APIError(t *testing.T) {
	cap := new(mockCapability)
	cap.On("Extract", mock.Anything, mock.Anything, mock.Anything).
		Return(extracted(map[string]any{"metrics": []string{"sessions"}}), nil)

	client := new(mockGA4)
	client.On("RunReport", mock.Anything, mock.Anything).
		Return(nil, &ga4.APIError{StatusCode: 403, Message: "permission denied"})

	agent := New(cap, client, "123456")
	resp := agent.Process(context.Background(), Request{Query: "sessions"})

	assert.Contains(t, resp.Answer, "Error querying Google Analytics:")
	assert.Contains(t, resp.Answer, "permission denied")
}

func TestProcessSynthesisFailureBasicSummary(t *testing.T) {
	cap := new(mockCapability)
	cap.On("Extract", mock.Anything, mock.Anything, mock.Anything).
		Return(extracted(map[string]any{"metrics": []string{"sessions"}}), nil)
	cap.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return("", assert.AnError)

	client := new(mockGA4)
	client.On("RunReport", mock.Anything, mock.Anything).
		Return(reportOf(2, nil, []string{"sessions"},
			ga4.ReportRow{MetricValues: []string{"7"}},
			ga4.ReportRow{MetricValues: []string{"3"}}), nil)

	agent := New(cap, client, "123456")
	resp := agent.Process(context.Background(), Request{Query: "sessions"})

	assert.Contains(t, resp.Answer, "Results for your query:")
	assert.Contains(t, resp.Answer, "(and 1 more rows)")
}
