package analytics

import (
	"fmt"
	"strings"

	"github.com/sells-group/insights-agent/internal/model"
)

func formatFields(fields []model.Field) string {
	var b strings.Builder
	for _, f := range fields {
		fmt.Fprintf(&b, "- %s: %s\n", f.Name, f.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}

// parseSystemPrompt lists the full catalogs so the extractor always
// uses exact field names; tier enforcement happens after extraction.
func parseSystemPrompt() string {
	return fmt.Sprintf(`You are a GA4 query parser. Extract analytics parameters from natural language queries.

Available METRICS (use exact names):
%s

Available DIMENSIONS (use exact names):
%s

DATE FORMATS:
- Relative: "today", "yesterday", "7daysAgo", "30daysAgo", "90daysAgo"
- Special: "startOfMonth", "endOfMonth"
- Absolute: "YYYY-MM-DD"

RULES:
1. Extract only explicitly mentioned or clearly implied metrics/dimensions
2. Default to "activeUsers" if no metric is clear
3. Default date range is last 7 days (7daysAgo to today)
4. For "top N" queries, set limit to N (default 10)
5. Use exact field names from the lists above

Return JSON only with this structure:
{
    "metrics": ["metric1", "metric2"],
    "dimensions": ["dimension1"],
    "start_date": "7daysAgo",
    "end_date": "today",
    "limit": 10,
    "reasoning": "Brief explanation of extraction"
}`, formatFields(Metrics.Fields()), formatFields(Dimensions.Fields()))
}

const synthesisSystemPrompt = `You are a data analyst explaining Google Analytics results clearly and concisely.

RULES:
1. Start with a direct answer to the user's question
2. Highlight key numbers and insights
3. Use percentages when comparing values
4. Keep response under 200 words
5. Be conversational but professional
6. If data has multiple rows, summarize patterns
7. Include the date range context`

// propertyGuidance is returned when no GA4 property ID is available.
const propertyGuidance = "GA4 Property ID is required. Please provide 'propertyId' in your request " +
	"(e.g., '123456789'). You can find this in Google Analytics under " +
	"Admin > Property Settings."
