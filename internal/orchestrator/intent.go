package orchestrator

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/insights-agent/internal/model"
)

// jsonKeywords trigger strict JSON output. Scanned lexically; this is
// deliberately not an LLM call so the format contract is deterministic.
var jsonKeywords = []string{
	"json",
	"json format",
	"return as json",
	"give me json",
	"output json",
	"in json",
	"as json",
	"return json",
	"format json",
	"structured data",
}

// DetectJSONRequest reports whether the query explicitly asks for JSON
// output.
func DetectJSONRequest(query string) bool {
	lower := strings.ToLower(query)
	for _, kw := range jsonKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

const classifySystemPrompt = "You are an expert at classifying analytics and SEO queries."

func classifyPrompt(query string) string {
	return `Analyze this query and classify its intent.

Query: "` + query + `"

Classification options:
1. "analytics" - Query about website analytics data:
   - User metrics (users, sessions, pageviews)
   - Traffic sources
   - Device categories
   - Page performance
   - Conversion metrics
   - Time-based trends

2. "seo" - Query about SEO/technical data:
   - Meta descriptions
   - Page titles
   - URL structure
   - Redirects
   - Broken links
   - Indexability
   - Technical SEO issues

3. "multi-agent" - Query requires BOTH data sources:
   - Combining traffic data with SEO issues
   - Analyzing high-traffic pages with SEO problems
   - Correlating performance with technical issues

Respond with ONLY the classification: "analytics", "seo", or "multi-agent"`
}

// detectIntent classifies the query. Anything the model returns outside
// the three known labels falls back to analytics with a warning, so a
// drifting model can degrade routing but never break it.
func (o *Orchestrator) detectIntent(ctx context.Context, query string) string {
	intent, err := o.llm.Classify(ctx, classifySystemPrompt, classifyPrompt(query))
	if err != nil {
		zap.L().Warn("intent classification failed, defaulting to analytics", zap.Error(err))
		return model.AgentAnalytics
	}

	switch intent {
	case model.AgentAnalytics, model.AgentSEO, model.AgentMulti:
		return intent
	default:
		zap.L().Warn("invalid intent, defaulting to analytics", zap.String("intent", intent))
		return model.AgentAnalytics
	}
}
