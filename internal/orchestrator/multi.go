package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/insights-agent/internal/analytics"
	"github.com/sells-group/insights-agent/internal/llm"
	"github.com/sells-group/insights-agent/internal/model"
	"github.com/sells-group/insights-agent/internal/seo"
)

const decomposeSystemPrompt = "You are a task decomposition expert."

func decomposePrompt(query string) string {
	return `Decompose this query into specific sub-tasks for analytics and SEO agents.

Query: "` + query + `"

Break it down into:
1. Analytics tasks (GA4 data needed)
2. SEO tasks (SEO data needed)

Format as JSON array:
[
  {"agent": "analytics", "sub_query": "specific analytics question"},
  {"agent": "seo", "sub_query": "specific SEO question"}
]

Keep sub-queries focused and specific.`
}

const multiFailureAnswer = "Unable to process query with available agents."

const multiJSONAnswer = "Combined results from analytics and SEO data returned in JSON format"

const aggregateSystemPrompt = "You are an expert at synthesizing multi-source analytics insights."

// hybridAggregateRowThreshold: merged data rides along with the
// narrative only when the sources carried more than this many rows.
const hybridAggregateRowThreshold = 5

// processMulti decomposes the query, fans the sub-tasks out to both
// agents in parallel, and aggregates whatever succeeded.
func (o *Orchestrator) processMulti(ctx context.Context, logger *zap.Logger, req Request, jsonRequested bool) model.AgentResponse {
	tasks := o.decompose(ctx, req.Query)
	logger.Info("query decomposed", zap.Int("tasks", len(tasks)))

	results := o.executeTasks(ctx, logger, tasks, req, jsonRequested)

	resp := o.aggregate(ctx, req.Query, results, jsonRequested)
	resp.AgentUsed = model.AgentMulti
	return resp
}

// decompose asks the model for sub-tasks. A malformed response falls
// back to running the original query through both agents.
func (o *Orchestrator) decompose(ctx context.Context, query string) []llm.SubTask {
	tasks, err := o.llm.Decompose(ctx, decomposeSystemPrompt, decomposePrompt(query))
	if err != nil || len(tasks) == 0 {
		zap.L().Warn("task decomposition failed, using original query for both agents", zap.Error(err))
		return []llm.SubTask{
			{Agent: model.AgentAnalytics, SubQuery: query},
			{Agent: model.AgentSEO, SubQuery: query},
		}
	}
	return tasks
}

// executeTasks runs every sub-task concurrently. Each task writes into
// its own slot so the output preserves submission order regardless of
// completion order; failed or unroutable tasks leave a nil slot that
// is dropped before aggregation.
func (o *Orchestrator) executeTasks(ctx context.Context, logger *zap.Logger, tasks []llm.SubTask, req Request, jsonRequested bool) []model.AgentResponse {
	slots := make([]*model.AgentResponse, len(tasks))

	g, gctx := errgroup.WithContext(ctx)
	for i, task := range tasks {
		g.Go(func() error {
			switch task.Agent {
			case model.AgentAnalytics:
				r := o.analytics.Process(gctx, analytics.Request{
					Query:         task.SubQuery,
					PropertyID:    req.PropertyID,
					JSONRequested: jsonRequested,
				})
				slots[i] = &r
			case model.AgentSEO:
				r := o.seo.Process(gctx, seo.Request{
					Query:         task.SubQuery,
					SheetID:       req.SheetID,
					JSONRequested: jsonRequested,
				})
				slots[i] = &r
			default:
				logger.Warn("unknown agent in decomposition", zap.String("agent", task.Agent))
			}
			return nil
		})
	}
	// Sub-task failures never abort the group; they just leave empty slots.
	_ = g.Wait()

	results := make([]model.AgentResponse, 0, len(tasks))
	for _, slot := range slots {
		if slot != nil {
			results = append(results, *slot)
		}
	}
	return results
}

// aggregate merges agent results into one response. Data sources are
// numbered source_1, source_2, ... contiguously in task-submission
// order over the results that carried data.
func (o *Orchestrator) aggregate(ctx context.Context, query string, results []model.AgentResponse, jsonRequested bool) model.AgentResponse {
	if len(results) == 0 {
		return model.AgentResponse{Answer: multiFailureAnswer}
	}

	var answers []string
	merged := make(map[string]any)
	for _, r := range results {
		if r.Answer != "" {
			answers = append(answers, r.Answer)
		}
		if len(r.Data) > 0 {
			merged[fmt.Sprintf("source_%d", len(merged)+1)] = r.Data
		}
	}

	if jsonRequested {
		resp := model.AgentResponse{Answer: multiJSONAnswer}
		if len(merged) > 0 {
			resp.Data = merged
		}
		return resp
	}

	answer := o.synthesizeAggregate(ctx, query, answers)

	resp := model.AgentResponse{Answer: answer}
	if totalRows(merged) > hybridAggregateRowThreshold {
		resp.Data = merged
	}
	return resp
}

func (o *Orchestrator) synthesizeAggregate(ctx context.Context, query string, answers []string) string {
	var numbered strings.Builder
	for i, a := range answers {
		fmt.Fprintf(&numbered, "%d. %s\n", i+1, a)
	}

	prompt := fmt.Sprintf(`Synthesize these results into a unified answer.

Original Query: "%s"

Agent Results:
%s
Create a cohesive, insightful answer that:
1. Addresses the original query
2. Combines insights from both data sources
3. Highlights key findings
4. Provides actionable recommendations if applicable

Keep it concise but comprehensive.`, query, numbered.String())

	answer, err := o.llm.Generate(ctx, aggregateSystemPrompt, prompt)
	if err != nil {
		zap.L().Warn("aggregate synthesis failed, joining agent answers", zap.Error(err))
		return strings.Join(answers, "\n\n")
	}
	return answer
}

// totalRows counts rows across every merged source payload.
func totalRows(merged map[string]any) int {
	total := 0
	for _, v := range merged {
		payload, ok := v.(map[string]any)
		if !ok {
			continue
		}
		switch rows := payload["rows"].(type) {
		case []map[string]any:
			total += len(rows)
		case []any:
			total += len(rows)
		}
	}
	return total
}
