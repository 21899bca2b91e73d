// Package orchestrator routes natural-language queries to the
// analytics and SEO agents, decomposes multi-source questions, and
// aggregates the results into one response.
package orchestrator

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/insights-agent/internal/analytics"
	"github.com/sells-group/insights-agent/internal/llm"
	"github.com/sells-group/insights-agent/internal/model"
	"github.com/sells-group/insights-agent/internal/seo"
)

// AnalyticsAgent is the analytics pipeline surface the orchestrator
// depends on.
type AnalyticsAgent interface {
	Process(ctx context.Context, req analytics.Request) model.AgentResponse
}

// SEOAgent is the SEO pipeline surface the orchestrator depends on.
type SEOAgent interface {
	Process(ctx context.Context, req seo.Request) model.AgentResponse
}

// Orchestrator coordinates the two agents.
type Orchestrator struct {
	llm       llm.Capability
	analytics AnalyticsAgent
	seo       SEOAgent
}

// New creates an orchestrator over the given agents.
func New(capability llm.Capability, analyticsAgent AnalyticsAgent, seoAgent SEOAgent) *Orchestrator {
	return &Orchestrator{
		llm:       capability,
		analytics: analyticsAgent,
		seo:       seoAgent,
	}
}

// Request is one user query with optional per-request source overrides.
type Request struct {
	Query      string
	PropertyID string
	SheetID    string
}

// Process is the main entry point: detect format preference, classify
// intent, route, and return the unified response.
func (o *Orchestrator) Process(ctx context.Context, req Request) model.AgentResponse {
	requestID := uuid.NewString()
	logger := zap.L().With(zap.String("request_id", requestID))
	logger.Info("processing query", zap.String("query", req.Query))

	jsonRequested := DetectJSONRequest(req.Query)
	if jsonRequested {
		logger.Info("json format requested")
	}

	intent := o.detectIntent(ctx, req.Query)
	logger.Info("intent detected", zap.String("intent", intent))

	var resp model.AgentResponse
	switch intent {
	case model.AgentSEO:
		resp = o.seo.Process(ctx, seo.Request{
			Query:         req.Query,
			SheetID:       req.SheetID,
			JSONRequested: jsonRequested,
		})
	case model.AgentMulti:
		resp = o.processMulti(ctx, logger, req, jsonRequested)
	default:
		resp = o.analytics.Process(ctx, analytics.Request{
			Query:         req.Query,
			PropertyID:    req.PropertyID,
			JSONRequested: jsonRequested,
		})
	}

	logger.Info("query processing complete", zap.String("agent_used", resp.AgentUsed))
	return resp
}
