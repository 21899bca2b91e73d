package main

import (
	"github.com/sells-group/insights-agent/internal/analytics"
	"github.com/sells-group/insights-agent/internal/config"
	"github.com/sells-group/insights-agent/internal/llm"
	"github.com/sells-group/insights-agent/internal/orchestrator"
	"github.com/sells-group/insights-agent/internal/seo"
	"github.com/sells-group/insights-agent/pkg/anthropic"
	"github.com/sells-group/insights-agent/pkg/ga4"
	"github.com/sells-group/insights-agent/pkg/sheets"
)

// buildOrchestrator wires the agents from configuration.
func buildOrchestrator(cfg *config.Config) *orchestrator.Orchestrator {
	capability := llm.NewAnthropic(
		anthropic.NewClient(cfg.Anthropic.Key),
		llm.Options{
			FastModel:      cfg.Anthropic.FastModel,
			SynthesisModel: cfg.Anthropic.SynthesisModel,
			MaxTokens:      cfg.Anthropic.MaxTokens,
		},
	)

	analyticsAgent := analytics.New(
		capability,
		ga4.NewClient(cfg.GA4.Token),
		cfg.GA4.PropertyID,
	)

	seoAgent := seo.New(
		capability,
		sheets.NewClient(cfg.Sheets.Token),
		cfg.Sheets.SheetID,
		cfg.SEO.AliasFile,
	)

	return orchestrator.New(capability, analyticsAgent, seoAgent)
}
