package seo

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
	"github.com/sells-group/insights-agent/internal/tabular"
	"github.com/sells-group/insights-agent/pkg/sheets"
)

// Hybrid bounds: medium result sets get answer plus data; tiny ones are
// fully covered by the answer and huge ones are already limit-capped.
const (
	hybridMinRows = 10
	hybridMaxRows = 100
)

// Agent answers SEO questions against a crawl export in Google Sheets.
type Agent struct {
	llm            llm.Capability
	sheets         sheets.Client
	defaultSheetID string
	aliases        map[string]string
}

// New creates an SEO agent. aliasOverridePath may be empty to use the
// built-in alias table only.
func New(capability llm.Capability, client sheets.Client, defaultSheetID, aliasOverridePath string) *Agent {
	return &Agent{
		llm:            capability,
		sheets:         client,
		defaultSheetID: defaultSheetID,
		aliases:        Aliases(aliasOverridePath),
	}
}

// Request is one SEO question.
type Request struct {
	Query         string
	SheetID       string
	JSONRequested bool
}

// Process runs the pipeline: fetch schema, parse, resolve columns,
// transform, synthesize. All failures surface as answers.
func (a *Agent) Process(ctx context.Context, req Request) model.AgentResponse {
	sheetID := req.SheetID
	if sheetID == "" {
		sheetID = a.defaultSheetID
	}
	if sheetID == "" {
		return model.ErrorResponse(model.AgentSEO, sheetGuidance)
	}

	table, errAnswer := a.fetchTable(ctx, sheetID)
	if errAnswer != "" {
		return model.ErrorResponse(model.AgentSEO, errAnswer)
	}
	if table.RowCount() == 0 {
		return model.ErrorResponse(model.AgentSEO, emptySheetAnswer)
	}

	parsed := a.parseQuery(ctx, req.Query, table.Columns)
	zap.L().Info("seo query parsed",
		zap.Int("filters", len(parsed.Filters)),
		zap.Strings("select_columns", parsed.SelectColumns),
		zap.String("group_by", parsed.GroupBy),
		zap.String("aggregation", parsed.Aggregation),
		zap.Int("limit", parsed.Limit),
	)

	resolved, failures := a.resolveColumns(parsed, table.Columns)
	if len(failures) > 0 {
		return model.ErrorResponse(model.AgentSEO, formatResolutionErrors(failures))
	}

	result, info := Transform(table, parsed, resolved)
	zap.L().Info("seo transform complete",
		zap.Int("original_rows", info.OriginalRows),
		zap.Int("final_rows", info.FinalRows),
		zap.Int("filters_applied", len(info.FiltersApplied)),
		zap.String("grouped_by", info.GroupedBy),
	)

	return a.synthesize(ctx, req.Query, result, info, req.JSONRequested)
}

func (a *Agent) fetchTable(ctx context.Context, sheetID string) (*tabular.Table, string) {
	table, err := a.sheets.FetchTable(ctx, sheetID)
	if err != nil {
		var notFound *sheets.NotFoundError
		if eris.As(err, &notFound) {
			return nil, notFound.Error()
		}
		var apiErr *sheets.APIError
		if eris.As(err, &apiErr) {
			return nil, "Error accessing SEO data: " + apiErr.Error()
		}
		zap.L().Error("sheet fetch failed", zap.Error(err))
		return nil, "An error occurred processing your SEO query: " + err.Error()
	}
	return table, ""
}

// parseQuery extracts structured parameters, falling back to a bare
// select-addresses query when extraction fails.
func (a *Agent) parseQuery(ctx context.Context, query string, columns []string) model.SEOQuery {
	defaults := model.SEOQuery{
		SelectColumns: []string{"Address"},
		Limit:         defaultRowLimit,
		SortBy:        model.SortSpec{Direction: "asc"},
	}

	raw, err := a.llm.Extract(ctx, parseSystemPrompt(columns), "Parse this SEO query: "+query)
	if err != nil {
		zap.L().Warn("seo extraction failed, using defaults", zap.Error(err))
		return defaults
	}

	var parsed model.SEOQuery
	if err := json.Unmarshal(raw, &parsed); err != nil {
		zap.L().Warn("seo extraction unmarshal failed, using defaults", zap.Error(err))
		return defaults
	}

	if len(parsed.SelectColumns) == 0 {
		parsed.SelectColumns = []string{"Address"}
	}
	if parsed.Limit <= 0 {
		parsed.Limit = defaultRowLimit
	}
	if parsed.SortBy.Direction == "" {
		parsed.SortBy.Direction = "asc"
	}
	return parsed
}

// resolveColumns maps every referenced field to a real column. The
// whole request aborts if any reference fails, and every failure is
// reported, not just the first.
func (a *Agent) resolveColumns(parsed model.SEOQuery, columns []string) (map[string]string, []string) {
	resolved := make(map[string]string)
	var failures []string
	opts := resolve.SEOOptions()

	for _, term := range parsed.FieldRefs() {
		res := resolve.Resolve(term, columns, a.aliases, opts)
		if res.Resolved() {
			resolved[term] = res.Resolution.Canonical
			if res.Resolution.Warning != "" {
				zap.L().Info("seo column resolved with warning",
					zap.String("term", term),
					zap.String("column", res.Resolution.Canonical),
					zap.String("warning", res.Resolution.Warning),
				)
			}
			continue
		}
		failures = append(failures, resolutionError(res.Failure, columns))
	}
	return resolved, failures
}

func resolutionError(f *resolve.Failure, columns []string) string {
	suggestion := ""
	if len(f.Suggestions) > 0 {
		suggestion = fmt.Sprintf(" Did you mean: %s?", strings.Join(f.Suggestions, ", "))
	}
	ellipsis := ""
	if len(columns) > len(f.Samples) {
		ellipsis = "..."
	}
	return fmt.Sprintf("Unknown field '%s'.%s Available columns include: %s%s",
		f.Term, suggestion, strings.Join(f.Samples, ", "), ellipsis)
}

func formatResolutionErrors(errors []string) string {
	if len(errors) == 1 {
		return errors[0]
	}
	var b strings.Builder
	b.WriteString("Could not resolve the following fields:\n")
	for _, e := range errors {
		b.WriteString("• " + e + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (a *Agent) synthesize(ctx context.Context, query string, result *TransformResult, info ProcessingInfo, jsonRequested bool) model.AgentResponse {
	// Medium result sets offer their payload to the format selector;
	// huge ones are already limit-capped and tiny ones fit in the answer.
	var payload map[string]any
	if len(result.Rows) >= hybridMinRows && len(result.Rows) <= hybridMaxRows {
		payload = dataPayload(result)
	}

	switch format.Select(jsonRequested, payload) {
	case format.JSON:
		return model.AgentResponse{
			Answer:    format.ConfirmationAnswer,
			Data:      dataPayload(result),
			AgentUsed: model.AgentSEO,
		}
	case format.Hybrid:
		return model.AgentResponse{
			Answer:    a.generateSummary(ctx, query, result, info),
			Data:      payload,
			AgentUsed: model.AgentSEO,
		}
	default:
		return model.AgentResponse{
			Answer:    a.generateSummary(ctx, query, result, info),
			AgentUsed: model.AgentSEO,
		}
	}
}

func dataPayload(result *TransformResult) map[string]any {
	if len(result.Rows) == 0 {
		return map[string]any{"rows": []map[string]any{}, "columns": []string{}}
	}
	return map[string]any{
		"rows":       result.Rows,
		"columns":    result.Columns,
		"total_rows": len(result.Rows),
	}
}

func (a *Agent) generateSummary(ctx context.Context, query string, result *TransformResult, info ProcessingInfo) string {
	if len(result.Rows) == 0 {
		return fmt.Sprintf("No results found for your query. Searched through %d rows with %d filter(s) applied.",
			info.OriginalRows, len(info.FiltersApplied))
	}

	groupedBy := info.GroupedBy
	if groupedBy == "" {
		groupedBy = "None"
	}
	aggregation := info.Aggregation
	if aggregation == "" {
		aggregation = "None"
	}

	prompt := fmt.Sprintf(`Summarize these SEO analysis results in natural language.

Original Query: %s

Processing Info:
- Original rows: %d
- Filters applied: %d
- Final rows: %d
- Grouped by: %s
- Aggregation: %s

Sample Results (first 10 rows):
%s

Provide a clear, helpful summary that:
1. Directly answers the user's question
2. Highlights key findings
3. Mentions important numbers/percentages
4. Provides actionable SEO insights if relevant

Keep the response concise but informative (2-4 sentences for simple queries, more for complex analysis).`,
		query, info.OriginalRows, len(info.FiltersApplied), info.FinalRows,
		groupedBy, aggregation, sampleRows(result, 10))

	answer, err := a.llm.Generate(ctx, synthesisSystemPrompt, prompt)
	if err != nil {
		zap.L().Warn("seo synthesis failed, using basic summary", zap.Error(err))
		return fmt.Sprintf("Found %d results matching your query (filtered from %d total rows).",
			len(result.Rows), info.OriginalRows)
	}
	return strings.TrimSpace(answer)
}

// sampleRows renders the first n rows as aligned-ish text for the
// synthesis prompt.
func sampleRows(result *TransformResult, n int) string {
	if len(result.Rows) < n {
		n = len(result.Rows)
	}
	var b strings.Builder
	b.WriteString(strings.Join(result.Columns, " | "))
	for _, row := range result.Rows[:n] {
		cells := make([]string, len(result.Columns))
		for i, c := range result.Columns {
			cells[i] = cellString(row[c])
		}
		b.WriteString("\n" + strings.Join(cells, " | "))
	}
	return b.String()
}
