package seo

import (
	"fmt"
	"strings"
)

// parseSystemPrompt shows the extractor the live schema (capped) plus
// the most common aliases so it emits consistent field terms.
func parseSystemPrompt(columns []string) string {
	const columnCap = 30
	shown := columns
	ellipsis := ""
	if len(shown) > columnCap {
		shown = shown[:columnCap]
		ellipsis = "..."
	}

	return fmt.Sprintf(`You are an SEO data query parser. Extract query parameters from natural language.

The data comes from a Screaming Frog SEO spider export with these columns:
%s%s

Common field aliases you should recognize:
- "url", "page", "address" → Address column
- "title", "page title", "title tag" → Title 1 column
- "meta description", "description" → Meta Description 1 column
- "h1", "heading" → H1-1 column
- "status", "status code" → Status Code column
- "indexable", "indexability" → Indexability column

Extract the following from the query:

1. FILTERS: Conditions to filter rows. Each filter has:
   - field: The column name (use user's term, will be resolved later)
   - operator: "equals", "not_equals", "contains", "not_contains", "greater_than", "less_than", "is_empty", "is_not_empty"
   - value: The comparison value (if applicable)

2. SELECT_COLUMNS: Columns to include in output (use user terms)

3. GROUP_BY: Column to group results by (if aggregation needed)

4. AGGREGATION: One of "count", "sum", "average", "percentage"

5. LIMIT: Number of results (default 100)

6. SORT_BY: Column and direction ("asc" or "desc")

Return JSON only:
{
    "filters": [
        {"field": "status code", "operator": "equals", "value": "404"}
    ],
    "select_columns": ["url", "title", "status code"],
    "group_by": null,
    "aggregation": null,
    "limit": 100,
    "sort_by": {"field": null, "direction": "asc"},
    "reasoning": "Brief explanation"
}

Examples:
- "URLs with missing meta descriptions" → filter: meta description is_empty
- "Pages with 404 errors" → filter: status code equals 404
- "Title tags longer than 60 characters" → filter: title length greater_than 60
- "Group pages by indexability" → group_by: indexability, aggregation: count
- "Percentage of indexable pages" → aggregation: percentage, filter on indexability`,
		strings.Join(shown, ", "), ellipsis)
}

const synthesisSystemPrompt = "You are an SEO expert providing clear, actionable insights from Screaming Frog data."

// sheetGuidance is returned when no sheet ID is configured; the agent
// degrades to guidance rather than failing.
const sheetGuidance = "SEO analysis requires a Google Sheet ID. " +
	"Please configure SHEET_ID in your environment variables. " +
	"The Sheet should contain Screaming Frog export data."

const emptySheetAnswer = "The SEO data sheet is empty. " +
	"Please ensure the Google Sheet contains Screaming Frog export data."
