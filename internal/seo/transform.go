package seo

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/insights-agent/internal/model"
	"github.com/sells-group/insights-agent/internal/tabular"
)

const defaultRowLimit = 100

// aggregateColumns are the column names grouping can introduce; the
// projection stage always preserves them.
var aggregateColumns = map[string]bool{
	"count":      true,
	"sum":        true,
	"average":    true,
	"percentage": true,
}

// FilterRecord describes one applied filter and its row-count effect.
type FilterRecord struct {
	Field      string
	Column     string
	Operator   string
	Value      string
	RowsBefore int
	RowsAfter  int
}

// ProcessingInfo summarizes what the transform did, for the synthesis
// prompt and for logging.
type ProcessingInfo struct {
	OriginalRows   int
	FiltersApplied []FilterRecord
	GroupedBy      string
	Aggregation    string
	FinalRows      int
	FinalColumns   []string
}

// TransformResult is the processed table: an ordered column list and
// row maps whose values are strings for source cells and numbers for
// aggregate cells.
type TransformResult struct {
	Columns []string
	Rows    []map[string]any
}

// Transform applies the query's filters, grouping, sorting, limit, and
// projection to the table, in that order. resolved maps each user term
// to its actual column; terms absent from the map were never referenced
// or already failed resolution upstream.
func Transform(table *tabular.Table, q model.SEOQuery, resolved map[string]string) (*TransformResult, ProcessingInfo) {
	info := ProcessingInfo{OriginalRows: table.RowCount()}

	cols := append([]string(nil), table.Columns...)
	rows := make([]map[string]any, len(table.Rows))
	for i, r := range table.Rows {
		row := make(map[string]any, len(r))
		for k, v := range r {
			row[k] = v
		}
		rows[i] = row
	}

	// Filters.
	for _, f := range q.Filters {
		column, ok := resolved[f.Field]
		if !ok || !contains(cols, column) {
			continue
		}
		before := len(rows)
		rows = applyFilter(rows, column, f.Operator, f.Value)
		info.FiltersApplied = append(info.FiltersApplied, FilterRecord{
			Field:      f.Field,
			Column:     column,
			Operator:   f.Operator,
			Value:      f.Value,
			RowsBefore: before,
			RowsAfter:  len(rows),
		})
	}

	// Grouping and aggregation.
	grouped := false
	if q.GroupBy != "" {
		if groupCol, ok := resolved[q.GroupBy]; ok && contains(cols, groupCol) {
			agg := q.Aggregation
			if agg == "" {
				agg = "count"
			}
			rows, cols = applyGrouping(rows, cols, groupCol, agg)
			grouped = true
			info.GroupedBy = groupCol
			info.Aggregation = agg
		}
	}

	// Sorting, when the sort column survived the stages above.
	if q.SortBy.Field != "" {
		if sortCol, ok := resolved[q.SortBy.Field]; ok && contains(cols, sortCol) && !grouped {
			ascending := q.SortBy.Direction != "desc"
			sortRows(rows, sortCol, ascending)
		}
	}

	// Limit.
	limit := q.Limit
	if limit <= 0 {
		limit = defaultRowLimit
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}

	// Projection: the resolved select columns, plus any aggregate
	// columns grouping introduced.
	if len(q.SelectColumns) > 0 {
		var selected []string
		for _, term := range q.SelectColumns {
			if col, ok := resolved[term]; ok && contains(cols, col) && !contains(selected, col) {
				selected = append(selected, col)
			}
		}
		if len(selected) > 0 {
			for _, col := range cols {
				if aggregateColumns[col] && !contains(selected, col) {
					selected = append(selected, col)
				}
			}
			rows = project(rows, selected)
			cols = selected
		}
	}

	info.FinalRows = len(rows)
	info.FinalColumns = cols

	return &TransformResult{Columns: cols, Rows: rows}, info
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func cellString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}

// applyFilter keeps the rows matching one condition. Unknown operators
// leave the rows untouched.
func applyFilter(rows []map[string]any, column, operator, value string) []map[string]any {
	valueLower := strings.ToLower(value)
	keep := func(row map[string]any) bool {
		cell := cellString(row[column])
		switch operator {
		case "equals":
			return strings.ToLower(cell) == valueLower
		case "not_equals":
			return strings.ToLower(cell) != valueLower
		case "contains":
			return strings.Contains(strings.ToLower(cell), valueLower)
		case "not_contains":
			return !strings.Contains(strings.ToLower(cell), valueLower)
		case "greater_than":
			return compareNumericOrString(cell, value) > 0
		case "less_than":
			return compareNumericOrString(cell, value) < 0
		case "is_empty":
			return strings.TrimSpace(cell) == ""
		case "is_not_empty":
			return strings.TrimSpace(cell) != ""
		default:
			zap.L().Warn("unknown filter operator", zap.String("operator", operator))
			return true
		}
	}

	out := rows[:0:0]
	for _, row := range rows {
		if keep(row) {
			out = append(out, row)
		}
	}
	return out
}

// compareNumericOrString compares numerically when both sides parse,
// lexically otherwise.
func compareNumericOrString(a, b string) int {
	af, aok := tabular.ParseNumber(a)
	bf, bok := tabular.ParseNumber(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}

// applyGrouping collapses rows into one row per group value. count and
// percentage aggregate row counts; sum and average aggregate every
// numeric column and fall back to count when none exists. Output is
// sorted descending by the aggregate, first-seen group order on ties.
func applyGrouping(rows []map[string]any, cols []string, groupCol, agg string) ([]map[string]any, []string) {
	var order []string
	groups := make(map[string][]map[string]any)
	for _, row := range rows {
		key := cellString(row[groupCol])
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], row)
	}

	switch agg {
	case "sum", "average":
		numericCols := numericColumns(rows, cols, groupCol)
		if len(numericCols) == 0 {
			return groupCounts(order, groups, groupCol, len(rows), false)
		}
		out := make([]map[string]any, 0, len(order))
		for _, key := range order {
			row := map[string]any{groupCol: key}
			for _, nc := range numericCols {
				total := 0.0
				n := 0
				for _, r := range groups[key] {
					if f, ok := tabular.ParseNumber(cellString(r[nc])); ok {
						total += f
						n++
					}
				}
				if agg == "average" && n > 0 {
					total /= float64(n)
				}
				row[nc] = total
			}
			out = append(out, row)
		}
		sortKey := numericCols[0]
		sort.SliceStable(out, func(i, j int) bool {
			return out[i][sortKey].(float64) > out[j][sortKey].(float64)
		})
		return out, append([]string{groupCol}, numericCols...)

	case "percentage":
		return groupCounts(order, groups, groupCol, len(rows), true)

	default:
		// count, and any unrecognized aggregation.
		return groupCounts(order, groups, groupCol, len(rows), false)
	}
}

func groupCounts(order []string, groups map[string][]map[string]any, groupCol string, total int, withPercentage bool) ([]map[string]any, []string) {
	out := make([]map[string]any, 0, len(order))
	for _, key := range order {
		row := map[string]any{groupCol: key, "count": len(groups[key])}
		if withPercentage {
			pct := 0.0
			if total > 0 {
				pct = math.Round(float64(len(groups[key]))/float64(total)*100*100) / 100
			}
			row["percentage"] = pct
		}
		out = append(out, row)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i]["count"].(int) > out[j]["count"].(int)
	})
	cols := []string{groupCol, "count"}
	if withPercentage {
		cols = append(cols, "percentage")
	}
	return out, cols
}

// numericColumns returns the columns (excluding the group column) where
// every non-empty cell parses as a number and at least one cell does.
func numericColumns(rows []map[string]any, cols []string, groupCol string) []string {
	var out []string
	for _, col := range cols {
		if col == groupCol {
			continue
		}
		hasValue := false
		numeric := true
		for _, row := range rows {
			cell := strings.TrimSpace(cellString(row[col]))
			if cell == "" {
				continue
			}
			if _, ok := tabular.ParseNumber(cell); !ok {
				numeric = false
				break
			}
			hasValue = true
		}
		if numeric && hasValue {
			out = append(out, col)
		}
	}
	return out
}

func sortRows(rows []map[string]any, col string, ascending bool) {
	sort.SliceStable(rows, func(i, j int) bool {
		c := compareNumericOrString(cellString(rows[i][col]), cellString(rows[j][col]))
		if ascending {
			return c < 0
		}
		return c > 0
	})
}

func project(rows []map[string]any, cols []string) []map[string]any {
	out := make([]map[string]any, len(rows))
	for i, row := range rows {
		projected := make(map[string]any, len(cols))
		for _, c := range cols {
			if v, ok := row[c]; ok {
				projected[c] = v
			}
		}
		out[i] = projected
	}
	return out
}
