package seo

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/insights-agent/internal/model"
	"github.com/sells-group/insights-agent/internal/tabular"
)

func crawlTable() *tabular.Table {
	return &tabular.Table{
		Columns: []string{"Address", "Status Code", "Indexability", "Word Count", "Title 1"},
		Rows: []map[string]string{
			{"Address": "https://example.com/", "Status Code": "200", "Indexability": "Indexable", "Word Count": "1200", "Title 1": "Home"},
			{"Address": "https://example.com/about", "Status Code": "200", "Indexability": "Indexable", "Word Count": "800", "Title 1": "About"},
			{"Address": "https://example.com/old", "Status Code": "404", "Indexability": "Non-Indexable", "Word Count": "0", "Title 1": ""},
			{"Address": "https://example.com/tmp", "Status Code": "301", "Indexability": "Non-Indexable", "Word Count": "150", "Title 1": "Temp"},
		},
	}
}

func identityResolved(terms ...string) map[string]string {
	out := make(map[string]string, len(terms))
	for _, t := range terms {
		out[t] = t
	}
	return out
}

func TestTransformFilterEquals(t *testing.T) {
	q := model.SEOQuery{
		Filters: []model.FilterSpec{{Field: "Status Code", Operator: "equals", Value: "404"}},
	}
	result, info := Transform(crawlTable(), q, identityResolved("Status Code"))

	require.Len(t, result.Rows, 1)
	assert.Equal(t, "https://example.com/old", result.Rows[0]["Address"])
	require.Len(t, info.FiltersApplied, 1)
	assert.Equal(t, 4, info.FiltersApplied[0].RowsBefore)
	assert.Equal(t, 1, info.FiltersApplied[0].RowsAfter)
}

func TestTransformFilterEqualsCaseInsensitive(t *testing.T) {
	q := model.SEOQuery{
		Filters: []model.FilterSpec{{Field: "Indexability", Operator: "equals", Value: "indexable"}},
	}
	result, _ := Transform(crawlTable(), q, identityResolved("Indexability"))
	assert.Len(t, result.Rows, 2)
}

func TestTransformFilterOperators(t *testing.T) {
	cases := []struct {
		op    string
		field string
		value string
		want  int
	}{
		{"not_equals", "Status Code", "200", 2},
		{"contains", "Address", "example.com/o", 1},
		{"not_contains", "Address", "/about", 3},
		{"greater_than", "Word Count", "500", 2},
		{"less_than", "Word Count", "200", 2},
		{"is_empty", "Title 1", "", 1},
		{"is_not_empty", "Title 1", "", 3},
	}
	for _, tc := range cases {
		t.Run(tc.op, func(t *testing.T) {
			q := model.SEOQuery{
				Filters: []model.FilterSpec{{Field: tc.field, Operator: tc.op, Value: tc.value}},
			}
			result, _ := Transform(crawlTable(), q, identityResolved(tc.field))
			assert.Len(t, result.Rows, tc.want)
		})
	}
}

func TestTransformUnknownOperatorKeepsRows(t *testing.T) {
	q := model.SEOQuery{
		Filters: []model.FilterSpec{{Field: "Status Code", Operator: "matches_regex", Value: "x"}},
	}
	result, _ := Transform(crawlTable(), q, identityResolved("Status Code"))
	assert.Len(t, result.Rows, 4)
}

func TestTransformUnresolvedFilterSkipped(t *testing.T) {
	q := model.SEOQuery{
		Filters: []model.FilterSpec{{Field: "nonexistent", Operator: "equals", Value: "x"}},
	}
	result, info := Transform(crawlTable(), q, map[string]string{})
	assert.Len(t, result.Rows, 4)
	assert.Empty(t, info.FiltersApplied)
}

func TestTransformGroupByCount(t *testing.T) {
	q := model.SEOQuery{GroupBy: "Status Code"}
	result, info := Transform(crawlTable(), q, identityResolved("Status Code"))

	assert.Equal(t, []string{"Status Code", "count"}, result.Columns)
	require.Len(t, result.Rows, 3)
	// Descending by count; ties keep first-seen order.
	assert.Equal(t, "200", result.Rows[0]["Status Code"])
	assert.Equal(t, 2, result.Rows[0]["count"])
	assert.Equal(t, "404", result.Rows[1]["Status Code"])
	assert.Equal(t, "301", result.Rows[2]["Status Code"])
	assert.Equal(t, "count", info.Aggregation)
}

func TestTransformGroupByPercentage(t *testing.T) {
	q := model.SEOQuery{GroupBy: "Status Code", Aggregation: "percentage"}
	result, _ := Transform(crawlTable(), q, identityResolved("Status Code"))

	assert.Equal(t, []string{"Status Code", "count", "percentage"}, result.Columns)
	require.Len(t, result.Rows, 3)
	assert.Equal(t, 50.0, result.Rows[0]["percentage"])
	assert.Equal(t, 25.0, result.Rows[1]["percentage"])
}

func TestTransformPercentageRounding(t *testing.T) {
	table := &tabular.Table{
		Columns: []string{"Indexability"},
		Rows: []map[string]string{
			{"Indexability": "Indexable"},
			{"Indexability": "Indexable"},
			{"Indexability": "Non-Indexable"},
		},
	}
	q := model.SEOQuery{GroupBy: "Indexability", Aggregation: "percentage"}
	result, _ := Transform(table, q, identityResolved("Indexability"))

	assert.Equal(t, 66.67, result.Rows[0]["percentage"])
	assert.Equal(t, 33.33, result.Rows[1]["percentage"])
}

func TestTransformGroupBySumUsesNumericColumns(t *testing.T) {
	q := model.SEOQuery{GroupBy: "Indexability", Aggregation: "sum"}
	result, _ := Transform(crawlTable(), q, identityResolved("Indexability"))

	// Status Code and Word Count both parse numerically on every row.
	assert.Contains(t, result.Columns, "Word Count")
	require.Len(t, result.Rows, 2)
	for _, row := range result.Rows {
		if row["Indexability"] == "Indexable" {
			assert.Equal(t, 2000.0, row["Word Count"])
		}
	}
}

func TestTransformGroupByAverage(t *testing.T) {
	q := model.SEOQuery{GroupBy: "Indexability", Aggregation: "average"}
	result, _ := Transform(crawlTable(), q, identityResolved("Indexability"))

	for _, row := range result.Rows {
		if row["Indexability"] == "Indexable" {
			assert.Equal(t, 1000.0, row["Word Count"])
		}
	}
}

func TestTransformSumWithoutNumericColumnsFallsBackToCount(t *testing.T) {
	table := &tabular.Table{
		Columns: []string{"Indexability", "Title 1"},
		Rows: []map[string]string{
			{"Indexability": "Indexable", "Title 1": "Home"},
			{"Indexability": "Indexable", "Title 1": "About"},
		},
	}
	q := model.SEOQuery{GroupBy: "Indexability", Aggregation: "sum"}
	result, _ := Transform(table, q, identityResolved("Indexability"))

	assert.Equal(t, []string{"Indexability", "count"}, result.Columns)
	assert.Equal(t, 2, result.Rows[0]["count"])
}

func TestTransformSortNumericDesc(t *testing.T) {
	q := model.SEOQuery{
		SortBy: model.SortSpec{Field: "Word Count", Direction: "desc"},
	}
	result, _ := Transform(crawlTable(), q, identityResolved("Word Count"))

	assert.Equal(t, "1200", result.Rows[0]["Word Count"])
	assert.Equal(t, "0", result.Rows[3]["Word Count"])
}

func TestTransformSortAscDefault(t *testing.T) {
	q := model.SEOQuery{
		SortBy: model.SortSpec{Field: "Word Count", Direction: "asc"},
	}
	result, _ := Transform(crawlTable(), q, identityResolved("Word Count"))
	assert.Equal(t, "0", result.Rows[0]["Word Count"])
}

func TestTransformSortSkippedWhenGrouped(t *testing.T) {
	q := model.SEOQuery{
		GroupBy: "Status Code",
		SortBy:  model.SortSpec{Field: "Status Code", Direction: "asc"},
	}
	result, _ := Transform(crawlTable(), q, identityResolved("Status Code"))

	// Grouping's own descending-count order stands; the sort stage is a
	// no-op on grouped output.
	assert.Equal(t, "200", result.Rows[0]["Status Code"])
}

func TestTransformLimit(t *testing.T) {
	q := model.SEOQuery{Limit: 2}
	result, info := Transform(crawlTable(), q, map[string]string{})
	assert.Len(t, result.Rows, 2)
	assert.Equal(t, 2, info.FinalRows)
}

func TestTransformDefaultLimit(t *testing.T) {
	rows := make([]map[string]string, 150)
	for i := range rows {
		rows[i] = map[string]string{"Address": fmt.Sprintf("https://example.com/%d", i)}
	}
	table := &tabular.Table{Columns: []string{"Address"}, Rows: rows}

	result, _ := Transform(table, model.SEOQuery{}, map[string]string{})
	assert.Len(t, result.Rows, 100)
}

func TestTransformProjection(t *testing.T) {
	q := model.SEOQuery{
		SelectColumns: []string{"Address", "Status Code", "Address"},
	}
	result, _ := Transform(crawlTable(), q, identityResolved("Address", "Status Code"))

	assert.Equal(t, []string{"Address", "Status Code"}, result.Columns)
	for _, row := range result.Rows {
		assert.Len(t, row, 2)
		assert.NotContains(t, row, "Title 1")
	}
}

func TestTransformProjectionKeepsAggregates(t *testing.T) {
	q := model.SEOQuery{
		GroupBy:       "Status Code",
		Aggregation:   "percentage",
		SelectColumns: []string{"Status Code"},
	}
	result, _ := Transform(crawlTable(), q, identityResolved("Status Code"))

	assert.Contains(t, result.Columns, "count")
	assert.Contains(t, result.Columns, "percentage")
}
