package model

// AnalyticsQuery is the structured form extracted from a free-text
// analytics question. Defaults are applied by the pipeline when the
// extraction omits a field.
type AnalyticsQuery struct {
	Metrics    []string `json:"metrics"`
	Dimensions []string `json:"dimensions"`
	StartDate  string   `json:"start_date"`
	EndDate    string   `json:"end_date"`
	Limit      int      `json:"limit"`
	Reasoning  string   `json:"reasoning"`
}

// FilterSpec is one row filter in an SEO query. Field carries the
// user's own term; resolution to a real column happens later.
type FilterSpec struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// SortSpec names the sort column and direction for an SEO query.
type SortSpec struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
}

// SEOQuery is the structured form extracted from a free-text SEO
// question against the crawl-export table.
type SEOQuery struct {
	Filters       []FilterSpec `json:"filters"`
	SelectColumns []string     `json:"select_columns"`
	GroupBy       string       `json:"group_by"`
	Aggregation   string       `json:"aggregation"`
	Limit         int          `json:"limit"`
	SortBy        SortSpec     `json:"sort_by"`
	Reasoning     string       `json:"reasoning"`
}

// FieldRefs returns every field name referenced anywhere in the query:
// filters, select list, group-by, and sort field. Duplicates removed,
// first-reference order preserved.
func (q *SEOQuery) FieldRefs() []string {
	seen := make(map[string]bool)
	var refs []string
	add := func(f string) {
		if f == "" || seen[f] {
			return
		}
		seen[f] = true
		refs = append(refs, f)
	}
	for _, f := range q.Filters {
		add(f.Field)
	}
	for _, c := range q.SelectColumns {
		add(c)
	}
	add(q.GroupBy)
	add(q.SortBy.Field)
	return refs
}
