package model

// QueryResult holds rows returned by a data source or transform stage.
// Row order is execution-defined: pass-through from the source, or
// sort-defined after an explicit sort/group stage. Nothing downstream
// reorders rows implicitly.
type QueryResult struct {
	Rows     []map[string]any
	RowCount int
	Metadata map[string]any
}

// Payload converts the result into the wire shape attached to an
// AgentResponse.
func (r *QueryResult) Payload() map[string]any {
	if r == nil {
		return nil
	}
	p := map[string]any{
		"rows":      r.Rows,
		"row_count": r.RowCount,
	}
	if r.Metadata != nil {
		p["metadata"] = r.Metadata
	}
	return p
}
