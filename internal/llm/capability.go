// Package llm exposes the language-model calls the agents depend on as
// a narrow capability interface: structured extraction, single-label
// classification, query decomposition, and free-text generation. Each
// verb is independently mockable, keeping pipeline tests deterministic.
package llm

import (
	"context"
	"encoding/json"
)

// SubTask is one decomposed unit of a multi-agent query, tagged with
// which agent should execute it.
type SubTask struct {
	Agent    string `json:"agent"`
	SubQuery string `json:"sub_query"`
}

// Capability is the contract the pipelines program against. All JSON
// results have code-fence markers stripped before parsing; a result
// that still fails to parse is a capability-level error, which callers
// absorb into defaults rather than failing the request.
type Capability interface {
	// Extract asks the model for structured parameters and returns the
	// raw JSON object for the caller to unmarshal.
	Extract(ctx context.Context, system, user string) (json.RawMessage, error)

	// Classify returns a single trimmed lowercase label.
	Classify(ctx context.Context, system, user string) (string, error)

	// Decompose returns sub-tasks for a multi-agent query. A non-list
	// model response is an error; the orchestrator substitutes the
	// degenerate decomposition.
	Decompose(ctx context.Context, system, user string) ([]SubTask, error)

	// Generate produces a free-text answer.
	Generate(ctx context.Context, system, user string) (string, error)
}
