package model

// Agent identifiers reported in the agent_used response field.
const (
	AgentAnalytics = "analytics"
	AgentSEO       = "seo"
	AgentMulti     = "multi-agent"
)

// AgentResponse is the unit every pipeline produces and the unit the
// orchestrator aggregates. Answer is always non-empty; Data is nil for
// pure natural-language responses.
type AgentResponse struct {
	Answer    string         `json:"answer"`
	Data      map[string]any `json:"data"`
	AgentUsed string         `json:"agent_used"`
}

// ErrorResponse builds a user-facing response from an error condition.
// User-input and upstream failures surface as guidance text, never as
// an unhandled failure past the pipeline boundary.
func ErrorResponse(agent, answer string) AgentResponse {
	return AgentResponse{
		Answer:    answer,
		Data:      nil,
		AgentUsed: agent,
	}
}
