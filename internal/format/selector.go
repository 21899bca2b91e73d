// Package format decides whether a reply goes out as natural language
// only, JSON only, or a hybrid of answer plus data payload.
package format

import "strings"

// Format is the selected response shape.
type Format int

const (
	// NL returns the answer only; any payload is suppressed.
	NL Format = iota
	// JSON returns the payload verbatim with a fixed confirmation answer.
	JSON
	// Hybrid returns both the answer and the payload.
	Hybrid
)

// Thresholds for the hybrid decision.
const (
	hybridRowThreshold    = 10
	hybridSourceThreshold = 2
	hybridDepthThreshold  = 3

	// depthCap bounds the payload walk; anything deeper than the cap
	// already exceeds hybridDepthThreshold.
	depthCap = 5
)

// ConfirmationAnswer is the fixed answer attached to JSON-only replies.
const ConfirmationAnswer = "Results returned in JSON format"

// Select is a pure function of the explicit-JSON flag and the payload
// shape. Rules are evaluated in order: explicit JSON wins, an absent
// payload forces NL, then a large row count, multiple aggregated
// sources, or deep nesting selects Hybrid; otherwise NL.
func Select(explicitJSON bool, payload map[string]any) Format {
	if explicitJSON {
		return JSON
	}
	if len(payload) == 0 {
		return NL
	}
	if RowCount(payload) > hybridRowThreshold {
		return Hybrid
	}
	if SourceCount(payload) >= hybridSourceThreshold {
		return Hybrid
	}
	if NestingDepth(payload) > hybridDepthThreshold {
		return Hybrid
	}
	return NL
}

// RowCount returns the length of the payload's "rows" entry, or 0 if
// the payload carries no row list.
func RowCount(payload map[string]any) int {
	rows, ok := payload["rows"]
	if !ok {
		return 0
	}
	switch r := rows.(type) {
	case []map[string]any:
		return len(r)
	case []any:
		return len(r)
	default:
		return 0
	}
}

// SourceCount counts distinct "source_" keys, the shape produced by
// multi-agent aggregation.
func SourceCount(payload map[string]any) int {
	n := 0
	for k := range payload {
		if strings.HasPrefix(k, "source_") {
			n++
		}
	}
	return n
}

// NestingDepth walks the payload's mapping/sequence structure and
// returns the nesting depth, capped at depthCap to bound the walk on
// pathological payloads.
func NestingDepth(payload map[string]any) int {
	return depth(payload, 0)
}

func depth(v any, level int) int {
	if level >= depthCap {
		return level
	}
	switch t := v.(type) {
	case map[string]any:
		maxDepth := level
		for _, child := range t {
			if d := depth(child, level+1); d > maxDepth {
				maxDepth = d
			}
		}
		return maxDepth
	case []map[string]any:
		maxDepth := level
		for _, child := range t {
			if d := depth(child, level+1); d > maxDepth {
				maxDepth = d
			}
		}
		return maxDepth
	case []any:
		maxDepth := level
		for _, child := range t {
			if d := depth(child, level+1); d > maxDepth {
				maxDepth = d
			}
		}
		return maxDepth
	default:
		return level
	}
}
