package analytics

import (
	"fmt"
	"strings"
)

// tierDecision records whether the extended tier was enabled for a
// request and why. It is computed once per request and never revoked
// afterwards, so the allowlist can only grow during a request.
type tierDecision struct {
	Extended bool
	Reason   string
}

// resolveTier decides the metric tier for a request. A trigger keyword
// in the query text wins; otherwise any parsed field that only exists
// in the extended tier enables it.
func resolveTier(query string, metrics, dimensions []string) tierDecision {
	lower := strings.ToLower(query)
	for _, trigger := range extendedTriggers {
		if strings.Contains(lower, trigger) {
			return tierDecision{
				Extended: true,
				Reason:   fmt.Sprintf("query mentions %q", trigger),
			}
		}
	}

	extMetrics := Metrics.ExtendedNames()
	for _, m := range metrics {
		if extMetrics[m] {
			return tierDecision{
				Extended: true,
				Reason:   fmt.Sprintf("metric %q requires extended tier", m),
			}
		}
	}

	extDims := Dimensions.ExtendedNames()
	for _, d := range dimensions {
		if extDims[d] {
			return tierDecision{
				Extended: true,
				Reason:   fmt.Sprintf("dimension %q requires extended tier", d),
			}
		}
	}

	return tierDecision{}
}
