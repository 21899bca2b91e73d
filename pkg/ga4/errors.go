package ga4

import "fmt"

// PropertyError indicates an invalid or missing GA4 property ID. It is
// a precondition failure, detected before any API call is made.
type PropertyError struct {
	ID     string
	Reason string
}

func (e *PropertyError) Error() string {
	return fmt.Sprintf("ga4: property %q: %s", e.ID, e.Reason)
}

// APIError is a non-2xx response from the Analytics Data API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ga4: api error %d: %s", e.StatusCode, e.Message)
}
