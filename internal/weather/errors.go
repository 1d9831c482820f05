package weather

import (
	"errors"
	"fmt"
)

// Sentinel errors for upstream API outcomes. Callers classify with
// errors.Is; the dispatcher renders them as user-facing text.
var (
	// ErrInvalidRequest covers 400 responses from the upstream API.
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrRateLimited covers 429 responses.
	ErrRateLimited = errors.New("upstream rate limit exceeded, try again later")

	// ErrUpstreamUnavailable covers 5xx responses and an open circuit
	// breaker.
	ErrUpstreamUnavailable = errors.New("weather service is unavailable")

	// ErrNetwork covers transport-level failures: connection refused,
	// timeouts, DNS. The underlying cause is appended to the message.
	ErrNetwork = errors.New("network error")
)

// APIError is returned for non-2xx statuses that do not fall into one of
// the sentinel categories above. Body holds an excerpt of the response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upstream API error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("upstream API error: status %d: %s", e.StatusCode, e.Body)
}
