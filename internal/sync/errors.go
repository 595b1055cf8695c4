package sync

import "fmt"

// NetworkError is retryable: connectivity loss, timeouts, 5xx. The entry
// stays in the queue and comes back on the next eligible cycle.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("sync network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ValidationError is terminal: the server rejected the payload (4xx).
// Retrying the same bytes cannot succeed; the entry is parked for the
// operator instead.
type ValidationError struct {
	StatusCode int
	Message    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("sync validation error (%d): %s", e.StatusCode, e.Message)
}
