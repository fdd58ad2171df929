package ai

import (
	"errors"
	"fmt"
)

// ErrCredentialMissing is returned before any network call is attempted
// when no API key is configured. Callers can treat it as a setup problem
// rather than a transient failure.
var ErrCredentialMissing = errors.New("GEMINI_API_KEY is not set")

// BackendCallError wraps any failure that happens while the request is in
// flight: transport errors, non-200 statuses, timeouts, or a response body
// that doesn't match the API envelope. The underlying cause is preserved
// for diagnostics.
type BackendCallError struct {
	Cause error
}

func (e *BackendCallError) Error() string {
	return fmt.Sprintf("AI backend call failed: %v", e.Cause)
}

func (e *BackendCallError) Unwrap() error { return e.Cause }

// MalformedResponseError means the backend answered, but the text it
// returned failed structural or invariant validation. Raw keeps the full
// offending text for logs; it must never be shown to the end user as-is.
type MalformedResponseError struct {
	Path  string // JSON path of the missing/invalid field, when known
	Raw   string
	Cause error
}

func (e *MalformedResponseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("malformed analysis response: missing or invalid field %q", e.Path)
	}
	return fmt.Sprintf("malformed analysis response: %v", e.Cause)
}

func (e *MalformedResponseError) Unwrap() error { return e.Cause }
