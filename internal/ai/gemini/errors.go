package gemini

import (
	"errors"
	"fmt"
)

// rawPreviewLimit bounds how much raw model output an InvalidJSONError
// carries for diagnostics.
const rawPreviewLimit = 500

var (
	// ErrNotConfigured means no provider credential is available.
	ErrNotConfigured = errors.New("gemini api key is not configured")

	// ErrEmptyResponse means the provider returned no text at all.
	ErrEmptyResponse = errors.New("gemini api returned empty response")
)

// InvalidJSONError reports model output that was not parseable JSON after
// fence stripping. Raw holds a truncated copy of the output for diagnostics.
type InvalidJSONError struct {
	Raw string
	Err error
}

func (e *InvalidJSONError) Error() string {
	return fmt.Sprintf("model returned invalid JSON: %v", e.Err)
}

func (e *InvalidJSONError) Unwrap() error { return e.Err }

// SchemaError reports parsed JSON that is missing a required field or holds
// the wrong type for one.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("model response field %q: %s", e.Field, e.Reason)
}
