package planner

import "errors"

// The four failure kinds of the recovery pipeline. Callers match them with
// errors.Is; each PlanError unwraps to exactly one kind.
var (
	// ErrEmptyOrNonJSON: the model returned nothing, or text with no opening brace.
	ErrEmptyOrNonJSON = errors.New("model response contains no JSON object")
	// ErrUnbalancedJSON: an object starts but its brace depth never returns to zero.
	ErrUnbalancedJSON = errors.New("model response JSON object is never closed")
	// ErrInvalidJSON: the extracted text fails to parse even after repair.
	ErrInvalidJSON = errors.New("extracted text is not valid JSON")
	// ErrSchemaMismatch: the JSON parses but does not fit the plan contract.
	ErrSchemaMismatch = errors.New("plan JSON does not match the expected schema")
)

// excerptLimit bounds how much of the offending text an error carries.
const excerptLimit = 1200

// PlanError is a recovery-pipeline failure. It keeps the failure kind
// (matchable), the underlying parser/validator detail, and a bounded excerpt
// of the text that caused it so the failure can be reproduced offline.
type PlanError struct {
	Kind    error
	Detail  string
	Excerpt string
}

func (e *PlanError) Error() string {
	if e.Detail == "" {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Detail
}

func (e *PlanError) Unwrap() error { return e.Kind }

// Label returns a stable machine-readable name for the failure kind.
func (e *PlanError) Label() string {
	switch e.Kind {
	case ErrEmptyOrNonJSON:
		return "empty_or_non_json_response"
	case ErrUnbalancedJSON:
		return "unbalanced_json_response"
	case ErrInvalidJSON:
		return "invalid_json"
	case ErrSchemaMismatch:
		return "schema_mismatch"
	}
	return "unknown"
}

func excerpt(s string) string {
	if len(s) <= excerptLimit {
		return s
	}
	return s[:excerptLimit] + "...(truncated)"
}
