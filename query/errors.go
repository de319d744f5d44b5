package query

import (
	"errors"
	"fmt"
)

// ErrInvalidDocument is returned by Validate when a MatchQuery JSON document
// fails schema validation.
var ErrInvalidDocument = errors.New("query: document failed schema validation")

// ValidationError carries the schema validator's per-field failure
// descriptions alongside the sentinel ErrInvalidDocument.
type ValidationError struct {
	Details []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("query: document failed schema validation: %v", e.Details)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidDocument
}
