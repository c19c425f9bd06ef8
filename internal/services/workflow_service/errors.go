package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrFlowNotOpen   = errors.New("flow is not open")
	ErrFlowBusy      = errors.New("another flow is active")
	ErrSubmitPending = errors.New("submit already pending")
)

const (
	CodeMissingField     = "missing_field"
	CodeNoRatingSelected = "no_rating_selected"
	CodeInvalidRating    = "invalid_rating"
)

// ValidationError is a recoverable draft error. The draft is kept.
type ValidationError struct {
	Code   string
	Fields []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed: " + e.Code
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Code, strings.Join(e.Fields, ", "))
}

// CommitError wraps a backend failure. The draft is kept and the submit can be retried.
type CommitError struct {
	Flow FlowName
	Err  error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("%s commit failed: %v", e.Flow, e.Err)
}

func (e *CommitError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err carries a ValidationError with the given code.
// An empty code matches any validation error.
func IsValidationError(err error, code string) bool {
	var verr *ValidationError
	if !errors.As(err, &verr) {
		return false
	}
	return code == "" || verr.Code == code
}
