package trading

import (
	"errors"
	"fmt"
)

// ValidationError reports request parameters that contradict each other,
// such as an inverted date range
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return "Validation error: " + e.Message
}

// NotFoundError reports a well formed query that matched no records
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

// SourceError reports a failure of the record source
type SourceError struct {
	Query string
	Err   error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("record source %s: %v", e.Query, e.Err)
}

// Unwrap returns the underlying source failure
func (e *SourceError) Unwrap() error {
	return e.Err
}

// Messages surfaced to callers when a query yields no records
const (
	MsgDataNotFound   = "Data not found"
	MsgTradesNotFound = "With input params trades not found"
	MsgIncorrectDate  = "Incorrect date"
)

// IsValidation reports whether err wraps a *ValidationError
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsNotFound reports whether err wraps a *NotFoundError
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsSource reports whether err wraps a *SourceError
func IsSource(err error) bool {
	var target *SourceError
	return errors.As(err, &target)
}
