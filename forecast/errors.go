package forecast

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure of the pipeline wraps exactly one of them.
var (
	ErrInputShape = errors.New("InputShapeError")
	ErrDateParse  = errors.New("DateParseError")
	ErrNumeric    = errors.New("NumericError")
	ErrModel      = errors.New("ModelError")
)

// Error describes a failed request. Index is the offending record, or -1 when
// the failure is not tied to one record.
type Error struct {
	Kind  error
	Index int
	Field string
	Err   error
}

func (e *Error) Error() string {
	switch {
	case e.Index >= 0 && e.Field != "":
		return fmt.Sprintf("%v: record %d field %q: %v", e.Kind, e.Index, e.Field, e.Err)
	case e.Index >= 0:
		return fmt.Sprintf("%v: record %d: %v", e.Kind, e.Index, e.Err)
	default:
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	}
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// Code returns the kind name used in error responses.
func (e *Error) Code() string {
	return e.Kind.Error()
}

func recordError(kind error, index int, field string, err error) *Error {
	return &Error{Kind: kind, Index: index, Field: field, Err: err}
}

func modelError(err error) *Error {
	return &Error{Kind: ErrModel, Index: -1, Err: err}
}
