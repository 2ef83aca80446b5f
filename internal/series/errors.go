package series

import (
	"errors"
	"fmt"
)

var (
	ErrMissingFile      = errors.New("please upload a file")
	ErrInvalidEncoding  = errors.New("file is not valid UTF-8")
	ErrMalformedCSV     = errors.New("file is not valid CSV")
	ErrMissingColumn    = errors.New("missing required column")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidValue     = errors.New("invalid value")
	ErrInsufficientRows = errors.New("at least 2 data rows are required")
)

// InputError reports why an upload could not be turned into a historical series. It wraps one
// of the package sentinels.
type InputError struct {
	Err    error
	Line   int
	Column string
	Value  string
	cause  error
}

func (e *InputError) Error() string {
	msg := e.Err.Error()
	if e.Column != "" {
		msg = fmt.Sprintf("%s %q", msg, e.Column)
	}
	if e.Value != "" {
		msg = fmt.Sprintf("%s %q", msg, e.Value)
	}
	if e.Line > 0 {
		msg = fmt.Sprintf("%s on line %d", msg, e.Line)
	}
	if e.cause != nil {
		msg = fmt.Sprintf("%s, %s", msg, e.cause.Error())
	}
	return msg
}

func (e *InputError) Unwrap() []error {
	if e.cause != nil {
		return []error{e.Err, e.cause}
	}
	return []error{e.Err}
}
