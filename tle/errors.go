package tle

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedLine marks a line that is neither a name line followed
	// by a data pair nor the first line of a data pair.
	ErrMalformedLine = errors.New("tle: line does not start a record")
	// ErrFieldParse marks a fixed-column field that failed numeric or
	// date conversion. *FieldError matches it.
	ErrFieldParse = errors.New("tle: field parse failure")
	// ErrInvalidElements marks a record whose fields decoded but whose
	// orbital elements are out of range.
	ErrInvalidElements = errors.New("tle: orbital elements out of range")
	// ErrUndecodableInput is the only error that fails a whole batch.
	ErrUndecodableInput = errors.New("tle: input is not valid UTF-8 text")

	errTruncated = errors.New("line too short")
	errNotFinite = errors.New("value is not finite")
	errNotDigits = errors.New("expected decimal digits")
)

// FieldError describes a fixed-column field that could not be decoded.
type FieldError struct {
	Field      string
	Start, End int // half-open, 0-indexed columns
	Value      string
	Err        error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("tle: %s (columns %d-%d) %q: %v", e.Field, e.Start, e.End, e.Value, e.Err)
}

// Unwrap lets errors.Is match both ErrFieldParse and the underlying cause.
func (e *FieldError) Unwrap() []error {
	return []error{ErrFieldParse, e.Err}
}

// FailureKind classifies why an input line or record produced no output.
type FailureKind int

const (
	// MalformedLine: a line matched neither record shape and was skipped.
	MalformedLine FailureKind = iota
	// FieldParseFailure: a column failed to convert; the record was dropped.
	FieldParseFailure
	// InvalidElements: the record decoded to out-of-range elements.
	InvalidElements
)

func (k FailureKind) String() string {
	switch k {
	case MalformedLine:
		return "malformed_line"
	case FieldParseFailure:
		return "field_parse"
	case InvalidElements:
		return "invalid_elements"
	default:
		return "unknown"
	}
}

// Failure is one dropped line or record.
type Failure struct {
	Kind FailureKind
	// Line is the 1-based line number in the input where the offending
	// line or record starts.
	Line int
	// Name is the record name when one was present in the input.
	Name string
	Err  error
}

func (f Failure) Error() string {
	if f.Name != "" {
		return fmt.Sprintf("line %d (%s): %v", f.Line, f.Name, f.Err)
	}
	return fmt.Sprintf("line %d: %v", f.Line, f.Err)
}

func kindOf(err error) FailureKind {
	switch {
	case errors.Is(err, ErrMalformedLine):
		return MalformedLine
	case errors.Is(err, ErrFieldParse):
		return FieldParseFailure
	default:
		return InvalidElements
	}
}
