package engine

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingColumn means the input lacks a required column. Not recoverable.
	ErrMissingColumn = errors.New("missing column")
	// ErrInvalidAggregation means an aggregate needing at least one record ran on an empty table.
	ErrInvalidAggregation = errors.New("invalid aggregation")
	// ErrUnknownColumn means a column was used where its kind does not fit.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrInvalidFilter means a filter value could not be interpreted.
	ErrInvalidFilter = errors.New("invalid filter")
	// ErrParse means a data cell could not be parsed.
	ErrParse = errors.New("parse error")
)

// MissingColumnError names the required columns absent from an input header.
type MissingColumnError struct {
	Columns []Column
}

func (e *MissingColumnError) Error() string {
	names := make([]string, len(e.Columns))
	for i, c := range e.Columns {
		names[i] = fmt.Sprintf("%q", string(c))
	}
	return fmt.Sprintf("missing column: input has no %s column", strings.Join(names, ", "))
}

func (e *MissingColumnError) Is(target error) bool { return target == ErrMissingColumn }

// ParseError locates a bad cell. Line is 1-based and counts the header.
type ParseError struct {
	Line   int
	Column Column
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d, column %q: cannot parse %q: %v", e.Line, string(e.Column), e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }
