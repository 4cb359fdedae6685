package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyInput is matched by every EmptyInputError via errors.Is.
var ErrEmptyInput = errors.New("empty input")

// ValidationError describes a single malformed input record. It is absorbed
// within a stage: the record is skipped and the stage continues.
type ValidationError struct {
	File   string
	Line   int
	CityID string
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	switch {
	case e.File != "":
		fmt.Fprintf(&b, "%s:%d: ", e.File, e.Line)
	case e.Line > 0:
		fmt.Fprintf(&b, "line %d: ", e.Line)
	}
	b.WriteString("invalid record")
	if e.CityID != "" {
		fmt.Fprintf(&b, " for city %s", e.CityID)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, ": %s=%q", e.Field, e.Value)
	}
	if e.Reason != "" {
		fmt.Fprintf(&b, ": %s", e.Reason)
	}
	return b.String()
}

// MappingError reports cities that have no province in the reference table.
// It aborts the stage that needs the mapping.
type MappingError struct {
	CityID string
	// Others lists additional unmapped cities beyond CityID, if any.
	Others []string
}

func (e *MappingError) Error() string {
	if len(e.Others) == 0 {
		return fmt.Sprintf("no province mapping for city %q", e.CityID)
	}
	return fmt.Sprintf("no province mapping for city %q (and %d more: %s)",
		e.CityID, len(e.Others), strings.Join(e.Others, ", "))
}

// IOError reports an artifact that could not be read or written.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// EmptyInputError reports a stage input with zero usable rows.
type EmptyInputError struct {
	Input string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("no usable rows in %s", e.Input)
}

func (e *EmptyInputError) Is(target error) bool { return target == ErrEmptyInput }
