package rematch

import (
	"errors"
	"fmt"
)

// Root causes a parse can fail with. Use errors.Is to test for them and
// errors.As with the typed errors below to get the details.
var (
	ErrNoMatch = errors.New("regex matching failed")
	ErrBind    = errors.New("field binding failed")
	ErrCompile = errors.New("pattern compilation failed")
	ErrMatch   = errors.New("regex search failed")
)

// NoMatchError is returned when none of the applicable patterns matched.
type NoMatchError struct {
	Type  string // Declared type name
	Input string // Original input, unmodified
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("Regex matching failed for: %q", e.Input)
}

func (e *NoMatchError) Is(target error) bool {
	return target == ErrNoMatch
}

// MatchError is returned when the engine could not complete a search, for
// example when a regexp2 search exceeds its timeout. Unlike a NoMatchError
// it says nothing about whether the input fits the pattern.
type MatchError struct {
	Type    string    // Declared type name
	Pattern PatternID // The pattern being searched
	Input   string    // Original input
	Err     error     // Engine error
}

func (e *MatchError) Error() string {
	return fmt.Sprintf("Regex search with %s failed for %q: %v", e.Pattern, e.Input, e.Err)
}

func (e *MatchError) Is(target error) bool {
	return target == ErrMatch
}

func (e *MatchError) Unwrap() error {
	return e.Err
}

// BindErrorKind is the reason a matched input could not be bound.
type BindErrorKind int

const (
	// MissingGroup means the capture group for a field did not participate
	// in the match or does not exist in the pattern.
	MissingGroup BindErrorKind = iota
	// FieldConversion means the converter for the field's type rejected the
	// captured text.
	FieldConversion
)

func (k BindErrorKind) String() string {
	switch k {
	case MissingGroup:
		return "missing group"
	case FieldConversion:
		return "field conversion"
	default:
		return fmt.Sprintf("BindErrorKind(%d)", int(k))
	}
}

// BindError is returned when a pattern matched but a field could not be
// populated. No partially bound value is ever returned alongside it.
type BindError struct {
	Kind       BindErrorKind
	Type       string    // Declared type name
	Variant    string    // Variant name, empty for structs
	Pattern    PatternID // The pattern that matched
	Input      string    // Original input
	FieldIndex int       // 0-based field position
	FieldName  string    // Field name, empty for positional shapes
	Message    string    // Converter message, verbatim
	Err        error     // Converter error, if any
}

// Field returns the field identity: its name for named shapes, its index
// otherwise.
func (e *BindError) Field() string {
	if e.FieldName != "" {
		return e.FieldName
	}
	return fmt.Sprintf("%d", e.FieldIndex)
}

func (e *BindError) Error() string {
	switch e.Kind {
	case MissingGroup:
		return fmt.Sprintf("Getting group %d failed", e.FieldIndex+1)
	default:
		if e.FieldName != "" {
			return fmt.Sprintf("Field '%s' parsing error: %s", e.FieldName, e.Message)
		}
		return fmt.Sprintf("Field %d parsing error: %s", e.FieldIndex, e.Message)
	}
}

func (e *BindError) Is(target error) bool {
	return target == ErrBind
}

func (e *BindError) Unwrap() error {
	return e.Err
}

// CompileError reports a malformed pattern. It is a schema defect: it is
// returned when a parser is built and is never retried.
type CompileError struct {
	Pattern PatternID
	Source  string
	Err     error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compiling pattern %s %q: %v", e.Pattern, e.Source, e.Err)
}

func (e *CompileError) Is(target error) bool {
	return target == ErrCompile
}

func (e *CompileError) Unwrap() error {
	return e.Err
}
