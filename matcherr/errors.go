// Package matcherr defines the error and warning kinds the pattern-matching
// compiler can produce, per the error table in the specification (§7).
package matcherr

import (
	"fmt"
	"strings"
)

// Kind categorizes a compile-time error, mirroring the "Trigger" column of
// the error table: which stage of the pipeline raised it and why.
type Kind string

const (
	KindUnresolvedType      Kind = "UnresolvedType"
	KindNonType             Kind = "NonType"
	KindDuplicateNamedField Kind = "DuplicateNamedField"
	KindMixedFieldStyle     Kind = "MixedFieldStyle"
	KindWrongFieldCount     Kind = "WrongFieldCount"
	KindUnknownField        Kind = "UnknownField"
	KindMultipleSplats      Kind = "MultipleSplats"
	KindUnrecognizedPattern Kind = "UnrecognizedPattern"
	KindUnrecognizedBlock   Kind = "UnrecognizedBlock"
	KindUnrecognizedCase    Kind = "UnrecognizedCase"
	KindUndefinedVariable   Kind = "UndefinedVariable"
)

// Location identifies a position in the host source the surface AST came
// from. It is carried by every CompileError for diagnostic purposes; it is
// never part of any equality or hashing decision elsewhere in the compiler.
type Location struct {
	File   string
	Line   int
	Column int
}

func (l Location) String() string {
	if l.File != "" {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	if l.Line > 0 {
		return fmt.Sprintf("line %d:%d", l.Line, l.Column)
	}
	return ""
}

// CompileError is a fatal error raised at a pattern site. Compilation aborts
// as soon as one is produced.
type CompileError struct {
	Kind Kind
	Loc  Location
	Msg  string
}

func (e *CompileError) Error() string {
	if loc := e.Loc.String(); loc != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Kind, loc, e.Msg)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Msg)
}

// New builds a CompileError with no location, for callers that can't (yet)
// attribute the failure to a specific pattern site.
func New(kind Kind, msg string) *CompileError {
	return &CompileError{Kind: kind, Msg: msg}
}

// NewAt builds a CompileError attributed to loc.
func NewAt(kind Kind, loc Location, msg string) *CompileError {
	return &CompileError{Kind: kind, Loc: loc, Msg: msg}
}

// Newf/NewAtf are the formatted counterparts of New/NewAt.
func Newf(kind Kind, format string, args ...any) *CompileError {
	return New(kind, fmt.Sprintf(format, args...))
}

func NewAtf(kind Kind, loc Location, format string, args ...any) *CompileError {
	return NewAt(kind, loc, fmt.Sprintf(format, args...))
}

// MultiError collects every fatal error accumulated while compiling a batch
// of independent match expressions (e.g. one per top-level declaration in a
// host file). A single match expression still aborts at its first error.
type MultiError struct {
	Errors []error
}

func (m *MultiError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d error(s) occurred:\n", len(m.Errors))
	for _, err := range m.Errors {
		fmt.Fprintf(&sb, "- %v\n", err)
	}
	return sb.String()
}

// UnreachableArm is a non-fatal warning: compilation continues, but the
// named arm was never chosen as a success action while building the
// automaton (§4.3, P5).
type UnreachableArm struct {
	ArmIndex int
	Loc      Location
	Pattern  string
}

func (w UnreachableArm) String() string {
	loc := w.Loc.String()
	if loc == "" {
		loc = "<unknown>"
	}
	return fmt.Sprintf("warning: arm %d (%s) at %s is unreachable", w.ArmIndex, w.Pattern, loc)
}

// MatchFailure is raised at runtime by emitted code when no arm matched. It
// carries the scrutinee so the host's exception mechanism can report it.
type MatchFailure struct {
	Scrutinee any
}

func (e *MatchFailure) Error() string {
	return fmt.Sprintf("match failed: no arm matched value %#v", e.Scrutinee)
}

// TypeBindingChanged is the runtime counterpart of a compile-time type
// resolution: the binder recorded an assertion that a type name must still
// resolve, at the point the emitted code runs, to the type it resolved to
// at compile time. The assertion failing means the host's type environment
// changed between compilation and execution (e.g. hot-reloaded code).
type TypeBindingChanged struct {
	TypeName     string
	ResolvedName string
	ActualName   string
}

func (e *TypeBindingChanged) Error() string {
	return fmt.Sprintf("type binding changed: %q resolved to %q at compile time but %q at runtime",
		e.TypeName, e.ResolvedName, e.ActualName)
}
