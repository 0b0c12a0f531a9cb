// Package matchrt is the small runtime support library that compiled match
// expressions call into. It plays the same role for this compiler that the
// gala "std" package plays for gala's generated code: emitted statements
// reference a handful of generic helpers here instead of inlining
// reflection-heavy logic at every call site.
package matchrt

import (
	"reflect"

	"matchc/matcherr"
)

// Equal reports whether a and b are equal under the value-equality rule an
// EqualValueTest compiles to, using reflect.DeepEqual for every operand,
// constants included. Host expressions substituted from earlier bindings
// may produce values (slices, structs holding slices, etc.) for which ==
// would not even compile, so emitted code routes every EqualValueTest
// through Equal rather than a literal "==".
func Equal[T any](a, b T) bool {
	return reflect.DeepEqual(a, b)
}

// As performs the runtime half of a TypeTest: it reports whether v is
// assignable to T and, if so, returns it asserted to that type. Unlike a
// bare type assertion this never panics. The emitters render TypeTests
// through Is and do not call As.
func As[T any](v any) (T, bool) {
	if asserted, ok := v.(T); ok {
		return asserted, true
	}
	var zero T
	return zero, false
}

// Is is the boolean-only counterpart of As. Both emitters render every
// TypeTest as a call to Is.
func Is[T any](v any) bool {
	_, ok := v.(T)
	return ok
}

// Fail constructs the error a failure-action node raises when no arm
// matched. It is the emitted equivalent of bound pattern False reached at
// the end of the automaton.
func Fail(scrutinee any) error {
	return &matcherr.MatchFailure{Scrutinee: scrutinee}
}

// CheckTypeBinding runs the runtime assertion the binder recorded for a
// `::T` pattern (§9, "Dynamic type resolution"): that resolving typeName
// again, at the point the emitted code executes, still yields the same
// type it resolved to at compile time. A mismatch means the host's type
// environment changed out from under already-compiled code.
func CheckTypeBinding(typeName, resolvedAtCompileTime, resolvedNow string) error {
	if resolvedAtCompileTime == resolvedNow {
		return nil
	}
	return &matcherr.TypeBindingChanged{
		TypeName:     typeName,
		ResolvedName: resolvedAtCompileTime,
		ActualName:   resolvedNow,
	}
}
