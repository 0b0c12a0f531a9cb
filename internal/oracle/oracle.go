// Package oracle declares the type-introspection interface the binder
// queries while lowering `::T`, constructor, and tuple patterns (spec §6,
// "Type oracle"). The core never inspects a user type's field names,
// layout, or subtype lattice directly; every such question is routed
// through an Oracle so the core stays independent of any particular host
// type system, exactly as gala's transformer routes every type question
// through its own typeMetas/registry lookups (§4.2 of patterns.go) rather
// than hardcoding type knowledge into the matcher.
package oracle

import (
	"matchc/matcherr"
	"matchc/internal/surface"
)

// Type is an opaque handle an Oracle hands back for a resolved type name.
// The core only ever compares Types for equality or asks the oracle
// Subtype/Intersect questions about them; it never inspects their
// structure.
type Type interface {
	// Name is a stable, printable identifier for diagnostics and for
	// structural equality between two TypeTests.
	Name() string
}

// Any is the universal type: every value is a member of it, so a TypeTest
// against Any is always true and an Intersect with it returns the other
// operand unchanged.
var Any Type = basicType("any")

// None is the empty/bottom type Intersect returns when two types share no
// members, signaling to the simplifier that a TypeTest against one sense
// after a TypeTest against the other has already determined the answer.
var None Type = basicType("")

type basicType string

func (b basicType) Name() string { return string(b) }

// Named returns a Type handle for name without going through ResolveType.
// The binder uses it for the structural tags TypeTest needs when matching
// a tuple or sequence shape (spec §4.2's tuple/array row), which aren't
// types a host type system registers with an Oracle.
func Named(name string) Type { return basicType(name) }

// Oracle is the external collaborator described in spec §6. All four
// queries are pure: same inputs, same answer, no side effects observable
// from the core's perspective.
type Oracle interface {
	// ResolveType maps a `::T` type-expression to a Type handle. Failure
	// is reported as an UnresolvedType or NonType CompileError carrying
	// loc, per spec §7.
	ResolveType(expr surface.TypeExpr, loc matcherr.Location) (Type, error)

	// FieldNames returns a constructor type's fields in positional-binding
	// order, the order `Ctor(a, b, c)` addresses them in. An oracle may
	// return fewer names than the type's raw field list to hide synthetic
	// fields from pattern matching.
	FieldNames(t Type) []string

	// FieldType returns the declared type of a named field, or Any if the
	// oracle doesn't track field types for t.
	FieldType(t Type, name string) Type

	// Subtype reports whether every member of a is also a member of b.
	Subtype(a, b Type) bool

	// Intersect returns the type containing exactly the values that are
	// members of both a and b, or None if that set is empty. Used by the
	// simplifier's type-test refinement rule (spec §4.4).
	Intersect(a, b Type) Type
}
