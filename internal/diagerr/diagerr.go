// Released under an MIT license. See LICENSE.

// Package diagerr provides discdiag's typed error kinds.
//
// Verbs surface one of a small, closed set of error kinds, modeled as
// a wrapper type with a Kind() accessor rather than as ad hoc
// fmt.Errorf strings the dispatcher would have to pattern-match on.
package diagerr

import "fmt"

// Kind identifies one of the closed set of error categories a verb can
// return.
type Kind int

// The error kinds a verb can surface.
const (
	Syntax Kind = iota
	Name
	Arithmetic
	Bounds
	State
	IO
	Compare
	Flow
	Fatal
)

func (k Kind) String() string {
	switch k {
	case Syntax:
		return "Syntax"
	case Name:
		return "Name"
	case Arithmetic:
		return "Arithmetic"
	case Bounds:
		return "Bounds"
	case State:
		return "State"
	case IO:
		return "IO"
	case Compare:
		return "Compare"
	case Flow:
		return "Flow"
	case Fatal:
		return "Fatal"
	default:
		return "Unknown"
	}
}

// T is a discdiag error: a kind plus a human-readable message,
// rendered in the "*** Error: ..." style the prompt prints.
type T struct {
	kind Kind
	msg  string
}

// New creates a new error of the given kind with message text built
// from format/args the way fmt.Errorf does.
func New(kind Kind, format string, args ...interface{}) *T {
	return &T{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Kind returns the error's kind.
func (e *T) Kind() Kind {
	return e.kind
}

// Error renders the error the way the prompt prints it.
func (e *T) Error() string {
	return "*** Error: " + e.msg
}

// Is returns true if err is a *T of the given kind.
func Is(err error, kind Kind) bool {
	t, ok := err.(*T)
	return ok && t.kind == kind
}

// Variable reports a Name error for an unknown identifier.
func Variable(name string) *T {
	return New(Name, "Variable %q invalid", name)
}
