// Package object implements Lox's runtime value union: the primitive
// values every other package builds its callable/class/instance
// machinery on top of.
package object

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is any Lox runtime value: Nil, Bool, Number, String, Function,
// Class, or Instance.
type Value interface {
	// Display renders the value the way `print` and the REPL show it.
	Display() string
}

type Nil struct{}

func (Nil) Display() string { return "nil" }

type Bool bool

func (b Bool) Display() string {
	if b {
		return "true"
	}
	return "false"
}

type Number float64

// Display prints the shortest round-tripping decimal, with no trailing
// ".0" for integral values.
func (n Number) Display() string {
	f := float64(n)
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		return s
	}
	// strconv may still produce forms like "1e+10"; only collapse the
	// common "N.0"/"N" shapes a Lox number literal actually produces.
	if f == float64(int64(f)) && !strings.ContainsAny(s, "eE") {
		return strconv.FormatInt(int64(f), 10)
	}
	return s
}

type String string

func (s String) Display() string { return string(s) }

// IsTruthy reports whether v is truthy: only Nil and false are falsy,
// everything else (including 0 and "") is truthy.
func IsTruthy(v Value) bool {
	switch t := v.(type) {
	case Nil, nil:
		return false
	case Bool:
		return bool(t)
	default:
		return true
	}
}

// Equal reports whether a and b are equal: different variants are never
// equal, numbers/strings compare by value (IEEE-754 for numbers, so NaN !=
// NaN), functions/classes/instances compare by identity.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case Nil:
		_, ok := b.(Nil)
		return ok
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Number:
		bv, ok := b.(Number)
		return ok && av == bv
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	default:
		// Functions, classes, and instances compare by identity: Go
		// interface equality on a pointer-typed dynamic value already
		// is pointer equality.
		return a == b
	}
}

func TypeName(v Value) string {
	switch v.(type) {
	case Nil:
		return "nil"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	default:
		return fmt.Sprintf("%T", v)
	}
}
