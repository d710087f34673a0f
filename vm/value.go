// Package vm implements the slang runtime: values, the shared value stack,
// closure function values, and the compiled program's function table.
// Execution is single-threaded, synchronous, depth-first; compiled closures
// all operate on one growable stack and rely on the calling convention
// (arguments pushed, callee invoked, stack truncated, one result pushed)
// to keep their baked-in slot offsets valid.
package vm

import "fmt"

// ---------------------------------------------------------------------------
// Value: runtime values
// ---------------------------------------------------------------------------

// ValueKind discriminates runtime value variants.
type ValueKind uint8

const (
	KindUnit ValueKind = iota
	KindInt
	KindBool
	KindChar
	KindFunc
)

func (k ValueKind) String() string {
	switch k {
	case KindUnit:
		return "unit"
	case KindInt:
		return "integer"
	case KindBool:
		return "boolean"
	case KindChar:
		return "character"
	case KindFunc:
		return "function"
	}
	return "unknown"
}

// Value is a slang runtime value: unit, integer, boolean, character, or
// function. Values are small and copied freely; function payloads are
// shared pointers (a pushed function value and a capture-list entry may
// refer to the same Function).
type Value struct {
	kind ValueKind
	i    int64
	fn   *Function
}

// Unit is the unit value.
var Unit = Value{kind: KindUnit}

// FromInt builds an integer value.
func FromInt(n int64) Value {
	return Value{kind: KindInt, i: n}
}

// FromBool builds a boolean value.
func FromBool(b bool) Value {
	var n int64
	if b {
		n = 1
	}
	return Value{kind: KindBool, i: n}
}

// FromChar builds a character value.
func FromChar(r rune) Value {
	return Value{kind: KindChar, i: int64(r)}
}

// FromFunction builds a function value.
func FromFunction(fn *Function) Value {
	return Value{kind: KindFunc, fn: fn}
}

// Kind returns the value's kind.
func (v Value) Kind() ValueKind { return v.kind }

// IsInt reports whether v is an integer.
func (v Value) IsInt() bool { return v.kind == KindInt }

// IsFunc reports whether v is a function.
func (v Value) IsFunc() bool { return v.kind == KindFunc }

// Int returns the integer payload. Only meaningful when IsInt.
func (v Value) Int() int64 { return v.i }

// Bool returns the boolean payload. Only meaningful for boolean values.
func (v Value) Bool() bool { return v.i != 0 }

// Char returns the character payload. Only meaningful for character values.
func (v Value) Char() rune { return rune(v.i) }

// Func returns the function payload. Only meaningful when IsFunc.
func (v Value) Func() *Function { return v.fn }

// String renders the value for REPL display.
func (v Value) String() string {
	switch v.kind {
	case KindUnit:
		return "()"
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindBool:
		if v.i != 0 {
			return "true"
		}
		return "false"
	case KindChar:
		return fmt.Sprintf("'%c'", rune(v.i))
	case KindFunc:
		return v.fn.String()
	}
	return "<invalid>"
}
