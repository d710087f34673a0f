package vm

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// Runtime error taxonomy
// ---------------------------------------------------------------------------

// Recoverable execution failures. Errors raised during execution wrap one
// of these sentinels and carry a chain of call-site context, so callers can
// classify with errors.Is while still seeing the full cause chain.
var (
	// ErrStackUnderflow signals a pop or read past the bottom of the
	// value stack.
	ErrStackUnderflow = errors.New("stack underflow")

	// ErrArityMismatch signals a call whose argument count does not match
	// the callee's declared parameter count.
	ErrArityMismatch = errors.New("arity mismatch")

	// ErrTypeMismatch signals a primitive applied to non-integer operands,
	// or an attempt to call a non-function value.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrNotCompiled signals execution reaching a function-table slot that
	// was pre-allocated but never patched with a compiled body. The two
	// compiler passes are a hard barrier before execution; hitting this
	// means that barrier was violated.
	ErrNotCompiled = errors.New("function slot not compiled")
)

func arityError(name string, expected, got int) error {
	return fmt.Errorf("%s expects %d arguments but got %d: %w", name, expected, got, ErrArityMismatch)
}

func typeError(op string, v Value) error {
	return fmt.Errorf("%s: operand is %s (%s), not an integer: %w", op, v, v.Kind(), ErrTypeMismatch)
}
