package vm

import "fmt"

// ---------------------------------------------------------------------------
// Call protocol
// ---------------------------------------------------------------------------

// ApplyTop executes the second half of the call protocol. The caller has
// already recorded base (the stack height before the call), pushed argCount
// argument values, and pushed the callee value on top. ApplyTop pops the
// callee, checks it is a function of the right arity, invokes it, then
// replaces everything above base with the single result, restoring the net
// one-value-pushed contract for the whole call expression.
func ApplyTop(s *Stack, base, argCount int) error {
	fnVal, err := s.Pop()
	if err != nil {
		return err
	}
	if !fnVal.IsFunc() {
		return fmt.Errorf("cannot call %s (%s): %w", fnVal, fnVal.Kind(), ErrTypeMismatch)
	}
	fn := fnVal.Func()
	if fn.ParamCount != argCount {
		return arityError(fn.describe(), fn.ParamCount, argCount)
	}

	if err := fn.Invoke(s); err != nil {
		return fmt.Errorf("in call to %s: %w", fn.describe(), err)
	}
	result, err := s.Pop()
	if err != nil {
		return fmt.Errorf("call to %s left no result: %w", fn.describe(), err)
	}
	s.TruncateTo(base)
	s.Push(result)
	return nil
}
