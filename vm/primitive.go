package vm

// ---------------------------------------------------------------------------
// Primitive function values
// ---------------------------------------------------------------------------

// Built-in functions are ordinary Function values, so a primitive referenced
// without being called behaves exactly like any other first-class function.
// Unlike user function bodies, a primitive body consumes its operands; the
// call protocol's truncation makes the difference unobservable.
var (
	AddFunction      = binaryIntOp("add", func(a, b int64) int64 { return a + b })
	MultiplyFunction = binaryIntOp("multiply", func(a, b int64) int64 { return a * b })
)

func binaryIntOp(name string, op func(a, b int64) int64) *Function {
	return &Function{
		Name:       name,
		ParamCount: 2,
		Body: func(s *Stack) error {
			right, err := s.Pop()
			if err != nil {
				return err
			}
			left, err := s.Pop()
			if err != nil {
				return err
			}
			if !left.IsInt() {
				return typeError(name, left)
			}
			if !right.IsInt() {
				return typeError(name, right)
			}
			s.Push(FromInt(op(left.Int(), right.Int())))
			return nil
		},
	}
}
