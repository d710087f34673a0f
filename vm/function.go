package vm

import "fmt"

// ---------------------------------------------------------------------------
// Function: closure values
// ---------------------------------------------------------------------------

// Closure is a unit of compiled code. Every closure pushes exactly one
// value onto the stack when it returns nil; that discipline is what keeps
// the compile-time stack accounting aligned with runtime heights.
type Closure func(s *Stack) error

// Function is a first-class function value: a compiled body closure, its
// declared parameter count, and the values snapshotted from enclosing
// frames when the function value was created. Once constructed a Function
// is immutable, except for the one-time placeholder patch applied to
// function-table entries before any execution starts.
type Function struct {
	// Name is the defined name for table functions, empty for lambdas
	// and primitives. Diagnostic only.
	Name string

	// ParamCount is the number of arguments the body expects on the
	// stack below its captures.
	ParamCount int

	// Captures holds snapshotted outer-frame values, in capture order.
	// They are pushed above the arguments on every invocation.
	Captures []Value

	// Body is the compiled body closure. nil only for an unpatched
	// function-table placeholder.
	Body Closure
}

// Invoke runs the function against the stack. The caller must already have
// pushed ParamCount argument values; Invoke pushes the captures above them
// and runs the body, which leaves a single result on top.
func (f *Function) Invoke(s *Stack) error {
	if f.Body == nil {
		return fmt.Errorf("%s: %w", f.describe(), ErrNotCompiled)
	}
	for _, c := range f.Captures {
		s.Push(c)
	}
	return f.Body(s)
}

func (f *Function) describe() string {
	if f.Name != "" {
		return f.Name
	}
	return "anonymous function"
}

// String renders the function for REPL display.
func (f *Function) String() string {
	if f.Name != "" {
		return fmt.Sprintf("<fn %s/%d>", f.Name, f.ParamCount)
	}
	return fmt.Sprintf("<lambda/%d>", f.ParamCount)
}
