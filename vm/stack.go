package vm

import "fmt"

// ---------------------------------------------------------------------------
// Stack: the shared value stack
// ---------------------------------------------------------------------------

// Stack is the single growable value stack shared by an entire call tree.
// At any instant exactly one closure logically owns the region above its
// frame base, but all closures share the backing store; the calling
// convention's truncate discipline is what keeps frames from corrupting
// each other.
type Stack struct {
	values []Value
}

// NewStack creates an empty stack.
func NewStack() *Stack {
	return &Stack{values: make([]Value, 0, 64)}
}

// Len returns the current stack height.
func (s *Stack) Len() int {
	return len(s.values)
}

// Push appends a value.
func (s *Stack) Push(v Value) {
	s.values = append(s.values, v)
}

// Pop removes and returns the top value.
func (s *Stack) Pop() (Value, error) {
	if len(s.values) == 0 {
		return Unit, fmt.Errorf("pop on empty stack: %w", ErrStackUnderflow)
	}
	v := s.values[len(s.values)-1]
	s.values = s.values[:len(s.values)-1]
	return v, nil
}

// FromTop returns a copy of the value at the given distance from the top
// of the stack; distance 1 is the topmost value. This is how compiled
// parameter references read their slot: the distance was baked in at
// compile time.
func (s *Stack) FromTop(distance int) (Value, error) {
	if distance < 1 || distance > len(s.values) {
		return Unit, fmt.Errorf("read %d below top of stack of height %d: %w", distance, len(s.values), ErrStackUnderflow)
	}
	return s.values[len(s.values)-distance], nil
}

// TruncateTo discards everything above height n.
func (s *Stack) TruncateTo(n int) {
	if n < len(s.values) {
		s.values = s.values[:n]
	}
}
