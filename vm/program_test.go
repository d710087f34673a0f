package vm

import (
	"errors"
	"testing"

	"github.com/ekinimo/slang/ast"
)

func TestProgramReserveAndPatch(t *testing.T) {
	a := ast.NewArena()
	name := a.Intern("answer")

	p := NewProgram()
	idx := p.Reserve(name, "answer", 0)

	// Invoking a reserved but unpatched slot must fail loudly.
	if _, err := p.Call(idx, nil); !errors.Is(err, ErrNotCompiled) {
		t.Fatalf("call before patch = %v, want ErrNotCompiled", err)
	}

	p.Patch(idx, func(s *Stack) error {
		s.Push(FromInt(42))
		return nil
	})

	v, err := p.Call(idx, nil)
	if err != nil || v.Int() != 42 {
		t.Fatalf("Call = (%s, %v), want 42", v, err)
	}

	got, ok := p.Lookup(name)
	if !ok || got != idx {
		t.Fatalf("Lookup = (%d, %v), want (%d, true)", got, ok, idx)
	}
}

func TestProgramReferencesSurvivePatch(t *testing.T) {
	a := ast.NewArena()
	p := NewProgram()

	// A function value captured before Patch must run the patched body:
	// slots hold stable *Function pointers, not copies.
	idx := p.Reserve(a.Intern("late"), "late", 0)
	fn := p.Func(idx)

	p.Patch(idx, func(s *Stack) error {
		s.Push(FromInt(7))
		return nil
	})

	s := NewStack()
	if err := fn.Invoke(s); err != nil {
		t.Fatalf("Invoke = %v", err)
	}
	if v, _ := s.Pop(); v.Int() != 7 {
		t.Fatalf("result = %s, want 7", v)
	}
}

func TestProgramCallArity(t *testing.T) {
	a := ast.NewArena()
	p := NewProgram()
	idx := p.Reserve(a.Intern("pair"), "pair", 2)
	p.Patch(idx, func(s *Stack) error {
		s.Push(Unit)
		return nil
	})

	if _, err := p.Call(idx, []Value{FromInt(1)}); !errors.Is(err, ErrArityMismatch) {
		t.Fatalf("err = %v, want ErrArityMismatch", err)
	}
}

func TestApplyTopProtocol(t *testing.T) {
	s := NewStack()
	s.Push(FromInt(99)) // untouched value below the call region

	base := s.Len()
	s.Push(FromInt(3))
	s.Push(FromInt(4))
	s.Push(FromFunction(MultiplyFunction))

	if err := ApplyTop(s, base, 2); err != nil {
		t.Fatalf("ApplyTop = %v", err)
	}
	if s.Len() != base+1 {
		t.Fatalf("stack height = %d, want %d (net one result)", s.Len(), base+1)
	}
	if v, _ := s.Pop(); v.Int() != 12 {
		t.Fatalf("result = %s, want 12", v)
	}
	if v, _ := s.Pop(); v.Int() != 99 {
		t.Fatalf("value below call region = %s, want 99", v)
	}
}

func TestApplyTopRejectsNonFunction(t *testing.T) {
	s := NewStack()
	base := s.Len()
	s.Push(FromInt(5))

	if err := ApplyTop(s, base, 0); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("err = %v, want ErrTypeMismatch", err)
	}
}

func TestApplyTopRejectsWrongArity(t *testing.T) {
	s := NewStack()
	base := s.Len()
	s.Push(FromInt(1))
	s.Push(FromFunction(AddFunction))

	if err := ApplyTop(s, base, 1); !errors.Is(err, ErrArityMismatch) {
		t.Fatalf("err = %v, want ErrArityMismatch", err)
	}
}

func TestPrimitivesTypeCheck(t *testing.T) {
	s := NewStack()
	s.Push(FromInt(1))
	s.Push(FromBool(true))

	if err := AddFunction.Invoke(s); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("add on bool = %v, want ErrTypeMismatch", err)
	}
}

func TestInvokePushesCaptures(t *testing.T) {
	// The body reads its capture from the fixed slot above the argument.
	fn := &Function{
		ParamCount: 1,
		Captures:   []Value{FromInt(10)},
		Body: func(s *Stack) error {
			capture, err := s.FromTop(1)
			if err != nil {
				return err
			}
			arg, err := s.FromTop(2)
			if err != nil {
				return err
			}
			s.Push(FromInt(capture.Int() + arg.Int()))
			return nil
		},
	}

	s := NewStack()
	s.Push(FromInt(32))
	if err := fn.Invoke(s); err != nil {
		t.Fatalf("Invoke = %v", err)
	}
	if v, _ := s.Pop(); v.Int() != 42 {
		t.Fatalf("result = %s, want 42", v)
	}
}

func TestValueStrings(t *testing.T) {
	cases := map[string]Value{
		"()":         Unit,
		"42":         FromInt(42),
		"true":       FromBool(true),
		"false":      FromBool(false),
		"'x'":        FromChar('x'),
		"<fn add/2>": FromFunction(AddFunction),
		"<lambda/1>": FromFunction(&Function{ParamCount: 1}),
	}
	for want, v := range cases {
		if got := v.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}
