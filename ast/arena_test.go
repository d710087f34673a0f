package ast

import "testing"

// buildMulAdd appends `fn muladd(a, b, c) { a*b + c }` and returns the
// definition index.
func buildMulAdd(a *Arena) AstIdx {
	na := a.Intern("a")
	nb := a.Intern("b")
	nc := a.Intern("c")

	a.AddParamRef(na, 0, 0)
	a.AddParamRef(nb, 0, 1)
	a.AddMultiply()
	a.AddParamRef(nc, 0, 2)
	add := a.AddAdd()
	def := a.AddFunctionDef("muladd", 3, add)
	a.RegisterParamNames(def, []NameIdx{na, nb, nc})
	return def
}

func TestArenaMulAddStructure(t *testing.T) {
	a := NewArena()
	def := buildMulAdd(a)

	n := a.Node(def)
	if n.Kind != KindFunctionDef {
		t.Fatalf("def kind = %s, want FunctionDef", n.Kind)
	}
	if n.ParamCount != 3 {
		t.Fatalf("def paramCount = %d, want 3", n.ParamCount)
	}

	add := a.Node(n.Body)
	if add.Kind != KindCall || add.ArgCount != 2 {
		t.Fatalf("body = %s with %d args, want Call with 2", add.Kind, add.ArgCount)
	}
	if callee := a.Node(add.Callee); callee.Kind != KindPrimitive || callee.Prim != PrimAdd {
		t.Fatalf("body callee = %s, want Primitive(add)", callee.Kind)
	}

	args := a.Children(n.Body)
	if len(args) != 2 {
		t.Fatalf("body has %d children, want 2", len(args))
	}

	mul := a.Node(args[0])
	if mul.Kind != KindCall || a.Node(mul.Callee).Prim != PrimMultiply {
		t.Fatalf("first operand is %s, want multiply call", mul.Kind)
	}
	mulArgs := a.Children(args[0])
	for i, want := range []ParamIdx{0, 1} {
		ref := a.Node(mulArgs[i])
		if ref.Kind != KindParamRef || ref.Offset != want || ref.Level != 0 {
			t.Errorf("multiply operand %d = %s(level=%d, offset=%d), want ParamRef(0, %d)",
				i, ref.Kind, ref.Level, ref.Offset, want)
		}
	}

	if ref := a.Node(args[1]); ref.Kind != KindParamRef || ref.Offset != 2 {
		t.Errorf("second operand = %s(offset=%d), want ParamRef offset 2", ref.Kind, ref.Offset)
	}
}

func TestArenaSubtreeLengths(t *testing.T) {
	a := NewArena()
	def := buildMulAdd(a)

	n := a.Node(def)
	body := a.Node(n.Body)

	// a*b occupies [aRef, bRef, primitive, call].
	if got := a.Len(a.Children(n.Body)[0]); got != 4 {
		t.Errorf("Len(a*b) = %d, want 4", got)
	}
	// a*b + c adds [cRef, primitive, call].
	if got := a.Len(n.Body); got != 7 {
		t.Errorf("Len(a*b + c) = %d, want 7", got)
	}
	if got := a.Len(def); got != 8 {
		t.Errorf("Len(def) = %d, want 8", got)
	}
	if body.InnerLen != 6 {
		t.Errorf("body InnerLen = %d, want 6", body.InnerLen)
	}
}

// nestedCall appends muladd(...) with three integer-or-call arguments using
// the given builder callbacks and returns the call index.
func callMulAdd(a *Arena, build ...func() AstIdx) AstIdx {
	var last AstIdx
	for _, b := range build {
		last = b()
	}
	return a.AddFunctionCall("muladd", last, len(build))
}

func TestArenaNestedCallChildren(t *testing.T) {
	lit := func(a *Arena, v int64) func() AstIdx {
		return func() AstIdx { return a.AddInteger(v) }
	}

	t.Run("nested in last position", func(t *testing.T) {
		a := NewArena()
		buildMulAdd(a)
		call := callMulAdd(a, lit(a, 1), lit(a, 2), func() AstIdx {
			return callMulAdd(a, lit(a, 3), lit(a, 4), lit(a, 5))
		})

		args := a.Children(call)
		if got := a.Node(args[0]).Int; got != 1 {
			t.Errorf("arg 0 = %d, want 1", got)
		}
		if got := a.Node(args[1]).Int; got != 2 {
			t.Errorf("arg 1 = %d, want 2", got)
		}
		if got := a.Node(args[2]); got.Kind != KindCall {
			t.Errorf("arg 2 = %s, want Call", got.Kind)
		}
	})

	t.Run("nested in first position", func(t *testing.T) {
		a := NewArena()
		buildMulAdd(a)
		call := callMulAdd(a, func() AstIdx {
			return callMulAdd(a, lit(a, 3), lit(a, 4), lit(a, 5))
		}, lit(a, 1), lit(a, 2))

		args := a.Children(call)
		if got := a.Node(args[0]); got.Kind != KindCall {
			t.Errorf("arg 0 = %s, want Call", got.Kind)
		}
		if got := a.Node(args[1]).Int; got != 1 {
			t.Errorf("arg 1 = %d, want 1", got)
		}
		if got := a.Node(args[2]).Int; got != 2 {
			t.Errorf("arg 2 = %d, want 2", got)
		}
	})

	t.Run("nested in middle position", func(t *testing.T) {
		a := NewArena()
		buildMulAdd(a)
		call := callMulAdd(a, lit(a, 1), func() AstIdx {
			return callMulAdd(a, lit(a, 3), lit(a, 4), lit(a, 5))
		}, lit(a, 2))

		args := a.Children(call)
		if got := a.Node(args[0]).Int; got != 1 {
			t.Errorf("arg 0 = %d, want 1", got)
		}
		if got := a.Node(args[1]); got.Kind != KindCall {
			t.Errorf("arg 1 = %s, want Call", got.Kind)
		}
		if got := a.Node(args[2]).Int; got != 2 {
			t.Errorf("arg 2 = %d, want 2", got)
		}
		inner := a.Children(args[1])
		for i, want := range []int64{3, 4, 5} {
			if got := a.Node(inner[i]).Int; got != want {
				t.Errorf("inner arg %d = %d, want %d", i, got, want)
			}
		}
	})
}

// Every node must satisfy: its subtree length is one plus the lengths of
// its children, plus the callee's length for calls.
func TestArenaLenDecomposition(t *testing.T) {
	a := NewArena()
	buildMulAdd(a)
	callMulAdd(a,
		func() AstIdx { return a.AddInteger(1) },
		func() AstIdx {
			return callMulAdd(a,
				func() AstIdx { return a.AddInteger(3) },
				func() AstIdx { return a.AddInteger(4) },
				func() AstIdx { return a.AddInteger(5) })
		},
		func() AstIdx { return a.AddInteger(2) })

	for i := 0; i < a.NodeCount(); i++ {
		idx := AstIdx(i)
		want := 1
		for _, child := range a.Children(idx) {
			want += a.Len(child)
		}
		if n := a.Node(idx); n.Kind == KindCall {
			want += a.Len(n.Callee)
		}
		if got := a.Len(idx); got != want {
			t.Errorf("Len(%d) = %d, want %d (%s)", i, got, want, a.Node(idx).Kind)
		}
	}
}

func TestArenaRedefinitionKeepsOrder(t *testing.T) {
	a := NewArena()

	one := a.AddInteger(1)
	a.AddFunctionDef("first", 0, one)
	two := a.AddInteger(2)
	a.AddFunctionDef("second", 0, two)
	three := a.AddInteger(3)
	a.AddFunctionDef("first", 0, three)

	if a.DefCount() != 2 {
		t.Fatalf("DefCount = %d, want 2", a.DefCount())
	}

	var order []string
	a.Defs(func(name NameIdx, def AstIdx) {
		order = append(order, a.Name(name))
	})
	if order[0] != "first" || order[1] != "second" {
		t.Fatalf("definition order = %v, want [first second]", order)
	}

	def, _ := a.LookupDefByName("first")
	if body := a.Node(a.Node(def).Body); body.Int != 3 {
		t.Fatalf("redefined body = %d, want 3", body.Int)
	}
}

func TestArenaBuilderRejectsMissingChildren(t *testing.T) {
	a := NewArena()

	defer func() {
		if recover() == nil {
			t.Fatal("AddLambda with out-of-range body did not panic")
		}
	}()
	a.AddLambda(1, 5)
}

func TestInterner(t *testing.T) {
	in := NewInterner()

	a1 := in.Intern("alpha")
	b := in.Intern("beta")
	a2 := in.Intern("alpha")

	if a1 != a2 {
		t.Errorf("re-interning alpha gave %d, want %d", a2, a1)
	}
	if a1 == b {
		t.Errorf("alpha and beta share handle %d", a1)
	}
	if got := in.Name(b); got != "beta" {
		t.Errorf("Name(beta handle) = %q", got)
	}
	if _, ok := in.Lookup("gamma"); ok {
		t.Error("Lookup(gamma) reported present")
	}
	if in.Count() != 2 {
		t.Errorf("Count = %d, want 2", in.Count())
	}
}
