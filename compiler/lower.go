package compiler

import (
	"errors"
	"fmt"

	"github.com/ekinimo/slang/ast"
	"github.com/ekinimo/slang/vm"
)

// ---------------------------------------------------------------------------
// Lowering: arena nodes to closures
// ---------------------------------------------------------------------------

// Compile validates the arena and lowers every function definition into the
// function table. Lowering is two passes over the definitions: the first
// reserves a stable table slot per name so references between functions
// (including self- and mutual recursion) resolve to slots that already
// exist, the second compiles each body and patches it into its slot. No
// slot may be invoked between the passes.
func Compile(a *ast.Arena) (*vm.Program, error) {
	if err := Check(a); err != nil {
		return nil, err
	}

	c := &lowerer{arena: a, prog: vm.NewProgram()}

	a.Defs(func(name ast.NameIdx, def ast.AstIdx) {
		c.prog.Reserve(name, a.Name(name), a.Node(def).ParamCount)
	})

	var errs []error
	a.Defs(func(name ast.NameIdx, def ast.AstIdx) {
		body, err := c.compileFunctionDef(def)
		if err != nil {
			errs = append(errs, fmt.Errorf("compiling %s: %w", a.Name(name), err))
			return
		}
		idx, _ := c.prog.Lookup(name)
		c.prog.Patch(idx, body)
	})
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return c.prog, nil
}

type lowerer struct {
	arena *ast.Arena
	prog  *vm.Program
}

// compileFunctionDef lowers one definition body under a fresh compile
// context whose level-0 frame holds the function's parameters. Top-level
// functions capture nothing.
func (c *lowerer) compileFunctionDef(def ast.AstIdx) (vm.Closure, error) {
	n := c.arena.Node(def)
	ctx := newCompileContext()
	ctx.enterScope(n.ParamCount, nil)
	body, err := c.lowerExpr(n.Body, ctx)
	ctx.exitScope()
	return body, err
}

// lowerExpr compiles one expression into a closure. Contract: executing the
// closure leaves exactly one more value on the stack, and the context's
// virtual height is advanced by one to mirror it. Parameter reads are baked
// as distances from the stack top, so the virtual height must track the
// runtime height exactly at every point a distance is resolved.
func (c *lowerer) lowerExpr(idx ast.AstIdx, ctx *compileContext) (vm.Closure, error) {
	n := c.arena.Node(idx)
	switch n.Kind {
	case ast.KindInteger:
		v := vm.FromInt(n.Int)
		ctx.alloc(1)
		return func(s *vm.Stack) error {
			s.Push(v)
			return nil
		}, nil

	case ast.KindParamRef:
		dist, err := ctx.slotDistance(n.Level, n.Offset)
		if err != nil {
			return nil, err
		}
		ctx.alloc(1)
		return func(s *vm.Stack) error {
			v, err := s.FromTop(dist)
			if err != nil {
				return err
			}
			s.Push(v)
			return nil
		}, nil

	case ast.KindPrimitive:
		fn := primFunction(n.Prim)
		ctx.alloc(1)
		return func(s *vm.Stack) error {
			s.Push(vm.FromFunction(fn))
			return nil
		}, nil

	case ast.KindUserFunc:
		funIdx, ok := c.prog.Lookup(n.Name)
		if !ok {
			return nil, &UndefinedFunctionError{Name: c.arena.Name(n.Name)}
		}
		// The slot's *Function is stable across Patch, so the reference is
		// valid even while the target body is still a placeholder.
		fn := c.prog.Func(funIdx)
		ctx.alloc(1)
		return func(s *vm.Stack) error {
			s.Push(vm.FromFunction(fn))
			return nil
		}, nil

	case ast.KindLambda:
		return c.lowerLambda(n, ctx)

	case ast.KindCall:
		return c.lowerCall(idx, n, ctx)
	}
	return nil, fmt.Errorf("cannot lower %s node at %d", n.Kind, idx)
}

// lowerLambda compiles a lambda into a closure that, when run, snapshots
// the lambda's free variables from the enclosing frame and pushes a fresh
// function value around the pre-compiled body.
//
// The capture distances are resolved in the enclosing context at the
// creation point, before the lambda's own frame opens: that is the moment
// the runtime closure will read them. The body is then compiled under a
// frame holding the parameters plus one slot per capture, so references to
// dead outer frames resolve into the snapshot instead.
func (c *lowerer) lowerLambda(n ast.Node, ctx *compileContext) (vm.Closure, error) {
	caps := analyzeCaptures(c.arena, n.Body, ctx.depth())

	dists := make([]int, len(caps))
	for i, cv := range caps {
		d, err := ctx.slotDistance(cv.level, cv.offset)
		if err != nil {
			return nil, err
		}
		dists[i] = d
	}

	capSlots := make(map[capKey]int, len(caps))
	for i, cv := range caps {
		capSlots[capKey{level: cv.level, offset: cv.offset}] = n.ParamCount + i
	}

	ctx.enterScope(n.ParamCount, capSlots)
	body, err := c.lowerExpr(n.Body, ctx)
	ctx.exitScope()
	if err != nil {
		return nil, err
	}

	paramCount := n.ParamCount
	ctx.alloc(1)
	return func(s *vm.Stack) error {
		captures := make([]vm.Value, len(dists))
		for i, d := range dists {
			v, err := s.FromTop(d)
			if err != nil {
				return err
			}
			captures[i] = v
		}
		s.Push(vm.FromFunction(&vm.Function{
			ParamCount: paramCount,
			Captures:   captures,
			Body:       body,
		}))
		return nil
	}, nil
}

// lowerCall compiles a call: arguments left to right, then the callee
// expression, then the apply step that pops the callee, checks its arity,
// runs it, and collapses the call's whole stack region down to the single
// result.
func (c *lowerer) lowerCall(idx ast.AstIdx, n ast.Node, ctx *compileContext) (vm.Closure, error) {
	argClosures := make([]vm.Closure, 0, n.ArgCount)
	for _, arg := range c.arena.Children(idx) {
		cl, err := c.lowerExpr(arg, ctx)
		if err != nil {
			return nil, err
		}
		argClosures = append(argClosures, cl)
	}

	calleeClosure, err := c.lowerExpr(n.Callee, ctx)
	if err != nil {
		return nil, err
	}

	// Everything the call pushed collapses to one result.
	ctx.dealloc(n.ArgCount + 1)
	ctx.alloc(1)

	argCount := n.ArgCount
	return func(s *vm.Stack) error {
		base := s.Len()
		for _, arg := range argClosures {
			if err := arg(s); err != nil {
				return err
			}
		}
		if err := calleeClosure(s); err != nil {
			return err
		}
		return vm.ApplyTop(s, base, argCount)
	}, nil
}

func primFunction(p ast.Primitive) *vm.Function {
	switch p {
	case ast.PrimAdd:
		return vm.AddFunction
	case ast.PrimMultiply:
		return vm.MultiplyFunction
	}
	panic(fmt.Sprintf("compiler: unknown primitive %d", p))
}
