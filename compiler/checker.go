package compiler

import (
	"errors"
	"fmt"

	"github.com/ekinimo/slang/ast"
)

// ---------------------------------------------------------------------------
// Checker: pre-execution validation
// ---------------------------------------------------------------------------

// UndefinedFunctionError reports a reference to a function no definition
// exists for.
type UndefinedFunctionError struct {
	Name string
}

func (e *UndefinedFunctionError) Error() string {
	return fmt.Sprintf("undefined function %q", e.Name)
}

// ArgumentCountError reports a call whose argument count does not match the
// callee's declared parameter count.
type ArgumentCountError struct {
	Name     string
	Expected int
	Got      int
}

func (e *ArgumentCountError) Error() string {
	return fmt.Sprintf("%s expects %d argument(s), got %d", e.Name, e.Expected, e.Got)
}

// PrimitiveArgCountError reports a primitive applied to other than two
// arguments. Primitives are not curried.
type PrimitiveArgCountError struct {
	Name string
	Got  int
}

func (e *PrimitiveArgCountError) Error() string {
	return fmt.Sprintf("primitive %s expects exactly 2 arguments, got %d", e.Name, e.Got)
}

// Check validates every function definition in the arena: all referenced
// user functions must be defined, and wherever a call's target is statically
// known its arity must match. Calls through parameters or through the
// results of other calls are checked at runtime instead. All problems are
// collected, not just the first.
func Check(a *ast.Arena) error {
	c := &checker{arena: a}
	a.Defs(func(_ ast.NameIdx, def ast.AstIdx) {
		c.checkExpr(a.Node(def).Body)
	})
	return errors.Join(c.errs...)
}

type checker struct {
	arena *ast.Arena
	errs  []error
}

func (c *checker) checkExpr(idx ast.AstIdx) {
	n := c.arena.Node(idx)
	switch n.Kind {
	case ast.KindInteger, ast.KindParamRef, ast.KindPrimitive:
		// Nothing to verify.

	case ast.KindUserFunc:
		if _, ok := c.arena.LookupDef(n.Name); !ok {
			c.errs = append(c.errs, &UndefinedFunctionError{Name: c.arena.Name(n.Name)})
		}

	case ast.KindLambda:
		c.checkExpr(n.Body)

	case ast.KindCall:
		c.checkCall(idx, n)

	case ast.KindFunctionDef:
		c.checkExpr(n.Body)
	}
}

func (c *checker) checkCall(idx ast.AstIdx, n ast.Node) {
	callee := c.arena.Node(n.Callee)
	switch callee.Kind {
	case ast.KindPrimitive:
		if n.ArgCount != 2 {
			c.errs = append(c.errs, &PrimitiveArgCountError{Name: callee.Prim.String(), Got: n.ArgCount})
		}

	case ast.KindUserFunc:
		def, ok := c.arena.LookupDef(callee.Name)
		if !ok {
			c.errs = append(c.errs, &UndefinedFunctionError{Name: c.arena.Name(callee.Name)})
		} else if want := c.arena.Node(def).ParamCount; want != n.ArgCount {
			c.errs = append(c.errs, &ArgumentCountError{
				Name:     c.arena.Name(callee.Name),
				Expected: want,
				Got:      n.ArgCount,
			})
		}

	case ast.KindLambda:
		if callee.ParamCount != n.ArgCount {
			c.errs = append(c.errs, &ArgumentCountError{
				Name:     "<lambda>",
				Expected: callee.ParamCount,
				Got:      n.ArgCount,
			})
		}
		c.checkExpr(n.Callee)

	default:
		// Calls through parameters or nested call results carry no static
		// arity; the runtime arity check covers them.
		c.checkExpr(n.Callee)
	}

	for _, arg := range c.arena.Children(idx) {
		c.checkExpr(arg)
	}
}
