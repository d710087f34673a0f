package ast

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Pretty printer: arena -> source text
// ---------------------------------------------------------------------------

// Operator precedence levels for infix rendering.
const (
	precAdd  = 1
	precMul  = 2
	precAtom = 3
)

// Printer reconstructs slang source text from arena nodes. The output
// re-parses to an equivalent arena; it is used by the REPL's pretty
// commands and by source saving.
type Printer struct {
	arena *Arena
}

// NewPrinter creates a printer over the given arena.
func NewPrinter(a *Arena) *Printer {
	return &Printer{arena: a}
}

// PrintFunction renders one function definition by name.
func (p *Printer) PrintFunction(name string) (string, error) {
	def, ok := p.arena.LookupDefByName(name)
	if !ok {
		return "", fmt.Errorf("function %q is not defined", name)
	}
	return p.PrintNode(def), nil
}

// PrintAll renders every defined function in first-definition order.
func (p *Printer) PrintAll() string {
	var b strings.Builder
	p.arena.Defs(func(name NameIdx, def AstIdx) {
		b.WriteString(p.PrintNode(def))
		b.WriteString("\n")
	})
	return b.String()
}

// PrintNode renders the subtree rooted at idx.
func (p *Printer) PrintNode(idx AstIdx) string {
	n := p.arena.Node(idx)
	if n.Kind == KindFunctionDef {
		return fmt.Sprintf("fn %s(%s) {\n    %s\n}\n",
			p.arena.Name(n.Name),
			strings.Join(p.paramList(idx, n.ParamCount), ", "),
			p.expr(n.Body, 0))
	}
	return p.expr(idx, 0)
}

// expr renders an expression, parenthesizing when its precedence is lower
// than the surrounding context.
func (p *Printer) expr(idx AstIdx, parentPrec int) string {
	n := p.arena.Node(idx)
	switch n.Kind {
	case KindInteger:
		return fmt.Sprintf("%d", n.Int)
	case KindParamRef:
		return p.arena.Name(n.Name)
	case KindPrimitive:
		return n.Prim.String()
	case KindUserFunc:
		return p.arena.Name(n.Name)
	case KindLambda:
		params := p.paramList(idx, n.ParamCount)
		return fmt.Sprintf("lambda %s { %s }", strings.Join(params, " "), p.expr(n.Body, 0))
	case KindCall:
		return p.call(idx, n, parentPrec)
	case KindFunctionDef:
		return p.PrintNode(idx)
	}
	panic(fmt.Sprintf("ast: unknown node kind %d at %d", n.Kind, idx))
}

func (p *Printer) call(idx AstIdx, n Node, parentPrec int) string {
	callee := p.arena.Node(n.Callee)
	args := p.arena.Children(idx)

	// Binary primitives render as infix operators.
	if callee.Kind == KindPrimitive && n.ArgCount == 2 {
		op, prec := "+", precAdd
		if callee.Prim == PrimMultiply {
			op, prec = "*", precMul
		}
		s := fmt.Sprintf("%s %s %s", p.expr(args[0], prec), op, p.expr(args[1], prec+1))
		if prec < parentPrec {
			return "(" + s + ")"
		}
		return s
	}

	rendered := make([]string, len(args))
	for i, arg := range args {
		rendered[i] = p.expr(arg, 0)
	}
	target := p.expr(n.Callee, precAtom)
	if callee.Kind == KindLambda {
		target = "(" + target + ")"
	}
	return fmt.Sprintf("%s(%s)", target, strings.Join(rendered, ", "))
}

// paramList recovers parameter names for a lambda or function definition,
// falling back to positional placeholders when none were registered.
func (p *Printer) paramList(owner AstIdx, paramCount int) []string {
	names := p.arena.ParamNames(owner)
	params := make([]string, paramCount)
	for i := range params {
		if i < len(names) {
			params[i] = p.arena.Name(names[i])
		} else {
			params[i] = fmt.Sprintf("p%d", i)
		}
	}
	return params
}
