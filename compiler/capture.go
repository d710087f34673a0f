package compiler

import (
	"sort"

	"github.com/ekinimo/slang/ast"
)

// ---------------------------------------------------------------------------
// Capture analysis
// ---------------------------------------------------------------------------

// capturedVar identifies one outer-frame variable a lambda body uses: the
// interned parameter name plus the lexical address of its binding frame.
type capturedVar struct {
	name   ast.NameIdx
	level  int
	offset ast.ParamIdx
}

// analyzeCaptures collects the free variables of a lambda whose own frame
// sits at the given depth: every parameter reference in the body subtree
// bound at a level shallower than depth, including references buried inside
// deeper nested lambdas (the inner lambda captures them from this one, so
// this one must hold them). The result is deduplicated and ordered by
// (level, offset), which fixes the capture slot layout.
func analyzeCaptures(a *ast.Arena, body ast.AstIdx, depth int) []capturedVar {
	seen := make(map[capturedVar]bool)
	var caps []capturedVar

	var walk func(idx ast.AstIdx)
	walk = func(idx ast.AstIdx) {
		n := a.Node(idx)
		switch n.Kind {
		case ast.KindParamRef:
			if n.Level < depth {
				cv := capturedVar{name: n.Name, level: n.Level, offset: n.Offset}
				if !seen[cv] {
					seen[cv] = true
					caps = append(caps, cv)
				}
			}
		case ast.KindCall:
			walk(n.Callee)
			for _, arg := range a.Children(idx) {
				walk(arg)
			}
		case ast.KindLambda, ast.KindFunctionDef:
			walk(n.Body)
		}
	}
	walk(body)

	sort.Slice(caps, func(i, j int) bool {
		if caps[i].level != caps[j].level {
			return caps[i].level < caps[j].level
		}
		return caps[i].offset < caps[j].offset
	})
	return caps
}
