package ast

import "sort"

// ---------------------------------------------------------------------------
// Dependency analysis
// ---------------------------------------------------------------------------

// Dependencies returns the names of every user function transitively
// referenced from the named function, sorted, excluding the function
// itself unless it is self-recursive.
func (a *Arena) Dependencies(name string) []string {
	deps := make(map[NameIdx]bool)
	visited := make(map[AstIdx]bool)

	if def, ok := a.LookupDefByName(name); ok {
		a.collectDeps(def, deps, visited)
	}

	names := make([]string, 0, len(deps))
	for nameIdx := range deps {
		names = append(names, a.Name(nameIdx))
	}
	sort.Strings(names)
	return names
}

func (a *Arena) collectDeps(idx AstIdx, deps map[NameIdx]bool, visited map[AstIdx]bool) {
	if visited[idx] {
		return
	}
	visited[idx] = true

	n := a.Node(idx)
	switch n.Kind {
	case KindUserFunc:
		if def, ok := a.LookupDef(n.Name); ok && !deps[n.Name] {
			deps[n.Name] = true
			a.collectDeps(def, deps, visited)
		}
	case KindCall:
		a.collectDeps(n.Callee, deps, visited)
	}

	for _, child := range a.Children(idx) {
		a.collectDeps(child, deps, visited)
	}
}
