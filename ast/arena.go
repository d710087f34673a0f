// Package ast implements the flat, arena-backed syntax representation for
// slang programs. Nodes are appended in post-order and addressed by integer
// index; tree structure is reconstructed from subtree lengths rather than
// stored child pointers.
package ast

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Arena: append-only node store
// ---------------------------------------------------------------------------

// Arena is an append-only store of AST nodes. It owns the identifier
// interner, the function-definition table, and parameter-name metadata
// used by the pretty printer.
//
// Builder contract: every child (and, for a call, the callee) must already
// have been appended before the node that references it. Children of a call
// are located by walking backward from its last argument, so violating the
// ordering silently corrupts reconstruction. The builder ops assert the
// referenced indices exist, which catches the gross violations.
//
// An arena is never partially reset: discarding state means discarding the
// arena and the compiled function table together.
type Arena struct {
	nodes    []Node
	interner *Interner

	defs     map[NameIdx]AstIdx
	defOrder []NameIdx

	paramNames map[AstIdx][]NameIdx
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{
		interner:   NewInterner(),
		defs:       make(map[NameIdx]AstIdx),
		paramNames: make(map[AstIdx][]NameIdx),
	}
}

// Intern interns an identifier and returns its handle.
func (a *Arena) Intern(s string) NameIdx {
	return a.interner.Intern(s)
}

// Name returns the identifier text for a handle.
func (a *Arena) Name(idx NameIdx) string {
	return a.interner.Name(idx)
}

// LookupName returns the handle for an identifier without interning it.
func (a *Arena) LookupName(s string) (NameIdx, bool) {
	return a.interner.Lookup(s)
}

// Node returns the node at idx.
func (a *Arena) Node(idx AstIdx) Node {
	return a.nodes[idx]
}

// NodeCount returns the number of nodes appended so far.
func (a *Arena) NodeCount() int {
	return len(a.nodes)
}

// Strings returns the interned string pool in handle order.
// The returned slice must not be mutated.
func (a *Arena) Strings() []string {
	return a.interner.strings
}

// ---------------------------------------------------------------------------
// Builder operations
// ---------------------------------------------------------------------------

func (a *Arena) append(n Node) AstIdx {
	idx := AstIdx(len(a.nodes))
	a.nodes = append(a.nodes, n)
	return idx
}

// AddInteger appends an integer literal node.
func (a *Arena) AddInteger(value int64) AstIdx {
	return a.append(Node{Kind: KindInteger, Int: value})
}

// AddParamRef appends a parameter reference carrying its lexical address.
// Level is the absolute nesting depth of the binding frame (0 = the
// enclosing top-level function); offset is the slot within that frame.
func (a *Arena) AddParamRef(name NameIdx, level int, offset ParamIdx) AstIdx {
	return a.append(Node{Kind: KindParamRef, Name: name, Level: level, Offset: offset})
}

// AddPrimitive appends a primitive-function node.
func (a *Arena) AddPrimitive(p Primitive) AstIdx {
	return a.append(Node{Kind: KindPrimitive, Prim: p})
}

// AddUserFunc appends a reference to a named user function.
func (a *Arena) AddUserFunc(name string) AstIdx {
	return a.append(Node{Kind: KindUserFunc, Name: a.Intern(name)})
}

// AddLambda appends a lambda node. The body must already be in the arena.
func (a *Arena) AddLambda(paramCount int, body AstIdx) AstIdx {
	a.assertExists(body, "lambda body")
	return a.append(Node{Kind: KindLambda, ParamCount: paramCount, Body: body})
}

// AddCall appends a call node. The callee and all argument subtrees must
// already be in the arena; lastArg is the root of the final argument and is
// ignored when argCount is zero. The combined subtree length of arguments
// and callee is computed once here and cached on the node.
func (a *Arena) AddCall(callee, lastArg AstIdx, argCount int) AstIdx {
	a.assertExists(callee, "call callee")
	inner := a.Len(callee)
	if argCount > 0 {
		a.assertExists(lastArg, "call argument")
		cur := lastArg
		for i := 0; i < argCount; i++ {
			l := a.Len(cur)
			inner += l
			if i+1 < argCount {
				if AstIdx(l) > cur {
					panic(fmt.Sprintf("ast: corrupted arena: argument %d of call at %d spans below index 0", argCount-1-i, len(a.nodes)))
				}
				cur -= AstIdx(l)
			}
		}
	}
	return a.append(Node{
		Kind:     KindCall,
		Callee:   callee,
		LastArg:  lastArg,
		ArgCount: argCount,
		InnerLen: inner,
	})
}

// AddFunctionDef appends a function definition and registers it in the
// definition table. Redefining a name replaces the table entry; the old
// nodes stay in the arena (it is append-only) but become unreachable from
// the table.
func (a *Arena) AddFunctionDef(name string, paramCount int, body AstIdx) AstIdx {
	a.assertExists(body, "function body")
	nameIdx := a.Intern(name)
	idx := a.append(Node{Kind: KindFunctionDef, Name: nameIdx, ParamCount: paramCount, Body: body})
	if _, redefined := a.defs[nameIdx]; !redefined {
		a.defOrder = append(a.defOrder, nameIdx)
	}
	a.defs[nameIdx] = idx
	return idx
}

// AddAdd appends an addition: the two operand subtrees must already be in
// the arena, right operand last. Appends the primitive and the call node.
func (a *Arena) AddAdd() AstIdx {
	p := a.AddPrimitive(PrimAdd)
	return a.AddCall(p, p-1, 2)
}

// AddMultiply appends a multiplication, operands as for AddAdd.
func (a *Arena) AddMultiply() AstIdx {
	p := a.AddPrimitive(PrimMultiply)
	return a.AddCall(p, p-1, 2)
}

// AddFunctionCall appends a call to a named function, resolving primitive
// names to primitive nodes. Argument subtrees must already be in the arena.
func (a *Arena) AddFunctionCall(name string, lastArg AstIdx, argCount int) AstIdx {
	var callee AstIdx
	if p, ok := PrimitiveByName(name); ok {
		callee = a.AddPrimitive(p)
	} else {
		callee = a.AddUserFunc(name)
	}
	return a.AddCall(callee, lastArg, argCount)
}

func (a *Arena) assertExists(idx AstIdx, what string) {
	if idx < 0 || int(idx) >= len(a.nodes) {
		panic(fmt.Sprintf("ast: %s index %d out of range (arena has %d nodes); children must be appended before parents", what, idx, len(a.nodes)))
	}
}

// ---------------------------------------------------------------------------
// Parameter names (pretty-printer metadata)
// ---------------------------------------------------------------------------

// RegisterParamNames records the parameter names of a lambda or function
// definition node, for source reconstruction.
func (a *Arena) RegisterParamNames(owner AstIdx, names []NameIdx) {
	a.paramNames[owner] = names
}

// ParamNames returns the recorded parameter names of a lambda or function
// definition node, or nil if none were registered.
func (a *Arena) ParamNames(owner AstIdx) []NameIdx {
	return a.paramNames[owner]
}

// ---------------------------------------------------------------------------
// Read-only queries
// ---------------------------------------------------------------------------

// Len returns the number of arena slots occupied by the whole subtree
// rooted at idx. Atomic nodes occupy one slot; calls use their cached
// inner length; lambda and function-definition lengths are recomputed by
// descent into the body.
func (a *Arena) Len(idx AstIdx) int {
	switch n := a.nodes[idx]; n.Kind {
	case KindInteger, KindParamRef, KindPrimitive, KindUserFunc:
		return 1
	case KindCall:
		return 1 + n.InnerLen
	case KindLambda, KindFunctionDef:
		return 1 + a.Len(n.Body)
	}
	panic(fmt.Sprintf("ast: unknown node kind %d at %d", a.nodes[idx].Kind, idx))
}

// Children reconstructs the child indices of a node. Atomic nodes return
// nil; lambdas and function definitions return their body; calls return the
// argument roots in left-to-right order (the callee is available on the
// node itself).
//
// Call arguments are recovered by walking backward from LastArg: each step
// takes the current index as a child and subtracts that child's subtree
// length to find the previous argument's root. A subtree length that would
// step past index 0 means the arena was built out of order; that is an
// internal invariant violation and panics.
func (a *Arena) Children(idx AstIdx) []AstIdx {
	switch n := a.nodes[idx]; n.Kind {
	case KindInteger, KindParamRef, KindPrimitive, KindUserFunc:
		return nil
	case KindLambda, KindFunctionDef:
		return []AstIdx{n.Body}
	case KindCall:
		children := make([]AstIdx, n.ArgCount)
		cur := n.LastArg
		for i := n.ArgCount - 1; i >= 0; i-- {
			children[i] = cur
			if i > 0 {
				l := AstIdx(a.Len(cur))
				if l > cur {
					panic(fmt.Sprintf("ast: corrupted arena: subtree length %d at %d underflows the index range", l, cur))
				}
				cur -= l
			}
		}
		return children
	}
	panic(fmt.Sprintf("ast: unknown node kind %d at %d", a.nodes[idx].Kind, idx))
}

// ---------------------------------------------------------------------------
// Function definition table
// ---------------------------------------------------------------------------

// LookupDef returns the definition node for an interned function name.
func (a *Arena) LookupDef(name NameIdx) (AstIdx, bool) {
	idx, ok := a.defs[name]
	return idx, ok
}

// LookupDefByName returns the definition node for a function name.
func (a *Arena) LookupDefByName(name string) (AstIdx, bool) {
	nameIdx, ok := a.interner.Lookup(name)
	if !ok {
		return 0, false
	}
	return a.LookupDef(nameIdx)
}

// RestoreDef repoints a defined name at an earlier definition node, rolling
// back a redefinition whose replacement turned out to be unusable. The node
// must be a function definition already in the arena.
func (a *Arena) RestoreDef(name NameIdx, def AstIdx) {
	a.assertExists(def, "restored definition")
	if a.nodes[def].Kind != KindFunctionDef {
		panic(fmt.Sprintf("ast: restored definition %d is a %s, not a FunctionDef", def, a.nodes[def].Kind))
	}
	if _, defined := a.defs[name]; !defined {
		panic(fmt.Sprintf("ast: restoring %s, which was never defined", a.Name(name)))
	}
	a.defs[name] = def
}

// Defs iterates the function definitions in first-definition order,
// calling fn with each name handle and definition node index.
func (a *Arena) Defs(fn func(name NameIdx, def AstIdx)) {
	for _, nameIdx := range a.defOrder {
		fn(nameIdx, a.defs[nameIdx])
	}
}

// DefCount returns the number of distinct defined function names.
func (a *Arena) DefCount() int {
	return len(a.defOrder)
}

// ---------------------------------------------------------------------------
// Debug dump
// ---------------------------------------------------------------------------

// Dump renders the raw arena contents, one node per line, followed by the
// string pool and the definition table. Intended for the REPL's `ast`
// command and debugging.
func (a *Arena) Dump() string {
	var b strings.Builder
	for i, n := range a.nodes {
		switch n.Kind {
		case KindInteger:
			fmt.Fprintf(&b, "%d: Integer(%d)\n", i, n.Int)
		case KindParamRef:
			fmt.Fprintf(&b, "%d: ParamRef(%s, level=%d, offset=%d)\n", i, a.Name(n.Name), n.Level, n.Offset)
		case KindPrimitive:
			fmt.Fprintf(&b, "%d: Primitive(%s)\n", i, n.Prim)
		case KindUserFunc:
			fmt.Fprintf(&b, "%d: UserFunc(%s)\n", i, a.Name(n.Name))
		case KindLambda:
			fmt.Fprintf(&b, "%d: Lambda(params=%d, body=%d)\n", i, n.ParamCount, n.Body)
		case KindCall:
			fmt.Fprintf(&b, "%d: Call(callee=%d, lastArg=%d, args=%d, innerLen=%d)\n", i, n.Callee, n.LastArg, n.ArgCount, n.InnerLen)
		case KindFunctionDef:
			fmt.Fprintf(&b, "%d: FunctionDef(%s, params=%d, body=%d)\n", i, a.Name(n.Name), n.ParamCount, n.Body)
		}
	}
	b.WriteString("\nStrings:\n")
	for i, s := range a.interner.strings {
		fmt.Fprintf(&b, "%d: %s\n", i, s)
	}
	b.WriteString("\nDefinitions:\n")
	for _, nameIdx := range a.defOrder {
		fmt.Fprintf(&b, "%s -> node %d\n", a.Name(nameIdx), a.defs[nameIdx])
	}
	return b.String()
}
