package vm

import (
	"fmt"

	"github.com/ekinimo/slang/ast"
)

// ---------------------------------------------------------------------------
// Program: the compiled function table
// ---------------------------------------------------------------------------

// Program owns the function table produced by compiling an arena. Slots are
// addressed by ast.FunIdx; compiled closures refer to slots by index, never
// by holding another closure directly, which is what lets self- and
// mutually-recursive references resolve before their bodies exist.
//
// Construction is two-pass: Reserve allocates one placeholder slot per
// function definition (the slot index is stable and usable immediately),
// then Patch overwrites each placeholder's body once all lowering is done.
// Both passes must complete before any call can reach a slot.
type Program struct {
	funcs  []*Function
	byName map[ast.NameIdx]ast.FunIdx
}

// NewProgram creates an empty program.
func NewProgram() *Program {
	return &Program{byName: make(map[ast.NameIdx]ast.FunIdx)}
}

// Reserve allocates a placeholder slot for a function definition and
// returns its stable index. The placeholder is callable only in the sense
// that invoking it reports ErrNotCompiled.
func (p *Program) Reserve(name ast.NameIdx, displayName string, paramCount int) ast.FunIdx {
	idx := ast.FunIdx(len(p.funcs))
	p.funcs = append(p.funcs, &Function{
		Name:       displayName,
		ParamCount: paramCount,
	})
	p.byName[name] = idx
	return idx
}

// Patch installs the compiled body into a reserved slot.
func (p *Program) Patch(idx ast.FunIdx, body Closure) {
	p.funcs[idx].Body = body
}

// Func returns the function in the given slot.
func (p *Program) Func(idx ast.FunIdx) *Function {
	return p.funcs[idx]
}

// Lookup resolves an interned function name to its slot.
func (p *Program) Lookup(name ast.NameIdx) (ast.FunIdx, bool) {
	idx, ok := p.byName[name]
	return idx, ok
}

// FuncCount returns the number of table slots.
func (p *Program) FuncCount() int {
	return len(p.funcs)
}

// Call invokes the function in the given slot on a fresh stack and returns
// its single result.
func (p *Program) Call(idx ast.FunIdx, args []Value) (Value, error) {
	fn := p.funcs[idx]
	if len(args) != fn.ParamCount {
		return Unit, arityError(fn.describe(), fn.ParamCount, len(args))
	}

	s := NewStack()
	for _, arg := range args {
		s.Push(arg)
	}
	if err := fn.Invoke(s); err != nil {
		return Unit, fmt.Errorf("in call to %s: %w", fn.describe(), err)
	}
	result, err := s.Pop()
	if err != nil {
		return Unit, fmt.Errorf("call to %s left no result: %w", fn.describe(), err)
	}
	return result, nil
}
