package compiler

import (
	"fmt"

	"github.com/ekinimo/slang/ast"
)

// ---------------------------------------------------------------------------
// Compile-time stack model
// ---------------------------------------------------------------------------

// capKey addresses a captured variable by the lexical position of its
// original binding.
type capKey struct {
	level  int
	offset ast.ParamIdx
}

// frame mirrors one function or lambda activation during lowering. Its
// layout on the virtual stack is the parameters in declaration order
// followed by the capture slots in capture order.
type frame struct {
	base       int
	paramCount int
	level      int

	// caps maps an outer binding's lexical address to its slot within this
	// frame (paramCount..paramCount+len(caps)-1). Every outer reference in
	// the body resolves through this table: by the time the body runs, the
	// outer frames themselves are gone and only the snapshot remains.
	caps map[capKey]int
}

// compileContext tracks the virtual stack height and the active frames
// while lowering one function body. Every value a compiled closure will
// push or pop at runtime is mirrored here at compile time, which is what
// lets parameter reads be baked as fixed distances from the stack top.
type compileContext struct {
	stackSize int
	frames    []frame
}

func newCompileContext() *compileContext {
	return &compileContext{}
}

// alloc accounts for values the compiled code will push.
func (c *compileContext) alloc(n int) {
	c.stackSize += n
}

// dealloc accounts for values the compiled code will pop.
func (c *compileContext) dealloc(n int) {
	if n > c.stackSize {
		panic(fmt.Sprintf("compiler: virtual stack underflow: dealloc %d with height %d", n, c.stackSize))
	}
	c.stackSize -= n
}

// height returns the current virtual stack height.
func (c *compileContext) height() int {
	return c.stackSize
}

// enterScope opens a frame whose parameters and capture slots the callee
// will find already on the stack: base is the current height, and the
// height grows by paramCount plus one slot per capture.
func (c *compileContext) enterScope(paramCount int, caps map[capKey]int) {
	c.frames = append(c.frames, frame{
		base:       c.stackSize,
		paramCount: paramCount,
		level:      len(c.frames),
		caps:       caps,
	})
	c.alloc(paramCount + len(caps))
}

// exitScope closes the innermost frame and restores the height to the
// frame's base. The compiled code performs the matching truncation.
func (c *compileContext) exitScope() {
	f := c.frames[len(c.frames)-1]
	c.frames = c.frames[:len(c.frames)-1]
	c.stackSize = f.base
}

// depth returns the number of open frames; the innermost frame's level is
// depth()-1.
func (c *compileContext) depth() int {
	return len(c.frames)
}

// slotDistance resolves a parameter reference to its distance from the
// stack top at the current virtual height (distance 1 = top of stack).
// References to the innermost frame's own parameters use the parameter
// slot directly; references to outer frames must have a capture slot in
// the innermost frame. Failing either is a compiler bug, not a user error.
func (c *compileContext) slotDistance(level int, offset ast.ParamIdx) (int, error) {
	if len(c.frames) == 0 {
		return 0, fmt.Errorf("compiler: parameter reference outside any frame")
	}
	f := c.frames[len(c.frames)-1]

	var slot int
	switch {
	case level == f.level:
		if int(offset) >= f.paramCount {
			return 0, fmt.Errorf("compiler: parameter offset %d out of range for frame with %d parameter(s)", offset, f.paramCount)
		}
		slot = int(offset)
	case level < f.level:
		capSlot, ok := f.caps[capKey{level: level, offset: offset}]
		if !ok {
			return 0, fmt.Errorf("compiler: reference to (level %d, offset %d) has no capture slot in frame at level %d", level, offset, f.level)
		}
		slot = capSlot
	default:
		return 0, fmt.Errorf("compiler: reference to level %d from frame at level %d", level, f.level)
	}

	return c.stackSize - (f.base + slot), nil
}
