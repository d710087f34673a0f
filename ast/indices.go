package ast

// ---------------------------------------------------------------------------
// Index types: typed handles into the arena and its side tables
// ---------------------------------------------------------------------------

// AstIdx is the position of a node within its originating arena.
// An index is only meaningful for the arena that produced it.
type AstIdx int

// NameIdx is a stable handle for an interned identifier. Handles are
// never reused; equal names always yield equal handles.
type NameIdx int

// FunIdx is a slot number in a compiled program's function table.
type FunIdx int

// ParamIdx is the position of a parameter within its frame.
type ParamIdx int
