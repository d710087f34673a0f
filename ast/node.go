package ast

// ---------------------------------------------------------------------------
// Node: one arena entry
// ---------------------------------------------------------------------------

// Kind discriminates the node variants stored in the arena.
type Kind uint8

const (
	KindInteger Kind = iota
	KindParamRef
	KindPrimitive
	KindUserFunc
	KindLambda
	KindCall
	KindFunctionDef
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "Integer"
	case KindParamRef:
		return "ParamRef"
	case KindPrimitive:
		return "Primitive"
	case KindUserFunc:
		return "UserFunc"
	case KindLambda:
		return "Lambda"
	case KindCall:
		return "Call"
	case KindFunctionDef:
		return "FunctionDef"
	}
	return "Unknown"
}

// Primitive identifies a built-in function.
type Primitive uint8

const (
	PrimAdd Primitive = iota
	PrimMultiply
)

// Valid reports whether p names a defined primitive. Primitive values that
// arrive from outside the package, such as decoded image nodes, must be
// validated before they reach the compiler.
func (p Primitive) Valid() bool {
	return p == PrimAdd || p == PrimMultiply
}

func (p Primitive) String() string {
	switch p {
	case PrimAdd:
		return "add"
	case PrimMultiply:
		return "multiply"
	}
	return "unknown"
}

// PrimitiveByName maps a callable name to its primitive, if any.
func PrimitiveByName(name string) (Primitive, bool) {
	switch name {
	case "add":
		return PrimAdd, true
	case "multiply":
		return PrimMultiply, true
	}
	return 0, false
}

// Node is a single arena entry. The arena stores nodes as flat values, so
// all variants share one struct; which fields are meaningful depends on Kind:
//
//	Integer      Int
//	ParamRef     Name, Level, Offset
//	Primitive    Prim
//	UserFunc     Name
//	Lambda       ParamCount, Body
//	Call         Callee, LastArg, ArgCount, InnerLen
//	FunctionDef  Name, ParamCount, Body
//
// InnerLen caches the combined subtree length of a call's arguments and
// callee so that Len never has to re-walk call arguments.
type Node struct {
	Kind Kind

	Int    int64
	Name   NameIdx
	Level  int
	Offset ParamIdx
	Prim   Primitive

	ParamCount int
	Body       AstIdx

	Callee   AstIdx
	LastArg  AstIdx
	ArgCount int
	InnerLen int
}
