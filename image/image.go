// Package image serializes a session's syntax arena to and from a compact
// CBOR image file, so definitions survive across sessions without keeping
// source text around. Compiled closures are never serialized: an image is
// rebuilt through the arena's own builder operations on load, which re-runs
// their structural validation and recomputes all cached subtree lengths.
package image

import (
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"

	"github.com/ekinimo/slang/ast"
)

// Magic identifies slang image files; Version is bumped on any wire change.
const (
	Magic   = "slangimg"
	Version = 1
)

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("image: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// wireNode is one arena entry on the wire. Cached lengths (a call's inner
// length) are deliberately omitted; the rebuild recomputes them.
type wireNode struct {
	Kind       uint8 `cbor:"k"`
	Int        int64 `cbor:"i,omitempty"`
	Name       int   `cbor:"n,omitempty"`
	Level      int   `cbor:"l,omitempty"`
	Offset     int   `cbor:"o,omitempty"`
	Prim       uint8 `cbor:"p,omitempty"`
	ParamCount int   `cbor:"c,omitempty"`
	Body       int   `cbor:"b,omitempty"`
	Callee     int   `cbor:"f,omitempty"`
	LastArg    int   `cbor:"a,omitempty"`
	ArgCount   int   `cbor:"g,omitempty"`
}

// wireImage is the serialized session: the interned string pool in handle
// order, the nodes in arena order, and per-owner parameter names. The
// definition table is not stored; replaying FunctionDef nodes in arena
// order reproduces it, including first-definition ordering.
type wireImage struct {
	Magic      string        `cbor:"magic"`
	Version    int           `cbor:"version"`
	Strings    []string      `cbor:"strings"`
	Nodes      []wireNode    `cbor:"nodes"`
	ParamNames map[int][]int `cbor:"paramNames,omitempty"`
}

// Marshal serializes the arena to CBOR bytes.
func Marshal(a *ast.Arena) ([]byte, error) {
	img := wireImage{
		Magic:      Magic,
		Version:    Version,
		Strings:    append([]string(nil), a.Strings()...),
		Nodes:      make([]wireNode, a.NodeCount()),
		ParamNames: make(map[int][]int),
	}

	for i := 0; i < a.NodeCount(); i++ {
		idx := ast.AstIdx(i)
		n := a.Node(idx)
		img.Nodes[i] = wireNode{
			Kind:       uint8(n.Kind),
			Int:        n.Int,
			Name:       int(n.Name),
			Level:      n.Level,
			Offset:     int(n.Offset),
			Prim:       uint8(n.Prim),
			ParamCount: n.ParamCount,
			Body:       int(n.Body),
			Callee:     int(n.Callee),
			LastArg:    int(n.LastArg),
			ArgCount:   n.ArgCount,
		}
		if n.Kind == ast.KindLambda || n.Kind == ast.KindFunctionDef {
			if names := a.ParamNames(idx); len(names) > 0 {
				wire := make([]int, len(names))
				for j, name := range names {
					wire[j] = int(name)
				}
				img.ParamNames[i] = wire
			}
		}
	}

	return cborEncMode.Marshal(&img)
}

// Unmarshal rebuilds an arena from CBOR bytes. Nodes are replayed through
// the arena builders in stored order, so a malformed image that violates the
// children-before-parents contract is rejected rather than reconstructed.
func Unmarshal(data []byte) (a *ast.Arena, err error) {
	var img wireImage
	if err := cbor.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("image: unmarshal: %w", err)
	}
	if img.Magic != Magic {
		return nil, fmt.Errorf("image: not a slang image (magic %q)", img.Magic)
	}
	if img.Version != Version {
		return nil, fmt.Errorf("image: unsupported version %d (want %d)", img.Version, Version)
	}

	// Builder assertions panic on structural violations; surface those as
	// errors since here they mean bad input, not a compiler bug.
	defer func() {
		if r := recover(); r != nil {
			a = nil
			err = fmt.Errorf("image: malformed image: %v", r)
		}
	}()

	a = ast.NewArena()
	for _, s := range img.Strings {
		a.Intern(s)
	}

	for i, wn := range img.Nodes {
		if wn.Name < 0 || wn.Name >= len(img.Strings) {
			return nil, fmt.Errorf("image: node %d references string %d outside pool of %d", i, wn.Name, len(img.Strings))
		}
		// Negative counts and addresses decode cleanly; reject them here
		// rather than letting the checker or compiler trip over them.
		if wn.Level < 0 || wn.Offset < 0 || wn.ParamCount < 0 || wn.ArgCount < 0 {
			return nil, fmt.Errorf("image: node %d carries a negative count or address", i)
		}
		var idx ast.AstIdx
		switch ast.Kind(wn.Kind) {
		case ast.KindInteger:
			idx = a.AddInteger(wn.Int)
		case ast.KindParamRef:
			idx = a.AddParamRef(ast.NameIdx(wn.Name), wn.Level, ast.ParamIdx(wn.Offset))
		case ast.KindPrimitive:
			if !ast.Primitive(wn.Prim).Valid() {
				return nil, fmt.Errorf("image: node %d references unknown primitive %d", i, wn.Prim)
			}
			idx = a.AddPrimitive(ast.Primitive(wn.Prim))
		case ast.KindUserFunc:
			idx = a.AddUserFunc(img.Strings[wn.Name])
		case ast.KindLambda:
			idx = a.AddLambda(wn.ParamCount, ast.AstIdx(wn.Body))
		case ast.KindCall:
			idx = a.AddCall(ast.AstIdx(wn.Callee), ast.AstIdx(wn.LastArg), wn.ArgCount)
		case ast.KindFunctionDef:
			idx = a.AddFunctionDef(img.Strings[wn.Name], wn.ParamCount, ast.AstIdx(wn.Body))
		default:
			return nil, fmt.Errorf("image: node %d has unknown kind %d", i, wn.Kind)
		}

		if names, ok := img.ParamNames[i]; ok {
			restored := make([]ast.NameIdx, len(names))
			for j, name := range names {
				if name < 0 || name >= len(img.Strings) {
					return nil, fmt.Errorf("image: parameter name %d of node %d outside string pool", name, i)
				}
				restored[j] = ast.NameIdx(name)
			}
			a.RegisterParamNames(idx, restored)
		}
	}

	return a, nil
}

// Save writes the arena to an image file.
func Save(a *ast.Arena, path string) error {
	data, err := Marshal(a)
	if err != nil {
		return fmt.Errorf("image: marshal: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load reads an arena from an image file.
func Load(path string) (*ast.Arena, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data)
}
