// Package interp ties the slang front end, compiler, and runtime together
// into a stateful session: definitions accumulate in one arena, the whole
// program is recompiled after every change, and expressions are evaluated by
// wrapping them in a hidden zero-argument function.
package interp

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/ekinimo/slang/ast"
	"github.com/ekinimo/slang/compiler"
	"github.com/ekinimo/slang/vm"
)

// evalName is the hidden definition expressions are wrapped in. Names with
// the "__" prefix are reserved and never listed or saved.
const evalName = "__eval__"

// Interpreter is a live slang session.
type Interpreter struct {
	arena *ast.Arena
	prog  *vm.Program
	dirty bool
	log   commonlog.Logger
}

// New creates an empty session.
func New() *Interpreter {
	return &Interpreter{
		arena: ast.NewArena(),
		log:   commonlog.GetLogger("interp"),
	}
}

// Eval evaluates one REPL input. Input starting with a function definition
// extends the session and yields no value; anything else is treated as an
// expression and evaluated against the current definitions. The boolean
// reports whether a value was produced.
func (i *Interpreter) Eval(input string) (vm.Value, bool, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return vm.Unit, false, nil
	}

	if first := compiler.NewLexer(trimmed).NextToken(); first.Type == compiler.TokenFn {
		prev := i.snapshotDefs()
		if _, err := compiler.ParseProgram(trimmed, i.arena); err != nil {
			i.rollbackDefs(prev)
			return vm.Unit, false, err
		}
		i.dirty = true
		return vm.Unit, false, i.recompile()
	}

	src := fmt.Sprintf("fn %s() { %s }", evalName, trimmed)
	if _, err := compiler.ParseProgram(src, i.arena); err != nil {
		i.neutralizeEval()
		return vm.Unit, false, err
	}
	i.dirty = true
	if err := i.recompile(); err != nil {
		i.neutralizeEval()
		return vm.Unit, false, err
	}

	return i.callByName(evalName, nil, true)
}

// neutralizeEval redefines the hidden eval function to a harmless constant
// after a failed evaluation, so a broken body cannot poison the next
// recompile. The arena is append-only; redefinition just repoints the table.
func (i *Interpreter) neutralizeEval() {
	if _, defined := i.arena.LookupDefByName(evalName); !defined {
		return
	}
	body := i.arena.AddInteger(0)
	i.arena.AddFunctionDef(evalName, 0, body)
	i.dirty = true
}

// snapshotDefs captures the definition table before a parse that may fail.
func (i *Interpreter) snapshotDefs() map[ast.NameIdx]ast.AstIdx {
	snap := make(map[ast.NameIdx]ast.AstIdx, i.arena.DefCount())
	i.arena.Defs(func(name ast.NameIdx, def ast.AstIdx) {
		snap[name] = def
	})
	return snap
}

// rollbackDefs undoes the definition-table effects of a failed parse:
// redefinitions are repointed at their previous bodies, and names the failed
// input introduced are neutralized the way neutralizeEval is. The broken
// nodes stay in the arena but nothing reaches them, so a definition that
// fails to parse cannot poison later recompiles.
func (i *Interpreter) rollbackDefs(prev map[ast.NameIdx]ast.AstIdx) {
	type newDef struct {
		name ast.NameIdx
		def  ast.AstIdx
	}
	var added []newDef
	i.arena.Defs(func(name ast.NameIdx, def ast.AstIdx) {
		if old, existed := prev[name]; existed {
			if old != def {
				i.arena.RestoreDef(name, old)
			}
			return
		}
		added = append(added, newDef{name, def})
	})
	for _, d := range added {
		body := i.arena.AddInteger(0)
		i.arena.AddFunctionDef(i.arena.Name(d.name), i.arena.Node(d.def).ParamCount, body)
	}
	i.dirty = true
}

// recompile rebuilds the function table if the arena changed since the last
// successful compile.
func (i *Interpreter) recompile() error {
	if !i.dirty && i.prog != nil {
		return nil
	}
	prog, err := compiler.Compile(i.arena)
	if err != nil {
		i.prog = nil
		return err
	}
	i.prog = prog
	i.dirty = false
	i.log.Debugf("compiled %d function(s)", prog.FuncCount())
	return nil
}

func (i *Interpreter) callByName(name string, args []vm.Value, hasValue bool) (vm.Value, bool, error) {
	nameIdx, ok := i.arena.LookupName(name)
	if !ok {
		return vm.Unit, false, fmt.Errorf("function %q is not defined", name)
	}
	idx, ok := i.prog.Lookup(nameIdx)
	if !ok {
		return vm.Unit, false, fmt.Errorf("function %q is not compiled", name)
	}
	v, err := i.prog.Call(idx, args)
	return v, hasValue && err == nil, err
}

// CallFunction invokes a defined function with the given arguments.
func (i *Interpreter) CallFunction(name string, args []vm.Value) (vm.Value, error) {
	if err := i.recompile(); err != nil {
		return vm.Unit, err
	}
	v, _, err := i.callByName(name, args, true)
	return v, err
}

// LoadFile parses a source file into the session. Every function the file
// defines (and every internal reference to one) is qualified with the file's
// stem, so `lib.slang` defining `double` contributes `lib::double`. Returns
// the module prefix used.
func (i *Interpreter) LoadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	prev := i.snapshotDefs()
	if _, err := compiler.ParseProgramPrefixed(string(data), i.arena, stem); err != nil {
		i.rollbackDefs(prev)
		return stem, err
	}
	i.dirty = true
	if err := i.recompile(); err != nil {
		return stem, err
	}
	i.log.Infof("loaded %s as module %s", path, stem)
	return stem, nil
}

// SaveFile writes every user-defined function to path as source text.
func (i *Interpreter) SaveFile(path string) error {
	return os.WriteFile(path, []byte(i.renderDefs(nil)), 0o644)
}

// SaveFunctions writes the named functions and everything they transitively
// depend on to path, so the saved file is loadable on its own.
func (i *Interpreter) SaveFunctions(path string, names []string) error {
	keep := make(map[string]bool)
	for _, name := range names {
		if _, ok := i.arena.LookupDefByName(name); !ok {
			return fmt.Errorf("function %q is not defined", name)
		}
		keep[name] = true
		for _, dep := range i.arena.Dependencies(name) {
			keep[dep] = true
		}
	}
	return os.WriteFile(path, []byte(i.renderDefs(keep)), 0o644)
}

// renderDefs pretty-prints definitions in first-definition order, skipping
// reserved names; a non-nil keep set restricts output to its members.
func (i *Interpreter) renderDefs(keep map[string]bool) string {
	printer := ast.NewPrinter(i.arena)
	var b strings.Builder
	i.arena.Defs(func(name ast.NameIdx, def ast.AstIdx) {
		text := i.arena.Name(name)
		if strings.HasPrefix(text, "__") {
			return
		}
		if keep != nil && !keep[text] {
			return
		}
		b.WriteString(printer.PrintNode(def))
		b.WriteString("\n")
	})
	return b.String()
}

// Functions lists the user-defined function names in definition order.
func (i *Interpreter) Functions() []string {
	var names []string
	i.arena.Defs(func(name ast.NameIdx, _ ast.AstIdx) {
		text := i.arena.Name(name)
		if !strings.HasPrefix(text, "__") {
			names = append(names, text)
		}
	})
	return names
}

// Dependencies lists the functions the named function transitively calls.
func (i *Interpreter) Dependencies(name string) []string {
	return i.arena.Dependencies(name)
}

// PrettyPrint renders one definition as source text.
func (i *Interpreter) PrettyPrint(name string) (string, error) {
	return ast.NewPrinter(i.arena).PrintFunction(name)
}

// PrettyPrintAll renders every user-defined function as source text.
func (i *Interpreter) PrettyPrintAll() string {
	return i.renderDefs(nil)
}

// DumpAST renders the raw arena for debugging.
func (i *Interpreter) DumpAST() string {
	return i.arena.Dump()
}

// Reset discards all definitions and compiled state.
func (i *Interpreter) Reset() {
	i.arena = ast.NewArena()
	i.prog = nil
	i.dirty = false
	i.log.Debug("session reset")
}

// Arena exposes the session arena, for image serialization.
func (i *Interpreter) Arena() *ast.Arena {
	return i.arena
}

// RestoreArena replaces the session arena, for image deserialization.
func (i *Interpreter) RestoreArena(a *ast.Arena) error {
	i.arena = a
	i.prog = nil
	i.dirty = true
	return i.recompile()
}
