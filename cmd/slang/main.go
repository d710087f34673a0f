// Slang CLI - the main entry point for running slang programs
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/ekinimo/slang/image"
	"github.com/ekinimo/slang/interp"
	"github.com/ekinimo/slang/manifest"
	"github.com/ekinimo/slang/vm"
)

func main() {
	verbose := flag.Bool("v", false, "Verbose output")
	interactive := flag.Bool("i", false, "Start interactive REPL")
	mainEntry := flag.String("m", "", "Entry function to run (overrides the manifest entry)")
	imagePath := flag.String("image", "", "Load a saved image before any source files")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: slang [options] [paths...]\n\n")
		fmt.Fprintf(os.Stderr, "Loads .slang files from the given paths; each file's functions are\n")
		fmt.Fprintf(os.Stderr, "namespaced under the file's stem (lib.slang defines lib::...).\n")
		fmt.Fprintf(os.Stderr, "Without paths, a slang.toml manifest is searched for upward from the\n")
		fmt.Fprintf(os.Stderr, "current directory.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  slang -i                  # Start REPL\n")
		fmt.Fprintf(os.Stderr, "  slang lib.slang -i        # Load lib.slang, then REPL\n")
		fmt.Fprintf(os.Stderr, "  slang ./src -m main       # Load src/, run 'main'\n")
		fmt.Fprintf(os.Stderr, "  slang -image out.simg -i  # Resume a saved session\n")
	}
	flag.Parse()

	verbosity := 0
	if *verbose {
		verbosity = 2
	}
	commonlog.Configure(verbosity, nil)

	sess := interp.New()

	if *imagePath != "" {
		arena, err := image.Load(*imagePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading image %s: %v\n", *imagePath, err)
			os.Exit(1)
		}
		if err := sess.RestoreArena(arena); err != nil {
			fmt.Fprintf(os.Stderr, "Error compiling image %s: %v\n", *imagePath, err)
			os.Exit(1)
		}
		if *verbose {
			fmt.Printf("Loaded image %s (%d functions)\n", *imagePath, len(sess.Functions()))
		}
	}

	paths := flag.Args()
	entry := *mainEntry

	// No explicit paths: fall back to a slang.toml project manifest.
	if len(paths) == 0 && *imagePath == "" {
		m, err := manifest.FindAndLoad(".")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if m != nil {
			if *verbose {
				fmt.Printf("Using manifest in %s (project %s)\n", m.Dir, m.Project.Name)
			}
			files, err := m.SourceFiles()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			paths = files
			if entry == "" {
				entry = m.Source.Entry
			}
		}
	}

	for _, path := range paths {
		if err := loadPath(sess, path, *verbose); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	if entry != "" {
		result, err := runEntry(sess, entry, *verbose)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(result)
		if *interactive {
			runREPL(sess)
		}
		return
	}

	if *interactive || len(paths) == 0 {
		runREPL(sess)
	}
}

// loadPath loads a .slang file, or every .slang file in a directory.
func loadPath(sess *interp.Interpreter, path string, verbose bool) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		stem, err := sess.LoadFile(path)
		if err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
		if verbose {
			fmt.Printf("Loaded %s as module %s\n", path, stem)
		}
		return nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".slang" {
			if err := loadPath(sess, filepath.Join(path, e.Name()), verbose); err != nil {
				return err
			}
		}
	}
	return nil
}

// runEntry calls the entry function. Loaded files namespace their functions
// under the file stem, so a bare entry name is also tried against every
// module (`main` finds `main::main`).
func runEntry(sess *interp.Interpreter, entry string, verbose bool) (vm.Value, error) {
	name := entry
	if !contains(sess.Functions(), name) && !strings.Contains(entry, "::") {
		for _, fn := range sess.Functions() {
			if strings.HasSuffix(fn, "::"+entry) {
				name = fn
				break
			}
		}
	}
	if verbose {
		fmt.Printf("Running %s\n", name)
	}
	return sess.CallFunction(name, nil)
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
