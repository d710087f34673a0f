package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/ekinimo/slang/image"
	"github.com/ekinimo/slang/interp"
)

// runREPL starts an interactive read-eval-print loop.
func runREPL(sess *interp.Interpreter) {
	fmt.Println("slang REPL (type 'exit' to quit, ':help' for commands)")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print(">> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}
		if strings.HasPrefix(line, ":") {
			if handleREPLCommand(sess, line) {
				break
			}
			continue
		}

		result, hasValue, err := sess.Eval(line)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		if hasValue {
			fmt.Printf("=> %s\n", result)
		}
	}
}

// handleREPLCommand executes a ':' command; returns true to exit the REPL.
func handleREPLCommand(sess *interp.Interpreter, line string) bool {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case ":help":
		printREPLHelp()

	case ":quit", ":exit":
		return true

	case ":funcs":
		for _, name := range sess.Functions() {
			fmt.Println(name)
		}

	case ":pretty":
		if len(args) == 0 {
			fmt.Print(sess.PrettyPrintAll())
			break
		}
		text, err := sess.PrettyPrint(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			break
		}
		fmt.Print(text)

	case ":ast":
		fmt.Print(sess.DumpAST())

	case ":depends":
		if len(args) != 1 {
			fmt.Println("Usage: :depends <function>")
			break
		}
		for _, dep := range sess.Dependencies(args[0]) {
			fmt.Println(dep)
		}

	case ":load":
		if len(args) != 1 {
			fmt.Println("Usage: :load <file.slang>")
			break
		}
		stem, err := sess.LoadFile(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			break
		}
		fmt.Printf("Loaded as module %s\n", stem)

	case ":save":
		if len(args) != 1 {
			fmt.Println("Usage: :save <file.slang>")
			break
		}
		if err := sess.SaveFile(args[0]); err != nil {
			fmt.Printf("Error: %v\n", err)
			break
		}
		fmt.Printf("Saved to %s\n", args[0])

	case ":save-funs":
		if len(args) < 2 {
			fmt.Println("Usage: :save-funs <file.slang> <function>...")
			break
		}
		if err := sess.SaveFunctions(args[0], args[1:]); err != nil {
			fmt.Printf("Error: %v\n", err)
			break
		}
		fmt.Printf("Saved %d function(s) and their dependencies to %s\n", len(args)-1, args[0])

	case ":save-image":
		if len(args) != 1 {
			fmt.Println("Usage: :save-image <file.simg>")
			break
		}
		if err := image.Save(sess.Arena(), args[0]); err != nil {
			fmt.Printf("Error: %v\n", err)
			break
		}
		fmt.Printf("Image saved to %s\n", args[0])

	case ":load-image":
		if len(args) != 1 {
			fmt.Println("Usage: :load-image <file.simg>")
			break
		}
		arena, err := image.Load(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			break
		}
		if err := sess.RestoreArena(arena); err != nil {
			fmt.Printf("Error: %v\n", err)
			break
		}
		fmt.Printf("Image loaded (%d functions)\n", len(sess.Functions()))

	case ":reset":
		sess.Reset()
		fmt.Println("Session reset")

	default:
		fmt.Printf("Unknown command %s (try :help)\n", cmd)
	}
	return false
}

func printREPLHelp() {
	fmt.Println("Commands:")
	fmt.Println("  :help                      Show this help")
	fmt.Println("  :funcs                     List defined functions")
	fmt.Println("  :pretty [fn]               Print definitions as source")
	fmt.Println("  :ast                       Dump the raw syntax arena")
	fmt.Println("  :depends <fn>              List a function's dependencies")
	fmt.Println("  :load <file.slang>         Load a source file (namespaced by stem)")
	fmt.Println("  :save <file.slang>         Save all definitions as source")
	fmt.Println("  :save-funs <file> <fn>...  Save functions plus their dependencies")
	fmt.Println("  :save-image <file.simg>    Save the session as a binary image")
	fmt.Println("  :load-image <file.simg>    Replace the session from an image")
	fmt.Println("  :reset                     Discard all definitions")
	fmt.Println("  :quit / exit               Leave the REPL")
	fmt.Println()
	fmt.Println("Anything else is evaluated: definitions start with 'fn', expressions")
	fmt.Println("print their value as '=> value'.")
}
