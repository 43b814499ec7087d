package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"ifjc/internal/compiler"
	"ifjc/internal/diag"
	"ifjc/internal/symtable"
)

const version = "0.1.0"

// exitUsage is returned for command-line and I/O failures.
const exitUsage = int(diag.Internal)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		return cmdCompile(nil)
	}

	switch args[0] {
	case "compile":
		return cmdCompile(args[1:])
	case "repl":
		return cmdRepl(args[1:])
	case "help", "-h", "--help":
		usage()
		return 0
	case "version", "--version":
		fmt.Println("ifjc", version)
		return 0
	default:
		// `ifjc prog.swift` and `ifjc -v` compile like `ifjc compile ...`
		return cmdCompile(args)
	}
}

func usage() {
	fmt.Println(`IFJ23 to IFJcode23 compiler

Usage:
  ifjc [compile] [-o out.code] [-v] [file|-]
  ifjc repl

Commands:
  compile  Compile a program (stdin by default) and print IFJcode23
  repl     Interactive session showing the code emitted for each statement
  version  Compiler version
  help     This message

Flags (compile):
  -o         Output file (default: stdout)
  -v         Trace compilation stages to stderr
  -capacity  Symbol table block size, must be prime (default 1021)

Exit status is 0 on success, otherwise the code of the error kind:
  1 LEX_ERR, 2 SYN_ERR, 3 SEM_ERR_REDEF, 4 SEM_ERR_FUNC, 5 SEM_ERR_UNDEF,
  6 SEM_ERR_RETURN, 7 SEM_ERR_TYPE, 8 SEM_ERR_UKN_T, 9 SEM_ERR_OTHER,
  99 COMPILER_ERROR`)
}

// -------------- COMPILE --------------

func cmdCompile(args []string) int {
	fs := flag.NewFlagSet("compile", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var out string
	var verbose bool
	var capacity int

	fs.StringVar(&out, "o", "", "output file (default: stdout)")
	fs.BoolVar(&verbose, "v", false, "trace compilation stages to stderr")
	fs.IntVar(&capacity, "capacity", symtable.DefaultCapacity, "symbol table block size (prime)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return exitUsage
	}
	if fs.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "error: compile takes at most one input file")
		return exitUsage
	}
	input := "-"
	if fs.NArg() == 1 {
		input = fs.Arg(0)
	}

	src, err := readSource(input)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return exitUsage
	}

	opts := compiler.DefaultOptions()
	opts.Verbose = verbose
	opts.Capacity = capacity

	prog, err := compiler.Compile(src, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return diag.ExitCode(err)
	}

	if err := writeProgram(out, prog); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return exitUsage
	}
	return 0
}

func readSource(path string) (string, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

func writeProgram(path string, prog *compiler.Output) error {
	if path == "" || path == "-" {
		_, err := prog.WriteTo(os.Stdout)
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := prog.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
