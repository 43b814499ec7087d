// Package compiler drives one compilation from source text to an IFJcode23
// program.
package compiler

import (
	"fmt"
	"io"
	"os"
	"strings"

	"ifjc/internal/diag"
	"ifjc/internal/ifjcode"
	"ifjc/internal/lexer"
	"ifjc/internal/parser"
	"ifjc/internal/symtable"
)

type Options struct {
	// Verbose enables stage tracing.
	Verbose bool

	// Trace receives the trace lines. Defaults to os.Stderr.
	Trace io.Writer

	// Capacity is the slot count of every symbol table block. Must be prime.
	Capacity int
}

func DefaultOptions() Options {
	return Options{Capacity: symtable.DefaultCapacity}
}

// Output is a compiled program.
type Output struct {
	emit *ifjcode.Emitter
}

// Instructions returns the program in output order, without the header line.
func (o *Output) Instructions() []ifjcode.Instruction {
	return o.emit.Program()
}

// Globals returns the DEFVARs of global variables, emitted ahead of main.
func (o *Output) Globals() []ifjcode.Instruction {
	return o.emit.Globals()
}

// Main returns the top-level code only.
func (o *Output) Main() []ifjcode.Instruction {
	return o.emit.Main()
}

// Funcs returns the code of user function bodies only.
func (o *Output) Funcs() []ifjcode.Instruction {
	return o.emit.Funcs()
}

func (o *Output) WriteTo(w io.Writer) (int64, error) {
	return o.emit.WriteTo(w)
}

func (o *Output) String() string {
	return o.emit.String()
}

// Compile compiles a whole program. On error nothing is returned: code
// buffered before the error is discarded.
func Compile(src string, opts Options) (*Output, error) {
	trace := tracer(opts)
	logf(trace, "compiling %d byte(s)", len(src))

	p, err := parser.New(lexer.NewSource(src), parser.Options{
		Capacity: opts.Capacity,
		Trace:    trace,
	})
	if err != nil {
		return nil, err
	}
	if err := p.ParseProgram(); err != nil {
		logf(trace, "failed with %s", diag.KindOf(err))
		return nil, err
	}

	out := &Output{emit: p.Emitter()}
	logf(trace, "main: %d instruction(s), functions: %d instruction(s)", len(out.Main()), len(out.Funcs()))
	for _, r := range []ifjcode.Routine{ifjcode.Write, ifjcode.Substring} {
		if p.Emitter().Uses(r) {
			logf(trace, "linking %s", r.Label())
		}
	}
	return out, nil
}

// CompileReader reads r to the end and compiles it.
func CompileReader(r io.Reader, opts Options) (*Output, error) {
	var sb strings.Builder
	if _, err := io.Copy(&sb, r); err != nil {
		return nil, diag.Internalf("reading source: %v", err)
	}
	return Compile(sb.String(), opts)
}

func tracer(opts Options) io.Writer {
	if !opts.Verbose {
		return nil
	}
	if opts.Trace != nil {
		return opts.Trace
	}
	return os.Stderr
}

func logf(w io.Writer, format string, args ...interface{}) {
	if w == nil {
		return
	}
	fmt.Fprintf(w, "[ifjc] "+format+"\n", args...)
}
