package ifjcode

import (
	"fmt"
	"strconv"
)

// Frame prefixes.
const (
	GF = "GF"
	LF = "LF"
)

// Scratch registers declared once in the program header. Every sequence that
// uses them finishes with them before the next instruction that could.
const (
	R0 = "GF@%r0"
	R1 = "GF@%r1"
)

var scratch = []string{R0, R1}

// Emitter buffers the instructions of one compilation. Top-level statements go
// to the main sequence and function bodies to the function sequence; InFunc
// selects between them. Global variables are declared in a sequence of their
// own that precedes both, so a function called before a global's declaration
// statement still finds the variable defined.
type Emitter struct {
	InFunc bool

	globals []Instruction
	main    []Instruction
	funcs   []Instruction

	nameSeq  int
	labelSeq int

	used map[Routine]bool
	err  error
}

func NewEmitter() *Emitter {
	return &Emitter{used: make(map[Routine]bool)}
}

func (e *Emitter) current() *[]Instruction {
	if e.InFunc {
		return &e.funcs
	}
	return &e.main
}

// Emit appends an instruction to the current sequence and returns its index.
// An operand count that does not match the opcode is recorded and reported by
// Err; the instruction is dropped.
func (e *Emitter) Emit(op OpCode, args ...string) int {
	in := Instruction{Op: op, Args: args}
	if err := in.Validate(); err != nil {
		if e.err == nil {
			e.err = err
		}
		return -1
	}
	seq := e.current()
	*seq = append(*seq, in)
	return len(*seq) - 1
}

// Err returns the first emission error.
func (e *Emitter) Err() error {
	return e.err
}

// DeclareGlobal emits DEFVAR name into the global declarations.
func (e *Emitter) DeclareGlobal(name string) {
	e.globals = append(e.globals, ins(OpDefVar, name))
}

func (e *Emitter) Globals() []Instruction {
	return e.globals
}

func (e *Emitter) Main() []Instruction {
	return e.main
}

func (e *Emitter) Funcs() []Instruction {
	return e.funcs
}

// UniqueName returns a fresh variable name in frame: GF@x$3.
func (e *Emitter) UniqueName(frame, hint string) string {
	e.nameSeq++
	return frame + "@" + hint + "$" + strconv.Itoa(e.nameSeq)
}

// UniqueLabel returns a fresh label: fn&while2, or &if4 outside functions.
func (e *Emitter) UniqueLabel(ctx, hint string) string {
	e.labelSeq++
	return ctx + "&" + hint + strconv.Itoa(e.labelSeq)
}

// EmitFunctionPrologue starts a function body. Arguments arrive on the data
// stack with the first one on top.
func (e *Emitter) EmitFunctionPrologue(label string, params []string) {
	e.Emit(OpLabel, label)
	e.Emit(OpCreateFrame)
	e.Emit(OpPushFrame)
	for _, p := range params {
		e.Emit(OpDefVar, p)
		e.Emit(OpPopS, p)
	}
}

func (e *Emitter) EmitFunctionEpilogue() {
	e.Emit(OpPopFrame)
	e.Emit(OpReturn)
}

// EmitCall pushes argc arguments last to first through pushArg and calls
// label.
func (e *Emitter) EmitCall(label string, argc int, pushArg func(i int) error) error {
	for i := argc - 1; i >= 0; i-- {
		if err := pushArg(i); err != nil {
			return err
		}
	}
	e.Emit(OpCall, label)
	return nil
}

// EmitLoopHoistedDecls inserts a DEFVAR for every name right before
// LABEL label in the current sequence.
func (e *Emitter) EmitLoopHoistedDecls(label string, names []string) error {
	if len(names) == 0 {
		return nil
	}
	seq := e.current()
	at := -1
	for i := len(*seq) - 1; i >= 0; i-- {
		in := (*seq)[i]
		if in.Op == OpLabel && in.Args[0] == label {
			at = i
			break
		}
	}
	if at < 0 {
		return fmt.Errorf("loop label %s not found", label)
	}

	decls := make([]Instruction, len(names))
	for i, n := range names {
		decls[i] = Instruction{Op: OpDefVar, Args: []string{n}}
	}
	out := make([]Instruction, 0, len(*seq)+len(decls))
	out = append(out, (*seq)[:at]...)
	out = append(out, decls...)
	out = append(out, (*seq)[at:]...)
	*seq = out
	return nil
}

// Use marks a library routine as referenced.
func (e *Emitter) Use(r Routine) {
	e.used[r] = true
}

func (e *Emitter) Uses(r Routine) bool {
	return e.used[r]
}
