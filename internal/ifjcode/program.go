package ifjcode

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const Header = ".IFJcode23"

// Program returns the complete instruction list in output order: scratch
// and global declarations, the main sequence, the exit, used library routines
// and the function bodies.
func (e *Emitter) Program() []Instruction {
	var out []Instruction
	for _, r := range scratch {
		out = append(out, ins(OpDefVar, r))
	}
	out = append(out, e.globals...)
	out = append(out, e.main...)
	out = append(out, ins(OpExit, Int(0)))
	for _, r := range routines {
		if e.used[r] {
			out = append(out, r.body()...)
		}
	}
	out = append(out, e.funcs...)
	return out
}

// WriteTo writes the program text, one instruction per line.
func (e *Emitter) WriteTo(w io.Writer) (int64, error) {
	if e.err != nil {
		return 0, e.err
	}
	bw := bufio.NewWriter(w)
	var n int64
	c, err := fmt.Fprintln(bw, Header)
	n += int64(c)
	if err != nil {
		return n, err
	}
	for _, in := range e.Program() {
		c, err := fmt.Fprintln(bw, in.String())
		n += int64(c)
		if err != nil {
			return n, err
		}
	}
	return n, bw.Flush()
}

// String renders the whole program.
func (e *Emitter) String() string {
	var sb strings.Builder
	if _, err := e.WriteTo(&sb); err != nil {
		return ""
	}
	return sb.String()
}

// Parse reads program text back into instructions, checking the header, the
// opcodes and their operand counts. Comments (#) and blank lines are skipped.
func Parse(r io.Reader) ([]Instruction, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	line := 0
	sawHeader := false
	var out []Instruction
	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		if !sawHeader {
			if !strings.EqualFold(fields[0], Header) || len(fields) != 1 {
				return nil, fmt.Errorf("line %d: missing %s header", line, Header)
			}
			sawHeader = true
			continue
		}
		op, ok := LookupOpCode(fields[0])
		if !ok {
			return nil, fmt.Errorf("line %d: unknown opcode %q", line, fields[0])
		}
		in := Instruction{Op: op, Args: fields[1:]}
		if len(in.Args) == 0 {
			in.Args = nil
		}
		if err := in.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, in)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if !sawHeader {
		return nil, fmt.Errorf("missing %s header", Header)
	}
	return out, nil
}
