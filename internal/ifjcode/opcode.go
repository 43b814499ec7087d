// Package ifjcode models the IFJcode23 target: opcodes, operands, the
// instruction buffers filled during compilation and the program text writer.
package ifjcode

import (
	"fmt"
	"strings"
)

// OpCode is an IFJcode23 instruction
type OpCode byte

const (
	OpInvalid OpCode = iota

	// Frames and calls
	OpMove
	OpCreateFrame
	OpPushFrame
	OpPopFrame
	OpDefVar
	OpCall
	OpReturn

	// Data stack
	OpPushS
	OpPopS
	OpClearS

	// Arithmetic, relational, boolean, conversions
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpIDiv
	OpAddS
	OpSubS
	OpMulS
	OpDivS
	OpIDivS
	OpLT
	OpGT
	OpEQ
	OpLTS
	OpGTS
	OpEQS
	OpAnd
	OpOr
	OpNot
	OpAndS
	OpOrS
	OpNotS
	OpInt2Float
	OpFloat2Int
	OpInt2Char
	OpStri2Int
	OpInt2FloatS
	OpFloat2IntS
	OpInt2CharS
	OpStri2IntS

	// I/O
	OpRead
	OpWrite

	// Strings
	OpConcat
	OpStrLen
	OpGetChar
	OpSetChar

	// Types
	OpType

	// Control flow
	OpLabel
	OpJump
	OpJumpIfEq
	OpJumpIfNeq
	OpJumpIfEqS
	OpJumpIfNeqS
	OpExit

	// Debugging
	OpBreak
	OpDPrint

	opCount
)

type opInfo struct {
	name  string
	arity int
}

var opTable = [opCount]opInfo{
	OpInvalid:     {"INVALID", -1},
	OpMove:        {"MOVE", 2},
	OpCreateFrame: {"CREATEFRAME", 0},
	OpPushFrame:   {"PUSHFRAME", 0},
	OpPopFrame:    {"POPFRAME", 0},
	OpDefVar:      {"DEFVAR", 1},
	OpCall:        {"CALL", 1},
	OpReturn:      {"RETURN", 0},
	OpPushS:       {"PUSHS", 1},
	OpPopS:        {"POPS", 1},
	OpClearS:      {"CLEARS", 0},
	OpAdd:         {"ADD", 3},
	OpSub:         {"SUB", 3},
	OpMul:         {"MUL", 3},
	OpDiv:         {"DIV", 3},
	OpIDiv:        {"IDIV", 3},
	OpAddS:        {"ADDS", 0},
	OpSubS:        {"SUBS", 0},
	OpMulS:        {"MULS", 0},
	OpDivS:        {"DIVS", 0},
	OpIDivS:       {"IDIVS", 0},
	OpLT:          {"LT", 3},
	OpGT:          {"GT", 3},
	OpEQ:          {"EQ", 3},
	OpLTS:         {"LTS", 0},
	OpGTS:         {"GTS", 0},
	OpEQS:         {"EQS", 0},
	OpAnd:         {"AND", 3},
	OpOr:          {"OR", 3},
	OpNot:         {"NOT", 2},
	OpAndS:        {"ANDS", 0},
	OpOrS:         {"ORS", 0},
	OpNotS:        {"NOTS", 0},
	OpInt2Float:   {"INT2FLOAT", 2},
	OpFloat2Int:   {"FLOAT2INT", 2},
	OpInt2Char:    {"INT2CHAR", 2},
	OpStri2Int:    {"STRI2INT", 3},
	OpInt2FloatS:  {"INT2FLOATS", 0},
	OpFloat2IntS:  {"FLOAT2INTS", 0},
	OpInt2CharS:   {"INT2CHARS", 0},
	OpStri2IntS:   {"STRI2INTS", 0},
	OpRead:        {"READ", 2},
	OpWrite:       {"WRITE", 1},
	OpConcat:      {"CONCAT", 3},
	OpStrLen:      {"STRLEN", 2},
	OpGetChar:     {"GETCHAR", 3},
	OpSetChar:     {"SETCHAR", 3},
	OpType:        {"TYPE", 2},
	OpLabel:       {"LABEL", 1},
	OpJump:        {"JUMP", 1},
	OpJumpIfEq:    {"JUMPIFEQ", 3},
	OpJumpIfNeq:   {"JUMPIFNEQ", 3},
	OpJumpIfEqS:   {"JUMPIFEQS", 1},
	OpJumpIfNeqS:  {"JUMPIFNEQS", 1},
	OpExit:        {"EXIT", 1},
	OpBreak:       {"BREAK", 0},
	OpDPrint:      {"DPRINT", 1},
}

var opByName = func() map[string]OpCode {
	m := make(map[string]OpCode, opCount)
	for op := OpCode(1); op < opCount; op++ {
		m[opTable[op].name] = op
	}
	return m
}()

func (op OpCode) String() string {
	if op < opCount {
		return opTable[op].name
	}
	return fmt.Sprintf("OpCode(%d)", byte(op))
}

// Arity is the exact number of operands op takes, or -1 for an unknown op.
func (op OpCode) Arity() int {
	if op == OpInvalid || op >= opCount {
		return -1
	}
	return opTable[op].arity
}

// LookupOpCode resolves an opcode name. Names are case-insensitive in
// IFJcode23.
func LookupOpCode(name string) (OpCode, bool) {
	op, ok := opByName[strings.ToUpper(name)]
	return op, ok
}

// Instruction is one line of target code.
type Instruction struct {
	Op   OpCode
	Args []string
}

func (in Instruction) String() string {
	if len(in.Args) == 0 {
		return in.Op.String()
	}
	return in.Op.String() + " " + strings.Join(in.Args, " ")
}

// Validate checks the operand count against the opcode table.
func (in Instruction) Validate() error {
	want := in.Op.Arity()
	if want < 0 {
		return fmt.Errorf("invalid opcode %d", byte(in.Op))
	}
	if len(in.Args) != want {
		return fmt.Errorf("%s takes %d operand(s), got %d", in.Op, want, len(in.Args))
	}
	return nil
}
