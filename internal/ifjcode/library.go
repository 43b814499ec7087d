package ifjcode

// Routine is a fixed library routine appended to the program when referenced.
type Routine string

const (
	// Write pops an argument count, then writes that many values from the
	// data stack.
	Write Routine = "$write"

	// Substring pops the string, the start and the end index and pushes the
	// substring, or nil when the bounds are invalid.
	Substring Routine = "$substring"
)

// routines lists every routine in output order.
var routines = []Routine{Write, Substring}

func (r Routine) Label() string {
	return string(r)
}

func (r Routine) body() []Instruction {
	switch r {
	case Write:
		return writeRoutine()
	case Substring:
		return substringRoutine()
	}
	return nil
}

func ins(op OpCode, args ...string) Instruction {
	return Instruction{Op: op, Args: args}
}

func writeRoutine() []Instruction {
	const (
		n    = "LF@n"
		v    = "LF@v"
		loop = "$write&loop"
		end  = "$write&end"
	)
	return []Instruction{
		ins(OpLabel, Write.Label()),
		ins(OpCreateFrame),
		ins(OpPushFrame),
		ins(OpDefVar, n),
		ins(OpPopS, n),
		ins(OpDefVar, v),
		ins(OpLabel, loop),
		ins(OpJumpIfEq, end, n, Int(0)),
		ins(OpPopS, v),
		ins(OpWrite, v),
		ins(OpSub, n, n, Int(1)),
		ins(OpJump, loop),
		ins(OpLabel, end),
		ins(OpPopFrame),
		ins(OpReturn),
	}
}

func substringRoutine() []Instruction {
	const (
		s      = "LF@s"
		i      = "LF@i"
		j      = "LF@j"
		length = "LF@len"
		cond   = "LF@cond"
		ch     = "LF@ch"
		res    = "LF@res"
		loop   = "$substring&loop"
		done   = "$substring&done"
		null   = "$substring&nil"
	)
	return []Instruction{
		ins(OpLabel, Substring.Label()),
		ins(OpCreateFrame),
		ins(OpPushFrame),
		ins(OpDefVar, s),
		ins(OpPopS, s),
		ins(OpDefVar, i),
		ins(OpPopS, i),
		ins(OpDefVar, j),
		ins(OpPopS, j),
		ins(OpDefVar, length),
		ins(OpStrLen, length, s),
		ins(OpDefVar, cond),
		ins(OpDefVar, ch),
		ins(OpDefVar, res),

		// i < 0
		ins(OpLT, cond, i, Int(0)),
		ins(OpJumpIfEq, null, cond, True),
		// j < 0
		ins(OpLT, cond, j, Int(0)),
		ins(OpJumpIfEq, null, cond, True),
		// i > j
		ins(OpGT, cond, i, j),
		ins(OpJumpIfEq, null, cond, True),
		// i >= len
		ins(OpLT, cond, i, length),
		ins(OpJumpIfEq, null, cond, False),
		// j > len
		ins(OpGT, cond, j, length),
		ins(OpJumpIfEq, null, cond, True),

		ins(OpMove, res, Str("")),
		ins(OpLabel, loop),
		ins(OpJumpIfEq, done, i, j),
		ins(OpGetChar, ch, s, i),
		ins(OpConcat, res, res, ch),
		ins(OpAdd, i, i, Int(1)),
		ins(OpJump, loop),
		ins(OpLabel, done),
		ins(OpPushS, res),
		ins(OpPopFrame),
		ins(OpReturn),

		ins(OpLabel, null),
		ins(OpPushS, Nil),
		ins(OpPopFrame),
		ins(OpReturn),
	}
}
