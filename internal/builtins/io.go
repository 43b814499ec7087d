package builtins

import (
	"ifjc/internal/ifjcode"
	"ifjc/internal/types"
)

func init() {
	Register(Builtin{
		Meta: Meta{ID: ReadString, Name: "readString", Result: types.StringNil},
		Gen:  readGen("string"),
	})
	Register(Builtin{
		Meta: Meta{ID: ReadInt, Name: "readInt", Result: types.IntNil},
		Gen:  readGen("int"),
	})
	Register(Builtin{
		Meta: Meta{ID: ReadDouble, Name: "readDouble", Result: types.DoubleNil},
		Gen:  readGen("float"),
	})
	Register(Builtin{
		Meta: Meta{ID: Write, Name: "write", Result: types.Void, Variadic: true},
		Gen: func(e *ifjcode.Emitter, _ string, argc int) {
			e.Use(ifjcode.Write)
			e.Emit(ifjcode.OpPushS, ifjcode.Int(int64(argc)))
			e.Emit(ifjcode.OpCall, ifjcode.Write.Label())
		},
	})
}

// READ yields nil on malformed input, which is what the nilable result
// types promise.
func readGen(typ string) Gen {
	return func(e *ifjcode.Emitter, _ string, _ int) {
		e.Emit(ifjcode.OpRead, ifjcode.R0, typ)
		e.Emit(ifjcode.OpPushS, ifjcode.R0)
	}
}
