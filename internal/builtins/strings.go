package builtins

import (
	"ifjc/internal/ifjcode"
	"ifjc/internal/types"
)

func init() {
	Register(Builtin{
		Meta: Meta{
			ID:     Length,
			Name:   "length",
			Params: []Param{{Label: "_", Type: types.String}},
			Result: types.Int,
		},
		Gen: func(e *ifjcode.Emitter, _ string, _ int) {
			e.Emit(ifjcode.OpPopS, ifjcode.R0)
			e.Emit(ifjcode.OpStrLen, ifjcode.R0, ifjcode.R0)
			e.Emit(ifjcode.OpPushS, ifjcode.R0)
		},
	})
	Register(Builtin{
		Meta: Meta{
			ID:   Substring,
			Name: "substring",
			Params: []Param{
				{Label: "of", Type: types.String},
				{Label: "startingAt", Type: types.Int},
				{Label: "endingBefore", Type: types.Int},
			},
			Result: types.StringNil,
		},
		Gen: func(e *ifjcode.Emitter, _ string, _ int) {
			e.Use(ifjcode.Substring)
			e.Emit(ifjcode.OpCall, ifjcode.Substring.Label())
		},
	})
}
