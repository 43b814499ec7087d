package builtins

import (
	"ifjc/internal/ifjcode"
	"ifjc/internal/types"
)

func init() {
	Register(Builtin{
		Meta: Meta{
			ID:     Int2Double,
			Name:   "Int2Double",
			Params: []Param{{Label: "_", Type: types.Int}},
			Result: types.Double,
		},
		Gen: func(e *ifjcode.Emitter, _ string, _ int) {
			e.Emit(ifjcode.OpInt2FloatS)
		},
	})
	Register(Builtin{
		Meta: Meta{
			ID:     Double2Int,
			Name:   "Double2Int",
			Params: []Param{{Label: "_", Type: types.Double}},
			Result: types.Int,
		},
		Gen: func(e *ifjcode.Emitter, _ string, _ int) {
			e.Emit(ifjcode.OpFloat2IntS)
		},
	})
	Register(Builtin{
		Meta: Meta{
			ID:     Chr,
			Name:   "chr",
			Params: []Param{{Label: "_", Type: types.Int}},
			Result: types.String,
		},
		Gen: func(e *ifjcode.Emitter, _ string, _ int) {
			e.Emit(ifjcode.OpInt2CharS)
		},
	})
	Register(Builtin{
		Meta: Meta{
			ID:     Ord,
			Name:   "ord",
			Params: []Param{{Label: "_", Type: types.String}},
			Result: types.Int,
		},
		// ord("") is 0
		Gen: func(e *ifjcode.Emitter, ctx string, _ int) {
			end := e.UniqueLabel(ctx, "ord")
			e.Emit(ifjcode.OpPopS, ifjcode.R0)
			e.Emit(ifjcode.OpStrLen, ifjcode.R1, ifjcode.R0)
			e.Emit(ifjcode.OpJumpIfEq, end, ifjcode.R1, ifjcode.Int(0))
			e.Emit(ifjcode.OpStri2Int, ifjcode.R1, ifjcode.R0, ifjcode.Int(0))
			e.Emit(ifjcode.OpLabel, end)
			e.Emit(ifjcode.OpPushS, ifjcode.R1)
		},
	})
}
