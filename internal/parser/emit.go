package parser

import (
	"ifjc/internal/builtins"
	"ifjc/internal/diag"
	"ifjc/internal/ifjcode"
	"ifjc/internal/token"
	"ifjc/internal/types"
)

// emitItems generates stack code for an analyzed postfix expression.
func (p *Parser) emitItems(items []*item) error {
	for _, it := range items {
		if it.skip {
			continue
		}
		switch it.kind {
		case itemIdent, itemLiteral:
			p.emit.Emit(ifjcode.OpPushS, it.code)
		case itemCall:
			if err := p.emitCall(it); err != nil {
				return err
			}
		case itemOperator:
			p.emitOperator(it)
		}
		if it.promote {
			p.emit.Emit(ifjcode.OpInt2FloatS)
		}
	}
	return nil
}

func (p *Parser) emitCall(it *item) error {
	pushArg := func(i int) error {
		return p.emitItems(it.args[i].items)
	}
	if !it.sym.Builtin {
		return p.emit.EmitCall(it.sym.Code, len(it.args), pushArg)
	}

	b := builtins.LookupByName(it.sym.Name)
	if b == nil {
		return errAt(diag.Internal, it, "builtin %q has no code generator", it.sym.Name)
	}
	for i := len(it.args) - 1; i >= 0; i-- {
		if err := pushArg(i); err != nil {
			return err
		}
	}
	b.Gen(p.emit, p.labelCtx(), len(it.args))
	return nil
}

func (p *Parser) emitOperator(it *item) {
	e := p.emit
	switch it.tok.Kind {
	case token.Bang:
		// nil is not checked at run time
	case token.Plus:
		if it.typ == types.String {
			e.Emit(ifjcode.OpPopS, ifjcode.R1)
			e.Emit(ifjcode.OpPopS, ifjcode.R0)
			e.Emit(ifjcode.OpConcat, ifjcode.R0, ifjcode.R0, ifjcode.R1)
			e.Emit(ifjcode.OpPushS, ifjcode.R0)
			return
		}
		e.Emit(ifjcode.OpAddS)
	case token.Minus:
		e.Emit(ifjcode.OpSubS)
	case token.Star:
		e.Emit(ifjcode.OpMulS)
	case token.Slash:
		if it.typ == types.Int {
			e.Emit(ifjcode.OpIDivS)
		} else {
			e.Emit(ifjcode.OpDivS)
		}
	case token.Lt:
		e.Emit(ifjcode.OpLTS)
	case token.Gt:
		e.Emit(ifjcode.OpGTS)
	case token.Eq:
		e.Emit(ifjcode.OpEQS)
	case token.NotEq:
		e.Emit(ifjcode.OpEQS)
		e.Emit(ifjcode.OpNotS)
	case token.LtEq:
		e.Emit(ifjcode.OpGTS)
		e.Emit(ifjcode.OpNotS)
	case token.GtEq:
		e.Emit(ifjcode.OpLTS)
		e.Emit(ifjcode.OpNotS)
	case token.Coalesce:
		if it.fold == foldNone {
			p.emitCoalesce()
		}
	}
}

// emitCoalesce replaces the two topmost values with the lower one unless it
// is nil, in which case the upper one is kept.
func (p *Parser) emitCoalesce() {
	e := p.emit
	ctx := p.labelCtx()
	isNil := e.UniqueLabel(ctx, "isnil")
	end := e.UniqueLabel(ctx, "endcoalesce")
	e.Emit(ifjcode.OpPopS, ifjcode.R1)
	e.Emit(ifjcode.OpPopS, ifjcode.R0)
	e.Emit(ifjcode.OpJumpIfEq, isNil, ifjcode.R0, ifjcode.Nil)
	e.Emit(ifjcode.OpPushS, ifjcode.R0)
	e.Emit(ifjcode.OpJump, end)
	e.Emit(ifjcode.OpLabel, isNil)
	e.Emit(ifjcode.OpPushS, ifjcode.R1)
	e.Emit(ifjcode.OpLabel, end)
}
