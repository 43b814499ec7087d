package parser

import (
	"ifjc/internal/diag"
	"ifjc/internal/ifjcode"
	"ifjc/internal/symtable"
	"ifjc/internal/token"
	"ifjc/internal/types"
)

// parseIf parses both `if let name {...}` and `if cond {...}`, each with an
// optional `else {...}` or `else if ...`.
func (p *Parser) parseIf(ifTok token.Token) error {
	ctx := p.labelCtx()
	elseLabel := p.emit.UniqueLabel(ctx, "else")
	endLabel := p.emit.UniqueLabel(ctx, "endif")

	var thenReturns bool
	tok := p.next()
	if tok.Kind == token.Let {
		binding, err := p.optionalBinding(elseLabel)
		if err != nil {
			return err
		}
		p.syms.PushBlock()
		if err := p.insertLocal(binding, tok); err != nil {
			return err
		}
		returns, err := p.parseBlock()
		if err != nil {
			return err
		}
		p.syms.PopBlock()
		thenReturns = returns
	} else {
		if err := p.condition(tok, "if"); err != nil {
			return err
		}
		p.emit.Emit(ifjcode.OpPushS, ifjcode.False)
		p.emit.Emit(ifjcode.OpJumpIfEqS, elseLabel)
		returns, err := p.parseBlock()
		if err != nil {
			return err
		}
		thenReturns = returns
	}

	tok = p.next()
	if tok.Kind != token.Else {
		p.src.Pushback(tok)
		p.emit.Emit(ifjcode.OpLabel, elseLabel)
		return nil
	}

	p.emit.Emit(ifjcode.OpJump, endLabel)
	p.emit.Emit(ifjcode.OpLabel, elseLabel)

	var elseReturns bool
	tok = p.next()
	if tok.Kind == token.If {
		p.syms.PushBlock()
		if err := p.parseIf(tok); err != nil {
			return err
		}
		elseReturns = p.syms.PopBlock()
	} else {
		p.src.Pushback(tok)
		returns, err := p.parseBlock()
		if err != nil {
			return err
		}
		elseReturns = returns
	}
	p.emit.Emit(ifjcode.OpLabel, endLabel)

	if thenReturns && elseReturns {
		p.syms.SetReturns(true)
	}
	return nil
}

// optionalBinding checks `let name` of an if-let and emits the nil test. It
// returns the narrowed shadow of the variable for the if branch.
func (p *Parser) optionalBinding(elseLabel string) (*symtable.Symbol, error) {
	nameTok, err := p.expect(token.Ident, "variable name")
	if err != nil {
		return nil, err
	}
	sym := p.syms.Lookup(nameTok.Lexeme)
	switch {
	case sym == nil || sym.Kind != symtable.SymVar:
		return nil, diag.At(diag.Undef, nameTok, "undefined variable %q", nameTok.Lexeme)
	case !sym.Init:
		return nil, diag.At(diag.Undef, nameTok, "variable %q used before being initialized", nameTok.Lexeme)
	case sym.ValueType() != types.Unknown && !types.IsNilable(sym.ValueType()):
		return nil, diag.At(diag.Type, nameTok, "%q of type %s is not optional", nameTok.Lexeme, sym.ValueType())
	case !sym.Let:
		return nil, diag.At(diag.Other, nameTok, "optional binding requires a constant, %q is declared with var", nameTok.Lexeme)
	}
	p.emit.Emit(ifjcode.OpJumpIfEq, elseLabel, sym.Code, ifjcode.Nil)

	narrowed := symtable.NewVar(sym.Name, types.Base(sym.ValueType()), true, true, sym.Code)
	if sym.ValueType() == types.Unknown && sym.Origin != nil {
		origin := sym.Origin
		narrowed.Origin = &symtable.Deferred{Fn: origin.Fn, Unwrap: true}
		err := postpone([]*symtable.Symbol{origin.Fn}, func() error {
			if t := origin.Resolve(); !types.IsNilable(t) {
				return diag.At(diag.Func, nameTok, "%q of type %s is not optional", nameTok.Lexeme, t)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return narrowed, nil
}

// condition compiles a boolean condition and leaves it on the data stack.
func (p *Parser) condition(first token.Token, stmt string) error {
	res, err := p.compileExpr(first)
	if err != nil {
		return err
	}
	if res.Type != types.Bool && res.Type != types.Unknown {
		return diag.At(diag.Type, first, "%s condition must be Bool, got %s", stmt, res.Type)
	}
	return postpone(res.pending(), func() error {
		switch t := res.known(); t {
		case types.Bool:
			return nil
		case types.Void:
			return diag.At(diag.Type, first, "%s condition has no value", stmt)
		default:
			return diag.At(diag.Func, first, "%s condition must be Bool, got %s", stmt, t)
		}
	})
}

// parseWhile emits
//
//	LABEL start; cond; PUSHS false; JUMPIFEQS end; body; JUMP start; LABEL end
//
// Declarations anywhere inside the outermost loop are hoisted before its
// start label.
func (p *Parser) parseWhile(whileTok token.Token) error {
	ctx := p.labelCtx()
	start := p.emit.UniqueLabel(ctx, "while")
	end := p.emit.UniqueLabel(ctx, "endwhile")
	outermost := p.loopDepth == 0

	p.emit.Emit(ifjcode.OpLabel, start)
	if err := p.condition(p.next(), "while"); err != nil {
		return err
	}
	p.emit.Emit(ifjcode.OpPushS, ifjcode.False)
	p.emit.Emit(ifjcode.OpJumpIfEqS, end)

	p.loopDepth++
	_, err := p.parseBlock()
	p.loopDepth--
	if err != nil {
		return err
	}

	p.emit.Emit(ifjcode.OpJump, start)
	p.emit.Emit(ifjcode.OpLabel, end)

	if outermost {
		if len(p.hoist) > 0 {
			p.tracef("hoisting %d declaration(s) before %s", len(p.hoist), start)
		}
		if err := p.emit.EmitLoopHoistedDecls(start, p.hoist); err != nil {
			return diag.At(diag.Internal, whileTok, "%v", err)
		}
		p.hoist = nil
	}
	return nil
}

// parseReturn parses `return [expr]`. A value must start on the same line.
func (p *Parser) parseReturn(retTok token.Token) error {
	if p.fn == nil {
		return diag.At(diag.Other, retTok, "return outside of a function")
	}
	want := p.fn.Type

	tok := p.next()
	hasValue := !tok.LineBreak && tok.Kind != token.RBrace && tok.Kind != token.EOF
	switch {
	case hasValue && want == types.Void:
		return diag.At(diag.Return, tok, "function %q returns Void and cannot return a value", p.fn.Name)
	case !hasValue && want != types.Void:
		p.src.Pushback(tok)
		return diag.At(diag.Return, retTok, "function %q must return a value of type %s", p.fn.Name, want)
	}

	if !hasValue {
		p.src.Pushback(tok)
		p.emit.Emit(ifjcode.OpPushS, ifjcode.Nil)
	} else {
		res, err := p.compileExpr(tok)
		if err != nil {
			return err
		}
		switch {
		case types.Promotes(want, res.Type, res.Const):
			p.emit.Emit(ifjcode.OpInt2FloatS)
		case res.Type == types.Void || !types.Assignable(want, res.Type):
			return diag.At(diag.Func, tok, "function %q returns %s, cannot return %s", p.fn.Name, want, res.Type)
		}
		name := p.fn.Name
		err = postpone(res.pending(), func() error {
			if t := res.known(); t == types.Void || !types.Assignable(want, t) {
				return diag.At(diag.Func, tok, "function %q returns %s, cannot return %s", name, want, t)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	p.emit.EmitFunctionEpilogue()
	p.syms.SetReturns(true)
	return nil
}
