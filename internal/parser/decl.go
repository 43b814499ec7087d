package parser

import (
	"ifjc/internal/diag"
	"ifjc/internal/ifjcode"
	"ifjc/internal/symtable"
	"ifjc/internal/token"
	"ifjc/internal/types"
)

// parseVarDecl parses `let|var name [: Type] [= expr]`. The variable becomes
// visible only after its initializer.
func (p *Parser) parseVarDecl(kw token.Token) error {
	nameTok, err := p.expect(token.Ident, "variable name")
	if err != nil {
		return err
	}
	name := nameTok.Lexeme
	if p.syms.LookupLocal(name) != nil {
		return diag.At(diag.Redef, nameTok, "redefinition of %q", name)
	}

	declared := types.Unknown
	hasType := false
	tok := p.next()
	if tok.Kind == token.Colon {
		typeTok := p.next()
		t, ok := types.FromToken(typeTok.Kind)
		if !ok {
			return p.unexpected(typeTok, "type")
		}
		declared, hasType = t, true
		tok = p.next()
	}

	code := p.emit.UniqueName(p.frame(), name)
	sym := symtable.NewVar(name, declared, kw.Kind == token.Let, false, code)

	if tok.Kind != token.Assign {
		p.src.Pushback(tok)
		if !hasType {
			return p.unexpected(tok, "type annotation or initializer")
		}
		p.declare(code)
		if types.IsNilable(declared) {
			p.emit.Emit(ifjcode.OpMove, code, ifjcode.Nil)
			sym.Init = true
		}
		return p.insertLocal(sym, nameTok)
	}

	first := p.next()
	p.declare(code)
	res, err := p.compileExpr(first)
	if err != nil {
		return err
	}
	switch {
	case res.Type == types.Void:
		return diag.At(diag.Type, first, "cannot initialize %q with a call of a Void function", name)
	case !hasType && res.Type == types.Nil:
		return diag.At(diag.UnknownT, first, "cannot infer the type of %q from nil", name)
	case !hasType:
		sym.Type = res.Type
		sym.Origin = res.Origin
	case types.Promotes(declared, res.Type, res.Const):
		p.emit.Emit(ifjcode.OpInt2FloatS)
	case !types.Assignable(declared, res.Type):
		return diag.At(diag.Type, first, "cannot initialize %q of type %s with %s", name, declared, res.Type)
	}
	err = postpone(res.pending(), func() error {
		t := res.known()
		switch {
		case t == types.Void:
			return diag.At(diag.Type, first, "cannot initialize %q with a call of a Void function", name)
		case !types.Assignable(declared, t):
			return diag.At(diag.Func, first, "cannot initialize %q of type %s with %s", name, declared, t)
		}
		return nil
	})
	if err != nil {
		return err
	}
	p.emit.Emit(ifjcode.OpPopS, code)
	sym.Init = true
	return p.insertLocal(sym, nameTok)
}

func (p *Parser) insertLocal(sym *symtable.Symbol, at token.Token) error {
	if err := p.syms.InsertLocal(sym); err != nil {
		if p.syms.LookupLocal(sym.Name) != nil {
			return diag.At(diag.Redef, at, "redefinition of %q", sym.Name)
		}
		return diag.At(diag.Internal, at, "%v", err)
	}
	return nil
}

// parseAssign parses `name = expr`.
func (p *Parser) parseAssign(nameTok token.Token) error {
	name := nameTok.Lexeme
	sym := p.syms.Lookup(name)
	if sym == nil || sym.Kind != symtable.SymVar {
		return diag.At(diag.Undef, nameTok, "assignment to undefined variable %q", name)
	}
	if sym.Let && sym.Init {
		return diag.At(diag.Other, nameTok, "cannot assign twice to constant %q", name)
	}
	if _, err := p.expect(token.Assign, "'='"); err != nil {
		return err
	}

	first := p.next()
	res, err := p.compileExpr(first)
	if err != nil {
		return err
	}
	dst := sym.ValueType()
	switch {
	case res.Type == types.Void:
		return diag.At(diag.Type, first, "cannot assign a call of a Void function to %q", name)
	case types.Promotes(dst, res.Type, res.Const):
		p.emit.Emit(ifjcode.OpInt2FloatS)
	case !types.Assignable(dst, res.Type):
		return diag.At(diag.Type, first, "cannot assign %s to %q of type %s", res.Type, name, dst)
	}
	var fns []*symtable.Symbol
	if dst == types.Unknown && sym.Origin != nil {
		fns = append(fns, sym.Origin.Fn)
	}
	err = postpone(append(fns, res.pending()...), func() error {
		dst, t := sym.ValueType(), res.known()
		switch {
		case t == types.Void:
			return diag.At(diag.Type, first, "cannot assign a call of a Void function to %q", name)
		case !types.Assignable(dst, t):
			return diag.At(diag.Func, first, "cannot assign %s to %q of type %s", t, name, dst)
		}
		return nil
	})
	if err != nil {
		return err
	}
	p.emit.Emit(ifjcode.OpPopS, sym.Code)
	sym.Init = true
	return nil
}
