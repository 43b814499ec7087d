package parser

import (
	"errors"

	"ifjc/internal/diag"
	"ifjc/internal/ifjcode"
	"ifjc/internal/symtable"
	"ifjc/internal/token"
	"ifjc/internal/types"
)

type paramDecl struct {
	param    symtable.Param
	labelTok token.Token
	idTok    token.Token
}

// parseFuncDef parses `func name(label id: Type, ...) [-> Type] { ... }`.
// Functions may only be defined at top level.
func (p *Parser) parseFuncDef(funcTok token.Token) error {
	if p.fn != nil || p.syms.Depth() > 0 {
		return diag.At(diag.Syntax, funcTok, "functions can only be defined at top level")
	}
	nameTok, err := p.expect(token.Ident, "function name")
	if err != nil {
		return err
	}
	decls, err := p.parseParams()
	if err != nil {
		return err
	}

	result := types.Void
	tok := p.next()
	if tok.Kind == token.Arrow {
		typeTok := p.next()
		t, ok := types.FromToken(typeTok.Kind)
		if !ok {
			return p.unexpected(typeTok, "return type")
		}
		result = t
	} else {
		p.src.Pushback(tok)
	}

	if err := checkParams(decls); err != nil {
		return err
	}
	params := make([]symtable.Param, len(decls))
	for i, d := range decls {
		params[i] = d.param
	}

	sym, err := p.defineFunc(nameTok, params, result)
	if err != nil {
		return err
	}
	p.tracef("function %s: %d parameter(s), returns %s", sym.Name, len(params), result)

	p.fn = sym
	p.emit.InFunc = true
	defer func() {
		p.fn = nil
		p.emit.InFunc = false
	}()

	// parameters get their own block around the body's block
	p.syms.PushBlock()
	codes := make([]string, len(params))
	for i, prm := range params {
		codes[i] = p.emit.UniqueName(ifjcode.LF, prm.ID)
		if prm.ID == "_" {
			continue
		}
		if err := p.insertLocal(symtable.NewVar(prm.ID, prm.Type, true, true, codes[i]), decls[i].idTok); err != nil {
			return err
		}
	}
	p.emit.EmitFunctionPrologue(sym.Code, codes)

	returns, err := p.parseBlock()
	if err != nil {
		return err
	}
	p.syms.PopBlock()

	if result != types.Void && !returns {
		return diag.At(diag.Func, nameTok, "function %q does not return a value on every path", sym.Name)
	}
	if result == types.Void {
		p.emit.Emit(ifjcode.OpPushS, ifjcode.Nil)
		p.emit.EmitFunctionEpilogue()
	}
	return nil
}

// parseParams parses `(label id: Type, ...)`.
func (p *Parser) parseParams() ([]paramDecl, error) {
	if _, err := p.expect(token.LParen, "'('"); err != nil {
		return nil, err
	}
	var decls []paramDecl
	tok := p.next()
	if tok.Kind == token.RParen {
		return nil, nil
	}
	for {
		labelTok := tok
		if labelTok.Kind != token.Ident && labelTok.Kind != token.Underscore {
			return nil, p.unexpected(labelTok, "parameter label")
		}
		idTok := p.next()
		if idTok.Kind != token.Ident && idTok.Kind != token.Underscore {
			return nil, p.unexpected(idTok, "parameter name")
		}
		if _, err := p.expect(token.Colon, "':'"); err != nil {
			return nil, err
		}
		typeTok := p.next()
		t, ok := types.FromToken(typeTok.Kind)
		if !ok {
			return nil, p.unexpected(typeTok, "parameter type")
		}
		decls = append(decls, paramDecl{
			param:    symtable.Param{Label: labelTok.Lexeme, ID: idTok.Lexeme, Type: t},
			labelTok: labelTok,
			idTok:    idTok,
		})

		tok = p.next()
		if tok.Kind == token.RParen {
			return decls, nil
		}
		if tok.Kind != token.Comma {
			return nil, p.unexpected(tok, "',' or ')'")
		}
		tok = p.next()
	}
}

// checkParams runs once the whole signature is known. "_" is exempt from
// every rule.
func checkParams(decls []paramDecl) error {
	ids := make(map[string]bool)
	labels := make(map[string]bool)
	for _, d := range decls {
		label, id := d.param.Label, d.param.ID
		if label != "_" && label == id {
			return diag.At(diag.Other, d.idTok, "parameter %q has the same label and name", id)
		}
		if id != "_" {
			if ids[id] {
				return diag.At(diag.Redef, d.idTok, "duplicate parameter %q", id)
			}
			ids[id] = true
		}
		if label != "_" {
			if labels[label] {
				return diag.At(diag.Other, d.labelTok, "duplicate parameter label %q", label)
			}
			labels[label] = true
		}
	}
	return nil
}

// defineFunc creates the function entry or settles the signature inferred from
// earlier calls.
func (p *Parser) defineFunc(nameTok token.Token, params []symtable.Param, result types.Type) (*symtable.Symbol, error) {
	name := nameTok.Lexeme
	sym := p.syms.LookupGlobal(name)
	if sym == nil {
		sym = symtable.NewFunc(name, name, params, result)
		if err := p.syms.InsertGlobal(sym); err != nil {
			return nil, diag.At(diag.Internal, nameTok, "%v", err)
		}
		return sym, nil
	}
	if sym.Kind != symtable.SymFunc || sym.Builtin || sym.State == symtable.Defined {
		return nil, diag.At(diag.Redef, nameTok, "redefinition of %q", name)
	}
	if err := sym.Define(params, result); err != nil {
		var use diag.Error
		if errors.As(err, &use) {
			return nil, err
		}
		return nil, diag.At(diag.Func, nameTok, "%v", err)
	}
	return sym, nil
}

// parseCallStmt compiles a call used as a statement and drops its result.
func (p *Parser) parseCallStmt(nameTok token.Token) error {
	items, err := p.toPostfix(nameTok)
	if err != nil {
		return err
	}
	if len(items) != 1 || items[0].kind != itemCall {
		return diag.At(diag.Syntax, nameTok, "expected a function call")
	}
	res, err := p.analyze(items)
	if err != nil {
		return err
	}
	if err := p.emitItems(items); err != nil {
		return err
	}
	// user functions always leave exactly one value, nil for Void ones
	if !items[0].sym.Builtin || res.Type != types.Void {
		p.emit.Emit(ifjcode.OpPopS, ifjcode.R0)
	}
	return nil
}
