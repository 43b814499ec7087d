package parser

import (
	"errors"

	"ifjc/internal/diag"
	"ifjc/internal/ifjcode"
	"ifjc/internal/symtable"
	"ifjc/internal/token"
	"ifjc/internal/types"
)

// analyze resolves operands, type-checks every operator and marks the
// conversions and compile-time folds the emitter has to honour.
func (p *Parser) analyze(items []*item) (Result, error) {
	var stack []*item
	for i, it := range items {
		it.start = i
		switch it.kind {
		case itemIdent:
			if err := p.resolveIdent(it); err != nil {
				return Result{}, err
			}
		case itemLiteral:
			if err := resolveLiteral(it); err != nil {
				return Result{}, err
			}
		case itemCall:
			if err := p.resolveCall(it); err != nil {
				return Result{}, err
			}
		case itemOperator:
			if it.tok.Kind == token.Bang {
				if len(stack) < 1 {
					return Result{}, errAt(diag.Other, it, "missing operand of '!'")
				}
				x := stack[len(stack)-1]
				if err := checkUnwrap(it, x); err != nil {
					return Result{}, err
				}
				err := postpone(pendingOf(x), func() error {
					return checkUnwrap(&item{kind: it.kind, tok: it.tok}, known(x))
				})
				if err != nil {
					return Result{}, err
				}
				it.start = x.start
				stack[len(stack)-1] = it
				continue
			}
			if len(stack) < 2 {
				return Result{}, errAt(diag.Other, it, "missing operand of %q", it.tok.Lexeme)
			}
			a, b := stack[len(stack)-2], stack[len(stack)-1]
			stack = stack[:len(stack)-2]
			if err := p.checkBinary(it, a, b, items); err != nil {
				return Result{}, err
			}
			err := postpone(pendingOf(a, b), func() error {
				return p.recheckBinary(it, a, b)
			})
			if err != nil {
				return Result{}, err
			}
			it.start = a.start
		}
		stack = append(stack, it)
	}
	if len(stack) != 1 {
		at := token.Token{}
		if len(items) > 0 {
			at = items[0].tok
		}
		return Result{}, diag.At(diag.Other, at, "malformed expression")
	}
	root := stack[0]
	res := Result{Type: root.typ, Const: root.isConst}
	if root.typ == types.Unknown {
		res.Origin = root.origin
	}
	return res, nil
}

// postpone runs check once the functions in fns are defined. Uses that
// involve no pending function were fully checked already.
func postpone(fns []*symtable.Symbol, check func() error) error {
	if len(fns) == 0 {
		return nil
	}
	return symtable.Postpone(fns, check)
}

// pendingOf lists the functions that decide the Unknown types among xs.
func pendingOf(xs ...*item) []*symtable.Symbol {
	var fns []*symtable.Symbol
	for _, x := range xs {
		if x.typ == types.Unknown && x.origin != nil {
			fns = append(fns, x.origin.Fn)
		}
	}
	return fns
}

// known copies an operand for a repeated check, with its type resolved.
func known(x *item) *item {
	c := &item{kind: x.kind, tok: x.tok, typ: x.typ, isConst: x.isConst}
	if x.typ == types.Unknown && x.origin != nil {
		c.typ = x.origin.Resolve()
	}
	return c
}

// recheckBinary repeats the check of a binary operator once the results of
// its pending operands are known. Code was emitted for the types assumed
// then, so the known types must need no other conversion and no other
// instruction.
func (p *Parser) recheckBinary(it, a, b *item) error {
	ka, kb := known(a), known(b)
	c := &item{kind: it.kind, tok: it.tok}
	if err := p.checkBinary(c, ka, kb, nil); err != nil {
		if ka.typ == types.Void || kb.typ == types.Void {
			return err
		}
		return asFunc(err)
	}
	switch {
	case ka.promote != a.promote || kb.promote != b.promote,
		it.typ != types.Unknown && c.typ != it.typ,
		it.typ == types.Unknown && !emittedFor(it.tok.Kind, c.typ):
		return errAt(diag.Func, it, "operands %s and %s of %q do not match the types assumed before the function was defined",
			ka.typ, kb.typ, it.tok.Lexeme)
	}
	return nil
}

// emittedFor reports whether the instruction chosen for op on operands of
// unknown type also computes a result of type t.
func emittedFor(op token.Kind, t types.Type) bool {
	switch op {
	case token.Plus:
		return t != types.String
	case token.Slash:
		return t != types.Int
	}
	return true
}

// asFunc reports a type mismatch found after a definition as a signature
// error of that function.
func asFunc(err error) error {
	var e diag.Error
	if !errors.As(err, &e) {
		return err
	}
	e.Kind = diag.Func
	return e
}

func (p *Parser) resolveIdent(it *item) error {
	name := it.tok.Lexeme
	sym := p.syms.Lookup(name)
	switch {
	case sym == nil:
		return errAt(diag.Undef, it, "undefined variable %q", name)
	case sym.Kind == symtable.SymFunc:
		return errAt(diag.Return, it, "function %q used as a value", name)
	case !sym.Init:
		return errAt(diag.Undef, it, "variable %q used before being initialized", name)
	}
	it.typ = sym.ValueType()
	if it.typ == types.Unknown {
		it.origin = sym.Origin
	}
	it.code = sym.Code
	return nil
}

func resolveLiteral(it *item) error {
	code, err := ifjcode.EncodeConstant(it.tok.Kind, it.tok.Lexeme)
	if err != nil {
		return errAt(diag.Lex, it, "%v", err)
	}
	it.code = code
	it.isConst = true
	switch it.tok.Kind {
	case token.Int:
		it.typ = types.Int
	case token.Double:
		it.typ = types.Double
	case token.String:
		it.typ = types.String
	case token.True, token.False:
		it.typ = types.Bool
	case token.Nil:
		it.typ = types.Nil
	}
	return nil
}

// resolveCall checks a call against the callee's signature. A callee that is
// not known yet is recorded as pending, with this call as its signature.
func (p *Parser) resolveCall(it *item) error {
	callArgs := make([]symtable.Arg, len(it.args))
	for i, a := range it.args {
		res, err := p.analyze(a.items)
		if err != nil {
			return err
		}
		if res.Type == types.Void {
			return diag.At(diag.Func, a.labelTok, "argument %d of %q has no value", i+1, it.tok.Lexeme)
		}
		a.res = res
		callArgs[i] = symtable.Arg{Label: a.label, Type: res.Type, IntConst: res.Const && res.Type == types.Int}
	}

	name := it.tok.Lexeme
	sym := p.syms.Lookup(name)
	if sym == nil {
		sym = symtable.NewPendingFunc(name, name, it.tok.Pos, callArgs)
		if err := p.syms.InsertGlobal(sym); err != nil {
			return errAt(diag.Internal, it, "%v", err)
		}
		p.pending = append(p.pending, sym)
		it.sym = sym
		it.typ = sym.Type
		it.origin = &symtable.Deferred{Fn: sym}
		return p.postponeArgs(it)
	}
	if sym.Kind != symtable.SymFunc {
		return errAt(diag.Func, it, "%q is not a function", name)
	}
	promote, err := sym.UnifyCall(callArgs)
	if err != nil {
		return errAt(diag.Func, it, "%v", err)
	}
	for i, a := range it.args {
		if promote[i] {
			a.items[len(a.items)-1].promote = true
		}
	}
	it.sym = sym
	it.typ = sym.Type
	if sym.State == symtable.Pending {
		it.origin = &symtable.Deferred{Fn: sym}
	}
	return p.postponeArgs(it)
}

// postponeArgs checks the arguments whose values come from functions not
// defined yet against the parameter types of the callee, once all of them
// are known.
func (p *Parser) postponeArgs(it *item) error {
	fn := it.sym
	for i, a := range it.args {
		fns := a.res.pending()
		if fns == nil {
			continue
		}
		err := postpone(append(fns, fn), func() error {
			t := a.res.known()
			switch {
			case t == types.Void:
				return diag.At(diag.Func, a.labelTok, "argument %d of %q has no value", i+1, fn.Name)
			case fn.Variadic:
				return nil
			case !types.Assignable(fn.Params[i].Type, t):
				return diag.At(diag.Func, a.labelTok, "argument %d of %q: cannot pass %s as %s",
					i+1, fn.Name, t, fn.Params[i].Type)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func checkUnwrap(it, x *item) error {
	switch {
	case x.typ == types.Nil:
		return errAt(diag.Other, it, "cannot force-unwrap nil")
	case x.typ == types.Void || x.typ == types.Function:
		return errAt(diag.Type, it, "cannot force-unwrap %s", x.typ)
	}
	it.typ = types.Base(x.typ)
	if x.typ == types.Unknown && x.origin != nil {
		it.origin = &symtable.Deferred{Fn: x.origin.Fn, Unwrap: true}
	}
	return nil
}

func (p *Parser) checkBinary(it, a, b *item, items []*item) error {
	for _, x := range []*item{a, b} {
		if x.typ == types.Void || x.typ == types.Function {
			return errAt(diag.Type, it, "operand of %q has no value", it.tok.Lexeme)
		}
	}
	switch it.tok.Kind {
	case token.Plus, token.Minus, token.Star, token.Slash:
		return checkArithmetic(it, a, b)
	case token.Coalesce:
		return checkCoalesce(it, a, b, items)
	}
	return checkRelational(it, a, b)
}

func intConst(x *item) bool {
	return x.isConst && x.typ == types.Int
}

func checkArithmetic(it, a, b *item) error {
	ta, tb := a.typ, b.typ
	switch {
	case ta == types.Unknown && tb == types.Unknown:
		it.typ = types.Unknown
		it.origin = a.origin
		return nil
	case ta == types.Unknown:
		ta = tb
	case tb == types.Unknown:
		tb = ta
	}
	for _, t := range []types.Type{ta, tb} {
		if t == types.Nil || types.IsNilable(t) || t == types.Bool {
			return errAt(diag.Type, it, "invalid operands %s and %s for %q", a.typ, b.typ, it.tok.Lexeme)
		}
	}

	it.isConst = a.isConst && b.isConst
	switch {
	case ta == types.Int && tb == types.Int:
		it.typ = types.Int
	case ta == types.Double && tb == types.Double:
		it.typ = types.Double
	case ta == types.Int && tb == types.Double && intConst(a):
		a.promote = true
		it.typ = types.Double
	case ta == types.Double && tb == types.Int && intConst(b):
		b.promote = true
		it.typ = types.Double
	case ta == types.String && tb == types.String && it.tok.Kind == token.Plus:
		it.typ = types.String
	default:
		return errAt(diag.Type, it, "invalid operands %s and %s for %q", a.typ, b.typ, it.tok.Lexeme)
	}
	return nil
}

func checkRelational(it, a, b *item) error {
	it.typ = types.Bool
	ta, tb := a.typ, b.typ
	if ta == types.Unknown || tb == types.Unknown {
		return nil
	}
	ordering := it.tok.Kind != token.Eq && it.tok.Kind != token.NotEq
	if ordering {
		for _, t := range []types.Type{ta, tb} {
			if t == types.Nil || types.IsNilable(t) || t == types.Bool {
				return errAt(diag.Type, it, "cannot compare %s and %s with %q", ta, tb, it.tok.Lexeme)
			}
		}
	}

	switch {
	case types.Base(ta) == types.Base(tb):
		return nil
	case !ordering && ta == types.Nil && types.IsNilable(tb),
		!ordering && tb == types.Nil && types.IsNilable(ta):
		return nil
	case intConst(a) && types.Base(tb) == types.Double:
		a.promote = true
		return nil
	case intConst(b) && types.Base(ta) == types.Double:
		b.promote = true
		return nil
	}
	return errAt(diag.Type, it, "cannot compare %s and %s with %q", ta, tb, it.tok.Lexeme)
}

// checkCoalesce types `a ?? b` and folds it when the left side is known to be
// nil or known not to be.
func checkCoalesce(it, a, b *item, items []*item) error {
	ta, tb := a.typ, b.typ
	if tb == types.Nil || types.IsNilable(tb) {
		return errAt(diag.Type, it, "right operand of '??' must not be optional, got %s", tb)
	}

	switch {
	case ta == types.Nil:
		it.fold = foldRight
		it.typ = tb
		it.isConst = b.isConst
		skip(items, a)
	case ta == types.Unknown:
		it.typ = tb
		it.origin = b.origin
	case !types.IsNilable(ta):
		if tb != types.Unknown && tb != ta {
			return errAt(diag.Type, it, "operands of '??' differ: %s and %s", ta, tb)
		}
		it.fold = foldLeft
		it.typ = ta
		it.isConst = a.isConst
		skip(items, b)
	default:
		base := types.Base(ta)
		switch {
		case tb == types.Unknown, tb == base:
		case intConst(b) && base == types.Double:
			b.promote = true
		default:
			return errAt(diag.Type, it, "operands of '??' differ: %s and %s", ta, tb)
		}
		it.typ = base
	}
	return nil
}

// skip drops the subexpression rooted at x from emission.
func skip(items []*item, x *item) {
	for i := x.start; i < len(items) && items[i] != x; i++ {
		items[i].skip = true
	}
	x.skip = true
}
