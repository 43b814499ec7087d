// Package parser is the single-pass front end: a recursive-descent statement
// parser that type-checks as it goes and emits IFJcode23 through an
// ifjcode.Emitter. No syntax tree is built; expressions are the only
// constructs held in memory, one at a time, in postfix form.
package parser

import (
	"fmt"
	"io"

	"ifjc/internal/builtins"
	"ifjc/internal/diag"
	"ifjc/internal/ifjcode"
	"ifjc/internal/lexer"
	"ifjc/internal/symtable"
	"ifjc/internal/token"
)

type Options struct {
	// Capacity is the slot count of every symbol table block; 0 means
	// symtable.DefaultCapacity. It must be prime.
	Capacity int

	// Trace, when set, receives one line per function definition and per
	// flushed loop hoist.
	Trace io.Writer
}

// Parser is the compilation context. It owns everything that lives for one
// compilation: the token source, the symbol table, the emitter, the function
// being defined and the loop state.
type Parser struct {
	src  *lexer.Source
	syms *symtable.Table
	emit *ifjcode.Emitter

	fn        *symtable.Symbol // function being defined, nil at top level
	loopDepth int
	hoist     []string // DEFVARs postponed until the outermost loop closes

	pending []*symtable.Symbol // functions first seen at a call site

	trace io.Writer
}

func New(src *lexer.Source, opts Options) (*Parser, error) {
	capacity := opts.Capacity
	if capacity == 0 {
		capacity = symtable.DefaultCapacity
	}
	syms, err := symtable.NewWithCapacity(capacity)
	if err != nil {
		return nil, diag.Internalf("%v", err)
	}
	p := &Parser{
		src:   src,
		syms:  syms,
		emit:  ifjcode.NewEmitter(),
		trace: opts.Trace,
	}
	if err := p.declareBuiltins(); err != nil {
		return nil, err
	}
	return p, nil
}

// Emitter returns the instruction buffers filled by ParseProgram.
func (p *Parser) Emitter() *ifjcode.Emitter {
	return p.emit
}

func (p *Parser) declareBuiltins() error {
	for _, m := range builtins.All() {
		params := make([]symtable.Param, len(m.Params))
		for i, bp := range m.Params {
			params[i] = symtable.Param{Label: bp.Label, ID: bp.Label, Type: bp.Type}
		}
		sym := symtable.NewFunc(m.Name, m.Name, params, m.Result)
		sym.Builtin = true
		sym.Variadic = m.Variadic
		if err := p.syms.InsertGlobal(sym); err != nil {
			return diag.Internalf("declaring builtin %s: %v", m.Name, err)
		}
	}
	return nil
}

// ParseProgram compiles the whole input. It stops at the first error.
func (p *Parser) ParseProgram() error {
	for {
		tok := p.next()
		if tok.Kind == token.EOF {
			break
		}
		if err := p.parseStatement(tok); err != nil {
			return err
		}
		if err := p.endStatement(); err != nil {
			return err
		}
	}

	for _, fn := range p.pending {
		if fn.State == symtable.Pending {
			return diag.AtEnd(diag.Redef, fn.FirstCall, "function %q is called but never defined", fn.Name)
		}
	}
	if err := p.emit.Err(); err != nil {
		return diag.Internalf("%v", err)
	}
	return nil
}

func (p *Parser) parseStatement(tok token.Token) error {
	switch tok.Kind {
	case token.Let, token.Var:
		return p.parseVarDecl(tok)
	case token.Ident:
		nt := p.next()
		p.src.Pushback(nt)
		switch nt.Kind {
		case token.Assign:
			return p.parseAssign(tok)
		case token.LParen:
			return p.parseCallStmt(tok)
		}
		return p.unexpected(nt, "'=' or '(' after identifier")
	case token.LBrace:
		p.src.Pushback(tok)
		returns, err := p.parseBlock()
		if err != nil {
			return err
		}
		if returns {
			p.syms.SetReturns(true)
		}
		return nil
	case token.Func:
		return p.parseFuncDef(tok)
	case token.Return:
		return p.parseReturn(tok)
	case token.If:
		return p.parseIf(tok)
	case token.While:
		return p.parseWhile(tok)
	}
	return p.unexpected(tok, "statement")
}

// endStatement requires a line break before the next statement unless the
// enclosing block or the input ends.
func (p *Parser) endStatement() error {
	tok := p.src.Peek()
	switch {
	case tok.Kind == token.EOF, tok.Kind == token.RBrace, tok.LineBreak:
		return nil
	}
	return p.unexpected(tok, "line break after statement")
}

// parseBlock parses `{ statements }` in a fresh scope block and reports
// whether the block is return-guaranteed.
func (p *Parser) parseBlock() (bool, error) {
	if _, err := p.expect(token.LBrace, "'{'"); err != nil {
		return false, err
	}
	p.syms.PushBlock()
	for {
		tok := p.next()
		if tok.Kind == token.RBrace {
			break
		}
		if tok.Kind == token.EOF {
			return false, p.unexpected(tok, "'}'")
		}
		if err := p.parseStatement(tok); err != nil {
			return false, err
		}
		if err := p.endStatement(); err != nil {
			return false, err
		}
	}
	return p.syms.PopBlock(), nil
}

// ---------- Helpers ----------

func (p *Parser) next() token.Token {
	return p.src.Next()
}

func (p *Parser) expect(kind token.Kind, what string) (token.Token, error) {
	tok := p.next()
	if tok.Kind != kind {
		return tok, p.unexpected(tok, what)
	}
	return tok, nil
}

// unexpected reports tok where something else was required. An Illegal token
// is a lexical error.
func (p *Parser) unexpected(tok token.Token, what string) error {
	switch tok.Kind {
	case token.Illegal:
		msg := p.src.Err()
		if msg == "" {
			msg = "invalid token"
		}
		return diag.At(diag.Lex, tok, "%s", msg)
	case token.EOF:
		return diag.At(diag.Syntax, tok, "unexpected end of input, expected %s", what)
	}
	return diag.At(diag.Syntax, tok, "unexpected %q, expected %s", tok.Lexeme, what)
}

// frame is the frame of variables declared at the current point.
func (p *Parser) frame() string {
	if p.fn != nil {
		return ifjcode.LF
	}
	return ifjcode.GF
}

// labelCtx prefixes generated labels with the enclosing function's name.
func (p *Parser) labelCtx() string {
	if p.fn != nil {
		return p.fn.Name
	}
	return ""
}

// declare emits the DEFVAR for a new variable. Globals go to the program
// header so functions called ahead of the declaration can read them. Locals
// inside a loop are postponed: a jump back to the loop label must not
// re-execute a DEFVAR.
func (p *Parser) declare(code string) {
	if p.fn == nil {
		p.emit.DeclareGlobal(code)
		return
	}
	if p.loopDepth > 0 {
		p.hoist = append(p.hoist, code)
		return
	}
	p.emit.Emit(ifjcode.OpDefVar, code)
}

func (p *Parser) tracef(format string, args ...interface{}) {
	if p.trace == nil {
		return
	}
	fmt.Fprintf(p.trace, "[parser] "+format+"\n", args...)
}
