package parser

import (
	"ifjc/internal/diag"
	"ifjc/internal/symtable"
	"ifjc/internal/token"
	"ifjc/internal/types"
)

// Result describes a compiled expression whose value is on the data stack.
type Result struct {
	Type types.Type

	// Const is set for expressions built only from literals.
	Const bool

	// Origin is set when Type is Unknown: the value comes from a function
	// that is not defined yet.
	Origin *symtable.Deferred
}

// pending lists the functions whose definitions decide r's type.
func (r Result) pending() []*symtable.Symbol {
	if r.Type != types.Unknown || r.Origin == nil {
		return nil
	}
	return []*symtable.Symbol{r.Origin.Fn}
}

// known is r's type with a settled Origin looked through.
func (r Result) known() types.Type {
	if r.Type == types.Unknown {
		return r.Origin.Resolve()
	}
	return r.Type
}

type itemKind int

const (
	itemIdent itemKind = iota
	itemLiteral
	itemCall
	itemOperator
)

// fold records how a `??` was resolved at compile time.
type fold int

const (
	foldNone  fold = iota // runtime nil test
	foldLeft              // left is never nil, right is dropped
	foldRight             // left is the nil literal, left is dropped
)

// item is one element of an expression in postfix order.
type item struct {
	kind itemKind
	tok  token.Token

	// calls
	args []*callArg
	sym  *symtable.Symbol

	// filled in by analyze
	typ     types.Type
	isConst bool
	code    string // operand text of identifiers and literals
	start   int    // index of the first item of the subexpression rooted here
	promote bool   // convert the subexpression to Double after pushing it
	skip    bool   // subexpression dropped at compile time
	fold    fold
	origin  *symtable.Deferred // source of an Unknown typ
}

type callArg struct {
	label    string // "_" when the argument is unlabeled
	labelTok token.Token
	items    []*item
	res      Result
}

// tier orders binary operators from tightest (1) to loosest (4). The postfix
// `!` binds tighter than all of them and never enters the operator stack.
func tier(k token.Kind) int {
	switch k {
	case token.Star, token.Slash:
		return 1
	case token.Plus, token.Minus:
		return 2
	case token.Eq, token.NotEq, token.Lt, token.Gt, token.LtEq, token.GtEq:
		return 3
	case token.Coalesce:
		return 4
	}
	return 0
}

func isOperand(k token.Kind) bool {
	return k == token.Ident || token.IsLiteral(k)
}

// compileExpr compiles the expression starting at first and leaves its value
// on the data stack. The token that ends the expression is pushed back.
func (p *Parser) compileExpr(first token.Token) (Result, error) {
	items, err := p.toPostfix(first)
	if err != nil {
		return Result{}, err
	}
	res, err := p.analyze(items)
	if err != nil {
		return Result{}, err
	}
	if err := p.emitItems(items); err != nil {
		return Result{}, err
	}
	return res, nil
}

// toPostfix reads an infix expression and returns it in postfix order.
//
// At parenthesis depth 0 the expression ends at the first token that cannot
// continue it: an operand or '(' right after an operand, an unmatched ')',
// or anything that is neither operand nor operator. Inside parentheses such
// tokens are syntax errors.
func (p *Parser) toPostfix(first token.Token) ([]*item, error) {
	var out []*item
	var ops []token.Token
	depth := 0
	afterOperand := false

	tok := first
loop:
	for {
		switch {
		case isOperand(tok.Kind):
			if afterOperand {
				if depth == 0 {
					p.src.Pushback(tok)
					break loop
				}
				return nil, p.unexpected(tok, "operator or ')'")
			}
			it, err := p.operand(tok)
			if err != nil {
				return nil, err
			}
			out = append(out, it)
			afterOperand = true

		case tok.Kind == token.LParen:
			if afterOperand {
				if depth == 0 {
					p.src.Pushback(tok)
					break loop
				}
				return nil, p.unexpected(tok, "operator or ')'")
			}
			ops = append(ops, tok)
			depth++

		case tok.Kind == token.RParen:
			if depth == 0 {
				p.src.Pushback(tok)
				break loop
			}
			if !afterOperand {
				return nil, p.unexpected(tok, "operand")
			}
			for ops[len(ops)-1].Kind != token.LParen {
				out = append(out, &item{kind: itemOperator, tok: ops[len(ops)-1]})
				ops = ops[:len(ops)-1]
			}
			ops = ops[:len(ops)-1]
			depth--

		case tok.Kind == token.Bang:
			if !afterOperand {
				return nil, p.unexpected(tok, "operand before '!'")
			}
			out = append(out, &item{kind: itemOperator, tok: tok})

		case tier(tok.Kind) > 0:
			if !afterOperand {
				return nil, p.unexpected(tok, "operand")
			}
			for len(ops) > 0 {
				top := ops[len(ops)-1]
				if top.Kind == token.LParen || tier(top.Kind) > tier(tok.Kind) {
					break
				}
				out = append(out, &item{kind: itemOperator, tok: top})
				ops = ops[:len(ops)-1]
			}
			ops = append(ops, tok)
			afterOperand = false

		case tok.Kind == token.Illegal:
			return nil, p.unexpected(tok, "expression")

		default:
			p.src.Pushback(tok)
			break loop
		}
		tok = p.next()
	}

	if depth > 0 {
		return nil, p.unexpected(tok, "')'")
	}
	if !afterOperand {
		return nil, p.unexpected(tok, "expression")
	}
	for len(ops) > 0 {
		out = append(out, &item{kind: itemOperator, tok: ops[len(ops)-1]})
		ops = ops[:len(ops)-1]
	}
	return out, nil
}

// operand turns an identifier, literal or call into an item.
func (p *Parser) operand(tok token.Token) (*item, error) {
	if tok.Kind != token.Ident {
		return &item{kind: itemLiteral, tok: tok}, nil
	}
	nt := p.next()
	if nt.Kind != token.LParen {
		p.src.Pushback(nt)
		return &item{kind: itemIdent, tok: tok}, nil
	}
	args, err := p.parseArgs()
	if err != nil {
		return nil, err
	}
	return &item{kind: itemCall, tok: tok, args: args}, nil
}

// parseArgs parses the arguments of a call after its '('. An argument is
// `label: expr` or `expr`.
func (p *Parser) parseArgs() ([]*callArg, error) {
	var args []*callArg
	tok := p.next()
	if tok.Kind == token.RParen {
		return nil, nil
	}
	for {
		arg := &callArg{label: "_", labelTok: tok}
		first := tok
		if tok.Kind == token.Ident {
			nt := p.next()
			if nt.Kind == token.Colon {
				arg.label = tok.Lexeme
				first = p.next()
			} else {
				p.src.Pushback(nt)
			}
		}
		items, err := p.toPostfix(first)
		if err != nil {
			return nil, err
		}
		arg.items = items
		args = append(args, arg)

		tok = p.next()
		if tok.Kind == token.RParen {
			return args, nil
		}
		if tok.Kind != token.Comma {
			return nil, p.unexpected(tok, "',' or ')'")
		}
		tok = p.next()
	}
}

// errAt builds a semantic error positioned on an item.
func errAt(kind diag.Kind, it *item, format string, args ...interface{}) error {
	return diag.At(kind, it.tok, format, args...)
}
