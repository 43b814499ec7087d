package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"ifjc/internal/token"
)

type Lexer struct {
	input []rune

	pos int

	ch   rune
	line int
	col  int

	// sawNewline records whether a newline was skipped before the next token.
	sawNewline bool

	errors  []string
	lastMsg string
}

func New(input string) *Lexer {
	l := &Lexer{
		input: []rune(input),
		line:  1,
		col:   0,
	}
	l.readChar()
	return l
}

func (l *Lexer) NextToken() token.Token {
	if ok := l.skipWhitespaceAndComments(); !ok {
		return l.illegal(token.Position{Line: l.line, Column: l.col}, "")
	}

	pos := token.Position{
		Line:   l.line,
		Column: l.col,
	}
	lineBreak := l.sawNewline
	l.sawNewline = false

	tok := l.scan(pos)
	tok.LineBreak = lineBreak
	return tok
}

func (l *Lexer) scan(pos token.Position) token.Token {
	ch := l.ch

	// EOF
	if ch == 0 {
		return token.Token{
			Kind:   token.EOF,
			Lexeme: "",
			Pos:    pos,
		}
	}

	// Numbers
	if isDigit(ch) {
		lit, kind, ok := l.readNumber()
		if !ok {
			l.errorf(pos, "malformed number literal %q", lit)
			return l.illegal(pos, lit)
		}
		return token.Token{
			Kind:   kind,
			Lexeme: lit,
			Pos:    pos,
		}
	}

	// Identifiers / keywords / type names
	if isLetter(ch) {
		lit := l.readIdentifier()
		if lit == "_" {
			return token.Token{Kind: token.Underscore, Lexeme: lit, Pos: pos}
		}
		kind := token.LookupIdent(lit)
		// "Int?" is one token; "Int??" is not a type.
		if nilKind, ok := token.Nilable(kind); ok && l.ch == '?' && l.peekChar() != '?' {
			l.readChar()
			return token.Token{Kind: nilKind, Lexeme: lit + "?", Pos: pos}
		}
		return token.Token{
			Kind:   kind,
			Lexeme: lit,
			Pos:    pos,
		}
	}

	// Strings
	if ch == '"' {
		return l.readString(pos)
	}

	// Single- and two-character tokens
	var kind token.Kind
	var lexeme string

	switch ch {
	case ',':
		kind = token.Comma
		lexeme = ","
	case ':':
		kind = token.Colon
		lexeme = ":"
	case '(':
		kind = token.LParen
		lexeme = "("
	case ')':
		kind = token.RParen
		lexeme = ")"
	case '{':
		kind = token.LBrace
		lexeme = "{"
	case '}':
		kind = token.RBrace
		lexeme = "}"
	case '+':
		kind = token.Plus
		lexeme = "+"
	case '*':
		kind = token.Star
		lexeme = "*"
	case '/':
		kind = token.Slash
		lexeme = "/"
	case '-':
		if l.peekChar() == '>' {
			l.readChar()
			kind = token.Arrow
			lexeme = "->"
		} else {
			kind = token.Minus
			lexeme = "-"
		}
	case '?':
		if l.peekChar() == '?' {
			l.readChar()
			kind = token.Coalesce
			lexeme = "??"
		} else {
			kind = token.Question
			lexeme = "?"
		}
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			kind = token.NotEq
			lexeme = "!="
		} else {
			kind = token.Bang
			lexeme = "!"
		}
	case '=':
		if l.peekChar() == '=' {
			l.readChar()
			kind = token.Eq
			lexeme = "=="
		} else {
			kind = token.Assign
			lexeme = "="
		}
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			kind = token.LtEq
			lexeme = "<="
		} else {
			kind = token.Lt
			lexeme = "<"
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			kind = token.GtEq
			lexeme = ">="
		} else {
			kind = token.Gt
			lexeme = ">"
		}
	default:
		l.errorf(pos, "unexpected character %q", ch)
		kind = token.Illegal
		lexeme = string(ch)
	}

	l.readChar()

	return token.Token{
		Kind:   kind,
		Lexeme: lexeme,
		Pos:    pos,
	}
}

// Helpers

func (l *Lexer) illegal(pos token.Position, lexeme string) token.Token {
	return token.Token{Kind: token.Illegal, Lexeme: lexeme, Pos: pos}
}

func (l *Lexer) readChar() {
	if l.pos >= len(l.input) {
		// keep l.pos-1 pointing one past the last rune
		l.pos = len(l.input) + 1
		l.ch = 0
		return
	}

	l.ch = l.input[l.pos]
	l.pos++

	if l.ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
}

func (l *Lexer) peekChar() rune {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

// skipWhitespaceAndComments returns false on an unterminated block comment.
func (l *Lexer) skipWhitespaceAndComments() bool {
	for {
		for unicode.IsSpace(l.ch) {
			if l.ch == '\n' {
				l.sawNewline = true
			}
			l.readChar()
		}

		if l.ch != '/' {
			return true
		}
		switch l.peekChar() {
		case '/':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		case '*':
			start := token.Position{Line: l.line, Column: l.col}
			l.readChar() // '/'
			l.readChar() // '*'
			// block comments nest
			depth := 1
			for depth > 0 {
				switch {
				case l.ch == 0:
					l.errorf(start, "unterminated block comment")
					return false
				case l.ch == '/' && l.peekChar() == '*':
					l.readChar()
					depth++
				case l.ch == '*' && l.peekChar() == '/':
					l.readChar()
					depth--
				case l.ch == '\n':
					l.sawNewline = true
				}
				l.readChar()
			}
		default:
			return true
		}
	}
}

func (l *Lexer) readIdentifier() string {
	start := l.pos - 1 // current rune is already in l.ch
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return string(l.input[start : l.pos-1])
}

func (l *Lexer) readNumber() (string, token.Kind, bool) {
	var sb strings.Builder
	kind := token.Int
	for isDigit(l.ch) {
		sb.WriteRune(l.ch)
		l.readChar()
	}
	if l.ch == '.' {
		kind = token.Double
		sb.WriteRune(l.ch)
		l.readChar()
		if !isDigit(l.ch) {
			return sb.String(), kind, false
		}
		for isDigit(l.ch) {
			sb.WriteRune(l.ch)
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		kind = token.Double
		sb.WriteRune(l.ch)
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			sb.WriteRune(l.ch)
			l.readChar()
		}
		if !isDigit(l.ch) {
			return sb.String(), kind, false
		}
		for isDigit(l.ch) {
			sb.WriteRune(l.ch)
			l.readChar()
		}
	}
	return sb.String(), kind, true
}

func (l *Lexer) readString(pos token.Position) token.Token {
	l.readChar() // opening quote
	if l.ch == '"' && l.peekChar() == '"' {
		l.readChar()
		l.readChar()
		return l.readMultiLineString(pos)
	}

	var sb strings.Builder
	for {
		switch l.ch {
		case 0, '\n':
			l.errorf(pos, "unterminated string literal")
			return l.illegal(pos, sb.String())
		case '"':
			l.readChar()
			return token.Token{Kind: token.String, Lexeme: sb.String(), Pos: pos}
		case '\\':
			escPos := token.Position{Line: l.line, Column: l.col}
			l.readChar()
			r, ok := l.readEscape(escPos)
			if !ok {
				return l.illegal(escPos, sb.String())
			}
			sb.WriteRune(r)
		default:
			sb.WriteRune(l.ch)
		}
		l.readChar()
	}
}

// readMultiLineString reads a """ literal. The opening delimiter must end its
// line and the closing one must stand on its own line; the closing line's
// indentation is removed from every content line.
func (l *Lexer) readMultiLineString(pos token.Position) token.Token {
	for l.ch == ' ' || l.ch == '\t' {
		l.readChar()
	}
	if l.ch != '\n' {
		l.errorf(pos, "multi-line string literal must start on a new line")
		return l.illegal(pos, "")
	}
	l.readChar()

	var lines []string
	var cur strings.Builder
	for {
		switch l.ch {
		case 0:
			l.errorf(pos, "unterminated multi-line string literal")
			return l.illegal(pos, "")
		case '\n':
			lines = append(lines, cur.String())
			cur.Reset()
			l.readChar()
			continue
		case '\\':
			escPos := token.Position{Line: l.line, Column: l.col}
			l.readChar()
			r, ok := l.readEscape(escPos)
			if !ok {
				return l.illegal(escPos, "")
			}
			cur.WriteRune(r)
			l.readChar()
			continue
		case '"':
			if indent := cur.String(); strings.TrimLeft(indent, " \t") == "" && l.peekChar() == '"' && l.peekAt(1) == '"' {
				l.readChar()
				l.readChar()
				l.readChar()
				for i, line := range lines {
					lines[i] = strings.TrimPrefix(line, indent)
				}
				return token.Token{Kind: token.String, Lexeme: strings.Join(lines, "\n"), Pos: pos}
			}
		}
		cur.WriteRune(l.ch)
		l.readChar()
	}
}

func (l *Lexer) peekAt(offset int) rune {
	if l.pos+offset >= len(l.input) {
		return 0
	}
	return l.input[l.pos+offset]
}

func (l *Lexer) readEscape(pos token.Position) (rune, bool) {
	switch l.ch {
	case '\\':
		return '\\', true
	case '"':
		return '"', true
	case 'n':
		return '\n', true
	case 't':
		return '\t', true
	case 'r':
		return '\r', true
	case 'u':
		return l.readUnicodeEscape(pos)
	default:
		l.errorf(pos, "invalid escape sequence")
		return 0, false
	}
}

// readUnicodeEscape reads the "{XXXX}" part of \u{XXXX} (1 to 8 hex digits).
func (l *Lexer) readUnicodeEscape(pos token.Position) (rune, bool) {
	l.readChar()
	if l.ch != '{' {
		l.errorf(pos, "invalid unicode escape, expected '{'")
		return 0, false
	}
	var digits strings.Builder
	for {
		l.readChar()
		if l.ch == '}' {
			break
		}
		if !isHexDigit(l.ch) || digits.Len() == 8 {
			l.errorf(pos, "invalid unicode escape")
			return 0, false
		}
		digits.WriteRune(l.ch)
	}
	if digits.Len() == 0 {
		l.errorf(pos, "empty unicode escape")
		return 0, false
	}
	v, err := strconv.ParseUint(digits.String(), 16, 32)
	if err != nil {
		l.errorf(pos, "invalid unicode escape: %v", err)
		return 0, false
	}
	return rune(v), true
}

func (l *Lexer) errorf(pos token.Position, format string, args ...interface{}) {
	l.lastMsg = fmt.Sprintf(format, args...)
	l.errors = append(l.errors, formatError(pos, l.lastMsg))
}

func formatError(pos token.Position, msg string) string {
	return fmt.Sprintf("%d:%d: %s", pos.Line, pos.Column, msg)
}

func (l *Lexer) Errors() []string {
	return l.errors
}

func isLetter(ch rune) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch rune) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}
