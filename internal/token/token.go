package token

import "fmt"

type Kind int

const (
	Illegal Kind = iota
	EOF

	Ident  // Identifier
	Int    // Integer literal
	Double // Floating-point literal
	String // String literal (escapes already decoded)

	// Keywords
	Let
	Var
	If
	Else
	While
	Func
	Return
	Nil
	True
	False

	// Type keywords
	IntType       // Int
	DoubleType    // Double
	StringType    // String
	BoolType      // Bool
	IntNilType    // Int?
	DoubleNilType // Double?
	StringNilType // String?
	BoolNilType   // Bool?

	Underscore // _

	// Operators
	Assign   // =
	Plus     // +
	Minus    // -
	Star     // *
	Slash    // /
	Bang     // !
	Coalesce // ??
	Arrow    // ->

	Eq    // ==
	NotEq // !=
	Lt    // <
	LtEq  // <=
	Gt    // >
	GtEq  // >=

	// Symbols
	Comma    // ,
	Colon    // :
	Question // ?
	LParen   // (
	RParen   // )
	LBrace   // {
	RBrace   // }
)

type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

type Token struct {
	Kind   Kind
	Lexeme string
	Pos    Position

	// LineBreak is set when at least one newline separates the token from the
	// previous one. Statements must be separated by a line break.
	LineBreak bool
}

func (t Token) String() string {
	if t.Lexeme == "" {
		return t.Kind.String()
	}
	return fmt.Sprintf("%s(%q)", t.Kind, t.Lexeme)
}

var kindNames = map[Kind]string{
	Illegal:       "Illegal",
	EOF:           "EOF",
	Ident:         "Ident",
	Int:           "Int",
	Double:        "Double",
	String:        "String",
	Let:           "Let",
	Var:           "Var",
	If:            "If",
	Else:          "Else",
	While:         "While",
	Func:          "Func",
	Return:        "Return",
	Nil:           "Nil",
	True:          "True",
	False:         "False",
	IntType:       "IntType",
	DoubleType:    "DoubleType",
	StringType:    "StringType",
	BoolType:      "BoolType",
	IntNilType:    "IntNilType",
	DoubleNilType: "DoubleNilType",
	StringNilType: "StringNilType",
	BoolNilType:   "BoolNilType",
	Underscore:    "Underscore",
	Assign:        "Assign",
	Plus:          "Plus",
	Minus:         "Minus",
	Star:          "Star",
	Slash:         "Slash",
	Bang:          "Bang",
	Coalesce:      "Coalesce",
	Arrow:         "Arrow",
	Eq:            "Eq",
	NotEq:         "NotEq",
	Lt:            "Lt",
	LtEq:          "LtEq",
	Gt:            "Gt",
	GtEq:          "GtEq",
	Comma:         "Comma",
	Colon:         "Colon",
	Question:      "Question",
	LParen:        "LParen",
	RParen:        "RParen",
	LBrace:        "LBrace",
	RBrace:        "RBrace",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

var keywords = map[string]Kind{
	"let":    Let,
	"var":    Var,
	"if":     If,
	"else":   Else,
	"while":  While,
	"func":   Func,
	"return": Return,
	"nil":    Nil,
	"true":   True,
	"false":  False,

	"Int":    IntType,
	"Double": DoubleType,
	"String": StringType,
	"Bool":   BoolType,
}

func LookupIdent(lit string) Kind {
	if kind, ok := keywords[lit]; ok {
		return kind
	}
	return Ident
}

// Nilable maps a type keyword to its nilable form ("Int" -> "Int?").
// ok is false for kinds that are not type keywords.
func Nilable(k Kind) (Kind, bool) {
	switch k {
	case IntType:
		return IntNilType, true
	case DoubleType:
		return DoubleNilType, true
	case StringType:
		return StringNilType, true
	case BoolType:
		return BoolNilType, true
	}
	return k, false
}

// IsType reports whether k names a data type.
func IsType(k Kind) bool {
	switch k {
	case IntType, DoubleType, StringType, BoolType,
		IntNilType, DoubleNilType, StringNilType, BoolNilType:
		return true
	}
	return false
}

// IsLiteral reports whether k is a constant literal.
func IsLiteral(k Kind) bool {
	switch k {
	case Int, Double, String, Nil, True, False:
		return true
	}
	return false
}
