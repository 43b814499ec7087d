package ifjcode

import (
	"fmt"
	"strconv"
	"strings"

	"ifjc/internal/token"
)

// Fixed literals.
const (
	Nil   = "nil@nil"
	True  = "bool@true"
	False = "bool@false"
)

// EncodeConstant turns a source literal into an IFJcode23 operand.
func EncodeConstant(kind token.Kind, lit string) (string, error) {
	switch kind {
	case token.Int:
		v, err := strconv.ParseInt(lit, 10, 64)
		if err != nil {
			return "", fmt.Errorf("integer literal %s out of range", lit)
		}
		return Int(v), nil
	case token.Double:
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return "", fmt.Errorf("floating-point literal %s out of range", lit)
		}
		return Float(f), nil
	case token.String:
		return Str(lit), nil
	case token.True:
		return True, nil
	case token.False:
		return False, nil
	case token.Nil:
		return Nil, nil
	}
	return "", fmt.Errorf("%s is not a literal", kind)
}

func Int(v int64) string {
	return "int@" + strconv.FormatInt(v, 10)
}

// Float formats f the way C's %a does.
func Float(f float64) string {
	return "float@" + hexFloat(f)
}

func Str(s string) string {
	return "string@" + Escape(s)
}

// hexFloat drops the zero padding Go puts in the exponent ("p+01" -> "p+1").
func hexFloat(f float64) string {
	s := strconv.FormatFloat(f, 'x', -1, 64)
	i := strings.IndexByte(s, 'p')
	if i < 0 || i+2 >= len(s) {
		return s
	}
	mant, sign, exp := s[:i+1], s[i+1:i+2], strings.TrimLeft(s[i+2:], "0")
	if exp == "" {
		exp = "0"
	}
	return mant + sign + exp
}
