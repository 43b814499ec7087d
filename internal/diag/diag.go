// Package diag holds the compiler's error taxonomy. Every failure that leaves
// the compiler is an Error carrying one Kind, and the Kind is the process exit
// status.
package diag

import (
	"errors"
	"fmt"

	"ifjc/internal/token"
)

type Kind int

const (
	OK       Kind = 0
	Lex      Kind = 1
	Syntax   Kind = 2
	Redef    Kind = 3
	Func     Kind = 4
	Undef    Kind = 5
	Return   Kind = 6
	Type     Kind = 7
	UnknownT Kind = 8
	Other    Kind = 9
	Internal Kind = 99
)

var kindNames = map[Kind]string{
	OK:       "OK",
	Lex:      "LEX_ERR",
	Syntax:   "SYN_ERR",
	Redef:    "SEM_ERR_REDEF",
	Func:     "SEM_ERR_FUNC",
	Undef:    "SEM_ERR_UNDEF",
	Return:   "SEM_ERR_RETURN",
	Type:     "SEM_ERR_TYPE",
	UnknownT: "SEM_ERR_UKN_T",
	Other:    "SEM_ERR_OTHER",
	Internal: "COMPILER_ERROR",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is a positioned diagnostic.
type Error struct {
	Kind Kind
	Pos  token.Position
	Msg  string

	// AtEOF is set when the error was detected on the end-of-input token.
	// Interactive front-ends treat such errors as incomplete input.
	AtEOF bool
}

func (e Error) Error() string {
	return fmt.Sprintf("%s - ln %d, col %d: %s", e.Kind, e.Pos.Line, e.Pos.Column, e.Msg)
}

// At builds an error positioned on tok.
func At(kind Kind, tok token.Token, format string, args ...interface{}) error {
	return Error{
		Kind:  kind,
		Pos:   tok.Pos,
		Msg:   fmt.Sprintf(format, args...),
		AtEOF: tok.Kind == token.EOF,
	}
}

// AtEnd builds an error found only once the whole input was read, such as a
// reference left unresolved. More input may still resolve it, so it counts
// as incomplete.
func AtEnd(kind Kind, pos token.Position, format string, args ...interface{}) error {
	return Error{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, args...), AtEOF: true}
}

// Internalf reports a broken compiler invariant.
func Internalf(format string, args ...interface{}) error {
	return Error{Kind: Internal, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first Error found in err's chain. Errors that
// carry no Kind are internal.
func KindOf(err error) Kind {
	if err == nil {
		return OK
	}
	var e Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

func ExitCode(err error) int {
	return int(KindOf(err))
}

// IsIncomplete reports whether err was raised at end of input.
func IsIncomplete(err error) bool {
	var e Error
	return errors.As(err, &e) && e.AtEOF
}
