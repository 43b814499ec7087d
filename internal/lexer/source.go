package lexer

import "ifjc/internal/token"

// Source is the token stream consumed by the parser: a Lexer with a single
// pushback cell in front of it.
type Source struct {
	l    *Lexer
	back *token.Token
}

func NewSource(input string) *Source {
	return &Source{l: New(input)}
}

// Next returns the pushed-back token if there is one, otherwise the next
// token from the lexer.
func (s *Source) Next() token.Token {
	if s.back != nil {
		tok := *s.back
		s.back = nil
		return tok
	}
	return s.l.NextToken()
}

// Pushback returns tok to the stream; the next call to Next reissues it.
// Only one token can be held at a time.
func (s *Source) Pushback(tok token.Token) {
	if s.back != nil {
		panic("lexer: pushback slot already holds " + s.back.String())
	}
	s.back = &tok
}

// Peek returns the next token without consuming it.
func (s *Source) Peek() token.Token {
	tok := s.Next()
	s.Pushback(tok)
	return tok
}

// Err returns the message of the most recent lexical error without its
// position, or "" if there was none.
func (s *Source) Err() string {
	return s.l.lastMsg
}
