// Package scan implements the grammar-file scanner (spec §4.2): it turns
// grammar source text into a stream of token.Token values, tracking bracket
// balance so that logical newlines are suppressed inside (...) and [...].
//
// This is a Go port of original_source/lrpy's GrammarScanner
// (parsegen/scanner.py), restructured in the teacher's style: a struct with
// small single-purpose helper methods and a Scan() that loops trying each
// lexing rule in turn.
package scan

import (
	"github.com/dekarrin/lrforge/internal/lrforge/diag"
	"github.com/dekarrin/lrforge/internal/lrforge/reader"
	"github.com/dekarrin/lrforge/internal/lrforge/span"
	"github.com/dekarrin/lrforge/internal/lrforge/token"
)

// Scanner produces a token.Token stream from grammar source text.
type Scanner struct {
	r          *reader.StringReader
	src        *diag.Source
	parenStack []token.Type
	newline    bool
}

// New creates a Scanner over source. name is used in rendered diagnostics.
func New(name, source string) *Scanner {
	return &Scanner{
		r:   reader.New(source),
		src: diag.NewSource(name, source),
	}
}

// Source returns the diag.Source backing this scanner, so that later stages
// (parser, builder) can render diagnostics against the same line map.
func (s *Scanner) Source() *diag.Source {
	return s.src
}

func isCommentStart(c rune) bool { return c == '#' }

// Scan returns the next token in the stream. Once EOF has been returned,
// further calls continue to return EOF tokens.
func (s *Scanner) Scan() (token.Token, error) {
	for {
		s.r.SkipWhitespace()

		if s.r.AtEOF() {
			pos := s.r.Position()
			return token.Token{Type: token.EOF, Span: span.New(pos, pos)}, nil
		}

		c := s.r.Peek(0)

		if isCommentStart(c) {
			s.r.Skip(func(c rune) bool { return !reader.IsLinebreak(c) })
			continue
		}

		start := s.r.Position()

		if reader.IsLinebreak(c) {
			s.r.Advance(1)
			if len(s.parenStack) > 0 || s.newline {
				continue
			}
			s.newline = true
			return token.Token{Type: token.Newline, Span: span.New(start, start+1)}, nil
		}

		s.newline = false

		if reader.IsIdentifierStart(c) {
			content := s.r.Accumulate(reader.IsIdentifierContinue)
			return token.Token{Type: token.Identifier, Span: span.New(start, s.r.Position()), Content: content}, nil
		}

		if c == '\'' || c == '"' {
			return s.scanString(c, start)
		}

		if c == '{' {
			return s.scanForeignBlock(start)
		}

		if tok, ok, err := s.scanBracketOrOperator(c, start); ok || err != nil {
			return tok, err
		}

		return token.Token{}, s.src.Grammar(span.New(start, start+1), "Invalid Token")
	}
}

func (s *Scanner) scanString(terminator rune, start int) (token.Token, error) {
	s.r.Advance(1)
	contentStart := s.r.Position()

	for {
		if s.r.AtEOF() {
			return token.Token{}, s.src.Grammar(span.New(start, start+1), "Unterminated string literal")
		}

		c := s.r.Peek(0)
		if reader.IsLinebreak(c) {
			return token.Token{}, s.src.Grammar(span.New(start, start+1), "Unterminated string literal")
		}

		if reader.IsEscape(c) {
			s.r.Advance(2)
			continue
		}
		if c == terminator {
			break
		}
		s.r.Advance(1)
	}

	content := s.r.Source[contentStart:s.r.Position()]
	s.r.Advance(1) // consume closing terminator

	return token.Token{Type: token.String, Span: span.New(start, s.r.Position()), Content: content}, nil
}

func (s *Scanner) scanForeignBlock(start int) (token.Token, error) {
	s.r.Advance(1) // consume '{'
	contentStart := s.r.Position()
	depth := 1

	for {
		if s.r.AtEOF() {
			return token.Token{}, s.src.Grammar(span.New(start, start+1), "Unterminated block")
		}

		c := s.r.Peek(0)
		if c == '{' {
			depth++
		} else if c == '}' {
			depth--
			if depth == 0 {
				break
			}
		}
		s.r.Advance(1)
	}

	content := s.r.Source[contentStart:s.r.Position()]
	s.r.Advance(1) // consume closing '}'

	return token.Token{Type: token.ForeignBlock, Span: span.New(start, s.r.Position()), Content: content}, nil
}

func (s *Scanner) scanBracketOrOperator(c rune, start int) (token.Token, bool, error) {
	single := func(t token.Type) (token.Token, bool, error) {
		s.r.Advance(1)
		return token.Token{Type: t, Span: span.New(start, start+1)}, true, nil
	}

	switch c {
	case '(':
		s.parenStack = append(s.parenStack, token.OpenParen)
		return single(token.OpenParen)
	case ')':
		if err := s.popBracket(token.OpenParen, start); err != nil {
			return token.Token{}, true, err
		}
		return single(token.CloseParen)
	case '[':
		s.parenStack = append(s.parenStack, token.OpenBracket)
		return single(token.OpenBracket)
	case ']':
		if err := s.popBracket(token.OpenBracket, start); err != nil {
			return token.Token{}, true, err
		}
		return single(token.CloseBracket)
	case ':':
		return single(token.Colon)
	case '+':
		return single(token.Plus)
	case '*':
		return single(token.Star)
	case '$':
		return single(token.Dollar)
	case '=':
		if s.r.Peek(1) == '>' {
			s.r.Advance(2)
			return token.Token{Type: token.Arrow, Span: span.New(start, start+2)}, true, nil
		}
	}

	return token.Token{}, false, nil
}

func (s *Scanner) popBracket(want token.Type, start int) error {
	msg := "Unmatched closing parenthesis"
	if want == token.OpenBracket {
		msg = "Unmatched closing bracket"
	}

	if len(s.parenStack) == 0 {
		return s.src.Grammar(span.New(start, start+1), msg)
	}
	top := s.parenStack[len(s.parenStack)-1]
	if top != want {
		return s.src.Grammar(span.New(start, start+1), msg)
	}
	s.parenStack = s.parenStack[:len(s.parenStack)-1]
	return nil
}
