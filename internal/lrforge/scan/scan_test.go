package scan

import (
	"testing"

	"github.com/dekarrin/lrforge/internal/lrforge/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, source string) []token.Token {
	t.Helper()

	s := New("test", source)
	var toks []token.Token
	for {
		tok, err := s.Scan()
		require.NoError(t, err)
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return toks
}

func Test_Scanner_Basic(t *testing.T) {
	assert := assert.New(t)

	toks := scanAll(t, "rule $S : ('a')")

	var types []token.Type
	for _, tok := range toks {
		types = append(types, tok.Type)
	}

	assert.Equal([]token.Type{
		token.Identifier, token.Dollar, token.Identifier, token.Colon,
		token.OpenParen, token.String, token.CloseParen, token.EOF,
	}, types)
}

func Test_Scanner_NewlineSuppressedInParens(t *testing.T) {
	assert := assert.New(t)

	toks := scanAll(t, "rule $S :\n    ('a'\n     'b') => { return 1 }\n\nrule A :\n    ('c')")

	var newlineCount int
	for _, tok := range toks {
		if tok.Type == token.Newline {
			newlineCount++
		}
	}
	// one newline after each rule header and one between the rules (the
	// blank line collapses into it); the one inside the parens is suppressed.
	assert.Equal(3, newlineCount)
}

func Test_Scanner_Comment(t *testing.T) {
	assert := assert.New(t)

	toks := scanAll(t, "# a comment\nrule")
	assert.Equal(token.Newline, toks[0].Type)
	assert.Equal(token.Identifier, toks[1].Type)
}

func Test_Scanner_ForeignBlockNestedBraces(t *testing.T) {
	assert := assert.New(t)

	toks := scanAll(t, "{ if (x) { return 1 } }")
	require.Len(t, toks, 2)
	assert.Equal(token.ForeignBlock, toks[0].Type)
	assert.Equal(" if (x) { return 1 } ", toks[0].Content)
}

func Test_Scanner_StringEscapes(t *testing.T) {
	assert := assert.New(t)

	toks := scanAll(t, `'ab\'cd'`)
	require.Len(t, toks, 2)
	assert.Equal(token.String, toks[0].Type)
	assert.Equal(`ab\'cd`, toks[0].Content)
}

func Test_Scanner_Arrow(t *testing.T) {
	assert := assert.New(t)

	toks := scanAll(t, "=>")
	assert.Equal(token.Arrow, toks[0].Type)
}

func Test_Scanner_UnterminatedString(t *testing.T) {
	s := New("test", "'abc\ndef")
	_, err := s.Scan()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unterminated string literal")
}

func Test_Scanner_UnterminatedBlock(t *testing.T) {
	s := New("test", "{ abc")
	_, err := s.Scan()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unterminated block")
}

func Test_Scanner_UnmatchedCloseParen(t *testing.T) {
	s := New("test", ")")
	_, err := s.Scan()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unmatched closing parenthesis")
}

func Test_Scanner_MismatchedBracket(t *testing.T) {
	s := New("test", "(]")
	_, err := s.Scan()
	require.NoError(t, err)
	_, err = s.Scan()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unmatched closing bracket")
}

func Test_Scanner_InvalidToken(t *testing.T) {
	s := New("test", "@")
	_, err := s.Scan()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid Token")
}
