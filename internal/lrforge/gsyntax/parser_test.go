package gsyntax

import (
	"testing"

	"github.com/dekarrin/lrforge/internal/lrforge/ast"
	"github.com/dekarrin/lrforge/internal/lrforge/scan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseSource(t *testing.T, source string) *ast.Grammar {
	t.Helper()
	s := scan.New("test", source)
	p := New(s)
	g, err := p.Parse()
	require.NoError(t, err)
	return g
}

func Test_Parser_SingleRuleSingleAlternative(t *testing.T) {
	assert := assert.New(t)

	g := parseSource(t, "rule $S : ('a')")
	require.Len(t, g.Rules, 1)

	r := g.Rules[0]
	assert.True(r.Toplevel)
	assert.Equal("S", r.Name)
	require.Len(t, r.Alternatives, 1)

	alt := r.Alternatives[0]
	require.Len(t, alt.Items, 1)
	str, ok := alt.Items[0].(*ast.StringItem)
	require.True(t, ok)
	assert.Equal("a", str.Text)
}

func Test_Parser_MultipleAlternatives(t *testing.T) {
	assert := assert.New(t)

	g := parseSource(t, "rule A :\n    ('x')\n    ('y')\n")
	require.Len(t, g.Rules, 1)
	assert.Len(g.Rules[0].Alternatives, 2)
}

func Test_Parser_MultipleRules(t *testing.T) {
	assert := assert.New(t)

	g := parseSource(t, "rule $S : (A)\n\nrule A : ('a')")
	require.Len(t, g.Rules, 2)
	assert.Equal("S", g.Rules[0].Name)
	assert.Equal("A", g.Rules[1].Name)
}

func Test_Parser_ActionBlock(t *testing.T) {
	assert := assert.New(t)

	g := parseSource(t, "rule $S : (A) => { return A }")
	alt := g.Rules[0].Alternatives[0]
	require.NotNil(t, alt.Action)
	assert.Equal(" return A ", *alt.Action)
}

func Test_Parser_NamedItem(t *testing.T) {
	assert := assert.New(t)

	g := parseSource(t, "rule $S : (x: A 'b')")
	alt := g.Rules[0].Alternatives[0]
	require.Len(t, alt.Items, 2)

	named, ok := alt.Items[0].(*ast.NamedItem)
	require.True(t, ok)
	assert.Equal("x", named.Name)
	ident, ok := named.Inner.(*ast.IdentifierItem)
	require.True(t, ok)
	assert.Equal("A", ident.Name)
}

func Test_Parser_OptionalRepeatGroup(t *testing.T) {
	assert := assert.New(t)

	g := parseSource(t, "rule $S : ([A] B+ C* (D E))")
	alt := g.Rules[0].Alternatives[0]
	require.Len(t, alt.Items, 4)

	_, ok := alt.Items[0].(*ast.OptionalItem)
	assert.True(ok)
	_, ok = alt.Items[1].(*ast.RepeatItem)
	assert.True(ok)
	_, ok = alt.Items[2].(*ast.OptionalRepeatItem)
	assert.True(ok)
	group, ok := alt.Items[3].(*ast.GroupItem)
	require.True(t, ok)
	assert.Len(group.Items, 2)
}

func Test_Parser_NamedItemNotAllowedNested(t *testing.T) {
	require := require.New(t)

	s := scan.New("test", "rule $S : ([x: A])")
	p := New(s)
	_, err := p.Parse()
	require.Error(err)
	require.Contains(err.Error(), "Named item is not allowed here")
}

func Test_Parser_NamedItemNotAllowedInGroup(t *testing.T) {
	require := require.New(t)

	s := scan.New("test", "rule $S : ((x: A))")
	p := New(s)
	_, err := p.Parse()
	require.Error(err)
	require.Contains(err.Error(), "Named item is not allowed here")
}

func Test_Parser_GroupBypassesPostfixLoop(t *testing.T) {
	// A trailing '+' after a closed group is not consumed as a postfix
	// operator on the group itself (matching original_source's behavior) --
	// it is left for the next item position, where a bare '+' is invalid.
	s := scan.New("test", "rule $S : ((A)+)")
	p := New(s)
	_, err := p.Parse()
	require.Error(t, err)
}

func Test_Parser_MissingColon(t *testing.T) {
	require := require.New(t)

	s := scan.New("test", "rule S ('a')")
	p := New(s)
	_, err := p.Parse()
	require.Error(err)
}

func Test_Parser_EmptyGrammarProducesNoRules(t *testing.T) {
	g := parseSource(t, "")
	assert.Empty(t, g.Rules)
}
