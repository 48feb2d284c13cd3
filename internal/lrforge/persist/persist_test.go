package persist

import (
	"testing"

	"github.com/dekarrin/lrforge/internal/lrforge/grammar/build"
	"github.com/dekarrin/lrforge/internal/lrforge/gsyntax"
	"github.com/dekarrin/lrforge/internal/lrforge/lr"
	"github.com/dekarrin/lrforge/internal/lrforge/scan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildResult(t *testing.T) *lr.Result {
	t.Helper()

	s := scan.New("test", "rule $S : (A '+' A) => { return 1 }\n\nrule A : ('x')")
	p := gsyntax.New(s)
	tree, err := p.Parse()
	require.NoError(t, err)

	g, err := build.Build(tree, []build.TerminalDecl{{Name: "+", Value: 1}, {Name: "x", Value: 2}}, s.Source())
	require.NoError(t, err)

	result, err := lr.New(g).Generate()
	require.NoError(t, err)
	return result
}

func Test_Grammar_RoundTrip(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	result := buildResult(t)

	data := EncodeGrammar(result.Grammar)
	restored, err := DecodeGrammar(data)
	require.NoError(err)

	assert.Equal(result.Grammar.Entrypoints, restored.Entrypoints)
	assert.Equal(result.Grammar.TerminalNames(), restored.TerminalNames())
	assert.Equal(result.Grammar.NonterminalNames(), restored.NonterminalNames())

	for _, name := range result.Grammar.NonterminalNames() {
		orig, _ := result.Grammar.Nonterminal(name)
		got, ok := restored.Nonterminal(name)
		require.True(ok)
		require.Len(got.Productions, len(orig.Productions))
		for i := range orig.Productions {
			assert.Equal(orig.Productions[i].String(), got.Productions[i].String())
		}
	}
}

func Test_Result_RoundTrip(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	result := buildResult(t)

	data := EncodeResult(result)
	restored, err := DecodeResult(data)
	require.NoError(err)

	assert.Equal(result.Entrypoints, restored.Entrypoints)
	require.Len(restored.States, len(result.States))

	for i, s := range result.States {
		got := restored.States[i]
		assert.Equal(s.Index, got.Index)
		assert.Equal(s.ShiftTerminals(), got.ShiftTerminals())
		assert.Equal(s.GotoNonterminals(), got.GotoNonterminals())
		assert.Equal(s.Shifts, got.Shifts)
		assert.Equal(s.Gotos, got.Gotos)
		require.Len(got.Reductions, len(s.Reductions))
		for j, p := range s.Reductions {
			assert.Equal(p.String(), got.Reductions[j].String())
		}
	}

	assert.Len(restored.Conflicts, len(result.Conflicts))
	assert.Equal(result.First, restored.First)
}
