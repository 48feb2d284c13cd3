package lr

import (
	"testing"

	"github.com/dekarrin/lrforge/internal/lrforge/grammar"
	"github.com/dekarrin/lrforge/internal/lrforge/grammar/build"
	"github.com/dekarrin/lrforge/internal/lrforge/gsyntax"
	"github.com/dekarrin/lrforge/internal/lrforge/scan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateFrom(t *testing.T, source string, terminals []build.TerminalDecl) *Result {
	t.Helper()

	s := scan.New("test", source)
	p := gsyntax.New(s)
	tree, err := p.Parse()
	require.NoError(t, err)

	g, err := build.Build(tree, terminals, s.Source())
	require.NoError(t, err)

	result, err := New(g).Generate()
	require.NoError(t, err)
	return result
}

// spec §8 scenario 1.
func Test_Generate_SingleTerminalGrammar_TwoStates(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	result := generateFrom(t, "rule $S : ('a') => { return 1 }", []build.TerminalDecl{{Name: "a", Value: 1}})

	require.Len(result.States, 2)

	start := result.States[result.Entrypoints["S"]]
	require.Contains(start.Shifts, "a")
	next := result.States[start.Shifts["a"]]
	assert.Len(next.Reductions, 1)
	assert.Equal("S", next.Reductions[0].Nonterminal)
}

// spec §8 scenario 2: reductions of A->x· reached via two distinct
// occurrence contexts (before and after '+') collapse to the same state by
// item-set identity.
func Test_Generate_TwoRuleGrammar_OccurrenceContextsCollapse(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	result := generateFrom(t,
		"rule $S : (A '+' A)\n\nrule A : ('x')",
		[]build.TerminalDecl{{Name: "+", Value: 1}, {Name: "x", Value: 2}},
	)

	assert.Len(result.States, 5)

	start := result.States[result.Entrypoints["S"]]
	require.Contains(start.Gotos, "A")
	require.Contains(start.Shifts, "x")
	afterFirstA := result.States[start.Gotos["A"]]
	require.Contains(afterFirstA.Shifts, "+")

	afterPlus := result.States[afterFirstA.Shifts["+"]]
	require.Contains(afterPlus.Shifts, "x")

	// same item set reached from both occurrence contexts -> same state.
	assert.Equal(start.Shifts["x"], afterPlus.Shifts["x"])
}

// spec §8 scenario 3.
func Test_Generate_OptionalRepeatSugar_SynthesizesRepeatNonterminal(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	s := scan.New("test", "rule $S : (item*)\n\nrule item : ('a')")
	p := gsyntax.New(s)
	tree, err := p.Parse()
	require.NoError(err)

	g, err := build.Build(tree, []build.TerminalDecl{{Name: "a", Value: 1}}, s.Source())
	require.NoError(err)

	sNt, ok := g.Nonterminal("S")
	require.True(ok)
	require.Len(sNt.Productions, 1)
	assert.Equal("@Repeat0", sNt.Productions[0].Symbols[0].Name)

	result, err := New(g).Generate()
	require.NoError(err)
	assert.NotEmpty(result.States)
}

func Test_Generate_EntrypointSeedsIncludeOneItemPerProduction(t *testing.T) {
	require := require.New(t)

	result := generateFrom(t,
		"rule $S : ('a')\n    ('b')",
		[]build.TerminalDecl{{Name: "a", Value: 1}, {Name: "b", Value: 2}},
	)

	start := result.States[result.Entrypoints["S"]]
	require.Equal(2, start.Items.Size())
}

func Test_Closure_IncludesExpandedNonterminalItems(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	s := scan.New("test", "rule $S : (A)\n\nrule A : ('a')")
	p := gsyntax.New(s)
	tree, err := p.Parse()
	require.NoError(err)

	g, err := build.Build(tree, []build.TerminalDecl{{Name: "a", Value: 1}}, s.Source())
	require.NoError(err)

	gen := New(g)
	gen.computeEmpty()

	sNt, _ := g.Nonterminal("S")
	kernel := newItemSet()
	kernel.Add(Item{Production: sNt.Productions[0], Position: 0})

	closed := gen.closure(kernel)
	assert.Equal(2, closed.Size())
}

func Test_EmptySet_FixedPoint(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	s := scan.New("test", "rule $S : ([A])\n\nrule A : ('a')")
	p := gsyntax.New(s)
	tree, err := p.Parse()
	require.NoError(err)

	g, err := build.Build(tree, []build.TerminalDecl{{Name: "a", Value: 1}}, s.Source())
	require.NoError(err)

	gen := New(g)
	gen.computeEmpty()

	assert.True(gen.Empty("@Optional0"))
	assert.False(gen.Empty("A"))
}

// spec §4.5: FIRST only ever holds terminals -- a nonterminal member must be
// replaced by its own FIRST, never left in the result as-is.
func Test_First_ContainsOnlyTerminals(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	s := scan.New("test", "rule $S : (A '+' A)\n\nrule A : ('x')")
	p := gsyntax.New(s)
	tree, err := p.Parse()
	require.NoError(err)

	g, err := build.Build(tree, []build.TerminalDecl{{Name: "+", Value: 1}, {Name: "x", Value: 2}}, s.Source())
	require.NoError(err)

	gen := New(g)
	gen.computeEmpty()
	gen.computeFirst()

	assert.Equal([]string{"x"}, gen.First("S"))
	assert.Equal([]string{"x"}, gen.First("A"))
}

func Test_Conflicts_ShiftReduceDetected(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	// S -> A | A 'x'; after seeing A, the state holds both a completed item
	// for the first alternative and a shiftable item for the second.
	result := generateFrom(t,
		"rule $S : (A)\n    (A 'x')\n\nrule A : ('a')",
		[]build.TerminalDecl{{Name: "a", Value: 1}, {Name: "x", Value: 2}},
	)

	require.Len(result.Conflicts, 1)
	c := result.Conflicts[0]
	assert.Equal(ShiftReduce, c.Kind)
	assert.Equal("x", c.Terminal)
	require.Len(c.Productions, 1)
	assert.Equal("S", c.Productions[0].Nonterminal)
}

func Test_Conflicts_NoFalsePositiveOnLeftRecursion(t *testing.T) {
	assert := assert.New(t)

	// Left-recursive but unambiguous: no state ever holds both a reduction
	// and a shift/goto on the same lookahead.
	result := generateFrom(t,
		"rule $S : (S 'a')\n    ('a')",
		[]build.TerminalDecl{{Name: "a", Value: 1}},
	)

	assert.Empty(result.Conflicts)
}

func Test_Item_AdvanceAndReducible(t *testing.T) {
	assert := assert.New(t)

	p := &grammar.Production{ID: 1, Nonterminal: "S", Symbols: []grammar.Symbol{grammar.TerminalRef("a")}}
	item := Item{Production: p, Position: 0}

	assert.False(item.Reducible())
	sym, ok := item.DotSymbol()
	assert.True(ok)
	assert.Equal("a", sym.Name)

	advanced := item.Advance()
	assert.True(advanced.Reducible())
	_, ok = advanced.DotSymbol()
	assert.False(ok)
}
