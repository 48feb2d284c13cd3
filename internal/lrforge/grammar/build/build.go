// Package build implements the grammar builder (spec §4.4): it lowers a
// grammar AST into the normalized grammar.Grammar, expanding optional,
// repeat, optional-repeat, and group sugar into synthesized nonterminals.
//
// Grounded on original_source/lrpy's grammar/builder.py (GrammarBuilder),
// adapted to Go value types and the teacher's constructor-function error
// style (internal/lrforge/diag).
package build

import (
	"fmt"

	"github.com/dekarrin/lrforge/internal/lrforge/ast"
	"github.com/dekarrin/lrforge/internal/lrforge/diag"
	"github.com/dekarrin/lrforge/internal/lrforge/grammar"
)

// TerminalDecl is one entry of the externally supplied terminals mapping
// (spec §6 "Terminals input"). A slice, not a map, so that terminal
// insertion order — and therefore Grammar generation order — is
// reproducible, per spec §3's insertion-ordered mapping requirement.
type TerminalDecl struct {
	Name  string
	Value int
}

// Builder lowers an AST into a normalized Grammar. A Builder is single-use:
// construct one per Build call so its synthetic-nonterminal counters start
// at zero.
type Builder struct {
	g   *grammar.Grammar
	src *diag.Source

	optionalID int
	repeatID   int
	groupID    int
}

// Build lowers tree into a Grammar using terminals as the externally
// supplied terminal-name-to-value mapping. src is used to render diagnostics
// for any UnknownSymbol/InvalidGrammar error encountered while lowering.
func Build(tree *ast.Grammar, terminals []TerminalDecl, src *diag.Source) (*grammar.Grammar, error) {
	b := &Builder{g: grammar.New(), src: src}
	return b.build(tree, terminals)
}

func (b *Builder) build(tree *ast.Grammar, terminals []TerminalDecl) (*grammar.Grammar, error) {
	// Pass 1 -- seed terminals, nonterminals, and entrypoints.
	for _, t := range terminals {
		b.g.AddTerminal(t.Name, t.Value)
	}
	for _, rule := range tree.Rules {
		b.g.AddNonterminal(rule.Name)
		if rule.Toplevel {
			b.g.Entrypoints = append(b.g.Entrypoints, rule.Name)
		}
	}

	// Pass 2 -- lower each rule's alternatives into productions.
	for _, rule := range tree.Rules {
		nt, _ := b.g.Nonterminal(rule.Name)
		for _, alt := range rule.Alternatives {
			prod, err := b.lowerAlternative(rule.Name, alt)
			if err != nil {
				return nil, err
			}
			nt.Productions = append(nt.Productions, prod)
		}
	}

	// Validation.
	if len(b.g.Entrypoints) == 0 {
		return nil, diag.MissingEntryPointErr()
	}

	return b.g, nil
}

func (b *Builder) lowerAlternative(ntName string, alt *ast.Alternative) (*grammar.Production, error) {
	var bindings []grammar.Binding
	var symbols []grammar.Symbol

	for i, item := range alt.Items {
		lowerTarget := item
		if named, ok := item.(*ast.NamedItem); ok {
			bindings = append(bindings, grammar.Binding{Position: i, Name: named.Name})
			lowerTarget = named.Inner
		}

		sym, err := b.lowerItem(lowerTarget)
		if err != nil {
			return nil, err
		}
		symbols = append(symbols, sym)
	}

	var action *grammar.Action
	if alt.Action != nil {
		action = &grammar.Action{Bindings: bindings, Body: *alt.Action}
	}

	return &grammar.Production{
		ID:          b.g.NewProductionID(),
		Nonterminal: ntName,
		Symbols:     symbols,
		Action:      action,
	}, nil
}

// lowerItem resolves item to a single Symbol, synthesizing fresh
// nonterminals for sugar forms. item must not be a *ast.NamedItem -- the
// caller strips that wrapper before recursing, since a name binding only
// ever applies to the immediate item position of an alternative.
func (b *Builder) lowerItem(item ast.Item) (grammar.Symbol, error) {
	switch it := item.(type) {
	case *ast.IdentifierItem:
		if _, ok := b.g.Nonterminal(it.Name); ok {
			return grammar.NonterminalRef(it.Name), nil
		}
		if _, ok := b.g.Terminal(it.Name); ok {
			return grammar.TerminalRef(it.Name), nil
		}
		return grammar.Symbol{}, b.src.UnknownSymbolErr(it.Span(), it.Name)

	case *ast.StringItem:
		if _, ok := b.g.Terminal(it.Text); !ok {
			return grammar.Symbol{}, b.src.UnknownSymbolErr(it.Span(), it.Text)
		}
		return grammar.TerminalRef(it.Text), nil

	case *ast.OptionalItem:
		return b.lowerOptional(it.Inner)

	case *ast.RepeatItem:
		return b.lowerRepeat(it.Inner, false)

	case *ast.OptionalRepeatItem:
		return b.lowerRepeat(it.Inner, true)

	case *ast.GroupItem:
		return b.lowerGroup(it.Items)

	default:
		return grammar.Symbol{}, fmt.Errorf("build: unhandled item type %T", item)
	}
}

func (b *Builder) lowerOptional(inner ast.Item) (grammar.Symbol, error) {
	innerSym, err := b.lowerItem(inner)
	if err != nil {
		return grammar.Symbol{}, err
	}

	name := fmt.Sprintf("@Optional%d", b.optionalID)
	b.optionalID++

	nt := b.g.AddNonterminal(name)
	nt.Productions = []*grammar.Production{
		{ID: b.g.NewProductionID(), Nonterminal: name, Symbols: []grammar.Symbol{innerSym}},
		{
			ID:          b.g.NewProductionID(),
			Nonterminal: name,
			Action:      &grammar.Action{Body: "return None"},
		},
	}

	return grammar.NonterminalRef(name), nil
}

// lowerRepeat builds the shared @Repeat<k> shape for both `item+` and
// `item*`: a base production, a left-recursive accumulate production, and
// -- only when optionalEpsilon is true -- an additional ε-production,
// matching original_source/lrpy's GrammarBuilder._create_repeat_symbol,
// which reuses one counter/name family for both Repeat and OptionalRepeat.
func (b *Builder) lowerRepeat(inner ast.Item, optionalEpsilon bool) (grammar.Symbol, error) {
	innerSym, err := b.lowerItem(inner)
	if err != nil {
		return grammar.Symbol{}, err
	}

	name := fmt.Sprintf("@Repeat%d", b.repeatID)
	b.repeatID++

	productions := []*grammar.Production{
		{
			ID:          b.g.NewProductionID(),
			Nonterminal: name,
			Symbols:     []grammar.Symbol{innerSym},
			Action: &grammar.Action{
				Bindings: []grammar.Binding{{Position: 0, Name: "symbol"}},
				Body:     "return [symbol]",
			},
		},
		{
			ID:          b.g.NewProductionID(),
			Nonterminal: name,
			Symbols:     []grammar.Symbol{grammar.NonterminalRef(name), innerSym},
			Action: &grammar.Action{
				Bindings: []grammar.Binding{{Position: 0, Name: "symbols"}, {Position: 1, Name: "symbol"}},
				Body:     "symbols.append(symbol); return symbols",
			},
		},
	}

	if optionalEpsilon {
		productions = append(productions, &grammar.Production{
			ID:          b.g.NewProductionID(),
			Nonterminal: name,
			Action:      &grammar.Action{Body: "return None"},
		})
	}

	nt := b.g.AddNonterminal(name)
	nt.Productions = productions

	return grammar.NonterminalRef(name), nil
}

func (b *Builder) lowerGroup(items []ast.Item) (grammar.Symbol, error) {
	symbols := make([]grammar.Symbol, len(items))
	for i, item := range items {
		sym, err := b.lowerItem(item)
		if err != nil {
			return grammar.Symbol{}, err
		}
		symbols[i] = sym
	}

	name := fmt.Sprintf("@Group%d", b.groupID)
	b.groupID++

	nt := b.g.AddNonterminal(name)
	nt.Productions = []*grammar.Production{
		{ID: b.g.NewProductionID(), Nonterminal: name, Symbols: symbols},
	}

	return grammar.NonterminalRef(name), nil
}
