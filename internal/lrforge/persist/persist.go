// Package persist gives grammar.Grammar and lr.Result a binary wire format,
// so a driving tool can cache a generated state table instead of re-running
// the generator every time (spec §5 "fully materialized output values" --
// this just gives that value an additional representation).
//
// Grounded on the teacher's internal/tqw/marshaledtypes.go, which defines
// small all-exported-field snapshot structs as the marshaling surface for
// types that otherwise carry unexported bookkeeping fields -- the same
// reason Grammar and Result cannot be handed to a reflective encoder
// directly. Encoding itself is github.com/dekarrin/rezi's EncBinary/
// DecBinary pair, the same two functions the teacher's
// server/dao/sqlite package uses to persist game.State.
package persist

import (
	"fmt"

	"github.com/dekarrin/lrforge/internal/lrforge/grammar"
	"github.com/dekarrin/lrforge/internal/lrforge/lr"
	"github.com/dekarrin/rezi"
)

// TerminalSnapshot is the exported-field wire form of grammar.Terminal.
type TerminalSnapshot struct {
	Name  string
	Value int
}

// SymbolSnapshot is the exported-field wire form of grammar.Symbol.
type SymbolSnapshot struct {
	Terminal bool
	Name     string
}

// BindingSnapshot is the exported-field wire form of grammar.Binding.
type BindingSnapshot struct {
	Position int
	Name     string
}

// ActionSnapshot is the exported-field wire form of grammar.Action.
// HasAction distinguishes a production with no action at all (Action: nil)
// from one whose action has an empty body.
type ActionSnapshot struct {
	HasAction bool
	Bindings  []BindingSnapshot
	Body      string
}

// ProductionSnapshot is the exported-field wire form of grammar.Production.
type ProductionSnapshot struct {
	ID          int
	Nonterminal string
	Symbols     []SymbolSnapshot
	Action      ActionSnapshot
}

// NonterminalSnapshot is the exported-field wire form of grammar.Nonterminal.
type NonterminalSnapshot struct {
	Name        string
	Productions []ProductionSnapshot
}

// GrammarSnapshot is the exported-field wire form of grammar.Grammar.
type GrammarSnapshot struct {
	Entrypoints  []string
	Terminals    []TerminalSnapshot
	Nonterminals []NonterminalSnapshot
}

// SnapshotGrammar captures g's current contents into a snapshot suitable for
// rezi encoding.
func SnapshotGrammar(g *grammar.Grammar) GrammarSnapshot {
	snap := GrammarSnapshot{Entrypoints: append([]string(nil), g.Entrypoints...)}

	for _, name := range g.TerminalNames() {
		t, _ := g.Terminal(name)
		snap.Terminals = append(snap.Terminals, TerminalSnapshot{Name: t.Name, Value: t.Value})
	}

	for _, name := range g.NonterminalNames() {
		nt, _ := g.Nonterminal(name)
		ntSnap := NonterminalSnapshot{Name: nt.Name}
		for _, p := range nt.Productions {
			ntSnap.Productions = append(ntSnap.Productions, snapshotProduction(p))
		}
		snap.Nonterminals = append(snap.Nonterminals, ntSnap)
	}

	return snap
}

func snapshotProduction(p *grammar.Production) ProductionSnapshot {
	ps := ProductionSnapshot{ID: p.ID, Nonterminal: p.Nonterminal}
	for _, sym := range p.Symbols {
		ps.Symbols = append(ps.Symbols, SymbolSnapshot{Terminal: sym.IsTerminal(), Name: sym.Name})
	}
	if p.Action != nil {
		ps.Action.HasAction = true
		ps.Action.Body = p.Action.Body
		for _, b := range p.Action.Bindings {
			ps.Action.Bindings = append(ps.Action.Bindings, BindingSnapshot{Position: b.Position, Name: b.Name})
		}
	}
	return ps
}

// Restore rebuilds a grammar.Grammar from a snapshot.
func (snap GrammarSnapshot) Restore() *grammar.Grammar {
	g := grammar.New()
	g.Entrypoints = append([]string(nil), snap.Entrypoints...)

	for _, t := range snap.Terminals {
		g.AddTerminal(t.Name, t.Value)
	}

	for _, ntSnap := range snap.Nonterminals {
		nt := g.AddNonterminal(ntSnap.Name)
		for _, ps := range ntSnap.Productions {
			nt.Productions = append(nt.Productions, ps.restore())
		}
	}

	return g
}

func (ps ProductionSnapshot) restore() *grammar.Production {
	p := &grammar.Production{ID: ps.ID, Nonterminal: ps.Nonterminal}
	for _, s := range ps.Symbols {
		if s.Terminal {
			p.Symbols = append(p.Symbols, grammar.TerminalRef(s.Name))
		} else {
			p.Symbols = append(p.Symbols, grammar.NonterminalRef(s.Name))
		}
	}
	if ps.Action.HasAction {
		action := &grammar.Action{Body: ps.Action.Body}
		for _, b := range ps.Action.Bindings {
			action.Bindings = append(action.Bindings, grammar.Binding{Position: b.Position, Name: b.Name})
		}
		p.Action = action
	}
	return p
}

// EncodeGrammar serializes g to its binary wire form.
func EncodeGrammar(g *grammar.Grammar) []byte {
	return rezi.EncBinary(SnapshotGrammar(g))
}

// DecodeGrammar reconstructs a grammar.Grammar from its binary wire form.
func DecodeGrammar(data []byte) (*grammar.Grammar, error) {
	var snap GrammarSnapshot
	n, err := rezi.DecBinary(data, &snap)
	if err != nil {
		return nil, fmt.Errorf("persist: decode grammar: %w", err)
	}
	if n != len(data) {
		return nil, fmt.Errorf("persist: decode grammar: consumed %d/%d bytes", n, len(data))
	}
	return snap.Restore(), nil
}

// StateSnapshot is the exported-field wire form of lr.State.
type StateSnapshot struct {
	Index      int
	Items      []ItemSnapshot
	Shifts     []TransitionSnapshot
	Gotos      []TransitionSnapshot
	Reductions []ProductionSnapshot
}

// ItemSnapshot is the exported-field wire form of lr.Item.
type ItemSnapshot struct {
	ProductionID int
	Position     int
}

// TransitionSnapshot is one entry of a shift or goto table, in discovery
// order.
type TransitionSnapshot struct {
	Symbol string
	Target int
}

// ConflictSnapshot is the exported-field wire form of lr.Conflict.
type ConflictSnapshot struct {
	State       int
	ReduceReduce bool
	Terminal    string
	Productions []ProductionSnapshot
}

// ResultSnapshot is the exported-field wire form of lr.Result.
type ResultSnapshot struct {
	Grammar     GrammarSnapshot
	States      []StateSnapshot
	Entrypoints []TransitionSnapshot // Symbol holds the entrypoint name
	Conflicts   []ConflictSnapshot
	First       []FirstSetSnapshot
}

// FirstSetSnapshot is the exported-field wire form of one entry of
// lr.Result.First: a nonterminal name and its FIRST set, in sorted order.
type FirstSetSnapshot struct {
	Nonterminal string
	Terminals   []string
}

// SnapshotResult captures r's current contents into a snapshot suitable for
// rezi encoding. Production identity is tracked by ID alone; productions are
// re-resolved against the restored grammar by DecodeResult.
func SnapshotResult(r *lr.Result) ResultSnapshot {
	snap := ResultSnapshot{Grammar: SnapshotGrammar(r.Grammar)}

	for name, idx := range r.Entrypoints {
		snap.Entrypoints = append(snap.Entrypoints, TransitionSnapshot{Symbol: name, Target: idx})
	}

	for _, s := range r.States {
		ss := StateSnapshot{Index: s.Index}
		for _, v := range s.Items.Values() {
			item := v.(lr.Item)
			ss.Items = append(ss.Items, ItemSnapshot{ProductionID: item.Production.ID, Position: item.Position})
		}
		for _, t := range s.ShiftTerminals() {
			ss.Shifts = append(ss.Shifts, TransitionSnapshot{Symbol: t, Target: s.Shifts[t]})
		}
		for _, nt := range s.GotoNonterminals() {
			ss.Gotos = append(ss.Gotos, TransitionSnapshot{Symbol: nt, Target: s.Gotos[nt]})
		}
		for _, p := range s.Reductions {
			ss.Reductions = append(ss.Reductions, snapshotProduction(p))
		}
		snap.States = append(snap.States, ss)
	}

	for _, c := range r.Conflicts {
		cs := ConflictSnapshot{State: c.State, ReduceReduce: c.Kind == lr.ReduceReduce, Terminal: c.Terminal}
		for _, p := range c.Productions {
			cs.Productions = append(cs.Productions, snapshotProduction(p))
		}
		snap.Conflicts = append(snap.Conflicts, cs)
	}

	for _, name := range r.Grammar.NonterminalNames() {
		snap.First = append(snap.First, FirstSetSnapshot{Nonterminal: name, Terminals: r.First[name]})
	}

	return snap
}

// EncodeResult serializes r to its binary wire form.
func EncodeResult(r *lr.Result) []byte {
	return rezi.EncBinary(SnapshotResult(r))
}

// DecodeResult reconstructs an lr.Result from its binary wire form.
func DecodeResult(data []byte) (*lr.Result, error) {
	var snap ResultSnapshot
	n, err := rezi.DecBinary(data, &snap)
	if err != nil {
		return nil, fmt.Errorf("persist: decode result: %w", err)
	}
	if n != len(data) {
		return nil, fmt.Errorf("persist: decode result: consumed %d/%d bytes", n, len(data))
	}

	g := snap.Grammar.Restore()
	productionsByID := map[int]*grammar.Production{}
	for _, p := range g.AllProductions() {
		productionsByID[p.ID] = p
	}

	result := &lr.Result{Grammar: g, Entrypoints: map[string]int{}}
	for _, ep := range snap.Entrypoints {
		result.Entrypoints[ep.Symbol] = ep.Target
	}

	for _, ss := range snap.States {
		s := lr.NewState(ss.Index)
		for _, is := range ss.Items {
			p, ok := productionsByID[is.ProductionID]
			if !ok {
				return nil, fmt.Errorf("persist: decode result: unknown production id %d", is.ProductionID)
			}
			s.AddItem(lr.Item{Production: p, Position: is.Position})
		}
		for _, t := range ss.Shifts {
			s.AddShift(t.Symbol, t.Target)
		}
		for _, t := range ss.Gotos {
			s.AddGoto(t.Symbol, t.Target)
		}
		for _, ps := range ss.Reductions {
			p, ok := productionsByID[ps.ID]
			if !ok {
				return nil, fmt.Errorf("persist: decode result: unknown production id %d", ps.ID)
			}
			s.Reductions = append(s.Reductions, p)
		}
		result.States = append(result.States, s)
	}

	for _, cs := range snap.Conflicts {
		c := lr.Conflict{State: cs.State, Terminal: cs.Terminal}
		if cs.ReduceReduce {
			c.Kind = lr.ReduceReduce
		} else {
			c.Kind = lr.ShiftReduce
		}
		for _, ps := range cs.Productions {
			p, ok := productionsByID[ps.ID]
			if !ok {
				return nil, fmt.Errorf("persist: decode result: unknown production id %d", ps.ID)
			}
			c.Productions = append(c.Productions, p)
		}
		result.Conflicts = append(result.Conflicts, c)
	}

	if len(snap.First) > 0 {
		result.First = map[string][]string{}
		for _, fs := range snap.First {
			result.First[fs.Nonterminal] = fs.Terminals
		}
	}

	return result, nil
}
