// Package lr implements the LR(0) state generator (spec §4.5): EMPTY and
// FIRST fixed points, item closures, item-set interning, and the shift/goto/
// reduce tables reachable from each grammar entrypoint.
//
// Item-set bookkeeping uses github.com/emirpasic/gods's treeset (ordered,
// hashable-by-content item sets) and arraylist (the pending-state worklist),
// grounded on npillmayer-gorgo's lr/tables.go CFSM construction, which uses
// exactly this pair of collections for the same purpose. Table rendering
// uses github.com/dekarrin/rosed, in the style of the teacher's
// parse/slr.go String() method.
package lr

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dekarrin/lrforge/internal/lrforge/grammar"
	"github.com/dekarrin/rosed"
	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/emirpasic/gods/sets/treeset"
)

// Item is a production with a dot marking parse progress (spec §3).
type Item struct {
	Production *grammar.Production
	Position   int
}

// Reducible reports whether the dot has reached the end of the production.
func (i Item) Reducible() bool {
	return i.Position >= len(i.Production.Symbols)
}

// DotSymbol returns the symbol immediately after the dot, if any.
func (i Item) DotSymbol() (grammar.Symbol, bool) {
	if i.Reducible() {
		return grammar.Symbol{}, false
	}
	return i.Production.Symbols[i.Position], true
}

// Advance returns the item with its dot moved one position to the right.
func (i Item) Advance() Item {
	return Item{Production: i.Production, Position: i.Position + 1}
}

func (i Item) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s ->", i.Production.Nonterminal)
	for j, sym := range i.Production.Symbols {
		if j == i.Position {
			b.WriteString(" ·")
		}
		b.WriteString(" " + sym.Name)
	}
	if i.Position == len(i.Production.Symbols) {
		b.WriteString(" ·")
	}
	return b.String()
}

func itemComparator(a, b interface{}) int {
	ia, ib := a.(Item), b.(Item)
	if ia.Production.ID != ib.Production.ID {
		return ia.Production.ID - ib.Production.ID
	}
	return ia.Position - ib.Position
}

func newItemSet() *treeset.Set {
	return treeset.NewWith(itemComparator)
}

// digest produces an order-independent fingerprint of an item set (spec §9
// "Interning of item sets"): the treeset already iterates in canonical
// (production-id, position) order, so concatenating that order is stable.
func digest(set *treeset.Set) string {
	var b strings.Builder
	for _, v := range set.Values() {
		item := v.(Item)
		fmt.Fprintf(&b, "%d:%d;", item.Production.ID, item.Position)
	}
	return b.String()
}

// State is one node of the LR(0) state graph (spec §3). Items holds the
// kernel item set used for this state's identity -- not its closure, which
// is recomputed on demand (spec §8: storing the closure is not required).
type State struct {
	Index      int
	Items      *treeset.Set
	Shifts     map[string]int
	shiftOrder []string
	Gotos      map[string]int
	gotoOrder  []string
	Reductions []*grammar.Production
}

// NewState returns an empty State with the given index, ready to have items
// and transitions added via AddItem/AddShift/AddGoto. Used by internal/
// lrforge/persist to reconstruct a Result from its binary wire form, since
// State's kernel set and transition-order bookkeeping are otherwise only
// ever built up by Generate.
func NewState(index int) *State {
	return &State{Index: index, Items: newItemSet()}
}

// AddItem adds item to the state's kernel item set.
func (s *State) AddItem(item Item) {
	s.Items.Add(item)
}

// AddShift records a shift transition to target on terminal name, in call
// order.
func (s *State) AddShift(name string, target int) {
	if s.Shifts == nil {
		s.Shifts = map[string]int{}
	}
	s.Shifts[name] = target
	s.shiftOrder = append(s.shiftOrder, name)
}

// AddGoto records a goto transition to target on nonterminal name, in call
// order.
func (s *State) AddGoto(name string, target int) {
	if s.Gotos == nil {
		s.Gotos = map[string]int{}
	}
	s.Gotos[name] = target
	s.gotoOrder = append(s.gotoOrder, name)
}

// ShiftTerminals returns shift-table terminal names in discovery order.
func (s *State) ShiftTerminals() []string {
	out := make([]string, len(s.shiftOrder))
	copy(out, s.shiftOrder)
	return out
}

// GotoNonterminals returns goto-table nonterminal names in discovery order.
func (s *State) GotoNonterminals() []string {
	out := make([]string, len(s.gotoOrder))
	copy(out, s.gotoOrder)
	return out
}

// ConflictKind distinguishes the two ways a state's reductions can collide
// with its other actions (spec §4.5 "Conflict reporting").
type ConflictKind int

const (
	ShiftReduce ConflictKind = iota
	ReduceReduce
)

func (k ConflictKind) String() string {
	if k == ShiftReduce {
		return "shift/reduce"
	}
	return "reduce/reduce"
}

// Conflict records a state whose reductions collide with a shift on some
// terminal, or with another reduction.
type Conflict struct {
	State       int
	Kind        ConflictKind
	Terminal    string // set only for ShiftReduce
	Productions []*grammar.Production
}

// Result is the LR generator's fully materialized output (spec §6): the
// grammar it was built from, every reachable state, and the entrypoint ->
// seed-state-index mapping.
type Result struct {
	Grammar     *grammar.Grammar
	States      []*State
	Entrypoints map[string]int
	Conflicts   []Conflict
	First       map[string][]string
}

// Generator computes EMPTY, FIRST, and the LR(0) state graph for a Grammar.
type Generator struct {
	g     *grammar.Grammar
	empty map[string]bool
	first map[string]map[string]bool
	trace func(string)
}

// New returns a Generator for g.
func New(g *grammar.Grammar) *Generator {
	return &Generator{g: g}
}

// RegisterTraceListener installs fn to be called with a human-readable
// progress message as each state is processed, in the style of the
// teacher's lrParser.RegisterTraceListener.
func (gen *Generator) RegisterTraceListener(fn func(string)) {
	gen.trace = fn
}

func (gen *Generator) notify(msg string) {
	if gen.trace != nil {
		gen.trace(msg)
	}
}

// Empty reports whether nonterminal name is in the EMPTY set. Valid only
// after Generate has run.
func (gen *Generator) Empty(name string) bool {
	return gen.empty[name]
}

// First returns the FIRST set of nonterminal name as a sorted slice. Valid
// only after Generate has run.
func (gen *Generator) First(name string) []string {
	set := gen.first[name]
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Generate computes EMPTY, FIRST, and the full LR(0) state graph.
func (gen *Generator) Generate() (*Result, error) {
	gen.computeEmpty()
	gen.computeFirst()

	digestIndex := map[string]int{}
	var states []*State
	pending := arraylist.New()
	entrypoints := map[string]int{}

	intern := func(set *treeset.Set) (int, bool) {
		d := digest(set)
		if idx, ok := digestIndex[d]; ok {
			return idx, false
		}
		idx := len(states)
		states = append(states, &State{Index: idx, Items: set})
		digestIndex[d] = idx
		return idx, true
	}

	for _, epName := range gen.g.Entrypoints {
		nt, ok := gen.g.Nonterminal(epName)
		if !ok {
			continue
		}
		kernel := newItemSet()
		for _, p := range nt.Productions {
			kernel.Add(Item{Production: p, Position: 0})
		}
		idx, isNew := intern(kernel)
		entrypoints[epName] = idx
		if isNew {
			pending.Add(idx)
		}
	}

	for !pending.Empty() {
		v, _ := pending.Get(0)
		pending.Remove(0)
		idx := v.(int)
		state := states[idx]
		gen.notify(fmt.Sprintf("processing state %d (%d kernel items)", idx, state.Items.Size()))

		closed := gen.closure(state.Items)

		var symbolOrder []string
		transitions := map[string]*treeset.Set{}
		symbolKind := map[string]grammar.SymbolKind{}

		for _, v := range closed.Values() {
			item := v.(Item)
			if item.Reducible() {
				state.Reductions = append(state.Reductions, item.Production)
				continue
			}
			sym, _ := item.DotSymbol()
			set, ok := transitions[sym.Name]
			if !ok {
				set = newItemSet()
				transitions[sym.Name] = set
				symbolKind[sym.Name] = sym.Kind
				symbolOrder = append(symbolOrder, sym.Name)
			}
			set.Add(item.Advance())
		}

		for _, symName := range symbolOrder {
			nidx, isNew := intern(transitions[symName])
			if isNew {
				pending.Add(nidx)
			}
			if symbolKind[symName] == grammar.TerminalRefKind {
				if state.Shifts == nil {
					state.Shifts = map[string]int{}
				}
				state.Shifts[symName] = nidx
				state.shiftOrder = append(state.shiftOrder, symName)
			} else {
				if state.Gotos == nil {
					state.Gotos = map[string]int{}
				}
				state.Gotos[symName] = nidx
				state.gotoOrder = append(state.gotoOrder, symName)
			}
		}
	}

	firstSets := map[string][]string{}
	for _, ntName := range gen.g.NonterminalNames() {
		firstSets[ntName] = gen.First(ntName)
	}

	return &Result{
		Grammar:     gen.g,
		States:      states,
		Entrypoints: entrypoints,
		Conflicts:   detectConflicts(states),
		First:       firstSets,
	}, nil
}

// closure computes the smallest superset of kernel such that for every item
// with a nonterminal at its dot, that nonterminal's items are also present
// (spec §4.5 "Items and closure").
func (gen *Generator) closure(kernel *treeset.Set) *treeset.Set {
	result := newItemSet()

	var worklist []Item
	for _, v := range kernel.Values() {
		item := v.(Item)
		result.Add(item)
		worklist = append(worklist, item)
	}

	for len(worklist) > 0 {
		item := worklist[0]
		worklist = worklist[1:]

		sym, ok := item.DotSymbol()
		if !ok || sym.Kind != grammar.NonterminalRefKind {
			continue
		}
		nt, ok := gen.g.Nonterminal(sym.Name)
		if !ok {
			continue
		}
		for _, p := range nt.Productions {
			newItem := Item{Production: p, Position: 0}
			if !result.Contains(newItem) {
				result.Add(newItem)
				worklist = append(worklist, newItem)
			}
		}
	}

	return result
}

// computeEmpty computes the EMPTY set by fixed point (spec §4.5): a
// nonterminal is in EMPTY iff it has an ε-production or all symbols of some
// production are themselves in EMPTY.
func (gen *Generator) computeEmpty() {
	empty := map[string]bool{}
	changed := true
	for changed {
		changed = false
		for _, ntName := range gen.g.NonterminalNames() {
			if empty[ntName] {
				continue
			}
			nt, _ := gen.g.Nonterminal(ntName)
			for _, p := range nt.Productions {
				if productionAllEmpty(p, empty) {
					empty[ntName] = true
					changed = true
					break
				}
			}
		}
	}
	gen.empty = empty
}

func productionAllEmpty(p *grammar.Production, empty map[string]bool) bool {
	for _, sym := range p.Symbols {
		if sym.IsTerminal() || !empty[sym.Name] {
			return false
		}
	}
	return true
}

// computeFirst computes FIRST by fixed point (spec §4.5). Initial seeding
// walks each production left to right, adding every leading symbol up to and
// including the first that is not in EMPTY. The fixed-point pass then folds
// each nonterminal member's own FIRST set in; this only ever adds entries, so
// it is guaranteed to terminate over the finite symbol universe even when
// two nonterminals are mutually left-recursive. A final pass then replaces
// every nonterminal member by its own (by-then fully folded) FIRST set,
// leaving only terminals, per spec §4.5.
func (gen *Generator) computeFirst() {
	first := map[string]map[string]bool{}
	for _, ntName := range gen.g.NonterminalNames() {
		first[ntName] = map[string]bool{}
	}

	for _, ntName := range gen.g.NonterminalNames() {
		nt, _ := gen.g.Nonterminal(ntName)
		for _, p := range nt.Productions {
			for _, sym := range p.Symbols {
				first[ntName][sym.Name] = true
				if sym.IsTerminal() || !gen.empty[sym.Name] {
					break
				}
			}
		}
	}

	changed := true
	for changed {
		changed = false
		for _, ntName := range gen.g.NonterminalNames() {
			for symName := range snapshot(first[ntName]) {
				if symName == ntName {
					continue
				}
				sub, ok := first[symName]
				if !ok {
					continue
				}
				for t := range sub {
					if !first[ntName][t] {
						first[ntName][t] = true
						changed = true
					}
				}
			}
		}
	}

	for _, ntName := range gen.g.NonterminalNames() {
		for symName := range first[ntName] {
			if _, isNonterminal := gen.g.Nonterminal(symName); isNonterminal {
				delete(first[ntName], symName)
			}
		}
	}

	gen.first = first
}

func snapshot(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func detectConflicts(states []*State) []Conflict {
	var conflicts []Conflict
	for _, s := range states {
		if len(s.Reductions) > 1 {
			conflicts = append(conflicts, Conflict{State: s.Index, Kind: ReduceReduce, Productions: s.Reductions})
		}
		if len(s.Reductions) > 0 && len(s.Shifts) > 0 {
			terms := make([]string, 0, len(s.Shifts))
			for t := range s.Shifts {
				terms = append(terms, t)
			}
			sort.Strings(terms)
			for _, t := range terms {
				conflicts = append(conflicts, Conflict{State: s.Index, Kind: ShiftReduce, Terminal: t, Productions: s.Reductions})
			}
		}
	}
	return conflicts
}

// String renders the full shift/goto/reduce table, in the style of the
// teacher's parse/slr.go slrTable.String().
func (r *Result) String() string {
	terms := r.Grammar.TerminalNames()
	nonterms := r.Grammar.NonterminalNames()

	data := [][]string{}

	headers := []string{"S", "|"}
	for _, t := range terms {
		headers = append(headers, fmt.Sprintf("A:%s", t))
	}
	headers = append(headers, "|")
	for _, nt := range nonterms {
		headers = append(headers, fmt.Sprintf("G:%s", nt))
	}
	headers = append(headers, "|", "reductions")
	data = append(data, headers)

	for _, s := range r.States {
		row := []string{fmt.Sprintf("%d", s.Index), "|"}

		for _, t := range terms {
			cell := ""
			if next, ok := s.Shifts[t]; ok {
				cell = fmt.Sprintf("s%d", next)
			}
			row = append(row, cell)
		}
		row = append(row, "|")

		for _, nt := range nonterms {
			cell := ""
			if next, ok := s.Gotos[nt]; ok {
				cell = fmt.Sprintf("%d", next)
			}
			row = append(row, cell)
		}
		row = append(row, "|")

		var reds []string
		for _, p := range s.Reductions {
			reds = append(reds, p.String())
		}
		row = append(row, strings.Join(reds, "; "))

		data = append(data, row)
	}

	return rosed.
		Edit("").
		InsertTableOpts(0, data, 10, rosed.Options{
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()
}
