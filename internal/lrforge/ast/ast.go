// Package ast defines the immutable grammar-rule tree produced by the
// grammar parser (spec §3, §4.3).
//
// Node shapes mirror original_source/lrpy's parsegen/ast.py, including its
// String() pretty-printers (supplemented feature; see SPEC_FULL.md), which
// back the AST round-trip testable property from spec §8.
package ast

import (
	"strings"

	"github.com/dekarrin/lrforge/internal/lrforge/span"
)

// Node is implemented by every AST node. All nodes carry their source Span.
type Node interface {
	Span() span.TextSpan
	String() string
}

// Grammar is the root of the AST: an ordered list of rules.
type Grammar struct {
	SpanVal span.TextSpan
	Rules   []*Rule
}

func (g *Grammar) Span() span.TextSpan { return g.SpanVal }

func (g *Grammar) String() string {
	parts := make([]string, len(g.Rules))
	for i, r := range g.Rules {
		parts[i] = r.String()
	}
	return strings.Join(parts, "\n\n")
}

// Rule is a single `rule NAME : alt alt ...` declaration.
type Rule struct {
	SpanVal      span.TextSpan
	Toplevel     bool
	Name         string
	Alternatives []*Alternative
}

func (r *Rule) Span() span.TextSpan { return r.SpanVal }

func (r *Rule) String() string {
	var b strings.Builder
	b.WriteString("rule ")
	if r.Toplevel {
		b.WriteString("$")
	}
	b.WriteString(r.Name)
	b.WriteString(" :")
	for _, alt := range r.Alternatives {
		b.WriteString("\n    ")
		b.WriteString(alt.String())
	}
	return b.String()
}

// Alternative is one `(item item* ) => { action }` production of a rule.
// Action is nil when the alternative has no semantic action attached.
type Alternative struct {
	SpanVal span.TextSpan
	Items   []Item
	Action  *string
}

func (a *Alternative) Span() span.TextSpan { return a.SpanVal }

func (a *Alternative) String() string {
	parts := make([]string, len(a.Items))
	for i, item := range a.Items {
		parts[i] = item.String()
	}

	var b strings.Builder
	b.WriteString("(")
	b.WriteString(strings.Join(parts, " "))
	b.WriteString(")")
	if a.Action != nil {
		b.WriteString(" => {")
		b.WriteString(*a.Action)
		b.WriteString("}")
	}
	return b.String()
}

// Item is implemented by every item-position AST node.
type Item interface {
	Node
	itemNode()
}

// StringItem is a literal-string item, e.g. 'foo'.
type StringItem struct {
	SpanVal span.TextSpan
	Text    string
}

func (i *StringItem) Span() span.TextSpan { return i.SpanVal }
func (i *StringItem) String() string      { return "'" + i.Text + "'" }
func (*StringItem) itemNode()             {}

// IdentifierItem references a terminal or nonterminal by name.
type IdentifierItem struct {
	SpanVal span.TextSpan
	Name    string
}

func (i *IdentifierItem) Span() span.TextSpan { return i.SpanVal }
func (i *IdentifierItem) String() string      { return i.Name }
func (*IdentifierItem) itemNode()             {}

// NamedItem binds inner's eventual value to Name for use in a semantic
// action. Only legal at the immediate item positions of an Alternative.
type NamedItem struct {
	SpanVal span.TextSpan
	Name    string
	Inner   Item
}

func (i *NamedItem) Span() span.TextSpan { return i.SpanVal }
func (i *NamedItem) String() string      { return i.Name + ": " + i.Inner.String() }
func (*NamedItem) itemNode()             {}

// OptionalItem is `[ item ]`: zero or one occurrence.
type OptionalItem struct {
	SpanVal span.TextSpan
	Inner   Item
}

func (i *OptionalItem) Span() span.TextSpan { return i.SpanVal }
func (i *OptionalItem) String() string      { return "[" + i.Inner.String() + "]" }
func (*OptionalItem) itemNode()             {}

// RepeatItem is `item+`: one or more occurrences.
type RepeatItem struct {
	SpanVal span.TextSpan
	Inner   Item
}

func (i *RepeatItem) Span() span.TextSpan { return i.SpanVal }
func (i *RepeatItem) String() string      { return i.Inner.String() + "+" }
func (*RepeatItem) itemNode()             {}

// OptionalRepeatItem is `item*`: zero or more occurrences.
type OptionalRepeatItem struct {
	SpanVal span.TextSpan
	Inner   Item
}

func (i *OptionalRepeatItem) Span() span.TextSpan { return i.SpanVal }
func (i *OptionalRepeatItem) String() string      { return i.Inner.String() + "*" }
func (*OptionalRepeatItem) itemNode()             {}

// GroupItem is `( item item* )` used as an item itself, distinct from an
// Alternative's own top-level parens.
type GroupItem struct {
	SpanVal span.TextSpan
	Items   []Item
}

func (i *GroupItem) Span() span.TextSpan { return i.SpanVal }

func (i *GroupItem) String() string {
	parts := make([]string, len(i.Items))
	for j, item := range i.Items {
		parts[j] = item.String()
	}
	return "(" + strings.Join(parts, " ") + ")"
}
func (*GroupItem) itemNode() {}
