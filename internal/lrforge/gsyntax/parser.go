// Package gsyntax implements the recursive-descent parser that produces a
// grammar AST from a grammar-file token stream (spec §4.3).
//
// Named "gsyntax" (grammar syntax) rather than "parse" because in the
// teacher lineage "parse" denotes the runtime LR/LL parser driver, which is
// explicitly out of scope for this module (spec §1 Non-goals) — this
// package only ever parses *grammar definitions themselves*, not input
// governed by those grammars.
//
// This is a Go port of original_source/lrpy's GrammarParser
// (parsegen/parser.go), including its exact handling of named items and
// groups short-circuiting past the postfix (+/*) loop that plain
// identifiers, strings, and bracketed items fall through to.
package gsyntax

import (
	"github.com/dekarrin/lrforge/internal/lrforge/ast"
	"github.com/dekarrin/lrforge/internal/lrforge/diag"
	"github.com/dekarrin/lrforge/internal/lrforge/scan"
	"github.com/dekarrin/lrforge/internal/lrforge/token"
)

// Parser builds a grammar AST from a Scanner's token stream using a single
// token of lookahead.
type Parser struct {
	scanner *scan.Scanner
	src     *diag.Source
	lookahd []token.Token
}

// New creates a Parser reading tokens from scanner.
func New(scanner *scan.Scanner) *Parser {
	return &Parser{scanner: scanner, src: scanner.Source()}
}

func (p *Parser) peek() (token.Token, error) {
	if len(p.lookahd) > 0 {
		return p.lookahd[0], nil
	}
	tok, err := p.scanner.Scan()
	if err != nil {
		return token.Token{}, err
	}
	p.lookahd = append(p.lookahd, tok)
	return tok, nil
}

func (p *Parser) consume() (token.Token, error) {
	if len(p.lookahd) > 0 {
		tok := p.lookahd[0]
		p.lookahd = p.lookahd[1:]
		return tok, nil
	}
	return p.scanner.Scan()
}

func (p *Parser) skipNewlines() error {
	for {
		tok, err := p.peek()
		if err != nil {
			return err
		}
		if tok.Type != token.Newline {
			return nil
		}
		if _, err := p.consume(); err != nil {
			return err
		}
	}
}

func (p *Parser) fail(tok token.Token, msg string) error {
	return p.src.Grammar(tok.Span, msg)
}

// Parse reads the full token stream and produces the grammar AST's root.
func (p *Parser) Parse() (*ast.Grammar, error) {
	start, err := p.peek()
	if err != nil {
		return nil, err
	}

	var rules []*ast.Rule
	last := start
	for {
		tok, err := p.peek()
		if err != nil {
			return nil, err
		}
		if tok.Type == token.EOF {
			last = tok
			break
		}

		rule, err := p.parseRule()
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}

	return &ast.Grammar{SpanVal: start.Span.Extend(last.Span), Rules: rules}, nil
}

func (p *Parser) parseRule() (*ast.Rule, error) {
	ruleTok, err := p.consume()
	if err != nil {
		return nil, err
	}
	if ruleTok.Type != token.Identifier || ruleTok.Content != "rule" {
		return nil, p.fail(ruleTok, `Expected "rule"`)
	}

	toplevel := false
	nameTok, err := p.peek()
	if err != nil {
		return nil, err
	}
	if nameTok.Type == token.Dollar {
		toplevel = true
		if _, err := p.consume(); err != nil {
			return nil, err
		}
		nameTok, err = p.consume()
		if err != nil {
			return nil, err
		}
	} else {
		nameTok, err = p.consume()
		if err != nil {
			return nil, err
		}
	}
	if nameTok.Type != token.Identifier {
		return nil, p.fail(nameTok, "Expected identifier")
	}

	colonTok, err := p.consume()
	if err != nil {
		return nil, err
	}
	if colonTok.Type != token.Colon {
		return nil, p.fail(colonTok, "Expected colon")
	}

	alt, err := p.parseAlternative()
	if err != nil {
		return nil, err
	}
	ruleSpan := ruleTok.Span.Extend(alt.Span())

	alternatives := []*ast.Alternative{alt}

	for {
		if err := p.skipNewlines(); err != nil {
			return nil, err
		}

		tok, err := p.peek()
		if err != nil {
			return nil, err
		}
		if tok.Type != token.OpenParen {
			break
		}

		alt, err := p.parseAlternative()
		if err != nil {
			return nil, err
		}
		ruleSpan = ruleSpan.Extend(alt.Span())
		alternatives = append(alternatives, alt)
	}

	return &ast.Rule{
		SpanVal:      ruleSpan,
		Toplevel:     toplevel,
		Name:         nameTok.Content,
		Alternatives: alternatives,
	}, nil
}

func (p *Parser) parseAlternative() (*ast.Alternative, error) {
	if err := p.skipNewlines(); err != nil {
		return nil, err
	}

	openTok, err := p.consume()
	if err != nil {
		return nil, err
	}
	if openTok.Type != token.OpenParen {
		return nil, p.fail(openTok, "Expected open parenthesis")
	}

	item, err := p.parseItem(true)
	if err != nil {
		return nil, err
	}
	altSpan := openTok.Span.Extend(item.Span())
	items := []ast.Item{item}

	for {
		tok, err := p.peek()
		if err != nil {
			return nil, err
		}
		if tok.Type == token.CloseParen {
			if _, err := p.consume(); err != nil {
				return nil, err
			}
			altSpan = altSpan.Extend(tok.Span)
			break
		}

		item, err := p.parseItem(true)
		if err != nil {
			return nil, err
		}
		altSpan = altSpan.Extend(item.Span())
		items = append(items, item)
	}

	tok, err := p.peek()
	if err != nil {
		return nil, err
	}

	var action *string
	if tok.Type == token.Arrow {
		if _, err := p.consume(); err != nil {
			return nil, err
		}
		blockTok, err := p.consume()
		if err != nil {
			return nil, err
		}
		if blockTok.Type != token.ForeignBlock {
			return nil, p.fail(blockTok, "Expected block")
		}
		altSpan = altSpan.Extend(blockTok.Span)
		body := blockTok.Content
		action = &body
	}

	return &ast.Alternative{SpanVal: altSpan, Items: items, Action: action}, nil
}

// parseItem parses a single item. named must only be true at the immediate
// item positions of an alternative; everywhere else a Named item is
// rejected, per spec §4.3.
func (p *Parser) parseItem(named bool) (ast.Item, error) {
	tok, err := p.consume()
	if err != nil {
		return nil, err
	}

	switch tok.Type {
	case token.OpenBracket:
		inner, err := p.parseItem(false)
		if err != nil {
			return nil, err
		}
		closeTok, err := p.consume()
		if err != nil {
			return nil, err
		}
		if closeTok.Type != token.CloseBracket {
			return nil, p.fail(closeTok, "Expected close bracket")
		}
		item := ast.Item(&ast.OptionalItem{
			SpanVal: tok.Span.Extend(inner.Span()).Extend(closeTok.Span),
			Inner:   inner,
		})
		return p.parsePostfix(item)

	case token.String:
		item := ast.Item(&ast.StringItem{SpanVal: tok.Span, Text: tok.Content})
		return p.parsePostfix(item)

	case token.Identifier:
		colonTok, err := p.peek()
		if err != nil {
			return nil, err
		}
		if colonTok.Type == token.Colon {
			if !named {
				return nil, p.fail(colonTok, "Named item is not allowed here")
			}
			if _, err := p.consume(); err != nil {
				return nil, err
			}
			inner, err := p.parseItem(false)
			if err != nil {
				return nil, err
			}
			return &ast.NamedItem{
				SpanVal: tok.Span.Extend(inner.Span()),
				Name:    tok.Content,
				Inner:   inner,
			}, nil
		}
		item := ast.Item(&ast.IdentifierItem{SpanVal: tok.Span, Name: tok.Content})
		return p.parsePostfix(item)

	case token.OpenParen:
		first, err := p.parseItem(false)
		if err != nil {
			return nil, err
		}
		groupSpan := tok.Span.Extend(first.Span())
		items := []ast.Item{first}

		for {
			peekTok, err := p.peek()
			if err != nil {
				return nil, err
			}
			if peekTok.Type == token.CloseParen {
				if _, err := p.consume(); err != nil {
					return nil, err
				}
				groupSpan = groupSpan.Extend(peekTok.Span)
				break
			}
			item, err := p.parseItem(false)
			if err != nil {
				return nil, err
			}
			groupSpan = groupSpan.Extend(item.Span())
			items = append(items, item)
		}

		return &ast.GroupItem{SpanVal: groupSpan, Items: items}, nil

	default:
		return nil, p.fail(tok, "Unexpected Token")
	}
}

// parsePostfix consumes trailing '+'/'*' operators, wrapping item
// accordingly. Named items and groups never reach this; they return directly
// from parseItem, matching original_source/lrpy's parser.
func (p *Parser) parsePostfix(item ast.Item) (ast.Item, error) {
	for {
		tok, err := p.peek()
		if err != nil {
			return nil, err
		}

		switch tok.Type {
		case token.Plus:
			item = &ast.RepeatItem{SpanVal: item.Span().Extend(tok.Span), Inner: item}
		case token.Star:
			item = &ast.OptionalRepeatItem{SpanVal: item.Span().Extend(tok.Span), Inner: item}
		default:
			return item, nil
		}

		if _, err := p.consume(); err != nil {
			return nil, err
		}
	}
}
