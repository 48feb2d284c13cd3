// Package token defines the lexical tokens produced by the grammar scanner.
package token

import (
	"fmt"

	"github.com/dekarrin/lrforge/internal/lrforge/span"
)

// Type identifies the lexical class of a Token.
type Type int

const (
	// Invalid is the zero value and is never produced by the scanner.
	Invalid Type = iota
	ForeignBlock
	String
	Identifier
	Newline
	EOF
	OpenParen
	CloseParen
	OpenBracket
	CloseBracket
	Colon
	Plus
	Star
	Dollar
	Arrow
)

var names = map[Type]string{
	Invalid:      "INVALID",
	ForeignBlock: "FOREIGN_BLOCK",
	String:       "STRING",
	Identifier:   "IDENTIFIER",
	Newline:      "NEWLINE",
	EOF:          "EOF",
	OpenParen:    "OPEN_PAREN",
	CloseParen:   "CLOSE_PAREN",
	OpenBracket:  "OPEN_BRACKET",
	CloseBracket: "CLOSE_BRACKET",
	Colon:        "COLON",
	Plus:         "PLUS",
	Star:         "STAR",
	Dollar:       "DOLLAR",
	Arrow:        "ARROW",
}

func (t Type) String() string {
	if s, ok := names[t]; ok {
		return s
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Token is a single lexeme scanned from grammar source text. Content is only
// meaningful for Identifier, String, and ForeignBlock tokens; it is empty for
// every other type.
type Token struct {
	Type    Type
	Span    span.TextSpan
	Content string
}

func (t Token) String() string {
	if t.Content != "" {
		return fmt.Sprintf("<%s %q %s>", t.Type, t.Content, t.Span)
	}
	return fmt.Sprintf("<%s %s>", t.Type, t.Span)
}

// HasContent reports whether this token type carries a Content payload.
func (t Type) HasContent() bool {
	return t == Identifier || t == String || t == ForeignBlock
}
