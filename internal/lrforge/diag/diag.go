// Package diag renders source-excerpt diagnostics and defines the error
// taxonomy for the lrforge pipeline (spec: "Error Handling Design").
//
// The shape of the error values here follows the teacher's internal/tqerrors
// package: an error struct with unexported fields, paired with an exported
// constructor per kind (methods on Source for the kinds that carry a source
// location), plus an Unwrap for any wrapped cause. The
// caret-underline rendering itself is a port of the fail() helpers found in
// original_source/lrpy's GrammarScanner and GrammarParser.
package diag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dekarrin/lrforge/internal/lrforge/span"
)

// Kind identifies which of the taxonomy's error categories a Error value
// belongs to.
type Kind int

const (
	InvalidEncodingDeclaration Kind = iota
	InvalidGrammar
	UnknownSymbol
	MissingEntryPoint
)

func (k Kind) String() string {
	switch k {
	case InvalidEncodingDeclaration:
		return "InvalidEncodingDeclaration"
	case InvalidGrammar:
		return "InvalidGrammar"
	case UnknownSymbol:
		return "UnknownSymbol"
	case MissingEntryPoint:
		return "MissingEntryPoint"
	default:
		return "Unknown"
	}
}

// Error is the single error type returned from anywhere in the lrforge
// pipeline. It always carries a human-readable, fully rendered message; when
// the failure has a location in source, Error returns the caret-underlined
// excerpt described in spec §4.6 instead of the bare message.
type Error struct {
	kind     Kind
	msg      string
	rendered string
	wrap     error
}

func (e *Error) Error() string {
	if e.rendered != "" {
		return e.rendered
	}
	return e.msg
}

// Kind returns the taxonomy category of this error.
func (e *Error) Kind() Kind {
	return e.kind
}

// Message returns the bare message, without the rendered source excerpt.
func (e *Error) Message() string {
	return e.msg
}

// Unwrap returns the error e wraps, if any.
func (e *Error) Unwrap() error {
	return e.wrap
}

// Source holds a grammar source buffer together with its precomputed
// line-start offsets, so that Render can turn a span into a line number and
// one-line excerpt via binary search, per spec §4.6.
type Source struct {
	Name       string
	Text       string
	lineStarts []int
}

// NewSource scans text once for line-start offsets and returns a Source ready
// for repeated Render calls. name is used as the file name in the rendered
// diagnostic; pass "" for an anonymous source.
func NewSource(name, text string) *Source {
	s := &Source{Name: name, Text: text, lineStarts: []int{0}}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			s.lineStarts = append(s.lineStarts, i+1)
		}
	}
	return s
}

// LineAt returns the 1-indexed line number containing byte offset pos.
func (s *Source) LineAt(pos int) int {
	// binary search for the last line start <= pos
	i := sort.Search(len(s.lineStarts), func(i int) bool {
		return s.lineStarts[i] > pos
	})
	return i // i is already 1-indexed since lineStarts[0]=0 is line 1
}

func (s *Source) lineText(lineno int) string {
	idx := lineno - 1
	if idx < 0 || idx >= len(s.lineStarts) {
		return ""
	}
	start := s.lineStarts[idx]
	end := len(s.Text)
	if idx+1 < len(s.lineStarts) {
		end = s.lineStarts[idx+1]
	}
	line := s.Text[start:end]
	line = strings.TrimRight(line, "\r\n")
	return line
}

// Render produces the caret-diagnostic string described in spec §4.6:
//
//	File '<name>', line <L>: <message>
//	<the offending line of source>
//	<spaces>^^^...^^^
func (s *Source) Render(sp span.TextSpan, message string) string {
	lineno := s.LineAt(sp.Start)
	lineStart := 0
	if lineno-1 < len(s.lineStarts) {
		lineStart = s.lineStarts[lineno-1]
	}
	line := s.lineText(lineno)

	col := sp.Start - lineStart
	if col < 0 {
		col = 0
	}

	width := sp.Len()
	if width < 1 {
		width = 1
	}

	var b strings.Builder
	fmt.Fprintf(&b, "File '%s', line %d: %s\n", s.Name, lineno, message)
	b.WriteString(line)
	b.WriteRune('\n')
	b.WriteString(strings.Repeat(" ", col))
	b.WriteString(strings.Repeat("^", width))

	return b.String()
}

// Grammar builds an InvalidGrammar error rendered against src at sp.
func (s *Source) Grammar(sp span.TextSpan, message string) *Error {
	return &Error{kind: InvalidGrammar, msg: message, rendered: s.Render(sp, message)}
}

// UnknownSymbolErr builds an UnknownSymbol error rendered against src at sp.
func (s *Source) UnknownSymbolErr(sp span.TextSpan, name string) *Error {
	msg := fmt.Sprintf("Unknown symbol %q", name)
	return &Error{kind: UnknownSymbol, msg: msg, rendered: s.Render(sp, msg)}
}

// MissingEntryPointErr builds a MissingEntryPoint error. It has no source
// location, since it is only detected once the whole grammar has been
// lowered.
func MissingEntryPointErr() *Error {
	msg := "grammar has no entrypoint; mark one rule with $"
	return &Error{kind: MissingEntryPoint, msg: msg, rendered: msg}
}

// InvalidEncodingDeclarationErr builds an InvalidEncodingDeclaration error.
// This is raised only by the external encoding-detection collaborator
// (internal/srcenc), never by the core pipeline.
func InvalidEncodingDeclarationErr(message string) *Error {
	return &Error{kind: InvalidEncodingDeclaration, msg: message, rendered: message}
}
