// Package reader provides StringReader, a forward-only character cursor over
// an in-memory source string.
//
// This is a Go port of the cursor used by lrpy's StringReader
// (original_source/lrpy/stringreader.py): a single position into an immutable
// string, with helpers for skipping whitespace, accumulating runs of
// characters matching a predicate, and searching ahead for a literal needle.
package reader

import "strings"

// EOF is the sentinel rune returned by Peek once the cursor has passed the
// end of the source. It is not a legitimate source character.
const EOF = rune(-1)

// StringReader is a forward-only cursor over an immutable source string.
// Positions are byte offsets into Source, and Peek returns a single byte
// widened to a rune; multi-byte UTF-8 sequences are not decoded.
type StringReader struct {
	Source   string
	position int
}

// New creates a StringReader positioned at the start of source.
func New(source string) *StringReader {
	return &StringReader{Source: source}
}

// Position returns the current cursor offset.
func (r *StringReader) Position() int {
	return r.position
}

// AtEOF returns whether the cursor has reached the end of the source.
func (r *StringReader) AtEOF() bool {
	return r.position >= len(r.Source)
}

// Peek returns the character at position+offset, or EOF if that is past the
// end of the source.
func (r *StringReader) Peek(offset int) rune {
	i := r.position + offset
	if i < 0 || i >= len(r.Source) {
		return EOF
	}
	return rune(r.Source[i])
}

// Advance moves the cursor forward by n characters, never past the end of
// the source.
func (r *StringReader) Advance(n int) {
	r.position += n
	if r.position > len(r.Source) {
		r.position = len(r.Source)
	}
}

// Lookahead reports whether pred matches the character at the cursor. If it
// matches and advance is true, the cursor consumes that one character.
func (r *StringReader) Lookahead(pred func(rune) bool, advance bool) bool {
	if !pred(r.Peek(0)) {
		return false
	}
	if advance {
		r.Advance(1)
	}
	return true
}

// Skip advances the cursor while pred matches the current character.
func (r *StringReader) Skip(pred func(rune) bool) {
	for pred(r.Peek(0)) {
		r.Advance(1)
	}
}

// SkipWhitespace advances over space, tab, and form-feed characters. It never
// consumes a linebreak.
func (r *StringReader) SkipWhitespace() {
	r.Skip(func(c rune) bool {
		return c == ' ' || c == '\t' || c == '\f'
	})
}

// Accumulate advances the cursor while pred matches, returning the consumed
// substring.
func (r *StringReader) Accumulate(pred func(rune) bool) string {
	start := r.position
	r.Skip(pred)
	return r.Source[start:r.position]
}

// Goto searches for needle starting at the current position. If found, the
// cursor moves just past needle and Goto returns true. Otherwise the cursor
// is left unchanged and Goto returns false.
func (r *StringReader) Goto(needle string) bool {
	idx := indexFrom(r.Source, needle, r.position)
	if idx < 0 {
		return false
	}
	r.position = idx + len(needle)
	return true
}

func indexFrom(s, needle string, from int) int {
	if from > len(s) {
		return -1
	}
	rel := strings.Index(s[from:], needle)
	if rel < 0 {
		return -1
	}
	return from + rel
}

// IsIdentifierStart reports whether c can begin an identifier: an ASCII
// letter, underscore, or any byte with its high bit set.
func IsIdentifierStart(c rune) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		c >= 0x80
}

// IsIdentifierContinue reports whether c can continue an identifier:
// anything IsIdentifierStart accepts, plus ASCII digits.
func IsIdentifierContinue(c rune) bool {
	return IsIdentifierStart(c) || (c >= '0' && c <= '9')
}

// IsLinebreak reports whether c is a carriage return or line feed.
func IsLinebreak(c rune) bool {
	return c == '\r' || c == '\n'
}

// IsEscape reports whether c begins an escape sequence.
func IsEscape(c rune) bool {
	return c == '\\'
}
