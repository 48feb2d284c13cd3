// Package span defines TextSpan, a half-open character offset interval used
// throughout lrforge to locate tokens and AST nodes in source text.
package span

import "fmt"

// TextSpan is a half-open interval [Start, End) of character offsets into a
// source buffer. TextSpan values are immutable; every operation on a TextSpan
// returns a new one.
type TextSpan struct {
	Start int
	End   int
}

// New creates a TextSpan covering [start, end).
func New(start, end int) TextSpan {
	return TextSpan{Start: start, End: end}
}

// Len gives the number of characters covered by the span.
func (s TextSpan) Len() int {
	return s.End - s.Start
}

// Extend returns the minimal TextSpan that covers both s and other.
func (s TextSpan) Extend(other TextSpan) TextSpan {
	start := s.Start
	if other.Start < start {
		start = other.Start
	}
	end := s.End
	if other.End > end {
		end = other.End
	}
	return TextSpan{Start: start, End: end}
}

// Overlaps returns whether other is strictly contained within s.
func (s TextSpan) Overlaps(other TextSpan) bool {
	return other.Start > s.Start && other.End < s.End
}

func (s TextSpan) String() string {
	return fmt.Sprintf("%d-%d", s.Start, s.End)
}
