// Package srcenc detects the text encoding of a raw grammar source file
// before it reaches the scanner (spec §6 "Source encoding detection").
//
// Grounded on original_source/lrpy's EncodingDetector: a UTF-8 byte-order
// mark, or failing that a leading "# coding: <name>" comment line, decide
// the encoding; anything else falls back to a caller-supplied default.
// Decoding the declared encoding's name uses golang.org/x/text/encoding/
// ianaindex, the ecosystem's registry of IANA charset names, rather than a
// hand-rolled alias table.
package srcenc

import (
	"strings"

	"github.com/dekarrin/lrforge/internal/lrforge/diag"
	"github.com/dekarrin/lrforge/internal/lrforge/reader"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

const (
	bom         = "\xef\xbb\xbf"
	commentChar = '#'
)

// Detect inspects the first line of data for a UTF-8 BOM or an encoding
// declaration comment, returning the resolved encoding.Encoding and its
// normalized name. If neither is present, it returns defaultName's encoding.
func Detect(data []byte, defaultName string) (encoding.Encoding, string, error) {
	text := string(data)
	hasBOM := strings.HasPrefix(text, bom)
	if hasBOM {
		text = text[len(bom):]
	}

	line := firstLine(text)

	name := ""
	if line != "" {
		var err error
		name, err = parseDeclaration(line)
		if err != nil {
			return nil, "", err
		}
	}

	if hasBOM {
		if name != "" && normalize(name) != "utf-8" {
			return nil, "", diag.InvalidEncodingDeclarationErr(
				"Encoding mismatch for file with UTF-8 BOM: " + name)
		}
		name = "utf-8"
	}

	if name == "" {
		name = defaultName
	}

	enc, err := ianaindex.IANA.Encoding(normalize(name))
	if err != nil || enc == nil {
		return nil, "", diag.InvalidEncodingDeclarationErr(
			"The encoding declaration refers to an unknown encoding: " + name)
	}

	return enc, normalize(name), nil
}

func firstLine(text string) string {
	if idx := strings.IndexAny(text, "\r\n"); idx >= 0 {
		return text[:idx]
	}
	return text
}

// parseDeclaration extracts the encoding name from a "# coding: <name>" (or
// "# coding=<name>") style comment line. It returns "" if line is not such a
// declaration -- that is not an error, just a signal to fall back to the
// default encoding.
func parseDeclaration(line string) (string, error) {
	r := reader.New(line)
	r.SkipWhitespace()

	if !r.Lookahead(func(c rune) bool { return c == commentChar }, true) {
		return "", nil
	}

	if !r.Goto("coding") {
		return "", nil
	}
	if !r.Lookahead(func(c rune) bool { return c == ':' || c == '=' }, true) {
		return "", nil
	}

	r.SkipWhitespace()
	name := r.Accumulate(isEncodingChar)
	if name == "" {
		return "", nil
	}

	if _, err := ianaindex.IANA.Encoding(normalize(name)); err != nil {
		return "", diag.InvalidEncodingDeclarationErr(
			"The encoding declaration refers to an unknown encoding: " + name)
	}

	return name, nil
}

func isEncodingChar(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') ||
		c == '.' || c == '-' || c == '_'
}

// normalize mirrors EncodingDetector.normalize_encoding: it folds the common
// UTF-8 and Latin-1 aliases down to their canonical IANA names, since
// ianaindex itself is stricter about exact alias spelling than Python's
// codecs module is.
func normalize(name string) string {
	sanitized := strings.ToLower(name)
	if len(sanitized) > 12 {
		sanitized = sanitized[:12]
	}
	sanitized = strings.ReplaceAll(sanitized, "_", "-")

	if sanitized == "utf-8" || strings.HasPrefix(sanitized, "utf-8-") {
		return "utf-8"
	}

	switch sanitized {
	case "latin-1", "iso-8859-1", "iso-latin-1":
		return "iso-8859-1"
	}

	return name
}
