// Package litgrammar extracts fenced grammar-source code blocks from a
// literate Markdown document (spec §6 "Literate grammar sources"), so that a
// grammar can be authored alongside the prose describing it.
//
// Grounded directly on the teacher's internal/ictiobus/fishi.go
// (fishiScanner, GetFishiFromMarkdown): a gomarkdown/markdown renderer that
// walks the parsed document and writes out the literal text of every code
// block tagged with the target language, discarding everything else.
package litgrammar

import (
	"io"
	"strings"

	"github.com/gomarkdown/markdown"
	mkast "github.com/gomarkdown/markdown/ast"
	mkparser "github.com/gomarkdown/markdown/parser"
)

// FenceLang is the code-fence info string that marks a block as grammar
// source, e.g. "```lrforge".
const FenceLang = "lrforge"

type grammarScanner bool

func (gs grammarScanner) RenderNode(w io.Writer, node mkast.Node, entering bool) mkast.WalkStatus {
	if !entering {
		return mkast.GoToNext
	}

	block, ok := node.(*mkast.CodeBlock)
	if !ok || block == nil {
		return mkast.GoToNext
	}

	if strings.ToLower(strings.TrimSpace(string(block.Info))) == FenceLang {
		w.Write(block.Literal)
	}
	return mkast.GoToNext
}

func (gs grammarScanner) RenderHeader(w io.Writer, doc mkast.Node) {}
func (gs grammarScanner) RenderFooter(w io.Writer, doc mkast.Node) {}

// Extract concatenates the literal contents of every fenced code block
// tagged FenceLang found in mdText, in document order, and returns it as
// grammar source text ready for the scanner.
func Extract(mdText []byte) []byte {
	doc := markdown.Parse(mdText, mkparser.New())
	var scanner grammarScanner
	return markdown.Render(doc, scanner)
}
