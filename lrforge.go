// Package lrforge wires the grammar pipeline end to end: scan, parse, build,
// and LR(0) state generation (spec §7 "Pipeline orchestration").
//
// Grounded on the teacher's internal/ictiobus/fishi.go ProcessFishiMd, which
// chains its own lex/grammar/parse-gen stages and aborts on the first error
// rather than attempting partial recovery across stages.
package lrforge

import (
	"github.com/dekarrin/lrforge/internal/lrforge/diag"
	"github.com/dekarrin/lrforge/internal/lrforge/grammar"
	"github.com/dekarrin/lrforge/internal/lrforge/grammar/build"
	"github.com/dekarrin/lrforge/internal/lrforge/gsyntax"
	"github.com/dekarrin/lrforge/internal/lrforge/lr"
	"github.com/dekarrin/lrforge/internal/lrforge/scan"
)

// TerminalDecl is re-exported from build so that callers never need to import
// the internal build package directly.
type TerminalDecl = build.TerminalDecl

// Result is everything a successful Generate call produces: the normalized
// grammar the builder lowered and the LR(0) state graph built from it.
type Result struct {
	Grammar *grammar.Grammar
	States  *lr.Result
}

// Generate runs the full pipeline over source, a grammar definition using the
// surface syntax described in spec §2, using terminals as the externally
// supplied terminal-name-to-value mapping. name is used only to label
// rendered diagnostics.
//
// Generate fails fast: the first stage to error aborts the pipeline, and no
// later stage runs.
func Generate(name, source string, terminals []TerminalDecl) (*Result, error) {
	sc := scan.New(name, source)
	p := gsyntax.New(sc)

	tree, err := p.Parse()
	if err != nil {
		return nil, err
	}

	g, err := build.Build(tree, terminals, sc.Source())
	if err != nil {
		return nil, err
	}

	states, err := lr.New(g).Generate()
	if err != nil {
		return nil, err
	}

	return &Result{Grammar: g, States: states}, nil
}

// IsDiagnostic reports whether err is a *diag.Error carrying the given kind,
// for callers that want to branch on the error taxonomy (spec "Error Handling
// Design") rather than just print it.
func IsDiagnostic(err error, kind diag.Kind) bool {
	dErr, ok := err.(*diag.Error)
	return ok && dErr.Kind() == kind
}
