// Package termcfg loads a grammar's terminal-name-to-value declarations from
// a TOML document (spec §6 "Terminals input").
//
// Grounded on the teacher's internal/tqw package, which also centers on
// github.com/BurntSushi/toml for its on-disk format; termcfg borrows its
// ScanFileInfo-then-Unmarshal two-step shape but targets the much smaller
// surface lrforge needs.
package termcfg

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/dekarrin/lrforge/internal/lrforge/grammar/build"
)

// document is the on-disk shape: an array of tables so that declaration
// order survives the TOML round trip, since a bare map does not preserve it.
//
//	[[terminal]]
//	name = "a"
//	value = 1
type document struct {
	Terminal []struct {
		Name  string `toml:"name"`
		Value int    `toml:"value"`
	} `toml:"terminal"`
}

// Load reads and decodes a terminals-config TOML file at path into the
// ordered slice the grammar builder expects.
func Load(path string) ([]build.TerminalDecl, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes TOML-formatted terminal declarations from data.
func Parse(data []byte) ([]build.TerminalDecl, error) {
	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("termcfg: %w", err)
	}

	seen := make(map[string]bool, len(doc.Terminal))
	decls := make([]build.TerminalDecl, 0, len(doc.Terminal))
	for _, t := range doc.Terminal {
		if t.Name == "" {
			return nil, fmt.Errorf("termcfg: terminal entry missing name")
		}
		if seen[t.Name] {
			return nil, fmt.Errorf("termcfg: terminal %q declared more than once", t.Name)
		}
		seen[t.Name] = true
		decls = append(decls, build.TerminalDecl{Name: t.Name, Value: t.Value})
	}

	return decls, nil
}
