package main

import (
	"fmt"
	"os"

	specerr "github.com/glrgen/glrgen/error"
	"github.com/glrgen/glrgen/internal/astschema"
	"github.com/glrgen/glrgen/internal/automaton"
	"github.com/glrgen/glrgen/internal/gfile"
	"github.com/glrgen/glrgen/internal/grammarcore"
)

// buildGrammar reads, normalizes, and builds the automaton and AST schema
// for the grammar file at path: the C9->C2->C4->C5->C6 pipeline every
// subcommand that needs more than the raw grammar text runs first.
func buildGrammar(path string) (*grammarcore.Grammar, *automaton.Automaton, *astschema.Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("cannot open the grammar file %s: %w", path, err)
	}
	defer f.Close()

	g, err := gfile.Parse(f)
	if err != nil {
		if se, ok := err.(*gfile.SyntaxError); ok {
			return nil, nil, nil, fmt.Errorf("%s:%v", path, se)
		}
		return nil, nil, nil, err
	}

	gr, err := grammarcore.Build(g)
	if err != nil {
		if specErrs, ok := err.(specerr.SpecErrors); ok {
			specErrs.SetSource(path, path)
		}
		return nil, nil, nil, err
	}

	a, err := automaton.Build(gr)
	if err != nil {
		return nil, nil, nil, err
	}

	schema := astschema.Derive(gr)
	return gr, a, schema, nil
}
