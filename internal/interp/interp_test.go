package interp_test

import (
	"testing"

	"github.com/glrgen/glrgen/driverrt"
	"github.com/glrgen/glrgen/internal/ast"
	"github.com/glrgen/glrgen/internal/automaton"
	"github.com/glrgen/glrgen/internal/grammarcore"
	"github.com/glrgen/glrgen/internal/interp"
)

func pos() ast.Position { return ast.Position{Row: 1, Col: 1} }
func idCat(name string) ast.IdCat { return ast.IdCat{Pos: pos(), Ident: name} }
func nterm(cat ast.Category) ast.NTerminal { return ast.NTerminal{Pos: pos(), Cat: cat} }
func term(lit string) ast.Terminal { return ast.Terminal{Pos: pos(), Literal: lit} }

// scenarioA mirrors internal/emit's spec.md §8 Scenario A grammar: EInt.
// Exp ::= Integer; ESub. Exp ::= Exp "-" Exp.
func scenarioA(t *testing.T) (*grammarcore.Grammar, *automaton.Automaton) {
	t.Helper()
	g := &ast.Grammar{
		Pos: pos(),
		TokenDecls: []ast.TokenDecl{
			ast.AttrToken{Pos: pos(), Name: "Integer", Attr: "int"},
		},
		Definitions: []ast.Definition{
			ast.Rule{
				Pos: pos(), Label: ast.Id{Pos: pos(), Ident: "EInt"}, Cat: idCat("Exp"),
				Items: []ast.Item{nterm(idCat("Integer"))},
			},
			ast.Rule{
				Pos: pos(), Label: ast.Id{Pos: pos(), Ident: "ESub"}, Cat: idCat("Exp"),
				Items: []ast.Item{nterm(idCat("Exp")), term("-"), nterm(idCat("Exp"))},
			},
		},
	}
	gr, err := grammarcore.Build(g)
	if err != nil {
		t.Fatalf("grammarcore.Build failed: %v", err)
	}
	a, err := automaton.Build(gr)
	if err != nil {
		t.Fatalf("automaton.Build failed: %v", err)
	}
	return gr, a
}

func termID(t *testing.T, gr *grammarcore.Grammar, name string) driverrt.TerminalID {
	t.Helper()
	for i, s := range gr.Terms {
		if s.Name == name {
			return driverrt.TerminalID(i)
		}
	}
	t.Fatalf("grammar has no terminal named %q", name)
	return -1
}

// fixedStream replays a fixed token sequence, then EOF forever, the way a
// compiled fixture input would once lexed.
type fixedStream struct {
	toks []driverrt.Token
	i    int
}

func (s *fixedStream) Next() (driverrt.Token, error) {
	if s.i >= len(s.toks) {
		return driverrt.Token{Terminal: driverrt.EOFTerminal}, nil
	}
	tok := s.toks[s.i]
	s.i++
	return tok, nil
}

func (s *fixedStream) Pos() driverrt.Pos { return driverrt.Pos{Row: 1, Col: s.i + 1} }

func TestRunCountsUnambiguousParse(t *testing.T) {
	gr, a := scenarioA(t)
	intID := termID(t, gr, "Integer")

	stream := &fixedStream{toks: []driverrt.Token{
		{Terminal: intID, Value: int64(1)},
	}}

	n, err := interp.Run(gr, a, stream)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected exactly 1 accepted parse for a bare Integer, got %d", n)
	}
}

func TestRunCountsAmbiguousParses(t *testing.T) {
	gr, a := scenarioA(t)
	intID := termID(t, gr, "Integer")
	minusID := termID(t, gr, "-")

	// "1 - 2 - 3": Exp ::= Exp "-" Exp is ambiguous over two subtractions,
	// admitting the two Catalan-number parse trees spec.md §8 Scenario A
	// expects (left-grouped and right-grouped).
	stream := &fixedStream{toks: []driverrt.Token{
		{Terminal: intID, Value: int64(1)},
		{Terminal: minusID},
		{Terminal: intID, Value: int64(2)},
		{Terminal: minusID},
		{Terminal: intID, Value: int64(3)},
	}}

	n, err := interp.Run(gr, a, stream)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected exactly 2 accepted parses for \"1-2-3\", got %d", n)
	}
}

func TestRunRejectsMismatchedInput(t *testing.T) {
	gr, a := scenarioA(t)
	minusID := termID(t, gr, "-")

	// A bare "-" never reduces to Exp: state 0 has no shift entry for it.
	stream := &fixedStream{toks: []driverrt.Token{
		{Terminal: minusID},
	}}

	n, err := interp.Run(gr, a, stream)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 accepted parses for invalid input, got %d", n)
	}
}
