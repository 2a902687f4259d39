package automaton

import (
	"testing"

	"github.com/glrgen/glrgen/internal/ast"
	"github.com/glrgen/glrgen/internal/grammarcore"
)

func pos() ast.Position { return ast.Position{Row: 1, Col: 1} }
func idCat(name string) ast.IdCat { return ast.IdCat{Pos: pos(), Ident: name} }
func nterm(cat ast.Category) ast.NTerminal { return ast.NTerminal{Pos: pos(), Cat: cat} }
func term(lit string) ast.Terminal { return ast.Terminal{Pos: pos(), Literal: lit} }

// scenarioA builds spec.md §8 Scenario A's grammar:
// EInt. Exp ::= Integer; ESub. Exp ::= Exp "-" Exp;
func scenarioA(t *testing.T) *grammarcore.Grammar {
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
	return gr
}

func TestBuildStateZeroIsStart(t *testing.T) {
	a, err := Build(scenarioA(t))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(a.States) == 0 || a.States[0].ID != 0 {
		t.Fatalf("expected state 0 to exist as the start state")
	}
}

func TestBuildTransitionsAreUniquePerFromSymbol(t *testing.T) {
	a, err := Build(scenarioA(t))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	seen := map[[2]interface{}]bool{}
	for _, tr := range a.Transitions {
		key := [2]interface{}{tr.From, tr.Symbol}
		if seen[key] {
			t.Fatalf("duplicate (from, symbol) pair in transitions: %v", tr)
		}
		seen[key] = true
	}
}

func TestBuildEveryToStateIsInPool(t *testing.T) {
	a, err := Build(scenarioA(t))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	ids := map[int]bool{}
	for _, s := range a.States {
		ids[s.ID] = true
	}
	for _, tr := range a.Transitions {
		if !ids[tr.To] {
			t.Fatalf("transition targets state %d, which is not in the pool", tr.To)
		}
	}
}

func TestBuildReduceItemsCorrespondToRules(t *testing.T) {
	a, err := Build(scenarioA(t))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	found := false
	for _, s := range a.States {
		for _, it := range a.ReduceItems(s.ID) {
			if it.RuleIndex < 0 || it.RuleIndex >= len(a.Rules) {
				t.Fatalf("reduce item references an out-of-range rule: %v", it)
			}
			found = true
		}
	}
	if !found {
		t.Fatalf("expected at least one reduce item across all states")
	}
}

func TestBuildStateWithOnlyShiftsHasNoReduceItems(t *testing.T) {
	a, err := Build(scenarioA(t))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !a.States[0].HasShift() {
		t.Fatalf("expected the initial state to have outgoing shifts")
	}
	if len(a.ReduceItems(0)) != 0 {
		t.Fatalf("expected the initial state to have no reduce items, got %v", a.ReduceItems(0))
	}
}

func TestBuildTransitionSymbolReachesRecordedState(t *testing.T) {
	a, err := Build(scenarioA(t))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	for _, tr := range a.Transitions {
		to, ok := a.States[tr.From].Next[tr.Symbol]
		if !ok || to != tr.To {
			t.Fatalf("state %d's Next map disagrees with transition %v", tr.From, tr)
		}
	}
}
