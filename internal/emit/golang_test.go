package emit

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glrgen/glrgen/internal/ast"
	"github.com/glrgen/glrgen/internal/astschema"
	"github.com/glrgen/glrgen/internal/automaton"
	"github.com/glrgen/glrgen/internal/grammarcore"
)

func pos() ast.Position { return ast.Position{Row: 1, Col: 1} }
func idCat(name string) ast.IdCat { return ast.IdCat{Pos: pos(), Ident: name} }
func nterm(cat ast.Category) ast.NTerminal { return ast.NTerminal{Pos: pos(), Cat: cat} }
func term(lit string) ast.Terminal { return ast.Terminal{Pos: pos(), Literal: lit} }

// scenarioA is spec.md §8 Scenario A's ambiguous arithmetic grammar:
// EInt. Exp ::= Integer; ESub. Exp ::= Exp "-" Exp;
func scenarioA(t *testing.T) (*grammarcore.Grammar, *automaton.Automaton, *astschema.Schema) {
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
	schema := astschema.Derive(gr)
	return gr, a, schema
}

func TestGenerateProducesValidGoSource(t *testing.T) {
	gr, a, schema := scenarioA(t)
	src, err := Generate("parser", gr, a, schema)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	text := string(src)

	for _, want := range []string{
		"package parser",
		"TermInteger",
		"TermMinus",
		"TermEOF",
		"type Exp interface {",
		"type EInt struct {",
		"type ESub struct {",
		"func goDispatch(",
		"func Parse(",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("generated source missing %q:\n%s", want, text)
		}
	}
}

func TestGenerateEmitsOneReduceFuncPerReduceItem(t *testing.T) {
	gr, a, schema := scenarioA(t)
	src, err := Generate("parser", gr, a, schema)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	text := string(src)

	total := 0
	for _, st := range a.States {
		total += len(a.ReduceItems(st.ID))
	}
	got := strings.Count(text, "func reduce")
	if got != total {
		t.Fatalf("expected %d reduce functions (one per reduce item across all states), got %d", total, got)
	}
}

func TestGenerateEmitsOneShiftFuncPerShiftState(t *testing.T) {
	gr, a, schema := scenarioA(t)
	src, err := Generate("parser", gr, a, schema)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	text := string(src)

	want := 0
	for _, st := range a.States {
		if st.HasShift() {
			want++
		}
	}
	got := strings.Count(text, "func shift")
	if got != want {
		t.Fatalf("expected %d shift functions, got %d", want, got)
	}
}

// scenarioC is spec.md §8 Scenario C's separator-list grammar: EInt. Exp
// ::= Integer; separator empty Exp ","; Start. S ::= [Exp]. Its start
// symbol (S) derives the empty string, so state 0's closure carries the
// epsilon reduce item [Exp] -> ., the case Parse's entry point must seed
// before entering loop.
func scenarioC(t *testing.T) (*grammarcore.Grammar, *automaton.Automaton, *astschema.Schema) {
	t.Helper()
	listCat := ast.ListCat{Pos: pos(), Cat: idCat("Exp")}
	g := &ast.Grammar{
		Pos: pos(),
		TokenDecls: []ast.TokenDecl{
			ast.AttrToken{Pos: pos(), Name: "Integer", Attr: "int"},
		},
		Definitions: []ast.Definition{
			ast.Rule{
				Pos: pos(), Label: ast.Id{Pos: pos(), Ident: "Start"}, Cat: idCat("S"),
				Items: []ast.Item{nterm(listCat)},
			},
			ast.Rule{
				Pos: pos(), Label: ast.Id{Pos: pos(), Ident: "EInt"}, Cat: idCat("Exp"),
				Items: []ast.Item{nterm(idCat("Integer"))},
			},
			ast.Separator{Pos: pos(), MinSize: ast.MEmpty, Cat: idCat("Exp"), Sep: ","},
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
	schema := astschema.Derive(gr)
	return gr, a, schema
}

// TestGenerateSeedsParseWithStateZeroReduceItems is the codegen-side
// regression for spec.md §4.7's entry point: Parse must fire every reduce
// item already sitting in state 0's closure before calling loop, not just
// seed the bare {State: 0, Stack: nil} config.
func TestGenerateSeedsParseWithStateZeroReduceItems(t *testing.T) {
	gr, a, schema := scenarioC(t)
	reduceItems := a.ReduceItems(0)
	if len(reduceItems) == 0 {
		t.Fatalf("expected state 0 to carry at least one reduce item for this grammar")
	}

	src, err := Generate("parser", gr, a, schema)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	text := string(src)

	for i := range reduceItems {
		want := fmt.Sprintf("configs = append(configs, %s(nil, stream.Pos())...)", reduceFuncName(0, i))
		if !strings.Contains(text, want) {
			t.Fatalf("Parse does not seed state 0's reduce item %d; missing %q in:\n%s", i, want, text)
		}
	}
}

func TestSymbolIdentSanitizesPunctuation(t *testing.T) {
	gr, _, _ := scenarioA(t)
	for _, term := range gr.Terms {
		if term.Name == "-" {
			if got, want := symbolIdent(term), "Minus"; got != want {
				t.Fatalf("symbolIdent(%v) = %q, want %q", term, got, want)
			}
			return
		}
	}
	t.Fatalf("expected the grammar to have registered the implicit \"-\" terminal")
}
