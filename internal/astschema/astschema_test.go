package astschema

import (
	"testing"

	"github.com/glrgen/glrgen/internal/ast"
	"github.com/glrgen/glrgen/internal/grammarcore"
)

func pos() ast.Position          { return ast.Position{Row: 1, Col: 1} }
func idCat(name string) ast.IdCat { return ast.IdCat{Pos: pos(), Ident: name} }
func listCat(c ast.Category) ast.ListCat { return ast.ListCat{Pos: pos(), Cat: c} }
func nterm(cat ast.Category) ast.NTerminal { return ast.NTerminal{Pos: pos(), Cat: cat} }
func term(lit string) ast.Terminal { return ast.Terminal{Pos: pos(), Literal: lit} }

func TestDeriveMergesCoercionLevelsAndSkipsUnitTerminals(t *testing.T) {
	// EInt. Exp1 ::= Integer;
	// EAdd. Exp  ::= Exp "+" Exp1;
	// coercions Exp 1;
	g := &ast.Grammar{
		Pos: pos(),
		TokenDecls: []ast.TokenDecl{
			ast.AttrToken{Pos: pos(), Name: "Integer", Attr: "int"},
		},
		Definitions: []ast.Definition{
			ast.Rule{
				Pos: pos(), Label: ast.Id{Pos: pos(), Ident: "EInt"}, Cat: idCat("Exp1"),
				Items: []ast.Item{nterm(idCat("Integer"))},
			},
			ast.Rule{
				Pos: pos(), Label: ast.Id{Pos: pos(), Ident: "EAdd"}, Cat: idCat("Exp"),
				Items: []ast.Item{nterm(idCat("Exp")), term("+"), nterm(idCat("Exp1"))},
			},
			ast.Coercions{Pos: pos(), Ident: "Exp", Level: 1},
		},
	}

	gr, err := grammarcore.Build(g)
	if err != nil {
		t.Fatalf("grammarcore.Build failed: %v", err)
	}

	schema := Derive(gr)

	// Exp1's EInt case and Exp's EAdd case must merge into one "Exp" sum
	// type (trailing digits stripped); the synthesized Wild rules never
	// contribute a case since their constructor isn't Named.
	expType, ok := schema.Lookup("Exp")
	if !ok {
		t.Fatalf("expected a merged Exp sum type, got %+v", schema.Types)
	}
	if len(expType.Cases) != 2 {
		t.Fatalf("expected exactly 2 Named cases (EInt, EAdd) merged under Exp, got %+v", expType.Cases)
	}

	var add, intc *Case
	for i := range expType.Cases {
		switch expType.Cases[i].Label {
		case "EAdd":
			add = &expType.Cases[i]
		case "EInt":
			intc = &expType.Cases[i]
		}
	}
	if add == nil || intc == nil {
		t.Fatalf("expected both EAdd and EInt cases, got %+v", expType.Cases)
	}

	// EAdd's "+" is a unit terminal and must not appear as a field.
	if len(add.Fields) != 2 {
		t.Fatalf("expected EAdd to carry 2 fields (Exp, Exp1->merged Exp), got %+v", add.Fields)
	}
	for _, f := range add.Fields {
		if f.Kind != Sum || f.SumName != "Exp" || f.ListDepth != 0 {
			t.Fatalf("expected both of EAdd's fields to be plain Exp references, got %+v", f)
		}
	}

	if len(intc.Fields) != 1 || intc.Fields[0].Kind != Atom || intc.Fields[0].Atom != "int" {
		t.Fatalf("expected EInt to carry a single int field, got %+v", intc.Fields)
	}
}

func TestDeriveListFieldCarriesListDepth(t *testing.T) {
	// EInt. Exp ::= Integer;
	// EList. Stmt ::= [Exp];
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
				Pos: pos(), Label: ast.Id{Pos: pos(), Ident: "EList"}, Cat: idCat("Stmt"),
				Items: []ast.Item{nterm(listCat(idCat("Exp")))},
			},
		},
	}

	gr, err := grammarcore.Build(g)
	if err != nil {
		t.Fatalf("grammarcore.Build failed: %v", err)
	}

	schema := Derive(gr)
	stmtType, ok := schema.Lookup("Stmt")
	if !ok || len(stmtType.Cases) != 1 {
		t.Fatalf("expected a single-case Stmt sum type, got %+v", schema.Types)
	}
	field := stmtType.Cases[0].Fields[0]
	if field.Kind != Sum || field.SumName != "Exp" || field.ListDepth != 1 {
		t.Fatalf("expected a list-of-Exp field, got %+v", field)
	}
}

func TestDeriveSkipsListMacroRules(t *testing.T) {
	// EInt. Exp ::= Integer;
	// separator nonempty Exp ",";
	// should not produce any case under a list-related base name.
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
			ast.Separator{Pos: pos(), MinSize: ast.MNonempty, Cat: idCat("Exp"), Sep: ","},
		},
	}

	gr, err := grammarcore.Build(g)
	if err != nil {
		t.Fatalf("grammarcore.Build failed: %v", err)
	}

	schema := Derive(gr)
	if len(schema.Types) != 1 {
		t.Fatalf("expected exactly one sum type (Exp), got %+v", schema.Types)
	}
	if len(schema.Types[0].Cases) != 1 {
		t.Fatalf("expected the list macro to contribute no extra cases, got %+v", schema.Types[0].Cases)
	}
}
