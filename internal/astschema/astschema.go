// Package astschema implements spec.md §4.6 (C6): deriving the
// sum-of-products AST schema implied by a normalized grammar's Named rules,
// merging coercion levels (Exp, Exp1, Exp2, ...) back to one base type.
// Grounded on the shape of the teacher's own AST-from-grammar derivation in
// cmd/vartan-go/generate.go, adapted from vartan's flat non-terminal-per-type
// model to spec.md's base-name-merging rule.
package astschema

import (
	"github.com/glrgen/glrgen/internal/grammarcore"
	"github.com/glrgen/glrgen/internal/symbol"
)

type FieldKind int

const (
	Atom FieldKind = iota
	Sum
)

// Field is one payload slot of a Case: either an atomic terminal attribute
// type or a reference to another (possibly the same) sum type, optionally
// wrapped in list constructors.
type Field struct {
	Kind      FieldKind
	Atom      string // "int" | "string" | "char" | "real", when Kind == Atom
	SumName   string // base name of the referenced sum type, when Kind == Sum
	ListDepth int    // number of list-constructor wraps around SumName
}

// Case is one constructor of a derived sum type: a Named rule's label and
// the ordered payload of every rhs symbol that carries a semantic value
// (spec.md §3: "all nonterminals plus non-unit terminals").
type Case struct {
	Label string
	Rule  grammarcore.Rule
	Fields []Field
}

// SumType is every Named rule sharing one base nonterminal name.
type SumType struct {
	Name  string
	Cases []Case
}

// Schema is the full, mutually recursive set of sum types derived from a
// normalized grammar.
type Schema struct {
	Types []SumType
}

// HasValue reports whether s carries a semantic value at all: every
// nonterminal does, and every terminal except a unit terminal (a bare
// keyword or literal) does.
func HasValue(s symbol.Symbol) bool {
	return !s.IsTerminal() || s.Kind != symbol.UnitTerminal
}

func (s *Schema) Lookup(name string) (SumType, bool) {
	for _, t := range s.Types {
		if t.Name == name {
			return t, true
		}
	}
	return SumType{}, false
}

func attrAtom(kind symbol.Kind) (string, bool) {
	switch kind {
	case symbol.IntTerminal:
		return "int", true
	case symbol.StringTerminal:
		return "string", true
	case symbol.CharTerminal:
		return "char", true
	case symbol.RealTerminal:
		return "real", true
	default:
		return "", false
	}
}

func fieldFor(s symbol.Symbol) (Field, bool) {
	if s.IsTerminal() {
		atom, ok := attrAtom(s.Kind)
		if !ok {
			// A unit terminal (keyword or literal) carries no value.
			return Field{}, false
		}
		return Field{Kind: Atom, Atom: atom}, true
	}
	return Field{Kind: Sum, SumName: symbol.BaseName(s.Name), ListDepth: s.Level}, true
}

// Derive builds the AST schema implied by g's Named rules (spec.md §4.6). A
// case with no payload fields still exists as a Case; at emission time it
// still carries a source span (internal/emit's concern, not this package's).
func Derive(g *grammarcore.Grammar) *Schema {
	var order []string
	byName := map[string]*SumType{}

	for _, r := range g.Rules {
		if r.Constructor.Kind != grammarcore.Named || r.LHS.Level != 0 {
			continue
		}
		base := symbol.BaseName(r.LHS.Name)
		st, ok := byName[base]
		if !ok {
			st = &SumType{Name: base}
			byName[base] = st
			order = append(order, base)
		}

		var fields []Field
		for _, s := range r.RHS {
			if f, ok := fieldFor(s); ok {
				fields = append(fields, f)
			}
		}
		st.Cases = append(st.Cases, Case{Label: r.Constructor.Label, Rule: r, Fields: fields})
	}

	schema := &Schema{}
	for _, name := range order {
		schema.Types = append(schema.Types, *byName[name])
	}
	return schema
}
