// Package grammarcore implements spec.md's C1 (symbol table & kinds) and C2
// (grammar normalizer): it lowers the grammar AST (internal/ast) into the
// flat, macro-free Grammar spec.md §3 defines. Grounded on the teacher's
// grammar.GrammarBuilder.Build (grammar/grammar.go), which runs the same
// shape of terminal-pass / head-registration-pass / body-resolution-pass
// pipeline over its own (unrelated) grammar-file dialect.
package grammarcore

import (
	"strconv"

	"github.com/glrgen/glrgen/internal/ast"
	"github.com/glrgen/glrgen/internal/symbol"

	specerr "github.com/glrgen/glrgen/error"
)

// ConstructorKind is the tag of a Rule's Constructor (spec.md §3).
type ConstructorKind int

const (
	Named ConstructorKind = iota
	Wild
	ListEmpty
	ListCons
	ListOne
)

func (k ConstructorKind) String() string {
	switch k {
	case Named:
		return "named"
	case Wild:
		return "wild"
	case ListEmpty:
		return "list-empty"
	case ListCons:
		return "list-cons"
	case ListOne:
		return "list-one"
	default:
		return "unknown"
	}
}

// Constructor identifies how a reduction over a Rule builds its semantic
// value: a user label, a pass-through wildcard, or one of the three list
// macro shapes.
type Constructor struct {
	Kind ConstructorKind
	// Label is the user-given name; only meaningful when Kind == Named.
	Label string
}

func NamedConstructor(label string) Constructor { return Constructor{Kind: Named, Label: label} }

var (
	WildConstructor      = Constructor{Kind: Wild}
	ListEmptyConstructor = Constructor{Kind: ListEmpty}
	ListConsConstructor  = Constructor{Kind: ListCons}
	ListOneConstructor   = Constructor{Kind: ListOne}
)

// Rule is the flat (constructor, lhs, rhs) triple spec.md §3 defines.
type Rule struct {
	Constructor Constructor
	LHS         symbol.Symbol
	RHS         []symbol.Symbol
}

func (r Rule) IsEmpty() bool { return len(r.RHS) == 0 }

// Grammar is the normalized {terms, nonterms, rules, start} spec.md §3
// defines, plus the ambient lexical metadata (C10 in SPEC_FULL.md) the
// emitted lexer needs but which has no bearing on the core algorithms.
type Grammar struct {
	Terms    []symbol.Symbol
	Nonterms []symbol.Symbol
	Rules    []Rule
	Start    symbol.Symbol

	// Aliases maps a keyword terminal to its literal spelling, so rule
	// right-hand sides may reference either the declared name or the
	// literal (spec.md §4.1).
	Aliases map[symbol.Symbol]string
	// Patterns carries an explicit lexical pattern for a terminal, when
	// the grammar file gave one (ambient; consumed by internal/lexspec).
	Patterns map[symbol.Symbol]string
}

type builder struct {
	symTab          *symbol.Table
	literalToSymbol map[string]symbol.Symbol
	aliases         map[symbol.Symbol]string
	patterns        map[symbol.Symbol]string
	errs            specerr.SpecErrors
}

// Build normalizes a grammar AST into a Grammar. Errors accumulate (rather
// than stopping at the first) so a grammar author sees every problem in one
// pass, the way the teacher's GrammarBuilder.Build does.
func Build(g *ast.Grammar) (*Grammar, error) {
	b := &builder{
		symTab:          symbol.NewTable(),
		literalToSymbol: map[string]symbol.Symbol{},
		aliases:         map[symbol.Symbol]string{},
		patterns:        map[symbol.Symbol]string{},
	}

	b.registerTokenDecls(g.TokenDecls)
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	b.registerCategoryHeads(g.Definitions)
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	var rules []Rule
	var start symbol.Symbol
	haveStart := false

	for _, def := range g.Definitions {
		switch d := def.(type) {
		case ast.Rule:
			lhs, ok := b.symTab.Lookup(decomposeName(d.Cat), decomposeLevel(d.Cat))
			if !ok {
				// registerCategoryHeads always registers every rule head;
				// reaching here would be an internal bug, not a user error.
				panic("grammarcore: rule head was not pre-registered")
			}
			if !haveStart {
				start = lhs
				haveStart = true
			}
			rhs, ok := b.resolveItems(d.Items)
			if !ok {
				continue
			}
			rules = append(rules, Rule{Constructor: constructorFor(d.Label), LHS: lhs, RHS: rhs})

		case ast.Separator:
			rs, ok := b.expandSeparator(d)
			if ok {
				rules = append(rules, rs...)
			}

		case ast.Terminator:
			rs, ok := b.expandTerminator(d)
			if ok {
				rules = append(rules, rs...)
			}

		case ast.Coercions:
			rs, ok := b.expandCoercions(d)
			if ok {
				rules = append(rules, rs...)
			}
		}
	}

	if !haveStart {
		b.errs = append(b.errs, &specerr.SpecError{Cause: ErrNoProduction})
	}
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	var terms, nonterms []symbol.Symbol
	for _, s := range b.symTab.All() {
		if s.IsTerminal() {
			terms = append(terms, s)
		} else {
			nonterms = append(nonterms, s)
		}
	}

	return &Grammar{
		Terms:    terms,
		Nonterms: nonterms,
		Rules:    rules,
		Start:    start,
		Aliases:  b.aliases,
		Patterns: b.patterns,
	}, nil
}

func (b *builder) addErr(cause error, detail string, pos ast.Position) {
	b.errs = append(b.errs, &specerr.SpecError{
		Cause:  cause,
		Detail: detail,
		Row:    pos.Row,
		Col:    pos.Col,
	})
}

// --- Terminal pass (C1) ---

func attrKind(attr string) (symbol.Kind, bool) {
	switch attr {
	case "string":
		return symbol.StringTerminal, true
	case "int":
		return symbol.IntTerminal, true
	case "char":
		return symbol.CharTerminal, true
	case "real":
		return symbol.RealTerminal, true
	default:
		return 0, false
	}
}

func (b *builder) registerTokenDecls(decls []ast.TokenDecl) {
	for _, d := range decls {
		switch t := d.(type) {
		case ast.Keyword:
			sym, err := b.symTab.Register(t.Name, 0, symbol.UnitTerminal)
			if err != nil {
				b.addErr(ErrIncompatibleTokenKind, t.Name, t.Pos)
				continue
			}
			b.aliases[sym] = t.Literal
			if _, exists := b.literalToSymbol[t.Literal]; !exists {
				b.literalToSymbol[t.Literal] = sym
			}

		case ast.AttrToken:
			kind, ok := attrKind(t.Attr)
			if !ok {
				b.addErr(ErrUnknownTokenType, t.Attr, t.Pos)
				continue
			}
			if _, err := b.symTab.Register(t.Name, 0, kind); err != nil {
				b.addErr(ErrIncompatibleTokenKind, t.Name, t.Pos)
			}

		case ast.NoAttrToken:
			sym, err := b.symTab.Register(t.Name, 0, symbol.UnitTerminal)
			if err != nil {
				b.addErr(ErrIncompatibleTokenKind, t.Name, t.Pos)
				continue
			}
			if t.Pattern != "" {
				b.patterns[sym] = t.Pattern
			}
		}
	}
}

// --- Category pass (C2, pass 2): register every rule head and every
// bracketed category reference up front, so pass 3 can resolve bare
// (unbracketed) category references strictly and report UndefinedSymbol
// for anything that was never declared anywhere in the grammar. ---

func (b *builder) registerCategoryHeads(defs []ast.Definition) {
	for _, def := range defs {
		switch d := def.(type) {
		case ast.Rule:
			b.registerHead(d.Cat, d.Pos)
			for _, item := range d.Items {
				if nt, ok := item.(ast.NTerminal); ok {
					if _, isList := nt.Cat.(ast.ListCat); isList {
						b.registerHead(nt.Cat, nt.Pos)
					}
				}
			}

		case ast.Separator:
			// A separator/terminator macro over C always creates both C
			// itself and [C] (spec.md §4.2's "[X] produces both (X,0) and
			// (X,1)"), regardless of whether C has its own rule elsewhere.
			b.registerHead(ast.ListCat{Pos: d.Pos, Cat: d.Cat}, d.Pos)

		case ast.Terminator:
			b.registerHead(ast.ListCat{Pos: d.Pos, Cat: d.Cat}, d.Pos)

		case ast.Coercions:
			b.registerCoercionCategories(d)
		}
	}
}

// registerHead auto-vivifies every level from 0 up to cat's own level as a
// nonterminal, erroring if a level's name collides with an already-declared
// terminal of a different kind (NonterminalRequired).
func (b *builder) registerHead(cat ast.Category, pos ast.Position) {
	name, level := decomposeName(cat), decomposeLevel(cat)
	for l := 0; l <= level; l++ {
		if existing, ok := b.symTab.Lookup(name, l); ok {
			if l == level && existing.IsTerminal() {
				b.addErr(ErrNonterminalRequired, existing.String(), pos)
			}
			continue
		}
		if _, err := b.symTab.Register(name, l, symbol.Nonterminal); err != nil {
			b.addErr(ErrNonterminalRequired, name, pos)
			return
		}
	}
}

func (b *builder) registerCoercionCategories(d ast.Coercions) {
	if _, ok := b.symTab.Lookup(d.Ident, 0); !ok {
		if _, err := b.symTab.Register(d.Ident, 0, symbol.Nonterminal); err != nil {
			b.addErr(ErrDuplicateCoercionLevel, d.Ident, d.Pos)
			return
		}
	}
	for i := 1; i <= d.Level; i++ {
		name := d.Ident + strconv.Itoa(i)
		if _, ok := b.symTab.Lookup(name, 0); ok {
			continue
		}
		if _, err := b.symTab.Register(name, 0, symbol.Nonterminal); err != nil {
			b.addErr(ErrDuplicateCoercionLevel, name, d.Pos)
			return
		}
	}
}

func decomposeName(cat ast.Category) string {
	switch c := cat.(type) {
	case ast.IdCat:
		return c.Ident
	case ast.ListCat:
		return decomposeName(c.Cat)
	default:
		panic("grammarcore: unknown category type")
	}
}

func decomposeLevel(cat ast.Category) int {
	switch c := cat.(type) {
	case ast.IdCat:
		return 0
	case ast.ListCat:
		return decomposeLevel(c.Cat) + 1
	default:
		panic("grammarcore: unknown category type")
	}
}

// --- Rule expansion pass (C2, pass 3) ---

func constructorFor(label ast.Label) Constructor {
	switch l := label.(type) {
	case ast.Id:
		return NamedConstructor(l.Ident)
	case ast.Wild:
		return WildConstructor
	case ast.ListE:
		return ListEmptyConstructor
	case ast.ListCons:
		return ListConsConstructor
	case ast.ListOne:
		return ListOneConstructor
	default:
		panic("grammarcore: unknown label type")
	}
}

func (b *builder) resolveItems(items []ast.Item) ([]symbol.Symbol, bool) {
	rhs := make([]symbol.Symbol, 0, len(items))
	ok := true
	for _, item := range items {
		sym, itemOK := b.resolveItem(item)
		if !itemOK {
			ok = false
			continue
		}
		rhs = append(rhs, sym)
	}
	return rhs, ok
}

func (b *builder) resolveItem(item ast.Item) (symbol.Symbol, bool) {
	switch it := item.(type) {
	case ast.Terminal:
		return b.resolveLiteral(it.Literal), true
	case ast.NTerminal:
		return b.resolveCategoryRef(it.Cat, it.Pos)
	default:
		panic("grammarcore: unknown item type")
	}
}

func (b *builder) resolveLiteral(lit string) symbol.Symbol {
	if sym, ok := b.literalToSymbol[lit]; ok {
		return sym
	}
	// An implicit keyword: a bare literal used directly in a rule body with
	// no preceding `token` declaration (spec.md Scenario A's "-").
	sym, err := b.symTab.Register(lit, 0, symbol.UnitTerminal)
	if err != nil {
		// The literal's spelling collided with a previously declared
		// non-unit terminal of the same name; extremely unlikely, but
		// resolve it the same deterministic way as any other conflict.
		sym, _ = b.symTab.Lookup(lit, 0)
		return sym
	}
	b.literalToSymbol[lit] = sym
	b.aliases[sym] = lit
	return sym
}

func (b *builder) resolveCategoryRef(cat ast.Category, pos ast.Position) (symbol.Symbol, bool) {
	if _, isList := cat.(ast.ListCat); isList {
		// Already registered in the category pass.
		sym, ok := b.symTab.Lookup(decomposeName(cat), decomposeLevel(cat))
		if !ok {
			panic("grammarcore: list category was not pre-registered")
		}
		return sym, true
	}

	name := decomposeName(cat)
	sym, ok := b.symTab.Lookup(name, 0)
	if !ok {
		b.addErr(ErrUndefinedSymbol, name, pos)
		return symbol.Symbol{}, false
	}
	return sym, true
}

// --- List macros (spec.md §4.2, separator/terminator) ---

func (b *builder) expandSeparator(d ast.Separator) ([]Rule, bool) {
	elemSym, listSym, ok := b.listSymbols(d.Cat, d.Pos)
	if !ok {
		return nil, false
	}
	sepSym := b.resolveLiteral(d.Sep)

	var rules []Rule
	if d.MinSize == ast.MEmpty {
		rules = append(rules, Rule{Constructor: ListEmptyConstructor, LHS: listSym})
	}
	rules = append(rules,
		Rule{Constructor: ListOneConstructor, LHS: listSym, RHS: []symbol.Symbol{elemSym}},
		Rule{Constructor: ListConsConstructor, LHS: listSym, RHS: []symbol.Symbol{elemSym, sepSym, listSym}},
	)
	return rules, true
}

func (b *builder) expandTerminator(d ast.Terminator) ([]Rule, bool) {
	elemSym, listSym, ok := b.listSymbols(d.Cat, d.Pos)
	if !ok {
		return nil, false
	}
	termSym := b.resolveLiteral(d.Term)

	var rules []Rule
	if d.MinSize == ast.MEmpty {
		rules = append(rules, Rule{Constructor: ListEmptyConstructor, LHS: listSym})
	}
	rules = append(rules,
		Rule{Constructor: ListOneConstructor, LHS: listSym, RHS: []symbol.Symbol{elemSym, termSym}},
		Rule{Constructor: ListConsConstructor, LHS: listSym, RHS: []symbol.Symbol{elemSym, termSym, listSym}},
	)
	return rules, true
}

func (b *builder) listSymbols(elemCat ast.Category, pos ast.Position) (elem, list symbol.Symbol, ok bool) {
	name, level := decomposeName(elemCat), decomposeLevel(elemCat)
	elem, ok = b.symTab.Lookup(name, level)
	if !ok {
		panic("grammarcore: separator/terminator element was not pre-registered")
	}
	list, ok = b.symTab.Lookup(name, level+1)
	if !ok {
		panic("grammarcore: separator/terminator list category was not pre-registered")
	}
	return elem, list, true
}

// --- Coercion macro (spec.md §4.2, coercions) ---

func (b *builder) expandCoercions(d ast.Coercions) ([]Rule, bool) {
	base, ok := b.symTab.Lookup(d.Ident, 0)
	if !ok {
		panic("grammarcore: coercion base category was not pre-registered")
	}

	levels := make([]symbol.Symbol, d.Level+1)
	levels[0] = base
	for i := 1; i <= d.Level; i++ {
		sym, ok := b.symTab.Lookup(d.Ident+strconv.Itoa(i), 0)
		if !ok {
			panic("grammarcore: coercion level was not pre-registered")
		}
		levels[i] = sym
	}

	var rules []Rule
	for i := 1; i <= d.Level; i++ {
		rules = append(rules, Rule{Constructor: WildConstructor, LHS: levels[i-1], RHS: []symbol.Symbol{levels[i]}})
	}
	lparen := b.resolveLiteral("(")
	rparen := b.resolveLiteral(")")
	rules = append(rules, Rule{
		Constructor: WildConstructor,
		LHS:         levels[d.Level],
		RHS:         []symbol.Symbol{lparen, base, rparen},
	})
	return rules, true
}
