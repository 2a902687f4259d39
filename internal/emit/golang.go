package emit

import (
	"fmt"
	"go/format"
	"sort"
	"strings"

	"github.com/glrgen/glrgen/internal/astschema"
	"github.com/glrgen/glrgen/internal/automaton"
	"github.com/glrgen/glrgen/internal/grammarcore"
	"github.com/glrgen/glrgen/internal/lr0"
	"github.com/glrgen/glrgen/internal/symbol"
)

// Generate walks g, a (the automaton built over g), and schema (the AST
// types derived from g) and writes a complete Go source file implementing
// spec.md §4.7's GLR driver: the terminal table, the AST schema types, the
// per-state shift/reduce functions, the go dispatcher, and the parse/loop
// entry points. The result is gofmt'd before being returned.
//
// Unlike the original vocabulary's separate "Category" tagged union
// (spec.md §4.7(b)), this emitter reuses driverrt.Category as a single
// boxed (symbol tag, value) cell for every terminal and nonterminal alike:
// every reduce function already knows, from the rule it was generated for,
// exactly which concrete Go type to assert Value back to, so a closed
// per-symbol case type adds indirection without adding safety. This
// mirrors how hand-written recursive-descent Go parsers in this pack
// (spec/parser.go) box heterogeneous AST values behind a single interface
// rather than one wrapper type per production.
func Generate(pkgName string, g *grammarcore.Grammar, a *automaton.Automaton, schema *astschema.Schema) ([]byte, error) {
	var decls []Decl
	decls = append(decls, RawDecl{Text: fmt.Sprintf(
		"package %s\n\nimport (\n\t\"github.com/glrgen/glrgen/driverrt\"\n)", pkgName)})

	decls = append(decls, terminalConstDecl(g))
	decls = append(decls, schemaDecls(schema)...)
	decls = append(decls, stateMachineDecls(a)...)
	decls = append(decls, driverDecls(g, a)...)

	src := PrintDecls(decls)
	formatted, err := format.Source([]byte(src))
	if err != nil {
		// Surface the unformatted source alongside the error: it's far
		// easier to find the offending line in readable (if ungofmt'd)
		// text than to debug a format.Source failure blind.
		return nil, fmt.Errorf("emit: generated source does not parse: %w\n%s", err, src)
	}
	return formatted, nil
}

// goTypeForSymbol returns the Go type a symbol's semantic value has: an
// atomic type for an attributed terminal, the (possibly list-wrapped) sum
// type for a nonterminal, or "" for a unit terminal, which carries no
// value at all (spec.md §3's "non-unit terminals" carve-out).
func goTypeForSymbol(s symbol.Symbol) string {
	if s.IsTerminal() {
		switch s.Kind {
		case symbol.IntTerminal:
			return "int64"
		case symbol.RealTerminal:
			return "float64"
		case symbol.CharTerminal:
			return "rune"
		case symbol.StringTerminal:
			return "string"
		default:
			return ""
		}
	}
	return strings.Repeat("[]", s.Level) + symbol.BaseName(s.Name)
}

// --- Identifier sanitization for literal terminals ---

var punctNames = map[rune]string{
	'+': "Plus", '-': "Minus", '*': "Star", '/': "Slash", '(': "LParen", ')': "RParen",
	'[': "LBrack", ']': "RBrack", '{': "LBrace", '}': "RBrace", ',': "Comma", ';': "Semi",
	':': "Colon", '.': "Dot", '=': "Eq", '<': "Lt", '>': "Gt", '!': "Bang", '?': "Quest",
	'&': "Amp", '|': "Pipe", '^': "Caret", '%': "Percent", '~': "Tilde", '"': "Quote",
	'\'': "SQuote", '_': "Underscore", '$': "Dollar", '@': "At", '#': "Hash", '\\': "Backslash",
}

func isPlainIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
		isDigit := r >= '0' && r <= '9'
		if i == 0 && !isLetter {
			return false
		}
		if i > 0 && !isLetter && !isDigit {
			return false
		}
	}
	return true
}

func exportedName(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// symbolIdent renders a valid, exported Go identifier fragment for a
// symbol's name: its own spelling if it already is one (every declared
// token and category name is, since gfile's lexer only accepts
// identifier-shaped names there), otherwise a word-by-word transliteration
// of its punctuation (for implicit keyword terminals like "-" or "(").
func symbolIdent(s symbol.Symbol) string {
	if s.Name == symbol.EOF.Name {
		return "EOF"
	}
	if isPlainIdent(s.Name) {
		return exportedName(s.Name)
	}
	var b strings.Builder
	for _, r := range s.Name {
		if name, ok := punctNames[r]; ok {
			b.WriteString(name)
		} else {
			fmt.Fprintf(&b, "U%04X", r)
		}
	}
	if b.Len() == 0 {
		return "Sym"
	}
	return b.String()
}

func termConstName(s symbol.Symbol) string { return "Term" + symbolIdent(s) }

// --- (a) Token kind: one TerminalID constant per terminal, including EOF ---

func orderedTerminals(g *grammarcore.Grammar) []symbol.Symbol {
	terms := append([]symbol.Symbol(nil), g.Terms...)
	return append(terms, symbol.EOF)
}

func terminalConstDecl(g *grammarcore.Grammar) Decl {
	terms := orderedTerminals(g)
	var b strings.Builder
	b.WriteString("// Terminal identifiers, in the order their declarations (or first implicit\n")
	b.WriteString("// use) appeared in the grammar; EOF is always last.\nconst (\n")
	for i, t := range terms {
		if i == 0 {
			fmt.Fprintf(&b, "\t%s driverrt.TerminalID = iota\n", termConstName(t))
		} else {
			fmt.Fprintf(&b, "\t%s\n", termConstName(t))
		}
	}
	b.WriteString(")\n\nvar terminalNames = []string{\n")
	for _, t := range terms {
		fmt.Fprintf(&b, "\t%q,\n", t.String())
	}
	b.WriteString("}\n")
	return RawDecl{Text: b.String()}
}

// --- AST schema types, derived via C6 and rendered via C8's SumTypeDecl ---

func schemaDecls(schema *astschema.Schema) []Decl {
	var decls []Decl
	for _, st := range schema.Types {
		var cases []SumCase
		for _, c := range st.Cases {
			fields := []Field{{Name: "Span", Type: "driverrt.Span"}}
			for i, f := range c.Fields {
				fields = append(fields, Field{Name: fmt.Sprintf("Field%d", i+1), Type: goTypeForField(f)})
			}
			cases = append(cases, SumCase{Name: c.Label, Fields: fields})
		}
		decls = append(decls, SumTypeDecl{
			Name:  st.Name,
			Doc:   fmt.Sprintf("%s is the AST node for every %s production.", st.Name, st.Name),
			Cases: cases,
		})
	}
	return decls
}

func goTypeForField(f astschema.Field) string {
	var base string
	switch f.Kind {
	case astschema.Atom:
		switch f.Atom {
		case "int":
			base = "int64"
		case "real":
			base = "float64"
		case "char":
			base = "rune"
		case "string":
			base = "string"
		}
	case astschema.Sum:
		base = f.SumName
	}
	return strings.Repeat("[]", f.ListDepth) + base
}

// --- (c) State machine: shift_n, reduce_n_i, and the go dispatcher ---

func stateMachineDecls(a *automaton.Automaton) []Decl {
	var decls []Decl
	for _, st := range a.States {
		if st.HasShift() {
			decls = append(decls, shiftFuncDecl(a, st))
		}
		for i, item := range a.ReduceItems(st.ID) {
			decls = append(decls, reduceFuncDecl(a, st.ID, i, item))
		}
	}
	decls = append(decls, goDispatchDecl(a))
	return decls
}

func shiftFuncName(stateID int) string { return fmt.Sprintf("shift%d", stateID) }
func reduceFuncName(stateID, i int) string { return fmt.Sprintf("reduce%d_%d", stateID, i) }

func shiftFuncDecl(a *automaton.Automaton, st automaton.State) Decl {
	var body []string
	body = append(body, "item := driverrt.StackItem{Category: cat, FromPos: span.Start, State: "+fmt.Sprint(st.ID)+"}")
	body = append(body, "newStack := append(append(driverrt.Stack{}, stack...), item)")
	body = append(body, "switch cat.Symbol {")

	// Deterministic order: sort transitions by symbol name/level so
	// repeated generation runs produce byte-identical output.
	syms := make([]symbol.Symbol, 0, len(st.Next))
	for sym := range st.Next {
		syms = append(syms, sym)
	}
	sort.Slice(syms, func(i, j int) bool {
		if syms[i].Name != syms[j].Name {
			return syms[i].Name < syms[j].Name
		}
		return syms[i].Level < syms[j].Level
	})

	for _, x := range syms {
		m := st.Next[x]
		body = append(body, fmt.Sprintf("case driverrt.SymbolTag{Name: %q, Level: %d}:", x.Name, x.Level))
		body = append(body, "\tvar out []driverrt.Config")
		if a.States[m].HasShift() {
			body = append(body, fmt.Sprintf("\tout = append(out, driverrt.Config{State: %d, Stack: newStack})", m))
		}
		for i := range a.ReduceItems(m) {
			body = append(body, fmt.Sprintf("\tout = append(out, %s(newStack, span.End)...)", reduceFuncName(m, i)))
		}
		body = append(body, "\treturn out")
	}
	body = append(body, "default:", "\treturn nil", "}")

	return FuncDecl{
		Name: shiftFuncName(st.ID),
		Doc:  fmt.Sprintf("%s shifts cat onto the stack from state %d.", shiftFuncName(st.ID), st.ID),
		Params: []Field{
			{Name: "stack", Type: "driverrt.Stack"},
			{Name: "cat", Type: "driverrt.Category"},
			{Name: "span", Type: "driverrt.Span"},
		},
		Results: []string{"[]driverrt.Config"},
		Body:    body,
	}
}

func reduceFuncDecl(a *automaton.Automaton, stateID, i int, item lr0.Item) Decl {
	rules := a.RuleSet.Rules()
	rule := rules[item.RuleIndex]
	k := len(item.BeforeDot(rules))
	name := reduceFuncName(stateID, i)

	var body []string
	body = append(body, fmt.Sprintf("const k = %d", k))
	if k > 0 {
		body = append(body, "popped := stack[len(stack)-k:]")
	}
	body = append(body, "remaining := stack[:len(stack)-k]")

	if k > 0 {
		body = append(body, "stNum0 := popped[0].State")
		body = append(body, "pos0 := popped[0].FromPos")
	} else {
		body = append(body, fmt.Sprintf("stNum0 := %d", stateID))
		body = append(body, "pos0 := pos")
	}
	if rule.LHS != symbol.Start {
		body = append(body, "span := driverrt.Span{Start: pos0, End: pos}")
	}

	// Bind every semantic (non-unit-terminal) popped value, in rhs order.
	var semanticVars []string
	for idx, sym := range rule.RHS {
		if goType := goTypeForSymbol(sym); goType != "" {
			v := fmt.Sprintf("v%d", idx)
			semanticVars = append(semanticVars, v)
			body = append(body, fmt.Sprintf("%s := popped[%d].Category.Value.(%s)", v, idx, goType))
		}
	}

	lhsType := goTypeForSymbol(rule.LHS)
	switch rule.Constructor.Kind {
	case grammarcore.Named:
		var fieldLines []string
		fieldLines = append(fieldLines, "Span: span,")
		for fi, v := range semanticVars {
			fieldLines = append(fieldLines, fmt.Sprintf("Field%d: %s,", fi+1, v))
		}
		body = append(body, fmt.Sprintf("value := %s{%s}", rule.Constructor.Label, strings.Join(fieldLines, " ")))
	case grammarcore.Wild:
		// Exactly one rhs symbol carries a value by construction (a
		// coercion's nonterminal child, or the base category inside a
		// parenthesization); see grammarcore's coercion expansion.
		body = append(body, fmt.Sprintf("value := %s", semanticVars[0]))
	case grammarcore.ListEmpty:
		body = append(body, fmt.Sprintf("value := %s(nil)", lhsType))
	case grammarcore.ListOne:
		body = append(body, fmt.Sprintf("value := %s{%s}", lhsType, semanticVars[0]))
	case grammarcore.ListCons:
		body = append(body, fmt.Sprintf("value := append(%s{%s}, %s...)", lhsType, semanticVars[0], semanticVars[1]))
	}

	lhsCatExpr := fmt.Sprintf("driverrt.Category{Symbol: driverrt.SymbolTag{Name: %q, Level: %d}, Value: value}", rule.LHS.Name, rule.LHS.Level)

	if rule.LHS == symbol.Start {
		body = append(body,
			fmt.Sprintf("accepted := driverrt.StackItem{Category: %s, FromPos: pos0, State: stNum0}", lhsCatExpr),
			"return []driverrt.Config{{State: driverrt.AcceptState, Stack: append(append(driverrt.Stack{}, remaining...), accepted)}}",
		)
		return finishReduceFunc(name, stateID, body)
	}

	body = append(body,
		fmt.Sprintf("lhsCat := %s", lhsCatExpr),
		"return goDispatch(stNum0, remaining, lhsCat, span)",
	)
	return finishReduceFunc(name, stateID, body)
}

func finishReduceFunc(name string, stateID int, body []string) Decl {
	return FuncDecl{
		Name: name,
		Doc:  fmt.Sprintf("%s reduces using the item active in state %d.", name, stateID),
		Params: []Field{
			{Name: "stack", Type: "driverrt.Stack"},
			{Name: "pos", Type: "driverrt.Pos"},
		},
		Results: []string{"[]driverrt.Config"},
		Body:    body,
	}
}

func goDispatchDecl(a *automaton.Automaton) Decl {
	var body []string
	body = append(body, "switch state {")
	for _, st := range a.States {
		if !st.HasShift() {
			continue
		}
		body = append(body, fmt.Sprintf("case %d:", st.ID))
		body = append(body, fmt.Sprintf("\treturn %s(stack, cat, span)", shiftFuncName(st.ID)))
	}
	body = append(body, "default:", "\treturn nil", "}")

	return FuncDecl{
		Name: "goDispatch",
		Doc:  "goDispatch transitions the stack in state on cat, dispatching to the matching shift function. An unknown state yields a dead stack.",
		Params: []Field{
			{Name: "state", Type: "int"},
			{Name: "stack", Type: "driverrt.Stack"},
			{Name: "cat", Type: "driverrt.Category"},
			{Name: "span", Type: "driverrt.Span"},
		},
		Results: []string{"[]driverrt.Config"},
		Body:    body,
	}
}

// --- Driver entry points (spec.md §4.7's loop/parse) ---

func driverDecls(g *grammarcore.Grammar, a *automaton.Automaton) []Decl {
	startType := goTypeForSymbol(g.Start)

	loop := FuncDecl{
		Name: "loop",
		Doc:  fmt.Sprintf("loop drives configs to completion against stream, returning every accepted %s.", startType),
		Params: []Field{
			{Name: "configs", Type: "[]driverrt.Config"},
			{Name: "stream", Type: "driverrt.Stream"},
		},
		Results: []string{"[]" + startType, "error"},
		Body: []string{
			"pos := stream.Pos()",
			"tok, err := stream.Next()",
			"if err != nil {",
			"\treturn nil, err",
			"}",
			"if tok.Terminal == driverrt.EOFTerminal {",
			"\tvar results []" + startType,
			"\tfor _, c := range configs {",
			"\t\tif c.State != driverrt.AcceptState {",
			"\t\t\tcontinue",
			"\t\t}",
			"\t\ttop := c.Stack[len(c.Stack)-1]",
			"\t\tresults = append(results, top.Category.Value.(" + startType + "))",
			"\t}",
			"\treturn results, nil",
			"}",
			"span := driverrt.Span{Start: pos, End: stream.Pos()}",
			"cat := driverrt.FromToken(tok, terminalNames[tok.Terminal])",
			"var next []driverrt.Config",
			"for _, c := range configs {",
			"\tnext = append(next, goDispatch(c.State, c.Stack, cat, span)...)",
			"}",
			"return loop(next, stream)",
		},
	}

	parseBody := []string{"configs := []driverrt.Config{{State: 0, Stack: nil}}"}
	for i := range a.ReduceItems(0) {
		parseBody = append(parseBody, fmt.Sprintf("configs = append(configs, %s(nil, stream.Pos())...)", reduceFuncName(0, i)))
	}
	parseBody = append(parseBody, "return loop(configs, stream)")

	parse := FuncDecl{
		Name: "Parse",
		Doc:  fmt.Sprintf("Parse runs the generated parser over stream, returning every %s the input admits (more than one signals an ambiguous parse).", startType),
		Params: []Field{
			{Name: "stream", Type: "driverrt.Stream"},
		},
		Results: []string{"[]" + startType, "error"},
		Body:    parseBody,
	}

	return []Decl{loop, parse}
}
