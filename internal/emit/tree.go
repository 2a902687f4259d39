// Package emit implements spec.md §4.8 (C8), a small closed vocabulary for
// declarations and expressions plus a pretty-printer, and spec.md §4.7
// (C7), the GLR code emitter that walks an automaton and a grammar and
// writes a Go source file through that vocabulary. Grounded on
// cmd/vartan-go/generate.go's role (walk compiled grammar data, write Go
// source, gofmt it) but built fresh: the teacher shells out to unexported
// driver/lexer and driver/parser generator functions this pack doesn't
// retrieve, so the actual declaration vocabulary and state-machine shape
// here are this package's own design against spec.md §4.7/§4.8's closed
// set of node kinds.
package emit

import (
	"fmt"
	"strings"
)

// Decl is one of SumTypeDecl, FuncDecl, ValueDecl, RawDecl — spec.md
// §4.8's closed declaration vocabulary.
type Decl interface {
	render(b *printer)
}

// Field is a named, typed slot: a struct field or a function parameter.
type Field struct {
	Name string
	Type string
}

// SumTypeDecl renders a tagged union as a Go interface with one unexported
// marker method, plus one struct per case (spec.md §4.8's "sum type").
type SumTypeDecl struct {
	Name  string
	Doc   string
	Cases []SumCase
}

type SumCase struct {
	Name   string
	Doc    string
	Fields []Field
}

func (d SumTypeDecl) render(b *printer) {
	b.doc(d.Doc)
	b.printf("type %s interface {\n", d.Name)
	b.indent++
	b.printf("is%s()\n", d.Name)
	b.indent--
	b.printf("}\n\n")

	for _, c := range d.Cases {
		b.doc(c.Doc)
		if len(c.Fields) == 0 {
			b.printf("type %s struct{}\n\n", c.Name)
		} else {
			b.printf("type %s struct {\n", c.Name)
			b.indent++
			for _, f := range c.Fields {
				b.printf("%s %s\n", f.Name, f.Type)
			}
			b.indent--
			b.printf("}\n\n")
		}
		b.printf("func (%s) is%s() {}\n\n", c.Name, d.Name)
	}
}

// FuncDecl is a function clause group (spec.md §4.8): one function, whose
// body is a sequence of raw statement lines. Go's switch/type-switch
// control flow has no natural counterpart in an ML-style let/case
// expression tree, so bodies are rendered as opaque text — spec.md §4.8
// explicitly allows an "opaque textual declaration" escape hatch, used
// here at statement granularity rather than whole-declaration granularity.
type FuncDecl struct {
	Name    string
	Doc     string
	Params  []Field
	Results []string
	Body    []string
}

func (d FuncDecl) render(b *printer) {
	b.doc(d.Doc)
	params := make([]string, len(d.Params))
	for i, p := range d.Params {
		params[i] = p.Name + " " + p.Type
	}
	results := strings.Join(d.Results, ", ")
	if len(d.Results) > 1 {
		results = "(" + results + ")"
	}
	sig := fmt.Sprintf("func %s(%s) %s {", d.Name, strings.Join(params, ", "), results)
	b.printf("%s\n", strings.TrimRight(sig, " "))
	b.indent++
	for _, line := range d.Body {
		b.printf("%s\n", line)
	}
	b.indent--
	b.printf("}\n\n")
}

// ValueDecl is a top-level value binding (spec.md §4.8's "value binding").
type ValueDecl struct {
	Name string
	Type string
	Expr Expr
}

func (d ValueDecl) render(b *printer) {
	b.printf("var %s %s = %s\n\n", d.Name, d.Type, Print(d.Expr))
}

// RawDecl is an opaque textual declaration (spec.md §4.8), used for
// anything the other three kinds don't fit (import blocks, const groups).
type RawDecl struct{ Text string }

func (d RawDecl) render(b *printer) {
	b.printf("%s\n\n", d.Text)
}

// Expr is one of Atom, Tuple, Apply (spec.md §4.8's closed expression
// vocabulary; "let/case" is realized at the statement level inside
// FuncDecl bodies rather than as a nested Expr, per the same Go-shaped
// tradeoff FuncDecl's doc comment explains).
type Expr interface {
	renderExpr() string
	width() int
}

// Atom is a verbatim expression string (a literal, identifier, or any
// already-rendered Go expression text).
type Atom string

func (a Atom) renderExpr() string { return string(a) }
func (a Atom) width() int         { return len(string(a)) }

// Tuple renders as a Go composite literal: {e1, e2, ...}.
type Tuple []Expr

func (t Tuple) renderExpr() string { return wrapList("{", "}", []Expr(t)) }
func (t Tuple) width() int         { return len(t.renderExpr()) }

// Apply renders as a function or constructor call: fn(e1, e2, ...).
type Apply struct {
	Fn   string
	Args []Expr
}

func (a Apply) renderExpr() string { return a.Fn + wrapList("(", ")", a.Args) }
func (a Apply) width() int         { return len(a.renderExpr()) }

// lineWidth is spec.md §4.8's pretty-printing threshold: atomic
// expressions are inlined inside a clause when the total rendered width is
// at or under this many characters, otherwise broken onto separate lines.
const lineWidth = 70

func wrapList(open, close string, elems []Expr) string {
	parts := make([]string, len(elems))
	total := len(open) + len(close)
	for i, e := range elems {
		parts[i] = e.renderExpr()
		total += len(parts[i])
		if i > 0 {
			total += 2 // ", "
		}
	}
	inline := open + strings.Join(parts, ", ") + close
	if total <= lineWidth {
		return inline
	}
	var b strings.Builder
	b.WriteString(open + "\n")
	for _, p := range parts {
		b.WriteString("\t" + p + ",\n")
	}
	b.WriteString(close)
	return b.String()
}

// Print renders an Expr to text (exposed so ValueDecl and RawDecl bodies
// can embed pre-built expressions).
func Print(e Expr) string { return e.renderExpr() }

type printer struct {
	b      strings.Builder
	indent int
}

func (p *printer) printf(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	for _, l := range strings.Split(strings.TrimSuffix(line, "\n"), "\n") {
		if l != "" {
			p.b.WriteString(strings.Repeat("\t", p.indent))
		}
		p.b.WriteString(l)
		p.b.WriteString("\n")
	}
}

func (p *printer) doc(text string) {
	if text == "" {
		return
	}
	for _, line := range strings.Split(text, "\n") {
		p.printf("// %s\n", line)
	}
}

// PrintDecls renders a sequence of declarations to Go source text (not yet
// gofmt'd; callers typically pipe this through go/format, as internal/emit's
// own Generate does).
func PrintDecls(decls []Decl) string {
	p := &printer{}
	for _, d := range decls {
		d.render(p)
	}
	return p.b.String()
}
