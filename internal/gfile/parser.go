package gfile

import (
	"io"

	"github.com/glrgen/glrgen/internal/ast"
)

var attrKinds = map[string]bool{
	"int": true, "string": true, "char": true, "real": true,
}

// Parse reads a grammar file and produces the AST internal/grammarcore
// normalizes. Any syntax error is returned as *SyntaxError; cmd/glrgen
// reports it as a GrammarParseFailure, prefixed with the grammar file path.
func Parse(src io.Reader) (*ast.Grammar, error) {
	p := &parser{lex: newLexer(src)}
	return p.parseGrammar()
}

type parser struct {
	lex *lexer
}

func (p *parser) parseGrammar() (g *ast.Grammar, retErr error) {
	defer func() {
		if r := recover(); r != nil {
			err, ok := r.(error)
			if !ok {
				panic(r)
			}
			retErr = err
		}
	}()

	pos := ast.Position{Row: 1, Col: 1}
	g = &ast.Grammar{Pos: pos}

	for {
		tok := p.peek()
		if tok.kind == tokenKindEOF {
			break
		}

		if tok.kind == tokenKindIdent && tok.text == "token" {
			g.TokenDecls = append(g.TokenDecls, p.parseTokenDecl())
			continue
		}
		if tok.kind == tokenKindIdent && (tok.text == "separator" || tok.text == "terminator") {
			g.Definitions = append(g.Definitions, p.parseListMacro())
			continue
		}
		if tok.kind == tokenKindIdent && tok.text == "coercions" {
			g.Definitions = append(g.Definitions, p.parseCoercions())
			continue
		}
		g.Definitions = append(g.Definitions, p.parseRule())
	}

	if len(g.Definitions) == 0 {
		p.fail(pos, "a grammar must contain at least one rule")
	}

	return g, nil
}

func (p *parser) parseTokenDecl() ast.TokenDecl {
	pos := p.expect(tokenKindIdent, "token").pos
	name := p.expect(tokenKindIdent, "a token name").text

	nxt := p.peek()
	if nxt.kind == tokenKindIdent && attrKinds[nxt.text] {
		p.next()
		p.expect(tokenKindSemi, "';'")
		return ast.AttrToken{Pos: pos, Name: name, Attr: nxt.text}
	}

	pat := p.expect(tokenKindString, "a token pattern").text
	p.expect(tokenKindSemi, "';'")
	return ast.NoAttrToken{Pos: pos, Name: name, Pattern: pat}
}

func (p *parser) parseListMacro() ast.Definition {
	kw := p.next()
	minSize := ast.MNonempty
	if nxt := p.peek(); nxt.kind == tokenKindIdent && (nxt.text == "empty" || nxt.text == "nonempty") {
		p.next()
		if nxt.text == "empty" {
			minSize = ast.MEmpty
		}
	}
	cat := p.parseCategory()
	sep := p.expect(tokenKindString, "a separator/terminator literal").text
	p.expect(tokenKindSemi, "';'")

	if kw.text == "separator" {
		return ast.Separator{Pos: kw.pos, MinSize: minSize, Cat: cat, Sep: sep}
	}
	return ast.Terminator{Pos: kw.pos, MinSize: minSize, Cat: cat, Term: sep}
}

func (p *parser) parseCoercions() ast.Definition {
	kw := p.next()
	ident := p.expect(tokenKindIdent, "a category name").text
	lvl := p.expect(tokenKindInt, "a coercion level").text
	p.expect(tokenKindSemi, "';'")
	return ast.Coercions{Pos: kw.pos, Ident: ident, Level: parseIntOrFail(p, kw.pos, lvl)}
}

func parseIntOrFail(p *parser, pos ast.Position, s string) int {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			p.fail(pos, "expected a non-negative integer")
		}
		n = n*10 + int(c-'0')
	}
	if n < 1 {
		p.fail(pos, "a coercion level must be >= 1")
	}
	return n
}

func (p *parser) parseRule() ast.Definition {
	label := p.parseLabel()
	p.expect(tokenKindDot, "'.'")
	cat := p.parseCategory()
	p.expect(tokenKindColonColEq, "'::='")

	var items []ast.Item
	for {
		tok := p.peek()
		switch tok.kind {
		case tokenKindIdent:
			p.next()
			items = append(items, ast.NTerminal{Pos: tok.pos, Cat: ast.IdCat{Pos: tok.pos, Ident: tok.text}})
		case tokenKindLBracket:
			items = append(items, ast.NTerminal{Pos: tok.pos, Cat: p.parseCategory()})
		case tokenKindString:
			p.next()
			items = append(items, ast.Terminal{Pos: tok.pos, Literal: tok.text})
		default:
			goto doneItems
		}
	}
doneItems:
	p.expect(tokenKindSemi, "';'")

	return ast.Rule{Pos: label.Position(), Label: label, Cat: cat, Items: items}
}

func (p *parser) parseLabel() ast.Label {
	tok := p.next()
	switch tok.kind {
	case tokenKindUnderscore:
		return ast.Wild{Pos: tok.pos}
	case tokenKindIdent:
		return ast.Id{Pos: tok.pos, Ident: tok.text}
	default:
		p.fail(tok.pos, "expected a rule label")
		panic("unreachable")
	}
}

func (p *parser) parseCategory() ast.Category {
	tok := p.next()
	switch tok.kind {
	case tokenKindIdent:
		return ast.IdCat{Pos: tok.pos, Ident: tok.text}
	case tokenKindLBracket:
		inner := p.parseCategory()
		p.expect(tokenKindRBracket, "']'")
		return ast.ListCat{Pos: tok.pos, Cat: inner}
	default:
		p.fail(tok.pos, "expected a category")
		panic("unreachable")
	}
}

func (p *parser) next() *token {
	tok, err := p.lex.next()
	if err != nil {
		panic(err)
	}
	if tok.kind == tokenKindInvalid {
		panic(&SyntaxError{Pos: tok.pos, Msg: "invalid token: " + tok.text})
	}
	return tok
}

func (p *parser) peek() *token {
	tok, err := p.lex.peek()
	if err != nil {
		panic(err)
	}
	if tok.kind == tokenKindInvalid {
		panic(&SyntaxError{Pos: tok.pos, Msg: "invalid token: " + tok.text})
	}
	return tok
}

func (p *parser) expect(kind tokenKind, what string) *token {
	tok := p.next()
	if tok.kind != kind {
		p.fail(tok.pos, "expected "+what)
	}
	return tok
}

func (p *parser) fail(pos ast.Position, msg string) {
	panic(&SyntaxError{Pos: pos, Msg: msg})
}
