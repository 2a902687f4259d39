// Package gfile is the grammar file front end (SPEC_FULL.md's C9): it turns
// grammar text into the AST internal/ast defines. It is a genuine part of
// this repo (a generator that cannot read a grammar file is not runnable),
// but its output contract is exactly spec.md §6's abstract grammar AST, so
// nothing downstream depends on this package's internals.
package gfile

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/glrgen/glrgen/internal/ast"
)

type tokenKind string

const (
	tokenKindIdent      = tokenKind("ident")
	tokenKindString     = tokenKind("string")
	tokenKindInt        = tokenKind("int")
	tokenKindDot        = tokenKind(".")
	tokenKindColonColEq = tokenKind("::=")
	tokenKindSemi       = tokenKind(";")
	tokenKindLBracket   = tokenKind("[")
	tokenKindRBracket   = tokenKind("]")
	tokenKindUnderscore = tokenKind("_")
	tokenKindEOF        = tokenKind("eof")
	tokenKindInvalid    = tokenKind("invalid")
)

type token struct {
	kind tokenKind
	text string
	pos  ast.Position
}

// lexer is a minimal hand-written scanner. The grammar-file syntax is small
// enough (labelled productions, bracketed list categories, three macro
// keywords) that a table-driven or generated lexer would be pure overhead;
// the teacher's own simplest grammar-file lexer (spec/parser.go's ancestor,
// before it was rebuilt on top of a bootstrapped maleeni lexer) is a
// hand-written rune scanner in exactly this shape.
type lexer struct {
	r        *bufio.Reader
	row, col int
	peeked   *token
}

func newLexer(src io.Reader) *lexer {
	return &lexer{r: bufio.NewReader(src), row: 1, col: 1}
}

func (l *lexer) readRune() (rune, bool) {
	ch, _, err := l.r.ReadRune()
	if err != nil {
		return 0, false
	}
	if ch == '\n' {
		l.row++
		l.col = 1
	} else {
		l.col++
	}
	return ch, true
}

func (l *lexer) unreadRune() {
	_ = l.r.UnreadRune()
	l.col--
}

func (l *lexer) peekRune() (rune, bool) {
	ch, _, err := l.r.ReadRune()
	if err != nil {
		return 0, false
	}
	_ = l.r.UnreadRune()
	return ch, true
}

func (l *lexer) next() (*token, error) {
	if l.peeked != nil {
		tok := l.peeked
		l.peeked = nil
		return tok, nil
	}
	return l.scan()
}

func (l *lexer) peek() (*token, error) {
	if l.peeked == nil {
		tok, err := l.scan()
		if err != nil {
			return nil, err
		}
		l.peeked = tok
	}
	return l.peeked, nil
}

func (l *lexer) scan() (*token, error) {
	for {
		ch, ok := l.peekRune()
		if !ok {
			return &token{kind: tokenKindEOF, pos: l.here()}, nil
		}
		if unicode.IsSpace(ch) {
			l.readRune()
			continue
		}
		if ch == '-' {
			l.readRune()
			ch2, ok := l.peekRune()
			if ok && ch2 == '-' {
				l.readRune()
				for {
					c, ok := l.readRune()
					if !ok || c == '\n' {
						break
					}
				}
				continue
			}
			return &token{kind: tokenKindInvalid, text: "-", pos: l.here()}, nil
		}
		break
	}

	pos := l.here()
	ch, _ := l.readRune()

	switch ch {
	case '.':
		return &token{kind: tokenKindDot, pos: pos}, nil
	case ';':
		return &token{kind: tokenKindSemi, pos: pos}, nil
	case '[':
		return &token{kind: tokenKindLBracket, pos: pos}, nil
	case ']':
		return &token{kind: tokenKindRBracket, pos: pos}, nil
	case ':':
		c1, ok1 := l.readRune()
		c2, ok2 := l.readRune()
		if ok1 && ok2 && c1 == ':' && c2 == '=' {
			return &token{kind: tokenKindColonColEq, pos: pos}, nil
		}
		return &token{kind: tokenKindInvalid, text: "::" + string(c1) + string(c2), pos: pos}, nil
	case '"':
		var b strings.Builder
		for {
			c, ok := l.readRune()
			if !ok {
				return nil, &SyntaxError{Pos: pos, Msg: "unterminated string literal"}
			}
			if c == '\\' {
				esc, ok := l.readRune()
				if !ok {
					return nil, &SyntaxError{Pos: pos, Msg: "unterminated escape sequence"}
				}
				switch esc {
				case 'n':
					b.WriteRune('\n')
				case 't':
					b.WriteRune('\t')
				case '"':
					b.WriteRune('"')
				case '\\':
					b.WriteRune('\\')
				default:
					b.WriteRune(esc)
				}
				continue
			}
			if c == '"' {
				break
			}
			b.WriteRune(c)
		}
		return &token{kind: tokenKindString, text: b.String(), pos: pos}, nil
	}

	if ch == '_' {
		nx, ok := l.peekRune()
		if !ok || !isIdentPart(nx) {
			return &token{kind: tokenKindUnderscore, pos: pos}, nil
		}
	}

	if unicode.IsDigit(ch) {
		var b strings.Builder
		b.WriteRune(ch)
		for {
			c, ok := l.peekRune()
			if !ok || !unicode.IsDigit(c) {
				break
			}
			l.readRune()
			b.WriteRune(c)
		}
		return &token{kind: tokenKindInt, text: b.String(), pos: pos}, nil
	}

	if isIdentStart(ch) {
		var b strings.Builder
		b.WriteRune(ch)
		for {
			c, ok := l.peekRune()
			if !ok || !isIdentPart(c) {
				break
			}
			l.readRune()
			b.WriteRune(c)
		}
		return &token{kind: tokenKindIdent, text: b.String(), pos: pos}, nil
	}

	return &token{kind: tokenKindInvalid, text: string(ch), pos: pos}, nil
}

func (l *lexer) here() ast.Position {
	return ast.Position{Row: l.row, Col: l.col}
}

func isIdentStart(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isIdentPart(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch) || unicode.IsDigit(ch)
}

// SyntaxError is a lexical or grammatical error in a grammar file. It always
// surfaces to callers as a GrammarParseFailure (spec.md §7).
type SyntaxError struct {
	Pos ast.Position
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Pos.Row, e.Pos.Col, e.Msg)
}
