package lexspec

import (
	"fmt"
	"strconv"

	mldriver "github.com/nihei9/maleeni/driver"
	mlspec "github.com/nihei9/maleeni/spec"

	"github.com/glrgen/glrgen/driverrt"
	"github.com/glrgen/glrgen/internal/grammarcore"
	"github.com/glrgen/glrgen/internal/symbol"
)

// Stream adapts a maleeni driver.Lexer to driverrt.Stream (spec.md §6): the
// concrete lex(sourcemap, strm) -> (tok, span, strm') the generated
// parser's abstract lexer interface leaves open. Grounded on
// driver.Parser.nextToken/actOnShift (driver/parser.go), which pulls a
// *mldriver.Token from the same *mldriver.Lexer and reads its KindID, EOF,
// Text(), Row, and Col fields the same way.
type Stream struct {
	lex        *mldriver.Lexer
	kindToTerm map[mlspec.LexKindID]driverrt.TerminalID
	terms      []symbol.Symbol // indexed by driverrt.TerminalID
	pos        driverrt.Pos
}

// NewStream builds a Stream over lex, mapping compiled's lex kinds back to
// g's terminals by name (g.Terms's order becomes each terminal's
// driverrt.TerminalID, matching internal/emit's terminalNames table).
func NewStream(compiled *mlspec.CompiledLexSpec, g *grammarcore.Grammar, lex *mldriver.Lexer) *Stream {
	nameToTerm := map[string]driverrt.TerminalID{}
	for i, t := range g.Terms {
		nameToTerm[t.Name] = driverrt.TerminalID(i)
	}
	kindToTerm := map[mlspec.LexKindID]driverrt.TerminalID{}
	for id, name := range compiled.KindNames {
		if term, ok := nameToTerm[name.String()]; ok {
			kindToTerm[mlspec.LexKindID(id)] = term
		}
	}
	return &Stream{lex: lex, kindToTerm: kindToTerm, terms: g.Terms}
}

// Next implements driverrt.Stream.
func (s *Stream) Next() (driverrt.Token, error) {
	tok, err := s.lex.Next()
	if err != nil {
		return driverrt.Token{}, err
	}
	if tok.EOF {
		return driverrt.Token{Terminal: driverrt.EOFTerminal, Span: driverrt.Span{Start: s.pos, End: s.pos}}, nil
	}

	term, ok := s.kindToTerm[mlspec.LexKindID(tok.KindID)]
	if !ok {
		return driverrt.Token{}, fmt.Errorf("lexspec: lexer produced a token of an unmapped kind (id %v)", tok.KindID)
	}

	text := string(tok.Lexeme)
	start := driverrt.Pos{Row: tok.Row, Col: tok.Col}
	end := driverrt.Pos{Row: tok.Row, Col: tok.Col + len(text)}

	value, err := attrValue(s.terms[term].Kind, text)
	if err != nil {
		return driverrt.Token{}, fmt.Errorf("lexspec: %s: %w", s.terms[term].Name, err)
	}

	s.pos = end
	return driverrt.Token{Terminal: term, Value: value, Span: driverrt.Span{Start: start, End: end}}, nil
}

// Pos implements driverrt.Stream.
func (s *Stream) Pos() driverrt.Pos { return s.pos }

// attrValue converts a matched token's raw text into the Go value its
// terminal's attribute kind carries (spec.md §3's token attribute types).
// A unit terminal carries no value at all.
func attrValue(kind symbol.Kind, text string) (any, error) {
	switch kind {
	case symbol.IntTerminal:
		return strconv.ParseInt(text, 10, 64)
	case symbol.RealTerminal:
		return strconv.ParseFloat(text, 64)
	case symbol.CharTerminal:
		r := []rune(unquote(text))
		if len(r) == 0 {
			return rune(0), nil
		}
		return r[0], nil
	case symbol.StringTerminal:
		return unquote(text), nil
	default:
		return nil, nil
	}
}

// unquote strips one layer of matching leading/trailing quote characters, if
// present, from a default-pattern string or char literal's matched text.
func unquote(text string) string {
	if len(text) >= 2 {
		first, last := text[0], text[len(text)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return text[1 : len(text)-1]
		}
	}
	return text
}
