// Package lexspec implements SPEC_FULL.md's C10: lowering a normalized
// grammar's terminals into a maleeni lexical specification and compiling it
// to a DFA program, which Stream runs for `glrgen test`. Grounded on
// grammar.GrammarBuilder's genSymbolTableAndLexSpec/Compile pair
// (grammar/grammar.go), which plays the identical role for the teacher's
// own BNF dialect.
package lexspec

import (
	"fmt"
	"strings"

	mlcompiler "github.com/nihei9/maleeni/compiler"
	mlspec "github.com/nihei9/maleeni/spec"

	"github.com/glrgen/glrgen/internal/grammarcore"
	"github.com/glrgen/glrgen/internal/symbol"
)

// ErrNoPattern is the cause Build reports when a plain (non-keyword,
// unattributed) terminal has no lexical pattern at all: no implicit literal
// spelling and no explicit grammar-file pattern to fall back to.
var ErrNoPattern = fmt.Errorf("lexspec: terminal has no lexical pattern")

// defaultPattern is the built-in maleeni pattern an attributed terminal gets
// when the grammar file doesn't give it one of its own.
func defaultPattern(kind symbol.Kind) (string, bool) {
	switch kind {
	case symbol.IntTerminal:
		return `-?[0-9]+`, true
	case symbol.RealTerminal:
		return `-?[0-9]+\.[0-9]+`, true
	case symbol.StringTerminal:
		return `"(\\.|[^"\\])*"`, true
	case symbol.CharTerminal:
		return `'(\\.|[^'\\])'`, true
	default:
		return "", false
	}
}

func patternFor(g *grammarcore.Grammar, t symbol.Symbol) (string, error) {
	if alias, ok := g.Aliases[t]; ok {
		return mlspec.EscapePattern(alias), nil
	}
	if pattern, ok := g.Patterns[t]; ok {
		return pattern, nil
	}
	if pattern, ok := defaultPattern(t.Kind); ok {
		return pattern, nil
	}
	return "", ErrNoPattern
}

// Build lowers g's terminals into a *mlspec.LexSpec: a keyword terminal's
// pattern is its escaped literal spelling (mlspec.EscapePattern, exactly as
// the teacher's anonymous-pattern registration does), an attributed
// terminal's pattern is its grammar-file override if the token declaration
// gave one, else the built-in default for its attribute kind, and a plain
// terminal's pattern must come from the grammar file. EOF is never a lexed
// terminal and is skipped.
func Build(g *grammarcore.Grammar) (*mlspec.LexSpec, error) {
	entries := make([]*mlspec.LexEntry, 0, len(g.Terms))
	for _, t := range g.Terms {
		if t == symbol.EOF {
			continue
		}
		pattern, err := patternFor(g, t)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", err, t.Name)
		}
		entries = append(entries, &mlspec.LexEntry{
			Kind:    mlspec.LexKindName(t.Name),
			Pattern: mlspec.LexPattern(pattern),
		})
	}
	return &mlspec.LexSpec{Entries: entries}, nil
}

func formatCompileError(cErr *mlcompiler.CompileError) string {
	var b strings.Builder
	if cErr.Fragment {
		b.WriteString("fragment ")
	}
	fmt.Fprintf(&b, "%v: %v", cErr.Kind, cErr.Cause)
	if cErr.Detail != "" {
		fmt.Fprintf(&b, ": %v", cErr.Detail)
	}
	return b.String()
}

// Compile runs the maleeni compiler over spec at maximum compression,
// exactly as grammar.Compile configures it, producing the DFA program a
// Stream's lexer runs against. Every compile-time diagnostic is
// joined into one error, one per line, mirroring the teacher's own
// writeCompileError loop.
func Compile(spec *mlspec.LexSpec) (*mlspec.CompiledLexSpec, error) {
	compiled, err, cErrs := mlcompiler.Compile(spec, mlcompiler.CompressionLevel(mlcompiler.CompressionLevelMax))
	if err != nil {
		if len(cErrs) == 0 {
			return nil, err
		}
		lines := make([]string, len(cErrs))
		for i, cErr := range cErrs {
			lines[i] = formatCompileError(cErr)
		}
		return nil, fmt.Errorf("lexspec: %s", strings.Join(lines, "\n"))
	}
	return compiled, nil
}
