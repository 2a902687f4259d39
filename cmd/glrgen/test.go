package main

import (
	"bytes"
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	mldriver "github.com/nihei9/maleeni/driver"

	"github.com/glrgen/glrgen/internal/interp"
	"github.com/glrgen/glrgen/internal/lexspec"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:     "test <grammar file path> <fixtures directory>",
		Short:   "Test a grammar against accepted-parse-count fixtures",
		Example: `  glrgen test grammar.glr testdata`,
		Args:    cobra.ExactArgs(2),
		RunE:    runTest,
	}
	rootCmd.AddCommand(cmd)
}

// fixtureName matches spec.md §8's round-trip naming convention:
// input_<N>parses[...].txt, e.g. input_2parses.txt or
// input_2parses_leftassoc.txt.
var fixtureName = regexp.MustCompile(`^input_(\d+)parses.*\.txt$`)

type fixture struct {
	path  string
	name  string
	wantN int
}

func listFixtures(dir string) ([]fixture, error) {
	entries, err := ioutil.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot read the fixtures directory %s: %w", dir, err)
	}

	var fixtures []fixture
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := fixtureName.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, fmt.Errorf("cannot parse the parse count encoded in %s: %w", e.Name(), err)
		}
		fixtures = append(fixtures, fixture{path: filepath.Join(dir, e.Name()), name: e.Name(), wantN: n})
	}
	sort.Slice(fixtures, func(i, j int) bool { return fixtures[i].name < fixtures[j].name })
	return fixtures, nil
}

func runTest(cmd *cobra.Command, args []string) error {
	gr, a, _, err := buildGrammar(args[0])
	if err != nil {
		return fmt.Errorf("cannot compile the grammar: %w", err)
	}

	lexSpec, err := lexspec.Build(gr)
	if err != nil {
		return fmt.Errorf("cannot build the lexical specification: %w", err)
	}
	compiled, err := lexspec.Compile(lexSpec)
	if err != nil {
		return fmt.Errorf("cannot compile the lexical specification: %w", err)
	}

	fixtures, err := listFixtures(args[1])
	if err != nil {
		return err
	}
	if len(fixtures) == 0 {
		return fmt.Errorf("no fixture files found under %s", args[1])
	}

	failed := false
	for _, fx := range fixtures {
		src, err := ioutil.ReadFile(fx.path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", fx.name, err)
			failed = true
			continue
		}

		lex, err := mldriver.NewLexer(mldriver.NewLexSpec(compiled), bytes.NewReader(src))
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: cannot start the lexer: %v\n", fx.name, err)
			failed = true
			continue
		}
		stream := lexspec.NewStream(compiled, gr, lex)

		gotN, err := interp.Run(gr, a, stream)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", fx.name, err)
			failed = true
			continue
		}

		if gotN == fx.wantN {
			fmt.Fprintf(os.Stdout, "PASS %s (%d parses)\n", fx.name, gotN)
		} else {
			fmt.Fprintf(os.Stdout, "FAIL %s: want %d parses, got %d\n", fx.name, fx.wantN, gotN)
			failed = true
		}
	}

	if failed {
		return errors.New("test failed")
	}
	return nil
}
