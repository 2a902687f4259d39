package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/glrgen/glrgen/internal/automaton"
	"github.com/glrgen/glrgen/internal/symbol"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:     "describe <grammar file path>",
		Short:   "Print the canonical LR(0) item sets built from a grammar",
		Example: `  glrgen describe grammar.glr`,
		Args:    cobra.ExactArgs(1),
		RunE:    runDescribe,
	}
	rootCmd.AddCommand(cmd)
}

func runDescribe(cmd *cobra.Command, args []string) error {
	_, a, _, err := buildGrammar(args[0])
	if err != nil {
		return fmt.Errorf("cannot describe the grammar: %w", err)
	}
	return writeDescription(os.Stdout, a)
}

// writeDescription prints one block per automaton state: its kernel and
// closure items, its shift transitions, and its reduce items, in the
// teacher's describe.go tabular style (text/tabwriter). Unlike the
// teacher's LALR description there is no conflict section: a GLR automaton
// never resolves a shift/reduce or reduce/reduce choice, it forks, so every
// reduce item a state carries is simply listed alongside its shifts.
func writeDescription(w io.Writer, a *automaton.Automaton) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	rules := a.RuleSet.Rules()

	for _, st := range a.States {
		fmt.Fprintf(tw, "State %d\n", st.ID)
		for _, it := range st.Items {
			fmt.Fprintf(tw, "\t%s\n", it.String(rules))
		}
		for _, x := range sortedNext(st) {
			fmt.Fprintf(tw, "\tshift\t%s\t-> %d\n", x, st.Next[x])
		}
		for _, it := range a.ReduceItems(st.ID) {
			fmt.Fprintf(tw, "\treduce\t%s\n", it.String(rules))
		}
		fmt.Fprintln(tw)
	}

	return tw.Flush()
}

func sortedNext(st automaton.State) []symbol.Symbol {
	syms := make([]symbol.Symbol, 0, len(st.Next))
	for x := range st.Next {
		syms = append(syms, x)
	}
	sort.Slice(syms, func(i, j int) bool {
		if syms[i].Name != syms[j].Name {
			return syms[i].Name < syms[j].Name
		}
		return syms[i].Level < syms[j].Level
	})
	return syms
}
