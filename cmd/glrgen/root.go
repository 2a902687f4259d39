package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "glrgen",
	Short: "Generate a GLR parser from a grammar",
	Long: `glrgen provides:
- Generates a GLR parser in Go from a grammar file.
- Describes the canonical LR(0) automaton built from a grammar.
- Shows the normalized grammar a grammar file expands to.
- Tests a grammar against accepted-parse-count fixtures.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the command tree, printing any returned error to stderr
// before propagating it so main can set a nonzero exit status.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	return nil
}
