package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/glrgen/glrgen/internal/grammarcore"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:     "show <grammar file path>",
		Short:   "Print the normalized grammar a grammar file expands to",
		Example: `  glrgen show grammar.glr`,
		Args:    cobra.ExactArgs(1),
		RunE:    runShow,
	}
	rootCmd.AddCommand(cmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	gr, _, _, err := buildGrammar(args[0])
	if err != nil {
		return fmt.Errorf("cannot show the grammar: %w", err)
	}
	return writeGrammar(os.Stdout, gr)
}

const grammarTemplate = `# Start

{{ .Start }}

# Terminals

{{ range .Terminals -}}
{{ . }}
{{ end }}
# Rules

{{ range .Rules -}}
{{ . }}
{{ end }}`

type grammarView struct {
	Start     string
	Terminals []string
	Rules     []string
}

// writeGrammar prints the flat, macro-free grammar C2 normalizes a grammar
// file into: its start symbol, its terminal table, and every
// (constructor, lhs, rhs) rule, in the teacher's show.go tabular style
// (text/template over a flattened view struct).
func writeGrammar(w io.Writer, gr *grammarcore.Grammar) error {
	view := grammarView{Start: gr.Start.String()}
	for _, t := range gr.Terms {
		view.Terminals = append(view.Terminals, t.String())
	}
	for _, r := range gr.Rules {
		view.Rules = append(view.Rules, printRule(r))
	}

	tmpl, err := template.New("grammar").Parse(grammarTemplate)
	if err != nil {
		return err
	}
	return tmpl.Execute(w, view)
}

func printRule(r grammarcore.Rule) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s ->", r.Constructor.Kind, r.LHS)
	for _, s := range r.RHS {
		fmt.Fprintf(&b, " %s", s)
	}
	return b.String()
}
