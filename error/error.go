package error

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// SpecError is a single fatal surfaced while normalizing a grammar (the
// normalization kinds of spec.md §7 travel as one of these; grammar-file
// syntax errors are internal/gfile's *SyntaxError instead). Cause is
// one of the sentinel errors a component defines (see e.g.
// grammarcore.ErrUnknownTokenType); Detail carries the offending name or
// handle where one exists.
type SpecError struct {
	Cause      error
	Detail     string
	FilePath   string
	SourceName string
	Row        int
	Col        int
}

func (e *SpecError) Error() string {
	var b strings.Builder
	if e.SourceName != "" {
		fmt.Fprintf(&b, "%v: ", e.SourceName)
	}
	if e.Row != 0 {
		if e.Col != 0 {
			fmt.Fprintf(&b, "%v:%v: ", e.Row, e.Col)
		} else {
			fmt.Fprintf(&b, "%v: ", e.Row)
		}
	}
	fmt.Fprintf(&b, "error: %v", e.Cause)
	if e.Detail != "" {
		fmt.Fprintf(&b, ": %v", e.Detail)
	}

	line := readLine(e.FilePath, e.Row)
	if line != "" {
		fmt.Fprintf(&b, "\n    %v", line)
	}

	return b.String()
}

func (e *SpecError) Unwrap() error {
	return e.Cause
}

func readLine(filePath string, row int) string {
	if filePath == "" || row <= 0 {
		return ""
	}

	f, err := os.Open(filePath)
	if err != nil {
		return ""
	}
	defer f.Close()

	i := 1
	s := bufio.NewScanner(f)
	for s.Scan() {
		if i == row {
			return s.Text()
		}
		i++
	}

	return ""
}

// SpecErrors accumulates every fatal found in one pass over a grammar so
// the caller can report all of them instead of stopping at the first.
type SpecErrors []*SpecError

func (es SpecErrors) Error() string {
	var b strings.Builder
	for i, e := range es {
		if i > 0 {
			fmt.Fprintf(&b, "\n")
		}
		fmt.Fprintf(&b, "%v", e)
	}
	return b.String()
}

// SetSource stamps every error in the list with a file path and display
// name, the way a CLI command does once it knows which file it read the
// grammar from (or that it came from stdin).
func (es SpecErrors) SetSource(filePath, sourceName string) {
	for _, e := range es {
		e.FilePath = filePath
		e.SourceName = sourceName
	}
}
