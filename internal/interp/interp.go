// Package interp runs spec.md §4.7's GLR driver directly over a
// grammarcore.Grammar/automaton.Automaton pair, without going through
// internal/emit's code generation first. It is the "reference interpreter"
// C11's test command uses to check a grammar's accepted-parse count against
// a fixture's encoded expectation, the same way the teacher's
// cmd/vartan/test.go checks a compiled grammar against tester.TestCase
// without shelling out to go build first.
//
// Unlike the generated driver, this interpreter never needs to reconstruct
// a concrete semantic value: counting accepted configurations at EOF only
// needs the stack's shape (to pop the right number of frames and carry the
// reduced symbol's tag upward), never a production's actual AST value, so
// every Category here carries a nil Value.
package interp

import (
	"fmt"

	"github.com/glrgen/glrgen/driverrt"
	"github.com/glrgen/glrgen/internal/automaton"
	"github.com/glrgen/glrgen/internal/grammarcore"
	"github.com/glrgen/glrgen/internal/symbol"
)

// Run drives stream to completion against a, returning how many parallel
// configurations reached the accept state (spec.md §9: more than one means
// the input is ambiguous under this grammar). Matches spec.md §4.7's entry
// point exactly: the initial config list seeds state 0's empty stack, plus
// one more config for every reduce item state 0 already carries in its
// closure (an epsilon rule reducible before any token is read at all, the
// case spec.md §8 Scenario C's empty-input separator list exercises).
func Run(g *grammarcore.Grammar, a *automaton.Automaton, stream driverrt.Stream) (int, error) {
	configs := []driverrt.Config{{State: 0}}
	for i := range a.ReduceItems(0) {
		configs = append(configs, reduce(a, 0, i, nil, stream.Pos())...)
	}
	return loop(g, a, configs, stream)
}

func loop(g *grammarcore.Grammar, a *automaton.Automaton, configs []driverrt.Config, stream driverrt.Stream) (int, error) {
	pos := stream.Pos()
	tok, err := stream.Next()
	if err != nil {
		return 0, err
	}
	if tok.Terminal == driverrt.EOFTerminal {
		n := 0
		for _, c := range configs {
			if c.State == driverrt.AcceptState {
				n++
			}
		}
		return n, nil
	}
	if int(tok.Terminal) < 0 || int(tok.Terminal) >= len(g.Terms) {
		return 0, fmt.Errorf("interp: token has out-of-range terminal id %d", tok.Terminal)
	}

	span := driverrt.Span{Start: pos, End: stream.Pos()}
	cat := driverrt.Category{Symbol: driverrt.SymbolTag{Name: g.Terms[tok.Terminal].Name}}

	var next []driverrt.Config
	for _, c := range configs {
		next = append(next, dispatch(a, c.State, c.Stack, cat, span)...)
	}
	if len(next) == 0 {
		return 0, nil
	}
	return loop(g, a, next, stream)
}

func dispatch(a *automaton.Automaton, state int, stack driverrt.Stack, cat driverrt.Category, span driverrt.Span) []driverrt.Config {
	if state < 0 || state >= len(a.States) || !a.States[state].HasShift() {
		return nil
	}
	return shift(a, a.States[state], stack, cat, span)
}

func shift(a *automaton.Automaton, st automaton.State, stack driverrt.Stack, cat driverrt.Category, span driverrt.Span) []driverrt.Config {
	for x, m := range st.Next {
		if x.Name != cat.Symbol.Name || x.Level != cat.Symbol.Level {
			continue
		}
		item := driverrt.StackItem{Category: cat, FromPos: span.Start, State: st.ID}
		newStack := append(append(driverrt.Stack{}, stack...), item)

		var out []driverrt.Config
		if a.States[m].HasShift() {
			out = append(out, driverrt.Config{State: m, Stack: newStack})
		}
		for i := range a.ReduceItems(m) {
			out = append(out, reduce(a, m, i, newStack, span.End)...)
		}
		return out
	}
	return nil
}

func reduce(a *automaton.Automaton, stateID, i int, stack driverrt.Stack, pos driverrt.Pos) []driverrt.Config {
	rules := a.RuleSet.Rules()
	item := a.ReduceItems(stateID)[i]
	rule := rules[item.RuleIndex]
	k := len(item.BeforeDot(rules))

	popped := stack[len(stack)-k:]
	remaining := stack[:len(stack)-k]

	var stNum0 int
	var pos0 driverrt.Pos
	if k > 0 {
		stNum0 = popped[0].State
		pos0 = popped[0].FromPos
	} else {
		stNum0 = stateID
		pos0 = pos
	}
	span := driverrt.Span{Start: pos0, End: pos}
	lhsCat := driverrt.Category{Symbol: driverrt.SymbolTag{Name: rule.LHS.Name, Level: rule.LHS.Level}}

	if rule.LHS == symbol.Start {
		accepted := driverrt.StackItem{Category: lhsCat, FromPos: pos0, State: stNum0}
		return []driverrt.Config{{State: driverrt.AcceptState, Stack: append(append(driverrt.Stack{}, remaining...), accepted)}}
	}
	return dispatch(a, stNum0, remaining, lhsCat, span)
}
