// Package automaton implements spec.md §4.5 (C5): the worklist-driven
// builder that turns a normalized grammar into the canonical collection of
// LR(0) states and their labeled transitions. Grounded on
// grammar/lr0_item.go's genLR0Automaton/genStateAndNeighbourKernels, with
// the hash-based kernel identity replaced by internal/pool's generic
// value-keyed interning.
package automaton

import (
	"fmt"
	"sort"
	"strings"

	"github.com/glrgen/glrgen/internal/grammarcore"
	"github.com/glrgen/glrgen/internal/lr0"
	"github.com/glrgen/glrgen/internal/pool"
	"github.com/glrgen/glrgen/internal/symbol"
)

// State is a numbered, deduplicated set of LR(0) items, plus its outgoing
// transitions keyed by symbol (spec.md §3's "State").
type State struct {
	ID    int
	Items []lr0.Item
	Next  map[symbol.Symbol]int
}

func (s State) HasShift() bool { return len(s.Next) > 0 }

// Transition is spec.md §3's (from_state, symbol, to_state) triple.
type Transition struct {
	From   int
	Symbol symbol.Symbol
	To     int
}

// Automaton is the result of §4.5: the augmented rule list (the caller's
// grammar plus the synthetic S' -> start rule at index 0), the numbered
// states, and the transition set.
type Automaton struct {
	Rules       []grammarcore.Rule
	RuleSet     *lr0.RuleSet
	States      []State
	Transitions []Transition
}

// ReduceItems and ShiftItems partition a state's items for code emission
// (spec.md §4.4's Partition, applied to an already-built state).
func (a *Automaton) ReduceItems(stateID int) []lr0.Item {
	reduceItems, _ := lr0.Partition(a.States[stateID].Items, a.RuleSet)
	return reduceItems
}

func (a *Automaton) ShiftItems(stateID int) []lr0.Item {
	_, shiftItems := lr0.Partition(a.States[stateID].Items, a.RuleSet)
	return shiftItems
}

func itemSetKey(items []lr0.Item) string {
	sorted := append([]lr0.Item(nil), items...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].RuleIndex != sorted[j].RuleIndex {
			return sorted[i].RuleIndex < sorted[j].RuleIndex
		}
		return sorted[i].Dot < sorted[j].Dot
	})
	var b strings.Builder
	for _, it := range sorted {
		fmt.Fprintf(&b, "%d.%d|", it.RuleIndex, it.Dot)
	}
	return b.String()
}

// Build augments g with the virtual rule S' -> start (constructor Wild,
// spec.md §4.5) and runs the worklist loop to produce the numbered states
// and labeled transitions of the canonical LR(0) automaton. State 0 is
// always the closure of the initial item.
func Build(g *grammarcore.Grammar) (*Automaton, error) {
	augmented := make([]grammarcore.Rule, 0, len(g.Rules)+1)
	augmented = append(augmented, grammarcore.Rule{
		Constructor: grammarcore.WildConstructor,
		LHS:         symbol.Start,
		RHS:         []symbol.Symbol{g.Start},
	})
	augmented = append(augmented, g.Rules...)

	rules := lr0.NewRuleSet(augmented)
	itemPool := pool.New(itemSetKey)

	initial := lr0.Closure([]lr0.Item{lr0.FromRule(0)}, rules)
	initialID, _ := itemPool.Intern(initial)
	if initialID != 0 {
		return nil, fmt.Errorf("automaton: initial state must intern as state 0, got %d", initialID)
	}

	stateNext := map[int]map[symbol.Symbol]int{0: {}}
	var transitions []Transition

	worklist := []int{initialID}
	for len(worklist) > 0 {
		var nextWork []int
		for _, stateID := range worklist {
			items, _ := itemPool.ValueOf(stateID)
			for _, x := range lr0.NextSymbols(items, rules) {
				j := lr0.Goto(items, x, rules)

				// The worklist classifies newness by querying Present
				// against the pool snapshot from *before* this intern
				// (spec.md §4.5/§9): capture wasNew here, don't re-derive
				// it from a later Present check.
				toID, wasNew := itemPool.Intern(j)

				transitions = append(transitions, Transition{From: stateID, Symbol: x, To: toID})
				if stateNext[stateID] == nil {
					stateNext[stateID] = map[symbol.Symbol]int{}
				}
				stateNext[stateID][x] = toID

				if wasNew {
					stateNext[toID] = map[symbol.Symbol]int{}
					nextWork = append(nextWork, toID)
				}
			}
		}
		worklist = nextWork
	}

	states := make([]State, 0, itemPool.Len())
	for _, entry := range itemPool.Entries() {
		states = append(states, State{ID: entry.ID, Items: entry.Value, Next: stateNext[entry.ID]})
	}

	return &Automaton{
		Rules:       augmented,
		RuleSet:     rules,
		States:      states,
		Transitions: transitions,
	}, nil
}
