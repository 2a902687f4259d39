// Package lr0 implements spec.md §4.4 (C4): LR(0) items, their closure and
// goto operations, and the reduce/shift partition an automaton state needs
// for code emission. Deliberately excludes lookahead (no LALR/LR(1) tables,
// per spec.md §1's non-goals) — grounded on the older, simpler half of the
// teacher's grammar package (grammar/lr0_item.go's closure/goto/kernel
// shape) rather than its newer LALR(1)-capable grammar/item.go, since that
// file's lookahead bookkeeping has no counterpart here.
package lr0

import (
	"fmt"
	"strings"

	"github.com/glrgen/glrgen/internal/grammarcore"
	"github.com/glrgen/glrgen/internal/symbol"
)

// Item is a rule with a dot marking how much of its right-hand side has
// been matched (spec.md §3's "LR item"). Identity is (RuleIndex, Dot): the
// rule determines constructor/lhs/rhs, and the dot splits rhs into
// before_dot/after_dot, so this pair alone is a comparable value that
// carries the same information as the four-tuple spec.md describes.
type Item struct {
	RuleIndex int
	Dot       int
}

// FromRule returns the initial item for a rule: dot at position 0.
func FromRule(ruleIndex int) Item {
	return Item{RuleIndex: ruleIndex, Dot: 0}
}

func (it Item) rule(rules []grammarcore.Rule) grammarcore.Rule {
	return rules[it.RuleIndex]
}

func (it Item) LHS(rules []grammarcore.Rule) symbol.Symbol {
	return it.rule(rules).LHS
}

func (it Item) Constructor(rules []grammarcore.Rule) grammarcore.Constructor {
	return it.rule(rules).Constructor
}

func (it Item) BeforeDot(rules []grammarcore.Rule) []symbol.Symbol {
	return it.rule(rules).RHS[:it.Dot]
}

func (it Item) AfterDot(rules []grammarcore.Rule) []symbol.Symbol {
	return it.rule(rules).RHS[it.Dot:]
}

// DottedSymbol returns the symbol immediately after the dot, if any.
func (it Item) DottedSymbol(rules []grammarcore.Rule) (symbol.Symbol, bool) {
	rhs := it.rule(rules).RHS
	if it.Dot >= len(rhs) {
		return symbol.Symbol{}, false
	}
	return rhs[it.Dot], true
}

// Reducible reports whether the dot has reached the end of the rule (an
// item of the shape `E -> E + T .`).
func (it Item) Reducible(rules []grammarcore.Rule) bool {
	return it.Dot >= len(it.rule(rules).RHS)
}

func (it Item) String(rules []grammarcore.Rule) string {
	r := it.rule(rules)
	var b strings.Builder
	fmt.Fprintf(&b, "%v ->", r.LHS)
	for i, s := range r.RHS {
		if i == it.Dot {
			b.WriteString(" .")
		}
		fmt.Fprintf(&b, " %v", s)
	}
	if it.Dot == len(r.RHS) {
		b.WriteString(" .")
	}
	return b.String()
}

// RuleSet indexes a flat rule list by left-hand side, the way Closure needs
// to find every rule for a nonterminal that follows a dot. Grounded on the
// teacher's productionSet.findByLHS.
type RuleSet struct {
	rules []grammarcore.Rule
	byLHS map[symbol.Symbol][]int
}

func NewRuleSet(rules []grammarcore.Rule) *RuleSet {
	rs := &RuleSet{rules: rules, byLHS: map[symbol.Symbol][]int{}}
	for i, r := range rules {
		rs.byLHS[r.LHS] = append(rs.byLHS[r.LHS], i)
	}
	return rs
}

func (rs *RuleSet) Rules() []grammarcore.Rule { return rs.rules }

func (rs *RuleSet) ByLHS(lhs symbol.Symbol) []int { return rs.byLHS[lhs] }

// Closure computes the fixed-point expansion of items: for every item whose
// dot precedes a nonterminal N, add FromRule(r) for every rule with lhs = N
// not yet present. Termination follows from item equality over a finite
// universe (spec.md §4.4).
func Closure(items []Item, rules *RuleSet) []Item {
	seen := map[Item]bool{}
	var out []Item
	queue := make([]Item, 0, len(items))
	for _, it := range items {
		if seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
		queue = append(queue, it)
	}

	for len(queue) > 0 {
		var next []Item
		for _, it := range queue {
			sym, ok := it.DottedSymbol(rules.rules)
			if !ok || sym.IsTerminal() {
				continue
			}
			for _, ruleIdx := range rules.ByLHS(sym) {
				cand := FromRule(ruleIdx)
				if seen[cand] {
					continue
				}
				seen[cand] = true
				out = append(out, cand)
				next = append(next, cand)
			}
		}
		queue = next
	}

	return out
}

// Goto advances every item whose dot immediately precedes x, then closes
// the result (spec.md §4.4).
func Goto(items []Item, x symbol.Symbol, rules *RuleSet) []Item {
	var advanced []Item
	for _, it := range items {
		sym, ok := it.DottedSymbol(rules.rules)
		if !ok || sym != x {
			continue
		}
		advanced = append(advanced, Item{RuleIndex: it.RuleIndex, Dot: it.Dot + 1})
	}
	return Closure(advanced, rules)
}

// NextSymbols returns the set of symbols immediately following a dot in any
// of items. Order is insertion order over items, which spec.md §4.4 notes
// is not semantically required but keeps output deterministic.
func NextSymbols(items []Item, rules *RuleSet) []symbol.Symbol {
	seen := map[symbol.Symbol]bool{}
	var out []symbol.Symbol
	for _, it := range items {
		sym, ok := it.DottedSymbol(rules.rules)
		if !ok || seen[sym] {
			continue
		}
		seen[sym] = true
		out = append(out, sym)
	}
	return out
}

// Partition splits items into reduce items (dot at the end) and shift items
// (dot before a symbol), the shape C7's per-state code emission needs.
func Partition(items []Item, rules *RuleSet) (reduceItems, shiftItems []Item) {
	for _, it := range items {
		if it.Reducible(rules.rules) {
			reduceItems = append(reduceItems, it)
		} else {
			shiftItems = append(shiftItems, it)
		}
	}
	return reduceItems, shiftItems
}
