// Package automaton builds the LR(0)/LR(1)/LALR(1) item-set automaton that
// the table package compiles into action/goto tables. Items are small,
// comparable, fixed-size values with content equality, so item sets are
// ordinary Go maps keyed on the item value itself rather than on a
// serialized string form.
package automaton

import (
	"fmt"

	"github.com/dekarrin/gazelle/grammar"
	"github.com/dekarrin/gazelle/symbol"
)

// LR0Item is a (rule, dot position) pair: the classic "viable prefix" item.
type LR0Item struct {
	Rule grammar.RuleID
	Dot  int
}

// AtEnd reports whether the dot has advanced past the whole RHS, i.e. the
// item calls for a reduction.
func (it LR0Item) AtEnd(g *grammar.Grammar) bool {
	return it.Dot >= len(g.Rules[it.Rule].RHS)
}

// NextSymbol returns the symbol immediately after the dot and true, or the
// zero value and false if the dot is at the end.
func (it LR0Item) NextSymbol(g *grammar.Grammar) (symbol.ID, bool) {
	rhs := g.Rules[it.Rule].RHS
	if it.Dot >= len(rhs) {
		return 0, false
	}
	return rhs[it.Dot], true
}

func (it LR0Item) String(g *grammar.Grammar) string {
	r := g.Rules[it.Rule]
	s := g.Symbols.Name(r.LHS) + " ->"
	for i, sym := range r.RHS {
		if i == it.Dot {
			s += " ."
		}
		s += " " + g.Symbols.Name(sym)
	}
	if it.Dot == len(r.RHS) {
		s += " ."
	}
	return s
}

// LR1Item pairs an LR0Item with a single lookahead terminal.
type LR1Item struct {
	Core      LR0Item
	Lookahead symbol.ID
}

func (it LR1Item) String(g *grammar.Grammar) string {
	return fmt.Sprintf("%s, %s", it.Core.String(g), g.Symbols.Name(it.Lookahead))
}

// ItemSet is a set of LR0Items, used for LR(0) and as the "core" of an LR(1)
// or LALR(1) state for comparison purposes.
type ItemSet map[LR0Item]bool

func NewItemSet(items ...LR0Item) ItemSet {
	s := make(ItemSet, len(items))
	for _, it := range items {
		s[it] = true
	}
	return s
}

func (s ItemSet) Add(it LR0Item) bool {
	if s[it] {
		return false
	}
	s[it] = true
	return true
}

// Equal reports whether two item sets contain exactly the same items.
func (s ItemSet) Equal(o ItemSet) bool {
	if len(s) != len(o) {
		return false
	}
	for it := range s {
		if !o[it] {
			return false
		}
	}
	return true
}

// LR1ItemSet is a set of LR1Items, used for canonical LR(1) state content
// comparison and for LALR(1) lookahead-merging by core.
type LR1ItemSet map[LR1Item]bool

func NewLR1ItemSet(items ...LR1Item) LR1ItemSet {
	s := make(LR1ItemSet, len(items))
	for _, it := range items {
		s[it] = true
	}
	return s
}

func (s LR1ItemSet) Add(it LR1Item) bool {
	if s[it] {
		return false
	}
	s[it] = true
	return true
}

func (s LR1ItemSet) Equal(o LR1ItemSet) bool {
	if len(s) != len(o) {
		return false
	}
	for it := range s {
		if !o[it] {
			return false
		}
	}
	return true
}

// Core returns the LR0 core of an LR1ItemSet: the item set with lookaheads
// stripped, used to test whether two LR(1) states should be merged under
// LALR(1).
func (s LR1ItemSet) Core() ItemSet {
	core := make(ItemSet, len(s))
	for it := range s {
		core[it.Core] = true
	}
	return core
}
