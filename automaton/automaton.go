package automaton

import (
	"fmt"
	"sort"

	"github.com/dekarrin/gazelle/grammar"
	"github.com/dekarrin/gazelle/symbol"
)

// Mode selects which automaton construction algorithm Build runs.
type Mode int

const (
	ModeLR0 Mode = iota
	ModeLR1
	ModeLALR1
)

func (m Mode) String() string {
	switch m {
	case ModeLR0:
		return "LR(0)"
	case ModeLR1:
		return "LR(1)"
	case ModeLALR1:
		return "LALR(1)"
	default:
		return "unknown"
	}
}

// State is one canonical item set in the constructed automaton, identified
// by the order it was first discovered (state 0 is always the start state).
type State struct {
	ID int

	// Items is the closed LR1 item set for this state. For ModeLR0, every
	// item carries the zero lookahead and should be read via Core0 instead.
	Items LR1ItemSet

	// Transitions maps a symbol to the state reached by shifting/going to
	// on it.
	Transitions map[symbol.ID]int

	// AccessSymbol is the symbol whose shift/goto produced this state, used
	// by error-repair heuristics; the start state has no accessing symbol.
	AccessSymbol symbol.ID
	HasAccess    bool
}

// Core0 strips lookaheads, yielding the LR(0) item set.
func (s State) Core0() ItemSet {
	return s.Items.Core()
}

// Automaton is the constructed collection of canonical states and their
// transitions.
type Automaton struct {
	Mode   Mode
	G      *grammar.Grammar
	FF     *grammar.FirstFollow
	States []State
}

// Report summarizes automaton size across the three construction modes for
// the same grammar. Core-merging never invents states, so the LALR(1) count
// always equals the LR(0) count and never exceeds the LR(1) count.
type Report struct {
	LR0States   int
	LR1States   int
	LALR1States int
}

// Compare builds all three automata for g and reports their state counts.
func Compare(g *grammar.Grammar, ff *grammar.FirstFollow) (*Report, error) {
	lr0, err := Build(g, ff, ModeLR0)
	if err != nil {
		return nil, err
	}
	lr1, err := Build(g, ff, ModeLR1)
	if err != nil {
		return nil, err
	}
	lalr1, err := Build(g, ff, ModeLALR1)
	if err != nil {
		return nil, err
	}
	return &Report{
		LR0States:   len(lr0.States),
		LR1States:   len(lr1.States),
		LALR1States: len(lalr1.States),
	}, nil
}

// Build constructs the automaton for g in the given mode.
func Build(g *grammar.Grammar, ff *grammar.FirstFollow, mode Mode) (*Automaton, error) {
	switch mode {
	case ModeLR0:
		return buildLR0(g, ff)
	case ModeLR1:
		return buildLR1(g, ff)
	case ModeLALR1:
		return buildLALR1(g, ff)
	default:
		return nil, fmt.Errorf("automaton: unknown mode %v", mode)
	}
}

// startItem is the single kernel item of the augmented start rule: S' -> .S $.
func startItem() LR0Item {
	return LR0Item{Rule: grammar.AugmentedRule, Dot: 0}
}

func closureLR0(g *grammar.Grammar, kernel ItemSet) ItemSet {
	closed := make(ItemSet, len(kernel))
	for it := range kernel {
		closed[it] = true
	}

	worklist := make([]LR0Item, 0, len(kernel))
	for it := range kernel {
		worklist = append(worklist, it)
	}

	for len(worklist) > 0 {
		it := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		sym, ok := it.NextSymbol(g)
		if !ok || g.Symbols.IsTerminal(sym) {
			continue
		}
		for _, rid := range g.RulesFor(sym) {
			newItem := LR0Item{Rule: rid, Dot: 0}
			if closed.Add(newItem) {
				worklist = append(worklist, newItem)
			}
		}
	}
	return closed
}

func gotoLR0(g *grammar.Grammar, items ItemSet, x symbol.ID) ItemSet {
	moved := make(ItemSet)
	for it := range items {
		sym, ok := it.NextSymbol(g)
		if ok && sym == x {
			moved.Add(LR0Item{Rule: it.Rule, Dot: it.Dot + 1})
		}
	}
	if len(moved) == 0 {
		return nil
	}
	return closureLR0(g, moved)
}

func closureLR1(g *grammar.Grammar, ff *grammar.FirstFollow, kernel LR1ItemSet) LR1ItemSet {
	closed := make(LR1ItemSet, len(kernel))
	for it := range kernel {
		closed[it] = true
	}

	worklist := make([]LR1Item, 0, len(kernel))
	for it := range kernel {
		worklist = append(worklist, it)
	}

	for len(worklist) > 0 {
		it := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		sym, ok := it.Core.NextSymbol(g)
		if !ok || g.Symbols.IsTerminal(sym) {
			continue
		}

		rhs := g.Rules[it.Core.Rule].RHS
		beta := rhs[it.Core.Dot+1:]
		firstBetaA, _ := ff.FirstOfSequence(append(append([]symbol.ID{}, beta...), it.Lookahead))

		for _, rid := range g.RulesFor(sym) {
			for _, la := range firstBetaA.Elements() {
				newItem := LR1Item{Core: LR0Item{Rule: rid, Dot: 0}, Lookahead: la}
				if closed.Add(newItem) {
					worklist = append(worklist, newItem)
				}
			}
		}
	}
	return closed
}

func gotoLR1(g *grammar.Grammar, ff *grammar.FirstFollow, items LR1ItemSet, x symbol.ID) LR1ItemSet {
	moved := make(LR1ItemSet)
	for it := range items {
		sym, ok := it.Core.NextSymbol(g)
		if ok && sym == x {
			moved.Add(LR1Item{Core: LR0Item{Rule: it.Core.Rule, Dot: it.Core.Dot + 1}, Lookahead: it.Lookahead})
		}
	}
	if len(moved) == 0 {
		return nil
	}
	return closureLR1(g, ff, moved)
}

// allSymbols returns terminals then non-terminals in a fixed, deterministic
// order, used to visit transitions deterministically so state discovery
// order (and hence numbering) is stable across runs.
func allSymbols(g *grammar.Grammar) []symbol.ID {
	syms := append(append([]symbol.ID{}, g.Terminals()...), g.NonTerminals()...)
	sort.Slice(syms, func(i, j int) bool { return syms[i] < syms[j] })
	return syms
}

func buildLR0(g *grammar.Grammar, ff *grammar.FirstFollow) (*Automaton, error) {
	start := closureLR0(g, NewItemSet(startItem()))

	var states []State
	index := map[string]int{}
	coreKey := func(s ItemSet) string { return itemSetKey(s) }

	order := []ItemSet{start}
	index[coreKey(start)] = 0
	states = append(states, State{ID: 0, Items: wrapLR0(start), Transitions: map[symbol.ID]int{}})

	syms := allSymbols(g)

	for i := 0; i < len(order); i++ {
		cur := order[i]
		for _, x := range syms {
			next := gotoLR0(g, cur, x)
			if next == nil {
				continue
			}
			key := coreKey(next)
			j, ok := index[key]
			if !ok {
				j = len(states)
				index[key] = j
				states = append(states, State{ID: j, Items: wrapLR0(next), Transitions: map[symbol.ID]int{}, AccessSymbol: x, HasAccess: true})
				order = append(order, next)
			}
			states[i].Transitions[x] = j
		}
	}

	return &Automaton{Mode: ModeLR0, G: g, FF: ff, States: states}, nil
}

func wrapLR0(s ItemSet) LR1ItemSet {
	out := make(LR1ItemSet, len(s))
	for it := range s {
		out[LR1Item{Core: it, Lookahead: symbol.EndOfInput}] = true
	}
	return out
}

func buildLR1(g *grammar.Grammar, ff *grammar.FirstFollow) (*Automaton, error) {
	start := closureLR1(g, ff, NewLR1ItemSet(LR1Item{Core: startItem(), Lookahead: symbol.EndOfInput}))

	var states []State
	index := map[string]int{}
	key := func(s LR1ItemSet) string { return lr1SetKey(s) }

	order := []LR1ItemSet{start}
	index[key(start)] = 0
	states = append(states, State{ID: 0, Items: start, Transitions: map[symbol.ID]int{}})

	syms := allSymbols(g)

	for i := 0; i < len(order); i++ {
		cur := order[i]
		for _, x := range syms {
			next := gotoLR1(g, ff, cur, x)
			if next == nil {
				continue
			}
			k := key(next)
			j, ok := index[k]
			if !ok {
				j = len(states)
				index[k] = j
				states = append(states, State{ID: j, Items: next, Transitions: map[symbol.ID]int{}, AccessSymbol: x, HasAccess: true})
				order = append(order, next)
			}
			states[i].Transitions[x] = j
		}
	}

	return &Automaton{Mode: ModeLR1, G: g, FF: ff, States: states}, nil
}

// buildLALR1 constructs the canonical LR(1) automaton and then merges any
// states that share an LR(0) core, unioning their lookaheads. This is
// semantically equivalent to the textbook's kernel lookahead-propagation
// algorithm (purple dragon book, algorithm 4.63) but simpler to implement
// correctly.
func buildLALR1(g *grammar.Grammar, ff *grammar.FirstFollow) (*Automaton, error) {
	lr1, err := buildLR1(g, ff)
	if err != nil {
		return nil, err
	}

	coreOf := make([]string, len(lr1.States))
	mergedIndex := map[string]int{}
	var mergedOrder []string

	for _, st := range lr1.States {
		c := itemSetKey(st.Items.Core())
		coreOf[st.ID] = c
		if _, ok := mergedIndex[c]; !ok {
			mergedIndex[c] = len(mergedOrder)
			mergedOrder = append(mergedOrder, c)
		}
	}

	merged := make([]State, len(mergedOrder))
	for i := range mergedOrder {
		merged[i] = State{ID: i, Items: LR1ItemSet{}, Transitions: map[symbol.ID]int{}}
	}

	for _, st := range lr1.States {
		mid := mergedIndex[coreOf[st.ID]]
		for it := range st.Items {
			merged[mid].Items[it] = true
		}
		if st.HasAccess {
			merged[mid].AccessSymbol = st.AccessSymbol
			merged[mid].HasAccess = true
		}
		for x, target := range st.Transitions {
			merged[mid].Transitions[x] = mergedIndex[coreOf[target]]
		}
	}

	return &Automaton{Mode: ModeLALR1, G: g, FF: ff, States: merged}, nil
}

func itemSetKey(s ItemSet) string {
	items := make([]LR0Item, 0, len(s))
	for it := range s {
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Rule != items[j].Rule {
			return items[i].Rule < items[j].Rule
		}
		return items[i].Dot < items[j].Dot
	})
	return fmt.Sprint(items)
}

func lr1SetKey(s LR1ItemSet) string {
	items := make([]LR1Item, 0, len(s))
	for it := range s {
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Core.Rule != items[j].Core.Rule {
			return items[i].Core.Rule < items[j].Core.Rule
		}
		if items[i].Core.Dot != items[j].Core.Dot {
			return items[i].Core.Dot < items[j].Core.Dot
		}
		return items[i].Lookahead < items[j].Lookahead
	})
	return fmt.Sprint(items)
}
