package table

import (
	"sort"

	"github.com/dekarrin/gazelle/automaton"
	"github.com/dekarrin/gazelle/grammar"
	"github.com/dekarrin/gazelle/symbol"
)

// rawActionCell accumulates every candidate action competing for one
// (state, terminal) cell before resolution.
type rawActionCell struct {
	shift       int
	hasShift    bool
	accept      bool
	reduceRules []grammar.RuleID
}

// Raw is the unresolved, uncompressed table: one action cell per
// (state, terminal) and one goto entry per (state, non-terminal), plus the
// conflicts discovered while resolving action cells.
type Raw struct {
	G         *grammar.Grammar
	NumStates int
	Actions   map[int]map[symbol.ID]Action
	Gotos     map[int]map[symbol.ID]int
	Conflicts []Conflict

	// StateSymbol records, for each state, the symbol whose shift/goto
	// reached it, used by error-repair heuristics. The start state has none,
	// carried here as symbol.EndOfInput with HasStateSymbol false.
	StateSymbol    []symbol.ID
	HasStateSymbol []bool
}

// Build derives the unresolved action/goto tables from a constructed
// automaton: a shift entry for
// every terminal transition, a reduce entry for every completed item (using
// the item's own lookahead for LR(1)/LALR(1) automata, or FOLLOW(LHS) for a
// bare LR(0) automaton — the classical SLR(1) reduction rule layered on an
// LR(0) core), an accept entry for the augmented rule's pre-$ item, and a
// goto entry for every non-terminal transition. Shift/reduce and
// reduce/reduce conflicts are classified and resolved by precedence and rule
// order; unresolved cases default to shift (or, for reduce/reduce, the
// earlier rule) and are recorded in Conflicts.
func Build(a *automaton.Automaton) (*Raw, error) {
	g := a.G
	raw := &Raw{
		G:              g,
		NumStates:      len(a.States),
		Actions:        map[int]map[symbol.ID]Action{},
		Gotos:          map[int]map[symbol.ID]int{},
		StateSymbol:    make([]symbol.ID, len(a.States)),
		HasStateSymbol: make([]bool, len(a.States)),
	}

	for _, st := range a.States {
		raw.StateSymbol[st.ID] = st.AccessSymbol
		raw.HasStateSymbol[st.ID] = st.HasAccess
		cells := map[symbol.ID]*rawActionCell{}
		cellFor := func(t symbol.ID) *rawActionCell {
			c, ok := cells[t]
			if !ok {
				c = &rawActionCell{}
				cells[t] = c
			}
			return c
		}

		for it := range st.Items {
			core := it.Core
			rule := g.Rules[core.Rule]

			if core.Rule == grammar.AugmentedRule && core.Dot == 1 {
				cellFor(symbol.EndOfInput).accept = true
				continue
			}

			if core.AtEnd(g) {
				if core.Rule == grammar.AugmentedRule {
					continue
				}
				for _, la := range reduceLookaheads(a, it, rule.LHS) {
					c := cellFor(la)
					c.reduceRules = append(c.reduceRules, core.Rule)
				}
				continue
			}

			sym, _ := core.NextSymbol(g)
			if g.Symbols.IsTerminal(sym) && sym != symbol.EndOfInput {
				target, ok := st.Transitions[sym]
				if ok {
					c := cellFor(sym)
					c.shift = target
					c.hasShift = true
				}
			}
		}

		stateActions := map[symbol.ID]Action{}
		for term, cell := range cells {
			action, conflicts := resolveCell(g, st.ID, term, cell)
			stateActions[term] = action
			raw.Conflicts = append(raw.Conflicts, conflicts...)
		}
		raw.Actions[st.ID] = stateActions

		stateGotos := map[symbol.ID]int{}
		for _, nt := range g.NonTerminals() {
			if target, ok := st.Transitions[nt]; ok {
				stateGotos[nt] = target
			}
		}
		raw.Gotos[st.ID] = stateGotos
	}

	sort.Slice(raw.Conflicts, func(i, j int) bool {
		ci, cj := raw.Conflicts[i], raw.Conflicts[j]
		if ci.State != cj.State {
			return ci.State < cj.State
		}
		return ci.Terminal < cj.Terminal
	})

	return raw, nil
}

// reduceLookaheads returns the terminals on which a completed item should
// trigger a reduce: the item's own LR(1)/LALR(1) lookahead when the
// automaton carries one, or FOLLOW(lhs) for a bare LR(0) automaton.
func reduceLookaheads(a *automaton.Automaton, it automaton.LR1Item, lhs symbol.ID) []symbol.ID {
	if a.Mode == automaton.ModeLR0 {
		return a.FF.Follow(lhs).Elements()
	}
	return []symbol.ID{it.Lookahead}
}

// resolveCell classifies and resolves one cell's candidate actions,
// returning the resolved Action and any Conflicts that should be recorded.
func resolveCell(g *grammar.Grammar, state int, term symbol.ID, cell *rawActionCell) (Action, []Conflict) {
	var conflicts []Conflict

	reduceRule, rrConflicts := resolveReduceReduce(state, term, cell.reduceRules)
	conflicts = append(conflicts, rrConflicts...)
	hasReduce := len(cell.reduceRules) > 0

	if cell.accept {
		if cell.hasShift || hasReduce {
			conflicts = append(conflicts, Conflict{Kind: ShiftReduce, State: state, Terminal: term, Rule: reduceRule, ShiftState: cell.shift})
		}
		return Action{Type: Accept}, conflicts
	}

	switch {
	case cell.hasShift && hasReduce:
		action, c := resolveShiftReduce(g, state, term, cell.shift, reduceRule)
		if c != nil {
			conflicts = append(conflicts, *c)
		}
		return action, conflicts
	case cell.hasShift:
		return Action{Type: Shift, ShiftState: cell.shift}, conflicts
	case hasReduce:
		return Action{Type: Reduce, Rule: reduceRule}, conflicts
	default:
		return Action{Type: Error}, conflicts
	}
}

// resolveReduceReduce resolves multiple completed items competing for the
// same cell in favor of the earlier-numbered rule, the traditional YACC
// behaviour, recording the rest as conflicts.
func resolveReduceReduce(state int, term symbol.ID, rules []grammar.RuleID) (grammar.RuleID, []Conflict) {
	if len(rules) == 0 {
		return 0, nil
	}
	sorted := append([]grammar.RuleID{}, rules...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	kept := sorted[0]
	var conflicts []Conflict
	seen := map[grammar.RuleID]bool{kept: true}
	for _, r := range sorted[1:] {
		if seen[r] {
			continue
		}
		seen[r] = true
		conflicts = append(conflicts, Conflict{Kind: ReduceReduce, State: state, Terminal: term, Rule: kept, RuleB: r})
	}
	return kept, conflicts
}

// resolveShiftReduce picks between a competing shift and reduce:
// precedence-based
// resolution when both the terminal and the rule carry a static precedence,
// deferral to the runtime when the terminal carries a dynamic (runtime)
// precedence, and default-to-shift (recorded as a conflict) otherwise.
func resolveShiftReduce(g *grammar.Grammar, state int, term symbol.ID, shiftTarget int, rule grammar.RuleID) (Action, *Conflict) {
	if g.Symbols.IsDynamic(term) {
		return Action{Type: ShiftOrReduce, ShiftState: shiftTarget, Rule: rule}, nil
	}

	termPrec := g.Symbols.Precedence(term)
	rulePrec := g.Rules[rule].Prec

	if !termPrec.IsZero() && !rulePrec.IsZero() {
		switch {
		case rulePrec.Level > termPrec.Level:
			return Action{Type: Reduce, Rule: rule}, nil
		case termPrec.Level > rulePrec.Level:
			return Action{Type: Shift, ShiftState: shiftTarget}, nil
		default:
			switch termPrec.Assoc {
			case symbol.AssocLeft:
				return Action{Type: Reduce, Rule: rule}, nil
			case symbol.AssocRight:
				return Action{Type: Shift, ShiftState: shiftTarget}, nil
			case symbol.AssocNonAssoc:
				return Action{Type: Error}, nil
			default:
				// equal precedence, no associativity declared: default to
				// shift and record the conflict.
				return Action{Type: Shift, ShiftState: shiftTarget},
					&Conflict{Kind: ShiftReduce, State: state, Terminal: term, Rule: rule, ShiftState: shiftTarget}
			}
		}
	}

	return Action{Type: Shift, ShiftState: shiftTarget},
		&Conflict{Kind: ShiftReduce, State: state, Terminal: term, Rule: rule, ShiftState: shiftTarget}
}
