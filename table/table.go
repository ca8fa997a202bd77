package table

import (
	"fmt"
	"strings"

	"github.com/dekarrin/gazelle/automaton"
	"github.com/dekarrin/gazelle/grammar"
	"github.com/dekarrin/gazelle/gxerrors"
	"github.com/dekarrin/gazelle/symbol"
	"github.com/dekarrin/rosed"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// CompiledTable is the compressed action/goto table a runtime.Parser drives
// against. It is immutable after construction and freely shared by read-only
// reference across any number of concurrent parsers.
type CompiledTable struct {
	g         *grammar.Grammar
	mode      automaton.Mode
	actions   *rowDisplacement
	actSide   map[[2]int]sideEntry
	gotos     *rowDisplacement
	numStates int
	conflicts []Conflict

	// stateSymbol records the symbol whose shift/goto produced each state,
	// exposed through StateSymbol and carried through persistence; the
	// recovery package does not read it.
	stateSymbol    []symbol.ID
	hasStateSymbol []bool

	// fingerprint tags this particular compiled table for trace/diagnostic
	// correlation when multiple tables are in play; it carries no semantic
	// weight and is never consulted by the runtime driver itself.
	fingerprint uuid.UUID
}

// Compile builds the automaton for g under mode, resolves its action/goto
// tables, compresses them, and returns the result together with any
// conflicts detected.
func Compile(g *grammar.Grammar, mode automaton.Mode) (*CompiledTable, error) {
	ff := grammar.Compute(g)
	a, err := automaton.Build(g, ff, mode)
	if err != nil {
		return nil, err
	}
	raw, err := Build(a)
	if err != nil {
		return nil, err
	}

	actions, side := compressActions(raw)
	gotos := compressGotos(raw)

	return &CompiledTable{
		g:              g,
		mode:           mode,
		actions:        actions,
		actSide:        side,
		gotos:          gotos,
		numStates:      raw.NumStates,
		conflicts:      raw.Conflicts,
		stateSymbol:    raw.StateSymbol,
		hasStateSymbol: raw.HasStateSymbol,
		fingerprint:    uuid.New(),
	}, nil
}

// CompileWithLimit is Compile plus a ceiling on the constructed automaton's
// state count (config.Limits.MaxStates): a pathological or mistakenly
// ambiguous grammar can blow up the subset construction well past anything
// reasonable, and the caller hears about that as a TableError. The count is
// checked after the automaton is fully built, so the limit rejects an
// oversized table but does not cut the construction short. maxStates <= 0
// means unbounded, same as Compile.
func CompileWithLimit(g *grammar.Grammar, mode automaton.Mode, maxStates int) (*CompiledTable, error) {
	ff := grammar.Compute(g)
	a, err := automaton.Build(g, ff, mode)
	if err != nil {
		return nil, err
	}
	if maxStates > 0 && len(a.States) > maxStates {
		return nil, gxerrors.Table("automaton has %d states, exceeds configured maximum of %d", len(a.States), maxStates)
	}
	raw, err := Build(a)
	if err != nil {
		return nil, err
	}

	actions, side := compressActions(raw)
	gotos := compressGotos(raw)

	return &CompiledTable{
		g:              g,
		mode:           mode,
		actions:        actions,
		actSide:        side,
		gotos:          gotos,
		numStates:      raw.NumStates,
		conflicts:      raw.Conflicts,
		stateSymbol:    raw.StateSymbol,
		hasStateSymbol: raw.HasStateSymbol,
		fingerprint:    uuid.New(),
	}, nil
}

// Grammar returns the grammar this table was compiled from.
func (t *CompiledTable) Grammar() *grammar.Grammar {
	return t.g
}

// Mode returns the automaton construction mode used to build this table.
func (t *CompiledTable) Mode() automaton.Mode {
	return t.mode
}

// NumStates returns the number of states in the compiled automaton.
func (t *CompiledTable) NumStates() int {
	return t.numStates
}

// Conflicts returns every shift/reduce and reduce/reduce conflict detected
// during construction, in ascending (state, terminal) order.
func (t *CompiledTable) Conflicts() []Conflict {
	return t.conflicts
}

// Fingerprint returns the build-time UUID stamped on this compiled table.
func (t *CompiledTable) Fingerprint() uuid.UUID {
	return t.fingerprint
}

// StateSymbol returns the symbol whose shift/goto produced state, and
// whether state has one at all (the start state does not).
func (t *CompiledTable) StateSymbol(state int) (symbol.ID, bool) {
	if state < 0 || state >= len(t.stateSymbol) {
		return 0, false
	}
	return t.stateSymbol[state], t.hasStateSymbol[state]
}

// Action returns the resolved action for (state, terminal); Error if the
// cell is not live.
func (t *CompiledTable) Action(state int, terminal symbol.ID) Action {
	word, live := t.actions.get(state, int(terminal))
	if !live {
		return Action{Type: Error}
	}
	tag, payload := unpackWord(word)
	switch tag {
	case tagShift:
		return Action{Type: Shift, ShiftState: payload}
	case tagReduce:
		return Action{Type: Reduce, Rule: grammar.RuleID(payload)}
	case tagDeferred:
		side := t.actSide[[2]int{state, int(terminal)}]
		if side.isAccept {
			return Action{Type: Accept}
		}
		return Action{Type: ShiftOrReduce, ShiftState: side.shiftState, Rule: grammar.RuleID(side.rule)}
	default:
		return Action{Type: Error}
	}
}

// Goto returns the state reached from state on non-terminal nt, and whether
// that transition exists.
func (t *CompiledTable) Goto(state int, nt symbol.ID) (int, bool) {
	word, live := t.gotos.get(state, int(nt))
	if !live {
		return 0, false
	}
	return int(word), true
}

// RuleInfo returns the LHS symbol and RHS length of a rule, which is all the
// runtime driver needs to perform a reduction.
func (t *CompiledTable) RuleInfo(r grammar.RuleID) (lhs symbol.ID, rhsLen int) {
	rule := t.g.Rules[r]
	return rule.LHS, len(rule.RHS)
}

// RuleAction returns the semantic-action tag attached to a rule.
func (t *CompiledTable) RuleAction(r grammar.RuleID) grammar.Action {
	return t.g.Rules[r].Action
}

// SymbolName returns the interned name of a symbol ID.
func (t *CompiledTable) SymbolName(id symbol.ID) string {
	return t.g.Symbols.Name(id)
}

// ExpectedTerminals returns every terminal that has a non-Error action in
// state, used to build the "expected one of {...}" diagnostic.
func (t *CompiledTable) ExpectedTerminals(state int) []symbol.ID {
	var out []symbol.ID
	for _, term := range t.g.Terminals() {
		if t.Action(state, term).Type != Error {
			out = append(out, term)
		}
	}
	return out
}

// String renders a human-readable summary of the table: automaton size,
// conflict count, and state count by mode, with long conflict lines wrapped
// via rosed.
func (t *CompiledTable) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s parse table: %s states, %s rules, %d conflict(s)\n",
		t.mode.String(),
		humanize.Comma(int64(t.numStates)),
		humanize.Comma(int64(len(t.g.Rules))),
		len(t.conflicts),
	))
	for _, c := range t.conflicts {
		line := fmt.Sprintf("  state %d, terminal %s: %s", c.State, t.SymbolName(c.Terminal), c.String())
		sb.WriteString(rosed.Edit(line).Wrap(78).String())
		sb.WriteString("\n")
	}
	return sb.String()
}
