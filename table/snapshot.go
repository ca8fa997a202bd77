package table

import (
	"github.com/dekarrin/gazelle/automaton"
	"github.com/dekarrin/gazelle/grammar"
	"github.com/dekarrin/gazelle/symbol"
)

// SymbolSnapshot is one entry of the snapshot's symbol map: just enough of a
// symbol.Table entry to answer
// SymbolName and IsTerminal after reload. Precedence is deliberately not
// carried — it only matters while building a table, never while driving an
// already-compiled one.
type SymbolSnapshot struct {
	Name       string
	IsTerminal bool
}

// RuleSnapshot is one entry of the snapshot's rule table: the LHS and RHS
// length RuleInfo needs, plus the semantic-action tag RuleAction needs.
// The RHS symbols themselves are not carried; nothing downstream of table
// construction reads them (a reducer receives its popped values from the
// parser's own stack, never from the rule).
type RuleSnapshot struct {
	LHS    int
	RHSLen int
	Action string
}

// SideCellSnapshot is one entry of the action table's side table: the detail
// for a (state, terminal) cell whose packed word tag is tagDeferred.
type SideCellSnapshot struct {
	State      int
	Terminal   int
	IsAccept   bool
	ShiftState int
	Rule       int
}

// ConflictSnapshot mirrors one Conflict for reload.
type ConflictSnapshot struct {
	Kind       int
	State      int
	Terminal   int
	Rule       int
	ShiftState int
	RuleB      int
}

// RawSnapshot is a CompiledTable flattened into plain, serializable fields:
// the six row-displacement arrays (base/check/data for actions and gotos),
// the rule table, the state-symbol table, and the symbol map. This is the
// shape the persist package's binary codec encodes; table itself never reads
// or writes bytes.
type RawSnapshot struct {
	Mode         int
	NumStates    int
	NumTerminals int

	ActionBase  []int
	ActionCheck []int
	ActionData  []uint32
	ActionSide  []SideCellSnapshot

	GotoBase  []int
	GotoCheck []int
	GotoData  []uint32

	StateSymbol    []int
	HasStateSymbol []bool

	Rules       []RuleSnapshot
	Symbols     []SymbolSnapshot
	Conflicts   []ConflictSnapshot
	Fingerprint [16]byte
}

// Snapshot flattens t into a RawSnapshot suitable for serialization.
func (t *CompiledTable) Snapshot() RawSnapshot {
	side := make([]SideCellSnapshot, 0, len(t.actSide))
	for key, entry := range t.actSide {
		side = append(side, SideCellSnapshot{
			State: key[0], Terminal: key[1],
			IsAccept: entry.isAccept, ShiftState: entry.shiftState, Rule: entry.rule,
		})
	}

	rules := make([]RuleSnapshot, len(t.g.Rules))
	for i, r := range t.g.Rules {
		rules[i] = RuleSnapshot{LHS: int(r.LHS), RHSLen: len(r.RHS), Action: string(r.Action)}
	}

	symbols := make([]SymbolSnapshot, 0, t.g.Symbols.NumTerminals()+len(t.g.Symbols.NonTerminals()))
	for _, id := range t.g.Symbols.Terminals() {
		symbols = append(symbols, SymbolSnapshot{Name: t.g.Symbols.Name(id), IsTerminal: true})
	}
	for _, id := range t.g.Symbols.NonTerminals() {
		symbols = append(symbols, SymbolSnapshot{Name: t.g.Symbols.Name(id), IsTerminal: false})
	}

	stateSymbol := make([]int, len(t.stateSymbol))
	for i, s := range t.stateSymbol {
		stateSymbol[i] = int(s)
	}

	conflicts := make([]ConflictSnapshot, len(t.conflicts))
	for i, c := range t.conflicts {
		conflicts[i] = ConflictSnapshot{
			Kind: int(c.Kind), State: c.State, Terminal: int(c.Terminal),
			Rule: int(c.Rule), ShiftState: c.ShiftState, RuleB: int(c.RuleB),
		}
	}

	return RawSnapshot{
		Mode:           int(t.mode),
		NumStates:      t.numStates,
		NumTerminals:   t.g.Symbols.NumTerminals(),
		ActionBase:     append([]int{}, t.actions.Base...),
		ActionCheck:    append([]int{}, t.actions.Check...),
		ActionData:     append([]uint32{}, t.actions.Data...),
		ActionSide:     side,
		GotoBase:       append([]int{}, t.gotos.Base...),
		GotoCheck:      append([]int{}, t.gotos.Check...),
		GotoData:       append([]uint32{}, t.gotos.Data...),
		StateSymbol:    stateSymbol,
		HasStateSymbol: append([]bool{}, t.hasStateSymbol...),
		Rules:          rules,
		Symbols:        symbols,
		Conflicts:      conflicts,
		Fingerprint:    t.fingerprint,
	}
}

// FromSnapshot reconstructs a CompiledTable sufficient to drive a
// runtime.Parser from a RawSnapshot. The reconstructed table answers Action,
// Goto, RuleInfo, RuleAction, SymbolName, ExpectedTerminals, and StateSymbol
// exactly as the original did; it cannot be fed back into Build or Compile,
// since rule RHS symbols and terminal precedence are not part of the
// persisted layout. This is a runtime-only reload, not a grammar round-trip.
func FromSnapshot(s RawSnapshot) *CompiledTable {
	tab := symbol.New()
	for _, sym := range s.Symbols {
		if sym.IsTerminal {
			tab.DeclareTerminal(sym.Name)
		} else {
			tab.DeclareNonTerminal(sym.Name)
		}
	}
	tab.Renumber()

	rules := make([]grammar.Rule, len(s.Rules))
	for i, rs := range s.Rules {
		rules[i] = grammar.Rule{
			LHS:    symbol.ID(rs.LHS),
			RHS:    make(grammar.Production, rs.RHSLen),
			Action: grammar.Action(rs.Action),
		}
	}
	g := &grammar.Grammar{Symbols: tab, Rules: rules}

	actSide := make(map[[2]int]sideEntry, len(s.ActionSide))
	for _, c := range s.ActionSide {
		actSide[[2]int{c.State, c.Terminal}] = sideEntry{isAccept: c.IsAccept, shiftState: c.ShiftState, rule: c.Rule}
	}

	stateSymbol := make([]symbol.ID, len(s.StateSymbol))
	for i, id := range s.StateSymbol {
		stateSymbol[i] = symbol.ID(id)
	}

	conflicts := make([]Conflict, len(s.Conflicts))
	for i, c := range s.Conflicts {
		conflicts[i] = Conflict{
			Kind: ConflictKind(c.Kind), State: c.State, Terminal: symbol.ID(c.Terminal),
			Rule: grammar.RuleID(c.Rule), ShiftState: c.ShiftState, RuleB: grammar.RuleID(c.RuleB),
		}
	}

	return &CompiledTable{
		g:    g,
		mode: automaton.Mode(s.Mode),
		actions: &rowDisplacement{
			Base:  append([]int{}, s.ActionBase...),
			Check: append([]int{}, s.ActionCheck...),
			Data:  append([]uint32{}, s.ActionData...),
		},
		actSide: actSide,
		gotos: &rowDisplacement{
			Base:  append([]int{}, s.GotoBase...),
			Check: append([]int{}, s.GotoCheck...),
			Data:  append([]uint32{}, s.GotoData...),
		},
		numStates:      s.NumStates,
		conflicts:      conflicts,
		stateSymbol:    stateSymbol,
		hasStateSymbol: append([]bool{}, s.HasStateSymbol...),
		fingerprint:    s.Fingerprint,
	}
}
