// Package table builds the action/goto tables from a constructed automaton,
// classifies and resolves shift/reduce and reduce/reduce conflicts, and
// compresses the result into row-displacement (base/check/data) form.
package table

import (
	"fmt"

	"github.com/dekarrin/gazelle/grammar"
)

// ActionType is the kind of action stored in one (state, terminal) cell.
type ActionType int

const (
	Error ActionType = iota
	Shift
	Reduce
	Accept
	ShiftOrReduce
)

func (t ActionType) String() string {
	switch t {
	case Error:
		return "error"
	case Shift:
		return "shift"
	case Reduce:
		return "reduce"
	case Accept:
		return "accept"
	case ShiftOrReduce:
		return "shift-or-reduce"
	default:
		return "unknown"
	}
}

// Action is one cell of the action table. ShiftOrReduce is the
// deferred case used only when the look-ahead terminal carries a runtime
// precedence; the actual decision is taken by the runtime package at parse
// time from the token's attached precedence.
type Action struct {
	Type ActionType

	// ShiftState is used when Type is Shift or ShiftOrReduce.
	ShiftState int

	// Rule is used when Type is Reduce or ShiftOrReduce.
	Rule grammar.RuleID
}

func (a Action) String() string {
	switch a.Type {
	case Shift:
		return fmt.Sprintf("s%d", a.ShiftState)
	case Reduce:
		return fmt.Sprintf("r%d", a.Rule)
	case Accept:
		return "acc"
	case ShiftOrReduce:
		return fmt.Sprintf("s%d/r%d", a.ShiftState, a.Rule)
	default:
		return ""
	}
}
