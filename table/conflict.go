package table

import (
	"github.com/dekarrin/gazelle/grammar"
	"github.com/dekarrin/gazelle/symbol"
)

// ConflictKind distinguishes the two ways a table cell can receive more than
// one candidate action.
type ConflictKind int

const (
	ShiftReduce ConflictKind = iota
	ReduceReduce
)

// Conflict records one unresolved-by-default cell. The table is
// still produced with a deterministic resolution applied; conflicts are
// collected here for the caller to inspect or ignore, never to block table
// production.
type Conflict struct {
	Kind ConflictKind

	State    int
	Terminal symbol.ID

	// Rule is the reduce rule involved. For ReduceReduce, it is the
	// earlier-numbered (kept) rule.
	Rule grammar.RuleID

	// ShiftState is set for ShiftReduce conflicts: the state the shift
	// would have gone to.
	ShiftState int

	// RuleB is set for ReduceReduce conflicts: the later-numbered (losing)
	// rule.
	RuleB grammar.RuleID
}

func (c Conflict) String() string {
	switch c.Kind {
	case ShiftReduce:
		return "shift/reduce conflict"
	case ReduceReduce:
		return "reduce/reduce conflict"
	default:
		return "conflict"
	}
}
