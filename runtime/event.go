package runtime

import (
	"github.com/dekarrin/gazelle/grammar"
	"github.com/dekarrin/gazelle/symbol"
)

// EventKind distinguishes the three event shapes the driver can emit.
type EventKind int

const (
	EventReduce EventKind = iota
	EventAccept
	EventError
)

// Event is emitted once per driver step that does work: one per reduction,
// one on acceptance, one per parse error (whether or not a caller later
// recovers from it). Shifts are not events —
// they are the ordinary progress between events.
type Event struct {
	Kind EventKind

	// Reduce fields.
	Rule     grammar.RuleID
	PopCount int

	// Error fields.
	Terminal symbol.ID
	State    int
}
