// Package symbol implements the interned symbol table used throughout the
// grammar construction pipeline. Every terminal and non-terminal name is
// assigned a stable integer ID the moment it is declared; the rest of the
// pipeline (grammar, automaton, table, runtime) works with those IDs rather
// than strings, the same way the purple dragon book's algorithms are
// normally described over "symbol indices" rather than names.
package symbol

import "fmt"

// ID is a symbol's interned identifier. Terminal IDs occupy [0, T]; slot 0 is
// reserved for end-of-input. Non-terminal IDs occupy [T+1, T+N].
type ID int

// EndOfInput is the reserved terminal ID denoting end-of-input ("$" in the
// textbook notation).
const EndOfInput ID = 0

// Assoc is the associativity of a terminal's declared precedence.
type Assoc int

const (
	AssocNone Assoc = iota
	AssocLeft
	AssocRight
	AssocNonAssoc
)

func (a Assoc) String() string {
	switch a {
	case AssocLeft:
		return "left"
	case AssocRight:
		return "right"
	case AssocNonAssoc:
		return "nonassoc"
	default:
		return "none"
	}
}

// Precedence is a (level, associativity) pair. Higher Level binds tighter.
// A zero-value Precedence (Level 0, AssocNone) means "no declared
// precedence".
type Precedence struct {
	Level int
	Assoc Assoc
}

// IsZero reports whether p is the absent-precedence value.
func (p Precedence) IsZero() bool {
	return p.Level == 0 && p.Assoc == AssocNone
}

func (p Precedence) String() string {
	if p.IsZero() {
		return "(none)"
	}
	return fmt.Sprintf("%d/%s", p.Level, p.Assoc)
}

// Kind partitions symbols into terminals and non-terminals.
type Kind int

const (
	Terminal Kind = iota
	NonTerminal
)

func (k Kind) String() string {
	if k == Terminal {
		return "terminal"
	}
	return "non-terminal"
}

// entry is the table's bookkeeping record for one interned symbol.
type entry struct {
	name string
	kind Kind
	prec Precedence
	// dynamic marks a terminal whose precedence is carried at parse time by
	// the token rather than fixed at grammar-construction time; see
	// the Precedence field of runtime.Token.
	dynamic bool
}

// ntPending is the provisional ID range handed out to non-terminals before
// Renumber packs them against the terminal range. Provisional entries live
// in their own slice, indexed by id - ntPending, so the provisional range
// never costs more than the non-terminals actually declared.
const ntPending ID = 1 << 30

// Table is the bidirectional interned symbol table for one grammar. The
// zero value is not usable; construct with New.
type Table struct {
	byName map[string]ID
	byID   []entry // terminals in [0, numT), then renumbered non-terminals
	nts    []entry // non-terminals declared since the last Renumber
	numT   int
}

// New returns an empty Table with slot 0 pre-assigned to end-of-input.
func New() *Table {
	t := &Table{
		byName: map[string]ID{},
		byID:   make([]entry, 1),
	}
	t.byID[0] = entry{name: "$", kind: Terminal}
	t.byName["$"] = EndOfInput
	t.numT = 1
	return t
}

// ent returns the bookkeeping record for id, wherever it currently lives.
func (t *Table) ent(id ID) *entry {
	if id >= ntPending {
		return &t.nts[id-ntPending]
	}
	return &t.byID[id]
}

// DeclareTerminal interns a terminal name and returns its ID. Declaring the
// same name twice returns the existing ID without modifying its precedence;
// use SetPrecedence to change it. Terminals must all be declared before the
// first Renumber, so their IDs stay contiguous in [0, T].
func (t *Table) DeclareTerminal(name string) ID {
	if id, ok := t.byName[name]; ok {
		return id
	}
	id := ID(t.numT)
	t.numT++
	t.byName[name] = id
	t.byID = append(t.byID, entry{name: name, kind: Terminal})
	return id
}

// DeclareNonTerminal interns a non-terminal name and returns its ID. The ID
// is provisional until Renumber assigns the final one.
func (t *Table) DeclareNonTerminal(name string) ID {
	if id, ok := t.byName[name]; ok {
		return id
	}
	id := ntPending + ID(len(t.nts))
	t.nts = append(t.nts, entry{name: name, kind: NonTerminal})
	t.byName[name] = id
	return id
}

// SetPrecedence records the static precedence and associativity for a
// terminal. The kind of id is not checked: a non-terminal ID is accepted
// and its precedence recorded, and an unknown ID panics with an index
// error. The package's own builder only ever passes terminal IDs.
func (t *Table) SetPrecedence(id ID, prec Precedence) {
	t.ent(id).prec = prec
}

// SetDynamic marks a terminal as carrying its precedence at parse time
// rather than (or in addition to) its declared static precedence.
func (t *Table) SetDynamic(id ID, dynamic bool) {
	t.ent(id).dynamic = dynamic
}

// Precedence returns the declared static precedence of id.
func (t *Table) Precedence(id ID) Precedence {
	return t.ent(id).prec
}

// IsDynamic reports whether id was declared to carry runtime precedence.
func (t *Table) IsDynamic(id ID) bool {
	return t.ent(id).dynamic
}

// Name returns the interned name of id.
func (t *Table) Name(id ID) string {
	return t.ent(id).name
}

// Lookup returns the ID for name and whether it was found.
func (t *Table) Lookup(name string) (ID, bool) {
	id, ok := t.byName[name]
	return id, ok
}

// KindOf returns whether id names a terminal or non-terminal.
func (t *Table) KindOf(id ID) Kind {
	return t.ent(id).kind
}

// IsTerminal reports whether id is in the terminal range.
func (t *Table) IsTerminal(id ID) bool {
	return t.ent(id).kind == Terminal
}

// NumTerminals returns the number of declared terminals, including
// end-of-input.
func (t *Table) NumTerminals() int {
	return t.numT
}

// Renumber reassigns non-terminal IDs so they occupy the contiguous range
// [T, T+N) immediately following the terminal range [0, T). Already
// renumbered non-terminals keep their IDs; provisional ones are appended in
// declaration order, which keeps renumbering deterministic across repeated
// calls on equivalent tables. It must be called after all terminals and
// non-terminals have been declared and before the table is used to build an
// automaton; callers that only use Grammar.Build never need to call it
// directly since Build does so internally.
func (t *Table) Renumber() map[ID]ID {
	remap := make(map[ID]ID, len(t.byID)+len(t.nts))
	for id := ID(0); id < ID(len(t.byID)); id++ {
		remap[id] = id
	}
	for i := range t.nts {
		old := ntPending + ID(i)
		nw := ID(len(t.byID))
		t.byID = append(t.byID, t.nts[i])
		t.byName[t.nts[i].name] = nw
		remap[old] = nw
	}
	t.nts = nil
	return remap
}

// Terminals returns the IDs of all declared terminals, including
// end-of-input, in ascending order.
func (t *Table) Terminals() []ID {
	ids := make([]ID, 0, t.numT)
	for id := ID(0); id < ID(t.numT); id++ {
		ids = append(ids, id)
	}
	return ids
}

// NonTerminals returns the IDs of all declared non-terminals in ascending
// order. Renumber must have been called first for this range to be
// contiguous and meaningful to callers outside the package.
func (t *Table) NonTerminals() []ID {
	ids := make([]ID, 0, len(t.byID)-t.numT)
	for id := ID(t.numT); id < ID(len(t.byID)); id++ {
		ids = append(ids, id)
	}
	return ids
}
