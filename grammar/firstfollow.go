package grammar

import "github.com/dekarrin/gazelle/symbol"

// TerminalSet is a bitset over terminal IDs, indexed by symbol.ID.
type TerminalSet struct {
	bits []bool
}

// NewTerminalSet returns an empty set sized for numTerminals terminal IDs.
func NewTerminalSet(numTerminals int) *TerminalSet {
	return &TerminalSet{bits: make([]bool, numTerminals)}
}

func (s *TerminalSet) Add(id symbol.ID) bool {
	if s.bits[id] {
		return false
	}
	s.bits[id] = true
	return true
}

func (s *TerminalSet) Has(id symbol.ID) bool {
	return s.bits[id]
}

// AddAll merges o into s and reports whether s changed.
func (s *TerminalSet) AddAll(o *TerminalSet) bool {
	changed := false
	for i, v := range o.bits {
		if v && !s.bits[i] {
			s.bits[i] = true
			changed = true
		}
	}
	return changed
}

// Elements returns the set's members in ascending ID order.
func (s *TerminalSet) Elements() []symbol.ID {
	var out []symbol.ID
	for i, v := range s.bits {
		if v {
			out = append(out, symbol.ID(i))
		}
	}
	return out
}

// FirstFollow holds the three fixed points computed over one grammar:
// NULLABLE (which non-terminals can derive ε), FIRST (the set of terminals
// that can begin a derivation from a symbol), and FOLLOW (the set of
// terminals that can immediately follow a non-terminal in some derivation).
type FirstFollow struct {
	g        *Grammar
	nullable map[symbol.ID]bool
	first    map[symbol.ID]*TerminalSet
	follow   map[symbol.ID]*TerminalSet
}

// Nullable reports whether sym can derive the empty string.
func (ff *FirstFollow) Nullable(sym symbol.ID) bool {
	return ff.nullable[sym]
}

// First returns FIRST(sym).
func (ff *FirstFollow) First(sym symbol.ID) *TerminalSet {
	return ff.first[sym]
}

// Follow returns FOLLOW(sym); sym must be a non-terminal.
func (ff *FirstFollow) Follow(sym symbol.ID) *TerminalSet {
	return ff.follow[sym]
}

// FirstOfSequence computes FIRST(X1 X2 ... Xn) and whether the whole
// sequence is nullable, used by LR(1) closure when propagating lookaheads
// past a dotted symbol (FIRST(βa) in the textbook notation).
func (ff *FirstFollow) FirstOfSequence(seq []symbol.ID) (*TerminalSet, bool) {
	out := NewTerminalSet(ff.g.Symbols.NumTerminals())
	for _, s := range seq {
		out.AddAll(ff.First(s))
		if !ff.Nullable(s) {
			return out, false
		}
	}
	return out, true
}

// Compute runs the NULLABLE/FIRST/FOLLOW fixed point over g: terminals are
// their own FIRST, end-of-input is in FOLLOW of
// the start symbol (here, the augmented start symbol, whose single rule is
// S' -> S $, puts $ in FOLLOW(S) for free), and iteration continues until no
// bitset changes.
func Compute(g *Grammar) *FirstFollow {
	ff := &FirstFollow{
		g:        g,
		nullable: map[symbol.ID]bool{},
		first:    map[symbol.ID]*TerminalSet{},
		follow:   map[symbol.ID]*TerminalSet{},
	}

	numT := g.Symbols.NumTerminals()

	for _, t := range g.Terminals() {
		ff.first[t] = NewTerminalSet(numT)
		ff.first[t].Add(t)
	}
	for _, nt := range g.NonTerminals() {
		ff.first[nt] = NewTerminalSet(numT)
		ff.follow[nt] = NewTerminalSet(numT)
	}

	changed := true
	for changed {
		changed = false

		for _, r := range g.Rules {
			if len(r.RHS) == 0 {
				if !ff.nullable[r.LHS] {
					ff.nullable[r.LHS] = true
					changed = true
				}
				continue
			}

			allNullableSoFar := true
			for _, s := range r.RHS {
				if allNullableSoFar {
					if ff.first[r.LHS].AddAll(ff.first[s]) {
						changed = true
					}
				}
				if !ff.nullable[s] {
					allNullableSoFar = false
					break
				}
			}
			if allNullableSoFar && !ff.nullable[r.LHS] {
				ff.nullable[r.LHS] = true
				changed = true
			}
		}
	}

	changed = true
	for changed {
		changed = false

		for _, r := range g.Rules {
			for i, s := range r.RHS {
				if g.Symbols.IsTerminal(s) {
					continue
				}
				rest := r.RHS[i+1:]
				firstRest, restNullable := ff.FirstOfSequence(rest)
				if ff.follow[s].AddAll(firstRest) {
					changed = true
				}
				if restNullable {
					if ff.follow[s].AddAll(ff.follow[r.LHS]) {
						changed = true
					}
				}
			}
		}
	}

	return ff
}
