// Package recovery implements bounded minimum-cost error repair: on a parse
// error, explore Insert/Delete edits to the remaining token buffer with a
// best-first search until the parser can shift three consecutive real tokens
// without error, then mutate the real parser to that resynchronized state
// and resume. Search nodes are plain values over a container/heap priority
// queue; no pointer graph.
package recovery

import (
	"container/heap"

	"github.com/dekarrin/gazelle/gxerrors"
	"github.com/dekarrin/gazelle/runtime"
	"github.com/dekarrin/gazelle/symbol"
	"github.com/dekarrin/gazelle/table"
)

// RepairKind distinguishes the two edits the search may propose.
type RepairKind int

const (
	Insert RepairKind = iota
	Delete
)

func (k RepairKind) String() string {
	if k == Insert {
		return "insert"
	}
	return "delete"
}

// Repair is one edit to the token buffer: insert a synthesized terminal, or
// delete the next real one.
type Repair struct {
	Kind     RepairKind
	Terminal symbol.ID
}

// RecoveryInfo is one completed repair: where it started in the token
// buffer, and the ordered list of edits that resynchronized the parse. Each
// one contributes one diagnostic.
type RecoveryInfo struct {
	Location int
	Repairs  []Repair
}

// DefaultBudget bounds the number of search-node expansions Recover will
// perform before giving up, when the caller passes no budget of its own
// (config.Limits.MaxRecoveryExpansions is the configurable source).
const DefaultBudget = 2000

// successThreshold is the number of consecutive real tokens that must shift
// cleanly for a candidate state to count as resynchronized.
const successThreshold = 3

type moveKind int

const (
	moveInsert moveKind = iota
	moveDelete
	moveShift
)

type move struct {
	kind     moveKind
	terminal symbol.ID
}

// node is one state of the best-first search: a cloned parser, the position
// it has reached in the real token buffer, the move sequence that got it
// there, and its accumulated cost.
type node struct {
	parser *runtime.Parser
	pos    int
	moves  []move
	cost   int
	seq    int // insertion order, for deterministic tie-break
}

type nodeHeap []*node

func (h nodeHeap) Len() int { return len(h) }
func (h nodeHeap) Less(i, j int) bool {
	if h[i].cost != h[j].cost {
		return h[i].cost < h[j].cost
	}
	return h[i].seq < h[j].seq
}
func (h nodeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap) Push(x interface{}) { *h = append(*h, x.(*node)) }
func (h *nodeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Recover runs the bounded minimum-cost search from p's current (already
// errored) state, starting at tokens[pos]. On success it mutates p in place
// to the resynchronized state (replaying the winning move sequence through
// reducer, so real reductions still fire in order) and returns the
// RecoveryInfo plus the buffer position parsing should resume from. found is
// false if no goal state was reached within budget, in which case p is left
// untouched.
func Recover(p *runtime.Parser, t *table.CompiledTable, tokens []runtime.Token, pos int, reducer runtime.Reducer, budget int) (info *RecoveryInfo, newPos int, found bool) {
	if budget <= 0 {
		budget = DefaultBudget
	}

	pq := &nodeHeap{}
	heap.Init(pq)
	seq := 0
	heap.Push(pq, &node{parser: p.Clone(), pos: pos, seq: seq})

	expansions := 0
	for pq.Len() > 0 && expansions < budget {
		n := heap.Pop(pq).(*node)
		expansions++

		if resynchronized(n.parser, tokens, n.pos) {
			if err := applyMoves(p, t, tokens, pos, n.moves, reducer); err != nil {
				return nil, pos, false
			}
			return &RecoveryInfo{Location: pos, Repairs: repairsFromMoves(n.moves)}, n.pos, true
		}

		// Zero-cost progress: shift the next real token, if admissible from
		// here once pending reductions settle.
		if n.pos < len(tokens) {
			tok := tokens[n.pos]

			cand := n.parser.Clone()
			if err := cand.Push(tok, runtime.DiscardReducer{}); err == nil {
				seq++
				heap.Push(pq, &node{
					parser: cand,
					pos:    n.pos + 1,
					moves:  appendMove(n.moves, move{kind: moveShift, terminal: tok.Terminal}),
					cost:   n.cost,
					seq:    seq,
				})
			}

			// Delete: drop the offending real token outright.
			seq++
			heap.Push(pq, &node{
				parser: n.parser.Clone(),
				pos:    n.pos + 1,
				moves:  appendMove(n.moves, move{kind: moveDelete, terminal: tok.Terminal}),
				cost:   n.cost + 1,
				seq:    seq,
			})
		}

		// Insert: try every terminal currently admissible at the top state.
		for _, term := range t.ExpectedTerminals(n.parser.TopState()) {
			cand := n.parser.Clone()
			synthetic := runtime.NewToken(term, "<inserted:"+t.SymbolName(term)+">")
			if err := cand.Push(synthetic, runtime.DiscardReducer{}); err != nil {
				continue
			}
			seq++
			heap.Push(pq, &node{
				parser: cand,
				pos:    n.pos,
				moves:  appendMove(n.moves, move{kind: moveInsert, terminal: term}),
				cost:   n.cost + 1,
				seq:    seq,
			})
		}
	}

	return nil, pos, false
}

func appendMove(moves []move, m move) []move {
	out := make([]move, len(moves)+1)
	copy(out, moves)
	out[len(moves)] = m
	return out
}

// resynchronized reports whether, from p's state and tokens[pos:], the next
// successThreshold real tokens (or all remaining, if fewer) can be shifted
// without error, or — if none remain — whether the parser can finish
// cleanly. It never mutates p.
func resynchronized(p *runtime.Parser, tokens []runtime.Token, pos int) bool {
	remaining := len(tokens) - pos
	if remaining <= 0 {
		clone := p.Clone()
		_, err := clone.Finish(runtime.DiscardReducer{})
		return err == nil
	}

	n := successThreshold
	if remaining < n {
		n = remaining
	}
	clone := p.Clone()
	for i := 0; i < n; i++ {
		if err := clone.Push(tokens[pos+i], runtime.DiscardReducer{}); err != nil {
			return false
		}
	}
	return true
}

// applyMoves replays a winning move sequence against the real parser p,
// using the caller's real reducer so reductions along the resynchronized
// path still produce real values.
func applyMoves(p *runtime.Parser, t *table.CompiledTable, tokens []runtime.Token, startPos int, moves []move, reducer runtime.Reducer) error {
	real := startPos
	for _, m := range moves {
		switch m.kind {
		case moveInsert:
			synthetic := runtime.NewToken(m.terminal, "<inserted:"+t.SymbolName(m.terminal)+">")
			if err := p.Push(synthetic, reducer); err != nil {
				return err
			}
		case moveDelete:
			real++
		case moveShift:
			if err := p.Push(tokens[real], reducer); err != nil {
				return err
			}
			real++
		}
	}
	return nil
}

func repairsFromMoves(moves []move) []Repair {
	var out []Repair
	for _, m := range moves {
		switch m.kind {
		case moveInsert:
			out = append(out, Repair{Kind: Insert, Terminal: m.terminal})
		case moveDelete:
			out = append(out, Repair{Kind: Delete, Terminal: m.terminal})
		}
	}
	return out
}

// DriveWithRecovery parses tokens against t, invoking Recover whenever Push
// reports a parse error and resuming from the repaired position, until
// either acceptance or a failure recovery could not resolve. Recovery can
// fire any number of times across one input. It is built on top of the
// single-shot Recover above rather than part of the core driver, so callers
// who want to implement their own recovery policy can ignore it and call
// Recover directly.
func DriveWithRecovery(t *table.CompiledTable, tokens []runtime.Token, reducer runtime.Reducer, budget int) (runtime.Value, []RecoveryInfo, error) {
	p := runtime.New(t, 0)
	var recoveries []RecoveryInfo

	i := 0
	for i < len(tokens) {
		err := p.Push(tokens[i], reducer)
		if err == nil {
			i++
			continue
		}

		pe, isParseErr := err.(*gxerrors.ParseError)
		if !isParseErr || pe.Wrapped != nil {
			return nil, recoveries, err
		}

		info, newPos, ok := Recover(p, t, tokens, i, reducer, budget)
		if !ok {
			return nil, recoveries, err
		}
		recoveries = append(recoveries, *info)
		i = newPos
	}

	// A missing closer at the very end of input never trips the loop above,
	// since every real token shifts cleanly; it only surfaces once Finish
	// demands acceptance. Recover still applies here with pos ==
	// len(tokens): no real tokens remain to shift or delete, only candidate
	// inserts.
	val, err := p.Finish(reducer)
	for err != nil {
		pe, isParseErr := err.(*gxerrors.ParseError)
		if !isParseErr || pe.Wrapped != nil {
			break
		}
		info, newPos, ok := Recover(p, t, tokens, i, reducer, budget)
		if !ok {
			break
		}
		recoveries = append(recoveries, *info)
		i = newPos
		val, err = p.Finish(reducer)
	}

	return val, recoveries, err
}
