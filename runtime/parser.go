package runtime

import (
	"github.com/dekarrin/gazelle/grammar"
	"github.com/dekarrin/gazelle/gxerrors"
	"github.com/dekarrin/gazelle/symbol"
	"github.com/dekarrin/gazelle/table"
)

// Parser is a shift/reduce stack machine driven against an immutable
// table.CompiledTable. It owns a state stack and a parallel value stack;
// both grow and shrink together, with the state stack always one entry
// longer, since the bottom state 0 has no value.
type Parser struct {
	table *table.CompiledTable

	states []int
	values []Value

	// precedences is parallel to values: the runtime precedence captured on
	// shift for dynamic-precedence terminals, or the rule's own precedence
	// on reduce, so a later ShiftOrReduce decision can compare against the
	// rightmost terminal of whatever sits under the current lookahead.
	precedences []symbol.Precedence
	hasPrec     []bool

	maxStackDepth int

	trace func(Event)
}

// RegisterTraceListener installs a callback that receives one Event per
// Reduce, Accept, or Error, in the exact order the driver performs them. A
// caller can build its own CST by watching PopCount without going through a
// Reducer.
func (p *Parser) RegisterTraceListener(listener func(Event)) {
	p.trace = listener
}

func (p *Parser) notify(e Event) {
	if p.trace != nil {
		p.trace(e)
	}
}

// New returns a Parser positioned at state 0, ready to receive tokens via
// Push. maxStackDepth of 0 means unbounded.
func New(t *table.CompiledTable, maxStackDepth int) *Parser {
	return &Parser{
		table:         t,
		states:        []int{0},
		maxStackDepth: maxStackDepth,
	}
}

// top returns the state currently on top of the state stack.
func (p *Parser) top() int {
	return p.states[len(p.states)-1]
}

// TopState exposes the current top-of-stack state, used by the recovery
// package's search to enumerate admissible terminals without reaching into
// unexported fields.
func (p *Parser) TopState() int {
	return p.top()
}

// Table returns the compiled table this parser drives against.
func (p *Parser) Table() *table.CompiledTable {
	return p.table
}

// Clone returns an independent copy of p: a separate pair of stacks over the
// same (immutable, shared) table. Used by the recovery package to explore
// candidate repairs without disturbing the real parse. The clone never
// carries over a trace listener, so speculative moves never reach it.
func (p *Parser) Clone() *Parser {
	c := &Parser{
		table:         p.table,
		maxStackDepth: p.maxStackDepth,
	}
	c.states = append([]int{}, p.states...)
	c.values = append([]Value{}, p.values...)
	c.precedences = append([]symbol.Precedence{}, p.precedences...)
	c.hasPrec = append([]bool{}, p.hasPrec...)
	return c
}

// CanShift answers the lexer-feedback query: is a shift of terminal on the
// current top state admissible? Used for
// typedef disambiguation, where the same lexeme can be classified two ways
// depending on whether the parser would accept it as a type name here.
func (p *Parser) CanShift(terminal symbol.ID) bool {
	act := p.table.Action(p.top(), terminal)
	return act.Type == table.Shift || act.Type == table.ShiftOrReduce
}

// MaybeReduce performs at most one driver step for the given lookahead (nil
// means end-of-input) without ever shifting: if the action on (top,
// lookahead) is Reduce, the reduction is performed through reducer and its
// Event returned; Accept returns an Accept event; Shift and ShiftOrReduce
// return nil with no state change, leaving the shift to the caller. Push is
// the batteries-included composition of this and Shift; the split exists for
// callers implementing their own recovery policy, who need to settle pending
// reductions one at a time against a planned lookahead.
func (p *Parser) MaybeReduce(lookahead *Token, reducer Reducer) (*Event, error) {
	tok := EndOfInput
	if lookahead != nil {
		tok = *lookahead
	}
	act := p.table.Action(p.top(), tok.Terminal)
	switch act.Type {
	case table.Reduce:
		_, rhsLen := p.table.RuleInfo(act.Rule)
		if err := p.reduceOnce(act.Rule, reducer); err != nil {
			return nil, err
		}
		return &Event{Kind: EventReduce, Rule: act.Rule, PopCount: rhsLen}, nil
	case table.Accept:
		return &Event{Kind: EventAccept}, nil
	case table.Shift, table.ShiftOrReduce:
		return nil, nil
	default:
		return nil, p.parseError(tok)
	}
}

// Shift pushes tok unconditionally onto the stacks, bypassing the reduce
// loop. It is for callers that have already planned a valid path (the
// recovery search, once it commits to a repair); shifting a terminal with no
// live shift action corrupts no state but returns an InternalError, since a
// planned path should never contain one.
func (p *Parser) Shift(tok Token) error {
	act := p.table.Action(p.top(), tok.Terminal)
	if act.Type != table.Shift && act.Type != table.ShiftOrReduce {
		return gxerrors.Internal("no shift for state %d on terminal %q", p.top(), p.table.SymbolName(tok.Terminal))
	}
	p.shiftInto(act.ShiftState, tok)
	return nil
}

// Push drives reductions to fixpoint on tok, then performs the shift (or the
// shift branch of a dynamically-resolved ShiftOrReduce), calling reducer once
// per reduction performed along the way. It returns a *gxerrors.ParseError if
// no action exists for (top state, tok.Terminal).
func (p *Parser) Push(tok Token, reducer Reducer) error {
	if err := p.reduceToFixpoint(tok, reducer); err != nil {
		return err
	}

	act := p.table.Action(p.top(), tok.Terminal)
	switch act.Type {
	case table.Shift:
		p.shiftInto(act.ShiftState, tok)
		return nil
	case table.ShiftOrReduce:
		resolved, err := p.resolveDynamic(act, tok, reducer)
		if err != nil {
			return err
		}
		if resolved == table.Shift {
			p.shiftInto(act.ShiftState, tok)
			return nil
		}
		// resolved to Reduce: perform it, then this token is still the
		// lookahead for another pass of the reduce loop followed by shift.
		if err := p.reduceOnce(act.Rule, reducer); err != nil {
			return err
		}
		return p.Push(tok, reducer)
	case table.Accept:
		// only valid lookahead here is end-of-input; treat as a shift of
		// nothing so Finish's caller sees a clean stack of exactly one value.
		return nil
	default:
		return p.parseError(tok)
	}
}

// Finish feeds end-of-input and returns the sole remaining value on
// acceptance.
func (p *Parser) Finish(reducer Reducer) (Value, error) {
	if err := p.reduceToFixpoint(EndOfInput, reducer); err != nil {
		return nil, err
	}
	act := p.table.Action(p.top(), symbol.EndOfInput)
	if act.Type != table.Accept {
		return nil, p.parseError(EndOfInput)
	}
	if len(p.values) != 1 {
		return nil, gxerrors.Internal("parser accepted with %d values on stack, want 1", len(p.values))
	}
	p.notify(Event{Kind: EventAccept})
	return p.values[0], nil
}

// reduceToFixpoint runs the inner reduce loop for as long as the action on
// (top, lookahead) is Reduce.
func (p *Parser) reduceToFixpoint(lookahead Token, reducer Reducer) error {
	for {
		act := p.table.Action(p.top(), lookahead.Terminal)
		if act.Type != table.Reduce {
			return nil
		}
		if err := p.reduceOnce(act.Rule, reducer); err != nil {
			return err
		}
	}
}

// reduceOnce pops a rule's RHS off both stacks, pushes the goto state, calls
// the reducer (or, for a synthetic modifier action, materializes the value
// directly), and pushes the result.
func (p *Parser) reduceOnce(rule grammar.RuleID, reducer Reducer) error {
	lhs, rhsLen := p.table.RuleInfo(rule)
	action := p.table.RuleAction(rule)

	rhsValues := make([]Value, rhsLen)
	copy(rhsValues, p.values[len(p.values)-rhsLen:])

	rhsPrec, hasRhsPrec := p.rhsPrecedence(rhsLen)

	p.values = p.values[:len(p.values)-rhsLen]
	p.precedences = p.precedences[:len(p.precedences)-rhsLen]
	p.hasPrec = p.hasPrec[:len(p.hasPrec)-rhsLen]
	p.states = p.states[:len(p.states)-rhsLen]

	target, ok := p.table.Goto(p.top(), lhs)
	if !ok {
		return gxerrors.Internal("no goto for state %d on non-terminal %q after reducing rule %d", p.top(), p.table.SymbolName(lhs), rule)
	}

	var result Value
	if synthesized, ok := synthesizeValue(action, rhsValues); ok {
		result = synthesized
	} else {
		v, err := reducer.Reduce(rule, action, lhs, rhsValues)
		if err != nil {
			return &gxerrors.ParseError{State: p.top(), Wrapped: err}
		}
		result = v
	}

	p.states = append(p.states, target)
	p.values = append(p.values, result)
	p.precedences = append(p.precedences, rhsPrec)
	p.hasPrec = append(p.hasPrec, hasRhsPrec)

	p.notify(Event{Kind: EventReduce, Rule: rule, PopCount: rhsLen})

	return p.checkDepth()
}

// shiftInto pushes target and tok itself onto the respective stacks; tok is
// the value a reducer sees for this RHS position until some later reduction
// consumes it.
func (p *Parser) shiftInto(target int, tok Token) {
	p.states = append(p.states, target)
	p.values = append(p.values, tok)
	p.precedences = append(p.precedences, tok.Precedence)
	p.hasPrec = append(p.hasPrec, tok.HasPrecedence)
}

// rhsPrecedence scans the trailing rhsLen slots of the precedence stack for
// the rightmost symbol that actually carries a captured precedence — the
// rule's own RHS may end in a non-terminal (as the self-recursive
// `expr = expr OP expr` shape always does once the right operand reduces),
// so the governing precedence is not necessarily at the very top of the
// stack. Shared by reduceOnce (to carry a completed rule's precedence
// forward) and resolveDynamic (to find the candidate reduce rule's
// precedence before it has actually been reduced).
func (p *Parser) rhsPrecedence(rhsLen int) (symbol.Precedence, bool) {
	for i := len(p.hasPrec) - 1; i >= len(p.hasPrec)-rhsLen && i >= 0; i-- {
		if p.hasPrec[i] {
			return p.precedences[i], true
		}
	}
	return symbol.Precedence{}, false
}

func (p *Parser) checkDepth() error {
	if p.maxStackDepth > 0 && len(p.states) > p.maxStackDepth {
		return gxerrors.Internal("parser stack exceeded configured maximum depth %d", p.maxStackDepth)
	}
	return nil
}

// resolveDynamic takes the deferred shift-or-reduce decision: the lookahead
// token's runtime precedence is compared against the candidate
// reduce rule's own governing precedence — found by scanning back over that
// rule's RHS width rather than just peeking the top of stack, since the
// rightmost RHS symbol of a self-recursive rule like `expr = expr OP expr`
// is itself a non-terminal with no precedence of its own once it has already
// reduced — falling back to shift (recorded nowhere, since this is a
// per-parse decision, not a construction-time conflict) when either side
// carries none.
func (p *Parser) resolveDynamic(act table.Action, lookahead Token, reducer Reducer) (table.ActionType, error) {
	_, rhsLen := p.table.RuleInfo(act.Rule)
	stackPrec, hasStackPrec := p.rhsPrecedence(rhsLen)
	if !lookahead.HasPrecedence || !hasStackPrec {
		return table.Shift, nil
	}

	tokPrec := lookahead.Precedence

	switch {
	case stackPrec.Level > tokPrec.Level:
		return table.Reduce, nil
	case tokPrec.Level > stackPrec.Level:
		return table.Shift, nil
	default:
		switch tokPrec.Assoc {
		case symbol.AssocLeft:
			return table.Reduce, nil
		case symbol.AssocRight:
			return table.Shift, nil
		default:
			return table.Shift, nil
		}
	}
}

func (p *Parser) parseError(tok Token) error {
	expected := p.table.ExpectedTerminals(p.top())
	expectedInts := make([]int, len(expected))
	for i, e := range expected {
		expectedInts[i] = int(e)
	}
	p.notify(Event{Kind: EventError, Terminal: tok.Terminal, State: p.top()})
	return &gxerrors.ParseError{
		State:    p.top(),
		Terminal: int(tok.Terminal),
		Expected: expectedInts,
	}
}
