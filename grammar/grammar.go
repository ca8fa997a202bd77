// Package grammar holds the rule set of a context-free grammar together with
// the symbol table it is built over, a builder for constructing one
// programmatically, the `?`/`*`/`+`/`%` modifier normalizer, and the
// FIRST/FOLLOW fixed-point computation the automaton package consumes.
//
// There is no grammar description file syntax here; grammars are always
// built through Builder, a symbol-interning builder API.
package grammar

import (
	"fmt"
	"strings"

	"github.com/dekarrin/gazelle/gxerrors"
	"github.com/dekarrin/gazelle/symbol"
)

// Production is the (possibly empty) right-hand side of a Rule, as a
// sequence of symbol IDs.
type Production []symbol.ID

// Equal reports whether p and o contain the same symbols in the same order.
func (p Production) Equal(o Production) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// Action identifies the semantic action a reducer should run for a rule. For
// ordinary user rules it is whatever name the caller supplied to the
// builder; for rules synthesized by the normalizer it is one of the tagged
// constants below so the runtime reducer interface can materialize the
// optional/vector value without user code.
type Action string

const (
	ActionOptSome   Action = "OptSome"
	ActionOptNone   Action = "OptNone"
	ActionVecEmpty  Action = "VecEmpty"
	ActionVecSingle Action = "VecSingle"
	ActionVecAppend Action = "VecAppend"
)

// Rule is one production of the grammar. Rules are numbered 0..R-1 by their
// position in Grammar.Rules; rule 0 is always the synthetic augmented rule
// S' -> S $.
type Rule struct {
	LHS    symbol.ID
	RHS    Production
	Prec   symbol.Precedence
	Action Action
}

func (r Rule) String(tab *symbol.Table) string {
	var sb strings.Builder
	sb.WriteString(tab.Name(r.LHS))
	sb.WriteString(" ->")
	if len(r.RHS) == 0 {
		sb.WriteString(" ε")
	}
	for _, s := range r.RHS {
		sb.WriteRune(' ')
		sb.WriteString(tab.Name(s))
	}
	return sb.String()
}

// RuleID identifies a rule by its position in Grammar.Rules.
type RuleID int

// AugmentedRule is the reserved ID of the synthetic start rule S' -> S $.
const AugmentedRule RuleID = 0

// Grammar is a normalized, augmented, symbol-resolved grammar ready for
// FIRST/FOLLOW computation and automaton construction.
type Grammar struct {
	Symbols *symbol.Table
	Rules   []Rule

	// Start is the original (pre-augmentation) start non-terminal.
	Start symbol.ID

	// AugStart is the synthetic S' symbol added by augmentation.
	AugStart symbol.ID
}

// RulesFor returns the IDs of every rule whose LHS is lhs, in declaration
// order.
func (g *Grammar) RulesFor(lhs symbol.ID) []RuleID {
	var out []RuleID
	for i, r := range g.Rules {
		if r.LHS == lhs {
			out = append(out, RuleID(i))
		}
	}
	return out
}

// Terminals returns all terminal IDs, including end-of-input.
func (g *Grammar) Terminals() []symbol.ID {
	return g.Symbols.Terminals()
}

// NonTerminals returns all non-terminal IDs, including the augmented start
// symbol.
func (g *Grammar) NonTerminals() []symbol.ID {
	return g.Symbols.NonTerminals()
}

// rawRule is one rule as given to the builder, before resolution: each rhs
// element is either a plain symbol name, or a name carrying one of the
// `?`/`*`/`+`/`%` modifier suffixes recognized by parseModifier.
type rawRule struct {
	lhs    string
	rhs    []string
	prec   symbol.Precedence
	hasPrc bool
	action Action
}

// Builder assembles a Grammar from terminal/non-terminal declarations and
// rules, interning every symbol name it sees along the way. It is the only
// supported way to construct a Grammar; there is no grammar-file parser in
// this package by design.
type Builder struct {
	tab      *symbol.Table
	rules    []rawRule
	start    string
	startSet bool
	err      error
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{tab: symbol.New()}
}

func (b *Builder) fail(format string, a ...interface{}) {
	if b.err == nil {
		b.err = gxerrors.Grammar(format, a...)
	}
}

// Terminal declares a terminal with no static precedence and returns its ID.
func (b *Builder) Terminal(name string) symbol.ID {
	return b.tab.DeclareTerminal(name)
}

// TerminalPrec declares a terminal with a static precedence/associativity.
func (b *Builder) TerminalPrec(name string, level int, assoc symbol.Assoc) symbol.ID {
	id := b.tab.DeclareTerminal(name)
	b.tab.SetPrecedence(id, symbol.Precedence{Level: level, Assoc: assoc})
	return id
}

// DynamicTerminal declares a terminal that carries its precedence at parse
// time via the token rather than (or in addition to) any static value; table
// construction defers the shift/reduce decision for such terminals to the
// runtime.
func (b *Builder) DynamicTerminal(name string) symbol.ID {
	id := b.tab.DeclareTerminal(name)
	b.tab.SetDynamic(id, true)
	return id
}

// NonTerminal declares a non-terminal and returns its ID.
func (b *Builder) NonTerminal(name string) symbol.ID {
	return b.tab.DeclareNonTerminal(name)
}

// Start sets the grammar's start non-terminal by name. It is a grammar
// error to Build without calling Start; a later call replaces the name
// given by an earlier one.
func (b *Builder) Start(name string) {
	b.start = name
	b.startSet = true
}

// RuleOption configures an individual Rule call.
type RuleOption func(*rawRule)

// WithPrecedence overrides the rule's derived precedence (normally taken
// from the rightmost terminal of the RHS) with an explicit one.
func WithPrecedence(level int, assoc symbol.Assoc) RuleOption {
	return func(r *rawRule) {
		r.prec = symbol.Precedence{Level: level, Assoc: assoc}
		r.hasPrc = true
	}
}

// WithAction tags the rule with a user semantic-action identifier, looked
// up by the runtime's Reducer implementation. Rules with no explicit action
// default to the empty Action, which reducers may treat as "default
// construction" (e.g. a CST-only parse).
func WithAction(name string) RuleOption {
	return func(r *rawRule) { r.action = Action(name) }
}

// Rule declares `lhs -> rhs...`. Each element of rhs is either a plain
// symbol name previously declared with Terminal/NonTerminal/DynamicTerminal,
// or a name carrying a single trailing modifier recognized by the
// normalizer: "X?", "X*", "X+", or "X%Y" (one-or-more of X separated by Y).
// An empty rhs denotes an ε-production. Symbol names are resolved and
// modifiers expanded when Build is called, not here, so Rule itself never
// fails.
func (b *Builder) Rule(lhs string, rhs []string, opts ...RuleOption) {
	rr := rawRule{lhs: lhs, rhs: rhs}
	for _, opt := range opts {
		opt(&rr)
	}
	b.rules = append(b.rules, rr)
}

// Build resolves every declared rule, expands `?`/`*`/`+`/`%` modifiers into
// plain synthetic productions (normalize.go), renumbers the symbol table so
// non-terminal IDs are contiguous, derives unset rule precedence from each
// rule's rightmost terminal, augments the grammar with the synthetic start
// rule S' -> S $, and returns the result. Once built, the Grammar is
// immutable.
func (b *Builder) Build() (*Grammar, error) {
	if b.err != nil {
		return nil, b.err
	}
	if !b.startSet {
		return nil, gxerrors.Grammar("grammar has no start symbol; call Start")
	}
	startID, ok := b.tab.Lookup(b.start)
	if !ok {
		return nil, gxerrors.Grammar("start symbol %q was never declared", b.start)
	}
	if b.tab.KindOf(startID) != symbol.NonTerminal {
		return nil, gxerrors.Grammar("start symbol %q is not a non-terminal", b.start)
	}

	n := &normalizer{tab: b.tab, synthetic: map[string]symbol.ID{}}

	var rules []Rule
	for _, rr := range b.rules {
		rhs, err := n.expandRHS(rr.rhs)
		if err != nil {
			return nil, err
		}
		lhsID, ok := b.tab.Lookup(rr.lhs)
		if !ok || b.tab.KindOf(lhsID) != symbol.NonTerminal {
			return nil, gxerrors.Grammar("rule LHS %q is not a declared non-terminal", rr.lhs)
		}
		prec := rr.prec
		if !rr.hasPrc {
			prec = derivePrecedence(b.tab, rhs)
		}
		rules = append(rules, Rule{LHS: lhsID, RHS: rhs, Prec: prec, Action: rr.action})
	}
	rules = append(rules, n.synthesizedRules...)

	remap := b.tab.Renumber()
	for i := range rules {
		rules[i].LHS = remap[rules[i].LHS]
		for j := range rules[i].RHS {
			rules[i].RHS[j] = remap[rules[i].RHS[j]]
		}
	}
	startID = remap[startID]

	augStart := b.tab.DeclareNonTerminal(freshAugmentedName(b.tab, b.start))
	// Renumber again so the freshly declared augmented symbol also lands in
	// the contiguous non-terminal range.
	remap2 := b.tab.Renumber()
	for i := range rules {
		rules[i].LHS = remap2[rules[i].LHS]
		for j := range rules[i].RHS {
			rules[i].RHS[j] = remap2[rules[i].RHS[j]]
		}
	}
	startID = remap2[startID]
	augStart = remap2[augStart]

	augRule := Rule{LHS: augStart, RHS: Production{startID, symbol.EndOfInput}, Action: ""}
	rules = append([]Rule{augRule}, rules...)

	return &Grammar{Symbols: b.tab, Rules: rules, Start: startID, AugStart: augStart}, nil
}

func freshAugmentedName(tab *symbol.Table, start string) string {
	name := start + "'"
	for {
		if _, ok := tab.Lookup(name); !ok {
			return name
		}
		name += "'"
	}
}

// derivePrecedence returns the precedence of the rightmost terminal of rhs,
// used for any rule that carries no explicit precedence of its own.
func derivePrecedence(tab *symbol.Table, rhs Production) symbol.Precedence {
	for i := len(rhs) - 1; i >= 0; i-- {
		if tab.IsTerminal(rhs[i]) {
			return tab.Precedence(rhs[i])
		}
	}
	return symbol.Precedence{}
}

// MustParseProduction is a small test helper that resolves a space-separated
// list of previously declared symbol names against tab. It exists purely to
// keep table-driven tests readable; it is not a grammar-file parser.
func MustParseProduction(tab *symbol.Table, names string) Production {
	names = strings.TrimSpace(names)
	if names == "" {
		return nil
	}
	parts := strings.Fields(names)
	prod := make(Production, len(parts))
	for i, p := range parts {
		id, ok := tab.Lookup(p)
		if !ok {
			panic(fmt.Sprintf("MustParseProduction: unknown symbol %q", p))
		}
		prod[i] = id
	}
	return prod
}
