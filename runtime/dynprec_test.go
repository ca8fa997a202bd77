package runtime

import (
	"testing"

	"github.com/dekarrin/gazelle/automaton"
	"github.com/dekarrin/gazelle/grammar"
	"github.com/dekarrin/gazelle/symbol"
	"github.com/dekarrin/gazelle/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Dynamic-precedence equivalence: a single self-recursive rule
// "expr = expr OP expr | atom" where OP's precedence and associativity
// travel with the token, compared against the same input parsed by a
// statically stratified three-level expression grammar. Both must reduce in
// the same order.

// buildDynamicOpGrammar returns the single-rule grammar `expr = expr OP expr
// | atom`, where OP is declared dynamic so every expr/OP/expr cell is left as
// a ShiftOrReduce, deferred to the token's own runtime precedence.
func buildDynamicOpGrammar(t *testing.T) (*grammar.Grammar, symbol.ID, symbol.ID) {
	b := grammar.NewBuilder()
	opID := b.DynamicTerminal("OP")
	atomID := b.Terminal("ATOM")
	b.NonTerminal("expr")
	b.Start("expr")
	b.Rule("expr", []string{"expr", "OP", "expr"}, grammar.WithAction("binop"))
	b.Rule("expr", []string{"ATOM"})
	g, err := b.Build()
	require.NoError(t, err)
	opID, _ = g.Symbols.Lookup("OP")
	atomID, _ = g.Symbols.Lookup("ATOM")
	return g, opID, atomID
}

// buildStratifiedGrammar returns the classical three-level expression
// grammar `E -> E + T | T`, `T -> T * F | F`, `F -> atom ^ F | atom` with
// PLUS/STAR statically left-associative and CARET statically
// right-associative, the static-precedence equivalent of the single
// dynamic-precedence rule above for exactly these three operators.
func buildStratifiedGrammar(t *testing.T) (*grammar.Grammar, map[string]symbol.ID) {
	b := grammar.NewBuilder()
	ids := map[string]symbol.ID{}
	ids["PLUS"] = b.TerminalPrec("PLUS", 1, symbol.AssocLeft)
	ids["STAR"] = b.TerminalPrec("STAR", 2, symbol.AssocLeft)
	ids["CARET"] = b.TerminalPrec("CARET", 3, symbol.AssocRight)
	ids["ATOM"] = b.Terminal("ATOM")
	b.NonTerminal("E")
	b.NonTerminal("T")
	b.NonTerminal("F")
	b.Start("E")
	b.Rule("E", []string{"E", "PLUS", "T"}, grammar.WithAction("add"))
	b.Rule("E", []string{"T"})
	b.Rule("T", []string{"T", "STAR", "F"}, grammar.WithAction("mul"))
	b.Rule("T", []string{"F"})
	b.Rule("F", []string{"ATOM", "CARET", "F"}, grammar.WithAction("pow"))
	b.Rule("F", []string{"ATOM"})
	g, err := b.Build()
	require.NoError(t, err)
	for name := range ids {
		id, _ := g.Symbols.Lookup(name)
		ids[name] = id
	}
	return g, ids
}

// dynOpSpec is one operand/operator pair in a sequence atom0 op1 atom1 op2
// atom2 ...; opName selects which stratified terminal the operator
// corresponds to, and level/assoc carry the same meaning dynamically.
type dynOpSpec struct {
	opName string
	level  int
	assoc  symbol.Assoc
}

// parseDynamicShape runs the atom/operator sequence through the
// dynamic-precedence grammar and
// returns the parenthesization it produces.
func parseDynamicShape(t *testing.T, atoms []string, ops []dynOpSpec) string {
	g, opID, atomID := buildDynamicOpGrammar(t)
	ct, err := table.Compile(g, automaton.ModeLALR1)
	require.NoError(t, err)

	p := New(ct, 0)
	rec := ReducerFunc(func(rule grammar.RuleID, action grammar.Action, lhs symbol.ID, rhs []Value) (Value, error) {
		if action == "binop" {
			return "(" + valueOf(rhs[0]) + valueOf(rhs[1].(Token)) + valueOf(rhs[2]) + ")", nil
		}
		return rhs[0], nil
	})

	require.NoError(t, p.Push(NewToken(atomID, atoms[0]), rec))
	for i, op := range ops {
		tok := WithPrecedence(opID, opSymbolFor(op.opName), symbol.Precedence{Level: op.level, Assoc: op.assoc})
		require.NoError(t, p.Push(tok, rec))
		require.NoError(t, p.Push(NewToken(atomID, atoms[i+1]), rec))
	}
	val, err := p.Finish(rec)
	require.NoError(t, err)
	return val.(string)
}

// parseStratifiedShape runs the same atom/operator sequence through the
// statically stratified grammar, selecting PLUS/STAR/CARET by opName.
func parseStratifiedShape(t *testing.T, atoms []string, ops []dynOpSpec) string {
	g, ids := buildStratifiedGrammar(t)
	ct, err := table.Compile(g, automaton.ModeLALR1)
	require.NoError(t, err)

	p := New(ct, 0)
	rec := ReducerFunc(func(rule grammar.RuleID, action grammar.Action, lhs symbol.ID, rhs []Value) (Value, error) {
		switch action {
		case "add":
			return "(" + valueOf(rhs[0]) + "+" + valueOf(rhs[2]) + ")", nil
		case "mul":
			return "(" + valueOf(rhs[0]) + "*" + valueOf(rhs[2]) + ")", nil
		case "pow":
			return "(" + valueOf(rhs[0]) + "^" + valueOf(rhs[2]) + ")", nil
		default:
			return rhs[0], nil
		}
	})

	require.NoError(t, p.Push(NewToken(ids["ATOM"], atoms[0]), rec))
	for i, op := range ops {
		require.NoError(t, p.Push(NewToken(ids[op.opName], opSymbolFor(op.opName)), rec))
		require.NoError(t, p.Push(NewToken(ids["ATOM"], atoms[i+1]), rec))
	}
	val, err := p.Finish(rec)
	require.NoError(t, err)
	return val.(string)
}

func opSymbolFor(name string) string {
	switch name {
	case "PLUS":
		return "+"
	case "STAR":
		return "*"
	case "CARET":
		return "^"
	default:
		return "?"
	}
}

// Test_DynamicPrecedence_matchesStaticallyStratifiedGrammar checks that a
// fixed set of operator sequences over {+, *, ^}, of up to five operands,
// parses identically
// whether the grammar encodes precedence statically (one rule per level) or
// the operator tokens carry it at parse time against a single
// self-recursive rule.
func Test_DynamicPrecedence_matchesStaticallyStratifiedGrammar(t *testing.T) {
	specs := [][]dynOpSpec{
		{{"PLUS", 1, symbol.AssocLeft}, {"STAR", 2, symbol.AssocLeft}},
		{{"STAR", 2, symbol.AssocLeft}, {"PLUS", 1, symbol.AssocLeft}},
		{{"PLUS", 1, symbol.AssocLeft}, {"PLUS", 1, symbol.AssocLeft}},
		{{"STAR", 2, symbol.AssocLeft}, {"STAR", 2, symbol.AssocLeft}},
		{{"CARET", 3, symbol.AssocRight}, {"CARET", 3, symbol.AssocRight}},
		{
			{"PLUS", 1, symbol.AssocLeft},
			{"STAR", 2, symbol.AssocLeft},
			{"CARET", 3, symbol.AssocRight},
			{"PLUS", 1, symbol.AssocLeft},
		},
	}

	for _, ops := range specs {
		atoms := make([]string, len(ops)+1)
		for i := range atoms {
			atoms[i] = string(rune('a' + i))
		}

		dyn := parseDynamicShape(t, atoms, ops)
		static := parseStratifiedShape(t, atoms, ops)
		assert.Equal(t, static, dyn, "operator sequence %v", ops)
	}
}

// A chain of equal-level right-associative operators groups rightward.
func Test_DynamicPrecedence_rightAssociativeChain(t *testing.T) {
	ops := []dynOpSpec{{"CARET", 2, symbol.AssocRight}, {"CARET", 2, symbol.AssocRight}}
	got := parseDynamicShape(t, []string{"1", "2", "3"}, ops)
	assert.Equal(t, "(1^(2^3))", got)
}

// Mixed levels: 1 + 2 * 3 with the usual levels groups as 1 + (2*3).
func Test_DynamicPrecedence_mixedLevels(t *testing.T) {
	ops := []dynOpSpec{{"PLUS", 1, symbol.AssocLeft}, {"STAR", 2, symbol.AssocLeft}}
	got := parseDynamicShape(t, []string{"1", "2", "3"}, ops)
	assert.Equal(t, "(1+(2*3))", got)
}
