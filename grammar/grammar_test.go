package grammar

import (
	"testing"

	"github.com/dekarrin/gazelle/symbol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildArith returns the classic purple-dragon arithmetic grammar:
//
//	E -> E + T | T
//	T -> T * F | F
//	F -> NUM | ( E )
func buildArith(t *testing.T) *Grammar {
	b := NewBuilder()
	plus := b.Terminal("PLUS")
	star := b.Terminal("STAR")
	lparen := b.Terminal("LPAREN")
	rparen := b.Terminal("RPAREN")
	num := b.Terminal("NUM")
	_ = plus
	_ = star
	_ = lparen
	_ = rparen
	_ = num

	b.NonTerminal("E")
	b.NonTerminal("T")
	b.NonTerminal("F")
	b.Start("E")

	b.Rule("E", []string{"E", "PLUS", "T"})
	b.Rule("E", []string{"T"})
	b.Rule("T", []string{"T", "STAR", "F"})
	b.Rule("T", []string{"F"})
	b.Rule("F", []string{"NUM"})
	b.Rule("F", []string{"LPAREN", "E", "RPAREN"})

	g, err := b.Build()
	require.NoError(t, err)
	return g
}

func Test_Builder_Build_augmentsWithSyntheticStartRule(t *testing.T) {
	assert := assert.New(t)
	g := buildArith(t)

	assert.Equal(AugmentedRule, RuleID(0))
	aug := g.Rules[0]
	assert.Equal(g.AugStart, aug.LHS)
	assert.Equal(Production{g.Start, symbol.EndOfInput}, aug.RHS)
}

func Test_Builder_Build_missingStart_isGrammarError(t *testing.T) {
	assert := assert.New(t)
	b := NewBuilder()
	b.NonTerminal("E")
	_, err := b.Build()
	assert.Error(err)
}

func Test_Builder_Build_undeclaredSymbol_isGrammarError(t *testing.T) {
	assert := assert.New(t)
	b := NewBuilder()
	b.NonTerminal("E")
	b.Start("E")
	b.Rule("E", []string{"NOPE"})
	_, err := b.Build()
	assert.Error(err)
}

func Test_Builder_Build_derivesPrecedenceFromRightmostTerminal(t *testing.T) {
	assert := assert.New(t)

	b := NewBuilder()
	b.TerminalPrec("PLUS", 1, symbol.AssocLeft)
	b.TerminalPrec("STAR", 2, symbol.AssocLeft)
	b.Terminal("NUM")
	b.NonTerminal("E")
	b.Start("E")
	b.Rule("E", []string{"E", "PLUS", "E"})
	b.Rule("E", []string{"E", "STAR", "E"})
	b.Rule("E", []string{"NUM"})

	g, err := b.Build()
	assert.NoError(err)

	// rule 0 is the augmented rule; user rules follow in declaration order.
	plusRule := g.Rules[1]
	starRule := g.Rules[2]
	assert.Equal(1, plusRule.Prec.Level)
	assert.Equal(2, starRule.Prec.Level)
}

func Test_Builder_Build_explicitPrecedenceOverridesDerived(t *testing.T) {
	assert := assert.New(t)

	b := NewBuilder()
	b.TerminalPrec("PLUS", 1, symbol.AssocLeft)
	b.Terminal("NUM")
	b.NonTerminal("E")
	b.Start("E")
	b.Rule("E", []string{"E", "PLUS", "E"}, WithPrecedence(9, symbol.AssocRight))
	b.Rule("E", []string{"NUM"})

	g, err := b.Build()
	assert.NoError(err)
	assert.Equal(symbol.Precedence{Level: 9, Assoc: symbol.AssocRight}, g.Rules[1].Prec)
}

func Test_NonTerminals_areContiguousAfterTerminals(t *testing.T) {
	assert := assert.New(t)
	g := buildArith(t)

	for _, nt := range g.NonTerminals() {
		assert.False(g.Symbols.IsTerminal(nt))
		assert.GreaterOrEqual(int(nt), g.Symbols.NumTerminals())
	}
}
