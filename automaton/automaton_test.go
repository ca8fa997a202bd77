package automaton

import (
	"testing"

	"github.com/dekarrin/gazelle/grammar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildArith(t *testing.T) (*grammar.Grammar, *grammar.FirstFollow) {
	b := grammar.NewBuilder()
	b.Terminal("PLUS")
	b.Terminal("STAR")
	b.Terminal("LPAREN")
	b.Terminal("RPAREN")
	b.Terminal("NUM")
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
	return g, grammar.Compute(g)
}

// buildClassicRRConflict is the classic four-rule grammar demonstrating that
// LALR(1) has a reduce/reduce conflict that LR(1) resolves:
//
//	S -> aEc | aFd | bEd | bFc
//	E -> e
//	F -> e
func buildClassicRRConflict(t *testing.T) (*grammar.Grammar, *grammar.FirstFollow) {
	b := grammar.NewBuilder()
	b.Terminal("a")
	b.Terminal("b")
	b.Terminal("c")
	b.Terminal("d")
	b.Terminal("e")
	b.NonTerminal("S")
	b.NonTerminal("E")
	b.NonTerminal("F")
	b.Start("S")
	b.Rule("S", []string{"a", "E", "c"})
	b.Rule("S", []string{"a", "F", "d"})
	b.Rule("S", []string{"b", "E", "d"})
	b.Rule("S", []string{"b", "F", "c"})
	b.Rule("E", []string{"e"})
	b.Rule("F", []string{"e"})

	g, err := b.Build()
	require.NoError(t, err)
	return g, grammar.Compute(g)
}

func Test_Build_LR0_stateZeroIsStart(t *testing.T) {
	assert := assert.New(t)
	g, ff := buildArith(t)

	a, err := Build(g, ff, ModeLR0)
	assert.NoError(err)
	assert.Equal(0, a.States[0].ID)
	assert.False(a.States[0].HasAccess)

	// the start state's kernel item is the augmented rule with dot at 0
	found := false
	for it := range a.States[0].Items {
		if it.Core == startItem() {
			found = true
		}
	}
	assert.True(found)
}

func Test_Build_LALR1_hasSameStateCountAsLR0(t *testing.T) {
	assert := assert.New(t)
	g, ff := buildArith(t)

	lr0, err := Build(g, ff, ModeLR0)
	assert.NoError(err)
	lalr1, err := Build(g, ff, ModeLALR1)
	assert.NoError(err)

	assert.Equal(len(lr0.States), len(lalr1.States))
}

func Test_Build_LR1_hasAtLeastAsManyStatesAsLALR1(t *testing.T) {
	assert := assert.New(t)
	g, ff := buildArith(t)

	lr1, err := Build(g, ff, ModeLR1)
	assert.NoError(err)
	lalr1, err := Build(g, ff, ModeLALR1)
	assert.NoError(err)

	assert.GreaterOrEqual(len(lr1.States), len(lalr1.States))
}

func Test_Compare_classicGrammar_reportsStateCounts(t *testing.T) {
	assert := assert.New(t)
	g, ff := buildClassicRRConflict(t)

	r, err := Compare(g, ff)
	assert.NoError(err)
	assert.Greater(r.LR1States, 0)
	assert.Equal(r.LR0States, r.LALR1States)
}

func Test_Build_transitionsAreDeterministic(t *testing.T) {
	assert := assert.New(t)
	g, ff := buildArith(t)

	a1, err := Build(g, ff, ModeLALR1)
	assert.NoError(err)
	a2, err := Build(g, ff, ModeLALR1)
	assert.NoError(err)

	assert.Equal(len(a1.States), len(a2.States))
	for i := range a1.States {
		assert.Equal(a1.States[i].Transitions, a2.States[i].Transitions)
	}
}
