package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Normalize_plusModifier_desugarsToVecRules(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	b := NewBuilder()
	b.Terminal("NUM")
	b.NonTerminal("nums")
	b.Start("nums")
	b.Rule("nums", []string{"NUM+"})

	g, err := b.Build()
	require.NoError(err)

	// rule 0 = augmented; rule 1 = nums -> NUM$plus; remaining two are the
	// synthesized VecSingle/VecAppend rules for NUM$plus.
	require.Len(g.Rules, 4)

	synth := g.Rules[1].RHS[0]
	assert.NotEqual(g.Start, synth)

	var sawSingle, sawAppend bool
	for _, r := range g.Rules {
		if r.LHS == synth {
			switch r.Action {
			case ActionVecSingle:
				sawSingle = true
				assert.Len(r.RHS, 1)
			case ActionVecAppend:
				sawAppend = true
				assert.Len(r.RHS, 2)
				assert.Equal(synth, r.RHS[0])
			}
		}
	}
	assert.True(sawSingle)
	assert.True(sawAppend)
}

func Test_Normalize_optModifier_desugarsToOptSomeNone(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	b := NewBuilder()
	b.Terminal("NUM")
	b.NonTerminal("maybeNum")
	b.Start("maybeNum")
	b.Rule("maybeNum", []string{"NUM?"})

	g, err := b.Build()
	require.NoError(err)

	synth := g.Rules[1].RHS[0]
	var sawSome, sawNone bool
	for _, r := range g.Rules {
		if r.LHS == synth {
			switch r.Action {
			case ActionOptSome:
				sawSome = true
				assert.Len(r.RHS, 1)
			case ActionOptNone:
				sawNone = true
				assert.Len(r.RHS, 0)
			}
		}
	}
	assert.True(sawSome)
	assert.True(sawNone)
}

func Test_Normalize_sepModifier_desugarsWithDelimiter(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	b := NewBuilder()
	b.Terminal("NUM")
	b.Terminal("COMMA")
	b.NonTerminal("items")
	b.Start("items")
	b.Rule("items", []string{"NUM%COMMA"})

	g, err := b.Build()
	require.NoError(err)

	synth := g.Rules[1].RHS[0]
	var appendRHSLen int
	for _, r := range g.Rules {
		if r.LHS == synth && r.Action == ActionVecAppend {
			appendRHSLen = len(r.RHS)
		}
	}
	assert.Equal(3, appendRHSLen) // Xsep COMMA NUM
}

func Test_Normalize_reusesSyntheticNonTerminalForRepeatedModifier(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	b := NewBuilder()
	b.Terminal("NUM")
	b.NonTerminal("a")
	b.NonTerminal("b")
	b.Start("a")
	b.Rule("a", []string{"NUM+", "b"})
	b.Rule("b", []string{"NUM+"})

	g, err := b.Build()
	require.NoError(err)

	// both uses of "NUM+" should desugar to the same synthetic non-terminal,
	// so only one VecSingle/VecAppend pair is generated for it.
	var numPlusLHSes []symbolIDSet
	seen := map[symbolIDSet]bool{}
	for _, r := range g.Rules {
		if r.Action == ActionVecSingle && len(r.RHS) == 1 {
			key := symbolIDSet(r.LHS)
			if !seen[key] {
				seen[key] = true
				numPlusLHSes = append(numPlusLHSes, key)
			}
		}
	}
	assert.Len(numPlusLHSes, 1)
}

type symbolIDSet = int
