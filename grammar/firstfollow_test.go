package grammar

import (
	"testing"

	"github.com/dekarrin/gazelle/symbol"
	"github.com/stretchr/testify/assert"
)

func Test_Compute_arithGrammar_firstAndFollow(t *testing.T) {
	assert := assert.New(t)
	g := buildArith(t)

	ff := Compute(g)

	num, _ := g.Symbols.Lookup("NUM")
	lparen, _ := g.Symbols.Lookup("LPAREN")
	plus, _ := g.Symbols.Lookup("PLUS")
	rparen, _ := g.Symbols.Lookup("RPAREN")

	e, _ := g.Symbols.Lookup("E")
	f, _ := g.Symbols.Lookup("F")

	// FIRST(E) = FIRST(T) = FIRST(F) = { NUM, LPAREN }
	assert.True(ff.First(e).Has(num))
	assert.True(ff.First(e).Has(lparen))
	assert.False(ff.First(e).Has(plus))

	// terminals are their own FIRST
	assert.True(ff.First(plus).Has(plus))
	assert.Equal(1, len(ff.First(plus).Elements()))

	// FOLLOW(E) includes $ (via the augmented rule) and RPAREN (via F -> (E))
	assert.True(ff.Follow(e).Has(symbol.EndOfInput))
	assert.True(ff.Follow(e).Has(rparen))
	assert.True(ff.Follow(e).Has(plus))

	// no non-terminal in this grammar is nullable
	assert.False(ff.Nullable(e))
	assert.False(ff.Nullable(f))
}

func Test_Compute_isIdempotent(t *testing.T) {
	assert := assert.New(t)
	g := buildArith(t)

	ff1 := Compute(g)
	ff2 := Compute(g)

	e, _ := g.Symbols.Lookup("E")
	assert.ElementsMatch(ff1.First(e).Elements(), ff2.First(e).Elements())
	assert.ElementsMatch(ff1.Follow(e).Elements(), ff2.Follow(e).Elements())
}

func Test_Compute_nullableNonTerminal(t *testing.T) {
	assert := assert.New(t)

	b := NewBuilder()
	b.Terminal("NUM")
	b.NonTerminal("maybeNum")
	b.Start("maybeNum")
	b.Rule("maybeNum", []string{"NUM?"})
	g, err := b.Build()
	assert.NoError(err)

	ff := Compute(g)
	synth := g.Rules[1].RHS[0]
	assert.True(ff.Nullable(synth))
}
