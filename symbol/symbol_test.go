package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Table_DeclareTerminal_reusesExistingID(t *testing.T) {
	assert := assert.New(t)

	tab := New()
	id1 := tab.DeclareTerminal("NUM")
	id2 := tab.DeclareTerminal("NUM")

	assert.Equal(id1, id2)
	assert.Equal("NUM", tab.Name(id1))
}

func Test_Table_EndOfInput_isSlotZero(t *testing.T) {
	assert := assert.New(t)

	tab := New()
	assert.Equal(EndOfInput, ID(0))
	assert.True(tab.IsTerminal(EndOfInput))
	assert.Equal("$", tab.Name(EndOfInput))
}

func Test_Table_Renumber_putsNonTerminalsImmediatelyAfterTerminals(t *testing.T) {
	assert := assert.New(t)

	tab := New()
	plus := tab.DeclareTerminal("PLUS")
	num := tab.DeclareTerminal("NUM")
	expr := tab.DeclareNonTerminal("expr")
	term := tab.DeclareNonTerminal("term")

	remap := tab.Renumber()

	assert.Equal(tab.NumTerminals(), 3) // $, PLUS, NUM
	newExpr := remap[expr]
	newTerm := remap[term]
	assert.GreaterOrEqual(int(newExpr), tab.NumTerminals())
	assert.GreaterOrEqual(int(newTerm), tab.NumTerminals())
	assert.NotEqual(newExpr, newTerm)

	// terminals are untouched by the remap
	assert.Equal(remap[plus], plus)
	assert.Equal(remap[num], num)

	// names are preserved through the remap
	assert.Equal("expr", tab.Name(newExpr))
	assert.Equal(NonTerminal, tab.KindOf(newExpr))
}

func Test_Table_PrecedenceAndDynamic(t *testing.T) {
	assert := assert.New(t)

	tab := New()
	op := tab.DeclareTerminal("OP")
	tab.SetPrecedence(op, Precedence{Level: 3, Assoc: AssocLeft})
	tab.SetDynamic(op, true)

	assert.Equal(Precedence{Level: 3, Assoc: AssocLeft}, tab.Precedence(op))
	assert.True(tab.IsDynamic(op))

	other := tab.DeclareTerminal("NUM")
	assert.True(tab.Precedence(other).IsZero())
	assert.False(tab.IsDynamic(other))
}

func Test_Precedence_String(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("(none)", Precedence{}.String())
	assert.Equal("5/right", Precedence{Level: 5, Assoc: AssocRight}.String())
}
