// Package runtime drives a compiled table.CompiledTable as a bottom-up
// shift/reduce parser: a pair of parallel stacks, an inner reduce loop run to
// fixpoint before every shift, dynamic-precedence resolution for deferred
// ShiftOrReduce cells, and the lexer-feedback query used for typedef
// disambiguation.
package runtime

import "github.com/dekarrin/gazelle/symbol"

// Token is one lexical unit handed to the parser: the terminal it was
// classified as, the source text it came from, and — for terminals declared
// dynamic via grammar.Builder.DynamicTerminal — the precedence it carries at
// parse time, overriding any static declaration.
type Token struct {
	Terminal symbol.ID
	Lexeme   string

	// HasPrecedence is set when this token carries a runtime precedence; it
	// distinguishes "no precedence" from the zero Precedence value, which is
	// itself a valid (if useless) precedence level.
	HasPrecedence bool
	Precedence    symbol.Precedence
}

// NewToken builds a Token with no runtime precedence attached.
func NewToken(terminal symbol.ID, lexeme string) Token {
	return Token{Terminal: terminal, Lexeme: lexeme}
}

// WithPrecedence attaches a runtime precedence to a token, for use with
// terminals declared via grammar.Builder.DynamicTerminal.
func WithPrecedence(terminal symbol.ID, lexeme string, prec symbol.Precedence) Token {
	return Token{Terminal: terminal, Lexeme: lexeme, HasPrecedence: true, Precedence: prec}
}

// EndOfInput is the token the caller feeds to Finish, and is the only valid
// lookahead for the state the augmented rule accepts in.
var EndOfInput = Token{Terminal: symbol.EndOfInput}
